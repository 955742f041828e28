// Package migrate applies the embedded journal schema.
package migrate

import (
	"context"
	"embed"
	"io/fs"
	"log/slog"
	"sort"
	"strings"

	"github.com/example/lessonsched/internal/db"
	"github.com/example/lessonsched/internal/pkg/errs"
)

//go:embed *.sql
var files embed.FS

// Migrations lists the embedded migration files in apply order.
func Migrations() ([]string, error) {
	entries, err := fs.ReadDir(files, ".")
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Up applies every migration not yet recorded in schema_migrations.
func Up(ctx context.Context, d *db.DB, logger *slog.Logger) error {
	names, err := Migrations()
	if err != nil {
		return errs.Wrap(err, "list migrations")
	}

	if err := d.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (version TEXT PRIMARY KEY, applied_at TIMESTAMPTZ NOT NULL DEFAULT now());`); err != nil {
		return errs.Wrap(err, "create schema_migrations")
	}

	for _, name := range names {
		var applied bool
		if err := d.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version=$1)`, name).Scan(&applied); err != nil {
			return errs.Wrapf(err, "check %s", name)
		}
		if applied {
			continue
		}

		b, err := files.ReadFile(name)
		if err != nil {
			return err
		}
		if err := d.Exec(ctx, string(b)); err != nil {
			return errs.Wrapf(err, "apply %s", name)
		}
		if err := d.Exec(ctx, `INSERT INTO schema_migrations(version) VALUES ($1)`, name); err != nil {
			return errs.Wrapf(err, "record %s", name)
		}
		logger.Info("applied migration", "version", name)
	}
	return nil
}
