package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"

	"github.com/example/lessonsched/internal/matcher"
)

//go:embed default_targets.toml
var defaultTargets []byte

// Targets is the operator's booking wish list.
type Targets struct {
	Types            []string       `toml:"types"`
	ToleranceMinutes int            `toml:"tolerance_minutes"`
	Lessons          []matcher.Rule `toml:"lesson"`
}

// LoadTargets reads the targets file at path, or the built-in schedule when
// path is empty.
func LoadTargets(fs afero.Fs, path string) (Targets, error) {
	if path == "" {
		return decodeTargets(bytes.NewReader(defaultTargets))
	}
	f, err := fs.Open(path)
	if err != nil {
		return Targets{}, fmt.Errorf("open targets file: %w", err)
	}
	defer f.Close()
	t, err := decodeTargets(f)
	if err != nil {
		return Targets{}, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func decodeTargets(r io.Reader) (Targets, error) {
	dec := toml.NewDecoder(r)
	dec.DisallowUnknownFields()
	var t Targets
	if err := dec.Decode(&t); err != nil {
		return Targets{}, fmt.Errorf("decode targets: %w", err)
	}
	t.setDefaults()
	if err := t.Validate(); err != nil {
		return Targets{}, err
	}
	return t, nil
}

func (t *Targets) setDefaults() {
	if len(t.Types) > 0 {
		return
	}
	seen := make(map[string]bool)
	for _, r := range t.Lessons {
		if !seen[r.Type] {
			seen[r.Type] = true
			t.Types = append(t.Types, r.Type)
		}
	}
}

func (t Targets) Validate() error {
	if len(t.Lessons) == 0 {
		return fmt.Errorf("no target lessons configured")
	}
	if t.ToleranceMinutes < 0 {
		return fmt.Errorf("tolerance_minutes must be >= 0")
	}
	for i, r := range t.Lessons {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("lesson %d: %w", i+1, err)
		}
	}
	return nil
}

func (t Targets) MatcherConfig() matcher.Config {
	return matcher.Config{
		Types:     t.Types,
		Rules:     t.Lessons,
		Tolerance: time.Duration(t.ToleranceMinutes) * time.Minute,
	}
}
