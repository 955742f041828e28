// Package sportivity talks to the Sportivity lesson platform the way its iOS
// app does.
package sportivity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/lessonsched/internal/config"
	"github.com/example/lessonsched/internal/lesson"
	"github.com/example/lessonsched/internal/pkg/errs"
)

const (
	loginPath   = "/SportivityAppV3/Login"
	listingPath = "/SportivityAppV3/Lesson/GetIds"
	detailPath  = "/SportivityAppV3/Lesson/LessonById"
	joinPath    = "/SportivityAppV3/Lesson/JoinLesson"
)

// TokenSource hands out bearer tokens. Invalidate drops the current token
// so the next Token call obtains a fresh one.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Invalidate(ctx context.Context) error
}

// StatusError is a non-success HTTP status from the platform.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("sportivity: status %d", e.Status)
	}
	return fmt.Sprintf("sportivity: status %d: %s", e.Status, e.Body)
}

type Client struct {
	hc         *http.Client
	baseURL    string
	locationID string
	identity   Identity
	dryRun     bool
	retries    int
	retryDelay time.Duration
	tokens     TokenSource
	logger     *slog.Logger
}

// New builds a client. tokens may be nil for a client that only logs in.
func New(cfg config.SportivityConfig, tokens TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		hc:         &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		locationID: cfg.LocationID,
		identity: Identity{
			IOSVersion: cfg.IOSVersion,
			AppVersion: cfg.AppVersion,
			BundleID:   cfg.BundleID,
		},
		dryRun:     cfg.DryRun,
		retries:    cfg.MaxRetryAttempts,
		retryDelay: cfg.RetryDelay,
		tokens:     tokens,
		logger:     logger,
	}
}

func (c *Client) DryRun() bool { return c.dryRun }

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", errs.ErrNoCredentials
	}
	c.logger.Info("attempting login", "user", username)

	payload := map[string]string{"User": username, "Password": password}
	status, body, err := c.send(ctx, http.MethodPost, loginPath, nil, payload, "")
	if err != nil {
		return "", errs.Wrap(err, "login")
	}
	if status < 200 || status > 299 {
		return "", errs.Wrap(statusError(status, body), "login")
	}

	var res map[string]any
	if err := json.Unmarshal(body, &res); err != nil {
		return "", errs.Wrap(err, "decode login response")
	}
	for _, key := range []string{"Token", "token", "SessionToken", "session_token"} {
		if tok, ok := res[key].(string); ok && tok != "" {
			c.logger.Info("login successful")
			return tok, nil
		}
	}
	return "", errs.New("no token found in login response")
}

type listingResponse struct {
	Response          any             `json:"Response"`
	LessonDefinitions []lesson.Record `json:"LessonDefinitions"`
}

// Listings returns the lessons scheduled on the calendar days from..to,
// both inclusive.
func (c *Client) Listings(ctx context.Context, from, to time.Time) ([]lesson.Record, error) {
	q := url.Values{}
	q.Set("LocationId", c.locationID)
	q.Set("StartDate", from.Format("2006-01-02")+"T00:00:00.000Z")
	q.Set("EndDate", to.Format("2006-01-02")+"T23:59:59.999Z")

	c.logger.Info("fetching schedule", "from", from.Format("2006-01-02"), "to", to.Format("2006-01-02"))
	status, body, err := c.do(ctx, http.MethodGet, listingPath, q, nil)
	if err != nil {
		return nil, errs.Wrap(err, "fetch schedule")
	}
	if status != http.StatusOK {
		return nil, errs.Wrap(statusError(status, body), "fetch schedule")
	}

	var res listingResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, errs.Wrap(err, "decode schedule")
	}
	c.logger.Info("found lessons in schedule", "count", len(res.LessonDefinitions))
	return res.LessonDefinitions, nil
}

// LessonDetail returns nil without error when the platform has no such
// lesson.
func (c *Client) LessonDetail(ctx context.Context, id string) (*lesson.Record, error) {
	q := url.Values{}
	q.Set("LessonId", id)
	status, body, err := c.do(ctx, http.MethodGet, detailPath, q, nil)
	if err != nil {
		return nil, errs.Wrapf(err, "get lesson %s", id)
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, errs.Wrapf(statusError(status, body), "get lesson %s", id)
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || string(body) == "null" {
		return nil, nil
	}

	var rec lesson.Record
	if err := json.Unmarshal(body, &rec); err != nil {
		return nil, errs.Wrapf(err, "decode lesson %s", id)
	}
	return &rec, nil
}

type joinRequest struct {
	LessonID    string `json:"LessonId"`
	BuyLesson   bool   `json:"BuyLesson"`
	LessonDate  string `json:"lessonDate"`
	WaitingList bool   `json:"waitingList"`
}

// Join books a lesson. In dry-run mode nothing is sent and Join succeeds.
func (c *Client) Join(ctx context.Context, id, startUTC string) error {
	payload := joinRequest{LessonID: id, LessonDate: startUTC}

	if c.dryRun {
		c.logger.Info("DRY RUN: would book lesson", "endpoint", joinPath, "lesson_id", id, "lesson_date", startUTC)
		return nil
	}

	c.logger.Info("attempting to book lesson", "lesson_id", id, "lesson_date", startUTC)
	status, body, err := c.do(ctx, http.MethodPost, joinPath, nil, payload)
	if err != nil {
		return errs.Wrapf(err, "book lesson %s", id)
	}
	if status != http.StatusOK && status != http.StatusCreated {
		return errs.Mark(errs.Wrapf(statusError(status, body), "book lesson %s", id), errs.ErrBookingRejected)
	}
	c.logger.Info("successfully booked lesson", "lesson_id", id)
	return nil
}

// do sends an authenticated request. A 401 invalidates the token and the
// request is repeated once with a fresh one.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload any) (int, []byte, error) {
	if c.tokens == nil {
		return 0, nil, errs.New("sportivity client has no token source")
	}
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return 0, nil, err
	}

	status, body, err := c.send(ctx, method, path, query, payload, token)
	if err != nil || status != http.StatusUnauthorized {
		return status, body, err
	}

	c.logger.Warn("got 401, re-authenticating")
	if err := c.tokens.Invalidate(ctx); err != nil {
		c.logger.Warn("failed to clear token", "error", err)
	}
	token, err = c.tokens.Token(ctx)
	if err != nil {
		return 0, nil, err
	}
	status, body, err = c.send(ctx, method, path, query, payload, token)
	if err != nil {
		return status, body, err
	}
	if status == http.StatusUnauthorized {
		return status, body, errs.Mark(statusError(status, body), errs.ErrUnauthorized)
	}
	return status, body, nil
}

func retryable(status int) bool {
	switch status {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// send performs one logical request, retrying transient statuses and
// transport errors up to the configured number of times.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, payload any, token string) (int, []byte, error) {
	var raw []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, err
		}
		raw = b
	}

	var (
		status int
		body   []byte
		err    error
	)
	for attempt := 0; ; attempt++ {
		status, body, err = c.once(ctx, method, path, query, raw, token)
		if (err == nil && !retryable(status)) || attempt >= c.retries || ctx.Err() != nil {
			return status, body, err
		}

		delay := c.retryDelay * time.Duration(attempt+1)
		c.logger.Debug("retrying request", "path", path, "status", status, "error", err, "delay", delay)
		select {
		case <-ctx.Done():
			return status, body, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (c *Client) once(ctx context.Context, method, path string, query url.Values, raw []byte, token string) (int, []byte, error) {
	var rdr io.Reader
	if raw != nil {
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return 0, nil, err
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	c.identity.apply(req.Header)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := c.hc.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer res.Body.Close()
	b, err := io.ReadAll(res.Body)
	if err != nil {
		return res.StatusCode, nil, err
	}
	return res.StatusCode, b, nil
}

func statusError(status int, body []byte) error {
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200]
	}
	return &StatusError{Status: status, Body: text}
}
