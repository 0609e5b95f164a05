package feeds

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

var (
	ErrUnexpectedStatus = errors.New("unexpected status code")
	ErrDecode           = errors.New("failed to decode feed")
)

// FeedGame is one record of a top-100 feed. Both snake_case and camelCase
// spellings of the publisher id and release date are accepted.
type FeedGame struct {
	PublisherID string `json:"publisher_id"`
	Name        string `json:"name"`
	OS          string `json:"os"`
	AppID       string `json:"app_id"`
	BundleID    string `json:"bundle_id"`
	Version     string `json:"version"`
	ReleaseDate string `json:"release_date"`
}

func (g *FeedGame) UnmarshalJSON(data []byte) error {
	var raw struct {
		PublisherID      json.RawMessage `json:"publisher_id"`
		PublisherIDCamel json.RawMessage `json:"publisherId"`
		Name             string          `json:"name"`
		OS               string          `json:"os"`
		AppID            json.RawMessage `json:"app_id"`
		BundleID         string          `json:"bundle_id"`
		Version          string          `json:"version"`
		ReleaseDate      string          `json:"release_date"`
		ReleaseDateCamel string          `json:"releaseDate"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	publisher := raw.PublisherID
	if isNull(publisher) {
		publisher = raw.PublisherIDCamel
	}

	publisherID, err := scalarString(publisher)
	if err != nil {
		return fmt.Errorf("publisher_id: %w", err)
	}

	appID, err := scalarString(raw.AppID)
	if err != nil {
		return fmt.Errorf("app_id: %w", err)
	}

	release := raw.ReleaseDate
	if release == "" {
		release = raw.ReleaseDateCamel
	}

	*g = FeedGame{
		PublisherID: publisherID,
		Name:        raw.Name,
		OS:          raw.OS,
		AppID:       appID,
		BundleID:    raw.BundleID,
		Version:     raw.Version,
		ReleaseDate: release,
	}

	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// scalarString renders a JSON string or number as a string; numbers keep
// their literal form.
func scalarString(raw json.RawMessage) (string, error) {
	if isNull(raw) {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}

	var n json.Number
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&n); err != nil {
		return "", fmt.Errorf("want string or number, got %s", string(raw))
	}

	return n.String(), nil
}

type Client struct {
	http      *http.Client
	userAgent string
	log       *slog.Logger
}

func New(log *slog.Logger, timeout time.Duration, userAgent string) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       log,
	}
}

// Fetch downloads the feed at url. The document is a JSON array whose
// elements are either records or arrays of records; the result is flattened
// in document order.
func (c *Client) Fetch(ctx context.Context, url string) ([]FeedGame, error) {
	const op = "clients.feeds.Fetch"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error("feed request failed", slog.String("url", url), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		c.log.Error("feed returned bad status", slog.String("url", url), slog.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%s: %w: %d", op, ErrUnexpectedStatus, resp.StatusCode)
	}

	games, err := decode(resp.Body)
	if err != nil {
		c.log.Error("feed decode failed", slog.String("url", url), slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	c.log.Debug(
		"feed fetched",
		slog.String("url", url),
		slog.Int("count", len(games)),
		slog.Duration("took", time.Since(start)),
	)

	return games, nil
}

func decode(r io.Reader) ([]FeedGame, error) {
	var items []json.RawMessage
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDecode, err)
	}

	games := make([]FeedGame, 0, len(items))
	for i, item := range items {
		if isNull(item) {
			continue
		}
		trimmed := bytes.TrimSpace(item)

		switch trimmed[0] {
		case '[':
			var chunk []FeedGame
			if err := json.Unmarshal(trimmed, &chunk); err != nil {
				return nil, fmt.Errorf("%w: item %d: %s", ErrDecode, i, err)
			}
			games = append(games, chunk...)
		case '{':
			var g FeedGame
			if err := json.Unmarshal(trimmed, &g); err != nil {
				return nil, fmt.Errorf("%w: item %d: %s", ErrDecode, i, err)
			}
			games = append(games, g)
		default:
			return nil, fmt.Errorf("%w: item %d is not an object or array", ErrDecode, i)
		}
	}

	return games, nil
}
