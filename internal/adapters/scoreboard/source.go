// Package scoreboard acquires raw scoreboard snapshots from the game
// server, with a staleness-windowed local file cache in front of it.
package scoreboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/hexpel/copycatch/internal/domain/model"
	"github.com/hexpel/copycatch/pkg/logger"
	"github.com/hexpel/copycatch/pkg/metrics"
)

// Default client configuration constants.
const (
	defaultCachePath    = "scoreboard_data.json"
	defaultMaxAge       = 300 * time.Second
	defaultFetchTimeout = 10 * time.Second
)

// Source provides scoreboard snapshots together with their capture time.
type Source interface {
	// Snapshot returns the current snapshot, from cache when it is
	// within the staleness window, otherwise from the remote server.
	// forceRefresh bypasses the cache.
	Snapshot(ctx context.Context, forceRefresh bool) (*model.Snapshot, time.Time, error)
}

// CacheInfo is implemented by sources that can report the capture time
// of locally cached data without contacting the upstream.
type CacheInfo interface {
	CachedAt() (time.Time, bool)
}

// Client implements Source against an HTTP scoreboard endpoint.
type Client struct {
	url        string
	cachePath  string
	maxAge     time.Duration
	httpClient *http.Client
	log        logger.Logger

	// Serializes fetch+cache-write so concurrent refreshes do not race
	// on the cache file.
	mu sync.Mutex
}

// New creates a scoreboard client for the given endpoint URL.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		cachePath:  defaultCachePath,
		maxAge:     defaultMaxAge,
		httpClient: &http.Client{Timeout: defaultFetchTimeout},
		log:        logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Snapshot returns the current snapshot and its capture time.
func (c *Client) Snapshot(ctx context.Context, forceRefresh bool) (*model.Snapshot, time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !forceRefresh {
		if snap, capturedAt, ok := c.readCache(ctx); ok {
			return snap, capturedAt, nil
		}
	}

	return c.fetch(ctx)
}

// readCache loads the cached snapshot if it exists and is fresh.
func (c *Client) readCache(ctx context.Context) (*model.Snapshot, time.Time, bool) {
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		if !os.IsNotExist(err) {
			c.log.Warn(ctx, "failed to read snapshot cache", logger.String("path", c.cachePath), logger.Error(err))
		}
		return nil, time.Time{}, false
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.log.Warn(ctx, "snapshot cache is corrupt; refetching", logger.String("path", c.cachePath), logger.Error(err))
		return nil, time.Time{}, false
	}

	capturedAt := unixToTime(snap.FetchedAtUnix)
	if snap.FetchedAtUnix <= 0 || time.Since(capturedAt) >= c.maxAge {
		c.log.Info(ctx, "snapshot cache stale", logger.String("path", c.cachePath))
		return nil, time.Time{}, false
	}

	metrics.RecordSnapshotCacheHit()
	c.log.Debug(ctx, "snapshot served from cache", logger.String("path", c.cachePath))
	return &snap, capturedAt, true
}

// fetch retrieves a fresh snapshot from the game server and writes it
// to the cache file, stamped with the capture time.
func (c *Client) fetch(ctx context.Context) (*model.Snapshot, time.Time, error) {
	if c.url == "" {
		return nil, time.Time{}, ErrNoEndpoint
	}

	metrics.RecordSnapshotFetch()
	c.log.Info(ctx, "fetching scoreboard", logger.String("url", c.url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		metrics.RecordSnapshotFetchError()
		return nil, time.Time{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordSnapshotFetchError()
		return nil, time.Time{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.RecordSnapshotFetchError()
		return nil, time.Time{}, fmt.Errorf("%w: unexpected status %d", ErrFetch, resp.StatusCode)
	}

	var snap model.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		metrics.RecordSnapshotFetchError()
		return nil, time.Time{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	capturedAt := time.Now().UTC()
	snap.FetchedAtUnix = float64(capturedAt.UnixNano()) / float64(time.Second)

	if err := c.writeCache(&snap); err != nil {
		// A failed cache write is not fatal: the snapshot is in hand.
		c.log.Warn(ctx, "failed to write snapshot cache", logger.String("path", c.cachePath), logger.Error(err))
	}

	c.log.Info(ctx, "scoreboard fetched",
		logger.Int("participants", len(snap.Items)),
		logger.String("captured_at", capturedAt.Format(time.RFC3339)),
	)
	return &snap, capturedAt, nil
}

// writeCache persists the snapshot atomically (temp file + rename).
func (c *Client) writeCache(snap *model.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrCache, err)
	}

	tmp := c.cachePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrCache, err)
	}
	if err := os.Rename(tmp, c.cachePath); err != nil {
		return fmt.Errorf("%w: %w", ErrCache, err)
	}
	return nil
}

// CachedAt returns the capture time of the cache file without touching
// the network. The second return is false when no valid cache exists.
func (c *Client) CachedAt() (time.Time, bool) {
	data, err := os.ReadFile(c.cachePath)
	if err != nil {
		return time.Time{}, false
	}
	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return time.Time{}, false
	}
	if snap.FetchedAtUnix <= 0 {
		return time.Time{}, false
	}
	return unixToTime(snap.FetchedAtUnix), true
}

func unixToTime(unixSeconds float64) time.Time {
	return time.Unix(0, int64(unixSeconds*float64(time.Second))).UTC()
}
