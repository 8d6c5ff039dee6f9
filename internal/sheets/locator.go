package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// IDCache remembers spreadsheet ids between requests. The cache package
// provides Redis and in-memory implementations.
type IDCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// DefaultCacheTTL is used when the Locator is built with a zero TTL.
const DefaultCacheTTL = 24 * time.Hour

// Locator finds or creates the spreadsheet that belongs to a user.
type Locator struct {
	cache  IDCache
	ttl    time.Duration
	logger *slog.Logger
}

// NewLocator creates a Locator. cache may be nil.
func NewLocator(cache IDCache, ttl time.Duration, logger *slog.Logger) *Locator {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Locator{cache: cache, ttl: ttl, logger: logger}
}

// Title is the spreadsheet name used for email's log.
func Title(email string) string {
	return "Gas Log - " + email
}

func cacheKey(email string) string {
	return "gaslog:spreadsheet:" + email
}

// Ensure returns the user's spreadsheet id. It tries the cached id, then a
// Drive search by title, and finally creates the spreadsheet with its header
// rows. Every id found is verified before use.
func (l *Locator) Ensure(ctx context.Context, c *Client, email string) (string, error) {
	if err := c.CheckToken(); err != nil {
		return "", err
	}
	key := cacheKey(email)

	if id := l.cached(ctx, key); id != "" {
		ok, err := c.Exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("verify spreadsheet: %w", err)
		}
		if ok {
			return id, nil
		}
		l.logger.Info("cached spreadsheet is gone", "spreadsheet_id", id)
		l.forget(ctx, key)
	}

	id, found, err := c.FindByTitle(ctx, Title(email))
	if err != nil {
		return "", fmt.Errorf("search spreadsheet: %w", err)
	}
	if found {
		ok, err := c.Exists(ctx, id)
		if err != nil {
			return "", fmt.Errorf("verify spreadsheet: %w", err)
		}
		if ok {
			l.remember(ctx, key, id)
			return id, nil
		}
	}

	id, err = l.create(ctx, c, email)
	if err != nil {
		return "", err
	}
	l.remember(ctx, key, id)
	return id, nil
}

func (l *Locator) create(ctx context.Context, c *Client, email string) (string, error) {
	id, err := c.Create(ctx, Title(email), EntriesSheet, VehiclesSheet)
	if err != nil {
		return "", fmt.Errorf("create spreadsheet: %w", err)
	}
	if err := c.UpdateRange(ctx, id, EntriesSheet+"!A1:N1", headerRow(EntryHeaders)); err != nil {
		return "", fmt.Errorf("write entry headers: %w", err)
	}
	if err := c.UpdateRange(ctx, id, VehiclesSheet+"!A1:G1", headerRow(VehicleHeaders)); err != nil {
		return "", fmt.Errorf("write vehicle headers: %w", err)
	}
	l.logger.Info("created spreadsheet", "spreadsheet_id", id)
	return id, nil
}

// Cache failures only cost extra API calls, so they are logged and ignored.

func (l *Locator) cached(ctx context.Context, key string) string {
	if l.cache == nil {
		return ""
	}
	id, ok, err := l.cache.Get(ctx, key)
	if err != nil {
		l.logger.Warn("spreadsheet cache read failed", "error", err)
		return ""
	}
	if !ok {
		return ""
	}
	return id
}

func (l *Locator) remember(ctx context.Context, key, id string) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Set(ctx, key, id, l.ttl); err != nil {
		l.logger.Warn("spreadsheet cache write failed", "error", err)
	}
}

func (l *Locator) forget(ctx context.Context, key string) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Delete(ctx, key); err != nil {
		l.logger.Warn("spreadsheet cache delete failed", "error", err)
	}
}
