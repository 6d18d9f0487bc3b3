// Package gameserver proxies the open.mp query API with a short-lived
// cache in front of it.
package gameserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	sl "ucp_service/internal/lib/logger"
	"ucp_service/internal/storage/redis"
)

type StatusCache interface {
	ServerStatus(ctx context.Context) ([]byte, error)
	SetServerStatus(ctx context.Context, payload []byte, ttl time.Duration) error
}

type Client struct {
	log       *slog.Logger
	http      *http.Client
	cache     StatusCache
	statusURL string
	cacheTTL  time.Duration
}

func New(log *slog.Logger, cache StatusCache, statusURL string, cacheTTL time.Duration) *Client {
	return &Client{
		log:       log,
		http:      &http.Client{Timeout: 10 * time.Second},
		cache:     cache,
		statusURL: statusURL,
		cacheTTL:  cacheTTL,
	}
}

// Status returns the raw status document from cache when fresh, otherwise
// queries upstream and refreshes the cache. A cache write failure is
// logged and swallowed; the status itself still reaches the caller.
func (c *Client) Status(ctx context.Context) ([]byte, error) {
	const op = "gameserver.Status"

	cached, err := c.cache.ServerStatus(ctx)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, redis.ErrCacheMiss) {
		c.log.Warn("status cache read failed", sl.Err(err))
	}

	payload, err := c.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := c.cache.SetServerStatus(ctx, payload, c.cacheTTL); err != nil {
		c.log.Warn("status cache write failed", sl.Err(err))
	}

	return payload, nil
}

func (c *Client) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.statusURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from query api", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
