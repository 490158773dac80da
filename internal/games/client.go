// Package games proxies the freetogame.com catalog API. Responses are passed
// through verbatim, cached in Redis, and fetched through a retrying HTTP
// client behind a circuit breaker.
package games

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"

	"github.com/Es-saiydy/webService/pkg/httpclient"
)

// DefaultBaseURL is the upstream catalog API.
const DefaultBaseURL = "https://www.freetogame.com/api"

const (
	cacheKeyList   = "games:list"
	cacheKeyGameFn = "games:%d"
)

// Client fetches the free-to-play games catalog.
type Client struct {
	http     *httpclient.CircuitBreakerClient
	cache    *redis.Client
	baseURL  string
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewClient creates a games catalog client. cache may be shared with other
// components; cache failures degrade to upstream fetches and are never
// surfaced to callers.
func NewClient(http *httpclient.CircuitBreakerClient, cache *redis.Client, baseURL string, cacheTTL time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:     http,
		cache:    cache,
		baseURL:  baseURL,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// ListGames returns the full catalog as upstream JSON.
func (c *Client) ListGames(ctx context.Context) (json.RawMessage, error) {
	if cached := c.fromCache(ctx, cacheKeyList); cached != nil {
		return cached, nil
	}

	body, err := c.fetch(ctx, c.baseURL+"/games")
	if err != nil {
		return nil, err
	}

	c.toCache(ctx, cacheKeyList, body)
	return body, nil
}

// GetGame returns a single game by its upstream ID.
func (c *Client) GetGame(ctx context.Context, id int64) (json.RawMessage, error) {
	key := fmt.Sprintf(cacheKeyGameFn, id)
	if cached := c.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	body, err := c.fetch(ctx, fmt.Sprintf("%s/game?id=%d", c.baseURL, id))
	if err != nil {
		return nil, err
	}

	c.toCache(ctx, key, body)
	return body, nil
}

// fetch performs the upstream GET and reads the body. Non-2xx responses are
// translated into AppErrors (404 stays a not-found for the caller).
func (c *Client) fetch(ctx context.Context, url string) (json.RawMessage, error) {
	resp, err := c.http.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch games catalog: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, httpclient.ParseResponseError(resp, "freetogame")
	}

	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, fmt.Errorf("read games response: %w", err)
	}

	return body, nil
}

func (c *Client) fromCache(ctx context.Context, key string) json.RawMessage {
	if c.cache == nil {
		return nil
	}

	val, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.DebugContext(ctx, "games cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil
	}
	return val
}

func (c *Client) toCache(ctx context.Context, key string, body []byte) {
	if c.cache == nil {
		return
	}

	if err := c.cache.Set(ctx, key, body, c.cacheTTL).Err(); err != nil {
		c.logger.DebugContext(ctx, "games cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// Healthy reports upstream reachability for the readiness endpoint. A tripped
// circuit breaker counts as unhealthy without issuing a request.
func (c *Client) Healthy(ctx context.Context) error {
	if c.http.State() == gobreaker.StateOpen {
		return fmt.Errorf("games upstream circuit open")
	}
	return nil
}
