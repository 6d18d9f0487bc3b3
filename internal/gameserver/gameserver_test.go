package gameserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ucp_service/internal/storage/redis"
)

type fakeCache struct {
	payload []byte
	sets    int
}

func (c *fakeCache) ServerStatus(_ context.Context) ([]byte, error) {
	if c.payload == nil {
		return nil, redis.ErrCacheMiss
	}

	return c.payload, nil
}

func (c *fakeCache) SetServerStatus(_ context.Context, payload []byte, _ time.Duration) error {
	c.payload = payload
	c.sets++

	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatusCacheMissFetchesUpstream(t *testing.T) {
	hits := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Write([]byte(`{"players":12}`)) //nolint:errcheck
	}))
	defer upstream.Close()

	cache := &fakeCache{}
	client := New(discardLogger(), cache, upstream.URL, 30*time.Second)

	payload, err := client.Status(context.Background())
	require.NoError(t, err)

	assert.JSONEq(t, `{"players":12}`, string(payload))
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, cache.sets)
}

func TestStatusCacheHitSkipsUpstream(t *testing.T) {
	hits := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Write([]byte(`{"players":12}`)) //nolint:errcheck
	}))
	defer upstream.Close()

	cache := &fakeCache{payload: []byte(`{"players":5}`)}
	client := New(discardLogger(), cache, upstream.URL, 30*time.Second)

	payload, err := client.Status(context.Background())
	require.NoError(t, err)

	assert.JSONEq(t, `{"players":5}`, string(payload))
	assert.Equal(t, 0, hits)
}

func TestStatusUpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	client := New(discardLogger(), &fakeCache{}, upstream.URL, 30*time.Second)

	_, err := client.Status(context.Background())
	assert.Error(t, err)
}
