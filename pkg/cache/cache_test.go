package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is a map-backed Store for exercising Remember.
type memStore map[string]interface{}

func (m memStore) Get(_ context.Context, key string, dest interface{}) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	*dest.(*[]string) = v.([]string)
	return true
}

func (m memStore) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	m[key] = value
	return nil
}

func (m memStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m, k)
	}
	return nil
}

func TestRememberCachesResult(t *testing.T) {
	store := memStore{}
	calls := 0
	load := func() ([]string, error) {
		calls++
		return []string{"Central"}, nil
	}

	for i := 0; i < 3; i++ {
		got, err := Remember(context.Background(), store, "markets", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, []string{"Central"}, got)
	}
	assert.Equal(t, 1, calls)

	require.NoError(t, store.Del(context.Background(), "markets"))
	_, err := Remember(context.Background(), store, "markets", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRememberDoesNotCacheErrors(t *testing.T) {
	store := memStore{}
	_, err := Remember(context.Background(), store, "k", time.Minute, func() ([]string, error) {
		return nil, errors.New("db down")
	})
	assert.Error(t, err)
	assert.Empty(t, store)
}

func TestNoopAlwaysMisses(t *testing.T) {
	var s Store = Noop{}
	require.NoError(t, s.Set(context.Background(), "k", 1, time.Minute))

	var out int
	assert.False(t, s.Get(context.Background(), "k", &out))
}

func TestConnectFailsFast(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Connect(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
}
