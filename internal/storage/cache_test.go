package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/Ananth-NQI/clinicbot-backend/internal/storage"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, *storage.MemoryStore, *storage.CachedStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := storage.NewMemoryStore()
	return mr, inner, storage.NewCachedStore(inner, rdb, time.Minute, zap.NewNop())
}

func TestCachedStore_GetSessionBySecret(t *testing.T) {
	ctx := context.Background()

	t.Run("miss populates the cache without the raw secret", func(t *testing.T) {
		mr, inner, cached := setupCache(t)
		session := newTenant(t, inner, "cache-secret")

		found, err := cached.GetSessionBySecret(ctx, "cache-secret")
		require.NoError(t, err)
		assert.Equal(t, session.ID, found.ID)

		key := storage.TenantCacheKey("cache-secret")
		assert.True(t, mr.Exists(key))
		assert.NotContains(t, key, "cache-secret")
		assert.Equal(t, time.Minute, mr.TTL(key))
	})

	t.Run("hit is served from redis", func(t *testing.T) {
		_, inner, cached := setupCache(t)
		session := newTenant(t, inner, "cache-secret")

		_, err := cached.GetSessionBySecret(ctx, "cache-secret")
		require.NoError(t, err)

		found, err := cached.GetSessionBySecret(ctx, "cache-secret")
		require.NoError(t, err)
		assert.Equal(t, session.ID, found.ID)
		assert.Equal(t, "key-cache-secret", found.APICredential)
		require.NotNil(t, found.Configuration())
		assert.Equal(t, "Clinic cache-secret", found.Configuration().ClinicName)
	})

	t.Run("unknown secret is not cached", func(t *testing.T) {
		mr, _, cached := setupCache(t)

		_, err := cached.GetSessionBySecret(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.False(t, mr.Exists(storage.TenantCacheKey("nope")))
	})

	t.Run("redis outage falls back to the store", func(t *testing.T) {
		mr, inner, cached := setupCache(t)
		session := newTenant(t, inner, "cache-secret")
		mr.Close()

		found, err := cached.GetSessionBySecret(ctx, "cache-secret")
		require.NoError(t, err)
		assert.Equal(t, session.ID, found.ID)
	})

	t.Run("entry holds neither secret nor credential in clear", func(t *testing.T) {
		mr, inner, cached := setupCache(t)
		newTenant(t, inner, "cache-secret")

		_, err := cached.GetSessionBySecret(ctx, "cache-secret")
		require.NoError(t, err)

		raw, err := mr.Get(storage.TenantCacheKey("cache-secret"))
		require.NoError(t, err)
		assert.NotContains(t, raw, "cache-secret")
		assert.NotContains(t, raw, "key-cache-secret")
		assert.NotContains(t, raw, "Clinic cache-secret")

		found, err := cached.GetSessionBySecret(ctx, "cache-secret")
		require.NoError(t, err)
		assert.Equal(t, "cache-secret", found.WebhookSecret)
		assert.Equal(t, "key-cache-secret", found.APICredential)
	})

	t.Run("tampered entry falls back to the store", func(t *testing.T) {
		mr, inner, cached := setupCache(t)
		session := newTenant(t, inner, "cache-secret")
		key := storage.TenantCacheKey("cache-secret")
		require.NoError(t, mr.Set(key, `{"id":"forged","api_credential":"stolen"}`))

		found, err := cached.GetSessionBySecret(ctx, "cache-secret")
		require.NoError(t, err)
		assert.Equal(t, session.ID, found.ID)
		assert.Equal(t, "key-cache-secret", found.APICredential)
	})
}

func TestCachedStore_Ping(t *testing.T) {
	ctx := context.Background()
	mr, _, cached := setupCache(t)

	require.NoError(t, cached.Ping(ctx))
	require.NoError(t, cached.PingCache(ctx))

	mr.Close()
	assert.NoError(t, cached.Ping(ctx))
	assert.Error(t, cached.PingCache(ctx))
}
