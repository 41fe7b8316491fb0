package storage

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Ananth-NQI/clinicbot-backend/internal/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	tenantKeyPrefix = "clinicbot:tenant:"
	tenantCacheInfo = "clinicbot tenant cache v1"
)

// CachedStore puts a Redis read-through cache in front of tenant lookups.
// Every other operation goes straight to the wrapped store.
//
// Entries never hold the webhook secret; it is restored from the secret the
// caller presented. The rest of the session, API credential included, is
// sealed with a key derived from that secret, so Redis alone cannot read it.
type CachedStore struct {
	Store
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedStore wraps store with a tenant cache whose entries live for ttl
func NewCachedStore(store Store, rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedStore {
	return &CachedStore{
		Store:  store,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// GetSessionBySecret serves from Redis when possible; any Redis failure falls
// back to the wrapped store
func (c *CachedStore) GetSessionBySecret(ctx context.Context, secret string) (*models.TenantSession, error) {
	key := TenantCacheKey(secret)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if session, err := openTenantEntry(raw, secret); err == nil {
			return session, nil
		}
		c.logger.Warn("Discarding unreadable tenant cache entry", zap.String("key", key))
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("Tenant cache read failed", zap.Error(err))
	}

	session, err := c.Store.GetSessionBySecret(ctx, secret)
	if err != nil {
		return nil, err
	}

	payload, err := sealTenantEntry(session, secret)
	if err != nil {
		c.logger.Warn("Tenant cache entry not written", zap.Error(err))
		return session, nil
	}
	if err := c.rdb.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("Tenant cache write failed", zap.Error(err))
	}

	return session, nil
}

// Ping reports the wrapped store only; the cache is optional and checked by
// PingCache
func (c *CachedStore) Ping(ctx context.Context) error {
	return c.Store.Ping(ctx)
}

func (c *CachedStore) PingCache(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *CachedStore) Close() error {
	return errors.Join(c.Store.Close(), c.rdb.Close())
}

// TenantCacheKey never embeds the raw secret
func TenantCacheKey(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return tenantKeyPrefix + hex.EncodeToString(sum[:])
}

func sealTenantEntry(session *models.TenantSession, secret string) ([]byte, error) {
	projection := *session
	projection.WebhookSecret = ""

	plaintext, err := json.Marshal(&projection)
	if err != nil {
		return nil, err
	}

	aead, err := tenantCipher(secret)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plaintext, []byte(tenantKeyPrefix)), nil
}

func openTenantEntry(raw []byte, secret string) (*models.TenantSession, error) {
	aead, err := tenantCipher(secret)
	if err != nil {
		return nil, err
	}
	if len(raw) < aead.NonceSize() {
		return nil, errors.New("tenant cache entry too short")
	}

	nonce, ciphertext := raw[:aead.NonceSize()], raw[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(tenantKeyPrefix))
	if err != nil {
		return nil, err
	}

	var session models.TenantSession
	if err := json.Unmarshal(plaintext, &session); err != nil {
		return nil, err
	}
	session.WebhookSecret = secret
	return &session, nil
}

func tenantCipher(secret string) (cipher.AEAD, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(tenantCacheInfo)), key); err != nil {
		return nil, fmt.Errorf("derive tenant cache key: %w", err)
	}
	return chacha20poly1305.NewX(key)
}
