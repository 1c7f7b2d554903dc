package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Transporegistros/carga-colombia-track/internal/config"
)

// SessionChannel is the pub/sub channel carrying session invalidation
// events. Logout, password changes and profile role changes publish the
// affected user id here so cached sessions are dropped everywhere.
const SessionChannel = "sesiones:invalidadas"

type Client struct {
	Client *redis.Client
}

// NewClient creates a new Redis client
func NewClient(cfg *config.RedisConfig) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{Client: client}, nil
}

// Get retrieves a value from Redis
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	return c.Client.Get(ctx, key).Result()
}

// Set sets a value in Redis with expiration
func (c *Client) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return c.Client.Set(ctx, key, value, expiration).Err()
}

// Delete removes keys from Redis
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	return c.Client.Del(ctx, keys...).Err()
}

// GetPermiso reads a cached permission verdict ("1"/"0") for a
// (rol, ruta, accion) triple. redis.Nil means not cached.
func (c *Client) GetPermiso(ctx context.Context, rol, ruta, accion string) (string, error) {
	return c.Get(ctx, permisoKey(rol, ruta, accion))
}

// SetPermiso caches a permission verdict with a short TTL. The matrix is
// admin-edited and rarely changes, but a stale grant must age out quickly.
func (c *Client) SetPermiso(ctx context.Context, rol, ruta, accion string, permitido bool, expiration time.Duration) error {
	value := "0"
	if permitido {
		value = "1"
	}
	return c.Set(ctx, permisoKey(rol, ruta, accion), value, expiration)
}

// InvalidatePermisos drops every cached verdict for a role.
func (c *Client) InvalidatePermisos(ctx context.Context, rol string) error {
	return c.deleteByPattern(ctx, fmt.Sprintf("permiso:%s:*", rol))
}

// InvalidateAllPermisos drops every cached verdict for every role. Roles are
// free text, so changes that affect all of them cannot enumerate roles.
func (c *Client) InvalidateAllPermisos(ctx context.Context) error {
	return c.deleteByPattern(ctx, "permiso:*")
}

func (c *Client) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.Client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.Delete(ctx, keys...)
}

func permisoKey(rol, ruta, accion string) string {
	return fmt.Sprintf("permiso:%s:%s:%s", rol, ruta, accion)
}

// RevokeToken marks a token id as revoked until its natural expiry.
func (c *Client) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	return c.Set(ctx, fmt.Sprintf("token:revocado:%s", jti), "1", ttl)
}

// IsTokenRevoked reports whether a token id has been revoked.
func (c *Client) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	count, err := c.Client.Exists(ctx, fmt.Sprintf("token:revocado:%s", jti)).Result()
	return count > 0, err
}

// SetResetCode stores a single-use password reset code for a user.
func (c *Client) SetResetCode(ctx context.Context, code string, userID string, ttl time.Duration) error {
	return c.Set(ctx, fmt.Sprintf("reset:%s", code), userID, ttl)
}

// TakeResetCode consumes a reset code, returning the user id it was issued
// for. The code is deleted atomically so it cannot be replayed.
func (c *Client) TakeResetCode(ctx context.Context, code string) (string, error) {
	return c.Client.GetDel(ctx, fmt.Sprintf("reset:%s", code)).Result()
}

// PublishSessionInvalidation notifies all API instances that sessions for a
// user must be re-hydrated.
func (c *Client) PublishSessionInvalidation(ctx context.Context, userID string) error {
	return c.Client.Publish(ctx, SessionChannel, userID).Err()
}

// SubscribeSessionInvalidations subscribes to the invalidation channel. The
// caller owns the returned PubSub and must Close it on teardown.
func (c *Client) SubscribeSessionInvalidations(ctx context.Context) *redis.PubSub {
	return c.Client.Subscribe(ctx, SessionChannel)
}

// Close closes the Redis client
func (c *Client) Close() error {
	return c.Client.Close()
}
