package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Transporegistros/carga-colombia-track/internal/config"
)

func testClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	host, port, ok := strings.Cut(mr.Addr(), ":")
	require.True(t, ok)

	client, err := NewClient(&config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	return client, mr
}

func TestPermisoCacheRoundTrip(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	_, err := client.GetPermiso(ctx, "usuario", "/vehiculos", "ver")
	assert.Equal(t, redis.Nil, err, "uncached verdicts must read as a miss")

	require.NoError(t, client.SetPermiso(ctx, "usuario", "/vehiculos", "ver", true, time.Minute))
	require.NoError(t, client.SetPermiso(ctx, "usuario", "/vehiculos", "crear", false, time.Minute))

	value, err := client.GetPermiso(ctx, "usuario", "/vehiculos", "ver")
	require.NoError(t, err)
	assert.Equal(t, "1", value)

	value, err = client.GetPermiso(ctx, "usuario", "/vehiculos", "crear")
	require.NoError(t, err)
	assert.Equal(t, "0", value)
}

func TestInvalidatePermisosDropsOnlyThatRole(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	require.NoError(t, client.SetPermiso(ctx, "usuario", "/vehiculos", "ver", true, time.Minute))
	require.NoError(t, client.SetPermiso(ctx, "supervisor", "/vehiculos", "ver", true, time.Minute))

	require.NoError(t, client.InvalidatePermisos(ctx, "usuario"))

	_, err := client.GetPermiso(ctx, "usuario", "/vehiculos", "ver")
	assert.Equal(t, redis.Nil, err)

	value, err := client.GetPermiso(ctx, "supervisor", "/vehiculos", "ver")
	require.NoError(t, err)
	assert.Equal(t, "1", value)
}

func TestInvalidateAllPermisosCoversCustomRoles(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	// Roles are free text, so the cache may hold verdicts for roles the
	// application never shipped.
	for _, rol := range []string{"usuario", "supervisor", "contador"} {
		require.NoError(t, client.SetPermiso(ctx, rol, "/gastos", "ver", true, time.Minute))
	}
	require.NoError(t, client.RevokeToken(ctx, "jti-keep", time.Minute))

	require.NoError(t, client.InvalidateAllPermisos(ctx))

	for _, rol := range []string{"usuario", "supervisor", "contador"} {
		_, err := client.GetPermiso(ctx, rol, "/gastos", "ver")
		assert.Equal(t, redis.Nil, err, "verdicts for %s must be gone", rol)
	}

	revoked, err := client.IsTokenRevoked(ctx, "jti-keep")
	require.NoError(t, err)
	assert.True(t, revoked, "only permiso keys are dropped")
}

func TestTokenRevocation(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	revoked, err := client.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, client.RevokeToken(ctx, "jti-1", time.Minute))

	revoked, err = client.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestResetCodeIsSingleUse(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	require.NoError(t, client.SetResetCode(ctx, "CODE123", "user-id", time.Minute))

	userID, err := client.TakeResetCode(ctx, "CODE123")
	require.NoError(t, err)
	assert.Equal(t, "user-id", userID)

	_, err = client.TakeResetCode(ctx, "CODE123")
	assert.Error(t, err, "a consumed code cannot be replayed")
}

func TestResetCodeExpires(t *testing.T) {
	client, mr := testClient(t)
	ctx := context.Background()

	require.NoError(t, client.SetResetCode(ctx, "CODE123", "user-id", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := client.TakeResetCode(ctx, "CODE123")
	assert.Error(t, err)
}

func TestSessionInvalidationPubSub(t *testing.T) {
	client, _ := testClient(t)
	ctx := context.Background()

	pubsub := client.SubscribeSessionInvalidations(ctx)
	defer pubsub.Close()

	// Wait for the subscription to be established before publishing.
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, client.PublishSessionInvalidation(ctx, "user-42"))

	select {
	case msg := <-pubsub.Channel():
		assert.Equal(t, SessionChannel, msg.Channel)
		assert.Equal(t, "user-42", msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("no invalidation event received")
	}
}
