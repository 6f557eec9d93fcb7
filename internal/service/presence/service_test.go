package presence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) (*Service, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewService(client, time.Minute), mr
}

func TestHeartbeatMarksOnline(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	online, err := svc.IsOnline(ctx, userID)
	require.NoError(t, err)
	assert.False(t, online)

	require.NoError(t, svc.Heartbeat(ctx, userID))

	online, err = svc.IsOnline(ctx, userID)
	require.NoError(t, err)
	assert.True(t, online)
}

func TestPresenceExpires(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.Heartbeat(ctx, userID))
	mr.FastForward(2 * time.Minute)

	online, err := svc.IsOnline(ctx, userID)
	require.NoError(t, err)
	assert.False(t, online)
}

func TestOfflineClearsImmediately(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, svc.Heartbeat(ctx, userID))
	require.NoError(t, svc.Offline(ctx, userID))

	online, err := svc.IsOnline(ctx, userID)
	require.NoError(t, err)
	assert.False(t, online)
}

func TestOnlineUsers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	first := uuid.New()
	second := uuid.New()

	require.NoError(t, svc.Heartbeat(ctx, first))
	require.NoError(t, svc.Heartbeat(ctx, second))

	online, err := svc.OnlineUsers(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{first, second}, online)
}
