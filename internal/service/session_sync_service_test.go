package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accountWithStatus(status entity.ApprovalStatus) *entity.User {
	return &entity.User{ID: uuid.New(), ApprovalStatus: &status}
}

func newSyncRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionSync_RevokesOnlyRejectedAccounts(t *testing.T) {
	_, client := newSyncRedis(t)

	users := map[uuid.UUID]*entity.User{}
	var rejected []uuid.UUID
	for i := 0; i < sessionSyncBatchSize+3; i++ {
		u := accountWithStatus(entity.ApprovalRejected)
		users[u.ID] = u
		rejected = append(rejected, u.ID)
	}
	for _, status := range []entity.ApprovalStatus{entity.ApprovalApproved, entity.ApprovalPending} {
		u := accountWithStatus(status)
		users[u.ID] = u
	}
	patient := &entity.User{ID: uuid.New()}
	users[patient.ID] = patient

	tokens := newMemTokens()
	svc := NewSessionSyncService(nil, client, quietLogger(), &fakeUsers{users: users}, tokens)

	swept, err := svc.SyncOnStartup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, len(rejected), swept)
	assert.ElementsMatch(t, rejected, tokens.revoked)
}

func TestSessionSync_NothingToDo(t *testing.T) {
	_, client := newSyncRedis(t)
	tokens := newMemTokens()
	svc := NewSessionSyncService(nil, client, quietLogger(), &fakeUsers{users: map[uuid.UUID]*entity.User{}}, tokens)

	swept, err := svc.SyncOnStartup(context.Background())
	require.NoError(t, err)
	assert.Zero(t, swept)
	assert.Empty(t, tokens.revoked)
}

func TestSessionSync_RedisDown(t *testing.T) {
	mr, client := newSyncRedis(t)
	mr.Close()

	svc := NewSessionSyncService(nil, client, quietLogger(), &fakeUsers{}, newMemTokens())
	_, err := svc.SyncOnStartup(context.Background())
	assert.Error(t, err)
}

func TestSessionSync_Errors(t *testing.T) {
	boom := errors.New("boom")

	t.Run("query fails", func(t *testing.T) {
		_, client := newSyncRedis(t)
		svc := NewSessionSyncService(nil, client, quietLogger(), &fakeUsers{err: boom}, newMemTokens())
		_, err := svc.SyncOnStartup(context.Background())
		assert.ErrorIs(t, err, boom)
	})

	t.Run("revoke fails", func(t *testing.T) {
		_, client := newSyncRedis(t)
		u := accountWithStatus(entity.ApprovalRejected)
		tokens := newMemTokens()
		tokens.err = boom
		svc := NewSessionSyncService(nil, client, quietLogger(), &fakeUsers{users: map[uuid.UUID]*entity.User{u.ID: u}}, tokens)
		swept, err := svc.SyncOnStartup(context.Background())
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, swept)
	})
}
