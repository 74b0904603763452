package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/config"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type memTokens struct {
	mu      sync.Mutex
	keys    map[string]bool
	revoked []uuid.UUID
	err     error
}

func newMemTokens() *memTokens { return &memTokens{keys: map[string]bool{}} }

func (m *memTokens) key(kind jwt.TokenType, userID uuid.UUID, tokenID string) string {
	return string(kind) + ":" + userID.String() + ":" + tokenID
}

func (m *memTokens) Save(_ context.Context, kind jwt.TokenType, userID uuid.UUID, tokenID string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys[m.key(kind, userID, tokenID)] = true
	return nil
}

func (m *memTokens) Exists(_ context.Context, kind jwt.TokenType, userID uuid.UUID, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keys[m.key(kind, userID, tokenID)], nil
}

func (m *memTokens) Delete(_ context.Context, kind jwt.TokenType, userID uuid.UUID, tokenID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.keys, m.key(kind, userID, tokenID))
	return nil
}

func (m *memTokens) RevokeAll(_ context.Context, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.revoked = append(m.revoked, userID)
	m.keys = map[string]bool{}
	return nil
}

type fakeUsers struct {
	users map[uuid.UUID]*entity.User
	err   error
}

func (f *fakeUsers) Create(context.Context, *gorm.DB, *entity.User) error { return nil }
func (f *fakeUsers) FindByEmail(context.Context, *gorm.DB, string) (*entity.User, error) {
	return nil, nil
}
func (f *fakeUsers) FindByID(_ context.Context, _ *gorm.DB, id uuid.UUID) (*entity.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}
func (f *fakeUsers) FindPending(context.Context, *gorm.DB, *uuid.UUID) ([]entity.User, error) {
	return nil, nil
}
func (f *fakeUsers) UpdateApprovalStatus(context.Context, *gorm.DB, uuid.UUID, entity.ApprovalStatus) (int64, error) {
	return 0, nil
}

// FindIDsByApprovalStatus mirrors the keyset paging of the SQL implementation.
func (f *fakeUsers) FindIDsByApprovalStatus(_ context.Context, _ *gorm.DB, status entity.ApprovalStatus, afterID uuid.UUID, limit int) ([]uuid.UUID, error) {
	if f.err != nil {
		return nil, f.err
	}
	var ids []uuid.UUID
	for id, u := range f.users {
		if u.ApprovalStatus != nil && *u.ApprovalStatus == status && bytes.Compare(id[:], afterID[:]) > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return bytes.Compare(ids[i][:], ids[j][:]) < 0 })
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

type fakeAuditRepo struct {
	logs []*entity.AuditLog
	err  error
}

func (f *fakeAuditRepo) Create(_ context.Context, _ *gorm.DB, log *entity.AuditLog) error {
	if f.err != nil {
		return f.err
	}
	f.logs = append(f.logs, log)
	return nil
}
func (f *fakeAuditRepo) FindAll(context.Context, *gorm.DB, int, int) ([]entity.AuditLog, int64, error) {
	return nil, 0, nil
}
func (f *fakeAuditRepo) FindByID(context.Context, *gorm.DB, int64) (*entity.AuditLog, error) {
	return nil, nil
}

func newJWT() *jwt.JWTService {
	return jwt.NewJWTService(config.JWTConfig{Secret: "s3cret", AccessExpiry: time.Minute, RefreshExpiry: time.Hour})
}

func clinicianUser(inst uuid.UUID) *entity.User {
	approved := entity.ApprovalApproved
	now := time.Now()
	id := uuid.New()
	return &entity.User{
		ID:               id,
		Email:            "doc@example.com",
		ApprovalStatus:   &approved,
		EmailConfirmedAt: &now,
		Profile:          &entity.UserProfile{UserID: id, Role: entity.RoleClinician, InstitutionID: &inst},
	}
}

func TestVerify_ResolvesIdentityFromDatabase(t *testing.T) {
	jwtSvc := newJWT()
	tokens := newMemTokens()
	inst := uuid.New()
	user := clinicianUser(inst)

	svc := NewIdentityService(nil, quietLogger(), jwtSvc, tokens, &fakeUsers{users: map[uuid.UUID]*entity.User{user.ID: user}})

	token, jti, err := jwtSvc.GenerateAccessToken(user.ID, user.Email)
	require.NoError(t, err)
	require.NoError(t, tokens.Save(context.Background(), jwt.AccessToken, user.ID, jti, time.Minute))

	identity, err := svc.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, entity.RoleClinician, identity.Role)
	require.NotNil(t, identity.InstitutionID)
	assert.Equal(t, inst, *identity.InstitutionID)
	assert.True(t, identity.EmailConfirmed)
	assert.True(t, identity.IsApproved())
	assert.Equal(t, jti, identity.TokenID)
}

func TestVerify_Errors(t *testing.T) {
	jwtSvc := newJWT()
	user := clinicianUser(uuid.New())
	ctx := context.Background()

	t.Run("garbage token", func(t *testing.T) {
		svc := NewIdentityService(nil, quietLogger(), jwtSvc, newMemTokens(), &fakeUsers{})
		_, err := svc.Verify(ctx, "not-a-jwt")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("refresh token rejected", func(t *testing.T) {
		tokens := newMemTokens()
		token, jti, _ := jwtSvc.GenerateRefreshToken(user.ID, user.Email)
		_ = tokens.Save(ctx, jwt.RefreshToken, user.ID, jti, time.Minute)
		svc := NewIdentityService(nil, quietLogger(), jwtSvc, tokens, &fakeUsers{})
		_, err := svc.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("revoked", func(t *testing.T) {
		token, _, _ := jwtSvc.GenerateAccessToken(user.ID, user.Email)
		svc := NewIdentityService(nil, quietLogger(), jwtSvc, newMemTokens(), &fakeUsers{})
		_, err := svc.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("user deleted", func(t *testing.T) {
		tokens := newMemTokens()
		token, jti, _ := jwtSvc.GenerateAccessToken(user.ID, user.Email)
		_ = tokens.Save(ctx, jwt.AccessToken, user.ID, jti, time.Minute)
		svc := NewIdentityService(nil, quietLogger(), jwtSvc, tokens, &fakeUsers{users: map[uuid.UUID]*entity.User{}})
		_, err := svc.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrAccountMissing)
	})

	t.Run("no profile", func(t *testing.T) {
		tokens := newMemTokens()
		bare := &entity.User{ID: uuid.New(), Email: "x@example.com"}
		token, jti, _ := jwtSvc.GenerateAccessToken(bare.ID, bare.Email)
		_ = tokens.Save(ctx, jwt.AccessToken, bare.ID, jti, time.Minute)
		svc := NewIdentityService(nil, quietLogger(), jwtSvc, tokens, &fakeUsers{users: map[uuid.UUID]*entity.User{bare.ID: bare}})
		_, err := svc.Verify(ctx, token)
		assert.ErrorIs(t, err, ErrProfileNotFound)
	})

	t.Run("storage failure", func(t *testing.T) {
		tokens := newMemTokens()
		token, jti, _ := jwtSvc.GenerateAccessToken(user.ID, user.Email)
		_ = tokens.Save(ctx, jwt.AccessToken, user.ID, jti, time.Minute)
		boom := errors.New("db down")
		svc := NewIdentityService(nil, quietLogger(), jwtSvc, tokens, &fakeUsers{err: boom})
		_, err := svc.Verify(ctx, token)
		assert.ErrorIs(t, err, boom)
	})
}

func TestAuditService_WritesMetadata(t *testing.T) {
	repo := &fakeAuditRepo{}
	svc := NewAuditService(quietLogger(), repo)
	actor := uuid.New()

	err := svc.LogUpdate(context.Background(), nil, &actor, entity.AuditActionPatientClaim, "patient", "p-1", nil, map[string]string{"assigned_clinician_id": actor.String()})
	require.NoError(t, err)
	require.Len(t, repo.logs, 1)
	assert.Equal(t, entity.AuditActionPatientClaim, repo.logs[0].Action)
	assert.Equal(t, "p-1", repo.logs[0].Metadata["entity_id"])
	assert.Equal(t, &actor, repo.logs[0].UserID)
}

func TestAuditService_PropagatesFailure(t *testing.T) {
	boom := errors.New("insert failed")
	svc := NewAuditService(quietLogger(), &fakeAuditRepo{err: boom})

	err := svc.LogEvent(context.Background(), nil, nil, entity.AuditActionUserLogin, entity.JSON{"email": "a@b.c"})
	assert.ErrorIs(t, err, boom)
}
