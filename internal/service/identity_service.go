package service

import (
	"context"
	"errors"
	"time"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/repository"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidToken    = errors.New("invalid or expired token")
	ErrTokenRevoked    = errors.New("token has been revoked")
	ErrAccountMissing  = errors.New("account no longer exists")
	ErrProfileNotFound = errors.New("account has no role assigned")
)

// TokenStore is the allow-list of issued tokens.
type TokenStore interface {
	Save(ctx context.Context, kind jwt.TokenType, userID uuid.UUID, tokenID string, ttl time.Duration) error
	Exists(ctx context.Context, kind jwt.TokenType, userID uuid.UUID, tokenID string) (bool, error)
	Delete(ctx context.Context, kind jwt.TokenType, userID uuid.UUID, tokenID string) error
	RevokeAll(ctx context.Context, userID uuid.UUID) error
}

// IdentityService turns a bearer token into the caller's current identity.
// Role, institution and approval always come from the database, never from the token.
type IdentityService interface {
	Verify(ctx context.Context, token string) (*entity.Identity, error)
}

type identityService struct {
	db         *gorm.DB
	log        *logrus.Logger
	jwtService *jwt.JWTService
	tokens     TokenStore
	userRepo   repository.UserRepository
}

func NewIdentityService(
	db *gorm.DB,
	log *logrus.Logger,
	jwtService *jwt.JWTService,
	tokens TokenStore,
	userRepo repository.UserRepository,
) IdentityService {
	return &identityService{
		db:         db,
		log:        log,
		jwtService: jwtService,
		tokens:     tokens,
		userRepo:   userRepo,
	}
}

func (s *identityService) Verify(ctx context.Context, token string) (*entity.Identity, error) {
	claims, err := s.jwtService.ValidateTyped(token, jwt.AccessToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	ok, err := s.tokens.Exists(ctx, jwt.AccessToken, claims.UserID, claims.TokenID)
	if err != nil {
		s.log.Warnf("Failed to check access token: %+v", err)
		return nil, err
	}
	if !ok {
		return nil, ErrTokenRevoked
	}

	user, err := s.userRepo.FindByID(ctx, s.db, claims.UserID)
	if err != nil {
		s.log.Warnf("Failed to load user for identity: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrAccountMissing
	}
	if user.Profile == nil {
		return nil, ErrProfileNotFound
	}

	return &entity.Identity{
		UserID:         user.ID,
		Email:          user.Email,
		EmailConfirmed: user.EmailConfirmedAt != nil,
		Role:           user.Profile.Role,
		InstitutionID:  user.Profile.InstitutionID,
		ApprovalStatus: user.ApprovalStatus,
		TokenID:        claims.TokenID,
	}, nil
}
