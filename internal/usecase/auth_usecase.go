package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/converter"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/repository"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/service"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountRejected    = errors.New("account has been rejected")
)

type AuthUsecase interface {
	RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error)
	RegisterClinician(ctx context.Context, req *dto.RegisterClinicianRequest) (*dto.UserResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, caller *entity.Identity, refreshToken string) error
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type authUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	userRepo        repository.UserRepository
	profileRepo     repository.UserProfileRepository
	patientRepo     repository.PatientRepository
	institutionRepo repository.InstitutionRepository
	jwtService      *jwt.JWTService
	tokens          service.TokenStore
	auditService    service.AuditService
	bcryptCost      int
}

func NewAuthUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	profileRepo repository.UserProfileRepository,
	patientRepo repository.PatientRepository,
	institutionRepo repository.InstitutionRepository,
	jwtService *jwt.JWTService,
	tokens service.TokenStore,
	auditService service.AuditService,
) AuthUsecase {
	return &authUsecase{
		db:              db,
		log:             log,
		userRepo:        userRepo,
		profileRepo:     profileRepo,
		patientRepo:     patientRepo,
		institutionRepo: institutionRepo,
		jwtService:      jwtService,
		tokens:          tokens,
		auditService:    auditService,
		bcryptCost:      bcrypt.DefaultCost,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// RegisterPatient creates the login, its patient profile and an unassigned patient record
// in one transaction. Patients need no approval.
func (u *authUsecase) RegisterPatient(ctx context.Context, req *dto.RegisterPatientRequest) (*dto.UserResponse, error) {
	var dob *time.Time
	if req.DateOfBirth != "" {
		parsed, err := time.Parse(dateLayout, req.DateOfBirth)
		if err != nil {
			return nil, ErrInvalidDateFormat
		}
		dob = &parsed
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	institution, err := u.patientInstitution(ctx, tx, req.InstitutionID)
	if err != nil {
		return nil, err
	}

	user, err := u.createUser(ctx, tx, req.Email, req.Password, req.FullName, nil)
	if err != nil {
		return nil, err
	}

	profile := &entity.UserProfile{
		UserID:        user.ID,
		Role:          entity.RolePatient,
		InstitutionID: &institution.ID,
	}
	if err := u.profileRepo.Create(ctx, tx, profile); err != nil {
		u.log.Warnf("Failed to create user profile: %+v", err)
		return nil, err
	}

	patient := &entity.Patient{
		UserID:        &user.ID,
		InstitutionID: institution.ID,
		Name:          req.FullName,
		DateOfBirth:   dob,
		Gender:        req.Gender,
		Condition:     req.Condition,
		RiskLevel:     entity.RiskLow,
	}
	if err := u.patientRepo.Create(ctx, tx, patient); err != nil {
		u.log.Warnf("Failed to create patient record: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(),
		entity.JSON{"role": string(entity.RolePatient), "institution_id": institution.ID.String()},
	); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Errorf("Failed commit transaction: %+v", err)
		return nil, err
	}

	user.Profile = profile
	return converter.UserToResponse(user), nil
}

// RegisterClinician creates a clinician bound to an existing institution, pending approval.
func (u *authUsecase) RegisterClinician(ctx context.Context, req *dto.RegisterClinicianRequest) (*dto.UserResponse, error) {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	institution, err := u.institutionRepo.FindByID(ctx, tx, req.InstitutionID)
	if err != nil {
		u.log.Warnf("Failed to find institution: %+v", err)
		return nil, err
	}
	if institution == nil {
		return nil, ErrInstitutionNotFound
	}

	pending := entity.ApprovalPending
	user, err := u.createUser(ctx, tx, req.Email, req.Password, req.FullName, &pending)
	if err != nil {
		return nil, err
	}

	profile := &entity.UserProfile{
		UserID:        user.ID,
		Role:          entity.RoleClinician,
		InstitutionID: &institution.ID,
	}
	if err := u.profileRepo.Create(ctx, tx, profile); err != nil {
		if isForeignKeyError(err, "institution") {
			return nil, ErrInstitutionNotFound
		}
		u.log.Warnf("Failed to create user profile: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogCreate(ctx, tx, &user.ID, entity.AuditActionUserRegister, "user", user.ID.String(),
		entity.JSON{"role": string(entity.RoleClinician), "institution_id": institution.ID.String()},
	); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Errorf("Failed commit transaction: %+v", err)
		return nil, err
	}

	user.Profile = profile
	return converter.UserToResponse(user), nil
}

func (u *authUsecase) patientInstitution(ctx context.Context, tx *gorm.DB, requested *uuid.UUID) (*entity.Institution, error) {
	if requested != nil {
		institution, err := u.institutionRepo.FindByID(ctx, tx, *requested)
		if err != nil {
			u.log.Warnf("Failed to find institution: %+v", err)
			return nil, err
		}
		if institution == nil {
			return nil, ErrInstitutionNotFound
		}
		return institution, nil
	}

	institution, err := u.institutionRepo.FindDefault(ctx, tx)
	if err != nil {
		u.log.Warnf("Failed to find default institution: %+v", err)
		return nil, err
	}
	if institution == nil {
		return nil, ErrNoDefaultInstitution
	}
	return institution, nil
}

func (u *authUsecase) createUser(ctx context.Context, tx *gorm.DB, email, password, fullName string, approval *entity.ApprovalStatus) (*entity.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), u.bcryptCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	user := &entity.User{
		Email:          normalizeEmail(email),
		Password:       string(hashedPassword),
		FullName:       fullName,
		ApprovalStatus: approval,
	}

	if err := u.userRepo.Create(ctx, tx, user); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrEmailAlreadyExists
		}
		u.log.Warnf("Failed to create user: %+v", err)
		return nil, err
	}

	return user, nil
}

func (u *authUsecase) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := u.userRepo.FindByEmail(ctx, u.db, normalizeEmail(req.Email))
	if err != nil {
		u.log.Warnf("Failed to find user by email: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.ApprovalStatus != nil && *user.ApprovalStatus == entity.ApprovalRejected {
		return nil, ErrAccountRejected
	}

	tokens, err := u.issueTokens(ctx, user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	if err := u.auditService.LogEvent(ctx, u.db.WithContext(ctx), &user.ID, entity.AuditActionUserLogin, entity.JSON{"email": user.Email}); err != nil {
		u.log.Warnf("Failed to audit login of %s: %+v", user.ID, err)
	}

	return tokens, nil
}

// Logout revokes the access token in use and, when supplied, the caller's refresh token.
func (u *authUsecase) Logout(ctx context.Context, caller *entity.Identity, refreshToken string) error {
	if err := u.tokens.Delete(ctx, jwt.AccessToken, caller.UserID, caller.TokenID); err != nil {
		u.log.Warnf("Failed to delete access token: %+v", err)
		return err
	}

	if refreshToken != "" {
		claims, err := u.jwtService.ValidateTyped(refreshToken, jwt.RefreshToken)
		if err == nil && claims.UserID == caller.UserID {
			if err := u.tokens.Delete(ctx, jwt.RefreshToken, claims.UserID, claims.TokenID); err != nil {
				u.log.Warnf("Failed to delete refresh token: %+v", err)
				return err
			}
		}
	}

	if err := u.auditService.LogEvent(ctx, u.db.WithContext(ctx), &caller.UserID, entity.AuditActionUserLogout, nil); err != nil {
		u.log.Warnf("Failed to audit logout of %s: %+v", caller.UserID, err)
	}

	return nil
}

// RefreshToken rotates the pair: the presented refresh token is consumed even if issuing fails.
func (u *authUsecase) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	claims, err := u.jwtService.ValidateTyped(req.RefreshToken, jwt.RefreshToken)
	if err != nil {
		return nil, service.ErrInvalidToken
	}

	exists, err := u.tokens.Exists(ctx, jwt.RefreshToken, claims.UserID, claims.TokenID)
	if err != nil {
		u.log.Warnf("Failed to check refresh token: %+v", err)
		return nil, err
	}
	if !exists {
		return nil, service.ErrTokenRevoked
	}

	if err := u.tokens.Delete(ctx, jwt.RefreshToken, claims.UserID, claims.TokenID); err != nil {
		u.log.Warnf("Failed to delete old refresh token: %+v", err)
		return nil, err
	}

	return u.issueTokens(ctx, claims.UserID, claims.Email)
}

func (u *authUsecase) issueTokens(ctx context.Context, userID uuid.UUID, email string) (*dto.TokenResponse, error) {
	accessToken, accessTokenID, err := u.jwtService.GenerateAccessToken(userID, email)
	if err != nil {
		u.log.Warnf("Failed to generate access token: %+v", err)
		return nil, err
	}

	refreshToken, refreshTokenID, err := u.jwtService.GenerateRefreshToken(userID, email)
	if err != nil {
		u.log.Warnf("Failed to generate refresh token: %+v", err)
		return nil, err
	}

	if err := u.tokens.Save(ctx, jwt.AccessToken, userID, accessTokenID, u.jwtService.GetAccessExpiry()); err != nil {
		u.log.Warnf("Failed to store access token: %+v", err)
		return nil, err
	}
	if err := u.tokens.Save(ctx, jwt.RefreshToken, userID, refreshTokenID, u.jwtService.GetRefreshExpiry()); err != nil {
		u.log.Warnf("Failed to store refresh token: %+v", err)
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(u.jwtService.GetAccessExpiry().Seconds()),
	}, nil
}

func (u *authUsecase) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := u.userRepo.FindByID(ctx, u.db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user by ID: %+v", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	return converter.UserToResponse(user), nil
}
