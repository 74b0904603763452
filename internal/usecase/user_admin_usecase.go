package usecase

import (
	"context"
	"errors"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/converter"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/delivery/dto"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/entity"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/policy"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/domain/repository"
	"github.com/nexxintel-tech/VeriHealthMVP-sub000/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrInvalidRole             = errors.New("invalid role")
	ErrInvalidApprovalStatus   = errors.New("invalid approval status")
	ErrInstitutionRequired     = errors.New("clinicians and institution admins must belong to an institution")
	ErrCannotGrantAdmin        = errors.New("only a system admin can grant the admin role")
	ErrUserOutsideInstitution  = errors.New("user belongs to another institution")
	ErrCannotChangeOwnAccount  = errors.New("cannot change your own role or approval")
	ErrApprovalNotApplicable   = errors.New("patients do not require approval")
	ErrUserProfileNotAvailable = errors.New("user has no profile")
)

type UserAdminUsecase interface {
	ListPending(ctx context.Context, caller *entity.Identity) ([]dto.UserResponse, error)
	SetApproval(ctx context.Context, caller *entity.Identity, userID uuid.UUID, status entity.ApprovalStatus) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, caller *entity.Identity, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

type userAdminUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	userRepo        repository.UserRepository
	profileRepo     repository.UserProfileRepository
	institutionRepo repository.InstitutionRepository
	tokens          service.TokenStore
	auditService    service.AuditService
}

func NewUserAdminUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	userRepo repository.UserRepository,
	profileRepo repository.UserProfileRepository,
	institutionRepo repository.InstitutionRepository,
	tokens service.TokenStore,
	auditService service.AuditService,
) UserAdminUsecase {
	return &userAdminUsecase{
		db:              db,
		log:             log,
		userRepo:        userRepo,
		profileRepo:     profileRepo,
		institutionRepo: institutionRepo,
		tokens:          tokens,
		auditService:    auditService,
	}
}

// adminInstitution returns nil for a system admin (no tenant bound) and the caller's
// institution for an institution admin.
func adminInstitution(caller *entity.Identity) (*uuid.UUID, error) {
	switch caller.Role {
	case entity.RoleAdmin:
		return nil, nil
	case entity.RoleInstitutionAdmin:
		if caller.InstitutionID == nil {
			return nil, policy.ErrNotLinkedToInstitution
		}
		return caller.InstitutionID, nil
	}
	return nil, policy.ErrDenied
}

func (u *userAdminUsecase) ListPending(ctx context.Context, caller *entity.Identity) ([]dto.UserResponse, error) {
	institutionID, err := adminInstitution(caller)
	if err != nil {
		return nil, err
	}

	users, err := u.userRepo.FindPending(ctx, u.db, institutionID)
	if err != nil {
		u.log.Warnf("Failed to list pending users: %+v", err)
		return nil, err
	}

	return converter.UsersToResponses(users), nil
}

// loadManagedUser fetches the target and checks the caller may manage it.
func (u *userAdminUsecase) loadManagedUser(ctx context.Context, db *gorm.DB, caller *entity.Identity, userID uuid.UUID) (*entity.User, error) {
	institutionID, err := adminInstitution(caller)
	if err != nil {
		return nil, err
	}
	if userID == caller.UserID {
		return nil, ErrCannotChangeOwnAccount
	}

	user, err := u.userRepo.FindByID(ctx, db, userID)
	if err != nil {
		u.log.Warnf("Failed to find user %s: %+v", userID, err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if institutionID != nil {
		if user.Profile == nil || user.Profile.InstitutionID == nil || *user.Profile.InstitutionID != *institutionID {
			return nil, ErrUserOutsideInstitution
		}
		if user.Profile.Role == entity.RoleAdmin {
			return nil, ErrCannotGrantAdmin
		}
	}

	return user, nil
}

func (u *userAdminUsecase) SetApproval(ctx context.Context, caller *entity.Identity, userID uuid.UUID, status entity.ApprovalStatus) (*dto.UserResponse, error) {
	if !status.IsValid() {
		return nil, ErrInvalidApprovalStatus
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.loadManagedUser(ctx, tx, caller, userID)
	if err != nil {
		return nil, err
	}
	if user.Profile != nil && user.Profile.Role == entity.RolePatient {
		return nil, ErrApprovalNotApplicable
	}

	var previous interface{}
	if user.ApprovalStatus != nil {
		previous = string(*user.ApprovalStatus)
	}

	affected, err := u.userRepo.UpdateApprovalStatus(ctx, tx, userID, status)
	if err != nil {
		u.log.Warnf("Failed to update approval status: %+v", err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrUserNotFound
	}

	if err := u.auditService.LogUpdate(ctx, tx, &caller.UserID, entity.AuditActionUserApproval, "user", userID.String(),
		entity.JSON{"approval_status": previous},
		entity.JSON{"approval_status": string(status)},
	); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Errorf("Failed commit transaction: %+v", err)
		return nil, err
	}

	if status == entity.ApprovalRejected {
		u.revokeSessions(ctx, userID)
	}

	user.ApprovalStatus = &status
	return converter.UserToResponse(user), nil
}

// UpdateProfile sets role and institution together. Clinicians and institution admins
// must end up bound to an institution.
func (u *userAdminUsecase) UpdateProfile(ctx context.Context, caller *entity.Identity, userID uuid.UUID, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	role := entity.Role(req.Role)
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	if role.RequiresInstitution() && req.InstitutionID == nil {
		return nil, ErrInstitutionRequired
	}

	callerInstitution, err := adminInstitution(caller)
	if err != nil {
		return nil, err
	}
	if callerInstitution != nil {
		if role == entity.RoleAdmin {
			return nil, ErrCannotGrantAdmin
		}
		if req.InstitutionID == nil || *req.InstitutionID != *callerInstitution {
			return nil, ErrUserOutsideInstitution
		}
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	user, err := u.loadManagedUser(ctx, tx, caller, userID)
	if err != nil {
		return nil, err
	}

	if req.InstitutionID != nil {
		institution, err := u.institutionRepo.FindByID(ctx, tx, *req.InstitutionID)
		if err != nil {
			u.log.Warnf("Failed to find institution: %+v", err)
			return nil, err
		}
		if institution == nil {
			return nil, ErrInstitutionNotFound
		}
	}

	profile := user.Profile
	if profile == nil {
		return nil, ErrUserProfileNotAvailable
	}
	before := entity.JSON{"role": string(profile.Role), "institution_id": uuidOrNil(profile.InstitutionID)}

	profile.Role = role
	profile.InstitutionID = req.InstitutionID
	if !profile.HasValidBinding() {
		return nil, ErrInstitutionRequired
	}

	if err := u.profileRepo.Update(ctx, tx, profile); err != nil {
		u.log.Warnf("Failed to update user profile: %+v", err)
		return nil, err
	}

	if err := u.auditService.LogUpdate(ctx, tx, &caller.UserID, entity.AuditActionProfileUpdate, "user_profile", userID.String(),
		before,
		entity.JSON{"role": string(profile.Role), "institution_id": uuidOrNil(profile.InstitutionID)},
	); err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		u.log.Errorf("Failed commit transaction: %+v", err)
		return nil, err
	}

	return converter.UserToResponse(user), nil
}

// revokeSessions is best effort: a failure leaves tokens valid until expiry, but the
// identity lookup already reflects the new state.
func (u *userAdminUsecase) revokeSessions(ctx context.Context, userID uuid.UUID) {
	if err := u.tokens.RevokeAll(ctx, userID); err != nil {
		u.log.Warnf("Failed to revoke sessions of %s: %+v", userID, err)
	}
}

func uuidOrNil(id *uuid.UUID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}
