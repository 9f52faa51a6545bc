package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/dto"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
)

type profileAdminRepository interface {
	ListAll(ctx context.Context) ([]models.Profile, error)
	UpdateRole(ctx context.Context, id string, role models.Role) (int64, error)
}

type userDeleter interface {
	Delete(ctx context.Context, id string) error
}

// UserAdminService implements the admin user management operations.
type UserAdminService struct {
	profiles  profileAdminRepository
	users     userDeleter
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserAdminService constructs a UserAdminService instance.
func NewUserAdminService(profiles profileAdminRepository, users userDeleter, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *UserAdminService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserAdminService{profiles: profiles, users: users, cache: cache, validator: validate, logger: logger}
}

// List returns every account grouped by role, each group ordered by
// creation time.
func (s *UserAdminService) List(ctx context.Context) (*dto.AdminUserList, error) {
	profiles, err := s.profiles.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}

	list := &dto.AdminUserList{
		Students: []dto.AdminUserEntry{},
		Teachers: []dto.AdminUserEntry{},
		Admins:   []dto.AdminUserEntry{},
	}
	for i := range profiles {
		p := &profiles[i]
		entry := dto.AdminUserEntry{ID: p.ID, FullName: p.FullName, Role: p.Role, CreatedAt: p.CreatedAt}
		switch p.Role {
		case models.RoleTeacher:
			list.Teachers = append(list.Teachers, entry)
		case models.RoleAdmin:
			list.Admins = append(list.Admins, entry)
		default:
			list.Students = append(list.Students, entry)
		}
	}
	return list, nil
}

// UpdateRole reassigns the role of an existing account. The change is
// effective on the target's very next request because authorization reads
// the stored role every time; cached views shaped for the old role are
// dropped here.
func (s *UserAdminService) UpdateRole(ctx context.Context, req dto.UpdateRoleRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "user_id and a valid role are required")
	}

	if _, err := s.profiles.UpdateRole(ctx, req.UserID, req.Role); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update role")
	}

	s.cache.InvalidateCallerViews(ctx, req.UserID)
	s.logger.Info("role updated", zap.String("user_id", req.UserID), zap.String("role", string(req.Role)))
	return nil
}

// Delete removes the account. The store cascades the profile, the
// account's enrollments and any programs it taught.
func (s *UserAdminService) Delete(ctx context.Context, userID string) error {
	if userID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "user_id is required")
	}

	if err := s.users.Delete(ctx, userID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}

	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, "programs:*")
		_ = s.cache.Invalidate(ctx, dashboardKey(userID))
	}
	s.logger.Info("user deleted", zap.String("user_id", userID))
	return nil
}
