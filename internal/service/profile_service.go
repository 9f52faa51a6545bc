package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/dto"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/media"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
)

type profileStore interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	UpdateFields(ctx context.Context, id string, fullName, phoneNumber, imagePath *string) error
}

type emailLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type passwordSetter interface {
	SetPassword(ctx context.Context, userID, newPassword string) error
}

type avatarStore interface {
	Put(key string, data []byte, overwrite bool) (string, error)
	OwnAvatarURL(key string, now time.Time) string
}

// ProfileService serves the caller's own profile and its multipart update.
type ProfileService struct {
	profiles  profileStore
	users     emailLookup
	passwords passwordSetter
	media     avatarStore
	cache     *CacheService
	logger    *zap.Logger
	now       func() time.Time
}

// NewProfileService constructs a ProfileService instance.
func NewProfileService(profiles profileStore, users emailLookup, passwords passwordSetter, avatars avatarStore, cache *CacheService, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		profiles:  profiles,
		users:     users,
		passwords: passwords,
		media:     avatars,
		cache:     cache,
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns the caller's profile. The avatar URL is the caller's own view,
// so it carries the cache-busting parameter.
func (s *ProfileService) Get(ctx context.Context, callerID string) (*dto.ProfileView, error) {
	profile, err := s.profiles.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	user, err := s.users.FindByID(ctx, callerID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load account")
	}

	view := &dto.ProfileView{
		ID:          profile.ID,
		FullName:    profile.FullName,
		PhoneNumber: profile.PhoneNumber,
		Role:        profile.Role,
	}
	if user != nil {
		view.Email = user.Email
	}
	if s.media != nil {
		view.AvatarURL = s.media.OwnAvatarURL(profile.AvatarPath(), s.now())
	}
	return view, nil
}

// Update applies the profile form in a fixed order: avatar first, then
// password, then display fields. A failing step stops the sequence, leaving
// the earlier steps applied; the client re-submits what remains.
func (s *ProfileService) Update(ctx context.Context, callerID string, req dto.UpdateProfileRequest) (*dto.ProfileView, error) {
	profile, err := s.profiles.FindByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	var newImagePath *string
	if len(req.Avatar) > 0 {
		img, err := media.Decode(req.Avatar, req.AvatarMIME, "")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unreadable avatar image")
		}
		encoded, err := media.SquareJPEG(img, media.Rect(req.Crop))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to process avatar")
		}

		// Stable per-user key, overwritten in place. Stored references
		// never change; the cache buster on the own-profile URL makes the
		// new bytes visible.
		key := fmt.Sprintf("avatars/%s/avatar.jpg", callerID)
		stored, err := s.media.Put(key, encoded, true)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store avatar")
		}
		newImagePath = &stored
	}

	if pw := strings.TrimSpace(req.NewPassword); pw != "" {
		if err := s.passwords.SetPassword(ctx, callerID, pw); err != nil {
			return nil, err
		}
	}

	fullName := profile.FullName
	if draft := strings.TrimSpace(req.FullName); draft != "" {
		fullName = &draft
	}
	phoneNumber := profile.PhoneNumber
	if draft := strings.TrimSpace(req.PhoneNumber); draft != "" {
		phoneNumber = &draft
	}
	if err := s.profiles.UpdateFields(ctx, callerID, fullName, phoneNumber, newImagePath); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	if s.cache.Enabled() {
		// Name and avatar surface on program views.
		_ = s.cache.Invalidate(ctx, "programs:*")
		_ = s.cache.Invalidate(ctx, dashboardKey(callerID))
	}

	return s.Get(ctx, callerID)
}
