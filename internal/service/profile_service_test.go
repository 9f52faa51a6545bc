package service

import (
	"bytes"
	"context"
	"database/sql"
	"image"
	"image/jpeg"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hifzhub/tahfiz-enrollment-api/internal/dto"
	"github.com/hifzhub/tahfiz-enrollment-api/internal/models"
	appErrors "github.com/hifzhub/tahfiz-enrollment-api/pkg/errors"
)

type mockProfileStore struct {
	profiles map[string]*models.Profile
	updates  []profileUpdate
}

type profileUpdate struct {
	fullName    *string
	phoneNumber *string
	imagePath   *string
}

func (m *mockProfileStore) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	if p, ok := m.profiles[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockProfileStore) UpdateFields(ctx context.Context, id string, fullName, phoneNumber, imagePath *string) error {
	m.updates = append(m.updates, profileUpdate{fullName: fullName, phoneNumber: phoneNumber, imagePath: imagePath})
	if p, ok := m.profiles[id]; ok {
		p.FullName = fullName
		p.PhoneNumber = phoneNumber
		if imagePath != nil {
			p.ImagePath = imagePath
		}
	}
	return nil
}

type mockEmailLookup struct {
	users map[string]*models.User
}

func (m *mockEmailLookup) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

type mockPasswordSetter struct {
	set []string
	err error
}

func (m *mockPasswordSetter) SetPassword(ctx context.Context, userID, newPassword string) error {
	if m.err != nil {
		return m.err
	}
	m.set = append(m.set, newPassword)
	return nil
}

type mockAvatarStore struct {
	stored map[string][]byte
}

func (m *mockAvatarStore) Put(key string, data []byte, overwrite bool) (string, error) {
	if m.stored == nil {
		m.stored = make(map[string][]byte)
	}
	m.stored[key] = data
	return key, nil
}

func (m *mockAvatarStore) OwnAvatarURL(key string, now time.Time) string {
	return "/media/" + key + "?v=1"
}

func newProfileServiceFixture() (*ProfileService, *mockProfileStore, *mockPasswordSetter, *mockAvatarStore) {
	name := "Bilal"
	store := &mockProfileStore{profiles: map[string]*models.Profile{
		"user-1": {ID: "user-1", FullName: &name, Role: models.RoleStudent},
	}}
	users := &mockEmailLookup{users: map[string]*models.User{
		"user-1": {ID: "user-1", Email: "bilal@example.com"},
	}}
	passwords := &mockPasswordSetter{}
	avatars := &mockAvatarStore{}
	svc := NewProfileService(store, users, passwords, avatars, disabledCache(), zap.NewNop())
	return svc, store, passwords, avatars
}

func encodeTestJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

func TestProfileGet(t *testing.T) {
	svc, _, _, _ := newProfileServiceFixture()

	view, err := svc.Get(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "bilal@example.com", view.Email)
	require.NotNil(t, view.FullName)
	assert.Equal(t, "Bilal", *view.FullName)
	assert.Contains(t, view.AvatarURL, models.DefaultAvatarPath)
	assert.Contains(t, view.AvatarURL, "?v=")
}

func TestProfileGetMissing(t *testing.T) {
	svc, _, _, _ := newProfileServiceFixture()

	_, err := svc.Get(context.Background(), "ghost")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestProfileUpdateKeepsUnsetFields(t *testing.T) {
	svc, store, _, _ := newProfileServiceFixture()

	view, err := svc.Update(context.Background(), "user-1", dto.UpdateProfileRequest{
		PhoneNumber: "0123456789",
	})
	require.NoError(t, err)
	require.Len(t, store.updates, 1)
	require.NotNil(t, store.updates[0].fullName)
	assert.Equal(t, "Bilal", *store.updates[0].fullName)
	require.NotNil(t, store.updates[0].phoneNumber)
	assert.Equal(t, "0123456789", *store.updates[0].phoneNumber)
	assert.Nil(t, store.updates[0].imagePath)
	require.NotNil(t, view.PhoneNumber)
	assert.Equal(t, "0123456789", *view.PhoneNumber)
}

func TestProfileUpdateStoresAvatarUnderStableKey(t *testing.T) {
	svc, store, _, avatars := newProfileServiceFixture()

	_, err := svc.Update(context.Background(), "user-1", dto.UpdateProfileRequest{
		Avatar:     encodeTestJPEG(t, 800, 600),
		AvatarMIME: "image/jpeg",
	})
	require.NoError(t, err)
	require.Contains(t, avatars.stored, "avatars/user-1/avatar.jpg")
	require.Len(t, store.updates, 1)
	require.NotNil(t, store.updates[0].imagePath)
	assert.Equal(t, "avatars/user-1/avatar.jpg", *store.updates[0].imagePath)
}

func TestProfileUpdateRejectsUnreadableAvatar(t *testing.T) {
	svc, store, _, _ := newProfileServiceFixture()

	_, err := svc.Update(context.Background(), "user-1", dto.UpdateProfileRequest{
		Avatar:     []byte("not an image"),
		AvatarMIME: "image/jpeg",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, store.updates)
}

func TestProfileUpdateChangesPassword(t *testing.T) {
	svc, _, passwords, _ := newProfileServiceFixture()

	_, err := svc.Update(context.Background(), "user-1", dto.UpdateProfileRequest{
		NewPassword: "fresh-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh-secret"}, passwords.set)
}

func TestProfileUpdateStopsOnPasswordFailure(t *testing.T) {
	svc, store, passwords, _ := newProfileServiceFixture()
	passwords.err = appErrors.Clone(appErrors.ErrValidation, "password must be at least 6 characters")

	_, err := svc.Update(context.Background(), "user-1", dto.UpdateProfileRequest{
		FullName:    "Renamed",
		NewPassword: "abc",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, store.updates)
}
