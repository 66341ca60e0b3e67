package service_test

import (
	"context"
	"testing"
	"time"

	"anoa.com/tradesphere/internal/entity"
	"anoa.com/tradesphere/internal/mocks"
	"anoa.com/tradesphere/internal/modules/user/dto"
	userService "anoa.com/tradesphere/internal/modules/user/service"
	"anoa.com/tradesphere/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const secret = "unit-test-secret"

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func member(t *testing.T, email, password string) *entity.User {
	return &entity.User{
		ID:           uuid.New(),
		Name:         "Member",
		Email:        email,
		PasswordHash: hashed(t, password),
		Role:         entity.Role{ID: 2, Name: entity.RoleUser},
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a token for the new user", func(t *testing.T) {
		repo := new(mocks.UserRepositoryMock)
		svc := userService.NewAuthService(repo, nil, userService.TokenConfig{Secret: secret, TTL: time.Hour})

		repo.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, gorm.ErrRecordNotFound)
		repo.On("FindRoleByName", mock.Anything, entity.RoleUser).Return(&entity.Role{ID: 2, Name: entity.RoleUser}, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(u *entity.User) bool {
			return u.Email == "new@example.com" && u.PasswordHash != "secret1" && *u.RoleID == 2
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*entity.User).ID = uuid.New()
		}).Return(nil)

		resp, err := svc.Register(ctx, dto.RegisterRequest{Name: " New ", Email: " New@Example.com ", Password: "secret1"})
		require.NoError(t, err)
		assert.Equal(t, "Bearer", resp.TokenType)
		assert.Equal(t, "new@example.com", resp.User.Email)
		assert.Equal(t, "New", resp.User.Name)
		assert.Equal(t, entity.RoleUser, resp.User.Role)

		claims := &jwt.RegisteredClaims{}
		_, err = jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (any, error) { return []byte(secret), nil })
		require.NoError(t, err)
		assert.Equal(t, resp.User.ID.String(), claims.Subject)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		repo := new(mocks.UserRepositoryMock)
		svc := userService.NewAuthService(repo, nil, userService.TokenConfig{Secret: secret})

		repo.On("FindByEmail", mock.Anything, "taken@example.com").Return(member(t, "taken@example.com", "secret1"), nil)

		_, err := svc.Register(ctx, dto.RegisterRequest{Name: "Dup", Email: "taken@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, apperror.ErrConflict)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unique index race conflicts", func(t *testing.T) {
		repo := new(mocks.UserRepositoryMock)
		svc := userService.NewAuthService(repo, nil, userService.TokenConfig{Secret: secret})

		repo.On("FindByEmail", mock.Anything, "race@example.com").Return(nil, gorm.ErrRecordNotFound)
		repo.On("FindRoleByName", mock.Anything, entity.RoleUser).Return(&entity.Role{ID: 2, Name: entity.RoleUser}, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)

		_, err := svc.Register(ctx, dto.RegisterRequest{Name: "Race", Email: "race@example.com", Password: "secret1"})
		assert.ErrorIs(t, err, apperror.ErrConflict)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	repo := new(mocks.UserRepositoryMock)
	search := new(mocks.SearchServiceMock)
	svc := userService.NewAuthService(repo, search, userService.TokenConfig{Secret: secret})
	u := member(t, "a@example.com", "secret1")

	repo.On("FindByEmail", mock.Anything, "a@example.com").Return(u, nil)
	repo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(nil, gorm.ErrRecordNotFound)
	search.On("GenerateSearchToken", false).Return("search-token", nil)

	resp, err := svc.Login(ctx, dto.LoginRequest{Email: "A@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.User.ID)
	assert.Equal(t, "search-token", resp.SearchToken)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "a@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ghost@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestPublicProfileCountsActiveListings(t *testing.T) {
	repo := new(mocks.UserRepositoryMock)
	svc := userService.NewUserService(repo, nil)
	phone := "+62 811"
	u := member(t, "p@example.com", "secret1")
	u.Phone = &phone

	repo.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	repo.On("CountActiveListings", mock.Anything, u.ID).Return(int64(4), nil)

	profile, err := svc.GetPublicProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), profile.ActiveListings)
	assert.Equal(t, u.Name, profile.Name)

	missing := uuid.New()
	repo.On("FindByID", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound)
	_, err = svc.GetPublicProfile(context.Background(), missing)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUpdateProfileEmailInUse(t *testing.T) {
	repo := new(mocks.UserRepositoryMock)
	svc := userService.NewUserService(repo, nil)
	u := member(t, "me@example.com", "secret1")
	other := member(t, "other@example.com", "secret1")

	repo.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	repo.On("FindByEmail", mock.Anything, "other@example.com").Return(other, nil)

	email := "Other@example.com"
	_, err := svc.UpdateProfile(context.Background(), u.ID, dto.UpdateProfileRequest{Email: &email})
	assert.ErrorIs(t, err, apperror.ErrConflict)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestUpdateProfile(t *testing.T) {
	repo := new(mocks.UserRepositoryMock)
	svc := userService.NewUserService(repo, nil)
	u := member(t, "me@example.com", "secret1")

	repo.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	repo.On("Update", mock.Anything, u).Return(nil)

	name, bio := " Renamed ", "Selling my old stuff"
	resp, err := svc.UpdateProfile(context.Background(), u.ID, dto.UpdateProfileRequest{Name: &name, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", resp.Name)
	assert.Equal(t, &bio, resp.Bio)
	assert.Equal(t, "me@example.com", resp.Email)
}

func TestChangePassword(t *testing.T) {
	repo := new(mocks.UserRepositoryMock)
	svc := userService.NewUserService(repo, nil)
	u := member(t, "me@example.com", "secret1")

	repo.On("FindByID", mock.Anything, u.ID).Return(u, nil)
	repo.On("Update", mock.Anything, u).Return(nil)

	err := svc.ChangePassword(context.Background(), u.ID, dto.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "secret2"})
	var verr *apperror.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "currentPassword")

	require.NoError(t, svc.ChangePassword(context.Background(), u.ID, dto.ChangePasswordRequest{CurrentPassword: "secret1", NewPassword: "secret2"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret2")))
}

func TestDeleteUser(t *testing.T) {
	repo := new(mocks.UserRepositoryMock)
	search := new(mocks.SearchServiceMock)
	svc := userService.NewUserService(repo, search)
	admin, target := uuid.New(), uuid.New()
	listingIDs := []uuid.UUID{uuid.New(), uuid.New()}

	err := svc.DeleteUser(context.Background(), admin, admin)
	assert.ErrorIs(t, err, apperror.ErrBadRequest)

	repo.On("Delete", mock.Anything, target).Return(listingIDs, nil)
	search.On("DeleteListing", listingIDs[0]).Return(nil)
	search.On("DeleteListing", listingIDs[1]).Return(assert.AnError)

	require.NoError(t, svc.DeleteUser(context.Background(), admin, target))
	search.AssertNumberOfCalls(t, "DeleteListing", 2)

	missing := uuid.New()
	repo.On("Delete", mock.Anything, missing).Return(nil, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, svc.DeleteUser(context.Background(), admin, missing), apperror.ErrNotFound)
}
