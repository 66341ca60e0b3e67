package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"anoa.com/tradesphere/internal/entity"
	search "anoa.com/tradesphere/internal/modules/search/service"
	"anoa.com/tradesphere/internal/modules/user/dto"
	"anoa.com/tradesphere/internal/modules/user/repository"
	"anoa.com/tradesphere/pkg/apperror"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error)
	Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error)
}

type TokenConfig struct {
	Secret string
	TTL    time.Duration
}

type authService struct {
	repo   repository.UserRepository
	meili  search.MeiliSearchService
	tokens TokenConfig
}

func NewAuthService(repo repository.UserRepository, meili search.MeiliSearchService, tokens TokenConfig) AuthService {
	if tokens.TTL <= 0 {
		tokens.TTL = 30 * 24 * time.Hour
	}
	return &authService{
		repo:   repo,
		meili:  meili,
		tokens: tokens,
	}
}

func (s *authService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role, err := s.repo.FindRoleByName(ctx, entity.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("default role not found: %w", apperror.ErrInternal)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hashed),
		RoleID:       &role.ID,
		Role:         *role,
		Phone:        req.Phone,
		Location:     req.Location,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		// lost the race against a concurrent signup with the same email
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)
	}

	return s.buildAuthResponse(user)
}

func (s *authService) Me(ctx context.Context, userID uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *authService) buildAuthResponse(user *entity.User) (*dto.AuthResponse, error) {
	token, expiresAt, err := s.generateToken(user)
	if err != nil {
		return nil, err
	}

	resp := &dto.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      dto.NewUserResponse(user),
	}

	if s.meili != nil {
		st, err := s.meili.GenerateSearchToken(user.IsAdmin())
		if err != nil {
			log.Printf("Failed to generate search token for user %s: %v", user.ID, err)
		} else {
			resp.SearchToken = st
		}
	}

	return resp, nil
}

func (s *authService) generateToken(user *entity.User) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(s.tokens.TTL)

	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.tokens.Secret))
	if err != nil {
		return "", 0, err
	}

	return signed, expiresAt.Unix(), nil
}
