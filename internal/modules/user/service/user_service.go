package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	search "anoa.com/tradesphere/internal/modules/search/service"
	"anoa.com/tradesphere/internal/modules/user/dto"
	"anoa.com/tradesphere/internal/modules/user/repository"
	"anoa.com/tradesphere/pkg/apperror"
	commonDto "anoa.com/tradesphere/pkg/dto"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserService interface {
	GetPublicProfile(ctx context.Context, id uuid.UUID) (*dto.PublicProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, req dto.ChangePasswordRequest) error
	ListUsers(ctx context.Context, filter dto.UserFilter) ([]dto.UserResponse, commonDto.PaginationMeta, error)
	DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error
}

type userService struct {
	repo  repository.UserRepository
	meili search.MeiliSearchService
}

func NewUserService(repo repository.UserRepository, meili search.MeiliSearchService) UserService {
	return &userService{repo: repo, meili: meili}
}

func (s *userService) GetPublicProfile(ctx context.Context, id uuid.UUID) (*dto.PublicProfileResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	active, err := s.repo.CountActiveListings(ctx, id)
	if err != nil {
		return nil, err
	}

	return &dto.PublicProfileResponse{
		ID:             user.ID,
		Name:           user.Name,
		Avatar:         user.Avatar,
		Location:       user.Location,
		Bio:            user.Bio,
		ActiveListings: active,
		MemberSince:    user.CreatedAt,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			existing, err := s.repo.FindByEmail(ctx, email)
			if err == nil && existing.ID != user.ID {
				return nil, fmt.Errorf("email already in use: %w", apperror.ErrConflict)
			}
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			user.Email = email
		}
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		user.Phone = req.Phone
	}
	if req.Location != nil {
		user.Location = req.Location
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Avatar != nil {
		user.Avatar = req.Avatar
	}

	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("email already in use: %w", apperror.ErrConflict)
		}
		return nil, err
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, req dto.ChangePasswordRequest) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return apperror.NewValidationError("currentPassword", "current password is incorrect")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hashed)

	return s.repo.Update(ctx, user)
}

func (s *userService) ListUsers(ctx context.Context, filter dto.UserFilter) ([]dto.UserResponse, commonDto.PaginationMeta, error) {
	page, limit := commonDto.PageRequest{Page: filter.Page, Limit: filter.Limit}.Normalize(20, 100)

	users, total, err := s.repo.FindAll(ctx, strings.TrimSpace(filter.Search), (page-1)*limit, limit)
	if err != nil {
		return nil, commonDto.PaginationMeta{}, err
	}

	out := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.NewUserResponse(u))
	}

	return out, commonDto.NewPaginationMeta(total, page, limit), nil
}

func (s *userService) DeleteUser(ctx context.Context, actorID, targetID uuid.UUID) error {
	if actorID == targetID {
		return fmt.Errorf("admins cannot delete their own account: %w", apperror.ErrBadRequest)
	}

	listingIDs, err := s.repo.Delete(ctx, targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user not found: %w", apperror.ErrNotFound)
		}
		return err
	}

	if s.meili != nil {
		for _, id := range listingIDs {
			if err := s.meili.DeleteListing(id); err != nil {
				log.Printf("Failed to remove listing %s from search index: %v", id, err)
			}
		}
	}

	return nil
}
