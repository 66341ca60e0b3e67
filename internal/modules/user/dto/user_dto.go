package dto

import (
	"time"

	"anoa.com/tradesphere/internal/entity"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string  `json:"name" binding:"required,min=2,max=50"`
	Email    string  `json:"email" binding:"required,email,max=100"`
	Password string  `json:"password" binding:"required,min=6,max=72"`
	Phone    *string `json:"phone" binding:"omitempty,max=30"`
	Location *string `json:"location" binding:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=2,max=50"`
	Email    *string `json:"email" binding:"omitempty,email,max=100"`
	Phone    *string `json:"phone" binding:"omitempty,max=30"`
	Location *string `json:"location" binding:"omitempty,max=100"`
	Bio      *string `json:"bio" binding:"omitempty,max=500"`
	Avatar   *string `json:"avatar" binding:"omitempty,url"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=72"`
}

type UserFilter struct {
	Search string `form:"search"`
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1"`
}

// UserResponse is what the account owner and admins see.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Avatar    *string   `json:"avatar"`
	Phone     *string   `json:"phone,omitempty"`
	Location  *string   `json:"location,omitempty"`
	Bio       *string   `json:"bio,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicProfileResponse omits contact details.
type PublicProfileResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Avatar         *string   `json:"avatar"`
	Location       *string   `json:"location,omitempty"`
	Bio            *string   `json:"bio,omitempty"`
	ActiveListings int64     `json:"activeListings"`
	MemberSince    time.Time `json:"memberSince"`
}

type AuthResponse struct {
	Token       string       `json:"token"`
	TokenType   string       `json:"tokenType"`
	ExpiresAt   int64        `json:"expiresAt"`
	User        UserResponse `json:"user"`
	SearchToken string       `json:"searchToken,omitempty"`
}

func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role.Name,
		Avatar:    u.Avatar,
		Phone:     u.Phone,
		Location:  u.Location,
		Bio:       u.Bio,
		CreatedAt: u.CreatedAt,
	}
}
