package middleware

import (
	"errors"
	"fmt"
	"strings"

	"anoa.com/tradesphere/internal/entity"
	userRepo "anoa.com/tradesphere/internal/modules/user/repository"
	"anoa.com/tradesphere/pkg/apperror"
	"anoa.com/tradesphere/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// ContextUser holds the *entity.User loaded by RequireAdmin.
const ContextUser = "user"

type AuthMiddleware struct {
	userRepo userRepo.UserRepository
	secret   []byte
}

func NewAuthMiddleware(userRepo userRepo.UserRepository, secret string) *AuthMiddleware {
	return &AuthMiddleware{
		userRepo: userRepo,
		secret:   []byte(secret),
	}
}

// tokenFromRequest reads the bearer header, falling back to the "token"
// query parameter for websocket clients that cannot set headers.
func tokenFromRequest(c *gin.Context) string {
	if authHeader := c.GetHeader("Authorization"); authHeader != "" {
		parts := strings.Fields(authHeader)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return c.Query("token")
}

func (m *AuthMiddleware) parse(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid or expired token: %w", apperror.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return "", fmt.Errorf("invalid token claims: %w", apperror.ErrUnauthorized)
	}
	return claims.Subject, nil
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			response.ResponseError(c, fmt.Errorf("authorization required: %w", apperror.ErrUnauthorized))
			return
		}

		userID, err := m.parse(tokenString)
		if err != nil {
			response.ResponseError(c, err)
			return
		}

		c.Set(response.ContextUserID, userID)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// anonymous requests through. An invalid token is treated as anonymous.
func (m *AuthMiddleware) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenString := tokenFromRequest(c); tokenString != "" {
			if userID, err := m.parse(tokenString); err == nil {
				c.Set(response.ContextUserID, userID)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := response.GetUserID(c)
		if err != nil {
			response.ResponseError(c, fmt.Errorf("user not authenticated: %w", apperror.ErrUnauthorized))
			return
		}

		user, err := m.userRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				response.ResponseError(c, fmt.Errorf("user not found: %w", apperror.ErrUnauthorized))
				return
			}
			response.ResponseError(c, err)
			return
		}

		if user.Role.Name != entity.RoleAdmin {
			response.ResponseError(c, fmt.Errorf("admin access required: %w", apperror.ErrForbidden))
			return
		}

		c.Set(ContextUser, user)
		c.Next()
	}
}
