package response

import (
	"errors"
	"log"
	"net/http"

	"anoa.com/tradesphere/pkg/apperror"
	"anoa.com/tradesphere/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextUserID is the gin context key the auth middleware stores the subject under.
	ContextUserID = "user_id"
)

// GetUserID retrieves the authenticated user ID from the context
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr, exists := c.Get(ContextUserID)
	if !exists {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	str, ok := userIDStr.(string)
	if !ok {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	userID, err := uuid.Parse(str)
	if err != nil {
		return uuid.Nil, apperror.ErrUnauthorized
	}

	return userID, nil
}

// GetOptionalUserID returns nil when the request is anonymous.
func GetOptionalUserID(c *gin.Context) *uuid.UUID {
	userID, err := GetUserID(c)
	if err != nil {
		return nil
	}
	return &userID
}

// Success writes {"success": true, ...payload}.
func Success(c *gin.Context, code int, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(code, body)
}

// ResponseError standardized error response
func ResponseError(c *gin.Context, err error) {
	if fields, ok := validator.FieldErrors(err); ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "validation failed",
			"errors":  fields,
		})
		return
	}

	code := apperror.MapErrorToStatus(err)
	body := gin.H{"success": false, "message": err.Error()}

	var validationErr *apperror.ValidationError
	if errors.As(err, &validationErr) {
		body["message"] = "validation failed"
		body["errors"] = validationErr.Fields
	}

	// Log internal errors
	if code == http.StatusInternalServerError {
		log.Printf("[Internal Error] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		if gin.Mode() == gin.ReleaseMode {
			body["message"] = apperror.ErrInternal.Error()
		}
	}

	c.AbortWithStatusJSON(code, body)
}
