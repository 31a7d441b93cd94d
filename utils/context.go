package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/settlement/logger"
)

// GetUserIDFromContext reads the user_id string set by the auth middleware
// and parses it into a uuid.UUID.
func GetUserIDFromContext(c *gin.Context) (uuid.UUID, error) {
	raw, exists := c.Get("user_id")
	if !exists {
		logger.ErrorLogger.Error("User ID not found in context.")
		return uuid.Nil, ErrUserIDNotFound
	}

	userIDStr, ok := raw.(string)
	if !ok {
		logger.ErrorLogger.Errorf("User ID in context is not a string, actual type: %T", raw)
		return uuid.Nil, fmt.Errorf("invalid user ID format in context: %w", ErrUnauthorized)
	}

	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to parse user ID string '%s' to UUID: %v", userIDStr, err)
		return uuid.Nil, fmt.Errorf("invalid user ID format: %w", ErrUnauthorized)
	}
	return userID, nil
}

// GetRoleFromContext returns the caller's role claim, or "" when absent.
func GetRoleFromContext(c *gin.Context) string {
	role, _ := c.Get("role")
	s, _ := role.(string)
	return s
}
