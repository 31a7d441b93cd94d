package jwt_parse

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/utils"
)

// Claims is the subset of the identity service's access token this service reads.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ParseToken validates an HS256 access token and returns its claims. The
// subject claim is used when user_id is absent.
func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return utils.GetJWTSecret(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return nil, errors.New("token is not valid")
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, errors.New("no user identifier found in token")
	}
	claims.Role = strings.ToLower(strings.TrimSpace(claims.Role))
	return claims, nil
}

// Authenticate parses the bearer token and sets user_id and role in the
// context. On failure it aborts the request and returns false.
func Authenticate(c *gin.Context) bool {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		logger.ErrorLogger.Error("No authorization header provided")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No authorization token"})
		return false
	}

	if len(authHeader) <= 7 || strings.ToLower(authHeader[:7]) != "bearer " {
		logger.ErrorLogger.Error("Invalid authorization header format")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
		return false
	}

	claims, err := ParseToken(authHeader[7:])
	if err != nil {
		logger.ErrorLogger.Errorf("Failed to parse JWT token: %v", err)
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return false
	}

	c.Set("user_id", claims.UserID)
	c.Set("role", claims.Role)
	if claims.ID != "" {
		c.Set("jti", claims.ID)
	}
	return true
}
