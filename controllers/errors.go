package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joy095/settlement/logger"
	"github.com/joy095/settlement/models/shared_models"
	"github.com/joy095/settlement/models/wallet_models"
	"github.com/joy095/settlement/utils"
)

var errorStatus = []struct {
	err    error
	status int
}{
	{utils.ErrUserIDNotFound, http.StatusUnauthorized},
	{utils.ErrInvalidWebhookSignature, http.StatusUnauthorized},
	{utils.ErrUnauthorized, http.StatusForbidden},
	{utils.ErrRecordNotFound, http.StatusNotFound},
	{utils.ErrBankAccountNotFound, http.StatusNotFound},
	{utils.ErrInsufficientBalance, http.StatusBadRequest},
	{utils.ErrMissingBankCode, http.StatusBadRequest},
	{utils.ErrNegativeAmount, http.StatusBadRequest},
	{utils.ErrInvalidAmount, http.StatusBadRequest},
	{utils.ErrUnknownRole, http.StatusBadRequest},
	{utils.ErrRefundWindowExpired, http.StatusBadRequest},
	{utils.ErrOrderNotRefundable, http.StatusConflict},
	{utils.ErrOrderNotSettleable, http.StatusConflict},
	{utils.ErrInvalidStateTransition, http.StatusConflict},
	{utils.ErrDuplicateReference, http.StatusConflict},
	{utils.ErrTransferInitiationFailed, http.StatusBadGateway},
	{utils.ErrTransferRequeryFailed, http.StatusBadGateway},
}

// StatusFor maps a domain error to its HTTP status.
func StatusFor(err error) int {
	for _, e := range errorStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// RespondError writes {"error": ...}. Internal errors are logged and hidden.
func RespondError(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		logger.ErrorLogger.Errorf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// CallerRole resolves the :role path parameter and checks it against the
// token's role claim. It writes the error response and returns false on failure.
func CallerRole(c *gin.Context) (wallet_models.RecipientRole, uuid.UUID, bool) {
	role, err := wallet_models.ParseRole(c.Param("role"))
	if err != nil {
		RespondError(c, err)
		return "", uuid.Nil, false
	}

	userID, err := utils.GetUserIDFromContext(c)
	if err != nil {
		RespondError(c, utils.ErrUserIDNotFound)
		return "", uuid.Nil, false
	}

	if utils.GetRoleFromContext(c) != string(role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: token role does not match " + string(role)})
		return "", uuid.Nil, false
	}
	return role, userID, true
}

// UUIDParam parses a UUID path parameter, answering 400 when malformed.
func UUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// PageFromQuery reads limit and offset query parameters.
func PageFromQuery(c *gin.Context) shared_models.Pagination {
	var page shared_models.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		return shared_models.Pagination{}.Normalize()
	}
	return page.Normalize()
}
