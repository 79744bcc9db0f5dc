package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/mbg_dapur_ledger/internal/apperrors"
	"github.com/SscSPs/mbg_dapur_ledger/internal/dto"
	"github.com/SscSPs/mbg_dapur_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// statusForError maps an error kind to its HTTP status.
func statusForError(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrConflict), errors.Is(err, apperrors.ErrProtected):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error body for err. Unexpected errors are logged and
// their message is replaced with fallback.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := statusForError(err)
	code := string(apperrors.CodeOf(err))
	if code == "" {
		code = apperrors.KindName(err)
	}

	if status == http.StatusInternalServerError {
		logger.Error(fallback, slog.String("error", err.Error()))
		c.JSON(status, dto.ErrorResponse{Error: fallback, Code: code})
		return
	}

	logger.Warn("Request rejected", slog.String("code", code), slog.String("error", err.Error()))
	c.JSON(status, dto.ErrorResponse{
		Error:   apperrors.MessageOf(err),
		Code:    code,
		Details: apperrors.DetailsOf(err),
	})
}

// respondBindError writes a 400 for a request that failed binding or validation.
func respondBindError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))
	body := dto.ErrorResponse{Error: "Invalid request: " + err.Error(), Code: "VALIDATION"}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]any, len(verrs))
		for _, fe := range verrs {
			fields[fe.Namespace()] = fe.Tag()
		}
		body.Details = map[string]any{"fields": fields}
	}
	c.JSON(http.StatusBadRequest, body)
}

// requireUserID returns the authenticated user id or writes a 401.
func requireUserID(c *gin.Context, logger *slog.Logger) (string, bool) {
	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "Unauthorized", Code: "UNAUTHORIZED"})
		return "", false
	}
	return userID, true
}
