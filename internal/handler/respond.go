package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/twinside/backend/internal/dto"
	"github.com/twinside/backend/internal/service"
	"github.com/twinside/backend/internal/storage"
)

// API error codes returned in the {ok:false, error} envelope.
const (
	codeMissingFields      = "missing_fields"
	codeEmailExists        = "email_exists"
	codeNickExists         = "nick_exists"
	codeInvalidCredentials = "invalid_credentials"
	codeEmailNotConfirmed  = "email_not_confirmed"
	codeAccountBanned      = "account_banned"
	codeUserNotFound       = "user_not_found"
	codeInvalidToken       = "invalid_token"
	codeTokenUsed          = "token_used"
	codeTokenExpired       = "token_expired"
	codeAlreadySubmitted   = "email_not_confirmed_or_already_sent"
	codeFilesRequired      = "files_required"
	codeImageTooSmall      = "image_too_small"
	codeInvalidImage       = "invalid_image"
	codeFileTooLarge       = "file_too_large"
	codeInvalidAmount      = "invalid_amount"
	codeInsufficientFunds  = "insufficient_funds"
	codeNotFound           = "not_found"
	codeTooManyRequests    = "too_many_requests"
	codeServerError        = "server_error"
)

// respondError maps a service error to the uniform error envelope. Unknown
// errors become 500 server_error with the cause logged, never leaked.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}
	c.JSON(status, dto.Error(code))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		return http.StatusBadRequest, codeMissingFields
	case errors.Is(err, service.ErrEmailExists):
		return http.StatusBadRequest, codeEmailExists
	case errors.Is(err, service.ErrNickExists):
		return http.StatusBadRequest, codeNickExists
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, codeInvalidCredentials
	case errors.Is(err, service.ErrAccountBanned):
		return http.StatusUnauthorized, codeAccountBanned
	case errors.Is(err, service.ErrEmailNotConfirmed):
		return http.StatusForbidden, codeEmailNotConfirmed
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, codeUserNotFound
	case errors.Is(err, service.ErrTokenNotFound):
		return http.StatusBadRequest, codeInvalidToken
	case errors.Is(err, service.ErrTokenUsed):
		return http.StatusBadRequest, codeTokenUsed
	case errors.Is(err, service.ErrTokenExpired):
		return http.StatusBadRequest, codeTokenExpired
	case errors.Is(err, service.ErrWrongStatus):
		return http.StatusForbidden, codeAlreadySubmitted
	case errors.Is(err, service.ErrFilesRequired):
		return http.StatusBadRequest, codeFilesRequired
	case errors.Is(err, storage.ErrImageTooSmall):
		return http.StatusBadRequest, codeImageTooSmall
	case errors.Is(err, storage.ErrInvalidImage):
		return http.StatusBadRequest, codeInvalidImage
	case errors.Is(err, storage.ErrFileTooLarge):
		return http.StatusBadRequest, codeFileTooLarge
	case errors.Is(err, service.ErrInvalidAmount):
		return http.StatusBadRequest, codeInvalidAmount
	case errors.Is(err, service.ErrInsufficientFunds):
		return http.StatusBadRequest, codeInsufficientFunds
	case errors.Is(err, service.ErrWithdrawNotFound):
		return http.StatusNotFound, codeNotFound
	default:
		return http.StatusInternalServerError, codeServerError
	}
}
