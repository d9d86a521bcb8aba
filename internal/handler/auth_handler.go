package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/twinside/backend/internal/dto"
	"github.com/twinside/backend/internal/service"
	"github.com/twinside/backend/internal/utils"
)

// AuthHandler handles the public account lifecycle endpoints
type AuthHandler struct {
	authService service.AuthService
	sessions    *utils.SessionManager
	logger      *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService service.AuthService, sessions *utils.SessionManager, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		sessions:    sessions,
		logger:      logger,
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error(codeMissingFields))
		return
	}

	if err := h.authService.Register(c.Request.Context(), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.OKResponse{OK: true, Next: "/auth/check-email"})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error(codeMissingFields))
		return
	}

	account, session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setSessionCookie(c, session)
	c.JSON(http.StatusOK, dto.LoginResponse{OK: true, Status: account.Status})
}

// Confirm handles GET /auth/confirm?token=. Errors are plain text because the
// link is opened straight from the mail client.
func (h *AuthHandler) Confirm(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.String(http.StatusBadRequest, "missing token")
		return
	}

	if err := h.authService.Confirm(c.Request.Context(), token); err != nil {
		switch {
		case errors.Is(err, service.ErrTokenNotFound):
			c.String(http.StatusBadRequest, "invalid token")
		case errors.Is(err, service.ErrTokenUsed):
			c.String(http.StatusBadRequest, "token used")
		case errors.Is(err, service.ErrTokenExpired):
			c.String(http.StatusBadRequest, "token expired")
		case errors.Is(err, service.ErrUserNotFound):
			c.String(http.StatusBadRequest, "user not found")
		default:
			h.logger.Error("confirm failed", zap.Error(err))
			c.String(http.StatusInternalServerError, "server error")
		}
		return
	}

	c.String(http.StatusOK, "Email confirmed. You can close this window and sign in to complete your profile.")
}

// ResendConfirmation handles POST /auth/resend-confirmation. Always {ok:true}.
func (h *AuthHandler) ResendConfirmation(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, dto.Error(codeMissingFields))
		return
	}

	if err := h.authService.ResendConfirmation(c.Request.Context(), req.Email); err != nil {
		// still enumeration-safe: log and answer ok
		h.logger.Error("resend confirmation failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// Forgot handles POST /auth/forgot. Always {ok:true}.
func (h *AuthHandler) Forgot(c *gin.Context) {
	var req dto.EmailRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		c.JSON(http.StatusBadRequest, dto.Error(codeMissingFields))
		return
	}

	if err := h.authService.Forgot(c.Request.Context(), req.Email); err != nil {
		h.logger.Error("forgot password failed", zap.Error(err))
	}

	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// Reset handles POST /auth/reset
func (h *AuthHandler) Reset(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error(codeMissingFields))
		return
	}

	if err := h.authService.ResetPassword(c.Request.Context(), req.Token, req.Password); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// Impersonate handles GET /auth/impersonate?token=. Exchanges an admin-minted
// grant for a regular session cookie and sends the browser to the app root.
func (h *AuthHandler) Impersonate(c *gin.Context) {
	grant := c.Query("token")
	if grant == "" {
		c.JSON(http.StatusBadRequest, dto.Error(codeMissingFields))
		return
	}

	session, err := h.authService.ExchangeImpersonation(c.Request.Context(), grant)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.setSessionCookie(c, session)
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandler) setSessionCookie(c *gin.Context, session string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookie, session, int(h.sessions.UserTTL().Seconds()), "/", "", false, true)
}
