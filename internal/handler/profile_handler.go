package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/twinside/backend/internal/domain"
	"github.com/twinside/backend/internal/dto"
	"github.com/twinside/backend/internal/service"
)

// ProfileHandler handles the caller's own profile endpoints
type ProfileHandler struct {
	profileService service.ProfileService
	logger         *zap.Logger
}

// NewProfileHandler creates a new profile handler
func NewProfileHandler(profileService service.ProfileService, logger *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profileService: profileService, logger: logger}
}

// Setup handles POST /profile/setup (multipart)
func (h *ProfileHandler) Setup(c *gin.Context) {
	input := service.ProfileSubmitInput{
		About:      c.PostForm("about"),
		LookingFor: c.PostForm("looking_for"),
		Interests:  c.PostForm("interests"),
	}
	if avatar, err := c.FormFile("avatar"); err == nil {
		input.Avatar = avatar
	}
	if verify, err := c.FormFile("verify_photo"); err == nil {
		input.VerifyShot = verify
	}

	if err := h.profileService.Submit(c.Request.Context(), accountID(c), input); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.OKResponse{
		OK:     true,
		Status: string(domain.StatusProfilePending),
		Next:   "/pending",
	})
}

// UpdateInfo handles PATCH /profile/me/info
func (h *ProfileHandler) UpdateInfo(c *gin.Context) {
	var req dto.UpdateInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error(codeMissingFields))
		return
	}

	if err := h.profileService.UpdateInfo(c.Request.Context(), accountID(c), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// Status handles GET /me/status
func (h *ProfileHandler) Status(c *gin.Context) {
	account, err := h.profileService.Status(c.Request.Context(), accountID(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatusResponse{
		OK:           true,
		ID:           account.ID,
		Nick:         account.Nick,
		Email:        account.Email,
		Status:       account.Status,
		AvatarPath:   account.AvatarPath,
		RejectReason: account.RejectReason,
		Balance:      account.Balance,
		Premium:      account.Premium,
		Impersonated: c.GetBool(ctxImpersonated),
	})
}
