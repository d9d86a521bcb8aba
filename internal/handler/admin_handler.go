package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/twinside/backend/internal/dto"
	"github.com/twinside/backend/internal/repository"
	"github.com/twinside/backend/internal/service"
	"github.com/twinside/backend/internal/utils"
)

// AdminHandler handles the moderation gate and admin user management
type AdminHandler struct {
	adminService service.AdminService
	sessions     *utils.SessionManager
	appURL       string
	logger       *zap.Logger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService service.AdminService, sessions *utils.SessionManager, appURL string, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		adminService: adminService,
		sessions:     sessions,
		appURL:       appURL,
		logger:       logger,
	}
}

// Login handles POST /api/admin/login
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error(codeMissingFields))
		return
	}

	session, err := h.adminService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AdminSessionCookie, session, int(h.sessions.AdminTTL().Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// CheckSession handles GET /api/admin/check-session
func (h *AdminHandler) CheckSession(c *gin.Context) {
	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// Logout handles POST /api/admin/logout
func (h *AdminHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AdminSessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// Pending handles GET /api/admin/pending
func (h *AdminHandler) Pending(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	accounts, total, err := h.adminService.Pending(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	views := make([]dto.AccountView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, dto.NewAccountView(account))
	}

	c.JSON(http.StatusOK, dto.AccountListResponse{OK: true, Accounts: views, Total: total, Page: page})
}

// Approve handles POST /api/admin/approve/:id
func (h *AdminHandler) Approve(c *gin.Context) {
	if err := h.adminService.Approve(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// Reject handles POST /api/admin/reject/:id
func (h *AdminHandler) Reject(c *gin.Context) {
	var req dto.RejectRequest
	_ = c.ShouldBindJSON(&req) // the reason is optional

	if err := h.adminService.Reject(c.Request.Context(), c.Param("id"), req.Reason); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// RequirePayment handles POST /api/admin/require-payment/:id
func (h *AdminHandler) RequirePayment(c *gin.Context) {
	if err := h.adminService.RequirePayment(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// Impersonate handles POST /api/admin/impersonate/:id
func (h *AdminHandler) Impersonate(c *gin.Context) {
	grant, err := h.adminService.MintImpersonation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.ImpersonationResponse{
		OK:    true,
		Token: grant,
		URL:   fmt.Sprintf("%s/auth/impersonate?token=%s", h.appURL, url.QueryEscape(grant)),
	})
}

// VerifyPhoto handles GET /api/admin/user/:id/verify. The verification shot is
// never exposed on the public uploads route.
func (h *AdminHandler) VerifyPhoto(c *gin.Context) {
	diskPath, err := h.adminService.VerifyPhotoFile(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.File(diskPath)
}

// Users handles GET /api/admin/users
func (h *AdminHandler) Users(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := repository.AccountFilter{
		Search: c.Query("search"),
		Type:   c.DefaultQuery("type", "all"),
		Page:   page,
		Limit:  limit,
	}

	accounts, total, err := h.adminService.ListUsers(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	views := make([]dto.AccountView, 0, len(accounts))
	for _, account := range accounts {
		views = append(views, dto.NewAccountView(account))
	}

	c.JSON(http.StatusOK, dto.AccountListResponse{OK: true, Accounts: views, Total: total, Page: page})
}

// UpdateUser handles PATCH /api/admin/user/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req dto.AccountFlagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error(codeMissingFields))
		return
	}

	if err := h.adminService.SetFlags(c.Request.Context(), c.Param("id"), &req); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// DeleteUser handles DELETE /api/admin/user/:id
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	if err := h.adminService.DeleteFake(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.OKResponse{OK: true})
}

// CreateFake handles POST /api/admin/users/fake (multipart)
func (h *AdminHandler) CreateFake(c *gin.Context) {
	avatar, _ := c.FormFile("avatar")

	account, err := h.adminService.CreateFake(c.Request.Context(),
		c.PostForm("nick"),
		c.PostForm("gender"),
		c.PostForm("city"),
		c.PostForm("about"),
		avatar,
	)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	view := dto.NewAccountView(account)
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": view})
}
