package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"github.com/twinside/backend/internal/config"
	"github.com/twinside/backend/internal/handler"
	"github.com/twinside/backend/internal/mail"
	"github.com/twinside/backend/internal/repository"
	"github.com/twinside/backend/internal/service"
	"github.com/twinside/backend/internal/storage"
	"github.com/twinside/backend/internal/utils"
	"github.com/twinside/backend/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) (*App, error) {
	repos := repository.NewRepositories(infra.Postgres())

	sessions := utils.NewSessionManager(
		cfg.Session.Secret,
		cfg.Session.UserTTL.Duration,
		cfg.Session.AdminTTL.Duration,
		cfg.Session.ImpersonationTTL.Duration,
	)

	var mailer mail.Mailer
	if cfg.Mail.Enabled {
		mailer = mail.NewSMTPMailer(cfg.Mail, infra.Logger())
	} else {
		mailer = mail.NewLogMailer(infra.Logger())
	}
	notifier := mail.NewNotifier(mailer, cfg.AppURL, infra.Logger())

	images, err := storage.NewImageStore(cfg.Uploads)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize image store: %w", err)
	}

	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	authService := service.NewAuthService(
		repos.Account,
		repos.Token,
		sessions,
		notifier,
		cfg.Security.BCryptCost,
		infra.Logger(),
	)
	profileService := service.NewProfileService(repos.Account, images, infra.Logger())
	adminService := service.NewAdminService(
		repos.Account,
		images,
		sessions,
		notifier,
		cfg.Admin.Email,
		cfg.Admin.Password,
		cfg.Security.BCryptCost,
		infra.Logger(),
	)
	financeService := service.NewFinanceService(repos.Account, repos.Finance, infra.Logger())

	authHandler := handler.NewAuthHandler(authService, sessions, infra.Logger())
	profileHandler := handler.NewProfileHandler(profileService, infra.Logger())
	adminHandler := handler.NewAdminHandler(adminService, sessions, cfg.AppURL, infra.Logger())
	financeHandler := handler.NewFinanceHandler(financeService, infra.Logger())

	router := gin.Default()
	router.Use(otelgin.Middleware("twinside-backend"))
	router.Use(handler.LoggerMiddleware(infra.Logger()))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, sessions, rateLimiter, healthChecker, infra.MetricsHandler(),
		authHandler, profileHandler, adminHandler, financeHandler, images.Dir())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	sessions *utils.SessionManager,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
	authHandler *handler.AuthHandler,
	profileHandler *handler.ProfileHandler,
	adminHandler *handler.AdminHandler,
	financeHandler *handler.FinanceHandler,
	uploadsDir string,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	// only avatars are public, verification shots go through the admin route
	router.Static("/uploads/avatars", filepath.Join(uploadsDir, "avatars"))

	throttled := handler.RateLimitMiddleware(rateLimiter,
		cfg.Security.RateLimitRequests, cfg.Security.RateLimitWindow.Duration, handler.IPBasedKey)
	userAuth := handler.AuthMiddleware(sessions)
	adminAuth := handler.AdminMiddleware(sessions)

	auth := router.Group("/auth")
	{
		auth.POST("/register", throttled, authHandler.Register)
		auth.POST("/login", throttled, authHandler.Login)
		auth.GET("/confirm", authHandler.Confirm)
		auth.POST("/resend-confirmation", throttled, authHandler.ResendConfirmation)
		auth.POST("/forgot", throttled, authHandler.Forgot)
		auth.POST("/reset", authHandler.Reset)
		auth.POST("/logout", authHandler.Logout)
		auth.GET("/impersonate", authHandler.Impersonate)
	}

	profile := router.Group("/profile", userAuth)
	{
		profile.POST("/setup", profileHandler.Setup)
		profile.PATCH("/me/info", profileHandler.UpdateInfo)
	}

	router.GET("/me/status", userAuth, profileHandler.Status)
	router.POST("/billing/withdraw", userAuth, financeHandler.RequestWithdraw)

	admin := router.Group("/api/admin")
	{
		admin.POST("/login", throttled, adminHandler.Login)

		protected := admin.Group("", adminAuth)
		{
			protected.GET("/check-session", adminHandler.CheckSession)
			protected.POST("/logout", adminHandler.Logout)

			protected.GET("/pending", adminHandler.Pending)
			protected.POST("/approve/:id", adminHandler.Approve)
			protected.POST("/reject/:id", adminHandler.Reject)
			protected.POST("/require-payment/:id", adminHandler.RequirePayment)
			protected.POST("/impersonate/:id", adminHandler.Impersonate)
			protected.GET("/user/:id/verify", adminHandler.VerifyPhoto)

			protected.GET("/users", adminHandler.Users)
			protected.PATCH("/user/:id", adminHandler.UpdateUser)
			protected.DELETE("/user/:id", adminHandler.DeleteUser)
			protected.POST("/users/fake", adminHandler.CreateFake)

			protected.GET("/withdraws", financeHandler.Withdraws)
			protected.PATCH("/withdraw/:id", financeHandler.SettleOrRejectWithdraw)
			protected.POST("/manual-credit", financeHandler.ManualCredit)
			protected.POST("/premium", financeHandler.GrantPremium)
			protected.GET("/transactions", financeHandler.Transactions)
			protected.GET("/stats/finance", financeHandler.FinanceStats)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
