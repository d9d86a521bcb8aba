package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/twinside/backend/internal/dto"
	"github.com/twinside/backend/internal/utils"
)

// Cookie names. User and admin sessions live in separate cookies so an admin
// can impersonate a user without losing their own session.
const (
	SessionCookie      = "auth"
	AdminSessionCookie = "admin_auth"
)

// Context keys set by the auth middlewares.
const (
	ctxAccountID    = "account_id"
	ctxEmail        = "email"
	ctxImpersonated = "impersonated"
)

// AuthMiddleware validates the session cookie and adds account info to context
func AuthMiddleware(sessions *utils.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, dto.Error(codeInvalidCredentials))
			c.Abort()
			return
		}

		claims, err := sessions.VerifyUser(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.Error(codeInvalidCredentials))
			c.Abort()
			return
		}

		c.Set(ctxAccountID, claims.AccountID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxImpersonated, claims.Impersonated)

		c.Next()
	}
}

// AdminMiddleware validates the admin session cookie
func AdminMiddleware(sessions *utils.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(AdminSessionCookie)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, dto.Error(codeInvalidCredentials))
			c.Abort()
			return
		}

		claims, err := sessions.VerifyAdmin(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, dto.Error(codeInvalidCredentials))
			c.Abort()
			return
		}

		c.Set(ctxEmail, claims.Email)

		c.Next()
	}
}

func accountID(c *gin.Context) string {
	return c.GetString(ctxAccountID)
}
