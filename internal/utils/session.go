package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/twinside/backend/internal/domain"
)

var (
	ErrSessionExpired = errors.New("session expired")
	ErrSessionInvalid = errors.New("session invalid")
)

// SessionManager signs and verifies the cookie-borne session tokens: regular
// user sessions, admin sessions and short-lived impersonation grants.
type SessionManager struct {
	secret           []byte
	userTTL          time.Duration
	adminTTL         time.Duration
	impersonationTTL time.Duration
}

// NewSessionManager creates a new session manager
func NewSessionManager(secret string, userTTL, adminTTL, impersonationTTL time.Duration) *SessionManager {
	return &SessionManager{
		secret:           []byte(secret),
		userTTL:          userTTL,
		adminTTL:         adminTTL,
		impersonationTTL: impersonationTTL,
	}
}

// IssueUser issues a regular session token for the account.
func (s *SessionManager) IssueUser(accountID, email string) (string, error) {
	return s.sign(jwt.MapClaims{
		"uid":   accountID,
		"email": email,
		"exp":   time.Now().Add(s.userTTL).Unix(),
		"iat":   time.Now().Unix(),
	})
}

// IssueImpersonated issues a regular-length session marked as impersonated,
// so downstream handlers can tell an admin is acting as the user.
func (s *SessionManager) IssueImpersonated(accountID, email string) (string, error) {
	return s.sign(jwt.MapClaims{
		"uid":   accountID,
		"email": email,
		"imp":   true,
		"exp":   time.Now().Add(s.userTTL).Unix(),
		"iat":   time.Now().Unix(),
	})
}

// IssueAdmin issues an admin session token.
func (s *SessionManager) IssueAdmin(email string) (string, error) {
	return s.sign(jwt.MapClaims{
		"email": email,
		"admin": true,
		"exp":   time.Now().Add(s.adminTTL).Unix(),
		"iat":   time.Now().Unix(),
	})
}

// IssueImpersonationGrant issues the short-lived token an admin hands to the
// browser, exchanged once at the impersonation endpoint for a user session.
func (s *SessionManager) IssueImpersonationGrant(accountID, email string) (string, error) {
	return s.sign(jwt.MapClaims{
		"uid":   accountID,
		"email": email,
		"mode":  "impersonate",
		"exp":   time.Now().Add(s.impersonationTTL).Unix(),
		"iat":   time.Now().Unix(),
	})
}

func (s *SessionManager) sign(claims jwt.MapClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return tokenString, nil
}

// VerifyUser verifies a user session token and returns its claims. Admin
// sessions and impersonation grants are rejected.
func (s *SessionManager) VerifyUser(tokenString string) (*domain.SessionClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if claims["admin"] == true || claims["mode"] != nil {
		return nil, ErrSessionInvalid
	}

	uid, ok := claims["uid"].(string)
	if !ok {
		return nil, ErrSessionInvalid
	}
	email, ok := claims["email"].(string)
	if !ok {
		return nil, ErrSessionInvalid
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrSessionInvalid
	}

	impersonated, _ := claims["imp"].(bool)

	return &domain.SessionClaims{
		AccountID:    uid,
		Email:        email,
		Impersonated: impersonated,
		ExpiresAt:    time.Unix(int64(exp), 0),
	}, nil
}

// VerifyAdmin verifies an admin session token.
func (s *SessionManager) VerifyAdmin(tokenString string) (*domain.SessionClaims, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return nil, err
	}

	if claims["admin"] != true {
		return nil, ErrSessionInvalid
	}
	email, ok := claims["email"].(string)
	if !ok {
		return nil, ErrSessionInvalid
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, ErrSessionInvalid
	}

	return &domain.SessionClaims{
		Email:     email,
		Admin:     true,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}

// VerifyImpersonationGrant verifies the one-shot token minted by an admin and
// returns the target account's id and email.
func (s *SessionManager) VerifyImpersonationGrant(tokenString string) (string, string, error) {
	claims, err := s.parse(tokenString)
	if err != nil {
		return "", "", err
	}

	if claims["mode"] != "impersonate" {
		return "", "", ErrSessionInvalid
	}
	uid, ok := claims["uid"].(string)
	if !ok {
		return "", "", ErrSessionInvalid
	}
	email, ok := claims["email"].(string)
	if !ok {
		return "", "", ErrSessionInvalid
	}

	return uid, email, nil
}

// UserTTL returns the user session lifetime.
func (s *SessionManager) UserTTL() time.Duration {
	return s.userTTL
}

// AdminTTL returns the admin session lifetime.
func (s *SessionManager) AdminTTL() time.Duration {
	return s.adminTTL
}

func (s *SessionManager) parse(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}

	if !token.Valid {
		return nil, ErrSessionInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrSessionInvalid
	}

	return claims, nil
}
