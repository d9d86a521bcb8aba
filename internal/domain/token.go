package domain

import "time"

// TokenPurpose scopes a verification token to a single flow.
type TokenPurpose string

const (
	PurposeConfirmEmail  TokenPurpose = "confirm_email"
	PurposeResetPassword TokenPurpose = "reset_password"
)

// TTLs per purpose.
const (
	ConfirmEmailTTL  = 24 * time.Hour
	ResetPasswordTTL = 30 * time.Minute
)

// TTL returns the issue-time lifetime for the purpose.
func (p TokenPurpose) TTL() time.Duration {
	if p == PurposeResetPassword {
		return ResetPasswordTTL
	}
	return ConfirmEmailTTL
}

// VerificationToken is a single-use, purpose-scoped, time-limited opaque
// credential proving control of an email address or authorization to reset a
// password. Tokens are never deleted; consumed ones keep UsedAt as an audit
// trail.
type VerificationToken struct {
	ID        string       `json:"id" db:"id"`
	AccountID string       `json:"account_id" db:"account_id"`
	Token     string       `json:"-" db:"token"`
	Purpose   TokenPurpose `json:"purpose" db:"purpose"`
	ExpiresAt time.Time    `json:"expires_at" db:"expires_at"`
	UsedAt    *time.Time   `json:"used_at" db:"used_at"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
}

// SessionClaims are the verified contents of a signed session credential.
type SessionClaims struct {
	AccountID    string
	Email        string
	Admin        bool
	Impersonated bool
	ExpiresAt    time.Time
}
