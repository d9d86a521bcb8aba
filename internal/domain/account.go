package domain

import "time"

// Status is the account's position in the verification/moderation workflow.
type Status string

const (
	StatusDraft           Status = "draft"
	StatusEmailConfirmed  Status = "email_confirmed"
	StatusProfilePending  Status = "profile_pending"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusRequiresPayment Status = "requires_payment"
)

// Valid reports whether s is one of the known lifecycle statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusEmailConfirmed, StatusProfilePending,
		StatusApproved, StatusRejected, StatusRequiresPayment:
		return true
	}
	return false
}

// GenderPair marks a profile that represents two people; such accounts carry
// MaleDOB/FemaleDOB instead of the single DOB.
const GenderPair = "pair"

// Account represents a registered user of the platform.
type Account struct {
	ID           string     `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Nick         string     `json:"nick" db:"nick"`
	Gender       string     `json:"gender" db:"gender"`
	DOB          *string    `json:"dob" db:"dob"`
	MaleDOB      *string    `json:"male_dob" db:"male_dob"`
	FemaleDOB    *string    `json:"female_dob" db:"female_dob"`
	City         string     `json:"city" db:"city"`
	About        *string    `json:"about" db:"about"`
	LookingFor   *string    `json:"looking_for" db:"looking_for"`
	Interests    *string    `json:"interests" db:"interests"`
	AvatarPath   *string    `json:"avatar_path" db:"avatar_path"`
	VerifyPath   *string    `json:"verify_path" db:"verify_path"`
	Status       Status     `json:"status" db:"status"`
	RejectReason *string    `json:"reject_reason" db:"reject_reason"`
	Balance      int64      `json:"balance" db:"balance"`
	Premium      bool       `json:"premium" db:"premium"`
	PremiumUntil *time.Time `json:"premium_until" db:"premium_until"`
	Banned       bool       `json:"banned" db:"banned"`
	IsFake       bool       `json:"is_fake" db:"is_fake"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// IsPair reports whether the account is a two-person profile.
func (a *Account) IsPair() bool {
	return a.Gender == GenderPair
}
