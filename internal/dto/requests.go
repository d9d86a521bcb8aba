package dto

// RegisterRequest is the registration payload. Gender "pair" uses the
// male_dob/female_dob fields, single profiles use dob.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Nick      string `json:"nick"`
	Gender    string `json:"gender"`
	City      string `json:"city"`
	DOB       string `json:"dob"`
	MaleDOB   string `json:"male_dob"`
	FemaleDOB string `json:"female_dob"`
}

// LoginRequest is the login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// EmailRequest carries a bare email, used by resend-confirmation and forgot.
type EmailRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the password reset payload
type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// UpdateInfoRequest edits the free-text profile fields.
type UpdateInfoRequest struct {
	About     string `json:"about"`
	Interests string `json:"interests"`
	City      string `json:"city"`
}

// RejectRequest carries an optional moderation rejection reason.
type RejectRequest struct {
	Reason string `json:"reason"`
}

// WithdrawRequest opens a payout request.
type WithdrawRequest struct {
	Amount int64  `json:"amount"`
	Wallet string `json:"wallet"`
}

// SettleWithdrawRequest settles a payout with the transfer reference.
type SettleWithdrawRequest struct {
	TxHash string `json:"tx_hash"`
}

// ManualCreditRequest adjusts an account balance by hand, keyed by email.
type ManualCreditRequest struct {
	Email       string `json:"email"`
	Amount      int64  `json:"amount"`
	Description string `json:"description"`
}

// GrantPremiumRequest extends premium by the given number of days.
type GrantPremiumRequest struct {
	UserID string `json:"user_id"`
	Days   int    `json:"days"`
}

// AccountFlagsRequest is a partial admin update; omitted fields are untouched.
type AccountFlagsRequest struct {
	Banned  *bool  `json:"banned"`
	Premium *bool  `json:"premium"`
	Balance *int64 `json:"balance"`
}
