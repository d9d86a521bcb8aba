package dto

import "github.com/twinside/backend/internal/domain"

// OKResponse is the uniform success envelope.
type OKResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status,omitempty"`
	Next   string `json:"next,omitempty"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Error builds an error envelope for the given code.
func Error(code string) ErrorResponse {
	return ErrorResponse{OK: false, Error: code}
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	OK     bool          `json:"ok"`
	Status domain.Status `json:"status"`
}

// StatusResponse reports the caller's lifecycle status.
type StatusResponse struct {
	OK           bool          `json:"ok"`
	ID           string        `json:"id"`
	Nick         string        `json:"nick"`
	Email        string        `json:"email"`
	Status       domain.Status `json:"status"`
	AvatarPath   *string       `json:"avatar_path,omitempty"`
	RejectReason *string       `json:"reject_reason,omitempty"`
	Balance      int64         `json:"balance"`
	Premium      bool          `json:"premium"`
	Impersonated bool          `json:"impersonated,omitempty"`
}

// AccountView is the admin-facing account projection; the password hash is
// never serialized.
type AccountView struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	Nick         string        `json:"nick"`
	Gender       string        `json:"gender"`
	DOB          *string       `json:"dob,omitempty"`
	MaleDOB      *string       `json:"male_dob,omitempty"`
	FemaleDOB    *string       `json:"female_dob,omitempty"`
	City         string        `json:"city"`
	About        *string       `json:"about,omitempty"`
	LookingFor   *string       `json:"looking_for,omitempty"`
	Interests    *string       `json:"interests,omitempty"`
	AvatarPath   *string       `json:"avatar_path,omitempty"`
	VerifyPath   *string       `json:"verify_path,omitempty"`
	Status       domain.Status `json:"status"`
	RejectReason *string       `json:"reject_reason,omitempty"`
	Balance      int64         `json:"balance"`
	Premium      bool          `json:"premium"`
	Banned       bool          `json:"banned"`
	IsFake       bool          `json:"is_fake"`
	CreatedAt    string        `json:"created_at"`
}

// NewAccountView projects a domain account for admin responses.
func NewAccountView(account *domain.Account) AccountView {
	return AccountView{
		ID:           account.ID,
		Email:        account.Email,
		Nick:         account.Nick,
		Gender:       account.Gender,
		DOB:          account.DOB,
		MaleDOB:      account.MaleDOB,
		FemaleDOB:    account.FemaleDOB,
		City:         account.City,
		About:        account.About,
		LookingFor:   account.LookingFor,
		Interests:    account.Interests,
		AvatarPath:   account.AvatarPath,
		VerifyPath:   account.VerifyPath,
		Status:       account.Status,
		RejectReason: account.RejectReason,
		Balance:      account.Balance,
		Premium:      account.Premium,
		Banned:       account.Banned,
		IsFake:       account.IsFake,
		CreatedAt:    account.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// AccountListResponse is a paginated admin account listing.
type AccountListResponse struct {
	OK       bool          `json:"ok"`
	Accounts []AccountView `json:"accounts"`
	Total    int64         `json:"total"`
	Page     int           `json:"page"`
}

// ImpersonationResponse carries a freshly minted impersonation grant.
type ImpersonationResponse struct {
	OK    bool   `json:"ok"`
	Token string `json:"token"`
	URL   string `json:"url"`
}

// WithdrawResponse confirms an opened payout request.
type WithdrawResponse struct {
	OK bool  `json:"ok"`
	ID int64 `json:"id"`
}
