package service

import (
	"context"
	"mime/multipart"

	"github.com/twinside/backend/internal/domain"
	"github.com/twinside/backend/internal/dto"
	"github.com/twinside/backend/internal/repository"
)

// AuthService defines account lifecycle operations exposed on the public API
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) error
	// Login returns the account and a signed session token.
	Login(ctx context.Context, email, password string) (*domain.Account, string, error)
	Confirm(ctx context.Context, token string) error
	// ResendConfirmation is enumeration-safe: unknown emails and accounts
	// past draft succeed silently.
	ResendConfirmation(ctx context.Context, email string) error
	// Forgot is enumeration-safe the same way.
	Forgot(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	// ExchangeImpersonation swaps a short-lived admin-minted grant for a
	// regular session token marked as impersonated.
	ExchangeImpersonation(ctx context.Context, grant string) (string, error)
}

// ProfileSubmitInput carries the multipart profile submission.
type ProfileSubmitInput struct {
	About      string
	LookingFor string
	Interests  string
	Avatar     *multipart.FileHeader
	VerifyShot *multipart.FileHeader
}

// ProfileService defines operations on the caller's own profile
type ProfileService interface {
	Submit(ctx context.Context, accountID string, input ProfileSubmitInput) error
	UpdateInfo(ctx context.Context, accountID string, req *dto.UpdateInfoRequest) error
	Status(ctx context.Context, accountID string) (*domain.Account, error)
}

// AdminService defines the moderation gate and admin user management
type AdminService interface {
	// Login checks the configured admin credentials and returns an admin
	// session token.
	Login(ctx context.Context, email, password string) (string, error)
	Pending(ctx context.Context, page, limit int) ([]*domain.Account, int64, error)
	Approve(ctx context.Context, accountID string) error
	Reject(ctx context.Context, accountID, reason string) error
	RequirePayment(ctx context.Context, accountID string) error
	// MintImpersonation issues a 5 minute grant for the target account.
	MintImpersonation(ctx context.Context, accountID string) (string, error)
	// VerifyPhotoFile resolves the on-disk file of the account's
	// verification shot. Returns ErrUserNotFound when no shot is stored.
	VerifyPhotoFile(ctx context.Context, accountID string) (string, error)

	ListUsers(ctx context.Context, filter repository.AccountFilter) ([]*domain.Account, int64, error)
	SetFlags(ctx context.Context, accountID string, req *dto.AccountFlagsRequest) error
	DeleteFake(ctx context.Context, accountID string) error
	CreateFake(ctx context.Context, nick, gender, city, about string, avatar *multipart.FileHeader) (*domain.Account, error)
}

// FinanceService defines the balance, withdraw and ledger operations
type FinanceService interface {
	RequestWithdraw(ctx context.Context, accountID string, amount int64, wallet string) (int64, error)
	ListWithdraws(ctx context.Context) ([]*domain.Withdraw, error)
	SettleWithdraw(ctx context.Context, id int64, txHash string) error
	RejectWithdraw(ctx context.Context, id int64, reason string) error
	ManualCredit(ctx context.Context, email string, amount int64, description string) error
	GrantPremium(ctx context.Context, accountID string, days int) error
	Transactions(ctx context.Context, filter repository.TransactionFilter) ([]*domain.Transaction, int64, error)
	Stats(ctx context.Context) (*domain.FinanceStats, error)
}
