package repository

import (
	"context"
	"time"

	"github.com/twinside/backend/internal/domain"
)

// ProfileSubmission carries the profile fields persisted when an account
// moves from email_confirmed to profile_pending.
type ProfileSubmission struct {
	AccountID  string
	About      string
	LookingFor string
	Interests  string
	AvatarPath string
	VerifyPath string
}

// AccountFilter narrows admin account listings.
type AccountFilter struct {
	Search string
	Type   string // "all", "fake" or "real"
	Page   int
	Limit  int
}

// AccountFlags is a partial update of admin-managed account flags; nil fields
// are left untouched.
type AccountFlags struct {
	Banned  *bool
	Premium *bool
	Balance *int64
}

// AccountRepository defines methods for account operations
type AccountRepository interface {
	// CreateWithToken inserts the account and its initial confirmation token
	// in a single transaction.
	CreateWithToken(ctx context.Context, account *domain.Account, token *domain.VerificationToken) error
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	// AdvanceStatus moves an account from one lifecycle status to another,
	// conditional on the current status being `from`. Returns ErrWrongStatus
	// when the account exists but already moved on.
	AdvanceStatus(ctx context.Context, id string, from, to domain.Status) error
	// SubmitProfile persists profile fields and moves the account to
	// profile_pending, conditional on the current status being
	// email_confirmed or rejected. Returns ErrWrongStatus otherwise.
	SubmitProfile(ctx context.Context, sub ProfileSubmission) error
	UpdateInfo(ctx context.Context, id, about, interests, city string) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	// Moderate sets the moderation outcome; a nil reason clears reject_reason.
	Moderate(ctx context.Context, id string, status domain.Status, rejectReason *string) error
	ListPending(ctx context.Context, page, limit int) ([]*domain.Account, int64, error)
	List(ctx context.Context, filter AccountFilter) ([]*domain.Account, int64, error)
	SetFlags(ctx context.Context, id string, flags AccountFlags) error
	DeleteFake(ctx context.Context, id string) error
}

// TokenRepository defines methods for verification token operations
type TokenRepository interface {
	Create(ctx context.Context, token *domain.VerificationToken) error
	// Consume atomically marks the token used and returns the owning account
	// id. Fails with ErrNotFound, ErrTokenUsed or ErrTokenExpired.
	Consume(ctx context.Context, token string, purpose domain.TokenPurpose) (string, error)
}

// TransactionFilter narrows admin ledger listings.
type TransactionFilter struct {
	Type  string
	Email string
	Page  int
	Limit int
}

// FinanceRepository defines methods for balance, ledger and withdraw operations
type FinanceRepository interface {
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, int64, error)
	CreateWithdraw(ctx context.Context, accountID string, amount int64, wallet string) (int64, error)
	ListWithdraws(ctx context.Context) ([]*domain.Withdraw, error)
	// SettleWithdraw marks the request done, debits the balance and writes
	// the ledger entry in one transaction.
	SettleWithdraw(ctx context.Context, id int64, txHash string) error
	RejectWithdraw(ctx context.Context, id int64, reason string) error
	// ManualCredit adjusts the balance and writes the ledger entry in one
	// transaction.
	ManualCredit(ctx context.Context, accountID string, amount int64, description string) error
	GrantPremium(ctx context.Context, accountID string, until time.Time, description string) error
	Stats(ctx context.Context) (*domain.FinanceStats, error)
}
