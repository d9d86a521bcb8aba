package domain

import "time"

// Transaction types recorded in the ledger.
const (
	TxTypeWithdraw = "withdraw"
	TxTypeManual   = "manual"
	TxTypePremium  = "premium"
)

// Transaction is an append-only ledger entry against an account's balance.
type Transaction struct {
	ID          int64     `json:"id" db:"id"`
	AccountID   string    `json:"account_id" db:"account_id"`
	Email       string    `json:"email" db:"email"`
	Type        string    `json:"type" db:"type"`
	Amount      int64     `json:"amount" db:"amount"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Withdraw request statuses.
const (
	WithdrawPending  = "pending"
	WithdrawDone     = "done"
	WithdrawRejected = "rejected"
)

// Withdraw is a payout request awaiting admin settlement.
type Withdraw struct {
	ID        int64     `json:"id" db:"id"`
	AccountID string    `json:"account_id" db:"account_id"`
	Email     string    `json:"email" db:"email"`
	Nick      string    `json:"nick" db:"nick"`
	Amount    int64     `json:"amount" db:"amount"`
	Wallet    string    `json:"wallet" db:"wallet"`
	Status    string    `json:"status" db:"status"`
	TxHash    *string   `json:"tx_hash" db:"tx_hash"`
	Reason    *string   `json:"reason" db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// FinanceStats is the admin finance dashboard snapshot.
type FinanceStats struct {
	Users            int64 `json:"users"`
	Balance          int64 `json:"balance"`
	Withdrawn        int64 `json:"withdrawn"`
	PendingWithdraws int64 `json:"pending_withdraws"`
	TxCount          int64 `json:"tx_count"`
	PremiumUsers     int64 `json:"premium_users"`
	Income24h        int64 `json:"income_24h"`
}
