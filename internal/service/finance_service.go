package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/twinside/backend/internal/domain"
	"github.com/twinside/backend/internal/repository"
	"github.com/twinside/backend/internal/utils"
)

// withdrawCommissionPct is withheld from every payout request.
const withdrawCommissionPct = 20

// financeService implements FinanceService interface
type financeService struct {
	accounts repository.AccountRepository
	finance  repository.FinanceRepository
	logger   *zap.Logger
}

// NewFinanceService creates a new finance service
func NewFinanceService(
	accounts repository.AccountRepository,
	finance repository.FinanceRepository,
	logger *zap.Logger,
) FinanceService {
	return &financeService{accounts: accounts, finance: finance, logger: logger}
}

// RequestWithdraw opens a payout request for the net amount after commission.
// The balance is only debited when an admin settles the request.
func (s *financeService) RequestWithdraw(ctx context.Context, accountID string, amount int64, wallet string) (int64, error) {
	if wallet == "" {
		return 0, ErrMissingFields
	}
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account.Balance < amount {
		return 0, ErrInsufficientFunds
	}

	net := amount * (100 - withdrawCommissionPct) / 100
	id, err := s.finance.CreateWithdraw(ctx, accountID, net, wallet)
	if err != nil {
		return 0, fmt.Errorf("failed to create withdraw request: %w", err)
	}

	s.logger.Info("withdraw requested",
		zap.String("account_id", accountID),
		zap.Int64("requested", amount),
		zap.Int64("net", net),
		zap.Int64("withdraw_id", id),
	)
	return id, nil
}

// ListWithdraws returns all payout requests for the admin console.
func (s *financeService) ListWithdraws(ctx context.Context) ([]*domain.Withdraw, error) {
	withdraws, err := s.finance.ListWithdraws(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdraws: %w", err)
	}
	return withdraws, nil
}

// SettleWithdraw settles a pending request with the transfer reference.
func (s *financeService) SettleWithdraw(ctx context.Context, id int64, txHash string) error {
	if txHash == "" {
		return ErrMissingFields
	}

	if err := s.finance.SettleWithdraw(ctx, id, txHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWithdrawNotFound
		}
		return fmt.Errorf("failed to settle withdraw: %w", err)
	}

	s.logger.Info("withdraw settled", zap.Int64("withdraw_id", id), zap.String("tx_hash", txHash))
	return nil
}

// RejectWithdraw declines a pending request.
func (s *financeService) RejectWithdraw(ctx context.Context, id int64, reason string) error {
	if err := s.finance.RejectWithdraw(ctx, id, clamp(reason, maxAboutLen)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWithdrawNotFound
		}
		return fmt.Errorf("failed to reject withdraw: %w", err)
	}

	s.logger.Info("withdraw rejected", zap.Int64("withdraw_id", id))
	return nil
}

// ManualCredit adjusts a balance by hand, keyed by email. Amount may be
// negative.
func (s *financeService) ManualCredit(ctx context.Context, email string, amount int64, description string) error {
	if amount == 0 {
		return ErrInvalidAmount
	}

	account, err := s.accounts.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	if description == "" {
		description = "manual adjustment"
	}

	if err := s.finance.ManualCredit(ctx, account.ID, amount, description); err != nil {
		return fmt.Errorf("failed to apply manual credit: %w", err)
	}

	s.logger.Info("manual credit applied",
		zap.String("account_id", account.ID),
		zap.Int64("amount", amount),
	)
	return nil
}

// GrantPremium extends premium by the given number of days, counted from the
// current expiry when it is still in the future.
func (s *financeService) GrantPremium(ctx context.Context, accountID string, days int) error {
	if days <= 0 {
		return ErrInvalidAmount
	}

	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	base := time.Now()
	if account.PremiumUntil != nil && account.PremiumUntil.After(base) {
		base = *account.PremiumUntil
	}
	until := base.AddDate(0, 0, days)

	description := fmt.Sprintf("premium extended by %d days", days)
	if err := s.finance.GrantPremium(ctx, accountID, until, description); err != nil {
		return fmt.Errorf("failed to grant premium: %w", err)
	}

	s.logger.Info("premium granted",
		zap.String("account_id", accountID),
		zap.Time("until", until),
	)
	return nil
}

// Transactions returns the filtered ledger page.
func (s *financeService) Transactions(ctx context.Context, filter repository.TransactionFilter) ([]*domain.Transaction, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	transactions, total, err := s.finance.ListTransactions(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, total, nil
}

// Stats returns the finance dashboard snapshot.
func (s *financeService) Stats(ctx context.Context) (*domain.FinanceStats, error) {
	stats, err := s.finance.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load finance stats: %w", err)
	}
	return stats, nil
}
