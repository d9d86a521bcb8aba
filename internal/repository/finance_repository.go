package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/twinside/backend/internal/domain"
	"github.com/twinside/backend/pkg/database"
)

// financeRepository implements FinanceRepository interface
type financeRepository struct {
	db *database.Postgres
}

// NewFinanceRepository creates a new finance repository
func NewFinanceRepository(db *database.Postgres) FinanceRepository {
	return &financeRepository{db: db}
}

func recordTransaction(ctx context.Context, ex execer, accountID, txType string, amount int64, description string) error {
	query := `
		INSERT INTO transactions (account_id, type, amount, description, created_at)
		VALUES ($1, $2, $3, $4, now())
	`

	if _, err := ex.ExecContext(ctx, query, accountID, txType, amount, description); err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}

	return nil
}

// ListTransactions returns a filtered ledger page plus total count.
func (r *financeRepository) ListTransactions(ctx context.Context, filter TransactionFilter) ([]*domain.Transaction, int64, error) {
	where := []string{}
	args := []any{}

	if filter.Type != "" && filter.Type != "all" {
		args = append(args, filter.Type)
		where = append(where, fmt.Sprintf("t.type = $%d", len(args)))
	}
	if filter.Email != "" {
		args = append(args, "%"+strings.ToLower(filter.Email)+"%")
		where = append(where, fmt.Sprintf("LOWER(a.email) LIKE $%d", len(args)))
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM transactions t JOIN accounts a ON a.id = t.account_id ` + whereSQL
	if err := r.db.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`
		SELECT t.id, t.account_id, a.email, t.type, t.amount, t.description, t.created_at
		FROM transactions t
		JOIN accounts a ON a.id = t.account_id
		%s
		ORDER BY t.created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereSQL, len(args)-1, len(args))

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		tx := &domain.Transaction{}
		if err := rows.Scan(&tx.ID, &tx.AccountID, &tx.Email, &tx.Type, &tx.Amount, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, total, nil
}

// CreateWithdraw opens a pending payout request and returns its id.
func (r *financeRepository) CreateWithdraw(ctx context.Context, accountID string, amount int64, wallet string) (int64, error) {
	query := `
		INSERT INTO withdraws (account_id, amount, wallet, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id
	`

	var id int64
	if err := r.db.DB.QueryRowContext(ctx, query, accountID, amount, wallet, domain.WithdrawPending).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to create withdraw request: %w", err)
	}

	return id, nil
}

const withdrawColumns = `w.id, w.account_id, a.email, a.nick, w.amount, w.wallet,
		w.status, w.tx_hash, w.reason, w.created_at, w.updated_at`

func scanWithdraw(row rowScanner) (*domain.Withdraw, error) {
	w := &domain.Withdraw{}
	var txHash, reason sql.NullString

	err := row.Scan(
		&w.ID,
		&w.AccountID,
		&w.Email,
		&w.Nick,
		&w.Amount,
		&w.Wallet,
		&w.Status,
		&txHash,
		&reason,
		&w.CreatedAt,
		&w.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if txHash.Valid {
		s := txHash.String
		w.TxHash = &s
	}
	if reason.Valid {
		s := reason.String
		w.Reason = &s
	}

	return w, nil
}

// ListWithdraws returns all withdraw requests, newest first.
func (r *financeRepository) ListWithdraws(ctx context.Context) ([]*domain.Withdraw, error) {
	query := `SELECT ` + withdrawColumns + `
		FROM withdraws w JOIN accounts a ON a.id = w.account_id
		ORDER BY w.created_at DESC`

	rows, err := r.db.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list withdraws: %w", err)
	}
	defer rows.Close()

	var withdraws []*domain.Withdraw
	for rows.Next() {
		w, err := scanWithdraw(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan withdraw: %w", err)
		}
		withdraws = append(withdraws, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate withdraws: %w", err)
	}

	return withdraws, nil
}

// SettleWithdraw marks a pending request done, debits the account balance and
// writes the ledger entry atomically. The conditional update prevents settling
// the same request twice.
func (r *financeRepository) SettleWithdraw(ctx context.Context, id int64, txHash string) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	settleQuery := `
		UPDATE withdraws
		SET status = $2, tx_hash = $3, updated_at = now()
		WHERE id = $1 AND status = $4
		RETURNING account_id, amount
	`

	var accountID string
	var amount int64
	err = tx.QueryRowContext(ctx, settleQuery, id, domain.WithdrawDone, txHash, domain.WithdrawPending).
		Scan(&accountID, &amount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("pending withdraw %d not found: %w", id, ErrNotFound)
		}
		return fmt.Errorf("failed to settle withdraw: %w", err)
	}

	debitQuery := `UPDATE accounts SET balance = balance - $2, updated_at = now() WHERE id = $1`
	if _, err := tx.ExecContext(ctx, debitQuery, accountID, amount); err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}

	description := fmt.Sprintf("withdraw #%d settled, tx %s", id, txHash)
	if err := recordTransaction(ctx, tx, accountID, domain.TxTypeWithdraw, -amount, description); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit withdraw settlement: %w", err)
	}

	return nil
}

// RejectWithdraw declines a pending request; the balance is left untouched.
func (r *financeRepository) RejectWithdraw(ctx context.Context, id int64, reason string) error {
	query := `
		UPDATE withdraws
		SET status = $2, reason = $3, updated_at = now()
		WHERE id = $1 AND status = $4
	`

	result, err := r.db.DB.ExecContext(ctx, query, id, domain.WithdrawRejected, reason, domain.WithdrawPending)
	if err != nil {
		return fmt.Errorf("failed to reject withdraw: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("pending withdraw %d not found: %w", id, ErrNotFound)
	}

	return nil
}

// ManualCredit adjusts the balance and writes the ledger entry atomically.
// Amount may be negative.
func (r *financeRepository) ManualCredit(ctx context.Context, accountID string, amount int64, description string) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE accounts SET balance = balance + $2, updated_at = now() WHERE id = $1`
	result, err := tx.ExecContext(ctx, query, accountID, amount)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}
	if err := requireRowAffected(result, accountID); err != nil {
		return err
	}

	if err := recordTransaction(ctx, tx, accountID, domain.TxTypeManual, amount, description); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit manual credit: %w", err)
	}

	return nil
}

// GrantPremium flips the premium flag with an expiry and records it in the
// ledger atomically.
func (r *financeRepository) GrantPremium(ctx context.Context, accountID string, until time.Time, description string) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `UPDATE accounts SET premium = TRUE, premium_until = $2, updated_at = now() WHERE id = $1`
	result, err := tx.ExecContext(ctx, query, accountID, until)
	if err != nil {
		return fmt.Errorf("failed to grant premium: %w", err)
	}
	if err := requireRowAffected(result, accountID); err != nil {
		return err
	}

	if err := recordTransaction(ctx, tx, accountID, domain.TxTypePremium, 0, description); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit premium grant: %w", err)
	}

	return nil
}

// Stats aggregates the admin finance dashboard snapshot.
func (r *financeRepository) Stats(ctx context.Context) (*domain.FinanceStats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM accounts WHERE NOT is_fake),
			(SELECT COALESCE(SUM(balance), 0) FROM accounts),
			(SELECT COALESCE(SUM(amount), 0) FROM withdraws WHERE status = 'done'),
			(SELECT COUNT(*) FROM withdraws WHERE status = 'pending'),
			(SELECT COUNT(*) FROM transactions),
			(SELECT COUNT(*) FROM accounts WHERE premium),
			(SELECT COALESCE(SUM(amount), 0) FROM transactions
				WHERE amount > 0 AND created_at > now() - INTERVAL '24 hours')
	`

	stats := &domain.FinanceStats{}
	err := r.db.DB.QueryRowContext(ctx, query).Scan(
		&stats.Users,
		&stats.Balance,
		&stats.Withdrawn,
		&stats.PendingWithdraws,
		&stats.TxCount,
		&stats.PremiumUsers,
		&stats.Income24h,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load finance stats: %w", err)
	}

	return stats, nil
}
