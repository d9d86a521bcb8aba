package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/twinside/backend/internal/domain"
	"github.com/twinside/backend/pkg/database"
)

const accountColumns = `id, email, password_hash, nick, gender, dob, male_dob, female_dob,
		city, about, looking_for, interests, avatar_path, verify_path,
		status, reject_reason, balance, premium, premium_until, banned, is_fake,
		created_at, updated_at`

// accountRepository implements AccountRepository interface
type accountRepository struct {
	db *database.Postgres
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.Postgres) AccountRepository {
	return &accountRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (*domain.Account, error) {
	account := &domain.Account{}
	var (
		dob, maleDOB, femaleDOB          sql.NullString
		about, lookingFor, interests     sql.NullString
		avatarPath, verifyPath, rejected sql.NullString
		premiumUntil                     sql.NullTime
	)

	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.Nick,
		&account.Gender,
		&dob,
		&maleDOB,
		&femaleDOB,
		&account.City,
		&about,
		&lookingFor,
		&interests,
		&avatarPath,
		&verifyPath,
		&account.Status,
		&rejected,
		&account.Balance,
		&account.Premium,
		&premiumUntil,
		&account.Banned,
		&account.IsFake,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	assign := func(dst **string, v sql.NullString) {
		if v.Valid {
			s := v.String
			*dst = &s
		}
	}
	assign(&account.DOB, dob)
	assign(&account.MaleDOB, maleDOB)
	assign(&account.FemaleDOB, femaleDOB)
	assign(&account.About, about)
	assign(&account.LookingFor, lookingFor)
	assign(&account.Interests, interests)
	assign(&account.AvatarPath, avatarPath)
	assign(&account.VerifyPath, verifyPath)
	assign(&account.RejectReason, rejected)
	if premiumUntil.Valid {
		t := premiumUntil.Time
		account.PremiumUntil = &t
	}

	return account, nil
}

func duplicateError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
		if strings.Contains(pqErr.Constraint, "nick") {
			return ErrDuplicateNick
		}
		return ErrDuplicateEmail
	}
	return nil
}

const insertAccountQuery = `
	INSERT INTO accounts (id, email, password_hash, nick, gender, dob, male_dob, female_dob,
		city, about, looking_for, interests, avatar_path, verify_path,
		status, balance, premium, banned, is_fake, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
`

func insertAccountArgs(account *domain.Account) []any {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	if account.UpdatedAt.IsZero() {
		account.UpdatedAt = now
	}
	if account.Status == "" {
		account.Status = domain.StatusDraft
	}

	return []any{
		account.ID,
		account.Email,
		account.PasswordHash,
		account.Nick,
		account.Gender,
		account.DOB,
		account.MaleDOB,
		account.FemaleDOB,
		account.City,
		account.About,
		account.LookingFor,
		account.Interests,
		account.AvatarPath,
		account.VerifyPath,
		account.Status,
		account.Balance,
		account.Premium,
		account.Banned,
		account.IsFake,
		account.CreatedAt,
		account.UpdatedAt,
	}
}

// Create inserts a new account row.
func (r *accountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.db.DB.ExecContext(ctx, insertAccountQuery, insertAccountArgs(account)...)
	if err != nil {
		if dup := duplicateError(err); dup != nil {
			return fmt.Errorf("failed to create account: %w", dup)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// CreateWithToken inserts the account and its confirmation token atomically,
// so a failure cannot leave a tokenless draft account behind.
func (r *accountRepository) CreateWithToken(ctx context.Context, account *domain.Account, token *domain.VerificationToken) error {
	tx, err := r.db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, insertAccountQuery, insertAccountArgs(account)...); err != nil {
		if dup := duplicateError(err); dup != nil {
			return fmt.Errorf("failed to create account: %w", dup)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	token.AccountID = account.ID
	if err := insertToken(ctx, tx, token); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit account creation: %w", err)
	}

	return nil
}

// GetByID retrieves an account by ID
func (r *accountRepository) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.db.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account with id %s not found: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by id: %w", err)
	}

	return account, nil
}

// GetByEmail retrieves an account by email
func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`

	account, err := scanAccount(r.db.DB.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("account with email %s not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return account, nil
}

// AdvanceStatus moves the account from one lifecycle status to another in a
// single conditional update. A token consumed after the account already
// progressed past `from` must not drag it back, so a zero-row update on an
// existing account reports ErrWrongStatus instead of writing.
func (r *accountRepository) AdvanceStatus(ctx context.Context, id string, from, to domain.Status) error {
	query := `UPDATE accounts SET status = $2, updated_at = now() WHERE id = $1 AND status = $3`

	result, err := r.db.DB.ExecContext(ctx, query, id, to, from)
	if err != nil {
		return fmt.Errorf("failed to advance status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM accounts WHERE id = $1)`
	if err := r.db.DB.QueryRowContext(ctx, checkQuery, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check account %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("account %s not found: %w", id, ErrNotFound)
	}
	return fmt.Errorf("account %s is not %s: %w", id, from, ErrWrongStatus)
}

// SubmitProfile persists the profile fields and moves the account to
// profile_pending in a single conditional update, so two concurrent
// submissions cannot both pass the precondition. Rejected accounts may
// resubmit.
func (r *accountRepository) SubmitProfile(ctx context.Context, sub ProfileSubmission) error {
	query := `
		UPDATE accounts
		SET about = $2, looking_for = $3, interests = $4,
			avatar_path = $5, verify_path = $6,
			status = $7, updated_at = now()
		WHERE id = $1 AND status IN ($8, $9)
	`

	result, err := r.db.DB.ExecContext(ctx, query,
		sub.AccountID,
		sub.About,
		sub.LookingFor,
		sub.Interests,
		sub.AvatarPath,
		sub.VerifyPath,
		domain.StatusProfilePending,
		domain.StatusEmailConfirmed,
		domain.StatusRejected,
	)
	if err != nil {
		return fmt.Errorf("failed to submit profile: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrWrongStatus
	}

	return nil
}

// UpdateInfo edits the free-text profile fields in place.
func (r *accountRepository) UpdateInfo(ctx context.Context, id, about, interests, city string) error {
	query := `
		UPDATE accounts
		SET about = $2, interests = $3, city = $4, updated_at = now()
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, id, about, interests, city)
	if err != nil {
		return fmt.Errorf("failed to update info: %w", err)
	}

	return requireRowAffected(result, id)
}

// UpdatePassword replaces the stored password hash.
func (r *accountRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	query := `UPDATE accounts SET password_hash = $2, updated_at = now() WHERE id = $1`

	result, err := r.db.DB.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return requireRowAffected(result, id)
}

// Moderate records a moderation outcome. Approval passes a nil reason, which
// clears any previous rejection.
func (r *accountRepository) Moderate(ctx context.Context, id string, status domain.Status, rejectReason *string) error {
	query := `
		UPDATE accounts
		SET status = $2, reject_reason = $3, updated_at = now()
		WHERE id = $1
	`

	result, err := r.db.DB.ExecContext(ctx, query, id, status, rejectReason)
	if err != nil {
		return fmt.Errorf("failed to moderate account: %w", err)
	}

	return requireRowAffected(result, id)
}

// ListPending returns the moderation queue page plus total count.
func (r *accountRepository) ListPending(ctx context.Context, page, limit int) ([]*domain.Account, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM accounts WHERE status = $1`
	if err := r.db.DB.QueryRowContext(ctx, countQuery, domain.StatusProfilePending).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count pending accounts: %w", err)
	}

	query := `SELECT ` + accountColumns + `
		FROM accounts
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.DB.QueryContext(ctx, query, domain.StatusProfilePending, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending accounts: %w", err)
	}
	defer rows.Close()

	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

// List returns a filtered admin account listing plus total count.
func (r *accountRepository) List(ctx context.Context, filter AccountFilter) ([]*domain.Account, int64, error) {
	where := []string{}
	args := []any{}

	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		where = append(where, fmt.Sprintf("(LOWER(nick) LIKE $%d OR LOWER(email) LIKE $%d)", len(args), len(args)))
	}
	switch filter.Type {
	case "fake":
		where = append(where, "is_fake")
	case "real":
		where = append(where, "NOT is_fake")
	}

	whereSQL := ""
	if len(where) > 0 {
		whereSQL = "WHERE " + strings.Join(where, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM accounts ` + whereSQL
	if err := r.db.DB.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)
	query := fmt.Sprintf(`SELECT `+accountColumns+`
		FROM accounts %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		whereSQL, len(args)-1, len(args))

	rows, err := r.db.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, 0, err
	}

	return accounts, total, nil
}

// SetFlags applies a partial admin update of banned/premium/balance.
func (r *accountRepository) SetFlags(ctx context.Context, id string, flags AccountFlags) error {
	set := []string{"updated_at = now()"}
	args := []any{id}

	if flags.Banned != nil {
		args = append(args, *flags.Banned)
		set = append(set, fmt.Sprintf("banned = $%d", len(args)))
	}
	if flags.Premium != nil {
		args = append(args, *flags.Premium)
		set = append(set, fmt.Sprintf("premium = $%d", len(args)))
	}
	if flags.Balance != nil {
		args = append(args, *flags.Balance)
		set = append(set, fmt.Sprintf("balance = $%d", len(args)))
	}

	query := fmt.Sprintf(`UPDATE accounts SET %s WHERE id = $1`, strings.Join(set, ", "))

	result, err := r.db.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update account flags: %w", err)
	}

	return requireRowAffected(result, id)
}

// DeleteFake removes an account only if it is a seeded fake profile.
func (r *accountRepository) DeleteFake(ctx context.Context, id string) error {
	query := `DELETE FROM accounts WHERE id = $1 AND is_fake`

	result, err := r.db.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete fake account: %w", err)
	}

	return requireRowAffected(result, id)
}

func collectAccounts(rows *sql.Rows) ([]*domain.Account, error) {
	var accounts []*domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

func requireRowAffected(result sql.Result, id string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("account with id %s not found: %w", id, ErrNotFound)
	}

	return nil
}
