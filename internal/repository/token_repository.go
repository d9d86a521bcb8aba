package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/twinside/backend/internal/domain"
	"github.com/twinside/backend/pkg/database"
)

// tokenRepository implements TokenRepository interface
type tokenRepository struct {
	db *database.Postgres
}

// NewTokenRepository creates a new verification token repository
func NewTokenRepository(db *database.Postgres) TokenRepository {
	return &tokenRepository{db: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertToken(ctx context.Context, ex execer, token *domain.VerificationToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt.IsZero() {
		token.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO verification_tokens (id, account_id, token, purpose, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := ex.ExecContext(ctx, query,
		token.ID,
		token.AccountID,
		token.Token,
		token.Purpose,
		token.ExpiresAt,
		token.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return fmt.Errorf("failed to create verification token: %w", ErrDuplicateToken)
		}
		return fmt.Errorf("failed to create verification token: %w", err)
	}

	return nil
}

// Create inserts a new verification token.
func (r *tokenRepository) Create(ctx context.Context, token *domain.VerificationToken) error {
	return insertToken(ctx, r.db.DB, token)
}

// Consume marks the token used and returns its account in one conditional
// update, so two concurrent confirmations cannot both succeed. On a miss a
// follow-up read distinguishes unknown, already used and expired tokens.
func (r *tokenRepository) Consume(ctx context.Context, token string, purpose domain.TokenPurpose) (string, error) {
	query := `
		UPDATE verification_tokens
		SET used_at = now()
		WHERE token = $1 AND purpose = $2 AND used_at IS NULL AND expires_at > now()
		RETURNING account_id
	`

	var accountID string
	err := r.db.DB.QueryRowContext(ctx, query, token, purpose).Scan(&accountID)
	if err == nil {
		return accountID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("failed to consume verification token: %w", err)
	}

	return "", r.classifyMiss(ctx, token, purpose)
}

func (r *tokenRepository) classifyMiss(ctx context.Context, token string, purpose domain.TokenPurpose) error {
	query := `SELECT used_at FROM verification_tokens WHERE token = $1 AND purpose = $2`

	var usedAt sql.NullTime
	err := r.db.DB.QueryRowContext(ctx, query, token, purpose).Scan(&usedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to look up verification token: %w", err)
	}

	if usedAt.Valid {
		return ErrTokenUsed
	}

	return ErrTokenExpired
}
