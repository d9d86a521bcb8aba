package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/twinside/backend/internal/domain"
	"github.com/twinside/backend/internal/dto"
	"github.com/twinside/backend/internal/mail"
	"github.com/twinside/backend/internal/repository"
	"github.com/twinside/backend/internal/utils"
)

// authService implements AuthService interface
type authService struct {
	accounts   repository.AccountRepository
	tokens     repository.TokenRepository
	sessions   *utils.SessionManager
	notifier   *mail.Notifier
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(
	accounts repository.AccountRepository,
	tokens repository.TokenRepository,
	sessions *utils.SessionManager,
	notifier *mail.Notifier,
	bcryptCost int,
	logger *zap.Logger,
) AuthService {
	return &authService{
		accounts:   accounts,
		tokens:     tokens,
		sessions:   sessions,
		notifier:   notifier,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// Register creates a draft account plus its confirmation token and dispatches
// the confirmation mail.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) error {
	email := utils.SanitizeEmail(req.Email)
	nick := utils.SanitizeNick(req.Nick)

	if email == "" || req.Password == "" || nick == "" || req.Gender == "" || req.City == "" {
		return ErrMissingFields
	}
	if req.Gender == domain.GenderPair {
		if req.MaleDOB == "" || req.FemaleDOB == "" {
			return ErrMissingFields
		}
	} else if req.DOB == "" {
		return ErrMissingFields
	}
	if !utils.ValidateEmail(email) || !utils.ValidatePassword(req.Password) {
		return ErrMissingFields
	}

	passwordHash, err := utils.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		Email:        email,
		PasswordHash: passwordHash,
		Nick:         nick,
		Gender:       req.Gender,
		City:         req.City,
		Status:       domain.StatusDraft,
	}
	if req.Gender == domain.GenderPair {
		male, female := req.MaleDOB, req.FemaleDOB
		account.MaleDOB = &male
		account.FemaleDOB = &female
	} else {
		dob := req.DOB
		account.DOB = &dob
	}

	token := newVerificationToken(domain.PurposeConfirmEmail)

	err = s.accounts.CreateWithToken(ctx, account, token)
	if errors.Is(err, repository.ErrDuplicateToken) {
		// uuid collision on the token column, one retry is plenty
		token = newVerificationToken(domain.PurposeConfirmEmail)
		err = s.accounts.CreateWithToken(ctx, account, token)
	}
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateEmail):
			return ErrEmailExists
		case errors.Is(err, repository.ErrDuplicateNick):
			return ErrNickExists
		default:
			return fmt.Errorf("failed to create account: %w", err)
		}
	}

	s.logger.Info("account registered",
		zap.String("account_id", account.ID),
		zap.String("nick", account.Nick),
	)
	s.notifier.SendConfirmation(account.Email, token.Token)

	return nil
}

// Login authenticates the account and returns a signed session token.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.Account, string, error) {
	account, err := s.accounts.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to get account: %w", err)
	}

	if !utils.CheckPasswordHash(password, account.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}
	if account.Banned {
		return nil, "", ErrAccountBanned
	}
	if account.Status == domain.StatusDraft {
		return nil, "", ErrEmailNotConfirmed
	}

	session, err := s.sessions.IssueUser(account.ID, account.Email)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session: %w", err)
	}

	return account, session, nil
}

// Confirm consumes an email confirmation token and marks the account
// email_confirmed.
func (s *authService) Confirm(ctx context.Context, token string) error {
	accountID, err := s.tokens.Consume(ctx, token, domain.PurposeConfirmEmail)
	if err != nil {
		return mapTokenError(err)
	}

	// Resent tokens stay valid, so a stale one may land after the account
	// already advanced past draft. The transition is conditional and a miss
	// on a live account is a no-op, never a demotion.
	err = s.accounts.AdvanceStatus(ctx, accountID, domain.StatusDraft, domain.StatusEmailConfirmed)
	switch {
	case errors.Is(err, repository.ErrWrongStatus):
		s.logger.Info("confirmation token consumed after account left draft",
			zap.String("account_id", accountID))
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrUserNotFound
	case err != nil:
		return fmt.Errorf("failed to confirm account: %w", err)
	}

	s.logger.Info("email confirmed", zap.String("account_id", accountID))
	return nil
}

// ResendConfirmation issues a fresh confirmation token. Unknown emails and
// accounts past draft are silently ignored so the endpoint leaks nothing.
func (s *authService) ResendConfirmation(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get account: %w", err)
	}
	if account.Status != domain.StatusDraft {
		return nil
	}

	token, err := s.issueToken(ctx, account.ID, domain.PurposeConfirmEmail)
	if err != nil {
		return err
	}

	s.notifier.SendConfirmation(account.Email, token)
	return nil
}

// Forgot issues a password reset token. Enumeration-safe like resend.
func (s *authService) Forgot(ctx context.Context, email string) error {
	account, err := s.accounts.GetByEmail(ctx, utils.SanitizeEmail(email))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to get account: %w", err)
	}

	token, err := s.issueToken(ctx, account.ID, domain.PurposeResetPassword)
	if err != nil {
		return err
	}

	s.notifier.SendPasswordReset(account.Email, token)
	return nil
}

// ResetPassword consumes a reset token and replaces the password.
func (s *authService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || !utils.ValidatePassword(password) {
		return ErrMissingFields
	}

	accountID, err := s.tokens.Consume(ctx, token, domain.PurposeResetPassword)
	if err != nil {
		return mapTokenError(err)
	}

	passwordHash, err := utils.HashPassword(password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.accounts.UpdatePassword(ctx, accountID, passwordHash); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.Info("password reset", zap.String("account_id", accountID))
	return nil
}

// ExchangeImpersonation swaps an admin-minted grant for a session token
// flagged as impersonated.
func (s *authService) ExchangeImpersonation(ctx context.Context, grant string) (string, error) {
	accountID, email, err := s.sessions.VerifyImpersonationGrant(grant)
	if err != nil {
		if errors.Is(err, utils.ErrSessionExpired) {
			return "", ErrTokenExpired
		}
		return "", ErrTokenNotFound
	}

	if _, err := s.accounts.GetByID(ctx, accountID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get account: %w", err)
	}

	session, err := s.sessions.IssueImpersonated(accountID, email)
	if err != nil {
		return "", fmt.Errorf("failed to issue session: %w", err)
	}

	s.logger.Info("impersonation session issued", zap.String("account_id", accountID))
	return session, nil
}

func (s *authService) issueToken(ctx context.Context, accountID string, purpose domain.TokenPurpose) (string, error) {
	token := newVerificationToken(purpose)
	token.AccountID = accountID

	err := s.tokens.Create(ctx, token)
	if errors.Is(err, repository.ErrDuplicateToken) {
		token = newVerificationToken(purpose)
		token.AccountID = accountID
		err = s.tokens.Create(ctx, token)
	}
	if err != nil {
		return "", fmt.Errorf("failed to create verification token: %w", err)
	}

	return token.Token, nil
}

func newVerificationToken(purpose domain.TokenPurpose) *domain.VerificationToken {
	return &domain.VerificationToken{
		Token:     uuid.New().String(),
		Purpose:   purpose,
		ExpiresAt: time.Now().Add(purpose.TTL()),
	}
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrTokenNotFound
	case errors.Is(err, repository.ErrTokenUsed):
		return ErrTokenUsed
	case errors.Is(err, repository.ErrTokenExpired):
		return ErrTokenExpired
	default:
		return fmt.Errorf("failed to consume token: %w", err)
	}
}
