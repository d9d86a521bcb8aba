package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/twinside/backend/internal/domain"
	"github.com/twinside/backend/internal/dto"
	"github.com/twinside/backend/internal/mail"
	"github.com/twinside/backend/internal/repository"
	"github.com/twinside/backend/internal/utils"
)

const defaultRejectReason = "Your profile did not pass moderation."

// adminService implements AdminService interface
type adminService struct {
	accounts      repository.AccountRepository
	images        ImageStore
	sessions      *utils.SessionManager
	notifier      *mail.Notifier
	adminEmail    string
	adminPassword string
	bcryptCost    int
	logger        *zap.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	accounts repository.AccountRepository,
	images ImageStore,
	sessions *utils.SessionManager,
	notifier *mail.Notifier,
	adminEmail, adminPassword string,
	bcryptCost int,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		accounts:      accounts,
		images:        images,
		sessions:      sessions,
		notifier:      notifier,
		adminEmail:    adminEmail,
		adminPassword: adminPassword,
		bcryptCost:    bcryptCost,
		logger:        logger,
	}
}

// Login checks the configured admin credentials. An unconfigured admin
// account can never log in.
func (s *adminService) Login(ctx context.Context, email, password string) (string, error) {
	if s.adminEmail == "" || s.adminPassword == "" {
		return "", ErrInvalidCredentials
	}

	emailOK := subtle.ConstantTimeCompare([]byte(utils.SanitizeEmail(email)), []byte(s.adminEmail))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.adminPassword))
	if emailOK&passOK != 1 {
		return "", ErrInvalidCredentials
	}

	session, err := s.sessions.IssueAdmin(s.adminEmail)
	if err != nil {
		return "", fmt.Errorf("failed to issue admin session: %w", err)
	}

	s.logger.Info("admin logged in", zap.String("email", s.adminEmail))
	return session, nil
}

// Pending returns the moderation queue.
func (s *adminService) Pending(ctx context.Context, page, limit int) ([]*domain.Account, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	accounts, total, err := s.accounts.ListPending(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list pending accounts: %w", err)
	}

	return accounts, total, nil
}

// Approve marks the profile approved, clears any previous rejection and
// notifies the user.
func (s *adminService) Approve(ctx context.Context, accountID string) error {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.accounts.Moderate(ctx, accountID, domain.StatusApproved, nil); err != nil {
		return s.mapModerateError(err)
	}

	s.logger.Info("profile approved", zap.String("account_id", accountID))
	s.notifier.SendApproved(account.Email, account.Nick)
	return nil
}

// Reject marks the profile rejected with a reason and notifies the user.
func (s *adminService) Reject(ctx context.Context, accountID, reason string) error {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return err
	}

	reason = strings.TrimSpace(clamp(reason, maxAboutLen))
	if reason == "" {
		reason = defaultRejectReason
	}

	if err := s.accounts.Moderate(ctx, accountID, domain.StatusRejected, &reason); err != nil {
		return s.mapModerateError(err)
	}

	s.logger.Info("profile rejected",
		zap.String("account_id", accountID),
		zap.String("reason", reason),
	)
	s.notifier.SendRejected(account.Email, account.Nick, reason)
	return nil
}

// RequirePayment marks the profile as awaiting activation payment.
func (s *adminService) RequirePayment(ctx context.Context, accountID string) error {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return err
	}

	if err := s.accounts.Moderate(ctx, accountID, domain.StatusRequiresPayment, nil); err != nil {
		return s.mapModerateError(err)
	}

	s.logger.Info("payment required", zap.String("account_id", accountID))
	s.notifier.SendActivationRequired(account.Email, account.Nick)
	return nil
}

// MintImpersonation issues a short-lived grant for the target account.
func (s *adminService) MintImpersonation(ctx context.Context, accountID string) (string, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return "", err
	}

	grant, err := s.sessions.IssueImpersonationGrant(account.ID, account.Email)
	if err != nil {
		return "", fmt.Errorf("failed to issue impersonation grant: %w", err)
	}

	s.logger.Info("impersonation grant minted", zap.String("account_id", accountID))
	return grant, nil
}

// VerifyPhotoFile resolves the disk location of the account's verification
// shot so the handler can serve it without exposing the stored path.
func (s *adminService) VerifyPhotoFile(ctx context.Context, accountID string) (string, error) {
	account, err := s.getAccount(ctx, accountID)
	if err != nil {
		return "", err
	}
	if account.VerifyPath == nil {
		return "", ErrUserNotFound
	}

	diskPath, err := s.images.Resolve(*account.VerifyPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve verification shot: %w", err)
	}
	return diskPath, nil
}

// ListUsers returns the filtered admin account listing.
func (s *adminService) ListUsers(ctx context.Context, filter repository.AccountFilter) ([]*domain.Account, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	accounts, total, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}

	return accounts, total, nil
}

// SetFlags applies a partial update of banned/premium/balance.
func (s *adminService) SetFlags(ctx context.Context, accountID string, req *dto.AccountFlagsRequest) error {
	if req.Banned == nil && req.Premium == nil && req.Balance == nil {
		return ErrMissingFields
	}

	err := s.accounts.SetFlags(ctx, accountID, repository.AccountFlags{
		Banned:  req.Banned,
		Premium: req.Premium,
		Balance: req.Balance,
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update account flags: %w", err)
	}

	return nil
}

// DeleteFake removes a seeded fake profile. Real accounts are never deleted.
func (s *adminService) DeleteFake(ctx context.Context, accountID string) error {
	if err := s.accounts.DeleteFake(ctx, accountID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete fake account: %w", err)
	}

	s.logger.Info("fake profile deleted", zap.String("account_id", accountID))
	return nil
}

// CreateFake seeds an approved fake profile for the catalogue.
func (s *adminService) CreateFake(ctx context.Context, nick, gender, city, about string, avatar *multipart.FileHeader) (*domain.Account, error) {
	nick = utils.SanitizeNick(nick)
	if nick == "" || gender == "" {
		return nil, ErrMissingFields
	}

	var avatarPath *string
	if avatar != nil {
		path, err := s.images.Save(avatar, "avatars")
		if err != nil {
			return nil, err
		}
		avatarPath = &path
	}

	// fake profiles are never logged into, the password is throwaway
	passwordHash, err := utils.HashPassword(uuid.New().String(), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &domain.Account{
		Email:        fmt.Sprintf("fake-%s@twinside.local", uuid.New().String()[:8]),
		PasswordHash: passwordHash,
		Nick:         nick,
		Gender:       gender,
		City:         city,
		Status:       domain.StatusApproved,
		IsFake:       true,
		AvatarPath:   avatarPath,
	}
	if about != "" {
		a := clamp(about, maxAboutLen)
		account.About = &a
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if avatarPath != nil {
			_ = s.images.Remove(*avatarPath)
		}
		if errors.Is(err, repository.ErrDuplicateNick) {
			return nil, ErrNickExists
		}
		return nil, fmt.Errorf("failed to create fake account: %w", err)
	}

	s.logger.Info("fake profile created",
		zap.String("account_id", account.ID),
		zap.String("nick", account.Nick),
	)
	return account, nil
}

func (s *adminService) getAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (s *adminService) mapModerateError(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrUserNotFound
	}
	return fmt.Errorf("failed to moderate account: %w", err)
}
