package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/twinside/backend/internal/domain"
	"github.com/twinside/backend/internal/dto"
	"github.com/twinside/backend/internal/repository"
)

const (
	maxAboutLen     = 300
	maxInterestsLen = 300
	maxCityLen      = 100
)

// ImageStore abstracts validated image persistence. Save and Remove speak
// URL paths; Resolve maps one to the file on disk for direct serving.
type ImageStore interface {
	Save(fileHeader *multipart.FileHeader, category string) (string, error)
	Remove(urlPath string) error
	Resolve(urlPath string) (string, error)
}

// profileService implements ProfileService interface
type profileService struct {
	accounts repository.AccountRepository
	images   ImageStore
	logger   *zap.Logger
}

// NewProfileService creates a new profile service
func NewProfileService(accounts repository.AccountRepository, images ImageStore, logger *zap.Logger) ProfileService {
	return &profileService{accounts: accounts, images: images, logger: logger}
}

// Submit stores the uploaded photos and moves the account to profile_pending.
func (s *profileService) Submit(ctx context.Context, accountID string, input ProfileSubmitInput) error {
	if input.Avatar == nil || input.VerifyShot == nil {
		return ErrFilesRequired
	}

	avatarPath, err := s.images.Save(input.Avatar, "avatars")
	if err != nil {
		return err
	}
	verifyPath, err := s.images.Save(input.VerifyShot, "verify")
	if err != nil {
		_ = s.images.Remove(avatarPath)
		return err
	}

	err = s.accounts.SubmitProfile(ctx, repository.ProfileSubmission{
		AccountID:  accountID,
		About:      clamp(input.About, maxAboutLen),
		LookingFor: clamp(input.LookingFor, maxAboutLen),
		Interests:  clamp(input.Interests, maxInterestsLen),
		AvatarPath: avatarPath,
		VerifyPath: verifyPath,
	})
	if err != nil {
		_ = s.images.Remove(avatarPath)
		_ = s.images.Remove(verifyPath)
		if errors.Is(err, repository.ErrWrongStatus) {
			return ErrWrongStatus
		}
		return fmt.Errorf("failed to submit profile: %w", err)
	}

	s.logger.Info("profile submitted", zap.String("account_id", accountID))
	return nil
}

// UpdateInfo edits the free-text profile fields without touching the status.
func (s *profileService) UpdateInfo(ctx context.Context, accountID string, req *dto.UpdateInfoRequest) error {
	err := s.accounts.UpdateInfo(ctx, accountID,
		clamp(req.About, maxAboutLen),
		clamp(req.Interests, maxInterestsLen),
		clamp(req.City, maxCityLen),
	)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to update info: %w", err)
	}

	return nil
}

// Status returns the caller's account.
func (s *profileService) Status(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	return account, nil
}

// clamp truncates s to max characters, counting runes so a multi-byte
// character is never cut in half.
func clamp(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}
