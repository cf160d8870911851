package service

import (
	"context"
	"strings"

	"ripple/internal/models"
	"ripple/internal/repository"
)

const maxStatusLen = 280

// UserService handles profile-level operations. Credential flows live in the
// HTTP layer next to token issuance.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetStatus returns the status text of the given user.
func (s *UserService) GetStatus(ctx context.Context, userID uint) (string, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Status, nil
}

// UpdateStatus replaces the status text of the given user.
func (s *UserService) UpdateStatus(ctx context.Context, userID uint, status string) error {
	status = strings.TrimSpace(status)
	if status == "" {
		return models.NewValidationError("Status must not be empty")
	}
	if len(status) > maxStatusLen {
		return models.NewValidationError("Status too long (max 280 characters)")
	}
	return s.userRepo.UpdateStatus(ctx, userID, status)
}
