package service

import (
	"context"
	"strings"
	"testing"

	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserServiceGetStatus(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewUserService(userRepo)
	ctx := context.Background()

	userRepo.On("GetByID", ctx, uint(7)).Return(&models.User{ID: 7, Status: "shipping it"}, nil)

	status, err := svc.GetStatus(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "shipping it", status)
}

func TestUserServiceGetStatusUnknownUser(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewUserService(userRepo)
	ctx := context.Background()

	userRepo.On("GetByID", ctx, uint(99)).Return(nil, models.NewNotFoundError("User", 99))

	_, err := svc.GetStatus(ctx, 99)
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.True(t, ok)
	assert.Equal(t, models.CodeNotFound, appErr.Code)
}

func TestUserServiceUpdateStatus(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewUserService(userRepo)
	ctx := context.Background()

	userRepo.On("UpdateStatus", ctx, uint(7), "back from holiday").Return(nil)

	require.NoError(t, svc.UpdateStatus(ctx, 7, "  back from holiday  "))
	userRepo.AssertExpectations(t)
}

func TestUserServiceUpdateStatusValidation(t *testing.T) {
	userRepo := new(mockUserRepo)
	svc := NewUserService(userRepo)
	ctx := context.Background()

	for name, status := range map[string]string{
		"empty":      "",
		"whitespace": "   \t ",
		"too long":   strings.Repeat("x", maxStatusLen+1),
	} {
		t.Run(name, func(t *testing.T) {
			err := svc.UpdateStatus(ctx, 7, status)
			require.Error(t, err)
			appErr, ok := err.(*models.AppError)
			require.True(t, ok)
			assert.Equal(t, models.CodeValidation, appErr.Code)
		})
	}
	userRepo.AssertNotCalled(t, "UpdateStatus")
}
