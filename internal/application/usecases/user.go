package usecases

import (
	"context"
	"fmt"

	"tap-rating-bot/internal/apperror"
	"tap-rating-bot/internal/domain/user"
	"tap-rating-bot/internal/logger"
)

// CreateUserInput carries the fields accepted when creating a user
type CreateUserInput struct {
	TelegramID int64
	Username   string
	FirstName  string
	LastName   string
	IsActive   *bool
	IsAdmin    *bool
}

// UpdateUserInput is a partial update; nil fields are left unchanged
type UpdateUserInput struct {
	Username  *string
	FirstName *string
	LastName  *string
	IsActive  *bool
	IsAdmin   *bool
}

// UserUseCase handles user-related business operations
type UserUseCase struct {
	userRepo user.Repository
}

// NewUserUseCase creates a new user use case
func NewUserUseCase(userRepo user.Repository) *UserUseCase {
	return &UserUseCase{userRepo: userRepo}
}

// GetOrRegister returns the user for a Telegram account, creating the record on first contact
func (uc *UserUseCase) GetOrRegister(
	ctx context.Context,
	telegramID user.TelegramID,
	username, firstName, lastName string,
) (*user.User, error) {
	existing, err := uc.userRepo.FindByTelegramID(ctx, telegramID)
	if err == nil {
		return uc.reactivate(ctx, existing)
	}
	if !apperror.IsNotFound(err) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	created, err := uc.userRepo.Create(ctx, user.NewUser(telegramID, username, firstName, lastName))
	if apperror.IsConflict(err) {
		// Lost a race with a concurrent first message from the same account.
		return uc.userRepo.FindByTelegramID(ctx, telegramID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save new user: %w", err)
	}

	return created, nil
}

// GetUser retrieves a user by ID
func (uc *UserUseCase) GetUser(ctx context.Context, id user.ID) (*user.User, error) {
	u, err := uc.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// GetUserByTelegramID retrieves a user by Telegram ID
func (uc *UserUseCase) GetUserByTelegramID(ctx context.Context, telegramID user.TelegramID) (*user.User, error) {
	u, err := uc.userRepo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

// ListUsers returns every user
func (uc *UserUseCase) ListUsers(ctx context.Context) ([]*user.User, error) {
	users, err := uc.userRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// ListActiveUsers returns users that have not been deactivated
func (uc *UserUseCase) ListActiveUsers(ctx context.Context) ([]*user.User, error) {
	users, err := uc.userRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active users: %w", err)
	}
	return users, nil
}

// CreateUser validates the input and persists a new user
func (uc *UserUseCase) CreateUser(ctx context.Context, in CreateUserInput) (*user.User, error) {
	if in.TelegramID <= 0 {
		return nil, apperror.ValidationFailed("telegram_id", "telegram_id must be a positive integer")
	}

	u := user.NewUser(user.TelegramID(in.TelegramID), in.Username, in.FirstName, in.LastName)
	if in.IsActive != nil {
		u.SetActive(*in.IsActive)
	}
	if in.IsAdmin != nil {
		u.SetAdmin(*in.IsAdmin)
	}

	created, err := uc.userRepo.Create(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return created, nil
}

// UpdateUser applies the non-nil fields of in to an existing user
func (uc *UserUseCase) UpdateUser(ctx context.Context, id user.ID, in UpdateUserInput) (*user.User, error) {
	u, err := uc.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		u.SetUsername(*in.Username)
	}
	if in.FirstName != nil {
		u.SetFirstName(*in.FirstName)
	}
	if in.LastName != nil {
		u.SetLastName(*in.LastName)
	}
	if in.IsActive != nil {
		u.SetActive(*in.IsActive)
	}
	if in.IsAdmin != nil {
		u.SetAdmin(*in.IsAdmin)
	}

	updated, err := uc.userRepo.Update(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return updated, nil
}

// DeleteUser hard-deletes a user; an absent ID is not an error
func (uc *UserUseCase) DeleteUser(ctx context.Context, id user.ID) error {
	if err := uc.userRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// ResumeByTelegramID returns a known user and reactivates them when a past
// delivery failure had marked them inactive
func (uc *UserUseCase) ResumeByTelegramID(ctx context.Context, telegramID user.TelegramID) (*user.User, error) {
	u, err := uc.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	return uc.reactivate(ctx, u)
}

func (uc *UserUseCase) reactivate(ctx context.Context, u *user.User) (*user.User, error) {
	if u.IsActive() {
		return u, nil
	}

	u.SetActive(true)
	updated, err := uc.userRepo.Update(ctx, u)
	if err != nil {
		return nil, fmt.Errorf("failed to reactivate user: %w", err)
	}
	logger.Info().Int64("telegram_id", int64(u.TelegramID())).Msg("User reactivated")
	return updated, nil
}

// DeactivateByTelegramID marks a user inactive, e.g. after they blocked the bot
func (uc *UserUseCase) DeactivateByTelegramID(ctx context.Context, telegramID user.TelegramID) error {
	if err := uc.userRepo.Deactivate(ctx, telegramID); err != nil {
		return fmt.Errorf("failed to deactivate user: %w", err)
	}
	return nil
}

// Ping reports whether the user store is reachable
func (uc *UserUseCase) Ping(ctx context.Context) error {
	return uc.userRepo.Ping(ctx)
}
