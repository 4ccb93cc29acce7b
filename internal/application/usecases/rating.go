package usecases

import (
	"context"
	"fmt"

	"tap-rating-bot/internal/domain/user"
)

// Leaderboard is what the rating button shows
type Leaderboard struct {
	Me        *user.User
	TotalTaps int64
	Top       []*user.User
}

// RatingUseCase handles taps and the leaderboard
type RatingUseCase struct {
	userRepo   user.Repository
	ratingRepo user.RatingRepository
}

// NewRatingUseCase creates a new rating use case
func NewRatingUseCase(userRepo user.Repository, ratingRepo user.RatingRepository) *RatingUseCase {
	return &RatingUseCase{
		userRepo:   userRepo,
		ratingRepo: ratingRepo,
	}
}

// Tap adds one tap to the user
func (uc *RatingUseCase) Tap(ctx context.Context, id user.ID) (*user.User, error) {
	u, err := uc.ratingRepo.IncrementTaps(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to increment taps: %w", err)
	}
	return u, nil
}

// TopUsers returns up to limit active users ranked by taps
func (uc *RatingUseCase) TopUsers(ctx context.Context, limit int) ([]*user.User, error) {
	users, err := uc.ratingRepo.TopUsers(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}
	return users, nil
}

// TotalTaps returns the sum of taps over all users
func (uc *RatingUseCase) TotalTaps(ctx context.Context) (int64, error) {
	total, err := uc.ratingRepo.TotalTaps(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to get total taps: %w", err)
	}
	return total, nil
}

// UpdateInfo sets the user's free-text info
func (uc *RatingUseCase) UpdateInfo(ctx context.Context, id user.ID, info string) (*user.User, error) {
	u, err := uc.ratingRepo.UpdateInfo(ctx, id, info)
	if err != nil {
		return nil, fmt.Errorf("failed to update info: %w", err)
	}
	return u, nil
}

// UpdatePhoto sets the user's photo reference
func (uc *RatingUseCase) UpdatePhoto(ctx context.Context, id user.ID, photo string) (*user.User, error) {
	u, err := uc.ratingRepo.UpdatePhoto(ctx, id, photo)
	if err != nil {
		return nil, fmt.Errorf("failed to update photo: %w", err)
	}
	return u, nil
}

// CommitProfile stores a completed registration form
func (uc *RatingUseCase) CommitProfile(ctx context.Context, id user.ID, name, info, photo string) (*user.User, error) {
	u, err := uc.ratingRepo.CommitProfile(ctx, id, name, info, photo)
	if err != nil {
		return nil, fmt.Errorf("failed to commit profile: %w", err)
	}
	return u, nil
}

// Leaderboard collects the caller's own record, the total and the top list
func (uc *RatingUseCase) Leaderboard(ctx context.Context, telegramID user.TelegramID, limit int) (*Leaderboard, error) {
	me, err := uc.userRepo.FindByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	total, err := uc.TotalTaps(ctx)
	if err != nil {
		return nil, err
	}

	top, err := uc.TopUsers(ctx, limit)
	if err != nil {
		return nil, err
	}

	return &Leaderboard{Me: me, TotalTaps: total, Top: top}, nil
}
