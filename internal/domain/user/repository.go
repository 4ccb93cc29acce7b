package user

import "context"

// Repository defines the contract for user persistence.
// Lookups that miss return an apperror.ErrNotFound error.
type Repository interface {
	// Create persists a new user, assigning its ID and timestamps
	Create(ctx context.Context, user *User) (*User, error)

	// FindByID retrieves a user by their ID
	FindByID(ctx context.Context, id ID) (*User, error)

	// FindByTelegramID retrieves a user by their Telegram ID
	FindByTelegramID(ctx context.Context, telegramID TelegramID) (*User, error)

	// Update replaces all mutable fields of an existing user
	Update(ctx context.Context, user *User) (*User, error)

	// Delete removes a user; deleting an absent ID is not an error
	Delete(ctx context.Context, id ID) error

	// ListAll retrieves every user
	ListAll(ctx context.Context) ([]*User, error)

	// ListActive retrieves users with is_active set
	ListActive(ctx context.Context) ([]*User, error)

	// Deactivate clears is_active for the user with the given Telegram ID
	Deactivate(ctx context.Context, telegramID TelegramID) error

	// Ping checks that the store is reachable
	Ping(ctx context.Context) error
}

// RatingRepository handles the tap counter and profile fields
type RatingRepository interface {
	// IncrementTaps atomically adds one tap and returns the updated user
	IncrementTaps(ctx context.Context, id ID) (*User, error)

	// TopUsers returns active users by taps descending, ties by ID ascending
	TopUsers(ctx context.Context, limit int) ([]*User, error)

	// TotalTaps returns the sum of taps across all users
	TotalTaps(ctx context.Context) (int64, error)

	// UpdateInfo sets the free-text info field
	UpdateInfo(ctx context.Context, id ID, info string) (*User, error)

	// UpdatePhoto sets the photo reference
	UpdatePhoto(ctx context.Context, id ID, photo string) (*User, error)

	// CommitProfile sets name, info and photo in one transaction
	CommitProfile(ctx context.Context, id ID, name, info, photo string) (*User, error)
}
