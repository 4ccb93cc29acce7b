package user

import (
	"time"
)

// User represents a registered bot user
type User struct {
	id         ID
	telegramID TelegramID
	username   string
	firstName  string
	lastName   string
	info       string
	photo      string
	isActive   bool
	isAdmin    bool
	taps       int64
	createdAt  time.Time
	updatedAt  time.Time
}

// ID represents the user's unique identifier
type ID int64

// TelegramID represents the user's Telegram ID
type TelegramID int64

// Snapshot is the flat form of a persisted user, used by repositories
type Snapshot struct {
	ID         ID
	TelegramID TelegramID
	Username   string
	FirstName  string
	LastName   string
	Info       string
	Photo      string
	IsActive   bool
	IsAdmin    bool
	Taps       int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewUser creates a new active, non-admin user with no taps
func NewUser(telegramID TelegramID, username, firstName, lastName string) *User {
	return &User{
		telegramID: telegramID,
		username:   username,
		firstName:  firstName,
		lastName:   lastName,
		isActive:   true,
	}
}

// Restore rebuilds a user from its persisted form
func Restore(s Snapshot) *User {
	return &User{
		id:         s.ID,
		telegramID: s.TelegramID,
		username:   s.Username,
		firstName:  s.FirstName,
		lastName:   s.LastName,
		info:       s.Info,
		photo:      s.Photo,
		isActive:   s.IsActive,
		isAdmin:    s.IsAdmin,
		taps:       s.Taps,
		createdAt:  s.CreatedAt,
		updatedAt:  s.UpdatedAt,
	}
}

// Getters
func (u *User) ID() ID                 { return u.id }
func (u *User) TelegramID() TelegramID { return u.telegramID }
func (u *User) Username() string       { return u.username }
func (u *User) FirstName() string      { return u.firstName }
func (u *User) LastName() string       { return u.lastName }
func (u *User) Info() string           { return u.info }
func (u *User) Photo() string          { return u.photo }
func (u *User) IsActive() bool         { return u.isActive }
func (u *User) IsAdmin() bool          { return u.isAdmin }
func (u *User) Taps() int64            { return u.taps }
func (u *User) CreatedAt() time.Time   { return u.createdAt }
func (u *User) UpdatedAt() time.Time   { return u.updatedAt }

// Snapshot returns a copy of the user's fields
func (u *User) Snapshot() Snapshot {
	return Snapshot{
		ID:         u.id,
		TelegramID: u.telegramID,
		Username:   u.username,
		FirstName:  u.firstName,
		LastName:   u.lastName,
		Info:       u.info,
		Photo:      u.photo,
		IsActive:   u.isActive,
		IsAdmin:    u.isAdmin,
		Taps:       u.taps,
		CreatedAt:  u.createdAt,
		UpdatedAt:  u.updatedAt,
	}
}

// DisplayName is what the leaderboard shows for this user
func (u *User) DisplayName() string {
	switch {
	case u.username != "":
		return u.username
	case u.firstName != "":
		return u.firstName
	default:
		return "Аноним"
	}
}

// Setters
func (u *User) SetUsername(username string)   { u.username = username }
func (u *User) SetFirstName(firstName string) { u.firstName = firstName }
func (u *User) SetLastName(lastName string)   { u.lastName = lastName }
func (u *User) SetActive(active bool)         { u.isActive = active }
func (u *User) SetAdmin(admin bool)           { u.isAdmin = admin }

// Stamp sets both timestamps on a user that is about to be created
func (u *User) Stamp(now time.Time) {
	u.createdAt = now
	u.updatedAt = now
}

// Touch refreshes the update timestamp
func (u *User) Touch(now time.Time) {
	u.updatedAt = now
}
