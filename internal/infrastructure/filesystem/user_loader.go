package filesystem

import (
	"encoding/json"
	"fmt"
	"os"
)

// UserLoader handles loading user seed data from files
type UserLoader struct{}

// NewUserLoader creates a new user loader
func NewUserLoader() *UserLoader {
	return &UserLoader{}
}

// UserData represents the JSON structure of a seed file
type UserData struct {
	Users []UserEntry `json:"users"`
}

// UserEntry represents a single user in the seed file.
// Absent flags take the usual defaults: active, not admin.
type UserEntry struct {
	TelegramID int64  `json:"telegram_id"`
	Username   string `json:"username"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	IsActive   *bool  `json:"is_active"`
	IsAdmin    *bool  `json:"is_admin"`
}

// LoadFromFile loads users from a JSON file
func (ul *UserLoader) LoadFromFile(filename string) ([]UserEntry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open users file: %w", err)
	}
	defer file.Close()

	var data UserData
	decoder := json.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode users JSON: %w", err)
	}

	seen := make(map[int64]bool, len(data.Users))
	for i, entry := range data.Users {
		if entry.TelegramID <= 0 {
			return nil, fmt.Errorf("entry %d: telegram_id must be a positive integer", i+1)
		}
		if seen[entry.TelegramID] {
			return nil, fmt.Errorf("entry %d: duplicate telegram_id %d", i+1, entry.TelegramID)
		}
		seen[entry.TelegramID] = true
	}

	return data.Users, nil
}
