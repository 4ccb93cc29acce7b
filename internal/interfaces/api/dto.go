package api

import (
	"time"

	"tap-rating-bot/internal/application/usecases"
	"tap-rating-bot/internal/domain/user"
)

// UserResponse is the JSON form of a user. Unset text fields are null.
// The stored photo link embeds the bot token and is never exposed.
type UserResponse struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Username   *string   `json:"username"`
	FirstName  *string   `json:"first_name"`
	LastName   *string   `json:"last_name"`
	IsActive   bool      `json:"is_active"`
	IsAdmin    bool      `json:"is_admin"`
	Taps       int64     `json:"taps"`
	Info       *string   `json:"info"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CreateUserRequest is the body of POST /users
type CreateUserRequest struct {
	TelegramID int64   `json:"telegram_id"`
	Username   *string `json:"username"`
	FirstName  *string `json:"first_name"`
	LastName   *string `json:"last_name"`
	IsActive   *bool   `json:"is_active"`
	IsAdmin    *bool   `json:"is_admin"`
}

// UpdateUserRequest is the body of PUT /users/:id; absent fields are left unchanged
type UpdateUserRequest struct {
	Username  *string `json:"username"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	IsActive  *bool   `json:"is_active"`
	IsAdmin   *bool   `json:"is_admin"`
}

type errorResponse struct {
	Detail string `json:"detail"`
	Field  string `json:"field,omitempty"`
}

func toUserResponse(u *user.User) UserResponse {
	return UserResponse{
		ID:         int64(u.ID()),
		TelegramID: int64(u.TelegramID()),
		Username:   nullable(u.Username()),
		FirstName:  nullable(u.FirstName()),
		LastName:   nullable(u.LastName()),
		IsActive:   u.IsActive(),
		IsAdmin:    u.IsAdmin(),
		Taps:       u.Taps(),
		Info:       nullable(u.Info()),
		CreatedAt:  u.CreatedAt(),
		UpdatedAt:  u.UpdatedAt(),
	}
}

func toUserResponses(users []*user.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func (r CreateUserRequest) toInput() usecases.CreateUserInput {
	return usecases.CreateUserInput{
		TelegramID: r.TelegramID,
		Username:   deref(r.Username),
		FirstName:  deref(r.FirstName),
		LastName:   deref(r.LastName),
		IsActive:   r.IsActive,
		IsAdmin:    r.IsAdmin,
	}
}

func (r UpdateUserRequest) toInput() usecases.UpdateUserInput {
	return usecases.UpdateUserInput{
		Username:  r.Username,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		IsActive:  r.IsActive,
		IsAdmin:   r.IsAdmin,
	}
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
