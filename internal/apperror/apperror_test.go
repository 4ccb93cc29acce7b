package apperror

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorsIs(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		target    error
		wantMatch bool
	}{
		{"NotFound wraps ErrNotFound", NotFound("user", 42), ErrNotFound, true},
		{"ValidationFailed wraps ErrValidation", ValidationFailed("telegram_id", "required"), ErrValidation, true},
		{"Conflict wraps ErrConflict", Conflict("user", 7), ErrConflict, true},
		{"Store wraps ErrStore", Store("find user", sql.ErrConnDone), ErrStore, true},
		{"Store exposes its cause", Store("find user", sql.ErrConnDone), sql.ErrConnDone, true},
		{"Transport wraps ErrTransport", Transport(errors.New("403")), ErrTransport, true},
		{"Blocked wraps ErrBlocked", Blocked(errors.New("403")), ErrBlocked, true},
		{"Blocked is a transport error", Blocked(errors.New("403")), ErrTransport, true},
		{"Transport is not Blocked", Transport(errors.New("500")), ErrBlocked, false},
		{"NotFound does not match ErrConflict", NotFound("user", 1), ErrConflict, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMatch, errors.Is(tt.err, tt.target))
		})
	}
}

func TestHelpersSeeThroughWrapping(t *testing.T) {
	err := fmt.Errorf("failed to get user: %w", NotFound("user", 3))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.False(t, IsConflict(err))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "user not found: 5", NotFound("user", 5).Error())
	assert.Equal(t, "failed to list users: boom", Store("list users", errors.New("boom")).Error())

	var appErr *AppError
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", ValidationFailed("id", "bad id")), &appErr))
	assert.Equal(t, "id", appErr.Field)
}
