package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tap-rating-bot/internal/application/usecases"
	"tap-rating-bot/internal/domain/user"
)

func TestFormatLeaderboardText(t *testing.T) {
	me := user.Restore(user.Snapshot{ID: 2, TelegramID: 20, Username: "bob", Taps: 3})
	board := &usecases.Leaderboard{
		Me:        me,
		TotalTaps: 10,
		Top: []*user.User{
			user.Restore(user.Snapshot{ID: 1, TelegramID: 10, Username: "alice", Taps: 7}),
			me,
			user.Restore(user.Snapshot{ID: 3, TelegramID: 30}),
		},
	}

	want := "📊 Рейтинг пользователей\n\n" +
		"Ваши нажатия: 3\n" +
		"Всего нажатий: 10\n\n" +
		"Топ пользователей:\n" +
		"1. alice: 7\n" +
		"2. bob: 3\n" +
		"3. Аноним: 0\n"

	assert.Equal(t, want, FormatLeaderboardText(board))
}

func TestFormatProfileText(t *testing.T) {
	u := user.Restore(user.Snapshot{FirstName: "Alice", Info: "bio", Taps: 5})

	assert.Equal(t, "👤 Ваш профиль:\n\nИмя: Alice\nИнформация: bio\nНажатий: 5\n", FormatProfileText(u))
}

func TestPromptText(t *testing.T) {
	tests := []struct {
		prompt usecases.Prompt
		want   string
	}{
		{usecases.PromptAskName, AskNameText},
		{usecases.PromptAskInfo, AskInfoText},
		{usecases.PromptAskPhoto, AskPhotoText},
		{usecases.PromptTextRequired, TextRequiredText},
		{usecases.PromptPhotoRequired, PhotoRequiredText},
		{usecases.PromptCompleted, ProfileUpdatedText},
		{usecases.PromptCancelled, CancelledText},
		{usecases.PromptNone, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PromptText(tt.prompt))
	}
}

func TestKeyboards(t *testing.T) {
	main := CreateMainKeyboard()
	assert.True(t, main.ResizeKeyboard)
	assert.Len(t, main.Keyboard, 2)
	assert.Equal(t, ButtonRating, main.Keyboard[0][0].Text)
	assert.Equal(t, ButtonTap, main.Keyboard[0][1].Text)
	assert.Equal(t, ButtonSettings, main.Keyboard[1][0].Text)

	cancel := CreateCancelKeyboard()
	assert.Equal(t, ButtonCancel, cancel.Keyboard[0][0].Text)
}
