package handlers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tap-rating-bot/internal/apperror"
	"tap-rating-bot/internal/application/usecases"
	"tap-rating-bot/internal/domain/user"
	"tap-rating-bot/internal/infrastructure/persistence"
	"tap-rating-bot/internal/infrastructure/session"
	"tap-rating-bot/internal/interfaces/telegram/handlers/shared"
)

const adminID = 999

type sentMessage struct {
	chatID   int64
	text     string
	photo    string
	keyboard *tgbotapi.ReplyKeyboardMarkup
}

type fakeBot struct {
	mu       sync.Mutex
	sent     []sentMessage
	blocked  map[int64]bool
	photoErr error
	updates  chan tgbotapi.Update
	stopped  bool
}

func newFakeBot() *fakeBot {
	return &fakeBot{
		blocked: make(map[int64]bool),
		updates: make(chan tgbotapi.Update, 10),
	}
}

func (b *fakeBot) record(m sentMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.blocked[m.chatID] {
		return apperror.Blocked(errors.New("Forbidden: bot was blocked by the user"))
	}
	b.sent = append(b.sent, m)
	return nil
}

func (b *fakeBot) SendMessage(chatID int64, text string) error {
	return b.record(sentMessage{chatID: chatID, text: text})
}

func (b *fakeBot) SendMessageWithReplyKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) error {
	return b.record(sentMessage{chatID: chatID, text: text, keyboard: &keyboard})
}

func (b *fakeBot) SendPhoto(chatID int64, photoURL, caption string) error {
	if b.photoErr != nil {
		return b.photoErr
	}
	return b.record(sentMessage{chatID: chatID, text: caption, photo: photoURL})
}

func (b *fakeBot) FileURL(fileID string) (string, error) {
	return "https://api.telegram.org/file/bot123:test/photos/" + fileID + ".jpg", nil
}

func (b *fakeBot) GetUpdatesChan() tgbotapi.UpdatesChannel {
	return b.updates
}

func (b *fakeBot) StopReceivingUpdates() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
}

func (b *fakeBot) last(t *testing.T) sentMessage {
	t.Helper()
	b.mu.Lock()
	defer b.mu.Unlock()
	require.NotEmpty(t, b.sent)
	return b.sent[len(b.sent)-1]
}

func (b *fakeBot) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sent)
}

type testEnv struct {
	handler *BotHandler
	bot     *fakeBot
	users   *usecases.UserUseCase
	flow    *usecases.RegistrationFlow
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := persistence.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mr := miniredis.RunT(t)
	client, err := session.NewRedisClient(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	bot := newFakeBot()
	userRepo := persistence.NewUserRepository(db)
	userUseCase := usecases.NewUserUseCase(userRepo)
	ratingUseCase := usecases.NewRatingUseCase(userRepo, persistence.NewRatingRepository(db))
	flow := usecases.NewRegistrationFlow(session.NewRedisStorage(client, time.Hour), bot, ratingUseCase)
	digest := usecases.NewDigestUseCase(bot, userUseCase, ratingUseCase, usecases.DefaultDigestConfig())

	handler := NewBotHandler(bot, userUseCase, ratingUseCase, flow, digest, Options{
		IsAdmin: func(id int64) bool { return id == adminID },
	})

	return &testEnv{handler: handler, bot: bot, users: userUseCase, flow: flow}
}

func (e *testEnv) send(update tgbotapi.Update) {
	e.handler.HandleUpdate(context.Background(), update)
}

func newMessage(from int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: from, UserName: "user", FirstName: "Tg"},
		Chat: &tgbotapi.Chat{ID: from, Type: "private"},
		Text: text,
	}
}

func commandMsg(from int64, command string) tgbotapi.Update {
	msg := newMessage(from, command)
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(command)}}
	return tgbotapi.Update{Message: msg}
}

func textMsg(from int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: newMessage(from, text)}
}

func photoMsg(from int64, fileID string) tgbotapi.Update {
	msg := newMessage(from, "")
	msg.Photo = []tgbotapi.PhotoSize{
		{FileID: fileID + "_small", Width: 90, Height: 90},
		{FileID: fileID, Width: 800, Height: 800},
	}
	return tgbotapi.Update{Message: msg}
}

func (e *testEnv) register(t *testing.T, from int64, name string) {
	t.Helper()
	e.send(commandMsg(from, "/register"))
	e.send(textMsg(from, name))
	e.send(textMsg(from, "about "+name))
	e.send(photoMsg(from, "photo_"+name))
	require.Equal(t, shared.ProfileUpdatedText, e.bot.last(t).text)
}

func TestStart(t *testing.T) {
	env := newTestEnv(t)

	env.send(commandMsg(1, "/start"))

	got := env.bot.last(t)
	assert.Equal(t, shared.WelcomeText, got.text)
	require.NotNil(t, got.keyboard)
	assert.Equal(t, shared.CreateMainKeyboard(), *got.keyboard)
}

func TestHelp(t *testing.T) {
	env := newTestEnv(t)

	env.send(commandMsg(1, "/help"))

	assert.Equal(t, shared.GetHelpText(), env.bot.last(t).text)
}

func TestButtonsRequireRegistration(t *testing.T) {
	env := newTestEnv(t)

	for _, button := range []string{shared.ButtonTap, shared.ButtonRating, shared.ButtonSettings} {
		env.send(textMsg(1, button))
		assert.Equal(t, shared.PleaseRegisterText, env.bot.last(t).text, button)
	}

	env.send(commandMsg(1, "/profile"))
	assert.Equal(t, shared.NotRegisteredText, env.bot.last(t).text)
}

func TestRegistrationHappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.send(commandMsg(1, "/register"))
	got := env.bot.last(t)
	assert.Equal(t, shared.RegisterText, got.text)
	require.NotNil(t, got.keyboard)
	assert.Equal(t, shared.CreateCancelKeyboard(), *got.keyboard)

	env.send(textMsg(1, "Alice"))
	assert.Equal(t, shared.AskInfoText, env.bot.last(t).text)

	env.send(textMsg(1, "likes tapping"))
	assert.Equal(t, shared.AskPhotoText, env.bot.last(t).text)

	env.send(textMsg(1, "not a photo"))
	assert.Equal(t, shared.PhotoRequiredText, env.bot.last(t).text)

	env.send(photoMsg(1, "file_1"))
	got = env.bot.last(t)
	assert.Equal(t, shared.ProfileUpdatedText, got.text)
	require.NotNil(t, got.keyboard)
	assert.Equal(t, shared.CreateMainKeyboard(), *got.keyboard)

	u, err := env.users.GetUserByTelegramID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Alice", u.FirstName())
	assert.Equal(t, "likes tapping", u.Info())
	assert.Equal(t, "https://api.telegram.org/file/bot123:test/photos/file_1.jpg", u.Photo())

	state, err := env.flow.Current(ctx, usecases.SessionKey{ChatID: 1, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, usecases.StateIdle, state)

	env.send(commandMsg(1, "/profile"))
	got = env.bot.last(t)
	assert.Equal(t, u.Photo(), got.photo)
	assert.Equal(t, shared.FormatProfileText(u), got.text)
}

func TestRegistrationRejectsEmptyText(t *testing.T) {
	env := newTestEnv(t)

	env.send(commandMsg(1, "/register"))
	env.send(photoMsg(1, "file_1"))

	assert.Equal(t, shared.TextRequiredText, env.bot.last(t).text)

	state, err := env.flow.Current(context.Background(), usecases.SessionKey{ChatID: 1, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, usecases.StateAwaitingName, state)
}

func TestCancelFromAwaitingInfo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.send(commandMsg(1, "/register"))
	env.send(textMsg(1, "Alice"))
	env.send(textMsg(1, shared.ButtonCancel))

	got := env.bot.last(t)
	assert.Equal(t, shared.CancelledText, got.text)
	require.NotNil(t, got.keyboard)
	assert.Equal(t, shared.CreateMainKeyboard(), *got.keyboard)

	state, err := env.flow.Current(ctx, usecases.SessionKey{ChatID: 1, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, usecases.StateIdle, state)

	u, err := env.users.GetUserByTelegramID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Tg", u.FirstName())
	assert.Empty(t, u.Info())
}

func TestCommandsInterruptForm(t *testing.T) {
	env := newTestEnv(t)

	env.send(commandMsg(1, "/register"))
	env.send(commandMsg(1, "/help"))

	assert.Equal(t, shared.GetHelpText(), env.bot.last(t).text)

	env.send(textMsg(1, "Alice"))
	assert.Equal(t, shared.AskInfoText, env.bot.last(t).text)
}

func TestSettingsRestartsForm(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 1, "Alice")

	env.send(textMsg(1, shared.ButtonSettings))

	assert.Equal(t, shared.AskNameText, env.bot.last(t).text)
	state, err := env.flow.Current(context.Background(), usecases.SessionKey{ChatID: 1, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, usecases.StateAwaitingName, state)
}

func TestTapAndRating(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 1, "Alice")
	env.register(t, 2, "Bob")

	env.send(textMsg(1, shared.ButtonTap))
	assert.Equal(t, "Нажатий: 1", env.bot.last(t).text)
	env.send(textMsg(1, shared.ButtonTap))
	assert.Equal(t, "Нажатий: 2", env.bot.last(t).text)
	env.send(textMsg(2, shared.ButtonTap))

	env.send(textMsg(2, shared.ButtonRating))

	want := "📊 Рейтинг пользователей\n\n" +
		"Ваши нажатия: 1\n" +
		"Всего нажатий: 3\n\n" +
		"Топ пользователей:\n" +
		"1. user: 2\n" +
		"2. user: 1\n"
	assert.Equal(t, want, env.bot.last(t).text)
}

func TestBlockedUserIsDeactivated(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 1, "Alice")
	env.bot.blocked[1] = true

	env.send(textMsg(1, shared.ButtonTap))

	u, err := env.users.GetUserByTelegramID(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, u.IsActive())
	assert.Equal(t, int64(1), u.Taps())
}

func TestProfileFallsBackToTextWhenPhotoFails(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 1, "Alice")
	env.bot.photoErr = apperror.Transport(errors.New("Bad Request: wrong file identifier/HTTP URL specified"))
	before := env.bot.count()

	env.send(commandMsg(1, "/profile"))

	require.Equal(t, before+1, env.bot.count())
	got := env.bot.last(t)
	assert.Empty(t, got.photo)
	assert.Contains(t, got.text, "Alice")

	u, err := env.users.GetUserByTelegramID(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, u.IsActive())
}

func TestBlockedUserReactivatedOnReturn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, 1, "Alice")
	env.bot.blocked[1] = true
	env.send(textMsg(1, shared.ButtonTap))

	env.bot.blocked[1] = false
	env.send(textMsg(1, shared.ButtonTap))

	u, err := env.users.GetUserByTelegramID(ctx, 1)
	require.NoError(t, err)
	assert.True(t, u.IsActive())
	assert.Equal(t, int64(2), u.Taps())
}

func TestDigestCommand(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, 1, "Alice")

	env.send(commandMsg(1, "/digest"))
	assert.Equal(t, shared.AdminOnlyText, env.bot.last(t).text)

	env.send(commandMsg(adminID, "/digest"))

	got := env.bot.last(t)
	assert.Equal(t, int64(adminID), got.chatID)
	assert.Equal(t, shared.FormatDigestReport(usecases.DigestReport{Recipients: 1, Sent: 1}), got.text)
}

func TestDigestCommandHonoursAdminFlag(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, 1, "Alice")

	u, err := env.users.GetUserByTelegramID(ctx, 1)
	require.NoError(t, err)
	admin := true
	_, err = env.users.UpdateUser(ctx, u.ID(), usecases.UpdateUserInput{IsAdmin: &admin})
	require.NoError(t, err)

	env.send(commandMsg(1, "/digest"))

	assert.Equal(t, shared.FormatDigestReport(usecases.DigestReport{Recipients: 1, Sent: 1}), env.bot.last(t).text)
}

func TestUnknownMessage(t *testing.T) {
	env := newTestEnv(t)

	env.send(textMsg(1, "hello"))
	assert.Equal(t, shared.UnknownMessageText, env.bot.last(t).text)

	env.send(commandMsg(1, "/nope"))
	assert.Equal(t, shared.UnknownMessageText, env.bot.last(t).text)
}

func TestFormClosedWhenUserDeleted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.send(commandMsg(1, "/register"))
	u, err := env.users.GetUserByTelegramID(ctx, user.TelegramID(1))
	require.NoError(t, err)
	require.NoError(t, env.users.DeleteUser(ctx, u.ID()))

	env.send(textMsg(1, "Alice"))

	assert.Equal(t, shared.NotRegisteredText, env.bot.last(t).text)
	state, err := env.flow.Current(ctx, usecases.SessionKey{ChatID: 1, UserID: 1})
	require.NoError(t, err)
	assert.Equal(t, usecases.StateIdle, state)
}

func TestStartLoop(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- env.handler.Start(ctx) }()

	env.bot.updates <- commandMsg(1, "/start")
	assert.Eventually(t, func() bool { return env.bot.count() == 1 }, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
	assert.True(t, env.bot.stopped)
}
