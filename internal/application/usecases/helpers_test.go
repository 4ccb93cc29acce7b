package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"tap-rating-bot/internal/domain/user"
	"tap-rating-bot/internal/infrastructure/persistence"
)

type testEnv struct {
	users  *UserUseCase
	rating *RatingUseCase
	repo   user.Repository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := persistence.NewSQLiteDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	userRepo := persistence.NewUserRepository(db)
	ratingRepo := persistence.NewRatingRepository(db)

	return &testEnv{
		users:  NewUserUseCase(userRepo),
		rating: NewRatingUseCase(userRepo, ratingRepo),
		repo:   userRepo,
	}
}

func (e *testEnv) mustCreate(t *testing.T, telegramID int64, username string) *user.User {
	t.Helper()

	u, err := e.users.CreateUser(context.Background(), CreateUserInput{TelegramID: telegramID, Username: username})
	require.NoError(t, err)
	return u
}

type memoryStorage struct {
	mu       sync.Mutex
	sessions map[SessionKey]Session
	failSet  error
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{sessions: make(map[SessionKey]Session)}
}

func (m *memoryStorage) Get(_ context.Context, key SessionKey) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[key], nil
}

func (m *memoryStorage) Set(_ context.Context, key SessionKey, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.sessions[key] = s
	return nil
}

func (m *memoryStorage) Clear(_ context.Context, key SessionKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, key)
	return nil
}

type fakeResolver struct {
	err error
}

func (r fakeResolver) FileURL(fileID string) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return "https://api.telegram.org/file/bottoken/photos/" + fileID + ".jpg", nil
}

type failingCommitter struct{}

func (failingCommitter) CommitProfile(context.Context, user.ID, string, string, string) (*user.User, error) {
	return nil, errors.New("disk full")
}

type sentMessage struct {
	chatID int64
	text   string
}

type fakeNotifier struct {
	mu     sync.Mutex
	sent   []sentMessage
	failOn map[int64]error
}

func (n *fakeNotifier) SendMessage(chatID int64, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err, ok := n.failOn[chatID]; ok {
		return err
	}
	n.sent = append(n.sent, sentMessage{chatID: chatID, text: text})
	return nil
}
