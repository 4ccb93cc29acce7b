package usecases

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistrationFlow_HappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.mustCreate(t, 100, "alice_tg")
	storage := newMemoryStorage()
	flow := NewRegistrationFlow(storage, fakeResolver{}, env.rating)
	key := SessionKey{ChatID: 100, UserID: 100}

	step, err := flow.Begin(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingName, step.State)
	assert.Equal(t, PromptAskName, step.Prompt)

	step, err = flow.Handle(ctx, key, u.ID(), Input{Text: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingInfo, step.State)
	assert.Equal(t, PromptAskInfo, step.Prompt)

	step, err = flow.Handle(ctx, key, u.ID(), Input{Text: "bio text"})
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPhoto, step.State)
	assert.Equal(t, PromptAskPhoto, step.Prompt)

	step, err = flow.Handle(ctx, key, u.ID(), Input{PhotoFileID: "file-1"})
	require.NoError(t, err)
	assert.Equal(t, StateIdle, step.State)
	assert.Equal(t, PromptCompleted, step.Prompt)
	require.NotNil(t, step.User)

	stored, err := env.users.GetUser(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.FirstName())
	assert.Equal(t, "bio text", stored.Info())
	assert.NotEmpty(t, stored.Photo())

	state, err := flow.Current(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)
}

func TestRegistrationFlow_CancelFromAwaitingInfo(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.mustCreate(t, 100, "alice_tg")
	storage := newMemoryStorage()
	flow := NewRegistrationFlow(storage, fakeResolver{}, env.rating)
	key := SessionKey{ChatID: 100, UserID: 100}

	_, err := flow.Begin(ctx, key)
	require.NoError(t, err)
	_, err = flow.Handle(ctx, key, u.ID(), Input{Text: "Alice"})
	require.NoError(t, err)

	step, err := flow.Cancel(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, step.State)
	assert.Equal(t, PromptCancelled, step.Prompt)

	session, err := storage.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, Session{}, session)

	stored, err := env.users.GetUser(ctx, u.ID())
	require.NoError(t, err)
	assert.Empty(t, stored.FirstName())
	assert.Empty(t, stored.Info())
	assert.Equal(t, u.UpdatedAt().Unix(), stored.UpdatedAt().Unix())
}

func TestRegistrationFlow_PhotoRequired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.mustCreate(t, 1, "a")
	flow := NewRegistrationFlow(newMemoryStorage(), fakeResolver{}, env.rating)
	key := SessionKey{ChatID: 1, UserID: 1}

	_, err := flow.Begin(ctx, key)
	require.NoError(t, err)
	_, err = flow.Handle(ctx, key, u.ID(), Input{Text: "Name"})
	require.NoError(t, err)
	_, err = flow.Handle(ctx, key, u.ID(), Input{Text: "Info"})
	require.NoError(t, err)

	step, err := flow.Handle(ctx, key, u.ID(), Input{Text: "not a photo"})
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPhoto, step.State)
	assert.Equal(t, PromptPhotoRequired, step.Prompt)
}

func TestRegistrationFlow_TextRequired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.mustCreate(t, 1, "a")
	flow := NewRegistrationFlow(newMemoryStorage(), fakeResolver{}, env.rating)
	key := SessionKey{ChatID: 1, UserID: 1}

	_, err := flow.Begin(ctx, key)
	require.NoError(t, err)

	step, err := flow.Handle(ctx, key, u.ID(), Input{PhotoFileID: "early"})
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingName, step.State)
	assert.Equal(t, PromptTextRequired, step.Prompt)
}

func TestRegistrationFlow_StoresTextVerbatim(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.mustCreate(t, 1, "a")
	flow := NewRegistrationFlow(newMemoryStorage(), fakeResolver{}, env.rating)
	key := SessionKey{ChatID: 1, UserID: 1}

	_, err := flow.Begin(ctx, key)
	require.NoError(t, err)

	step, err := flow.Handle(ctx, key, u.ID(), Input{Text: "  Alice \n"})
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingInfo, step.State)

	step, err = flow.Handle(ctx, key, u.ID(), Input{Text: "   "})
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPhoto, step.State)

	_, err = flow.Handle(ctx, key, u.ID(), Input{PhotoFileID: "file-1"})
	require.NoError(t, err)

	stored, err := env.users.GetUser(ctx, u.ID())
	require.NoError(t, err)
	assert.Equal(t, "  Alice \n", stored.FirstName())
	assert.Equal(t, "   ", stored.Info())
}

func TestRegistrationFlow_IdleDoesNotConsume(t *testing.T) {
	env := newTestEnv(t)
	flow := NewRegistrationFlow(newMemoryStorage(), fakeResolver{}, env.rating)

	step, err := flow.Handle(context.Background(), SessionKey{ChatID: 1, UserID: 1}, 1, Input{Text: "hello"})
	require.NoError(t, err)

	assert.False(t, step.Handled())
	assert.Equal(t, StateIdle, step.State)
}

func TestRegistrationFlow_UnknownStateResets(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	storage := newMemoryStorage()
	key := SessionKey{ChatID: 1, UserID: 1}
	require.NoError(t, storage.Set(ctx, key, Session{State: "legacy_state"}))
	flow := NewRegistrationFlow(storage, fakeResolver{}, env.rating)

	step, err := flow.Handle(ctx, key, 1, Input{Text: "hi"})
	require.NoError(t, err)
	assert.False(t, step.Handled())

	state, err := flow.Current(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)
}

func TestRegistrationFlow_ResolveFailureKeepsState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	u := env.mustCreate(t, 1, "a")
	storage := newMemoryStorage()
	key := SessionKey{ChatID: 1, UserID: 1}
	require.NoError(t, storage.Set(ctx, key, Session{State: StateAwaitingPhoto, Name: "N", Info: "I"}))
	flow := NewRegistrationFlow(storage, fakeResolver{err: errors.New("getFile failed")}, env.rating)

	_, err := flow.Handle(ctx, key, u.ID(), Input{PhotoFileID: "f"})
	require.Error(t, err)

	state, err := flow.Current(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingPhoto, state)
}

func TestRegistrationFlow_CommitFailureReturnsToIdle(t *testing.T) {
	ctx := context.Background()
	storage := newMemoryStorage()
	key := SessionKey{ChatID: 1, UserID: 1}
	require.NoError(t, storage.Set(ctx, key, Session{State: StateAwaitingPhoto, Name: "N", Info: "I"}))
	flow := NewRegistrationFlow(storage, fakeResolver{}, failingCommitter{})

	_, err := flow.Handle(ctx, key, 1, Input{PhotoFileID: "f"})
	require.Error(t, err)

	state, err := flow.Current(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, state)
}

func TestRegistrationFlow_BeginStorageError(t *testing.T) {
	env := newTestEnv(t)
	storage := newMemoryStorage()
	storage.failSet = errors.New("redis down")
	flow := NewRegistrationFlow(storage, fakeResolver{}, env.rating)

	_, err := flow.Begin(context.Background(), SessionKey{ChatID: 1, UserID: 1})

	assert.Error(t, err)
}
