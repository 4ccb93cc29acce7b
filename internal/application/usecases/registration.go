package usecases

import (
	"context"
	"fmt"

	"tap-rating-bot/internal/domain/user"
)

// State is a step of the registration conversation
type State string

const (
	StateIdle          State = ""
	StateAwaitingName  State = "awaiting_name"
	StateAwaitingInfo  State = "awaiting_info"
	StateAwaitingPhoto State = "awaiting_photo"
)

// Prompt tells the chat front end what to say after a step
type Prompt int

const (
	PromptNone Prompt = iota
	PromptAskName
	PromptAskInfo
	PromptAskPhoto
	PromptTextRequired
	PromptPhotoRequired
	PromptCompleted
	PromptCancelled
)

// SessionKey identifies one conversation
type SessionKey struct {
	ChatID int64
	UserID int64
}

// Session is the persisted conversation state plus the pending form fields
type Session struct {
	State State  `json:"state"`
	Name  string `json:"name,omitempty"`
	Info  string `json:"info,omitempty"`
}

// StateStorage keeps sessions outside the process so they survive restarts.
// Get returns a zero Session when nothing is stored.
type StateStorage interface {
	Get(ctx context.Context, key SessionKey) (Session, error)
	Set(ctx context.Context, key SessionKey, session Session) error
	Clear(ctx context.Context, key SessionKey) error
}

// PhotoResolver turns a chat-provider file reference into a retrievable URL
type PhotoResolver interface {
	FileURL(fileID string) (string, error)
}

// ProfileCommitter persists a completed form
type ProfileCommitter interface {
	CommitProfile(ctx context.Context, id user.ID, name, info, photo string) (*user.User, error)
}

// Input is one inbound chat message as seen by the flow
type Input struct {
	Text        string
	PhotoFileID string
}

// Step is the outcome of feeding one message to the flow
type Step struct {
	State  State
	Prompt Prompt
	// User is set once the profile has been committed
	User *user.User
}

// Handled reports whether the message was consumed by the flow
func (s Step) Handled() bool {
	return s.Prompt != PromptNone
}

// RegistrationFlow collects name, info and photo over several chat turns
type RegistrationFlow struct {
	storage  StateStorage
	photos   PhotoResolver
	profiles ProfileCommitter
}

// NewRegistrationFlow creates a new registration flow
func NewRegistrationFlow(storage StateStorage, photos PhotoResolver, profiles ProfileCommitter) *RegistrationFlow {
	return &RegistrationFlow{
		storage:  storage,
		photos:   photos,
		profiles: profiles,
	}
}

// Begin starts (or restarts) the form at the name step
func (f *RegistrationFlow) Begin(ctx context.Context, key SessionKey) (Step, error) {
	if err := f.storage.Set(ctx, key, Session{State: StateAwaitingName}); err != nil {
		return Step{}, fmt.Errorf("failed to start registration: %w", err)
	}
	return Step{State: StateAwaitingName, Prompt: PromptAskName}, nil
}

// Cancel drops the session and any pending fields
func (f *RegistrationFlow) Cancel(ctx context.Context, key SessionKey) (Step, error) {
	if err := f.storage.Clear(ctx, key); err != nil {
		return Step{}, fmt.Errorf("failed to cancel registration: %w", err)
	}
	return Step{State: StateIdle, Prompt: PromptCancelled}, nil
}

// Current returns the state stored for key
func (f *RegistrationFlow) Current(ctx context.Context, key SessionKey) (State, error) {
	session, err := f.storage.Get(ctx, key)
	if err != nil {
		return StateIdle, fmt.Errorf("failed to load registration state: %w", err)
	}
	return session.State, nil
}

// Handle advances the conversation for the registered user id.
// When the session is idle the message is not consumed and Step.Handled is false.
func (f *RegistrationFlow) Handle(ctx context.Context, key SessionKey, id user.ID, in Input) (Step, error) {
	session, err := f.storage.Get(ctx, key)
	if err != nil {
		return Step{}, fmt.Errorf("failed to load registration state: %w", err)
	}

	switch session.State {
	case StateIdle:
		return Step{State: StateIdle, Prompt: PromptNone}, nil

	case StateAwaitingName:
		if in.Text == "" {
			return Step{State: session.State, Prompt: PromptTextRequired}, nil
		}
		session.Name = in.Text
		session.State = StateAwaitingInfo
		if err := f.storage.Set(ctx, key, session); err != nil {
			return Step{}, fmt.Errorf("failed to save registration state: %w", err)
		}
		return Step{State: StateAwaitingInfo, Prompt: PromptAskInfo}, nil

	case StateAwaitingInfo:
		if in.Text == "" {
			return Step{State: session.State, Prompt: PromptTextRequired}, nil
		}
		session.Info = in.Text
		session.State = StateAwaitingPhoto
		if err := f.storage.Set(ctx, key, session); err != nil {
			return Step{}, fmt.Errorf("failed to save registration state: %w", err)
		}
		return Step{State: StateAwaitingPhoto, Prompt: PromptAskPhoto}, nil

	case StateAwaitingPhoto:
		if in.PhotoFileID == "" {
			return Step{State: session.State, Prompt: PromptPhotoRequired}, nil
		}
		return f.commit(ctx, key, id, session, in.PhotoFileID)

	default:
		// Unknown state left by an older deployment; start over.
		if err := f.storage.Clear(ctx, key); err != nil {
			return Step{}, fmt.Errorf("failed to reset registration state: %w", err)
		}
		return Step{State: StateIdle, Prompt: PromptNone}, nil
	}
}

func (f *RegistrationFlow) commit(ctx context.Context, key SessionKey, id user.ID, session Session, fileID string) (Step, error) {
	photoURL, err := f.photos.FileURL(fileID)
	if err != nil {
		// Stay in AwaitingPhoto so the user can send the picture again.
		return Step{}, fmt.Errorf("failed to resolve photo: %w", err)
	}

	updated, commitErr := f.profiles.CommitProfile(ctx, id, session.Name, session.Info, photoURL)

	if err := f.storage.Clear(ctx, key); err != nil && commitErr == nil {
		return Step{}, fmt.Errorf("failed to clear registration state: %w", err)
	}
	if commitErr != nil {
		return Step{}, fmt.Errorf("failed to save profile: %w", commitErr)
	}

	return Step{State: StateIdle, Prompt: PromptCompleted, User: updated}, nil
}
