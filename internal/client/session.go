package client

import (
	"errors"
	"strings"
	"sync"

	"github.com/itgelzam/portal/internal/auth"
	"github.com/itgelzam/portal/internal/messages"
	"github.com/itgelzam/portal/internal/models"
)

// AuthEvent is one entry on the auth-state-change stream.
type AuthEvent string

const (
	EventSignedIn         AuthEvent = "SIGNED_IN"
	EventSignedOut        AuthEvent = "SIGNED_OUT"
	EventPasswordRecovery AuthEvent = "PASSWORD_RECOVERY"
)

var (
	ErrUsernameRequired = errors.New(messages.ErrUsernameRequired)
	ErrPasswordTooShort = errors.New(messages.ErrPasswordTooShort)
)

// SessionHolder wraps the current identity/profile and owns the auth-state
// stream. Views subscribe around their own lifetime and get told about
// sign-ins, sign-outs and password recovery.
type SessionHolder struct {
	api *Client

	mu      sync.Mutex
	user    *models.User
	subs    map[int]chan AuthEvent
	nextSub int
	closed  bool
}

func NewSessionHolder(api *Client) *SessionHolder {
	return &SessionHolder{api: api, subs: make(map[int]chan AuthEvent)}
}

// Start resolves the current identity from an existing token, if any. No
// event fires; subscribers only hear about changes.
func (s *SessionHolder) Start() {
	if s.api.Token() == "" {
		return
	}
	user, err := s.api.Me()
	if err != nil {
		// Stale or expired token; treat as signed out.
		s.api.SetToken("")
		return
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
}

// User answers the current identity, or nil when signed out.
func (s *SessionHolder) User() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Username answers the display name with the generic fallback.
func (s *SessionHolder) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || s.user.Username == "" {
		return messages.DefaultUsername
	}
	return s.user.Username
}

// Subscribe returns an event channel plus its cancel func. Events are
// delivered best-effort; a subscriber that stops draining misses events
// rather than blocking the publisher.
func (s *SessionHolder) Subscribe() (<-chan AuthEvent, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan AuthEvent, 8)
	s.subs[id] = ch
	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

func (s *SessionHolder) publish(ev AuthEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// SignIn authenticates and publishes a signed-in event.
func (s *SessionHolder) SignIn(email, password string) error {
	session, err := s.api.Login(email, password)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = &session.User
	s.mu.Unlock()
	s.publish(EventSignedIn)
	return nil
}

// SignUp registers a new account. Local pre-checks run before any remote
// call: username required, password at least six characters.
func (s *SessionHolder) SignUp(email, password, username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrUsernameRequired
	}
	if len(password) < auth.MinPasswordLength {
		return ErrPasswordTooShort
	}
	session, err := s.api.Register(email, password, strings.TrimSpace(username))
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = &session.User
	s.mu.Unlock()
	s.publish(EventSignedIn)
	return nil
}

// SignOut drops the session locally and tells subscribers.
func (s *SessionHolder) SignOut() {
	s.api.SetToken("")
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()
	s.publish(EventSignedOut)
}

// RequestPasswordReset asks the server for a recovery link.
func (s *SessionHolder) RequestPasswordReset(email string) error {
	return s.api.RequestPasswordReset(email)
}

// ConfirmPasswordReset consumes a recovery token. The recovery event fires
// first (the update-password form listens for it), then the fresh session
// signs the user in.
func (s *SessionHolder) ConfirmPasswordReset(token, newPassword string) error {
	if len(newPassword) < auth.MinPasswordLength {
		return ErrPasswordTooShort
	}
	s.publish(EventPasswordRecovery)
	session, err := s.api.UpdatePassword(token, newPassword)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.user = &session.User
	s.mu.Unlock()
	s.publish(EventSignedIn)
	return nil
}

// Close tears down all subscriptions.
func (s *SessionHolder) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
