package client_test

import (
	"errors"
	"testing"

	"github.com/itgelzam/portal/internal/client"
	"github.com/itgelzam/portal/internal/models"
)

func TestSignInAndOutPublishEvents(t *testing.T) {
	api, env, _ := newTestServer(t)
	seedUser(t, env, "bat@example.mn", "secret1", "bat")

	session := client.NewSessionHolder(api)
	defer session.Close()
	events, cancel := session.Subscribe()
	defer cancel()

	if err := session.SignIn("bat@example.mn", "secret1"); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if ev := waitEvent(t, events); ev != client.EventSignedIn {
		t.Errorf("event = %q, want SIGNED_IN", ev)
	}
	if session.Username() != "bat" {
		t.Errorf("Username() = %q, want bat", session.Username())
	}
	if api.Token() == "" {
		t.Error("token not stored on the client")
	}

	session.SignOut()
	if ev := waitEvent(t, events); ev != client.EventSignedOut {
		t.Errorf("event = %q, want SIGNED_OUT", ev)
	}
	if session.User() != nil {
		t.Error("User() != nil after sign-out")
	}
	if api.Token() != "" {
		t.Error("token survives sign-out")
	}
}

func TestSignInWrongPassword(t *testing.T) {
	api, env, _ := newTestServer(t)
	seedUser(t, env, "bat@example.mn", "secret1", "bat")

	session := client.NewSessionHolder(api)
	defer session.Close()

	var apiErr *client.APIError
	err := session.SignIn("bat@example.mn", "nope")
	if !errors.As(err, &apiErr) || apiErr.Status != 401 {
		t.Fatalf("SignIn = %v, want 401 APIError", err)
	}
	if session.User() != nil {
		t.Error("User() != nil after failed sign-in")
	}
}

// Sign-up pre-checks are local; a bad form never reaches the server.
func TestSignUpLocalValidation(t *testing.T) {
	api, _, counter := newTestServer(t)
	session := client.NewSessionHolder(api)
	defer session.Close()

	tests := []struct {
		name     string
		email    string
		password string
		username string
		wantErr  error
	}{
		{"blank username", "a@b.mn", "secret1", "   ", client.ErrUsernameRequired},
		{"short password", "a@b.mn", "12345", "bat", client.ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := counter.Count()
			if err := session.SignUp(tt.email, tt.password, tt.username); !errors.Is(err, tt.wantErr) {
				t.Errorf("SignUp = %v, want %v", err, tt.wantErr)
			}
			if n := counter.Count() - before; n != 0 {
				t.Errorf("made %d requests, want 0", n)
			}
		})
	}
}

func TestSignUp(t *testing.T) {
	api, _, _ := newTestServer(t)
	session := client.NewSessionHolder(api)
	defer session.Close()
	events, cancel := session.Subscribe()
	defer cancel()

	if err := session.SignUp("dorj@example.mn", "secret1", " dorj "); err != nil {
		t.Fatalf("SignUp: %v", err)
	}
	if ev := waitEvent(t, events); ev != client.EventSignedIn {
		t.Errorf("event = %q, want SIGNED_IN", ev)
	}
	if session.Username() != "dorj" {
		t.Errorf("Username() = %q, want trimmed dorj", session.Username())
	}
}

func TestStartWithStaleToken(t *testing.T) {
	api, _, _ := newTestServer(t)
	api.SetToken("not.a.token")

	session := client.NewSessionHolder(api)
	defer session.Close()
	session.Start()

	if session.User() != nil {
		t.Error("User() != nil for a stale token")
	}
	if api.Token() != "" {
		t.Error("stale token not cleared")
	}
}

func TestStartWithValidToken(t *testing.T) {
	api, env, _ := newTestServer(t)
	seedUser(t, env, "bat@example.mn", "secret1", "bat")
	if _, err := api.Login("bat@example.mn", "secret1"); err != nil {
		t.Fatalf("Login: %v", err)
	}

	// A fresh holder over the same client resolves the identity silently.
	session := client.NewSessionHolder(api)
	defer session.Close()
	events, cancel := session.Subscribe()
	defer cancel()

	session.Start()
	if session.Username() != "bat" {
		t.Errorf("Username() = %q, want bat", session.Username())
	}
	select {
	case ev := <-events:
		t.Errorf("Start published %q, want no event", ev)
	default:
	}
}

func TestConfirmPasswordResetEventOrder(t *testing.T) {
	api, env, _ := newTestServer(t)
	seedUser(t, env, "bat@example.mn", "oldsecret", "bat")

	session := client.NewSessionHolder(api)
	defer session.Close()
	events, cancel := session.Subscribe()
	defer cancel()

	if err := session.RequestPasswordReset("bat@example.mn"); err != nil {
		t.Fatalf("RequestPasswordReset: %v", err)
	}
	var reset models.PasswordReset
	if err := env.DB.Last(&reset).Error; err != nil {
		t.Fatalf("fetching reset token: %v", err)
	}

	if err := session.ConfirmPasswordReset(reset.Token, "newsecret"); err != nil {
		t.Fatalf("ConfirmPasswordReset: %v", err)
	}

	// Recovery fires before the fresh session signs in.
	if ev := waitEvent(t, events); ev != client.EventPasswordRecovery {
		t.Errorf("first event = %q, want PASSWORD_RECOVERY", ev)
	}
	if ev := waitEvent(t, events); ev != client.EventSignedIn {
		t.Errorf("second event = %q, want SIGNED_IN", ev)
	}
	if session.Username() != "bat" {
		t.Errorf("Username() = %q, want bat", session.Username())
	}
}

func TestUsernameFallback(t *testing.T) {
	api, _, _ := newTestServer(t)
	session := client.NewSessionHolder(api)
	defer session.Close()

	if got := session.Username(); got != "User" {
		t.Errorf("Username() = %q, want User", got)
	}
}
