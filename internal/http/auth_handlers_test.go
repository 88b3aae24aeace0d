package http

import (
	"net/http"
	"testing"
	"time"

	"github.com/itgelzam/portal/internal/messages"
	"github.com/itgelzam/portal/internal/models"
)

func TestRegisterValidation(t *testing.T) {
	router, _ := newTestEnv(t)

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr string
	}{
		{
			name:    "missing username",
			input:   RegisterInput{Email: "a@b.mn", Password: "secret1"},
			wantErr: messages.ErrUsernameRequired,
		},
		{
			name:    "missing email",
			input:   RegisterInput{Password: "secret1", Username: "bat"},
			wantErr: messages.ErrEmailRequired,
		},
		{
			name:    "short password",
			input:   RegisterInput{Email: "a@b.mn", Password: "12345", Username: "bat"},
			wantErr: messages.ErrPasswordTooShort,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, router, "POST", "/api/auth/register", tt.input, "", "")
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			if got := errorMessage(t, w); got != tt.wantErr {
				t.Errorf("error = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	router, _ := newTestEnv(t)
	registerUser(t, router, "bat@example.mn", "secret1", "bat")

	w := doJSON(t, router, "POST", "/api/auth/register",
		RegisterInput{Email: "bat@example.mn", Password: "secret2", Username: "dorj"}, "", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := errorMessage(t, w); got != messages.ErrAlreadyRegistered {
		t.Errorf("error = %q, want %q", got, messages.ErrAlreadyRegistered)
	}
}

func TestRegisterHidesPasswordHash(t *testing.T) {
	router, _ := newTestEnv(t)
	w := doJSON(t, router, "POST", "/api/auth/register",
		RegisterInput{Email: "bat@example.mn", Password: "secret1", Username: "bat"}, "", "")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}

	raw := decodeBody[map[string]any](t, w)
	user, ok := raw["user"].(map[string]any)
	if !ok {
		t.Fatalf("no user object in %v", raw)
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Error("response leaks passwordHash")
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Error("response leaks password_hash")
	}
}

func TestLogin(t *testing.T) {
	router, _ := newTestEnv(t)
	registerUser(t, router, "bat@example.mn", "secret1", "bat")

	t.Run("wrong password", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/auth/login",
			LoginInput{Email: "bat@example.mn", Password: "nope"}, "", "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
		if got := errorMessage(t, w); got != messages.ErrInvalidLogin {
			t.Errorf("error = %q, want %q", got, messages.ErrInvalidLogin)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/auth/login",
			LoginInput{Email: "who@example.mn", Password: "secret1"}, "", "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		w := doJSON(t, router, "POST", "/api/auth/login",
			LoginInput{Email: "bat@example.mn", Password: "secret1"}, "", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		session := decodeBody[SessionResponse](t, w)
		if session.Token == "" {
			t.Error("empty token")
		}
		if session.User.Username != "bat" {
			t.Errorf("username = %q, want bat", session.User.Username)
		}
	})
}

func TestMe(t *testing.T) {
	router, _ := newTestEnv(t)
	session := registerUser(t, router, "bat@example.mn", "secret1", "bat")

	w := doJSON(t, router, "GET", "/api/auth/me", nil, session.Token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	user := decodeBody[models.User](t, w)
	if user.Email != "bat@example.mn" {
		t.Errorf("email = %q", user.Email)
	}

	if w := doJSON(t, router, "GET", "/api/auth/me", nil, "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", w.Code)
	}
	if w := doJSON(t, router, "GET", "/api/auth/me", nil, "bogus", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", w.Code)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	router, env := newTestEnv(t)
	registerUser(t, router, "bat@example.mn", "oldsecret", "bat")

	// Unknown addresses get the same answer as known ones.
	w := doJSON(t, router, "POST", "/api/auth/reset-password",
		ResetPasswordInput{Email: "stranger@example.mn"}, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("unknown email: status = %d", w.Code)
	}

	w = doJSON(t, router, "POST", "/api/auth/reset-password",
		ResetPasswordInput{Email: "bat@example.mn"}, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("reset request: status = %d, body %s", w.Code, w.Body.String())
	}

	// Without a mailer the token only exists in the database.
	var reset models.PasswordReset
	if err := env.DB.Last(&reset).Error; err != nil {
		t.Fatalf("fetching reset token: %v", err)
	}

	w = doJSON(t, router, "POST", "/api/auth/update-password",
		UpdatePasswordInput{Token: reset.Token, Password: "newsecret"}, "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("update password: status = %d, body %s", w.Code, w.Body.String())
	}
	if session := decodeBody[SessionResponse](t, w); session.Token == "" {
		t.Error("update-password answered no session token")
	}

	// The token is single use.
	w = doJSON(t, router, "POST", "/api/auth/update-password",
		UpdatePasswordInput{Token: reset.Token, Password: "thirdsecret"}, "", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("reused token: status = %d, want 400", w.Code)
	}
	if got := errorMessage(t, w); got != messages.ErrResetTokenInvalid {
		t.Errorf("error = %q, want %q", got, messages.ErrResetTokenInvalid)
	}

	// Old password dead, new one live.
	if w := doJSON(t, router, "POST", "/api/auth/login",
		LoginInput{Email: "bat@example.mn", Password: "oldsecret"}, "", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("old password: status = %d, want 401", w.Code)
	}
	if w := doJSON(t, router, "POST", "/api/auth/login",
		LoginInput{Email: "bat@example.mn", Password: "newsecret"}, "", ""); w.Code != http.StatusOK {
		t.Errorf("new password: status = %d, want 200", w.Code)
	}
}

func TestUpdatePasswordExpiredToken(t *testing.T) {
	router, env := newTestEnv(t)
	session := registerUser(t, router, "bat@example.mn", "oldsecret", "bat")

	reset := models.PasswordReset{
		Token:     "expired-token",
		UserID:    session.User.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	if err := env.DB.Create(&reset).Error; err != nil {
		t.Fatalf("seeding reset token: %v", err)
	}

	w := doJSON(t, router, "POST", "/api/auth/update-password",
		UpdatePasswordInput{Token: "expired-token", Password: "newsecret"}, "", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if got := errorMessage(t, w); got != messages.ErrResetTokenInvalid {
		t.Errorf("error = %q, want %q", got, messages.ErrResetTokenInvalid)
	}
}
