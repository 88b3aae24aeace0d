package http

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/itgelzam/portal/internal/auth"
	"github.com/itgelzam/portal/internal/models"
	"github.com/itgelzam/portal/internal/storage"
)

const testAdminPassword = "itgel2026"

// newTestEnv wires a router against an in-memory SQLite database.
func newTestEnv(t *testing.T) (*gin.Engine, *Env) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	// One connection keeps every query on the same in-memory database.
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrapping sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	store, err := storage.NewStore(t.TempDir(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("creating media store: %v", err)
	}

	env := &Env{
		DB:            gdb,
		Tokens:        auth.NewTokenIssuer("test-secret", time.Hour),
		Store:         store,
		AdminPassword: testAdminPassword,
	}
	router := gin.New()
	SetupRoutes(router, env, "*")
	return router, env
}

// doJSON performs one request and returns the recorder. Empty token/admin
// skip the corresponding header.
func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, token, admin string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling body: %v", err)
		}
		reader = bytes.NewReader(buf)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "192.0.2.1:1234"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if admin != "" {
		req.Header.Set("X-Admin-Token", admin)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decoding response %q: %v", w.Body.String(), err)
	}
	return out
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decoding error response %q: %v", w.Body.String(), err)
	}
	return payload.Error
}

// registerUser creates an account straight through the API and returns its
// session.
func registerUser(t *testing.T, router *gin.Engine, email, password, username string) SessionResponse {
	t.Helper()
	w := doJSON(t, router, "POST", "/api/auth/register",
		RegisterInput{Email: email, Password: password, Username: username}, "", "")
	if w.Code != 201 {
		t.Fatalf("register %s: status %d body %s", email, w.Code, w.Body.String())
	}
	return decodeBody[SessionResponse](t, w)
}

// seedTestimony inserts a feed post directly, sidestepping the rate limiter.
func seedTestimony(t *testing.T, env *Env, userID uint, username, title, content string) models.Testimony {
	t.Helper()
	testimony := models.Testimony{UserID: userID, Username: username, Title: title, Content: content}
	if err := env.DB.Create(&testimony).Error; err != nil {
		t.Fatalf("seeding testimony: %v", err)
	}
	return testimony
}
