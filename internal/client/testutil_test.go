package client_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/itgelzam/portal/internal/auth"
	"github.com/itgelzam/portal/internal/client"
	internalhttp "github.com/itgelzam/portal/internal/http"
	"github.com/itgelzam/portal/internal/models"
	"github.com/itgelzam/portal/internal/storage"
)

// countingHandler wraps the router so tests can assert how many requests a
// view-model operation actually makes.
type countingHandler struct {
	next http.Handler
	n    atomic.Int64
}

func (h *countingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.n.Add(1)
	h.next.ServeHTTP(w, r)
}

func (h *countingHandler) Count() int64 { return h.n.Load() }

// newTestServer runs the real router against an in-memory database and hands
// back an API client pointed at it.
func newTestServer(t *testing.T) (*client.Client, *internalhttp.Env, *countingHandler) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("unwrapping sql.DB: %v", err)
	}
	// One connection keeps every query on the same in-memory database.
	sqlDB.SetMaxOpenConns(1)

	if err := gdb.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}

	store, err := storage.NewStore(t.TempDir(), "http://localhost:8080")
	if err != nil {
		t.Fatalf("creating media store: %v", err)
	}

	env := &internalhttp.Env{
		DB:            gdb,
		Tokens:        auth.NewTokenIssuer("test-secret", time.Hour),
		Store:         store,
		AdminPassword: "itgel2026",
	}
	router := gin.New()
	internalhttp.SetupRoutes(router, env, "*")

	counter := &countingHandler{next: router}
	server := httptest.NewServer(counter)
	t.Cleanup(server.Close)

	return client.New(server.URL), env, counter
}

// seedUser inserts an account directly and answers it with its password set.
func seedUser(t *testing.T, env *internalhttp.Env, email, password, username string) models.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	user := models.User{Email: email, Username: username, PasswordHash: hash}
	if err := env.DB.Create(&user).Error; err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return user
}

// seedPost inserts a feed post directly, sidestepping the rate limiter.
func seedPost(t *testing.T, env *internalhttp.Env, userID uint, username, title, content string) models.Testimony {
	t.Helper()
	post := models.Testimony{UserID: userID, Username: username, Title: title, Content: content}
	if err := env.DB.Create(&post).Error; err != nil {
		t.Fatalf("seeding post: %v", err)
	}
	return post
}

// seedComment inserts a comment row directly.
func seedComment(t *testing.T, env *internalhttp.Env, testimonyID, userID uint, username, content string) models.TestimonyComment {
	t.Helper()
	comment := models.TestimonyComment{
		TestimonyID: testimonyID,
		UserID:      userID,
		Username:    username,
		Content:     content,
	}
	if err := env.DB.Create(&comment).Error; err != nil {
		t.Fatalf("seeding comment: %v", err)
	}
	return comment
}

// waitEvent reads one auth event or fails after a short deadline.
func waitEvent(t *testing.T, events <-chan client.AuthEvent) client.AuthEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for auth event")
		return ""
	}
}
