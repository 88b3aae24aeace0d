package http

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itgelzam/portal/internal/auth"
	"github.com/itgelzam/portal/internal/db"
	"github.com/itgelzam/portal/internal/messages"
	"github.com/itgelzam/portal/internal/models"
)

const resetTokenTTL = time.Hour

type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ResetPasswordInput struct {
	Email string `json:"email"`
}

type UpdatePasswordInput struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// SessionResponse is what every successful auth call answers with.
type SessionResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (e *Env) session(c *gin.Context, status int, user models.User) {
	token, err := e.Tokens.Generate(user.ID, user.Username)
	if err != nil {
		log.Printf("Error issuing token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}
	c.JSON(status, SessionResponse{Token: token, User: user})
}

// Register creates an account. Pre-checks mirror the original sign-up form:
// username required, password at least six characters.
func (e *Env) Register(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	input.Email = strings.TrimSpace(input.Email)
	input.Username = strings.TrimSpace(input.Username)
	switch {
	case input.Username == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.ErrUsernameRequired})
		return
	case input.Email == "":
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.ErrEmailRequired})
		return
	case len(input.Password) < auth.MinPasswordLength:
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.ErrPasswordTooShort})
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}

	user := models.User{Email: input.Email, Username: input.Username, PasswordHash: hash}
	if err := e.DB.Create(&user).Error; err != nil {
		if db.IsDuplicate(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": messages.ErrAlreadyRegistered})
			return
		}
		log.Printf("Error creating user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}

	e.session(c, http.StatusCreated, user)
}

func (e *Env) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var user models.User
	err := e.DB.Where("email = ?", strings.TrimSpace(input.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && !auth.CheckPassword(input.Password, user.PasswordHash)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": messages.ErrInvalidLogin})
		return
	}
	if err != nil {
		log.Printf("Error fetching user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}

	e.session(c, http.StatusOK, user)
}

// Me answers the current identity plus its profile half.
func (e *Env) Me(c *gin.Context) {
	uid, _ := currentUser(c)
	var user models.User
	if err := e.DB.First(&user, uid).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": messages.ErrLoginRequired})
		return
	}
	c.JSON(http.StatusOK, user)
}

// ResetPassword issues a recovery token for the address. The answer is always
// ok so the endpoint cannot be used to probe which emails exist; without a
// mailer the token lands in the server log.
func (e *Env) ResetPassword(c *gin.Context) {
	var input ResetPasswordInput
	if err := c.ShouldBindJSON(&input); err != nil || strings.TrimSpace(input.Email) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.ErrEmailRequired})
		return
	}

	var user models.User
	err := e.DB.Where("email = ?", strings.TrimSpace(input.Email)).First(&user).Error
	if err == nil {
		reset := models.PasswordReset{
			Token:     uuid.New().String(),
			UserID:    user.ID,
			ExpiresAt: time.Now().Add(resetTokenTTL),
		}
		if err := e.DB.Create(&reset).Error; err != nil {
			log.Printf("Error creating reset token: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
			return
		}
		log.Printf("password reset token for %s: %s", user.Email, reset.Token)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Printf("Error fetching user for reset: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": messages.ResetRequested})
}

// UpdatePassword consumes a recovery token, sets the new password and answers
// a fresh session.
func (e *Env) UpdatePassword(c *gin.Context) {
	var input UpdatePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if len(input.Password) < auth.MinPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.ErrPasswordTooShort})
		return
	}

	var reset models.PasswordReset
	err := e.DB.Where("token = ? AND used = ?", input.Token, false).First(&reset).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && time.Now().After(reset.ExpiresAt)) {
		c.JSON(http.StatusBadRequest, gin.H{"error": messages.ErrResetTokenInvalid})
		return
	}
	if err != nil {
		log.Printf("Error fetching reset token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}

	var user models.User
	txErr := e.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, reset.UserID).Error; err != nil {
			return err
		}
		if err := tx.Model(&user).Update("password_hash", hash).Error; err != nil {
			return err
		}
		return tx.Model(&reset).Update("used", true).Error
	})
	if txErr != nil {
		log.Printf("Error in password update transaction: %v", txErr)
		c.JSON(http.StatusInternalServerError, gin.H{"error": messages.ErrServer})
		return
	}

	e.session(c, http.StatusOK, user)
}
