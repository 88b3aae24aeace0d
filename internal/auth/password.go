package auth

import "golang.org/x/crypto/bcrypt"

// MinPasswordLength is enforced before any hashing or remote call.
const MinPasswordLength = 6

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func CheckPassword(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
