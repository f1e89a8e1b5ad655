package domain

import "golang.org/x/crypto/bcrypt"

// User is a staff identity used only for authentication. The web surface
// never mutates users.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
}

// CheckPassword reports whether the plaintext password matches the stored
// bcrypt hash. The comparison happens inside bcrypt, never on plaintext.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
