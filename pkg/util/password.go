package util

import (
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

const (
	PasswordMinLen = 8
	PasswordMaxLen = 16
)

var (
	ErrPasswordLength    = errors.New("password must be 8-16 characters long")
	ErrPasswordUppercase = errors.New("password must contain at least one uppercase letter")
	ErrPasswordSpecial   = errors.New("password must contain at least one special character")
)

// HashPassword hashes a plain text password
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword checks if a plain text password matches a hashed password
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}

// ValidatePassword enforces the account password policy: 8-16 characters
// with at least one uppercase letter and one special character.
func ValidatePassword(password string) error {
	runes := []rune(password)
	if len(runes) < PasswordMinLen || len(runes) > PasswordMaxLen {
		return ErrPasswordLength
	}

	var hasUpper, hasSpecial bool
	for _, r := range runes {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return ErrPasswordUppercase
	}
	if !hasSpecial {
		return ErrPasswordSpecial
	}
	return nil
}
