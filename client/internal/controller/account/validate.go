package account

import (
	"errors"
	"unicode"
)

var (
	ErrWeakPassword     = errors.New("password must contain an uppercase letter, a lowercase letter and be at least 6 characters long")
	ErrPasswordMismatch = errors.New("passwords do not match")
	ErrMissingField     = errors.New("name, email and password are required")
)

const minPasswordLen = 6

// ValidatePassword reports whether password is acceptable for a new account.
func ValidatePassword(password string) error {
	var upper, lower bool
	n := 0
	for _, r := range password {
		n++
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}
	if !upper || !lower || n < minPasswordLen {
		return ErrWeakPassword
	}
	return nil
}

func (in RegisterInput) validate() error {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return ErrMissingField
	}
	if err := ValidatePassword(in.Password); err != nil {
		return err
	}
	if in.Password != in.Confirm {
		return ErrPasswordMismatch
	}
	return nil
}
