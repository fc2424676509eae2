package validators

import "errors"

const (
	MinPasswordLength = 6
	MaxPasswordLength = 255
)

var (
	ErrPasswordTooShort = errors.New("password must be at least 6 characters long")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordEmpty    = errors.New("no password provided")
)

// PasswordValidator applies the same length rules as the request bodies, for
// passwords that come from somewhere other than an HTTP request
func PasswordValidator(p string) error {
	if p == "" {
		return ErrPasswordEmpty
	}

	if len(p) < MinPasswordLength {
		return ErrPasswordTooShort
	}

	if len(p) > MaxPasswordLength {
		return ErrPasswordTooLong
	}

	return nil
}
