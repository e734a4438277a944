package validate

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

const MaxUsernameLen = 64

var (
	ErrEmptyUsername   = errors.New("empty username")
	ErrUsernameTooLong = fmt.Errorf("username too long; max %d characters", MaxUsernameLen)
	ErrUsernameChars   = errors.New("username contains forbidden characters")
)

// Username checks that a username can be used as a single storage key. Only letters, digits, '_', '-' and '.'
// are allowed, and names made only of dots are rejected, so no username can address a path outside its own
// directory.
func Username(username string) error {
	if l := len(username); l == 0 {
		return ErrEmptyUsername
	} else if l > MaxUsernameLen {
		return ErrUsernameTooLong
	}

	for _, r := range username {
		if !allowed(r) {
			return fmt.Errorf("%w: %q", ErrUsernameChars, r)
		}
	}

	if strings.Trim(username, ".") == "" || !filepath.IsLocal(username) {
		return fmt.Errorf("%w: %q", ErrUsernameChars, username)
	}
	return nil
}

func allowed(r rune) bool {
	switch {
	case r == '_', r == '-', r == '.':
		return true
	case r > unicode.MaxASCII:
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
