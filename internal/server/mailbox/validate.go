package mailbox

import (
	"regexp"
	"unicode"

	"github.com/dmitrijs2005/mailkeeper/internal/common"
)

const minPasswordLen = 10

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// ValidateUsername checks the syntactic shape of a username. The lost-mail
// directory name is reserved and can never be registered, and the dot names
// are rejected because a username doubles as a directory name under the
// store root.
func ValidateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return common.ErrInvalidUsername
	}
	if username == "." || username == ".." {
		return common.ErrInvalidUsername
	}
	if username == lostMailDir {
		return common.ErrInvalidUsername
	}
	return nil
}

// ValidatePassword enforces the password-strength policy: minimum length
// and at least one upper-case letter, one lower-case letter, and one digit.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return common.ErrWeakPassword
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return common.ErrWeakPassword
	}
	return nil
}
