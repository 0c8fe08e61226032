package common

import "errors"

// MaxUsernameLength bounds usernames for profiles and username NFTs alike.
const MaxUsernameLength = 20

var (
	ErrUsernameEmpty    = errors.New("username required")
	ErrUsernameTooLong  = errors.New("username too long")
	ErrUsernameBadParam = errors.New("username may only contain letters, digits and underscores")
)

// ValidateUsername enforces the shared naming rule: 1..20 characters drawn
// from [A-Za-z0-9_]. Case is preserved; lookups are case-sensitive.
func ValidateUsername(username string) error {
	if username == "" {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLength {
		return ErrUsernameTooLong
	}
	for _, r := range username {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '_':
		default:
			return ErrUsernameBadParam
		}
	}
	return nil
}
