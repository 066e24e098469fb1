package profiles

import "errors"

var (
	ErrProfileNotFound = errors.New("Profile not found")
	ErrEmailTaken      = errors.New("Email is already registered")
	ErrInvalidEmail    = errors.New("Invalid email address")
	ErrWeakPassword    = errors.New("Password must be at least 8 characters with a letter, number and special character")
	ErrInvalidUserType = errors.New("User type must be individual or business")
	ErrUserTypeLocked  = errors.New("User type can only be chosen once")
	ErrInvalidPhone    = errors.New("Invalid phone number")
	ErrNotSelf         = errors.New("You can only edit your own profile")
)
