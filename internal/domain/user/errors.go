package user

import "errors"

var (
	ErrInvalidName        = errors.New("invalid user name")
	ErrInvalidGroups      = errors.New("invalid groups")
	ErrPasswordGeneration = errors.New("failed to generate password")
	ErrPasswordHash       = errors.New("failed to hash password")

	// ErrAlreadyExists is returned by stores when the name is taken.
	ErrAlreadyExists = errors.New("user already exists")
	// ErrTooManyUsers is returned by stores when the user limit is reached.
	ErrTooManyUsers = errors.New("too many users")
	ErrNotFound     = errors.New("user not found")
)
