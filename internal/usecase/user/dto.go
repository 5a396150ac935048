package user

import (
	"time"

	domain "signage-user-service/internal/domain/user"
)

// Caller is the authenticated user on whose behalf a request runs.
type Caller = domain.User

// CreateUserRequest represents the request payload for creating a new user.
// Name and Groups have already passed the request schema.
type CreateUserRequest struct {
	Caller *Caller
	Name   string
	Groups []string // nil when the request did not supply groups
}

// CreateUserResponse carries the created user and its generated password.
// Password is the only place the cleartext is ever exposed.
type CreateUserResponse struct {
	User     User
	Password string
}

// GetUserRequest represents the request payload for retrieving a user.
type GetUserRequest struct {
	Caller *Caller
	Name   string
}

// GetUserResponse represents the response payload for user details.
type GetUserResponse struct {
	User User
}

// LoginRequest carries the credentials exchanged for an access token.
type LoginRequest struct {
	Name     string
	Password string
}

// LoginResponse carries a signed access token.
type LoginResponse struct {
	Token     string
	ExpiresIn time.Duration
}

// BootstrapAdminRequest names the first administrator of an empty installation.
type BootstrapAdminRequest struct {
	Name string
}

// User represents a user DTO (Data Transfer Object) for API responses.
type User struct {
	Name   string
	Groups []string
}
