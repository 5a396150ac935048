package grpc

// CreateUserRequest is the CreateUser call payload.
type CreateUserRequest struct {
	User   string   `json:"user" validate:"required,username"`
	Groups []string `json:"groups,omitempty"`
}

// CreatedUser is a user together with its one-time password.
type CreatedUser struct {
	Name   string   `json:"name"`
	Groups []string `json:"groups"`
	Pass   string   `json:"pass"`
}

// CreateUserResponse is the CreateUser result.
type CreateUserResponse struct {
	User CreatedUser `json:"user"`
}

// GetUserRequest is the GetUser call payload.
type GetUserRequest struct {
	Name string `json:"name" validate:"required,username"`
}

// UserInfo is the exported form of a user.
type UserInfo struct {
	Name   string   `json:"name"`
	Groups []string `json:"groups"`
}

// GetUserResponse is the GetUser result.
type GetUserResponse struct {
	User UserInfo `json:"user"`
}

// LoginRequest is the Login call payload.
type LoginRequest struct {
	User string `json:"user" validate:"required"`
	Pass string `json:"pass" validate:"required"`
}

// LoginResponse is the Login result. ExpiresIn is in seconds.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}
