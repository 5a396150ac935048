package user

import "context"

// Usecase defines the interface for user business logic operations.
type Usecase interface {
	CreateUser(ctx context.Context, in CreateUserRequest) (*CreateUserResponse, error)
	GetUser(ctx context.Context, in GetUserRequest) (*GetUserResponse, error)
	Login(ctx context.Context, in LoginRequest) (*LoginResponse, error)
	ResolveCaller(ctx context.Context, token string) (*Caller, error)
	BootstrapAdmin(ctx context.Context, in BootstrapAdminRequest) (*CreateUserResponse, error)
}
