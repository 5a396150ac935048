package grpc

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"

	"signage-user-service/internal/adapter/grpc/middleware"
	domain "signage-user-service/internal/domain/user"
	"signage-user-service/internal/usecase/user"
	apperrors "signage-user-service/pkg/errors"
	"signage-user-service/pkg/security"
)

// UserServiceServer implements the gRPC user service
type UserServiceServer struct {
	uc       user.Usecase
	validate *validator.Validate
}

// NewUserServiceServer creates a new gRPC user service server
func NewUserServiceServer(uc user.Usecase) (*UserServiceServer, error) {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := security.RegisterUsernameValidation(v, domain.NameGrammar); err != nil {
		return nil, err
	}
	return &UserServiceServer{uc: uc, validate: v}, nil
}

// CreateUser handles gRPC CreateUser request
func (s *UserServiceServer) CreateUser(ctx context.Context, req *CreateUserRequest) (*CreateUserResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	res, err := s.uc.CreateUser(ctx, user.CreateUserRequest{
		Caller: middleware.CallerFromContext(ctx),
		Name:   req.User,
		Groups: req.Groups,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &CreateUserResponse{
		User: CreatedUser{
			Name:   res.User.Name,
			Groups: res.User.Groups,
			Pass:   res.Password,
		},
	}, nil
}

// GetUser handles gRPC GetUser request
func (s *UserServiceServer) GetUser(ctx context.Context, req *GetUserRequest) (*GetUserResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	res, err := s.uc.GetUser(ctx, user.GetUserRequest{
		Caller: middleware.CallerFromContext(ctx),
		Name:   req.Name,
	})
	if err != nil {
		return nil, toStatus(err)
	}

	return &GetUserResponse{User: UserInfo{Name: res.User.Name, Groups: res.User.Groups}}, nil
}

// Login handles gRPC Login request
func (s *UserServiceServer) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	if err := s.check(req); err != nil {
		return nil, err
	}

	res, err := s.uc.Login(ctx, user.LoginRequest{Name: req.User, Password: req.Pass})
	if err != nil {
		return nil, toStatus(err)
	}

	return &LoginResponse{Token: res.Token, ExpiresIn: int64(res.ExpiresIn.Seconds())}, nil
}

func (s *UserServiceServer) check(req any) error {
	if err := s.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return apperrors.New(apperrors.CodeInvalidRequest, security.FormatValidationError(err)).GRPCStatus().Err()
		}
		return toStatus(err)
	}
	return nil
}

// toStatus converts err into a status error carrying only the
// client-facing code and message.
func toStatus(err error) error {
	return apperrors.As(err).GRPCStatus().Err()
}
