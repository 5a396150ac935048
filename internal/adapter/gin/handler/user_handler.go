package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"signage-user-service/internal/adapter/gin/middleware"
	domain "signage-user-service/internal/domain/user"
	"signage-user-service/internal/usecase/user"
	apperrors "signage-user-service/pkg/errors"
	"signage-user-service/pkg/logger"
	"signage-user-service/pkg/security"
)

// UserHandler handles HTTP requests for user operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance. It registers the
// identifier grammars on gin's validator.
func NewUserHandler(uc user.Usecase, log *zap.Logger) (*UserHandler, error) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, errors.New("gin validator engine is not go-playground/validator")
	}
	if err := security.RegisterUsernameValidation(v, domain.NameGrammar); err != nil {
		return nil, err
	}

	return &UserHandler{
		uc:  uc,
		log: log,
	}, nil
}

// CreateUserRequest represents the HTTP request body for creating a user.
// A null groups value is the same as an absent one. Group entries are only
// type checked here; their grammar belongs to the domain and fails as LIMITED.
type CreateUserRequest struct {
	User   string   `json:"user" binding:"required,username"`
	Groups []string `json:"groups"`
}

// LoginRequest represents the HTTP request body for opening a session
type LoginRequest struct {
	User string `json:"user" binding:"required"`
	Pass string `json:"pass" binding:"required"`
}

// UserResponse represents the HTTP response for user data
type UserResponse struct {
	Name   string   `json:"name"`
	Groups []string `json:"groups"`
}

// CreatedUserResponse is a new user together with its one-time password
type CreatedUserResponse struct {
	Name   string   `json:"name"`
	Groups []string `json:"groups"`
	Pass   string   `json:"pass"`
}

// LoginResponse carries an access token; ExpiresIn is in seconds
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}

// CreateUser handles POST /v1/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid create user request", zap.Error(err))
		middleware.RespondError(c, apperrors.Wrap(apperrors.CodeInvalidRequest, security.FormatValidationError(err), err))
		return
	}

	log.Info("Gin CreateUser request", zap.String("name", req.User), zap.Strings("groups", req.Groups))

	resp, err := h.uc.CreateUser(c.Request.Context(), user.CreateUserRequest{
		Caller: middleware.Caller(c),
		Name:   req.User,
		Groups: req.Groups,
	})
	if err != nil {
		log.Warn("Gin CreateUser failed", zap.Error(err))
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": CreatedUserResponse{
			Name:   resp.User.Name,
			Groups: resp.User.Groups,
			Pass:   resp.Password,
		},
	})
}

// GetUser handles GET /v1/users/:name
func (h *UserHandler) GetUser(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)
	name := c.Param("name")

	if !domain.ValidName(name) {
		log.Warn("Invalid user name", zap.String("name", name))
		middleware.RespondError(c, apperrors.New(apperrors.CodeInvalidRequest, "validation failed: name is not a valid user name"))
		return
	}

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{
		Caller: middleware.Caller(c),
		Name:   name,
	})
	if err != nil {
		log.Warn("Gin GetUser failed", zap.Error(err))
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": UserResponse{Name: resp.User.Name, Groups: resp.User.Groups},
	})
}

// Login handles POST /v1/auth/session
func (h *UserHandler) Login(c *gin.Context) {
	log := logger.WithContext(c.Request.Context(), h.log)

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid login request", zap.Error(err))
		middleware.RespondError(c, apperrors.Wrap(apperrors.CodeInvalidRequest, security.FormatValidationError(err), err))
		return
	}

	resp, err := h.uc.Login(c.Request.Context(), user.LoginRequest{Name: req.User, Password: req.Pass})
	if err != nil {
		middleware.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:     resp.Token,
		ExpiresIn: int64(resp.ExpiresIn.Seconds()),
	})
}
