package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"signage-user-service/internal/adapter/gin/middleware"
	domain "signage-user-service/internal/domain/user"
	usecase "signage-user-service/internal/usecase/user"
	pkgerrors "signage-user-service/pkg/errors"
)

// MockUserUsecase is a mock implementation of user.Usecase
type MockUserUsecase struct {
	mock.Mock
}

func (m *MockUserUsecase) CreateUser(ctx context.Context, req usecase.CreateUserRequest) (*usecase.CreateUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CreateUserResponse), args.Error(1)
}

func (m *MockUserUsecase) GetUser(ctx context.Context, req usecase.GetUserRequest) (*usecase.GetUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.GetUserResponse), args.Error(1)
}

func (m *MockUserUsecase) Login(ctx context.Context, req usecase.LoginRequest) (*usecase.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.LoginResponse), args.Error(1)
}

func (m *MockUserUsecase) ResolveCaller(ctx context.Context, token string) (*usecase.Caller, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.Caller), args.Error(1)
}

func (m *MockUserUsecase) BootstrapAdmin(ctx context.Context, req usecase.BootstrapAdminRequest) (*usecase.CreateUserResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CreateUserResponse), args.Error(1)
}

var admin = &domain.User{Name: "admin", Groups: []string{domain.AdminGroup}}

func setupTest(t *testing.T) (*gin.Engine, *UserHandler, *MockUserUsecase) {
	gin.SetMode(gin.TestMode)
	mockUsecase := new(MockUserUsecase)
	handler, err := NewUserHandler(mockUsecase, zaptest.NewLogger(t))
	require.NoError(t, err)

	r := gin.New()
	// Stand-in for the Authenticate middleware
	r.Use(func(c *gin.Context) {
		c.Set(middleware.CallerKey, admin)
		c.Next()
	})
	return r, handler, mockUsecase
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) middleware.ErrorResponse {
	t.Helper()
	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestCreateUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/users", handler.CreateUser)

		mockUsecase.On("CreateUser", mock.Anything, usecase.CreateUserRequest{
			Caller: admin,
			Name:   "alice",
			Groups: []string{"staff"},
		}).Return(&usecase.CreateUserResponse{
			User:     usecase.User{Name: "alice", Groups: []string{"staff"}},
			Password: "AbCdEfGh12345678",
		}, nil)

		w := postJSON(r, "/users", `{"user":"alice","groups":["staff"]}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user":{"name":"alice","groups":["staff"],"pass":"AbCdEfGh12345678"}}`, w.Body.String())
		mockUsecase.AssertExpectations(t)
	})

	t.Run("Null groups", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/users", handler.CreateUser)

		mockUsecase.On("CreateUser", mock.Anything, mock.MatchedBy(func(req usecase.CreateUserRequest) bool {
			return req.Name == "kiosk" && req.Groups == nil
		})).Return(&usecase.CreateUserResponse{
			User:     usecase.User{Name: "kiosk", Groups: []string{}},
			Password: "p",
		}, nil)

		w := postJSON(r, "/users", `{"user":"kiosk","groups":null}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user":{"name":"kiosk","groups":[],"pass":"p"}}`, w.Body.String())
	})

	t.Run("Schema violations", func(t *testing.T) {
		tests := []struct {
			name    string
			body    string
			message string
		}{
			{"missing user", `{"groups":["staff"]}`, "User is required"},
			{"bad user grammar", `{"user":"al ice"}`, "User is not a valid user name"},
			{"malformed json", `{"user":`, ""},
			{"wrong type", `{"user":"alice","groups":"staff"}`, ""},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r, handler, mockUsecase := setupTest(t)
				r.POST("/users", handler.CreateUser)

				w := postJSON(r, "/users", tt.body)

				assert.Equal(t, http.StatusBadRequest, w.Code)
				resp := decodeError(t, w)
				assert.Equal(t, "INVALID_REQUEST", resp.Error)
				assert.Contains(t, resp.Message, tt.message)
				mockUsecase.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
			})
		}
	})

	t.Run("Usecase errors", func(t *testing.T) {
		tests := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{"not authorized", pkgerrors.New(pkgerrors.CodeNotAuthorized, "Not authorized."), http.StatusForbidden, "NOT_AUTHORIZED"},
			{"duplicate", pkgerrors.New(pkgerrors.CodeInvalidRequest, "User already exists."), http.StatusBadRequest, "INVALID_REQUEST"},
			{"limited", pkgerrors.New(pkgerrors.CodeLimited, "Limited."), http.StatusUnprocessableEntity, "LIMITED"},
			{"internal", pkgerrors.Wrap(pkgerrors.CodeInternal, "Failed to generate password.", errors.New("entropy")), http.StatusInternalServerError, "INTERNAL"},
			{"uncoded", errors.New("disk on fire"), http.StatusInternalServerError, "INTERNAL"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r, handler, mockUsecase := setupTest(t)
				r.POST("/users", handler.CreateUser)

				mockUsecase.On("CreateUser", mock.Anything, mock.Anything).Return(nil, tt.err)

				w := postJSON(r, "/users", `{"user":"alice"}`)

				assert.Equal(t, tt.status, w.Code)
				resp := decodeError(t, w)
				assert.Equal(t, tt.code, resp.Error)
				assert.NotContains(t, resp.Message, "entropy")
				assert.NotContains(t, resp.Message, "disk on fire")
			})
		}
	})
}

func TestGetUser(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/users/:name", handler.GetUser)

		mockUsecase.On("GetUser", mock.Anything, usecase.GetUserRequest{Caller: admin, Name: "alice"}).
			Return(&usecase.GetUserResponse{User: usecase.User{Name: "alice", Groups: []string{"staff"}}}, nil)

		req, _ := http.NewRequest(http.MethodGet, "/users/alice", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"user":{"name":"alice","groups":["staff"]}}`, w.Body.String())
	})

	t.Run("Invalid name", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/users/:name", handler.GetUser)

		req, _ := http.NewRequest(http.MethodGet, "/users/bad-name", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockUsecase.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything)
	})

	t.Run("Unknown user", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.GET("/users/:name", handler.GetUser)

		mockUsecase.On("GetUser", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.New(pkgerrors.CodeInvalidRequest, "User doesn't exist."))

		req, _ := http.NewRequest(http.MethodGet, "/users/ghost", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User doesn't exist.", decodeError(t, w).Message)
	})
}

func TestLogin(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/auth/session", handler.Login)

		mockUsecase.On("Login", mock.Anything, usecase.LoginRequest{Name: "alice", Password: "secret"}).
			Return(&usecase.LoginResponse{Token: "tok", ExpiresIn: time.Hour}, nil)

		w := postJSON(r, "/auth/session", `{"user":"alice","pass":"secret"}`)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"token":"tok","expires_in":3600}`, w.Body.String())
	})

	t.Run("Missing password", func(t *testing.T) {
		r, handler, _ := setupTest(t)
		r.POST("/auth/session", handler.Login)

		w := postJSON(r, "/auth/session", `{"user":"alice"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation failed: Pass is required", decodeError(t, w).Message)
	})

	t.Run("Bad credentials", func(t *testing.T) {
		r, handler, mockUsecase := setupTest(t)
		r.POST("/auth/session", handler.Login)

		mockUsecase.On("Login", mock.Anything, mock.Anything).
			Return(nil, pkgerrors.New(pkgerrors.CodeNotAuthenticated, "Invalid credentials."))

		w := postJSON(r, "/auth/session", `{"user":"alice","pass":"nope"}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "NOT_AUTHENTICATED", decodeError(t, w).Error)
	})
}
