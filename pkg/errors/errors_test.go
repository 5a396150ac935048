package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestAPIError_Mapping(t *testing.T) {
	tests := []struct {
		code     Code
		httpCode int
		grpcCode codes.Code
	}{
		{CodeNotAuthenticated, http.StatusUnauthorized, codes.Unauthenticated},
		{CodeNotAuthorized, http.StatusForbidden, codes.PermissionDenied},
		{CodeInvalidRequest, http.StatusBadRequest, codes.InvalidArgument},
		{CodeLimited, http.StatusUnprocessableEntity, codes.FailedPrecondition},
		{CodeRateLimited, http.StatusTooManyRequests, codes.ResourceExhausted},
		{CodeInternal, http.StatusInternalServerError, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := New(tt.code, "message")
			assert.Equal(t, tt.httpCode, err.HTTPStatus())
			assert.Equal(t, tt.grpcCode, err.GRPCStatus().Code())
		})
	}
}

func TestAPIError_WrapAndUnwrap(t *testing.T) {
	cause := errors.New("name too long")
	err := Wrap(CodeLimited, "Limited.", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "LIMITED")
	assert.Contains(t, err.Error(), "name too long")
}

func TestAPIError_GRPCStatusHidesCause(t *testing.T) {
	err := Wrap(CodeInternal, "Failed to generate password.", errors.New("entropy source unavailable"))

	st, ok := status.FromError(err)
	assert.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
	assert.NotContains(t, st.Message(), "entropy")
}

func TestAs(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", New(CodeNotAuthorized, "Not authorized."))
	assert.Equal(t, CodeNotAuthorized, CodeOf(wrapped))

	plain := errors.New("boom")
	apiErr := As(plain)
	assert.Equal(t, CodeInternal, apiErr.Code)
	assert.ErrorIs(t, apiErr, plain)
}
