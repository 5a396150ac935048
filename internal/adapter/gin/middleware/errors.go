package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "signage-user-service/pkg/errors"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RespondError writes err as an ErrorResponse and aborts the chain.
// Errors without a code are reported as INTERNAL without their cause.
func RespondError(c *gin.Context, err error) {
	apiErr := apperrors.As(err)
	_ = c.Error(err)

	c.AbortWithStatusJSON(apiErr.HTTPStatus(), ErrorResponse{
		Error:   string(apiErr.Code),
		Message: apiErr.Message,
	})
}
