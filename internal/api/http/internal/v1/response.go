package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/vibe-gaming/auth-service/internal/service"
	"github.com/vibe-gaming/auth-service/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

func errorResponse(c *gin.Context, status int, code ErrorCode) {
	c.AbortWithStatusJSON(status, getErrorStruct(code))
}

// serviceErrorResponse maps service errors to client rejections. Anything
// unrecognised is logged and answered with an opaque 500.
func serviceErrorResponse(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		errorResponse(c, http.StatusUnauthorized, InvalidCredentialsCode)
	case errors.Is(err, service.ErrUserNotFound):
		errorResponse(c, http.StatusNotFound, UserNotFoundCode)
	case errors.Is(err, service.ErrTokenNotFound):
		errorResponse(c, http.StatusUnauthorized, TokenNotFoundCode)
	case errors.Is(err, service.ErrTokenInactive):
		errorResponse(c, http.StatusUnauthorized, TokenInactiveCode)
	case errors.Is(err, service.ErrTooManyAttempts):
		errorResponse(c, http.StatusTooManyRequests, TooManyAttemptsCode)
	default:
		logger.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		errorResponse(c, http.StatusInternalServerError, UnknownErrorCode)
	}
}

func validationErrorResponse(c *gin.Context, err error) {
	response := ValidationErrorStruct{
		ErrorCode:    ValidationErrorCode,
		ErrorMessage: ValidationErrorMessage,
		Errors:       []ValidationError{},
	}

	var verr validator.ValidationErrors
	if errors.As(err, &verr) {
		out := make([]ValidationError, len(verr))
		for i, ferr := range verr {
			out[i] = ValidationError{ferr.Field(), msgForTag(ferr.Tag(), ferr.Param())}
		}
		response.Errors = out
	}

	c.AbortWithStatusJSON(http.StatusBadRequest, response)
}

func msgForTag(tag string, value string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "notblank":
		return "this field must not be blank"
	case "min":
		return fmt.Sprintf("minimum length is %v", value)
	case "max":
		return fmt.Sprintf("maximum length is %v", value)
	}
	return tag
}
