package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	addomain "github.com/copyadhq/copyad/internal/ad/domain"
	"github.com/copyadhq/copyad/internal/auth"
	"github.com/copyadhq/copyad/internal/authorization"
	billingdomain "github.com/copyadhq/copyad/internal/billing/domain"
	"github.com/copyadhq/copyad/internal/generation"
	profiledomain "github.com/copyadhq/copyad/internal/profile/domain"
	"github.com/copyadhq/copyad/internal/quota"
	templatedomain "github.com/copyadhq/copyad/internal/template/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
)

// ErrorHandlingMiddleware renders the trailing error on the context as
// the JSON error envelope. Handlers push errors with AbortWithError and
// never write error bodies themselves.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	switch {
	case err == nil:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}

	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, auth.ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "missing or invalid credentials",
		}

	case errors.Is(err, quota.ErrQuotaExceeded):
		return http.StatusForbidden, errorPayload{
			Type:    "quota_exceeded",
			Message: "generation quota exceeded for the current plan",
		}

	case errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}

	case errors.Is(err, billingdomain.ErrVerificationFailed):
		return http.StatusBadRequest, errorPayload{
			Type:    "verification_failed",
			Message: "webhook signature verification failed",
		}

	case errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusBadGateway, errorPayload{
			Type:    "generation_failed",
			Message: "ad copy generation failed",
		}

	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}

	case errors.Is(err, templatedomain.ErrSlugTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "a template with that name already exists",
		}

	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}

	case errors.Is(err, billingdomain.ErrProviderNotReady),
		errors.Is(err, auth.ErrNotReady):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}

	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "store_failure",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, addomain.ErrInvalidProduct),
		errors.Is(err, templatedomain.ErrInvalidName),
		errors.Is(err, templatedomain.ErrInvalidContent),
		errors.Is(err, profiledomain.ErrInvalidRole),
		errors.Is(err, billingdomain.ErrInvalidPayload),
		errors.Is(err, billingdomain.ErrInvalidEvent),
		errors.Is(err, billingdomain.ErrInvalidPlan):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, addomain.ErrNotFound),
		errors.Is(err, templatedomain.ErrNotFound),
		errors.Is(err, profiledomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// classifyErrorForLog labels errors for the request log without leaking
// internals into the response path.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	severity := "warn"
	if status >= http.StatusInternalServerError {
		severity = "error"
	}
	return payload.Type, severity
}
