package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	catalogdomain "github.com/zedanazad43/stampcoin-platform/internal/catalog/domain"
	ledgerdomain "github.com/zedanazad43/stampcoin-platform/internal/ledger/domain"
	mintdomain "github.com/zedanazad43/stampcoin-platform/internal/mint/domain"
	pinningdomain "github.com/zedanazad43/stampcoin-platform/internal/pinning/domain"
	serialdomain "github.com/zedanazad43/stampcoin-platform/internal/serial/domain"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
	ErrInternal       = errors.New("internal_error")
)

// ErrorHandlingMiddleware turns the last recorded handler error into a JSON
// envelope after the handler chain completes.
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
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, mintdomain.ErrAlreadyMinted):
		return http.StatusConflict, errorPayload{
			Type:    "already_minted",
			Message: "catalog item is already minted",
		}
	case errors.Is(err, mintdomain.ErrAlreadyReconciled):
		return http.StatusConflict, errorPayload{
			Type:    "already_reconciled",
			Message: "mint record already has a different token identifier",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case errors.Is(err, ledgerdomain.ErrSupplyExhausted):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "supply_exhausted",
			Message: "currency supply cap reached",
		}
	case errors.Is(err, ledgerdomain.ErrInsufficientSupply):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "insufficient_supply",
			Message: "not enough circulating supply",
		}
	case errors.Is(err, pinningdomain.ErrPinningFailed):
		return http.StatusBadGateway, errorPayload{
			Type:    "pinning_failed",
			Message: "asset pinning failed",
		}
	case isContentionError(err):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "contention",
			Message: "resource busy, retry later",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, catalogdomain.ErrNotFound),
		errors.Is(err, mintdomain.ErrNotFound),
		errors.Is(err, ledgerdomain.ErrAggregateMissing),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, catalogdomain.ErrInvalidItem),
		errors.Is(err, ledgerdomain.ErrInvalidAmount),
		errors.Is(err, pinningdomain.ErrValidation):
		return true
	default:
		return false
	}
}

func isContentionError(err error) bool {
	switch {
	case errors.Is(err, mintdomain.ErrContention),
		errors.Is(err, serialdomain.ErrContention):
		return true
	default:
		return false
	}
}

// classifyErrorForLog labels handler errors for the request log without
// leaking messages.
func classifyErrorForLog(err error) string {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError && payload.Type == "internal_error" {
		return "internal_error"
	}
	return payload.Type
}
