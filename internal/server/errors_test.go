package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	catalogdomain "github.com/zedanazad43/stampcoin-platform/internal/catalog/domain"
	ledgerdomain "github.com/zedanazad43/stampcoin-platform/internal/ledger/domain"
	mintdomain "github.com/zedanazad43/stampcoin-platform/internal/mint/domain"
	pinningdomain "github.com/zedanazad43/stampcoin-platform/internal/pinning/domain"
	serialdomain "github.com/zedanazad43/stampcoin-platform/internal/serial/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
		wantType   string
	}{
		{catalogdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{mintdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{mintdomain.ErrAlreadyMinted, http.StatusConflict, "already_minted"},
		{mintdomain.ErrAlreadyReconciled, http.StatusConflict, "already_reconciled"},
		{ErrInvalidRequest, http.StatusBadRequest, "validation_error"},
		{catalogdomain.ErrInvalidItem, http.StatusBadRequest, "validation_error"},
		{pinningdomain.ErrValidation, http.StatusBadRequest, "validation_error"},
		{ledgerdomain.ErrInvalidAmount, http.StatusBadRequest, "validation_error"},
		{ledgerdomain.ErrSupplyExhausted, http.StatusUnprocessableEntity, "supply_exhausted"},
		{ledgerdomain.ErrInsufficientSupply, http.StatusUnprocessableEntity, "insufficient_supply"},
		{pinningdomain.ErrPinningFailed, http.StatusBadGateway, "pinning_failed"},
		{mintdomain.ErrContention, http.StatusServiceUnavailable, "contention"},
		{serialdomain.ErrContention, http.StatusServiceUnavailable, "contention"},
		{errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tc := range cases {
		t.Run(tc.wantType+"/"+tc.err.Error(), func(t *testing.T) {
			status, payload := mapError(tc.err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantType, payload.Type)
		})
	}
}

func TestMapError_SeesThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("mint item 42: %w", ledgerdomain.ErrSupplyExhausted)
	status, payload := mapError(wrapped)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "supply_exhausted", payload.Type)
}

func TestClassifyErrorForLog(t *testing.T) {
	assert.Equal(t, "not_found", classifyErrorForLog(catalogdomain.ErrNotFound))
	assert.Equal(t, "internal_error", classifyErrorForLog(errors.New("boom")))
}
