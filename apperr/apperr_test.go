package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("while donating: %w", Conflict(MEDICINE_ALREADY_DONATED))
	assert.Equal(t, KindConflict, KindOf(err))
	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(nil, KindConflict))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestHTTPStatus(t *testing.T) {
	cases := map[error]int{
		Validation(INVALID_INPUT, nil):             http.StatusBadRequest,
		NotFound(MEDICINE_NOT_FOUND):               http.StatusNotFound,
		Forbidden(NOT_AUTHORIZED_TO_CANCEL_REQUEST): http.StatusForbidden,
		Conflict(REQUEST_NOT_PENDING):              http.StatusConflict,
		Upstream(DRUG_SEARCH_UNAVAILABLE, nil):     http.StatusBadGateway,
		errors.New("boom"):                         http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, HTTPStatus(err), err.Error())
	}
}

func TestValidationMessageListsFields(t *testing.T) {
	err := Validation(INVALID_INPUT, map[string]string{"quantity": "min", "name": "required"})
	assert.Equal(t, "Invalid input (name: required, quantity: min)", err.Error())
}
