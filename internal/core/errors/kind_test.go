package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("admit: %w", Conflict("registration for %s already exists", "att-1"))

	require.Equal(t, KindConflict, KindOf(err))
	require.True(t, IsKind(err, KindConflict))
	require.True(t, stderrors.Is(err, &Error{Kind: KindConflict}))
	require.False(t, stderrors.Is(err, &Error{Kind: KindNotFound}))
	require.Equal(t, "registration for att-1 already exists", stderrors.Unwrap(err).Error())
}

func TestKindOf_PlainError(t *testing.T) {
	require.Equal(t, Kind(""), KindOf(stderrors.New("boom")))
	require.Equal(t, Kind(""), KindOf(nil))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantType   string
	}{
		{ValidationFailed("bad"), http.StatusBadRequest, HttpValidationError},
		{NotFound("missing"), http.StatusNotFound, HttpNotFoundError},
		{Conflict("dup"), http.StatusConflict, HttpConflictError},
		{CapacityExceeded("full"), http.StatusConflict, HttpCapacityExceededError},
		{InvalidTransition("nope"), http.StatusUnprocessableEntity, HttpInvalidTransitionError},
		{stderrors.New("db down"), http.StatusInternalServerError, HttpInternalError},
	}

	for _, tc := range tests {
		t.Run(tc.wantType, func(t *testing.T) {
			status, errType := HTTPStatus(tc.err)
			require.Equal(t, tc.wantStatus, status)
			require.Equal(t, tc.wantType, errType)
		})
	}
}
