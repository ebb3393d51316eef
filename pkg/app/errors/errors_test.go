package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{BadRequestError(nil, "bad"), http.StatusBadRequest},
		{UnAuthorizedError(nil, "who"), http.StatusUnauthorized},
		{ForbiddenError(nil, "no"), http.StatusForbidden},
		{ResourceNotFoundError(nil, "gone"), http.StatusNotFound},
		{NotSupportedError(nil, "nope"), http.StatusMethodNotAllowed},
		{ConflictError(nil, "clash"), http.StatusConflict},
		{LockedError(nil, "closed"), http.StatusLocked},
		{DependencyError(nil, "rpc down"), http.StatusBadGateway},
		{GeneralError(nil), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		var svcErr *ServiceError
		require.True(t, errors.As(tt.err, &svcErr))
		assert.Equal(t, tt.want, svcErr.StatusCode(), svcErr.Category.String())
	}
}

func TestCategoryOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", ConflictError(nil, "clash"))

	assert.Equal(t, CategoryDataConflict, CategoryOf(wrapped))
	assert.Equal(t, CategoryGeneralError, CategoryOf(errors.New("boom")))
	assert.Equal(t, CategoryNoError, CategoryOf(nil))
	assert.True(t, Is(wrapped, CategoryDataConflict))
	assert.False(t, IsInternalError(wrapped))
	assert.True(t, IsInternalError(errors.New("boom")))
}

func TestWithReason(t *testing.T) {
	cause := errors.New("quota")
	err := WithReason(ConflictError(cause, "per-account quota exceeded"), "0x4")

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "0x4", svcErr.Reason)
	assert.ErrorIs(t, err, cause)

	plain := errors.New("plain")
	assert.Equal(t, plain, WithReason(plain, "0x1"))
}
