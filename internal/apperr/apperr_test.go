package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_Status(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{KindBadRequest, http.StatusBadRequest},
		{KindUnauthorized, http.StatusUnauthorized},
		{KindForbidden, http.StatusForbidden},
		{KindNotFound, http.StatusNotFound},
		{KindConflict, http.StatusConflict},
		{KindInternal, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.kind.Status())
		})
	}
}

func TestAs_WrappedError(t *testing.T) {
	base := Conflict("Username is already taken.")
	wrapped := fmt.Errorf("register: %w", base)

	got := As(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, KindConflict, got.Kind)
	assert.Equal(t, "Username is already taken.", got.Message)
	assert.Equal(t, KindConflict, KindOf(wrapped))
}

func TestAs_ForeignErrorIsHidden(t *testing.T) {
	got := As(errors.New("Error 1045: Access denied for user 'root'"))
	assert.Equal(t, KindInternal, got.Kind)
	assert.NotContains(t, got.Message, "1045")
}

func TestWith_DoesNotMutateReceiver(t *testing.T) {
	base := BadRequest("Invalid preferences: X")
	ext := base.With("validPreferences", []string{"Arte"})

	assert.Nil(t, base.Fields)
	assert.Equal(t, []string{"Arte"}, ext.Fields["validPreferences"])
	assert.Equal(t, base.Message, ext.Message)
}
