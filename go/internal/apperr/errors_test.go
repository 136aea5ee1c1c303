package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("failed to update player: %w", AvatarTaken("fox"))

	assert.Equal(t, KindConflict, KindOf(err))
	assert.Equal(t, ReasonAvatarTaken, ReasonOf(err))
	assert.True(t, errors.Is(err, ErrConflict))
	assert.True(t, errors.Is(err, ErrAvatarTaken))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestKindOfContextErrors(t *testing.T) {
	assert.Equal(t, KindTransient, KindOf(context.DeadlineExceeded))
	assert.Equal(t, KindUnknown, KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestConnectRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code connect.Code
	}{
		{"validation", Validation("title is required"), connect.CodeInvalidArgument},
		{"not found", NotFound("game", "abc"), connect.CodeNotFound},
		{"forbidden", Forbidden(ReasonNotAdmin, "only the admin can reveal"), connect.CodePermissionDenied},
		{"avatar", AvatarTaken("fox"), connect.CodeAlreadyExists},
		{"transient", Transient(errors.New("dial tcp")), connect.CodeUnavailable},
		{"unknown", errors.New("boom"), connect.CodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wire := ToConnect(tt.err)
			var ce *connect.Error
			require.True(t, errors.As(wire, &ce))
			assert.Equal(t, tt.code, ce.Code())

			back := FromConnect(wire)
			assert.Equal(t, KindOf(tt.err), KindOf(back))
			assert.Equal(t, ReasonOf(tt.err), ReasonOf(back))
		})
	}
}
