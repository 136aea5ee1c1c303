package sqlutil

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert player: %w", &pgconn.PgError{Code: "23505", ConstraintName: "players_game_avatar_key"})

	assert.True(t, IsUniqueViolation(err, "players_game_avatar_key"))
	assert.True(t, IsUniqueViolation(err, ""))
	assert.False(t, IsUniqueViolation(err, "votes_issue_player_key"))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
}

func TestClassify(t *testing.T) {
	assert.Nil(t, Classify(nil))
	assert.Equal(t, apperr.KindTransient, apperr.KindOf(Classify(context.DeadlineExceeded)))
	assert.Equal(t, apperr.KindTransient, apperr.KindOf(Classify(&pgconn.PgError{Code: "40001"})))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(Classify(&pgconn.PgError{Code: "23514", Message: "bad value"})))
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(Classify(&pgconn.PgError{Code: "23503", ConstraintName: "votes_issue_id_fkey"})))

	nf := apperr.NotFound("game", "x")
	assert.Same(t, nf, Classify(nf))
	assert.True(t, IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)))
}

func TestNullRawMessage(t *testing.T) {
	assert.False(t, ToNullRawMessage(nil).Valid)
	v := ToNullRawMessage([]byte(`{"a":1}`))
	assert.True(t, v.Valid)
	assert.JSONEq(t, `{"a":1}`, string(FromNullRawMessage(v)))
	assert.Nil(t, FromNullRawMessage(ToNullRawMessage(nil)))
}

func TestTrimPtr(t *testing.T) {
	assert.Nil(t, TrimPtr(nil))
	blank := "   "
	assert.Nil(t, TrimPtr(&blank))
	s := "  fox "
	assert.Equal(t, "fox", *TrimPtr(&s))
}
