package game

import (
	"testing"

	"github.com/hashicorp/go-set/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTurnSchedulerSkipsFinishedSeats(t *testing.T) {
	done := set.From([]string{"b", "c"})
	canAct := func(id string) bool { return !done.Contains(id) }
	turns := NewTurnScheduler([]string{"a", "b", "c", "d"})

	actor, ok := turns.Seek(canAct)
	require.True(t, ok)
	assert.Equal(t, "a", actor)
	assert.True(t, turns.IsCurrent("a"))

	turns.Pass()
	actor, ok = turns.Seek(canAct)
	require.True(t, ok)
	assert.Equal(t, "d", actor, "stood and busted seats are skipped")

	// a becomes able to act again but is never revisited.
	turns.Pass()
	_, ok = turns.Seek(func(string) bool { return true })
	assert.False(t, ok)
	assert.True(t, turns.Exhausted())
	_, ok = turns.Current()
	assert.False(t, ok)
}

func TestTurnSchedulerOrderIsCopied(t *testing.T) {
	order := []string{"a", "b"}
	turns := NewTurnScheduler(order)
	order[0] = "z"
	assert.Equal(t, []string{"a", "b"}, turns.Order())
	turns.Pass()
	turns.Pass()
	turns.Pass()
	assert.True(t, turns.Exhausted())
}

func TestParseVote(t *testing.T) {
	v, err := ParseVote(" Continue ")
	require.NoError(t, err)
	assert.Equal(t, VoteContinue, v)
	v, err = ParseVote("leave")
	require.NoError(t, err)
	assert.Equal(t, VoteLeave, v)
	_, err = ParseVote("stay")
	assert.ErrorIs(t, err, ErrInvalidVote)
}

func TestErrorKinds(t *testing.T) {
	assert.Equal(t, KindTurn, KindOf(ErrNotYourTurn))
	assert.Equal(t, KindNotFound, KindOf(ErrTableNotFound))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
	wrapped := internal("failed to save hand", assert.AnError)
	assert.ErrorIs(t, wrapped, assert.AnError)
	assert.Equal(t, KindInternal, KindOf(wrapped))
}
