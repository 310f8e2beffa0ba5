package service

import (
	"math/rand/v2"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIDs(n int) []uuid.UUID {
	ids := make([]uuid.UUID, n)
	for i := range ids {
		ids[i] = uuid.New()
	}
	return ids
}

func TestDerange_IsPermutationWithoutFixedPoints(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for n := MinParticipants; n <= 50; n++ {
		ids := newIDs(n)
		matches, err := Derange(ids, rng)
		require.NoError(t, err)
		require.Len(t, matches, n)

		givers := make(map[uuid.UUID]int)
		receivers := make(map[uuid.UUID]int)
		for _, m := range matches {
			assert.NotEqual(t, m.Giver, m.Receiver, "n=%d", n)
			assert.False(t, m.Revealed)
			assert.Nil(t, m.RevealedAt)
			givers[m.Giver]++
			receivers[m.Receiver]++
		}
		for _, id := range ids {
			assert.Equal(t, 1, givers[id], "n=%d giver count", n)
			assert.Equal(t, 1, receivers[id], "n=%d receiver count", n)
		}
	}
}

func TestDerange_FormsSingleCycle(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	ids := newIDs(3)

	matches, err := Derange(ids, rng)
	require.NoError(t, err)

	next := make(map[uuid.UUID]uuid.UUID, len(matches))
	for _, m := range matches {
		next[m.Giver] = m.Receiver
	}
	start := ids[0]
	cur := start
	for step := 0; step < len(ids); step++ {
		cur = next[cur]
		if step < len(ids)-1 {
			assert.NotEqual(t, start, cur, "cycle closed after %d steps", step+1)
		}
	}
	assert.Equal(t, start, cur)
}

func TestDerange_BothThreeCyclesAreDrawn(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 99))
	ids := newIDs(3)
	a, b := ids[0], ids[1]

	const draws = 3000
	forward := 0
	for i := 0; i < draws; i++ {
		matches, err := Derange(ids, rng)
		require.NoError(t, err)
		for _, m := range matches {
			if m.Giver == a && m.Receiver == b {
				forward++
			}
		}
	}
	// a->b->c->a and a->c->b->a are the only derangements of three
	assert.InDelta(t, draws/2, forward, draws*0.1)
}

func TestDerange_RejectsSmallAndDuplicatePools(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 1))

	_, err := Derange(nil, rng)
	assert.ErrorIs(t, err, ErrInsufficientParticipants)

	_, err = Derange(newIDs(1), rng)
	assert.ErrorIs(t, err, ErrInsufficientParticipants)
	assert.ErrorIs(t, err, ErrInvalidInput)

	id := uuid.New()
	_, err = Derange([]uuid.UUID{id, id}, rng)
	assert.ErrorIs(t, err, ErrInvalidParticipant)
}

func TestDerange_DoesNotMutateInput(t *testing.T) {
	ids := newIDs(10)
	orig := append([]uuid.UUID(nil), ids...)

	_, err := Derange(ids, rand.New(rand.NewPCG(3, 4)))
	require.NoError(t, err)
	assert.Equal(t, orig, ids)
}
