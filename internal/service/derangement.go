package service

import (
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/ugurkiymetli/secret-santa/internal/model"
	"github.com/ugurkiymetli/secret-santa/pkg/crypto"
)

// MinParticipants is the smallest pool that admits a derangement.
const MinParticipants = 2

// Derange pairs every id with a receiver other than itself so that each id
// gives exactly once and receives exactly once. The ids are shuffled and
// each one gives to its successor, wrapping around, which yields a single
// cycle through all participants.
func Derange(ids []uuid.UUID, rng *rand.Rand) ([]model.Match, error) {
	if len(ids) < MinParticipants {
		return nil, ErrInsufficientParticipants
	}
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, ErrInvalidParticipant
		}
		seen[id] = struct{}{}
	}

	order := make([]uuid.UUID, len(ids))
	copy(order, ids)
	rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	matches := make([]model.Match, len(order))
	for i, giver := range order {
		matches[i] = model.Match{
			Giver:    giver,
			Receiver: order[(i+1)%len(order)],
		}
	}
	return matches, nil
}

// NewSecureRand returns a ChaCha8 generator seeded from the system CSPRNG.
func NewSecureRand() (*rand.Rand, error) {
	seed, err := crypto.RandomSeed()
	if err != nil {
		return nil, err
	}
	return rand.New(rand.NewChaCha8(seed)), nil
}
