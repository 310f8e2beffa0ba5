package service

import (
	"regexp"
	"strings"

	"github.com/ugurkiymetli/secret-santa/pkg/crypto"
)

const handleAttempts = 50

var handleColors = []string{
	"amber", "azure", "beige", "black", "blue", "bronze", "brown", "coral",
	"crimson", "cyan", "emerald", "gold", "gray", "green", "indigo", "ivory",
	"jade", "khaki", "lavender", "lemon", "lilac", "lime", "magenta", "maroon",
	"mint", "navy", "ochre", "olive", "orange", "peach", "pink", "plum",
	"purple", "red", "rose", "ruby", "rust", "saffron", "salmon", "sapphire",
	"scarlet", "silver", "teal", "turquoise", "violet", "white", "yellow", "copper",
}

var handleCreatures = []string{
	"badger", "bear", "beaver", "bison", "camel", "cheetah", "crane", "dolphin",
	"dragon", "eagle", "elk", "falcon", "ferret", "fox", "gecko", "giraffe",
	"goose", "griffin", "hare", "hedgehog", "heron", "ibis", "jaguar", "koala",
	"lemur", "leopard", "lynx", "marten", "mole", "moose", "narwhal", "otter",
	"owl", "panda", "pelican", "penguin", "phoenix", "puffin", "raven", "reindeer",
	"robin", "seal", "sparrow", "squirrel", "swan", "tiger", "walrus", "wolf",
}

var handlePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,62}[a-z0-9]$`)

// HandleGenerator returns a candidate handle; uniqueness is checked by the caller.
type HandleGenerator func() (string, error)

// RandomHandle joins a random colour and creature, e.g. "teal-otter".
func RandomHandle() (string, error) {
	c, err := crypto.RandomIndex(len(handleColors))
	if err != nil {
		return "", err
	}
	k, err := crypto.RandomIndex(len(handleCreatures))
	if err != nil {
		return "", err
	}
	return handleColors[c] + "-" + handleCreatures[k], nil
}

func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimSpace(handle))
}
