package resolver

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// builtins are dynamic placeholder generators evaluated at resolution
// time, independent of sources. Each occurrence is recomputed, so two
// {{$timestamp}} in the same pass may differ if evaluated at different
// instants.
var builtins = map[string]func() string{
	"$uuid": func() string {
		return uuid.NewString()
	},
	"$timestamp": func() string {
		return strconv.FormatInt(time.Now().UnixMilli(), 10)
	},
	"$isoTimestamp": func() string {
		return time.Now().UTC().Format(time.RFC3339)
	},
	"$randomInt": func() string {
		return strconv.Itoa(rand.IntN(1000000))
	},
}
