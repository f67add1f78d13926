// Package query implements random selection, type filtering and pagination
// over a joke collection.
//
// All functions are pure: they never modify their input.
package query

import (
	"math/rand/v2"

	"github.com/maruel/jokedb/internal/storage/entity"
)

// Rand is the source of randomness used for sampling.
//
// *rand.Rand from math/rand/v2 implements it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Default uses the global math/rand/v2 generator.
var Default Rand = globalRand{}

// RandomOne picks one joke uniformly. It returns false if jokes is empty.
func RandomOne(r Rand, jokes []entity.Joke) (entity.Joke, bool) {
	if len(jokes) == 0 {
		return entity.Joke{}, false
	}
	return jokes[r.IntN(len(jokes))], true
}

// RandomN returns min(n, len(jokes)) distinct jokes chosen without
// replacement.
//
// Indices are drawn uniformly and retried when already seen; the result is
// in the order the indices were first drawn, not in collection order.
func RandomN(r Rand, jokes []entity.Joke, n int) []entity.Joke {
	limit := min(n, len(jokes))
	if limit <= 0 {
		return []entity.Joke{}
	}
	seen := make(map[int]struct{}, limit)
	order := make([]int, 0, limit)
	for len(order) < limit {
		i := r.IntN(len(jokes))
		if _, ok := seen[i]; ok {
			continue
		}
		seen[i] = struct{}{}
		order = append(order, i)
	}
	out := make([]entity.Joke, len(order))
	for k, i := range order {
		out[k] = jokes[i]
	}
	return out
}

// FilterByType returns the jokes whose type matches t exactly, in order.
func FilterByType(jokes []entity.Joke, t string) []entity.Joke {
	out := []entity.Joke{}
	for i := range jokes {
		if jokes[i].Type == t {
			out = append(out, jokes[i])
		}
	}
	return out
}
