package brackets

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/Dosada05/bracket-engine/models"
)

// Seed orders entrants for bracket placement and assigns dense seed numbers
// 1..N. The random method takes an explicit seed value so results are
// reproducible; callers that want wall-clock entropy must pass it in
// themselves.
func Seed(entrants []models.Entrant, method models.SeedingMethod, randomSeed int64) ([]models.Entrant, error) {
	if len(entrants) < 2 {
		return nil, fmt.Errorf("%w: need at least 2, got %d", ErrInvalidEntrantCount, len(entrants))
	}

	ordered := make([]models.Entrant, len(entrants))
	copy(ordered, entrants)

	switch method {
	case models.SeedManual, "":
		// Caller-provided order is already seed order, but pre-set seed
		// numbers must not collide.
		seen := make(map[int]bool, len(ordered))
		for _, e := range ordered {
			if e.Seed == 0 {
				continue
			}
			if seen[e.Seed] {
				return nil, fmt.Errorf("%w: seed %d", ErrDuplicateSeed, e.Seed)
			}
			seen[e.Seed] = true
		}
	case models.SeedRatingDesc:
		sort.SliceStable(ordered, func(i, j int) bool {
			return ordered[i].Rating > ordered[j].Rating
		})
	case models.SeedRandom:
		rng := rand.New(rand.NewSource(randomSeed))
		rng.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	default:
		return nil, fmt.Errorf("unknown seeding method %q", method)
	}

	for i := range ordered {
		ordered[i].Seed = i + 1
	}
	return ordered, nil
}

// bracketOrder returns the classic elimination placement for a bracket of the
// given size (a power of two): position k holds seed bracketOrder(size)[k].
// Seed 1 meets the lowest remaining seed each round, so top seeds cannot
// collide before the late rounds. Values greater than the entrant count are
// byes.
func bracketOrder(size int) []int {
	order := []int{1}
	for len(order) < size {
		grown := make([]int, 0, len(order)*2)
		max := len(order)*2 + 1
		for _, seed := range order {
			grown = append(grown, seed, max-seed)
		}
		order = grown
	}
	return order
}

// nextPowerOfTwo rounds n up to a power of two.
func nextPowerOfTwo(n int) int {
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}
