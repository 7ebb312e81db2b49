// Package ga implements the genetic-algorithm optimizer (C5): population
// init, fitness, tournament selection, validity-preserving crossover and
// mutation, and elitism over a feasible base schedule. Modeled on the
// teacher's internal/solver/simulated_annealing.go neighbor-then-accept
// shape, generalized from single-solution annealing to a population.
package ga

import (
	"math/rand"

	"github.com/mitchellh/hashstructure/v2"
	"github.com/samber/lo"

	"timetable-UDP/internal/domain"
)

// Chromosome is an ordered list of slots, one genome in the population.
// Order is significant only for crossover-point semantics; validity
// checks treat it as a set.
type Chromosome struct {
	Slots []domain.ScheduledSlot
}

// Hash returns a stable, slot-order-insensitive content hash, the way
// aws-karpenter-provider-aws/pkg/cache/validation.go hashes a node class
// spec into its cache key. The optimizer does not memoize fitness by it:
// scoreAll recomputes every chromosome's fitness each generation.
func (c Chromosome) Hash() uint64 {
	h, err := hashstructure.Hash(c.Slots, hashstructure.FormatV2, &hashstructure.HashOptions{SlicesAsSets: true})
	if err != nil {
		return 0
	}
	return h
}

// Clone returns an independent copy — the GA never aliases slot slices
// across chromosomes (spec §3's "GA operates on independent copies").
func (c Chromosome) Clone() Chromosome {
	return Chromosome{Slots: append([]domain.ScheduledSlot(nil), c.Slots...)}
}

// InitPopulation builds generation 0: the base schedule verbatim as the
// first member, then size-1 variants produced by applying ~10% random
// valid swaps each (spec §4.6).
func InitPopulation(base []domain.ScheduledSlot, size int, rng *rand.Rand) []Chromosome {
	pop := make([]Chromosome, 0, size)
	pop = append(pop, Chromosome{Slots: append([]domain.ScheduledSlot(nil), base...)})

	for len(pop) < size {
		c := Chromosome{Slots: append([]domain.ScheduledSlot(nil), base...)}
		swaps := lo.Max([]int{1, len(c.Slots) / 10})
		for i := 0; i < swaps; i++ {
			mutateOneSlot(&c, rng, 10)
		}
		pop = append(pop, c)
	}
	return pop
}

// mutateOneSlot picks a random slot and replaces it with a new (day,
// start_period) of the same block length, retrying up to maxRetries times
// until the result is valid, leaving the chromosome unchanged otherwise.
func mutateOneSlot(c *Chromosome, rng *rand.Rand, maxRetries int) bool {
	if len(c.Slots) == 0 {
		return false
	}
	idx := rng.Intn(len(c.Slots))
	original := c.Slots[idx]
	length := original.Length()

	for attempt := 0; attempt < maxRetries; attempt++ {
		day := rng.Intn(domain.DaysPerWeek)
		start := candidateStart(rng, length)
		end := start + length - 1
		if end > domain.PeriodsPerDay || !domain.LunchSafe(start, end) {
			continue
		}
		candidate := original
		candidate.Day = day
		candidate.StartPeriod = start
		candidate.EndPeriod = end

		if !validPlacement(c.Slots, idx, candidate) {
			continue
		}
		c.Slots[idx] = candidate
		return true
	}
	return false
}

func candidateStart(rng *rand.Rand, length int) int {
	if rng.Intn(2) == 0 {
		// Morning half-day.
		max := domain.LunchBreakAt - length + 1
		if max < 1 {
			max = 1
		}
		return 1 + rng.Intn(max)
	}
	max := domain.PeriodsPerDay - domain.LunchBreakAt - length + 1
	if max < 1 {
		max = 1
	}
	return domain.LunchBreakAt + 1 + rng.Intn(max)
}

// validPlacement is the O(n) swap validity check from spec §4.6: no other
// slot on the same day overlaps in periods and shares faculty, room, or
// section with the candidate.
func validPlacement(slots []domain.ScheduledSlot, skipIdx int, candidate domain.ScheduledSlot) bool {
	if !domain.ValidSlot(candidate) {
		return false
	}
	for i, other := range slots {
		if i == skipIdx {
			continue
		}
		if other.Day != candidate.Day {
			continue
		}
		if !domain.Overlaps(other, candidate) {
			continue
		}
		if other.FacultyID == candidate.FacultyID || other.RoomID == candidate.RoomID || other.SectionID == candidate.SectionID {
			return false
		}
	}
	return true
}
