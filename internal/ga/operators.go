package ga

import (
	"math/rand"

	"timetable-UDP/internal/config"
	"timetable-UDP/internal/domain"
)

// scored pairs a chromosome with its fitness, computed once per generation
// and reused across selection/elitism so scoring is O(population) not
// O(population^2).
type scored struct {
	chromosome Chromosome
	fitness    float64
}

func scoreAll(pop []Chromosome, weights config.FitnessWeights) []scored {
	out := make([]scored, len(pop))
	for i, c := range pop {
		out[i] = scored{chromosome: c, fitness: Fitness(c, weights)}
	}
	return out
}

// tournamentSelect picks the fittest of k random contenders, ties broken
// by insertion order (lowest index wins) per spec §4.6.
func tournamentSelect(pop []scored, k int, rng *rand.Rand) Chromosome {
	bestIdx := rng.Intn(len(pop))
	for i := 1; i < k; i++ {
		idx := rng.Intn(len(pop))
		if pop[idx].fitness > pop[bestIdx].fitness || (pop[idx].fitness == pop[bestIdx].fitness && idx < bestIdx) {
			bestIdx = idx
		}
	}
	return pop[bestIdx].chromosome
}

// crossover implements the single-point, validity-preserving crossover
// from spec §4.6: for each slot index >= the crossover point, adopt
// parent2's slot for the same (section, subject) if swapping it in
// leaves the offspring's invariants intact; otherwise keep parent1's.
func crossover(parent1, parent2 Chromosome, rng *rand.Rand) Chromosome {
	if len(parent1.Slots) == 0 {
		return parent1.Clone()
	}
	point := rng.Intn(len(parent1.Slots))
	child := parent1.Clone()

	parent2ByKey := make(map[string]domain.ScheduledSlot, len(parent2.Slots))
	for _, s := range parent2.Slots {
		parent2ByKey[s.SectionID+"|"+s.SubjectID] = s
	}

	for i := point; i < len(child.Slots); i++ {
		key := child.Slots[i].SectionID + "|" + child.Slots[i].SubjectID
		candidate, ok := parent2ByKey[key]
		if !ok {
			continue
		}
		if validPlacement(child.Slots, i, candidate) {
			child.Slots[i] = candidate
		}
	}
	return child
}

// mutate applies the single-slot retry-bounded mutation from spec §4.6.
// A chromosome where mutation never finds a valid candidate is returned
// unchanged — the GA never regresses validity.
func mutate(c Chromosome, retries int, rng *rand.Rand) Chromosome {
	out := c.Clone()
	mutateOneSlot(&out, rng, retries)
	return out
}

// NextGeneration produces one generation: elitism carries the top
// eliteFraction through unchanged, the rest are filled by
// tournament-select -> crossover -> mutate.
func NextGeneration(pop []Chromosome, cfg config.GAConfig, rng *rand.Rand) ([]Chromosome, Chromosome, float64) {
	ranked := scoreAll(pop, cfg.Weights)
	sortScoredDesc(ranked)

	eliteCount := int(float64(len(pop)) * cfg.EliteFraction)
	if eliteCount < 1 {
		eliteCount = 1
	}

	next := make([]Chromosome, 0, len(pop))
	for i := 0; i < eliteCount && i < len(ranked); i++ {
		next = append(next, ranked[i].chromosome.Clone())
	}

	for len(next) < len(pop) {
		p1 := tournamentSelect(ranked, cfg.TournamentSize, rng)
		p2 := tournamentSelect(ranked, cfg.TournamentSize, rng)

		child := p1
		if rng.Float64() < cfg.CrossoverRate {
			child = crossover(p1, p2, rng)
		}
		if rng.Float64() < cfg.MutationRate {
			child = mutate(child, cfg.MutationRetries, rng)
		}
		next = append(next, child)
	}

	return next, ranked[0].chromosome, ranked[0].fitness
}

func sortScoredDesc(s []scored) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j].fitness > s[j-1].fitness; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
