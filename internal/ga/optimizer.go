package ga

import (
	"context"
	"math/rand"

	"go.uber.org/zap"

	"timetable-UDP/internal/config"
	"timetable-UDP/internal/domain"
)

// Optimize runs the fixed cfg.Generations-long GA loop (100 by default)
// over a feasible base schedule, returning the best-fitness chromosome
// observed across every
// generation (spec §4.6's termination rule: no convergence check, and the
// answer is the best-ever, not just the final population's best).
//
// Cancellation is observed between generations (spec §5): on a cancelled
// context, Optimize returns the best schedule found so far rather than a
// typed failure — the GA never raises domain errors.
func Optimize(ctx context.Context, base []domain.ScheduledSlot, cfg config.GAConfig, log *zap.Logger) []domain.ScheduledSlot {
	rng := rand.New(rand.NewSource(cfg.Seed))

	pop := InitPopulation(base, cfg.Population, rng)
	bestChromosome := Chromosome{Slots: append([]domain.ScheduledSlot(nil), base...)}
	bestFitness := Fitness(bestChromosome, cfg.Weights)

	for gen := 0; gen < cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			log.Info("ga optimization cancelled, returning best-so-far", zap.Int("generation", gen))
			break
		}

		next, genBest, genBestFitness := NextGeneration(pop, cfg, rng)
		pop = next

		if genBestFitness > bestFitness {
			bestFitness = genBestFitness
			bestChromosome = genBest
		}
	}

	log.Info("ga optimization complete", zap.Float64("best_fitness", bestFitness))
	return bestChromosome.Slots
}
