package ga

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"timetable-UDP/internal/config"
	"timetable-UDP/internal/domain"
)

func baseSchedule() []domain.ScheduledSlot {
	return []domain.ScheduledSlot{
		{SectionID: "sec-1", SubjectID: "theory-1", FacultyID: "fac-1", RoomID: "room-1", Day: 0, StartPeriod: 1, EndPeriod: 2},
		{SectionID: "sec-1", SubjectID: "theory-1", FacultyID: "fac-1", RoomID: "room-1", Day: 2, StartPeriod: 5, EndPeriod: 6},
		{SectionID: "sec-2", SubjectID: "lab-1", FacultyID: "fac-2", RoomID: "lab-1", Day: 1, StartPeriod: 1, EndPeriod: 4},
	}
}

func testGAConfig() config.GAConfig {
	return config.GAConfig{
		Population:      10,
		Generations:      5,
		MutationRate:     0.3,
		CrossoverRate:    0.8,
		EliteFraction:    0.1,
		TournamentSize:   3,
		MutationRetries:  10,
		Seed:             7,
		Weights: config.FitnessWeights{
			FacultyGaps: 0.30, StudentGaps: 0.25, WorkloadBalance: 0.20,
			MorningPreference: 0.15, LabCompactness: 0.10,
		},
	}
}

func TestInitPopulationFirstMemberIsBaseVerbatim(t *testing.T) {
	base := baseSchedule()
	pop := InitPopulation(base, 5, rand.New(rand.NewSource(1)))
	require.Len(t, pop, 5)
	assert.Equal(t, base, pop[0].Slots)
}

func TestFitnessIsWithinUnitRange(t *testing.T) {
	c := Chromosome{Slots: baseSchedule()}
	f := Fitness(c, testGAConfig().Weights)
	assert.GreaterOrEqual(t, f, 0.0)
	assert.LessOrEqual(t, f, 1.0)
}

func TestFitnessEmptyScheduleIsPerfect(t *testing.T) {
	f := Fitness(Chromosome{}, testGAConfig().Weights)
	assert.InDelta(t, 1.0, f, 1e-9)
}

func TestCrossoverProducesValidChromosome(t *testing.T) {
	p1 := Chromosome{Slots: baseSchedule()}
	p2 := Chromosome{Slots: baseSchedule()}
	p2.Slots[0].Day = 3
	p2.Slots[0].StartPeriod, p2.Slots[0].EndPeriod = 3, 4

	child := crossover(p1, p2, rand.New(rand.NewSource(3)))
	for i, s := range child.Slots {
		assert.True(t, validPlacement(child.Slots, i, s))
	}
}

func TestOptimizeNeverRegressesFitness(t *testing.T) {
	base := baseSchedule()
	baseFitness := Fitness(Chromosome{Slots: base}, testGAConfig().Weights)

	result := Optimize(context.Background(), base, testGAConfig(), zap.NewNop())
	resultFitness := Fitness(Chromosome{Slots: result}, testGAConfig().Weights)

	assert.GreaterOrEqual(t, resultFitness, baseFitness)
}

func TestOptimizeRespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := Optimize(ctx, baseSchedule(), testGAConfig(), zap.NewNop())
	assert.NotNil(t, result)
}
