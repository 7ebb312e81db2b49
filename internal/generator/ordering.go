// Package generator implements the base generator (C4): lab-then-theory
// phase orchestration, prioritization heuristics, multi-start ordering
// diversification, and the CP-SAT/greedy/period-reduction fallback chain.
// Structurally this plays the role the teacher's internal/solver played
// (IntegratedSchedulerWithConstraints driving a graph-coloring pass with a
// capacity-aware room-assignment fallback); the heuristics themselves are
// rewritten to the contract in spec §4.4.
package generator

import (
	"math/rand"
	"sort"

	"github.com/samber/lo"

	"timetable-UDP/internal/domain"
	"timetable-UDP/internal/occupancy"
)

// PrioritizeLabs implements the Phase 0 lab ordering: descending count of
// labs in the same section, ascending year level (year 1 first, for its
// Saturday-afternoon flexibility), ascending availability-window count.
func PrioritizeLabs(labs []domain.CourseInstance, windowCount func(facultyID string) int) []domain.CourseInstance {
	labsInSection := lo.CountValuesBy(labs, func(c domain.CourseInstance) string { return c.Section.ID })

	out := append([]domain.CourseInstance(nil), labs...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if labsInSection[a.Section.ID] != labsInSection[b.Section.ID] {
			return labsInSection[a.Section.ID] > labsInSection[b.Section.ID]
		}
		if a.Section.YearLevel != b.Section.YearLevel {
			return a.Section.YearLevel < b.Section.YearLevel
		}
		return windowCount(a.Faculty.ID) < windowCount(b.Faculty.ID)
	})
	return out
}

// DifficultyScore implements the Phase 0 theory weighting formula.
func DifficultyScore(c domain.CourseInstance, maxSlots, availableSlots, sectionCourseCount int, facultyWorkload int) float64 {
	score := float64(c.PeriodsPerWeek) * 10
	score += float64(c.Section.StudentCount) * 0.1
	score += float64(maxSlots-availableSlots) * 0.5
	score += float64(sectionCourseCount) * 3
	if c.Section.YearLevel == 1 {
		score += 5
	}
	score += float64(facultyWorkload) * 2
	return score
}

// PrioritizeTheory orders theory course instances by descending difficulty
// score, as computed by scoreFn (so callers can close over tracker state).
func PrioritizeTheory(courses []domain.CourseInstance, scoreFn func(domain.CourseInstance) float64) []domain.CourseInstance {
	out := append([]domain.CourseInstance(nil), courses...)
	sort.SliceStable(out, func(i, j int) bool {
		return scoreFn(out[i]) > scoreFn(out[j])
	})
	return out
}

// OrderingStrategy is one of the 15 theory orderings from spec §4.4. Each
// produces a full ordering of the course set; strategies are a closed,
// additive set per the polymorphism design note in spec §9.
type OrderingStrategy struct {
	Name    string
	Relaxed bool
	Order   func(courses []domain.CourseInstance, tr *occupancy.Tracker, rng *rand.Rand) []domain.CourseInstance
}

// Strategies returns the 15 ordering strategies in the order spec §4.4
// lists them: 5 deterministic, 5 randomized, 5 relaxed-mode repeats.
// relaxedModeAttempt is the 1-indexed attempt number (config knob
// generator.relaxed_mode_attempt) at which the faculty day-balancing cap
// lifts; every strategy at or past that position in the list runs relaxed.
func Strategies(facultyWorkload map[string]int, scoreFn func(domain.CourseInstance) float64, seed int64, relaxedModeAttempt int) []OrderingStrategy {
	rng := rand.New(rand.NewSource(seed))

	sectionFirst := func(courses []domain.CourseInstance, tr *occupancy.Tracker, _ *rand.Rand) []domain.CourseInstance {
		return orderSectionFirst(courses, facultyWorkload, false)
	}
	reverseSectionFirst := func(courses []domain.CourseInstance, tr *occupancy.Tracker, _ *rand.Rand) []domain.CourseInstance {
		return orderSectionFirst(courses, facultyWorkload, true)
	}
	mostConstrained := func(courses []domain.CourseInstance, tr *occupancy.Tracker, _ *rand.Rand) []domain.CourseInstance {
		return orderMostConstrained(courses, tr)
	}
	interleaved := func(courses []domain.CourseInstance, tr *occupancy.Tracker, _ *rand.Rand) []domain.CourseInstance {
		return orderFacultyInterleaved(courses, facultyWorkload)
	}
	priority := func(courses []domain.CourseInstance, tr *occupancy.Tracker, _ *rand.Rand) []domain.CourseInstance {
		return PrioritizeTheory(courses, scoreFn)
	}
	shuffle := func(courses []domain.CourseInstance, tr *occupancy.Tracker, rng *rand.Rand) []domain.CourseInstance {
		out := append([]domain.CourseInstance(nil), courses...)
		rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}

	strategies := []OrderingStrategy{
		{Name: "section-first", Order: sectionFirst},
		{Name: "most-constrained-first", Order: mostConstrained},
		{Name: "faculty-interleaved", Order: interleaved},
		{Name: "priority-based", Order: priority},
		{Name: "reverse-section-first", Order: reverseSectionFirst},
	}
	for i := 0; i < 5; i++ {
		strategies = append(strategies, OrderingStrategy{Name: "random-shuffle", Order: shuffle})
	}
	strategies = append(strategies,
		OrderingStrategy{Name: "relaxed-section-first", Order: sectionFirst},
		OrderingStrategy{Name: "relaxed-most-constrained-first", Order: mostConstrained},
		OrderingStrategy{Name: "relaxed-random-shuffle-1", Order: shuffle},
		OrderingStrategy{Name: "relaxed-random-shuffle-2", Order: shuffle},
		OrderingStrategy{Name: "relaxed-random-shuffle-3", Order: shuffle},
	)

	for i := range strategies {
		strategies[i].Relaxed = i+1 >= relaxedModeAttempt
	}

	// Bind the shared rng so repeated calls to the same strategy (e.g.
	// across multi-start attempts) draw fresh permutations.
	for i := range strategies {
		fn := strategies[i].Order
		strategies[i].Order = func(courses []domain.CourseInstance, tr *occupancy.Tracker, _ *rand.Rand) []domain.CourseInstance {
			return fn(courses, tr, rng)
		}
	}
	return strategies
}

func orderSectionFirst(courses []domain.CourseInstance, facultyWorkload map[string]int, reverse bool) []domain.CourseInstance {
	bySection := lo.GroupBy(courses, func(c domain.CourseInstance) string { return c.Section.ID })
	sectionWorkload := make(map[string]int, len(bySection))
	for sid, cs := range bySection {
		total := 0
		for _, c := range cs {
			total += facultyWorkload[c.Faculty.ID]
		}
		sectionWorkload[sid] = total
	}

	sections := lo.Keys(bySection)
	sort.Slice(sections, func(i, j int) bool {
		if reverse {
			return sectionWorkload[sections[i]] < sectionWorkload[sections[j]]
		}
		return sectionWorkload[sections[i]] > sectionWorkload[sections[j]]
	})

	var out []domain.CourseInstance
	for _, sid := range sections {
		group := bySection[sid]
		sort.SliceStable(group, func(i, j int) bool {
			return facultyWorkload[group[i].Faculty.ID] > facultyWorkload[group[j].Faculty.ID]
		})
		out = append(out, group...)
	}
	return out
}

func orderMostConstrained(courses []domain.CourseInstance, tr *occupancy.Tracker) []domain.CourseInstance {
	score := func(c domain.CourseInstance) float64 {
		facultyFree := 0
		sectionFree := 0
		for d := 0; d < domain.DaysPerWeek; d++ {
			facultyFree += tr.FacultyFreeOn(c.Faculty.ID, d)
			sectionFree += domain.PeriodsPerDay - tr.SectionLoadOn(c.Section.ID, d)
		}
		free := facultyFree
		if sectionFree < free {
			free = sectionFree
		}
		if c.PeriodsPerWeek == 0 {
			return 0
		}
		return float64(free) / float64(c.PeriodsPerWeek)
	}
	out := append([]domain.CourseInstance(nil), courses...)
	sort.SliceStable(out, func(i, j int) bool {
		return score(out[i]) < score(out[j])
	})
	return out
}

func orderFacultyInterleaved(courses []domain.CourseInstance, facultyWorkload map[string]int) []domain.CourseInstance {
	byFaculty := lo.GroupBy(courses, func(c domain.CourseInstance) string { return c.Faculty.ID })
	faculties := lo.Keys(byFaculty)
	sort.Slice(faculties, func(i, j int) bool {
		return facultyWorkload[faculties[i]] > facultyWorkload[faculties[j]]
	})

	var out []domain.CourseInstance
	round := 0
	for {
		placedAny := false
		for _, fid := range faculties {
			group := byFaculty[fid]
			if round >= len(group) {
				continue
			}
			out = append(out, group[round])
			placedAny = true
		}
		if !placedAny {
			break
		}
		round++
	}
	return out
}
