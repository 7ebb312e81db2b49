package ga

import (
	"math"

	"github.com/samber/lo"

	"timetable-UDP/internal/config"
	"timetable-UDP/internal/domain"
)

// Fitness computes the weighted-sum soft-constraint score from spec
// §4.6, in [0,1].
func Fitness(c Chromosome, weights config.FitnessWeights) float64 {
	return weights.FacultyGaps*facultyGapScore(c)+
		weights.StudentGaps*sectionGapScore(c)+
		weights.WorkloadBalance*workloadBalanceScore(c)+
		weights.MorningPreference*morningPreferenceScore(c)+
		weights.LabCompactness*labCompactnessScore(c)
}

// gapScore is shared by the faculty and student gap terms: for each
// (resource, day) group, gap_periods = (max_p - min_p + 1) - occupied,
// averaged and normalized by the 8-period day.
func gapScore(slots []domain.ScheduledSlot, keyOf func(domain.ScheduledSlot) string) float64 {
	type bucket struct {
		min, max, occupied int
	}
	groups := make(map[string]map[int]*bucket)

	for _, s := range slots {
		key := keyOf(s)
		if groups[key] == nil {
			groups[key] = make(map[int]*bucket)
		}
		b, ok := groups[key][s.Day]
		if !ok {
			b = &bucket{min: s.StartPeriod, max: s.EndPeriod}
			groups[key][s.Day] = b
		}
		if s.StartPeriod < b.min {
			b.min = s.StartPeriod
		}
		if s.EndPeriod > b.max {
			b.max = s.EndPeriod
		}
		b.occupied += s.Length()
	}

	var total float64
	var count int
	for _, byDay := range groups {
		for _, b := range byDay {
			span := b.max - b.min + 1
			gap := span - b.occupied
			total += float64(gap) / float64(domain.PeriodsPerDay)
			count++
		}
	}
	if count == 0 {
		return 1
	}
	return math.Max(0, 1-total/float64(count))
}

func facultyGapScore(c Chromosome) float64 {
	return gapScore(c.Slots, func(s domain.ScheduledSlot) string { return s.FacultyID })
}

func sectionGapScore(c Chromosome) float64 {
	return gapScore(c.Slots, func(s domain.ScheduledSlot) string { return s.SectionID })
}

// workloadBalanceScore penalizes high variance in a faculty's daily load:
// max(0, 1 - mean_over_faculty(var(daily_load)) / 16).
func workloadBalanceScore(c Chromosome) float64 {
	byFaculty := lo.GroupBy(c.Slots, func(s domain.ScheduledSlot) string { return s.FacultyID })
	if len(byFaculty) == 0 {
		return 1
	}

	var totalVar float64
	for _, slots := range byFaculty {
		loads := make([]float64, domain.DaysPerWeek)
		for _, s := range slots {
			loads[s.Day] += float64(s.Length())
		}
		totalVar += variance(loads)
	}
	meanVar := totalVar / float64(len(byFaculty))
	return math.Max(0, 1-meanVar/16)
}

func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var mean float64
	for _, x := range xs {
		mean += x
	}
	mean /= float64(len(xs))

	var sq float64
	for _, x := range xs {
		d := x - mean
		sq += d * d
	}
	return sq / float64(len(xs))
}

// morningPreferenceScore is the fraction of periods that start in the
// morning half-day.
func morningPreferenceScore(c Chromosome) float64 {
	if len(c.Slots) == 0 {
		return 1
	}
	var morning, total int
	for _, s := range c.Slots {
		total += s.Length()
		if domain.IsMorning(s.StartPeriod) {
			morning += s.Length()
		}
	}
	return float64(morning) / float64(total)
}

// labCompactnessScore rewards labs placed earlier in the week:
// mean((5 - day) / 5) over lab slots; 1 if there are no labs.
func labCompactnessScore(c Chromosome) float64 {
	labSlots := lo.Filter(c.Slots, func(s domain.ScheduledSlot, _ int) bool { return isLabSlot(s) })
	if len(labSlots) == 0 {
		return 1
	}
	var total float64
	for _, s := range labSlots {
		total += float64(domain.SaturdayDayIdx-s.Day) / float64(domain.SaturdayDayIdx)
	}
	return total / float64(len(labSlots))
}

// isLabSlot identifies lab slots by block length — the chromosome only
// carries ScheduledSlot, not the originating Subject, so length is the
// only signal the GA has (a greedy-placed theory block is 2 periods; labs
// are config.GeneratorConfig.LabBlock, always >= 3). The CP-SAT theory
// fallback allows theory blocks of up to 4 periods (buildTheoryRequest's
// MaxPeriodsPerBlock); such a block of 3 or more periods counts as a lab
// here.
func isLabSlot(s domain.ScheduledSlot) bool {
	return s.Length() >= 3
}
