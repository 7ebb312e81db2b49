package generator

import (
	"timetable-UDP/internal/domain"
	"timetable-UDP/internal/schederr"
)

// theoryRoomGrid is the per-room slot budget (48 per room) used by the
// pre-flight utilization check (spec §4.5).
const theoryRoomGrid = domain.DaysPerWeek * domain.PeriodsPerDay

// Utilization reports total theory periods needed against total theory
// room capacity (days*periods per room), as a fraction in [0,1].
func Utilization(courses []domain.CourseInstance, theoryRoomCount int) float64 {
	if theoryRoomCount == 0 {
		return 1
	}
	needed := 0
	for _, c := range courses {
		needed += c.PeriodsPerWeek
	}
	return float64(needed) / float64(theoryRoomCount*theoryRoomGrid)
}

// ReduceOnePerSection implements the period-reduction fallback (spec
// §4.5): for each section, reduce exactly one theory course with
// periods_per_week >= 4 down to 2, preferring the course whose faculty
// has the most availability windows (easiest to reschedule).
func ReduceOnePerSection(courses []domain.CourseInstance, facultyWindows map[string][]domain.AvailabilityWindow) ([]domain.CourseInstance, []schederr.ReducedCourse) {
	bySection := make(map[string][]int) // section -> indices into courses
	for i, c := range courses {
		if c.Subject.Type == domain.SubjectTheory {
			bySection[c.Section.ID] = append(bySection[c.Section.ID], i)
		}
	}

	out := append([]domain.CourseInstance(nil), courses...)
	var reduced []schederr.ReducedCourse

	for _, idxs := range bySection {
		bestIdx := -1
		bestWindows := -1
		for _, i := range idxs {
			if out[i].PeriodsPerWeek < 4 {
				continue
			}
			windowCount := len(facultyWindows[out[i].Faculty.ID])
			if windowCount > bestWindows {
				bestWindows = windowCount
				bestIdx = i
			}
		}
		if bestIdx == -1 {
			continue
		}
		reduced = append(reduced, schederr.ReducedCourse{
			CourseID: out[bestIdx].ID,
			Original: out[bestIdx].PeriodsPerWeek,
			New:      2,
		})
		out[bestIdx].PeriodsPerWeek = 2
	}

	return out, reduced
}
