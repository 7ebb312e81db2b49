package generator

import (
	"context"
	"errors"
	"math/rand"

	"go.uber.org/zap"

	"timetable-UDP/internal/config"
	"timetable-UDP/internal/cpsat"
	"timetable-UDP/internal/domain"
	"timetable-UDP/internal/occupancy"
	"timetable-UDP/internal/schederr"
)

// theoryBlockSize is the minimum/preferred granularity theory is placed
// in: 2-period blocks, rejecting a 1-period residual (spec §4.4, B4).
const theoryBlockSize = 2

// preferredRanges is the morning-weighted (start,end) preference list
// from spec §4.4, filtered per candidate to the required block length.
var preferredRanges = [][2]int{
	{1, 2}, {1, 3}, {2, 3}, {2, 4}, {1, 4}, {3, 4},
	{5, 6}, {5, 7}, {6, 7}, {6, 8}, {5, 8}, {7, 8},
}

// AttemptResult is one multi-start attempt's outcome.
type AttemptResult struct {
	StrategyName   string
	Placed         []domain.ScheduledSlot
	PeriodsPlaced  int
	PeriodsNeeded  int
	Ratio          float64
}

// ScheduleTheory runs Phase 2 (multi-start greedy) and, if the best
// attempt falls short of the CP-SAT fallback cutoff, Phase 2B (CP-SAT
// fallback). It returns the committed slots on the live tracker — the
// caller's tracker ends up holding the winning attempt's state.
func ScheduleTheory(ctx context.Context, client *cpsat.Client, tr *occupancy.Tracker, theoryRooms []domain.Room, courses []domain.CourseInstance, facultyWindows map[string][]domain.AvailabilityWindow, facultyWorkload map[string]int, cfg config.GeneratorConfig, log *zap.Logger) ([]domain.ScheduledSlot, string, []schederr.MissingCoverage, []schederr.ReducedCourse) {
	postLabSnapshot := tr.Snapshot()
	needed := 0
	for _, c := range courses {
		needed += c.PeriodsPerWeek
	}

	scoreFn := func(c domain.CourseInstance) float64 {
		maxSlots := domain.DaysPerWeek * domain.PeriodsPerDay
		available := tr.FacultyFreeOn(c.Faculty.ID, 0) * domain.DaysPerWeek // coarse estimate, ranking-only
		return DifficultyScore(c, maxSlots, available, 1, facultyWorkload[c.Faculty.ID])
	}
	strategies := Strategies(facultyWorkload, scoreFn, cfg.Seed, cfg.RelaxedModeAttempt)
	if len(strategies) > cfg.MultiStartAttempts {
		strategies = strategies[:cfg.MultiStartAttempts]
	}

	var best AttemptResult
	rng := rand.New(rand.NewSource(cfg.Seed))

	for _, strat := range strategies {
		tr.Restore(postLabSnapshot)
		ordered := strat.Order(courses, tr, rng)
		placed, placedPeriods := greedyPlaceTheory(tr, ordered, theoryRooms, facultyWindows, facultyWorkload, cfg, strat.Relaxed)

		ratio := 0.0
		if needed > 0 {
			ratio = float64(placedPeriods) / float64(needed)
		} else {
			ratio = 1.0
		}

		if ratio > best.Ratio {
			best = AttemptResult{StrategyName: strat.Name, Placed: placed, PeriodsPlaced: placedPeriods, PeriodsNeeded: needed, Ratio: ratio}
		}
		if ratio >= 1.0 {
			break
		}
	}

	// Re-apply the winning attempt's commits onto the live tracker (it was
	// left at whatever the last attempt tried).
	tr.Restore(postLabSnapshot)
	for _, slot := range best.Placed {
		tr.TryCommit(slot)
	}

	if best.Ratio >= cfg.GreedyFallbackCutoff || client == nil {
		return best.Placed, best.StrategyName, missingFromRatio(courses, best.Placed), nil
	}

	log.Info("theory greedy fell short of cutoff, attempting cpsat fallback",
		zap.Float64("ratio", best.Ratio), zap.Float64("cutoff", cfg.GreedyFallbackCutoff))

	remaining := unplacedCourses(courses, best.Placed)
	req := buildTheoryRequest(remaining, theoryRooms, facultyWindows, tr.CommittedSlots(), cfg)
	resp, err := client.SolveTheory(ctx, req)
	if err != nil {
		var solveErr *schederr.Error
		if errors.As(err, &solveErr) && solveErr.Kind == schederr.KindSolverInfeasible {
			log.Info("cpsat theory solve infeasible, reducing periods and retrying once",
				zap.String("detail", solveErr.Message))
			return retryWithReduction(ctx, client, tr, theoryRooms, courses, remaining, facultyWindows, cfg, best, log)
		}
		log.Warn("cpsat theory solve failed, keeping best greedy attempt", zap.Error(err))
		return best.Placed, best.StrategyName, missingFromRatio(courses, best.Placed), nil
	}

	applied := applyTheoryResponse(tr, remaining, resp)
	all := append(append([]domain.ScheduledSlot(nil), best.Placed...), applied...)
	return all, best.StrategyName, missingFromRatio(courses, all), nil
}

// retryWithReduction implements the CP-SAT-INFEASIBLE fallback (spec §4.5(a)
// / §7): reduce one theory course per section to its 2-period floor and
// retry the solve exactly once. A course reduced this way is no longer held
// to its original periods_per_week for the purposes of this attempt's
// coverage check — it traded full coverage for feasibility, the same trade
// the pre-flight utilization reduction in generator.go makes. The returned
// []schederr.ReducedCourse lets the caller fold this reduction into the same
// diagnostics the pre-flight reduction populates.
func retryWithReduction(ctx context.Context, client *cpsat.Client, tr *occupancy.Tracker, theoryRooms []domain.Room, courses, remaining []domain.CourseInstance, facultyWindows map[string][]domain.AvailabilityWindow, cfg config.GeneratorConfig, best AttemptResult, log *zap.Logger) ([]domain.ScheduledSlot, string, []schederr.MissingCoverage, []schederr.ReducedCourse) {
	reducedRemaining, reduced := ReduceOnePerSection(remaining, facultyWindows)
	if len(reduced) == 0 {
		log.Warn("cpsat theory infeasible but nothing left to reduce, keeping best greedy attempt")
		return best.Placed, best.StrategyName, missingFromRatio(courses, best.Placed), nil
	}

	retryReq := buildTheoryRequest(reducedRemaining, theoryRooms, facultyWindows, tr.CommittedSlots(), cfg)
	retryResp, err := client.SolveTheory(ctx, retryReq)
	if err != nil {
		log.Warn("cpsat theory retry after period reduction also failed, keeping best greedy attempt", zap.Error(err))
		return best.Placed, best.StrategyName, missingFromRatio(courses, best.Placed), nil
	}

	applied := applyTheoryResponse(tr, reducedRemaining, retryResp)
	all := append(append([]domain.ScheduledSlot(nil), best.Placed...), applied...)
	return all, best.StrategyName, missingFromRatio(reduceExpected(courses, reduced), all), reduced
}

// reduceExpected lowers each reduced course's expected periods by the same
// amount ReduceOnePerSection lowered its still-needed periods, so the
// coverage check doesn't flag a deliberately-reduced course as a shortfall.
func reduceExpected(courses []domain.CourseInstance, reduced []schederr.ReducedCourse) []domain.CourseInstance {
	by := make(map[string]int, len(reduced))
	for _, r := range reduced {
		by[r.CourseID] = r.Original - r.New
	}

	out := append([]domain.CourseInstance(nil), courses...)
	for i := range out {
		if delta, ok := by[out[i].ID]; ok {
			out[i].PeriodsPerWeek -= delta
		}
	}
	return out
}

// greedyPlaceTheory implements the Phase 2 per-course greedy placement
// contract: 2-period blocks until periods_per_week is met, day ranking by
// combined load, morning-weighted preferred ranges, and — unless
// relaxed — the faculty day-balancing cap.
func greedyPlaceTheory(tr *occupancy.Tracker, courses []domain.CourseInstance, rooms []domain.Room, windows map[string][]domain.AvailabilityWindow, facultyWorkload map[string]int, cfg config.GeneratorConfig, relaxed bool) ([]domain.ScheduledSlot, int) {
	var placed []domain.ScheduledSlot
	placedPeriods := 0

	for _, course := range courses {
		remaining := course.PeriodsPerWeek
		for remaining >= theoryBlockSize {
			slot, ok := placeOneTheoryBlock(tr, course, rooms, windows[course.Faculty.ID], facultyWorkload[course.Faculty.ID], cfg, relaxed)
			if !ok {
				break
			}
			placed = append(placed, slot)
			placedPeriods += slot.Length()
			remaining -= slot.Length()
		}
	}
	return placed, placedPeriods
}

func placeOneTheoryBlock(tr *occupancy.Tracker, course domain.CourseInstance, rooms []domain.Room, windows []domain.AvailabilityWindow, facultyWorkload int, cfg config.GeneratorConfig, relaxed bool) (domain.ScheduledSlot, bool) {
	days := rankDaysByLoad(tr, course)

	for _, day := range days {
		for _, rng := range preferredRanges {
			if rng[1]-rng[0]+1 != theoryBlockSize {
				continue
			}
			start, end := rng[0], rng[1]

			if tr.SectionLoadOn(course.Section.ID, day)+theoryBlockSize > cfg.MaxSectionPeriodsPerDay {
				continue
			}
			if theoryLoadOnSubjectDay(tr, course, day)+theoryBlockSize > cfg.MaxTheoryPeriodsPerDayCap {
				continue
			}
			if !blockWithinWindows(windows, day, start, end) {
				continue
			}
			if !relaxed {
				cap := (facultyWorkload+5)/domain.DaysPerWeek + 3
				if tr.FacultyTheoryLoadOn(course.Faculty.ID, day)+theoryBlockSize > cap {
					continue
				}
			}

			for _, room := range rooms {
				slot := domain.ScheduledSlot{
					SectionID: course.Section.ID, SubjectID: course.Subject.ID,
					FacultyID: course.Faculty.ID, RoomID: room.ID,
					Day: day, StartPeriod: start, EndPeriod: end,
				}
				if tr.TryCommit(slot).Committed {
					return slot, true
				}
			}
		}
	}
	return domain.ScheduledSlot{}, false
}

func rankDaysByLoad(tr *occupancy.Tracker, course domain.CourseInstance) []int {
	days := make([]int, domain.DaysPerWeek)
	for i := range days {
		days[i] = i
	}
	load := func(d int) int {
		return tr.SectionLoadOn(course.Section.ID, d) + tr.FacultyTheoryLoadOn(course.Faculty.ID, d)
	}
	for i := 1; i < len(days); i++ {
		for j := i; j > 0 && load(days[j]) < load(days[j-1]); j-- {
			days[j], days[j-1] = days[j-1], days[j]
		}
	}
	return days
}

// theoryLoadOnSubjectDay counts the (section, subject) periods already
// scheduled on a day, for the I8 per-day cap of 2.
func theoryLoadOnSubjectDay(tr *occupancy.Tracker, course domain.CourseInstance, day int) int {
	total := 0
	for _, slot := range tr.CommittedSlots() {
		if slot.Day == day && slot.SectionID == course.Section.ID && slot.SubjectID == course.Subject.ID {
			total += slot.Length()
		}
	}
	return total
}

func missingFromRatio(courses []domain.CourseInstance, placed []domain.ScheduledSlot) []schederr.MissingCoverage {
	scheduled := make(map[string]int)
	for _, s := range placed {
		scheduled[s.SectionID+"|"+s.SubjectID] += s.Length()
	}

	var missing []schederr.MissingCoverage
	for _, c := range courses {
		got := scheduled[c.Section.ID+"|"+c.Subject.ID]
		if got < c.PeriodsPerWeek {
			missing = append(missing, schederr.MissingCoverage{CourseID: c.ID, Expected: c.PeriodsPerWeek, Scheduled: got})
		}
	}
	return missing
}

func unplacedCourses(courses []domain.CourseInstance, placed []domain.ScheduledSlot) []domain.CourseInstance {
	scheduled := make(map[string]int)
	for _, s := range placed {
		scheduled[s.SectionID+"|"+s.SubjectID] += s.Length()
	}

	var remaining []domain.CourseInstance
	for _, c := range courses {
		got := scheduled[c.Section.ID+"|"+c.Subject.ID]
		if got < c.PeriodsPerWeek {
			remaining = append(remaining, domain.CourseInstance{
				ID: c.ID, Section: c.Section, Subject: c.Subject, Faculty: c.Faculty,
				PeriodsPerWeek: c.PeriodsPerWeek - got,
			})
		}
	}
	return remaining
}

func buildTheoryRequest(courses []domain.CourseInstance, rooms []domain.Room, windows map[string][]domain.AvailabilityWindow, existing []domain.ScheduledSlot, cfg config.GeneratorConfig) cpsat.TheoryRequest {
	req := cpsat.TheoryRequest{
		Rules: cpsat.TheoryRules{
			LabRules:           cpsat.LabRules{LabPeriods: int(cfg.LabBlock), DaysPerWeek: domain.DaysPerWeek, PeriodsPerDay: domain.PeriodsPerDay},
			MaxPeriodsPerBlock: 4,
			MaxPeriodsPerDay:   cfg.MaxSectionPeriodsPerDay,
		},
	}
	for _, c := range courses {
		req.Courses = append(req.Courses, cpsat.TheoryCourse{
			LabCourse: cpsat.LabCourse{
				SectionID: c.Section.ID, SectionName: c.Section.Name,
				SubjectID: c.Subject.ID, SubjectCode: c.Subject.Code,
				FacultyID: c.Faculty.ID, FacultyCode: c.Faculty.Code,
				StudentCount: c.Section.StudentCount, YearLevel: c.Section.YearLevel,
			},
			PeriodsPerWeek: c.PeriodsPerWeek,
		})
	}
	for _, r := range rooms {
		req.Rooms = append(req.Rooms, cpsat.RoomRef{ID: r.ID, Capacity: r.Capacity})
	}
	for fid, ws := range windows {
		fa := cpsat.FacultyAvailability{FacultyID: fid}
		for _, w := range ws {
			fa.Slots = append(fa.Slots, cpsat.FacultySlot{DayOfWeek: w.Day, StartPeriod: w.StartPeriod, EndPeriod: w.EndPeriod})
		}
		req.FacultyAvailability = append(req.FacultyAvailability, fa)
	}
	for _, s := range existing {
		req.ExistingAssignments = append(req.ExistingAssignments, cpsat.ExistingAssignment{
			SectionID: s.SectionID, Day: s.Day, StartPeriod: s.StartPeriod, EndPeriod: s.EndPeriod,
			FacultyID: s.FacultyID, RoomID: s.RoomID,
		})
	}
	return req
}

func applyTheoryResponse(tr *occupancy.Tracker, courses []domain.CourseInstance, resp *cpsat.TheoryResponse) []domain.ScheduledSlot {
	byKey := make(map[string]domain.CourseInstance, len(courses))
	for _, c := range courses {
		byKey[c.Section.ID+"|"+c.Subject.ID] = c
	}

	var placed []domain.ScheduledSlot
	for _, a := range resp.Assignments {
		course, ok := byKey[a.SectionID+"|"+a.SubjectID]
		if !ok {
			continue
		}
		slot := domain.ScheduledSlot{
			SectionID: course.Section.ID, SubjectID: course.Subject.ID,
			FacultyID: course.Faculty.ID, RoomID: a.RoomID,
			Day: a.Day, StartPeriod: a.StartPeriod, EndPeriod: a.EndPeriod,
		}
		if tr.TryCommit(slot).Committed {
			placed = append(placed, slot)
		}
	}
	return placed
}
