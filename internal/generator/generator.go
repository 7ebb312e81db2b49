package generator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"timetable-UDP/internal/config"
	"timetable-UDP/internal/cpsat"
	"timetable-UDP/internal/domain"
	"timetable-UDP/internal/occupancy"
	"timetable-UDP/internal/schederr"
)

// Instance is the immutable problem description the generator consumes:
// the full course catalogue, the room inventory, and declared faculty
// availability. Nothing here is mutated during generation (spec §3).
type Instance struct {
	Courses        []domain.CourseInstance
	Rooms          []domain.Room
	FacultyWindows map[string][]domain.AvailabilityWindow
}

// Result is the scheduler entry point's success value (spec §6). RunID
// opaquely identifies this generation attempt so callers (the GA stage,
// the exporter, a future re-run comparing two attempts) can correlate
// logs and artifacts without reusing a domain ID for a non-domain concern.
type Result struct {
	RunID          string
	Schedule       []domain.ScheduledSlot
	ReducedCourses []schederr.ReducedCourse
	Diagnostics    *schederr.Diagnostics
	BaseTimeMs     int64
}

func splitByType(courses []domain.CourseInstance) (labs, theory []domain.CourseInstance) {
	for _, c := range courses {
		if c.IsLab() {
			labs = append(labs, c)
		} else {
			theory = append(theory, c)
		}
	}
	return labs, theory
}

func splitByRoomType(rooms []domain.Room) (lab, theory []domain.Room) {
	for _, r := range rooms {
		if r.Type == domain.RoomLab {
			lab = append(lab, r)
		} else {
			theory = append(theory, r)
		}
	}
	return lab, theory
}

func computeFacultyWorkload(courses []domain.CourseInstance) map[string]int {
	workload := make(map[string]int)
	for _, c := range courses {
		workload[c.Faculty.ID] += c.PeriodsPerWeek
	}
	return workload
}

// Generate runs the full base-generation pipeline: Phase 0 prioritization,
// Phase 1 lab scheduling, Phase 2/2B theory scheduling with fallbacks, and
// Phase 3 post-hoc validation (spec §4.4). It returns a *schederr.Error on
// any fatal condition.
func Generate(ctx context.Context, instance Instance, client *cpsat.Client, cfg *config.Config, log *zap.Logger) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	log = log.With(zap.String("run_id", runID))

	if len(instance.Courses) == 0 {
		return &Result{RunID: runID, Schedule: nil, Diagnostics: &schederr.Diagnostics{}}, nil
	}

	labRooms, theoryRooms := splitByRoomType(instance.Rooms)
	labs, theory := splitByType(instance.Courses)
	workload := computeFacultyWorkload(instance.Courses)

	var roomIDs []string
	for _, r := range instance.Rooms {
		roomIDs = append(roomIDs, r.ID)
	}
	var facultyIDs []string
	seenFaculty := map[string]bool{}
	for _, c := range instance.Courses {
		if !seenFaculty[c.Faculty.ID] {
			seenFaculty[c.Faculty.ID] = true
			facultyIDs = append(facultyIDs, c.Faculty.ID)
		}
	}

	tr := occupancy.New(roomIDs, facultyIDs, instance.FacultyWindows)
	for _, c := range instance.Courses {
		tr.RegisterSubjectType(c.Subject.ID, c.Subject.Type)
	}

	diag := &schederr.Diagnostics{
		LabRooms:    len(labRooms),
		TheoryRooms: len(theoryRooms),
	}

	if err := ctx.Err(); err != nil {
		return nil, schederr.Cancelled()
	}

	labSlots, labMissing, labReasons := ScheduleLabs(ctx, client, tr, labRooms, labs, instance.FacultyWindows, cfg.Generator, log)
	diag.LabBlocksNeeded = len(labs)
	diag.LabBlocksAvailable = len(labs) - len(labMissing)
	if len(labs) > 0 {
		diag.LabUtilization = 100 * float64(diag.LabBlocksAvailable) / float64(len(labs))
	}
	if len(labMissing) > 0 {
		diag.LabFailures = labReasons
		return nil, schederr.LabInfeasible(labMissing[0].CourseID, labReasons[0]).WithDiagnostics(diag)
	}

	if err := ctx.Err(); err != nil {
		return nil, schederr.Cancelled()
	}

	theoryCourses := theory
	needed := 0
	for _, c := range theoryCourses {
		needed += c.PeriodsPerWeek
	}
	diag.TheoryPeriodsNeeded = needed

	var reducedCourses []schederr.ReducedCourse
	if Utilization(theoryCourses, len(theoryRooms)) > cfg.Generator.ReductionUtilizationCutoff {
		reducedList, reduced := ReduceOnePerSection(theoryCourses, instance.FacultyWindows)
		theoryCourses = reducedList
		reducedCourses = reduced
		diag.ReducedCourses = reduced
		for _, r := range reduced {
			diag.AddSuggestion("reduced course %s from %d to %d periods to relieve theory room saturation", r.CourseID, r.Original, r.New)
		}
	}

	theorySlots, bestStrategy, theoryMissing, cpsatReduced := ScheduleTheory(ctx, client, tr, theoryRooms, theoryCourses, instance.FacultyWindows, workload, cfg.Generator, log)
	diag.BestStrategy = bestStrategy
	if len(cpsatReduced) > 0 {
		reducedCourses = append(reducedCourses, cpsatReduced...)
		diag.ReducedCourses = append(diag.ReducedCourses, cpsatReduced...)
		for _, r := range cpsatReduced {
			diag.AddSuggestion("reduced course %s from %d to %d periods after CP-SAT reported infeasible", r.CourseID, r.Original, r.New)
		}
	}
	placedPeriods := 0
	for _, s := range theorySlots {
		placedPeriods += s.Length()
	}
	diag.TheoryPeriodsAvailable = placedPeriods
	if needed > 0 {
		diag.TheoryUtilization = 100 * float64(placedPeriods) / float64(needed)
	}

	if len(theoryMissing) > 0 {
		diag.TheoryFailures = theoryMissing
		for _, m := range theoryMissing {
			diag.AddSuggestion("course %s scheduled %d of %d required periods", m.CourseID, m.Scheduled, m.Expected)
		}
		return nil, schederr.CoverageShortfall(theoryMissing).WithDiagnostics(diag)
	}

	schedule := append(append([]domain.ScheduledSlot(nil), labSlots...), theorySlots...)

	conflicts := occupancy.ValidateWhole(schedule)
	if len(conflicts) > 0 {
		log.Error("post-hoc validation found conflicts", zap.Int("count", len(conflicts)))
		return nil, schederr.OverlapDetected(toSchedErrConflicts(conflicts)).WithDiagnostics(diag)
	}

	return &Result{
		RunID:          runID,
		Schedule:       schedule,
		ReducedCourses: reducedCourses,
		Diagnostics:    diag,
		BaseTimeMs:     time.Since(start).Milliseconds(),
	}, nil
}

func toSchedErrConflicts(cs []occupancy.Conflict) []schederr.Conflict {
	out := make([]schederr.Conflict, 0, len(cs))
	for _, c := range cs {
		out = append(out, schederr.Conflict{Reason: c.Reason})
	}
	return out
}
