package generator

import (
	"context"

	"go.uber.org/zap"

	"timetable-UDP/internal/config"
	"timetable-UDP/internal/cpsat"
	"timetable-UDP/internal/domain"
	"timetable-UDP/internal/occupancy"
	"timetable-UDP/internal/schederr"
)

// LabResult is what Phase 1 hands to the orchestrator.
type LabResult struct {
	Scheduled []domain.CourseInstance
	Failures  []schederr.LabInfeasibleReasons
}

// ScheduleLabs runs Phase 1: call the CP-SAT lab endpoint, re-validate
// every returned assignment against the tracker (solver output is
// untrusted input per spec §4.3), and fall back to deterministic greedy
// placement for anything the solver couldn't place or wasn't reachable for.
// The returned []schederr.LabInfeasibleReasons is index-aligned with the
// returned []schederr.MissingCoverage, carrying the real room/window/block
// counts behind each failure instead of a bare course ID (spec §4.4's
// LabInfeasible diagnostic contract).
func ScheduleLabs(ctx context.Context, client *cpsat.Client, tr *occupancy.Tracker, labRooms []domain.Room, labs []domain.CourseInstance, facultyWindows map[string][]domain.AvailabilityWindow, cfg config.GeneratorConfig, log *zap.Logger) ([]domain.ScheduledSlot, []schederr.MissingCoverage, []schederr.LabInfeasibleReasons) {
	ordered := PrioritizeLabs(labs, func(facultyID string) int { return len(facultyWindows[facultyID]) })

	var placed []domain.ScheduledSlot
	remaining := ordered

	if client != nil {
		req := buildLabRequest(ordered, labRooms, facultyWindows, cfg.LabBlock)
		resp, err := client.SolveLab(ctx, req)
		if err != nil {
			log.Warn("cpsat lab solve failed, falling back to greedy", zap.Error(err))
		} else {
			placed, remaining = applyLabResponse(tr, ordered, resp)
		}
	}

	greedyPlaced, missing, reasons := greedyPlaceLabs(tr, remaining, labRooms, facultyWindows, cfg.LabBlock, log)
	placed = append(placed, greedyPlaced...)

	return placed, missing, reasons
}

func buildLabRequest(labs []domain.CourseInstance, rooms []domain.Room, windows map[string][]domain.AvailabilityWindow, block domain.LabBlock) cpsat.LabRequest {
	req := cpsat.LabRequest{
		Rules: cpsat.LabRules{LabPeriods: int(block), DaysPerWeek: domain.DaysPerWeek, PeriodsPerDay: domain.PeriodsPerDay},
	}
	for _, c := range labs {
		req.Courses = append(req.Courses, cpsat.LabCourse{
			SectionID: c.Section.ID, SectionName: c.Section.Name,
			SubjectID: c.Subject.ID, SubjectCode: c.Subject.Code,
			FacultyID: c.Faculty.ID, FacultyCode: c.Faculty.Code,
			StudentCount: c.Section.StudentCount, YearLevel: c.Section.YearLevel,
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
	return req
}

// applyLabResponse matches each returned assignment back to its course
// instance by (sectionID, subjectID) — C4 never trusts positional order
// from the solver — and re-validates through the tracker before accepting.
func applyLabResponse(tr *occupancy.Tracker, labs []domain.CourseInstance, resp *cpsat.LabResponse) ([]domain.ScheduledSlot, []domain.CourseInstance) {
	byKey := make(map[string]domain.CourseInstance, len(labs))
	for _, c := range labs {
		byKey[c.Section.ID+"|"+c.Subject.ID] = c
	}

	var placed []domain.ScheduledSlot
	handled := map[string]bool{}

	for _, a := range resp.Assignments {
		key := a.SectionID + "|" + a.SubjectID
		course, ok := byKey[key]
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
			handled[key] = true
		}
	}

	var remaining []domain.CourseInstance
	for _, course := range labs {
		if !handled[course.Section.ID+"|"+course.Subject.ID] {
			remaining = append(remaining, course)
		}
	}
	return placed, remaining
}

// greedyPlaceLabs implements the Phase 1 fallback pseudocode verbatim
// (spec §4.4): for each course, walk days, candidate blocks, then rooms
// filtered to capacity fit, committing the first that succeeds.
func greedyPlaceLabs(tr *occupancy.Tracker, labs []domain.CourseInstance, rooms []domain.Room, windows map[string][]domain.AvailabilityWindow, block domain.LabBlock, log *zap.Logger) ([]domain.ScheduledSlot, []schederr.MissingCoverage, []schederr.LabInfeasibleReasons) {
	var placed []domain.ScheduledSlot
	var missing []schederr.MissingCoverage
	var reasonsOut []schederr.LabInfeasibleReasons

	for _, course := range labs {
		suitable := suitableLabRooms(rooms, course.Section)
		committed := false

		for day := 0; day < domain.DaysPerWeek && !committed; day++ {
			for _, b := range domain.LabBlocks(day, course.Section.YearLevel, block) {
				if committed {
					break
				}
				if !blockWithinWindows(windows[course.Faculty.ID], day, b[0], b[1]) {
					continue
				}
				for _, room := range suitable {
					slot := domain.ScheduledSlot{
						SectionID: course.Section.ID, SubjectID: course.Subject.ID,
						FacultyID: course.Faculty.ID, RoomID: room.ID,
						Day: day, StartPeriod: b[0], EndPeriod: b[1],
					}
					if tr.TryCommit(slot).Committed {
						placed = append(placed, slot)
						committed = true
						break
					}
				}
			}
		}

		if !committed {
			reasons := schederr.LabInfeasibleReasons{
				SuitableRoomCount:       len(suitable),
				AvailabilityWindowCount: len(windows[course.Faculty.ID]),
				AdmissibleBlockCount:    admissibleBlockCount(windows[course.Faculty.ID], course.Section.YearLevel, block),
			}
			log.Warn("lab course could not be placed", zap.String("course_id", course.ID), zap.String("reasons", reasons.String()))
			missing = append(missing, schederr.MissingCoverage{CourseID: course.ID, Expected: course.PeriodsPerWeek, Scheduled: 0})
			reasonsOut = append(reasonsOut, reasons)
		}
	}

	return placed, missing, reasonsOut
}

func suitableLabRooms(rooms []domain.Room, section domain.Section) []domain.Room {
	var out []domain.Room
	for _, r := range rooms {
		if r.Type == domain.RoomLab && domain.FitsCapacity(r, section, true) {
			out = append(out, r)
		}
	}
	return out
}

func blockWithinWindows(windows []domain.AvailabilityWindow, day, start, end int) bool {
	for p := start; p <= end; p++ {
		if !domain.WindowCovers(windows, day, p) {
			return false
		}
	}
	return true
}

func admissibleBlockCount(windows []domain.AvailabilityWindow, yearLevel int, block domain.LabBlock) int {
	count := 0
	for day := 0; day < domain.DaysPerWeek; day++ {
		for _, b := range domain.LabBlocks(day, yearLevel, block) {
			if blockWithinWindows(windows, day, b[0], b[1]) {
				count++
			}
		}
	}
	return count
}
