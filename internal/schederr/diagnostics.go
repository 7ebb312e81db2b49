package schederr

import "fmt"

// Diagnostics is the structured failure/degraded-success report from
// spec §6. Utilization fields are percentages (0-100).
type Diagnostics struct {
	LabRooms                     int
	TheoryRooms                  int
	LabBlocksNeeded              int
	LabBlocksAvailable           int
	LabUtilization               float64
	TheoryPeriodsNeeded          int
	TheoryPeriodsAvailable       int
	TheoryUtilization            float64
	LabFailures                  []LabInfeasibleReasons
	TheoryFailures               []MissingCoverage
	FacultyWithLimitedAvailability []string
	ReducedCourses                []ReducedCourse
	BestStrategy                  string
	Suggestions                   []string
}

// ReducedCourse records one application of the period-reduction fallback
// (§4.5): {course_id, original, new}.
type ReducedCourse struct {
	CourseID string
	Original int
	New      int
}

// AddSuggestion appends a ranked remediation suggestion, following the
// teacher's PrintSectionBalanceReport habit of turning a validator finding
// into actionable prose instead of a bare number.
func (d *Diagnostics) AddSuggestion(format string, args ...any) {
	d.Suggestions = append(d.Suggestions, fmt.Sprintf(format, args...))
}

// SuggestRoomShortage records a lab/theory room-capacity shortage and adds
// a concrete remediation suggestion.
func (d *Diagnostics) SuggestRoomShortage(isLab bool, needed, available int) {
	kind := "theory"
	if isLab {
		kind = "lab"
	}
	gap := needed - available
	if gap <= 0 {
		return
	}
	d.AddSuggestion("add %d more %s room(s), or extend existing %s room capacity", gap, kind, kind)
}

// SuggestAvailabilityExtension records a faculty whose declared windows
// are too narrow to admit the blocks their courses need.
func (d *Diagnostics) SuggestAvailabilityExtension(facultyID string) {
	d.FacultyWithLimitedAvailability = append(d.FacultyWithLimitedAvailability, facultyID)
	d.AddSuggestion("extend availability windows for faculty %s", facultyID)
}

// SuggestLoadReduction records a section whose weekly load should shrink.
func (d *Diagnostics) SuggestLoadReduction(sectionID string) {
	d.AddSuggestion("reduce weekly period load for section %s", sectionID)
}
