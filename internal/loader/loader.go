// Package loader reads a scheduling instance off disk, the way the
// teacher's internal/loader.loadJSON read its per-entity JSON files: a
// generic file-to-struct step followed by a Convert*ToModel step that
// builds the domain types the rest of the program consumes.
package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/multierr"

	"timetable-UDP/internal/domain"
	"timetable-UDP/internal/generator"
)

// JSONSection, JSONSubject, JSONFaculty, JSONRoom and JSONWindow mirror
// spec.md §6's instance document one field at a time — see JSONInstance.
type JSONSection struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	YearLevel    int    `json:"yearLevel"`
	StudentCount int    `json:"studentCount"`
}

type JSONSubject struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Type           string `json:"type"` // "lab" or "theory"
	PeriodsPerWeek int    `json:"periodsPerWeek"`
}

type JSONFaculty struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

type JSONRoom struct {
	ID       string `json:"id"`
	Capacity int    `json:"capacity"`
	Type     string `json:"type"` // "lab" or "theory"
}

type JSONWindow struct {
	FacultyID   string `json:"facultyId"`
	Day         int    `json:"day"`
	StartPeriod int    `json:"startPeriod"`
	EndPeriod   int    `json:"endPeriod"`
}

// JSONCourseInstance binds one section to one subject and the faculty
// teaching it.
type JSONCourseInstance struct {
	ID        string `json:"id"`
	SectionID string `json:"sectionId"`
	SubjectID string `json:"subjectId"`
	FacultyID string `json:"facultyId"`
}

// JSONInstance is the full scheduling instance document read from disk.
type JSONInstance struct {
	Sections       []JSONSection        `json:"sections"`
	Subjects       []JSONSubject        `json:"subjects"`
	Faculty        []JSONFaculty        `json:"faculty"`
	Rooms          []JSONRoom           `json:"rooms"`
	Windows        []JSONWindow         `json:"availabilityWindows"`
	CourseInstances []JSONCourseInstance `json:"courseInstances"`
}

func readJSON[T any](path string) (T, error) {
	var zero T
	data, err := os.ReadFile(path)
	if err != nil {
		return zero, fmt.Errorf("loader: reading %s: %w", path, err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, fmt.Errorf("loader: parsing %s: %w", path, err)
	}
	return out, nil
}

// LoadInstance reads a JSON instance document from path and builds a
// generator.Instance from it.
func LoadInstance(path string) (generator.Instance, error) {
	raw, err := readJSON[JSONInstance](path)
	if err != nil {
		return generator.Instance{}, err
	}
	return ConvertToInstance(raw)
}

// ConvertToInstance builds domain entities and a generator.Instance from
// the wire document, the way the teacher's ConvertJSONCourseToModel built
// models.Course/Section pairs from JSONCourse.
func ConvertToInstance(raw JSONInstance) (generator.Instance, error) {
	sections := make(map[string]domain.Section, len(raw.Sections))
	for _, s := range raw.Sections {
		sections[s.ID] = domain.Section{ID: s.ID, Name: s.Name, YearLevel: s.YearLevel, StudentCount: s.StudentCount}
	}

	var errs error

	subjects := make(map[string]domain.Subject, len(raw.Subjects))
	for _, s := range raw.Subjects {
		subjectType, err := parseSubjectType(s.Type)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("loader: subject %s: %w", s.ID, err))
			continue
		}
		subjects[s.ID] = domain.Subject{ID: s.ID, Code: s.Code, Type: subjectType, PeriodsPerWeek: s.PeriodsPerWeek}
	}

	faculty := make(map[string]domain.Faculty, len(raw.Faculty))
	for _, f := range raw.Faculty {
		faculty[f.ID] = domain.Faculty{ID: f.ID, Code: f.Code}
	}

	rooms := make([]domain.Room, 0, len(raw.Rooms))
	for _, r := range raw.Rooms {
		roomType, err := parseRoomType(r.Type)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("loader: room %s: %w", r.ID, err))
			continue
		}
		rooms = append(rooms, domain.Room{ID: r.ID, Capacity: r.Capacity, Type: roomType})
	}

	windows := make(map[string][]domain.AvailabilityWindow, len(raw.Faculty))
	for _, w := range raw.Windows {
		windows[w.FacultyID] = append(windows[w.FacultyID], domain.AvailabilityWindow{
			FacultyID: w.FacultyID, Day: w.Day, StartPeriod: w.StartPeriod, EndPeriod: w.EndPeriod,
		})
	}

	// Every broken reference is collected rather than failing fast on the
	// first one, so a caller sees the complete list of bad course
	// instances in one pass instead of fixing the document one error at a
	// time.
	courses := make([]domain.CourseInstance, 0, len(raw.CourseInstances))
	for _, c := range raw.CourseInstances {
		section, ok := sections[c.SectionID]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("loader: course instance %s references unknown section %s", c.ID, c.SectionID))
			continue
		}
		subject, ok := subjects[c.SubjectID]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("loader: course instance %s references unknown subject %s", c.ID, c.SubjectID))
			continue
		}
		fac, ok := faculty[c.FacultyID]
		if !ok {
			errs = multierr.Append(errs, fmt.Errorf("loader: course instance %s references unknown faculty %s", c.ID, c.FacultyID))
			continue
		}
		courses = append(courses, domain.CourseInstance{
			ID: c.ID, Section: section, Subject: subject, Faculty: fac,
			PeriodsPerWeek: subject.PeriodsPerWeek,
		})
	}

	if errs != nil {
		return generator.Instance{}, errs
	}
	return generator.Instance{Courses: courses, Rooms: rooms, FacultyWindows: windows}, nil
}

func parseSubjectType(s string) (domain.SubjectType, error) {
	switch s {
	case "lab":
		return domain.SubjectLab, nil
	case "theory":
		return domain.SubjectTheory, nil
	default:
		return "", fmt.Errorf("unknown subject type %q", s)
	}
}

func parseRoomType(s string) (domain.RoomType, error) {
	switch s {
	case "lab":
		return domain.RoomLab, nil
	case "theory":
		return domain.RoomTheory, nil
	default:
		return "", fmt.Errorf("unknown room type %q", s)
	}
}
