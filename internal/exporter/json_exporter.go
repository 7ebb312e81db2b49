// Package exporter renders a generated schedule to the JSON shape callers
// consume (the admin UI, PDF rendering — both out of scope here, spec §1).
// Structurally this keeps the teacher's ExportScheduleToJSON layout
// (summary + day-grouped blocks + flat activity list) but generalizes the
// day grid from 5 weekdays to the spec's 6-day, 8-period grid and drops
// the Chilean-university-specific fields (AY-on-Wednesday, mirror
// compliance) that had no equivalent in this domain.
package exporter

import (
	"encoding/json"
	"os"
	"sort"

	"timetable-UDP/internal/domain"
)

// ScheduleExport is the top-level JSON document.
type ScheduleExport struct {
	GeneratedAt string          `json:"generated_at"`
	Summary     ScheduleSummary `json:"summary"`
	Days        []DaySchedule   `json:"days"`
	Slots       []SlotExport    `json:"slots"`
}

// ScheduleSummary carries aggregate counts useful at a glance.
type ScheduleSummary struct {
	TotalSlots    int `json:"total_slots"`
	TotalSections int `json:"total_sections"`
	TotalFaculty  int `json:"total_faculty"`
	TotalRooms    int `json:"total_rooms"`
}

// DaySchedule groups every period-block of one weekday.
type DaySchedule struct {
	Day    int          `json:"day"`
	Blocks []PeriodSlot `json:"periods"`
}

// PeriodSlot is one period within a day, holding whatever slots start
// there.
type PeriodSlot struct {
	Period int          `json:"period"`
	Slots  []SlotExport `json:"slots"`
}

// SlotExport is one scheduled slot in wire form.
type SlotExport struct {
	SectionID   string `json:"section_id"`
	SubjectID   string `json:"subject_id"`
	FacultyID   string `json:"faculty_id"`
	RoomID      string `json:"room_id"`
	Day         int    `json:"day"`
	StartPeriod int    `json:"start_period"`
	EndPeriod   int    `json:"end_period"`
}

// ExportToJSON renders a schedule and writes it to filename as indented
// JSON, the way the teacher's ExportScheduleToJSON did for its own domain.
func ExportToJSON(schedule []domain.ScheduledSlot, filename string) error {
	data, err := json.MarshalIndent(Build(schedule), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0o644)
}

// Build assembles the export document in memory, without touching disk —
// split out so callers (tests, the debug CLI) can inspect it directly.
func Build(schedule []domain.ScheduledSlot) ScheduleExport {
	return ScheduleExport{
		Summary: summarize(schedule),
		Days:    buildDays(schedule),
		Slots:   buildSlotList(schedule),
	}
}

func summarize(schedule []domain.ScheduledSlot) ScheduleSummary {
	sections := make(map[string]bool)
	faculty := make(map[string]bool)
	rooms := make(map[string]bool)
	for _, s := range schedule {
		sections[s.SectionID] = true
		faculty[s.FacultyID] = true
		rooms[s.RoomID] = true
	}
	return ScheduleSummary{
		TotalSlots:    len(schedule),
		TotalSections: len(sections),
		TotalFaculty:  len(faculty),
		TotalRooms:    len(rooms),
	}
}

func buildDays(schedule []domain.ScheduledSlot) []DaySchedule {
	days := make([]DaySchedule, domain.DaysPerWeek)
	for d := range days {
		days[d] = DaySchedule{Day: d, Blocks: make([]PeriodSlot, domain.PeriodsPerDay)}
		for p := range days[d].Blocks {
			days[d].Blocks[p] = PeriodSlot{Period: p + 1}
		}
	}

	for _, s := range schedule {
		if !domain.ValidDay(s.Day) {
			continue
		}
		exp := toSlotExport(s)
		days[s.Day].Blocks[s.StartPeriod-1].Slots = append(days[s.Day].Blocks[s.StartPeriod-1].Slots, exp)
	}

	return days
}

func buildSlotList(schedule []domain.ScheduledSlot) []SlotExport {
	out := make([]SlotExport, 0, len(schedule))
	for _, s := range schedule {
		out = append(out, toSlotExport(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SectionID != out[j].SectionID {
			return out[i].SectionID < out[j].SectionID
		}
		if out[i].Day != out[j].Day {
			return out[i].Day < out[j].Day
		}
		return out[i].StartPeriod < out[j].StartPeriod
	})
	return out
}

func toSlotExport(s domain.ScheduledSlot) SlotExport {
	return SlotExport{
		SectionID: s.SectionID, SubjectID: s.SubjectID,
		FacultyID: s.FacultyID, RoomID: s.RoomID,
		Day: s.Day, StartPeriod: s.StartPeriod, EndPeriod: s.EndPeriod,
	}
}
