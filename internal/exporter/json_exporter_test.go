package exporter

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetable-UDP/internal/domain"
)

func sampleSchedule() []domain.ScheduledSlot {
	return []domain.ScheduledSlot{
		{SectionID: "sec-1", SubjectID: "theory-1", FacultyID: "fac-1", RoomID: "room-1", Day: 0, StartPeriod: 1, EndPeriod: 2},
		{SectionID: "sec-1", SubjectID: "lab-1", FacultyID: "fac-2", RoomID: "lab-1", Day: 1, StartPeriod: 1, EndPeriod: 4},
		{SectionID: "sec-2", SubjectID: "theory-1", FacultyID: "fac-1", RoomID: "room-1", Day: 0, StartPeriod: 3, EndPeriod: 4},
	}
}

func TestBuildSummaryCountsDistinctResources(t *testing.T) {
	export := Build(sampleSchedule())
	assert.Equal(t, 3, export.Summary.TotalSlots)
	assert.Equal(t, 2, export.Summary.TotalSections)
	assert.Equal(t, 2, export.Summary.TotalFaculty)
	assert.Equal(t, 2, export.Summary.TotalRooms)
}

func TestBuildGroupsSlotsByDayAndPeriod(t *testing.T) {
	export := Build(sampleSchedule())
	require.Len(t, export.Days, domain.DaysPerWeek)

	monday := export.Days[0]
	require.Len(t, monday.Blocks, domain.PeriodsPerDay)
	assert.Len(t, monday.Blocks[0].Slots, 1) // period 1 -> sec-1 theory
	assert.Len(t, monday.Blocks[2].Slots, 1) // period 3 -> sec-2 theory

	tuesday := export.Days[1]
	assert.Len(t, tuesday.Blocks[0].Slots, 1) // period 1 -> sec-1 lab
}

func TestBuildSlotListIsSortedBySectionThenDayThenPeriod(t *testing.T) {
	export := Build(sampleSchedule())
	require.Len(t, export.Slots, 3)
	assert.Equal(t, "sec-1", export.Slots[0].SectionID)
	assert.Equal(t, "sec-1", export.Slots[1].SectionID)
	assert.Equal(t, "sec-2", export.Slots[2].SectionID)
	assert.Less(t, export.Slots[0].Day, export.Slots[1].Day)
}

func TestExportToJSONWritesValidDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.json")
	require.NoError(t, ExportToJSON(sampleSchedule(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var roundTrip ScheduleExport
	require.NoError(t, json.Unmarshal(data, &roundTrip))
	assert.Equal(t, 3, roundTrip.Summary.TotalSlots)
}

func TestBuildEmptyScheduleHasEmptyDaysGrid(t *testing.T) {
	export := Build(nil)
	assert.Equal(t, 0, export.Summary.TotalSlots)
	require.Len(t, export.Days, domain.DaysPerWeek)
	assert.Empty(t, export.Slots)
}
