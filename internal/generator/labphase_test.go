package generator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetable-UDP/internal/config"
	"timetable-UDP/internal/domain"
	"timetable-UDP/internal/occupancy"
)

func TestScheduleLabsGreedyFallbackWithNoClient(t *testing.T) {
	labs := []domain.CourseInstance{{
		ID:             "c1",
		Section:        domain.Section{ID: "sec-1", YearLevel: 2, StudentCount: 20},
		Subject:        domain.Subject{ID: "sub-1", Type: domain.SubjectLab},
		Faculty:        domain.Faculty{ID: "fac-1"},
		PeriodsPerWeek: 4,
	}}
	rooms := []domain.Room{{ID: "lab-1", Capacity: 30, Type: domain.RoomLab}}
	windows := map[string][]domain.AvailabilityWindow{
		"fac-1": {{FacultyID: "fac-1", Day: 2, StartPeriod: 1, EndPeriod: 8}},
	}
	tr := occupancy.New([]string{"lab-1"}, []string{"fac-1"}, windows)

	cfg := config.GeneratorConfig{LabBlock: domain.LabBlockFour}
	placed, missing, reasons := ScheduleLabs(context.Background(), nil, tr, rooms, labs, windows, cfg, testLogger())
	require.Empty(t, missing)
	require.Empty(t, reasons)
	require.Len(t, placed, 1)
	assert.Equal(t, 2, placed[0].Day)
}

func TestScheduleLabsReportsMissingWhenNoRoomFits(t *testing.T) {
	labs := []domain.CourseInstance{{
		ID:             "c1",
		Section:        domain.Section{ID: "sec-1", YearLevel: 2, StudentCount: 100},
		Subject:        domain.Subject{ID: "sub-1", Type: domain.SubjectLab},
		Faculty:        domain.Faculty{ID: "fac-1"},
		PeriodsPerWeek: 4,
	}}
	rooms := []domain.Room{{ID: "lab-1", Capacity: 10, Type: domain.RoomLab}}
	windows := map[string][]domain.AvailabilityWindow{}
	tr := occupancy.New([]string{"lab-1"}, []string{"fac-1"}, windows)

	cfg := config.GeneratorConfig{LabBlock: domain.LabBlockFour}
	_, missing, reasons := ScheduleLabs(context.Background(), nil, tr, rooms, labs, windows, cfg, testLogger())
	require.Len(t, missing, 1)
	assert.Equal(t, "c1", missing[0].CourseID)

	require.Len(t, reasons, 1)
	assert.Equal(t, 0, reasons[0].SuitableRoomCount)
	assert.Equal(t, 0, reasons[0].AvailabilityWindowCount)
	assert.Positive(t, reasons[0].AdmissibleBlockCount)
}
