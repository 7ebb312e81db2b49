package occupancy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetable-UDP/internal/domain"
)

func newTestTracker() *Tracker {
	return New(
		[]string{"room-1", "room-2"},
		[]string{"fac-1", "fac-2"},
		map[string][]domain.AvailabilityWindow{
			"fac-2": {{FacultyID: "fac-2", Day: 0, StartPeriod: 1, EndPeriod: 4}},
		},
	)
}

func TestTryCommitSucceedsThenRejectsOverlap(t *testing.T) {
	tr := newTestTracker()
	slot := domain.ScheduledSlot{
		SectionID: "sec-1", SubjectID: "sub-1", FacultyID: "fac-1", RoomID: "room-1",
		Day: 0, StartPeriod: 1, EndPeriod: 1,
	}
	res := tr.TryCommit(slot)
	require.True(t, res.Committed)

	again := tr.TryCommit(slot)
	assert.False(t, again.Committed)
	assert.Equal(t, ReasonFacultyBusy, again.Reason)
}

func TestTryCommitRejectsOutsideAvailabilityWindow(t *testing.T) {
	tr := newTestTracker()
	slot := domain.ScheduledSlot{
		SectionID: "sec-1", SubjectID: "sub-1", FacultyID: "fac-2", RoomID: "room-1",
		Day: 0, StartPeriod: 6, EndPeriod: 6,
	}
	res := tr.TryCommit(slot)
	assert.False(t, res.Committed)
	assert.Equal(t, ReasonFacultyUnavailable, res.Reason)
}

func TestTryCommitFailureLeavesStateUnchanged(t *testing.T) {
	tr := newTestTracker()
	ok := domain.ScheduledSlot{SectionID: "sec-1", SubjectID: "sub-1", FacultyID: "fac-1", RoomID: "room-1", Day: 0, StartPeriod: 1, EndPeriod: 1}
	require.True(t, tr.TryCommit(ok).Committed)

	before := tr.FacultyFreeOn("fac-1", 0)
	bad := domain.ScheduledSlot{SectionID: "sec-2", SubjectID: "sub-1", FacultyID: "fac-1", RoomID: "room-2", Day: 0, StartPeriod: 1, EndPeriod: 1}
	res := tr.TryCommit(bad)
	assert.False(t, res.Committed)
	assert.Equal(t, before, tr.FacultyFreeOn("fac-1", 0))
	assert.Len(t, tr.CommittedSlots(), 1)
}

func TestSnapshotRestoreRoundTrips(t *testing.T) {
	tr := newTestTracker()
	slot := domain.ScheduledSlot{SectionID: "sec-1", SubjectID: "sub-1", FacultyID: "fac-1", RoomID: "room-1", Day: 0, StartPeriod: 1, EndPeriod: 1}
	snap := tr.Snapshot()

	require.True(t, tr.TryCommit(slot).Committed)
	assert.Equal(t, domain.PeriodsPerDay-1, tr.FacultyFreeOn("fac-1", 0))

	tr.Restore(snap)
	assert.Equal(t, domain.PeriodsPerDay, tr.FacultyFreeOn("fac-1", 0))
	assert.Len(t, tr.CommittedSlots(), 0)

	// Original mutation after restore must work as if the commit never
	// happened — restore isn't a one-shot undo.
	require.True(t, tr.TryCommit(slot).Committed)
}

func TestFacultyTheoryLoadOnExcludesLabs(t *testing.T) {
	tr := newTestTracker()
	tr.RegisterSubjectType("sub-theory", domain.SubjectTheory)
	tr.RegisterSubjectType("sub-lab", domain.SubjectLab)

	theory := domain.ScheduledSlot{SectionID: "sec-1", SubjectID: "sub-theory", FacultyID: "fac-1", RoomID: "room-1", Day: 0, StartPeriod: 1, EndPeriod: 1}
	lab := domain.ScheduledSlot{SectionID: "sec-1", SubjectID: "sub-lab", FacultyID: "fac-1", RoomID: "room-2", Day: 0, StartPeriod: 2, EndPeriod: 4}

	require.True(t, tr.TryCommit(theory).Committed)
	require.True(t, tr.TryCommit(lab).Committed)

	assert.Equal(t, 1, tr.FacultyTheoryLoadOn("fac-1", 0))
	assert.Equal(t, 4, tr.SectionLoadOn("sec-1", 0))
}

func TestValidateWholeFindsOverlaps(t *testing.T) {
	schedule := []domain.ScheduledSlot{
		{SectionID: "sec-1", FacultyID: "fac-1", RoomID: "room-1", Day: 0, StartPeriod: 1, EndPeriod: 2},
		{SectionID: "sec-2", FacultyID: "fac-1", RoomID: "room-2", Day: 0, StartPeriod: 2, EndPeriod: 3},
	}
	conflicts := ValidateWhole(schedule)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "faculty double-booked", conflicts[0].Reason)
}

func TestValidateWholeCleanScheduleHasNoConflicts(t *testing.T) {
	schedule := []domain.ScheduledSlot{
		{SectionID: "sec-1", FacultyID: "fac-1", RoomID: "room-1", Day: 0, StartPeriod: 1, EndPeriod: 2},
		{SectionID: "sec-2", FacultyID: "fac-2", RoomID: "room-2", Day: 0, StartPeriod: 1, EndPeriod: 2},
	}
	assert.Empty(t, ValidateWhole(schedule))
}
