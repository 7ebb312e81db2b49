package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLunchSafe(t *testing.T) {
	assert.True(t, LunchSafe(1, 4))
	assert.True(t, LunchSafe(5, 8))
	assert.False(t, LunchSafe(3, 5))
	assert.False(t, LunchSafe(4, 6))
}

func TestLabBlocksSaturdayYearOne(t *testing.T) {
	blocks := LabBlocks(SaturdayDayIdx, 1, LabBlockFour)
	assert.Len(t, blocks, 2)
	assert.Contains(t, blocks, [2]int{5, 8})

	blocks = LabBlocks(SaturdayDayIdx, 2, LabBlockFour)
	assert.Len(t, blocks, 1)
	assert.Equal(t, [2]int{1, 4}, blocks[0])
}

func TestSaturdayAllowed(t *testing.T) {
	assert.True(t, SaturdayAllowed(SaturdayDayIdx, 5, SubjectLab, 1))
	assert.False(t, SaturdayAllowed(SaturdayDayIdx, 5, SubjectLab, 2))
	assert.False(t, SaturdayAllowed(SaturdayDayIdx, 5, SubjectTheory, 1))
	assert.True(t, SaturdayAllowed(SaturdayDayIdx, 3, SubjectTheory, 2))
}

func TestLabBlockValid(t *testing.T) {
	valid := ScheduledSlot{Day: 0, StartPeriod: 1, EndPeriod: 4}
	assert.True(t, LabBlockValid(valid, LabBlockFour))
	assert.False(t, LabBlockValid(valid, LabBlockThree))

	straddles := ScheduledSlot{Day: 0, StartPeriod: 3, EndPeriod: 6}
	assert.False(t, LabBlockValid(straddles, LabBlockFour))
}
