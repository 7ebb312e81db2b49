package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"timetable-UDP/internal/domain"
)

func TestPrioritizeLabsOrdersBySectionDensityThenYear(t *testing.T) {
	labs := []domain.CourseInstance{
		{ID: "c1", Section: domain.Section{ID: "sec-2", YearLevel: 2}, Faculty: domain.Faculty{ID: "f1"}},
		{ID: "c2", Section: domain.Section{ID: "sec-1", YearLevel: 1}, Faculty: domain.Faculty{ID: "f2"}},
		{ID: "c3", Section: domain.Section{ID: "sec-1", YearLevel: 1}, Faculty: domain.Faculty{ID: "f2"}},
	}
	ordered := PrioritizeLabs(labs, func(string) int { return 0 })
	assert.Equal(t, "sec-1", ordered[0].Section.ID)
	assert.Equal(t, "sec-1", ordered[1].Section.ID)
	assert.Equal(t, "sec-2", ordered[2].Section.ID)
}

func TestDifficultyScoreFavorsYearOneAndHeavierLoad(t *testing.T) {
	yearOne := domain.CourseInstance{Section: domain.Section{YearLevel: 1, StudentCount: 30}, PeriodsPerWeek: 4}
	yearTwo := domain.CourseInstance{Section: domain.Section{YearLevel: 2, StudentCount: 30}, PeriodsPerWeek: 4}
	s1 := DifficultyScore(yearOne, 48, 48, 1, 0)
	s2 := DifficultyScore(yearTwo, 48, 48, 1, 0)
	assert.Greater(t, s1, s2)
}

func TestStrategiesReturnsFifteenInSpecOrder(t *testing.T) {
	strategies := Strategies(map[string]int{}, func(domain.CourseInstance) float64 { return 0 }, 1, 11)
	assert.Len(t, strategies, 15)
	assert.Equal(t, "section-first", strategies[0].Name)
	assert.False(t, strategies[0].Relaxed)
	assert.True(t, strategies[10].Relaxed)
}

func TestStrategiesRelaxedCutoffFollowsConfig(t *testing.T) {
	strategies := Strategies(map[string]int{}, func(domain.CourseInstance) float64 { return 0 }, 1, 6)
	assert.False(t, strategies[4].Relaxed)
	assert.True(t, strategies[5].Relaxed)
	assert.True(t, strategies[14].Relaxed)
}
