package loader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleInstance() JSONInstance {
	return JSONInstance{
		Sections: []JSONSection{{ID: "sec-1", Name: "CS-1A", YearLevel: 1, StudentCount: 40}},
		Subjects: []JSONSubject{
			{ID: "subj-theory", Code: "CS101", Type: "theory", PeriodsPerWeek: 4},
			{ID: "subj-lab", Code: "CS101L", Type: "lab", PeriodsPerWeek: 4},
		},
		Faculty: []JSONFaculty{{ID: "fac-1", Code: "T01"}},
		Rooms: []JSONRoom{
			{ID: "room-1", Capacity: 45, Type: "theory"},
			{ID: "lab-1", Capacity: 40, Type: "lab"},
		},
		Windows: []JSONWindow{{FacultyID: "fac-1", Day: 0, StartPeriod: 1, EndPeriod: 8}},
		CourseInstances: []JSONCourseInstance{
			{ID: "ci-1", SectionID: "sec-1", SubjectID: "subj-theory", FacultyID: "fac-1"},
			{ID: "ci-2", SectionID: "sec-1", SubjectID: "subj-lab", FacultyID: "fac-1"},
		},
	}
}

func TestConvertToInstanceBuildsCourseInstances(t *testing.T) {
	instance, err := ConvertToInstance(sampleInstance())
	require.NoError(t, err)
	require.Len(t, instance.Courses, 2)
	require.Len(t, instance.Rooms, 2)

	assert.Equal(t, "sec-1", instance.Courses[0].Section.ID)
	assert.Equal(t, "fac-1", instance.Courses[0].Faculty.ID)
	assert.True(t, instance.Courses[1].IsLab())

	require.Len(t, instance.FacultyWindows["fac-1"], 1)
}

func TestConvertToInstanceRejectsUnknownSection(t *testing.T) {
	raw := sampleInstance()
	raw.CourseInstances[0].SectionID = "missing"
	_, err := ConvertToInstance(raw)
	assert.Error(t, err)
}

func TestConvertToInstanceRejectsUnknownRoomType(t *testing.T) {
	raw := sampleInstance()
	raw.Rooms[0].Type = "auditorium"
	_, err := ConvertToInstance(raw)
	assert.Error(t, err)
}
