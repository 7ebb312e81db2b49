package cpsat

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timetable-UDP/internal/config"
	"timetable-UDP/internal/logging"
)

func testConfig(baseURL string) config.CPSATConfig {
	return config.CPSATConfig{
		BaseURL:        baseURL,
		LabDeadline:    time.Second,
		TheoryDeadline: time.Second,
		RetryAttempts:  2,
		RetryDelay:     time.Millisecond,
		CacheTTL:       time.Minute,
		RateLimitRPS:   100,
	}
}

func sampleLabRequest() LabRequest {
	return LabRequest{
		Courses: []LabCourse{{SectionID: "sec-1", SubjectID: "sub-1", FacultyID: "fac-1", StudentCount: 40, YearLevel: 2}},
		Rooms:   []RoomRef{{ID: "lab-1", Capacity: 50}},
		Rules:   LabRules{LabPeriods: 4, DaysPerWeek: 6, PeriodsPerDay: 8},
	}
}

func TestSolveLabReturnsAssignmentsOnOptimal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(LabResponse{
			Success: true, Status: StatusOptimal,
			Assignments: []Assignment{{SectionID: "sec-1", SubjectID: "sub-1", Day: 0, StartPeriod: 1, EndPeriod: 4, RoomID: "lab-1"}},
		})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), logging.Nop())
	resp, err := c.SolveLab(t.Context(), sampleLabRequest())
	require.NoError(t, err)
	assert.Equal(t, StatusOptimal, resp.Status)
	assert.Len(t, resp.Assignments, 1)
}

func TestSolveLabInfeasibleReturnsTypedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(LabResponse{Status: StatusInfeasible, Message: "no room fits"})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), logging.Nop())
	_, err := c.SolveLab(t.Context(), sampleLabRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOLVER_INFEASIBLE")
}

func TestSolveLabTimeoutWithNoPartialsIsSolverUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(LabResponse{Status: StatusTimeout})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), logging.Nop())
	_, err := c.SolveLab(t.Context(), sampleLabRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SOLVER_UNAVAILABLE")
}

func TestSolveLabTimeoutWithPartialsIsTreatedAsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(LabResponse{
			Status:      StatusTimeout,
			Assignments: []Assignment{{SectionID: "sec-1", SubjectID: "sub-1", Day: 1, StartPeriod: 1, EndPeriod: 4, RoomID: "lab-2"}},
		})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), logging.Nop())
	resp, err := c.SolveLab(t.Context(), sampleLabRequest())
	require.NoError(t, err)
	assert.Len(t, resp.Assignments, 1)
}

func TestSolveLabRetriesOn5xxThenSucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(LabResponse{Status: StatusOptimal})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), logging.Nop())
	_, err := c.SolveLab(t.Context(), sampleLabRequest())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, attempts, 2)
}

func TestSolveLabCachesIdenticalRequests(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(LabResponse{Status: StatusOptimal})
	}))
	defer srv.Close()

	c := New(testConfig(srv.URL), logging.Nop())
	req := sampleLabRequest()
	_, err := c.SolveLab(t.Context(), req)
	require.NoError(t, err)
	_, err = c.SolveLab(t.Context(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}
