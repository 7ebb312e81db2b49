package schederr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecoverableKinds(t *testing.T) {
	assert.True(t, KindSolverUnavailable.Recoverable())
	assert.True(t, KindSolverInfeasible.Recoverable())
	assert.False(t, KindLabInfeasible.Recoverable())
	assert.False(t, KindCoverageShortfall.Recoverable())
	assert.False(t, KindOverlapDetected.Recoverable())
	assert.False(t, KindCancelled.Recoverable())
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := SolverUnavailable(cause)
	assert.Equal(t, KindSolverUnavailable, err.Kind)
	assert.ErrorIs(t, err, cause)
}

func TestDiagnosticsSuggestions(t *testing.T) {
	d := &Diagnostics{}
	d.SuggestRoomShortage(true, 10, 6)
	d.SuggestAvailabilityExtension("fac-1")
	d.SuggestLoadReduction("sec-1")
	assert.Len(t, d.Suggestions, 3)
	assert.Contains(t, d.FacultyWithLimitedAvailability, "fac-1")
}
