// Package schederr defines the typed failure kinds from spec §7, modeled
// on noah-isme-sma-adp-api/pkg/errors: a single Error type carrying a
// machine-readable Kind plus a human message and an optional wrapped
// cause, with package-level constructors instead of scattering
// fmt.Errorf calls through the generator and GA.
package schederr

import (
	"fmt"
)

// Kind is the machine-readable error classification from spec §7.
type Kind string

const (
	KindSolverUnavailable Kind = "SOLVER_UNAVAILABLE"
	KindSolverInfeasible  Kind = "SOLVER_INFEASIBLE"
	KindLabInfeasible     Kind = "LAB_INFEASIBLE"
	KindCoverageShortfall Kind = "COVERAGE_SHORTFALL"
	KindOverlapDetected   Kind = "OVERLAP_DETECTED"
	KindCancelled         Kind = "CANCELLED"
)

// Recoverable reports whether the generator should fall back locally
// instead of aborting the run. SolverUnavailable and SolverInfeasible are
// caught at phase boundaries (§4.4); the rest are fatal.
func (k Kind) Recoverable() bool {
	return k == KindSolverUnavailable || k == KindSolverInfeasible
}

// Error is the single typed failure value spec §7 asks for: a kind, a
// message, an optional diagnostics block, and an optional wrapped cause.
type Error struct {
	Kind        Kind
	Message     string
	Diagnostics *Diagnostics
	Err         error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New builds a bare typed error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a kind and message to an existing cause.
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithDiagnostics attaches a diagnostics block to an error, returning the
// same error for chaining at the call site.
func (e *Error) WithDiagnostics(d *Diagnostics) *Error {
	e.Diagnostics = d
	return e
}

// SolverUnavailable is raised by the CP-SAT client on transport errors,
// timeouts with no partial results, or non-2xx responses.
func SolverUnavailable(cause error) *Error {
	return Wrap(cause, KindSolverUnavailable, "CP-SAT solver unavailable")
}

// SolverInfeasible is raised when CP-SAT reports INFEASIBLE.
func SolverInfeasible(diagnostic string) *Error {
	return New(KindSolverInfeasible, "CP-SAT reported infeasible: "+diagnostic)
}

// LabInfeasible is fatal: no valid (day, block, room) exists for a lab
// after the greedy fallback has also failed.
func LabInfeasible(courseID string, reasons LabInfeasibleReasons) *Error {
	return New(KindLabInfeasible, fmt.Sprintf("lab course %s cannot be placed: %s", courseID, reasons.String()))
}

// CoverageShortfall is fatal: some course instance ended with fewer
// scheduled periods than required (I10) after every fallback ran.
func CoverageShortfall(missing []MissingCoverage) *Error {
	return &Error{
		Kind:    KindCoverageShortfall,
		Message: fmt.Sprintf("%d course instance(s) did not reach required coverage", len(missing)),
	}
}

// OverlapDetected is fatal and indicates an implementation bug: the
// post-hoc validator (C2.validate_whole) found a conflict in a schedule
// the generator believed was feasible.
func OverlapDetected(conflicts []Conflict) *Error {
	return &Error{
		Kind:    KindOverlapDetected,
		Message: fmt.Sprintf("%d conflict(s) found during post-hoc validation", len(conflicts)),
	}
}

// Cancelled is raised when cooperative cancellation fires with no
// feasible schedule yet produced.
func Cancelled() *Error {
	return New(KindCancelled, "generation cancelled before a feasible schedule was produced")
}

// LabInfeasibleReasons is the diagnostic trio spec §4.4 asks for when a
// lab cannot be placed.
type LabInfeasibleReasons struct {
	SuitableRoomCount      int
	AvailabilityWindowCount int
	AdmissibleBlockCount   int
}

func (r LabInfeasibleReasons) String() string {
	return fmt.Sprintf("%d suitable room(s), %d availability window(s), %d admissible block(s)",
		r.SuitableRoomCount, r.AvailabilityWindowCount, r.AdmissibleBlockCount)
}

// MissingCoverage describes one course instance that fell short of I10.
type MissingCoverage struct {
	CourseID  string
	Expected  int
	Scheduled int
}

// Conflict describes one pairwise violation found by validate_whole.
type Conflict struct {
	Reason string
	SlotA  string
	SlotB  string
}
