// Package cpsat is the client contract for the out-of-process constraint
// solver (C3): request/response shapes, transport, retry, caching, and
// rate limiting. Modeled on the batching/caching style of
// aws-karpenter-provider-aws/pkg/batcher and pkg/cache — a hashed request
// key, a TTL cache in front of the network call, and typed failures
// instead of bare errors bubbling out of an http.Client.
package cpsat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go"
	"github.com/mitchellh/hashstructure/v2"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"timetable-UDP/internal/config"
	"timetable-UDP/internal/schederr"
)

// Status is the solver's verdict for one request.
type Status string

const (
	StatusOptimal    Status = "OPTIMAL"
	StatusFeasible   Status = "FEASIBLE"
	StatusInfeasible Status = "INFEASIBLE"
	StatusTimeout    Status = "TIMEOUT"
)

// LabCourse is one lab course instance in a lab request, per spec §6's
// `courses[]` entry shape.
type LabCourse struct {
	SectionID    string `json:"sectionId"`
	SectionName  string `json:"sectionName"`
	SubjectID    string `json:"subjectId"`
	SubjectCode  string `json:"subjectCode"`
	FacultyID    string `json:"facultyId"`
	FacultyCode  string `json:"facultyCode"`
	StudentCount int    `json:"studentCount"`
	YearLevel    int    `json:"yearLevel"`
}

// RoomRef is a room as the solver sees it: identity and capacity only.
type RoomRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// FacultySlot is one availability window in the wire format.
type FacultySlot struct {
	DayOfWeek   int `json:"dayOfWeek"`
	StartPeriod int `json:"startPeriod"`
	EndPeriod   int `json:"endPeriod"`
}

// FacultyAvailability groups one faculty's declared windows.
type FacultyAvailability struct {
	FacultyID string        `json:"facultyId"`
	Slots     []FacultySlot `json:"slots"`
}

// LabRules carries the grid shape and the block size this build fixed
// (spec §9's LAB_BLOCK open question — the client always supplies the
// value its own config.GeneratorConfig.LabBlock resolved to).
type LabRules struct {
	LabPeriods    int `json:"labPeriods"`
	DaysPerWeek   int `json:"daysPerWeek"`
	PeriodsPerDay int `json:"periodsPerDay"`
}

// LabRequest is the full lab sub-problem sent to the solver's lab
// endpoint, matching spec §6's request shape.
type LabRequest struct {
	Courses             []LabCourse           `json:"courses"`
	Rooms               []RoomRef             `json:"rooms"`
	FacultyAvailability []FacultyAvailability `json:"facultyAvailability"`
	Rules               LabRules              `json:"rules"`
}

// Assignment is one solved placement, shared by lab and theory responses.
type Assignment struct {
	SectionID   string `json:"sectionId"`
	SubjectID   string `json:"subjectId"`
	Day         int    `json:"day"`
	StartPeriod int    `json:"startPeriod"`
	EndPeriod   int    `json:"endPeriod"`
	RoomID      string `json:"roomId"`
}

// LabResponse is the solver's answer to a LabRequest.
type LabResponse struct {
	Success     bool         `json:"success"`
	Status      Status       `json:"status"`
	Message     string       `json:"message"`
	Assignments []Assignment `json:"assignments,omitempty"`
	SolveTimeMs int64        `json:"solveTimeMs"`
}

// ExistingAssignment is one already-committed lab slot, carried into the
// theory request so the solver honors prior occupancy.
type ExistingAssignment struct {
	SectionID   string `json:"sectionId"`
	Day         int    `json:"day"`
	StartPeriod int    `json:"startPeriod"`
	EndPeriod   int    `json:"endPeriod"`
	FacultyID   string `json:"facultyId"`
	RoomID      string `json:"roomId"`
}

// TheoryCourse is one theory course instance still needing periods placed.
type TheoryCourse struct {
	LabCourse
	PeriodsPerWeek int `json:"periodsPerWeek"`
}

// TheoryRules extends LabRules with the theory-specific block limits.
type TheoryRules struct {
	LabRules
	MaxPeriodsPerBlock int `json:"maxPeriodsPerBlock"`
	MaxPeriodsPerDay   int `json:"maxPeriodsPerDay"`
}

// TheoryRequest is the full theory sub-problem, matching spec §6.
type TheoryRequest struct {
	Courses             []TheoryCourse        `json:"courses"`
	Rooms               []RoomRef             `json:"rooms"`
	FacultyAvailability []FacultyAvailability `json:"facultyAvailability"`
	ExistingAssignments []ExistingAssignment  `json:"existingAssignments"`
	Rules               TheoryRules           `json:"rules"`
}

// TheoryResponse is the solver's answer to a TheoryRequest.
type TheoryResponse struct {
	Success     bool         `json:"success"`
	Status      Status       `json:"status"`
	Message     string       `json:"message"`
	Assignments []Assignment `json:"assignments,omitempty"`
	SolveTimeMs int64        `json:"solveTimeMs"`
}

// Client wraps the CP-SAT HTTP endpoint with retry, response caching, and
// rate limiting. The zero value is not usable; construct with New.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *gocache.Cache
	limiter    *rate.Limiter
	retryAttempts uint
	retryDelay    time.Duration
	labDeadline    time.Duration
	theoryDeadline time.Duration
	log *zap.Logger
}

// New builds a Client from the resolved CPSATConfig. A non-positive
// RateLimitRPS means unlimited (spec §6 default), not zero throughput.
func New(cfg config.CPSATConfig, log *zap.Logger) *Client {
	limit := rate.Inf
	if cfg.RateLimitRPS > 0 {
		limit = rate.Limit(cfg.RateLimitRPS)
	}
	return &Client{
		httpClient:     &http.Client{},
		baseURL:        cfg.BaseURL,
		cache:          gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		limiter:        rate.NewLimiter(limit, 1),
		retryAttempts:  cfg.RetryAttempts,
		retryDelay:     cfg.RetryDelay,
		labDeadline:    cfg.LabDeadline,
		theoryDeadline: cfg.TheoryDeadline,
		log:            log,
	}
}

// SolveLab requests a lab-block packing for every lab course in req.
// TIMEOUT responses that still carry blocks are treated as success — a
// partial packing is useful to the greedy fallback, an empty one is not
// (spec §4.4).
func (c *Client) SolveLab(ctx context.Context, req LabRequest) (*LabResponse, error) {
	key, err := hashKey("lab", req)
	if err != nil {
		return nil, fmt.Errorf("hashing lab request: %w", err)
	}
	if cached, ok := c.cache.Get(key); ok {
		resp := cached.(LabResponse)
		return &resp, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.labDeadline)
	defer cancel()

	var resp LabResponse
	if err := c.post(ctx, "/solve/lab", req, &resp); err != nil {
		return nil, err
	}
	if resp.Status == StatusInfeasible {
		return nil, schederr.SolverInfeasible(resp.Message)
	}
	if resp.Status == StatusTimeout && len(resp.Assignments) == 0 {
		return nil, schederr.SolverUnavailable(fmt.Errorf("lab solve timed out with no partial result"))
	}

	c.cache.SetDefault(key, resp)
	return &resp, nil
}

// SolveTheory requests a full theory assignment. Same TIMEOUT-with-
// partials treatment as SolveLab.
func (c *Client) SolveTheory(ctx context.Context, req TheoryRequest) (*TheoryResponse, error) {
	key, err := hashKey("theory", req)
	if err != nil {
		return nil, fmt.Errorf("hashing theory request: %w", err)
	}
	if cached, ok := c.cache.Get(key); ok {
		resp := cached.(TheoryResponse)
		return &resp, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.theoryDeadline)
	defer cancel()

	var resp TheoryResponse
	if err := c.post(ctx, "/solve/theory", req, &resp); err != nil {
		return nil, err
	}
	if resp.Status == StatusInfeasible {
		return nil, schederr.SolverInfeasible(resp.Message)
	}
	if resp.Status == StatusTimeout && len(resp.Assignments) == 0 {
		return nil, schederr.SolverUnavailable(fmt.Errorf("theory solve timed out with no partial result"))
	}

	c.cache.SetDefault(key, resp)
	return &resp, nil
}

// post performs one rate-limited, retried HTTP round trip, decoding the
// JSON response body into out. Any terminal failure comes back wrapped as
// schederr.SolverUnavailable — the generator treats this as recoverable
// and falls back to the local greedy path (spec §4.4).
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return schederr.SolverUnavailable(err)
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling cpsat request: %w", err)
	}

	err = retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			data, err := io.ReadAll(resp.Body)
			if err != nil {
				return err
			}
			if resp.StatusCode >= 500 {
				return fmt.Errorf("cpsat returned %d: %s", resp.StatusCode, data)
			}
			if resp.StatusCode >= 400 {
				return retry.Unrecoverable(fmt.Errorf("cpsat returned %d: %s", resp.StatusCode, data))
			}
			return json.Unmarshal(data, out)
		},
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			c.log.Warn("cpsat request retrying", zap.Uint("attempt", n), zap.Error(err))
		}),
	)
	if err != nil {
		return schederr.SolverUnavailable(err)
	}
	return nil
}

func hashKey(prefix string, v any) (string, error) {
	h, err := hashstructure.Hash(v, hashstructure.FormatV2, &hashstructure.HashOptions{SlicesAsSets: false})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:%x", prefix, h), nil
}
