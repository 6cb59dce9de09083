// Package reporting records and renders the outcome of grading a submission.
package reporting

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/marcus/gentasks/internal/exercise"
	"github.com/marcus/gentasks/internal/tasks"
)

// Exercise outcome statuses.
const (
	StatusPassed = "passed"
	StatusFailed = "failed"
	StatusError  = "error"
)

// CheckResults is the structured outcome of one check run.
type CheckResults struct {
	ID         string           `json:"id"`
	Submission string           `json:"submission"`
	Seed       uint64           `json:"seed,omitempty"`
	StartTime  time.Time        `json:"start_time"`
	EndTime    time.Time        `json:"end_time"`
	Exercises  []ExerciseResult `json:"exercises"`
}

// ExerciseResult is the outcome of grading one exercise.
type ExerciseResult struct {
	Tasks      []string      `json:"tasks"`
	Complexity int           `json:"complexity"`
	Status     string        `json:"status"`
	Variants   int           `json:"variants"`
	Steps      int           `json:"steps"`
	Kind       string        `json:"kind,omitempty"`
	Variant    string        `json:"variant,omitempty"`
	Failure    string        `json:"failure,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// NewCheckResults starts a run with a fresh ID.
func NewCheckResults(submission string, seed uint64) *CheckResults {
	return &CheckResults{
		ID:         uuid.New().String(),
		Submission: submission,
		Seed:       seed,
		StartTime:  time.Now(),
	}
}

// Record appends the outcome of CheckGenerator for ex.
func (r *CheckResults) Record(ex *exercise.Exercise, res exercise.CheckResult, err error, elapsed time.Duration) ExerciseResult {
	er := ExerciseResult{
		Tasks:      ex.Names(),
		Complexity: ex.Complexity(),
		Status:     StatusPassed,
		Variants:   res.Variants,
		Steps:      res.Steps,
		Duration:   elapsed,
	}
	if err != nil {
		er.Status = StatusFailed
		er.Kind = FailureKind(err)
		if er.Kind == "" {
			er.Status = StatusError
		}
		er.Failure = err.Error()
		var verr *exercise.VariantError
		if errors.As(err, &verr) {
			er.Variant = verr.Variant.String()
			er.Failure = verr.Err.Error()
		}
	}
	r.Exercises = append(r.Exercises, er)
	return er
}

// Finish stamps the end time.
func (r *CheckResults) Finish() {
	r.EndTime = time.Now()
}

// Passed reports whether every graded exercise passed.
func (r *CheckResults) Passed() bool {
	for _, e := range r.Exercises {
		if e.Status != StatusPassed {
			return false
		}
	}
	return len(r.Exercises) > 0
}

// Counts returns the number of passed, failed and errored exercises.
func (r *CheckResults) Counts() (passed, failed, errored int) {
	for _, e := range r.Exercises {
		switch e.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		default:
			errored++
		}
	}
	return passed, failed, errored
}

// FailureKind names the conformance error class of err, or "" when err is
// not a conformance failure.
func FailureKind(err error) string {
	switch {
	case errors.Is(err, tasks.ErrMismatch):
		return "mismatch"
	case errors.Is(err, tasks.ErrUnexpectedTermination):
		return "unexpected termination"
	case errors.Is(err, tasks.ErrContractViolation):
		return "contract violation"
	case errors.Is(err, tasks.ErrConstruction):
		return "construction"
	default:
		return ""
	}
}

// DefaultReportsDir returns the default directory for check reports.
func DefaultReportsDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "gentasks", "reports")
}

// DefaultCheckResultsPath returns the default path for a check results JSON file.
func DefaultCheckResultsPath(ts time.Time) string {
	return filepath.Join(DefaultReportsDir(),
		fmt.Sprintf("check-%s.json", ts.Format("2006-01-02-150405")))
}

// SaveCheckResults writes structured check results to disk as JSON.
func SaveCheckResults(results *CheckResults, path string) error {
	if results == nil {
		return fmt.Errorf("results cannot be nil")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating results dir: %w", err)
	}
	payload, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// LoadCheckResults reads structured check results from disk.
func LoadCheckResults(path string) (*CheckResults, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	var results CheckResults
	if err := json.Unmarshal(payload, &results); err != nil {
		return nil, fmt.Errorf("decoding results: %w", err)
	}
	return &results, nil
}
