// Package stats computes aggregate statistics from saved check results.
// It reads the check-*.json files written by `gentasks check --save`.
package stats

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/marcus/gentasks/internal/logging"
	"github.com/marcus/gentasks/internal/reporting"
)

// Duration wraps time.Duration for JSON serialization as milliseconds.
type Duration struct {
	time.Duration
}

// MarshalJSON serializes Duration as integer milliseconds.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Milliseconds())
}

// UnmarshalJSON deserializes Duration from integer milliseconds.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var ms int64
	if err := json.Unmarshal(b, &ms); err != nil {
		return err
	}
	d.Duration = time.Duration(ms) * time.Millisecond
	return nil
}

// String returns a human-readable duration string.
func (d Duration) String() string {
	dur := d.Duration
	if dur < time.Second {
		return fmt.Sprintf("%dms", dur.Milliseconds())
	}
	if dur < time.Minute {
		return fmt.Sprintf("%.1fs", dur.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(dur.Minutes()), int(dur.Seconds())%60)
}

// StatsResult holds all computed statistics, JSON-serializable.
type StatsResult struct {
	// Run overview
	TotalRuns      int        `json:"total_runs"`
	FirstRunAt     *time.Time `json:"first_run_at,omitempty"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	TotalDuration  Duration   `json:"total_duration"`
	AvgRunDuration Duration   `json:"avg_run_duration"`

	// Exercise outcomes
	ExercisesPassed  int     `json:"exercises_passed"`
	ExercisesFailed  int     `json:"exercises_failed"`
	ExercisesErrored int     `json:"exercises_errored"`
	PassRate         float64 `json:"pass_rate"`
	VariantsChecked  int     `json:"variants_checked"`
	StepsDriven      int     `json:"steps_driven"`

	// Breakdowns
	TaskTypeBreakdown    []TaskTypeStats   `json:"task_type_breakdown,omitempty"`
	FailureKindBreakdown map[string]int    `json:"failure_kind_breakdown,omitempty"`
	SubmissionBreakdown  []SubmissionStats `json:"submission_breakdown,omitempty"`
}

// TaskTypeStats summarizes outcomes of exercises containing one task type.
type TaskTypeStats struct {
	Name   string `json:"name"`
	Graded int    `json:"graded"`
	Passed int    `json:"passed"`
}

// PassRate is the percentage of graded exercises that passed.
func (t TaskTypeStats) PassRate() float64 {
	if t.Graded == 0 {
		return 0
	}
	return float64(t.Passed) / float64(t.Graded) * 100
}

// SubmissionStats summarizes activity for a single submission file.
type SubmissionStats struct {
	Name     string     `json:"name"`
	RunCount int        `json:"run_count"`
	Passed   bool       `json:"passed"` // outcome of the latest run
	LastRun  *time.Time `json:"last_run,omitempty"`
}

// Stats computes aggregate statistics from a reports directory.
type Stats struct {
	reportsDir string
	log        *logging.Logger
}

// New creates a Stats instance reading from reportsDir.
func New(reportsDir string) *Stats {
	return &Stats{
		reportsDir: reportsDir,
		log:        logging.Component("stats"),
	}
}

// Compute aggregates all saved check results into a StatsResult.
func (s *Stats) Compute() (*StatsResult, error) {
	result := &StatsResult{
		FailureKindBreakdown: make(map[string]int),
	}

	reports, err := s.loadReports()
	if err != nil {
		return nil, err
	}
	s.computeFromReports(result, reports)

	if result.TotalRuns > 0 {
		result.AvgRunDuration = Duration{result.TotalDuration.Duration / time.Duration(result.TotalRuns)}
	}

	total := result.ExercisesPassed + result.ExercisesFailed + result.ExercisesErrored
	if total > 0 {
		result.PassRate = float64(result.ExercisesPassed) / float64(total) * 100
	}
	if len(result.FailureKindBreakdown) == 0 {
		result.FailureKindBreakdown = nil
	}
	return result, nil
}

// loadReports reads all check-*.json files from the reports directory.
// A missing directory yields no reports; unreadable files are skipped.
func (s *Stats) loadReports() ([]*reporting.CheckResults, error) {
	if s.reportsDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(s.reportsDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stats: read reports dir: %w", err)
	}

	var results []*reporting.CheckResults
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, "check-") || !strings.HasSuffix(name, ".json") {
			continue
		}
		r, err := reporting.LoadCheckResults(filepath.Join(s.reportsDir, name))
		if err != nil {
			s.log.WarnCtx("skipping unreadable report", map[string]any{
				"file":  name,
				"error": err.Error(),
			})
			continue
		}
		results = append(results, r)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].StartTime.Before(results[j].StartTime)
	})
	return results, nil
}

// computeFromReports fills result from reports sorted by start time.
func (s *Stats) computeFromReports(result *StatsResult, reports []*reporting.CheckResults) {
	if len(reports) == 0 {
		return
	}
	result.TotalRuns = len(reports)

	taskTypes := make(map[string]*TaskTypeStats)
	submissions := make(map[string]*SubmissionStats)

	for _, r := range reports {
		if !r.StartTime.IsZero() {
			if result.FirstRunAt == nil || r.StartTime.Before(*result.FirstRunAt) {
				t := r.StartTime
				result.FirstRunAt = &t
			}
			if result.LastRunAt == nil || r.StartTime.After(*result.LastRunAt) {
				t := r.StartTime
				result.LastRunAt = &t
			}
		}
		if !r.StartTime.IsZero() && !r.EndTime.IsZero() {
			result.TotalDuration.Duration += r.EndTime.Sub(r.StartTime)
		}

		for _, ex := range r.Exercises {
			switch ex.Status {
			case reporting.StatusPassed:
				result.ExercisesPassed++
			case reporting.StatusFailed:
				result.ExercisesFailed++
			default:
				result.ExercisesErrored++
			}
			result.VariantsChecked += ex.Variants
			result.StepsDriven += ex.Steps
			if ex.Status != reporting.StatusPassed {
				kind := ex.Kind
				if kind == "" {
					kind = "error"
				}
				result.FailureKindBreakdown[kind]++
			}

			seen := make(map[string]bool, len(ex.Tasks))
			for _, name := range ex.Tasks {
				if seen[name] {
					continue
				}
				seen[name] = true
				ts, ok := taskTypes[name]
				if !ok {
					ts = &TaskTypeStats{Name: name}
					taskTypes[name] = ts
				}
				ts.Graded++
				if ex.Status == reporting.StatusPassed {
					ts.Passed++
				}
			}
		}

		if r.Submission != "" {
			name := filepath.Base(r.Submission)
			sub, ok := submissions[name]
			if !ok {
				sub = &SubmissionStats{Name: name}
				submissions[name] = sub
			}
			sub.RunCount++
			// Reports are sorted ascending, so the last one seen is the latest.
			sub.Passed = r.Passed()
			if !r.StartTime.IsZero() {
				t := r.StartTime
				sub.LastRun = &t
			}
		}
	}

	for _, ts := range taskTypes {
		result.TaskTypeBreakdown = append(result.TaskTypeBreakdown, *ts)
	}
	sort.Slice(result.TaskTypeBreakdown, func(i, j int) bool {
		a, b := result.TaskTypeBreakdown[i], result.TaskTypeBreakdown[j]
		if a.Graded != b.Graded {
			return a.Graded > b.Graded
		}
		return a.Name < b.Name
	})

	for _, sub := range submissions {
		result.SubmissionBreakdown = append(result.SubmissionBreakdown, *sub)
	}
	sort.Slice(result.SubmissionBreakdown, func(i, j int) bool {
		a, b := result.SubmissionBreakdown[i], result.SubmissionBreakdown[j]
		if a.RunCount != b.RunCount {
			return a.RunCount > b.RunCount
		}
		return a.Name < b.Name
	})
}
