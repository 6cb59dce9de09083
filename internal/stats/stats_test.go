package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marcus/gentasks/internal/reporting"
)

// writeReport saves r as a check-*.json file in dir.
func writeReport(t *testing.T, dir string, index int, r *reporting.CheckResults) {
	t.Helper()
	name := fmt.Sprintf("check-%s-%d.json", r.StartTime.Format("2006-01-02-150405"), index)
	if err := reporting.SaveCheckResults(r, filepath.Join(dir, name)); err != nil {
		t.Fatalf("write report: %v", err)
	}
}

func report(submission string, start time.Time, elapsed time.Duration, exercises ...reporting.ExerciseResult) *reporting.CheckResults {
	return &reporting.CheckResults{
		ID:         fmt.Sprintf("run-%d", start.Unix()),
		Submission: submission,
		StartTime:  start,
		EndTime:    start.Add(elapsed),
		Exercises:  exercises,
	}
}

func passed(tasks ...string) reporting.ExerciseResult {
	return reporting.ExerciseResult{Tasks: tasks, Status: reporting.StatusPassed, Variants: 3, Steps: 100}
}

func failed(kind string, tasks ...string) reporting.ExerciseResult {
	return reporting.ExerciseResult{Tasks: tasks, Status: reporting.StatusFailed, Kind: kind, Variants: 1, Steps: 5}
}

// --- Duration type tests ---

func TestDuration_MarshalJSON(t *testing.T) {
	tests := []struct {
		dur  time.Duration
		want string
	}{
		{0, "0"},
		{250 * time.Millisecond, "250"},
		{90 * time.Second, "90000"},
	}
	for _, tt := range tests {
		b, err := json.Marshal(Duration{tt.dur})
		if err != nil {
			t.Fatalf("marshal %v: %v", tt.dur, err)
		}
		if string(b) != tt.want {
			t.Errorf("MarshalJSON(%v) = %s, want %s", tt.dur, b, tt.want)
		}
	}
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration
	if err := json.Unmarshal([]byte("1500"), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.Duration != 1500*time.Millisecond {
		t.Errorf("UnmarshalJSON(1500) = %v, want 1.5s", d.Duration)
	}
	if err := json.Unmarshal([]byte(`"soon"`), &d); err == nil {
		t.Error("expected error for non-numeric input")
	}
}

func TestDuration_String(t *testing.T) {
	tests := []struct {
		dur  time.Duration
		want string
	}{
		{0, "0ms"},
		{420 * time.Millisecond, "420ms"},
		{1500 * time.Millisecond, "1.5s"},
		{90 * time.Second, "1m 30s"},
	}
	for _, tt := range tests {
		if got := (Duration{tt.dur}).String(); got != tt.want {
			t.Errorf("Duration(%v).String() = %q, want %q", tt.dur, got, tt.want)
		}
	}
}

// --- Compute tests ---

func TestCompute_MissingDir(t *testing.T) {
	result, err := New(filepath.Join(t.TempDir(), "nope")).Compute()
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if result.TotalRuns != 0 || result.PassRate != 0 {
		t.Errorf("empty result = %+v", result)
	}
	if result.FailureKindBreakdown != nil {
		t.Errorf("FailureKindBreakdown = %v, want nil", result.FailureKindBreakdown)
	}
}

func TestCompute_EmptyReportsDir(t *testing.T) {
	result, err := New("").Compute()
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if result.TotalRuns != 0 {
		t.Errorf("TotalRuns = %d, want 0", result.TotalRuns)
	}
}

func TestCompute_Reports(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	writeReport(t, dir, 1, report("/work/a.go", base, 2*time.Second,
		failed("mismatch", "Range", "AwaitKeyword")))
	writeReport(t, dir, 2, report("/work/a.go", base.Add(time.Hour), 4*time.Second,
		passed("Range", "AwaitKeyword")))
	writeReport(t, dir, 3, report("/work/b.go", base.Add(2*time.Hour), 6*time.Second,
		passed("Fibonacci"),
		reporting.ExerciseResult{Tasks: []string{"Iterator"}, Status: reporting.StatusError, Failure: "submission panicked"}))

	result, err := New(dir).Compute()
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}

	if result.TotalRuns != 3 {
		t.Errorf("TotalRuns = %d, want 3", result.TotalRuns)
	}
	if !result.FirstRunAt.Equal(base) || !result.LastRunAt.Equal(base.Add(2*time.Hour)) {
		t.Errorf("run range = %v..%v", result.FirstRunAt, result.LastRunAt)
	}
	if result.TotalDuration.Duration != 12*time.Second {
		t.Errorf("TotalDuration = %v, want 12s", result.TotalDuration)
	}
	if result.AvgRunDuration.Duration != 4*time.Second {
		t.Errorf("AvgRunDuration = %v, want 4s", result.AvgRunDuration)
	}
	if result.ExercisesPassed != 2 || result.ExercisesFailed != 1 || result.ExercisesErrored != 1 {
		t.Errorf("outcomes = %d/%d/%d, want 2/1/1",
			result.ExercisesPassed, result.ExercisesFailed, result.ExercisesErrored)
	}
	if result.PassRate != 50 {
		t.Errorf("PassRate = %v, want 50", result.PassRate)
	}
	if result.VariantsChecked != 7 || result.StepsDriven != 205 {
		t.Errorf("variants/steps = %d/%d, want 7/205", result.VariantsChecked, result.StepsDriven)
	}
	if result.FailureKindBreakdown["mismatch"] != 1 || result.FailureKindBreakdown["error"] != 1 {
		t.Errorf("FailureKindBreakdown = %v", result.FailureKindBreakdown)
	}

	wantTypes := []TaskTypeStats{
		{Name: "AwaitKeyword", Graded: 2, Passed: 1},
		{Name: "Range", Graded: 2, Passed: 1},
		{Name: "Fibonacci", Graded: 1, Passed: 1},
		{Name: "Iterator", Graded: 1, Passed: 0},
	}
	if len(result.TaskTypeBreakdown) != len(wantTypes) {
		t.Fatalf("TaskTypeBreakdown = %+v", result.TaskTypeBreakdown)
	}
	for i, want := range wantTypes {
		if result.TaskTypeBreakdown[i] != want {
			t.Errorf("TaskTypeBreakdown[%d] = %+v, want %+v", i, result.TaskTypeBreakdown[i], want)
		}
	}
	if got := result.TaskTypeBreakdown[0].PassRate(); got != 50 {
		t.Errorf("AwaitKeyword PassRate = %v, want 50", got)
	}

	if len(result.SubmissionBreakdown) != 2 {
		t.Fatalf("SubmissionBreakdown = %+v", result.SubmissionBreakdown)
	}
	a := result.SubmissionBreakdown[0]
	if a.Name != "a.go" || a.RunCount != 2 || !a.Passed {
		t.Errorf("a.go stats = %+v, want 2 runs and latest passed", a)
	}
	b := result.SubmissionBreakdown[1]
	if b.Name != "b.go" || b.Passed {
		t.Errorf("b.go stats = %+v, want latest failed", b)
	}
}

func TestCompute_SkipsForeignAndCorruptFiles(t *testing.T) {
	dir := t.TempDir()
	writeReport(t, dir, 1, report("x.go", time.Now(), time.Second, passed("Range")))

	if err := os.WriteFile(filepath.Join(dir, "check-broken.json"), []byte("{"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(dir, "check-dir.json"), 0755); err != nil {
		t.Fatal(err)
	}

	result, err := New(dir).Compute()
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	if result.TotalRuns != 1 {
		t.Errorf("TotalRuns = %d, want 1", result.TotalRuns)
	}
}

func TestCompute_JSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	writeReport(t, dir, 1, report("x.go", time.Now(), 1500*time.Millisecond, passed("Range")))

	result, err := New(dir).Compute()
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	b, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded StatsResult
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.TotalDuration.Duration != 1500*time.Millisecond {
		t.Errorf("TotalDuration after round trip = %v", decoded.TotalDuration)
	}
	if decoded.PassRate != 100 {
		t.Errorf("PassRate after round trip = %v", decoded.PassRate)
	}
}
