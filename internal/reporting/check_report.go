package reporting

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// DefaultCheckReportPath returns the default path for a check report file.
func DefaultCheckReportPath(ts time.Time) string {
	return filepath.Join(DefaultReportsDir(),
		fmt.Sprintf("check-%s.md", ts.Format("2006-01-02-150405")))
}

// RenderCheckReport renders a markdown report for a single check run.
func RenderCheckReport(results *CheckResults) (string, error) {
	if results == nil {
		return "", fmt.Errorf("results cannot be nil")
	}

	var passed, failed []ExerciseResult
	for _, ex := range results.Exercises {
		if ex.Status == StatusPassed {
			passed = append(passed, ex)
		} else {
			failed = append(failed, ex)
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "# Check %s - %s\n\n", results.Submission, results.StartTime.Format("2006-01-02 15:04"))

	buf.WriteString("## Summary\n")
	fmt.Fprintf(&buf, "- Run: %s\n", results.ID)
	if !results.EndTime.IsZero() {
		fmt.Fprintf(&buf, "- Duration: %s\n", formatDuration(results.EndTime.Sub(results.StartTime)))
	}
	if results.Seed != 0 {
		fmt.Fprintf(&buf, "- Seed: %d\n", results.Seed)
	}
	fmt.Fprintf(&buf, "- Exercises: %d passed, %d failed\n", len(passed), len(failed))
	buf.WriteString("\n")

	writeExerciseSection(&buf, "Passed", passed)
	writeExerciseSection(&buf, "Failed", failed)

	return buf.String(), nil
}

// SaveCheckReport writes a check report to disk.
func SaveCheckReport(results *CheckResults, path string) error {
	content, err := RenderCheckReport(results)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating report dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func writeExerciseSection(buf *bytes.Buffer, title string, exercises []ExerciseResult) {
	if len(exercises) == 0 {
		return
	}
	buf.WriteString("## " + title + "\n")
	for _, ex := range exercises {
		line := fmt.Sprintf("- %s (complexity %d)", strings.Join(ex.Tasks, " + "), ex.Complexity)
		if ex.Variants > 0 {
			line += fmt.Sprintf(", %d variants", ex.Variants)
		}
		if ex.Steps > 0 {
			line += fmt.Sprintf(", %s steps", humanize.Comma(int64(ex.Steps)))
		}
		if ex.Duration > 0 {
			line += fmt.Sprintf(", %s", formatDuration(ex.Duration))
		}
		buf.WriteString(line + "\n")
		if ex.Failure != "" {
			if ex.Variant != "" {
				fmt.Fprintf(buf, "  - on %s\n", ex.Variant)
			}
			fmt.Fprintf(buf, "  - %s\n", ex.Failure)
		}
	}
	buf.WriteString("\n")
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Microsecond).String()
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
}
