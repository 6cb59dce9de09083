package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/marcus/gentasks/internal/reporting"
)

type checkStyles struct {
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Section  lipgloss.Style
	Label    lipgloss.Style
	Value    lipgloss.Style
	Muted    lipgloss.Style
	Accent   lipgloss.Style
	OK       lipgloss.Style
	Warn     lipgloss.Style
	Error    lipgloss.Style
	Card     lipgloss.Style
	Pill     lipgloss.Style
}

func newCheckStyles() checkStyles {
	return checkStyles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69")),
		Subtitle: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Section:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
		Label:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Value:    lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Accent:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("81")),
		OK:       lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		Warn:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			BorderForeground(lipgloss.Color("238")),
		Pill: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236")).
			Padding(0, 1),
	}
}

func renderCheckResults(styles checkStyles, results *reporting.CheckResults) string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Check "+results.Submission) + "\n")
	b.WriteString(styles.Subtitle.Render(fmt.Sprintf("run %s  %s",
		shortID(results.ID), results.StartTime.Format("2006-01-02 15:04:05"))) + "\n\n")

	passed, failed, errored := results.Counts()
	summary := []string{
		styles.OK.Render(fmt.Sprintf("%d passed", passed)),
		styles.Warn.Render(fmt.Sprintf("%d failed", failed)),
		styles.Error.Render(fmt.Sprintf("%d errored", errored)),
	}
	b.WriteString(styles.Label.Render("Exercises ") + strings.Join(summary, styles.Muted.Render(" | ")) + "\n")
	b.WriteString(styles.Label.Render("Duration  ") +
		styles.Value.Render(results.EndTime.Sub(results.StartTime).Round(time.Millisecond).String()) + "\n")
	if results.Seed != 0 {
		b.WriteString(styles.Label.Render("Seed      ") + styles.Value.Render(fmt.Sprintf("%d", results.Seed)) + "\n")
	}

	for _, ex := range results.Exercises {
		b.WriteString("\n")
		b.WriteString(styles.Card.Render(renderExerciseCard(styles, ex)))
		b.WriteString("\n")
	}
	return b.String()
}

func renderExerciseCard(styles checkStyles, ex reporting.ExerciseResult) string {
	var lines []string
	header := formatCheckStatus(styles, ex.Status) + " " +
		styles.Accent.Render(strings.Join(ex.Tasks, " + ")) + " " +
		styles.Pill.Render(fmt.Sprintf("complexity %d", ex.Complexity))
	lines = append(lines, header)

	lines = append(lines, styles.Label.Render("variants ")+styles.Value.Render(humanize.Comma(int64(ex.Variants)))+
		styles.Muted.Render("  ")+
		styles.Label.Render("steps ")+styles.Value.Render(humanize.Comma(int64(ex.Steps)))+
		styles.Muted.Render("  ")+
		styles.Label.Render("took ")+styles.Value.Render(ex.Duration.Round(time.Microsecond).String()))

	if ex.Status != reporting.StatusPassed {
		if ex.Variant != "" {
			lines = append(lines, styles.Label.Render("on ")+styles.Value.Render(ex.Variant))
		}
		kind := ex.Kind
		if kind == "" {
			kind = "error"
		}
		lines = append(lines, styles.Error.Render(kind+": ")+styles.Value.Render(ex.Failure))
	}
	return strings.Join(lines, "\n")
}

func formatCheckStatus(styles checkStyles, status string) string {
	switch status {
	case reporting.StatusPassed:
		return styles.OK.Render("PASS")
	case reporting.StatusFailed:
		return styles.Warn.Render("FAIL")
	default:
		return styles.Error.Render("ERROR")
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
