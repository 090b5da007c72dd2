package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/kioskcfg/internal/export"
	"github.com/muurk/kioskcfg/internal/kiosk"
)

// RenderValidationReport renders the problems found in a configuration,
// or a success box when there are none.
func RenderValidationReport(name string, errs []error, width int) string {
	if strings.TrimSpace(name) == "" {
		name = "Unnamed"
	}
	if len(errs) == 0 {
		return NewSuccessResult("Configuration is valid", Param{Key: "Name", Value: name}).
			SetWidth(width).Render()
	}

	width = clampWidth(width)
	title := fmt.Sprintf("   %s  %d problem(s) in %s", FailureMarker, len(errs), name)
	lines := []string{"", ErrorTitleStyle.Render(title), ""}
	for _, err := range errs {
		lines = append(lines, "   • "+ErrorMessageStyle.Render(describeProblem(err)))
	}
	lines = append(lines, "")
	return boxStyle(ErrorColor, width).Render(strings.Join(lines, "\n"))
}

// describeProblem appends the field a validation message concerns.
func describeProblem(err error) string {
	msg := kiosk.GetShortErrorMessage(err)
	var kerr *kiosk.Error
	if errors.As(err, &kerr) && kerr.Field != "" {
		return msg + StepNoteStyle.Render(" ("+kerr.Field+")")
	}
	return msg
}

// RenderSummary renders the summary grid rows as an aligned two-column
// listing.
func RenderSummary(rows []export.Row, width int) string {
	width = clampWidth(width)

	keyWidth := 0
	for _, row := range rows {
		keyWidth = max(keyWidth, lipgloss.Width(row.Label))
	}
	keyStyle := ResultKeyStyle.Width(keyWidth + 4)
	valueStyle := ResultValueStyle.Width(max(width-keyWidth-8, 20))

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		value := row.Value
		if len(row.Items) > 0 {
			value = "• " + strings.Join(row.Items, "\n• ")
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top,
			keyStyle.Render("  "+row.Label+":"),
			valueStyle.Render(value),
		))
	}
	return strings.Join(lines, "\n")
}
