package ui

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/lipgloss"
)

// RenderExportWarning renders the box shown before exporting a
// configuration that does not validate.
func RenderExportWarning(problems []error, width int) string {
	width = clampWidth(width)

	lines := []string{"", WarningTitleStyle.Render(fmt.Sprintf("   %s  WARNING  ─  Configuration has %d problem(s)", WarningMarker, len(problems))), ""}
	for _, err := range problems {
		lines = append(lines, lipgloss.NewStyle().Foreground(TextColor).Render("   • "+describeProblem(err)))
	}
	lines = append(lines, "")

	note := lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true).
		Width(width - 12).
		PaddingLeft(3).
		Render("Devices reject an AssignedAccess configuration that is incomplete. " +
			"The exported files will still be written.")
	lines = append(lines, note, "")

	return boxStyle(WarningColor, width).Render(strings.Join(lines, "\n"))
}

// ConfirmExport shows the problems of an invalid configuration and asks
// whether to export anyway. It returns true straight away when there is
// nothing to confirm.
func ConfirmExport(p *Printer, problems []error) (bool, error) {
	if len(problems) == 0 {
		return true, nil
	}
	p.Println(RenderExportWarning(problems, p.Width()))
	p.Newline()
	return PromptConfirmation("Export anyway?")
}

// PromptConfirmation prompts for yes/no confirmation
func PromptConfirmation(message string) (bool, error) {
	var confirmed bool
	prompt := &survey.Confirm{
		Message: message,
		Default: false,
	}
	if err := survey.AskOne(prompt, &confirmed); err != nil {
		return false, err
	}
	return confirmed, nil
}
