package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/kioskcfg/internal/kiosk"
)

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Result represents a result box (success, failure, or warning)
type Result struct {
	Type    ResultType // Success, failure, or warning
	Title   string     // e.g., "Exported 3 files"
	Details []Param    // Key-value details to display, in order
	Error   error      // Error (for failure results)
	Hints   []string   // Follow-up tips (for failure and warning results)
	Width   int        // Terminal width
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string, details ...Param) *Result {
	return &Result{Type: ResultSuccess, Title: title, Details: details, Width: GetTerminalWidth()}
}

// NewFailureResult creates a failure result box. A hint derived from a
// kiosk error is added automatically.
func NewFailureResult(title string, err error, hints ...string) *Result {
	if err != nil {
		hints = append([]string{kiosk.GetUserFriendlyHint(err)}, hints...)
	}
	return &Result{Type: ResultFailure, Title: title, Error: err, Hints: hints, Width: GetTerminalWidth()}
}

// NewWarningResult creates a warning result box
func NewWarningResult(title string, details ...Param) *Result {
	return &Result{Type: ResultWarning, Title: title, Details: details, Width: GetTerminalWidth()}
}

// SetWidth sets the terminal width for responsive rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail appends a detail key-value pair
func (r *Result) AddDetail(key, value string) *Result {
	r.Details = append(r.Details, Param{Key: key, Value: value})
	return r
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	width := clampWidth(r.Width)

	var marker, label string
	var titleStyle lipgloss.Style
	var color lipgloss.Color
	switch r.Type {
	case ResultFailure:
		marker, label, titleStyle, color = FailureMarker, "FAILED", ErrorTitleStyle, ErrorColor
	case ResultWarning:
		marker, label, titleStyle, color = WarningMarker, "WARNING", WarningTitleStyle, WarningColor
	default:
		marker, label, titleStyle, color = SuccessMarker, "SUCCESS", SuccessTitleStyle, SuccessColor
	}

	lines := []string{"", titleStyle.Render(fmt.Sprintf("   %s  %s  ─  %s", marker, label, r.Title)), ""}

	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+kiosk.GetShortErrorMessage(r.Error)), "")
	}

	if len(r.Details) > 0 {
		for _, d := range r.Details {
			lines = append(lines, ResultKeyStyle.Render("   "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
		}
		lines = append(lines, "")
	}

	if len(r.Hints) > 0 {
		lines = append(lines, renderHints(r.Hints, width), "")
	}

	return boxStyle(color, width).Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}

// renderHints renders hint blocks verbatim; kiosk hints carry their own
// bullet lists.
func renderHints(hints []string, width int) string {
	lines := []string{HintTitleStyle.Render("Hint:")}
	for _, tip := range hints {
		lines = append(lines, HintItemStyle.Render(tip))
	}
	return HintBoxStyle(width).Render(strings.Join(lines, "\n"))
}

// RenderSuccess renders a success box with the given title and details
func RenderSuccess(title string, details ...Param) string {
	return NewSuccessResult(title, details...).Render()
}

// RenderFailure renders a failure box with the given title, error, and hints
func RenderFailure(title string, err error, hints ...string) string {
	return NewFailureResult(title, err, hints...).Render()
}

// RenderWarning renders a warning box with the given title and details
func RenderWarning(title string, details ...Param) string {
	return NewWarningResult(title, details...).Render()
}
