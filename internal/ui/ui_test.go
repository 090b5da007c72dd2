package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/muurk/kioskcfg/internal/export"
	"github.com/muurk/kioskcfg/internal/kiosk"
)

func TestHeader_RenderKeepsParamOrder(t *testing.T) {
	out := NewHeader("Export", "kioskcfg export --all",
		Param{Key: "Project", Value: "kiosk.yaml"},
		Param{Key: "Output", Value: "dist"},
	).SetWidth(80).Render()

	if !strings.Contains(out, "EXPORT") {
		t.Errorf("Expected upper-case title, got:\n%s", out)
	}
	project := strings.Index(out, "kiosk.yaml")
	output := strings.Index(out, "dist")
	if project < 0 || output < 0 || project > output {
		t.Errorf("Expected params in order, got:\n%s", out)
	}
}

func TestResult_Render(t *testing.T) {
	tests := []struct {
		name     string
		result   *Result
		contains []string
	}{
		{
			name:     "success",
			result:   NewSuccessResult("Exported 3 files", Param{Key: "Directory", Value: "dist"}),
			contains: []string{"SUCCESS", "Exported 3 files", "Directory:", "dist"},
		},
		{
			name:     "failure with kiosk hint",
			result:   NewFailureResult("Import failed", kiosk.NewParseError("Not an AssignedAccess configuration", nil)),
			contains: []string{"FAILED", "Not an AssignedAccess configuration", "Hint:", "could not be imported"},
		},
		{
			name:     "warning",
			result:   NewWarningResult("Nothing to export"),
			contains: []string{"WARNING", "Nothing to export"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(90).Render()
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("Expected output to contain %q, got:\n%s", want, out)
				}
			}
		})
	}
}

func TestNewFailureResult_NilError(t *testing.T) {
	r := NewFailureResult("Stopped", nil)
	if len(r.Hints) != 0 {
		t.Errorf("Expected no hints without an error, got %v", r.Hints)
	}
}

func TestRenderValidationReport(t *testing.T) {
	valid := RenderValidationReport("", nil, 80)
	if !strings.Contains(valid, "Configuration is valid") || !strings.Contains(valid, "Unnamed") {
		t.Errorf("Unexpected report for a valid configuration:\n%s", valid)
	}

	errs := []error{
		kiosk.NewValidationError("edgeUrl", "Edge URL is required"),
		errors.New("plain problem"),
	}
	out := RenderValidationReport("Lobby", errs, 80)
	for _, want := range []string{"2 problem(s) in Lobby", "Edge URL is required", "(edgeUrl)", "plain problem"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected report to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRenderSummary(t *testing.T) {
	rows := []export.Row{
		{Label: "Name", Value: "Lobby"},
		{Label: "Allowed Apps", Items: []string{"Microsoft Edge", "Calculator"}},
	}
	out := RenderSummary(rows, 80)
	for _, want := range []string{"Name:", "Lobby", "• Microsoft Edge", "• Calculator"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected summary to contain %q, got:\n%s", want, out)
		}
	}
}

func TestProgress(t *testing.T) {
	p := NewProgress("Exporting", "lobby.xml", "lobby.ps1", "lobby.md", "shortcuts")
	if p.Total() != 4 {
		t.Fatalf("Expected 4 steps, got %d", p.Total())
	}

	p.StartStep(1, "")
	if p.Current != 1 {
		t.Errorf("Expected current step 1, got %d", p.Current)
	}
	p.CompleteStep(1, "812 bytes")
	p.CompleteStep(2, "")
	p.SkipStep(4, "disabled")
	if p.Percent != 0.75 {
		t.Errorf("Expected 75%% progress, got %v", p.Percent)
	}
	if p.Failed() {
		t.Error("Expected no failed step")
	}
	p.FailStep(3, "permission denied")
	if !p.Failed() {
		t.Error("Expected a failed step")
	}

	// Out of range updates are ignored
	p.UpdateStep(9, StepComplete, "")

	out := p.SetWidth(80).Render()
	for _, want := range []string{"Exporting", "[1/4] lobby.xml", "(812 bytes)", "(permission denied)", StepMarkerSkipped} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected progress to contain %q, got:\n%s", want, out)
		}
	}
}

func TestRenderExportWarning(t *testing.T) {
	out := RenderExportWarning([]error{kiosk.NewValidationError("profileId", "Profile GUID is required")}, 80)
	for _, want := range []string{"1 problem(s)", "Profile GUID is required"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected warning to contain %q, got:\n%s", want, out)
		}
	}
}

func TestConfirmExport_NoProblems(t *testing.T) {
	var buf bytes.Buffer
	ok, err := ConfirmExport(NewPrinter(&buf), nil)
	if err != nil || !ok {
		t.Errorf("ConfirmExport(nil) = %v, %v; want true, nil", ok, err)
	}
	if buf.Len() != 0 {
		t.Errorf("Expected no output, got %q", buf.String())
	}
}

func TestNewConfigAnswers_Commands(t *testing.T) {
	tests := []struct {
		name     string
		answers  NewConfigAnswers
		expected []kiosk.Command
	}{
		{
			name:    "single with account",
			answers: NewConfigAnswers{Name: "Lobby", Mode: kiosk.ModeSingle, Account: "Lobby User"},
			expected: []kiosk.Command{
				kiosk.SetMode{Mode: kiosk.ModeSingle},
				kiosk.SetAccount{Account: kiosk.AutoLogon("Lobby User")},
				kiosk.SetName{Name: "Lobby"},
			},
		},
		{
			name:    "restricted uses the global profile",
			answers: NewConfigAnswers{Name: "Lab", Mode: kiosk.ModeRestricted},
			expected: []kiosk.Command{
				kiosk.SetMode{Mode: kiosk.ModeRestricted},
				kiosk.SetAccount{Account: kiosk.GlobalProfile()},
				kiosk.SetName{Name: "Lab"},
			},
		},
		{
			name:     "scenario only names",
			answers:  NewConfigAnswers{Name: "Desk", Scenario: "Reception"},
			expected: []kiosk.Command{kiosk.SetName{Name: "Desk"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.expected, tt.answers.Commands()); diff != "" {
				t.Errorf("Commands() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf).SetWidth(20)
	if p.Width() != MinTerminalWidth {
		t.Errorf("Expected width clamped to %d, got %d", MinTerminalWidth, p.Width())
	}
	p.PrintSuccess("Saved")
	if !strings.Contains(buf.String(), "Saved") {
		t.Errorf("Expected printed result, got %q", buf.String())
	}
	if p.Writer() != &buf {
		t.Error("Expected Writer() to return the underlying writer")
	}
}
