package ui

import (
	"github.com/AlecAivazis/survey/v2"

	"github.com/muurk/kioskcfg/internal/kiosk"
)

// BlankScenario is the scenario choice that starts from an empty configuration.
const BlankScenario = "Blank configuration"

// NewConfigAnswers holds the choices of the interactive `new` prompt.
type NewConfigAnswers struct {
	Name     string
	Scenario string // empty for a blank configuration
	Mode     kiosk.Mode
	Account  string // display name of the auto-logon account
}

var modeOptions = []struct {
	label string
	mode  kiosk.Mode
}{
	{"Single app (one full-screen app)", kiosk.ModeSingle},
	{"Multi app (restricted Start menu)", kiosk.ModeMulti},
	{"Restricted user experience (groups or all users)", kiosk.ModeRestricted},
}

// PromptNewConfiguration asks for the name of a new configuration and
// either a starting scenario or a mode.
func PromptNewConfiguration(scenarios []string) (NewConfigAnswers, error) {
	var answers NewConfigAnswers

	namePrompt := &survey.Input{
		Message: "Configuration name:",
		Help:    "Used for the exported file names (e.g., Front Desk)",
	}
	if err := survey.AskOne(namePrompt, &answers.Name, survey.WithValidator(survey.Required)); err != nil {
		return answers, err
	}

	if len(scenarios) > 0 {
		var choice string
		prompt := &survey.Select{
			Message: "Start from:",
			Options: append([]string{BlankScenario}, scenarios...),
			Default: BlankScenario,
		}
		if err := survey.AskOne(prompt, &choice); err != nil {
			return answers, err
		}
		if choice != BlankScenario {
			answers.Scenario = choice
			return answers, nil
		}
	}

	labels := make([]string, len(modeOptions))
	for i, o := range modeOptions {
		labels[i] = o.label
	}
	var idx int
	modePrompt := &survey.Select{
		Message: "Kiosk type:",
		Options: labels,
	}
	if err := survey.AskOne(modePrompt, &idx); err != nil {
		return answers, err
	}
	answers.Mode = modeOptions[idx].mode

	if answers.Mode != kiosk.ModeRestricted {
		accountPrompt := &survey.Input{
			Message: "Auto-logon account display name (optional):",
		}
		if err := survey.AskOne(accountPrompt, &answers.Account); err != nil {
			return answers, err
		}
	}

	return answers, nil
}

// Commands converts the answers into the commands that build the
// configuration. Scenario loading is left to the caller.
func (a NewConfigAnswers) Commands() []kiosk.Command {
	var cmds []kiosk.Command
	if a.Mode != "" {
		cmds = append(cmds, kiosk.SetMode{Mode: a.Mode})
		if a.Mode == kiosk.ModeRestricted {
			cmds = append(cmds, kiosk.SetAccount{Account: kiosk.GlobalProfile()})
		} else {
			cmds = append(cmds, kiosk.SetAccount{Account: kiosk.AutoLogon(a.Account)})
		}
	}
	return append(cmds, kiosk.SetName{Name: a.Name})
}
