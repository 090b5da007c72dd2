package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/kioskcfg/internal/codec"
	"github.com/muurk/kioskcfg/internal/export"
	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/logging"
	"github.com/muurk/kioskcfg/internal/presets"
	"github.com/muurk/kioskcfg/internal/ui"
	"github.com/muurk/kioskcfg/internal/urls"
)

// Project command flags
var (
	newName      string
	newScenario  string
	newMode      string
	newAccount   string
	newForce     bool
	outputFormat string
	exportDir    string
	exportKind   string
	exportStdout bool
	exportForce  bool
	exportExtras bool
	assumeMode   string
)

func init() {
	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(nameCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(presetsCmd)
}

// newCmd creates a project file
var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a new configuration",
	Long: `Create a new project file, either blank, from a scenario, or for a mode.

Without --name the command asks interactively. Scenarios:
  blank           Single-app Edge, nothing filled in
  edgeFullscreen  Edge fullscreen digital signage
  edgePublic      Edge public browsing
  multiApp        Multi-app with Edge, On-Screen Keyboard and Calculator`,
	Example: `  # Interactive
  kioskcfg new

  # Digital signage
  kioskcfg new --name Lobby --scenario edgeFullscreen

  # Empty multi-app configuration in another file
  kioskcfg new -p reception.yaml --name Reception --mode multi --account Reception`,
	Args: cobra.NoArgs,
	RunE: runNew,
}

func init() {
	newCmd.Flags().StringVar(&newName, "name", "", "Configuration name")
	newCmd.Flags().StringVar(&newScenario, "scenario", "", "Starting scenario (blank, edgeFullscreen, edgePublic, multiApp)")
	newCmd.Flags().StringVar(&newMode, "mode", "", "Kiosk type without a scenario (single, multi, restricted)")
	newCmd.Flags().StringVar(&newAccount, "account", "", "Auto-logon account display name")
	newCmd.Flags().BoolVar(&newForce, "force", false, "Overwrite an existing project file")
}

func runNew(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	if p.exists && !newForce {
		return p.Fail("Project already exists", fmt.Errorf("%s already exists", p.path),
			"Use --force to overwrite it, or choose another file with --project")
	}

	var answers ui.NewConfigAnswers
	if newName == "" && ui.IsTerminal() {
		labels := make([]string, 0, len(presets.Scenarios))
		for _, s := range presets.Scenarios {
			if s != presets.ScenarioBlank {
				labels = append(labels, s.Description())
			}
		}
		if answers, err = ui.PromptNewConfiguration(labels); err != nil {
			return err
		}
		if answers.Scenario != "" {
			answers.Scenario = string(scenarioByLabel(answers.Scenario))
		}
	} else {
		answers = ui.NewConfigAnswers{
			Name:     newName,
			Scenario: newScenario,
			Mode:     kiosk.Mode(newMode),
			Account:  newAccount,
		}
		if answers.Scenario == "" && answers.Mode == "" {
			answers.Scenario = string(presets.ScenarioBlank)
		}
	}

	var cmds []kiosk.Command
	if answers.Scenario != "" {
		cmds = append(cmds, presets.LoadScenario{Name: presets.Scenario(answers.Scenario)}.With(p.Catalog(cmd.Context())))
	}
	cmds = append(cmds, answers.Commands()...)
	if p.settings.Editor.AutoPin {
		cmds = append(cmds, kiosk.SetAutoPin{Enabled: true})
	}

	p.store = kiosk.NewStore(nil)
	return p.Apply("Created configuration", cmds...)
}

// scenarioByLabel maps a menu description back to its scenario.
func scenarioByLabel(label string) presets.Scenario {
	for _, s := range presets.Scenarios {
		if s.Description() == label {
			return s
		}
	}
	return presets.Scenario(label)
}

var nameCmd = &cobra.Command{
	Use:     "name NAME",
	Short:   "Rename the configuration",
	Long:    `Set the configuration name. It is used for the exported file names.`,
	Example: `  kioskcfg name "Front Desk"`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		return p.Apply("Renamed configuration", kiosk.SetName{Name: args[0]})
	},
}

// showCmd displays the configuration
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configuration",
	Long: `Display the configuration in the project file.

Formats:
  summary  Labelled overview (default)
  compact  Indented text listing with positions
  xml      The AssignedAccess configuration document
  json     The configuration as JSON, for scripting`,
	Example: `  kioskcfg show
  kioskcfg show --format compact
  kioskcfg show --format xml > AssignedAccess.xml`,
	Args: cobra.NoArgs,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&outputFormat, "format", "summary", "Output format (summary, compact, xml, json)")
}

func runShow(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	cfg := p.Config()

	switch outputFormat {
	case "summary":
		p.printer.PrintHeader("CONFIGURATION", "kioskcfg show",
			ui.Param{Key: "Project", Value: p.path},
			ui.Param{Key: "Name", Value: cfg.Summary()},
		)
		p.printer.Println(ui.RenderSummary(export.SummaryRows(cfg), p.printer.Width()))
		if !p.exists {
			p.printer.Newline()
			p.printer.PrintWarning("Project file does not exist yet",
				ui.Param{Key: "Create it", Value: "kioskcfg new"},
			)
		}
	case "compact":
		fmt.Fprint(cmd.OutOrStdout(), cfg.FormatCompact())
	case "xml":
		fmt.Fprint(cmd.OutOrStdout(), codec.Encode(cfg))
	case "json":
		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode configuration: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	default:
		return fmt.Errorf("unknown format %q (expected summary, compact, xml or json)", outputFormat)
	}
	return nil
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration for problems",
	Long: `Check the configuration the same way the export does and list every
problem. The command fails when there is at least one.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	cfg := p.Config()
	problems := kiosk.Validate(cfg)

	name := cfg.Name
	if name == "" {
		name = p.path
	}
	p.printer.PrintValidation(name, problems)
	if len(problems) > 0 {
		p.printer.Println("  Schema reference: " + urls.AssignedAccessXML)
		return fmt.Errorf("configuration has %d problem(s)", len(problems))
	}
	return nil
}

// exportCmd writes the deployment files
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the deployment files",
	Long: `Write the AssignedAccess XML document, the PowerShell deployment script
and the Markdown summary into the output directory.

Multi-app configurations can also get the shortcut creation script and
the Start layout XML (--extras, or output.shortcuts and output.start_layout
in the settings file).

A configuration with problems asks for confirmation first; --force skips
the question.`,
	Example: `  # Export everything into the current directory
  kioskcfg export

  # Into a directory, including the optional files
  kioskcfg export -o ./out --extras

  # Just the document, to stdout
  kioskcfg export --kind xml --stdout`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportDir, "output", "o", "", "Output directory (default from settings, else the current directory)")
	exportCmd.Flags().StringVar(&exportKind, "kind", "", "Write a single file ("+strings.Join(export.Kinds, ", ")+")")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write the single file selected with --kind to stdout")
	exportCmd.Flags().BoolVar(&exportForce, "force", false, "Export without confirming problems")
	exportCmd.Flags().BoolVar(&exportExtras, "extras", false, "Also write the shortcut script and Start layout")
}

func runExport(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	cfg := p.Config()
	now := time.Now()

	if exportStdout {
		if exportKind == "" {
			return fmt.Errorf("--stdout requires --kind")
		}
		art, err := export.Render(cfg, exportKind, now)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), art.Content)
		return nil
	}

	dir := exportDir
	if dir == "" {
		dir = p.settings.Output.Dir
	}
	if dir == "" {
		dir = "."
	}

	p.printer.PrintHeader("EXPORT", "kioskcfg export",
		ui.Param{Key: "Configuration", Value: cfg.Summary()},
		ui.Param{Key: "Output", Value: dir},
	)

	progress := ui.NewProgress(fmt.Sprintf("Exporting %s...", p.path), "Validate configuration", "Write files")
	problems := kiosk.Validate(cfg)
	switch {
	case len(problems) == 0:
		progress.CompleteStep(1, "no problems")
	case exportForce:
		progress.SkipStep(1, fmt.Sprintf("%d problem(s) ignored", len(problems)))
	case ui.IsTerminal():
		ok, err := ui.ConfirmExport(p.printer, problems)
		if err != nil {
			return err
		}
		if !ok {
			p.printer.PrintWarning("Export cancelled")
			return nil
		}
		progress.SkipStep(1, fmt.Sprintf("%d problem(s) confirmed", len(problems)))
	default:
		p.printer.Println(ui.RenderExportWarning(problems, p.printer.Width()))
		progress.SkipStep(1, fmt.Sprintf("%d problem(s)", len(problems)))
	}

	var paths []string
	if exportKind != "" {
		var art export.Artifact
		art, err = export.Render(cfg, exportKind, now)
		if err == nil {
			if err = os.MkdirAll(dir, 0755); err == nil {
				path := filepath.Join(dir, art.Name)
				if err = export.WriteFile(path, art.Content); err == nil {
					logging.LogExport(art.Kind, path, len(art.Content))
					paths = append(paths, path)
				}
			}
		}
	} else {
		paths, err = export.Bundle(cfg, dir, export.BundleOptions{
			Shortcuts:   exportExtras || p.settings.Output.Shortcuts,
			StartLayout: exportExtras || p.settings.Output.StartLayout,
			Now:         now,
		})
	}
	if err != nil {
		progress.FailStep(2, "")
		p.printer.PrintProgress(progress)
		return p.Fail("Export failed", err)
	}
	progress.CompleteStep(2, fmt.Sprintf("%d file(s)", len(paths)))
	p.printer.PrintProgress(progress)
	p.printer.Newline()

	details := make([]ui.Param, 0, len(paths)+2)
	for _, path := range paths {
		details = append(details, ui.Param{Key: "Wrote", Value: path})
	}
	if slices.ContainsFunc(paths, func(path string) bool { return strings.HasSuffix(path, ".ps1") }) {
		details = append(details,
			ui.Param{Key: "Deploy", Value: "run the script as SYSTEM (PsExec: " + urls.PsExec + ")"},
			ui.Param{Key: "MDM", Value: urls.AssignedAccessCSP},
		)
	}
	p.printer.PrintSuccess(fmt.Sprintf("Exported %d file(s)", len(paths)), details...)
	return nil
}

// importCmd reads an existing configuration document
var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import an AssignedAccess XML document",
	Long: `Replace the configuration with one read from an AssignedAccess XML
document. Use - to read from stdin.

The configuration name and the auto-pin preference are kept. Anything the
document contains that cannot be represented is reported as a warning.`,
	Example: `  kioskcfg import AssignedAccess.xml

  # A document with only a multi-app profile for a user group
  kioskcfg import --assume-mode restricted intune.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&assumeMode, "assume-mode", "", "Mode to use for a multi-app profile (multi or restricted)")
}

func runImport(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}

	source := args[0]
	var data []byte
	if source == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return p.Fail("Import failed", fmt.Errorf("failed to read %s: %w", source, err))
	}

	doc := &codec.ImportDocument{Text: string(data), AssumeMode: kiosk.Mode(assumeMode), Source: source}
	if err := p.Apply("Imported "+filepath.Base(source), doc); err != nil {
		return err
	}

	if len(doc.Warnings) > 0 {
		details := make([]ui.Param, len(doc.Warnings))
		for i, w := range doc.Warnings {
			details[i] = ui.Param{Key: fmt.Sprintf("%d", i+1), Value: w}
		}
		p.printer.PrintWarning(fmt.Sprintf("%d part(s) of the document were not imported", len(doc.Warnings)), details...)
	}
	return nil
}

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List preset keys and scenarios",
	Long: `List the keys accepted by 'app common', 'pin common' and
'single --preset', and the scenarios of 'new'.

Presets come from the built-in tables unless presets.dir or
presets.base_url is set in the settings file.`,
	Args: cobra.NoArgs,
	RunE: runPresets,
}

func runPresets(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	catalog := p.Catalog(cmd.Context())
	out := cmd.OutOrStdout()

	section := func(title, usage string, keys []string) {
		fmt.Fprintf(out, "%s (%s):\n", title, usage)
		if len(keys) == 0 {
			fmt.Fprintln(out, "  (not available)")
		}
		for _, k := range keys {
			fmt.Fprintf(out, "  %s\n", k)
		}
		fmt.Fprintln(out)
	}

	section("Apps and groups", "kioskcfg app common KEY", catalog.AppKeys())
	section("Pins", "kioskcfg pin common KEY", catalog.PinKeys())
	section("Single apps", "kioskcfg single --preset KEY", catalog.SingleAppKeys())

	fmt.Fprintln(out, "Scenarios (kioskcfg new --scenario NAME):")
	for _, s := range presets.Scenarios {
		fmt.Fprintf(out, "  %-16s %s\n", s, s.Description())
	}
	return nil
}
