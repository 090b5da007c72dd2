// Kioskcfg builds Windows Assigned Access (kiosk) configurations.
//
// A configuration is kept in a YAML project file and edited with
// subcommands, the full-screen terminal editor or the browser editor
// started by 'kioskcfg serve'. The export command writes the
// AssignedAccess XML document together with a deployment script and a
// Markdown summary.
//
// Usage:
//
//	kioskcfg [command] [flags]
//
// Running without arguments in a terminal opens the editor.
// See 'kioskcfg --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/muurk/kioskcfg/internal/config"
	"github.com/muurk/kioskcfg/internal/logging"
	"github.com/muurk/kioskcfg/internal/ui"
	"github.com/muurk/kioskcfg/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// Global flags
var (
	projectPath string
	logLevel    string
)

var rootCmd = &cobra.Command{
	Use:   "kioskcfg",
	Short: "Windows Assigned Access Configuration Builder",
	Long: `Build Windows Assigned Access (kiosk) configurations.

Configurations are stored in a YAML project file (kiosk.yaml by default)
and can be edited with subcommands, in the terminal editor, or in the
browser editor started by 'kioskcfg serve'. The export command writes
the AssignedAccess XML document, a PowerShell deployment script and a
Markdown summary.

If no command is specified in a terminal, the editor will launch.`,
	Version: version.Version,
	Example: `  # Start a configuration from a scenario
  kioskcfg new --name "Front Desk" --scenario multiApp

  # Add apps and pins
  kioskcfg app common calculator
  kioskcfg pin common osk

  # Check it and write the deployment files
  kioskcfg validate
  kioskcfg export -o ./out`,
	SilenceErrors:     true,
	PersistentPreRunE: initLogging,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: open the editor when attached to a terminal
		if !ui.IsTerminal() {
			return cmd.Help()
		}
		return runEdit(cmd, args)
	},
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVarP(&projectPath, "project", "p", config.DefaultProjectFile, "Project file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when empty")

	rootCmd.AddCommand(versionCmd)
}

// initLogging applies --log-level, then the settings file, then
// KIOSKCFG_LOG_LEVEL.
func initLogging(cmd *cobra.Command, args []string) error {
	level := logLevel
	if level == "" {
		if s := loadSettings(); s.Log.Level != "" {
			level = s.Log.Level
		}
	}
	if level == "" {
		return logging.InitializeFromEnv()
	}
	return logging.Initialize(level)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "kioskcfg %s (commit: %s)\n", version.Version, version.Commit)
	},
}
