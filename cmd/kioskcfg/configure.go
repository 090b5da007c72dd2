package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/kioskcfg/internal/codec"
	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/presets"
	"github.com/muurk/kioskcfg/internal/ui"
	"github.com/muurk/kioskcfg/internal/urls"
)

// Configuration command flags
var (
	groupType       string
	regenerate      bool
	singlePreset    string
	singleURL       string
	singleFile      string
	singleKioskType string
	singleIdle      int
	singleAUMID     string
	singlePath      string
	singleArgs      string
	disableBreakout bool
)

func init() {
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(accountCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(singleCmd)
	rootCmd.AddCommand(breakoutCmd)
	rootCmd.AddCommand(explorerCmd)
}

var modeCmd = &cobra.Command{
	Use:   "mode single|multi|restricted",
	Short: "Set the kiosk type",
	Long: `Set the kiosk type.

  single      One app runs full screen
  multi       A restricted Start menu with a list of allowed apps
  restricted  Multi-app for user groups or all non-admin users

Leaving restricted mode resets a group or global account to auto-logon.`,
	Example:   `  kioskcfg mode multi`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(kiosk.ModeSingle), string(kiosk.ModeMulti), string(kiosk.ModeRestricted)},
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		return p.Apply("Kiosk type changed", kiosk.SetMode{Mode: kiosk.Mode(args[0])})
	},
}

// accountCmd sets the account binding
var accountCmd = &cobra.Command{
	Use:   "account auto|existing|group|global [NAME]",
	Short: "Set the account the kiosk runs as",
	Long: `Set the account the kiosk profile applies to.

  auto [DISPLAY NAME]  Windows creates a local account and signs in automatically
  existing NAME        An existing local, domain or Entra ID account
  group NAME           Members of a user group (restricted mode only)
  global               Every non-administrator user (restricted mode only)

Group types for --group-type: local, ad, azuread.`,
	Example: `  kioskcfg account auto "Front Desk"
  kioskcfg account existing 'CONTOSO\kiosk'
  kioskcfg account group "Kiosk Users" --group-type ad`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAccount,
}

func init() {
	accountCmd.Flags().StringVar(&groupType, "group-type", "local", "Group type (local, ad, azuread)")
}

func runAccount(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	name := ""
	if len(args) > 1 {
		name = args[1]
	}
	account, err := parseAccount(args[0], name, groupType)
	if err != nil {
		return p.Fail("Account not changed", err)
	}
	return p.Apply("Account changed", kiosk.SetAccount{Account: account})
}

// parseAccount builds an account binding from the command line.
func parseAccount(kind, name, group string) (kiosk.AccountBinding, error) {
	switch kiosk.AccountKind(strings.ToLower(kind)) {
	case kiosk.AccountAuto:
		return kiosk.AutoLogon(name), nil
	case kiosk.AccountExisting:
		return kiosk.ExistingAccount(name), nil
	case kiosk.AccountGroup:
		var typ kiosk.GroupType
		switch strings.ToLower(group) {
		case "", "local":
			typ = kiosk.GroupLocal
		case "ad":
			typ = kiosk.GroupAD
		case "azuread", "entra":
			typ = kiosk.GroupAzureAD
		default:
			return kiosk.AccountBinding{}, kiosk.NewInputError("groupType", fmt.Sprintf("unknown group type %q (expected local, ad or azuread)", group))
		}
		return kiosk.UserGroup(typ, name), nil
	case kiosk.AccountGlobal:
		return kiosk.GlobalProfile(), nil
	}
	return kiosk.AccountBinding{}, kiosk.NewInputError("kind", fmt.Sprintf("unknown account type %q (expected auto, existing, group or global)", kind))
}

var profileCmd = &cobra.Command{
	Use:   "profile [GUID]",
	Short: "Show or set the profile GUID",
	Long: `Show the profile GUID, set it, or generate a new one.

Braces are added to a bare GUID. Keep the GUID of a configuration that
is already deployed so devices update the existing profile.`,
	Example: `  kioskcfg profile
  kioskcfg profile --regenerate
  kioskcfg profile 9A2A490F-10F6-4764-974A-43B19E722C23`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProfile,
}

func init() {
	profileCmd.Flags().BoolVar(&regenerate, "regenerate", false, "Generate a new random GUID")
}

func runProfile(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	switch {
	case regenerate:
		return p.Apply("Generated a new profile GUID", kiosk.RegenerateProfileID{})
	case len(args) == 1:
		id := kiosk.NormalizeProfileID(args[0])
		if err := kiosk.ValidateProfileID(id); err != nil {
			return p.Fail("Profile GUID not changed", err)
		}
		return p.Apply("Profile GUID changed", kiosk.SetProfileID{ID: id})
	}
	fmt.Fprintln(cmd.OutOrStdout(), p.Config().ProfileID)
	return nil
}

// singleCmd sets the single-app definition
var singleCmd = &cobra.Command{
	Use:   "single",
	Short: "Set the app of a single-app kiosk",
	Long: `Set the app a single-app kiosk runs. Use one of:

  --preset KEY        A single-app preset (see 'kioskcfg presets')
  --url URL           Microsoft Edge opening a website
  --file PATH         Microsoft Edge opening a local file
  --aumid AUMID       A packaged (UWP) app
  --path PATH         A desktop (Win32) app, with optional --args

Edge options: --kiosk-type fullscreen|public-browsing, --idle-timeout MINUTES.
The breakout sequence is kept; see 'kioskcfg breakout'.`,
	Example: `  kioskcfg single --url https://intranet.contoso.com --kiosk-type public-browsing --idle-timeout 5
  kioskcfg single --aumid Microsoft.WindowsCalculator_8wekyb3d8bbwe!App
  kioskcfg single --path 'C:\Program Files\App\app.exe' --args=--fullscreen`,
	Args: cobra.NoArgs,
	RunE: runSingle,
}

func init() {
	singleCmd.Flags().StringVar(&singlePreset, "preset", "", "Single-app preset key")
	singleCmd.Flags().StringVar(&singleURL, "url", "", "Website opened by Edge")
	singleCmd.Flags().StringVar(&singleFile, "file", "", "Local file opened by Edge")
	singleCmd.Flags().StringVar(&singleKioskType, "kiosk-type", "", "Edge kiosk type (fullscreen, public-browsing)")
	singleCmd.Flags().IntVar(&singleIdle, "idle-timeout", 0, "Edge idle timeout in minutes (0 disables)")
	singleCmd.Flags().StringVar(&singleAUMID, "aumid", "", "App User Model ID of a packaged app")
	singleCmd.Flags().StringVar(&singlePath, "path", "", "Path of a desktop app")
	singleCmd.Flags().StringVar(&singleArgs, "args", "", "Arguments of a desktop app")
	singleCmd.MarkFlagsMutuallyExclusive("preset", "url", "file", "aumid", "path")
}

func runSingle(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}

	if singlePreset != "" {
		return p.Apply("Single app set", presets.ApplySingleAppPreset{Key: singlePreset}.With(p.Catalog(cmd.Context())))
	}

	app, err := singleAppFromFlags(cmd, p.Config().SingleApp)
	if err != nil {
		return p.Fail("Single app not changed", err,
			"Edge kiosk options: "+urls.EdgeKiosk,
			"Finding an app's AUMID: "+urls.FindAUMID,
		)
	}

	cmds := []kiosk.Command{kiosk.SetSingleApp{App: app}}
	if p.Config().Mode != kiosk.ModeSingle {
		cmds = append([]kiosk.Command{kiosk.SetMode{Mode: kiosk.ModeSingle}}, cmds...)
	}
	return p.Apply("Single app set", cmds...)
}

// singleAppFromFlags applies the changed flags to app.
func singleAppFromFlags(cmd *cobra.Command, app kiosk.SingleApp) (kiosk.SingleApp, error) {
	flags := cmd.Flags()
	switch {
	case flags.Changed("url"):
		app.Kind = kiosk.AppEdge
		app.Edge.Source = kiosk.SourceURL
		app.Edge.URL = singleURL
	case flags.Changed("file"):
		app.Kind = kiosk.AppEdge
		app.Edge.Source = kiosk.SourceFile
		app.Edge.FilePath = singleFile
	case flags.Changed("aumid"):
		app.Kind = kiosk.AppUWP
		app.AUMID = singleAUMID
	case flags.Changed("path"):
		app.Kind = kiosk.AppWin32
		app.Path = singlePath
	}

	if flags.Changed("args") {
		if app.Kind != kiosk.AppWin32 {
			return app, kiosk.NewInputError("args", "--args only applies to desktop apps")
		}
		app.Args = singleArgs
	}
	if flags.Changed("kiosk-type") || flags.Changed("idle-timeout") {
		if app.Kind != kiosk.AppEdge {
			return app, kiosk.NewInputError("kioskType", "--kiosk-type and --idle-timeout only apply to Edge")
		}
	}
	if flags.Changed("kiosk-type") {
		app.Edge.KioskType = kiosk.KioskType(singleKioskType)
	}
	if flags.Changed("idle-timeout") {
		app.Edge.IdleTimeoutMinutes = singleIdle
	}
	if app.Kind == kiosk.AppEdge && app.Edge.KioskType == "" {
		app.Edge.KioskType = kiosk.KioskFullscreen
	}
	return app, nil
}

var breakoutCmd = &cobra.Command{
	Use:   "breakout [SEQUENCE]",
	Short: "Show or set the breakout sequence",
	Long: `Set the key combination that exits a single-app kiosk to the sign-in
screen, or turn it off with --disable. Without arguments the current
sequence is shown.`,
	Example: `  kioskcfg breakout Ctrl+Alt+K
  kioskcfg breakout --disable`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBreakout,
}

func init() {
	breakoutCmd.Flags().BoolVar(&disableBreakout, "disable", false, "Turn the breakout sequence off")
}

func runBreakout(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	switch {
	case disableBreakout:
		return p.Apply("Breakout sequence disabled", kiosk.SetBreakout{})
	case len(args) == 1:
		seq := codec.ParseBreakout(args[0])
		if seq == nil {
			return p.Fail("Breakout sequence not changed", kiosk.NewInputError("key", "breakout key is required"))
		}
		return p.Apply("Breakout sequence set to "+seq.String(), kiosk.SetBreakout{Sequence: seq})
	}

	if b := p.Config().SingleApp.Breakout; b != nil {
		fmt.Fprintln(cmd.OutOrStdout(), b.String())
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "disabled")
	}
	return nil
}

var explorerCmd = &cobra.Command{
	Use:   "explorer none|downloads|removable|downloads-removable|all",
	Short: "Set File Explorer access",
	Long: `Set which locations File Explorer may open in a multi-app kiosk.

  none                 No access
  downloads            The Downloads folder
  removable            Removable drives
  downloads-removable  Downloads and removable drives
  all                  No restriction`,
	Args: cobra.ExactArgs(1),
	ValidArgs: []string{
		string(kiosk.ExplorerNone), string(kiosk.ExplorerDownloads), string(kiosk.ExplorerRemovable),
		string(kiosk.ExplorerDownloadsRemovable), string(kiosk.ExplorerAll),
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		err = p.Apply("File Explorer access changed", kiosk.SetFileExplorerAccess{Access: kiosk.FileExplorerAccess(args[0])})
		if err == nil && !p.Config().Mode.IsMultiApp() {
			p.printer.PrintWarning("File Explorer access only applies to multi-app kiosks",
				ui.Param{Key: "Switch", Value: "kioskcfg mode multi"},
			)
		}
		return err
	},
}
