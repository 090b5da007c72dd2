package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/kioskcfg/internal/codec"
	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/presets"
	"github.com/muurk/kioskcfg/internal/urls"
)

// App and pin command flags
var (
	appKind         string
	appNoPin        bool
	appNoLaunch     bool
	autoLaunchNone  bool
	launchURL       string
	launchFile      string
	launchKioskType string
	launchIdle      int
	launchArgs      string

	pinName           string
	pinTarget         string
	pinArgs           string
	pinWorkingDir     string
	pinIcon           string
	pinSystemShortcut string
	pinAUMID          string
	pinTileID         string
	pinURL            string
	pinFile           string
	pinMode           string
)

func init() {
	rootCmd.AddCommand(appCmd)
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(taskbarCmd)

	appCmd.AddCommand(appAddCmd, appRemoveCmd, appCommonCmd, appAutoLaunchCmd)
	pinCmd.AddCommand(pinAddCmd, pinCommonCmd, pinTileCmd, pinEditCmd, pinRemoveCmd, pinMoveCmd, pinSyncCmd, pinAutoPinCmd)
	taskbarCmd.AddCommand(taskbarShowCmd, taskbarSyncCmd, taskbarAddCmd, taskbarRemoveCmd, taskbarMoveCmd)
}

var appCmd = &cobra.Command{
	Use:   "app",
	Short: "Edit the allowed apps of a multi-app kiosk",
	Long: `Edit the list of apps a multi-app kiosk may run.

Apps are referred to by their position (see 'kioskcfg show --format compact')
or by their AUMID or path.`,
}

var appAddCmd = &cobra.Command{
	Use:   "add AUMID|PATH",
	Short: "Allow an app",
	Long: `Allow an app by AUMID or executable path. The kind is guessed from the
value unless --kind is given. Allowing Microsoft Edge also allows its
helper executables.`,
	Example: `  kioskcfg app add 'C:\Windows\System32\notepad.exe'
  kioskcfg app add Microsoft.WindowsCalculator_8wekyb3d8bbwe!App
  kioskcfg app add 'C:\Tools\agent.exe' --no-pin --no-autolaunch`,
	Args: cobra.ExactArgs(1),
	RunE: runAppAdd,
}

func init() {
	appAddCmd.Flags().StringVar(&appKind, "kind", "", "Identifier kind (aumid, path)")
	appAddCmd.Flags().BoolVar(&appNoPin, "no-pin", false, "Never pin this app automatically")
	appAddCmd.Flags().BoolVar(&appNoLaunch, "no-autolaunch", false, "Never offer this app for auto-launch")
}

func runAppAdd(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	kind := kiosk.AllowedAppKind(appKind)
	switch kind {
	case "":
		kind = kiosk.GuessAppKind(args[0])
	case kiosk.AppKindAUMID, kiosk.AppKindPath:
	default:
		return p.Fail("App not added", kiosk.NewInputError("kind", fmt.Sprintf("unknown app kind %q (expected aumid or path)", appKind)))
	}

	app := kiosk.AllowedApp{Kind: kind, Value: args[0], SkipAutoPin: appNoPin, SkipAutoLaunch: appNoLaunch}
	return p.Apply("Allowed "+kiosk.AppLabel(args[0]), withMultiMode(p, presets.NewAddApp(app, p.Catalog(cmd.Context())))...)
}

// withMultiMode switches a single-app configuration to multi-app before cmds.
func withMultiMode(p *project, cmds ...kiosk.Command) []kiosk.Command {
	if p.Config().Mode.IsMultiApp() {
		return cmds
	}
	return append([]kiosk.Command{kiosk.SetMode{Mode: kiosk.ModeMulti}}, cmds...)
}

var appRemoveCmd = &cobra.Command{
	Use:     "remove POSITION|VALUE",
	Aliases: []string{"rm"},
	Short:   "Remove an allowed app",
	Long: `Remove an allowed app. Removing the auto-launch app turns auto-launch
off. Run 'kioskcfg pin sync' to drop its automatic pin.`,
	Example: `  kioskcfg app remove 2
  kioskcfg app remove 'C:\Windows\System32\notepad.exe'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		cfg := p.Config()
		index, err := resolveIndex(args[0], len(cfg.AllowedApps), cfg.IndexOfApp)
		if err != nil {
			return p.Fail("App not removed", err)
		}
		label := kiosk.AppLabel(cfg.AllowedApps[index].Value)
		return p.Apply("Removed "+label, kiosk.RemoveApp{Index: index})
	},
}

var appCommonCmd = &cobra.Command{
	Use:   "common KEY...",
	Short: "Allow apps from the presets",
	Long: `Allow one or more preset apps or app groups. See 'kioskcfg presets'
for the keys.`,
	Example: `  kioskcfg app common calculator osk
  kioskcfg app common office`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		catalog := p.Catalog(cmd.Context())
		cmds := make([]kiosk.Command, 0, len(args))
		for _, key := range args {
			cmds = append(cmds, presets.AddCommonApp{Key: key}.With(catalog))
		}
		return p.Apply("Allowed "+strings.Join(args, ", "), withMultiMode(p, cmds...)...)
	},
}

var appAutoLaunchCmd = &cobra.Command{
	Use:   "autolaunch [POSITION|VALUE]",
	Short: "Choose the app that starts after sign-in",
	Long: `Choose the allowed app that starts automatically after sign-in, or
show the Start menu instead with --none.

For Microsoft Edge, --url or --file sets the page it opens and
--kiosk-type and --idle-timeout its kiosk mode. For other apps --args sets
the command line arguments.`,
	Example: `  kioskcfg app autolaunch 1 --url https://intranet.contoso.com --kiosk-type public-browsing
  kioskcfg app autolaunch 'C:\Windows\System32\notepad.exe' --args=C:\\Kiosk\\readme.txt
  kioskcfg app autolaunch --none`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAutoLaunch,
}

func init() {
	f := appAutoLaunchCmd.Flags()
	f.BoolVar(&autoLaunchNone, "none", false, "Turn auto-launch off")
	f.StringVar(&launchURL, "url", "", "Website Edge opens")
	f.StringVar(&launchFile, "file", "", "Local file Edge opens")
	f.StringVar(&launchKioskType, "kiosk-type", "", "Edge kiosk type (fullscreen, public-browsing)")
	f.IntVar(&launchIdle, "idle-timeout", 0, "Edge idle timeout in minutes")
	f.StringVar(&launchArgs, "args", "", "Arguments of a non-Edge app")
	appAutoLaunchCmd.MarkFlagsMutuallyExclusive("url", "file")
}

func runAutoLaunch(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	cfg := p.Config()

	if autoLaunchNone {
		return p.Apply("Auto-launch turned off", kiosk.SetAutoLaunch{})
	}

	var cmds []kiosk.Command
	app, ok := cfg.AutoLaunchApp()
	if len(args) == 1 {
		index, err := resolveIndex(args[0], len(cfg.AllowedApps), cfg.IndexOfApp)
		if err != nil {
			return p.Fail("Auto-launch not changed", err)
		}
		cmds = append(cmds, kiosk.SetAutoLaunch{Index: kiosk.IntPtr(index)})
		app, ok = cfg.AllowedApps[index], true
	}
	if !ok {
		return p.Fail("Auto-launch not changed", kiosk.NewInputError("index", "no auto-launch app is selected"))
	}

	flags := cmd.Flags()
	if kiosk.IsEdgeApp(app.Value) {
		if flags.Changed("args") {
			return p.Fail("Auto-launch not changed", kiosk.NewInputError("args", "use --url or --file for Edge"))
		}
		edge := cfg.AutoLaunchEdge
		changed := false
		if flags.Changed("url") {
			edge.Source, edge.URL, changed = kiosk.SourceURL, launchURL, true
		}
		if flags.Changed("file") {
			edge.Source, edge.FilePath, changed = kiosk.SourceFile, launchFile, true
		}
		if flags.Changed("kiosk-type") {
			edge.KioskType, changed = kiosk.KioskType(launchKioskType), true
		}
		if flags.Changed("idle-timeout") {
			edge.IdleTimeoutMinutes, changed = launchIdle, true
		}
		if changed {
			cmds = append(cmds, kiosk.SetAutoLaunchEdge{Settings: edge})
		}
	} else {
		if flags.Changed("url") || flags.Changed("file") || flags.Changed("kiosk-type") || flags.Changed("idle-timeout") {
			return p.Fail("Auto-launch not changed", kiosk.NewInputError("url", "Edge options only apply when Edge is the auto-launch app"),
				"Edge kiosk options: "+urls.EdgeKiosk)
		}
		if flags.Changed("args") {
			cmds = append(cmds, kiosk.SetAutoLaunchArgs{Args: launchArgs})
		}
	}

	if len(cmds) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), kiosk.AppLabel(app.Value))
		return nil
	}
	return p.Apply("Auto-launch set to "+kiosk.AppLabel(app.Value), cmds...)
}

var pinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Edit the Start menu pins",
	Long: `Edit the Start menu pins of a multi-app kiosk.

Pins are referred to by their position or their name. With auto-pin on,
allowed apps get a pin automatically.

Start layout reference: ` + urls.StartLayout,
}

// bindPinFlags registers the flags that describe a pin.
func bindPinFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&pinTarget, "target", "", "Shortcut target path")
	f.StringVar(&pinArgs, "args", "", "Shortcut arguments")
	f.StringVar(&pinWorkingDir, "working-dir", "", "Shortcut working directory")
	f.StringVar(&pinIcon, "icon", "", "Shortcut icon path")
	f.StringVar(&pinSystemShortcut, "system-shortcut", "", "Existing .lnk to pin instead of creating one")
	f.StringVar(&pinAUMID, "aumid", "", "Pin a packaged app by AUMID")
}

// pinFromFlags builds a new pin named name from the pin flags.
func pinFromFlags(name string) kiosk.Pin {
	if pinAUMID != "" {
		return kiosk.Pin{Name: name, Kind: kiosk.PinPackagedAppID, PackagedAppID: pinAUMID}
	}
	return kiosk.Pin{
		Name:           name,
		Kind:           kiosk.PinDesktopAppLink,
		Target:         pinTarget,
		Args:           pinArgs,
		WorkingDir:     pinWorkingDir,
		IconPath:       pinIcon,
		SystemShortcut: pinSystemShortcut,
	}
}

var pinAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a Start pin",
	Long: `Add a Start pin. A desktop shortcut needs --target or --system-shortcut;
a packaged app needs --aumid.`,
	Example: `  kioskcfg pin add Notepad --target 'C:\Windows\System32\notepad.exe'
  kioskcfg pin add Calculator --aumid Microsoft.WindowsCalculator_8wekyb3d8bbwe!App`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		return p.Apply("Pinned "+args[0], withMultiMode(p, kiosk.AddPin{Pin: pinFromFlags(args[0])})...)
	},
}

func init() {
	bindPinFlags(pinAddCmd)
	bindPinFlags(taskbarAddCmd)

	bindPinFlags(pinEditCmd)
	pinEditCmd.Flags().StringVar(&pinName, "name", "", "New pin name")
	pinEditCmd.Flags().StringVar(&pinTileID, "tile-id", "", "Tile id of an Edge tile")
	pinEditCmd.Flags().StringVar(&pinURL, "url", "", "Website of an Edge tile")
	pinEditCmd.Flags().StringVar(&pinFile, "file", "", "Local file of an Edge tile")

	pinCommonCmd.Flags().StringVar(&pinMode, "mode", "normal", "Browser pin mode (normal, private, kioskFullscreen, kioskPublic)")
	pinCommonCmd.Flags().StringVar(&pinURL, "url", "", "Website of a kiosk browser pin")
	pinCommonCmd.Flags().StringVar(&pinFile, "file", "", "Local file of a kiosk browser pin")

	pinTileCmd.Flags().StringVar(&pinURL, "url", "", "Website the tile opens")
	pinTileCmd.Flags().StringVar(&pinFile, "file", "", "Local file the tile opens")
	pinTileCmd.Flags().StringVar(&pinTileID, "tile-id", "", "Tile id (generated from the name when empty)")
}

var pinCommonCmd = &cobra.Command{
	Use:   "common KEY",
	Short: "Add a Start pin from the presets",
	Long: `Add a preset pin. See 'kioskcfg presets' for the keys.

Browser pins (edge, chrome, firefox) can open a private window
(--mode private) or a kiosk window on a website or local file
(--mode kioskFullscreen|kioskPublic with --url or --file).`,
	Example: `  kioskcfg pin common osk
  kioskcfg pin common edge --mode kioskPublic --url https://www.contoso.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		mode := presets.BrowserMode(pinMode)
		if pinMode == "normal" {
			mode = presets.BrowserNormal
		}
		source := kiosk.SourceURL
		if pinFile != "" {
			source = kiosk.SourceFile
		}
		c := presets.AddCommonPin{Key: args[0], Mode: mode, Source: source, URL: pinURL, FilePath: pinFile}
		return p.Apply("Pinned "+args[0], withMultiMode(p, c.With(p.Catalog(cmd.Context())))...)
	},
}

var pinTileCmd = &cobra.Command{
	Use:   "tile NAME",
	Short: "Pin a website as an Edge tile",
	Example: `  kioskcfg pin tile Intranet --url https://intranet.contoso.com
  kioskcfg pin tile Manual --file 'C:\Kiosk\manual.pdf'`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		source := kiosk.SourceURL
		if pinFile != "" {
			source = kiosk.SourceFile
		}
		c := presets.AddEdgeSecondaryTile{Name: args[0], Source: source, URL: pinURL, FilePath: pinFile, TileID: pinTileID}
		return p.Apply("Pinned "+args[0], withMultiMode(p, c)...)
	},
}

var pinEditCmd = &cobra.Command{
	Use:   "edit POSITION|NAME",
	Short: "Change a Start pin",
	Long: `Change the fields of a Start pin. Only the given flags change; the pin
kind stays the same.`,
	Example: `  kioskcfg pin edit Notepad --args C:\\Kiosk\\notes.txt
  kioskcfg pin edit 3 --name "Intranet" --url https://intranet.contoso.com`,
	Args: cobra.ExactArgs(1),
	RunE: runPinEdit,
}

func runPinEdit(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	cfg := p.Config()
	index, err := resolveIndex(args[0], len(cfg.StartPins), cfg.IndexOfPin)
	if err != nil {
		return p.Fail("Pin not changed", err)
	}

	pin := cfg.StartPins[index]
	flags := cmd.Flags()
	set := func(name string, dst *string, value string) {
		if flags.Changed(name) {
			*dst = value
		}
	}
	set("name", &pin.Name, pinName)
	set("target", &pin.Target, pinTarget)
	set("args", &pin.Args, pinArgs)
	set("working-dir", &pin.WorkingDir, pinWorkingDir)
	set("icon", &pin.IconPath, pinIcon)
	set("system-shortcut", &pin.SystemShortcut, pinSystemShortcut)
	set("aumid", &pin.PackagedAppID, pinAUMID)
	set("tile-id", &pin.TileID, pinTileID)
	if flags.Changed("url") {
		pin.Args = codec.BuildLaunchURL(kiosk.SourceURL, pinURL, "", "")
	}
	if flags.Changed("file") {
		pin.Args = codec.BuildLaunchURL(kiosk.SourceFile, "", pinFile, "")
	}

	return p.Apply("Changed pin "+pin.Name, kiosk.EditPin{Index: index, Pin: pin})
}

var pinRemoveCmd = &cobra.Command{
	Use:     "remove POSITION|NAME",
	Aliases: []string{"rm"},
	Short:   "Remove a Start pin",
	Long: `Remove a Start pin. An automatic pin stays removed when the pins are
synchronised again.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		cfg := p.Config()
		index, err := resolveIndex(args[0], len(cfg.StartPins), cfg.IndexOfPin)
		if err != nil {
			return p.Fail("Pin not removed", err)
		}
		return p.Apply("Removed pin "+cfg.StartPins[index].Name, kiosk.RemovePin{Index: index})
	},
}

var pinMoveCmd = &cobra.Command{
	Use:   "move POSITION|NAME up|down [COUNT]",
	Short: "Reorder a Start pin",
	Example: `  kioskcfg pin move Calculator up
  kioskcfg pin move 5 down 2`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		cfg := p.Config()
		index, err := resolveIndex(args[0], len(cfg.StartPins), cfg.IndexOfPin)
		if err != nil {
			return p.Fail("Pin not moved", err)
		}
		delta, err := parseDelta(args[1:])
		if err != nil {
			return p.Fail("Pin not moved", err)
		}
		return p.Apply("Moved pin "+cfg.StartPins[index].Name, kiosk.MovePin{Index: index, Delta: delta})
	},
}

// parseDelta reads "up|down [COUNT]" into a signed offset.
func parseDelta(args []string) (int, error) {
	count := 1
	if len(args) > 1 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n < 1 {
			return 0, kiosk.NewInputError("count", fmt.Sprintf("count must be a positive number, got %q", args[1]))
		}
		count = n
	}
	switch strings.ToLower(args[0]) {
	case "up":
		return -count, nil
	case "down":
		return count, nil
	}
	return 0, kiosk.NewInputError("direction", fmt.Sprintf("expected up or down, got %q", args[0]))
}

var pinSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Recreate the automatic pins of the allowed apps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		return p.Apply("Synchronised automatic pins", kiosk.SyncAutoPins{})
	},
}

var pinAutoPinCmd = &cobra.Command{
	Use:   "autopin on|off",
	Short: "Pin allowed apps automatically",
	Long: `Turn pin-on-add on or off. When on, every allowed app gets a Start pin
unless it is a helper or was unpinned by hand.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		on, err := parseOnOff(args[0])
		if err != nil {
			return p.Fail("Auto-pin not changed", err)
		}
		return p.Apply("Auto-pin turned "+onOffLabel(on), kiosk.SetAutoPin{Enabled: on})
	},
}

var taskbarCmd = &cobra.Command{
	Use:   "taskbar",
	Short: "Edit the taskbar",
	Long: `Show or hide the taskbar and edit its pins. With sync on, the taskbar
mirrors the Start pins and cannot be edited directly.

Taskbar layout reference: ` + urls.TaskbarLayout,
}

var taskbarShowCmd = &cobra.Command{
	Use:   "show on|off",
	Short: "Show or hide the taskbar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		on, err := parseOnOff(args[0])
		if err != nil {
			return p.Fail("Taskbar not changed", err)
		}
		title := "Taskbar hidden"
		if on {
			title = "Taskbar shown"
		}
		return p.Apply(title, kiosk.SetShowTaskbar{Show: on})
	},
}

var taskbarSyncCmd = &cobra.Command{
	Use:   "sync on|off",
	Short: "Mirror the Start pins on the taskbar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		on, err := parseOnOff(args[0])
		if err != nil {
			return p.Fail("Taskbar not changed", err)
		}
		return p.Apply("Taskbar sync turned "+onOffLabel(on), kiosk.SetTaskbarSync{Enabled: on})
	},
}

var taskbarAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a taskbar pin",
	Example: `  kioskcfg taskbar add Notepad --target 'C:\Windows\System32\notepad.exe'
  kioskcfg taskbar add Edge --aumid Microsoft.MicrosoftEdge.Stable_8wekyb3d8bbwe!App`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		return p.Apply("Added "+args[0]+" to the taskbar", kiosk.AddTaskbarPin{Pin: pinFromFlags(args[0])})
	},
}

var taskbarRemoveCmd = &cobra.Command{
	Use:     "remove POSITION|NAME",
	Aliases: []string{"rm"},
	Short:   "Remove a taskbar pin",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		cfg := p.Config()
		index, err := resolveIndex(args[0], len(cfg.TaskbarPins), taskbarLookup(cfg))
		if err != nil {
			return p.Fail("Taskbar pin not removed", err)
		}
		return p.Apply("Removed "+cfg.TaskbarPins[index].Name+" from the taskbar", kiosk.RemoveTaskbarPin{Index: index})
	},
}

var taskbarMoveCmd = &cobra.Command{
	Use:   "move POSITION|NAME up|down [COUNT]",
	Short: "Reorder a taskbar pin",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := openProject(cmd)
		if err != nil {
			return err
		}
		cfg := p.Config()
		index, err := resolveIndex(args[0], len(cfg.TaskbarPins), taskbarLookup(cfg))
		if err != nil {
			return p.Fail("Taskbar pin not moved", err)
		}
		delta, err := parseDelta(args[1:])
		if err != nil {
			return p.Fail("Taskbar pin not moved", err)
		}
		return p.Apply("Moved taskbar pin "+cfg.TaskbarPins[index].Name, kiosk.MoveTaskbarPin{Index: index, Delta: delta})
	},
}

// taskbarLookup finds taskbar pins by name, ignoring case.
func taskbarLookup(cfg *kiosk.Configuration) func(string) int {
	return func(name string) int {
		for i, pin := range cfg.TaskbarPins {
			if strings.EqualFold(pin.Name, name) {
				return i
			}
		}
		return -1
	}
}

func onOffLabel(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
