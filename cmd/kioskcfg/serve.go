package main

import (
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/kioskcfg/internal/discovery"
	"github.com/muurk/kioskcfg/internal/kiosk"
	"github.com/muurk/kioskcfg/internal/logging"
	"github.com/muurk/kioskcfg/internal/server"
	"github.com/muurk/kioskcfg/internal/ui"
	"github.com/muurk/kioskcfg/internal/version"
	"github.com/muurk/kioskcfg/internal/wizard/tui"
)

// Server and discovery command flags
var (
	serveHost      string
	servePort      int
	serveAdvertise bool
	serveName      string
	scanTimeout    int
	pullKey        string
	pushKey        string
	editDiscover   bool
)

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(editCmd)
}

// serveCmd starts the browser editor
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the browser editor",
	Long: `Start the browser editor for the project file.

The page shows the form, the generated document and its problems, and
updates live over a WebSocket. Every change is saved to the project file.

With --advertise the editor is announced over mDNS so 'kioskcfg discover'
and 'kioskcfg edit --discover' on other machines can find it.

Host, port and advertisement default to the server section of the settings
file.`,
	Example: `  # Local editor on http://127.0.0.1:8765
  kioskcfg serve

  # Reachable from the network and announced over mDNS
  kioskcfg serve --host 0.0.0.0 --advertise

  # Pick a free port
  kioskcfg serve --port 0`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen address (default from settings, 127.0.0.1)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (default from settings, 8765; 0 with --port picks a free one)")
	serveCmd.Flags().BoolVar(&serveAdvertise, "advertise", false, "Announce the editor over mDNS")
	serveCmd.Flags().StringVar(&serveName, "name", "", "mDNS instance name (default \"kioskcfg on HOSTNAME\")")
}

func runServe(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}

	host := p.settings.Server.Host
	if cmd.Flags().Changed("host") {
		host = serveHost
	}
	port := p.settings.Server.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}
	advertise := p.settings.Server.Advertise || serveAdvertise

	srv := server.New(&server.Config{
		Host:    host,
		Port:    port,
		Catalog: p.Catalog(cmd.Context()),
	}, p.store)

	addr, err := srv.Listen()
	if err != nil {
		return p.Fail("Cannot start editor", err, "Choose another port with --port")
	}

	// Save every change made in the browser
	unsubscribe := p.store.Subscribe(func(cfg kiosk.Configuration) {
		if err := p.SaveConfig(&cfg); err != nil {
			logging.Error("Failed to save project", zap.String("path", p.path), zap.Error(err))
		}
	})
	defer unsubscribe()

	details := []ui.Param{
		{Key: "Open", Value: editorURL(addr)},
		{Key: "Project", Value: p.path},
		{Key: "Configuration", Value: p.Config().Summary()},
	}

	if advertise {
		name := serveName
		if name == "" {
			name = discovery.InstanceName()
		}
		adv, err := discovery.Advertise(name, addr.(*net.TCPAddr).Port, version.Version, p.Config())
		if err != nil {
			p.printer.PrintWarning("Editor not announced over mDNS", ui.Param{Key: "Error", Value: err.Error()})
		} else {
			defer adv.Shutdown()
			stopUpdates := p.store.Subscribe(adv.Update)
			defer stopUpdates()
			details = append(details, ui.Param{Key: "mDNS", Value: name})
		}
	}

	p.printer.PrintSuccess("Editor running (Ctrl+C to stop)", details...)
	return srv.Start(cmd.Context())
}

// editorURL returns the address to open in a browser. Wildcard listen
// addresses are shown as localhost.
func editorURL(addr net.Addr) string {
	tcp, ok := addr.(*net.TCPAddr)
	if !ok {
		return "http://" + addr.String()
	}
	host := tcp.IP.String()
	if tcp.IP == nil || tcp.IP.IsUnspecified() {
		host = "localhost"
	}
	return fmt.Sprintf("http://%s/", net.JoinHostPort(host, fmt.Sprintf("%d", tcp.Port)))
}

// discoverCmd finds running editors
var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find browser editors on the network",
	Long: `Find editors started with 'kioskcfg serve --advertise' using mDNS/DNS-SD.

--pull copies the configuration of an editor into the project file and
--push sends the project file to an editor. Both take the instance name,
host name, IP address or profile GUID shown by the scan, or HOST:PORT.`,
	Example: `  # Scan for 5 seconds (default)
  kioskcfg discover

  # Longer scan for slow networks
  kioskcfg discover --timeout 15

  # Copy an editor's configuration
  kioskcfg discover --pull "kioskcfg on reception"

  # Send the project to an editor by address
  kioskcfg discover --push 192.168.1.20:8765`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().IntVar(&scanTimeout, "timeout", int(discovery.DefaultScanTimeout/time.Second), "Scan timeout in seconds")
	discoverCmd.Flags().StringVar(&pullKey, "pull", "", "Copy the configuration of this editor into the project")
	discoverCmd.Flags().StringVar(&pushKey, "push", "", "Send the project configuration to this editor")
	discoverCmd.MarkFlagsMutuallyExclusive("pull", "push")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	timeout := time.Duration(scanTimeout) * time.Second
	out := cmd.OutOrStdout()

	if pullKey != "" || pushKey != "" {
		key := pullKey + pushKey
		inst, err := findEditor(cmd, key, timeout)
		if err != nil {
			return p.Fail("Editor not found", err,
				"Run 'kioskcfg discover' to list editors, or pass HOST:PORT")
		}
		client := server.NewClient(inst.BaseURL())

		if pullKey != "" {
			cfg, err := client.State(cmd.Context())
			if err != nil {
				return p.Fail("Pull failed", err)
			}
			return p.Apply("Pulled configuration from "+inst.BaseURL(), kiosk.Replace{Config: cfg})
		}

		if !p.exists {
			return p.Fail("Push failed", fmt.Errorf("%s does not exist", p.path))
		}
		preview, err := client.Push(cmd.Context(), p.Config())
		if err != nil {
			return p.Fail("Push failed", err)
		}
		p.printer.PrintSuccess("Pushed configuration to "+inst.BaseURL(),
			ui.Param{Key: "Problems", Value: fmt.Sprintf("%d", len(preview.Errors))},
		)
		return nil
	}

	fmt.Fprintf(out, "Scanning for editors (timeout: %ds)...\n\n", scanTimeout)
	instances, err := discovery.Scan(cmd.Context(), timeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(instances) == 0 {
		fmt.Fprintln(out, "No editors found.")
		fmt.Fprintln(out, "\nTroubleshooting:")
		fmt.Fprintln(out, "  - Start the editor with 'kioskcfg serve --host 0.0.0.0 --advertise'")
		fmt.Fprintln(out, "  - Check that both machines are on the same network")
		fmt.Fprintln(out, "  - Multicast DNS (UDP port 5353) must not be blocked by a firewall")
		fmt.Fprintln(out, "  - Try increasing --timeout for slower networks")
		return nil
	}

	fmt.Fprintf(out, "Found %d editor(s):\n\n", len(instances))
	for i, inst := range instances {
		fmt.Fprintf(out, "%d. %s\n", i+1, inst.Name)
		fmt.Fprintf(out, "   Address:  %s\n", inst.BaseURL())
		if name := inst.ConfigName(); name != "" {
			fmt.Fprintf(out, "   Editing:  %s\n", name)
		}
		if id := inst.ProfileID(); id != "" {
			fmt.Fprintf(out, "   Profile:  %s\n", id)
		}
		if v := inst.Version(); v != "" {
			fmt.Fprintf(out, "   Version:  %s\n", v)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "Use 'kioskcfg discover --pull NAME' to copy a configuration")
	fmt.Fprintln(out, "Use 'kioskcfg edit --discover' to edit one in the terminal")
	return nil
}

// findEditor resolves key to an editor. Addresses are used directly;
// anything else is looked up over mDNS.
func findEditor(cmd *cobra.Command, key string, timeout time.Duration) (*discovery.Instance, error) {
	if looksLikeAddress(key) {
		return tui.ParseAddress(key)
	}
	scanner := discovery.NewScanner()
	scanner.Timeout = timeout
	return scanner.Find(cmd.Context(), key)
}

// looksLikeAddress reports whether key is an IP address or HOST:PORT.
func looksLikeAddress(key string) bool {
	key = strings.TrimSuffix(strings.TrimPrefix(key, "http://"), "/")
	if net.ParseIP(key) != nil {
		return true
	}
	if _, port, err := net.SplitHostPort(key); err == nil && port != "" {
		return true
	}
	return false
}

// editCmd opens the terminal editor
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit the configuration in the terminal",
	Long: `Open the full-screen terminal editor on the project file, next to a
live preview of the generated document. 's' saves the project.

With --discover the editor starts by listing browser editors on the
network; the chosen editor's configuration is edited and 's' sends it back.`,
	Example: `  kioskcfg edit
  kioskcfg edit -p reception.yaml
  kioskcfg edit --discover`,
	Args: cobra.NoArgs,
	RunE: runEdit,
}

func init() {
	editCmd.Flags().BoolVar(&editDiscover, "discover", false, "Pick a browser editor on the network to edit")
}

func runEdit(cmd *cobra.Command, args []string) error {
	p, err := openProject(cmd)
	if err != nil {
		return err
	}
	if !ui.IsTerminal() {
		return fmt.Errorf("the editor needs an interactive terminal")
	}

	err = tui.Run(tui.Options{
		Store:    p.store,
		Catalog:  p.Catalog(cmd.Context()),
		Source:   p.path,
		Save:     p.SaveConfig,
		Discover: editDiscover,
	})
	if err != nil {
		return fmt.Errorf("editor failed: %w", err)
	}
	return nil
}
