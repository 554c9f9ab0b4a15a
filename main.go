package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ChestnutLUO/chromium-certificate/internal/config"
	"github.com/ChestnutLUO/chromium-certificate/internal/electron"
	"github.com/ChestnutLUO/chromium-certificate/internal/inspect"
	"github.com/ChestnutLUO/chromium-certificate/internal/logging"
	"github.com/ChestnutLUO/chromium-certificate/internal/report"
	"github.com/ChestnutLUO/chromium-certificate/internal/scanner"
	"github.com/ChestnutLUO/chromium-certificate/internal/ui"
	"github.com/ChestnutLUO/chromium-certificate/internal/watch"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// Version info (set by ldflags)
var (
	version   = "dev"
	buildTime = "unknown"
)

// cli carries flag values shared by every command
type cli struct {
	configPath string
	appsDir    string
	output     string
	debug      bool
	watch      bool

	// Overridable for tests
	stdout      io.Writer
	interactive func() bool
}

// runtime is what a command needs after flags and config are resolved
type runtime struct {
	cfg     *config.Config
	logger  *zap.Logger
	scanner *scanner.Scanner
	format  report.Format
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, interactive: isTerminal}

	root := &cobra.Command{
		Use:   "chromium-certificate",
		Short: "Find Chromium and Electron based apps on this Mac",
		Long: `chromium-certificate scans the applications directory for bundles that embed
Chromium or Electron and flags Electron versions affected by the window-server
performance issue.

Without a subcommand it opens an interactive list when attached to a terminal,
and prints a table otherwise.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          c.runRoot,
	}
	root.SetOut(stdout)
	root.SetVersionTemplate(fmt.Sprintf("chromium-certificate {{.Version}} (built %s)\n", buildTime))

	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "config file (default "+config.ConfigPath()+")")
	pf.StringVarP(&c.appsDir, "dir", "d", "", "applications directory to scan")
	pf.StringVarP(&c.output, "output", "o", "", "output format: table, json or yaml")
	pf.BoolVar(&c.debug, "debug", false, "enable debug logging")
	root.Flags().BoolVarP(&c.watch, "watch", "w", false, "rescan when the applications directory changes")

	root.AddCommand(
		c.scanCmd(),
		c.countCmd(),
		c.namesCmd(),
		c.groupsCmd(),
		c.checkVersionCmd(),
		c.doctorCmd(),
		c.configCmd(),
		c.versionCmd(),
	)
	return root
}

// setup resolves config, flags and logger. The TUI logs only to a file.
func (c *cli) setup(tui bool) (*runtime, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.appsDir != "" {
		cfg.ApplicationsDir = c.appsDir
	}
	if c.output != "" {
		cfg.Output = c.output
	}
	if c.watch {
		cfg.Watch = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	format, err := report.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Options{
		Level: cfg.LogLevel,
		File:  cfg.LogFile,
		Debug: c.debug,
		Quiet: tui,
	})
	if err != nil {
		return nil, err
	}
	if cfg.Path() != "" {
		logger.Debug("Loaded config", zap.String("path", cfg.Path()))
	}

	s := scanner.New(scanner.Options{
		ApplicationsDir: cfg.ApplicationsDir,
		Libraries:       inspect.NewOtool(cfg.OtoolPath),
		Metadata:        inspect.NewPlistTools(cfg.PlistBuddyPath, cfg.PlutilPath),
		Logger:          logger,
	})

	return &runtime{cfg: cfg, logger: logger, scanner: s, format: format}, nil
}

func (c *cli) runRoot(cmd *cobra.Command, args []string) error {
	tui := c.interactive()
	rt, err := c.setup(tui)
	if err != nil {
		return err
	}
	defer rt.logger.Sync() //nolint:errcheck

	if !tui {
		return report.Render(c.stdout, rt.scanner.Scan(), rt.format)
	}

	var watcher *watch.DirWatcher
	if rt.cfg.Watch {
		watcher = watch.NewDirWatcher(rt.cfg.ApplicationsDir, rt.logger)
	}

	p := tea.NewProgram(NewModel(rt.scanner, watcher, rt.logger), tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui failed: %w", err)
	}
	return nil
}

func (c *cli) scanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List every detected application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.setup(false)
			if err != nil {
				return err
			}
			defer rt.logger.Sync() //nolint:errcheck
			return report.Render(c.stdout, rt.scanner.Scan(), rt.format)
		},
	}
}

func (c *cli) countCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "count",
		Short: "Print the number of detected applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.setup(false)
			if err != nil {
				return err
			}
			defer rt.logger.Sync() //nolint:errcheck
			return report.RenderCount(c.stdout, rt.scanner.Count(), rt.format)
		},
	}
}

func (c *cli) namesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "names",
		Short: "Print the names of detected applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.setup(false)
			if err != nil {
				return err
			}
			defer rt.logger.Sync() //nolint:errcheck
			return report.RenderNames(c.stdout, rt.scanner.Names(), rt.format)
		},
	}
}

func (c *cli) groupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "groups",
		Aliases: []string{"group"},
		Short:   "Print detected applications grouped by classification",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.setup(false)
			if err != nil {
				return err
			}
			defer rt.logger.Sync() //nolint:errcheck
			return report.RenderGroups(c.stdout, rt.scanner.Scan(), rt.format)
		},
	}
}

// versionVerdict is one row of check-version output
type versionVerdict struct {
	Version string `json:"version" yaml:"version"`
	Fixed   bool   `json:"fixed" yaml:"fixed"`
}

func (c *cli) checkVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "check-version VERSION...",
		Aliases: []string{"check"},
		Short:   "Tell whether Electron versions carry the performance fix",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := report.ParseFormat(c.output)
			if err != nil {
				return err
			}

			verdicts := make([]versionVerdict, 0, len(args))
			for _, v := range args {
				verdicts = append(verdicts, versionVerdict{Version: v, Fixed: electron.IsVersionFixed(v)})
			}

			switch format {
			case report.FormatJSON, report.FormatYAML:
				return writeStructured(c.stdout, verdicts, format)
			}
			for _, v := range verdicts {
				status := ui.UnfixedStyle.Render("not fixed")
				if v.Fixed {
					status = ui.FixedStyle.Render("fixed")
				}
				fmt.Fprintf(c.stdout, "%s\t%s\n", v.Version, status)
			}
			return nil
		},
	}
}

// doctorCheck is one line of doctor output
type doctorCheck struct {
	Name string `json:"name" yaml:"name"`
	OK   bool   `json:"ok" yaml:"ok"`
	Info string `json:"info" yaml:"info"`
}

func (c *cli) doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check that the introspection tools and applications directory are usable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.setup(false)
			if err != nil {
				return err
			}
			defer rt.logger.Sync() //nolint:errcheck

			checks := runDoctor(rt.cfg)
			if rt.format != report.FormatTable {
				if err := writeStructured(c.stdout, checks, rt.format); err != nil {
					return err
				}
			} else {
				for _, check := range checks {
					mark := ui.RenderVerdict(check.OK, true)
					fmt.Fprintf(c.stdout, "%s %-18s %s\n", mark, check.Name, ui.MutedStyle.Render(check.Info))
				}
			}

			for _, check := range checks {
				if !check.OK {
					return fmt.Errorf("%s is not usable", check.Name)
				}
			}
			return nil
		},
	}
}

// runDoctor checks each introspection tool and the applications directory
func runDoctor(cfg *config.Config) []doctorCheck {
	tools := []struct{ name, path string }{
		{"otool", cfg.OtoolPath},
		{"PlistBuddy", cfg.PlistBuddyPath},
		{"plutil", cfg.PlutilPath},
	}

	checks := make([]doctorCheck, 0, len(tools)+1)
	for _, tool := range tools {
		check := doctorCheck{Name: tool.name, OK: inspect.Available(tool.path), Info: tool.path}
		if !check.OK {
			check.Info = tool.path + " not found"
		}
		checks = append(checks, check)
	}

	dir := doctorCheck{Name: "applications dir", Info: cfg.ApplicationsDir}
	if entries, err := os.ReadDir(cfg.ApplicationsDir); err != nil {
		dir.Info = err.Error()
	} else {
		dir.OK = true
		dir.Info = fmt.Sprintf("%s (%d entries)", cfg.ApplicationsDir, len(entries))
	}
	return append(checks, dir)
}

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := c.configPath
			if path == "" {
				path = config.ConfigPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Default().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(c.stdout, "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := c.setup(false)
			if err != nil {
				return err
			}
			if rt.cfg.Path() != "" {
				fmt.Fprintf(c.stdout, "# %s\n", rt.cfg.Path())
			}
			return writeStructured(c.stdout, rt.cfg, report.FormatYAML)
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}

func (c *cli) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(c.stdout, "chromium-certificate %s (built %s)\n", version, buildTime)
			floors := make([]string, 0, 4)
			for major := 36; major <= 39; major++ {
				if v, ok := electron.Floor(major); ok {
					floors = append(floors, v.String())
				}
			}
			fmt.Fprintf(c.stdout, "fixed Electron lines: %s\n", strings.Join(floors, ", "))
		},
	}
}

// writeStructured encodes v as json or yaml
func writeStructured(w io.Writer, v interface{}, format report.Format) error {
	if format == report.FormatJSON {
		return report.WriteJSON(w, v)
	}
	return report.WriteYAML(w, v)
}

// isTerminal reports whether stdout is an interactive terminal
func isTerminal() bool {
	if os.Getenv("CI") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
