package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tptin07/blogscout/internal/config"
	"github.com/tptin07/blogscout/internal/debuglog"
	"github.com/tptin07/blogscout/internal/postsvc"
	"github.com/tptin07/blogscout/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

// runProgram runs the TUI and returns the final model.
var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m, tea.WithAltScreen()).Run()
}

type options struct {
	configPath string
	address    string
	baseURL    string
	quiet      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "blogscout",
		Short: "Browse, search and filter blog posts in the terminal",
		Long: "blogscout is a terminal front end for a blog post service. " +
			"Searches, category and sort filters are kept in a shareable address " +
			"that is printed on exit and can be passed back with --address.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to configuration file")
	root.Flags().StringVar(&opts.address, "address", "", "address to open, e.g. '/blog?cat=Thuốc&sort=popular'")
	root.Flags().StringVar(&opts.baseURL, "base-url", "", "post service base URL (overrides config)")
	root.Flags().BoolVar(&opts.quiet, "quiet", false, "skip startup banner")

	root.AddCommand(newVersionCmd(), newConfigCmd(opts))
	return root
}

func run(cmd *cobra.Command, opts *options) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if opts.baseURL != "" {
		cfg.Service.BaseURL = opts.baseURL
	}

	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.Path); err != nil {
		return fmt.Errorf("setting up log: %w", err)
	}
	defer debuglog.Close()

	client, err := postsvc.NewClient(cfg)
	if err != nil {
		return err
	}
	debuglog.Infof("starting %s against %s", Version, cfg.Service.BaseURL)

	tui.ApplyTheme(cfg.UI.Colors)
	if !opts.quiet {
		tui.ShowBanner(cmd.OutOrStdout(), Version)
	}

	final, err := runProgram(tui.NewApp(client, cfg, opts.address))
	if err != nil {
		return fmt.Errorf("running tui: %w", err)
	}

	if app, ok := final.(*tui.App); ok {
		fmt.Fprintln(cmd.OutOrStdout(), app.Address())
	}
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", tui.AppName, Version)
			fmt.Fprintln(out, "Blog discovery for the terminal")
		},
	}
}

func newConfigCmd(opts *options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Generate or inspect the configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "generate [path]",
		Short: "Write the default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigPath()
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("generating config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
			return nil
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(config.Describe(cfg), "\n"))
			return nil
		},
	})

	return configCmd
}

func defaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "blogscout", "config.toml")
}
