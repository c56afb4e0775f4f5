package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/pders01/larder/internal/api"
	"github.com/pders01/larder/internal/config"
	"github.com/pders01/larder/internal/debuglog"
	"github.com/pders01/larder/internal/domain"
	"github.com/pders01/larder/internal/session"
	"github.com/pders01/larder/internal/storage"
	"github.com/pders01/larder/internal/tui"
	"github.com/pders01/larder/internal/validation"
)

// Version is the version of the application, set at build time
var Version = "dev"

var errNotSignedIn = errors.New("not signed in; run 'larder login'")

type globalOptions struct {
	configPath string
	dbPath     string
	logLevel   string
}

// env holds what a command needs once config is loaded.
type env struct {
	cfg    *config.Config
	store  *storage.Store
	client *api.Client
	gate   *session.Gate
}

func openEnv(opts *globalOptions) (*env, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), cfg.Log.File); err != nil {
		return nil, err
	}

	validator := validation.NewFilePathValidator()
	dbPath := cfg.Database.Path
	if opts.dbPath != "" {
		dbPath = opts.dbPath
		validator = validation.NewPermissiveFilePathValidator()
	}
	dbPath, err = validator.EnsureParentDir(dbPath)
	if err != nil {
		return nil, fmt.Errorf("database path: %w", err)
	}
	cfg.Database.Path = dbPath

	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		return nil, err
	}

	client, err := api.NewClient(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &env{
		cfg:    cfg,
		store:  store,
		client: client,
		gate:   session.NewGate(client, store),
	}, nil
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		debuglog.Warnf("closing store: %v", err)
	}
	debuglog.Close()
}

// requireSession returns the signed-in marker or errNotSignedIn.
func (e *env) requireSession() (domain.Session, error) {
	sess, err := e.gate.Current()
	if errors.Is(err, storage.ErrNoSession) {
		return domain.Session{}, errNotSignedIn
	}
	return sess, err
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "larder",
		Short:         "Browse a remote recipe catalog from the terminal",
		Long:          "larder signs you in against a recipe service and lets you search, filter and page through its catalog.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, opts)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to configuration file")
	pf.StringVar(&opts.dbPath, "db", "", "Path to database file (overrides config)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error, off")

	rootCmd.AddCommand(
		newBrowseCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newWhoamiCmd(opts),
		newListCmd(opts),
		newCuisinesCmd(opts),
		newShowCmd(opts),
		newSearchCmd(opts),
		newConfigCmd(),
		newVersionCmd(),
		newBannerCmd(),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", tui.AppName, Version)
			fmt.Fprintln(out, "Recipe catalog")
			fmt.Fprintln(out, "github.com/pders01/larder")
		},
	}
}

func newBannerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "banner",
		Short: "Show the startup banner",
		Run: func(cmd *cobra.Command, args []string) {
			tui.ShowBanner(Version)
		},
	}
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}

	var path string
	genCmd := &cobra.Command{
		Use:   "generate",
		Short: "Write the default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			target := path
			if target == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return err
				}
				target = filepath.Join(home, ".config", "larder", "config.toml")
			}
			if err := config.GenerateDefaultConfig(target); err != nil {
				return fmt.Errorf("failed to generate config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", target)
			return nil
		},
	}
	genCmd.Flags().StringVar(&path, "path", "", "Where to write the file (default ~/.config/larder/config.toml)")

	configCmd.AddCommand(genCmd)
	return configCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
