package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/recordselect/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Backend    string // "sqlite" | "pebble"
	Strict     bool

	// Config is the loaded configuration file, or defaults.
	// Set by the root PersistentPreRunE.
	Config *config.Config

	// Logger writes diagnostics to stderr. Set by the root PersistentPreRunE.
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// ValidBackends defines the allowed store backends.
var ValidBackends = []string{"sqlite", "pebble"}

// NewRootCommand creates the root command for the recsel CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "recsel",
		Short: "recsel - fluent record selection",
		Long:  "Declare record types in CUE, load records and query them with filtered, ordered, limited selects.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default ~/.config/recsel/config.toml)")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "sqlite", "store backend (sqlite|pebble)")
	cmd.PersistentFlags().BoolVar(&opts.Strict, "strict", false, "reject WHERE and ORDER fields the schema does not declare")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewSelectCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup loads the config file, lets unset flags fall back to its values
// and installs the logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	var (
		cfg *config.Config
		err error
	)
	if o.ConfigPath != "" {
		cfg, err = config.LoadFrom(o.ConfigPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}
	o.Config = cfg

	flags := cmd.Flags()
	if !flags.Changed("format") {
		o.Format = cfg.Format
	}
	if !flags.Changed("backend") {
		o.Backend = cfg.Backend
	}
	if !flags.Changed("strict") {
		o.Strict = cfg.Strict
	}

	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}
	if !slices.Contains(ValidBackends, o.Backend) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid backend %q: must be one of %v", o.Backend, ValidBackends))
	}

	level, err := cfg.Level()
	if err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// formatter returns an OutputFormatter writing to the command's streams.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
	}
}

// dbPath returns the --db flag value, or the config default.
func (o *RootOptions) dbPath(flag string) string {
	if flag != "" || o.Config == nil {
		return flag
	}
	return o.Config.DB
}

// schemasDir returns the --schemas flag value, or the config default.
func (o *RootOptions) schemasDir(flag string) string {
	if flag != "" || o.Config == nil {
		return flag
	}
	return o.Config.Schemas
}
