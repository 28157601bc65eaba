// Package cli wires aerun's commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/henri123lemoine/aerun/internal/aftereffects"
	"github.com/henri123lemoine/aerun/internal/app"
	"github.com/henri123lemoine/aerun/internal/config"
	"github.com/henri123lemoine/aerun/internal/debug"
	"github.com/henri123lemoine/aerun/internal/exec"
	"github.com/henri123lemoine/aerun/internal/render"
)

// Options are the system collaborators the commands run against.
// Zero values select the real ones.
type Options struct {
	// Glob discovers After Effects installs. Defaults to filepath.Glob.
	Glob config.GlobFunc

	// Bridge runs ExtendScript inside After Effects. Defaults to osascript.
	Bridge aftereffects.Bridge

	// TempDir holds the listing script and its output. Defaults to os.TempDir().
	TempDir string

	// RunUI runs the interactive shell. Defaults to a full-screen program.
	RunUI func(ctx context.Context, m tea.Model) error
}

func (o Options) withDefaults() Options {
	if o.Glob == nil {
		o.Glob = filepath.Glob
	}
	if o.Bridge == nil {
		o.Bridge = aftereffects.OSAScript{}
	}
	if o.RunUI == nil {
		o.RunUI = runProgram
	}
	return o
}

// NewRootCommand creates the root command
func NewRootCommand(opts Options) *cobra.Command {
	opts = opts.withDefaults()

	rootCmd := &cobra.Command{
		Use:   "aerun",
		Short: "Render After Effects compositions from the terminal",
		Long: `aerun drives After Effects' command-line renderer.

Pick a project, choose one of its compositions and an output file, and
watch aerender's console output stream into the log pane. Compositions are
read from the project through After Effects' scripting bridge.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:         cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return enableDebug(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			debug.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd, opts)
		},
	}

	rootCmd.PersistentFlags().String("config", config.ConfigPath(), "Config file")
	rootCmd.PersistentFlags().Bool("debug", false, "Write a debug log to "+debug.DefaultPath())
	rootCmd.PersistentFlags().String("debug-file", "", `Debug log path ("-" for stderr); implies --debug`)

	// Add subcommands
	rootCmd.AddCommand(NewCompsCommand(opts))
	rootCmd.AddCommand(NewRenderCommand(opts))
	rootCmd.AddCommand(NewConfigCommand(opts))

	return rootCmd
}

// Execute runs the root command
func Execute() error {
	rootCmd := NewRootCommand(Options{})

	// Interrupts kill a running aerender through the command context.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}

	return nil
}

func enableDebug(cmd *cobra.Command) error {
	on, _ := cmd.Flags().GetBool("debug")
	path, _ := cmd.Flags().GetString("debug-file")

	switch {
	case path == "-":
		debug.EnableWriter(cmd.ErrOrStderr())
	case path != "":
		return debug.Enable(path)
	case on:
		return debug.Enable(debug.DefaultPath())
	}
	return nil
}

// loadStore reads and resolves the config named by --config. Validation
// warnings are printed but never fatal.
func loadStore(cmd *cobra.Command, opts Options) *config.Store {
	path, _ := cmd.Flags().GetString("config")
	cfg := config.LoadResolved(path, opts.Glob)

	for _, w := range cfg.Validate() {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
	return config.NewStore(path, cfg)
}

func newLister(store *config.Store, opts Options) *aftereffects.Lister {
	return aftereffects.NewLister(opts.Bridge, store, opts.TempDir)
}

func newInvoker(store *config.Store, usePTY bool) *render.Invoker {
	return render.NewInvoker(store, render.Options{UsePTY: usePTY})
}

// runShell starts the interactive shell.
func runShell(cmd *cobra.Command, opts Options) error {
	store := loadStore(cmd, opts)
	cfg := store.Config()
	debug.Log("cli: renderer %s, application %s", cfg.Paths.Renderer, cfg.Paths.Application)

	model := app.New(cmd.Context(), cfg, app.Deps{
		Lister:     newLister(store, opts),
		Renderer:   newInvoker(store, cfg.Render.UsePTY),
		Settings:   store,
		Reveal:     exec.Reveal,
		ConfigPath: store.Path(),
	})
	return opts.RunUI(cmd.Context(), model)
}

func runProgram(ctx context.Context, m tea.Model) error {
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
