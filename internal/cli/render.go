package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/henri123lemoine/aerun/internal/render"
)

// RenderCommand handles the render command
type RenderCommand struct {
	opts Options
}

// NewRenderCommand creates a new render command
func NewRenderCommand(opts Options) *cobra.Command {
	cmd := &RenderCommand{opts: opts}

	cobraCmd := &cobra.Command{
		Use:   "render <project.aep> <composition> <output>",
		Short: "Render one composition with aerender",
		Long: `Runs aerender for one composition and streams its console output,
stdout and stderr merged, to standard output.

aerender's exit status is reported but does not fail the command unless
--fail-on-exit-code is given.`,
		Example: `  aerun render shots/promo.aep "Main Comp" renders/promo.mov

  # Output without an extension gets render.default_extension
  aerun render shots/promo.aep Main renders/promo`,
		Args: cobra.ExactArgs(3),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().Bool("fail-on-exit-code", false, "Exit non-zero when aerender does")
	cobraCmd.Flags().Bool("pty", false, "Run aerender on a pseudo-terminal (overrides render.use_pty)")

	return cobraCmd
}

// Run executes the render command
func (c *RenderCommand) Run(cmd *cobra.Command, args []string) error {
	failOnExit, _ := cmd.Flags().GetBool("fail-on-exit-code")

	store := loadStore(cmd, c.opts)
	cfg := store.Config()

	job := render.Job{Project: args[0], Comp: args[1], Output: args[2]}.Trimmed()
	if err := job.Validate(); err != nil {
		return err
	}
	job.Output = render.NormalizeOutput(job.Output, cfg.Render.DefaultExtension)

	usePTY := cfg.Render.UsePTY
	if cmd.Flags().Changed("pty") {
		usePTY, _ = cmd.Flags().GetBool("pty")
	}

	out := cmd.OutOrStdout()
	var result render.Result
	newInvoker(store, usePTY).Run(cmd.Context(), job,
		func(line string) { fmt.Fprintln(out, line) },
		func(r render.Result) { result = r },
	)

	fmt.Fprintf(out, "\nRender finished!\nOutput: %s\n", result.Job.Output)

	if result.Err != nil {
		if errors.Is(result.Err, context.Canceled) {
			return result.Err
		}
		return fmt.Errorf("failed to run aerender: %w", result.Err)
	}
	if failOnExit && result.ExitCode != 0 {
		return fmt.Errorf("aerender exited with code %d", result.ExitCode)
	}
	return nil
}
