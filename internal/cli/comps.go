package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CompsCommand handles the comps command
type CompsCommand struct {
	opts Options
}

// NewCompsCommand creates a new comps command
func NewCompsCommand(opts Options) *cobra.Command {
	cmd := &CompsCommand{opts: opts}

	cobraCmd := &cobra.Command{
		Use:   "comps <project.aep>",
		Short: "List the compositions of a project",
		Long: `Opens the project in After Effects through the scripting bridge and
prints the name of every composition, one per line, in project order.

A failing bridge prints nothing and exits cleanly, the same way the
interactive shell shows an empty list. Use --strict to get the error.`,
		Example: `  # Pick a composition with fzf
  aerun comps shots/promo.aep | fzf`,
		Args: cobra.ExactArgs(1),
		RunE: cmd.Run,
	}

	cobraCmd.Flags().Bool("strict", false, "Fail when After Effects cannot be scripted")

	return cobraCmd
}

// Run executes the comps command
func (c *CompsCommand) Run(cmd *cobra.Command, args []string) error {
	strict, _ := cmd.Flags().GetBool("strict")

	lister := newLister(loadStore(cmd, c.opts), c.opts)

	var comps []string
	if strict {
		var err error
		comps, err = lister.Compositions(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list compositions: %w", err)
		}
	} else {
		comps = lister.List(cmd.Context(), args[0])
	}

	out := cmd.OutOrStdout()
	for _, name := range comps {
		fmt.Fprintln(out, name)
	}
	return nil
}
