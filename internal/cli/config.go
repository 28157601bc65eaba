package cli

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/henri123lemoine/aerun/internal/config"
)

// NewConfigCommand creates the config command group
func NewConfigCommand(opts Options) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change the aerun configuration",
	}

	configCmd.AddCommand(newConfigPathCommand())
	configCmd.AddCommand(newConfigShowCommand(opts))
	configCmd.AddCommand(newConfigSetCommand(opts))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

func newConfigShowCommand(opts Options) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Prints the configuration aerun runs with: the config file merged over
the defaults, with tool paths that the file leaves out filled in by
discovery or the built-in defaults.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadStore(cmd, opts).Config()

			data, err := toml.Marshal(cfg)
			if err != nil {
				return fmt.Errorf("failed to encode config: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigSetCommand(opts Options) *cobra.Command {
	cobraCmd := &cobra.Command{
		Use:   "set",
		Short: "Set the aerender and After Effects paths",
		Example: `  aerun config set \
    --aerender "/Applications/Adobe After Effects 2025/aerender" \
    --app "/Applications/Adobe After Effects 2025/Adobe After Effects 2025.app"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := loadStore(cmd, opts)
			paths := store.Paths()

			if !cmd.Flags().Changed("aerender") && !cmd.Flags().Changed("app") {
				return fmt.Errorf("nothing to set: pass --aerender and/or --app")
			}
			if cmd.Flags().Changed("aerender") {
				paths.Renderer, _ = cmd.Flags().GetString("aerender")
			}
			if cmd.Flags().Changed("app") {
				paths.Application, _ = cmd.Flags().GetString("app")
			}

			if err := store.Update(paths); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Paths updated successfully!")
			return nil
		},
	}

	cobraCmd.Flags().String("aerender", "", "Path to the aerender executable")
	cobraCmd.Flags().String("app", "", "Path to the After Effects application bundle")

	return cobraCmd
}

func newConfigInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a commented default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("config")
			if err := config.CreateDefaultConfigFile(path); err != nil {
				return fmt.Errorf("failed to create config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}
}
