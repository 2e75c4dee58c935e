package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration and create the data directory",
		Long: "Create the configuration directory with a default config.yaml (an existing\n" +
			"file is kept) and the directory that holds the staging file.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			written, err := writeConfigIfMissing(a.configPath)
			if err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			if err := os.MkdirAll(filepath.Dir(a.stagingPath), 0o755); err != nil {
				return fmt.Errorf("create data directory: %w", err)
			}

			if written {
				fmt.Fprintf(out(cmd), "wrote %s\n", a.configPath)
			} else {
				fmt.Fprintf(out(cmd), "kept existing %s\n", a.configPath)
			}
			fmt.Fprintf(out(cmd), "staging file: %s\n", a.stagingPath)
			return nil
		},
	}
}
