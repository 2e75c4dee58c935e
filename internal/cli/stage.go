package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/pkg/types"
)

func newStageCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Inspect or discard the staged batch",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the staged cases as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				batch, err := a.buffer().ReadAll()
				if err != nil {
					return err
				}
				if batch == nil {
					batch = []types.Case{}
				}
				enc := json.NewEncoder(out(cmd))
				enc.SetEscapeHTML(false)
				enc.SetIndent("", "    ")
				return enc.Encode(batch)
			},
		},
		&cobra.Command{
			Use:   "count",
			Short: "Print the number of staged cases",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				batch, err := a.buffer().ReadAll()
				if err != nil {
					return err
				}
				if a.jsonOut {
					return json.NewEncoder(out(cmd)).Encode(map[string]int{"staged": len(batch)})
				}
				fmt.Fprintln(out(cmd), len(batch))
				return nil
			},
		},
		&cobra.Command{
			Use:   "clear",
			Short: "Discard the staged batch without committing it",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.buffer().Clear(); err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "cleared %s\n", a.stagingPath)
				return nil
			},
		},
	)
	return cmd
}
