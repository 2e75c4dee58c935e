package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/internal/sqlstore"
)

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the relational store",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Create the case tables if they do not exist",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				db, err := a.openDB(ctx)
				if err != nil {
					return err
				}
				defer db.Close()

				if err := sqlstore.EnsureSchema(ctx, db, a.cfg.Database.Driver); err != nil {
					return err
				}
				fmt.Fprintf(out(cmd), "schema ready (%s)\n", a.cfg.Database.Driver)
				return nil
			},
		},
		&cobra.Command{
			Use:   "stats",
			Short: "Print row counts per table",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				db, err := a.openDB(ctx)
				if err != nil {
					return err
				}
				defer db.Close()

				counts, err := sqlstore.Count(ctx, db)
				if err != nil {
					return err
				}
				if a.jsonOut {
					return json.NewEncoder(out(cmd)).Encode(counts)
				}
				fmt.Fprintf(out(cmd), "%s\t%d\n%s\t%d\n%s\t%d\n",
					sqlstore.TableCases, counts.Cases,
					sqlstore.TableMovements, counts.Movements,
					sqlstore.TableParticipants, counts.Participants)
				return nil
			},
		},
	)
	return cmd
}
