package cli

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/docket/internal/persist"
	"github.com/mesh-intelligence/docket/internal/sqlstore"
)

func newCommitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "Commit the staged batch to the database in one transaction",
		Long: "Validate the staged batch and write every case, movement and participant\n" +
			"in a single transaction. The staging file is removed only after the commit\n" +
			"succeeds; on failure nothing is written and the file is kept for a retry.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			buf := a.buffer()
			// Reject a bad batch before paying for a connection.
			batch, err := buf.ReadAll()
			if err != nil {
				return fmt.Errorf("reading staged batch: %w", err)
			}
			if err := persist.Validate(batch); err != nil {
				return err
			}

			db, err := a.openDB(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := persist.New(db, buf, a.logger).CommitStaged(ctx)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return json.NewEncoder(out(cmd)).Encode(res)
			}
			fmt.Fprintf(out(cmd), "committed %d cases (%d movements, %d participants)\n",
				res.Cases, res.Movements, res.Participants)
			return nil
		},
	}
}

// openDB validates the database settings and connects.
func (a *app) openDB(ctx context.Context) (*sql.DB, error) {
	if err := a.cfg.Database.Validate(); err != nil {
		return nil, &userError{err: fmt.Errorf("database config: %w", err)}
	}
	db, err := sqlstore.Open(ctx, a.cfg.Database)
	if err != nil {
		return nil, err
	}
	return db, nil
}
