// Package persist commits a staged batch of cases to the relational store.
//
// A commit is all or nothing: every case, movement and participant of the
// batch is written inside one transaction on one dedicated connection. Any
// failure rolls the whole batch back and leaves the staging buffer intact
// for a later retry.
package persist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mesh-intelligence/docket/internal/sqlstore"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// errNoBuffer is returned by CommitStaged on a Pipeline built without a buffer.
var errNoBuffer = errors.New("no staging buffer configured")

// chunkSize caps the rows of one multi-row INSERT so the statement stays
// under driver placeholder limits.
const chunkSize = 500

const insertCase = `INSERT INTO ` + sqlstore.TableCases + `
    (expediente, jurisdiccion, dependencia, situacion_actual, caratula)
    VALUES (?, ?, ?, ?, ?)`

var (
	movementColumns    = []string{"expediente_id", "fecha", "tipo", "detalle"}
	participantColumns = []string{"expediente_id", "tipo", "nombre"}
)

// Pipeline writes batches to db and drains buffer on success.
type Pipeline struct {
	db     *sql.DB
	buffer types.StagingBuffer
	logger *slog.Logger
}

// New returns a Pipeline over db. buffer may be nil when only Commit is used.
func New(db *sql.DB, buffer types.StagingBuffer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{db: db, buffer: buffer, logger: logger}
}

// Result summarizes a committed batch.
type Result struct {
	Cases        int `json:"cases"`
	Movements    int `json:"movements"`
	Participants int `json:"participants"`
}

// Commit validates batch and writes it in a single transaction. Validation
// runs before a connection is acquired. On error nothing from batch is
// persisted.
func (p *Pipeline) Commit(ctx context.Context, batch []types.Case) (Result, error) {
	if err := Validate(batch); err != nil {
		return Result{}, err
	}

	conn, err := p.db.Conn(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("acquiring connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return Result{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var res Result
	for i := range batch {
		c := &batch[i]
		movements, participants, err := writeCase(ctx, tx, c)
		if err != nil {
			p.logger.ErrorContext(ctx, "commit failed, rolling back",
				"case", c.Number, "index", i, "err", err)
			return Result{}, fmt.Errorf("writing case %q: %w", c.Number, err)
		}
		res.Cases++
		res.Movements += movements
		res.Participants += participants
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("committing transaction: %w", err)
	}
	p.logger.InfoContext(ctx, "batch committed",
		"cases", res.Cases,
		"movements", res.Movements,
		"participants", res.Participants)
	return res, nil
}

// CommitStaged reads the staging buffer, commits it and clears the buffer
// once the transaction has committed. On any error the buffer is untouched.
func (p *Pipeline) CommitStaged(ctx context.Context) (Result, error) {
	if p.buffer == nil {
		return Result{}, errNoBuffer
	}
	batch, err := p.buffer.ReadAll()
	if err != nil {
		return Result{}, fmt.Errorf("reading staged batch: %w", err)
	}
	res, err := p.Commit(ctx, batch)
	if err != nil {
		return Result{}, err
	}
	if err := p.buffer.Clear(); err != nil {
		p.logger.WarnContext(ctx, "could not clear staging buffer", "err", err)
	}
	return res, nil
}

// writeCase inserts c and its children, returning the number of movement
// and participant rows written.
func writeCase(ctx context.Context, tx *sql.Tx, c *types.Case) (int, int, error) {
	r, err := tx.ExecContext(ctx, insertCase,
		c.Number, c.Jurisdiction, c.Dependency, c.Status, c.Caption)
	if err != nil {
		return 0, 0, fmt.Errorf("inserting case: %w", err)
	}
	id, err := r.LastInsertId()
	if err != nil {
		return 0, 0, fmt.Errorf("reading case id: %w", err)
	}

	movements := make([][]any, 0, len(c.Movements))
	for _, m := range c.Movements {
		movements = append(movements, []any{id, NormalizeDate(m.RawDate), m.Type, m.Detail})
	}
	if err := insertRows(ctx, tx, sqlstore.TableMovements, movementColumns, movements); err != nil {
		return 0, 0, fmt.Errorf("inserting movements: %w", err)
	}

	parts := c.Participants()
	participants := make([][]any, 0, len(parts))
	for _, pt := range parts {
		participants = append(participants, []any{id, string(pt.Role), pt.Name})
	}
	if err := insertRows(ctx, tx, sqlstore.TableParticipants, participantColumns, participants); err != nil {
		return 0, 0, fmt.Errorf("inserting participants: %w", err)
	}
	return len(movements), len(participants), nil
}

// insertRows writes rows with multi-row INSERT statements of at most
// chunkSize rows each. No rows is a no-op.
func insertRows(ctx context.Context, tx *sql.Tx, table string, columns []string, rows [][]any) error {
	for start := 0; start < len(rows); start += chunkSize {
		end := min(start+chunkSize, len(rows))
		query, args := buildInsert(table, columns, rows[start:end])
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}

// buildInsert renders one INSERT ... VALUES (...), (...) statement.
func buildInsert(table string, columns []string, rows [][]any) (string, []any) {
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ") + ")"

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(columns, ", "))
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(tuple)
		args = append(args, row...)
	}
	return b.String(), args
}
