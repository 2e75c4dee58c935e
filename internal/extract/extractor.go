// Package extract turns a loaded detail view into a types.Case and stages it.
package extract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/docket/internal/remote"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// ErrExtraction marks a record that could not be extracted. The caller
// counts it as a miss; it never aborts a batch.
var ErrExtraction = errors.New("extraction failed")

// Movement table layout: rows after the header carry at least minHistoryCells
// cells, with date, type and detail at fixed positions.
const (
	minHistoryCells = 5
	cellDate        = 2
	cellType        = 3
	cellDetail      = 4
)

// Options bounds the waits inside a detail view.
type Options struct {
	HistoryTimeout      time.Duration
	ParticipantsTimeout time.Duration
}

// Extractor reads one case from a detail view and appends it to a staging
// buffer.
type Extractor struct {
	buffer types.StagingBuffer
	opts   Options
	logger *slog.Logger
	now    func() time.Time
}

// New returns an Extractor that stages records into buffer.
func New(buffer types.StagingBuffer, opts Options, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		buffer: buffer,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Extract reads the case shown in view. On success the record is stamped,
// staged and returned. On any failure nothing is staged and the returned
// error wraps ErrExtraction.
func (e *Extractor) Extract(ctx context.Context, view remote.DetailView) (types.Case, error) {
	c, err := e.read(ctx, view)
	if err != nil {
		e.logger.WarnContext(ctx, "case extraction failed", "err", err)
		return types.Case{}, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return types.Case{}, fmt.Errorf("%w: generating staged id: %w", ErrExtraction, err)
	}
	now := e.now().UTC()
	c.StagedID = id.String()
	c.ExtractedAt = &now

	if err := e.buffer.Append(c); err != nil {
		e.logger.ErrorContext(ctx, "could not stage case", "case", c.Number, "err", err)
		return types.Case{}, fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	e.logger.InfoContext(ctx, "case extracted",
		"case", c.Number,
		"staged_id", c.StagedID,
		"movements", len(c.Movements),
		"actors", len(c.Actors),
		"defendants", len(c.Defendants))
	return c, nil
}

// read assembles the record without side effects.
func (e *Extractor) read(ctx context.Context, view remote.DetailView) (types.Case, error) {
	var c types.Case
	targets := map[remote.Field]*string{
		remote.FieldNumber:       &c.Number,
		remote.FieldJurisdiction: &c.Jurisdiction,
		remote.FieldDependency:   &c.Dependency,
		remote.FieldStatus:       &c.Status,
		remote.FieldCaption:      &c.Caption,
	}
	for _, f := range remote.Fields {
		v, err := view.Field(ctx, f)
		if err != nil {
			return types.Case{}, fmt.Errorf("reading field %s: %w", f, err)
		}
		*targets[f] = strings.TrimSpace(v)
	}

	movements, err := e.movements(ctx, view)
	if err != nil {
		return types.Case{}, err
	}
	c.Movements = movements

	rows, err := view.Participants(ctx, e.opts.ParticipantsTimeout)
	if err != nil {
		return types.Case{}, fmt.Errorf("reading participants of %s: %w", c.Number, err)
	}
	c.Actors = []string{}
	c.Defendants = []string{}
	for _, r := range rows {
		name := strings.TrimSpace(r[1])
		if !c.AddParticipant(r[0], name) {
			e.logger.DebugContext(ctx, "participant role not recognized, dropped", "case", c.Number, "role", r[0])
		}
	}
	return c, nil
}

// movements reads the optional history table. Its absence yields an empty
// list; rows with too few cells are skipped.
func (e *Extractor) movements(ctx context.Context, view remote.DetailView) ([]types.Movement, error) {
	rows, err := view.History(ctx, e.opts.HistoryTimeout)
	if errors.Is(err, remote.ErrNotFound) {
		return []types.Movement{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading movement history: %w", err)
	}

	out := []types.Movement{}
	if len(rows) == 0 {
		return out, nil
	}
	for _, cells := range rows[1:] {
		if len(cells) < minHistoryCells {
			continue
		}
		out = append(out, types.Movement{
			RawDate: strings.TrimSpace(cells[cellDate]),
			Type:    strings.TrimSpace(cells[cellType]),
			Detail:  strings.TrimSpace(cells[cellDetail]),
		})
	}
	return out, nil
}
