// Package navigate drives a paginated results interface: it opens every
// row's detail view, hands the view to an extractor, returns to the table,
// and advances pages until the interface offers no next page.
//
// Faults on a single row never abort a page. A row whose view control is
// missing, stale, or fails to activate is counted as skipped and the scan
// moves to the next index.
package navigate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/mesh-intelligence/docket/internal/remote"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Extractor reads one case from a loaded detail view. A non-nil error is a
// miss for that row only.
type Extractor interface {
	Extract(ctx context.Context, view remote.DetailView) (types.Case, error)
}

// Options bounds the waits and pacing of a traversal.
type Options struct {
	TableTimeout  time.Duration
	DetailTimeout time.Duration
	PageDelay     time.Duration
	RowRate       float64 // Detail views opened per second; 0 is unlimited.
	MaxPages      int     // 0 is unlimited.
}

// OptionsFromConfig maps navigation settings onto Options.
func OptionsFromConfig(c types.NavigationConfig) Options {
	return Options{
		TableTimeout:  c.TableTimeout,
		DetailTimeout: c.DetailTimeout,
		PageDelay:     c.PageDelay,
		RowRate:       c.RowRate,
		MaxPages:      c.MaxPages,
	}
}

// Stats summarizes a traversal.
type Stats struct {
	Extracted int   // Rows whose record was extracted and staged.
	Skipped   int   // Rows counted as misses.
	Pages     int   // Pages whose table was scanned.
	State     State // Final state of the machine.
}

// Navigator walks a remote.Page. It is not safe for concurrent use.
type Navigator struct {
	page      remote.Page
	extractor Extractor
	opts      Options
	limiter   *rate.Limiter
	logger    *slog.Logger

	state State
	stats Stats
}

// New returns a Navigator for page that hands detail views to extractor.
func New(page remote.Page, extractor Extractor, opts Options, logger *slog.Logger) *Navigator {
	if logger == nil {
		logger = slog.Default()
	}
	limit := rate.Inf
	if opts.RowRate > 0 {
		limit = rate.Limit(opts.RowRate)
	}
	return &Navigator{
		page:      page,
		extractor: extractor,
		opts:      opts,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    logger,
	}
}

// State returns the current state of the machine.
func (n *Navigator) State() State {
	return n.state
}

// Traverse runs the state machine from AwaitingTable to Done and returns
// the traversal summary. Stats.Extracted counts the records extracted. The
// error is non-nil only when ctx ends first; Stats then reflects the work
// done so far.
func (n *Navigator) Traverse(ctx context.Context) (Stats, error) {
	n.stats = Stats{}
	n.transition(ctx, AwaitingTable)

	for n.state != Done {
		if err := ctx.Err(); err != nil {
			n.stats.State = n.state
			return n.stats, err
		}

		switch n.state {
		case AwaitingTable:
			if !n.page.WaitTable(ctx, n.opts.TableTimeout) {
				n.logger.InfoContext(ctx, "results table not present, stopping")
				n.transition(ctx, Done)
				continue
			}
			n.transition(ctx, RowScan)

		case RowScan:
			n.stats.Pages++
			if !n.scanPage(ctx) {
				n.transition(ctx, Done)
				continue
			}
			if n.opts.MaxPages > 0 && n.stats.Pages >= n.opts.MaxPages {
				n.logger.InfoContext(ctx, "page limit reached", "pages", n.stats.Pages)
				n.transition(ctx, Done)
				continue
			}
			n.transition(ctx, PageAdvance)

		case PageAdvance:
			if !n.advance(ctx) {
				n.transition(ctx, Done)
				continue
			}
			n.transition(ctx, AwaitingTable)
		}
	}

	n.stats.State = n.state
	n.logger.InfoContext(ctx, "traversal finished",
		"extracted", n.stats.Extracted,
		"skipped", n.stats.Skipped,
		"pages", n.stats.Pages)
	if err := ctx.Err(); err != nil {
		return n.stats, err
	}
	return n.stats, nil
}

// scanPage visits every row of the current page. It reports false only when
// ctx is done. A table that does not come back after a detail round-trip
// costs that row alone; the scan moves on to the next index.
func (n *Navigator) scanPage(ctx context.Context) bool {
	count, err := n.page.RowCount(ctx)
	if err != nil {
		n.logger.WarnContext(ctx, "could not count rows", "page", n.stats.Pages, "err", err)
		return true
	}
	n.logger.DebugContext(ctx, "scanning page", "page", n.stats.Pages, "rows", count)

	for i := 0; i < count; i++ {
		if ctx.Err() != nil {
			return false
		}
		opened, err := n.visitRow(ctx, i)
		if err != nil {
			n.stats.Skipped++
			n.logger.WarnContext(ctx, "row skipped", "page", n.stats.Pages, "row", i, "err", err)
		}
		if !opened {
			continue
		}
		if !n.returnToTable(ctx) {
			n.logger.WarnContext(ctx, "results table did not return after detail view", "page", n.stats.Pages, "row", i)
		}
	}
	return ctx.Err() == nil
}

// visitRow re-resolves row i, opens its detail view and extracts it. opened
// reports whether the interface left the table, so the caller must return
// to it.
func (n *Navigator) visitRow(ctx context.Context, i int) (opened bool, err error) {
	row, err := n.page.Row(ctx, i)
	if err != nil {
		return false, fmt.Errorf("resolving row: %w", err)
	}
	view, err := row.ViewControl(ctx)
	if err != nil {
		return false, fmt.Errorf("locating view control: %w", err)
	}
	if !view.Displayed() || !view.Enabled() {
		return false, fmt.Errorf("view control not actionable: %w", remote.ErrNotFound)
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return false, err
	}
	if err := view.Click(ctx); err != nil {
		return false, fmt.Errorf("activating view control: %w", err)
	}

	n.transition(ctx, DetailView)
	defer n.transition(ctx, RowScan)

	detail, err := n.page.WaitDetail(ctx, n.opts.DetailTimeout)
	if err != nil {
		return true, fmt.Errorf("waiting for detail view: %w", err)
	}
	if _, err := n.extractor.Extract(ctx, detail); err != nil {
		return true, err
	}
	n.stats.Extracted++
	return true, nil
}

// returnToTable invokes the return action and waits for the table.
func (n *Navigator) returnToTable(ctx context.Context) bool {
	if err := n.page.Back(ctx); err != nil {
		n.logger.WarnContext(ctx, "return to table failed", "err", err)
	}
	return n.page.WaitTable(ctx, n.opts.TableTimeout)
}

// advance activates the next-page control and waits the pacing delay. It
// reports false when there is no usable next control.
func (n *Navigator) advance(ctx context.Context) bool {
	next, err := n.page.NextControl(ctx)
	if err != nil {
		if !errors.Is(err, remote.ErrNotFound) {
			n.logger.WarnContext(ctx, "could not locate next control", "err", err)
		}
		n.logger.InfoContext(ctx, "no next page", "pages", n.stats.Pages)
		return false
	}
	if !next.Displayed() || !next.Enabled() {
		n.logger.InfoContext(ctx, "next control inactive, last page reached", "pages", n.stats.Pages)
		return false
	}
	if err := next.Click(ctx); err != nil {
		n.logger.WarnContext(ctx, "next control failed", "err", err)
		return false
	}
	return sleep(ctx, n.opts.PageDelay)
}

func (n *Navigator) transition(ctx context.Context, to State) {
	if n.state != to {
		n.logger.DebugContext(ctx, "navigation state", "from", n.state, "to", to)
	}
	n.state = to
}

// sleep waits d or until ctx ends, reporting whether the full delay elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
