// Package remote defines the narrow contract the navigation engine and the
// extractor use to drive a paginated results interface.
//
// Handles returned by a Page (rows, controls, detail views) may become
// invalid after any action that changes the interface. Callers re-acquire a
// handle before each action instead of caching it; implementations report
// an invalidated handle with ErrStale.
package remote

import (
	"context"
	"errors"
	"time"
)

// Interface faults. Both are transient from the caller's point of view.
var (
	ErrNotFound = errors.New("element not found")
	ErrStale    = errors.New("element is stale")
)

// Page is the live results interface: a table of rows, a per-row view
// action, a return action and a next-page action.
type Page interface {
	// WaitTable blocks until the results table is present or timeout
	// elapses. It reports whether the table is present.
	WaitTable(ctx context.Context, timeout time.Duration) bool

	// RowCount returns the number of data rows currently rendered,
	// excluding the header.
	RowCount(ctx context.Context) (int, error)

	// Row resolves the data row at index from the live table.
	Row(ctx context.Context, index int) (Row, error)

	// WaitDetail blocks until the detail view anchor is present and returns
	// the view. It returns ErrNotFound when timeout elapses first.
	WaitDetail(ctx context.Context, timeout time.Duration) (DetailView, error)

	// Back returns from the detail view to the results table.
	Back(ctx context.Context) error

	// NextControl returns the next-page control, or ErrNotFound.
	NextControl(ctx context.Context) (Control, error)
}

// Row is one data row of the results table.
type Row interface {
	// ViewControl returns the control that opens the row's detail view,
	// or ErrNotFound when the row has none.
	ViewControl(ctx context.Context) (Control, error)
}

// Control is an actionable element.
type Control interface {
	Displayed() bool
	Enabled() bool
	Click(ctx context.Context) error
}

// Field names a scalar region of the detail view.
type Field string

// Detail view fields.
const (
	FieldNumber       Field = "number"
	FieldJurisdiction Field = "jurisdiction"
	FieldDependency   Field = "dependency"
	FieldStatus       Field = "status"
	FieldCaption      Field = "caption"
)

// Fields lists the scalar fields in extraction order.
var Fields = []Field{FieldNumber, FieldJurisdiction, FieldDependency, FieldStatus, FieldCaption}

// DetailView is a loaded case detail view.
type DetailView interface {
	// Field returns the trimmed text of a scalar field region, or
	// ErrNotFound.
	Field(ctx context.Context, name Field) (string, error)

	// History waits up to timeout for the movement table and returns its
	// rows, header included, as cell texts. It returns ErrNotFound when the
	// table does not appear.
	History(ctx context.Context, timeout time.Duration) ([][]string, error)

	// Participants switches to the participants tab, waits up to timeout for
	// its table and returns one (role, name) pair per row.
	Participants(ctx context.Context, timeout time.Duration) ([][2]string, error)
}
