// Package remotetest provides an in-memory remote.Page for tests.
package remotetest

import (
	"context"
	"time"

	"github.com/mesh-intelligence/docket/internal/remote"
)

// Detail describes the detail view a row opens.
type Detail struct {
	Fields map[remote.Field]string

	// History holds the movement table rows, header first. Nil means the
	// table never appears.
	History [][]string

	Participants        [][2]string
	ParticipantsMissing bool
}

// Row describes one data row of a fake results page.
type Row struct {
	Detail   *Detail // Nil opens a view whose anchor never appears.
	NoView   bool    // The row has no view control.
	Stale    bool    // Resolving the view control reports remote.ErrStale.
	ClickErr error   // Activating the view control fails.
}

// Page is a scripted remote.Page. Pages holds the rows of each results page
// in order; the next control disappears on the last page.
type Page struct {
	Pages [][]Row

	NoTable            bool // The results table never appears.
	DisabledNextOnLast bool // The last page shows a disabled next control instead of none.
	LoseTableAfterBack int  // The table wait following the Nth return (1-based) fails once; 0 never.

	page      int
	inDetail  bool
	tableLost bool
	current   *Detail

	Resolved []int // Row indices resolved, in order, across all pages.
	Opened   int   // Detail views opened.
	Backs    int
	Advances int
}

var _ remote.Page = (*Page)(nil)

// CurrentPage returns the zero-based index of the page being shown.
func (p *Page) CurrentPage() int { return p.page }

func (p *Page) WaitTable(ctx context.Context, timeout time.Duration) bool {
	if p.NoTable || p.inDetail || p.page >= len(p.Pages) {
		return false
	}
	if p.LoseTableAfterBack > 0 && p.Backs == p.LoseTableAfterBack && !p.tableLost {
		p.tableLost = true
		return false
	}
	return true
}

func (p *Page) RowCount(ctx context.Context) (int, error) {
	if p.inDetail || p.page >= len(p.Pages) {
		return 0, remote.ErrNotFound
	}
	return len(p.Pages[p.page]), nil
}

func (p *Page) Row(ctx context.Context, index int) (remote.Row, error) {
	if p.inDetail || p.page >= len(p.Pages) || index < 0 || index >= len(p.Pages[p.page]) {
		return nil, remote.ErrNotFound
	}
	p.Resolved = append(p.Resolved, index)
	return &row{page: p, script: p.Pages[p.page][index]}, nil
}

func (p *Page) WaitDetail(ctx context.Context, timeout time.Duration) (remote.DetailView, error) {
	if !p.inDetail || p.current == nil {
		return nil, remote.ErrNotFound
	}
	return &detail{script: p.current}, nil
}

func (p *Page) Back(ctx context.Context) error {
	p.Backs++
	p.inDetail = false
	p.current = nil
	return nil
}

func (p *Page) NextControl(ctx context.Context) (remote.Control, error) {
	if p.inDetail {
		return nil, remote.ErrNotFound
	}
	last := p.page >= len(p.Pages)-1
	if last && !p.DisabledNextOnLast {
		return nil, remote.ErrNotFound
	}
	return &control{
		displayed: true,
		enabled:   !last,
		click: func() error {
			p.page++
			p.Advances++
			return nil
		},
	}, nil
}

type row struct {
	page *Page
	script Row
}

func (r *row) ViewControl(ctx context.Context) (remote.Control, error) {
	switch {
	case r.script.NoView:
		return nil, remote.ErrNotFound
	case r.script.Stale:
		return nil, remote.ErrStale
	}
	return &control{
		displayed: true,
		enabled:   true,
		click: func() error {
			if r.script.ClickErr != nil {
				return r.script.ClickErr
			}
			r.page.inDetail = true
			r.page.current = r.script.Detail
			r.page.Opened++
			return nil
		},
	}, nil
}

type control struct {
	displayed bool
	enabled   bool
	click     func() error
}

func (c *control) Displayed() bool { return c.displayed }
func (c *control) Enabled() bool   { return c.enabled }

func (c *control) Click(ctx context.Context) error {
	return c.click()
}

type detail struct {
	script *Detail
}

func (d *detail) Field(ctx context.Context, name remote.Field) (string, error) {
	v, ok := d.script.Fields[name]
	if !ok {
		return "", remote.ErrNotFound
	}
	return v, nil
}

func (d *detail) History(ctx context.Context, timeout time.Duration) ([][]string, error) {
	if d.script.History == nil {
		return nil, remote.ErrNotFound
	}
	return d.script.History, nil
}

func (d *detail) Participants(ctx context.Context, timeout time.Duration) ([][2]string, error) {
	if d.script.ParticipantsMissing {
		return nil, remote.ErrNotFound
	}
	return d.script.Participants, nil
}

// CaseDetail returns a complete detail view for case number n with one
// movement and one party of each role.
func CaseDetail(n string) *Detail {
	return &Detail{
		Fields: map[remote.Field]string{
			remote.FieldNumber:       n,
			remote.FieldJurisdiction: "COM",
			remote.FieldDependency:   "JUZGADO COMERCIAL 5",
			remote.FieldStatus:       "EN LETRA",
			remote.FieldCaption:      "ACME SA c/ RESIDUOS SRL s/ ordinario",
		},
		History: [][]string{
			{"", "", "Fecha", "Tipo", "Detalle"},
			{"", "", "Fecha: 05/03/2020", "FIRMA DESPACHO", "AGREGUESE"},
		},
		Participants: [][2]string{
			{"Parte Actora", "ACME SA"},
			{"Demandado Principal", "RESIDUOS SRL"},
		},
	}
}
