package htmlpage_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docket/internal/remote"
	"github.com/mesh-intelligence/docket/internal/remote/htmlpage"
	"github.com/mesh-intelligence/docket/pkg/types"
)

var twoPages = [][]fixtureCase{
	{{Number: "COM 1/2020"}, {Number: "COM 2/2020", NoView: true}, {Number: "COM 3/2020"}},
	{{Number: "COM 4/2020"}, {Number: "COM 5/2020"}},
}

func TestOpenRejectsRelativeURL(t *testing.T) {
	err := newSession(t).Open(context.Background(), "/results?page=1")
	assert.Error(t, err)
}

func TestOpenReportsHTTPErrors(t *testing.T) {
	_, srv := newPortal(t, twoPages)
	err := newSession(t).Open(context.Background(), srv.URL+"/results?page=9")
	assert.ErrorContains(t, err, "status 404")
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := types.DefaultConfig().Remote
	opts := htmlpage.OptionsFromConfig(cfg, nil)

	assert.Equal(t, cfg.UserAgent, opts.UserAgent)
	assert.Equal(t, cfg.HTTPTimeout, opts.Timeout)
	assert.Equal(t, cfg.PollInterval, opts.PollInterval)
	assert.Equal(t, htmlpage.DefaultSelectors(), opts.Selectors)
}

func TestResultsTable(t *testing.T) {
	p, srv := newPortal(t, twoPages)
	s := newSession(t)
	ctx := context.Background()
	require.NoError(t, s.Open(ctx, srv.URL+"/results?page=1"))

	require.True(t, s.WaitTable(ctx, shortWait))
	n, err := s.RowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, testUserAgent, p.ua)

	_, err = s.Row(ctx, 3)
	assert.ErrorIs(t, err, remote.ErrNotFound)

	row, err := s.Row(ctx, 1)
	require.NoError(t, err)
	_, err = row.ViewControl(ctx)
	assert.ErrorIs(t, err, remote.ErrNotFound)
}

func TestRowHandleGoesStaleAfterReload(t *testing.T) {
	_, srv := newPortal(t, twoPages)
	s := newSession(t)
	ctx := context.Background()
	require.NoError(t, s.Open(ctx, srv.URL+"/results?page=1"))

	row, err := s.Row(ctx, 0)
	require.NoError(t, err)
	view, err := row.ViewControl(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Open(ctx, srv.URL+"/results?page=1"))

	_, err = row.ViewControl(ctx)
	assert.ErrorIs(t, err, remote.ErrStale)
	assert.ErrorIs(t, view.Click(ctx), remote.ErrStale)
}

func TestDetailView(t *testing.T) {
	p, srv := newPortal(t, twoPages)
	s := newSession(t)
	ctx := context.Background()
	require.NoError(t, s.Open(ctx, srv.URL+"/results?page=1"))

	row, err := s.Row(ctx, 2)
	require.NoError(t, err)
	view, err := row.ViewControl(ctx)
	require.NoError(t, err)
	require.True(t, view.Displayed())
	require.True(t, view.Enabled())
	require.NoError(t, view.Click(ctx))
	assert.False(t, s.WaitTable(ctx, 0))

	d, err := s.WaitDetail(ctx, shortWait)
	require.NoError(t, err)

	number, err := d.Field(ctx, remote.FieldNumber)
	require.NoError(t, err)
	assert.Equal(t, "COM 3/2020", number)
	jurisdiction, err := d.Field(ctx, remote.FieldJurisdiction)
	require.NoError(t, err)
	assert.Equal(t, "COM", jurisdiction)

	history, err := d.History(ctx, shortWait)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"", "", "Fecha: 05/03/2020", "FIRMA DESPACHO", "AGREGUESE"}, history[1])
	assert.Equal(t, []string{"incompleta"}, history[2])

	parts, err := d.Participants(ctx, shortWait)
	require.NoError(t, err)
	assert.Equal(t, [][2]string{
		{"Parte Actora", "ACME SA"},
		{"DEMANDADO", "RESIDUOS SRL"},
		{"PERITO", "JUAN PEREZ"},
	}, parts)
	assert.Equal(t, 1, p.count("/case/parts"))

	require.NoError(t, s.Back(ctx))
	assert.True(t, s.WaitTable(ctx, shortWait))
	assert.Equal(t, "/results", s.URL().Path)
}

func TestDetailViewWithoutParticipants(t *testing.T) {
	_, srv := newPortal(t, [][]fixtureCase{{{Number: "COM 9/2020", NoParticipants: true}}})
	s := newSession(t)
	ctx := context.Background()
	require.NoError(t, s.Open(ctx, srv.URL+"/results?page=1"))
	require.NoError(t, s.Open(ctx, srv.URL+"/case?page=1&row=0"))

	d, err := s.WaitDetail(ctx, shortWait)
	require.NoError(t, err)
	_, err = d.Participants(ctx, shortWait)
	assert.ErrorIs(t, err, remote.ErrNotFound)
}

func TestDetailRequiresSessionCookie(t *testing.T) {
	_, srv := newPortal(t, twoPages)
	s := newSession(t)
	err := s.Open(context.Background(), srv.URL+"/case?page=1&row=0")
	assert.ErrorContains(t, err, "status 403")
}

func TestNextControl(t *testing.T) {
	_, srv := newPortal(t, twoPages)
	s := newSession(t)
	ctx := context.Background()
	require.NoError(t, s.Open(ctx, srv.URL+"/results?page=1"))

	next, err := s.NextControl(ctx)
	require.NoError(t, err)
	require.True(t, next.Enabled())
	require.NoError(t, next.Click(ctx))
	require.True(t, s.WaitTable(ctx, shortWait))
	n, err := s.RowCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	last, err := s.NextControl(ctx)
	require.NoError(t, err)
	assert.False(t, last.Enabled())
	assert.ErrorIs(t, last.Click(ctx), htmlpage.ErrNoTarget)
}

func TestNextControlAbsent(t *testing.T) {
	srv, _ := staticServer(t, func(int) string {
		return `<table class="table-striped"><tr><td>x</td></tr></table>`
	})
	s := newSession(t)
	ctx := context.Background()
	require.NoError(t, s.Open(ctx, srv.URL))

	_, err := s.NextControl(ctx)
	assert.ErrorIs(t, err, remote.ErrNotFound)
}

func TestWaitTablePolls(t *testing.T) {
	srv, hits := staticServer(t, func(n int) string {
		if n < 3 {
			return `<p>cargando</p>`
		}
		return `<table class="table-striped"><tr><td>x</td></tr></table>`
	})
	s := newSession(t)
	ctx := context.Background()
	require.NoError(t, s.Open(ctx, srv.URL))

	assert.True(t, s.WaitTable(ctx, shortWait))
	assert.Equal(t, 3, hits())
}

func TestWaitTableTimesOut(t *testing.T) {
	srv, hits := staticServer(t, func(int) string { return `<p>sin resultados</p>` })
	s := newSession(t)
	ctx := context.Background()
	require.NoError(t, s.Open(ctx, srv.URL))

	assert.False(t, s.WaitTable(ctx, 20*time.Millisecond))
	assert.Greater(t, hits(), 1)

	_, err := s.RowCount(ctx)
	assert.ErrorIs(t, err, remote.ErrNotFound)
	_, err = s.WaitDetail(ctx, 0)
	assert.ErrorIs(t, err, remote.ErrNotFound)
}

func TestControlState(t *testing.T) {
	page := `<table class="table-striped">
<tr><td><a href="/a"><i class="fa-eye"></i></a></td></tr>
<tr><td><a href="/b" hidden><i class="fa-eye"></i></a></td></tr>
<tr style="display: none"><td><a href="/c"><i class="fa-eye"></i></a></td></tr>
<tr><td><a href="/d" disabled><i class="fa-eye"></i></a></td></tr>
<tr><td><a href="/e" class="disabled"><i class="fa-eye"></i></a></td></tr>
<tr><td><a href="/f" aria-disabled="true"><i class="fa-eye"></i></a></td></tr>
<tr><td><span data-href="/g"><i class="fa-eye"></i></span></td></tr>
</table>`
	srv, _ := staticServer(t, func(int) string { return page })
	s := newSession(t)
	ctx := context.Background()
	require.NoError(t, s.Open(ctx, srv.URL))

	tests := []struct {
		row       int
		displayed bool
		enabled   bool
	}{
		{0, true, true},
		{1, false, true},
		{2, false, true},
		{3, true, false},
		{4, true, false},
		{5, true, false},
		{6, true, true},
	}
	for _, tt := range tests {
		row, err := s.Row(ctx, tt.row)
		require.NoError(t, err)
		view, err := row.ViewControl(ctx)
		require.NoError(t, err)
		assert.Equal(t, tt.displayed, view.Displayed(), "row %d displayed", tt.row)
		assert.Equal(t, tt.enabled, view.Enabled(), "row %d enabled", tt.row)
	}

	row, err := s.Row(ctx, 6)
	require.NoError(t, err)
	view, err := row.ViewControl(ctx)
	require.NoError(t, err)
	require.NoError(t, view.Click(ctx))
	assert.True(t, strings.HasSuffix(s.URL().String(), "/g"))
}

func TestBackWithoutControlReloadsListing(t *testing.T) {
	srv, _ := staticServer(t, func(int) string {
		return `<table class="table-striped"><tr><td><a href="/detail"><i class="fa-eye"></i></a></td></tr></table>`
	})
	s := newSession(t)
	ctx := context.Background()
	require.NoError(t, s.Open(ctx, srv.URL+"/listing"))
	require.True(t, s.WaitTable(ctx, shortWait))

	row, err := s.Row(ctx, 0)
	require.NoError(t, err)
	view, err := row.ViewControl(ctx)
	require.NoError(t, err)
	require.NoError(t, view.Click(ctx))
	assert.Equal(t, "/detail", s.URL().Path)

	require.NoError(t, s.Back(ctx))
	assert.Equal(t, "/listing", s.URL().Path)
}

func TestBackBeforeAnyTable(t *testing.T) {
	srv, _ := staticServer(t, func(int) string { return `<p></p>` })
	s := newSession(t)
	ctx := context.Background()
	require.NoError(t, s.Open(ctx, srv.URL))

	assert.ErrorIs(t, s.Back(ctx), remote.ErrNotFound)
}
