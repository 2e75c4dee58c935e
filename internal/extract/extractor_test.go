package extract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docket/internal/remote"
	"github.com/mesh-intelligence/docket/internal/remote/remotetest"
	"github.com/mesh-intelligence/docket/internal/staging"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// openDetail returns the detail view a fake page shows for fixture.
func openDetail(t *testing.T, fixture *remotetest.Detail) remote.DetailView {
	t.Helper()
	ctx := context.Background()
	page := &remotetest.Page{Pages: [][]remotetest.Row{{{Detail: fixture}}}}
	row, err := page.Row(ctx, 0)
	require.NoError(t, err)
	ctl, err := row.ViewControl(ctx)
	require.NoError(t, err)
	require.NoError(t, ctl.Click(ctx))
	view, err := page.WaitDetail(ctx, time.Second)
	require.NoError(t, err)
	return view
}

type failingBuffer struct{ staging.MemoryBuffer }

func (f *failingBuffer) Append(types.Case) error { return errors.New("disk full") }

func TestExtractFullRecord(t *testing.T) {
	buf := staging.NewMemoryBuffer()
	e := New(buf, Options{}, nil)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	e.now = func() time.Time { return fixed }

	fixture := remotetest.CaseDetail("COM 012345/2019")
	fixture.Fields[remote.FieldCaption] = "  ACME SA c/ RESIDUOS SRL s/ ordinario  "
	fixture.Participants = append(fixture.Participants, [2]string{"Tercero", "PERITO CONTADOR"})

	got, err := e.Extract(context.Background(), openDetail(t, fixture))
	require.NoError(t, err)

	want := types.Case{
		Number:       "COM 012345/2019",
		Jurisdiction: "COM",
		Dependency:   "JUZGADO COMERCIAL 5",
		Status:       "EN LETRA",
		Caption:      "ACME SA c/ RESIDUOS SRL s/ ordinario",
		Movements: []types.Movement{
			{RawDate: "Fecha: 05/03/2020", Type: "FIRMA DESPACHO", Detail: "AGREGUESE"},
		},
		Actors:      []string{"ACME SA"},
		Defendants:  []string{"RESIDUOS SRL"},
		ExtractedAt: &fixed,
	}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(types.Case{}, "StagedID")); diff != "" {
		t.Errorf("extracted case mismatch (-want +got):\n%s", diff)
	}

	id, err := uuid.Parse(got.StagedID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())

	staged, err := buf.ReadAll()
	require.NoError(t, err)
	require.Len(t, staged, 1)
	assert.Equal(t, got.StagedID, staged[0].StagedID)
}

func TestExtractMissingHistoryYieldsEmptyMovements(t *testing.T) {
	buf := staging.NewMemoryBuffer()
	e := New(buf, Options{HistoryTimeout: 10 * time.Millisecond}, nil)

	fixture := remotetest.CaseDetail("COM 1/2020")
	fixture.History = nil

	got, err := e.Extract(context.Background(), openDetail(t, fixture))
	require.NoError(t, err)
	assert.NotNil(t, got.Movements)
	assert.Empty(t, got.Movements)
	assert.Equal(t, 1, buf.Len())
}

func TestExtractSkipsShortHistoryRows(t *testing.T) {
	e := New(staging.NewMemoryBuffer(), Options{}, nil)

	fixture := remotetest.CaseDetail("COM 2/2020")
	fixture.History = [][]string{
		{"", "", "Fecha", "Tipo", "Detalle"},
		{"", "", "Fecha: 01/02/2021", "CEDULA", "NOTIFIQUESE"},
		{"solo", "tres", "celdas"},
		{"", "", " Fecha: 03/02/2021 ", " ESCRITO ", " CONTESTA "},
	}

	got, err := e.Extract(context.Background(), openDetail(t, fixture))
	require.NoError(t, err)
	assert.Equal(t, []types.Movement{
		{RawDate: "Fecha: 01/02/2021", Type: "CEDULA", Detail: "NOTIFIQUESE"},
		{RawDate: "Fecha: 03/02/2021", Type: "ESCRITO", Detail: "CONTESTA"},
	}, got.Movements)
}

func TestExtractHeaderOnlyHistory(t *testing.T) {
	e := New(staging.NewMemoryBuffer(), Options{}, nil)

	fixture := remotetest.CaseDetail("COM 3/2020")
	fixture.History = [][]string{{"", "", "Fecha", "Tipo", "Detalle"}}

	got, err := e.Extract(context.Background(), openDetail(t, fixture))
	require.NoError(t, err)
	assert.Empty(t, got.Movements)
}

func TestExtractMissingFieldStagesNothing(t *testing.T) {
	for _, f := range remote.Fields {
		t.Run(string(f), func(t *testing.T) {
			buf := staging.NewMemoryBuffer()
			e := New(buf, Options{}, nil)

			fixture := remotetest.CaseDetail("COM 4/2020")
			delete(fixture.Fields, f)

			_, err := e.Extract(context.Background(), openDetail(t, fixture))
			assert.ErrorIs(t, err, ErrExtraction)
			assert.ErrorIs(t, err, remote.ErrNotFound)
			assert.Equal(t, 0, buf.Len())
		})
	}
}

func TestExtractMissingParticipantsTableStagesNothing(t *testing.T) {
	buf := staging.NewMemoryBuffer()
	e := New(buf, Options{}, nil)

	fixture := remotetest.CaseDetail("COM 5/2020")
	fixture.ParticipantsMissing = true

	_, err := e.Extract(context.Background(), openDetail(t, fixture))
	assert.ErrorIs(t, err, ErrExtraction)
	assert.Equal(t, 0, buf.Len())
}

func TestExtractDropsUnknownRoles(t *testing.T) {
	e := New(staging.NewMemoryBuffer(), Options{}, nil)

	fixture := remotetest.CaseDetail("COM 6/2020")
	fixture.Participants = [][2]string{
		{"Tercero", "PERITO"},
		{"Citado en garantia", "ASEGURADORA"},
	}

	got, err := e.Extract(context.Background(), openDetail(t, fixture))
	require.NoError(t, err)
	assert.Empty(t, got.Actors)
	assert.Empty(t, got.Defendants)
	assert.Empty(t, got.Participants())
}

func TestExtractStagingFailureIsExtractionFailure(t *testing.T) {
	e := New(&failingBuffer{}, Options{}, nil)

	_, err := e.Extract(context.Background(), openDetail(t, remotetest.CaseDetail("COM 7/2020")))
	assert.ErrorIs(t, err, ErrExtraction)
}
