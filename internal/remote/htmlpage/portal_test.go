package htmlpage_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/docket/internal/remote/htmlpage"
)

// fixtureCase is one row of the fixture portal.
type fixtureCase struct {
	Number         string
	NoView         bool // Row renders without a view link.
	NoParticipants bool // Detail view has no participants tab.
}

// portal serves a small results portal shaped like the PJN consultation:
// paged results, a detail view per row, and a participants tab.
type portal struct {
	pages [][]fixtureCase

	mu   sync.Mutex
	hits map[string]int
	ua   string
}

func newPortal(t *testing.T, pages [][]fixtureCase) (*portal, *httptest.Server) {
	t.Helper()
	p := &portal{pages: pages, hits: map[string]int{}}
	mux := http.NewServeMux()
	mux.HandleFunc("/results", p.results)
	mux.HandleFunc("/case", p.detail)
	mux.HandleFunc("/case/parts", p.participants)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return p, srv
}

func (p *portal) hit(r *http.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hits[r.URL.Path]++
	p.ua = r.UserAgent()
}

func (p *portal) count(path string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hits[path]
}

func (p *portal) lookup(r *http.Request) (page, row int, c fixtureCase, ok bool) {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 || page > len(p.pages) {
		return 0, 0, fixtureCase{}, false
	}
	row, err = strconv.Atoi(r.URL.Query().Get("row"))
	if err != nil || row < 0 || row >= len(p.pages[page-1]) {
		return 0, 0, fixtureCase{}, false
	}
	return page, row, p.pages[page-1][row], true
}

func (p *portal) results(w http.ResponseWriter, r *http.Request) {
	p.hit(r)
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 || page > len(p.pages) {
		http.NotFound(w, r)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "fixture"})

	var b strings.Builder
	b.WriteString(`<html><body><table class="table table-striped"><tr><th>Expediente</th><th></th></tr>`)
	for i, c := range p.pages[page-1] {
		fmt.Fprintf(&b, `<tr><td>%s</td><td>`, c.Number)
		if !c.NoView {
			fmt.Fprintf(&b, `<a href="/case?page=%d&row=%d"><i class="fa fa-eye"></i></a>`, page, i)
		}
		b.WriteString(`</td></tr>`)
	}
	b.WriteString(`</table>`)
	if page < len(p.pages) {
		fmt.Fprintf(&b, `<a id="j_idt118:j_idt208:j_idt215" href="/results?page=%d">Siguiente</a>`, page+1)
	} else {
		b.WriteString(`<a id="j_idt118:j_idt208:j_idt215" class="disabled">Siguiente</a>`)
	}
	b.WriteString(`</body></html>`)
	fmt.Fprint(w, b.String())
}

func detailHeader(b *strings.Builder, c fixtureCase) {
	fmt.Fprintf(b, `<div class="row"><div class="col-xs-10"><span>%s</span></div></div>`, c.Number)
	b.WriteString(`<span id="expediente:j_idt90:detailCamera"> COM </span>`)
	b.WriteString(`<span id="expediente:j_idt90:detailDependencia">JUZGADO COMERCIAL 5</span>`)
	b.WriteString(`<span id="expediente:j_idt90:detailSituation">EN LETRA</span>`)
	b.WriteString(`<span id="expediente:j_idt90:detailCover">ACME SA c/ RESIDUOS SRL s/ ordinario</span>`)
}

func (p *portal) detail(w http.ResponseWriter, r *http.Request) {
	p.hit(r)
	if _, err := r.Cookie("JSESSIONID"); err != nil {
		http.Error(w, "session expired", http.StatusForbidden)
		return
	}
	page, row, c, ok := p.lookup(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var b strings.Builder
	b.WriteString(`<html><body>`)
	detailHeader(&b, c)
	b.WriteString(`<table id="expediente:action-table">`)
	b.WriteString(`<tr><th></th><th></th><th>Fecha</th><th>Tipo</th><th>Detalle</th></tr>`)
	b.WriteString(`<tr><td></td><td></td><td>Fecha: 05/03/2020</td><td>FIRMA DESPACHO</td><td>AGREGUESE</td></tr>`)
	b.WriteString(`<tr><td>incompleta</td></tr>`)
	b.WriteString(`</table>`)
	if !c.NoParticipants {
		fmt.Fprintf(&b, `<ul class="nav"><li><a href="/case/parts?page=%d&row=%d"><span>Intervinientes</span></a></li></ul>`, page, row)
	}
	fmt.Fprintf(&b, `<a class="btn btn-default" href="/results?page=%d">Volver</a>`, page)
	b.WriteString(`</body></html>`)
	fmt.Fprint(w, b.String())
}

func (p *portal) participants(w http.ResponseWriter, r *http.Request) {
	p.hit(r)
	page, _, c, ok := p.lookup(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	var b strings.Builder
	b.WriteString(`<html><body>`)
	detailHeader(&b, c)
	b.WriteString(`<table id="expediente:participantsTable">`)
	b.WriteString(`<tr class="rf-dt-r"><td>Parte Actora</td><td> ACME SA </td></tr>`)
	b.WriteString(`<tr class="rf-dt-r"><td>DEMANDADO</td><td>RESIDUOS SRL</td></tr>`)
	b.WriteString(`<tr class="rf-dt-r"><td>PERITO</td><td>JUAN PEREZ</td></tr>`)
	b.WriteString(`</table>`)
	fmt.Fprintf(&b, `<a class="btn btn-default" href="/results?page=%d">Volver</a>`, page)
	b.WriteString(`</body></html>`)
	fmt.Fprint(w, b.String())
}

const (
	testUserAgent = "docket-test/1.0"
	shortWait     = 100 * time.Millisecond
)

func newSession(t *testing.T) *htmlpage.Session {
	t.Helper()
	s, err := htmlpage.New(htmlpage.Options{
		UserAgent:    testUserAgent,
		Timeout:      5 * time.Second,
		PollInterval: 5 * time.Millisecond,
		Selectors:    htmlpage.DefaultSelectors(),
	})
	require.NoError(t, err)
	return s
}

// staticServer serves body at every path. The returned func reports the
// number of requests served.
func staticServer(t *testing.T, body func(hit int) string) (*httptest.Server, func() int) {
	t.Helper()
	var mu sync.Mutex
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits++
		n := hits
		mu.Unlock()
		fmt.Fprint(w, body(n))
	}))
	t.Cleanup(srv.Close)
	return srv, func() int {
		mu.Lock()
		defer mu.Unlock()
		return hits
	}
}
