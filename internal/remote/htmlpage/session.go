// Package htmlpage drives a server-rendered results portal over HTTP.
//
// A Session keeps the current document and follows links the way a user
// clicks them: activating a control fetches its href (or data-href).
// Waits poll by re-fetching the current URL until the wanted element shows
// up or the timeout elapses. Every query reads the live document, and any
// handle taken from an earlier document reports remote.ErrStale.
package htmlpage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"github.com/mesh-intelligence/docket/internal/remote"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// ErrNoTarget is returned when a control carries no link to follow.
var ErrNoTarget = errors.New("control has no navigable target")

// Options configures a Session.
type Options struct {
	UserAgent    string
	Timeout      time.Duration // Per HTTP request.
	PollInterval time.Duration
	Selectors    Selectors
	Logger       *slog.Logger
}

// OptionsFromConfig maps remote settings onto Options with the default
// selectors.
func OptionsFromConfig(c types.RemoteConfig, logger *slog.Logger) Options {
	return Options{
		UserAgent:    c.UserAgent,
		Timeout:      c.HTTPTimeout,
		PollInterval: c.PollInterval,
		Selectors:    DefaultSelectors(),
		Logger:       logger,
	}
}

// Session is a remote.Page backed by HTTP requests. It is not safe for
// concurrent use.
type Session struct {
	http   *resty.Client
	sel    Selectors
	poll   time.Duration
	logger *slog.Logger

	doc     *goquery.Document
	url     *url.URL
	listing *url.URL // Last URL that showed the results table.
	gen     int      // Incremented on every document load.
}

var _ remote.Page = (*Session)(nil)

const defaultPollInterval = 250 * time.Millisecond

// New returns a Session with its own cookie jar.
func New(opts Options) (*Session, error) {
	client := resty.New()
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	client.SetCookieJar(jar)
	if opts.UserAgent != "" {
		client.SetHeader("user-agent", opts.UserAgent)
	}
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	poll := opts.PollInterval
	if poll <= 0 {
		poll = defaultPollInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		http:   client,
		sel:    opts.Selectors,
		poll:   poll,
		logger: logger,
	}, nil
}

// Open loads the starting document, normally the first results page.
func (s *Session) Open(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parsing start url: %w", err)
	}
	if !u.IsAbs() {
		return fmt.Errorf("start url %q is not absolute", rawURL)
	}
	return s.load(ctx, u)
}

// URL returns the location of the current document, or nil before Open.
func (s *Session) URL() *url.URL {
	return s.url
}

// load fetches u and makes it the current document.
func (s *Session) load(ctx context.Context, u *url.URL) error {
	res, err := s.http.R().
		SetContext(ctx).
		Get(u.String())
	if err != nil {
		return fmt.Errorf("fetching %s: %w", u, err)
	}
	if res.IsError() {
		return fmt.Errorf("fetching %s: status %d", u, res.StatusCode())
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		return fmt.Errorf("parsing %s: %w", u, err)
	}

	final := u
	if res.RawResponse != nil && res.RawResponse.Request != nil {
		final = res.RawResponse.Request.URL
	}
	s.doc = doc
	s.url = final
	s.gen++
	s.logger.DebugContext(ctx, "document loaded", "url", final.String(), "status", res.StatusCode())
	return nil
}

// follow resolves href against the current document and loads it.
func (s *Session) follow(ctx context.Context, href string) error {
	ref, err := url.Parse(href)
	if err != nil {
		return fmt.Errorf("parsing link %q: %w", href, err)
	}
	if s.url != nil {
		ref = s.url.ResolveReference(ref)
	}
	return s.load(ctx, ref)
}

// find runs selector against the current document.
func (s *Session) find(selector string) *goquery.Selection {
	if s.doc == nil {
		return &goquery.Selection{}
	}
	return s.doc.Find(selector)
}

// waitFor reports whether selector matches within timeout, re-fetching the
// current URL between checks.
func (s *Session) waitFor(ctx context.Context, selector string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if s.find(selector).Length() > 0 {
			return true
		}
		remaining := time.Until(deadline)
		if remaining <= 0 || s.url == nil {
			return false
		}
		t := time.NewTimer(min(s.poll, remaining))
		select {
		case <-ctx.Done():
			t.Stop()
			return false
		case <-t.C:
		}
		if err := s.load(ctx, s.url); err != nil {
			s.logger.DebugContext(ctx, "reload while waiting failed", "selector", selector, "err", err)
		}
	}
}

func (s *Session) WaitTable(ctx context.Context, timeout time.Duration) bool {
	if !s.waitFor(ctx, s.sel.Table, timeout) {
		return false
	}
	s.listing = s.url
	return true
}

func (s *Session) rows() *goquery.Selection {
	return s.find(s.sel.Table).First().Find(s.sel.Rows)
}

func (s *Session) RowCount(ctx context.Context) (int, error) {
	if s.find(s.sel.Table).Length() == 0 {
		return 0, fmt.Errorf("results table: %w", remote.ErrNotFound)
	}
	return s.rows().Length(), nil
}

func (s *Session) Row(ctx context.Context, index int) (remote.Row, error) {
	rows := s.rows()
	if index < 0 || index >= rows.Length() {
		return nil, fmt.Errorf("row %d of %d: %w", index, rows.Length(), remote.ErrNotFound)
	}
	return &row{s: s, sel: rows.Eq(index), gen: s.gen}, nil
}

func (s *Session) WaitDetail(ctx context.Context, timeout time.Duration) (remote.DetailView, error) {
	if !s.waitFor(ctx, s.sel.DetailAnchor, timeout) {
		return nil, fmt.Errorf("detail view after %s: %w", timeout, remote.ErrNotFound)
	}
	return &detail{s: s}, nil
}

// Back activates the return control. Without one it reloads the last
// results page.
func (s *Session) Back(ctx context.Context) error {
	if back := s.find(s.sel.Back).First(); back.Length() > 0 {
		if href, ok := target(back); ok {
			return s.follow(ctx, href)
		}
	}
	if s.listing == nil {
		return fmt.Errorf("return control: %w", remote.ErrNotFound)
	}
	return s.load(ctx, s.listing)
}

func (s *Session) NextControl(ctx context.Context) (remote.Control, error) {
	next := s.find(s.sel.Next).First()
	if next.Length() == 0 {
		return nil, fmt.Errorf("next control: %w", remote.ErrNotFound)
	}
	return &control{s: s, sel: next, gen: s.gen}, nil
}

// target returns the link a control navigates to.
func target(sel *goquery.Selection) (string, bool) {
	link := sel.Closest("[data-href], a[href]")
	if link.Length() == 0 {
		return "", false
	}
	href, ok := link.Attr("data-href")
	if !ok {
		href, ok = link.Attr("href")
	}
	href = strings.TrimSpace(href)
	if !ok || href == "" || href == "#" || strings.HasPrefix(strings.ToLower(href), "javascript:") {
		return "", false
	}
	return href, true
}

type row struct {
	s   *Session
	sel *goquery.Selection
	gen int
}

func (r *row) ViewControl(ctx context.Context) (remote.Control, error) {
	if r.gen != r.s.gen {
		return nil, remote.ErrStale
	}
	view := r.sel.Find(r.s.sel.ViewControl).First()
	if view.Length() == 0 {
		return nil, fmt.Errorf("view control: %w", remote.ErrNotFound)
	}
	return &control{s: r.s, sel: view, gen: r.gen}, nil
}

type control struct {
	s   *Session
	sel *goquery.Selection
	gen int
}

// Displayed reports false when the control or an ancestor is hidden.
func (c *control) Displayed() bool {
	if c.sel.Closest("[hidden]").Length() > 0 {
		return false
	}
	for n := c.sel; n.Length() > 0; n = n.Parent() {
		style, _ := n.Attr("style")
		style = strings.ReplaceAll(strings.ToLower(style), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			return false
		}
	}
	return true
}

// Enabled reports false for a disabled attribute, a "disabled" class, or
// aria-disabled="true" on the control or its link.
func (c *control) Enabled() bool {
	for _, n := range []*goquery.Selection{c.sel, c.sel.Closest("a, button")} {
		if n.Length() == 0 {
			continue
		}
		if _, ok := n.Attr("disabled"); ok {
			return false
		}
		if n.HasClass("disabled") {
			return false
		}
		if v, _ := n.Attr("aria-disabled"); v == "true" {
			return false
		}
	}
	return true
}

func (c *control) Click(ctx context.Context) error {
	if c.gen != c.s.gen {
		return remote.ErrStale
	}
	href, ok := target(c.sel)
	if !ok {
		return ErrNoTarget
	}
	return c.s.follow(ctx, href)
}
