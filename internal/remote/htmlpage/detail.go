package htmlpage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/mesh-intelligence/docket/internal/remote"
)

// detail reads the session's current document as a detail view.
type detail struct {
	s *Session
}

func (d *detail) Field(ctx context.Context, name remote.Field) (string, error) {
	selector, ok := d.s.sel.Fields[name]
	if !ok {
		return "", fmt.Errorf("no selector for field %s: %w", name, remote.ErrNotFound)
	}
	el := d.s.find(selector).First()
	if el.Length() == 0 {
		return "", fmt.Errorf("field %s: %w", name, remote.ErrNotFound)
	}
	return strings.TrimSpace(el.Text()), nil
}

func (d *detail) History(ctx context.Context, timeout time.Duration) ([][]string, error) {
	if !d.s.waitFor(ctx, d.s.sel.History, timeout) {
		return nil, fmt.Errorf("movement history: %w", remote.ErrNotFound)
	}
	var out [][]string
	d.s.find(d.s.sel.History).Each(func(_ int, tr *goquery.Selection) {
		cells := []string{}
		tr.Find(d.s.sel.HistoryCells).Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(td.Text()))
		})
		out = append(out, cells)
	})
	return out, nil
}

// Participants opens the participants tab when its table is not already
// rendered, then waits for the table. A table without rows yields an empty
// list.
func (d *detail) Participants(ctx context.Context, timeout time.Duration) ([][2]string, error) {
	if d.s.find(d.s.sel.ParticipantsTable).Length() == 0 {
		if tab := d.s.find(d.s.sel.ParticipantsTab).First(); tab.Length() > 0 {
			if href, ok := target(tab); ok {
				if err := d.s.follow(ctx, href); err != nil {
					return nil, fmt.Errorf("opening participants tab: %w", err)
				}
			}
		}
	}
	if !d.s.waitFor(ctx, d.s.sel.ParticipantsTable, timeout) {
		return nil, fmt.Errorf("participants table: %w", remote.ErrNotFound)
	}

	out := [][2]string{}
	d.s.find(d.s.sel.Participants).Each(func(_ int, tr *goquery.Selection) {
		out = append(out, [2]string{
			strings.TrimSpace(tr.Find(d.s.sel.RoleCell).First().Text()),
			strings.TrimSpace(tr.Find(d.s.sel.NameCell).First().Text()),
		})
	})
	return out, nil
}
