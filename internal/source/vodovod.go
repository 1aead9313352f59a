package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/couchcryptid/island-notify/internal/domain"
	"github.com/couchcryptid/island-notify/internal/geo"
	"github.com/couchcryptid/island-notify/internal/match"
)

// vodovodZadar watches the water utility's consumer-notice page. The page
// offers no per-notice ids, titles, or links; a notice is a dated block of
// body text, so the entry identity is (date, title, body). Place names in
// the body keep their title-casing, hence the capitalization-variant
// matching at settlement grain.
type vodovodZadar struct {
	index   *geo.Index
	fetcher *fetcher
	pageURL string
}

// vodovodTitle is the fixed title for every notice on the page.
const vodovodTitle = "Obavijest potrošačima"

func newVodovodZadar(opts Options) *vodovodZadar {
	return &vodovodZadar{
		index:   opts.Index,
		fetcher: newFetcher(opts),
		pageURL: "https://www.vodovod-zadar.hr/obavijesti",
	}
}

func (s *vodovodZadar) Name() string  { return "vodovod-zadar" }
func (s *vodovodZadar) Label() string { return "Vodovod Zadar" }

func (s *vodovodZadar) Scope() match.Scope {
	return match.Scope{Grain: match.SettlementGrain, TitleCased: true}
}

func (s *vodovodZadar) Collect(ctx context.Context) ([]domain.Entry, error) {
	doc, err := s.fetcher.document(ctx, s.pageURL)
	if err != nil {
		return nil, fmt.Errorf("vodovod-zadar: %w", err)
	}
	return parseVodovodNotices(doc), nil
}

// parseVodovodNotices extracts one entry per notice block.
func parseVodovodNotices(doc *goquery.Document) []domain.Entry {
	var entries []domain.Entry
	doc.Find("div.news-news-list").Each(func(_ int, div *goquery.Selection) {
		published := strings.TrimSpace(div.Find("time").First().Text())
		body := strings.TrimSpace(div.Find("div.content").First().Text())
		if body == "" {
			return
		}
		entries = append(entries, domain.Entry{
			PublishedAt: published,
			Title:       vodovodTitle,
			Body:        body,
		})
	})
	return entries
}

func (s *vodovodZadar) EntryKey(e domain.Entry) string {
	return domain.JoinKey(e.PublishedAt, e.Title, e.Body)
}

func (s *vodovodZadar) Message(rel domain.Relevance) (string, string) {
	subject := s.Label() + " - " + keyField(rel.EntryKey, 1)
	return subject, htmlBody(keyField(rel.EntryKey, 1), s.pageURL)
}
