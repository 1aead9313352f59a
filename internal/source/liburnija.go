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

// liburnijaZadar watches the bus operator's news listing. Only the newest
// few teasers are inspected (the listing is long and old items never change
// relevance). Teaser titles keep their title-casing.
type liburnijaZadar struct {
	index   *geo.Index
	fetcher *fetcher
	newsURL string
}

// liburnijaNewsLimit bounds how many teasers one cycle inspects.
const liburnijaNewsLimit = 8

func newLiburnijaZadar(opts Options) *liburnijaZadar {
	return &liburnijaZadar{
		index:   opts.Index,
		fetcher: newFetcher(opts),
		newsURL: "https://liburnija-zadar.hr/novosti/",
	}
}

func (s *liburnijaZadar) Name() string  { return "liburnija-zadar" }
func (s *liburnijaZadar) Label() string { return "Liburnija Zadar" }

func (s *liburnijaZadar) Scope() match.Scope {
	return match.Scope{Grain: match.SettlementGrain, TitleCased: true}
}

func (s *liburnijaZadar) Collect(ctx context.Context) ([]domain.Entry, error) {
	doc, err := s.fetcher.document(ctx, s.newsURL)
	if err != nil {
		return nil, fmt.Errorf("liburnija-zadar: %w", err)
	}
	return parseLiburnijaNews(doc, liburnijaNewsLimit), nil
}

// parseLiburnijaNews extracts up to limit teaser entries from the masonry
// news listing. Teasers carry no subtitle or body.
func parseLiburnijaNews(doc *goquery.Document, limit int) []domain.Entry {
	var entries []domain.Entry
	doc.Find("div.av-masonry-container a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		title := strings.TrimSpace(a.Find("h3").First().Text())
		if title == "" {
			return true
		}
		externalID, _ := a.Attr("data-av-masonry-item")
		link, _ := a.Attr("href")
		published := strings.TrimSpace(a.Find("span.av-masonry-date").First().Text())

		entries = append(entries, domain.Entry{
			ExternalID:  externalID,
			PublishedAt: published,
			Link:        link,
			Title:       title,
		})
		return len(entries) < limit
	})
	return entries
}

func (s *liburnijaZadar) EntryKey(e domain.Entry) string {
	return domain.JoinKey(e.ExternalID, e.Title)
}

func (s *liburnijaZadar) Message(rel domain.Relevance) (string, string) {
	title := keyField(rel.EntryKey, 1)
	return s.Label() + " | " + title, htmlBody(title, s.newsURL)
}
