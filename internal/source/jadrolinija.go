package source

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/couchcryptid/island-notify/internal/domain"
	"github.com/couchcryptid/island-notify/internal/geo"
	"github.com/couchcryptid/island-notify/internal/match"
	"github.com/mmcdole/gofeed"
)

// jadrolinija watches the ferry operator through two channels: the news RSS
// feed and the passenger-notice site, whose announcements overlap only
// partially. Matching runs at unit grain: the units are ferry lines whose
// names are short numeric codes ("335"), so the standalone-token strategy
// carries the weight. The feed's pubDate is unreliable and is not part of
// the entry identity; guid + title are.
type jadrolinija struct {
	index      *geo.Index
	parser     *gofeed.Parser
	fetcher    *fetcher
	feedURL    string
	noticeURL  string
	trafficURL string
}

func newJadrolinija(opts Options) *jadrolinija {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: opts.Timeout}
	if opts.UserAgent != "" {
		parser.UserAgent = opts.UserAgent
	}
	return &jadrolinija{
		index:      opts.Index,
		parser:     parser,
		fetcher:    newFetcher(opts),
		feedURL:    "https://www.jadrolinija.hr/feeds/vijesti",
		noticeURL:  "https://www.jadrolinija.hr/hr/obavijesti-za-putnike",
		trafficURL: "https://www.jadrolinija.hr/hr/obavijesti/stanje-u-prometu/",
	}
}

func (s *jadrolinija) Name() string  { return "jadrolinija" }
func (s *jadrolinija) Label() string { return "Jadrolinija" }

func (s *jadrolinija) Scope() match.Scope {
	return match.Scope{Grain: match.UnitGrain}
}

func (s *jadrolinija) Collect(ctx context.Context) ([]domain.Entry, error) {
	feed, err := s.parser.ParseURLWithContext(s.feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("jadrolinija: fetch feed: %w", err)
	}
	entries := mapFeedItems(feed.Items)

	notices, err := s.collectNotices(ctx)
	if err != nil {
		return nil, err
	}
	return append(entries, notices...), nil
}

// collectNotices scrapes the passenger-notice listing and every notice
// subpage it links to. Notices published on the site alone never appear in
// the feed.
func (s *jadrolinija) collectNotices(ctx context.Context) ([]domain.Entry, error) {
	listing, err := s.fetcher.document(ctx, s.noticeURL)
	if err != nil {
		return nil, fmt.Errorf("jadrolinija: %w", err)
	}

	var entries []domain.Entry
	for _, link := range noticeLinks(listing) {
		sub, err := s.fetcher.document(ctx, link)
		if err != nil {
			return nil, fmt.Errorf("jadrolinija: %w", err)
		}
		entries = append(entries, noticeEntry(sub, link))
	}
	return entries, nil
}

// noticeLinks extracts the subpage links from the press listing, resolving
// relative hrefs against the site host.
func noticeLinks(doc *goquery.Document) []string {
	var links []string
	doc.Find("ul.press__list a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if href == "" {
			return
		}
		if !strings.HasPrefix(href, "http") {
			href = "https://www.jadrolinija.hr" + href
		}
		links = append(links, href)
	})
	return links
}

// noticeEntry extracts one notice subpage. Subpages carry no reliable
// publication time; the trailing path segment is the external id.
func noticeEntry(doc *goquery.Document, link string) domain.Entry {
	return domain.Entry{
		ExternalID: link[strings.LastIndex(link, "/")+1:],
		Link:       link,
		Title:      strings.TrimSpace(doc.Find("h1").First().Text()),
		Subtitle:   strings.TrimSpace(doc.Find("h2").First().Text()),
		Body:       strings.TrimSpace(doc.Find("div.wysiwyg").First().Text()),
	}
}

// mapFeedItems converts feed items to entries. Item content (atom:content)
// carries the full announcement; description is the lead paragraph.
func mapFeedItems(items []*gofeed.Item) []domain.Entry {
	entries := make([]domain.Entry, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		published := ""
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.Format(time.RFC3339)
		}
		entries = append(entries, domain.Entry{
			ExternalID:  item.GUID,
			PublishedAt: published,
			Link:        item.Link,
			Title:       item.Title,
			Subtitle:    item.Description,
			Body:        item.Content,
		})
	}
	return entries
}

func (s *jadrolinija) EntryKey(e domain.Entry) string {
	return domain.JoinKey(e.ExternalID, e.Title)
}

// Message links to the live traffic page for feed-native notices (urn:uuid
// guids) and to the passenger-notice listing otherwise.
func (s *jadrolinija) Message(rel domain.Relevance) (string, string) {
	subject := "[" + s.Label() + "] " + s.index.UnitLabel(rel.Unit)

	link := s.noticeURL
	if strings.Contains(keyField(rel.EntryKey, 0), "urn:uuid") {
		link = s.trafficURL
	}
	return subject, htmlBody(keyField(rel.EntryKey, 1), link)
}
