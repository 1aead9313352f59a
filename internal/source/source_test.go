package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/couchcryptid/island-notify/internal/domain"
	"github.com/couchcryptid/island-notify/internal/geo"
	"github.com/couchcryptid/island-notify/internal/match"
	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIndex(t *testing.T) *geo.Index {
	t.Helper()
	path := filepath.Join(t.TempDir(), "infra.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"units": [
			{"name": "335", "label": "Preko - Zadar", "islands": ["ugljan"]},
			{"name": "435", "islands": ["iz"]}
		]
	}`), 0o644))
	idx, err := geo.Load([]string{path}, "")
	require.NoError(t, err)
	return idx
}

func docFromHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestRegistry(t *testing.T) {
	names := Names()
	assert.Equal(t, []string{"jadrolinija", "vodovod-zadar", "liburnija-zadar"}, names)

	s, ok := ByName("jadrolinija", Options{})
	require.True(t, ok)
	assert.Equal(t, "Jadrolinija", s.Label())

	_, ok = ByName("nepoznat", Options{})
	assert.False(t, ok)
}

func TestKeyField(t *testing.T) {
	assert.Equal(t, "a", keyField("a|b|c", 0))
	assert.Equal(t, "c", keyField("a|b|c", 2))
	assert.Equal(t, "", keyField("a|b", 5))
	assert.Equal(t, "", keyField("a|b", -1))
}

func TestMapFeedItems(t *testing.T) {
	published := time.Date(2024, 3, 12, 8, 0, 0, 0, time.UTC)
	items := []*gofeed.Item{
		{
			GUID:            "urn:uuid:1234",
			Title:           "Linija 335 ne vozi",
			Description:     "Zbog nevremena",
			Content:         "Trajektna linija 335 danas ne vozi.",
			Link:            "https://www.jadrolinija.hr/n/1",
			PublishedParsed: &published,
		},
		nil,
		{GUID: "g2", Title: "Red plovidbe"},
	}

	entries := mapFeedItems(items)
	require.Len(t, entries, 2)

	assert.Equal(t, "urn:uuid:1234", entries[0].ExternalID)
	assert.Equal(t, "Linija 335 ne vozi", entries[0].Title)
	assert.Equal(t, "Zbog nevremena", entries[0].Subtitle)
	assert.Equal(t, "Trajektna linija 335 danas ne vozi.", entries[0].Body)
	assert.Equal(t, "2024-03-12T08:00:00Z", entries[0].PublishedAt)
	assert.Empty(t, entries[1].PublishedAt)
}

func TestJadrolinijaProfile(t *testing.T) {
	s := newJadrolinija(Options{Index: testIndex(t)})

	assert.Equal(t, match.UnitGrain, s.Scope().Grain)
	assert.False(t, s.Scope().TitleCased)

	e := domain.Entry{ExternalID: "urn:uuid:1234", Title: "Linija 335 ne vozi", PublishedAt: "ignored"}
	assert.Equal(t, "urn:uuid:1234|Linija 335 ne vozi", s.EntryKey(e))

	t.Run("feed guid links to traffic page", func(t *testing.T) {
		rel := domain.Relevance{EntryKey: s.EntryKey(e), Unit: "335"}
		subject, body := s.Message(rel)
		assert.Equal(t, "[Jadrolinija] Preko - Zadar", subject)
		assert.Contains(t, body, "stanje-u-prometu")
		assert.Contains(t, body, "<p>Linija 335 ne vozi</p>")
	})

	t.Run("site id links to notice listing", func(t *testing.T) {
		rel := domain.Relevance{EntryKey: "obavijest-17|Izmjena reda", Unit: "435"}
		subject, body := s.Message(rel)
		assert.Equal(t, "[Jadrolinija] 435", subject) // unlabelled unit falls back to its name
		assert.Contains(t, body, "obavijesti-za-putnike")
	})
}

const jadrolinijaListingHTML = `
<html><body>
  <ul class="press__list">
    <li><a href="/hr/obavijesti-za-putnike/obavijest-17">Izmjena reda</a></li>
    <li><a href="https://www.jadrolinija.hr/hr/obavijesti-za-putnike/obavijest-18">Linija 335</a></li>
    <li><a href="">prazno</a></li>
  </ul>
  <a href="/izvan-popisa">ignored</a>
</body></html>`

func TestNoticeLinks(t *testing.T) {
	links := noticeLinks(docFromHTML(t, jadrolinijaListingHTML))
	assert.Equal(t, []string{
		"https://www.jadrolinija.hr/hr/obavijesti-za-putnike/obavijest-17",
		"https://www.jadrolinija.hr/hr/obavijesti-za-putnike/obavijest-18",
	}, links)
}

func TestNoticeEntry(t *testing.T) {
	doc := docFromHTML(t, `
<html><body>
  <h1> Izmjena reda plovidbe </h1>
  <h2>Linija 335 Preko - Zadar</h2>
  <div class="wysiwyg">
    Trajektna linija 335 danas ne vozi.
  </div>
</body></html>`)

	e := noticeEntry(doc, "https://www.jadrolinija.hr/hr/obavijesti-za-putnike/obavijest-17")
	assert.Equal(t, "obavijest-17", e.ExternalID)
	assert.Equal(t, "Izmjena reda plovidbe", e.Title)
	assert.Equal(t, "Linija 335 Preko - Zadar", e.Subtitle)
	assert.Equal(t, "Trajektna linija 335 danas ne vozi.", e.Body)
	assert.Equal(t, "https://www.jadrolinija.hr/hr/obavijesti-za-putnike/obavijest-17", e.Link)
}

const vodovodHTML = `
<html><body>
  <div class="news-news-list">
    <time>12.03.2024.</time>
    <div class="content clearfix">
      Zbog radova na mreži bez vode će biti: Poljana, Sutomišćica.
    </div>
  </div>
  <div class="news-news-list">
    <time>11.03.2024.</time>
    <div class="content clearfix">Redovno ispiranje mreže.</div>
  </div>
  <div class="news-news-list"><time>10.03.2024.</time></div>
</body></html>`

func TestParseVodovodNotices(t *testing.T) {
	entries := parseVodovodNotices(docFromHTML(t, vodovodHTML))
	require.Len(t, entries, 2) // block without body text skipped

	assert.Equal(t, "12.03.2024.", entries[0].PublishedAt)
	assert.Equal(t, "Obavijest potrošačima", entries[0].Title)
	assert.Contains(t, entries[0].Body, "Sutomišćica")
	assert.Empty(t, entries[0].ExternalID)
}

func TestVodovodProfile(t *testing.T) {
	s := newVodovodZadar(Options{})

	assert.Equal(t, match.SettlementGrain, s.Scope().Grain)
	assert.True(t, s.Scope().TitleCased)

	e := domain.Entry{PublishedAt: "12.03.2024.", Title: vodovodTitle, Body: "Bez vode: Poljana"}
	key := s.EntryKey(e)
	assert.Equal(t, "12.03.2024.|Obavijest potrošačima|Bez vode: Poljana", key)

	subject, body := s.Message(domain.Relevance{EntryKey: key, Island: "ugljan", Settlement: "poljana"})
	assert.Equal(t, "Vodovod Zadar - Obavijest potrošačima", subject)
	assert.Contains(t, body, "vodovod-zadar.hr/obavijesti")
}

const liburnijaHTML = `
<html><body>
  <div class="av-masonry-container">
    <a href="https://liburnija-zadar.hr/novost-1/" data-av-masonry-item="101">
      <span class="av-masonry-date">12.03.2024.</span>
      <h3>Izmjena voznog reda za Preko</h3>
    </a>
    <a href="https://liburnija-zadar.hr/novost-2/" data-av-masonry-item="102">
      <span class="av-masonry-date">11.03.2024.</span>
      <h3>Radovi u Staroj Novalji</h3>
    </a>
    <a href="https://liburnija-zadar.hr/ostalo/"><span>no title teaser</span></a>
  </div>
</body></html>`

func TestParseLiburnijaNews(t *testing.T) {
	entries := parseLiburnijaNews(docFromHTML(t, liburnijaHTML), 8)
	require.Len(t, entries, 2)

	assert.Equal(t, "101", entries[0].ExternalID)
	assert.Equal(t, "Izmjena voznog reda za Preko", entries[0].Title)
	assert.Equal(t, "12.03.2024.", entries[0].PublishedAt)
	assert.Equal(t, "https://liburnija-zadar.hr/novost-1/", entries[0].Link)

	t.Run("limit respected", func(t *testing.T) {
		limited := parseLiburnijaNews(docFromHTML(t, liburnijaHTML), 1)
		assert.Len(t, limited, 1)
	})
}

func TestLiburnijaProfile(t *testing.T) {
	s := newLiburnijaZadar(Options{})

	e := domain.Entry{ExternalID: "101", Title: "Radovi u Staroj Novalji"}
	key := s.EntryKey(e)

	subject, body := s.Message(domain.Relevance{EntryKey: key, Island: "pag", Settlement: "stara-novalja"})
	assert.Equal(t, "Liburnija Zadar | Radovi u Staroj Novalji", subject)
	assert.Contains(t, body, "<p>Radovi u Staroj Novalji</p>")
	assert.Contains(t, body, "liburnija-zadar.hr/novosti")
}
