// Package source holds the per-source profiles: everything that varies
// between watched providers. A profile knows how to collect normalized
// entries from its page or feed, which matching scope applies, which entry
// fields form a stable identity, and how to word a notification. The
// pipeline is generic over this interface; nothing outside this package
// knows any provider's markup.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/couchcryptid/island-notify/internal/domain"
	"github.com/couchcryptid/island-notify/internal/geo"
	"github.com/couchcryptid/island-notify/internal/match"
)

// Source is the capability set one watched provider implements.
type Source interface {
	// Name is the stable identifier (ledger file name, CLI argument).
	Name() string
	// Label is the provider's display name used in notification subjects.
	Label() string
	// Scope describes how this source's entries are matched.
	Scope() match.Scope
	// Collect fetches and parses the provider's current announcements.
	Collect(ctx context.Context) ([]domain.Entry, error)
	// EntryKey joins the fields this provider supplies reliably into the
	// entry's identity component.
	EntryKey(e domain.Entry) string
	// Message builds the notification subject and HTML body for a relevance.
	Message(rel domain.Relevance) (subject, body string)
}

// Options configures all profiles at construction.
type Options struct {
	Index     *geo.Index
	UserAgent string
	Timeout   time.Duration
	// Delay is the polite pause between consecutive page requests within
	// one collection.
	Delay  time.Duration
	Logger *slog.Logger
}

// All returns every registered profile.
func All(opts Options) []Source {
	return []Source{
		newJadrolinija(opts),
		newVodovodZadar(opts),
		newLiburnijaZadar(opts),
	}
}

// ByName returns the named profile, or false when unknown.
func ByName(name string, opts Options) (Source, bool) {
	for _, s := range All(opts) {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Names returns the registered profile names in registry order.
func Names() []string {
	var names []string
	for _, s := range All(Options{}) {
		names = append(names, s.Name())
	}
	return names
}

// fetcher is the shared HTTP plumbing for page-scraping profiles.
type fetcher struct {
	client    *http.Client
	userAgent string
	delay     time.Duration
	requests  int
}

func newFetcher(opts Options) *fetcher {
	return &fetcher{
		client:    &http.Client{Timeout: opts.Timeout},
		userAgent: opts.UserAgent,
		delay:     opts.Delay,
	}
}

// document fetches url and parses it into a goquery document. Requests after
// the first within one fetcher's lifetime wait out the configured delay.
func (f *fetcher) document(ctx context.Context, url string) (*goquery.Document, error) {
	if f.requests > 0 && f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-domain.Clock().After(f.delay):
		}
	}
	f.requests++

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("source: create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("source: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("source: fetch %s: status %d: %s", url, resp.StatusCode, body)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("source: parse %s: %w", url, err)
	}
	return doc, nil
}

// keyField returns the i-th pipe-delimited field of an entry key, or "".
// Profiles that need an original field back (external id, title) when
// wording a message read it from the relevance's entry key.
func keyField(entryKey string, i int) string {
	fields := strings.Split(entryKey, "|")
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

// htmlBody renders the fixed notification body: the announcement title and
// a canonical link back to the source.
func htmlBody(title, link string) string {
	return `<!DOCTYPE html><html><body><p>` + title + `</p><br>` +
		`<a href="` + link + `">` + link + `</a></body></html>`
}
