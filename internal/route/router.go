// Package route converts newly-surfaced relevances into notification jobs.
// Recipients are resolved island by island from the subscriber table, then
// deduplicated per relevance; jobs whose recipients, subject, and body are
// value-identical collapse into one send.
package route

import (
	"sort"

	"github.com/couchcryptid/island-notify/internal/domain"
	"github.com/couchcryptid/island-notify/internal/geo"
)

// MessageFunc builds the subject and HTML body for one relevance. Each
// source profile supplies its own format.
type MessageFunc func(rel domain.Relevance) (subject, body string)

// Router resolves relevances to recipient sets using an index and contacts
// snapshot.
type Router struct {
	index    *geo.Index
	contacts geo.Contacts
}

// New creates a Router over read-only snapshots.
func New(index *geo.Index, contacts geo.Contacts) *Router {
	return &Router{index: index, contacts: contacts}
}

// Route builds one job per relevance and deduplicates jobs by value.
// A relevance resolving to zero contacts still yields a job with an empty
// recipient set: the notifier boundary treats it as a logged no-op, and the
// relevance is recorded so it is never re-evaluated.
func (r *Router) Route(rels []domain.Relevance, msg MessageFunc) []domain.Job {
	jobs := make([]domain.Job, 0, len(rels))
	seen := make(map[string]bool, len(rels))

	for _, rel := range rels {
		subject, body := msg(rel)
		job := domain.Job{
			Recipients: r.recipients(rel),
			Subject:    subject,
			Body:       body,
		}
		fp := job.Fingerprint()
		if seen[fp] {
			continue
		}
		seen[fp] = true
		jobs = append(jobs, job)
	}
	return jobs
}

// recipients unions the contact addresses of every island the relevance
// resolves to, deduplicated and sorted.
func (r *Router) recipients(rel domain.Relevance) []string {
	islands := []string{rel.Island}
	if rel.Island == "" {
		islands = r.index.UnitIslands(rel.Unit)
	}

	set := make(map[string]struct{})
	for _, island := range islands {
		for _, addr := range r.contacts.Addresses(island) {
			set[addr] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for addr := range set {
		out = append(out, addr)
	}
	sort.Strings(out)
	return out
}
