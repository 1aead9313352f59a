package domain

import "strings"

// Entry is one normalized announcement produced by a source profile.
// Any field may be empty when the source offers no reliable value; empty
// fields simply never match.
type Entry struct {
	ExternalID  string `json:"external_id"`
	PublishedAt string `json:"published_at,omitempty"`
	Link        string `json:"link,omitempty"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle,omitempty"`
	Body        string `json:"body,omitempty"`
}

// Fields returns the free-text fields eligible for matching, in the order
// they are inspected: title, subtitle, body.
func (e Entry) Fields() []string {
	return []string{e.Title, e.Subtitle, e.Body}
}

// JoinKey builds a stable identity string from the given parts, joined with
// the ledger delimiter. Delimiter and newline characters inside a part are
// replaced with a space so the result is always exactly one ledger line.
func JoinKey(parts ...string) string {
	clean := make([]string, len(parts))
	for i, p := range parts {
		p = strings.NewReplacer("|", " ", "\n", " ", "\r", " ").Replace(p)
		clean[i] = strings.TrimSpace(p)
	}
	return strings.Join(clean, "|")
}
