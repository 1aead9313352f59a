// Package match decides which geographic units an announcement concerns.
//
// Three strategies run per unit and field. The name-token strategy matches a
// unit's bare identifier as a standalone token, because short numeric names
// ("12") false-positive under substring search. The tag-substring strategy
// matches configured tags variant-aware (diacritics, dash noise, case). The
// capitalization-variant strategy serves sources whose markup reliably
// title-cases place names but whose text is otherwise not case-folded.
//
// Matching is monotonic: once a unit or settlement matches a field, further
// strategies for that pair are skipped, but every unit and settlement is
// still evaluated; one entry may concern several unrelated places at once.
package match

import (
	"sort"

	"github.com/couchcryptid/island-notify/internal/domain"
	"github.com/couchcryptid/island-notify/internal/geo"
	"github.com/couchcryptid/island-notify/internal/normalize"
)

// Grain selects the level relevances are produced at for a source.
type Grain int

const (
	// UnitGrain keys relevances on the matched unit (ferry line, road).
	UnitGrain Grain = iota
	// SettlementGrain keys relevances on (island, settlement) pairs reached
	// through the unit's islands.
	SettlementGrain
)

// Scope describes how one source's entries are matched.
type Scope struct {
	Grain Grain
	// TitleCased marks sources whose markup preserves title-casing; their
	// settlement tags are matched via capitalized/uppercase literal variants
	// instead of the folded substring predicate.
	TitleCased bool
}

// Matcher evaluates entries against the loaded geo-tag index.
type Matcher struct {
	index *geo.Index
}

// New creates a Matcher over an index snapshot.
func New(index *geo.Index) *Matcher {
	return &Matcher{index: index}
}

// Match returns the deduplicated relevances the entry concerns, keyed by
// entryKey. Empty entry fields never match. The result is sorted by key so
// downstream processing and ledger writes are deterministic.
func (m *Matcher) Match(entryKey string, e domain.Entry, sc Scope) []domain.Relevance {
	var found []domain.Relevance
	switch sc.Grain {
	case SettlementGrain:
		found = m.matchSettlements(entryKey, e, sc)
	default:
		found = m.matchUnits(entryKey, e)
	}

	seen := make(map[string]bool, len(found))
	out := make([]domain.Relevance, 0, len(found))
	for _, r := range found {
		key := r.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

// matchUnits applies the name-token and tag-substring strategies per unit.
func (m *Matcher) matchUnits(entryKey string, e domain.Entry) []domain.Relevance {
	var out []domain.Relevance
	for _, unit := range m.index.Units {
		for _, field := range e.Fields() {
			if field == "" {
				continue
			}
			if m.unitMatchesField(unit, field) {
				out = append(out, domain.Relevance{EntryKey: entryKey, Unit: unit.Name})
				break
			}
		}
	}
	return out
}

func (m *Matcher) unitMatchesField(unit geo.Unit, field string) bool {
	if normalize.ContainsToken(field, unit.Name) {
		return true
	}
	for _, tag := range unit.Tags {
		if normalize.ContainsVariant(field, tag) && !m.suppressed(tag, field) {
			return true
		}
	}
	return false
}

// matchSettlements walks unit → islands → settlements and applies the tag
// strategies at settlement level.
func (m *Matcher) matchSettlements(entryKey string, e domain.Entry, sc Scope) []domain.Relevance {
	var out []domain.Relevance
	for _, unit := range m.index.Units {
		for _, island := range unit.Islands {
			for _, settlement := range m.index.Settlements(island) {
				if m.settlementMatches(settlement, e, sc) {
					out = append(out, domain.Relevance{
						EntryKey:   entryKey,
						Unit:       unit.Name,
						Island:     island,
						Settlement: settlement.Name,
					})
				}
			}
		}
	}
	return out
}

func (m *Matcher) settlementMatches(s geo.Settlement, e domain.Entry, sc Scope) bool {
	for _, field := range e.Fields() {
		if field == "" {
			continue
		}
		for _, tag := range s.Tags {
			if !tagMatchesField(tag, field, sc.TitleCased) {
				continue
			}
			if m.suppressed(tag, field) {
				continue
			}
			return true
		}
	}
	return false
}

func tagMatchesField(tag, field string, titleCased bool) bool {
	if titleCased {
		return normalize.ContainsPhrase(field, normalize.Capitalize(tag)) ||
			normalize.ContainsPhrase(field, normalize.Upper(tag))
	}
	return normalize.ContainsVariant(field, tag)
}

// suppressed reports whether a raw tag match must be discarded because a
// longer, unrelated phrase from the suppression rules is present in the
// same field.
func (m *Matcher) suppressed(tag, field string) bool {
	for _, rule := range m.index.Suppressions {
		if normalize.Text(rule.Tag) != normalize.Text(tag) {
			continue
		}
		if normalize.ContainsVariant(field, rule.WhenPresent) {
			return true
		}
	}
	return false
}
