package match_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/island-notify/internal/domain"
	"github.com/couchcryptid/island-notify/internal/geo"
	"github.com/couchcryptid/island-notify/internal/match"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInfra = `{
  "units": [
    {"name": "12", "label": "Cesta 12", "tags": "", "islands": ["pag"]},
    {"name": "335", "label": "Zadar - Preko", "tags": "preko", "islands": ["ugljan"]},
    {"name": "d8", "label": "D8 Maslenica", "tags": "ražanac", "islands": ["razanac"]}
  ],
  "suppressions": [
    {"tag": "poljana", "when_present": "Poljana Branka Stojakovića"},
    {"tag": "poljana", "when_present": "Poljana Požarišće"}
  ]
}`

const testIslands = `{
  "islands": [
    {
      "name": "ugljan",
      "label": "Ugljan",
      "settlements": [
        {"name": "sutomiscica", "tags": "sutomišćica"},
        {"name": "poljana", "tags": "poljana"}
      ]
    },
    {
      "name": "pag",
      "label": "Pag",
      "settlements": [
        {"name": "stara-novalja", "tags": "stara novalja,staroj novalji"},
        {"name": "zman", "tags": "žman"}
      ]
    }
  ]
}`

func testIndex(t *testing.T) *geo.Index {
	t.Helper()
	dir := t.TempDir()
	infraPath := filepath.Join(dir, "infrastructure.json")
	islandsPath := filepath.Join(dir, "islands.json")
	require.NoError(t, os.WriteFile(infraPath, []byte(testInfra), 0o644))
	require.NoError(t, os.WriteFile(islandsPath, []byte(testIslands), 0o644))

	idx, err := geo.Load([]string{infraPath}, islandsPath)
	require.NoError(t, err)
	return idx
}

func units(rels []domain.Relevance) []string {
	out := make([]string, len(rels))
	for i, r := range rels {
		out[i] = r.Unit
	}
	return out
}

func settlements(rels []domain.Relevance) []string {
	out := make([]string, len(rels))
	for i, r := range rels {
		out[i] = r.Settlement
	}
	return out
}

func TestMatchUnitGrain(t *testing.T) {
	m := match.New(testIndex(t))
	sc := match.Scope{Grain: match.UnitGrain}

	t.Run("name as standalone token", func(t *testing.T) {
		e := domain.Entry{Body: "cesta 12 zatvorena"}
		rels := m.Match("k", e, sc)
		assert.Equal(t, []string{"12"}, units(rels))
	})

	t.Run("name inside longer number does not match", func(t *testing.T) {
		e := domain.Entry{Body: "naselje sa 112 stanovnika"}
		rels := m.Match("k", e, sc)
		assert.Empty(t, rels)
	})

	t.Run("tag substring with diacritics", func(t *testing.T) {
		e := domain.Entry{Title: "Zatvorena cesta", Body: "Cesta D8 prema Ražancu zatvorena"}
		rels := m.Match("k", e, sc)
		// "ražanac" does not literally occur ("Ražancu" is inflected), but the
		// standalone token "d8" does.
		assert.Equal(t, []string{"d8"}, units(rels))
	})

	t.Run("tag matches case-insensitively", func(t *testing.T) {
		e := domain.Entry{Title: "Trajekt PREKO ne vozi"}
		rels := m.Match("k", e, sc)
		assert.Equal(t, []string{"335"}, units(rels))
	})

	t.Run("match on any field suffices", func(t *testing.T) {
		e := domain.Entry{Subtitle: "linija 335"}
		rels := m.Match("k", e, sc)
		assert.Equal(t, []string{"335"}, units(rels))
	})

	t.Run("several units at once", func(t *testing.T) {
		e := domain.Entry{Body: "Linija 335 i cesta 12 zatvorene zbog juga"}
		rels := m.Match("k", e, sc)
		assert.ElementsMatch(t, []string{"12", "335"}, units(rels))
	})

	t.Run("empty fields do not match", func(t *testing.T) {
		rels := m.Match("k", domain.Entry{}, sc)
		assert.Empty(t, rels)
	})

	t.Run("one relevance per unit despite multiple field hits", func(t *testing.T) {
		e := domain.Entry{Title: "Preko", Body: "Trajekt za Preko (linija 335)"}
		rels := m.Match("k", e, sc)
		assert.Len(t, rels, 1)
	})
}

func TestMatchSettlementGrain(t *testing.T) {
	m := match.New(testIndex(t))

	t.Run("variant-aware tag strategy", func(t *testing.T) {
		sc := match.Scope{Grain: match.SettlementGrain}
		e := domain.Entry{Body: "Prekid vodoopskrbe: Sutomišćica, Preko"}
		rels := m.Match("k", e, sc)

		require.Len(t, rels, 1)
		assert.Equal(t, "sutomiscica", rels[0].Settlement)
		assert.Equal(t, "ugljan", rels[0].Island)
		assert.Equal(t, "335", rels[0].Unit)
	})

	t.Run("capitalized variant in title-cased source", func(t *testing.T) {
		sc := match.Scope{Grain: match.SettlementGrain, TitleCased: true}
		e := domain.Entry{Title: "Radovi u Staroj Novalji i mjestu ŽMAN"}
		rels := m.Match("k", e, sc)

		assert.ElementsMatch(t, []string{"stara-novalja", "zman"}, settlements(rels))
	})

	t.Run("lowercase text does not match title-cased source", func(t *testing.T) {
		sc := match.Scope{Grain: match.SettlementGrain, TitleCased: true}
		e := domain.Entry{Title: "radovi u staroj novalji"}
		rels := m.Match("k", e, sc)
		assert.Empty(t, rels)
	})

	t.Run("suppression rule drops ambiguous match", func(t *testing.T) {
		sc := match.Scope{Grain: match.SettlementGrain, TitleCased: true}
		e := domain.Entry{Body: "Radovi: Poljana Branka Stojakovića bez vode"}
		rels := m.Match("k", e, sc)
		assert.Empty(t, rels)

		// The bare settlement still matches when the longer name is absent.
		e = domain.Entry{Body: "Radovi: Poljana bez vode"}
		rels = m.Match("k", e, sc)
		require.Len(t, rels, 1)
		assert.Equal(t, "poljana", rels[0].Settlement)
	})

	t.Run("deduplicated by key", func(t *testing.T) {
		sc := match.Scope{Grain: match.SettlementGrain}
		e := domain.Entry{Title: "Sutomišćica", Body: "Sutomišćica bez vode"}
		rels := m.Match("k", e, sc)
		assert.Len(t, rels, 1)
	})
}

func TestMatchDeterministicOrder(t *testing.T) {
	m := match.New(testIndex(t))
	sc := match.Scope{Grain: match.UnitGrain}
	e := domain.Entry{Body: "Linija 335 i cesta 12"}

	first := m.Match("k", e, sc)
	second := m.Match("k", e, sc)
	assert.Equal(t, first, second)
}
