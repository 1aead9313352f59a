package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinKey(t *testing.T) {
	tests := []struct {
		name     string
		parts    []string
		expected string
	}{
		{"plain fields", []string{"guid-1", "Zatvorena cesta"}, "guid-1|Zatvorena cesta"},
		{"embedded delimiter", []string{"a|b", "c"}, "a b|c"},
		{"embedded newlines", []string{"line\none", "x\r\ny"}, "line one|x  y"},
		{"surrounding whitespace", []string{"  a ", "b"}, "a|b"},
		{"empty part preserved", []string{"", "title"}, "|title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, JoinKey(tt.parts...))
		})
	}
}

func TestRelevanceKey(t *testing.T) {
	t.Run("unit grain", func(t *testing.T) {
		r := Relevance{EntryKey: "guid-1|Trajekt ne vozi", Unit: "335"}
		assert.Equal(t, "guid-1|Trajekt ne vozi|335", r.Key())
	})

	t.Run("settlement grain", func(t *testing.T) {
		r := Relevance{
			EntryKey:   "12.03.2024.|Obavijest",
			Unit:       "zona-1",
			Island:     "ugljan",
			Settlement: "sutomiscica",
		}
		assert.Equal(t, "12.03.2024.|Obavijest|ugljan|sutomiscica", r.Key())
	})

	t.Run("stable across observations", func(t *testing.T) {
		a := Relevance{EntryKey: "id|t", Unit: "12"}
		b := Relevance{EntryKey: "id|t", Unit: "12"}
		assert.Equal(t, a.Key(), b.Key())
	})
}

func TestJobFingerprint(t *testing.T) {
	a := Job{Recipients: []string{"a@x.hr", "b@x.hr"}, Subject: "s", Body: "b"}
	b := Job{Recipients: []string{"a@x.hr", "b@x.hr"}, Subject: "s", Body: "b"}
	c := Job{Recipients: []string{"a@x.hr"}, Subject: "s", Body: "b"}

	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	assert.Len(t, a.Fingerprint(), 16)
}
