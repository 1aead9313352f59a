// Package geo loads the static geographic vocabulary: operational units,
// islands and their settlements, subscriber contacts, and the declarative
// suppression rules that correct known tag ambiguities. Everything here is a
// read-only snapshot loaded once per cycle.
package geo

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Unit is an operational entity a source reports status for: a ferry line,
// a road segment, a utility zone. Name is the stable identifier used in
// ledger keys; Tags are the match vocabulary.
type Unit struct {
	Name    string
	Label   string
	Tags    []string
	Islands []string
}

// Settlement is the finest-grained geographic unit. Tags may differ from the
// name (alternate spellings, diacritics).
type Settlement struct {
	Name string
	Tags []string
}

// Island groups settlements and is the routing key for subscriber contacts.
type Island struct {
	Name        string
	Label       string
	Settlements []Settlement
}

// Suppression drops a raw tag match when a longer, unrelated phrase is also
// present in the same field. Source-specific data corrections, never code.
type Suppression struct {
	Tag         string `json:"tag"`
	WhenPresent string `json:"when_present"`
}

// Index is the loaded geo-tag hierarchy. Immutable after Load.
type Index struct {
	Units        []Unit
	Suppressions []Suppression

	islands map[string]Island
	units   map[string]Unit
}

// Wire formats. Tag lists are comma-separated strings in the configuration
// files and are split and trimmed at load time.

type unitJSON struct {
	Name    string   `json:"name"`
	Label   string   `json:"label"`
	Tags    string   `json:"tags"`
	Islands []string `json:"islands"`
}

type infrastructureJSON struct {
	Units        []unitJSON    `json:"units"`
	Suppressions []Suppression `json:"suppressions"`
}

type settlementJSON struct {
	Name string `json:"name"`
	Tags string `json:"tags"`
}

type islandJSON struct {
	Name        string           `json:"name"`
	Label       string           `json:"label"`
	Settlements []settlementJSON `json:"settlements"`
}

type islandsFileJSON struct {
	Islands []islandJSON `json:"islands"`
}

// Load builds an Index from one or more infrastructure files (units merged
// by union, in file order) and one islands catalogue.
func Load(unitPaths []string, islandsPath string) (*Index, error) {
	idx := &Index{
		islands: make(map[string]Island),
		units:   make(map[string]Unit),
	}

	for _, path := range unitPaths {
		infra, err := readInfrastructure(path)
		if err != nil {
			return nil, err
		}
		for _, u := range infra.Units {
			unit := Unit{
				Name:    strings.TrimSpace(u.Name),
				Label:   strings.TrimSpace(u.Label),
				Tags:    splitTags(u.Tags),
				Islands: u.Islands,
			}
			if unit.Name == "" {
				return nil, fmt.Errorf("geo: unit with empty name in %s", path)
			}
			idx.Units = append(idx.Units, unit)
			idx.units[unit.Name] = unit
		}
		idx.Suppressions = append(idx.Suppressions, infra.Suppressions...)
	}

	if len(idx.Units) == 0 {
		return nil, fmt.Errorf("geo: no units loaded from %v", unitPaths)
	}

	if islandsPath != "" {
		catalogue, err := readIslands(islandsPath)
		if err != nil {
			return nil, err
		}
		for _, is := range catalogue.Islands {
			island := Island{Name: is.Name, Label: is.Label}
			for _, s := range is.Settlements {
				island.Settlements = append(island.Settlements, Settlement{
					Name: strings.TrimSpace(s.Name),
					Tags: splitTags(s.Tags),
				})
			}
			idx.islands[island.Name] = island
		}
	}

	return idx, nil
}

func readInfrastructure(path string) (infrastructureJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return infrastructureJSON{}, fmt.Errorf("geo: read infrastructure: %w", err)
	}
	var infra infrastructureJSON
	if err := json.Unmarshal(data, &infra); err != nil {
		return infrastructureJSON{}, fmt.Errorf("geo: parse %s: %w", path, err)
	}
	return infra, nil
}

func readIslands(path string) (islandsFileJSON, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return islandsFileJSON{}, fmt.Errorf("geo: read islands: %w", err)
	}
	var catalogue islandsFileJSON
	if err := json.Unmarshal(data, &catalogue); err != nil {
		return islandsFileJSON{}, fmt.Errorf("geo: parse %s: %w", path, err)
	}
	return catalogue, nil
}

// splitTags parses a comma-separated tag string, trimming whitespace and
// dropping empties.
func splitTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		t = strings.TrimSpace(t)
		if t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// UnitIslands returns the island identifiers associated with a unit.
func (idx *Index) UnitIslands(unitName string) []string {
	return idx.units[unitName].Islands
}

// UnitLabel returns the human-readable label for a unit, or the name itself
// when no label is configured.
func (idx *Index) UnitLabel(unitName string) string {
	u, ok := idx.units[unitName]
	if !ok || u.Label == "" {
		return unitName
	}
	return u.Label
}

// IslandLabel returns the human-readable label for an island, or the name
// itself when the island is not in the catalogue.
func (idx *Index) IslandLabel(islandName string) string {
	is, ok := idx.islands[islandName]
	if !ok || is.Label == "" {
		return islandName
	}
	return is.Label
}

// HasIsland reports whether the island is present in the catalogue.
func (idx *Index) HasIsland(islandName string) bool {
	_, ok := idx.islands[islandName]
	return ok
}

// Settlements returns the settlements of an island, or nil for an unknown
// island.
func (idx *Index) Settlements(islandName string) []Settlement {
	return idx.islands[islandName].Settlements
}

// Islands returns every island in the catalogue, sorted by name.
func (idx *Index) Islands() []Island {
	islands := make([]Island, 0, len(idx.islands))
	for _, is := range idx.islands {
		islands = append(islands, is)
	}
	sort.Slice(islands, func(i, j int) bool { return islands[i].Name < islands[j].Name })
	return islands
}
