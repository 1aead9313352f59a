package geo

import (
	"encoding/json"
	"fmt"
	"os"
)

// Contacts maps an island identifier to its subscriber addresses.
type Contacts map[string][]string

type contactJSON struct {
	Island   string   `json:"island"`
	Contacts []string `json:"contacts"`
}

type contactsFileJSON struct {
	Contacts []contactJSON `json:"contacts"`
}

// LoadContacts reads the subscriber table. Later entries for the same island
// are appended, not replaced.
func LoadContacts(path string) (Contacts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("geo: read contacts: %w", err)
	}
	var file contactsFileJSON
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("geo: parse %s: %w", path, err)
	}

	contacts := make(Contacts, len(file.Contacts))
	for _, c := range file.Contacts {
		contacts[c.Island] = append(contacts[c.Island], c.Contacts...)
	}
	return contacts, nil
}

// Addresses returns the registered addresses for an island; nil when none.
func (c Contacts) Addresses(island string) []string {
	return c[island]
}
