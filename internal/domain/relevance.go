package domain

// Relevance is the identity of "this entry concerns this geographic unit".
// EntryKey is the per-source identity of the announcement (see JoinKey).
// Unit is always set. Island and Settlement are set only for sources matched
// at settlement grain.
type Relevance struct {
	EntryKey   string
	Unit       string
	Island     string
	Settlement string
}

// Key serializes the relevance to its canonical ledger form. Settlement-grain
// relevances key on (entry, island, settlement); unit-grain relevances key on
// (entry, unit). EntryKey is already in JoinKey form and its delimiters are
// kept as-is. The ledger tests and appends this exact string, never a
// substring of it.
func (r Relevance) Key() string {
	if r.Settlement != "" {
		return r.EntryKey + "|" + JoinKey(r.Island, r.Settlement)
	}
	return r.EntryKey + "|" + JoinKey(r.Unit)
}
