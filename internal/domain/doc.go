// Package domain models public service announcements for the Zadar-area
// island notification system.
//
// # Data Source
//
// Announcements originate from the public notice pages and RSS feeds of
// utility and transport operators (ferry lines, water utilities, bus
// operators). Each source has its own markup; a source profile extracts a
// normalized Entry (external id, publication time, title, subtitle, body)
// and the core decides which islands and settlements the entry concerns.
//
// # Geographic Model
//
// A Unit is the operational entity a source reports on: a ferry line
// ("335"), a road, a utility distribution zone. Units reference one or more
// Islands, and each Island owns zero or more Settlements. Subscribers are
// registered per island.
//
// # Relevance Identity
//
// A Relevance records that one entry concerns one geographic unit. Its
// serialized form is the idempotence key for notification delivery:
//
//	unit grain:        <entry key>|<unit>
//	settlement grain:  <entry key>|<island>|<settlement>
//
// The entry key itself is a per-source join of whichever Entry fields the
// source supplies reliably (external id, title, publication date). Pipe and
// newline characters are stripped from every field before joining so a key
// is always exactly one ledger line. Two distinct announcements never share
// a key; re-observing the same announcement always reproduces the same key.
// See [Relevance.Key].
package domain
