package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Job is one computed notification: a deduplicated recipient set and the
// message to deliver. Recipients are sorted; an empty recipient list is a
// legitimate no-op send (the relevance is still recorded so it is never
// re-evaluated).
type Job struct {
	Recipients []string `json:"recipients"`
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
}

// Fingerprint returns a deterministic hash of the job's value. Jobs with the
// same recipients, subject, and body collapse to one send.
func (j Job) Fingerprint() string {
	input := strings.Join(j.Recipients, ",") + "|" + j.Subject + "|" + j.Body
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:8])
}
