package domain

import "time"

// AuditRecord is the metadata-only trail kept for anti-fraud and debugging.
// The schema has no content columns by construction.
type AuditRecord struct {
	ID             string
	LicenseKeyHash string
	RequestIP      string
	OutcomeCode    string
	RateFlagged    bool
	CreatedAt      time.Time
}
