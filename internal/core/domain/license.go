package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// LicenseStatus is the license provider's verdict for one key.
type LicenseStatus struct {
	Valid    bool
	PlanTier string
}

// LicenseSession is the only per-request state permitted to outlive the
// request, and only as metadata. It never carries content fields.
type LicenseSession struct {
	LicenseKeyHash string
	PlanTier       string
	RequestIP      string
	CheckedAt      time.Time
	RateFlagged    bool
}

// HashLicenseKey derives the stable identifier recorded in audit metadata.
// The raw key is never stored or logged.
func HashLicenseKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}
