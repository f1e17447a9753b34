// Package usage provides value types and pure functions for storage usage
// snapshots. This package has NO dependencies on I/O or external packages.
package usage

import (
	"errors"
	"math"
	"time"
)

// GiB is the number of bytes in one gibibyte.
const GiB = 1 << 30

// Sentinel errors for the two user-visible failure modes. The messages are
// the exact strings rendered to the end user; anything more specific (which
// query failed, which signal was missing) stays in the logs.
var (
	// ErrUnreachable covers every transport-level failure: network error,
	// timeout, non-2xx status, undecodable body.
	ErrUnreachable = errors.New("Unable to reach Prometheus. Please try again later.")

	// ErrNoData means the backend answered but at least one of the three
	// required signals had no row for this user and namespace.
	ErrNoData = errors.New("No storage data found for your account.")
)

// Record is a complete usage snapshot for one user (immutable value type).
type Record struct {
	Username    string    `json:"username"`
	UsageBytes  int64     `json:"usage_bytes"`
	QuotaBytes  int64     `json:"quota_bytes"`
	UsageGB     float64   `json:"usage_gb"`
	QuotaGB     float64   `json:"quota_gb"`
	Percentage  float64   `json:"percentage"`
	LastUpdated time.Time `json:"last_updated"`
}

// ErrorRecord is the failure shape rendered to the user. A result is always
// exactly one of Record or ErrorRecord.
type ErrorRecord struct {
	Username string `json:"username"`
	Error    string `json:"error"`
}

// Round2 rounds to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ToGB converts a byte count to gibibytes rounded to two decimals.
func ToGB(bytes int64) float64 {
	return Round2(float64(bytes) / GiB)
}

// Percent computes usage as a percentage of quota, rounded to two decimals.
// A zero quota yields 0 by convention, never a division error.
func Percent(usageBytes, quotaBytes int64) float64 {
	if quotaBytes <= 0 {
		return 0
	}
	return Round2(float64(usageBytes) / float64(quotaBytes) * 100)
}

// NewRecord assembles a snapshot from the three extracted signals.
// This is a PURE function.
func NewRecord(username string, usageBytes, quotaBytes int64, lastUpdated time.Time) Record {
	return Record{
		Username:    username,
		UsageBytes:  usageBytes,
		QuotaBytes:  quotaBytes,
		UsageGB:     ToGB(usageBytes),
		QuotaGB:     ToGB(quotaBytes),
		Percentage:  Percent(usageBytes, quotaBytes),
		LastUpdated: lastUpdated.UTC(),
	}
}

// ErrorFor converts an engine error into the user-facing failure shape.
// Unknown errors collapse to ErrUnreachable so no internal detail leaks.
func ErrorFor(username string, err error) ErrorRecord {
	msg := ErrUnreachable.Error()
	if errors.Is(err, ErrNoData) {
		msg = ErrNoData.Error()
	}
	return ErrorRecord{Username: username, Error: msg}
}
