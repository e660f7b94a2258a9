package license

import "time"

// Period is the nominal duration class of a license. The wire values are
// the Korean labels the client bidding systems were issued with.
type Period string

const (
	Period3Day      Period = "3일"
	Period7Day      Period = "7일"
	Period30Day     Period = "30일"
	PeriodPermanent Period = "영구"
)

// PermanentExpiry is the sentinel instant meaning "never expires". It is a
// fixed far-future value, not literally infinite, so ordinary timestamp
// comparisons keep working.
var PermanentExpiry = time.Date(2099, time.December, 31, 23, 59, 59, 0, time.UTC)

func (p Period) Valid() bool {
	switch p {
	case Period3Day, Period7Day, Period30Day, PeriodPermanent:
		return true
	}
	return false
}

// Duration returns the extension a period grants. Unknown periods fall back
// to 30 days, matching the expiry calculation. Permanent has no finite
// duration; callers must special-case it.
func (p Period) Duration() time.Duration {
	switch p {
	case Period3Day:
		return 3 * 24 * time.Hour
	case Period7Day:
		return 7 * 24 * time.Hour
	case Period30Day:
		return 30 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}

// ExpiryFrom maps a period to an absolute expiry instant anchored at anchor.
// Unknown periods default to 30 days rather than failing; the enum check
// belongs to validation, this is the last-resort policy behind it.
func ExpiryFrom(p Period, anchor time.Time) time.Time {
	if p == PeriodPermanent {
		return PermanentExpiry
	}
	return anchor.Add(p.Duration())
}

// IsPermanent reports whether expiresAt is the permanent sentinel.
func IsPermanent(expiresAt time.Time) bool {
	return expiresAt.Equal(PermanentExpiry)
}

// DaysRemaining returns -1 for permanent licenses, 0 if expiresAt has
// passed, otherwise the number of whole days until expiry.
func DaysRemaining(expiresAt, now time.Time) int {
	if IsPermanent(expiresAt) {
		return -1
	}
	if !expiresAt.After(now) {
		return 0
	}
	return int(expiresAt.Sub(now) / (24 * time.Hour))
}
