package license_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayabid/license-admin-api/internal/domain/license"
)

func TestExpiryFrom(t *testing.T) {
	anchor := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		period license.Period
		want   time.Time
	}{
		{"three days", license.Period3Day, anchor.Add(3 * 24 * time.Hour)},
		{"seven days", license.Period7Day, anchor.Add(7 * 24 * time.Hour)},
		{"thirty days", license.Period30Day, anchor.Add(30 * 24 * time.Hour)},
		{"permanent", license.PeriodPermanent, license.PermanentExpiry},
		{"unknown falls back to thirty days", license.Period("14일"), anchor.Add(30 * 24 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := license.ExpiryFrom(tt.period, anchor)
			assert.True(t, got.Equal(tt.want), "got %v, want %v", got, tt.want)
		})
	}
}

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		expiresAt time.Time
		want      int
	}{
		{"permanent sentinel", license.PermanentExpiry, -1},
		{"already expired", now.Add(-time.Hour), 0},
		{"expiring this instant", now, 0},
		{"half a day left rounds down", now.Add(12 * time.Hour), 0},
		{"three days left", now.Add(3 * 24 * time.Hour), 3},
		{"three days and change still three", now.Add(3*24*time.Hour + 6*time.Hour), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, license.DaysRemaining(tt.expiresAt, now))
		})
	}
}

func TestIsPermanent(t *testing.T) {
	assert.True(t, license.IsPermanent(license.PermanentExpiry))
	assert.False(t, license.IsPermanent(license.PermanentExpiry.Add(-time.Second)))
	assert.False(t, license.IsPermanent(time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)))
}

func TestBucket(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	const soonDays = 7

	tests := []struct {
		name      string
		expiresAt time.Time
		want      license.ExpiryBucket
	}{
		{"permanent", license.PermanentExpiry, license.BucketPermanent},
		{"expired", now.Add(-time.Minute), license.BucketExpired},
		{"urgent within a day", now.Add(20 * time.Hour), license.BucketExpiringUrgent},
		{"soon within window", now.Add(5 * 24 * time.Hour), license.BucketExpiringSoon},
		{"normal beyond window", now.Add(20 * 24 * time.Hour), license.BucketNormal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lic := &license.License{ExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, lic.Bucket(now, soonDays))
		})
	}
}

func TestExpiryScenario(t *testing.T) {
	// A 3-day key issued at noon expires exactly 72 hours later and shows
	// 2 whole days remaining one hour in.
	issued := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	expiry := license.ExpiryFrom(license.Period3Day, issued)

	require.Equal(t, issued.Add(72*time.Hour), expiry)
	assert.Equal(t, 2, license.DaysRemaining(expiry, issued.Add(time.Hour)))
	assert.Equal(t, 0, license.DaysRemaining(expiry, expiry))
}
