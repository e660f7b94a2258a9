package license

import (
	"database/sql"
	"time"
)

type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
	StatusExpired   Status = "EXPIRED"
	StatusRevoked   Status = "REVOKED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusSuspended, StatusExpired, StatusRevoked:
		return true
	}
	return false
}

type Type string

const (
	TypeG2BA Type = "G2B_A"
	TypeG2BB Type = "G2B_B"
	TypeG2BC Type = "G2B_C"
	TypeEAT  Type = "EAT"
	TypeAll  Type = "ALL"
)

func (t Type) Valid() bool {
	switch t {
	case TypeG2BA, TypeG2BB, TypeG2BC, TypeEAT, TypeAll:
		return true
	}
	return false
}

// ExpiryBucket is a display classification derived from expires_at at read
// time. It is independent of the persisted Status.
type ExpiryBucket string

const (
	BucketNormal         ExpiryBucket = "NORMAL"
	BucketExpiringSoon   ExpiryBucket = "EXPIRING_SOON"
	BucketExpiringUrgent ExpiryBucket = "EXPIRING_URGENT"
	BucketExpired        ExpiryBucket = "EXPIRED"
	BucketPermanent      ExpiryBucket = "PERMANENT"
)

type License struct {
	ID              int64          `db:"license_id" json:"license_id"`
	LicenseKey      string         `db:"license_key" json:"license_key"`
	DBName          sql.NullString `db:"db_name" json:"db_name,omitempty"`
	CompanyName     string         `db:"company_name" json:"company_name"`
	ContactPerson   string         `db:"contact_person" json:"contact_person"`
	ContactEmail    string         `db:"contact_email" json:"contact_email"`
	ContactPhone    sql.NullString `db:"contact_phone" json:"contact_phone,omitempty"`
	Type            Type           `db:"license_type" json:"license_type"`
	ValidityPeriod  Period         `db:"validity_period" json:"validity_period"`
	Status          Status         `db:"status" json:"status"`
	IssuedBy        string         `db:"issued_by" json:"issued_by"`
	Notes           sql.NullString `db:"notes" json:"notes,omitempty"`
	IssuedAt        time.Time      `db:"issued_at" json:"issued_at"`
	ExpiresAt       time.Time      `db:"expires_at" json:"expires_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
	AccessCount     int64          `db:"access_count" json:"access_count"`
	FirstAccessed   sql.NullTime   `db:"first_accessed" json:"first_accessed,omitempty"`
	LastAccessed    sql.NullTime   `db:"last_accessed" json:"last_accessed,omitempty"`
	CurrentSessions int            `db:"current_sessions" json:"current_sessions"`
}

// DaysRemaining reports whole days left at now: -1 for permanent licenses,
// 0 once expired.
func (l *License) DaysRemaining(now time.Time) int {
	return DaysRemaining(l.ExpiresAt, now)
}

// Bucket classifies the license for dashboards. soonDays is the
// "expiring soon" window; anything within 1 day is urgent.
func (l *License) Bucket(now time.Time, soonDays int) ExpiryBucket {
	if IsPermanent(l.ExpiresAt) {
		return BucketPermanent
	}
	days := DaysRemaining(l.ExpiresAt, now)
	switch {
	case !l.ExpiresAt.After(now):
		return BucketExpired
	case days <= 1:
		return BucketExpiringUrgent
	case days <= soonDays:
		return BucketExpiringSoon
	}
	return BucketNormal
}
