package license

import "time"

// CreateParams is the validated input for issuing a new key.
type CreateParams struct {
	LicenseKey     string
	CompanyName    string
	ContactPerson  string
	ContactEmail   string
	ValidityPeriod Period

	DBName       string
	ContactPhone string
	Type         Type
	Notes        string
}

// UpdateFields is a partial update: only non-nil fields are written. The set
// of updatable columns is fixed here instead of being derived from request
// keys at runtime.
type UpdateFields struct {
	LicenseKey     *string
	DBName         *string
	CompanyName    *string
	ContactPerson  *string
	ContactEmail   *string
	ContactPhone   *string
	Type           *Type
	ValidityPeriod *Period
	ExpiresAt      *time.Time
	Status         *Status
	Notes          *string
}

func (u *UpdateFields) Empty() bool {
	return u.LicenseKey == nil &&
		u.DBName == nil &&
		u.CompanyName == nil &&
		u.ContactPerson == nil &&
		u.ContactEmail == nil &&
		u.ContactPhone == nil &&
		u.Type == nil &&
		u.ValidityPeriod == nil &&
		u.ExpiresAt == nil &&
		u.Status == nil &&
		u.Notes == nil
}

// ListParams filters and pages the license list. Zero values mean "no
// filter". SortBy is validated against a whitelist by the repository.
type ListParams struct {
	Search         string
	Status         *Status
	ValidityPeriod *Period
	Type           *Type
	ExpiryBucket   *ExpiryBucket
	SortBy         string
	SortOrder      string
	Limit          int
	Offset         int
}
