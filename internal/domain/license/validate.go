package license

import (
	"net/mail"
	"strings"

	"github.com/ayabid/license-admin-api/internal/ierr"
)

const (
	keyMinLen = 3
	keyMaxLen = 128
)

// ValidateCreate checks required fields, key length, enum membership and
// email format. It is pure: the uniqueness check is a separate, later step
// so validation failures and duplicate-key failures stay distinguishable.
func ValidateCreate(p *CreateParams) error {
	required := []struct {
		field string
		value string
	}{
		{"license_key", p.LicenseKey},
		{"company_name", p.CompanyName},
		{"contact_person", p.ContactPerson},
		{"contact_email", p.ContactEmail},
		{"validity_period", string(p.ValidityPeriod)},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return ierr.NewValidationError(r.field, "required field is missing")
		}
	}

	if err := validateKey(p.LicenseKey); err != nil {
		return err
	}
	if !p.ValidityPeriod.Valid() {
		return ierr.NewValidationError("validity_period", "unknown validity period")
	}
	if p.Type != "" && !p.Type.Valid() {
		return ierr.NewValidationError("license_type", "unknown license type")
	}
	if err := validateEmail(p.ContactEmail); err != nil {
		return err
	}
	return nil
}

// ValidateUpdate checks only the fields present in the partial update.
func ValidateUpdate(u *UpdateFields) error {
	if u.Empty() {
		return ierr.ErrNoFields
	}
	if u.LicenseKey != nil {
		if strings.TrimSpace(*u.LicenseKey) == "" {
			return ierr.NewValidationError("license_key", "required field is missing")
		}
		if err := validateKey(*u.LicenseKey); err != nil {
			return err
		}
	}
	if u.ValidityPeriod != nil && !u.ValidityPeriod.Valid() {
		return ierr.NewValidationError("validity_period", "unknown validity period")
	}
	if u.Type != nil && !u.Type.Valid() {
		return ierr.NewValidationError("license_type", "unknown license type")
	}
	if u.Status != nil && !u.Status.Valid() {
		return ierr.NewValidationError("status", "unknown status")
	}
	if u.ContactEmail != nil {
		if err := validateEmail(*u.ContactEmail); err != nil {
			return err
		}
	}
	return nil
}

func validateKey(key string) error {
	if len(key) < keyMinLen || len(key) > keyMaxLen {
		return ierr.NewValidationError("license_key", "must be between 3 and 128 characters")
	}
	return nil
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return ierr.NewValidationError("contact_email", "invalid email address")
	}
	return nil
}
