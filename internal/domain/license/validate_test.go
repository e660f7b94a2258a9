package license_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayabid/license-admin-api/internal/domain/license"
	"github.com/ayabid/license-admin-api/internal/ierr"
)

func validCreateParams() *license.CreateParams {
	return &license.CreateParams{
		LicenseKey:     "BID-2026-0001",
		CompanyName:    "Daehan Construction",
		ContactPerson:  "Kim Minsoo",
		ContactEmail:   "minsoo@daehan.example.com",
		ValidityPeriod: license.Period30Day,
	}
}

func TestValidateCreate(t *testing.T) {
	t.Run("accepts a fully populated request", func(t *testing.T) {
		params := validCreateParams()
		params.Type = license.TypeG2BA
		params.DBName = "daehan_bid"
		require.NoError(t, license.ValidateCreate(params))
	})

	t.Run("reports missing required fields in a stable order", func(t *testing.T) {
		params := &license.CreateParams{}
		err := license.ValidateCreate(params)

		var ve *ierr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "license_key", ve.Field)

		params.LicenseKey = "BID-2026-0001"
		err = license.ValidateCreate(params)
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "company_name", ve.Field)
	})

	t.Run("rejects keys outside the length bounds", func(t *testing.T) {
		params := validCreateParams()
		params.LicenseKey = "ab"
		err := license.ValidateCreate(params)
		require.ErrorIs(t, err, ierr.ErrValidation)

		params.LicenseKey = strings.Repeat("x", 129)
		err = license.ValidateCreate(params)
		require.ErrorIs(t, err, ierr.ErrValidation)

		params.LicenseKey = strings.Repeat("x", 128)
		require.NoError(t, license.ValidateCreate(params))
	})

	t.Run("rejects unknown periods", func(t *testing.T) {
		params := validCreateParams()
		params.ValidityPeriod = "14일"
		err := license.ValidateCreate(params)

		var ve *ierr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "validity_period", ve.Field)
	})

	t.Run("rejects unknown license types", func(t *testing.T) {
		params := validCreateParams()
		params.Type = "G2B_X"
		err := license.ValidateCreate(params)

		var ve *ierr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "license_type", ve.Field)
	})

	t.Run("rejects malformed email addresses", func(t *testing.T) {
		params := validCreateParams()
		params.ContactEmail = "not-an-email"
		err := license.ValidateCreate(params)

		var ve *ierr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "contact_email", ve.Field)
	})
}

func TestValidateUpdate(t *testing.T) {
	strPtr := func(s string) *string { return &s }

	t.Run("rejects an empty update", func(t *testing.T) {
		err := license.ValidateUpdate(&license.UpdateFields{})
		require.ErrorIs(t, err, ierr.ErrNoFields)
	})

	t.Run("accepts a single field", func(t *testing.T) {
		require.NoError(t, license.ValidateUpdate(&license.UpdateFields{
			Notes: strPtr("payment confirmed"),
		}))
	})

	t.Run("validates only present fields", func(t *testing.T) {
		badStatus := license.Status("FROZEN")
		err := license.ValidateUpdate(&license.UpdateFields{Status: &badStatus})

		var ve *ierr.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "status", ve.Field)
	})

	t.Run("rejects blank license key", func(t *testing.T) {
		err := license.ValidateUpdate(&license.UpdateFields{LicenseKey: strPtr("  ")})
		require.ErrorIs(t, err, ierr.ErrValidation)
	})

	t.Run("rejects invalid email", func(t *testing.T) {
		err := license.ValidateUpdate(&license.UpdateFields{ContactEmail: strPtr("broken@")})
		require.ErrorIs(t, err, ierr.ErrValidation)
	})
}
