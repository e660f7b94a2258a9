package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/domain/license"
	"github.com/ayabid/license-admin-api/internal/ierr"
)

const licenseColumns = `
    license_id, license_key, db_name, company_name, contact_person,
    contact_email, contact_phone, license_type, validity_period, status,
    issued_by, notes, issued_at, expires_at, updated_at,
    access_count, first_accessed, last_accessed, current_sessions`

// listSortColumns whitelists ORDER BY targets; anything else falls back to
// the default ordering.
var listSortColumns = map[string]string{
	"issued_at":    "issued_at",
	"expires_at":   "expires_at",
	"updated_at":   "updated_at",
	"license_key":  "license_key",
	"company_name": "company_name",
	"access_count": "access_count",
}

type LicenseRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewLicenseRepository(db *pgxpool.Pool, logger *zap.Logger) *LicenseRepository {
	return &LicenseRepository{
		db:     db,
		logger: logger.Named("LicenseRepository"),
	}
}

var _ license.Repository = (*LicenseRepository)(nil)

func (r *LicenseRepository) Create(ctx context.Context, lic *license.License) (int64, error) {
	query := `
        INSERT INTO license_keys (
            license_key, db_name, company_name, contact_person, contact_email,
            contact_phone, license_type, validity_period, status,
            issued_by, notes, issued_at, expires_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
        ) RETURNING license_id
    `

	var insertedID int64
	err := queryerFrom(ctx, r.db).QueryRow(ctx, query,
		lic.LicenseKey,
		lic.DBName,
		lic.CompanyName,
		lic.ContactPerson,
		lic.ContactEmail,
		lic.ContactPhone,
		lic.Type,
		lic.ValidityPeriod,
		lic.Status,
		lic.IssuedBy,
		lic.Notes,
		lic.IssuedAt,
		lic.ExpiresAt,
		lic.UpdatedAt,
	).Scan(&insertedID)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			r.logger.Warn("Attempted to create license with duplicate key",
				zap.String("license_key", lic.LicenseKey),
				zap.String("constraint", pgErr.ConstraintName),
			)
			return 0, fmt.Errorf("%w: %s", ierr.ErrDuplicateKey, lic.LicenseKey)
		}

		r.logger.Error("Failed to create license in database", zap.Error(err))
		return 0, fmt.Errorf("database error on create license: %w", err)
	}

	return insertedID, nil
}

func (r *LicenseRepository) FindByID(ctx context.Context, id int64) (*license.License, error) {
	query := `SELECT` + licenseColumns + ` FROM license_keys WHERE license_id = $1`
	row := queryerFrom(ctx, r.db).QueryRow(ctx, query, id)
	return r.scanLicense(row)
}

func (r *LicenseRepository) FindByKey(ctx context.Context, key string) (*license.License, error) {
	query := `SELECT` + licenseColumns + ` FROM license_keys WHERE license_key = $1`
	row := queryerFrom(ctx, r.db).QueryRow(ctx, query, key)
	return r.scanLicense(row)
}

func (r *LicenseRepository) KeyExists(ctx context.Context, key string, excludeID int64) (bool, error) {
	query := `SELECT COUNT(*) FROM license_keys WHERE license_key = $1 AND license_id <> $2`

	var count int64
	if err := queryerFrom(ctx, r.db).QueryRow(ctx, query, key, excludeID).Scan(&count); err != nil {
		r.logger.Error("Failed to check duplicate license key", zap.String("license_key", key), zap.Error(err))
		return false, fmt.Errorf("database error on uniqueness check: %w", err)
	}
	return count > 0, nil
}

func (r *LicenseRepository) Update(ctx context.Context, id int64, fields *license.UpdateFields) error {
	sets := make([]string, 0, 12)
	args := make([]any, 0, 12)

	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if fields.LicenseKey != nil {
		add("license_key", *fields.LicenseKey)
	}
	if fields.DBName != nil {
		add("db_name", *fields.DBName)
	}
	if fields.CompanyName != nil {
		add("company_name", *fields.CompanyName)
	}
	if fields.ContactPerson != nil {
		add("contact_person", *fields.ContactPerson)
	}
	if fields.ContactEmail != nil {
		add("contact_email", *fields.ContactEmail)
	}
	if fields.ContactPhone != nil {
		add("contact_phone", *fields.ContactPhone)
	}
	if fields.Type != nil {
		add("license_type", *fields.Type)
	}
	if fields.ValidityPeriod != nil {
		add("validity_period", *fields.ValidityPeriod)
	}
	if fields.ExpiresAt != nil {
		add("expires_at", *fields.ExpiresAt)
	}
	if fields.Status != nil {
		add("status", *fields.Status)
	}
	if fields.Notes != nil {
		add("notes", *fields.Notes)
	}

	if len(sets) == 0 {
		return ierr.ErrNoFields
	}

	sets = append(sets, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf("UPDATE license_keys SET %s WHERE license_id = $%d",
		strings.Join(sets, ", "), len(args))

	cmdTag, err := queryerFrom(ctx, r.db).Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("%w", ierr.ErrDuplicateKey)
		}
		r.logger.Error("Failed to update license in database", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("database error on update license: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: license %d", ierr.ErrNotFound, id)
	}
	return nil
}

func (r *LicenseRepository) UpdateExpiry(ctx context.Context, id int64, period license.Period, expiresAt time.Time) error {
	query := `
        UPDATE license_keys
        SET validity_period = $1, expires_at = $2, updated_at = now()
        WHERE license_id = $3
    `
	cmdTag, err := queryerFrom(ctx, r.db).Exec(ctx, query, period, expiresAt, id)
	if err != nil {
		r.logger.Error("Failed to update license expiry", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("database error on update expiry: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: license %d", ierr.ErrNotFound, id)
	}
	return nil
}

func (r *LicenseRepository) UpdateStatus(ctx context.Context, id int64, status license.Status) error {
	query := `UPDATE license_keys SET status = $1, updated_at = now() WHERE license_id = $2`

	cmdTag, err := queryerFrom(ctx, r.db).Exec(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update license status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("database error on update status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: license %d", ierr.ErrNotFound, id)
	}
	return nil
}

func (r *LicenseRepository) Delete(ctx context.Context, id int64) error {
	cmdTag, err := queryerFrom(ctx, r.db).Exec(ctx, `DELETE FROM license_keys WHERE license_id = $1`, id)
	if err != nil {
		r.logger.Error("Failed to delete license", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("database error on delete license: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%w: license %d", ierr.ErrNotFound, id)
	}
	return nil
}

func (r *LicenseRepository) List(ctx context.Context, params license.ListParams) ([]*license.License, error) {
	where, args := buildListFilter(params)

	orderBy := "issued_at"
	if col, ok := listSortColumns[params.SortBy]; ok {
		orderBy = col
	}
	orderDir := "DESC"
	if strings.EqualFold(params.SortOrder, "ASC") {
		orderDir = "ASC"
	}

	query := `SELECT` + licenseColumns + ` FROM v_dashboard_license_summary` + where +
		fmt.Sprintf(" ORDER BY %s %s", orderBy, orderDir)

	if params.Limit > 0 {
		args = append(args, params.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, params.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := queryerFrom(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to query list of licenses", zap.Error(err))
		return nil, fmt.Errorf("database error on list licenses: %w", err)
	}
	defer rows.Close()

	licenses := make([]*license.License, 0)
	for rows.Next() {
		lic, err := r.scanLicense(rows)
		if err != nil {
			return nil, err
		}
		licenses = append(licenses, lic)
	}
	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating license rows", zap.Error(err))
		return nil, fmt.Errorf("database iteration error on list licenses: %w", err)
	}
	return licenses, nil
}

func (r *LicenseRepository) Count(ctx context.Context, params license.ListParams) (int64, error) {
	where, args := buildListFilter(params)

	var total int64
	err := queryerFrom(ctx, r.db).QueryRow(ctx,
		`SELECT COUNT(*) FROM v_dashboard_license_summary`+where, args...).Scan(&total)
	if err != nil {
		r.logger.Error("Failed to count licenses", zap.Error(err))
		return 0, fmt.Errorf("database error on count licenses: %w", err)
	}
	return total, nil
}

func (r *LicenseRepository) RecordSuccessfulAccess(ctx context.Context, id int64) error {
	query := `
        UPDATE license_keys SET
            last_accessed = now(),
            access_count = access_count + 1,
            first_accessed = COALESCE(first_accessed, now())
        WHERE license_id = $1
    `
	if _, err := queryerFrom(ctx, r.db).Exec(ctx, query, id); err != nil {
		r.logger.Error("Failed to record license access", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("database error on record access: %w", err)
	}
	return nil
}

func (r *LicenseRepository) DistinctDBNames(ctx context.Context) ([]string, error) {
	rows, err := queryerFrom(ctx, r.db).Query(ctx,
		`SELECT DISTINCT db_name FROM license_keys WHERE db_name IS NOT NULL AND db_name <> '' ORDER BY db_name`)
	if err != nil {
		r.logger.Error("Failed to query distinct db names", zap.Error(err))
		return nil, fmt.Errorf("database error on distinct db names: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("database scan error on distinct db names: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func buildListFilter(params license.ListParams) (string, []any) {
	conds := make([]string, 0, 6)
	args := make([]any, 0, 8)

	if params.Search != "" {
		term := "%" + params.Search + "%"
		args = append(args, term)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(license_key ILIKE $%d OR company_name ILIKE $%d OR contact_person ILIKE $%d OR contact_email ILIKE $%d)",
			n, n, n, n))
	}
	if params.Status != nil {
		args = append(args, *params.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.ValidityPeriod != nil {
		args = append(args, *params.ValidityPeriod)
		conds = append(conds, fmt.Sprintf("validity_period = $%d", len(args)))
	}
	if params.Type != nil {
		args = append(args, *params.Type)
		conds = append(conds, fmt.Sprintf("license_type = $%d", len(args)))
	}
	if params.ExpiryBucket != nil {
		args = append(args, *params.ExpiryBucket)
		conds = append(conds, fmt.Sprintf("expiry_status = $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *LicenseRepository) scanLicense(row pgx.Row) (*license.License, error) {
	lic, err := scanLicenseRow(row)
	if err != nil && !errors.Is(err, ierr.ErrNotFound) {
		r.logger.Error("Failed to scan license row", zap.Error(err))
	}
	return lic, err
}

func scanLicenseRow(row pgx.Row) (*license.License, error) {
	var lic license.License
	err := row.Scan(
		&lic.ID,
		&lic.LicenseKey,
		&lic.DBName,
		&lic.CompanyName,
		&lic.ContactPerson,
		&lic.ContactEmail,
		&lic.ContactPhone,
		&lic.Type,
		&lic.ValidityPeriod,
		&lic.Status,
		&lic.IssuedBy,
		&lic.Notes,
		&lic.IssuedAt,
		&lic.ExpiresAt,
		&lic.UpdatedAt,
		&lic.AccessCount,
		&lic.FirstAccessed,
		&lic.LastAccessed,
		&lic.CurrentSessions,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ierr.ErrNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return &lic, nil
}
