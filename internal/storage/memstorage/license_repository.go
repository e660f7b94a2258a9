package memstorage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ayabid/license-admin-api/internal/domain/license"
	"github.com/ayabid/license-admin-api/internal/ierr"
)

type LicenseRepository struct {
	store *Store
}

func NewLicenseRepository(store *Store) *LicenseRepository {
	return &LicenseRepository{store: store}
}

var _ license.Repository = (*LicenseRepository)(nil)

func (r *LicenseRepository) Create(ctx context.Context, lic *license.License) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.licenses {
		if existing.LicenseKey == lic.LicenseKey {
			return 0, fmt.Errorf("%w: %s", ierr.ErrDuplicateKey, lic.LicenseKey)
		}
	}

	id := r.store.nextLicenseID
	r.store.nextLicenseID++

	licCopy := *lic
	licCopy.ID = id
	r.store.licenses[id] = &licCopy
	return id, nil
}

func (r *LicenseRepository) FindByID(ctx context.Context, id int64) (*license.License, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	lic, ok := r.store.licenses[id]
	if !ok {
		return nil, ierr.ErrNotFound
	}
	licCopy := *lic
	return &licCopy, nil
}

func (r *LicenseRepository) FindByKey(ctx context.Context, key string) (*license.License, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, lic := range r.store.licenses {
		if lic.LicenseKey == key {
			licCopy := *lic
			return &licCopy, nil
		}
	}
	return nil, ierr.ErrNotFound
}

func (r *LicenseRepository) KeyExists(ctx context.Context, key string, excludeID int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, lic := range r.store.licenses {
		if lic.LicenseKey == key && lic.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *LicenseRepository) Update(ctx context.Context, id int64, fields *license.UpdateFields) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	lic, ok := r.store.licenses[id]
	if !ok {
		return fmt.Errorf("%w: license %d", ierr.ErrNotFound, id)
	}
	if fields.Empty() {
		return ierr.ErrNoFields
	}

	if fields.LicenseKey != nil {
		lic.LicenseKey = *fields.LicenseKey
	}
	if fields.DBName != nil {
		lic.DBName.String, lic.DBName.Valid = *fields.DBName, *fields.DBName != ""
	}
	if fields.CompanyName != nil {
		lic.CompanyName = *fields.CompanyName
	}
	if fields.ContactPerson != nil {
		lic.ContactPerson = *fields.ContactPerson
	}
	if fields.ContactEmail != nil {
		lic.ContactEmail = *fields.ContactEmail
	}
	if fields.ContactPhone != nil {
		lic.ContactPhone.String, lic.ContactPhone.Valid = *fields.ContactPhone, *fields.ContactPhone != ""
	}
	if fields.Type != nil {
		lic.Type = *fields.Type
	}
	if fields.ValidityPeriod != nil {
		lic.ValidityPeriod = *fields.ValidityPeriod
	}
	if fields.ExpiresAt != nil {
		lic.ExpiresAt = *fields.ExpiresAt
	}
	if fields.Status != nil {
		lic.Status = *fields.Status
	}
	if fields.Notes != nil {
		lic.Notes.String, lic.Notes.Valid = *fields.Notes, *fields.Notes != ""
	}
	lic.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *LicenseRepository) UpdateExpiry(ctx context.Context, id int64, period license.Period, expiresAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	lic, ok := r.store.licenses[id]
	if !ok {
		return fmt.Errorf("%w: license %d", ierr.ErrNotFound, id)
	}
	lic.ValidityPeriod = period
	lic.ExpiresAt = expiresAt
	lic.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *LicenseRepository) UpdateStatus(ctx context.Context, id int64, status license.Status) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	lic, ok := r.store.licenses[id]
	if !ok {
		return fmt.Errorf("%w: license %d", ierr.ErrNotFound, id)
	}
	lic.Status = status
	lic.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *LicenseRepository) Delete(ctx context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.licenses[id]; !ok {
		return fmt.Errorf("%w: license %d", ierr.ErrNotFound, id)
	}
	delete(r.store.licenses, id)
	return nil
}

func (r *LicenseRepository) List(ctx context.Context, params license.ListParams) ([]*license.License, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	matched := make([]*license.License, 0, len(r.store.licenses))
	for _, lic := range r.store.licenses {
		if matchesParams(lic, params) {
			licCopy := *lic
			matched = append(matched, &licCopy)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if strings.EqualFold(params.SortOrder, "ASC") {
			return matched[i].IssuedAt.Before(matched[j].IssuedAt)
		}
		return matched[i].IssuedAt.After(matched[j].IssuedAt)
	})

	if params.Limit > 0 {
		start := params.Offset
		if start > len(matched) {
			start = len(matched)
		}
		end := start + params.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[start:end]
	}
	return matched, nil
}

func (r *LicenseRepository) Count(ctx context.Context, params license.ListParams) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var total int64
	for _, lic := range r.store.licenses {
		if matchesParams(lic, params) {
			total++
		}
	}
	return total, nil
}

func (r *LicenseRepository) RecordSuccessfulAccess(ctx context.Context, id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	lic, ok := r.store.licenses[id]
	if !ok {
		return fmt.Errorf("%w: license %d", ierr.ErrNotFound, id)
	}

	now := time.Now().UTC()
	lic.AccessCount++
	lic.LastAccessed.Time, lic.LastAccessed.Valid = now, true
	if !lic.FirstAccessed.Valid {
		lic.FirstAccessed.Time, lic.FirstAccessed.Valid = now, true
	}
	return nil
}

func (r *LicenseRepository) DistinctDBNames(ctx context.Context) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	seen := make(map[string]struct{})
	for _, lic := range r.store.licenses {
		if lic.DBName.Valid && lic.DBName.String != "" {
			seen[lic.DBName.String] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func matchesParams(lic *license.License, params license.ListParams) bool {
	if params.Search != "" {
		term := strings.ToLower(params.Search)
		if !strings.Contains(strings.ToLower(lic.LicenseKey), term) &&
			!strings.Contains(strings.ToLower(lic.CompanyName), term) &&
			!strings.Contains(strings.ToLower(lic.ContactPerson), term) &&
			!strings.Contains(strings.ToLower(lic.ContactEmail), term) {
			return false
		}
	}
	if params.Status != nil && lic.Status != *params.Status {
		return false
	}
	if params.ValidityPeriod != nil && lic.ValidityPeriod != *params.ValidityPeriod {
		return false
	}
	if params.Type != nil && lic.Type != *params.Type {
		return false
	}
	if params.ExpiryBucket != nil && lic.Bucket(time.Now(), 7) != *params.ExpiryBucket {
		return false
	}
	return true
}
