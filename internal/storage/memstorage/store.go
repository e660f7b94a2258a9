// Package memstorage holds in-memory implementations of the repository
// interfaces. They back the admin user directory in production wiring and
// stand in for PostgreSQL in service-level tests, including transaction
// rollback via state snapshots.
package memstorage

import (
	"context"
	"errors"
	"sync"

	"github.com/ayabid/license-admin-api/internal/domain/audit"
	"github.com/ayabid/license-admin-api/internal/domain/license"
	"github.com/ayabid/license-admin-api/internal/domain/session"
)

// Store is the shared state behind the in-memory repositories.
type Store struct {
	mu sync.Mutex

	nextLicenseID int64
	licenses      map[int64]*license.License

	AdminActions  []*audit.AdminAction
	StatusChanges []*audit.StatusChange
	Renewals      []*audit.RenewalRecord
	AccessLogs    []*audit.AccessRecord

	sessions map[string]*session.Session

	// FailNextAdminAction makes the next RecordAdminAction call fail, for
	// exercising the rollback contract.
	FailNextAdminAction bool
}

func NewStore() *Store {
	return &Store{
		nextLicenseID: 1,
		licenses:      make(map[int64]*license.License),
		sessions:      make(map[string]*session.Session),
	}
}

type snapshot struct {
	nextLicenseID int64
	licenses      map[int64]*license.License
	adminActions  []*audit.AdminAction
	statusChanges []*audit.StatusChange
	renewals      []*audit.RenewalRecord
	accessLogs    []*audit.AccessRecord
	sessions      map[string]*session.Session
}

func (s *Store) snapshot() *snapshot {
	snap := &snapshot{
		nextLicenseID: s.nextLicenseID,
		licenses:      make(map[int64]*license.License, len(s.licenses)),
		adminActions:  append([]*audit.AdminAction(nil), s.AdminActions...),
		statusChanges: append([]*audit.StatusChange(nil), s.StatusChanges...),
		renewals:      append([]*audit.RenewalRecord(nil), s.Renewals...),
		accessLogs:    append([]*audit.AccessRecord(nil), s.AccessLogs...),
		sessions:      make(map[string]*session.Session, len(s.sessions)),
	}
	for id, lic := range s.licenses {
		licCopy := *lic
		snap.licenses[id] = &licCopy
	}
	for id, sess := range s.sessions {
		sessCopy := *sess
		snap.sessions[id] = &sessCopy
	}
	return snap
}

func (s *Store) restore(snap *snapshot) {
	s.nextLicenseID = snap.nextLicenseID
	s.licenses = snap.licenses
	s.AdminActions = snap.adminActions
	s.StatusChanges = snap.statusChanges
	s.Renewals = snap.renewals
	s.AccessLogs = snap.accessLogs
	s.sessions = snap.sessions
}

// TxManager snapshots the store before fn and restores the snapshot when fn
// fails, giving memstorage the same all-or-nothing behavior the database
// transaction provides.
type TxManager struct {
	store *Store
}

func NewTxManager(store *Store) *TxManager {
	return &TxManager{store: store}
}

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.store.mu.Lock()
	snap := m.store.snapshot()
	m.store.mu.Unlock()

	if err := fn(ctx); err != nil {
		m.store.mu.Lock()
		m.store.restore(snap)
		m.store.mu.Unlock()
		return err
	}
	return nil
}

var errInjectedFailure = errors.New("injected admin action failure")
