// Package session owns the active identity: one slot, persisted across
// restarts, resolved to a full account on boot. The reserved administrator
// identity is synthesized and never touches the record store.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mciskills/ai-foundations-lms/internal/course"
	"github.com/mciskills/ai-foundations-lms/internal/progress"
	"github.com/mciskills/ai-foundations-lms/internal/store"
)

// User input errors, surfaced to the UI as-is.
var (
	ErrEmptyEmail      = errors.New("email is required")
	ErrReservedEmail   = errors.New("this email is reserved for administrators; switch to admin access")
	ErrNotAdmin        = errors.New("not authorized to access the admin portal")
	ErrAccountExists   = errors.New("account already exists, log in instead")
	ErrAccountNotFound = errors.New("account not found, register first")
)

// Account is a resolved identity: profile, live progress tracker, and the
// module a returning student should land on.
type Account struct {
	Email            string
	Admin            bool
	Profile          store.Profile
	RegistrationDate string
	Tracker          *progress.Tracker
	ResumeModuleID   string
}

type Manager struct {
	store      store.RecordStore
	state      *StateFile
	catalog    course.Catalog
	adminEmail string // normalized

	mu      sync.Mutex
	current *Account
}

func NewManager(st store.RecordStore, state *StateFile, cat course.Catalog, adminEmail string) *Manager {
	return &Manager{
		store:      st,
		state:      state,
		catalog:    cat,
		adminEmail: store.NormalizeKey(adminEmail),
	}
}

// Boot resolves the persisted identity, if any. A dangling identity (session
// saved but record gone) is a soft logout: the slot is cleared and a nil
// account is returned without error.
func (m *Manager) Boot(ctx context.Context) (*Account, error) {
	identity, ok := m.state.Load()
	if !ok {
		return nil, nil
	}
	acct, err := m.Resolve(ctx, identity)
	if errors.Is(err, ErrAccountNotFound) {
		if cerr := m.state.Clear(); cerr != nil {
			return nil, cerr
		}
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	m.setCurrent(acct)
	return acct, nil
}

// Resolve turns an identity into a full account. The reserved administrator
// is fabricated without any store operation; everyone else is looked up.
func (m *Manager) Resolve(ctx context.Context, email string) (*Account, error) {
	key := store.NormalizeKey(email)
	if key == "" {
		return nil, ErrEmptyEmail
	}
	if key == m.adminEmail {
		return m.adminAccount(key), nil
	}

	rec, found, err := m.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrAccountNotFound
	}

	agg := progress.FromRecord(rec.Progress)
	tr := progress.NewTracker(m.store, key, false, agg)
	return &Account{
		Email:            key,
		Profile:          rec.Profile,
		RegistrationDate: rec.RegistrationDate,
		Tracker:          tr,
		ResumeModuleID:   tr.ResumePoint(m.catalog),
	}, nil
}

// Login authenticates an existing identity. Student logins with the reserved
// administrator address fail with a distinct error; admin-mode logins with
// any other address are rejected.
func (m *Manager) Login(ctx context.Context, email string, adminMode bool) (*Account, error) {
	key := store.NormalizeKey(email)
	if key == "" {
		return nil, ErrEmptyEmail
	}
	if !adminMode && key == m.adminEmail {
		return nil, ErrReservedEmail
	}
	if adminMode && key != m.adminEmail {
		return nil, ErrNotAdmin
	}

	acct, err := m.Resolve(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := m.state.Save(key); err != nil {
		return nil, err
	}
	m.setCurrent(acct)
	return acct, nil
}

// Register creates a new record and behaves like a successful login.
// Registration is not idempotent: an existing record is an error and is left
// untouched.
func (m *Manager) Register(ctx context.Context, p store.Profile) (*Account, error) {
	key := store.NormalizeKey(p.Email)
	if key == "" {
		return nil, ErrEmptyEmail
	}
	if key == m.adminEmail {
		return nil, ErrReservedEmail
	}
	if _, found, err := m.store.Get(ctx, key); err != nil {
		return nil, err
	} else if found {
		return nil, ErrAccountExists
	}

	p.Email = key
	rec := store.UserRecord{
		Profile:          p,
		RegistrationDate: time.Now().UTC().Format(time.RFC3339),
		Progress:         progress.New().Snapshot(),
	}
	if err := m.store.Put(ctx, key, rec); err != nil {
		return nil, err
	}
	if err := m.state.Save(key); err != nil {
		return nil, err
	}

	tr := progress.NewTracker(m.store, key, false, progress.New())
	acct := &Account{
		Email:            key,
		Profile:          p,
		RegistrationDate: rec.RegistrationDate,
		Tracker:          tr,
		ResumeModuleID:   tr.ResumePoint(m.catalog),
	}
	m.setCurrent(acct)
	return acct, nil
}

// Logout clears the slot and drops all in-memory state. It is a pure local
// reset and never depends on a store call.
func (m *Manager) Logout() {
	_ = m.state.Clear()
	m.mu.Lock()
	m.current = nil
	m.mu.Unlock()
}

// Current returns the active account, nil when anonymous.
func (m *Manager) Current() *Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

func (m *Manager) AdminEmail() string      { return m.adminEmail }
func (m *Manager) Catalog() course.Catalog { return m.catalog }

func (m *Manager) setCurrent(acct *Account) {
	m.mu.Lock()
	m.current = acct
	m.mu.Unlock()
}

func (m *Manager) adminAccount(key string) *Account {
	return &Account{
		Email: key,
		Admin: true,
		Profile: store.Profile{
			FullName:   "MCI Administrator",
			Email:      key,
			Grade:      "Admin",
			SchoolName: "Management Career Institute",
		},
		// Admin progress is synthetic and never persisted.
		Tracker: progress.NewTracker(m.store, key, true, progress.New()),
	}
}
