// Package store implements the plaintext credential model (spec.md §3, §4.5)
// and the encrypt-then-MAC codec that turns it into, and back out of, a
// rooster envelope (spec.md §4.4). Operations here never touch the
// filesystem; that's the dispatcher's job (cmd/rooster).
package store

import (
	"strings"
	"time"

	"github.com/barnettlynn/rooster/internal/apperr"
	"github.com/barnettlynn/rooster/internal/cryptutil"
	"github.com/barnettlynn/rooster/internal/secret"
)

// Credential is one stored (name, username, password, timestamps) record.
// Name is the identity key, compared case-insensitively, but the casing
// the caller inserted it with is always what's kept and displayed.
type Credential struct {
	Name      string
	Username  string
	Password  *secret.String
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store is the in-memory set of credentials plus the scrypt parameters
// used to protect the file they're persisted in. Entries preserve
// insertion order so export output is stable (spec.md §3).
type Store struct {
	entries []*Credential
	params  cryptutil.ScryptParams

	// pendingMasterPassword, once set by ChangeMasterPassword, overrides
	// the master password the dispatcher re-encodes with. The store
	// itself never performs encryption, so this is just a staged value
	// for the dispatcher to read back (spec.md §4.5:
	// "change_master_password(new) ... next encode re-derives with new
	// master").
	pendingMasterPassword *secret.String
}

// New returns an empty store with the given scrypt parameters.
func New(params cryptutil.ScryptParams) *Store {
	return &Store{params: params}
}

// Params returns the store's current scrypt cost parameters.
func (s *Store) Params() cryptutil.ScryptParams {
	return s.params
}

func sameName(a, b string) bool {
	return strings.EqualFold(a, b)
}

func normalizedName(name string) string {
	return strings.ToLower(name)
}

func unixUTC(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

// Has reports whether name exists, case-insensitively.
func (s *Store) Has(name string) bool {
	return s.indexOf(name) >= 0
}

func (s *Store) indexOf(name string) int {
	for i, c := range s.entries {
		if sameName(c.Name, name) {
			return i
		}
	}
	return -1
}

// Add inserts a new credential. created_at and updated_at are both set to
// now. Returns AppExists if name collides with an existing entry
// case-insensitively.
func (s *Store) Add(name, username string, password *secret.String) error {
	if s.Has(name) {
		return apperr.New(apperr.KindAppExists, "an entry named \""+name+"\" already exists")
	}
	now := time.Now().UTC()
	s.entries = append(s.entries, &Credential{
		Name:      name,
		Username:  username,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	})
	return nil
}

// GetByName returns the entry whose name equals name case-insensitively.
func (s *Store) GetByName(name string) (*Credential, error) {
	if i := s.indexOf(name); i >= 0 {
		return s.entries[i], nil
	}
	return nil, apperr.New(apperr.KindAppNotFound, "no entry named \""+name+"\"")
}

// ChangePassword replaces the stored password for name and bumps
// updated_at.
func (s *Store) ChangePassword(name string, newPassword *secret.String) error {
	c, err := s.GetByName(name)
	if err != nil {
		return err
	}
	c.Password = newPassword
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// ChangeUsername replaces the stored username for name and bumps
// updated_at. This is the model-level operation behind the CLI's
// `transfer` verb.
func (s *Store) ChangeUsername(name, newUsername string) error {
	c, err := s.GetByName(name)
	if err != nil {
		return err
	}
	c.Username = newUsername
	c.UpdatedAt = time.Now().UTC()
	return nil
}

// Rename changes an entry's name and bumps updated_at. A rename whose new
// name equals the old name under case-insensitive comparison is permitted
// and simply updates the stored casing (spec.md §9, "Open question —
// rename when only casing differs").
func (s *Store) Rename(oldName, newName string) error {
	i := s.indexOf(oldName)
	if i < 0 {
		return apperr.New(apperr.KindAppNotFound, "no entry named \""+oldName+"\"")
	}
	if !sameName(oldName, newName) && s.Has(newName) {
		return apperr.New(apperr.KindAppExists, "an entry named \""+newName+"\" already exists")
	}
	s.entries[i].Name = newName
	s.entries[i].UpdatedAt = time.Now().UTC()
	return nil
}

// Delete removes the entry named name.
func (s *Store) Delete(name string) error {
	i := s.indexOf(name)
	if i < 0 {
		return apperr.New(apperr.KindAppNotFound, "no entry named \""+name+"\"")
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
	return nil
}

// ChangeMasterPassword stages new as the master password the dispatcher
// should encode with on the next write. It takes effect only once the
// dispatcher re-encodes the store; it never mutates any entry.
func (s *Store) ChangeMasterPassword(newMaster *secret.String) {
	s.pendingMasterPassword = newMaster
}

// PendingMasterPassword returns the master password staged by
// ChangeMasterPassword, or nil if none is pending.
func (s *Store) PendingMasterPassword() *secret.String {
	return s.pendingMasterPassword
}

// List returns an insertion-ordered snapshot of every entry.
func (s *Store) List() []*Credential {
	out := make([]*Credential, len(s.entries))
	copy(out, s.entries)
	return out
}

// SetScryptParams updates the store's scrypt cost parameters. A Log2N below
// the package default's requires force=true, per spec.md §4.5; R and P are
// not compared against the defaults.
func (s *Store) SetScryptParams(params cryptutil.ScryptParams, force bool) error {
	if !params.Valid() {
		return apperr.New(apperr.KindInvalidLength, "scrypt parameters out of range")
	}
	if params.IsWeak() && !force {
		return apperr.ErrWeakParams
	}
	s.params = params
	return nil
}
