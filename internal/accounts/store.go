// Package accounts maps emails to serialized account records on top of a
// key-value backend, and owns the device-wide remembered-email slot.
package accounts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/models"
	"github.com/dmitrijs2005/patrimonio/internal/repositories/kv"
)

// Backend is the persistence the account store needs.
type Backend interface {
	kv.Store
	kv.Transactor
}

type Store struct {
	kv Backend
}

func NewStore(b Backend) *Store {
	return &Store{kv: b}
}

// NormalizeEmail trims surrounding whitespace. Case is preserved.
func NormalizeEmail(email string) string {
	return strings.TrimSpace(email)
}

// Key returns the storage key of the account registered under email.
func Key(email string) string {
	return common.AccountKeyPrefix + NormalizeEmail(email)
}

// Get loads the account stored under email.
func (s *Store) Get(ctx context.Context, email string) (*models.Account, error) {
	return get(ctx, s.kv, email)
}

func (s *Store) Exists(ctx context.Context, email string) (bool, error) {
	b, err := s.kv.Get(ctx, Key(email))
	if err != nil {
		return false, err
	}
	return b != nil, nil
}

// Create stores a new account. An existing record under the same key is left
// untouched and ErrDuplicateAccount is returned.
func (s *Store) Create(ctx context.Context, a *models.Account) error {
	return s.kv.InTx(ctx, func(ctx context.Context, tx kv.Store) error {
		existing, err := tx.Get(ctx, Key(a.Email))
		if err != nil {
			return err
		}
		if existing != nil {
			return common.ErrDuplicateAccount
		}
		return put(ctx, tx, a)
	})
}

// Save overwrites the record stored under a.Email.
func (s *Store) Save(ctx context.Context, a *models.Account) error {
	if a.IsGuest() {
		return common.ErrGuestAccount
	}
	return put(ctx, s.kv, a)
}

// Rekey writes a under its (possibly new) email and removes the record at
// oldEmail when the key changed. Both writes commit together. A record
// already held by the new key is left untouched and ErrDuplicateAccount is
// returned.
func (s *Store) Rekey(ctx context.Context, oldEmail string, a *models.Account) error {
	oldKey, newKey := Key(oldEmail), Key(a.Email)
	return s.kv.InTx(ctx, func(ctx context.Context, tx kv.Store) error {
		if oldKey != newKey {
			existing, err := tx.Get(ctx, newKey)
			if err != nil {
				return err
			}
			if existing != nil {
				return common.ErrDuplicateAccount
			}
		}
		if err := put(ctx, tx, a); err != nil {
			return err
		}
		if oldKey == newKey {
			return nil
		}
		return tx.Delete(ctx, oldKey)
	})
}

// RememberedEmail returns the email held by the remember slot and whether the
// slot is present.
func (s *Store) RememberedEmail(ctx context.Context) (string, bool, error) {
	b, err := s.kv.Get(ctx, common.RememberEmailKey)
	if err != nil {
		return "", false, err
	}
	if b == nil {
		return "", false, nil
	}
	return string(b), true, nil
}

func (s *Store) Remember(ctx context.Context, email string) error {
	return s.kv.Set(ctx, common.RememberEmailKey, []byte(email))
}

func (s *Store) Forget(ctx context.Context) error {
	return s.kv.Delete(ctx, common.RememberEmailKey)
}

func get(ctx context.Context, st kv.Store, email string) (*models.Account, error) {
	b, err := st.Get(ctx, Key(email))
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, common.ErrAccountNotFound
	}

	a := &models.Account{}
	if err := json.Unmarshal(b, a); err != nil {
		return nil, fmt.Errorf("%w: decode account: %w", common.ErrStorage, err)
	}
	if a.Stats.TrainingHistory == nil {
		a.Stats.TrainingHistory = []models.TrainingEntry{}
	}
	return a, nil
}

func put(ctx context.Context, st kv.Store, a *models.Account) error {
	b, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("%w: encode account: %w", common.ErrStorage, err)
	}
	return st.Set(ctx, Key(a.Email), b)
}
