package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/patrimonio/internal/accounts"
	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/cryptox"
	"github.com/dmitrijs2005/patrimonio/internal/models"
)

// Submit validates and executes the current step. Failures set the error slot,
// keep the step and are returned wrapped around a common sentinel. Delayed
// work scheduled by a successful submission reports through the state only.
func (m *Machine) Submit(ctx context.Context) error {
	m.op.Lock()
	defer m.op.Unlock()

	var snap State
	var err error
	ok := m.update(func(s *State) {
		if s.Loading {
			err = common.ErrBusy
			return
		}
		clearMessages(s)
		snap = *s
	})
	if !ok {
		return ErrClosed
	}
	if err != nil {
		return err
	}

	switch snap.Step {
	case StepRegister:
		return m.register(ctx, snap)
	case StepRecovery:
		return m.recover(ctx, snap)
	default:
		return m.login(ctx, snap)
	}
}

// fail puts msg in the error slot and returns err.
func (m *Machine) fail(msg string, err error) error {
	m.update(func(s *State) {
		s.Error = msg
		s.Loading = false
	})
	return err
}

// storageFailure reports a store error that is not a domain outcome.
func (m *Machine) storageFailure(ctx context.Context, op string, err error) error {
	m.log.Error(ctx, "account store failure", "op", op, "error", err)
	return m.fail(msgStorage, fmt.Errorf("%s: %w", op, err))
}

func (m *Machine) register(ctx context.Context, in State) error {
	email := accounts.NormalizeEmail(in.Email)
	if in.Name == "" || email == "" || in.Password == "" {
		return m.fail(msgRegisterMissing, fmt.Errorf("register: %w", common.ErrValidation))
	}

	exists, err := m.store.Exists(ctx, email)
	if err != nil {
		return m.storageFailure(ctx, "register", err)
	}
	if exists {
		return m.fail(msgRegisterDuplicate, fmt.Errorf("register: %w", common.ErrDuplicateAccount))
	}

	m.update(func(s *State) { s.Loading = true })

	return m.after(ctx, m.opts.Latency.Register, func(ctx context.Context) error {
		salt := cryptox.NewSalt()
		a := models.NewAccount(in.Name, email, salt, cryptox.HashPassword([]byte(in.Password), salt))

		if err := m.store.Create(ctx, a); err != nil {
			if errors.Is(err, common.ErrDuplicateAccount) {
				return m.fail(msgRegisterDuplicate, fmt.Errorf("register: %w", err))
			}
			return m.storageFailure(ctx, "register", err)
		}
		if err := m.applyPersistence(ctx, in.Remember, email); err != nil {
			m.log.Warn(ctx, "remember slot not updated", "error", err)
		}
		m.log.Info(ctx, "account registered", "email", email)

		msg := msgRegisterOK
		if in.EmailReport {
			msg = msgRegisterReport
		}
		m.update(func(s *State) {
			s.Loading = false
			s.Success = msg
		})

		return m.after(ctx, m.opts.Latency.Handoff, func(context.Context) error {
			m.complete(a)
			return nil
		})
	})
}

func (m *Machine) login(ctx context.Context, in State) error {
	a, err := m.store.Get(ctx, in.Email)
	if errors.Is(err, common.ErrAccountNotFound) {
		return m.fail(msgLoginNotFound, fmt.Errorf("login: %w", err))
	}
	if err != nil {
		return m.storageFailure(ctx, "login", err)
	}

	if !cryptox.VerifyPassword([]byte(in.Password), a.Salt, a.PasswordHash) {
		m.log.Info(ctx, "login rejected", "email", a.Email)
		return m.fail(msgLoginBadPassword, fmt.Errorf("login: %w", common.ErrInvalidCredentials))
	}

	if err := m.applyPersistence(ctx, in.Remember, a.Email); err != nil {
		m.log.Warn(ctx, "remember slot not updated", "error", err)
	}
	m.log.Info(ctx, "login succeeded", "email", a.Email)
	m.update(func(s *State) { s.Password, s.CurrentPassword = "", "" })
	m.complete(a)
	return nil
}

func (m *Machine) recover(ctx context.Context, in State) error {
	oldEmail := accounts.NormalizeEmail(in.Email)
	newEmail := accounts.NormalizeEmail(in.NewEmail)
	if oldEmail == "" || newEmail == "" || in.Password == "" ||
		(m.opts.VerifyRecovery && in.CurrentPassword == "") {
		return m.fail(msgRecoveryMissing, fmt.Errorf("recovery: %w", common.ErrValidation))
	}

	a, err := m.store.Get(ctx, oldEmail)
	if errors.Is(err, common.ErrAccountNotFound) {
		return m.fail(msgRecoveryNotFound, fmt.Errorf("recovery: %w", err))
	}
	if err != nil {
		return m.storageFailure(ctx, "recovery", err)
	}

	if m.opts.VerifyRecovery && !cryptox.VerifyPassword([]byte(in.CurrentPassword), a.Salt, a.PasswordHash) {
		m.log.Info(ctx, "recovery rejected", "email", oldEmail)
		return m.fail(msgRecoveryBadPassword, fmt.Errorf("recovery: %w", common.ErrInvalidCredentials))
	}

	if newEmail != oldEmail {
		taken, err := m.store.Exists(ctx, newEmail)
		if err != nil {
			return m.storageFailure(ctx, "recovery", err)
		}
		if taken {
			return m.fail(msgRecoveryEmailTaken, fmt.Errorf("recovery: %w", common.ErrDuplicateAccount))
		}
	}

	a.Email = newEmail
	a.Salt = cryptox.NewSalt()
	a.PasswordHash = cryptox.HashPassword([]byte(in.Password), a.Salt)
	if err := m.store.Rekey(ctx, oldEmail, a); err != nil {
		if errors.Is(err, common.ErrDuplicateAccount) {
			return m.fail(msgRecoveryEmailTaken, fmt.Errorf("recovery: %w", err))
		}
		return m.storageFailure(ctx, "recovery", err)
	}
	m.log.Info(ctx, "credentials replaced", "old_email", oldEmail, "new_email", newEmail)

	m.update(func(s *State) { s.Success = msgRecoveryOK })

	return m.after(ctx, m.opts.Latency.RecoveryReturn, func(context.Context) error {
		m.update(func(s *State) {
			s.Step = StepLogin
			s.Email = newEmail
			s.NewEmail = ""
			s.Password = ""
			s.CurrentPassword = ""
			s.Success = ""
		})
		return nil
	})
}

// Guest signs in the guest pseudo-account. The store is never touched.
func (m *Machine) Guest(ctx context.Context) error {
	m.op.Lock()
	defer m.op.Unlock()

	var err error
	ok := m.update(func(s *State) {
		if s.Loading {
			err = common.ErrBusy
			return
		}
		clearMessages(s)
		s.Loading = true
	})
	if !ok {
		return ErrClosed
	}
	if err != nil {
		return err
	}

	return m.after(ctx, m.opts.Latency.Guest, func(context.Context) error {
		if !m.update(func(s *State) { s.Loading = false }) {
			return nil
		}
		m.complete(models.GuestAccount())
		return nil
	})
}

// applyPersistence writes email into the remember slot when remember is set
// and clears the slot otherwise.
func (m *Machine) applyPersistence(ctx context.Context, remember bool, email string) error {
	if remember {
		return m.store.Remember(ctx, email)
	}
	return m.store.Forget(ctx)
}
