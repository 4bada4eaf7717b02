package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/patrimonio/internal/logging"
	"github.com/dmitrijs2005/patrimonio/internal/models"
)

// ErrClosed is returned by operations on a machine after Close.
var ErrClosed = errors.New("session closed")

// AccountStore is the persistence used by the machine.
type AccountStore interface {
	Get(ctx context.Context, email string) (*models.Account, error)
	Exists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, a *models.Account) error
	Rekey(ctx context.Context, oldEmail string, a *models.Account) error
	RememberedEmail(ctx context.Context) (string, bool, error)
	Remember(ctx context.Context, email string) error
	Forget(ctx context.Context) error
}

// Options configure a Machine.
type Options struct {
	Latency Latency
	// VerifyRecovery requires the current password before credentials are
	// replaced during recovery.
	VerifyRecovery bool
	// OnAuthComplete receives the account after a successful login,
	// registration or guest access. It runs outside the machine lock.
	OnAuthComplete func(*models.Account)
	Logger         logging.Logger
}

type Machine struct {
	store AccountStore
	opts  Options
	log   logging.Logger

	// op serializes submissions.
	op sync.Mutex

	mu        sync.Mutex
	state     State
	observers []func(State)
	timers    map[*time.Timer]struct{}
	closed    bool
	pending   sync.WaitGroup
}

// New builds a machine in the LOGIN step. The remember flag is seeded from
// the presence of the remembered-email slot; all fields start empty.
func New(ctx context.Context, store AccountStore, opts Options) (*Machine, error) {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	m := &Machine{
		store:  store,
		opts:   opts,
		log:    opts.Logger.With("component", "session"),
		state:  initialState(),
		timers: make(map[*time.Timer]struct{}),
	}

	_, ok, err := store.RememberedEmail(ctx)
	if err != nil {
		return nil, err
	}
	m.state.Remember = ok
	return m, nil
}

// State returns a snapshot of the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn to receive a snapshot after every change.
func (m *Machine) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observers = append(m.observers, fn)
}

// update applies fn under the lock and notifies observers. It reports false
// when the machine is closed and nothing changed.
func (m *Machine) update(fn func(s *State)) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	fn(&m.state)
	snap := m.state
	observers := make([]func(State), len(m.observers))
	copy(observers, m.observers)
	m.mu.Unlock()

	for _, o := range observers {
		o(snap)
	}
	return true
}

func (m *Machine) SetEmail(v string)           { m.update(func(s *State) { s.Email = v }) }
func (m *Machine) SetNewEmail(v string)        { m.update(func(s *State) { s.NewEmail = v }) }
func (m *Machine) SetPassword(v string)        { m.update(func(s *State) { s.Password = v }) }
func (m *Machine) SetCurrentPassword(v string) { m.update(func(s *State) { s.CurrentPassword = v }) }
func (m *Machine) SetName(v string)            { m.update(func(s *State) { s.Name = v }) }
func (m *Machine) ToggleRemember()             { m.update(func(s *State) { s.Remember = !s.Remember }) }
func (m *Machine) ToggleEmailReport()          { m.update(func(s *State) { s.EmailReport = !s.EmailReport }) }

// GoToRegister switches to REGISTER and clears messages and form fields.
func (m *Machine) GoToRegister() {
	m.update(func(s *State) {
		s.Step = StepRegister
		clearMessages(s)
		s.Email, s.Password, s.Name = "", "", ""
	})
}

// GoToLogin switches to LOGIN and clears messages and form fields.
func (m *Machine) GoToLogin() {
	m.update(func(s *State) {
		s.Step = StepLogin
		clearMessages(s)
		s.Email, s.Password, s.Name = "", "", ""
	})
}

// GoToRecovery switches to RECOVERY keeping the typed fields.
func (m *Machine) GoToRecovery() {
	m.update(func(s *State) {
		s.Step = StepRecovery
		clearMessages(s)
	})
}

// CancelRecovery returns to LOGIN.
func (m *Machine) CancelRecovery() {
	m.update(func(s *State) {
		s.Step = StepLogin
		clearMessages(s)
	})
}

func clearMessages(s *State) {
	s.Error, s.Success = "", ""
}

// Close cancels pending continuations and waits for running ones to finish.
// No observer or completion callback fires after Close returns. Close must
// not be called from an observer or from OnAuthComplete.
func (m *Machine) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	for t := range m.timers {
		if t.Stop() {
			m.pending.Done()
		}
	}
	m.timers = nil
	m.mu.Unlock()

	m.pending.Wait()
}

func (m *Machine) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// after runs fn once d has elapsed. A non-positive d runs fn inline and
// returns its error. Errors of delayed continuations are logged.
func (m *Machine) after(ctx context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	if d <= 0 {
		return fn(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	// The continuation outlives the request that scheduled it.
	ctx = context.WithoutCancel(ctx)

	m.pending.Add(1)
	var t *time.Timer
	t = time.AfterFunc(d, func() {
		defer m.pending.Done()

		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			return
		}
		delete(m.timers, t)
		m.mu.Unlock()

		if err := fn(ctx); err != nil {
			m.log.Warn(ctx, "delayed continuation failed", "error", err)
		}
	})
	m.timers[t] = struct{}{}
	return nil
}

// complete hands a to the host unless the machine was closed.
func (m *Machine) complete(a *models.Account) {
	if m.opts.OnAuthComplete == nil || m.isClosed() {
		return
	}
	m.opts.OnAuthComplete(a)
}
