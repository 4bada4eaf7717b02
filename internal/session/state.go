// Package session implements the LOGIN / REGISTER / RECOVERY flow that stands
// in front of the application. A Machine owns the transient form state,
// validates submissions against the account store and hands the signed-in
// account to the host through a completion callback.
package session

import (
	"time"
)

type Step int

const (
	StepLogin Step = iota
	StepRegister
	StepRecovery
)

func (s Step) String() string {
	switch s {
	case StepLogin:
		return "LOGIN"
	case StepRegister:
		return "REGISTER"
	case StepRecovery:
		return "RECOVERY"
	}
	return "UNKNOWN"
}

// State is a snapshot of the form. Observers receive copies; mutating one has
// no effect on the machine.
type State struct {
	Step Step

	Email    string
	NewEmail string
	// Password is the login password, the registration password or the
	// replacement password during recovery.
	Password string
	// CurrentPassword proves ownership during recovery.
	CurrentPassword string
	Name            string

	Remember    bool
	EmailReport bool

	Error   string
	Success string
	Loading bool
}

func initialState() State {
	return State{Step: StepLogin, EmailReport: true}
}

// Latency holds the simulated processing delays. A zero value runs the
// continuation immediately.
type Latency struct {
	Register       time.Duration
	Handoff        time.Duration
	RecoveryReturn time.Duration
	Guest          time.Duration
}

func DefaultLatency() Latency {
	return Latency{
		Register:       1200 * time.Millisecond,
		Handoff:        1500 * time.Millisecond,
		RecoveryReturn: 2000 * time.Millisecond,
		Guest:          800 * time.Millisecond,
	}
}
