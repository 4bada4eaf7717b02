// Package cli is the interactive terminal host of PatrimônioPro. It drives the
// session machine, keeps the signed-in account behind a short-lived session
// token and exposes the wallet, advisory and export commands.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/dmitrijs2005/patrimonio/internal/auth"
	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/logging"
	"github.com/dmitrijs2005/patrimonio/internal/models"
	"github.com/dmitrijs2005/patrimonio/internal/session"
)

// AccountStore is what the host needs from the account store: the session
// machine's view plus saving an updated record.
type AccountStore interface {
	session.AccountStore
	Save(ctx context.Context, a *models.Account) error
}

// Advisor produces the coaching texts. *advisory.Client satisfies it.
type Advisor interface {
	DiscoveryMessage(ctx context.Context, stats models.UserStats) string
	OpportunityAdvice(ctx context.Context, stats models.UserStats) string
	ChallengeFeedback(ctx context.Context, choice string, amount float64) string
	Briefing(ctx context.Context, stats models.UserStats) (discovery, opportunity string)
}

// Exporter uploads an account snapshot. *backup.Exporter satisfies it.
type Exporter interface {
	Export(ctx context.Context, a *models.Account) (string, error)
}

// Options wire an App. Exporter may be nil when no bucket is configured.
type Options struct {
	Accounts AccountStore
	Advisor  Advisor
	Exporter Exporter
	Logger   logging.Logger

	Latency        session.Latency
	VerifyRecovery bool

	// Secret signs session tokens; TokenTTL is their lifetime.
	Secret   []byte
	TokenTTL time.Duration

	In  io.Reader
	Out io.Writer
}

type App struct {
	accounts AccountStore
	advisor  Advisor
	exporter Exporter
	log      logging.Logger
	machine  *session.Machine

	secret         []byte
	ttl            time.Duration
	verifyRecovery bool

	reader *bufio.Reader
	out    io.Writer

	// notify is signalled on every state change and sign-in.
	notify chan struct{}

	mu      sync.Mutex
	token   string
	current *models.Account
	// flash holds the last success message published by the machine.
	flash string
}

func NewApp(ctx context.Context, o Options) (*App, error) {
	if o.Logger == nil {
		o.Logger = logging.Nop()
	}
	if len(o.Secret) == 0 {
		return nil, fmt.Errorf("session secret: %w", common.ErrValidation)
	}

	a := &App{
		accounts:       o.Accounts,
		advisor:        o.Advisor,
		exporter:       o.Exporter,
		log:            o.Logger.With("component", "cli"),
		secret:         o.Secret,
		ttl:            o.TokenTTL,
		verifyRecovery: o.VerifyRecovery,
		reader:         bufio.NewReader(o.In),
		out:            o.Out,
		notify:         make(chan struct{}, 1),
	}

	m, err := session.New(ctx, o.Accounts, session.Options{
		Latency:        o.Latency,
		VerifyRecovery: o.VerifyRecovery,
		OnAuthComplete: a.onAuthComplete,
		Logger:         o.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("session init: %w", err)
	}
	m.Subscribe(a.observe)
	a.machine = m

	return a, nil
}

// Run prints the banner and serves commands until EOF or exit. The session
// machine is closed on return.
func (a *App) Run(ctx context.Context) {
	defer a.machine.Close()

	fmt.Fprintln(a.out, "PatrimônioPro (digite 'help' para ver os comandos)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

func (a *App) observe(s session.State) {
	if s.Success != "" {
		a.mu.Lock()
		a.flash = s.Success
		a.mu.Unlock()
	}
	a.signal()
}

// takeFlash returns and clears the last success message.
func (a *App) takeFlash() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	f := a.flash
	a.flash = ""
	return f
}

func (a *App) hasFlash() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.flash != ""
}

func (a *App) signal() {
	select {
	case a.notify <- struct{}{}:
	default:
	}
}

// waitUntil blocks until cond holds or ctx is done. cond is re-evaluated
// after every state change.
func (a *App) waitUntil(ctx context.Context, cond func() bool) error {
	for !cond() {
		select {
		case <-a.notify:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// onAuthComplete mints a session token for acc and makes it current.
func (a *App) onAuthComplete(acc *models.Account) {
	ctx := context.Background()

	token, err := auth.GenerateToken(acc.Email, acc.IsGuest(), a.secret, a.ttl)
	if err != nil {
		a.log.Error(ctx, "session token not issued", "email", acc.Email, "error", err)
		return
	}

	a.mu.Lock()
	a.token = token
	a.current = acc
	a.mu.Unlock()

	a.log.Info(ctx, "signed in", "email", acc.Email, "guest", acc.IsGuest())
	a.signal()
}

func (a *App) signOut() {
	a.mu.Lock()
	a.token = ""
	a.current = nil
	a.mu.Unlock()
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current != nil
}

// account validates the session token and returns the signed-in account,
// reloaded from the store unless it is the guest. An expired token signs the
// user out.
func (a *App) account(ctx context.Context) (*models.Account, error) {
	a.mu.Lock()
	token, current := a.token, a.current
	a.mu.Unlock()

	if current == nil {
		return nil, common.ErrUnauthorized
	}

	claims, err := auth.ParseToken(token, a.secret)
	if err != nil {
		a.signOut()
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
	}
	if claims.Email != current.Email || claims.Guest != current.IsGuest() {
		a.signOut()
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthorized, common.ErrInvalidToken)
	}

	if current.IsGuest() {
		return current, nil
	}

	acc, err := a.accounts.Get(ctx, claims.Email)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	if a.current != nil && a.current.Email == acc.Email {
		a.current = acc
	}
	a.mu.Unlock()
	return acc, nil
}

// getStatus renders the prompt status: the signed-in account or the current
// session step.
func (a *App) getStatus() string {
	a.mu.Lock()
	current := a.current
	a.mu.Unlock()

	if current != nil {
		if current.IsGuest() {
			return fmt.Sprintf("(%s)", current.Name)
		}
		return fmt.Sprintf("(%s)", current.Email)
	}

	s := a.machine.State()
	status := s.Step.String()
	if s.Remember {
		status += " *"
	}
	return fmt.Sprintf("(%s)", status)
}
