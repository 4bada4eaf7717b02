package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/session"
)

// getSimpleText, getTextWithDefault, getPassword and confirm are indirections
// used to facilitate testing. They point to interactive input helpers and can
// be swapped in tests.
var (
	getSimpleText      = GetSimpleText
	getTextWithDefault = GetTextWithDefault
	getPassword        = GetPassword
	confirm            = Confirm
)

// Register prompts for name, email, password and the two preferences, then
// submits the REGISTER step. It returns once the account is signed in or the
// submission failed.
func (a *App) Register(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Você já está conectado. Use 'logout' primeiro.")
		return common.ErrBusy
	}
	a.machine.GoToRegister()

	name, err := getSimpleText(a.reader, "Nome", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "E-mail", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Senha", a.out)
	if err != nil {
		return err
	}
	a.machine.SetName(name)
	a.machine.SetEmail(email)
	a.machine.SetPassword(string(password))
	common.WipeByteArray(password)

	if err := a.askPreferences(true); err != nil {
		return err
	}

	a.takeFlash()
	if err := a.machine.Submit(ctx); err != nil {
		return a.sessionFailure(err)
	}

	settled := func() bool {
		s := a.machine.State()
		return !s.Loading && (a.hasFlash() || s.Error != "")
	}
	if err := a.waitUntil(ctx, settled); err != nil {
		return err
	}
	msg := a.takeFlash()
	if msg == "" {
		s := a.machine.State()
		fmt.Fprintln(a.out, s.Error)
		return fmt.Errorf("register: %s", s.Error)
	}
	fmt.Fprintln(a.out, msg)

	if err := a.waitUntil(ctx, a.isLoggedIn); err != nil {
		return err
	}
	return a.Whoami(ctx)
}

// Login prompts for credentials, prefilled with the remembered email, and
// submits the LOGIN step.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Você já está conectado. Use 'logout' primeiro.")
		return common.ErrBusy
	}
	if a.machine.State().Step != session.StepLogin {
		a.machine.GoToLogin()
	}

	remembered, _, err := a.accounts.RememberedEmail(ctx)
	if err != nil {
		a.log.Warn(ctx, "remembered email unavailable", "error", err)
	}
	if s := a.machine.State(); s.Email != "" {
		remembered = s.Email
	}

	email, err := getTextWithDefault(a.reader, "E-mail", remembered, a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Senha", a.out)
	if err != nil {
		return err
	}
	a.machine.SetEmail(email)
	a.machine.SetPassword(string(password))
	common.WipeByteArray(password)

	if err := a.askPreferences(false); err != nil {
		return err
	}

	if err := a.machine.Submit(ctx); err != nil {
		return a.sessionFailure(err)
	}
	return a.Whoami(ctx)
}

// Recover replaces the email and password of an existing account. When
// recovery verification is on, the current password is asked as well.
func (a *App) Recover(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Você já está conectado. Use 'logout' primeiro.")
		return common.ErrBusy
	}
	a.machine.GoToRecovery()

	email, err := getTextWithDefault(a.reader, "E-mail atual", a.machine.State().Email, a.out)
	if err != nil {
		a.machine.CancelRecovery()
		return err
	}
	a.machine.SetEmail(email)

	if a.verifyRecovery {
		current, err := getPassword(a.reader, "Senha atual", a.out)
		if err != nil {
			a.machine.CancelRecovery()
			return err
		}
		a.machine.SetCurrentPassword(string(current))
		common.WipeByteArray(current)
	}

	newEmail, err := getSimpleText(a.reader, "Novo e-mail", a.out)
	if err != nil {
		a.machine.CancelRecovery()
		return err
	}
	password, err := getPassword(a.reader, "Nova senha", a.out)
	if err != nil {
		a.machine.CancelRecovery()
		return err
	}
	a.machine.SetNewEmail(newEmail)
	a.machine.SetPassword(string(password))
	common.WipeByteArray(password)

	a.takeFlash()
	if err := a.machine.Submit(ctx); err != nil {
		a.sessionFailure(err)
		a.machine.CancelRecovery()
		return err
	}
	fmt.Fprintln(a.out, a.takeFlash())

	if err := a.waitUntil(ctx, func() bool { return a.machine.State().Step == session.StepLogin }); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Use 'login' com %s.\n", a.machine.State().Email)
	return nil
}

// Guest enters the app with the guest pseudo-account.
func (a *App) Guest(ctx context.Context) error {
	if a.isLoggedIn() {
		fmt.Fprintln(a.out, "Você já está conectado. Use 'logout' primeiro.")
		return common.ErrBusy
	}
	if err := a.machine.Guest(ctx); err != nil {
		return a.sessionFailure(err)
	}
	if err := a.waitUntil(ctx, a.isLoggedIn); err != nil {
		return err
	}
	return a.Whoami(ctx)
}

func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Nenhuma sessão ativa.")
		return common.ErrUnauthorized
	}
	a.signOut()
	a.machine.GoToLogin()
	a.log.Info(ctx, "signed out")
	fmt.Fprintln(a.out, "Sessão encerrada.")
	return nil
}

func (a *App) Whoami(ctx context.Context) error {
	acc, err := a.account(ctx)
	if err != nil {
		return a.reportFailure(err)
	}
	if acc.IsGuest() {
		fmt.Fprintf(a.out, "Olá, %s! Você está no modo visitante.\n", acc.Name)
		return nil
	}
	fmt.Fprintf(a.out, "Olá, %s! (%s)\n", acc.Name, acc.Email)
	return nil
}

func (a *App) ToggleRemember(context.Context) error {
	a.machine.ToggleRemember()
	fmt.Fprintf(a.out, "Lembrar este dispositivo: %s\n", onOff(a.machine.State().Remember))
	return nil
}

func (a *App) ToggleReport(context.Context) error {
	a.machine.ToggleEmailReport()
	fmt.Fprintf(a.out, "Guia inicial por e-mail: %s\n", onOff(a.machine.State().EmailReport))
	return nil
}

// askPreferences lets the user confirm remember-this-device and, when
// registering, the e-mail report. The machine is toggled only when the answer
// differs from its current value.
func (a *App) askPreferences(withReport bool) error {
	remember, err := confirm(a.reader, "Lembrar este dispositivo?", a.out)
	if err != nil {
		return err
	}
	if remember != a.machine.State().Remember {
		a.machine.ToggleRemember()
	}
	if !withReport {
		return nil
	}

	report, err := confirm(a.reader, "Receber o guia inicial por e-mail?", a.out)
	if err != nil {
		return err
	}
	if report != a.machine.State().EmailReport {
		a.machine.ToggleEmailReport()
	}
	return nil
}

// sessionFailure prints the message the session machine put in its error
// slot for err and returns err.
func (a *App) sessionFailure(err error) error {
	if errors.Is(err, common.ErrBusy) || errors.Is(err, session.ErrClosed) {
		return a.reportFailure(err)
	}
	if msg := a.machine.State().Error; msg != "" {
		fmt.Fprintln(a.out, msg)
		return err
	}
	return a.reportFailure(err)
}

// reportFailure prints a message for a host-level err and returns err.
func (a *App) reportFailure(err error) error {
	switch {
	case errors.Is(err, common.ErrBusy):
		fmt.Fprintln(a.out, "Aguarde, ainda processando.")
	case errors.Is(err, common.ErrTokenExpired):
		fmt.Fprintln(a.out, "Sua sessão expirou. Faça login novamente.")
	case errors.Is(err, common.ErrUnauthorized):
		fmt.Fprintln(a.out, "Faça login para continuar.")
	case errors.Is(err, common.ErrGuestAccount):
		fmt.Fprintln(a.out, "Crie uma conta para salvar seus dados. Visitantes não têm registro.")
	case errors.Is(err, common.ErrValidation):
		fmt.Fprintln(a.out, "Valor inválido:", err)
	case errors.Is(err, session.ErrClosed):
		fmt.Fprintln(a.out, "Sessão encerrada.")
	default:
		fmt.Fprintln(a.out, "Erro:", err)
	}
	return err
}

func onOff(v bool) string {
	if v {
		return "sim"
	}
	return "não"
}
