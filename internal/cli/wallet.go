package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/patrimonio/internal/advisory"
	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/models"
	"github.com/shopspring/decimal"
)

// parseAmount accepts "1500", "1500.50" and the pt-BR forms "1500,50" and
// "1.500,50". Negative amounts are rejected.
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "R$"))
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: amount %q", common.ErrValidation, s)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: negative amount", common.ErrValidation)
	}
	return d.InexactFloat64(), nil
}

// persisted returns the signed-in account, rejecting the guest.
func (a *App) persisted(ctx context.Context) (*models.Account, error) {
	acc, err := a.account(ctx)
	if err != nil {
		return nil, err
	}
	if acc.IsGuest() {
		return nil, common.ErrGuestAccount
	}
	return acc, nil
}

// Set updates one balance bucket, args being <bucket> <amount>.
func (a *App) Set(ctx context.Context, args []string) error {
	acc, err := a.persisted(ctx)
	if err != nil {
		return a.reportFailure(err)
	}

	amount, err := parseAmount(args[1])
	if err != nil {
		return a.reportFailure(err)
	}
	if err := acc.Stats.SetBucket(strings.ToLower(args[0]), amount); err != nil {
		return a.reportFailure(err)
	}
	if err := a.accounts.Save(ctx, acc); err != nil {
		a.log.Error(ctx, "account not saved", "email", acc.Email, "error", err)
		return a.reportFailure(err)
	}

	fmt.Fprintf(a.out, "%s = R$ %s\n", strings.ToLower(args[0]), advisory.FormatBRL(amount))
	return nil
}

// Stats prints the balances, their aggregates and the progress counters.
func (a *App) Stats(ctx context.Context) error {
	acc, err := a.account(ctx)
	if err != nil {
		return a.reportFailure(err)
	}
	st := acc.Stats

	rows := []struct {
		label string
		value float64
	}{
		{"Banco 1", st.AccessibleMoney.Bank1},
		{"Banco 2", st.AccessibleMoney.Bank2},
		{"Dinheiro físico", st.AccessibleMoney.Physical},
		{"Poupança", st.Investments.Savings},
		{"Tesouro Direto", st.Investments.Tesouro},
		{"Ações", st.Investments.Stocks},
		{"Outros", st.Investments.Others},
	}
	for _, r := range rows {
		fmt.Fprintf(a.out, "  %-16s R$ %s\n", r.label, advisory.FormatBRL(r.value))
	}
	fmt.Fprintf(a.out, "Disponível: R$ %s | Investido: R$ %s | Patrimônio: R$ %s\n",
		advisory.FormatBRL(st.Liquid()), advisory.FormatBRL(st.Invested()), advisory.FormatBRL(st.Total()))
	fmt.Fprintf(a.out, "Confiança: %s | Sequência: %d | Desafios: %d\n",
		advisory.FormatBRL(st.ConfidenceScore.Total), st.Streak, len(st.TrainingHistory))
	return nil
}

// Challenge asks for feedback on an investment choice, args being
// <amount> <choice...>, and records it in the training history.
func (a *App) Challenge(ctx context.Context, args []string) error {
	acc, err := a.persisted(ctx)
	if err != nil {
		return a.reportFailure(err)
	}

	amount, err := parseAmount(args[0])
	if err != nil {
		return a.reportFailure(err)
	}
	choice := strings.Join(args[1:], " ")

	feedback := a.advisor.ChallengeFeedback(ctx, choice, amount)
	acc.Stats.AddTraining(choice, amount, feedback)
	if err := a.accounts.Save(ctx, acc); err != nil {
		a.log.Error(ctx, "account not saved", "email", acc.Email, "error", err)
		return a.reportFailure(err)
	}

	fmt.Fprintln(a.out, feedback)
	fmt.Fprintf(a.out, "Sequência: %d\n", acc.Stats.Streak)
	return nil
}

// Export uploads a snapshot of the signed-in account.
func (a *App) Export(ctx context.Context) error {
	if a.exporter == nil {
		fmt.Fprintln(a.out, "Exportação não configurada.")
		return common.ErrValidation
	}
	acc, err := a.persisted(ctx)
	if err != nil {
		return a.reportFailure(err)
	}

	key, err := a.exporter.Export(ctx, acc)
	if err != nil {
		a.log.Error(ctx, "export failed", "email", acc.Email, "error", err)
		return a.reportFailure(err)
	}
	a.log.Info(ctx, "account exported", "email", acc.Email, "key", key)
	fmt.Fprintln(a.out, "Exportado:", key)
	return nil
}
