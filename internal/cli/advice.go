package cli

import (
	"context"
	"fmt"
)

func (a *App) Discover(ctx context.Context) error {
	acc, err := a.account(ctx)
	if err != nil {
		return a.reportFailure(err)
	}
	fmt.Fprintln(a.out, a.advisor.DiscoveryMessage(ctx, acc.Stats))
	return nil
}

func (a *App) Advise(ctx context.Context) error {
	acc, err := a.account(ctx)
	if err != nil {
		return a.reportFailure(err)
	}
	fmt.Fprintln(a.out, a.advisor.OpportunityAdvice(ctx, acc.Stats))
	return nil
}

// Briefing prints the discovery message followed by the opportunity advice,
// both requested at once.
func (a *App) Briefing(ctx context.Context) error {
	acc, err := a.account(ctx)
	if err != nil {
		return a.reportFailure(err)
	}
	discovery, opportunity := a.advisor.Briefing(ctx, acc.Stats)
	fmt.Fprintln(a.out, discovery)
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, opportunity)
	return nil
}
