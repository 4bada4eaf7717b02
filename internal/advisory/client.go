// Package advisory produces the pt-BR coaching texts of PatrimônioPro from a
// generative model. Calls never fail: every error is logged, counted and
// replaced by a call-specific fallback sentence.
package advisory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/logging"
	"github.com/dmitrijs2005/patrimonio/internal/models"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Call site names used in logs and metrics.
const (
	CallDiscovery   = "discovery"
	CallOpportunity = "opportunity"
	CallChallenge   = "challenge"
)

var errNoGenerator = errors.New("no generator configured (missing API key?)")

type Config struct {
	Model string
	// Timeout bounds one call, including the wait for the rate limiter.
	Timeout time.Duration
	// MinInterval spaces consecutive calls. Zero disables pacing.
	MinInterval time.Duration
}

type Client struct {
	gen     Generator
	cfg     Config
	limiter *rate.Limiter
	log     logging.Logger
	metrics *Metrics
}

// NewClient builds a client. gen may be nil, in which case every call
// returns its failure fallback.
func NewClient(gen Generator, cfg Config, log logging.Logger, metrics *Metrics) *Client {
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if log == nil {
		log = logging.Nop()
	}
	limit := rate.Inf
	if cfg.MinInterval > 0 {
		limit = rate.Every(cfg.MinInterval)
	}
	return &Client{
		gen:     gen,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		log:     log.With("component", "advisory"),
		metrics: metrics,
	}
}

func float32Ptr(v float32) *float32 { return &v }

// DiscoveryMessage celebrates the user's first financial snapshot.
func (c *Client) DiscoveryMessage(ctx context.Context, stats models.UserStats) string {
	return c.generate(ctx, CallDiscovery, Request{
		Prompt:      discoveryPrompt(stats),
		Temperature: 0.8,
		TopP:        float32Ptr(0.95),
	}, discoveryFallback)
}

// OpportunityAdvice suggests an allocation in at most about 150 characters.
func (c *Client) OpportunityAdvice(ctx context.Context, stats models.UserStats) string {
	return c.generate(ctx, CallOpportunity, Request{
		Prompt:      opportunityPrompt(stats),
		Temperature: 0.7,
		TopP:        float32Ptr(0.9),
	}, opportunityFallback)
}

// ChallengeFeedback explains an investment choice made with a bonus amount.
func (c *Client) ChallengeFeedback(ctx context.Context, choice string, amount float64) string {
	return c.generate(ctx, CallChallenge, Request{
		Prompt:      challengePrompt(choice, amount),
		Temperature: 0.7,
	}, challengeFallback)
}

// Briefing runs the discovery and opportunity calls concurrently.
func (c *Client) Briefing(ctx context.Context, stats models.UserStats) (discovery, opportunity string) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		discovery = c.DiscoveryMessage(gctx, stats)
		return nil
	})
	g.Go(func() error {
		opportunity = c.OpportunityAdvice(gctx, stats)
		return nil
	})
	_ = g.Wait()
	return discovery, opportunity
}

func (c *Client) generate(ctx context.Context, call string, req Request, fb fallback) string {
	start := time.Now()
	req.Model = c.cfg.Model

	text, err := c.call(ctx, req)
	switch {
	case err != nil:
		c.log.Warn(ctx, "advisory call failed", "call", call, "model", req.Model,
			"error", fmt.Errorf("%w: %w", common.ErrAdvisoryService, err))
		c.metrics.observe(call, outcomeFailure, time.Since(start))
		return fb.Failure
	case text == "":
		c.log.Warn(ctx, "advisory call returned no text", "call", call, "model", req.Model)
		c.metrics.observe(call, outcomeEmpty, time.Since(start))
		return fb.Empty
	}

	c.log.Debug(ctx, "advisory call ok", "call", call, "chars", len(text))
	c.metrics.observe(call, outcomeOK, time.Since(start))
	return text
}

func (c *Client) call(ctx context.Context, req Request) (string, error) {
	if c.gen == nil {
		return "", errNoGenerator
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limiter: %w", err)
	}

	text, err := c.gen.Generate(ctx, req)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
