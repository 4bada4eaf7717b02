package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/dmitrijs2005/patrimonio/internal/accounts"
	"github.com/dmitrijs2005/patrimonio/internal/advisory"
	"github.com/dmitrijs2005/patrimonio/internal/backup"
	"github.com/dmitrijs2005/patrimonio/internal/common"
	"github.com/dmitrijs2005/patrimonio/internal/config"
	"github.com/dmitrijs2005/patrimonio/internal/filex"
	"github.com/dmitrijs2005/patrimonio/internal/logging"
	"github.com/dmitrijs2005/patrimonio/internal/repositories/kv"
	"github.com/dmitrijs2005/patrimonio/internal/session"
	"github.com/prometheus/client_golang/prometheus"
)

// DBFileName is the SQLite file created in the data directory when no DSN
// is configured.
const DBFileName = "patrimonio.db"

// openBackend is a test seam for kv.Open.
var openBackend = kv.Open

// NewAppFromConfig wires the account backend, the advisory client and the
// exporter described by cfg. The returned cleanup logs the advisory counters
// and closes the backend; call it after Run.
func NewAppFromConfig(ctx context.Context, cfg *config.Config, logger logging.Logger, in io.Reader, out io.Writer) (*App, func(), error) {
	if logger == nil {
		logger = logging.Nop()
	}

	storeOpts, err := storeOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	backend, err := openBackend(ctx, storeOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("store init error: %w", err)
	}
	logger.Info(ctx, "account store ready", "driver", storeOpts.Driver)

	var gen advisory.Generator
	if cfg.APIKey != "" {
		g, err := advisory.NewGenAIGenerator(ctx, cfg.APIKey, advisory.GenAIOptions{})
		if err != nil {
			_ = backend.Close()
			return nil, nil, err
		}
		gen = g
	} else {
		logger.Warn(ctx, "no API key configured, advisory texts will use fallbacks")
	}

	reg := prometheus.NewRegistry()
	advisor := advisory.NewClient(gen, advisory.Config{
		Model:       cfg.Model,
		Timeout:     cfg.AdvisoryTimeout,
		MinInterval: cfg.AdvisoryInterval,
	}, logger, advisory.NewMetrics(reg))

	var exporter Exporter
	if cfg.S3Bucket != "" {
		exporter = backup.NewExporter(backup.Config{
			Bucket:    cfg.S3Bucket,
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		}, nil)
	}

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		s, err := common.MakeRandHexString(32)
		if err != nil {
			_ = backend.Close()
			return nil, nil, fmt.Errorf("session secret: %w", err)
		}
		secret = []byte(s)
	}

	var latency session.Latency
	if cfg.SimulateLatency {
		latency = session.Latency{
			Register:       cfg.RegisterDelay,
			Handoff:        cfg.HandoffDelay,
			RecoveryReturn: cfg.RecoveryDelay,
			Guest:          cfg.GuestDelay,
		}
	}

	app, err := NewApp(ctx, Options{
		Accounts:       accounts.NewStore(backend),
		Advisor:        advisor,
		Exporter:       exporter,
		Logger:         logger,
		Latency:        latency,
		VerifyRecovery: cfg.VerifyRecovery,
		Secret:         secret,
		TokenTTL:       cfg.SessionTTL,
		In:             in,
		Out:            out,
	})
	if err != nil {
		_ = backend.Close()
		return nil, nil, err
	}

	cleanup := func() {
		logCounters(ctx, logger, reg)
		if err := backend.Close(); err != nil {
			logger.Error(ctx, "store close error", "error", err)
		}
	}
	return app, cleanup, nil
}

// storeOptions maps cfg to backend options. SQLite without a DSN lives in
// the data directory.
func storeOptions(cfg *config.Config) (kv.Options, error) {
	opts := kv.Options{
		Driver:        cfg.StoreDriver,
		DSN:           cfg.StoreDSN,
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		RedisPrefix:   cfg.RedisPrefix,
	}
	if opts.Driver == "" {
		opts.Driver = kv.DriverSQLite
	}
	if opts.Driver == kv.DriverSQLite && opts.DSN == "" {
		dir, err := filex.EnsureDataDir(cfg.DataDir)
		if err != nil {
			return kv.Options{}, fmt.Errorf("data dir: %w", err)
		}
		opts.DSN = filepath.Join(dir, DBFileName)
	}
	return opts, nil
}

// logCounters writes every counter series gathered from g at info level.
func logCounters(ctx context.Context, logger logging.Logger, g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		logger.Warn(ctx, "metrics gather failed", "error", err)
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			if m.GetCounter() == nil {
				continue
			}
			args := []any{"metric", mf.GetName(), "value", m.GetCounter().GetValue()}
			for _, lp := range m.GetLabel() {
				args = append(args, lp.GetName(), lp.GetValue())
			}
			logger.Info(ctx, "advisory usage", args...)
		}
	}
}
