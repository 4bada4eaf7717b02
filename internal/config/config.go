// Package config handles configuration for the PatrimônioPro terminal app:
// defaults, an optional JSON file, environment (including .env) and flags.
package config

import (
	"time"

	"github.com/dmitrijs2005/patrimonio/internal/flagx"
)

// Config holds runtime settings.
//
// Fields:
//   - DataDir: directory of the local SQLite file; empty means the user config dir.
//   - StoreDriver / StoreDSN: key-value backend (sqlite, postgres, redis, memory).
//   - RedisAddr / RedisPassword / RedisDB / RedisPrefix: redis backend settings.
//   - Model / APIKey: generative model and its credential.
//   - AdvisoryTimeout / AdvisoryInterval: per-call bound and minimum spacing.
//   - SimulateLatency and the *Delay fields: pacing of the session flow.
//   - VerifyRecovery: require the current password during recovery.
//   - JWTSecret / SessionTTL: session token signing key and lifetime.
//   - S3*: object storage for account exports.
//   - LogFormat / LogLevel: see logging.New.
type Config struct {
	DataDir string

	StoreDriver   string
	StoreDSN      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	Model            string
	APIKey           string
	AdvisoryTimeout  time.Duration
	AdvisoryInterval time.Duration

	SimulateLatency bool
	RegisterDelay   time.Duration
	HandoffDelay    time.Duration
	RecoveryDelay   time.Duration
	GuestDelay      time.Duration
	VerifyRecovery  bool

	JWTSecret  string
	SessionTTL time.Duration

	S3Bucket    string
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string

	LogFormat string
	LogLevel  string
}

// LoadDefaults populates c with defaults suitable for a local run.
func (c *Config) LoadDefaults() {
	c.StoreDriver = "sqlite"
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "patrimonio:"

	c.Model = "gemini-3-flash-preview"
	c.AdvisoryTimeout = 30 * time.Second
	c.AdvisoryInterval = time.Second

	c.SimulateLatency = true
	c.RegisterDelay = 1200 * time.Millisecond
	c.HandoffDelay = 1500 * time.Millisecond
	c.RecoveryDelay = 2000 * time.Millisecond
	c.GuestDelay = 800 * time.Millisecond
	c.VerifyRecovery = true

	c.SessionTTL = 30 * time.Minute

	c.S3Region = "us-east-1"

	c.LogFormat = "text"
	c.LogLevel = "warn"
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config (or $PATRIMONIO_CONFIG), then the environment, then flags.
// Later sources take precedence.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, flagx.ConfigPath()); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
