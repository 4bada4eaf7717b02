package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/patrimonio/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so the file may say "1200ms" or give nanoseconds.
type JsonConfig struct {
	DataDir string `json:"data_dir"`

	StoreDriver   string `json:"store_driver"`
	StoreDSN      string `json:"store_dsn"`
	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisDB       int    `json:"redis_db"`
	RedisPrefix   string `json:"redis_prefix"`

	Model            string         `json:"model"`
	APIKey           string         `json:"api_key"`
	AdvisoryTimeout  timex.Duration `json:"advisory_timeout"`
	AdvisoryInterval timex.Duration `json:"advisory_interval"`

	SimulateLatency bool           `json:"simulate_latency"`
	RegisterDelay   timex.Duration `json:"register_delay"`
	HandoffDelay    timex.Duration `json:"handoff_delay"`
	RecoveryDelay   timex.Duration `json:"recovery_delay"`
	GuestDelay      timex.Duration `json:"guest_delay"`
	VerifyRecovery  bool           `json:"verify_recovery"`

	JWTSecret  string         `json:"jwt_secret"`
	SessionTTL timex.Duration `json:"session_ttl"`

	S3Bucket    string `json:"s3_bucket"`
	S3Endpoint  string `json:"s3_endpoint"`
	S3Region    string `json:"s3_region"`
	S3AccessKey string `json:"s3_access_key"`
	S3SecretKey string `json:"s3_secret_key"`

	LogFormat string `json:"log_format"`
	LogLevel  string `json:"log_level"`
}

func toJSON(c *Config) JsonConfig {
	return JsonConfig{
		DataDir:          c.DataDir,
		StoreDriver:      c.StoreDriver,
		StoreDSN:         c.StoreDSN,
		RedisAddr:        c.RedisAddr,
		RedisPassword:    c.RedisPassword,
		RedisDB:          c.RedisDB,
		RedisPrefix:      c.RedisPrefix,
		Model:            c.Model,
		APIKey:           c.APIKey,
		AdvisoryTimeout:  timex.Duration{Duration: c.AdvisoryTimeout},
		AdvisoryInterval: timex.Duration{Duration: c.AdvisoryInterval},
		SimulateLatency:  c.SimulateLatency,
		RegisterDelay:    timex.Duration{Duration: c.RegisterDelay},
		HandoffDelay:     timex.Duration{Duration: c.HandoffDelay},
		RecoveryDelay:    timex.Duration{Duration: c.RecoveryDelay},
		GuestDelay:       timex.Duration{Duration: c.GuestDelay},
		VerifyRecovery:   c.VerifyRecovery,
		JWTSecret:        c.JWTSecret,
		SessionTTL:       timex.Duration{Duration: c.SessionTTL},
		S3Bucket:         c.S3Bucket,
		S3Endpoint:       c.S3Endpoint,
		S3Region:         c.S3Region,
		S3AccessKey:      c.S3AccessKey,
		S3SecretKey:      c.S3SecretKey,
		LogFormat:        c.LogFormat,
		LogLevel:         c.LogLevel,
	}
}

func (jc JsonConfig) apply(c *Config) {
	c.DataDir = jc.DataDir
	c.StoreDriver = jc.StoreDriver
	c.StoreDSN = jc.StoreDSN
	c.RedisAddr = jc.RedisAddr
	c.RedisPassword = jc.RedisPassword
	c.RedisDB = jc.RedisDB
	c.RedisPrefix = jc.RedisPrefix
	c.Model = jc.Model
	c.APIKey = jc.APIKey
	c.AdvisoryTimeout = jc.AdvisoryTimeout.Duration
	c.AdvisoryInterval = jc.AdvisoryInterval.Duration
	c.SimulateLatency = jc.SimulateLatency
	c.RegisterDelay = jc.RegisterDelay.Duration
	c.HandoffDelay = jc.HandoffDelay.Duration
	c.RecoveryDelay = jc.RecoveryDelay.Duration
	c.GuestDelay = jc.GuestDelay.Duration
	c.VerifyRecovery = jc.VerifyRecovery
	c.JWTSecret = jc.JWTSecret
	c.SessionTTL = jc.SessionTTL.Duration
	c.S3Bucket = jc.S3Bucket
	c.S3Endpoint = jc.S3Endpoint
	c.S3Region = jc.S3Region
	c.S3AccessKey = jc.S3AccessKey
	c.S3SecretKey = jc.S3SecretKey
	c.LogFormat = jc.LogFormat
	c.LogLevel = jc.LogLevel
}

// parseJSON overlays cfg with the keys present in the JSON file at path.
// Keys missing from the file keep their current values. An empty path is a
// no-op.
func parseJSON(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	jc := toJSON(cfg)
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	jc.apply(cfg)
	return nil
}
