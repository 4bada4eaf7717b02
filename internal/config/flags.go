package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/patrimonio/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-s string    store driver: sqlite, postgres, redis, memory
//	-d string    store DSN (sqlite file path or postgres URL)
//	-r string    redis address
//	-m string    generative model
//	-k string    generative API key
//	-l string    log format: text, json, zap
//	-t int       session token lifetime in minutes
//	-b string    S3 bucket for exports
//	-e string    S3 endpoint
//	-g string    S3 region
//	-v           require the current password during recovery (-v=false disables)
//	-delay       simulate processing latency in the session flow (-delay=false disables)
//
// os.Args is filtered with flagx.FilterArgs so flags owned by other
// components do not break parsing.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:],
		[]string{"-s", "-d", "-r", "-m", "-k", "-l", "-t", "-b", "-e", "-g", "-v", "-delay"},
		"-v", "-delay")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.StoreDriver, "s", cfg.StoreDriver, "store driver (sqlite, postgres, redis, memory)")
	fs.StringVar(&cfg.StoreDSN, "d", cfg.StoreDSN, "store DSN")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")
	fs.StringVar(&cfg.Model, "m", cfg.Model, "generative model")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "generative API key")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format (text, json, zap)")
	ttl := fs.Int("t", int(cfg.SessionTTL.Minutes()), "session token lifetime (in minutes)")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket for exports")
	fs.StringVar(&cfg.S3Endpoint, "e", cfg.S3Endpoint, "S3 endpoint")
	fs.StringVar(&cfg.S3Region, "g", cfg.S3Region, "S3 region")
	fs.BoolVar(&cfg.VerifyRecovery, "v", cfg.VerifyRecovery, "require current password during recovery")
	fs.BoolVar(&cfg.SimulateLatency, "delay", cfg.SimulateLatency, "simulate processing latency")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.SessionTTL = time.Duration(*ttl) * time.Minute
		}
	})
	return nil
}
