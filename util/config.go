package util

import (
	"errors"
	"flag"
	"time"
)

const (
	DefaultPort         = "3000"
	DefaultDBPath       = "./db"
	DefaultTokenTTL     = time.Hour
	DefaultBcryptCost   = 10
	DefaultMaxBodyBytes = int64(1 << 20)
	DefaultLogLevel     = "info"
)

// Environment variables read by ParseConfig
const (
	BindAddressEnvVar   = "BIND_ADDRESS"
	PortEnvVar          = "PORT"
	DBPathEnvVar        = "DB_PATH"
	JWTSecretEnvVar     = "JWT_SECRET"
	TokenTTLEnvVar      = "TOKEN_TTL"
	BcryptCostEnvVar    = "BCRYPT_COST"
	MaxBodyBytesEnvVar  = "MAX_BODY_BYTES"
	SeedUsersPathEnvVar = "SEED_USERS_PATH"
	LogLevelEnvVar      = "LOG_LEVEL"
)

// ErrMissingSecret is returned when no token signing secret was configured
var ErrMissingSecret = errors.New("jwt secret is required (--jwt-secret or JWT_SECRET)")

// Config is the runtime configuration, built once at startup and passed
// explicitly to the components that need it.
type Config struct {
	BindAddress   string
	DBPath        string
	JWTSecret     string
	TokenTTL      time.Duration
	BcryptCost    int
	MaxBodyBytes  int64
	SeedUsersPath string
	LogLevel      string
}

// ParseConfig builds a Config from command-line args, using environment
// variables and then built-in defaults for anything not given as a flag.
func ParseConfig(args []string) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("flatpost", flag.ContinueOnError)

	defaultBind := ":" + LookupEnvOrString(PortEnvVar, DefaultPort)
	fs.StringVar(&cfg.BindAddress, "bind-address", LookupEnvOrString(BindAddressEnvVar, defaultBind), "Address:Port to which the app will be bound.")
	fs.StringVar(&cfg.DBPath, "db-path", LookupEnvOrString(DBPathEnvVar, DefaultDBPath), "Directory holding the JSON collections.")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", LookupEnvOrString(JWTSecretEnvVar, ""), "The key used to sign access tokens.")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", LookupEnvOrDuration(TokenTTLEnvVar, DefaultTokenTTL), "Lifetime of issued access tokens.")
	fs.IntVar(&cfg.BcryptCost, "bcrypt-cost", LookupEnvOrInt(BcryptCostEnvVar, DefaultBcryptCost), "bcrypt cost used for new password hashes.")
	fs.Int64Var(&cfg.MaxBodyBytes, "max-body-bytes", LookupEnvOrInt64(MaxBodyBytesEnvVar, DefaultMaxBodyBytes), "Maximum accepted request body size.")
	fs.StringVar(&cfg.SeedUsersPath, "seed-users", LookupEnvOrString(SeedUsersPathEnvVar, ""), "YAML file of accounts to create at startup.")
	fs.StringVar(&cfg.LogLevel, "log-level", LookupEnvOrString(LogLevelEnvVar, DefaultLogLevel), "Log level: debug, info, warn, error or off.")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.JWTSecret == "" {
		return cfg, ErrMissingSecret
	}
	if _, err := ParseLogLevel(cfg.LogLevel); err != nil {
		return cfg, err
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return cfg, nil
}
