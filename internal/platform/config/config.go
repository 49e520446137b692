// Package config reads process configuration from the environment. A .env
// file in the working directory is loaded first when present; variables
// already set in the environment win.
package config

import (
	"errors"
	"fmt"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	pstrings "votegate/pkg/platform/strings"
)

// Config is the full service configuration.
type Config struct {
	Server    Server
	Ledger    Ledger
	Biometric Biometric
	Session   Session
	Redis     RedisConfig
	Kafka     Kafka
	Admin     Admin
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr           string
	Environment    string
	MaxUploadBytes int64
	// TrustedProxies may set X-Forwarded-For. Empty means the socket peer is the client.
	TrustedProxies []netip.Prefix
}

// Ledger selects and configures the election contract backend.
type Ledger struct {
	Backend         string
	SeedFile        string
	RPCURL          string
	ChainID         int64
	ContractAddress string
	PrivateKey      string
	RosterCacheTTL  time.Duration
}

// Biometric configures the biometric REST collaborator.
type Biometric struct {
	URL                string
	Timeout            time.Duration
	BreakerFailures    int
	BreakerCooldown    time.Duration
	ScannerPort        string
	FaceMatchThreshold float64
}

// Session configures kiosk voting sessions.
type Session struct {
	IdleTTL                    time.Duration
	CleanupInterval            time.Duration
	BiometricAttemptsPerMinute int
}

// RedisConfig configures the optional roster cache backend.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka configures the optional audit stream.
type Kafka struct {
	Brokers    string
	AuditTopic string
}

// Admin configures dashboard login.
type Admin struct {
	PasswordHash string
	JWTSecret    string
	TokenTTL     time.Duration
	// MaxLoginAttempts failed logins from one client lock it out for LoginLockout.
	MaxLoginAttempts int
	LoginLockout     time.Duration
}

// Defaults.
const (
	DefaultAddr               = ":8080"
	DefaultEnvironment        = "local"
	DefaultMaxUploadBytes     = 5 << 20
	DefaultLedgerBackend      = "memory"
	DefaultChainID            = 11155111
	DefaultRosterCacheTTL     = 5 * time.Second
	DefaultBiometricURL       = "http://localhost:5000"
	DefaultBiometricTimeout   = 10 * time.Second
	DefaultBreakerFailures    = 5
	DefaultBreakerCooldown    = 30 * time.Second
	DefaultScannerPort        = "COM11"
	DefaultFaceMatchThreshold = 0.6
	DefaultSessionIdleTTL     = 15 * time.Minute
	DefaultCleanupInterval    = time.Minute
	DefaultAttemptsPerMinute  = 10
	DefaultAuditTopic         = "votegate.audit"
	DefaultAdminTokenTTL      = time.Hour
	DefaultMaxLoginAttempts   = 5
	DefaultLoginLockout       = 15 * time.Minute
)

// FromEnv loads .env if present and builds a Config from environment
// variables. Malformed values are errors; missing ones take defaults.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse(os.Getenv)
}

// Parse builds a Config from a lookup function.
func Parse(getenv func(string) string) (Config, error) {
	p := parser{getenv: getenv}
	cfg := Config{
		Server: Server{
			Addr:           p.str("VOTEGATE_ADDR", DefaultAddr),
			Environment:    p.str("ENVIRONMENT", DefaultEnvironment),
			MaxUploadBytes: int64(p.integer("MAX_UPLOAD_BYTES", DefaultMaxUploadBytes)),
			TrustedProxies: p.prefixes("TRUSTED_PROXIES"),
		},
		Ledger: Ledger{
			Backend:         strings.ToLower(p.str("LEDGER_BACKEND", DefaultLedgerBackend)),
			SeedFile:        p.str("LEDGER_SEED_FILE", ""),
			RPCURL:          p.str("ETH_RPC_URL", ""),
			ChainID:         int64(p.integer("ETH_CHAIN_ID", DefaultChainID)),
			ContractAddress: p.str("ELECTION_CONTRACT_ADDRESS", ""),
			PrivateKey:      p.str("ETH_PRIVATE_KEY", ""),
			RosterCacheTTL:  p.duration("ROSTER_CACHE_TTL", DefaultRosterCacheTTL),
		},
		Biometric: Biometric{
			URL:                strings.TrimRight(p.str("BIOMETRIC_URL", DefaultBiometricURL), "/"),
			Timeout:            p.duration("BIOMETRIC_TIMEOUT", DefaultBiometricTimeout),
			BreakerFailures:    p.integer("BIOMETRIC_BREAKER_FAILURES", DefaultBreakerFailures),
			BreakerCooldown:    p.duration("BIOMETRIC_BREAKER_COOLDOWN", DefaultBreakerCooldown),
			ScannerPort:        p.str("FINGERPRINT_SCANNER_PORT", DefaultScannerPort),
			FaceMatchThreshold: p.float("FACE_MATCH_THRESHOLD", DefaultFaceMatchThreshold),
		},
		Session: Session{
			IdleTTL:                    p.duration("SESSION_IDLE_TTL", DefaultSessionIdleTTL),
			CleanupInterval:            p.duration("SESSION_CLEANUP_INTERVAL", DefaultCleanupInterval),
			BiometricAttemptsPerMinute: p.integer("BIOMETRIC_ATTEMPTS_PER_MINUTE", DefaultAttemptsPerMinute),
		},
		Redis: RedisConfig{
			URL:          p.str("REDIS_URL", ""),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers:    p.str("KAFKA_BROKERS", ""),
			AuditTopic: p.str("AUDIT_TOPIC", DefaultAuditTopic),
		},
		Admin: Admin{
			PasswordHash: p.str("ADMIN_PASSWORD_HASH", ""),
			JWTSecret:    p.str("ADMIN_JWT_SECRET", ""),
			TokenTTL:     p.duration("ADMIN_TOKEN_TTL", DefaultAdminTokenTTL),

			MaxLoginAttempts: p.integer("ADMIN_LOGIN_MAX_ATTEMPTS", DefaultMaxLoginAttempts),
			LoginLockout:     p.duration("ADMIN_LOGIN_LOCKOUT", DefaultLoginLockout),
		},
	}
	if err := errors.Join(p.errs...); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field rules.
func (c Config) Validate() error {
	var errs []error
	switch c.Ledger.Backend {
	case "memory":
	case "ethereum":
		if c.Ledger.RPCURL == "" || c.Ledger.ContractAddress == "" || c.Ledger.PrivateKey == "" {
			errs = append(errs, errors.New("ethereum ledger requires ETH_RPC_URL, ELECTION_CONTRACT_ADDRESS and ETH_PRIVATE_KEY"))
		}
	default:
		errs = append(errs, fmt.Errorf("LEDGER_BACKEND must be memory or ethereum, got %q", c.Ledger.Backend))
	}
	if c.Biometric.FaceMatchThreshold <= 0 || c.Biometric.FaceMatchThreshold > 1 {
		errs = append(errs, fmt.Errorf("FACE_MATCH_THRESHOLD must be in (0, 1], got %v", c.Biometric.FaceMatchThreshold))
	}
	if c.Session.BiometricAttemptsPerMinute <= 0 {
		errs = append(errs, errors.New("BIOMETRIC_ATTEMPTS_PER_MINUTE must be positive"))
	}
	if c.Admin.MaxLoginAttempts <= 0 || c.Admin.LoginLockout <= 0 {
		errs = append(errs, errors.New("ADMIN_LOGIN_MAX_ATTEMPTS and ADMIN_LOGIN_LOCKOUT must be positive"))
	}
	if (c.Admin.PasswordHash == "") != (c.Admin.JWTSecret == "") {
		errs = append(errs, errors.New("ADMIN_PASSWORD_HASH and ADMIN_JWT_SECRET must be set together"))
	}
	return errors.Join(errs...)
}

// AdminEnabled reports whether the admin routes should be mounted.
func (c Config) AdminEnabled() bool {
	return c.Admin.PasswordHash != "" && c.Admin.JWTSecret != ""
}

type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) str(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) integer(key string, def int) int {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid integer %q", key, raw))
		return def
	}
	return v
}

func (p *parser) float(key string, def float64) float64 {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid number %q", key, raw))
		return def
	}
	return v
}

func (p *parser) duration(key string, def time.Duration) time.Duration {
	raw := strings.TrimSpace(p.getenv(key))
	if raw == "" {
		return def
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		p.errs = append(p.errs, fmt.Errorf("%s: invalid duration %q", key, raw))
		return def
	}
	return v
}

// list splits a comma separated value, dropping blanks and duplicates.
func (p *parser) list(key string) []string {
	return pstrings.SplitList(p.getenv(key))
}

// prefixes accepts CIDRs and bare addresses, which are taken as single hosts.
func (p *parser) prefixes(key string) []netip.Prefix {
	var out []netip.Prefix
	for _, raw := range p.list(key) {
		if prefix, err := netip.ParsePrefix(raw); err == nil {
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			p.errs = append(p.errs, fmt.Errorf("%s: invalid address or CIDR %q", key, raw))
			continue
		}
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out
}
