package config

import (
	"net/netip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse(env(nil))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "memory", cfg.Ledger.Backend)
	assert.Equal(t, int64(11155111), cfg.Ledger.ChainID)
	assert.Equal(t, 5*time.Second, cfg.Ledger.RosterCacheTTL)
	assert.Equal(t, "http://localhost:5000", cfg.Biometric.URL)
	assert.Equal(t, 10*time.Second, cfg.Biometric.Timeout)
	assert.Equal(t, "COM11", cfg.Biometric.ScannerPort)
	assert.InDelta(t, 0.6, cfg.Biometric.FaceMatchThreshold, 1e-9)
	assert.Equal(t, 15*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, time.Minute, cfg.Session.CleanupInterval)
	assert.Equal(t, 10, cfg.Session.BiometricAttemptsPerMinute)
	assert.Equal(t, "votegate.audit", cfg.Kafka.AuditTopic)
	assert.Equal(t, time.Hour, cfg.Admin.TokenTTL)
	assert.Equal(t, 5, cfg.Admin.MaxLoginAttempts)
	assert.Equal(t, 15*time.Minute, cfg.Admin.LoginLockout)
	assert.False(t, cfg.AdminEnabled())
}

func TestParseOverrides(t *testing.T) {
	cfg, err := Parse(env(map[string]string{
		"VOTEGATE_ADDR":             ":9090",
		"LEDGER_BACKEND":            "Ethereum",
		"ETH_RPC_URL":               "https://rpc.example",
		"ETH_CHAIN_ID":              "31337",
		"ELECTION_CONTRACT_ADDRESS": "0x5FbDB2315678afecb367f032d93F642f64180aa3",
		"ETH_PRIVATE_KEY":           "ac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80",
		"BIOMETRIC_URL":             "http://bio:5000/",
		"FACE_MATCH_THRESHOLD":      "0.45",
		"SESSION_IDLE_TTL":          "5m",
		"ADMIN_PASSWORD_HASH":       "$2a$10$hash",
		"ADMIN_JWT_SECRET":          "secret",
		"ADMIN_LOGIN_LOCKOUT":       "1h",
		"KAFKA_BROKERS":             "k1:9092,k2:9092",
		"TRUSTED_PROXIES":           "10.0.0.0/8, 192.168.1.7",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, "ethereum", cfg.Ledger.Backend)
	assert.Equal(t, int64(31337), cfg.Ledger.ChainID)
	assert.Equal(t, "http://bio:5000", cfg.Biometric.URL)
	assert.InDelta(t, 0.45, cfg.Biometric.FaceMatchThreshold, 1e-9)
	assert.Equal(t, 5*time.Minute, cfg.Session.IdleTTL)
	assert.Equal(t, "k1:9092,k2:9092", cfg.Kafka.Brokers)
	assert.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.7/32"),
	}, cfg.Server.TrustedProxies)
	assert.Equal(t, time.Hour, cfg.Admin.LoginLockout)
	assert.True(t, cfg.AdminEnabled())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad duration", map[string]string{"SESSION_IDLE_TTL": "soon"}, "SESSION_IDLE_TTL"},
		{"negative duration", map[string]string{"ROSTER_CACHE_TTL": "-1s"}, "ROSTER_CACHE_TTL"},
		{"bad integer", map[string]string{"ETH_CHAIN_ID": "sepolia"}, "ETH_CHAIN_ID"},
		{"bad float", map[string]string{"FACE_MATCH_THRESHOLD": "high"}, "FACE_MATCH_THRESHOLD"},
		{"threshold out of range", map[string]string{"FACE_MATCH_THRESHOLD": "1.5"}, "FACE_MATCH_THRESHOLD"},
		{"unknown backend", map[string]string{"LEDGER_BACKEND": "postgres"}, "LEDGER_BACKEND"},
		{"ethereum without rpc", map[string]string{"LEDGER_BACKEND": "ethereum"}, "ETH_RPC_URL"},
		{"zero attempts", map[string]string{"BIOMETRIC_ATTEMPTS_PER_MINUTE": "0"}, "BIOMETRIC_ATTEMPTS_PER_MINUTE"},
		{"bad proxy", map[string]string{"TRUSTED_PROXIES": "10.0.0.0/8,gateway"}, "TRUSTED_PROXIES"},
		{"zero login attempts", map[string]string{"ADMIN_LOGIN_MAX_ATTEMPTS": "0"}, "ADMIN_LOGIN_MAX_ATTEMPTS"},
		{"half admin config", map[string]string{"ADMIN_JWT_SECRET": "secret"}, "ADMIN_PASSWORD_HASH"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(env(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFromEnvLoadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("VOTEGATE_ADDR=:7070\nFINGERPRINT_SCANNER_PORT=COM3\n"), 0o600))
	t.Chdir(dir)
	t.Setenv("FINGERPRINT_SCANNER_PORT", "COM5")
	t.Cleanup(func() { _ = os.Unsetenv("VOTEGATE_ADDR") })

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
	assert.Equal(t, "COM5", cfg.Biometric.ScannerPort, "process env wins over .env")
}
