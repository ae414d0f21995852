package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Environment string
	HTTPAddr    string
	DataDir     string
	BlocksDir   string
	BlocksDB    string

	SessionCapacity  int
	SessionTurnLimit int
	SessionTTLSec    int
	BlockHistorySize int

	DecisionCacheSize   int
	DecisionCacheTTLSec int
	CacheKeyPrefixLen   int

	// Payment escalation thresholds. These are business rules that move
	// independently of the engine, so they stay configurable.
	DirectEscalationDays  int
	TypeBEscalationMonths float64
	TypeAReviewGateDays   int

	SweepCron string

	IMAPHost          string
	IMAPPort          int
	IMAPUsername      string
	IMAPPassword      string
	IMAPMailbox       string
	IMAPPollSeconds   int
	IMAPTLSSkipVerify bool
}

func FromEnv() Config {
	dataDir := stringOrDefault("SUPPORT_ROUTER_DATA_DIR", "/data")

	return Config{
		Environment: stringOrDefault("SUPPORT_ROUTER_ENV", "development"),
		HTTPAddr:    stringOrDefault("SUPPORT_ROUTER_HTTP_ADDR", ":8080"),
		DataDir:     dataDir,
		BlocksDir:   stringOrDefault("SUPPORT_ROUTER_BLOCKS_DIR", filepath.Join(dataDir, "blocks")),
		BlocksDB:    stringOrDefault("SUPPORT_ROUTER_BLOCKS_DB", filepath.Join(dataDir, "support-router", "blocks.sqlite")),

		SessionCapacity:  intOrDefault("SUPPORT_ROUTER_SESSION_CAPACITY", 1000),
		SessionTurnLimit: intOrDefault("SUPPORT_ROUTER_SESSION_TURN_LIMIT", 10),
		SessionTTLSec:    intOrDefault("SUPPORT_ROUTER_SESSION_TTL_SECONDS", 3600),
		BlockHistorySize: intOrDefault("SUPPORT_ROUTER_BLOCK_HISTORY_SIZE", 5),

		DecisionCacheSize:   intOrDefault("SUPPORT_ROUTER_DECISION_CACHE_SIZE", 256),
		DecisionCacheTTLSec: intOrDefault("SUPPORT_ROUTER_DECISION_CACHE_TTL_SECONDS", 300),
		CacheKeyPrefixLen:   intOrDefault("SUPPORT_ROUTER_CACHE_KEY_PREFIX_LEN", 120),

		DirectEscalationDays:  intOrDefault("SUPPORT_ROUTER_DIRECT_ESCALATION_DAYS", 7),
		TypeBEscalationMonths: floatOrDefault("SUPPORT_ROUTER_OPCO_ESCALATION_MONTHS", 2),
		TypeAReviewGateDays:   intOrDefault("SUPPORT_ROUTER_CPF_REVIEW_GATE_DAYS", 45),

		SweepCron: stringOrDefault("SUPPORT_ROUTER_SWEEP_CRON", "*/5 * * * *"),

		IMAPHost:          strings.TrimSpace(os.Getenv("SUPPORT_ROUTER_IMAP_HOST")),
		IMAPPort:          intOrDefault("SUPPORT_ROUTER_IMAP_PORT", 993),
		IMAPUsername:      strings.TrimSpace(os.Getenv("SUPPORT_ROUTER_IMAP_USERNAME")),
		IMAPPassword:      os.Getenv("SUPPORT_ROUTER_IMAP_PASSWORD"),
		IMAPMailbox:       stringOrDefault("SUPPORT_ROUTER_IMAP_MAILBOX", "INBOX"),
		IMAPPollSeconds:   intOrDefault("SUPPORT_ROUTER_IMAP_POLL_SECONDS", 60),
		IMAPTLSSkipVerify: boolOrDefault("SUPPORT_ROUTER_IMAP_TLS_SKIP_VERIFY", false),
	}
}

func stringOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func intOrDefault(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func floatOrDefault(key string, fallback float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func boolOrDefault(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return fallback
	}
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}
