package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Backend names a storage implementation for the collection or the timers.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Backends
	Store  string // "redis" | "memory"
	Timers string // "redis" | "memory"

	// Detection & reminders
	RulesFile         string        // optional YAML layered over built-in rules
	DefaultUser       string        // owner of commitments created through the API
	ReminderLead      time.Duration // reminder fires this long before renewal
	SweepInterval     time.Duration // safety-net sweep period
	AlarmPollInterval time.Duration // redis timers poll period
	ClickDebounce     time.Duration // activation debounce for detection sessions
	GCInterval        time.Duration // how often terminal commitments are pruned
	GCRetention       time.Duration // terminal commitments are kept this long past renewal

	// Notifications
	WebhookURL     string        // empty => log notifier
	WebhookTimeout time.Duration // per-delivery timeout

	MetricsEnabled bool

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // dial timeout
	RedisRT               time.Duration // read timeout
	RedisWT               time.Duration // write timeout
	RedisMaxWait          time.Duration // max wait between retries
	RedisPingTimeout      time.Duration // timeout for each ping attempt
	RedisPoolSize         int
	RedisConnectTimeout   time.Duration // total time to retry connecting
	RedisRetryInterval    time.Duration // initial wait between retries, grows exponentially
	RedisWarnThreshold    int           // warn after this many attempts

	// Access
	AllowedCIDRS []string // optional, restrict access to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers
	RateBurst    int      // per-IP burst on /api
	RatePerMin   int      // per-IP refill on /api
}

// UsesRedis reports whether any backend needs a Redis connection.
func (c *Config) UsesRedis() bool {
	return c.Store == BackendRedis || c.Timers == BackendRedis
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("SUBGUARD_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("SUBGUARD_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("SUBGUARD_LOG_LEVEL", "info"),
		PrettyLog: mustBool("SUBGUARD_PRETTY_LOG", true),

		// Backends
		Store:  mustBackend("SUBGUARD_STORE"),
		Timers: mustBackend("SUBGUARD_TIMERS"),

		// Detection & reminders
		RulesFile:         getenv("SUBGUARD_RULES_FILE", ""),
		DefaultUser:       getenv("SUBGUARD_DEFAULT_USER", "default"),
		ReminderLead:      mustDuration("SUBGUARD_REMINDER_LEAD", 24*time.Hour),
		SweepInterval:     mustDuration("SUBGUARD_SWEEP_INTERVAL", time.Hour),
		AlarmPollInterval: mustDuration("SUBGUARD_ALARM_POLL_INTERVAL", 5*time.Second),
		ClickDebounce:     mustDuration("SUBGUARD_CLICK_DEBOUNCE", 300*time.Millisecond),
		GCInterval:        mustDuration("SUBGUARD_GC_INTERVAL", 24*time.Hour),
		GCRetention:       mustDuration("SUBGUARD_GC_RETENTION", 90*24*time.Hour),

		// Notifications
		WebhookURL:     getenv("SUBGUARD_WEBHOOK_URL", ""),
		WebhookTimeout: mustDuration("SUBGUARD_WEBHOOK_TIMEOUT", 5*time.Second),

		MetricsEnabled: mustBool("SUBGUARD_METRICS_ENABLED", true),

		// Redis settings
		RedisUser:             getenv("SUBGUARD_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("SUBGUARD_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("SUBGUARD_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("SUBGUARD_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedCIDRS: splitAndTrim(getenv("SUBGUARD_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("SUBGUARD_TRUST_PROXY", false),
		RateBurst:    getenvInt("SUBGUARD_RATE_BURST", 30),
		RatePerMin:   getenvInt("SUBGUARD_RATE_PER_MIN", 120),
	}

	if cfg.UsesRedis() {
		cfg.RedisAddr = requireEnv("SUBGUARD_REDIS_ADDR")
		if cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
			panic("❌ FATAL: SUBGUARD_REDIS_PASSWORD is required when SUBGUARD_REDIS_PASSWORD_REQUIRED=true")
		}
	}

	if cfg.ReminderLead <= 0 {
		panic(fmt.Sprintf("❌ FATAL: SUBGUARD_REMINDER_LEAD must be > 0, got %s", cfg.ReminderLead))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		if cfg.WebhookURL != "" {
			cfgCopy.WebhookURL = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func mustBackend(key string) string {
	v := strings.ToLower(getenv(key, BackendRedis))
	switch v {
	case BackendRedis, BackendMemory:
		return v
	default:
		panic(fmt.Sprintf("❌ FATAL: %s must be %q or %q, got %q", key, BackendRedis, BackendMemory, v))
	}
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
