// Package config loads the server configuration from an optional TOML file
// and LESSONS_* environment overrides.
package config

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"golang.org/x/crypto/hkdf"
)

// DefaultPath is used when neither -config nor LESSONS_CONFIG is given.
const DefaultPath = "lessons.toml"

// Key-value backends.
const (
	BackendSQLite = "sqlite"
	BackendBolt   = "bolt"
	BackendMemory = "memory"
)

// csrfKeyInfo binds derived keys to their purpose.
const csrfKeyInfo = "lessons csrf key v1"

// ErrSecretRequired is returned when production runs without a secret.
var ErrSecretRequired = errors.New("secret is required in production")

// Config is the resolved server configuration.
type Config struct {
	Addr string
	Env  string

	DBPath    string
	KVBackend string
	BoltPath  string

	PokeAPIBaseURL string
	PokeAPITimeout time.Duration

	ServerResourcePath  string
	ServerResourceDelay time.Duration

	Secret             string
	TrustedOrigins     []string
	RateLimitPerSecond int
	SessionTTL         time.Duration

	ResendKey    string
	ContactFrom  string
	ContactInbox string

	SlowRequest time.Duration
	SlowQuery   time.Duration
	LogLevel    slog.Level
}

// fileConfig mirrors lessons.toml. Durations are Go duration strings ("2s").
type fileConfig struct {
	Addr                string   `toml:"addr"`
	Env                 string   `toml:"env"`
	DBPath              string   `toml:"db_path"`
	KVBackend           string   `toml:"kv_backend"`
	BoltPath            string   `toml:"bolt_path"`
	PokeAPIBaseURL      string   `toml:"pokeapi_base_url"`
	PokeAPITimeout      string   `toml:"pokeapi_timeout"`
	ServerResourcePath  string   `toml:"server_resource_path"`
	ServerResourceDelay string   `toml:"server_resource_delay"`
	Secret              string   `toml:"secret"`
	TrustedOrigins      []string `toml:"trusted_origins"`
	RateLimitPerSecond  int      `toml:"rate_limit_per_second"`
	SessionTTL          string   `toml:"session_ttl"`
	ResendKey           string   `toml:"resend_key"`
	ContactFrom         string   `toml:"contact_from"`
	ContactInbox        string   `toml:"contact_inbox"`
	SlowRequestMs       int      `toml:"slow_request_ms"`
	SlowQueryMs         int      `toml:"slow_query_ms"`
	LogLevel            string   `toml:"log_level"`
}

// Default returns the development configuration.
func Default() Config {
	return Config{
		Addr:                ":8080",
		Env:                 "development",
		DBPath:              "lessons.db",
		KVBackend:           BackendSQLite,
		BoltPath:            "lessons.bolt",
		PokeAPIBaseURL:      "https://pokeapi.co",
		PokeAPITimeout:      10 * time.Second,
		ServerResourcePath:  "data/server-resource.txt",
		ServerResourceDelay: 2 * time.Second,
		TrustedOrigins:      []string{"localhost:8080", "127.0.0.1:8080"},
		RateLimitPerSecond:  10,
		SessionTTL:          30 * time.Minute,
		ContactFrom:         "Lessons <noreply@example.com>",
		SlowRequest:         200 * time.Millisecond,
		SlowQuery:           50 * time.Millisecond,
		LogLevel:            slog.LevelInfo,
	}
}

// ResolvePath picks the config file path: the flag value, then LESSONS_CONFIG, then DefaultPath.
func ResolvePath(flagValue string, getenv func(string) string) string {
	if p := strings.TrimSpace(flagValue); p != "" {
		return p
	}
	if p := strings.TrimSpace(getenv("LESSONS_CONFIG")); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads path (a missing file means defaults), applies environment
// overrides from getenv and validates the result.
// PRE: getenv is non-nil (os.Getenv in production)
// POST: returns a valid Config or the first error found
func Load(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		var raw fileConfig
		if err := toml.Unmarshal(data, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
		if err := cfg.applyFile(raw); err != nil {
			return Config{}, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return Config{}, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyFile(raw fileConfig) error {
	setString(&c.Addr, raw.Addr)
	setString(&c.Env, raw.Env)
	setString(&c.DBPath, raw.DBPath)
	setString(&c.KVBackend, raw.KVBackend)
	setString(&c.BoltPath, raw.BoltPath)
	setString(&c.PokeAPIBaseURL, raw.PokeAPIBaseURL)
	setString(&c.ServerResourcePath, raw.ServerResourcePath)
	setString(&c.Secret, raw.Secret)
	setString(&c.ResendKey, raw.ResendKey)
	setString(&c.ContactFrom, raw.ContactFrom)
	setString(&c.ContactInbox, raw.ContactInbox)
	if len(raw.TrustedOrigins) > 0 {
		c.TrustedOrigins = raw.TrustedOrigins
	}
	if raw.RateLimitPerSecond != 0 {
		c.RateLimitPerSecond = raw.RateLimitPerSecond
	}
	if raw.SlowRequestMs != 0 {
		c.SlowRequest = time.Duration(raw.SlowRequestMs) * time.Millisecond
	}
	if raw.SlowQueryMs != 0 {
		c.SlowQuery = time.Duration(raw.SlowQueryMs) * time.Millisecond
	}
	if err := setDuration(&c.PokeAPITimeout, "pokeapi_timeout", raw.PokeAPITimeout); err != nil {
		return err
	}
	if err := setDuration(&c.ServerResourceDelay, "server_resource_delay", raw.ServerResourceDelay); err != nil {
		return err
	}
	if err := setDuration(&c.SessionTTL, "session_ttl", raw.SessionTTL); err != nil {
		return err
	}
	return setLevel(&c.LogLevel, raw.LogLevel)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	env := func(key string) string { return strings.TrimSpace(getenv("LESSONS_" + key)) }

	setString(&c.Addr, env("ADDR"))
	setString(&c.Env, env("ENV"))
	setString(&c.DBPath, env("DB_PATH"))
	setString(&c.KVBackend, env("KV_BACKEND"))
	setString(&c.BoltPath, env("BOLT_PATH"))
	setString(&c.PokeAPIBaseURL, env("POKEAPI_BASE_URL"))
	setString(&c.ServerResourcePath, env("SERVER_RESOURCE_PATH"))
	setString(&c.Secret, env("SECRET"))
	setString(&c.ResendKey, env("RESEND_KEY"))
	setString(&c.ContactFrom, env("CONTACT_FROM"))
	setString(&c.ContactInbox, env("CONTACT_INBOX"))
	if v := env("TRUSTED_ORIGINS"); v != "" {
		c.TrustedOrigins = splitList(v)
	}

	ints := []struct {
		key string
		set func(int)
	}{
		{"RATE_LIMIT_PER_SECOND", func(n int) { c.RateLimitPerSecond = n }},
		{"SLOW_REQUEST_MS", func(n int) { c.SlowRequest = time.Duration(n) * time.Millisecond }},
		{"SLOW_QUERY_MS", func(n int) { c.SlowQuery = time.Duration(n) * time.Millisecond }},
	}
	for _, i := range ints {
		v := env(i.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LESSONS_%s: %w", i.key, err)
		}
		i.set(n)
	}

	if err := setDuration(&c.PokeAPITimeout, "LESSONS_POKEAPI_TIMEOUT", env("POKEAPI_TIMEOUT")); err != nil {
		return err
	}
	if err := setDuration(&c.ServerResourceDelay, "LESSONS_SERVER_RESOURCE_DELAY", env("SERVER_RESOURCE_DELAY")); err != nil {
		return err
	}
	if err := setDuration(&c.SessionTTL, "LESSONS_SESSION_TTL", env("SESSION_TTL")); err != nil {
		return err
	}
	return setLevel(&c.LogLevel, env("LOG_LEVEL"))
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	switch c.KVBackend {
	case BackendSQLite, BackendBolt, BackendMemory:
	default:
		return fmt.Errorf("kv_backend %q: must be sqlite, bolt or memory", c.KVBackend)
	}
	if c.RateLimitPerSecond <= 0 {
		return fmt.Errorf("rate_limit_per_second must be positive, got %d", c.RateLimitPerSecond)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session_ttl must be positive, got %s", c.SessionTTL)
	}
	if c.ServerResourceDelay < 0 {
		return fmt.Errorf("server_resource_delay cannot be negative, got %s", c.ServerResourceDelay)
	}
	if c.IsProduction() && c.Secret == "" {
		return ErrSecretRequired
	}
	return nil
}

// IsProduction reports whether env is "production".
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// CSRFKey derives the 32-byte CSRF key from the secret with HKDF-SHA256.
// Without a secret (development only) a random key is returned, so tokens do
// not survive a restart.
func (c Config) CSRFKey() ([]byte, error) {
	key := make([]byte, 32)
	if c.Secret == "" {
		if _, err := rand.Read(key); err != nil {
			return nil, fmt.Errorf("generate csrf key: %w", err)
		}
		return key, nil
	}
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(c.Secret), nil, []byte(csrfKeyInfo)), key); err != nil {
		return nil, fmt.Errorf("derive csrf key: %w", err)
	}
	return key, nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*dst = d
	return nil
}

func setLevel(dst *slog.Level, v string) error {
	if v == "" {
		return nil
	}
	if err := dst.UnmarshalText([]byte(v)); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
