package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ListenAddr string
	BaseURL    string

	Session struct {
		Secret      string
		TTL         time.Duration
		MaxSessions int
	}

	// UploadLimit caps the size in bytes of a loaded document.
	UploadLimit    int64
	DefaultVersion string

	LogLevel          string
	PrometheusEnabled bool
	TrustedProxies    []string

	// SecretGenerated is set when no session secret was configured.
	SecretGenerated bool
}

// fileConfig is the TOML layout of APP_CONFIG_FILE.
type fileConfig struct {
	ListenAddr        string   `toml:"listen_addr"`
	BaseURL           string   `toml:"base_url"`
	SessionSecret     string   `toml:"session_secret"`
	SessionTTL        string   `toml:"session_ttl"`
	MaxSessions       int      `toml:"max_sessions"`
	UploadLimit       int64    `toml:"upload_limit"`
	DefaultVersion    string   `toml:"default_version"`
	LogLevel          string   `toml:"log_level"`
	PrometheusEnabled bool     `toml:"prometheus_enabled"`
	TrustedProxies    []string `toml:"trusted_proxies"`
}

func defaults() *Config {
	cfg := &Config{
		ListenAddr:     ":8080",
		BaseURL:        "http://localhost:8080",
		UploadLimit:    10 << 20,
		DefaultVersion: "3.0",
		LogLevel:       "normal",
	}
	cfg.Session.TTL = 2 * time.Hour
	cfg.Session.MaxSessions = 1000
	return cfg
}

// Load builds the configuration from defaults, the optional TOML file named by
// APP_CONFIG_FILE, and APP_* environment variables, in increasing precedence.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("APP_CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.ListenAddr = getenvDefault("APP_LISTEN_ADDR", cfg.ListenAddr)
	cfg.BaseURL = getenvDefault("APP_BASE_URL", cfg.BaseURL)
	cfg.Session.Secret = getenvDefault("APP_SESSION_SECRET", cfg.Session.Secret)
	cfg.DefaultVersion = getenvDefault("APP_DEFAULT_VERSION", cfg.DefaultVersion)
	cfg.LogLevel = getenvDefault("APP_LOG_LEVEL", cfg.LogLevel)
	cfg.PrometheusEnabled = getenvBool("APP_PROMETHEUS_ENDPOINT_ENABLED", cfg.PrometheusEnabled)
	if proxies := getenvList("APP_TRUSTED_PROXIES"); proxies != nil {
		cfg.TrustedProxies = proxies
	}

	var err error
	if cfg.Session.TTL, err = getenvDuration("APP_SESSION_TTL", cfg.Session.TTL); err != nil {
		return nil, err
	}
	if cfg.Session.MaxSessions, err = getenvInt("APP_MAX_SESSIONS", cfg.Session.MaxSessions); err != nil {
		return nil, err
	}
	limit, err := getenvInt("APP_UPLOAD_LIMIT", int(cfg.UploadLimit))
	if err != nil {
		return nil, err
	}
	cfg.UploadLimit = int64(limit)

	if cfg.Session.Secret == "" {
		if cfg.Session.Secret, err = generateSecret(); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		cfg.SecretGenerated = true
	}
	if len(cfg.Session.Secret) < 32 {
		return nil, fmt.Errorf("APP_SESSION_SECRET must be at least 32 characters long (got %d)", len(cfg.Session.Secret))
	}
	if cfg.Session.TTL <= 0 {
		return nil, errors.New("APP_SESSION_TTL must be positive")
	}
	if cfg.Session.MaxSessions <= 0 {
		return nil, errors.New("APP_MAX_SESSIONS must be positive")
	}
	if cfg.UploadLimit <= 0 {
		return nil, errors.New("APP_UPLOAD_LIMIT must be positive")
	}
	switch cfg.DefaultVersion {
	case "2.1", "3.0", "4.0":
	default:
		return nil, fmt.Errorf("APP_DEFAULT_VERSION must be one of 2.1, 3.0, 4.0 (got %q)", cfg.DefaultVersion)
	}
	switch cfg.LogLevel {
	case "none", "normal", "debug":
	default:
		return nil, fmt.Errorf("APP_LOG_LEVEL must be one of none, normal, debug (got %q)", cfg.LogLevel)
	}

	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("load config file: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("base_url") {
		cfg.BaseURL = strings.TrimSpace(raw.BaseURL)
	}
	if meta.IsDefined("session_secret") {
		cfg.Session.Secret = raw.SessionSecret
	}
	if meta.IsDefined("session_ttl") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.SessionTTL))
		if err != nil {
			return fmt.Errorf("parse session_ttl: %w", err)
		}
		cfg.Session.TTL = d
	}
	if meta.IsDefined("max_sessions") {
		cfg.Session.MaxSessions = raw.MaxSessions
	}
	if meta.IsDefined("upload_limit") {
		cfg.UploadLimit = raw.UploadLimit
	}
	if meta.IsDefined("default_version") {
		cfg.DefaultVersion = strings.TrimSpace(raw.DefaultVersion)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("prometheus_enabled") {
		cfg.PrometheusEnabled = raw.PrometheusEnabled
	}
	if meta.IsDefined("trusted_proxies") {
		cfg.TrustedProxies = raw.TrustedProxies
	}
	return nil
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		switch strings.ToLower(v) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getenvList(key string) []string {
	if v := os.Getenv(key); v != "" {
		var result []string
		for _, item := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return nil
}
