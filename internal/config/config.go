// Package config loads settings from defaults, an optional YAML file and the
// environment, in that order of precedence (last wins).
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/watchnext/backend/internal/validation"
)

// Backend kinds.
const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendSupabase = "supabase"
)

// Auth providers.
const (
	AuthFirebase = "firebase"
	AuthJWT      = "jwt"
)

const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/watchnext/config.yaml",
}

type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Backend BackendConfig `koanf:"backend"`
	Auth    AuthConfig    `koanf:"auth"`
	Log     LogConfig     `koanf:"log"`
}

type ServerConfig struct {
	Address           string        `koanf:"address" validate:"required"`
	RequestTimeout    time.Duration `koanf:"request_timeout" validate:"min=1ms"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests" validate:"min=1"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window" validate:"min=1ms"`
}

type BackendConfig struct {
	Kind string `koanf:"kind" validate:"oneof=memory mongo supabase"`

	// DataDir holds catalog.json and profiles.json for the memory backend.
	DataDir string `koanf:"data_dir"`
	// AdminUserIDs are promoted to admin at startup. Memory backend only.
	AdminUserIDs []string `koanf:"admin_user_ids"`

	MongoURI string `koanf:"mongo_uri"`
	MongoDB  string `koanf:"mongo_db"`

	SupabaseURL        string `koanf:"supabase_url"`
	SupabaseServiceKey string `koanf:"supabase_service_key"`
	RetryMax           int    `koanf:"retry_max" validate:"min=0,max=10"`
	// BreakerFailures consecutive failures open the Supabase circuit breaker.
	BreakerFailures uint32        `koanf:"breaker_failures" validate:"min=1"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

type AuthConfig struct {
	Provider                string `koanf:"provider" validate:"oneof=firebase jwt"`
	JWTSecret               string `koanf:"jwt_secret"`
	FirebaseProjectID       string `koanf:"firebase_project_id"`
	FirebaseCredentialsJSON string `koanf:"firebase_credentials_json"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Address:           ":8080",
			RequestTimeout:    10 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 30,
			RateLimitWindow:   time.Minute,
		},
		Backend: BackendConfig{
			Kind:            BackendMemory,
			DataDir:         "./data",
			MongoDB:         "watchnext",
			RetryMax:        3,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
		Auth: AuthConfig{
			Provider: AuthJWT,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration and validates it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for _, path := range []string{"server.cors_origins", "backend.admin_user_ids"} {
		if err := splitCSV(k, path); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field shapes and the settings each backend and auth
// provider needs.
func (c *Config) Validate() error {
	if err := validation.Error(c); err != nil {
		return err
	}

	switch c.Backend.Kind {
	case BackendMemory:
		if strings.TrimSpace(c.Backend.DataDir) == "" {
			return fmt.Errorf("DATA_DIR is required for the memory backend")
		}
	case BackendMongo:
		if c.Backend.MongoURI == "" || c.Backend.MongoDB == "" {
			return fmt.Errorf("MONGO_URI and MONGO_DB are required for the mongo backend")
		}
	case BackendSupabase:
		if c.Backend.SupabaseURL == "" || c.Backend.SupabaseServiceKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required for the supabase backend")
		}
	}

	if c.Auth.Provider == AuthJWT && len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	if c.Auth.Provider == AuthFirebase && c.Auth.FirebaseProjectID == "" {
		return fmt.Errorf("FIREBASE_PROJECT_ID is required for firebase auth")
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envMappings = map[string]string{
	"server_address":            "server.address",
	"request_timeout":           "server.request_timeout",
	"cors_origins":              "server.cors_origins",
	"rate_limit_requests":       "server.rate_limit_requests",
	"rate_limit_window":         "server.rate_limit_window",
	"backend":                   "backend.kind",
	"data_dir":                  "backend.data_dir",
	"admin_user_ids":            "backend.admin_user_ids",
	"mongo_uri":                 "backend.mongo_uri",
	"mongo_db":                  "backend.mongo_db",
	"supabase_url":              "backend.supabase_url",
	"supabase_service_key":      "backend.supabase_service_key",
	"supabase_retry_max":        "backend.retry_max",
	"breaker_failures":          "backend.breaker_failures",
	"breaker_timeout":           "backend.breaker_timeout",
	"auth_provider":             "auth.provider",
	"jwt_secret":                "auth.jwt_secret",
	"firebase_project_id":       "auth.firebase_project_id",
	"firebase_credentials_json": "auth.firebase_credentials_json",
	"log_level":                 "log.level",
	"log_format":                "log.format",
}

// envTransformFunc maps known variables onto config paths and drops the rest.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func splitCSV(k *koanf.Koanf, path string) error {
	s, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	parts := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if err := k.Set(path, parts); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}
