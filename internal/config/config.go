// Package config loads the server's environment configuration and the
// client's optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/PaulBabatuyi/healthJournal-gRPC/internal/db"
)

const (
	DefaultPort           = "50051"
	DefaultHTTPPort       = "8080"
	DefaultRateLimitRPM   = 10
	DefaultUploadRateRPM  = 30
	DefaultMaxUploadBytes = 8 << 20
	DefaultMediaURLTTL    = 60 // minutes
)

// Server is the configuration of cmd/api.
type Server struct {
	MongoURI       string
	MongoDB        string
	JWTSecret      string
	JWTKeys        map[string]string
	JWTActiveKid   string
	Port           string
	HTTPPort       string
	PublicURL      string
	RateLimitRPM   int
	UploadRateRPM  int
	MaxUploadBytes int
	MediaURLTTL    time.Duration
	TLSCert        string
	TLSKey         string
	RequireTLS     bool
	LogLevel       string

	// AllowRoleSignup lets Register create staff accounts.
	AllowRoleSignup bool
}

// LoadServer reads a .env file if present, then the environment.
func LoadServer() (*Server, error) {
	_ = godotenv.Load(".env")
	return ServerFromEnv(os.Getenv)
}

// ServerFromEnv builds the configuration from getenv and checks it.
func ServerFromEnv(getenv func(string) string) (*Server, error) {
	cfg := &Server{
		MongoURI:       getenv("MONGODB_URI"),
		MongoDB:        getenv("MONGODB_DB"),
		JWTSecret:      getenv("JWT_SECRET"),
		JWTActiveKid:   getenv("JWT_ACTIVE_KID"),
		Port:           getenv("PORT"),
		HTTPPort:       getenv("HTTP_PORT"),
		PublicURL:      strings.TrimRight(getenv("PUBLIC_URL"), "/"),
		RateLimitRPM:   positiveInt(getenv("RATE_LIMIT_RPM"), DefaultRateLimitRPM),
		UploadRateRPM:  positiveInt(getenv("UPLOAD_RATE_LIMIT_RPM"), DefaultUploadRateRPM),
		MaxUploadBytes: positiveInt(getenv("MAX_UPLOAD_BYTES"), DefaultMaxUploadBytes),
		MediaURLTTL:    time.Duration(positiveInt(getenv("MEDIA_URL_TTL_MINUTES"), DefaultMediaURLTTL)) * time.Minute,
		TLSCert:        getenv("TLS_CERT"),
		TLSKey:         getenv("TLS_KEY"),
		RequireTLS:     getenv("REQUIRE_TLS") == "true",
		LogLevel:       getenv("LOG_LEVEL"),

		AllowRoleSignup: getenv("ALLOW_ROLE_SIGNUP") == "true",
	}
	if cfg.MongoDB == "" {
		cfg.MongoDB = db.DefaultDatabase
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if cfg.HTTPPort == "" {
		cfg.HTTPPort = DefaultHTTPPort
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = "http://localhost:" + cfg.HTTPPort
	}

	if cfg.MongoURI == "" {
		return nil, errors.New("MONGODB_URI must be set")
	}
	if keys := getenv("JWT_KEYS"); keys != "" {
		parsed, err := ParseKeys(keys)
		if err != nil {
			return nil, err
		}
		cfg.JWTKeys = parsed
	} else if cfg.JWTSecret == "" {
		return nil, errors.New("either JWT_SECRET or JWT_KEYS must be set")
	}
	if cfg.RequireTLS && (cfg.TLSCert == "" || cfg.TLSKey == "") {
		return nil, errors.New("REQUIRE_TLS is true but TLS_CERT/TLS_KEY are not configured")
	}
	return cfg, nil
}

// ParseKeys parses "kid:secret,kid2:secret2".
func ParseKeys(v string) (map[string]string, error) {
	keys := map[string]string{}
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kid, secret, ok := strings.Cut(p, ":")
		if !ok || kid == "" || secret == "" {
			return nil, fmt.Errorf("invalid JWT_KEYS entry: %s", p)
		}
		keys[kid] = secret
	}
	if len(keys) == 0 {
		return nil, errors.New("JWT_KEYS has no entries")
	}
	return keys, nil
}

func positiveInt(v string, def int) int {
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	return def
}

// Client is the configuration of cmd/journal. Flags override it.
type Client struct {
	Server   string `yaml:"server"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
	Limit    int    `yaml:"limit"`
	Insecure bool   `yaml:"insecure"`
	LogLevel string `yaml:"log_level"`

	// PushToken is the device token registered on sign-in; empty disables
	// notifications.
	PushToken string `yaml:"push_token"`
}

// DefaultClient returns the built-in client configuration.
func DefaultClient() Client {
	return Client{
		Server:   "localhost:" + DefaultPort,
		Limit:    12,
		Insecure: true,
		LogLevel: "info",
	}
}

// LoadClient reads path over DefaultClient. An empty path returns the
// defaults; a missing file is an error.
func LoadClient(path string) (Client, error) {
	cfg := DefaultClient()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("config file not found: %s", path)
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.Limit < 1 || cfg.Limit > 100 {
		return cfg, fmt.Errorf("limit must be between 1 and 100, got %d", cfg.Limit)
	}
	return cfg, nil
}
