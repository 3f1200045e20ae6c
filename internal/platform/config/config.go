package config

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	pstrings "navshell/pkg/platform/strings"
)

// Server captures process level configuration.
type Server struct {
	Addr          string
	Environment   string
	JWTSigningKey string
	TokenIssuer   string
	TokenTTL      time.Duration
	LogFormat     string
	LogLevel      string
	Redis         RedisConfig
	Kafka         KafkaConfig
	LoginLimit    RateLimitConfig
	Navigation    NavigationConfig
}

// RateLimitConfig bounds attempts per client address within Window.
type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

// RedisConfig configures the role-change bus. An empty URL keeps the bus
// in process.
type RedisConfig struct {
	URL          string
	Channel      string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the audit stream. No brokers means audit events
// stay in memory.
type KafkaConfig struct {
	Brokers           []string
	Topic             string
	Partitions        int32
	ReplicationFactor int16
}

// NavigationConfig is the static navigation configuration. It is usually
// read from the YAML file named by NAVSHELL_CONFIG.
type NavigationConfig struct {
	// Priority ranks feature ids when several claim the main destination.
	Priority map[string]int `yaml:"priority"`
	// WideBreakpoint is the viewport width (dp) from which the side rail is used.
	WideBreakpoint int `yaml:"wide_breakpoint_dp"`
	// Features declares extra static providers registered after the catalog.
	Features []FeatureManifest `yaml:"features"`
}

// FeatureManifest is the file form of a feature provider.
type FeatureManifest struct {
	ID           string                `yaml:"id"`
	Main         bool                  `yaml:"main"`
	Roles        []string              `yaml:"roles"`
	Destinations []DestinationManifest `yaml:"destinations"`
}

// DestinationManifest is the file form of a destination descriptor.
type DestinationManifest struct {
	Route     string   `yaml:"route"`
	Title     string   `yaml:"title"`
	Icon      string   `yaml:"icon"`
	Placement string   `yaml:"placement"`
	Roles     []string `yaml:"roles"`
	Order     int      `yaml:"order"`
}

// DefaultPriority is used when no configuration file overrides it.
func DefaultPriority() map[string]int {
	return map[string]int{
		"invoice": 1,
		"billing": 2,
		"user":    3,
	}
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Use a default for development - should be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Server{
		Addr:          envOr("NAVSHELL_ADDR", ":8080"),
		Environment:   envOr("NAVSHELL_ENV", "development"),
		JWTSigningKey: jwtSigningKey,
		TokenIssuer:   envOr("TOKEN_ISSUER", "navshell"),
		TokenTTL:      envDuration("TOKEN_TTL", 15*time.Minute),
		LogFormat:     envOr("LOG_FORMAT", "json"),
		LogLevel:      envOr("LOG_LEVEL", "info"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			Channel:      envOr("REDIS_ROLE_CHANNEL", "navshell:roles"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers:           splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:             envOr("AUDIT_TOPIC", "navshell.audit"),
			Partitions:        int32(envInt("AUDIT_TOPIC_PARTITIONS", 1)),
			ReplicationFactor: int16(envInt("AUDIT_TOPIC_REPLICATION", 1)),
		},
		LoginLimit: RateLimitConfig{
			Limit:  envInt("LOGIN_RATE_LIMIT", 10),
			Window: envDuration("LOGIN_RATE_WINDOW", time.Minute),
		},
		Navigation: NavigationConfig{
			Priority:       DefaultPriority(),
			WideBreakpoint: envInt("WIDE_BREAKPOINT_DP", 600),
		},
	}
}

// Load reads the environment and overlays the YAML file named by
// NAVSHELL_CONFIG when it is set.
func Load() (Server, error) {
	cfg := FromEnv()
	path := os.Getenv("NAVSHELL_CONFIG")
	if path == "" {
		return cfg, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config %s: %w", path, err)
	}
	defer f.Close()
	if err := Overlay(&cfg, f); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

type fileConfig struct {
	Navigation *NavigationConfig `yaml:"navigation"`
}

// Overlay applies the navigation section of a YAML document to cfg. Only
// keys present in the document replace environment values.
func Overlay(cfg *Server, r io.Reader) error {
	var fc fileConfig
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("decode yaml: %w", err)
	}
	if fc.Navigation == nil {
		return nil
	}
	nav := fc.Navigation
	if nav.Priority != nil {
		cfg.Navigation.Priority = nav.Priority
	}
	if nav.WideBreakpoint > 0 {
		cfg.Navigation.WideBreakpoint = nav.WideBreakpoint
	}
	cfg.Navigation.Features = append(cfg.Navigation.Features, nav.Features...)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func splitList(s string) []string {
	return pstrings.DedupeAndTrim(strings.Split(s, ","))
}
