package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"downloadgate/internal/origin"
	ratelimitconfig "downloadgate/internal/ratelimit/config"
	"downloadgate/pkg/platform/privacy"
)

// Store drivers accepted by STORE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Audit sinks accepted by AUDIT_SINK.
const (
	AuditSinkLog   = "log"
	AuditSinkKafka = "kafka"
	AuditSinkNone  = "none"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr        string
	MetricsAddr string
	LogLevel    string
	LogFormat   string

	DownloadURL     string
	DownloadSHA256  string
	AllowedOrigins  string
	IPHashSalt      string
	TrustedIPHeader string

	RequestTimeout time.Duration

	StoreDriver  string
	StoreTimeout time.Duration
	SQLitePath   string

	Postgres  PostgresConfig
	Redis     RedisConfig
	RateLimit ratelimitconfig.Config
	Audit     AuditConfig
}

// PostgresConfig holds the pgx pool settings.
type PostgresConfig struct {
	URL      string
	MaxConns int32
}

// RedisConfig holds the go-redis client settings.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// AuditConfig selects where audit events go.
type AuditConfig struct {
	Sink            string
	Buffer          int
	DeliveryTimeout time.Duration
	KafkaBrokers    []string
	KafkaTopic   string
}

// FromEnv builds a Server config from environment variables so main stays lean.
// Malformed numeric or duration values are reported; missing ones fall back to defaults.
func FromEnv() (Server, error) {
	return fromLookup(os.Getenv)
}

func fromLookup(getenv func(string) string) (Server, error) {
	p := parser{getenv: getenv}

	cfg := Server{
		Addr:        p.str("GATE_ADDR", ":8080"),
		MetricsAddr: p.str("METRICS_ADDR", ":9090"),
		LogLevel:    p.str("LOG_LEVEL", "info"),
		LogFormat:   p.str("LOG_FORMAT", "json"),

		DownloadURL:     p.str("DOWNLOAD_URL", ""),
		DownloadSHA256:  p.str("DOWNLOAD_SHA256", ""),
		AllowedOrigins:  p.str("ALLOWED_ORIGINS", ""),
		IPHashSalt:      p.raw("IP_HASH_SALT"),
		TrustedIPHeader: p.str("TRUSTED_IP_HEADER", privacy.DefaultTrustedHeader),

		RequestTimeout: p.duration("REQUEST_TIMEOUT", 15*time.Second),

		StoreDriver:  strings.ToLower(p.str("STORE_DRIVER", DriverSQLite)),
		StoreTimeout: p.duration("STORE_TIMEOUT", 5*time.Second),
		SQLitePath:   p.str("SQLITE_PATH", "downloads.db"),

		Postgres: PostgresConfig{
			URL:      p.str("DATABASE_URL", ""),
			MaxConns: int32(p.integer("DATABASE_MAX_CONNS", 10)),
		},
		Redis: RedisConfig{
			URL:          p.str("REDIS_URL", ""),
			PoolSize:     p.integer("REDIS_POOL_SIZE", 10),
			MinIdleConns: p.integer("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  p.duration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  p.duration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: p.duration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		RateLimit: ratelimitconfig.Config{
			MaxRequests: p.integer("RATE_LIMIT_MAX", ratelimitconfig.DefaultMaxRequests),
			Window:      p.duration("RATE_LIMIT_WINDOW", ratelimitconfig.DefaultWindow),
		},
		Audit: AuditConfig{
			Sink:            strings.ToLower(p.str("AUDIT_SINK", AuditSinkLog)),
			Buffer:          p.integer("AUDIT_BUFFER", 1024),
			DeliveryTimeout: p.duration("AUDIT_DELIVERY_TIMEOUT", 5*time.Second),
			KafkaBrokers:    splitList(p.str("KAFKA_BROKERS", "")),
			KafkaTopic:      p.str("KAFKA_AUDIT_TOPIC", "download-gate.audit"),
		},
	}

	if len(p.errs) > 0 {
		return Server{}, errors.Join(p.errs...)
	}
	return cfg, nil
}

// Validate reports every missing or inconsistent setting at once.
func (s Server) Validate() error {
	var errs []error
	required := []struct {
		name  string
		value string
	}{
		{"DOWNLOAD_URL", s.DownloadURL},
		{"DOWNLOAD_SHA256", s.DownloadSHA256},
		{"IP_HASH_SALT", s.IPHashSalt},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}
	if len(origin.ParseAllowList(s.AllowedOrigins)) == 0 {
		errs = append(errs, errors.New("ALLOWED_ORIGINS must name at least one origin"))
	}

	switch s.StoreDriver {
	case DriverMemory:
	case DriverSQLite:
		if s.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite store"))
		}
	case DriverPostgres:
		if s.Postgres.URL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
		}
	case DriverRedis:
		if s.Redis.URL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis store"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_DRIVER %q", s.StoreDriver))
	}

	switch s.Audit.Sink {
	case AuditSinkLog, AuditSinkNone:
	case AuditSinkKafka:
		if len(s.Audit.KafkaBrokers) == 0 {
			errs = append(errs, errors.New("KAFKA_BROKERS is required for the kafka audit sink"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown AUDIT_SINK %q", s.Audit.Sink))
	}

	if s.RateLimit.MaxRequests <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_MAX must be positive"))
	}
	if s.RateLimit.Window <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
	}
	if s.StoreTimeout <= 0 {
		errs = append(errs, errors.New("STORE_TIMEOUT must be positive"))
	}
	if s.RequestTimeout <= 0 {
		errs = append(errs, errors.New("REQUEST_TIMEOUT must be positive"))
	}
	if s.Audit.DeliveryTimeout <= 0 {
		errs = append(errs, errors.New("AUDIT_DELIVERY_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

type parser struct {
	getenv func(string) string
	errs   []error
}

// raw returns the value untrimmed; the salt is used byte for byte.
func (p *parser) raw(key string) string {
	return p.getenv(key)
}

func (p *parser) str(key, fallback string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return fallback
}

func (p *parser) integer(key string, fallback int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
