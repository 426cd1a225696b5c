// Package config builds the service configuration from environment
// variables, optionally overlaid by a YAML file named in CIVICFIN_CONFIG.
// File values win over environment defaults; ${VAR} references inside the
// file are expanded before parsing.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full service configuration.
type Config struct {
	Server      Server      `yaml:"server"`
	Upstream    Upstream    `yaml:"upstream"`
	Resolver    Resolver    `yaml:"resolver"`
	Aggregation Aggregation `yaml:"aggregation"`
	Quality     Quality     `yaml:"quality"`
	Cache       Cache       `yaml:"cache"`
	Redis       RedisConfig `yaml:"redis"`
	Postgres    Postgres    `yaml:"postgres"`
	Kafka       Kafka       `yaml:"kafka"`
	Crosswalk   Crosswalk   `yaml:"crosswalk"`
	Logging     Logging     `yaml:"logging"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	DefaultCycle    int           `yaml:"default_cycle"`
}

// Provider is one public-data upstream.
type Provider struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	// RateLimit requests per RateWindow; zero disables local throttling.
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

// Breaker tunes the per-upstream circuit breakers.
type Breaker struct {
	FailureThreshold int           `yaml:"failure_threshold"`
	SuccessThreshold int           `yaml:"success_threshold"`
	Cooldown         time.Duration `yaml:"cooldown"`
}

// Upstream groups the upstream sources.
type Upstream struct {
	FEC      Provider `yaml:"fec"`
	Congress Provider `yaml:"congress"`
	Breaker  Breaker  `yaml:"breaker"`
}

// Resolver bounds candidate search.
type Resolver struct {
	MinAcceptScore int           `yaml:"min_accept_score"`
	SearchCycles   int           `yaml:"search_cycles"`
	MaxSearchCalls int           `yaml:"max_search_calls"`
	SearchLimit    int           `yaml:"search_limit"`
	SearchTimeout  time.Duration `yaml:"search_timeout"`
}

// Aggregation sizes the transaction pulls and breakdowns.
type Aggregation struct {
	SamplePageSize int `yaml:"sample_page_size"`
	FullPageSize   int `yaml:"full_page_size"`
	TopIndustries  int `yaml:"top_industries"`
	TopEmployers   int `yaml:"top_employers"`
	TopStates      int `yaml:"top_states"`
	TopPayees      int `yaml:"top_payees"`
}

// Quality holds completeness thresholds in percent.
type Quality struct {
	High float64 `yaml:"high"`
	Low  float64 `yaml:"low"`
}

// Cache selects the backend and per-call-site TTLs.
type Cache struct {
	Backend         string        `yaml:"backend"` // memory or redis
	MaxEntries      int           `yaml:"max_entries"`
	ReportTTL       time.Duration `yaml:"report_ttl"`
	TotalsTTL       time.Duration `yaml:"totals_ttl"`
	TransactionsTTL time.Duration `yaml:"transactions_ttl"`
	CandidateTTL    time.Duration `yaml:"candidate_ttl"`
}

// RedisConfig configures the shared Redis client. An empty URL disables Redis.
type RedisConfig struct {
	URL          string        `yaml:"url"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// Postgres configures the database handle. An empty DSN disables it.
type Postgres struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// Kafka configures resolution event publishing. No brokers means events are logged.
type Kafka struct {
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientID string   `yaml:"client_id"`
}

// Crosswalk selects where legislator identifiers come from.
type Crosswalk struct {
	Source string `yaml:"source"` // file or postgres
	File   string `yaml:"file"`
	Seed   bool   `yaml:"seed"` // import File into postgres at startup
}

// Logging configures the slog handler.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            getEnv("CIVICFIN_ADDR", ":8080"),
			ReadTimeout:     getEnvDuration("CIVICFIN_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("CIVICFIN_WRITE_TIMEOUT", 60*time.Second),
			RequestTimeout:  getEnvDuration("CIVICFIN_REQUEST_TIMEOUT", 45*time.Second),
			ShutdownTimeout: getEnvDuration("CIVICFIN_SHUTDOWN_TIMEOUT", 15*time.Second),
			DefaultCycle:    getEnvInt("CIVICFIN_DEFAULT_CYCLE", 2024),
		},
		Upstream: Upstream{
			FEC: Provider{
				BaseURL:    getEnv("FEC_BASE_URL", "https://api.open.fec.gov/v1"),
				APIKey:     getEnv("FEC_API_KEY", "DEMO_KEY"),
				Timeout:    getEnvDuration("FEC_TIMEOUT", 10*time.Second),
				RateLimit:  getEnvInt("FEC_RATE_LIMIT", 1000),
				RateWindow: getEnvDuration("FEC_RATE_WINDOW", time.Hour),
			},
			Congress: Provider{
				BaseURL:    getEnv("CONGRESS_BASE_URL", "https://api.congress.gov/v3"),
				APIKey:     os.Getenv("CONGRESS_API_KEY"),
				Timeout:    getEnvDuration("CONGRESS_TIMEOUT", 5*time.Second),
				RateLimit:  getEnvInt("CONGRESS_RATE_LIMIT", 5000),
				RateWindow: getEnvDuration("CONGRESS_RATE_WINDOW", time.Hour),
			},
			Breaker: Breaker{
				FailureThreshold: getEnvInt("UPSTREAM_BREAKER_FAILURES", 5),
				SuccessThreshold: getEnvInt("UPSTREAM_BREAKER_SUCCESSES", 2),
				Cooldown:         getEnvDuration("UPSTREAM_BREAKER_COOLDOWN", 30*time.Second),
			},
		},
		Resolver: Resolver{
			MinAcceptScore: getEnvInt("RESOLVER_MIN_ACCEPT_SCORE", 60),
			SearchCycles:   getEnvInt("RESOLVER_SEARCH_CYCLES", 3),
			MaxSearchCalls: getEnvInt("RESOLVER_MAX_SEARCH_CALLS", 12),
			SearchLimit:    getEnvInt("RESOLVER_SEARCH_LIMIT", 20),
			SearchTimeout:  getEnvDuration("RESOLVER_SEARCH_TIMEOUT", 20*time.Second),
		},
		Aggregation: Aggregation{
			SamplePageSize: getEnvInt("AGGREGATION_SAMPLE_PAGE_SIZE", 100),
			FullPageSize:   getEnvInt("AGGREGATION_FULL_PAGE_SIZE", 500),
			TopIndustries:  getEnvInt("AGGREGATION_TOP_INDUSTRIES", 10),
			TopEmployers:   getEnvInt("AGGREGATION_TOP_EMPLOYERS", 5),
			TopStates:      getEnvInt("AGGREGATION_TOP_STATES", 10),
			TopPayees:      getEnvInt("AGGREGATION_TOP_PAYEES", 10),
		},
		Quality: Quality{
			High: getEnvFloat("QUALITY_HIGH_THRESHOLD", 80),
			Low:  getEnvFloat("QUALITY_LOW_THRESHOLD", 40),
		},
		Cache: Cache{
			Backend:         getEnv("CACHE_BACKEND", "memory"),
			MaxEntries:      getEnvInt("CACHE_MAX_ENTRIES", 10000),
			ReportTTL:       getEnvDuration("CACHE_REPORT_TTL", 15*time.Minute),
			TotalsTTL:       getEnvDuration("CACHE_TOTALS_TTL", 6*time.Hour),
			TransactionsTTL: getEnvDuration("CACHE_TRANSACTIONS_TTL", time.Hour),
			CandidateTTL:    getEnvDuration("CACHE_CANDIDATE_TTL", 24*time.Hour),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: Postgres{
			DSN:             os.Getenv("DATABASE_URL"),
			MaxOpenConns:    getEnvInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvInt("DATABASE_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DATABASE_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Kafka: Kafka{
			Brokers:  getEnvList("KAFKA_BROKERS"),
			Topic:    getEnv("KAFKA_RESOLUTION_TOPIC", "civicfin.resolutions"),
			ClientID: getEnv("KAFKA_CLIENT_ID", "civicfin"),
		},
		Crosswalk: Crosswalk{
			Source: getEnv("CROSSWALK_SOURCE", "file"),
			File:   getEnv("CROSSWALK_FILE", "data/legislators-current.yaml"),
			Seed:   os.Getenv("CROSSWALK_SEED") == "true",
		},
		Logging: Logging{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}
}

// Load returns FromEnv overlaid with the file named by CIVICFIN_CONFIG, if set.
func Load() (Config, error) {
	cfg := FromEnv()
	if path := os.Getenv("CIVICFIN_CONFIG"); path != "" {
		if err := cfg.Overlay(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Overlay reads a YAML file onto cfg. Keys absent from the file keep their
// current values.
func (c *Config) Overlay(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	// Expand environment variables (e.g., ${FEC_API_KEY})
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	var problems []string
	if c.Upstream.FEC.BaseURL == "" {
		problems = append(problems, "upstream.fec.base_url is required")
	}
	if c.Quality.Low < 0 || c.Quality.High > 100 || c.Quality.Low > c.Quality.High {
		problems = append(problems, fmt.Sprintf("quality thresholds must satisfy 0 <= low <= high <= 100 (low=%.1f high=%.1f)", c.Quality.Low, c.Quality.High))
	}
	if c.Resolver.MinAcceptScore < 0 {
		problems = append(problems, "resolver.min_accept_score must not be negative")
	}
	if c.Aggregation.SamplePageSize <= 0 || c.Aggregation.FullPageSize < c.Aggregation.SamplePageSize {
		problems = append(problems, "aggregation page sizes must satisfy 0 < sample <= full")
	}
	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Redis.URL == "" {
			problems = append(problems, "cache.backend redis requires redis.url")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown cache.backend %q", c.Cache.Backend))
	}
	switch c.Crosswalk.Source {
	case "file":
		if c.Crosswalk.File == "" {
			problems = append(problems, "crosswalk.file is required for the file source")
		}
	case "postgres":
		if c.Postgres.DSN == "" {
			problems = append(problems, "crosswalk.source postgres requires postgres.dsn")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown crosswalk.source %q", c.Crosswalk.Source))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
