package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config stores settings shared by all dispatch binaries.
type Config struct {
	Port       int
	LogLevel   string
	DB         DB
	Redis      Redis
	Kafka      Kafka
	Ingest     Ingest
	Location   Location
	Assignment Assignment
	StoreRetry StoreRetry
	RateLimit  RateLimit
	Auth       Auth
	Debug      Debug
}

// DB holds Postgres connection parts.
type DB struct {
	Host string
	Port string
	User string
	Pass string
	Name string
}

// DSN builds a libpq style connection string.
func (d DB) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", d.User, d.Pass, d.Host, d.Port, d.Name)
}

// Redis holds fast store connection settings.
type Redis struct {
	Addr     string
	Password string
	DB       int
}

// Kafka holds broker, topic and group settings.
type Kafka struct {
	Brokers []string
	// LocationShards lists the geo-shard suffixes this process consumes,
	// e.g. "4_-8" for driver_location.4_-8.
	LocationShards      []string
	LocationTopicPrefix string
	LocationGroup       string
	RequestsTopic       string
	AssignmentGroup     string
	ResultsTopic        string
	CommitGroup         string
}

// Ingest configures the GPS ingestion gateway.
type Ingest struct {
	ServiceInstance  string
	MaxAge           time.Duration
	MaxSkew          time.Duration
	BatchLimit       int
	BatchParallelism int
}

// Location configures the location processing engine.
type Location struct {
	StateTTL     time.Duration
	AnalyticsTTL time.Duration
	Keepalive    time.Duration
}

// Assignment configures the assignment engine.
type Assignment struct {
	DefaultRadiusKm float64
	ClaimTTL        time.Duration
	SpeedKmh        float64
}

// StoreRetry configures bounded backoff at the store access layer.
type StoreRetry struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// RateLimit configures the ingestion token bucket.
type RateLimit struct {
	Enabled bool
	Rate    float64
	Burst      int
	TTL        time.Duration
	MaxBuckets int
}

// Auth configures live push authentication. An empty secret disables it.
type Auth struct {
	JWTSecret string
	// Origins are extra WebSocket origin patterns, e.g. "*.example.com".
	Origins []string
}

// Debug guards the profiling endpoints. Loopback callers need no credentials.
type Debug struct {
	User string
	Pass string
}

// Load reads configuration in order: .env (if present) → environment → flags.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}

	cfg := Config{
		Port:       DefaultPort(),
		LogLevel:   envString("LOG_LEVEL", "info"),
		DB:         DefaultDB(),
		Redis:      DefaultRedis(),
		Kafka:      DefaultKafka(),
		Ingest:     DefaultIngest(),
		Location:   DefaultLocation(),
		Assignment: DefaultAssignment(),
		StoreRetry: DefaultStoreRetry(),
		RateLimit:  DefaultRateLimit(),
	}

	var err error
	if cfg.Port, err = envInt("PORT", cfg.Port); err != nil {
		return nil, err
	}

	cfg.DB.Host = envString("POSTGRES_HOST", cfg.DB.Host)
	cfg.DB.Port = envString("POSTGRES_PORT", cfg.DB.Port)
	cfg.DB.User = envString("POSTGRES_USER", cfg.DB.User)
	cfg.DB.Pass = envString("POSTGRES_PASSWORD", cfg.DB.Pass)
	cfg.DB.Name = envString("POSTGRES_DB", cfg.DB.Name)
	if _, err := strconv.Atoi(cfg.DB.Port); err != nil {
		return nil, fmt.Errorf("invalid POSTGRES_PORT %q: %w", cfg.DB.Port, err)
	}

	cfg.Redis.Addr = envString("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envString("REDIS_PASSWORD", cfg.Redis.Password)
	if cfg.Redis.DB, err = envInt("REDIS_DB", cfg.Redis.DB); err != nil {
		return nil, err
	}

	cfg.Kafka.Brokers = envList("KAFKA_BROKERS", cfg.Kafka.Brokers)
	cfg.Kafka.LocationShards = envList("KAFKA_LOCATION_SHARDS", cfg.Kafka.LocationShards)
	cfg.Kafka.LocationTopicPrefix = envString("KAFKA_LOCATION_TOPIC_PREFIX", cfg.Kafka.LocationTopicPrefix)
	cfg.Kafka.LocationGroup = envString("KAFKA_LOCATION_GROUP", cfg.Kafka.LocationGroup)
	cfg.Kafka.RequestsTopic = envString("KAFKA_REQUESTS_TOPIC", cfg.Kafka.RequestsTopic)
	cfg.Kafka.AssignmentGroup = envString("KAFKA_ASSIGNMENT_GROUP", cfg.Kafka.AssignmentGroup)
	cfg.Kafka.ResultsTopic = envString("KAFKA_RESULTS_TOPIC", cfg.Kafka.ResultsTopic)
	cfg.Kafka.CommitGroup = envString("KAFKA_COMMIT_GROUP", cfg.Kafka.CommitGroup)

	cfg.Ingest.ServiceInstance = envString("SERVICE_INSTANCE", cfg.Ingest.ServiceInstance)
	if cfg.Ingest.MaxAge, err = envDuration("INGEST_MAX_AGE", cfg.Ingest.MaxAge); err != nil {
		return nil, err
	}
	if cfg.Ingest.MaxSkew, err = envDuration("INGEST_MAX_SKEW", cfg.Ingest.MaxSkew); err != nil {
		return nil, err
	}
	if cfg.Ingest.BatchLimit, err = envInt("INGEST_BATCH_LIMIT", cfg.Ingest.BatchLimit); err != nil {
		return nil, err
	}
	if cfg.Ingest.BatchParallelism, err = envInt("INGEST_BATCH_PARALLELISM", cfg.Ingest.BatchParallelism); err != nil {
		return nil, err
	}

	if cfg.Location.StateTTL, err = envDuration("LOCATION_STATE_TTL", cfg.Location.StateTTL); err != nil {
		return nil, err
	}
	if cfg.Location.AnalyticsTTL, err = envDuration("LOCATION_ANALYTICS_TTL", cfg.Location.AnalyticsTTL); err != nil {
		return nil, err
	}
	if cfg.Location.Keepalive, err = envDuration("PUSH_KEEPALIVE_INTERVAL", cfg.Location.Keepalive); err != nil {
		return nil, err
	}

	if cfg.Assignment.DefaultRadiusKm, err = envFloat("ASSIGNMENT_DEFAULT_RADIUS_KM", cfg.Assignment.DefaultRadiusKm); err != nil {
		return nil, err
	}
	if cfg.Assignment.ClaimTTL, err = envDuration("ASSIGNMENT_CLAIM_TTL", cfg.Assignment.ClaimTTL); err != nil {
		return nil, err
	}
	if cfg.Assignment.SpeedKmh, err = envFloat("ASSIGNMENT_SPEED_KMH", cfg.Assignment.SpeedKmh); err != nil {
		return nil, err
	}

	if cfg.StoreRetry.MaxAttempts, err = envInt("STORE_RETRY_MAX_ATTEMPTS", cfg.StoreRetry.MaxAttempts); err != nil {
		return nil, err
	}
	if cfg.StoreRetry.BaseDelay, err = envDuration("STORE_RETRY_BASE_DELAY", cfg.StoreRetry.BaseDelay); err != nil {
		return nil, err
	}
	if cfg.StoreRetry.MaxDelay, err = envDuration("STORE_RETRY_MAX_DELAY", cfg.StoreRetry.MaxDelay); err != nil {
		return nil, err
	}

	if cfg.RateLimit.Enabled, err = envBool("RATE_LIMIT_ENABLED", cfg.RateLimit.Enabled); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Rate, err = envFloat("RATE_LIMIT_RPS", cfg.RateLimit.Rate); err != nil {
		return nil, err
	}
	if cfg.RateLimit.Burst, err = envInt("RATE_LIMIT_BURST", cfg.RateLimit.Burst); err != nil {
		return nil, err
	}

	if cfg.RateLimit.TTL, err = envDuration("RATE_LIMIT_TTL", cfg.RateLimit.TTL); err != nil {
		return nil, err
	}
	if cfg.RateLimit.MaxBuckets, err = envInt("RATE_LIMIT_MAX_BUCKETS", cfg.RateLimit.MaxBuckets); err != nil {
		return nil, err
	}

	cfg.Auth.JWTSecret = envString("PUSH_JWT_SECRET", "")
	cfg.Auth.Origins = envList("PUSH_ALLOWED_ORIGINS", nil)
	cfg.Debug.User = envString("PPROF_USER", "")
	cfg.Debug.Pass = envString("PPROF_PASSWORD", "")

	brokers := strings.Join(cfg.Kafka.Brokers, ",")
	pflag.IntVarP(&cfg.Port, "port", "p", cfg.Port, "port to listen on")
	pflag.StringVar(&brokers, "kafka-brokers", brokers, "comma separated kafka brokers")
	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	cfg.Kafka.Brokers = splitList(brokers)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka brokers are required")
	}
	if c.Ingest.MaxAge <= 0 || c.Ingest.MaxSkew < 0 {
		return fmt.Errorf("invalid ingest freshness window: max age %s, max skew %s", c.Ingest.MaxAge, c.Ingest.MaxSkew)
	}
	if c.Ingest.BatchLimit <= 0 || c.Ingest.BatchParallelism <= 0 {
		return fmt.Errorf("invalid ingest batch settings: limit %d, parallelism %d", c.Ingest.BatchLimit, c.Ingest.BatchParallelism)
	}
	if c.Location.StateTTL <= 0 || c.Location.AnalyticsTTL <= 0 || c.Location.Keepalive <= 0 {
		return errors.New("location ttl and keepalive must be positive")
	}
	if c.Assignment.DefaultRadiusKm <= 0 || c.Assignment.ClaimTTL <= 0 || c.Assignment.SpeedKmh <= 0 {
		return errors.New("assignment radius, claim ttl and speed must be positive")
	}
	if c.StoreRetry.MaxAttempts < 1 {
		return fmt.Errorf("invalid store retry attempts: %d", c.StoreRetry.MaxAttempts)
	}
	return nil
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}

func envBool(key string, def bool) (bool, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}

func envList(key string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return splitList(v)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
