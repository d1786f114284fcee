package config

import "time"

const defaultPort = 8080

var defaultDB = DB{
	Host: "127.0.0.1",
	Port: "5432",
	User: "myuser",
	Pass: "mypassword",
	Name: "test_db",
}

var defaultRedis = Redis{
	Addr: "127.0.0.1:6379",
}

var defaultKafka = Kafka{
	Brokers:             []string{"localhost:9092"},
	LocationShards:      []string{"4_-8"},
	LocationTopicPrefix: "driver_location",
	LocationGroup:       "location-service-group",
	RequestsTopic:       "driver_assignment.requests",
	AssignmentGroup:     "driver-assignment-group",
	ResultsTopic:        "driver_assignment.responses",
	CommitGroup:         "assignment-commit-group",
}

var defaultIngest = Ingest{
	ServiceInstance:  "gps-1",
	MaxAge:           5 * time.Minute,
	MaxSkew:          2 * time.Minute,
	BatchLimit:       100,
	BatchParallelism: 10,
}

var defaultLocation = Location{
	StateTTL:     5 * time.Minute,
	AnalyticsTTL: 7 * 24 * time.Hour,
	Keepalive:    30 * time.Second,
}

var defaultAssignment = Assignment{
	DefaultRadiusKm: 5,
	ClaimTTL:        time.Hour,
	SpeedKmh:        30,
}

var defaultStoreRetry = StoreRetry{
	MaxAttempts: 3,
	BaseDelay:   50 * time.Millisecond,
	MaxDelay:    400 * time.Millisecond,
}

var defaultRateLimit = RateLimit{
	Enabled:    true,
	Rate:       50,
	Burst:      100,
	TTL:        5 * time.Minute,
	MaxBuckets: 100_000,
}

// DefaultPort returns the default port.
func DefaultPort() int {
	return defaultPort
}

// DefaultDB returns the default database settings.
func DefaultDB() DB {
	return defaultDB
}

// DefaultRedis returns the default fast store settings.
func DefaultRedis() Redis {
	return defaultRedis
}

// DefaultKafka returns the default kafka settings.
func DefaultKafka() Kafka {
	k := defaultKafka
	k.Brokers = append([]string(nil), defaultKafka.Brokers...)
	k.LocationShards = append([]string(nil), defaultKafka.LocationShards...)
	return k
}

// DefaultIngest returns the default ingestion settings.
func DefaultIngest() Ingest {
	return defaultIngest
}

// DefaultLocation returns the default location engine settings.
func DefaultLocation() Location {
	return defaultLocation
}

// DefaultAssignment returns the default assignment engine settings.
func DefaultAssignment() Assignment {
	return defaultAssignment
}

// DefaultStoreRetry returns the default store retry settings.
func DefaultStoreRetry() StoreRetry {
	return defaultStoreRetry
}

// DefaultRateLimit returns the default ingestion rate limit.
func DefaultRateLimit() RateLimit {
	return defaultRateLimit
}
