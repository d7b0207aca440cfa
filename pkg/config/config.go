// Package config loads issuer-facing configuration: environment
// variables for process wiring (addresses, credentials, log level) and
// a YAML issuer policy document describing how a given issuer wants its
// batches built.
package config

import "os"

// Config holds process-level configuration read from the environment.
type Config struct {
	Port          string
	LogLevel      string
	RedisAddr     string
	RedisPassword string
	SQLitePath    string
	S3Bucket      string
	S3Endpoint    string
	OTLPEndpoint  string
}

// Load reads process configuration from the environment, applying the
// same defaults an operator would get from an empty environment.
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8443"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	sqlitePath := os.Getenv("MTC_BATCH_INDEX")
	if sqlitePath == "" {
		sqlitePath = "mtc-batches.db"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	return &Config{
		Port:          port,
		LogLevel:      logLevel,
		RedisAddr:     redisAddr,
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		SQLitePath:    sqlitePath,
		S3Bucket:      os.Getenv("MTC_S3_BUCKET"),
		S3Endpoint:    os.Getenv("MTC_S3_ENDPOINT"),
		OTLPEndpoint:  otlpEndpoint,
	}
}
