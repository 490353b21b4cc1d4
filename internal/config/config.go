package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DatabaseName string
	SQLitePath   string

	// Resolver
	CacheDuration       time.Duration
	ProviderMinInterval time.Duration
	ProviderTimeout     time.Duration

	// Sampling
	SampleInterval   time.Duration
	ISPCheckInterval time.Duration
	LatencyTarget    string

	// Gateway probe
	GatewayTarget        string
	GatewayProbeInterval time.Duration
	GatewayProbeTimeout  time.Duration
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine; plain environment variables still apply.
	_ = godotenv.Load()

	databaseName := getEnv("DATABASE_NAME", "uplink")

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = filepath.Join("data", fmt.Sprintf("%s.db", databaseName))
	}

	gatewayTarget := os.Getenv("GATEWAY_TARGET")
	if gatewayTarget == "" {
		return nil, fmt.Errorf("GATEWAY_TARGET is not set")
	}

	config := &Config{
		Port:                 getEnv("PORT", "3001"),
		DatabaseName:         databaseName,
		SQLitePath:           sqlitePath,
		CacheDuration:        getEnvDuration("CACHE_DURATION", 30*time.Second),
		ProviderMinInterval:  getEnvDuration("PROVIDER_MIN_INTERVAL", time.Second),
		ProviderTimeout:      getEnvDuration("PROVIDER_TIMEOUT", 5*time.Second),
		SampleInterval:       getEnvDuration("SAMPLE_INTERVAL", 5*time.Second),
		ISPCheckInterval:     getEnvDuration("ISP_CHECK_INTERVAL", 30*time.Second),
		LatencyTarget:        getEnv("LATENCY_TARGET", "1.1.1.1:443"),
		GatewayTarget:        gatewayTarget,
		GatewayProbeInterval: getEnvDuration("GATEWAY_PROBE_INTERVAL", 60*time.Second),
		GatewayProbeTimeout:  getEnvDuration("GATEWAY_PROBE_TIMEOUT", 5*time.Second),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Plain numbers are read as seconds
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}
