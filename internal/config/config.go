package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration values sourced from environment variables.
type Config struct {
	HTTPPort        string
	ForgeAPIURL     string
	ForgeTimeout    time.Duration
	CORSOrigin      string
	SessionTTL      time.Duration
	AuthRatePerSec  float64
	AuthRateBurst   int
	APIRatePerSec   float64
	APIRateBurst    int
	ShutdownTimeout time.Duration
}

// Load reads environment variables and produces a Config with sane defaults for local development.
func Load() Config {
	return Config{
		HTTPPort:        getEnv("PORT", "8080"),
		ForgeAPIURL:     getEnv("FORGE_API_URL", "http://localhost:2003"),
		ForgeTimeout:    getDuration("FORGE_API_TIMEOUT", 15*time.Second),
		CORSOrigin:      getEnv("CORS_ORIGIN", "http://localhost:3000"),
		SessionTTL:      getDuration("SESSION_TTL", 10*time.Hour),
		AuthRatePerSec:  getFloat("AUTH_RATE_PER_SEC", 1),
		AuthRateBurst:   getInt("AUTH_RATE_BURST", 5),
		APIRatePerSec:   getFloat("API_RATE_PER_SEC", 25),
		APIRateBurst:    getInt("API_RATE_BURST", 50),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("invalid %s %q, defaulting to %s: %v", key, v, fallback, err)
		return fallback
	}
	return d
}

func getInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("failed to parse %s=%q as int: %v", key, v, err)
		return fallback
	}
	return i
}

func getFloat(key string, fallback float64) float64 {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Printf("failed to parse %s=%q as float: %v", key, v, err)
		return fallback
	}
	return f
}
