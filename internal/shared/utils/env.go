package utils

import (
	"os"
	"strconv"
)

// GetEnv returns the value of key, or defaultValue when it is unset or empty.
func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvFloat parses key as a float64, falling back to defaultValue when the
// variable is unset or malformed.
func GetEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(GetEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

// GetEnvInt parses key as an int, falling back to defaultValue when the
// variable is unset or malformed.
func GetEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(GetEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}
