package player

import (
	"log/slog"
	"os"
	"strconv"
)

// FillEnvVar returns the value of a runtime Environment Variable
func FillEnvVar(ev string) string {
	// If the EnvVar doesn't exist return a default string
	value := os.Getenv(ev)
	if value == "" {
		value = "ENOENT"
	}
	return value
}

// FillEnvVarInt reads an integer Environment Variable, falling back to def
// when it is unset or not a number
func FillEnvVarInt(ev string, def int) int {
	value := FillEnvVar(ev)
	if value == "ENOENT" {
		return def
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("Ignoring non-integer environment value",
			slog.String("var", ev),
			slog.String("value", value))
		return def
	}
	return n
}

// FillEnvVarFloat is FillEnvVarInt for decimal values
func FillEnvVarFloat(ev string, def float64) float64 {
	value := FillEnvVar(ev)
	if value == "ENOENT" {
		return def
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		slog.Warn("Ignoring non-numeric environment value",
			slog.String("var", ev),
			slog.String("value", value))
		return def
	}
	return f
}
