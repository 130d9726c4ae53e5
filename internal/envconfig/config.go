// Package envconfig reads convfwd settings from the environment.
//
//   - CONVFWD_SEED: seed for the random input tensors (default 1)
//   - CONVFWD_DEBUG: log level, 1/true for debug (default info)
package envconfig

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Seed returns the RNG seed for generated tensors.
// Configurable via CONVFWD_SEED. Default: 1
var Seed = Uint64("CONVFWD_SEED", 1)

// LogLevel returns the log level.
// Configurable via CONVFWD_DEBUG. 0/false = INFO (default), 1/true = DEBUG,
// other integers n map to slog.Level(-4*n).
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("CONVFWD_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}
	return level
}

// Uint64 returns a getter for a uint64 variable that falls back to defaultValue
// when the variable is unset or malformed.
func Uint64(key string, defaultValue uint64) func() uint64 {
	return func() uint64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

type EnvVar struct {
	Name        string
	Value       any
	Description string
}

func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"CONVFWD_DEBUG": {"CONVFWD_DEBUG", LogLevel(), "Show debug logging (e.g. CONVFWD_DEBUG=1)"},
		"CONVFWD_SEED":  {"CONVFWD_SEED", Seed(), "Seed for generated input tensors (default 1)"},
	}
}

// Values returns the current settings as strings, ordered by name.
func Values() [][2]string {
	vars := AsMap()
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([][2]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, [2]string{k, fmt.Sprintf("%v", vars[k].Value)})
	}
	return out
}

// Var returns an environment variable stripped of surrounding spaces and quotes.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
