package config

import (
	"bytes"
	"os"
	"regexp"
)

// Matches ${VAR} and ${VAR:-fallback}.
var envVarRegex = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*)?\}`)

func substituteEnvVars(content []byte) []byte {
	return envVarRegex.ReplaceAllFunc(content, func(match []byte) []byte {
		groups := envVarRegex.FindSubmatch(match)
		if value, exists := os.LookupEnv(string(groups[1])); exists {
			return []byte(value)
		}
		if fallback, ok := bytes.CutPrefix(groups[2], []byte(":-")); ok {
			return fallback
		}
		return match
	})
}
