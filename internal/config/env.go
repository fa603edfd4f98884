package config

import (
	"os"
	"regexp"
	"strings"
)

// matches ${NAME} and ${NAME:-fallback}
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*)?\}`)

// expandEnvVars replaces ${NAME} with the variable's value. An unset
// variable uses the ":-" fallback when one is given and is otherwise left
// as written.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if value := os.Getenv(groups[1]); value != "" {
			return value
		}
		if fallback, ok := strings.CutPrefix(groups[2], ":-"); ok {
			return fallback
		}
		return match
	})
}

// expandConfigEnvVars expands the string fields that commonly carry
// deployment-specific values
func expandConfigEnvVars(cfg *Config) {
	for _, field := range []*string{
		&cfg.Storage.Path,
		&cfg.Storage.Qdrant.URL,
		&cfg.Storage.Qdrant.APIKey,
		&cfg.Storage.Qdrant.Collection,
		&cfg.Corpus.SeedFile,
		&cfg.Server.Addr,
	} {
		*field = expandEnvVars(*field)
	}
}
