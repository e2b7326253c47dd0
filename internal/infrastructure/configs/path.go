package configs

import (
	"os"

	"github.com/churchconnect/realtime/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file location. An explicit path
// (a binary's own -config flag) wins, then the GATEWAY_CONFIG environment
// variable, then well-known locations. Flag registration stays with the
// binaries so each can carry its own flag set.
func DetermineConfigPath(explicit string) string {
	configPath := explicit

	if configPath == "" {
		configPath = env.GetString("GATEWAY_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/churchconnect/gateway.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	// An absent file is fine: Load falls back to defaults and env overrides.
	return configPath
}
