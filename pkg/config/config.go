// Package config loads controller configuration from the environment and
// trusted-key provisioning files.
package config

import (
	"os"
	"strconv"
)

// Config holds controller configuration.
type Config struct {
	// InitialVersion is the controller version before any self-update is
	// applied.
	InitialVersion string
	// InterpreterStepLimit bounds extension-code evaluation steps per run.
	// Zero disables the budget.
	InterpreterStepLimit uint64
	// TrustedKeysPath optionally names a YAML provisioning file of
	// authorized keys loaded at startup.
	TrustedKeysPath string
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	version := os.Getenv("GRIDLINK_VERSION")
	if version == "" {
		version = "1.0.0"
	}

	var stepLimit uint64 = 1_000_000
	if raw := os.Getenv("GRIDLINK_STEP_LIMIT"); raw != "" {
		if parsed, err := strconv.ParseUint(raw, 10, 64); err == nil {
			stepLimit = parsed
		}
	}

	return &Config{
		InitialVersion:       version,
		InterpreterStepLimit: stepLimit,
		TrustedKeysPath:      os.Getenv("GRIDLINK_TRUSTED_KEYS"),
	}
}
