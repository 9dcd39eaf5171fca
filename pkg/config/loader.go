// Package config loads environment-tagged configuration structs.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load fills cfg from environment variables using its `env` struct tags.
// Defaults come from `envDefault` tags; list values split on `envSeparator`.
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
