package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load populates cfg from the process environment using its `env` struct
// tags. Defaults come from `envDefault`; anything tagged `required` that is
// absent fails the load.
//
//	type Config struct {
//	    HTTPPort        int    `env:"HTTP_PORT" envDefault:"8080"`
//	    JWTAccessSecret string `env:"JWT_ACCESS_SECRET,required"`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
