// internal/workers/requirements/resolve-required-documents/config.go
package resolverequireddocuments

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}
