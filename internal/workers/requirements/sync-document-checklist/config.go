// internal/workers/requirements/sync-document-checklist/config.go
package syncdocumentchecklist

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
