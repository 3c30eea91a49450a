// Package wiring resolves persisted settings and builds the shared memory
// service client for CLI commands.
package wiring

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/gateway"
	"github.com/emberco/recall/pkg/settings"
)

// LoadSettings resolves the persisted settings for the given config dir
// override.
func LoadSettings(configDir string) (*settings.Settings, error) {
	cfger, err := settings.NewConfiger(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving settings: %w", err)
	}

	s, err := cfger.Load()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	return s, nil
}

// NewGateway builds a memory service client from settings, with an optional
// URL override from a CLI flag.
func NewGateway(s *settings.Settings, urlOverride string, logger *zap.Logger) gateway.Service {
	url := s.Service.URL
	if urlOverride != "" {
		url = urlOverride
	}

	return gateway.NewClient(gateway.Config{
		URL:     url,
		Timeout: time.Duration(s.Service.TimeoutSeconds) * time.Second,
	}, logger)
}
