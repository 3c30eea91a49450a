package settings

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/emberco/recall/pkg/dotdir"
)

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultSettings(), reads the settings.toml file
// (if found via dotdir resolution), and binds environment variables with the
// RECALL_ prefix.
//
// Settings precedence (highest to lowest):
//  1. CLI flags (once bound by the command layer)
//  2. Environment variables (RECALL_SERVICE_URL, RECALL_SERVER_LISTEN, etc.)
//  3. settings.toml file values
//  4. Defaults from NewDefaultSettings()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultSettings().
	setViperDefaults(v)

	// 2. Settings file discovery via dotdir resolution.
	v.SetConfigName("settings")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving settings dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Settings file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading settings: %w", err)
		}
	}

	// 3. Environment variables: RECALL_SERVICE_URL, RECALL_SYNC_BATCH_SIZE, etc.
	v.SetEnvPrefix("RECALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// Watch reloads the store whenever settings.toml changes on disk, so a
// settings edit made while the bridge is running takes effect on the next
// pipeline invocation.
func Watch(v *viper.Viper, store *Store, logger *zap.Logger) {
	v.OnConfigChange(func(e fsnotify.Event) {
		logger.Debug("settings file changed",
			zap.String("file", e.Name),
			zap.String("op", e.Op.String()),
		)
		if err := store.Reload(); err != nil {
			logger.Warn("settings reload failed", zap.Error(err))
		}
	})
	v.WatchConfig()
}

// setViperDefaults registers defaults from NewDefaultSettings() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultSettings()

	v.SetDefault("version", d.Version)

	// Service
	v.SetDefault("service.url", d.Service.URL)
	v.SetDefault("service.timeout_seconds", d.Service.TimeoutSeconds)

	// Capture
	v.SetDefault("capture.auto_memory", d.Capture.AutoMemory)

	// Context
	v.SetDefault("context.integration", d.Context.Integration)
	v.SetDefault("context.recent_messages", d.Context.RecentMessages)
	v.SetDefault("context.recent_message_count", d.Context.RecentMessageCount)
	v.SetDefault("context.fast_rerank_count", d.Context.FastRerankCount)
	v.SetDefault("context.final_memory_count", d.Context.FinalMemoryCount)
	v.SetDefault("context.use_intelligent_selection", d.Context.UseIntelligentSelection)
	v.SetDefault("context.min_relevance_score", d.Context.MinRelevanceScore)
	v.SetDefault("context.max_memories", d.Context.MaxMemories)
	v.SetDefault("context.min_memories", d.Context.MinMemories)

	// Sync
	v.SetDefault("sync.batch_size", d.Sync.BatchSize)
	v.SetDefault("sync.pacing_ms", d.Sync.PacingMs)

	// Server
	v.SetDefault("server.listen", d.Server.Listen)

	// Stream
	v.SetDefault("stream.enabled", d.Stream.Enabled)
	v.SetDefault("stream.broker", d.Stream.Broker)
	v.SetDefault("stream.topic", d.Stream.Topic)
}
