// Package settings holds the user-tunable parameters for the recall bridge
// and persists them as settings.toml in the .recall/ directory.
//
// Pipelines never read ambient mutable state: every invocation takes an
// immutable Snapshot from the Store, so a mid-operation settings change is
// visible to not-yet-issued calls but never to ones already dispatched.
package settings

import (
	"fmt"
	"strconv"
	"time"
)

// Settings is the persistent recall configuration stored as settings.toml.
// The TOML layout uses sections for logical grouping.
type Settings struct {
	Version int             `toml:"version" json:"version"`
	Service ServiceSettings `toml:"service" json:"service"`
	Capture CaptureSettings `toml:"capture" json:"capture"`
	Context ContextSettings `toml:"context" json:"context"`
	Sync    SyncSettings    `toml:"sync" json:"sync"`
	Server  ServerSettings  `toml:"server" json:"server"`
	Stream  StreamSettings  `toml:"stream" json:"stream"`
}

// ServiceSettings locates the external memory service.
type ServiceSettings struct {
	URL            string `toml:"url,omitempty" json:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds,omitempty" json:"timeout_seconds"`
}

// Timeout returns the per-call service timeout as a duration, falling back
// to the default when unset.
func (s ServiceSettings) Timeout() time.Duration {
	if s.TimeoutSeconds <= 0 {
		return defaultTimeoutSeconds * time.Second
	}
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// CaptureSettings controls automatic capture of conversational turns.
type CaptureSettings struct {
	// AutoMemory captures each sent/received message as a memory.
	AutoMemory bool `toml:"auto_memory" json:"auto_memory"`
}

// ContextSettings controls generation-time context injection.
type ContextSettings struct {
	// Integration enables context injection entirely.
	Integration bool `toml:"integration" json:"integration"`

	// RecentMessages includes the recent-message window ahead of the
	// retrieved memories.
	RecentMessages     bool `toml:"recent_messages" json:"recent_messages"`
	RecentMessageCount int  `toml:"recent_message_count,omitempty" json:"recent_message_count"`

	// FastRerankCount and FinalMemoryCount are the service's two-pass
	// rerank breadths. FastRerankCount >= FinalMemoryCount is the intended
	// relationship; the service does not enforce it.
	FastRerankCount  int `toml:"fast_rerank_count,omitempty" json:"fast_rerank_count"`
	FinalMemoryCount int `toml:"final_memory_count,omitempty" json:"final_memory_count"`

	// Intelligent selection: service-side relevance-score thresholding
	// with min/max result-count bounds.
	UseIntelligentSelection bool    `toml:"use_intelligent_selection" json:"use_intelligent_selection"`
	MinRelevanceScore       float64 `toml:"min_relevance_score,omitempty" json:"min_relevance_score"`
	MaxMemories             int     `toml:"max_memories,omitempty" json:"max_memories"`
	MinMemories             int     `toml:"min_memories,omitempty" json:"min_memories"`
}

// SyncSettings controls bulk transcript ingestion.
type SyncSettings struct {
	BatchSize int `toml:"batch_size,omitempty" json:"batch_size"`
	PacingMs  int `toml:"pacing_ms,omitempty" json:"pacing_ms"`
}

// ServerSettings holds bridge server settings.
type ServerSettings struct {
	Listen string `toml:"listen,omitempty" json:"listen"`
}

// StreamSettings holds the observability event stream settings.
type StreamSettings struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Broker  string `toml:"broker,omitempty" json:"broker"`
	Topic   string `toml:"topic,omitempty" json:"topic"`
}

// settingsKeyInfo maps a user-facing dotted key name to a getter and setter
// on *Settings.
type settingsKeyInfo struct {
	get func(s *Settings) string
	set func(s *Settings, v string) error
}

func boolKey(get func(*Settings) *bool) settingsKeyInfo {
	return settingsKeyInfo{
		get: func(s *Settings) string { return strconv.FormatBool(*get(s)) },
		set: func(s *Settings, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("invalid boolean %q: %w", v, err)
			}
			*get(s) = b
			return nil
		},
	}
}

func intKey(get func(*Settings) *int) settingsKeyInfo {
	return settingsKeyInfo{
		get: func(s *Settings) string { return strconv.Itoa(*get(s)) },
		set: func(s *Settings, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer %q: %w", v, err)
			}
			*get(s) = n
			return nil
		},
	}
}

func stringKey(get func(*Settings) *string) settingsKeyInfo {
	return settingsKeyInfo{
		get: func(s *Settings) string { return *get(s) },
		set: func(s *Settings, v string) error { *get(s) = v; return nil },
	}
}

// settingsKeys is the authoritative map of all supported settings keys.
// Keys use dotted notation matching the TOML section structure.
var settingsKeys = map[string]settingsKeyInfo{
	"service.url":             stringKey(func(s *Settings) *string { return &s.Service.URL }),
	"service.timeout_seconds": intKey(func(s *Settings) *int { return &s.Service.TimeoutSeconds }),

	"capture.auto_memory": boolKey(func(s *Settings) *bool { return &s.Capture.AutoMemory }),

	"context.integration":               boolKey(func(s *Settings) *bool { return &s.Context.Integration }),
	"context.recent_messages":           boolKey(func(s *Settings) *bool { return &s.Context.RecentMessages }),
	"context.recent_message_count":      intKey(func(s *Settings) *int { return &s.Context.RecentMessageCount }),
	"context.fast_rerank_count":         intKey(func(s *Settings) *int { return &s.Context.FastRerankCount }),
	"context.final_memory_count":        intKey(func(s *Settings) *int { return &s.Context.FinalMemoryCount }),
	"context.use_intelligent_selection": boolKey(func(s *Settings) *bool { return &s.Context.UseIntelligentSelection }),
	"context.max_memories":              intKey(func(s *Settings) *int { return &s.Context.MaxMemories }),
	"context.min_memories":              intKey(func(s *Settings) *int { return &s.Context.MinMemories }),
	"context.min_relevance_score": {
		get: func(s *Settings) string {
			return strconv.FormatFloat(s.Context.MinRelevanceScore, 'f', -1, 64)
		},
		set: func(s *Settings, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid value for context.min_relevance_score: %w", err)
			}
			s.Context.MinRelevanceScore = f
			return nil
		},
	},

	"sync.batch_size": intKey(func(s *Settings) *int { return &s.Sync.BatchSize }),
	"sync.pacing_ms":  intKey(func(s *Settings) *int { return &s.Sync.PacingMs }),

	"server.listen": stringKey(func(s *Settings) *string { return &s.Server.Listen }),

	"stream.enabled": boolKey(func(s *Settings) *bool { return &s.Stream.Enabled }),
	"stream.broker":  stringKey(func(s *Settings) *string { return &s.Stream.Broker }),
	"stream.topic":   stringKey(func(s *Settings) *string { return &s.Stream.Topic }),
}
