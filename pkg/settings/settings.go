package settings

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/emberco/recall/pkg/dotdir"
)

const (
	settingsFile = "settings.toml"

	// v0 is the alpha version of the settings schema
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

// Configer loads and persists the settings.toml file resolved via dotdir.
type Configer struct {
	ddm        *dotdir.Manager
	targetPath string
}

func NewConfiger(override string) (*Configer, error) {
	cfger := &Configer{}

	cfger.ddm = dotdir.NewManager()
	target, err := cfger.ddm.Target(override)
	if err != nil {
		return nil, err
	}

	// Target either resolves (and creates) a directory or errors, so the
	// settings file path is always known here even before the file exists.
	path := filepath.Join(target, settingsFile)
	_, err = os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	cfger.targetPath = path

	return cfger, nil
}

// ValidSettingsKeys returns the sorted list of all supported settings key names.
func ValidSettingsKeys() []string {
	keys := make([]string, 0, len(settingsKeys))
	for k := range settingsKeys {
		keys = append(keys, k)
	}

	// Return in a stable, logical order matching the TOML section layout.
	ordered := []string{
		"service.url",
		"service.timeout_seconds",
		"capture.auto_memory",
		"context.integration",
		"context.recent_messages",
		"context.recent_message_count",
		"context.fast_rerank_count",
		"context.final_memory_count",
		"context.use_intelligent_selection",
		"context.min_relevance_score",
		"context.max_memories",
		"context.min_memories",
		"sync.batch_size",
		"sync.pacing_ms",
		"server.listen",
		"stream.enabled",
		"stream.broker",
		"stream.topic",
	}

	// Sanity: only return keys that actually exist in the map.
	result := make([]string, 0, len(ordered))
	for _, k := range ordered {
		if _, ok := settingsKeys[k]; ok {
			result = append(result, k)
		}
	}

	// Append any keys in the map that we missed in the ordered list.
	seen := make(map[string]bool, len(result))
	for _, k := range result {
		seen[k] = true
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !seen[k] {
			result = append(result, k)
		}
	}

	return result
}

// IsValidSettingsKey returns true if the given key is a supported settings key.
func IsValidSettingsKey(key string) bool {
	_, ok := settingsKeys[key]
	return ok
}

func (c *Configer) GetTarget() string {
	return c.targetPath
}

// Load loads settings from settings.toml in the target .recall/ directory.
// If the file does not exist, returns NewDefaultSettings() so callers always
// receive fully-populated Settings. Decoding starts from defaults, so fields
// absent from the file (including booleans that default to true) keep their
// default values.
func (c *Configer) Load() (*Settings, error) {
	if c.targetPath == "" {
		return NewDefaultSettings(), nil
	}

	data, err := os.ReadFile(c.targetPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return NewDefaultSettings(), nil
		}
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	return ParseSettingsTOML(data)
}

// Save persists the settings to settings.toml in the target .recall/ directory.
func (c *Configer) Save(s *Settings) error {
	if s == nil {
		return errors.New("cannot save nil settings")
	}

	if c.targetPath == "" {
		return errors.New("cannot save empty target path")
	}

	var buf bytes.Buffer
	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}

	if err := os.WriteFile(c.targetPath, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing settings: %w", err)
	}

	return nil
}

// SetValue loads the settings, sets the given key to the given value, and
// saves them. Returns an error if the key is not a valid settings key.
func (c *Configer) SetValue(key string, value string) error {
	info, ok := settingsKeys[key]
	if !ok {
		return fmt.Errorf("unknown settings key: %q", key)
	}

	s, err := c.Load()
	if err != nil {
		return err
	}

	if err := info.set(s, value); err != nil {
		return err
	}

	return c.Save(s)
}

// GetValue loads the settings and returns the string representation of the
// given key. Returns an error if the key is not a valid settings key.
func (c *Configer) GetValue(key string) (string, error) {
	info, ok := settingsKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown settings key: %q", key)
	}

	s, err := c.Load()
	if err != nil {
		return "", err
	}

	return info.get(s), nil
}

// ApplyKey sets a dotted settings key on s from its string representation.
// Used by callers that mutate an in-memory snapshot instead of the file.
func ApplyKey(s *Settings, key, value string) error {
	info, ok := settingsKeys[key]
	if !ok {
		return fmt.Errorf("unknown settings key: %q", key)
	}
	return info.set(s, value)
}

// ReadKey returns the string representation of a dotted key on s.
func ReadKey(s *Settings, key string) (string, error) {
	info, ok := settingsKeys[key]
	if !ok {
		return "", fmt.Errorf("unknown settings key: %q", key)
	}
	return info.get(s), nil
}

// ParseSettingsTOML parses raw TOML bytes into Settings layered over the
// defaults. Returns an error if the version field is present and not equal
// to CurrentV.
func ParseSettingsTOML(data []byte) (*Settings, error) {
	s := NewDefaultSettings()
	if err := toml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing settings TOML: %w", err)
	}

	if s.Version != 0 && s.Version != CurrentV {
		return nil, fmt.Errorf("unsupported settings version %d (expected %d)", s.Version, CurrentV)
	}

	return s, nil
}
