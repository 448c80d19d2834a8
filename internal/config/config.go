package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"github.com/javanhut/gitlet/internal/refs"
)

// FileName is the config file inside the control directory.
const FileName = "config.toml"

// Storage engines for refs, staging and the commit index.
const (
	StorageFiles = "files"
	StorageBolt  = "bolt"
)

// Object payload codecs.
const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
)

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrUnknownKey    = errors.New("unknown config key")
	ErrFixedKey      = errors.New("config key is fixed when the repository is created")
)

// Config represents repository configuration
type Config struct {
	Core  CoreConfig  `toml:"core"`
	Color ColorConfig `toml:"color"`
}

// CoreConfig holds storage settings fixed at init
type CoreConfig struct {
	DefaultBranch string `toml:"default_branch"`
	Storage       string `toml:"storage"`
	Compression   string `toml:"compression"`
}

// ColorConfig holds color settings
type ColorConfig struct {
	UI bool `toml:"ui"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			DefaultBranch: "master",
			Storage:       StorageFiles,
			Compression:   CompressionNone,
		},
		Color: ColorConfig{
			UI: false,
		},
	}
}

// Path returns the config file path for a control directory.
func Path(controlDir string) string {
	return filepath.Join(controlDir, FileName)
}

// Validate rejects unknown storage engines and codecs.
func (c *Config) Validate() error {
	switch c.Core.Storage {
	case StorageFiles, StorageBolt:
	default:
		return fmt.Errorf("%w: core.storage %q (want %q or %q)", ErrInvalidConfig, c.Core.Storage, StorageFiles, StorageBolt)
	}
	switch c.Core.Compression {
	case CompressionNone, CompressionZstd:
	default:
		return fmt.Errorf("%w: core.compression %q (want %q or %q)", ErrInvalidConfig, c.Core.Compression, CompressionNone, CompressionZstd)
	}
	if err := refs.ValidateBranchName(c.Core.DefaultBranch); err != nil {
		return fmt.Errorf("%w: core.default_branch: %w", ErrInvalidConfig, err)
	}
	return nil
}

// Load reads the config file of controlDir. A missing file yields the
// defaults; missing keys keep their default values.
func Load(afs afero.Fs, controlDir string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := afero.ReadFile(afs, Path(controlDir))
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var fileCfg Config
	md, err := toml.Decode(string(data), &fileCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	mergeConfig(cfg, &fileCfg, md)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to the config file of controlDir.
func Save(afs afero.Fs, controlDir string, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := afs.MkdirAll(controlDir, 0755); err != nil {
		return fmt.Errorf("failed to create control directory: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return afero.WriteFile(afs, Path(controlDir), buf.Bytes(), 0644)
}

// GetValue retrieves a configuration value by key (e.g., "core.storage")
func (c *Config) GetValue(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "core":
		switch field {
		case "default_branch":
			return c.Core.DefaultBranch, nil
		case "storage":
			return c.Core.Storage, nil
		case "compression":
			return c.Core.Compression, nil
		default:
			return "", fmt.Errorf("%w: core.%s", ErrUnknownKey, field)
		}
	case "color":
		switch field {
		case "ui":
			return strconv.FormatBool(c.Color.UI), nil
		default:
			return "", fmt.Errorf("%w: color.%s", ErrUnknownKey, field)
		}
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
}

// SetValue sets a configuration value by key. Storage settings only take
// effect for new repositories and cannot be changed afterwards.
func (c *Config) SetValue(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "core":
		switch field {
		case "default_branch":
			c.Core.DefaultBranch = value
		case "storage", "compression":
			return fmt.Errorf("%w: core.%s", ErrFixedKey, field)
		default:
			return fmt.Errorf("%w: core.%s", ErrUnknownKey, field)
		}
	case "color":
		switch field {
		case "ui":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("%w: color.ui: %w", ErrInvalidConfig, err)
			}
			c.Color.UI = b
		default:
			return fmt.Errorf("%w: color.%s", ErrUnknownKey, field)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return c.Validate()
}

func splitKey(key string) (string, string, error) {
	section, field, ok := strings.Cut(key, ".")
	if !ok || section == "" || field == "" || strings.Contains(field, ".") {
		return "", "", fmt.Errorf("%w: %s (expected format: section.key)", ErrUnknownKey, key)
	}
	return section, field, nil
}

// mergeConfig merges source config into destination config
// Only keys present in the file override destination
func mergeConfig(dst, src *Config, md toml.MetaData) {
	if md.IsDefined("core", "default_branch") {
		dst.Core.DefaultBranch = src.Core.DefaultBranch
	}
	if md.IsDefined("core", "storage") {
		dst.Core.Storage = src.Core.Storage
	}
	if md.IsDefined("core", "compression") {
		dst.Core.Compression = src.Core.Compression
	}
	if md.IsDefined("color", "ui") {
		dst.Color.UI = src.Color.UI
	}
}
