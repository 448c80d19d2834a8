package config

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/javanhut/gitlet/internal/refs"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Core.DefaultBranch != "master" {
		t.Errorf("default branch = %q", cfg.Core.DefaultBranch)
	}
	if cfg.Core.Storage != StorageFiles || cfg.Core.Compression != CompressionNone {
		t.Errorf("defaults = %+v", cfg.Core)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(afero.NewMemMapFs(), "/repo/.gitlet")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("Load without a file = %+v, want defaults", cfg)
	}
}

func TestSaveLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	cfg := DefaultConfig()
	cfg.Core.Storage = StorageBolt
	cfg.Core.Compression = CompressionZstd
	cfg.Core.DefaultBranch = "main"
	cfg.Color.UI = true

	if err := Save(fs, "/repo/.gitlet", cfg); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	data, err := afero.ReadFile(fs, "/repo/.gitlet/config.toml")
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if !strings.Contains(string(data), "[core]") || !strings.Contains(string(data), `storage = "bolt"`) {
		t.Errorf("unexpected config file:\n%s", data)
	}

	got, err := Load(fs, "/repo/.gitlet")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *got != *cfg {
		t.Errorf("Load = %+v, want %+v", got, cfg)
	}
}

func TestLoadPartialFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/r/.gitlet/config.toml", []byte("[core]\ncompression = \"zstd\"\n"), 0644)

	cfg, err := Load(fs, "/r/.gitlet")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Core.Compression != CompressionZstd {
		t.Errorf("compression = %q", cfg.Core.Compression)
	}
	if cfg.Core.Storage != StorageFiles || cfg.Core.DefaultBranch != "master" {
		t.Errorf("missing keys should keep defaults: %+v", cfg.Core)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	fs := afero.NewMemMapFs()
	afero.WriteFile(fs, "/a/config.toml", []byte("[core]\nstorage = \"cloud\"\n"), 0644)
	if _, err := Load(fs, "/a"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	afero.WriteFile(fs, "/b/config.toml", []byte("[core\n"), 0644)
	if _, err := Load(fs, "/b"); err == nil {
		t.Error("expected parse error")
	}

	bad := DefaultConfig()
	bad.Core.Compression = "lz4"
	if err := Save(fs, "/c", bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Save of invalid config: expected ErrInvalidConfig, got %v", err)
	}
}

func TestGetSetValue(t *testing.T) {
	cfg := DefaultConfig()

	if v, err := cfg.GetValue("core.storage"); err != nil || v != "files" {
		t.Errorf("GetValue(core.storage) = %q, %v", v, err)
	}
	if err := cfg.SetValue("color.ui", "true"); err != nil {
		t.Fatalf("SetValue failed: %v", err)
	}
	if v, _ := cfg.GetValue("color.ui"); v != "true" {
		t.Errorf("color.ui = %q", v)
	}
	if err := cfg.SetValue("core.default_branch", "trunk"); err != nil {
		t.Fatal(err)
	}
	if cfg.Core.DefaultBranch != "trunk" {
		t.Errorf("default branch = %q", cfg.Core.DefaultBranch)
	}

	for _, key := range []string{"core", "core.", "nope.x", "core.editor", "a.b.c"} {
		if _, err := cfg.GetValue(key); !errors.Is(err, ErrUnknownKey) {
			t.Errorf("GetValue(%q): expected ErrUnknownKey, got %v", key, err)
		}
		if err := cfg.SetValue(key, "x"); !errors.Is(err, ErrUnknownKey) {
			t.Errorf("SetValue(%q): expected ErrUnknownKey, got %v", key, err)
		}
	}
	if err := cfg.SetValue("core.storage", "bolt"); !errors.Is(err, ErrFixedKey) {
		t.Errorf("storage must not be settable after init, got %v", err)
	}
	if err := cfg.SetValue("color.ui", "maybe"); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("non-boolean color.ui: expected ErrInvalidConfig, got %v", err)
	}
	if err := cfg.SetValue("core.default_branch", "../bad"); !errors.Is(err, ErrInvalidConfig) || !errors.Is(err, refs.ErrInvalidBranchName) {
		t.Errorf("bad default branch: got %v", err)
	}
	if err := cfg.SetValue("core.default_branch", ""); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("empty default branch: expected ErrInvalidConfig, got %v", err)
	}
}
