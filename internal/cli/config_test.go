package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/laneflow/laneflow/pkg/errors"
	"github.com/laneflow/laneflow/pkg/layout"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "laneflow.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
[layout]
node_width = 200
inter_pool_gap = 150
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}

	if cfg.NodeWidth != 200 {
		t.Errorf("NodeWidth = %v, want 200", cfg.NodeWidth)
	}
	if cfg.InterPoolGap != 150 {
		t.Errorf("InterPoolGap = %v, want 150", cfg.InterPoolGap)
	}
	// Unset keys keep their defaults
	if cfg.NodeHeight != layout.DefaultConfig().NodeHeight {
		t.Errorf("NodeHeight = %v, want default %v", cfg.NodeHeight, layout.DefaultConfig().NodeHeight)
	}
}

func TestLoadConfigEmptyFile(t *testing.T) {
	path := writeConfig(t, "")

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg != layout.DefaultConfig() {
		t.Errorf("empty config should yield defaults, got %+v", cfg)
	}
}

func TestLoadConfigUnknownKey(t *testing.T) {
	path := writeConfig(t, `
[layout]
node_widht = 200
`)

	_, err := loadConfig(path)
	if err == nil {
		t.Fatal("unknown key should fail")
	}
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error code = %v, want INVALID_CONFIG", errors.GetCode(err))
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := loadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("missing file should fail")
	}
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %v, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestLoadConfigInvalidGeometry(t *testing.T) {
	path := writeConfig(t, `
[layout]
node_width = -10
`)

	_, err := loadConfig(path)
	if err == nil {
		t.Fatal("negative node width should fail")
	}
	if !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("error code = %v, want INVALID_CONFIG", errors.GetCode(err))
	}
}
