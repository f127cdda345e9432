package cli

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/laneflow/laneflow/pkg/errors"
	"github.com/laneflow/laneflow/pkg/layout"
)

// fileConfig is the on-disk TOML configuration. Geometry lives under a
// [layout] table so the format has room for future sections.
type fileConfig struct {
	Layout layout.Config `toml:"layout"`
}

// loadConfig reads a TOML config file and returns the geometry settings.
// Keys not present in the file keep their default values.
func loadConfig(path string) (layout.Config, error) {
	cfg := fileConfig{Layout: layout.DefaultConfig()}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return layout.Config{}, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
	}

	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return layout.Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return layout.Config{}, errors.New(errors.ErrCodeInvalidConfig,
			"unknown config key %q in %s", undecoded[0].String(), path)
	}

	if err := validateConfig(cfg.Layout); err != nil {
		return layout.Config{}, err
	}
	return cfg.Layout, nil
}

// validateConfig rejects geometry that cannot produce a drawable diagram.
func validateConfig(cfg layout.Config) error {
	if cfg.NodeWidth <= 0 || cfg.NodeHeight <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "node dimensions must be positive")
	}
	if cfg.HPadding < 0 || cfg.VerticalSpacing <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "spacing values must be positive")
	}
	return nil
}
