package cli

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/bramp/objectgraph/pkg/errors"
	"github.com/bramp/objectgraph/pkg/source"
)

// Config is the contents of config.toml. Command-line flags override it.
//
//	max_nodes = 5000
//	exclude = ["string", "number"]
//	include_static = false
//	include_transient = false
//	cache_ttl = "24h"
//	redis_addr = "localhost:6379"
//	listen = ":8080"
type Config struct {
	MaxNodes         int           `toml:"max_nodes"`
	Exclude          []string      `toml:"exclude"`
	IncludeStatic    bool          `toml:"include_static"`
	IncludeTransient bool          `toml:"include_transient"`
	CacheTTL         time.Duration `toml:"cache_ttl"`
	RedisAddr        string        `toml:"redis_addr"`
	Listen           string        `toml:"listen"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		MaxNodes: 10000,
		CacheTTL: 24 * time.Hour,
		Listen:   ":8080",
	}
}

// Validate checks value ranges and exclusion names.
func (c Config) Validate() error {
	if c.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_nodes must not be negative, got %d", c.MaxNodes)
	}
	if c.CacheTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache_ttl must not be negative, got %s", c.CacheTTL)
	}
	if _, err := source.Types(c.Exclude); err != nil {
		return err
	}
	return nil
}

// LoadConfig reads the configuration at path over the defaults. An empty
// path reads the default location, where a missing file is not an error.
// Unknown keys are logged and ignored.
func LoadConfig(path string, logger *log.Logger) (Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		dir, err := configDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(dir, "config.toml")
	} else if err := errors.ValidatePath(path); err != nil {
		return cfg, err
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
			}
			return DefaultConfig(), nil
		}
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}

	for _, key := range md.Undecoded() {
		logger.Warn("unknown config key", "key", key.String(), "file", path)
	}
	logger.Debug("loaded config", "file", path)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
