package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Env vars consumed by both the client and the spawned daemon process.
const (
	EnvDataDir    = "YARU_DATA_DIR"
	EnvSocketPath = "YARU_SOCKET_PATH"
)

// Load merges defaults, the config file and environment overrides, in that
// order. A missing config file is not an error.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if err := loadFile(Path(), cfg); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	if v := os.Getenv(EnvDataDir); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv(EnvSocketPath); v != "" {
		cfg.SocketPath = v
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	if _, err := os.Stat(path); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return err
	}
	return v.Unmarshal(cfg)
}

// Path returns the config file location, ~/.yaru/config.yaml.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".yaru", "config.yaml")
}
