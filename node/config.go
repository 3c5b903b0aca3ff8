package node

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ChainIDHex string `toml:"chain_id_hex"`
	DataDir    string `toml:"data_dir"`
	LogLevel   string `toml:"log_level"`

	// Protocol timing, in ledger seconds.
	MinExitPeriod    uint64 `toml:"min_exit_period"`
	QuarantinePeriod uint64 `toml:"quarantine_period"`
}

var allowedLogLevels = map[string]struct{}{
	"debug": {},
	"info":  {},
	"warn":  {},
	"error": {},
}

func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".plasma"
	}
	return filepath.Join(home, ".plasma")
}

func DefaultConfig() Config {
	return Config{
		ChainIDHex: "01",
		DataDir:    DefaultDataDir(),
		LogLevel:   "info",

		// One week, matching the canonical deployment. The quarantine for
		// newly registered handlers spans the full period by default.
		MinExitPeriod:    7 * 24 * 3600,
		QuarantinePeriod: 7 * 24 * 3600,
	}
}

// LoadConfig reads a TOML config file and fills unset fields from defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := readFileByPath(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := toml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := ValidateConfig(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.ChainIDHex) == "" {
		return errors.New("chain_id_hex is required")
	}
	if strings.TrimSpace(cfg.DataDir) == "" {
		return errors.New("data_dir is required")
	}
	logLevel := strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if _, ok := allowedLogLevels[logLevel]; !ok {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	if cfg.MinExitPeriod == 0 {
		return errors.New("min_exit_period must be > 0")
	}
	return nil
}
