package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the fsagen configuration file
// (~/.config/fsagen/config.yaml). Explicit CLI flags win over config
// values.
type Config struct {
	OutputDir string `yaml:"output_dir"`
	Preset    string `yaml:"preset"`

	Samples *int64  `yaml:"samples"`
	Seed    *uint64 `yaml:"seed"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fsagen", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file
// doesn't exist or fails to parse.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// applyConfig fills command variables from config values when the
// corresponding flag was not explicitly set.
func applyConfig(c *cli.Command, cfg Config, outDir *string) {
	if cfg.OutputDir != "" && outDir != nil && !c.IsSet("out-dir") {
		*outDir = cfg.OutputDir
	}
	if cfg.Preset != "" && !c.IsSet("preset") {
		presetName = cfg.Preset
	}
	if cfg.Samples != nil && !c.IsSet("samples") {
		sampleCount = *cfg.Samples
	}
	if cfg.Seed != nil && !c.IsSet("seed") {
		seed = *cfg.Seed
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyServeConfig applies config defaults to the serve command.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}
