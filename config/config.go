// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
	"github.com/stratastor/logger"
	"github.com/stratastor/lrs/internal/constants"
	"gopkg.in/yaml.v3"
)

var (
	instance   *Config
	once       sync.Once
	configPath string // Tracks where the config was loaded from
)

// DriveType maps a configured drive type name onto the drive models that
// implement it, per spec.md §6 (`drive_type "<name>".models`).
type DriveType struct {
	Models []string `mapstructure:"models"`
}

// TapeType maps a tape medium model onto the drive types it can be
// written and read by, per spec.md §6 (`tape_type "<model>".drive_rw`).
type TapeType struct {
	DriveRW []string `mapstructure:"drive_rw"`
}

type Config struct {
	Server struct {
		Port      int    `mapstructure:"port"`
		LogLevel  string `mapstructure:"logLevel"`
		Daemonize bool   `mapstructure:"daemonize"`
	} `mapstructure:"server"`

	Logs struct {
		Path      string `mapstructure:"path"`
		Retention string `mapstructure:"retention"`
		Output    string `mapstructure:"output"` // stdout or file
	} `mapstructure:"logs"`

	Logger struct {
		LogLevel     string `mapstructure:"logLevel"`
		EnableSentry bool   `mapstructure:"enableSentry"`
		SentryDSN    string `mapstructure:"sentryDSN"`
	} `mapstructure:"logger"`

	// LRS holds the scheduler's own configuration, exactly the keys
	// spec.md §6 names.
	LRS struct {
		MountPrefix   string `mapstructure:"mount_prefix"`
		DefaultFamily string `mapstructure:"default_family"`
		LibDevice     string `mapstructure:"lib_device"`
		Policy        string `mapstructure:"policy"` // best_fit | first_fit
	} `mapstructure:"lrs"`

	// DriveType and TapeType back the Compatibility Oracle (pkg/lrs/compat).
	DriveType map[string]DriveType `mapstructure:"drive_type"`
	TapeType  map[string]TapeType  `mapstructure:"tape_type"`

	// DSS is the connection info for the distributed metadata store the
	// scheduler defers to for lock and inventory state.
	DSS struct {
		BaseURL string `mapstructure:"baseURL"`
		Timeout string `mapstructure:"timeout"`
	} `mapstructure:"dss"`

	Development struct {
		Enabled bool `mapstructure:"enabled"`
	} `mapstructure:"development"`

	Environment string `mapstructure:"environment"`
}

// LoadConfig loads the configuration with precedence rules.
func LoadConfig(configFilePath string) *Config {
	once.Do(func() {
		logConfig := logger.Config{
			LogLevel:     "info",
			EnableSentry: false,
			SentryDSN:    "",
		}
		l, err := logger.NewTag(logConfig, "config")
		if err != nil {
			fmt.Printf("Failed to create logger: %v\n", err)
			os.Exit(1)
		}

		viper.Reset()
		viper.SetConfigType("yaml")

		systemConfigPath := filepath.Join(GetConfigDir(), constants.ConfigFileName)

		if configFilePath != "" {
			// 1. Priority: Explicit path from command line
			configPath = configFilePath
		} else if envPath := os.Getenv("LRS_CONFIG"); envPath != "" {
			// 2. Priority: Environment variable
			configPath = envPath
		} else {
			// 3. Priority: Always default to system-wide config
			configPath = systemConfigPath
		}

		l.Info("Using config file", "path", configPath)

		if absPath, err := filepath.Abs(configPath); err == nil {
			configPath = absPath
		}

		viper.SetConfigFile(configPath)

		// Ambient defaults
		viper.SetDefault("environment", "dev")
		viper.SetDefault("server.port", 8420)
		viper.SetDefault("server.logLevel", "debug")
		viper.SetDefault("server.daemonize", false)
		viper.SetDefault("logs.path", "/var/log/lrs/lrs.log")
		viper.SetDefault("logs.retention", "7d")
		viper.SetDefault("logs.output", "stdout")
		viper.SetDefault("logger.logLevel", "debug")
		viper.SetDefault("logger.enableSentry", false)
		viper.SetDefault("logger.sentryDSN", "")
		viper.SetDefault("development.enabled", false)

		// LRS scheduler defaults (spec.md §6)
		viper.SetDefault("lrs.mount_prefix", "/mnt/lrs/")
		viper.SetDefault("lrs.default_family", "tape")
		viper.SetDefault("lrs.lib_device", "/dev/changer")
		viper.SetDefault("lrs.policy", "best_fit")

		// DSS connection defaults
		viper.SetDefault("dss.baseURL", "http://localhost:8080")
		viper.SetDefault("dss.timeout", "10s")

		// Bind environment variables
		viper.AutomaticEnv()
		viper.SetEnvPrefix("LRS")
		viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

		err = viper.ReadInConfig()

		if err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				l.Info(
					"Config file not found, creating default at system path",
					"path",
					systemConfigPath,
				)

				if err := os.MkdirAll(GetConfigDir(), 0755); err != nil {
					l.Error("Failed to create config directory", "err", err)
				}

				var cfg Config
				if err := viper.Unmarshal(&cfg); err != nil {
					l.Error("Failed to unmarshal default configuration", "err", err)
				}

				instance = &cfg
				configPath = systemConfigPath

				if err := SaveConfig(systemConfigPath); err != nil {
					l.Error("Failed to save default configuration", "err", err)
				}
			} else {
				l.Error("Error reading config file", "err", err)

				var cfg Config
				if err := viper.Unmarshal(&cfg); err != nil {
					l.Error("Failed to unmarshal default configuration", "err", err)
				}

				instance = &cfg
			}
		} else {
			l.Info("Config file loaded successfully", "path", viper.ConfigFileUsed())
			configPath = viper.ConfigFileUsed()

			var cfg Config
			if err := viper.Unmarshal(&cfg); err != nil {
				l.Error("Failed to parse configuration", "err", err)
			} else {
				instance = &cfg
			}
		}

		debugCfg := *instance
		l.Debug("Loaded configuration", "config", fmt.Sprintf("%+v", debugCfg))
	})

	return instance
}

// SaveConfig persists the current configuration to a specified path.
func SaveConfig(path string) error {
	if path == "" {
		if os.Geteuid() == 0 {
			if err := os.MkdirAll(GetConfigDir(), 0755); err != nil {
				return fmt.Errorf("failed to create system config directory: %w", err)
			}
			path = filepath.Join(GetConfigDir(), constants.ConfigFileName)
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("failed to get home directory: %w", err)
			}
			userConfigDir := filepath.Join(home, ".lrs")
			if err := os.MkdirAll(userConfigDir, 0755); err != nil {
				return fmt.Errorf("failed to create user config directory: %w", err)
			}
			path = filepath.Join(userConfigDir, constants.ConfigFileName)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configYAML, err := yaml.Marshal(instance)
	if err != nil {
		return fmt.Errorf("failed to serialize configuration: %w", err)
	}

	if err := os.WriteFile(path, configYAML, 0644); err != nil {
		return fmt.Errorf("failed to write configuration to file: %w", err)
	}

	configPath = path

	return nil
}

// GetLoadedConfigPath returns the path of the currently loaded configuration file.
func GetLoadedConfigPath() string {
	return configPath
}

// GetConfig returns the current configuration instance.
func GetConfig() *Config {
	if instance == nil {
		return LoadConfig("")
	}
	return instance
}

func NewLoggerConfig(cfg *Config) logger.Config {
	if cfg == nil {
		return logger.Config{
			LogLevel:     "info",
			EnableSentry: false,
			SentryDSN:    "",
		}
	}

	return logger.Config{
		LogLevel:     cfg.Logger.LogLevel,
		EnableSentry: cfg.Logger.EnableSentry,
		SentryDSN:    cfg.Logger.SentryDSN,
	}
}
