// Copyright 2024 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

var (
	configDir string // Directory for configuration files
	stateDir  string // Directory for the local device-cache snapshot
	mountDir  string // Root directory under which media get mounted
)

func init() {
	if os.Geteuid() == 0 {
		configDir = "/etc/lrs"
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(fmt.Sprintf("failed to get home directory: %v", err))
		}
		configDir = filepath.Join(homeDir, ".lrs")
	}

	stateDir = filepath.Join(configDir, "state")
	mountDir = filepath.Join(configDir, "mnt")

	if err := EnsureDirectories(); err != nil {
		panic(fmt.Sprintf("failed to ensure configuration directories: %v", err))
	}
}

// GetConfigDir returns the appropriate configuration directory.
// If running as root, it returns the system config directory.
// Otherwise, it returns the user config directory.
func GetConfigDir() string {
	return configDir
}

// GetStateDir returns the directory holding the scheduler's local
// device-cache snapshot.
func GetStateDir() string {
	return stateDir
}

// GetMountDir returns the root directory under which the scheduler mounts
// directory-backed media.
func GetMountDir() string {
	return mountDir
}

// EnsureDirectories creates necessary directories if they do not exist
func EnsureDirectories() error {
	dirs := []string{
		configDir,
		stateDir,
		mountDir,
	}

	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
