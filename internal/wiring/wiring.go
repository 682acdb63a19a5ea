// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package wiring builds a fully configured Scheduler from the loaded
// configuration, the one construction path shared by the server command
// and every one-shot CLI operation so they never drift from each other.
package wiring

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/stratastor/logger"
	"github.com/stratastor/lrs/config"
	"github.com/stratastor/lrs/internal/constants"
	"github.com/stratastor/lrs/pkg/lrs/compat"
	"github.com/stratastor/lrs/pkg/lrs/dss"
	"github.com/stratastor/lrs/pkg/lrs/ldm"
	"github.com/stratastor/lrs/pkg/lrs/scheduler"
)

// NewScheduler constructs a Scheduler wired against cfg: a REST DSS
// client, local Library/Device/FS/IO adapters shelling out through
// internal/command, the Compatibility Oracle built from cfg's
// drive_type/tape_type tables, and the debounced local state snapshot
// under config.GetStateDir().
func NewScheduler(cfg *config.Config, log logger.Logger) (*scheduler.Scheduler, error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, fmt.Errorf("resolve hostname: %w", err)
	}

	timeout := 10 * time.Second
	if cfg.DSS.Timeout != "" {
		if d, err := time.ParseDuration(cfg.DSS.Timeout); err == nil {
			timeout = d
		}
	}

	client := dss.NewRESTClient(cfg.DSS.BaseURL, timeout)
	adapters := ldm.Adapters{
		Device:  ldm.NewLocalDevice(log),
		Library: ldm.NewLocalLibrary(log, cfg.LRS.LibDevice),
		FS:      ldm.NewLocalFS(log),
		IO:      ldm.NewLocalIO(log),
	}
	oracle := compat.NewOracle(cfg)

	opts := scheduler.Options{
		Host:        host,
		Family:      cfg.LRS.DefaultFamily,
		MountPrefix: cfg.LRS.MountPrefix,
		Policy:      scheduler.Policy(cfg.LRS.Policy),
		StatePath:   filepath.Join(config.GetStateDir(), constants.StateFileName),
	}

	return scheduler.New(client, adapters, oracle, log, opts), nil
}
