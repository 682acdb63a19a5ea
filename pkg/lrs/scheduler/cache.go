// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package scheduler owns the Device Cache and the orchestrator
// operations clients call into: write_prepare, read_prepare, format,
// io_complete, resource_release and locate.
package scheduler

import (
	"context"
	"sort"
	"sync"

	"github.com/stratastor/logger"
	"github.com/stratastor/lrs/pkg/lrs/dss"
	"github.com/stratastor/lrs/pkg/lrs/ldm"
	"github.com/stratastor/lrs/pkg/lrs/types"
)

// DeviceCache holds the scheduler's local view of this host's devices,
// refreshed from DSS and cross-checked against the LDM adapters.
type DeviceCache struct {
	mu      sync.RWMutex
	devices map[string]*types.Device // keyed by serial

	dss      dss.Client
	adapters ldm.Adapters
	log      logger.Logger
	host     string
	family   string
}

func NewDeviceCache(client dss.Client, adapters ldm.Adapters, log logger.Logger, host, family string) *DeviceCache {
	return &DeviceCache{
		devices:  make(map[string]*types.Device),
		dss:      client,
		adapters: adapters,
		log:      log,
		host:     host,
		family:   family,
	}
}

// Snapshot returns a shallow copy of the current device pointers,
// ordered by serial, for consumers (picker, freeing) that only read.
func (c *DeviceCache) Snapshot() []*types.Device {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]*types.Device, 0, len(c.devices))
	for _, d := range c.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Serial < out[j].Serial })
	return out
}

// snapshotMap returns a shallow copy of the cache keyed by serial, for
// the debounced state snapshot writer.
func (c *DeviceCache) snapshotMap() map[string]*types.Device {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]*types.Device, len(c.devices))
	for k, v := range c.devices {
		out[k] = v
	}
	return out
}

// Refresh is idempotent: the first call populates the cache from a
// filtered DSS device query; later calls refresh each known entry in
// place. Per-device refresh errors demote that device to failed and
// are logged, never returned.
func (c *DeviceCache) Refresh(ctx context.Context) error {
	notLocked := false
	rows, err := c.dss.GetDevices(ctx, types.DeviceFilter{
		Family:      c.family,
		Host:        c.host,
		AdminLocked: &notLocked,
	})
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		seen[row.Serial] = struct{}{}
		existing, ok := c.devices[row.Serial]
		if !ok {
			c.devices[row.Serial] = row
			c.refreshEntryLocked(ctx, row)
			continue
		}
		existing.Model = row.Model
		existing.AdminLocked = row.AdminLocked
		c.refreshEntryLocked(ctx, existing)
	}

	for serial := range c.devices {
		if _, ok := seen[serial]; !ok {
			delete(c.devices, serial)
		}
	}
	return nil
}

// AddDevice registers a single newly discovered device and refreshes
// just that entry.
func (c *DeviceCache) AddDevice(ctx context.Context, info *types.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.devices[info.Serial] = info
	c.refreshEntryLocked(ctx, info)
}

// refreshEntryLocked runs the per-device refresh pipeline. Caller must
// hold c.mu.
func (c *DeviceCache) refreshEntryLocked(ctx context.Context, d *types.Device) {
	path, err := c.adapters.Device.Lookup(ctx, d.Serial)
	if err != nil {
		c.log.Warn("device lookup failed, marking failed", "serial", d.Serial, "err", err)
		d.Status = types.DeviceFailed
		return
	}
	d.DevicePath = path

	info, err := c.adapters.Device.Query(ctx, path)
	if err != nil {
		c.log.Warn("device query failed, marking failed", "serial", d.Serial, "err", err)
		d.Status = types.DeviceFailed
		return
	}
	if (d.Model != "" && info.Model != "" && d.Model != info.Model) ||
		(d.Serial != "" && info.Serial != "" && d.Serial != info.Serial) {
		c.log.Warn("device identity disagrees with DSS, marking failed", "serial", d.Serial, "os_model", info.Model, "os_serial", info.Serial)
		d.Status = types.DeviceFailed
		return
	}
	d.OSModel = info.Model
	d.OSSerial = info.Serial

	drive, err := c.adapters.Library.DriveLookup(ctx, d.LibraryAddress)
	if err != nil {
		c.log.Warn("drive lookup failed, marking failed", "serial", d.Serial, "err", err)
		d.Status = types.DeviceFailed
		return
	}
	d.Full = drive.Full

	if !drive.Full {
		d.Status = types.DeviceEmpty
		d.Medium = nil
		d.ContainedMediumID = ""
		return
	}

	d.ContainedMediumID = drive.MediumID
	medium, err := c.dss.GetMedium(ctx, drive.MediumID)
	if err != nil {
		c.log.Warn("medium lookup failed, marking device failed", "serial", d.Serial, "medium", drive.MediumID, "err", err)
		d.Status = types.DeviceFailed
		return
	}
	d.Medium = medium

	if mountPath, ok, err := c.adapters.FS.Mounted(ctx, path); err == nil && ok {
		d.MountPath = mountPath
		d.Status = types.DeviceMounted
	} else {
		d.MountPath = ""
		d.Status = types.DeviceLoaded
	}
}
