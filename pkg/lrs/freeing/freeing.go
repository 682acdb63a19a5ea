// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package freeing plans drive eviction when a write needs a compatible
// device and the cache currently has none available.
package freeing

import (
	"context"

	"github.com/stratastor/lrs/pkg/lrs/compat"
	"github.com/stratastor/lrs/pkg/lrs/dss"
	"github.com/stratastor/lrs/pkg/lrs/mount"
	"github.com/stratastor/lrs/pkg/lrs/picker"
	"github.com/stratastor/lrs/pkg/lrs/types"
)

// Planner evicts an occupied, compatible drive to make room for a
// pending write.
type Planner struct {
	picker *picker.Picker
	mount  *mount.Manager
	oracle *compat.Oracle
	dss    dss.Client
}

func New(p *picker.Picker, m *mount.Manager, oracle *compat.Oracle, client dss.Client) *Planner {
	return &Planner{picker: p, mount: m, oracle: oracle, dss: client}
}

// Free evicts a compatible, occupied drive for medium's family, umounts
// and unloads it, and returns the now-empty device. Restart is bounded
// by the cache size via the picker's own exclusion bitmap growth.
func (p *Planner) Free(ctx context.Context, cache picker.Cache, owner string, medium *types.Medium) (*types.Device, error) {
	excluded := map[string]struct{}{}

	for attempts := len(cache.Snapshot()); attempts >= 0; attempts-- {
		dev, err := p.picker.Pick(ctx, cache, picker.Options{
			Family: medium.Family,
			Status: []types.DeviceStatus{types.DeviceLoaded, types.DeviceMounted},
			Medium: medium,
			Rank:   picker.DriveToFree,
			Owner:  owner,
			ExcludeSerials: excluded,
		})
		if err != nil {
			if err == types.ErrNoDevice {
				if p.anyCompatibleDriveType(cache, medium) {
					return nil, types.ErrRetryPossible
				}
				return nil, types.ErrNoDevice
			}
			return nil, err
		}

		evicted, err := p.mount.Unload(ctx, dev)
		if err != nil {
			dev.Status = types.DeviceFailed
			excluded[dev.Serial] = struct{}{}
			continue
		}
		_ = p.dss.UnlockMedium(ctx, evicted.ID, owner)
		return dev, nil
	}

	return nil, types.ErrRetryPossible
}

func (p *Planner) anyCompatibleDriveType(cache picker.Cache, medium *types.Medium) bool {
	for _, d := range cache.Snapshot() {
		if d.Family == medium.Family && p.oracle.CanReadWrite(medium.Model, *d) {
			return true
		}
	}
	return false
}
