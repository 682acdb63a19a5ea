// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package picker selects a device from the cache for a pending
// operation, acquiring its DSS lock (and its loaded medium's lock, if
// any) in the medium-then-device order.
package picker

import (
	"context"
	"sort"

	"github.com/stratastor/lrs/pkg/lrs/compat"
	"github.com/stratastor/lrs/pkg/lrs/dss"
	"github.com/stratastor/lrs/pkg/lrs/types"
)

// Cache is the view the picker needs of the scheduler's device cache.
// Defined here, at the point of use, so picker never imports scheduler
// (scheduler imports picker, not the other way around).
type Cache interface {
	Snapshot() []*types.Device
}

// RankPolicy orders candidate devices; the first entry is tried first.
type RankPolicy func(candidates []*types.Device) []*types.Device

// Options configures a Pick call.
type Options struct {
	Family      string
	Status      []types.DeviceStatus // empty means any status
	Size        uint64                // checked against a loaded/mounted device's medium free bytes; 0 skips the check
	Tags        []string
	Medium      *types.Medium // non-nil when the device must take this medium
	Rank        RankPolicy
	Owner       string
	ExcludeSerials map[string]struct{} // failed-to-acquire bitmap
}

// FirstFit returns candidates unmodified, preferring cache order.
func FirstFit(candidates []*types.Device) []*types.Device { return candidates }

// BestFit orders devices whose loaded medium fits by ascending free
// space — the tightest fit first — per spec.md §4.5; devices with no
// loaded medium (nothing to measure against) sort last.
func BestFit(candidates []*types.Device) []*types.Device {
	out := make([]*types.Device, len(candidates))
	copy(out, candidates)
	sort.SliceStable(out, func(i, j int) bool {
		return freeSpaceOf(out[i]) < freeSpaceOf(out[j])
	})
	return out
}

func freeSpaceOf(d *types.Device) uint64 {
	if d.Medium == nil {
		return ^uint64(0)
	}
	return d.Medium.Stats.PhysFreeBytes
}

// Any is an alias of FirstFit used when rank doesn't matter.
func Any(candidates []*types.Device) []*types.Device { return candidates }

// DriveToFree ranks occupied (loaded or mounted) devices by ascending
// free space on their resident medium — the drive-freeing planner
// evicts the device with the LEAST free space first, per spec.md §4.7 —
// with empty devices (nothing to evict) sorted last.
func DriveToFree(candidates []*types.Device) []*types.Device {
	out := make([]*types.Device, 0, len(candidates))
	var occupied, empty []*types.Device
	for _, d := range candidates {
		if d.Status == types.DeviceEmpty {
			empty = append(empty, d)
		} else {
			occupied = append(occupied, d)
		}
	}
	sort.SliceStable(occupied, func(i, j int) bool {
		return freeSpaceOf(occupied[i]) < freeSpaceOf(occupied[j])
	})
	out = append(out, occupied...)
	out = append(out, empty...)
	return out
}

// Picker acquires locks on a chosen device (and its medium, if any) via
// DSS, retrying across the cache on contention.
type Picker struct {
	dss    dss.Client
	oracle *compat.Oracle
}

func New(client dss.Client, oracle *compat.Oracle) *Picker {
	return &Picker{dss: client, oracle: oracle}
}

// Pick filters cache by opts, ranks the result, and tries to acquire
// locks top-down, medium first then device, until one candidate
// succeeds or every candidate has failed.
func (p *Picker) Pick(ctx context.Context, cache Cache, opts Options) (*types.Device, error) {
	excluded := opts.ExcludeSerials
	if excluded == nil {
		excluded = map[string]struct{}{}
	}

	all := cache.Snapshot()
	var candidates []*types.Device
	for _, d := range all {
		if _, skip := excluded[d.Serial]; skip {
			continue
		}
		if !p.matches(d, opts) {
			continue
		}
		candidates = append(candidates, d)
	}
	if len(candidates) == 0 {
		return nil, types.ErrNoDevice
	}

	rank := opts.Rank
	if rank == nil {
		rank = FirstFit
	}
	candidates = rank(candidates)

	tried := map[string]struct{}{}
	for {
		var next *types.Device
		for _, d := range candidates {
			if _, done := tried[d.Serial]; done {
				continue
			}
			next = d
			break
		}
		if next == nil {
			return nil, types.ErrRetryPossible
		}
		tried[next.Serial] = struct{}{}

		if !next.Available() {
			continue
		}

		if next.Medium != nil && !next.Medium.Lock.IsHeldByMe() {
			if err := p.dss.LockMedium(ctx, next.Medium.ID, opts.Owner); err != nil {
				if err == types.ErrRetryPossible {
					continue
				}
				return nil, err
			}
			next.Medium.Lock = types.HeldByMe(opts.Owner)
		}

		if err := p.dss.LockDevice(ctx, next.Serial, opts.Owner); err != nil {
			if next.Medium != nil {
				_ = p.dss.UnlockMedium(ctx, next.Medium.ID, opts.Owner)
				next.Medium.Lock = types.External()
			}
			if err == types.ErrRetryPossible {
				continue
			}
			return nil, err
		}
		next.LockedLocal = true
		return next, nil
	}
}

func (p *Picker) matches(d *types.Device, opts Options) bool {
	if opts.Family != "" && d.Family != opts.Family {
		return false
	}
	if len(opts.Status) > 0 {
		found := false
		for _, s := range opts.Status {
			if d.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if opts.Medium != nil {
		if p.oracle != nil && !p.oracle.CanReadWrite(opts.Medium.Model, *d) {
			return false
		}
	}
	if d.Status == types.DeviceLoaded || d.Status == types.DeviceMounted {
		if d.Medium == nil {
			return false
		}
		if opts.Size > 0 && d.Medium.Stats.PhysFreeBytes < opts.Size {
			return false
		}
		if !d.Medium.HasTags(opts.Tags) {
			return false
		}
	}
	return true
}
