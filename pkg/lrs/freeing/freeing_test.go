// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package freeing

import (
	"context"
	"testing"

	"github.com/stratastor/lrs/config"
	"github.com/stratastor/lrs/pkg/lrs/compat"
	"github.com/stratastor/lrs/pkg/lrs/dss"
	"github.com/stratastor/lrs/pkg/lrs/ldm"
	"github.com/stratastor/lrs/pkg/lrs/mount"
	"github.com/stratastor/lrs/pkg/lrs/picker"
	"github.com/stratastor/lrs/pkg/lrs/types"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	devices []*types.Device
}

func (c *fakeCache) Snapshot() []*types.Device { return c.devices }

func newPlanner(t *testing.T) (*Planner, *dss.Fake, *ldm.Sim) {
	t.Helper()
	fake := dss.NewFake()
	sim := ldm.NewSim()
	cfg := &config.Config{
		DriveType: map[string]config.DriveType{"lto8": {Models: []string{"ULT3580-TD8"}}},
		TapeType:  map[string]config.TapeType{"LTO8": {DriveRW: []string{"lto8"}}},
	}
	oracle := compat.NewOracle(cfg)
	pk := picker.New(fake, oracle)
	mgr := mount.NewManager(ldm.Adapters{Device: sim, Library: sim, FS: sim, IO: sim}, "/mnt/")
	return New(pk, mgr, oracle, fake), fake, sim
}

func TestFreeEvictsTightestFittingOccupiedDriveAndReleasesItsLock(t *testing.T) {
	ctx := context.Background()
	planner, fake, sim := newPlanner(t)

	sim.SeedDrive("drive-a", "/dev/DRV1", ldm.DeviceInfo{Model: "ULT3580-TD8", Serial: "DRV1"})
	sim.SeedDrive("drive-b", "/dev/DRV2", ldm.DeviceInfo{Model: "ULT3580-TD8", Serial: "DRV2"})

	tight := &types.Medium{Family: "tape", ID: "VOL1", Model: "LTO8", Stats: types.MediumStats{PhysFreeBytes: 100}}
	loose := &types.Medium{Family: "tape", ID: "VOL2", Model: "LTO8", Stats: types.MediumStats{PhysFreeBytes: 5000}}
	fake.SeedMedium(tight)
	fake.SeedMedium(loose)
	sim.SeedMedium("drive-a", "VOL1")
	sim.SeedMedium("drive-b", "VOL2")

	d1 := &types.Device{Family: "tape", Serial: "DRV1", Model: "ULT3580-TD8", Status: types.DeviceLoaded, DevicePath: "/dev/DRV1", LibraryAddress: "drive-a", Medium: tight, ContainedMediumID: "VOL1", Full: true}
	d2 := &types.Device{Family: "tape", Serial: "DRV2", Model: "ULT3580-TD8", Status: types.DeviceLoaded, DevicePath: "/dev/DRV2", LibraryAddress: "drive-b", Medium: loose, ContainedMediumID: "VOL2", Full: true}
	cache := &fakeCache{devices: []*types.Device{d1, d2}}

	incoming := &types.Medium{Family: "tape", ID: "VOL3", Model: "LTO8"}
	freed, err := planner.Free(ctx, cache, "me", incoming)
	require.NoError(t, err)
	require.Equal(t, "DRV1", freed.Serial)
	require.Equal(t, types.DeviceEmpty, freed.Status)

	require.NoError(t, fake.LockMedium(ctx, "VOL1", "someone-else"))
}

func TestFreeReturnsNoDeviceWhenNoCompatibleDriveTypeExists(t *testing.T) {
	ctx := context.Background()
	planner, _, _ := newPlanner(t)

	cache := &fakeCache{devices: nil}
	incoming := &types.Medium{Family: "tape", ID: "VOL3", Model: "LTO8"}

	_, err := planner.Free(ctx, cache, "me", incoming)
	require.ErrorIs(t, err, types.ErrNoDevice)
}
