// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package picker

import (
	"context"
	"testing"

	"github.com/stratastor/lrs/pkg/lrs/dss"
	"github.com/stratastor/lrs/pkg/lrs/types"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	devices []*types.Device
}

func (c *fakeCache) Snapshot() []*types.Device { return c.devices }

func newDevice(serial string, status types.DeviceStatus, medium *types.Medium) *types.Device {
	return &types.Device{
		Family: "tape",
		Serial: serial,
		Model:  "ULT3580-TD8",
		Status: status,
		Medium: medium,
	}
}

func TestPickSkipsExternallyLockedDeviceAndTakesNext(t *testing.T) {
	ctx := context.Background()
	fake := dss.NewFake()
	d1 := newDevice("DRV1", types.DeviceEmpty, nil)
	d2 := newDevice("DRV2", types.DeviceEmpty, nil)
	fake.SeedDevice(d1)
	fake.SeedDevice(d2)
	require.NoError(t, fake.LockDevice(ctx, "DRV1", "rival"))

	p := New(fake, nil)
	cache := &fakeCache{devices: []*types.Device{d1, d2}}

	got, err := p.Pick(ctx, cache, Options{Family: "tape", Status: []types.DeviceStatus{types.DeviceEmpty}, Owner: "me"})
	require.NoError(t, err)
	require.Equal(t, "DRV2", got.Serial)
}

func TestPickReturnsNoDeviceWhenNothingMatchesFilter(t *testing.T) {
	ctx := context.Background()
	fake := dss.NewFake()
	d1 := newDevice("DRV1", types.DeviceMounted, nil)
	fake.SeedDevice(d1)

	p := New(fake, nil)
	cache := &fakeCache{devices: []*types.Device{d1}}

	_, err := p.Pick(ctx, cache, Options{Family: "tape", Status: []types.DeviceStatus{types.DeviceEmpty}, Owner: "me"})
	require.ErrorIs(t, err, types.ErrNoDevice)
}

func TestPickReturnsRetryPossibleWhenAllCandidatesFailToLock(t *testing.T) {
	ctx := context.Background()
	fake := dss.NewFake()
	d1 := newDevice("DRV1", types.DeviceEmpty, nil)
	fake.SeedDevice(d1)
	require.NoError(t, fake.LockDevice(ctx, "DRV1", "rival"))

	p := New(fake, nil)
	cache := &fakeCache{devices: []*types.Device{d1}}

	_, err := p.Pick(ctx, cache, Options{Family: "tape", Status: []types.DeviceStatus{types.DeviceEmpty}, Owner: "me"})
	require.ErrorIs(t, err, types.ErrRetryPossible)
}

func TestPickLocksResidentMediumBeforeDevice(t *testing.T) {
	ctx := context.Background()
	fake := dss.NewFake()
	medium := &types.Medium{Family: "tape", ID: "VOL1", Model: "LTO8"}
	d1 := newDevice("DRV1", types.DeviceLoaded, medium)
	fake.SeedDevice(d1)
	fake.SeedMedium(medium)

	p := New(fake, nil)
	cache := &fakeCache{devices: []*types.Device{d1}}

	got, err := p.Pick(ctx, cache, Options{Family: "tape", Status: []types.DeviceStatus{types.DeviceLoaded}, Owner: "me"})
	require.NoError(t, err)
	require.True(t, got.Medium.Lock.IsHeldByMe())
	require.True(t, got.LockedLocal)
}

func TestBestFitOrdersAscendingByResidentFreeSpace(t *testing.T) {
	tight := newDevice("DRV1", types.DeviceLoaded, &types.Medium{Stats: types.MediumStats{PhysFreeBytes: 100}})
	loose := newDevice("DRV2", types.DeviceLoaded, &types.Medium{Stats: types.MediumStats{PhysFreeBytes: 5000}})
	empty := newDevice("DRV3", types.DeviceEmpty, nil)

	ranked := BestFit([]*types.Device{loose, empty, tight})
	require.Equal(t, "DRV1", ranked[0].Serial)
	require.Equal(t, "DRV2", ranked[1].Serial)
	require.Equal(t, "DRV3", ranked[2].Serial)
}

func TestDriveToFreeSortsOccupiedBeforeEmptyByAscendingFreeSpace(t *testing.T) {
	tight := newDevice("DRV1", types.DeviceLoaded, &types.Medium{Stats: types.MediumStats{PhysFreeBytes: 100}})
	loose := newDevice("DRV2", types.DeviceMounted, &types.Medium{Stats: types.MediumStats{PhysFreeBytes: 5000}})
	empty := newDevice("DRV3", types.DeviceEmpty, nil)

	ranked := DriveToFree([]*types.Device{empty, loose, tight})
	require.Equal(t, "DRV1", ranked[0].Serial)
	require.Equal(t, "DRV2", ranked[1].Serial)
	require.Equal(t, "DRV3", ranked[2].Serial)
}
