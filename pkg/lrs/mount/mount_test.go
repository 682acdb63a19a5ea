// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package mount

import (
	"context"
	"testing"

	"github.com/stratastor/lrs/pkg/lrs/ldm"
	"github.com/stratastor/lrs/pkg/lrs/types"
	"github.com/stretchr/testify/require"
)

func newSimDevice(serial, address, devicePath string, sim *ldm.Sim) *types.Device {
	sim.SeedDrive(address, devicePath, ldm.DeviceInfo{Model: "ULT3580-TD8", Serial: serial})
	return &types.Device{
		Family:         "tape",
		Serial:         serial,
		Status:         types.DeviceEmpty,
		DevicePath:     devicePath,
		LibraryAddress: address,
	}
}

func TestLoadTransitionsEmptyToLoadedAndPopulatesDevice(t *testing.T) {
	ctx := context.Background()
	sim := ldm.NewSim()
	adapters := ldm.Adapters{Device: sim, Library: sim, FS: sim, IO: sim}
	mgr := NewManager(adapters, "/mnt/")

	dev := newSimDevice("DRV1", "drive-0", "/dev/DRV1", sim)
	medium := &types.Medium{ID: "VOL1", Family: "tape"}
	sim.SeedMedium("slot-1", "VOL1")

	require.NoError(t, mgr.Load(ctx, dev, medium, "slot-1"))
	require.Equal(t, types.DeviceLoaded, dev.Status)
	require.Equal(t, "VOL1", dev.ContainedMediumID)
	require.True(t, dev.Full)
}

func TestLoadBusyLeavesDeviceStatusUnchanged(t *testing.T) {
	ctx := context.Background()
	sim := ldm.NewSim()
	adapters := ldm.Adapters{Device: sim, Library: sim, FS: sim, IO: sim}
	mgr := NewManager(adapters, "/mnt/")

	src := newSimDevice("DRV1", "drive-a", "/dev/DRV1", sim)
	dst := newSimDevice("DRV2", "drive-b", "/dev/DRV2", sim)
	medium := &types.Medium{ID: "VOLX", Family: "tape"}
	sim.SeedMedium("drive-a", "VOLX")
	sim.RejectDriveToDriveMove = true

	err := mgr.Load(ctx, dst, medium, "drive-a")
	require.ErrorIs(t, err, types.ErrBusy)
	require.Equal(t, types.DeviceEmpty, dst.Status)
	require.Equal(t, types.DeviceEmpty, src.Status)
}

func TestLoadNonBusyFailurePropagatesUnchanged(t *testing.T) {
	ctx := context.Background()
	sim := ldm.NewSim()
	adapters := ldm.Adapters{Device: sim, Library: sim, FS: sim, IO: sim}
	mgr := NewManager(adapters, "/mnt/")

	dev := newSimDevice("DRV1", "drive-0", "/dev/DRV1", sim)
	medium := &types.Medium{ID: "VOL1", Family: "tape"}

	// No medium was ever seeded at "slot-missing", so the library adapter
	// rejects the move for a reason other than a drive-to-drive EINVAL;
	// Load must propagate that error rather than reporting ErrBusy, so
	// the caller can demote the device to failed.
	err := mgr.Load(ctx, dev, medium, "slot-missing")
	require.Error(t, err)
	require.NotErrorIs(t, err, types.ErrBusy)
}

func TestLoadRejectsInvalidSourceStatus(t *testing.T) {
	ctx := context.Background()
	sim := ldm.NewSim()
	adapters := ldm.Adapters{Device: sim, Library: sim, FS: sim, IO: sim}
	mgr := NewManager(adapters, "/mnt/")

	dev := newSimDevice("DRV1", "drive-0", "/dev/DRV1", sim)
	dev.Status = types.DeviceMounted

	err := mgr.Load(ctx, dev, &types.Medium{ID: "VOL1"}, "slot-1")
	require.ErrorIs(t, err, types.ErrInvariant)
}

func TestMountReusesExistingMountPoint(t *testing.T) {
	ctx := context.Background()
	sim := ldm.NewSim()
	adapters := ldm.Adapters{Device: sim, Library: sim, FS: sim, IO: sim}
	mgr := NewManager(adapters, "/mnt/")

	dev := newSimDevice("DRV1", "drive-0", "/dev/DRV1", sim)
	dev.Status = types.DeviceLoaded
	dev.Medium = &types.Medium{ID: "VOL1", FS: types.FilesystemInfo{Type: "ltfs"}}
	sim.Mount(ctx, "/dev/DRV1", "/mnt/existing", "ltfs")

	require.NoError(t, mgr.Mount(ctx, dev))
	require.Equal(t, "/mnt/existing", dev.MountPath)
	require.Equal(t, types.DeviceMounted, dev.Status)
}

func TestMountWithoutLoadedMediumFails(t *testing.T) {
	ctx := context.Background()
	sim := ldm.NewSim()
	adapters := ldm.Adapters{Device: sim, Library: sim, FS: sim, IO: sim}
	mgr := NewManager(adapters, "/mnt/")

	dev := newSimDevice("DRV1", "drive-0", "/dev/DRV1", sim)
	dev.Status = types.DeviceLoaded

	err := mgr.Mount(ctx, dev)
	require.ErrorIs(t, err, types.ErrInvariant)
}

func TestFormatUnmountsMountedDeviceFirst(t *testing.T) {
	ctx := context.Background()
	sim := ldm.NewSim()
	adapters := ldm.Adapters{Device: sim, Library: sim, FS: sim, IO: sim}
	mgr := NewManager(adapters, "/mnt/")

	dev := newSimDevice("DRV1", "drive-0", "/dev/DRV1", sim)
	dev.Status = types.DeviceMounted
	dev.Medium = &types.Medium{ID: "VOL1"}
	dev.MountPath = "/mnt/DRV1"
	sim.Mount(ctx, "/dev/DRV1", "/mnt/DRV1", "ltfs")

	require.NoError(t, mgr.Format(ctx, dev, "ltfs"))
	require.Equal(t, types.DeviceLoaded, dev.Status)
	require.Empty(t, dev.MountPath)
}

func TestUnloadReturnsMediumAndClearsDevice(t *testing.T) {
	ctx := context.Background()
	sim := ldm.NewSim()
	adapters := ldm.Adapters{Device: sim, Library: sim, FS: sim, IO: sim}
	mgr := NewManager(adapters, "/mnt/")

	dev := newSimDevice("DRV1", "drive-0", "/dev/DRV1", sim)
	dev.Status = types.DeviceLoaded
	dev.Medium = &types.Medium{ID: "VOL1"}
	dev.ContainedMediumID = "VOL1"
	dev.Full = true
	sim.SeedMedium("drive-0", "VOL1")

	evicted, err := mgr.Unload(ctx, dev)
	require.NoError(t, err)
	require.Equal(t, "VOL1", evicted.ID)
	require.Equal(t, types.DeviceEmpty, dev.Status)
	require.Nil(t, dev.Medium)
	require.Empty(t, dev.ContainedMediumID)
	require.False(t, dev.Full)
}
