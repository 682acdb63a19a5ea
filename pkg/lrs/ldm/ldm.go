// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package ldm defines the Library/Device/Filesystem/IO adapters the
// scheduler drives a tape library or directory-backed store through.
// Each family has a local implementation that shells out to host
// tools, and a sim implementation used by tests.
package ldm

import "context"

// DeviceInfo is what the host OS reports for a device path.
type DeviceInfo struct {
	Model  string
	Serial string
}

// Device resolves OS-visible device identity.
type Device interface {
	// Lookup maps a serial number to the OS device path, e.g. /dev/st0.
	Lookup(ctx context.Context, serial string) (path string, err error)
	// Query reads back model/serial for a device path, for cross-check
	// against DSS inventory.
	Query(ctx context.Context, path string) (DeviceInfo, error)
}

// DriveInfo is what the library reports about a drive slot.
type DriveInfo struct {
	Address   string
	Full      bool
	MediumID  string // valid only if Full
}

// Library adapts a tape library (changer) for slot/drive inventory and
// media motion.
type Library interface {
	Open(ctx context.Context, address string) error
	Close(ctx context.Context, address string) error
	// DriveLookup reports load state for the drive at a given address.
	DriveLookup(ctx context.Context, address string) (DriveInfo, error)
	// MediaLookup finds which slot/drive currently holds mediumID.
	MediaLookup(ctx context.Context, mediumID string) (address string, err error)
	// MediaMove moves a medium from src to dst drive/slot address. An
	// empty dst lets the library pick a free slot.
	MediaMove(ctx context.Context, src, dst string) error
}

// DFResult is the space+flags view spec.md's df(root) adapter call
// returns: free/used bytes plus whether the mount came up read-only,
// the signal write_prepare uses to mark an almost-full medium full.
type DFResult struct {
	FreeBytes uint64
	UsedBytes uint64
	ReadOnly  bool
}

// FS adapts filesystem operations on a mounted or mountable medium.
type FS interface {
	// Mounted reports the mount point of devicePath, if already mounted.
	Mounted(ctx context.Context, devicePath string) (mountPath string, ok bool, err error)
	Mount(ctx context.Context, devicePath, mountPath, fsType string) error
	Umount(ctx context.Context, mountPath string) error
	Format(ctx context.Context, devicePath, fsType string) error
	// DF reports free/used bytes and the read-only flag for a mounted path.
	DF(ctx context.Context, mountPath string) (DFResult, error)
}

// IO adapts the data-path flush/sync operation performed before a
// medium is considered safely written.
type IO interface {
	Flush(ctx context.Context, mountPath string) error
}

// Adapters bundles one implementation of each family, the unit the
// scheduler is constructed with.
type Adapters struct {
	Device  Device
	Library Library
	FS      FS
	IO      IO
}
