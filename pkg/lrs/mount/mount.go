// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package mount

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/stratastor/lrs/pkg/lrs/ldm"
	"github.com/stratastor/lrs/pkg/lrs/types"
)

// Manager drives a single device through load/mount/umount/unload,
// consulting the library and filesystem adapters.
type Manager struct {
	sm          *StateMachine
	adapters    ldm.Adapters
	mountPrefix string
}

func NewManager(adapters ldm.Adapters, mountPrefix string) *Manager {
	return &Manager{sm: NewStateMachine(), adapters: adapters, mountPrefix: mountPrefix}
}

// Load moves medium into device, from slot address src. The device must
// be empty; any other status is rejected with types.ErrInvariant. The
// library adapter reports a rejected drive-to-drive move as
// types.ErrBusy, which Load propagates unchanged and without
// transitioning device state; any other adapter failure propagates
// as-is, for the caller to demote the device to failed per spec.md's
// transition table.
func (m *Manager) Load(ctx context.Context, device *types.Device, medium *types.Medium, src string) error {
	if device.Status != types.DeviceEmpty {
		return types.ErrInvariant
	}
	if err := m.sm.Transition(device.Status, types.DeviceLoaded); err != nil {
		return types.ErrInvariant
	}

	if err := m.adapters.Library.MediaMove(ctx, src, device.LibraryAddress); err != nil {
		if errors.Is(err, types.ErrBusy) {
			return types.ErrBusy
		}
		return err
	}

	device.Medium = medium
	device.ContainedMediumID = medium.ID
	device.Full = true
	device.Status = types.DeviceLoaded
	return nil
}

// Mount mounts the medium currently loaded in device, reusing an
// existing mount point if the filesystem adapter reports one.
func (m *Manager) Mount(ctx context.Context, device *types.Device) error {
	if err := m.sm.Transition(device.Status, types.DeviceMounted); err != nil {
		return types.ErrInvariant
	}
	if device.Medium == nil {
		return types.ErrInvariant
	}

	if existing, ok, err := m.adapters.FS.Mounted(ctx, device.DevicePath); err == nil && ok {
		device.MountPath = existing
		device.Status = types.DeviceMounted
		return nil
	}

	mountPath := m.mountPrefix + filepath.Base(device.DevicePath)
	if err := m.adapters.FS.Mount(ctx, device.DevicePath, mountPath, device.Medium.FS.Type); err != nil {
		return err
	}

	device.MountPath = mountPath
	device.Status = types.DeviceMounted
	return nil
}

// Umount unmounts a mounted device, returning it to loaded.
func (m *Manager) Umount(ctx context.Context, device *types.Device) error {
	if err := m.sm.Transition(device.Status, types.DeviceLoaded); err != nil {
		return types.ErrInvariant
	}
	if device.MountPath == "" {
		return nil
	}
	if err := m.adapters.FS.Umount(ctx, device.MountPath); err != nil {
		return err
	}
	device.MountPath = ""
	device.Status = types.DeviceLoaded
	return nil
}

// Format formats the medium currently loaded in device. The device must
// already be loaded or mounted; a mounted device is unmounted first
// since formatting a filesystem under an active mount is unsafe.
func (m *Manager) Format(ctx context.Context, device *types.Device, fsType string) error {
	if device.Status == types.DeviceMounted {
		if err := m.Umount(ctx, device); err != nil {
			return err
		}
	}
	if device.Status != types.DeviceLoaded {
		return types.ErrInvariant
	}
	return m.adapters.FS.Format(ctx, device.DevicePath, fsType)
}

// DF reports free/used bytes and the read-only flag for device's current
// mount point, used by write_prepare's read-only-mount retry and by
// io_complete's post-write statistics refresh.
func (m *Manager) DF(ctx context.Context, device *types.Device) (ldm.DFResult, error) {
	if device.MountPath == "" {
		return ldm.DFResult{}, types.ErrInvariant
	}
	return m.adapters.FS.DF(ctx, device.MountPath)
}

// Unload lets the library pick a free slot and moves medium out of
// device, returning the medium record. The caller is responsible for
// releasing the DSS medium lock; Unload only performs the physical and
// in-memory move.
func (m *Manager) Unload(ctx context.Context, device *types.Device) (*types.Medium, error) {
	if device.Status == types.DeviceMounted {
		if err := m.Umount(ctx, device); err != nil {
			return nil, err
		}
	}
	if err := m.sm.Transition(device.Status, types.DeviceEmpty); err != nil {
		return nil, types.ErrInvariant
	}
	if device.Medium == nil {
		return nil, types.ErrInvariant
	}

	if err := m.adapters.Library.MediaMove(ctx, device.LibraryAddress, ""); err != nil {
		device.Status = types.DeviceFailed
		return nil, err
	}

	medium := device.Medium
	device.Medium = nil
	device.ContainedMediumID = ""
	device.Full = false
	device.Status = types.DeviceEmpty
	return medium, nil
}
