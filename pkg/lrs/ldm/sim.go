// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package ldm

import (
	"context"
	"fmt"
	"sync"

	"github.com/stratastor/lrs/pkg/lrs/types"
)

// Sim is an in-memory stand-in for a tape library and its drives,
// exercised by tests in place of real hardware, grounded on the
// teacher's NoOp fake-adapter pattern.
type Sim struct {
	mu sync.Mutex

	devices map[string]DeviceInfo   // path -> info
	serials map[string]string       // serial -> path
	drives  map[string]DriveInfo    // address -> drive state
	media   map[string]string       // mediumID -> address (drive or slot)
	mounts   map[string]string // devicePath -> mountPath
	fsType   map[string]string // mountPath -> fsType
	free     map[string]uint64 // mountPath -> free bytes
	used     map[string]uint64 // mountPath -> used bytes
	readOnly map[string]bool   // mountPath -> read-only flag

	RejectDriveToDriveMove bool // simulates library EINVAL/EBUSY
	FailNextFormat         bool
}

func NewSim() *Sim {
	return &Sim{
		devices: make(map[string]DeviceInfo),
		serials: make(map[string]string),
		drives:  make(map[string]DriveInfo),
		media:   make(map[string]string),
		mounts:   make(map[string]string),
		fsType:   make(map[string]string),
		free:     make(map[string]uint64),
		used:     make(map[string]uint64),
		readOnly: make(map[string]bool),
	}
}

// SeedDrive registers a drive slot address and its backing device path.
func (s *Sim) SeedDrive(address, devicePath string, info DeviceInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[devicePath] = info
	s.serials[info.Serial] = devicePath
	s.drives[address] = DriveInfo{Address: address}
}

// SeedMedium places mediumID at a slot or drive address, marking the
// drive full when address is a drive.
func (s *Sim) SeedMedium(address, mediumID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.media[mediumID] = address
	if d, ok := s.drives[address]; ok {
		d.Full = true
		d.MediumID = mediumID
		s.drives[address] = d
	}
}

func (s *Sim) Lookup(_ context.Context, serial string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	path, ok := s.serials[serial]
	if !ok {
		return "", fmt.Errorf("sim: no device with serial %s", serial)
	}
	return path, nil
}

func (s *Sim) Query(_ context.Context, path string) (DeviceInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.devices[path]
	if !ok {
		return DeviceInfo{}, fmt.Errorf("sim: no device at %s", path)
	}
	return info, nil
}

func (s *Sim) Open(_ context.Context, _ string) error  { return nil }
func (s *Sim) Close(_ context.Context, _ string) error { return nil }

func (s *Sim) DriveLookup(_ context.Context, address string) (DriveInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drives[address]
	if !ok {
		return DriveInfo{}, fmt.Errorf("sim: no drive at %s", address)
	}
	return d, nil
}

func (s *Sim) MediaLookup(_ context.Context, mediumID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	addr, ok := s.media[mediumID]
	if !ok {
		return "", fmt.Errorf("sim: medium %s not in library", mediumID)
	}
	return addr, nil
}

func (s *Sim) MediaMove(_ context.Context, src, dst string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	srcDrive, srcIsDrive := s.drives[src]
	_, dstIsDrive := s.drives[dst]
	if s.RejectDriveToDriveMove && srcIsDrive && dstIsDrive && srcDrive.Full {
		return types.ErrBusy
	}

	var mediumID string
	for id, addr := range s.media {
		if addr == src {
			mediumID = id
			break
		}
	}
	if mediumID == "" {
		return fmt.Errorf("sim: no medium at %s", src)
	}

	if d, ok := s.drives[src]; ok {
		d.Full = false
		d.MediumID = ""
		s.drives[src] = d
	}

	target := dst
	if target == "" {
		target = "slot-auto"
	}
	s.media[mediumID] = target
	if d, ok := s.drives[target]; ok {
		d.Full = true
		d.MediumID = mediumID
		s.drives[target] = d
	}
	return nil
}

func (s *Sim) Mounted(_ context.Context, devicePath string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mp, ok := s.mounts[devicePath]
	return mp, ok, nil
}

func (s *Sim) Mount(_ context.Context, devicePath, mountPath, fsType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mounts[devicePath] = mountPath
	s.fsType[mountPath] = fsType
	return nil
}

func (s *Sim) Umount(_ context.Context, mountPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for dev, mp := range s.mounts {
		if mp == mountPath {
			delete(s.mounts, dev)
		}
	}
	return nil
}

func (s *Sim) Format(_ context.Context, devicePath, fsType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNextFormat {
		s.FailNextFormat = false
		return fmt.Errorf("sim: format failed")
	}
	return nil
}

func (s *Sim) DF(_ context.Context, mountPath string) (DFResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return DFResult{FreeBytes: s.free[mountPath], UsedBytes: s.used[mountPath], ReadOnly: s.readOnly[mountPath]}, nil
}

// SetDF seeds the free/used bytes df reports for mountPath.
func (s *Sim) SetDF(mountPath string, free, used uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.free[mountPath] = free
	s.used[mountPath] = used
}

// SetReadOnly makes DF report mountPath as mounted read-only, simulating
// an almost-full medium whose filesystem remounted ro.
func (s *Sim) SetReadOnly(mountPath string, ro bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readOnly[mountPath] = ro
}

func (s *Sim) Flush(_ context.Context, _ string) error { return nil }

var (
	_ Device  = (*Sim)(nil)
	_ Library = (*Sim)(nil)
	_ FS      = (*Sim)(nil)
	_ IO      = (*Sim)(nil)
)
