// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package types holds the data model shared across the Local Resource
// Scheduler: device and medium descriptors, the lock state sum type, and
// the intent handle returned to callers.
package types

import "time"

// MaxOwnerIDLen bounds the HOST:TID:TIME:COUNTER owner string built by
// pkg/lrs/ownerid.
const MaxOwnerIDLen = 256

// DeviceStatus is the operational status of a device descriptor.
type DeviceStatus string

const (
	DeviceEmpty   DeviceStatus = "empty"
	DeviceLoaded  DeviceStatus = "loaded"
	DeviceMounted DeviceStatus = "mounted"
	DeviceFailed  DeviceStatus = "failed"
	DeviceUnspec  DeviceStatus = "unspec"
)

// FSStatus is the filesystem status of a medium.
type FSStatus string

const (
	FSBlank FSStatus = "blank"
	FSEmpty FSStatus = "empty"
	FSUsed  FSStatus = "used"
	FSFull  FSStatus = "full"
)

// Operation identifies which client-facing verb media_prepare is
// gating a medium for, per spec.md §4.8: READ/WRITE require a medium
// already formatted (non-blank); FORMAT requires the opposite.
type Operation int

const (
	OpWrite Operation = iota
	OpRead
	OpFormat
)

// LockKind distinguishes the three states a lock descriptor can be in.
// This replaces the source's sentinel-pointer comparison with an explicit
// sum type (see SPEC_FULL.md §9, "Sentinel representation").
type LockKind int

const (
	LockUnlocked LockKind = iota
	LockHeldByMe
	LockExternal
)

// LockState is a free-form owner string persisted alongside a DSS row,
// represented in memory as an explicit tri-state rather than a sentinel
// pointer value.
type LockState struct {
	Kind  LockKind
	Owner string // valid when Kind == LockHeldByMe
}

func (l LockState) IsUnlocked() bool { return l.Kind == LockUnlocked }
func (l LockState) IsHeldByMe() bool { return l.Kind == LockHeldByMe }
func (l LockState) IsExternal() bool { return l.Kind == LockExternal }

// Unlocked returns the zero lock state.
func Unlocked() LockState { return LockState{Kind: LockUnlocked} }

// HeldByMe returns a lock state representing local ownership.
func HeldByMe(owner string) LockState { return LockState{Kind: LockHeldByMe, Owner: owner} }

// External returns the local-memory-only "locked by someone else" marker.
// It is never persisted to DSS; DSS itself only ever stores an owner
// string or empty.
func External() LockState { return LockState{Kind: LockExternal} }

// FilesystemInfo describes a medium's on-disk filesystem state.
type FilesystemInfo struct {
	Type   string
	Label  string
	Status FSStatus
}

// MediumStats tracks medium capacity and usage counters.
type MediumStats struct {
	PhysFreeBytes    uint64
	PhysUsedBytes    uint64
	LogicalUsedBytes uint64
	ObjectCount      uint64
}

// Medium is a physical storage unit: a tape cartridge or an on-disk
// directory tree, identified by a label.
type Medium struct {
	Family      string
	ID          string
	Model       string
	Tags        map[string]struct{}
	FS          FilesystemInfo
	AdminLocked bool
	Stats       MediumStats
	Lock        LockState

	// Host is the name of the host whose device currently contains this
	// medium, if any; empty when the medium sits in a library slot or
	// directory with no active holder. Populated by DSS, consumed by
	// locate.
	Host string
}

// HasTags reports whether m carries every tag in want.
func (m *Medium) HasTags(want []string) bool {
	if len(want) == 0 {
		return true
	}
	if m.Tags == nil {
		return false
	}
	for _, t := range want {
		if _, ok := m.Tags[t]; !ok {
			return false
		}
	}
	return true
}

// Clone deep-copies a medium record, used by the selector and the DSS
// fake when handing ownership of a result to a caller.
func (m *Medium) Clone() *Medium {
	if m == nil {
		return nil
	}
	out := *m
	if m.Tags != nil {
		out.Tags = make(map[string]struct{}, len(m.Tags))
		for k := range m.Tags {
			out.Tags[k] = struct{}{}
		}
	}
	return &out
}

// Device is a device descriptor: one per usable local drive.
type Device struct {
	// Identity, from DSS.
	Family      string
	Serial      string
	Model       string
	AdminLocked bool
	Host        string

	// System view.
	DevicePath string
	OSModel    string
	OSSerial   string
	MountPath  string

	// Library view.
	LibraryAddress    string
	Full              bool
	ContainedMediumID string

	// Loaded medium, if any. Move semantics: populated on load, cleared
	// (moved out, never just nilled without releasing its lock) on
	// unload. No back-reference from Medium to Device.
	Medium *Medium

	Status      DeviceStatus
	LockedLocal bool
}

// Validate checks the structural invariants from the data model: mounted
// devices have a mount path and medium, loaded devices have a medium and
// no mount path, empty devices have neither.
func (d *Device) Validate() error {
	switch d.Status {
	case DeviceMounted:
		if d.MountPath == "" || d.Medium == nil {
			return ErrInvariant
		}
	case DeviceLoaded:
		if d.Medium == nil || d.MountPath != "" {
			return ErrInvariant
		}
	case DeviceEmpty:
		if d.Medium != nil || d.MountPath != "" {
			return ErrInvariant
		}
	}
	return nil
}

// Available reports whether the device can be considered by the picker:
// not locally locked already, and not holding an externally locked
// medium.
func (d *Device) Available() bool {
	if d.LockedLocal {
		return false
	}
	if d.Medium != nil && d.Medium.Lock.IsExternal() {
		return false
	}
	return true
}

// Fragment is one piece of a written object, as io_complete receives it:
// the IO adapter location to flush and the bytes it occupies, used to
// accumulate a medium's logical-used and object counters.
type Fragment struct {
	Location string
	Size     uint64
}

// Intent is the externally visible handle returned by write_prepare and
// read_prepare, alive from *_prepare until resource_release. format
// builds one internally and releases it before returning.
type Intent struct {
	MountRoot   string
	MediumID    string
	FSType      string
	AddressType string
	ExtentSize  uint64
	Device      *Device

	// createdAt is an ambient addition (not in spec.md) used to flag
	// long-idle intents in diagnostics.
	createdAt time.Time
}

// NewIntent builds an intent stamped with the current time.
func NewIntent() *Intent {
	return &Intent{createdAt: time.Now()}
}

// Age reports how long the intent has been outstanding.
func (i *Intent) Age() time.Duration {
	return time.Since(i.createdAt)
}
