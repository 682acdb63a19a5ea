// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package mount implements the device load/mount/unmount/unload state
// machine, modeled on the teacher's disk hotplug state machine: an
// explicit transition table validated before any mutation.
package mount

import (
	"fmt"

	"github.com/stratastor/lrs/pkg/lrs/types"
)

// StateMachine validates device status transitions against a fixed
// table before the caller is allowed to mutate device state.
type StateMachine struct {
	transitions map[types.DeviceStatus][]types.DeviceStatus
}

// NewStateMachine returns the device lifecycle machine:
// empty -> loaded -> mounted, with failed reachable from any state and
// unload collapsing loaded/mounted back to empty.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		transitions: map[types.DeviceStatus][]types.DeviceStatus{
			types.DeviceEmpty:   {types.DeviceLoaded, types.DeviceFailed},
			types.DeviceLoaded:  {types.DeviceMounted, types.DeviceEmpty, types.DeviceFailed},
			types.DeviceMounted: {types.DeviceLoaded, types.DeviceEmpty, types.DeviceFailed},
			types.DeviceFailed:  {types.DeviceEmpty},
		},
	}
}

// Transition validates from -> to and returns an error if it is not in
// the table; it never mutates the device itself.
func (sm *StateMachine) Transition(from, to types.DeviceStatus) error {
	for _, allowed := range sm.transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("invalid device state transition: %s -> %s", from, to)
}
