// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package dss

import (
	"context"
	"sync"

	"github.com/stratastor/lrs/pkg/lrs/types"
)

// Fake is an in-memory Client used by tests and by integrators without a
// real DSS, grounded on the teacher's NoOpConflictChecker pattern of a
// trivial, in-process stand-in satisfying a production interface.
type Fake struct {
	mu sync.Mutex

	devices     map[string]*types.Device // keyed by serial
	deviceOwner map[string]string

	media      map[string]*types.Medium // keyed by id
	mediaOwner map[string]string
}

// NewFake returns an empty in-memory DSS fake.
func NewFake() *Fake {
	return &Fake{
		devices:     make(map[string]*types.Device),
		deviceOwner: make(map[string]string),
		media:       make(map[string]*types.Medium),
		mediaOwner:  make(map[string]string),
	}
}

// SeedDevice inserts or replaces a device row, for test setup.
func (f *Fake) SeedDevice(d *types.Device) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *d
	f.devices[d.Serial] = &cp
}

// SeedMedium inserts or replaces a medium row, for test setup.
func (f *Fake) SeedMedium(m *types.Medium) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.media[m.ID] = m.Clone()
}

func (f *Fake) GetDevices(_ context.Context, filter types.DeviceFilter) ([]*types.Device, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*types.Device
	for _, d := range f.devices {
		if filter.Matches(d) {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *Fake) GetMedia(_ context.Context, filter types.MediumFilter) ([]*types.Medium, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []*types.Medium
	for _, m := range f.media {
		if filter.Matches(m) {
			out = append(out, m.Clone())
		}
	}
	return out, nil
}

func (f *Fake) GetMedium(_ context.Context, id string) (*types.Medium, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	m, ok := f.media[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return m.Clone(), nil
}

func (f *Fake) LockDevice(_ context.Context, serial, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cur, held := f.deviceOwner[serial]; held && cur != owner {
		return types.ErrRetryPossible
	}
	f.deviceOwner[serial] = owner
	return nil
}

func (f *Fake) UnlockDevice(_ context.Context, serial, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cur, held := f.deviceOwner[serial]; held && cur != owner {
		// Not ours to release; resource_release must be idempotent and
		// must never clear someone else's lock.
		return nil
	}
	delete(f.deviceOwner, serial)
	return nil
}

func (f *Fake) LockMedium(_ context.Context, id, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cur, held := f.mediaOwner[id]; held && cur != owner {
		return types.ErrRetryPossible
	}
	f.mediaOwner[id] = owner
	return nil
}

func (f *Fake) UnlockMedium(_ context.Context, id, owner string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cur, held := f.mediaOwner[id]; held && cur != owner {
		return nil
	}
	delete(f.mediaOwner, id)
	return nil
}

func (f *Fake) UpdateMedium(_ context.Context, m *types.Medium) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.media[m.ID]; !ok {
		return types.ErrNotFound
	}
	f.media[m.ID] = m.Clone()
	return nil
}

var _ Client = (*Fake)(nil)
