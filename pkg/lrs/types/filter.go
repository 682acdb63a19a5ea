// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package types

// DeviceFilter is the Go-idiomatic rendering of spec.md §6's "JSON
// expressions over fixed attribute paths" for device queries: a typed
// struct the compiler checks, marshaled by the DSS REST client to the
// same wire shape (see pkg/lrs/dss), modeled on the teacher's
// DiskFilter/MatchesFilter pattern.
type DeviceFilter struct {
	Family      string   `json:"family,omitempty"`
	Host        string   `json:"host,omitempty"`
	AdminLocked *bool    `json:"admin_locked,omitempty"`
	Serial      string   `json:"serial,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Matches reports whether d satisfies every clause of f except Tags,
// which is not checked (devices carry no tags).
func (f DeviceFilter) Matches(d *Device) bool {
	if f.Family != "" && d.Family != f.Family {
		return false
	}
	if f.Host != "" && d.Host != f.Host {
		return false
	}
	if f.AdminLocked != nil && d.AdminLocked != *f.AdminLocked {
		return false
	}
	if f.Serial != "" && d.Serial != f.Serial {
		return false
	}
	return true
}

// MediumFilter is the medium-side counterpart of DeviceFilter.
type MediumFilter struct {
	Family        string   `json:"family,omitempty"`
	AdminLocked   *bool    `json:"admin_locked,omitempty"`
	ID            string   `json:"id,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	MinFreeBytes  uint64   `json:"min_free_bytes,omitempty"`
	ExcludeFS     []FSStatus `json:"exclude_fs,omitempty"`
}

// Matches reports whether m satisfies every clause of f.
func (f MediumFilter) Matches(m *Medium) bool {
	if f.Family != "" && m.Family != f.Family {
		return false
	}
	if f.AdminLocked != nil && m.AdminLocked != *f.AdminLocked {
		return false
	}
	if f.ID != "" && m.ID != f.ID {
		return false
	}
	if f.MinFreeBytes > 0 && m.Stats.PhysFreeBytes < f.MinFreeBytes {
		return false
	}
	for _, excl := range f.ExcludeFS {
		if m.FS.Status == excl {
			return false
		}
	}
	if !m.HasTags(f.Tags) {
		return false
	}
	return true
}
