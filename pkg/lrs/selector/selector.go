// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package selector picks the best-fit medium for a write, given a DSS
// view of candidate media.
package selector

import (
	"context"
	"sort"

	"github.com/stratastor/lrs/pkg/lrs/dss"
	"github.com/stratastor/lrs/pkg/lrs/types"
)

// Selector ranks media from DSS for a requested write.
type Selector struct {
	dss dss.Client
}

func New(client dss.Client) *Selector {
	return &Selector{dss: client}
}

// Select finds the tightest-fitting, unlocked medium of family that has
// at least size free bytes and carries every tag in tags, locking it in
// DSS under owner before returning it. A candidate that is the only fit
// but held externally yields ErrRetryPossible rather than ErrNoSpace.
func (s *Selector) Select(ctx context.Context, owner, family string, size uint64, tags []string) (*types.Medium, error) {
	filter := types.MediumFilter{
		Family:       family,
		MinFreeBytes: size,
		Tags:         tags,
		ExcludeFS:    []types.FSStatus{types.FSBlank, types.FSFull},
	}
	notLocked := false
	filter.AdminLocked = &notLocked

	candidates, err := s.dss.GetMedia(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, types.ErrNoSpace
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Stats.PhysFreeBytes < candidates[j].Stats.PhysFreeBytes
	})

	sawExternal := false
	for _, m := range candidates {
		if m.Lock.IsExternal() {
			sawExternal = true
			continue
		}

		if err := s.dss.LockMedium(ctx, m.ID, owner); err != nil {
			if err == types.ErrRetryPossible {
				m.Lock = types.External()
				sawExternal = true
				continue
			}
			return nil, err
		}

		m.Lock = types.HeldByMe(owner)
		return m.Clone(), nil
	}

	if sawExternal {
		return nil, types.ErrRetryPossible
	}
	return nil, types.ErrNoSpace
}
