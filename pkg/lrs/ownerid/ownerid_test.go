// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package ownerid

import (
	"strings"
	"testing"

	"github.com/stratastor/lrs/pkg/lrs/types"
	"github.com/stretchr/testify/assert"
)

func TestNewNeverExceedsMaxLen(t *testing.T) {
	id := New(strings.Repeat("a", 300))
	assert.LessOrEqual(t, len(id), types.MaxOwnerIDLen)
	assert.Equal(t, 4, len(strings.Split(id, ":")))
}

func TestNewIsMonotoneAcrossCalls(t *testing.T) {
	a := New("host1")
	b := New("host1")
	assert.NotEqual(t, a, b)
}
