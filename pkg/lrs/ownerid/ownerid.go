// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package ownerid builds the per-instance lock owner identity string used
// to persist DSS device/medium lock ownership: HOST:TID:TIME:COUNTER,
// width-limited so the joined string never exceeds
// types.MaxOwnerIDLen bytes.
package ownerid

import (
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/stratastor/lrs/pkg/lrs/types"
)

var counter atomic.Uint64

const (
	maxHostLen = 64
	maxTIDLen  = 32
)

// New builds a fresh owner identity for this scheduler instance. hostShortName
// should be the host's short hostname; it is truncated if necessary.
func New(hostShortName string) string {
	host := hostShortName
	if len(host) > maxHostLen {
		host = host[:maxHostLen]
	}

	tid := threadID()
	if len(tid) > maxTIDLen {
		tid = tid[:maxTIDLen]
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	n := counter.Add(1)

	id := fmt.Sprintf("%s:%s:%s:%d", host, tid, ts, n)
	if len(id) > types.MaxOwnerIDLen {
		id = id[:types.MaxOwnerIDLen]
	}
	return id
}

// threadID resolves the calling OS thread id on platforms that support
// it (see ownerid_linux.go); everywhere else it falls back to a short
// uuid segment, the Go-native equivalent of the source's Linux-only
// thread-id assumption (see REDESIGN FLAGS).
func threadID() string {
	if tid, ok := platformThreadID(); ok {
		return strconv.Itoa(tid)
	}
	return uuid.New().String()[:8]
}
