// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

//go:build linux

package ownerid

import "golang.org/x/sys/unix"

func platformThreadID() (int, bool) {
	return unix.Gettid(), true
}
