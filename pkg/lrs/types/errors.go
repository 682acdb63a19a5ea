// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package types

import "errors"

// Sentinel errors shared by selector, picker, mount, freeing and the
// orchestrator. They are returned to callers as-is; nothing in this
// module converts them to pkg/errors.LRSError codes. Kept here, rather
// than in pkg/errors, so the lower-level packages can return/compare them
// without importing the errors-code catalogue.
var (
	// ErrInvariant signals a structural invariant violation: a
	// Device.Validate() failure, or a mount-manager operation attempted
	// from a device status that does not allow it — a programmer error,
	// never expected in production use.
	ErrInvariant = errors.New("device invariant violated")

	// ErrRetryPossible is EAGAIN: transient contention, retry the whole
	// request.
	ErrRetryPossible = errors.New("resource busy, retry possible")

	// ErrNoSpace is ENOSPC: no medium fits the requested size.
	ErrNoSpace = errors.New("no medium with sufficient free space")

	// ErrNoDevice is ENODEV: no compatible drive exists at all.
	ErrNoDevice = errors.New("no compatible device available")

	// ErrBusy is the internal EBUSY the library raises on a rejected
	// drive-to-drive move; orchestrator-level callers translate it to
	// ErrRetryPossible before it reaches the client.
	ErrBusy = errors.New("library rejected the move")

	// ErrNotFound covers a missing medium/device/intent lookup.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is EINVAL for a locate() call that matches more than
	// one medium.
	ErrAmbiguous = errors.New("ambiguous result")

	// ErrInvalid is a generic structural-input rejection (EINVAL).
	ErrInvalid = errors.New("invalid input")
)
