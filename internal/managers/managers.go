// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package managers provides a centralized registry for shared manager instances.
// It lets the HTTP routes (pkg/server) use the scheduler instance the serve
// command constructed. One-shot CLI commands do not use it; each builds its
// own scheduler through internal/wiring.
//
// Usage:
//   - serve startup calls Set* after constructing the scheduler
//   - route handlers call Get* to retrieve it
//   - Get* functions return nil if the manager hasn't been set yet
package managers

import (
	"sync"

	"github.com/stratastor/lrs/pkg/lrs/scheduler"
)

var (
	mu sync.RWMutex

	lrsScheduler *scheduler.Scheduler
)

// SetScheduler sets the shared scheduler instance
func SetScheduler(s *scheduler.Scheduler) {
	mu.Lock()
	defer mu.Unlock()
	lrsScheduler = s
}

// GetScheduler returns the shared scheduler, or nil if not set
func GetScheduler() *scheduler.Scheduler {
	mu.RLock()
	defer mu.RUnlock()
	return lrsScheduler
}
