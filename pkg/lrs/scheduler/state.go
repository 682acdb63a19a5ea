// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/stratastor/logger"
	"github.com/stratastor/lrs/pkg/lrs/types"
)

const defaultSaveDelay = 2 * time.Second

// snapshot is the on-disk shape of the debounced local cache warm-up
// file. DSS stays authoritative; a missing or corrupt snapshot is
// never fatal, only a slower cold start.
type snapshot struct {
	Devices   map[string]*types.Device `json:"devices"`
	UpdatedAt time.Time                `json:"updated_at"`
}

// stateManager persists a debounced snapshot of the device cache to
// speed up process-restart warm-up, modeled on the teacher's disk
// state manager debounce pattern.
type stateManager struct {
	log       logger.Logger
	path      string
	saveDelay time.Duration

	mu        sync.Mutex
	timer     *time.Timer
	pending   bool
}

func newStateManager(log logger.Logger, path string) *stateManager {
	return &stateManager{log: log, path: path, saveDelay: defaultSaveDelay}
}

// Load reads a prior snapshot, if any, into the cache. Errors and
// missing files are logged and otherwise ignored.
func (sm *stateManager) Load(cache *DeviceCache) {
	data, err := os.ReadFile(sm.path)
	if err != nil {
		if !os.IsNotExist(err) {
			sm.log.Warn("failed to read cache snapshot, starting cold", "path", sm.path, "err", err)
		}
		return
	}

	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		sm.log.Warn("failed to parse cache snapshot, starting cold", "path", sm.path, "err", err)
		return
	}

	cache.mu.Lock()
	defer cache.mu.Unlock()
	for serial, d := range snap.Devices {
		cache.devices[serial] = d
	}
}

// SaveDebounced schedules a write of cache's current contents after
// saveDelay, coalescing bursts of cache mutation into one write.
func (sm *stateManager) SaveDebounced(cache *DeviceCache) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	sm.pending = true
	if sm.timer != nil {
		sm.timer.Stop()
	}
	sm.timer = time.AfterFunc(sm.saveDelay, func() {
		if err := sm.save(cache); err != nil {
			sm.log.Error("failed to save cache snapshot", "path", sm.path, "err", err)
		}
	})
}

func (sm *stateManager) save(cache *DeviceCache) error {
	sm.mu.Lock()
	sm.pending = false
	sm.mu.Unlock()

	snap := snapshot{Devices: cache.snapshotMap(), UpdatedAt: time.Now()}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(sm.path), 0755); err != nil {
		return err
	}
	tmp := sm.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, sm.path)
}
