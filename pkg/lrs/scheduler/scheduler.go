// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/stratastor/logger"
	"github.com/stratastor/lrs/pkg/lrs/compat"
	"github.com/stratastor/lrs/pkg/lrs/dss"
	"github.com/stratastor/lrs/pkg/lrs/freeing"
	"github.com/stratastor/lrs/pkg/lrs/ldm"
	"github.com/stratastor/lrs/pkg/lrs/mount"
	"github.com/stratastor/lrs/pkg/lrs/ownerid"
	"github.com/stratastor/lrs/pkg/lrs/picker"
	"github.com/stratastor/lrs/pkg/lrs/selector"
	"github.com/stratastor/lrs/pkg/lrs/types"
)

// Policy selects which picker rank function backs device selection.
type Policy string

const (
	PolicyBestFit  Policy = "best_fit"
	PolicyFirstFit Policy = "first_fit"
)

// Options configures a Scheduler instance.
type Options struct {
	Host        string
	Family      string
	MountPrefix string
	Policy      Policy
	StatePath   string
}

// Scheduler is the single-host orchestrator: one DeviceCache and one
// active-intents map guarded by one mutex, per spec.md's concurrency
// model (no fine-grained per-device locking).
type Scheduler struct {
	mu sync.Mutex

	opts     Options
	dss      dss.Client
	adapters ldm.Adapters
	cache    *DeviceCache
	selector *selector.Selector
	picker   *picker.Picker
	mount    *mount.Manager
	freeing  *freeing.Planner
	oracle   *compat.Oracle
	state    *stateManager
	log      logger.Logger

	// activeIntents is keyed by device serial: exactly one Intent may
	// reference a given device at a time.
	activeIntents map[string]*types.Intent
}

// New wires a Scheduler from its adapters and configuration.
func New(client dss.Client, adapters ldm.Adapters, oracle *compat.Oracle, log logger.Logger, opts Options) *Scheduler {
	cache := NewDeviceCache(client, adapters, log, opts.Host, opts.Family)
	pk := picker.New(client, oracle)
	mountMgr := mount.NewManager(adapters, opts.MountPrefix)
	sched := &Scheduler{
		opts:          opts,
		dss:           client,
		adapters:      adapters,
		cache:         cache,
		selector:      selector.New(client),
		picker:        pk,
		mount:         mountMgr,
		freeing:       freeing.New(pk, mountMgr, oracle, client),
		oracle:        oracle,
		state:         newStateManager(log, opts.StatePath),
		log:           log,
		activeIntents: make(map[string]*types.Intent),
	}
	sched.state.Load(cache)
	return sched
}

// ReapStaleIntents releases the device and medium locks of every intent
// that has been outstanding longer than ttl, returning how many it
// reaped. It is driven by the periodic maintenance job, not by any
// *_prepare/resource_release caller, and guards against a client that
// crashed between prepare and release.
func (s *Scheduler) ReapStaleIntents(ctx context.Context, ttl time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stale []string
	for serial, intent := range s.activeIntents {
		if intent.Age() >= ttl {
			stale = append(stale, serial)
		}
	}

	for _, serial := range stale {
		intent := s.activeIntents[serial]
		delete(s.activeIntents, serial)
		owner := intent.Device.Medium.Lock.Owner
		if owner == "" {
			owner = ownerid.New(s.opts.Host)
		}
		if err := s.releaseDevice(ctx, intent.Device, owner); err != nil {
			s.log.Warn("reap: failed to release device lock", "serial", serial, "err", err)
		}
		if err := s.releaseMedium(ctx, intent.Device.Medium, intent.MediumID, owner); err != nil {
			s.log.Warn("reap: failed to release medium lock", "medium", intent.MediumID, "err", err)
		}
	}
	if len(stale) > 0 {
		s.state.SaveDebounced(s.cache)
	}
	return len(stale)
}

// Cache exposes the device cache for CLI/HTTP introspection and the
// periodic maintenance job.
func (s *Scheduler) Cache() *DeviceCache { return s.cache }

// Intents returns a snapshot of currently outstanding intents, keyed by
// device serial, for introspection.
func (s *Scheduler) Intents() map[string]*types.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]*types.Intent, len(s.activeIntents))
	for k, v := range s.activeIntents {
		out[k] = v
	}
	return out
}

func (s *Scheduler) rankPolicy() picker.RankPolicy {
	if s.opts.Policy == PolicyFirstFit {
		return picker.FirstFit
	}
	return picker.BestFit
}

// mediaPrepare resolves a device holding (or that will hold) medium,
// mounting it and handing the locks it acquired in this call back to
// the caller via the returned Intent. If medium is already loaded on a
// device on this host, that device is reused directly; otherwise an
// empty device is picked (evicting one via the Drive-Freeing Planner if
// none is free) and the medium loaded into it, which on a rejected
// drive-to-drive move surfaces ErrRetryPossible rather than failing the
// device. On error, every lock acquired within this call is released
// before returning — media_prepare itself never unconditionally
// releases a lock it did not just acquire. op gates medium.FS.Status
// per spec.md §4.8 before anything else runs: READ/WRITE reject a
// blank medium, FORMAT rejects anything but blank.
func (s *Scheduler) mediaPrepare(ctx context.Context, owner string, medium *types.Medium, mediumLockedHere bool, op types.Operation) (*types.Intent, error) {
	if err := gateFSStatus(op, medium.FS.Status); err != nil {
		if mediumLockedHere {
			_ = s.releaseMedium(ctx, medium, medium.ID, owner)
		}
		return nil, err
	}

	var device *types.Device

	if resident := s.residentDevice(medium.ID); resident != nil && resident.Available() {
		if lockErr := s.dss.LockDevice(ctx, resident.Serial, owner); lockErr == nil {
			resident.LockedLocal = true
			if resident.Medium != nil && !resident.Medium.Lock.IsHeldByMe() {
				resident.Medium.Lock = types.HeldByMe(owner)
			}
			device = resident
		}
	}

	if device == nil {
		picked, err := s.picker.Pick(ctx, s.cache, picker.Options{
			Family: medium.Family,
			Status: []types.DeviceStatus{types.DeviceEmpty},
			Medium: medium,
			Rank:   s.rankPolicy(),
			Owner:  owner,
		})
		if err == types.ErrNoDevice || err == types.ErrRetryPossible {
			picked, err = s.freeing.Free(ctx, s.cache, owner, medium)
		}
		if err != nil {
			if mediumLockedHere {
				_ = s.releaseMedium(ctx, medium, medium.ID, owner)
			}
			return nil, err
		}
		device = picked
	}

	if device.Medium == nil || device.Medium.ID != medium.ID {
		slot, lookupErr := s.findMediumAddress(ctx, medium.ID)
		if lookupErr != nil {
			_ = s.releaseDevice(ctx, device, owner)
			if mediumLockedHere {
				_ = s.releaseMedium(ctx, medium, medium.ID, owner)
			}
			return nil, lookupErr
		}
		if err := s.mount.Load(ctx, device, medium, slot); err != nil {
			if err != types.ErrBusy {
				device.Status = types.DeviceFailed
			}
			_ = s.releaseDevice(ctx, device, owner)
			if mediumLockedHere {
				_ = s.releaseMedium(ctx, medium, medium.ID, owner)
			}
			if err == types.ErrBusy {
				return nil, types.ErrRetryPossible
			}
			return nil, err
		}
	}

	if device.Status != types.DeviceMounted {
		if err := s.mount.Mount(ctx, device); err != nil {
			_ = s.releaseDevice(ctx, device, owner)
			if mediumLockedHere {
				_ = s.releaseMedium(ctx, medium, medium.ID, owner)
			}
			return nil, err
		}
	}

	intent := types.NewIntent()
	intent.MountRoot = device.MountPath
	intent.MediumID = medium.ID
	intent.FSType = medium.FS.Type
	intent.Device = device

	s.activeIntents[device.Serial] = intent
	s.state.SaveDebounced(s.cache)
	return intent, nil
}

// residentDevice returns the cached device, if any, already holding
// mediumID on this host — the reuse case mediaPrepare prefers over
// loading the medium into a different device.
func (s *Scheduler) residentDevice(mediumID string) *types.Device {
	for _, d := range s.cache.Snapshot() {
		if d.ContainedMediumID == mediumID {
			return d
		}
	}
	return nil
}

// gateFSStatus enforces spec.md §4.8's media_prepare precondition: READ
// and WRITE require a medium already formatted (non-blank); FORMAT
// requires the medium still be blank.
func gateFSStatus(op types.Operation, status types.FSStatus) error {
	switch op {
	case types.OpFormat:
		if status != types.FSBlank {
			return types.ErrInvalid
		}
	case types.OpRead, types.OpWrite:
		if status == types.FSBlank {
			return types.ErrInvalid
		}
	}
	return nil
}

// findMediumAddress resolves the library slot/drive address currently
// holding mediumID. The device cache is checked first since it already
// holds the answer for a medium loaded on another tracked device
// (avoiding a library round trip); a library MediaLookup covers the
// common case of a medium still resident in a library slot.
func (s *Scheduler) findMediumAddress(ctx context.Context, mediumID string) (string, error) {
	for _, d := range s.cache.Snapshot() {
		if d.ContainedMediumID == mediumID {
			return d.LibraryAddress, nil
		}
	}
	address, err := s.adapters.Library.MediaLookup(ctx, mediumID)
	if err != nil {
		return "", types.ErrNotFound
	}
	return address, nil
}

func (s *Scheduler) releaseDevice(ctx context.Context, device *types.Device, owner string) error {
	device.LockedLocal = false
	return s.dss.UnlockDevice(ctx, device.Serial, owner)
}

// releaseMedium unlocks mediumID in DSS and, when the caller still
// holds a live reference to its record, clears the in-memory lock
// state too. Without this, a medium sitting in the device cache (not
// refreshed from DSS between calls, e.g. across read_prepare/format)
// would keep reporting itself held by an owner that already released
// it, letting a later Pick skip reacquiring the DSS lock altogether.
func (s *Scheduler) releaseMedium(ctx context.Context, medium *types.Medium, mediumID, owner string) error {
	err := s.dss.UnlockMedium(ctx, mediumID, owner)
	if medium != nil {
		medium.Lock = types.Unlocked()
	}
	return err
}

// fastPathIntent tries to satisfy a write against a device already
// holding a resident medium with room for size bytes carrying tags,
// skipping the Medium Selector entirely. It tries mounted devices first
// (fast path A, nothing left to do but hand back an Intent), then
// loaded devices (fast path B, which still needs a Mount call). Returns
// types.ErrNoDevice when no resident medium fits, the signal to fall
// through to the slow path.
func (s *Scheduler) fastPathIntent(ctx context.Context, owner, family string, size uint64, tags []string) (*types.Intent, error) {
	device, err := s.picker.Pick(ctx, s.cache, picker.Options{
		Family: family,
		Status: []types.DeviceStatus{types.DeviceMounted},
		Size:   size,
		Tags:   tags,
		Rank:   s.rankPolicy(),
		Owner:  owner,
	})
	if err != nil {
		device, err = s.picker.Pick(ctx, s.cache, picker.Options{
			Family: family,
			Status: []types.DeviceStatus{types.DeviceLoaded},
			Size:   size,
			Tags:   tags,
			Rank:   s.rankPolicy(),
			Owner:  owner,
		})
		if err != nil {
			return nil, err
		}
		if mountErr := s.mount.Mount(ctx, device); mountErr != nil {
			_ = s.releaseDevice(ctx, device, owner)
			_ = s.releaseMedium(ctx, device.Medium, device.Medium.ID, owner)
			return nil, mountErr
		}
	}

	intent := types.NewIntent()
	intent.MountRoot = device.MountPath
	intent.MediumID = device.Medium.ID
	intent.FSType = device.Medium.FS.Type
	intent.Device = device

	s.activeIntents[device.Serial] = intent
	s.state.SaveDebounced(s.cache)
	return intent, nil
}

// WritePrepare selects a medium with room for size bytes carrying tags,
// mounts a compatible device for it (evicting one if necessary), and
// returns an Intent the caller writes through. It refreshes the Device
// Cache first, then tries a resident mounted or loaded medium that
// already fits before falling to the Medium Selector. On a read-only
// mount (discovered via df) it marks the medium full, persists that,
// releases its locks and retries from selection once before surfacing
// ErrNoSpace.
func (s *Scheduler) WritePrepare(ctx context.Context, family string, size uint64, tags []string) (*types.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner := ownerid.New(s.opts.Host)

	if err := s.cache.Refresh(ctx); err != nil {
		s.log.Warn("write_prepare: cache refresh failed", "err", err)
	}

	if intent, err := s.fastPathIntent(ctx, owner, family, size, tags); err == nil {
		return intent, nil
	}

	for attempt := 0; attempt < 2; attempt++ {
		medium, err := s.selector.Select(ctx, owner, family, size, tags)
		if err != nil {
			return nil, err
		}

		intent, err := s.mediaPrepare(ctx, owner, medium, true, types.OpWrite)
		if err != nil {
			return nil, err
		}

		df, dfErr := s.mount.DF(ctx, intent.Device)
		if dfErr == nil && df.ReadOnly {
			intent.Device.Medium.FS.Status = types.FSFull
			intent.Device.Medium.Lock = types.Unlocked()
			_ = s.dss.UpdateMedium(ctx, intent.Device.Medium)
			delete(s.activeIntents, intent.Device.Serial)
			_ = s.releaseDevice(ctx, intent.Device, owner)
			_ = s.dss.UnlockMedium(ctx, intent.MediumID, owner)
			continue
		}

		return intent, nil
	}

	return nil, types.ErrNoSpace
}

// ReadPrepare resolves the medium carrying mediumID, locks it, and
// mounts a device for it, returning an Intent the caller reads through.
func (s *Scheduler) ReadPrepare(ctx context.Context, mediumID string) (*types.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner := ownerid.New(s.opts.Host)

	medium, err := s.dss.GetMedium(ctx, mediumID)
	if err != nil {
		return nil, err
	}

	lockedHere := false
	if !medium.Lock.IsHeldByMe() {
		if err := s.dss.LockMedium(ctx, medium.ID, owner); err != nil {
			return nil, err
		}
		medium.Lock = types.HeldByMe(owner)
		lockedHere = true
	}

	return s.mediaPrepare(ctx, owner, medium, lockedHere, types.OpRead)
}

// Format mounts (loading if necessary) a blank medium and formats it,
// releasing every lock acquired during the call unconditionally before
// returning, success or failure. When unlock is set, the medium's
// administrative lock is cleared on success, per spec.md §4.8.
func (s *Scheduler) Format(ctx context.Context, mediumID, fsType string, unlock bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner := ownerid.New(s.opts.Host)

	medium, err := s.dss.GetMedium(ctx, mediumID)
	if err != nil {
		return err
	}

	lockedHere := false
	if !medium.Lock.IsHeldByMe() {
		if err := s.dss.LockMedium(ctx, medium.ID, owner); err != nil {
			return err
		}
		medium.Lock = types.HeldByMe(owner)
		lockedHere = true
	}

	intent, err := s.mediaPrepare(ctx, owner, medium, lockedHere, types.OpFormat)
	if err != nil {
		return err
	}

	fmtErr := s.mount.Format(ctx, intent.Device, fsType)

	delete(s.activeIntents, intent.Device.Serial)
	_ = s.releaseDevice(ctx, intent.Device, owner)
	_ = s.releaseMedium(ctx, intent.Device.Medium, mediumID, owner)

	if fmtErr != nil {
		return fmtErr
	}

	medium.FS.Status = types.FSEmpty
	medium.FS.Type = fsType
	medium.FS.Label = mediumID
	if unlock {
		medium.AdminLocked = false
	}
	medium.Lock = types.Unlocked()
	return s.dss.UpdateMedium(ctx, medium)
}

// IOComplete flushes the IO adapter for the intent's mount root, then
// refreshes medium statistics via df, accumulates object and
// logical-used counters from fragments, and transitions the medium's
// filesystem status empty -> used. ioErr carries the caller's own
// result for the write the fragments belong to; a non-nil ioErr, or a
// flush failure, marks the medium full rather than used — both are
// treated as a global medium error per spec.md §4.8. The DSS update is
// best-effort: a failure is logged, never returned, since the data
// path operation it follows already completed.
func (s *Scheduler) IOComplete(ctx context.Context, deviceSerial string, fragments []types.Fragment, ioErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.activeIntents[deviceSerial]
	if !ok {
		return types.ErrNotFound
	}
	medium := intent.Device.Medium

	flushErr := s.adapters.IO.Flush(ctx, intent.MountRoot)

	var logicalAdded, objectsAdded uint64
	for _, f := range fragments {
		logicalAdded += f.Size
		objectsAdded++
	}

	if df, err := s.mount.DF(ctx, intent.Device); err == nil {
		medium.Stats.PhysFreeBytes = df.FreeBytes
		medium.Stats.PhysUsedBytes = df.UsedBytes
	} else {
		s.log.Warn("io_complete: df refresh failed", "medium", intent.MediumID, "err", err)
	}
	medium.Stats.LogicalUsedBytes += logicalAdded
	medium.Stats.ObjectCount += objectsAdded

	if ioErr != nil || flushErr != nil {
		medium.FS.Status = types.FSFull
	} else if medium.FS.Status == types.FSEmpty {
		medium.FS.Status = types.FSUsed
	}

	if err := s.dss.UpdateMedium(ctx, medium); err != nil {
		s.log.Error("failed to persist io_complete statistics", "medium", intent.MediumID, "err", err)
	}
	return nil
}

// ResourceRelease releases the device lock and then the medium lock held
// by the intent on deviceSerial, ending its lifetime. The device is not
// unmounted or unloaded.
func (s *Scheduler) ResourceRelease(ctx context.Context, deviceSerial, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.activeIntents[deviceSerial]
	if !ok {
		return nil
	}
	delete(s.activeIntents, deviceSerial)

	if err := s.releaseDevice(ctx, intent.Device, owner); err != nil {
		s.log.Warn("failed to release device lock", "serial", deviceSerial, "err", err)
	}
	if err := s.releaseMedium(ctx, intent.Device.Medium, intent.MediumID, owner); err != nil {
		s.log.Warn("failed to release medium lock", "medium", intent.MediumID, "err", err)
	}
	s.state.SaveDebounced(s.cache)
	return nil
}

// Locate resolves which host currently holds the medium whose ID equals
// objectID, by querying DSS medium rows across all hosts. The argument
// is matched against medium IDs only: there is no object-to-medium
// lookup and no version argument. It is a read-only, cross-host query — the one orchestrator operation that
// is not scoped to this process's own cache.
func (s *Scheduler) Locate(ctx context.Context, objectID string) (string, error) {
	media, err := s.dss.GetMedia(ctx, types.MediumFilter{ID: objectID})
	if err != nil {
		return "", err
	}
	if len(media) == 0 {
		return "", types.ErrNotFound
	}
	if len(media) > 1 {
		return "", types.ErrAmbiguous
	}
	if media[0].Host == "" {
		return "", types.ErrNotFound
	}
	return media[0].Host, nil
}
