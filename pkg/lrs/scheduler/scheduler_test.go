// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package scheduler

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stratastor/logger"
	"github.com/stratastor/lrs/config"
	"github.com/stratastor/lrs/pkg/lrs/compat"
	"github.com/stratastor/lrs/pkg/lrs/dss"
	"github.com/stratastor/lrs/pkg/lrs/ldm"
	"github.com/stratastor/lrs/pkg/lrs/types"
	"github.com/stretchr/testify/require"
)

// harness bundles the fakes a scheduler test drives directly, so a test
// can seed DSS/library state and then assert on scheduler behavior
// without touching any real hardware or network.
type harness struct {
	t      *testing.T
	dss    *dss.Fake
	sim    *ldm.Sim
	sched  *Scheduler
}

func newHarness(t *testing.T, policy Policy) *harness {
	t.Helper()
	return newHarnessOn(t, policy, "testhost", dss.NewFake())
}

// newHarnessOn builds a harness bound to host, against fake rather than a
// fresh DSS — letting a test run several schedulers, each with its own
// library sim, against one shared DSS fake, the way two LRS instances on
// different hosts would share one DSS backend.
func newHarnessOn(t *testing.T, policy Policy, host string, fake *dss.Fake) *harness {
	t.Helper()

	log, err := logger.NewTag(logger.Config{LogLevel: "error"}, "test")
	require.NoError(t, err)

	sim := ldm.NewSim()
	adapters := ldm.Adapters{Device: sim, Library: sim, FS: sim, IO: sim}

	cfg := &config.Config{
		DriveType: map[string]config.DriveType{
			"lto8": {Models: []string{"ULT3580-TD8"}},
		},
		TapeType: map[string]config.TapeType{
			"LTO8": {DriveRW: []string{"lto8"}},
		},
	}
	oracle := compat.NewOracle(cfg)

	sched := New(fake, adapters, oracle, log, Options{
		Host:        host,
		Family:      "tape",
		MountPrefix: t.TempDir() + "/",
		Policy:      policy,
		StatePath:   filepath.Join(t.TempDir(), "state.json"),
	})

	return &harness{t: t, dss: fake, sim: sim, sched: sched}
}

// seedDrive registers a drive in both DSS and the library sim, wiring
// the device path/serial so DeviceCache.Refresh can resolve it.
func (h *harness) seedDrive(serial, address string) {
	h.t.Helper()
	path := "/dev/" + serial
	h.sim.SeedDrive(address, path, ldm.DeviceInfo{Model: "ULT3580-TD8", Serial: serial})
	h.dss.SeedDevice(&types.Device{
		Family:         "tape",
		Serial:         serial,
		Model:          "ULT3580-TD8",
		Host:           "testhost",
		LibraryAddress: address,
	})
}

// seedMedium seeds a medium row in DSS, and places it in the library
// sim at address (a slot or a drive's address, loading it if a drive).
func (h *harness) seedMedium(id string, free uint64, tags ...string) *types.Medium {
	h.t.Helper()
	tagSet := map[string]struct{}{}
	for _, tg := range tags {
		tagSet[tg] = struct{}{}
	}
	m := &types.Medium{
		Family: "tape",
		ID:     id,
		Model:  "LTO8",
		Tags:   tagSet,
		FS:     types.FilesystemInfo{Type: "ltfs", Status: types.FSEmpty},
		Stats:  types.MediumStats{PhysFreeBytes: free},
	}
	h.dss.SeedMedium(m)
	return m
}

func (h *harness) refresh(ctx context.Context) {
	h.t.Helper()
	require.NoError(h.t, h.sched.cache.Refresh(ctx))
}

// TestWritePrepareColdStartLoadsAndMounts covers the cold PUT scenario:
// no resident medium, one empty compatible drive, one fitting medium in
// the library. write_prepare must select it, load it into the drive,
// mount it and hand back an Intent.
func TestWritePrepareColdStartLoadsAndMounts(t *testing.T) {
	h := newHarness(t, PolicyBestFit)
	ctx := context.Background()

	h.seedDrive("DRV1", "drive-0")
	h.seedMedium("VOL001", 10<<30, "tier1")
	h.sim.SeedMedium("slot-1", "VOL001")
	h.refresh(ctx)

	intent, err := h.sched.WritePrepare(ctx, "tape", 1<<30, []string{"tier1"})
	require.NoError(t, err)
	require.NotNil(t, intent)
	require.Equal(t, "VOL001", intent.MediumID)
	require.Equal(t, types.DeviceMounted, intent.Device.Status)
	require.NotEmpty(t, intent.MountRoot)
}

// TestWritePrepareEvictsWhenAllDrivesOccupied covers the "PUT must
// evict" scenario: both drives already hold media with no room, a third
// medium needs the tightest-fitting occupied drive freed first.
func TestWritePrepareEvictsWhenAllDrivesOccupied(t *testing.T) {
	h := newHarness(t, PolicyBestFit)
	ctx := context.Background()

	h.seedDrive("DRV1", "drive-0")
	h.seedDrive("DRV2", "drive-1")

	h.seedMedium("VOL001", 100, "tier1")
	h.sim.SeedMedium("drive-0", "VOL001")
	h.seedMedium("VOL002", 200, "tier1")
	h.sim.SeedMedium("drive-1", "VOL002")

	h.seedMedium("VOL003", 5<<30, "tier1")
	h.sim.SeedMedium("slot-3", "VOL003")

	h.refresh(ctx)

	intent, err := h.sched.WritePrepare(ctx, "tape", 1<<30, []string{"tier1"})
	require.NoError(t, err)
	require.Equal(t, "VOL003", intent.MediumID)

	// DRV1 held the tighter-fitting resident medium (VOL001, 100 bytes
	// free) so DriveToFree evicts it rather than DRV2.
	require.Equal(t, "DRV1", intent.Device.Serial)
}

// TestWritePrepareTagMismatchFallsThroughToSelector checks that a
// resident medium lacking a requested tag is skipped by the fast path
// and by the Medium Selector, surfacing ErrNoSpace when nothing else
// qualifies.
func TestWritePrepareTagMismatchFallsThroughToSelector(t *testing.T) {
	h := newHarness(t, PolicyBestFit)
	ctx := context.Background()

	h.seedDrive("DRV1", "drive-0")
	h.seedMedium("VOL001", 5<<30, "tier1")
	h.sim.SeedMedium("drive-0", "VOL001")
	h.refresh(ctx)

	_, err := h.sched.WritePrepare(ctx, "tape", 1<<30, []string{"tier2"})
	require.ErrorIs(t, err, types.ErrNoSpace)
}

// TestWritePrepareReadOnlyMountRetriesThenMarksFull exercises the
// read-only-remount recovery path: df reports the first selected medium
// mounted read-only, write_prepare marks it full and retries once
// against the next-best candidate.
func TestWritePrepareReadOnlyMountRetriesThenMarksFull(t *testing.T) {
	h := newHarness(t, PolicyBestFit)
	ctx := context.Background()

	h.seedDrive("DRV1", "drive-0")
	h.seedDrive("DRV2", "drive-1")

	h.seedMedium("VOL001", 1<<20, "tier1")
	h.sim.SeedMedium("slot-1", "VOL001")
	h.seedMedium("VOL002", 5<<30, "tier1")
	h.sim.SeedMedium("slot-2", "VOL002")
	h.refresh(ctx)

	// The tighter-fitting VOL001 gets picked first; make its mount
	// report read-only so write_prepare must reject and retry.
	mountPath := h.sched.opts.MountPrefix + "DRV1"
	h.sim.SetReadOnly(mountPath, true)

	intent, err := h.sched.WritePrepare(ctx, "tape", 512<<10, []string{"tier1"})
	require.NoError(t, err)
	require.Equal(t, "VOL002", intent.MediumID)

	stale, err := h.dss.GetMedium(ctx, "VOL001")
	require.NoError(t, err)
	require.Equal(t, types.FSFull, stale.FS.Status)
}

// TestWritePrepareBothReadOnlySurfacesNoSpace checks that when the
// retry's own candidate is also read-only, write_prepare gives up with
// ErrNoSpace rather than looping forever.
func TestWritePrepareBothReadOnlySurfacesNoSpace(t *testing.T) {
	h := newHarness(t, PolicyBestFit)
	ctx := context.Background()

	h.seedDrive("DRV1", "drive-0")
	h.seedDrive("DRV2", "drive-1")

	h.seedMedium("VOL001", 1<<20, "tier1")
	h.sim.SeedMedium("slot-1", "VOL001")
	h.seedMedium("VOL002", 2<<20, "tier1")
	h.sim.SeedMedium("slot-2", "VOL002")
	h.refresh(ctx)

	h.sim.SetReadOnly(h.sched.opts.MountPrefix+"DRV1", true)
	h.sim.SetReadOnly(h.sched.opts.MountPrefix+"DRV2", true)

	_, err := h.sched.WritePrepare(ctx, "tape", 512<<10, []string{"tier1"})
	require.ErrorIs(t, err, types.ErrNoSpace)
}

// TestWritePrepareLibraryRejectsDriveToDriveMove covers spec scenario 5:
// the target medium is already loaded in DRV1, but DRV1 is unavailable
// (busy with another in-flight operation) so media_prepare falls back
// to loading it into the empty DRV2 instead of reusing DRV1 directly.
// The library refuses that drive-to-drive move, leaving DRV2 empty and
// surfacing the rejection as ErrRetryPossible rather than failing the
// device.
func TestWritePrepareLibraryRejectsDriveToDriveMove(t *testing.T) {
	h := newHarness(t, PolicyBestFit)
	ctx := context.Background()

	h.seedDrive("DRV1", "drive-a")
	h.seedDrive("DRV2", "drive-b")

	h.seedMedium("VOLX", 5<<30, "tier1")
	h.sim.SeedMedium("drive-a", "VOLX")
	h.refresh(ctx)

	for _, d := range h.sched.cache.Snapshot() {
		if d.Serial == "DRV1" {
			d.LockedLocal = true
		}
	}
	h.sim.RejectDriveToDriveMove = true

	_, err := h.sched.WritePrepare(ctx, "tape", 1<<30, []string{"tier1"})
	require.ErrorIs(t, err, types.ErrRetryPossible)

	for _, d := range h.sched.cache.Snapshot() {
		if d.Serial == "DRV2" {
			require.Equal(t, types.DeviceEmpty, d.Status)
		}
	}
}

// TestFormatThenWritePrepareRoundTrip covers format-then-PUT: a blank
// medium is formatted, and a subsequent write_prepare against its
// family succeeds through the fast path since the device is still
// loaded with room to spare.
func TestFormatThenWritePrepareRoundTrip(t *testing.T) {
	h := newHarness(t, PolicyBestFit)
	ctx := context.Background()

	h.seedDrive("DRV1", "drive-0")
	m := h.seedMedium("VOL001", 5<<30)
	m.FS.Status = types.FSBlank
	m.AdminLocked = true
	h.dss.SeedMedium(m)
	h.sim.SeedMedium("slot-1", "VOL001")
	h.refresh(ctx)

	require.NoError(t, h.sched.Format(ctx, "VOL001", "ltfs", true))

	formatted, err := h.dss.GetMedium(ctx, "VOL001")
	require.NoError(t, err)
	require.Equal(t, types.FSEmpty, formatted.FS.Status)
	require.Equal(t, "ltfs", formatted.FS.Type)
	require.Equal(t, "VOL001", formatted.FS.Label)
	require.False(t, formatted.AdminLocked)

	intent, err := h.sched.WritePrepare(ctx, "tape", 1<<20, nil)
	require.NoError(t, err)
	require.Equal(t, "VOL001", intent.MediumID)
	require.Equal(t, "DRV1", intent.Device.Serial)
}

// TestSelectorExternallyLockedOnlyCandidateIsRetryable checks the
// EAGAIN/ENOSPC boundary: a single fitting medium held by another owner
// must yield ErrRetryPossible, not ErrNoSpace.
func TestSelectorExternallyLockedOnlyCandidateIsRetryable(t *testing.T) {
	h := newHarness(t, PolicyBestFit)
	ctx := context.Background()

	h.seedMedium("VOL001", 5<<30, "tier1")
	require.NoError(t, h.dss.LockMedium(ctx, "VOL001", "someone-else"))

	_, err := h.sched.selector.Select(ctx, "me", "tape", 1<<20, []string{"tier1"})
	require.ErrorIs(t, err, types.ErrRetryPossible)
}

// TestIOCompleteAccumulatesStatsAndMarksUsed drives write_prepare then
// io_complete, checking that fragment accounting lands on the medium
// and its filesystem status flips from empty to used.
func TestIOCompleteAccumulatesStatsAndMarksUsed(t *testing.T) {
	h := newHarness(t, PolicyBestFit)
	ctx := context.Background()

	h.seedDrive("DRV1", "drive-0")
	h.seedMedium("VOL001", 5<<30, "tier1")
	h.sim.SeedMedium("slot-1", "VOL001")
	h.refresh(ctx)

	intent, err := h.sched.WritePrepare(ctx, "tape", 1<<20, []string{"tier1"})
	require.NoError(t, err)

	h.sim.SetDF(intent.MountRoot, 4<<30, 1<<30)

	err = h.sched.IOComplete(ctx, intent.Device.Serial, []types.Fragment{
		{Location: "obj-1", Size: 4096},
		{Location: "obj-2", Size: 8192},
	}, nil)
	require.NoError(t, err)

	updated, err := h.dss.GetMedium(ctx, "VOL001")
	require.NoError(t, err)
	require.Equal(t, types.FSUsed, updated.FS.Status)
	require.Equal(t, uint64(12288), updated.Stats.LogicalUsedBytes)
	require.Equal(t, uint64(2), updated.Stats.ObjectCount)
	require.Equal(t, uint64(4<<30), updated.Stats.PhysFreeBytes)
}

// TestIOCompleteErrorMarksMediumFull checks that a non-nil ioErr marks
// the medium full even though the flush itself succeeded.
func TestIOCompleteErrorMarksMediumFull(t *testing.T) {
	h := newHarness(t, PolicyBestFit)
	ctx := context.Background()

	h.seedDrive("DRV1", "drive-0")
	h.seedMedium("VOL001", 5<<30, "tier1")
	h.sim.SeedMedium("slot-1", "VOL001")
	h.refresh(ctx)

	intent, err := h.sched.WritePrepare(ctx, "tape", 1<<20, []string{"tier1"})
	require.NoError(t, err)

	err = h.sched.IOComplete(ctx, intent.Device.Serial, nil, context.DeadlineExceeded)
	require.NoError(t, err)

	updated, err := h.dss.GetMedium(ctx, "VOL001")
	require.NoError(t, err)
	require.Equal(t, types.FSFull, updated.FS.Status)
}

// TestResourceReleaseFreesLocksForReuse checks that resource_release
// lets a subsequent write_prepare lock the same device again.
func TestResourceReleaseFreesLocksForReuse(t *testing.T) {
	h := newHarness(t, PolicyBestFit)
	ctx := context.Background()

	h.seedDrive("DRV1", "drive-0")
	h.seedMedium("VOL001", 5<<30, "tier1")
	h.sim.SeedMedium("slot-1", "VOL001")
	h.refresh(ctx)

	intent, err := h.sched.WritePrepare(ctx, "tape", 1<<20, []string{"tier1"})
	require.NoError(t, err)

	owner := intent.Device.Medium.Lock.Owner
	require.NoError(t, h.sched.ResourceRelease(ctx, intent.Device.Serial, owner))
	require.Empty(t, h.sched.Intents())

	intent2, err := h.sched.WritePrepare(ctx, "tape", 1<<20, []string{"tier1"})
	require.NoError(t, err)
	require.Equal(t, "DRV1", intent2.Device.Serial)
}

// TestReapStaleIntentsReleasesOutstandingLocks checks the maintenance
// job's safety net: an intent nobody released within ttl gets its
// locks torn down so the device becomes available again.
func TestReapStaleIntentsReleasesOutstandingLocks(t *testing.T) {
	h := newHarness(t, PolicyBestFit)
	ctx := context.Background()

	h.seedDrive("DRV1", "drive-0")
	h.seedMedium("VOL001", 5<<30, "tier1")
	h.sim.SeedMedium("slot-1", "VOL001")
	h.refresh(ctx)

	_, err := h.sched.WritePrepare(ctx, "tape", 1<<20, []string{"tier1"})
	require.NoError(t, err)
	require.Len(t, h.sched.Intents(), 1)

	reaped := h.sched.ReapStaleIntents(ctx, 0)
	require.Equal(t, 1, reaped)
	require.Empty(t, h.sched.Intents())

	intent, err := h.sched.WritePrepare(ctx, "tape", 1<<20, []string{"tier1"})
	require.NoError(t, err)
	require.Equal(t, "DRV1", intent.Device.Serial)
}

// TestTwoSchedulersShareDSSObserveEachOthersLocks runs two independent
// Scheduler instances, one per host, against one shared dss.Fake,
// checking the lock-discipline property spec.md §8 requires across
// hosts: a medium locked by one scheduler's write_prepare is unavailable
// to the other until the first releases it via resource_release.
func TestTwoSchedulersShareDSSObserveEachOthersLocks(t *testing.T) {
	ctx := context.Background()
	fake := dss.NewFake()

	hA := newHarnessOn(t, PolicyBestFit, "hostA", fake)
	hB := newHarnessOn(t, PolicyBestFit, "hostB", fake)

	hA.dss.SeedDevice(&types.Device{
		Family: "tape", Serial: "DRV-A", Model: "ULT3580-TD8",
		Host: "hostA", LibraryAddress: "drive-0",
	})
	hA.sim.SeedDrive("drive-0", "/dev/DRV-A", ldm.DeviceInfo{Model: "ULT3580-TD8", Serial: "DRV-A"})
	hA.sim.SeedMedium("slot-1", "VOL001")
	m := &types.Medium{
		Family: "tape", ID: "VOL001", Model: "LTO8",
		FS:    types.FilesystemInfo{Type: "ltfs", Status: types.FSEmpty},
		Stats: types.MediumStats{PhysFreeBytes: 5 << 30},
	}
	fake.SeedMedium(m)
	hA.refresh(ctx)

	intent, err := hA.sched.WritePrepare(ctx, "tape", 1<<20, nil)
	require.NoError(t, err)
	owner := intent.Device.Medium.Lock.Owner

	_, err = hB.sched.ReadPrepare(ctx, "VOL001")
	require.ErrorIs(t, err, types.ErrRetryPossible)

	require.NoError(t, hA.sched.ResourceRelease(ctx, intent.Device.Serial, owner))

	_, err = hB.sched.ReadPrepare(ctx, "VOL001")
	require.NotErrorIs(t, err, types.ErrRetryPossible)
}

// TestLocateResolvesHostAndReportsMissing covers locate()'s single-
// match and no-match behaviors.
func TestLocateResolvesHostAndReportsMissing(t *testing.T) {
	h := newHarness(t, PolicyBestFit)
	ctx := context.Background()

	m := h.seedMedium("VOL001", 5<<30)
	m.Host = "hostA"
	h.dss.SeedMedium(m)

	host, err := h.sched.Locate(ctx, "VOL001")
	require.NoError(t, err)
	require.Equal(t, "hostA", host)

	_, err = h.sched.Locate(ctx, "missing")
	require.ErrorIs(t, err, types.ErrNotFound)
}
