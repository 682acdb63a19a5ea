// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package ldm

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/stratastor/logger"
	"github.com/stratastor/lrs/internal/command"
	rterrors "github.com/stratastor/lrs/pkg/errors"
	"github.com/stratastor/lrs/pkg/lrs/types"
)

// LocalDevice resolves device identity via lsscsi and sg_inq, shelling
// out through the teacher's command-executor pattern.
type LocalDevice struct {
	log logger.Logger
}

func NewLocalDevice(log logger.Logger) *LocalDevice {
	return &LocalDevice{log: log}
}

func (d *LocalDevice) Lookup(ctx context.Context, serial string) (string, error) {
	out, err := command.ExecCommand(ctx, d.log, "/usr/bin/lsscsi", "--scsi_id")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, serial) {
			fields := strings.Fields(line)
			if len(fields) > 0 {
				return fields[len(fields)-1], nil
			}
		}
	}
	return "", fmt.Errorf("device with serial %s not found", shellquote.Join(serial))
}

func (d *LocalDevice) Query(ctx context.Context, path string) (DeviceInfo, error) {
	out, err := command.ExecCommand(ctx, d.log, "/usr/bin/sg_inq", path)
	if err != nil {
		return DeviceInfo{}, err
	}
	info := DeviceInfo{}
	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Product identification:"):
			info.Model = strings.TrimSpace(strings.TrimPrefix(line, "Product identification:"))
		case strings.HasPrefix(line, "Unit serial number:"):
			info.Serial = strings.TrimSpace(strings.TrimPrefix(line, "Unit serial number:"))
		}
	}
	return info, nil
}

// LocalLibrary drives a SCSI medium changer through mtx.
type LocalLibrary struct {
	log    logger.Logger
	device string // changer device, e.g. /dev/changer
}

func NewLocalLibrary(log logger.Logger, device string) *LocalLibrary {
	return &LocalLibrary{log: log, device: device}
}

func (l *LocalLibrary) Open(ctx context.Context, address string) error  { return nil }
func (l *LocalLibrary) Close(ctx context.Context, address string) error { return nil }

func (l *LocalLibrary) DriveLookup(ctx context.Context, address string) (DriveInfo, error) {
	out, err := command.ExecCommand(ctx, l.log, "/usr/sbin/mtx", "-f", l.device, "status")
	if err != nil {
		return DriveInfo{}, err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if !strings.Contains(line, fmt.Sprintf("Drive %s", address)) {
			continue
		}
		if strings.Contains(line, "Empty") {
			return DriveInfo{Address: address, Full: false}, nil
		}
		if idx := strings.Index(line, "Element "); idx >= 0 {
			rest := line[idx+len("Element "):]
			id := strings.TrimSpace(strings.SplitN(rest, " ", 2)[0])
			return DriveInfo{Address: address, Full: true, MediumID: strings.TrimSuffix(id, ":")}, nil
		}
	}
	return DriveInfo{}, fmt.Errorf("drive %s not reported by changer", address)
}

func (l *LocalLibrary) MediaLookup(ctx context.Context, mediumID string) (string, error) {
	out, err := command.ExecCommand(ctx, l.log, "/usr/sbin/mtx", "-f", l.device, "status")
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(string(out), "\n") {
		if strings.Contains(line, mediumID) {
			fields := strings.Fields(line)
			if len(fields) >= 2 {
				return fields[1], nil
			}
		}
	}
	return "", fmt.Errorf("medium %s not found in library", mediumID)
}

// MediaMove shells out to mtx transfer. A changer that rejects a
// drive-to-drive move exits with EINVAL (errno 22); that specific case
// is reported as types.ErrBusy so mount.Load can leave the device
// state untouched rather than demoting it to failed. Any other
// failure propagates verbatim.
func (l *LocalLibrary) MediaMove(ctx context.Context, src, dst string) error {
	args := []string{"-f", l.device, "transfer", src}
	if dst != "" {
		args = append(args, dst)
	}
	_, err := command.ExecCommand(ctx, l.log, "/usr/sbin/mtx", args...)
	if err == nil {
		return nil
	}
	if lrsErr, ok := err.(*rterrors.LRSError); ok && lrsErr.Metadata["exit_code"] == "22" {
		return types.ErrBusy
	}
	return err
}

// LocalFS shells out to mount/umount/mkfs/df.
type LocalFS struct {
	log logger.Logger
}

func NewLocalFS(log logger.Logger) *LocalFS {
	return &LocalFS{log: log}
}

func (f *LocalFS) Mounted(ctx context.Context, devicePath string) (string, bool, error) {
	out, err := command.ExecCommand(ctx, f.log, "/usr/bin/findmnt", "-n", "-o", "TARGET", devicePath)
	if err != nil {
		// findmnt exits non-zero when there's no match; that's a normal
		// "not mounted" result, not an adapter failure.
		if _, ok := err.(*exec.ExitError); ok {
			return "", false, nil
		}
		return "", false, nil
	}
	path := strings.TrimSpace(string(out))
	if path == "" {
		return "", false, nil
	}
	return path, true, nil
}

func (f *LocalFS) Mount(ctx context.Context, devicePath, mountPath, fsType string) error {
	_, err := command.ExecCommand(ctx, f.log, "/usr/bin/mount", "-t", fsType, devicePath, mountPath)
	return err
}

func (f *LocalFS) Umount(ctx context.Context, mountPath string) error {
	_, err := command.ExecCommand(ctx, f.log, "/usr/bin/umount", mountPath)
	return err
}

func (f *LocalFS) Format(ctx context.Context, devicePath, fsType string) error {
	_, err := command.ExecCommand(ctx, f.log, "/usr/sbin/mkfs", "-t", fsType, devicePath)
	return err
}

func (f *LocalFS) DF(ctx context.Context, mountPath string) (DFResult, error) {
	out, err := command.ExecCommand(ctx, f.log, "/usr/bin/df", "-B1", "--output=avail,used", mountPath)
	if err != nil {
		return DFResult{}, err
	}
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) < 2 {
		return DFResult{}, fmt.Errorf("unexpected df output for %s", mountPath)
	}
	fields := strings.Fields(lines[len(lines)-1])
	if len(fields) != 2 {
		return DFResult{}, fmt.Errorf("unexpected df fields for %s", mountPath)
	}
	free, err := strconv.ParseUint(fields[0], 10, 64)
	if err != nil {
		return DFResult{}, err
	}
	used, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return DFResult{}, err
	}

	readOnly := false
	if opts, err := command.ExecCommand(ctx, f.log, "/usr/bin/findmnt", "-n", "-o", "OPTIONS", mountPath); err == nil {
		for _, opt := range strings.Split(strings.TrimSpace(string(opts)), ",") {
			if opt == "ro" {
				readOnly = true
				break
			}
		}
	}

	return DFResult{FreeBytes: free, UsedBytes: used, ReadOnly: readOnly}, nil
}

// LocalIO flushes pending writes on a mounted medium, as io_complete
// does after a write.
type LocalIO struct {
	log logger.Logger
}

func NewLocalIO(log logger.Logger) *LocalIO {
	return &LocalIO{log: log}
}

func (i *LocalIO) Flush(ctx context.Context, mountPath string) error {
	_, err := command.ExecCommand(ctx, i.log, "/usr/bin/sync", "-f", mountPath)
	return err
}
