// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package compat answers whether a given medium model can be read and
// written by a given drive, from the configured drive_type/tape_type
// tables.
package compat

import (
	"github.com/stratastor/lrs/config"
	"github.com/stratastor/lrs/pkg/lrs/types"
)

// Oracle answers medium/drive compatibility questions against the
// loaded configuration.
type Oracle struct {
	cfg *config.Config
}

// NewOracle builds an Oracle over cfg. A nil cfg falls back to
// config.GetConfig().
func NewOracle(cfg *config.Config) *Oracle {
	if cfg == nil {
		cfg = config.GetConfig()
	}
	return &Oracle{cfg: cfg}
}

// CanReadWrite reports whether drive can read and write mediumModel.
// Non-tape families are always compatible: only tape drives impose a
// generation compatibility window.
func (o *Oracle) CanReadWrite(mediumModel string, drive types.Device) bool {
	if drive.Family != "tape" {
		return true
	}

	tt, ok := o.cfg.TapeType[mediumModel]
	if !ok {
		return false
	}

	driveType := o.driveTypeOf(drive.Model)
	if driveType == "" {
		return false
	}

	for _, rw := range tt.DriveRW {
		if rw == driveType {
			return true
		}
	}
	return false
}

// driveTypeOf resolves a drive's reported model string to the
// configured drive_type name that lists it.
func (o *Oracle) driveTypeOf(driveModel string) string {
	for name, dt := range o.cfg.DriveType {
		for _, m := range dt.Models {
			if m == driveModel {
				return name
			}
		}
	}
	return ""
}
