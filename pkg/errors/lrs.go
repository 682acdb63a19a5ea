/*
 * Copyright 2024-2025 Raamsri Kumar <raam@tinkershack.in>
 * Copyright 2024-2025 The StrataSTOR Authors and Contributors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package errors

import (
	"maps"
	"net/http"
)

const (
	// Invalid input (3000-3019)
	LRSInvalidFilter     = 3000 + iota // malformed device/medium filter expression
	LRSInvalidFamily                   // unknown medium family requested
	LRSInvalidTarget                   // bad write/read target spec
	LRSInvalidLockHandle               // caller presented a lock handle it does not hold
	LRSInvalidRequest                  // request failed structural validation
)

const (
	// Not found (3020-3039): a missing medium maps to POSIX ENXIO, the
	// others to ENOENT
	LRSMediumNotFound = 3020 + iota // no medium matches the requested id/filter
	LRSDeviceNotFound                // no device matches the requested id/filter
	LRSIntentNotFound                // resource_release/io_complete referenced an unknown intent
)

const (
	// Ambiguous selection (3040-3049)
	LRSAmbiguousSelection = 3040 + iota // selector matched more than one equally-ranked candidate under a policy requiring uniqueness
)

const (
	// Capacity exhausted, maps to POSIX ENOSPC (3050-3059)
	LRSNoSpace = 3050 + iota // no medium in the requested family has enough free capacity
	LRSMediumFull
)

const (
	// No usable device, maps to POSIX ENODEV (3060-3069)
	LRSNoDevice = 3060 + iota // no device is compatible with the selected medium's family
	LRSNoCompatibleDrive
)

const (
	// Transient contention, maps to POSIX EAGAIN (3070-3079)
	LRSResourceBusy = 3070 + iota // medium or device is locked by another owner right now; retry later
	LRSDeviceBusy
	LRSFreeingInProgress
)

const (
	// Library motion rejected, maps to POSIX EBUSY surfaced as EAGAIN (3080-3089)
	LRSLibraryBusy = 3080 + iota // the physical library rejected a load/unload request
	LRSMoveRejected
)

const (
	// Adapter / fatal I/O (3090-3099)
	LRSAdapterError = 3090 + iota // LDM adapter call failed (mount, mkfs, drive motion, I/O)
	LRSDeviceFailed                // device transitioned to failed state
)

const (
	// DSS / config / local state persistence, ambient (3100-3109)
	LRSDSSUnavailable = 3100 + iota // DSS client could not reach the metadata store
	LRSStatePersistFailed
	LRSConfigInvalid
)

func init() {
	maps.Copy(errorDefinitions, lrsErrorDefinitions)
}

var lrsErrorDefinitions = map[ErrorCode]struct {
	message    string
	domain     Domain
	httpStatus int
}{
	LRSInvalidFilter: {
		"invalid filter expression",
		DomainLRS,
		http.StatusBadRequest,
	},
	LRSInvalidFamily: {
		"unknown medium family",
		DomainLRS,
		http.StatusBadRequest,
	},
	LRSInvalidTarget: {
		"invalid write/read target",
		DomainLRS,
		http.StatusBadRequest,
	},
	LRSInvalidLockHandle: {
		"lock handle not held by caller",
		DomainLRS,
		http.StatusBadRequest,
	},
	LRSInvalidRequest: {
		"request failed validation",
		DomainLRS,
		http.StatusBadRequest,
	},
	LRSMediumNotFound: {
		"no medium matches the request",
		DomainLRS,
		http.StatusNotFound,
	},
	LRSDeviceNotFound: {
		"no device matches the request",
		DomainLRS,
		http.StatusNotFound,
	},
	LRSIntentNotFound: {
		"unknown intent handle",
		DomainLRS,
		http.StatusNotFound,
	},
	LRSAmbiguousSelection: {
		"selection is ambiguous under the current policy",
		DomainLRS,
		http.StatusConflict,
	},
	LRSNoSpace: {
		"no medium with sufficient free capacity",
		DomainLRS,
		http.StatusInsufficientStorage,
	},
	LRSMediumFull: {
		"medium has no free capacity",
		DomainLRS,
		http.StatusInsufficientStorage,
	},
	LRSNoDevice: {
		"no compatible device available",
		DomainLRS,
		http.StatusServiceUnavailable,
	},
	LRSNoCompatibleDrive: {
		"no drive compatible with the medium's family",
		DomainLRS,
		http.StatusServiceUnavailable,
	},
	LRSResourceBusy: {
		"resource is locked by another owner",
		DomainLRS,
		http.StatusConflict,
	},
	LRSDeviceBusy: {
		"device is locked by another owner",
		DomainLRS,
		http.StatusConflict,
	},
	LRSFreeingInProgress: {
		"a drive-freeing plan is already in flight for this device",
		DomainLRS,
		http.StatusConflict,
	},
	LRSLibraryBusy: {
		"library rejected the move request",
		DomainLRS,
		http.StatusConflict,
	},
	LRSMoveRejected: {
		"drive motion was rejected",
		DomainLRS,
		http.StatusConflict,
	},
	LRSAdapterError: {
		"device/library/fs adapter call failed",
		DomainLRS,
		http.StatusBadGateway,
	},
	LRSDeviceFailed: {
		"device is in a failed state",
		DomainLRS,
		http.StatusServiceUnavailable,
	},
	LRSDSSUnavailable: {
		"metadata store unavailable",
		DomainLRS,
		http.StatusBadGateway,
	},
	LRSStatePersistFailed: {
		"failed to persist local scheduler state",
		DomainLRS,
		http.StatusInternalServerError,
	},
	LRSConfigInvalid: {
		"invalid scheduler configuration",
		DomainLRS,
		http.StatusBadRequest,
	},
}

// POSIX-style classification used by callers (CLI exit codes, DSS intent
// bookkeeping) that need to react to a category of failure rather than a
// specific code.
type Errno string

const (
	ErrnoEAGAIN Errno = "EAGAIN"
	ErrnoENOSPC Errno = "ENOSPC"
	ErrnoENODEV Errno = "ENODEV"
	ErrnoENXIO  Errno = "ENXIO"
	ErrnoEBUSY  Errno = "EBUSY"
	ErrnoEINVAL Errno = "EINVAL"
	ErrnoENOENT Errno = "ENOENT"
)

// Errno maps an LRS error code onto the POSIX-style errno family that
// spec.md's Error Handling Design requires callers be able to branch on.
func (e *LRSError) Errno() Errno {
	switch {
	case e.Code >= LRSInvalidFilter && e.Code <= LRSInvalidRequest:
		return ErrnoEINVAL
	case e.Code == LRSMediumNotFound:
		return ErrnoENXIO
	case e.Code >= LRSMediumNotFound && e.Code <= LRSIntentNotFound:
		return ErrnoENOENT
	case e.Code == LRSAmbiguousSelection:
		return ErrnoEINVAL
	case e.Code >= LRSNoSpace && e.Code <= LRSMediumFull:
		return ErrnoENOSPC
	case e.Code >= LRSNoDevice && e.Code <= LRSNoCompatibleDrive:
		return ErrnoENODEV
	case e.Code >= LRSResourceBusy && e.Code <= LRSFreeingInProgress:
		return ErrnoEAGAIN
	case e.Code >= LRSLibraryBusy && e.Code <= LRSMoveRejected:
		return ErrnoEBUSY
	case e.Code >= LRSAdapterError && e.Code <= LRSDeviceFailed:
		return ErrnoENXIO
	default:
		return ErrnoEINVAL
	}
}
