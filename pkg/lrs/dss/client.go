// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package dss defines the interface the scheduler consumes from the
// Distributed Storage State metadata store: filtered device/medium
// queries, per-row lock/unlock, and medium updates. Two implementations
// are provided: an in-memory fake (dss.Fake) used by tests and by
// integrators without a real DSS, and a REST client (dss.RESTClient)
// built on go-resty/resty/v2, following the teacher's pkg/httpclient
// wrapper.
package dss

import (
	"context"

	"github.com/stratastor/lrs/pkg/lrs/types"
)

// Client is the DSS surface consumed by pkg/lrs/scheduler, selector and
// picker.
type Client interface {
	GetDevices(ctx context.Context, filter types.DeviceFilter) ([]*types.Device, error)
	GetMedia(ctx context.Context, filter types.MediumFilter) ([]*types.Medium, error)
	GetMedium(ctx context.Context, id string) (*types.Medium, error)

	LockDevice(ctx context.Context, serial, owner string) error
	UnlockDevice(ctx context.Context, serial, owner string) error
	LockMedium(ctx context.Context, id, owner string) error
	UnlockMedium(ctx context.Context, id, owner string) error

	UpdateMedium(ctx context.Context, m *types.Medium) error
}
