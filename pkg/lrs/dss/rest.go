// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package dss

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stratastor/lrs/pkg/errors"
	"github.com/stratastor/lrs/pkg/httpclient"
	"github.com/stratastor/lrs/pkg/lrs/types"
)

// RESTClient talks to a real DSS over HTTP, built on the teacher's
// httpclient.Client wrapper around go-resty/resty/v2.
type RESTClient struct {
	http *httpclient.Client
}

// NewRESTClient builds a RESTClient against baseURL, timing out requests
// after timeout.
func NewRESTClient(baseURL string, timeout time.Duration) *RESTClient {
	cfg := httpclient.NewClientConfig()
	cfg.BaseURL = baseURL
	if timeout > 0 {
		cfg.Timeout = timeout
	}
	return &RESTClient{http: httpclient.NewClient(cfg)}
}

func (c *RESTClient) GetDevices(ctx context.Context, filter types.DeviceFilter) ([]*types.Device, error) {
	var devices []*types.Device
	resp, err := c.http.NewRequest(httpclient.RequestConfig{
		Path:    "/v1/devices",
		Body:    filter,
		Result:  &devices,
		Context: ctx,
	}).Post()
	if err := checkResp(resp, err); err != nil {
		return nil, err
	}
	return devices, nil
}

func (c *RESTClient) GetMedia(ctx context.Context, filter types.MediumFilter) ([]*types.Medium, error) {
	var media []*types.Medium
	resp, err := c.http.NewRequest(httpclient.RequestConfig{
		Path:    "/v1/media/query",
		Body:    filter,
		Result:  &media,
		Context: ctx,
	}).Post()
	if err := checkResp(resp, err); err != nil {
		return nil, err
	}
	return media, nil
}

func (c *RESTClient) GetMedium(ctx context.Context, id string) (*types.Medium, error) {
	var m types.Medium
	resp, err := c.http.NewRequest(httpclient.RequestConfig{
		Path:    "/v1/media/" + id,
		Result:  &m,
		Context: ctx,
	}).Get()
	if err := checkResp(resp, err); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *RESTClient) LockDevice(ctx context.Context, serial, owner string) error {
	resp, err := c.http.NewRequest(httpclient.RequestConfig{
		Path:    fmt.Sprintf("/v1/devices/%s/lock", serial),
		Body:    map[string]string{"owner": owner},
		Context: ctx,
	}).Post()
	return checkResp(resp, err)
}

func (c *RESTClient) UnlockDevice(ctx context.Context, serial, owner string) error {
	resp, err := c.http.NewRequest(httpclient.RequestConfig{
		Path:    fmt.Sprintf("/v1/devices/%s/unlock", serial),
		Body:    map[string]string{"owner": owner},
		Context: ctx,
	}).Post()
	return checkResp(resp, err)
}

func (c *RESTClient) LockMedium(ctx context.Context, id, owner string) error {
	resp, err := c.http.NewRequest(httpclient.RequestConfig{
		Path:    fmt.Sprintf("/v1/media/%s/lock", id),
		Body:    map[string]string{"owner": owner},
		Context: ctx,
	}).Post()
	return checkResp(resp, err)
}

func (c *RESTClient) UnlockMedium(ctx context.Context, id, owner string) error {
	resp, err := c.http.NewRequest(httpclient.RequestConfig{
		Path:    fmt.Sprintf("/v1/media/%s/unlock", id),
		Body:    map[string]string{"owner": owner},
		Context: ctx,
	}).Post()
	return checkResp(resp, err)
}

func (c *RESTClient) UpdateMedium(ctx context.Context, m *types.Medium) error {
	resp, err := c.http.NewRequest(httpclient.RequestConfig{
		Path:    "/v1/media/" + m.ID,
		Body:    m,
		Context: ctx,
	}).Put()
	return checkResp(resp, err)
}

// checkResp translates a transport-level failure or a non-2xx/409 DSS
// response into the sentinels the scheduler understands.
func checkResp(resp *resty.Response, err error) error {
	if err != nil {
		return errors.New(errors.LRSDSSUnavailable, err.Error())
	}
	switch {
	case resp.StatusCode() == http.StatusConflict:
		return types.ErrRetryPossible
	case resp.StatusCode() == http.StatusNotFound:
		return types.ErrNotFound
	case resp.IsError():
		return errors.New(errors.LRSDSSUnavailable, resp.String())
	}
	return nil
}

var _ Client = (*RESTClient)(nil)
