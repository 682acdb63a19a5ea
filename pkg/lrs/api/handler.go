// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

// Package api exposes a small read-only HTTP surface over the
// scheduler's Device Cache, outstanding intents and overall status, for
// operability and observability. Mutating operations (write_prepare,
// read_prepare, format, io_complete, resource_release) are intentionally
// not reachable here; those only exist as Go methods and CLI
// subcommands.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/lrs/pkg/lrs/scheduler"
)

// APIResponse is the standard envelope every handler replies with.
type APIResponse struct {
	Success bool        `json:"success"`
	Result  interface{} `json:"result,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
}

// APIError carries enough of an LRSError to be useful to a caller
// without importing the errors package's internals.
type APIError struct {
	Message string `json:"message"`
}

// Handler serves the read-only scheduler introspection routes.
type Handler struct {
	sched *scheduler.Scheduler
}

// NewHandler builds a Handler over sched. sched may be nil if the
// caller hasn't been wired yet; requests then fail with 503.
func NewHandler(sched *scheduler.Scheduler) *Handler {
	return &Handler{sched: sched}
}

func (h *Handler) sendSuccess(c *gin.Context, result interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Result: result})
}

func (h *Handler) sendError(c *gin.Context, statusCode int, err error) {
	c.JSON(statusCode, APIResponse{Success: false, Error: &APIError{Message: err.Error()}})
}

func (h *Handler) requireScheduler(c *gin.Context) *scheduler.Scheduler {
	if h.sched == nil {
		c.JSON(http.StatusServiceUnavailable, APIResponse{
			Success: false,
			Error:   &APIError{Message: "scheduler not yet initialized"},
		})
		return nil
	}
	return h.sched
}

// GetDevices lists the Device Cache's current snapshot.
func (h *Handler) GetDevices(c *gin.Context) {
	sched := h.requireScheduler(c)
	if sched == nil {
		return
	}
	devices := sched.Cache().Snapshot()
	h.sendSuccess(c, map[string]interface{}{
		"devices": devices,
		"count":   len(devices),
	})
}

// GetIntents lists outstanding intents keyed by device serial.
func (h *Handler) GetIntents(c *gin.Context) {
	sched := h.requireScheduler(c)
	if sched == nil {
		return
	}
	intents := sched.Intents()
	h.sendSuccess(c, map[string]interface{}{
		"intents": intents,
		"count":   len(intents),
	})
}

// GetStatus reports a coarse health summary: device and intent counts.
func (h *Handler) GetStatus(c *gin.Context) {
	sched := h.requireScheduler(c)
	if sched == nil {
		return
	}
	h.sendSuccess(c, map[string]interface{}{
		"devices": len(sched.Cache().Snapshot()),
		"intents": len(sched.Intents()),
	})
}

// GetLocate resolves which host currently holds the medium whose ID is
// the object_id path parameter, the one cross-host read this surface
// exposes.
func (h *Handler) GetLocate(c *gin.Context) {
	sched := h.requireScheduler(c)
	if sched == nil {
		return
	}
	objectID := c.Param("object_id")
	if objectID == "" {
		h.sendError(c, http.StatusBadRequest, errMissingObjectID)
		return
	}
	host, err := sched.Locate(c.Request.Context(), objectID)
	if err != nil {
		h.sendError(c, http.StatusNotFound, err)
		return
	}
	h.sendSuccess(c, map[string]string{"host": host})
}

var errMissingObjectID = missingParamError("object_id is required")

type missingParamError string

func (e missingParamError) Error() string { return string(e) }
