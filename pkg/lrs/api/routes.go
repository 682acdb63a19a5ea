// Copyright 2025 Raamsri Kumar <raam@tinkershack.in>
// Copyright 2025 The StrataSTOR Authors and Contributors
// SPDX-License-Identifier: Apache-2.0

package api

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the read-only scheduler introspection routes.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/devices", h.GetDevices)
	router.GET("/intents", h.GetIntents)
	router.GET("/status", h.GetStatus)
	router.GET("/locate/:object_id", h.GetLocate)
}
