// Copyright (C) 2025 Pitchside AI (dev@pitchside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package assistant

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the assistant endpoints under the given group.
//
// Routes:
//   - POST /assistant/query
//   - GET  /assistant/health
//   - GET  /assistant/ready
func (s *Service) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/assistant")
	group.POST("/query", s.HandleQuery)
	group.GET("/health", s.HandleHealth)
	group.GET("/ready", s.HandleReady)
}
