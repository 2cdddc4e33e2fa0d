// Copyright 2025 LazyUncle Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package server assembles the LazyUncle HTTP API: the gift
// recommendation endpoint, recipient/gift CRUD, and health checks.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/your-org/lazyuncle/internal/health"
	"github.com/your-org/lazyuncle/internal/recommend"
	"github.com/your-org/lazyuncle/internal/store"
)

// requestIDKey is the gin context key carrying the request id
const requestIDKey = "request_id"

// Server holds the HTTP API's collaborators
type Server struct {
	service *recommend.Service
	store   *store.Store
	health  *health.Manager
	logger  *zap.Logger
}

// New creates a server. The store may be nil when running
// recommendation-only (CRUD routes are then not registered).
func New(service *recommend.Service, st *store.Store, healthMgr *health.Manager, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		service: service,
		store:   st,
		health:  healthMgr,
		logger:  logger,
	}
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestID())
	router.Use(s.cors())

	router.HandleMethodNotAllowed = true
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	router.GET("/health", s.handleHealth)

	api := router.Group("/api")
	{
		api.POST("/gift-recommendations", s.handleRecommendations)

		if s.store != nil {
			api.GET("/recipients", s.handleListRecipients)
			api.POST("/recipients", s.handleCreateRecipient)
			api.GET("/recipients/:id", s.handleGetRecipient)
			api.PUT("/recipients/:id", s.handleUpdateRecipient)
			api.DELETE("/recipients/:id", s.handleDeleteRecipient)

			api.GET("/recipients/:id/gifts", s.handleListGifts)
			api.POST("/recipients/:id/gifts", s.handleSaveGift)
			api.PUT("/gifts/:id/status", s.handleUpdateGiftStatus)
			api.DELETE("/gifts/:id", s.handleDeleteGift)
		}
	}

	return router
}

// cors allows all origins and answers preflight requests with an empty
// 200, matching the inbound contract the web client expects
func (s *Server) cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// requestID propagates the caller's X-Request-ID or generates one
func (s *Server) requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = generateRequestID()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

// generateRequestID builds an id of the form req-<timestamp>-<random>
func generateRequestID() string {
	return fmt.Sprintf("req-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

// requestIDFrom reads the request id set by the middleware
func requestIDFrom(c *gin.Context) string {
	if id, ok := c.Get(requestIDKey); ok {
		if s, ok := id.(string); ok {
			return s
		}
	}
	return "unknown"
}

// handleHealth reports service and dependency health
func (s *Server) handleHealth(c *gin.Context) {
	result := s.health.Check(c.Request.Context())

	statusCode := http.StatusOK
	if result.Status == health.StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, result)
}
