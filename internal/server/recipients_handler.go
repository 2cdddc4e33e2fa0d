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

package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/your-org/lazyuncle/internal/resilience"
	"github.com/your-org/lazyuncle/internal/store"
)

// Unlike the recommendation endpoint, the CRUD surface uses
// conventional status codes: it backs the app's own screens, which
// handle errors.

func (s *Server) handleListRecipients(c *gin.Context) {
	recipients, err := s.store.ListRecipients(c.Request.Context())
	if err != nil {
		s.writeStoreError(c, err, "listing recipients")
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipients": recipients})
}

func (s *Server) handleCreateRecipient(c *gin.Context) {
	var r store.Recipient
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if r.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Recipient name is required"})
		return
	}

	created, err := s.store.CreateRecipient(c.Request.Context(), r)
	if err != nil {
		s.writeStoreError(c, err, "creating recipient")
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (s *Server) handleGetRecipient(c *gin.Context) {
	r, err := s.store.GetRecipient(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeStoreError(c, err, "fetching recipient")
		return
	}

	c.JSON(http.StatusOK, r)
}

func (s *Server) handleUpdateRecipient(c *gin.Context) {
	var r store.Recipient
	if err := c.ShouldBindJSON(&r); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	r.ID = c.Param("id")

	if err := s.store.UpdateRecipient(c.Request.Context(), r); err != nil {
		s.writeStoreError(c, err, "updating recipient")
		return
	}

	c.JSON(http.StatusOK, r)
}

func (s *Server) handleDeleteRecipient(c *gin.Context) {
	if err := s.store.DeleteRecipient(c.Request.Context(), c.Param("id")); err != nil {
		s.writeStoreError(c, err, "deleting recipient")
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) handleListGifts(c *gin.Context) {
	gifts, err := s.store.ListGifts(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeStoreError(c, err, "listing gifts")
		return
	}

	c.JSON(http.StatusOK, gin.H{"gifts": gifts})
}

func (s *Server) handleSaveGift(c *gin.Context) {
	var g store.Gift
	if err := c.ShouldBindJSON(&g); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	g.RecipientID = c.Param("id")
	if g.Name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Gift name is required"})
		return
	}

	saved, err := s.store.SaveGift(c.Request.Context(), g)
	if err != nil {
		s.writeStoreError(c, err, "saving gift")
		return
	}

	c.JSON(http.StatusCreated, saved)
}

func (s *Server) handleUpdateGiftStatus(c *gin.Context) {
	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	switch body.Status {
	case store.GiftStatusPlanned, store.GiftStatusOrdered, store.GiftStatusDelivered:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid gift status"})
		return
	}

	if err := s.store.UpdateGiftStatus(c.Request.Context(), c.Param("id"), body.Status); err != nil {
		s.writeStoreError(c, err, "updating gift status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": body.Status})
}

func (s *Server) handleDeleteGift(c *gin.Context) {
	if err := s.store.DeleteGift(c.Request.Context(), c.Param("id")); err != nil {
		s.writeStoreError(c, err, "deleting gift")
		return
	}

	c.Status(http.StatusNoContent)
}

// writeStoreError maps store errors to HTTP responses
func (s *Server) writeStoreError(c *gin.Context, err error, operation string) {
	requestID := requestIDFrom(c)

	if errors.Is(err, store.ErrNotFound) {
		serviceErr := resilience.NewNotFoundError("The requested resource was not found", err)
		c.JSON(serviceErr.StatusCode, serviceErr.ToErrorResponse(requestID))
		return
	}

	s.logger.Error("Store operation failed",
		zap.Error(err),
		zap.String("operation", operation),
		zap.String("request_id", requestID))

	serviceErr := resilience.NewInternalError("An error occurred while "+operation, err)
	c.JSON(serviceErr.StatusCode, serviceErr.ToErrorResponse(requestID))
}
