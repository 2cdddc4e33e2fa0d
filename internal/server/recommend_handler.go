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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/your-org/lazyuncle/internal/recommend"
	"github.com/your-org/lazyuncle/internal/resilience"
)

// recommendationResponse is the always-success response shape
type recommendationResponse struct {
	Suggestions []recommend.GiftSuggestion `json:"suggestions"`
	Metadata    responseMetadata           `json:"metadata"`
}

// responseMetadata distinguishes real from fallback suggestions; the
// response shape is otherwise identical
type responseMetadata struct {
	Model               string    `json:"model"`
	GeneratedAt         time.Time `json:"generated_at"`
	RecipientName       string    `json:"recipient_name"`
	Occasion            string    `json:"occasion"`
	Budget              float64   `json:"budget"`
	RequestID           string    `json:"request_id"`
	CircuitBreakerState string    `json:"circuit_breaker_state"`
	FallbackUsed        bool      `json:"fallback_used"`
	FallbackReason      string    `json:"fallback_reason,omitempty"`
}

// handleRecommendations runs the recommendation pipeline. It returns
// 200 with either provider-backed or fallback suggestions for every
// failure short of the response itself being unbuildable; degraded
// results are flagged in metadata, never by status code, so a backend
// outage cannot break the client.
func (s *Server) handleRecommendations(c *gin.Context) {
	requestID := requestIDFrom(c)
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Recommendation handler panicked",
				zap.Any("panic", r),
				zap.String("request_id", requestID))
			serviceErr := resilience.NewInternalError("Failed to build recommendation response", nil)
			c.JSON(http.StatusInternalServerError, serviceErr.ToErrorResponse(requestID))
		}
	}()

	var req recommend.Request
	bodyInvalid := false
	if err := c.ShouldBindJSON(&req); err != nil {
		// An unreadable body still gets a fallback response built from
		// whatever defaults apply
		bodyInvalid = true
		s.logger.Info("Unparseable recommendation request body",
			zap.Error(err),
			zap.String("request_id", requestID))
	}

	var result recommend.Result
	if bodyInvalid {
		result = s.service.Fallback(req, "request body could not be parsed")
	} else {
		result = s.service.Recommend(c.Request.Context(), req)
	}

	sanitized := req.Sanitized()

	s.logger.Info("Recommendation request completed",
		zap.String("request_id", requestID),
		zap.String("recipient", sanitized.Recipient.Name),
		zap.String("occasion", sanitized.Occasion),
		zap.Float64("budget", sanitized.Budget),
		zap.Bool("fallback_used", result.FallbackUsed),
		zap.String("fallback_reason", result.FallbackReason),
		zap.Duration("processing_time", time.Since(start)))

	c.JSON(http.StatusOK, recommendationResponse{
		Suggestions: result.Suggestions,
		Metadata: responseMetadata{
			Model:               result.Model,
			GeneratedAt:         time.Now().UTC(),
			RecipientName:       sanitized.Recipient.Name,
			Occasion:            sanitized.Occasion,
			Budget:              sanitized.Budget,
			RequestID:           requestID,
			CircuitBreakerState: s.service.BreakerState(),
			FallbackUsed:        result.FallbackUsed,
			FallbackReason:      result.FallbackReason,
		},
	})
}
