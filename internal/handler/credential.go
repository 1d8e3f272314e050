/*
 *  Copyright (c) 2025, WSO2 LLC. (http://www.wso2.org) All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 *
 */

package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"credential-api/internal/constants"
	"credential-api/internal/dto"
	"credential-api/internal/middleware"
	"credential-api/internal/model"
	"credential-api/internal/service"
	"credential-api/internal/utils"

	"github.com/gin-gonic/gin"
)

// CredentialGenerator runs the badge and certificate generation pipelines
type CredentialGenerator interface {
	GenerateBadge(ctx context.Context, registrantID, origin string) (*model.GeneratedArtifact, error)
	GenerateCertificate(ctx context.Context, registrantID, origin string) (*model.GeneratedArtifact, error)
}

// BadgeAwaiter waits a bounded time for a regenerated badge to appear and can
// restart a generation that stalled between the avatar and badge steps
type BadgeAwaiter interface {
	AwaitBadge(ctx context.Context, registrantID string, since time.Time) (*model.GeneratedArtifact, error)
	RepairMissedGeneration(ctx context.Context, registrantID, origin string) error
}

type CredentialHandler struct {
	credentialService   CredentialGenerator
	regenerationService BadgeAwaiter
}

func NewCredentialHandler(credentialService CredentialGenerator, regenerationService BadgeAwaiter) *CredentialHandler {
	return &CredentialHandler{
		credentialService:   credentialService,
		regenerationService: regenerationService,
	}
}

// GenerateBadge handles POST /api/v1/registrants/:registrantId/badge
func (h *CredentialHandler) GenerateBadge(c *gin.Context) {
	registrantID := c.Param("registrantId")
	origin := middleware.RequestOrigin(c)

	artifact, err := h.credentialService.GenerateBadge(c.Request.Context(), registrantID, origin)
	if err != nil {
		h.writeGenerationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.GenerateCredentialResponse{
		ArtifactURL: artifact.URL,
		Degraded:    artifact.Degraded,
	})
}

// GenerateCertificate handles POST /api/v1/registrants/:registrantId/certificate
func (h *CredentialHandler) GenerateCertificate(c *gin.Context) {
	registrantID := c.Param("registrantId")
	origin := middleware.RequestOrigin(c)

	artifact, err := h.credentialService.GenerateCertificate(c.Request.Context(), registrantID, origin)
	if err != nil {
		h.writeGenerationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.GenerateCredentialResponse{
		ArtifactURL: artifact.URL,
	})
}

// AwaitBadge handles GET /api/v1/registrants/:registrantId/badge. It waits a
// bounded number of polls for a badge generated after the `since` query
// timestamp (RFC 3339, default: any existing badge) and reports "pending"
// when the budget runs out without one appearing.
func (h *CredentialHandler) AwaitBadge(c *gin.Context) {
	registrantID := c.Param("registrantId")

	since := time.Time{}
	if raw := c.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request",
				"Query parameter 'since' must be an RFC 3339 timestamp"))
			return
		}
		since = parsed
	}

	artifact, err := h.regenerationService.AwaitBadge(c.Request.Context(), registrantID, since)
	if err != nil {
		if c.Request.Context().Err() != nil {
			// Client went away mid-poll; nothing to report
			return
		}
		utils.LogError("Badge status poll failed", err)
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(500, "Internal Server Error",
			"Failed to check badge status"))
		return
	}

	if artifact == nil {
		// An exhausted poll may mean the original generation stalled after the
		// avatar step; kick the repair pass without holding the response
		origin := middleware.RequestOrigin(c)
		go func() {
			if err := h.regenerationService.RepairMissedGeneration(context.Background(), registrantID, origin); err != nil {
				utils.LogError("Badge repair pass failed for registrant "+registrantID, err)
			}
		}()
		c.JSON(http.StatusOK, dto.CredentialStatusResponse{Status: "pending"})
		return
	}

	c.JSON(http.StatusOK, dto.CredentialStatusResponse{
		Status:      "ready",
		ArtifactURL: artifact.URL,
	})
}

// retryAfterSeconds rounds a wait up to whole seconds, never below one
func retryAfterSeconds(d time.Duration) int {
	seconds := int(d.Seconds() + 0.5)
	if seconds < 1 {
		seconds = 1
	}
	return seconds
}

// writeGenerationError maps pipeline failures onto HTTP statuses. Rate limit
// denials carry a machine-readable reason so clients can render an accurate
// message instead of a generic failure.
func (h *CredentialHandler) writeGenerationError(c *gin.Context, err error) {
	var rateLimitErr *service.RateLimitError
	if errors.As(err, &rateLimitErr) {
		resp := dto.RateLimitedResponse{
			Code:           429,
			Message:        "Generation limit reached",
			Reason:         rateLimitErr.Reason,
			RemainingQuota: rateLimitErr.RemainingOther,
		}
		// Only window-based ceilings carry a computable wait
		if rateLimitErr.RetryAfter > 0 {
			resp.RetryAfterSeconds = retryAfterSeconds(rateLimitErr.RetryAfter)
			c.Header("Retry-After", strconv.Itoa(resp.RetryAfterSeconds))
		}
		c.JSON(http.StatusTooManyRequests, resp)
		return
	}

	var cooldownErr *service.CooldownError
	if errors.As(err, &cooldownErr) {
		retryAfter := retryAfterSeconds(cooldownErr.RetryAfter)
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		c.JSON(http.StatusTooManyRequests, dto.RateLimitedResponse{
			Code:              429,
			Message:           "A credential was generated moments ago, please wait",
			Reason:            "cooldown",
			RetryAfterSeconds: retryAfter,
		})
		return
	}

	if errors.Is(err, constants.ErrRegistrantNotFound) {
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(404, "Not Found",
			"Registrant not found"))
		return
	}
	if errors.Is(err, constants.ErrRegistrantIncomplete) {
		c.JSON(http.StatusUnprocessableEntity, utils.NewErrorResponse(422, "Unprocessable Entity",
			"Registrant is missing fields required for generation"))
		return
	}
	if errors.Is(err, constants.ErrQuotaUnavailable) {
		utils.LogError("Quota store unavailable during generation", err)
		c.JSON(http.StatusServiceUnavailable, utils.NewErrorResponse(503, "Service Unavailable",
			"Generation is temporarily unavailable"))
		return
	}
	if errors.Is(err, constants.ErrStyleTransferFailed) {
		utils.LogError("Style transfer failed during generation", err)
		c.JSON(http.StatusBadGateway, utils.NewErrorResponse(502, "Bad Gateway",
			"Photo stylization service failed"))
		return
	}
	if errors.Is(err, constants.ErrStorageFailed) {
		utils.LogError("Artifact storage failed during generation", err)
		c.JSON(http.StatusBadGateway, utils.NewErrorResponse(502, "Bad Gateway",
			"Artifact storage failed"))
		return
	}
	if errors.Is(err, constants.ErrTemplateNotFound) {
		utils.LogError("No credential template for registrant role", err)
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(500, "Internal Server Error",
			"No credential template configured for this role"))
		return
	}
	if errors.Is(err, constants.ErrCompositionFailed) {
		utils.LogError("Credential composition failed", err)
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(500, "Internal Server Error",
			"Failed to compose credential image"))
		return
	}

	utils.LogError("Credential generation failed", err)
	c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(500, "Internal Server Error",
		"Failed to generate credential"))
}

// RegisterRoutes registers all credential generation routes. The guards run
// before the generation endpoints only; the read-only status poll stays open
// to any authenticated caller.
func (h *CredentialHandler) RegisterRoutes(r *gin.Engine, generationGuards ...gin.HandlerFunc) {
	guarded := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, generationGuards...), handler)
	}

	registrantGroup := r.Group("/api/v1/registrants")
	{
		registrantGroup.POST("/:registrantId/badge", guarded(h.GenerateBadge)...)
		registrantGroup.GET("/:registrantId/badge", h.AwaitBadge)
		registrantGroup.POST("/:registrantId/certificate", guarded(h.GenerateCertificate)...)
	}
}
