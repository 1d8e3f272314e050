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
	"errors"
	"net/http"
	"strconv"

	"credential-api/internal/constants"
	"credential-api/internal/dto"
	"credential-api/internal/middleware"
	"credential-api/internal/model"
	"credential-api/internal/service"
	"credential-api/internal/utils"

	"github.com/gin-gonic/gin"
)

type RegistrantHandler struct {
	registrantService *service.RegistrantService
}

func NewRegistrantHandler(registrantService *service.RegistrantService) *RegistrantHandler {
	return &RegistrantHandler{
		registrantService: registrantService,
	}
}

// CreateRegistrant handles POST /api/v1/registrants
func (h *RegistrantHandler) CreateRegistrant(c *gin.Context) {
	var req dto.CreateRegistrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request", err.Error()))
		return
	}

	registrant, err := h.registrantService.CreateRegistrant(&req)
	if err != nil {
		if errors.Is(err, constants.ErrInvalidFullName) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request",
				"Full name is required"))
			return
		}
		if errors.Is(err, constants.ErrInvalidRole) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request",
				"Invalid registrant role"))
			return
		}
		utils.LogError("Failed to create registrant", err)
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(500, "Internal Server Error",
			"Failed to create registrant"))
		return
	}

	c.JSON(http.StatusCreated, toRegistrantDTO(registrant))
}

// GetRegistrant handles GET /api/v1/registrants/:registrantId
func (h *RegistrantHandler) GetRegistrant(c *gin.Context) {
	registrantID := c.Param("registrantId")

	registrant, err := h.registrantService.GetRegistrant(registrantID)
	if err != nil {
		if errors.Is(err, constants.ErrRegistrantNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(404, "Not Found",
				"Registrant not found"))
			return
		}
		utils.LogError("Failed to get registrant", err)
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(500, "Internal Server Error",
			"Failed to retrieve registrant"))
		return
	}

	c.JSON(http.StatusOK, toRegistrantDTO(registrant))
}

// GetRegistrantByNumber handles GET /api/v1/registrants/by-number/:number
func (h *RegistrantHandler) GetRegistrantByNumber(c *gin.Context) {
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil || number <= 0 {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request",
			"Participant number must be a positive integer"))
		return
	}

	registrant, err := h.registrantService.GetRegistrantByParticipantNumber(number)
	if err != nil {
		if errors.Is(err, constants.ErrRegistrantNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(404, "Not Found",
				"Registrant not found"))
			return
		}
		utils.LogError("Failed to get registrant by participant number", err)
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(500, "Internal Server Error",
			"Failed to retrieve registrant"))
		return
	}

	c.JSON(http.StatusOK, toRegistrantDTO(registrant))
}

// UpdateRegistrant handles PUT /api/v1/registrants/:registrantId. A change to
// a field rendered on an issued credential schedules background regeneration;
// the response reflects the profile update only.
func (h *RegistrantHandler) UpdateRegistrant(c *gin.Context) {
	registrantID := c.Param("registrantId")

	var req dto.UpdateRegistrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request", err.Error()))
		return
	}

	registrant, err := h.registrantService.UpdateRegistrant(registrantID, &req, middleware.RequestOrigin(c))
	if err != nil {
		if errors.Is(err, constants.ErrRegistrantNotFound) {
			c.JSON(http.StatusNotFound, utils.NewErrorResponse(404, "Not Found",
				"Registrant not found"))
			return
		}
		if errors.Is(err, constants.ErrInvalidFullName) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request",
				"Full name cannot be empty"))
			return
		}
		if errors.Is(err, constants.ErrInvalidRole) {
			c.JSON(http.StatusBadRequest, utils.NewErrorResponse(400, "Bad Request",
				"Invalid registrant role"))
			return
		}
		utils.LogError("Failed to update registrant", err)
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(500, "Internal Server Error",
			"Failed to update registrant"))
		return
	}

	c.JSON(http.StatusOK, toRegistrantDTO(registrant))
}

// RegisterRoutes registers all registrant routes
func (h *RegistrantHandler) RegisterRoutes(r *gin.Engine) {
	registrantGroup := r.Group("/api/v1/registrants")
	{
		registrantGroup.POST("", h.CreateRegistrant)
		registrantGroup.GET("/:registrantId", h.GetRegistrant)
		registrantGroup.PUT("/:registrantId", h.UpdateRegistrant)
		registrantGroup.GET("/by-number/:number", h.GetRegistrantByNumber)
	}
}

func toRegistrantDTO(registrant *model.Registrant) *dto.Registrant {
	return &dto.Registrant{
		ID:                registrant.ID,
		ParticipantNumber: registrant.ParticipantNumber,
		FullName:          registrant.FullName,
		Organization:      registrant.Organization,
		Role:              registrant.Role,
		PhotoURL:          registrant.PhotoURL,
		AIPhotoURL:        registrant.AIPhotoURL,
		BadgeURL:          registrant.BadgeURL,
		CertificateURL:    registrant.CertificateURL,
		BadgeGeneratedAt:  registrant.BadgeGeneratedAt,
		CertGeneratedAt:   registrant.CertGeneratedAt,
		CreatedAt:         registrant.CreatedAt,
		UpdatedAt:         registrant.UpdatedAt,
	}
}
