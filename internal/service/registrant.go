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

package service

import (
	"fmt"
	"strings"

	"credential-api/internal/constants"
	"credential-api/internal/dto"
	"credential-api/internal/model"
	"credential-api/internal/repository"
)

// RegistrantService manages registrant records
type RegistrantService struct {
	registrantRepo repository.RegistrantRepository
	regeneration   *RegenerationService
}

// NewRegistrantService creates a new registrant service
func NewRegistrantService(registrantRepo repository.RegistrantRepository, regeneration *RegenerationService) *RegistrantService {
	return &RegistrantService{
		registrantRepo: registrantRepo,
		regeneration:   regeneration,
	}
}

// CreateRegistrant validates and persists a new registrant. The participant
// number is assigned by the repository, not the caller.
func (s *RegistrantService) CreateRegistrant(req *dto.CreateRegistrantRequest) (*model.Registrant, error) {
	fullName := strings.TrimSpace(req.FullName)
	if fullName == "" {
		return nil, constants.ErrInvalidFullName
	}
	if !constants.ValidRoles[req.Role] {
		return nil, fmt.Errorf("%w: %q", constants.ErrInvalidRole, req.Role)
	}

	registrant := &model.Registrant{
		FullName:     fullName,
		Organization: strings.TrimSpace(req.Organization),
		Role:         req.Role,
		PhotoURL:     strings.TrimSpace(req.PhotoURL),
	}
	if err := s.registrantRepo.CreateRegistrant(registrant); err != nil {
		return nil, err
	}
	return registrant, nil
}

// GetRegistrant retrieves a registrant by its UUID
func (s *RegistrantService) GetRegistrant(id string) (*model.Registrant, error) {
	registrant, err := s.registrantRepo.GetRegistrantByUUID(id)
	if err != nil {
		return nil, err
	}
	if registrant == nil {
		return nil, constants.ErrRegistrantNotFound
	}
	return registrant, nil
}

// GetRegistrantByParticipantNumber retrieves a registrant by its public number
func (s *RegistrantService) GetRegistrantByParticipantNumber(number int) (*model.Registrant, error) {
	registrant, err := s.registrantRepo.GetRegistrantByParticipantNumber(number)
	if err != nil {
		return nil, err
	}
	if registrant == nil {
		return nil, constants.ErrRegistrantNotFound
	}
	return registrant, nil
}

// UpdateRegistrant applies a partial profile update. The update is persisted
// synchronously; if a rendered field changed, regeneration of existing
// artifacts is scheduled in the background and the updated record is returned
// without waiting for it.
func (s *RegistrantService) UpdateRegistrant(id string, req *dto.UpdateRegistrantRequest, origin string) (*model.Registrant, error) {
	existing, err := s.registrantRepo.GetRegistrantByUUID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, constants.ErrRegistrantNotFound
	}

	old := *existing
	updated := *existing

	if req.FullName != nil {
		fullName := strings.TrimSpace(*req.FullName)
		if fullName == "" {
			return nil, constants.ErrInvalidFullName
		}
		updated.FullName = fullName
	}
	if req.Organization != nil {
		updated.Organization = strings.TrimSpace(*req.Organization)
	}
	if req.Role != nil {
		if !constants.ValidRoles[*req.Role] {
			return nil, fmt.Errorf("%w: %q", constants.ErrInvalidRole, *req.Role)
		}
		updated.Role = *req.Role
	}
	if req.PhotoURL != nil {
		updated.PhotoURL = strings.TrimSpace(*req.PhotoURL)
	}

	if err := s.registrantRepo.UpdateRegistrant(&updated); err != nil {
		return nil, err
	}

	s.regeneration.HandleProfileUpdate(&old, &updated, origin)

	return &updated, nil
}
