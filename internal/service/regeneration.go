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
	"context"
	"time"

	"credential-api/config"
	"credential-api/internal/constants"
	"credential-api/internal/model"
	"credential-api/internal/repository"
	"credential-api/internal/utils"
)

// RegenerationService keeps issued credentials consistent with the registrant
// record. When a field that is rendered onto a credential changes, every
// already-issued artifact is regenerated in the background; the profile update
// itself never waits on image work.
type RegenerationService struct {
	registrantRepo repository.RegistrantRepository
	credentials    *CredentialService
	clock          Clock

	pollInterval time.Duration
	maxPolls     int
	repairDelay  time.Duration
}

// NewRegenerationService creates the regeneration coordinator
func NewRegenerationService(
	registrantRepo repository.RegistrantRepository,
	credentials *CredentialService,
	cfg *config.Regeneration,
) *RegenerationService {
	return &RegenerationService{
		registrantRepo: registrantRepo,
		credentials:    credentials,
		clock:          &SystemClock{},
		pollInterval:   time.Duration(cfg.PollIntervalSeconds) * time.Second,
		maxPolls:       cfg.MaxPolls,
		repairDelay:    time.Duration(cfg.RepairDelaySeconds) * time.Second,
	}
}

// WithClock replaces the service clock. Used by tests.
func (s *RegenerationService) WithClock(clock Clock) *RegenerationService {
	s.clock = clock
	return s
}

// rendersOnCredential reports whether the update touched a field that appears
// on issued artifacts.
func rendersOnCredential(old, updated *model.Registrant) bool {
	return old.FullName != updated.FullName || old.Organization != updated.Organization
}

// HandleProfileUpdate inspects a completed profile update and, when a rendered
// field changed, regenerates each artifact the registrant already holds. The
// work runs detached from the request: the caller's context is not carried
// into the goroutine so a finished request cannot cancel the regeneration.
func (s *RegenerationService) HandleProfileUpdate(old, updated *model.Registrant, origin string) {
	if !rendersOnCredential(old, updated) {
		return
	}

	regenerateBadge := updated.BadgeURL != nil && *updated.BadgeURL != ""
	regenerateCert := updated.CertificateURL != nil && *updated.CertificateURL != ""
	if !regenerateBadge && !regenerateCert {
		return
	}

	id := updated.ID
	go func() {
		ctx := context.Background()
		if regenerateBadge {
			if _, err := s.credentials.GenerateBadge(ctx, id, origin); err != nil {
				utils.LogError("Background badge regeneration failed for registrant "+id, err)
			}
		}
		if regenerateCert {
			if _, err := s.credentials.GenerateCertificate(ctx, id, origin); err != nil {
				utils.LogError("Background certificate regeneration failed for registrant "+id, err)
			}
		}
	}()
}

// AwaitBadge polls the registrant record until a badge generated at or after
// the given instant appears, or the poll budget runs out. Running out is not
// an error: nil, nil means "still pending" and the caller decides how to
// present that.
func (s *RegenerationService) AwaitBadge(ctx context.Context, registrantID string, since time.Time) (*model.GeneratedArtifact, error) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for i := 0; i < s.maxPolls; i++ {
		registrant, err := s.registrantRepo.GetRegistrantByUUID(registrantID)
		if err != nil {
			return nil, err
		}
		if registrant != nil && registrant.BadgeURL != nil && registrant.BadgeGeneratedAt != nil &&
			!registrant.BadgeGeneratedAt.Before(since) {
			return &model.GeneratedArtifact{
				Kind:        constants.ArtifactBadge,
				URL:         *registrant.BadgeURL,
				GeneratedAt: *registrant.BadgeGeneratedAt,
			}, nil
		}

		// The final read reports pending right away instead of sleeping first
		if i == s.maxPolls-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	return nil, nil
}

// RepairMissedGeneration finishes a generation that stalled between the avatar
// and badge steps: the registrant has a stylized avatar but no badge, and
// enough time has passed that the original attempt is clearly not coming back.
// At most one repair attempt is made per call.
func (s *RegenerationService) RepairMissedGeneration(ctx context.Context, registrantID, origin string) error {
	registrant, err := s.registrantRepo.GetRegistrantByUUID(registrantID)
	if err != nil {
		return err
	}
	if registrant == nil {
		return nil
	}
	if registrant.AIPhotoURL == nil || *registrant.AIPhotoURL == "" {
		return nil
	}
	if registrant.BadgeURL != nil && *registrant.BadgeURL != "" {
		return nil
	}
	if registrant.UpdatedAt.After(s.clock.Now().Add(-s.repairDelay)) {
		return nil
	}

	if _, err := s.credentials.GenerateBadge(ctx, registrantID, origin); err != nil {
		return err
	}
	return nil
}
