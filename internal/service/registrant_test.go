/*
 *  Copyright (c) 2026, WSO2 LLC. (http://www.wso2.org) All Rights Reserved.
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
	"errors"
	"testing"
	"time"

	"credential-api/internal/constants"
	"credential-api/internal/dto"
	"credential-api/internal/model"
)

func strPtr(s string) *string {
	return &s
}

// createTrackingRepo wraps the pipeline fixture's mock with create support
type createTrackingRepo struct {
	*mockRegistrantRepository

	created *model.Registrant
}

func (m *createTrackingRepo) CreateRegistrant(registrant *model.Registrant) error {
	registrant.ID = "new-id"
	registrant.ParticipantNumber = 7
	m.created = registrant
	return nil
}

func (m *createTrackingRepo) UpdateRegistrant(registrant *model.Registrant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *registrant
	m.registrant = &copied
	return nil
}

func newRegistrantServiceUnderTest(t *testing.T) (*RegistrantService, *createTrackingRepo, *pipelineFixture) {
	t.Helper()
	f := newPipelineFixture(t)
	repo := &createTrackingRepo{mockRegistrantRepository: f.registrants}
	regen := newRegenerationService(f)
	return NewRegistrantService(repo, regen), repo, f
}

func TestCreateRegistrantValidation(t *testing.T) {
	tests := []struct {
		name    string
		req     *dto.CreateRegistrantRequest
		wantErr error
	}{
		{
			name:    "empty full name",
			req:     &dto.CreateRegistrantRequest{FullName: "   ", Role: constants.RoleParticipant},
			wantErr: constants.ErrInvalidFullName,
		},
		{
			name:    "unknown role",
			req:     &dto.CreateRegistrantRequest{FullName: "Ada Lovelace", Role: "wizard"},
			wantErr: constants.ErrInvalidRole,
		},
		{
			name:    "empty role",
			req:     &dto.CreateRegistrantRequest{FullName: "Ada Lovelace"},
			wantErr: constants.ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newRegistrantServiceUnderTest(t)
			_, err := svc.CreateRegistrant(tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateRegistrantTrimsAndPersists(t *testing.T) {
	svc, repo, _ := newRegistrantServiceUnderTest(t)

	created, err := svc.CreateRegistrant(&dto.CreateRegistrantRequest{
		FullName:     "  Ada Lovelace  ",
		Organization: " Analytical Engines Ltd ",
		Role:         constants.RoleParticipant,
		PhotoURL:     " https://photos.example.com/ada.jpg ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.created == nil {
		t.Fatal("expected the registrant to be persisted")
	}
	if created.FullName != "Ada Lovelace" {
		t.Errorf("FullName = %q, want trimmed", created.FullName)
	}
	if created.Organization != "Analytical Engines Ltd" {
		t.Errorf("Organization = %q, want trimmed", created.Organization)
	}
	if created.PhotoURL != "https://photos.example.com/ada.jpg" {
		t.Errorf("PhotoURL = %q, want trimmed", created.PhotoURL)
	}
	if created.ParticipantNumber != 7 {
		t.Errorf("ParticipantNumber = %d, want the repository-assigned 7", created.ParticipantNumber)
	}
}

func TestUpdateRegistrantPartialMerge(t *testing.T) {
	svc, repo, f := newRegistrantServiceUnderTest(t)

	updated, err := svc.UpdateRegistrant(f.registrantUID, &dto.UpdateRegistrantRequest{
		Organization: strPtr("Babbage & Co"),
	}, "10.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Organization != "Babbage & Co" {
		t.Errorf("Organization = %q, want updated", updated.Organization)
	}
	if updated.FullName != "Ada Lovelace" {
		t.Errorf("FullName = %q, want untouched", updated.FullName)
	}
	if repo.registrant.Organization != "Babbage & Co" {
		t.Error("expected the merge result to be persisted")
	}
}

func TestUpdateRegistrantValidation(t *testing.T) {
	svc, _, f := newRegistrantServiceUnderTest(t)

	_, err := svc.UpdateRegistrant(f.registrantUID, &dto.UpdateRegistrantRequest{
		FullName: strPtr("  "),
	}, "10.0.0.1")
	if !errors.Is(err, constants.ErrInvalidFullName) {
		t.Errorf("expected ErrInvalidFullName, got %v", err)
	}

	_, err = svc.UpdateRegistrant(f.registrantUID, &dto.UpdateRegistrantRequest{
		Role: strPtr("wizard"),
	}, "10.0.0.1")
	if !errors.Is(err, constants.ErrInvalidRole) {
		t.Errorf("expected ErrInvalidRole, got %v", err)
	}

	_, err = svc.UpdateRegistrant("missing", &dto.UpdateRegistrantRequest{}, "10.0.0.1")
	if !errors.Is(err, constants.ErrRegistrantNotFound) {
		t.Errorf("expected ErrRegistrantNotFound, got %v", err)
	}
}

func TestUpdateRegistrantTriggersBackgroundRegeneration(t *testing.T) {
	svc, repo, f := newRegistrantServiceUnderTest(t)

	// The registrant holds a badge, so a rendered-field change regenerates it
	existingBadge := f.imageServer.URL + "/badges/old.png"
	repo.registrant.BadgeURL = &existingBadge

	updated, err := svc.UpdateRegistrant(f.registrantUID, &dto.UpdateRegistrantRequest{
		FullName: strPtr("Ada King"),
	}, "10.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The update itself must not wait for image work
	if updated.BadgeURL == nil || *updated.BadgeURL != existingBadge {
		t.Errorf("expected the response to carry the pre-regeneration badge, got %v", updated.BadgeURL)
	}

	deadline := time.After(5 * time.Second)
	for {
		repo.mu.Lock()
		records := repo.badgeRecords
		repo.mu.Unlock()
		if records == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("background regeneration never completed")
		case <-time.After(50 * time.Millisecond):
		}
	}
}
