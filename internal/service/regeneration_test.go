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
	"context"
	"testing"
	"time"

	"credential-api/config"
	"credential-api/internal/model"
)

func newRegenerationService(f *pipelineFixture) *RegenerationService {
	return NewRegenerationService(f.registrants, f.service, &config.Regeneration{
		PollIntervalSeconds: 1,
		MaxPolls:            5,
		RepairDelaySeconds:  60,
	}).WithClock(f.clock)
}

func TestRendersOnCredential(t *testing.T) {
	base := model.Registrant{FullName: "Ada Lovelace", Organization: "Analytical Engines Ltd"}

	tests := []struct {
		name    string
		mutate  func(r *model.Registrant)
		changed bool
	}{
		{name: "no change", mutate: func(r *model.Registrant) {}, changed: false},
		{name: "name change", mutate: func(r *model.Registrant) { r.FullName = "Ada King" }, changed: true},
		{name: "organization change", mutate: func(r *model.Registrant) { r.Organization = "Babbage & Co" }, changed: true},
		{name: "photo change only", mutate: func(r *model.Registrant) { r.PhotoURL = "https://x/new.png" }, changed: false},
		{name: "role change only", mutate: func(r *model.Registrant) { r.Role = "staff" }, changed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old := base
			updated := base
			tt.mutate(&updated)
			if got := rendersOnCredential(&old, &updated); got != tt.changed {
				t.Errorf("rendersOnCredential = %v, want %v", got, tt.changed)
			}
		})
	}
}

func TestHandleProfileUpdateRegeneratesInBackground(t *testing.T) {
	f := newPipelineFixture(t)
	regen := newRegenerationService(f)

	// The registrant already holds a badge from an earlier generation
	existingBadge := f.imageServer.URL + "/badges/old.png"
	f.registrants.registrant.BadgeURL = &existingBadge

	old := *f.registrants.registrant
	updated := *f.registrants.registrant
	updated.FullName = "Ada King"
	f.registrants.registrant.FullName = "Ada King"

	// Returns immediately; the image work happens on a detached goroutine
	start := time.Now()
	regen.HandleProfileUpdate(&old, &updated, "10.0.0.1")
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("HandleProfileUpdate blocked for %v", elapsed)
	}

	artifact, err := regen.AwaitBadge(context.Background(), f.registrantUID, f.clock.Time)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact == nil {
		t.Fatal("expected the regenerated badge to appear within the poll budget")
	}
	if artifact.URL == existingBadge {
		t.Error("expected a fresh badge URL, got the old one")
	}
}

func TestHandleProfileUpdateIgnoresNonRenderedChange(t *testing.T) {
	f := newPipelineFixture(t)
	regen := newRegenerationService(f)

	existingBadge := f.imageServer.URL + "/badges/old.png"
	f.registrants.registrant.BadgeURL = &existingBadge

	old := *f.registrants.registrant
	updated := *f.registrants.registrant
	updated.PhotoURL = f.imageServer.URL + "/other.png"

	regen.HandleProfileUpdate(&old, &updated, "10.0.0.1")

	time.Sleep(200 * time.Millisecond)
	if f.registrants.badgeRecords != 0 {
		t.Errorf("expected no regeneration for a non-rendered change, got %d", f.registrants.badgeRecords)
	}
}

func TestHandleProfileUpdateSkipsRegistrantsWithoutArtifacts(t *testing.T) {
	f := newPipelineFixture(t)
	regen := newRegenerationService(f)

	old := *f.registrants.registrant
	updated := *f.registrants.registrant
	updated.FullName = "Ada King"

	regen.HandleProfileUpdate(&old, &updated, "10.0.0.1")

	time.Sleep(200 * time.Millisecond)
	if f.registrants.badgeRecords != 0 || f.registrants.certRecords != 0 {
		t.Error("expected no regeneration when nothing was ever issued")
	}
}

func TestAwaitBadgePendingAfterPollBudget(t *testing.T) {
	f := newPipelineFixture(t)
	regen := NewRegenerationService(f.registrants, f.service, &config.Regeneration{
		PollIntervalSeconds: 1,
		MaxPolls:            2,
		RepairDelaySeconds:  60,
	})

	start := time.Now()
	artifact, err := regen.AwaitBadge(context.Background(), f.registrantUID, f.clock.Time)
	if err != nil {
		t.Fatalf("an exhausted poll budget is not an error, got %v", err)
	}
	if artifact != nil {
		t.Errorf("expected nil artifact while pending, got %+v", artifact)
	}
	// Two reads separated by one interval; no sleep after the final read
	if elapsed := time.Since(start); elapsed >= 1900*time.Millisecond {
		t.Errorf("expected the final read to report pending immediately, waited %v", elapsed)
	}
}

func TestAwaitBadgeSinglePollReturnsImmediately(t *testing.T) {
	f := newPipelineFixture(t)
	regen := NewRegenerationService(f.registrants, f.service, &config.Regeneration{
		PollIntervalSeconds: 1,
		MaxPolls:            1,
		RepairDelaySeconds:  60,
	})

	start := time.Now()
	artifact, err := regen.AwaitBadge(context.Background(), f.registrantUID, f.clock.Time)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact != nil {
		t.Errorf("expected nil artifact while pending, got %+v", artifact)
	}
	if elapsed := time.Since(start); elapsed >= 500*time.Millisecond {
		t.Errorf("a single permitted read must not sleep, waited %v", elapsed)
	}
}

func TestAwaitBadgeHonorsContextCancellation(t *testing.T) {
	f := newPipelineFixture(t)
	regen := newRegenerationService(f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := regen.AwaitBadge(ctx, f.registrantUID, f.clock.Time)
	if err == nil {
		t.Fatal("expected a context error")
	}
}

func TestRepairMissedGeneration(t *testing.T) {
	f := newPipelineFixture(t)
	regen := newRegenerationService(f)

	avatar := f.imageServer.URL + "/avatar.png"
	f.registrants.registrant.AIPhotoURL = &avatar
	f.registrants.registrant.UpdatedAt = f.clock.Time.Add(-2 * time.Hour)

	if err := regen.RepairMissedGeneration(context.Background(), f.registrantUID, "10.0.0.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.registrants.badgeRecords != 1 {
		t.Errorf("expected the repair pass to finish the badge, got %d records", f.registrants.badgeRecords)
	}
}

func TestRepairUsesInjectedClock(t *testing.T) {
	f := newPipelineFixture(t)
	// A clock well ahead of the wall clock: the delay guard must measure
	// against it, not against the process clock
	ahead := &FixedClock{Time: time.Now().Add(48 * time.Hour)}
	regen := NewRegenerationService(f.registrants, f.service, &config.Regeneration{
		PollIntervalSeconds: 1,
		MaxPolls:            5,
		RepairDelaySeconds:  60,
	}).WithClock(ahead)

	avatar := f.imageServer.URL + "/avatar.png"
	f.registrants.registrant.AIPhotoURL = &avatar
	f.registrants.registrant.UpdatedAt = time.Now()

	if err := regen.RepairMissedGeneration(context.Background(), f.registrantUID, "10.0.0.1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.registrants.badgeRecords != 1 {
		t.Errorf("expected the repair pass to run on the injected clock, got %d records", f.registrants.badgeRecords)
	}
}

func TestRepairSkipsWhenNotApplicable(t *testing.T) {
	badge := "https://cdn.test/badges/x.png"
	avatar := "https://cdn.test/ai-profile-photos/x.png"

	tests := []struct {
		name   string
		mutate func(r *model.Registrant, now time.Time)
	}{
		{
			name:   "no stylized avatar yet",
			mutate: func(r *model.Registrant, now time.Time) { r.UpdatedAt = now.Add(-2 * time.Hour) },
		},
		{
			name: "badge already present",
			mutate: func(r *model.Registrant, now time.Time) {
				r.AIPhotoURL = &avatar
				r.BadgeURL = &badge
				r.UpdatedAt = now.Add(-2 * time.Hour)
			},
		},
		{
			name: "too recent",
			mutate: func(r *model.Registrant, now time.Time) {
				r.AIPhotoURL = &avatar
				r.UpdatedAt = now
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPipelineFixture(t)
			regen := newRegenerationService(f)
			tt.mutate(f.registrants.registrant, f.clock.Time)

			if err := regen.RepairMissedGeneration(context.Background(), f.registrantUID, "10.0.0.1"); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if f.registrants.badgeRecords != 0 {
				t.Errorf("expected no repair generation, got %d records", f.registrants.badgeRecords)
			}
		})
	}
}
