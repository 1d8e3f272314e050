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

package repository

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"credential-api/config"
	"credential-api/internal/constants"
	"credential-api/internal/database"
	"credential-api/internal/model"
)

// setupTestDB creates a temporary SQLite database with the real schema applied
func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	cfg := &config.Database{
		Driver:          "sqlite3",
		Path:            filepath.Join(t.TempDir(), "test.db"),
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: 60,
	}
	db, err := database.NewConnection(cfg)
	if err != nil {
		t.Fatalf("Failed to open SQLite database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.InitSchema("../database/schema.sql"); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}
	return db
}

func newTestRegistrant() *model.Registrant {
	return &model.Registrant{
		FullName:     "Ada Lovelace",
		Organization: "Analytical Engines Ltd",
		Role:         constants.RoleParticipant,
		PhotoURL:     "https://photos.example.com/ada.jpg",
	}
}

func TestCreateRegistrantAssignsSequentialNumbers(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrantRepo(db)

	first := newTestRegistrant()
	if err := repo.CreateRegistrant(first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID == "" {
		t.Error("expected an assigned UUID")
	}
	if first.ParticipantNumber != 1 {
		t.Errorf("first participant number = %d, want 1", first.ParticipantNumber)
	}

	second := newTestRegistrant()
	second.FullName = "Grace Hopper"
	if err := repo.CreateRegistrant(second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ParticipantNumber != 2 {
		t.Errorf("second participant number = %d, want 2", second.ParticipantNumber)
	}

	next, err := repo.NextParticipantNumber()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next != 3 {
		t.Errorf("next participant number = %d, want 3", next)
	}
}

func TestGetRegistrantByUUID(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrantRepo(db)

	created := newTestRegistrant()
	if err := repo.CreateRegistrant(created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetRegistrantByUUID(created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil {
		t.Fatal("expected a registrant")
	}
	if got.FullName != "Ada Lovelace" || got.Role != constants.RoleParticipant {
		t.Errorf("unexpected registrant %+v", got)
	}
	if got.AIPhotoURL != nil || got.BadgeURL != nil || got.LastGeneratedAt != nil {
		t.Errorf("expected generation fields to start empty, got %+v", got)
	}

	missing, err := repo.GetRegistrantByUUID("does-not-exist")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for an unknown UUID, got %+v", missing)
	}
}

func TestGetRegistrantByParticipantNumber(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrantRepo(db)

	created := newTestRegistrant()
	if err := repo.CreateRegistrant(created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetRegistrantByParticipantNumber(created.ParticipantNumber)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || got.ID != created.ID {
		t.Errorf("expected registrant %s, got %+v", created.ID, got)
	}
}

func TestUpdateRegistrant(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrantRepo(db)

	created := newTestRegistrant()
	if err := repo.CreateRegistrant(created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	created.FullName = "Ada King"
	created.Organization = "Babbage & Co"
	if err := repo.UpdateRegistrant(created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetRegistrantByUUID(created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.FullName != "Ada King" || got.Organization != "Babbage & Co" {
		t.Errorf("update not persisted: %+v", got)
	}

	ghost := newTestRegistrant()
	ghost.ID = "does-not-exist"
	if err := repo.UpdateRegistrant(ghost); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows for an unknown registrant, got %v", err)
	}
}

func TestRecordBadgeArtifact(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrantRepo(db)

	created := newTestRegistrant()
	if err := repo.CreateRegistrant(created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	generatedAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	badgeURL := "https://cdn.example.com/badges/x-1.png"
	if err := repo.RecordBadgeArtifact(created.ID, badgeURL, generatedAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetRegistrantByUUID(created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.BadgeURL == nil || *got.BadgeURL != badgeURL {
		t.Errorf("BadgeURL = %v, want %q", got.BadgeURL, badgeURL)
	}
	if got.BadgeGeneratedAt == nil || !got.BadgeGeneratedAt.Equal(generatedAt) {
		t.Errorf("BadgeGeneratedAt = %v, want %v", got.BadgeGeneratedAt, generatedAt)
	}
	if got.LastGeneratedAt == nil || !got.LastGeneratedAt.Equal(generatedAt) {
		t.Errorf("LastGeneratedAt = %v, want %v", got.LastGeneratedAt, generatedAt)
	}
	if got.CertificateURL != nil {
		t.Error("recording a badge must not touch the certificate")
	}
}

func TestRecordCertificateArtifact(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrantRepo(db)

	created := newTestRegistrant()
	if err := repo.CreateRegistrant(created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	generatedAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	certURL := "https://cdn.example.com/certificates/x-1.png"
	if err := repo.RecordCertificateArtifact(created.ID, certURL, generatedAt); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetRegistrantByUUID(created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.CertificateURL == nil || *got.CertificateURL != certURL {
		t.Errorf("CertificateURL = %v, want %q", got.CertificateURL, certURL)
	}
	if got.BadgeURL != nil {
		t.Error("recording a certificate must not touch the badge")
	}
}

func TestUpdateAIPhoto(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRegistrantRepo(db)

	created := newTestRegistrant()
	if err := repo.CreateRegistrant(created); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	avatarURL := "https://cdn.example.com/ai-profile-photos/x-1.png"
	if err := repo.UpdateAIPhoto(created.ID, avatarURL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := repo.GetRegistrantByUUID(created.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.AIPhotoURL == nil || *got.AIPhotoURL != avatarURL {
		t.Errorf("AIPhotoURL = %v, want %q", got.AIPhotoURL, avatarURL)
	}
}
