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

package repository

import (
	"database/sql"
	"errors"
	"time"

	"credential-api/internal/database"
	"credential-api/internal/model"

	"github.com/google/uuid"
)

// RegistrantRepo implements RegistrantRepository
type RegistrantRepo struct {
	db *database.DB
}

// NewRegistrantRepo creates a new registrant repository
func NewRegistrantRepo(db *database.DB) RegistrantRepository {
	return &RegistrantRepo{db: db}
}

const registrantColumns = `uuid, participant_number, full_name, organization, role,
	photo_url, ai_photo_url, badge_url, certificate_url,
	last_generated_at, badge_generated_at, certificate_generated_at,
	created_at, updated_at`

// CreateRegistrant inserts a new registrant, assigning its id and the next
// participant number. Participant numbers are sequential and never reused.
func (r *RegistrantRepo) CreateRegistrant(registrant *model.Registrant) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	registrant.ID = uuid.New().String()
	registrant.CreatedAt = time.Now()
	registrant.UpdatedAt = time.Now()

	// Highest assigned number + 1; deleted registrants keep their number reserved
	var maxNumber sql.NullInt64
	if err := tx.QueryRow(`SELECT MAX(participant_number) FROM registrants`).Scan(&maxNumber); err != nil {
		return err
	}
	registrant.ParticipantNumber = int(maxNumber.Int64) + 1

	query := `
		INSERT INTO registrants (uuid, participant_number, full_name, organization, role,
			photo_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = tx.Exec(r.db.Rebind(query), registrant.ID, registrant.ParticipantNumber,
		registrant.FullName, registrant.Organization, registrant.Role, registrant.PhotoURL,
		registrant.CreatedAt, registrant.UpdatedAt)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetRegistrantByUUID retrieves a registrant by UUID
func (r *RegistrantRepo) GetRegistrantByUUID(id string) (*model.Registrant, error) {
	query := `SELECT ` + registrantColumns + ` FROM registrants WHERE uuid = ?`
	return r.scanRegistrant(r.db.QueryRow(r.db.Rebind(query), id))
}

// GetRegistrantByParticipantNumber retrieves a registrant by its participant number
func (r *RegistrantRepo) GetRegistrantByParticipantNumber(number int) (*model.Registrant, error) {
	query := `SELECT ` + registrantColumns + ` FROM registrants WHERE participant_number = ?`
	return r.scanRegistrant(r.db.QueryRow(r.db.Rebind(query), number))
}

func (r *RegistrantRepo) scanRegistrant(row *sql.Row) (*model.Registrant, error) {
	registrant := &model.Registrant{}
	err := row.Scan(
		&registrant.ID, &registrant.ParticipantNumber, &registrant.FullName,
		&registrant.Organization, &registrant.Role, &registrant.PhotoURL,
		&registrant.AIPhotoURL, &registrant.BadgeURL, &registrant.CertificateURL,
		&registrant.LastGeneratedAt, &registrant.BadgeGeneratedAt, &registrant.CertGeneratedAt,
		&registrant.CreatedAt, &registrant.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return registrant, nil
}

// UpdateRegistrant updates the mutable profile fields of a registrant
func (r *RegistrantRepo) UpdateRegistrant(registrant *model.Registrant) error {
	registrant.UpdatedAt = time.Now()

	query := `
		UPDATE registrants
		SET full_name = ?, organization = ?, role = ?, photo_url = ?, updated_at = ?
		WHERE uuid = ?
	`
	result, err := r.db.Exec(r.db.Rebind(query), registrant.FullName, registrant.Organization,
		registrant.Role, registrant.PhotoURL, registrant.UpdatedAt, registrant.ID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// UpdateAIPhoto records the stylized avatar URL for a registrant
func (r *RegistrantRepo) UpdateAIPhoto(id, photoURL string) error {
	query := `UPDATE registrants SET ai_photo_url = ?, updated_at = ? WHERE uuid = ?`
	_, err := r.db.Exec(r.db.Rebind(query), photoURL, time.Now(), id)
	return err
}

// RecordBadgeArtifact publishes a new badge URL and marks the generation time.
// last_generated_at is the timestamp the rate limiter's cooldown compares against.
func (r *RegistrantRepo) RecordBadgeArtifact(id, badgeURL string, generatedAt time.Time) error {
	query := `
		UPDATE registrants
		SET badge_url = ?, badge_generated_at = ?, last_generated_at = ?, updated_at = ?
		WHERE uuid = ?
	`
	_, err := r.db.Exec(r.db.Rebind(query), badgeURL, generatedAt, generatedAt, time.Now(), id)
	return err
}

// RecordCertificateArtifact publishes a new certificate URL and marks the generation time
func (r *RegistrantRepo) RecordCertificateArtifact(id, certificateURL string, generatedAt time.Time) error {
	query := `
		UPDATE registrants
		SET certificate_url = ?, certificate_generated_at = ?, last_generated_at = ?, updated_at = ?
		WHERE uuid = ?
	`
	_, err := r.db.Exec(r.db.Rebind(query), certificateURL, generatedAt, generatedAt, time.Now(), id)
	return err
}

// NextParticipantNumber returns the number the next created registrant will receive
func (r *RegistrantRepo) NextParticipantNumber() (int, error) {
	var maxNumber sql.NullInt64
	if err := r.db.QueryRow(`SELECT MAX(participant_number) FROM registrants`).Scan(&maxNumber); err != nil {
		return 0, err
	}
	return int(maxNumber.Int64) + 1, nil
}
