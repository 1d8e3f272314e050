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
)

// QuotaRepo implements QuotaRepository over the identity_quotas and
// origin_quotas counter tables.
type QuotaRepo struct {
	db *database.DB
}

// NewQuotaRepo creates a new quota repository
func NewQuotaRepo(db *database.DB) QuotaRepository {
	return &QuotaRepo{db: db}
}

// GetIdentityQuota retrieves the counter for one identity, nil if never used
func (r *QuotaRepo) GetIdentityQuota(identityID string) (*model.IdentityQuota, error) {
	quota := &model.IdentityQuota{}
	query := `SELECT identity_id, used, allowed, last_generated_at FROM identity_quotas WHERE identity_id = ?`
	err := r.db.QueryRow(r.db.Rebind(query), identityID).Scan(
		&quota.IdentityID, &quota.Used, &quota.Allowed, &quota.LastGeneratedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return quota, nil
}

// IncrementIdentityQuota adds one consumed generation for the identity,
// creating the counter row on first use
func (r *QuotaRepo) IncrementIdentityQuota(identityID string, allowed int, generatedAt time.Time) error {
	query := `
		INSERT INTO identity_quotas (identity_id, used, allowed, last_generated_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT (identity_id)
		DO UPDATE SET used = identity_quotas.used + 1, last_generated_at = ?
	`
	_, err := r.db.Exec(r.db.Rebind(query), identityID, allowed, generatedAt, generatedAt)
	return err
}

// GetOriginQuota retrieves the counter for one network origin, nil if never used
func (r *QuotaRepo) GetOriginQuota(origin string) (*model.OriginQuota, error) {
	quota := &model.OriginQuota{}
	query := `SELECT origin, used, allowed, reset_at FROM origin_quotas WHERE origin = ?`
	err := r.db.QueryRow(r.db.Rebind(query), origin).Scan(
		&quota.Origin, &quota.Used, &quota.Allowed, &quota.ResetAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return quota, nil
}

// IncrementOriginQuota adds one consumed generation for the origin, creating
// the counter row with the provided window end on first use
func (r *QuotaRepo) IncrementOriginQuota(origin string, allowed int, resetAt time.Time) error {
	query := `
		INSERT INTO origin_quotas (origin, used, allowed, reset_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT (origin)
		DO UPDATE SET used = origin_quotas.used + 1
	`
	_, err := r.db.Exec(r.db.Rebind(query), origin, allowed, resetAt)
	return err
}

// ResetOriginQuota zeroes the origin counter and pushes its window forward.
// Called by the limiter when a read observes that reset_at has passed.
func (r *QuotaRepo) ResetOriginQuota(origin string, resetAt time.Time) error {
	query := `UPDATE origin_quotas SET used = 0, reset_at = ? WHERE origin = ?`
	_, err := r.db.Exec(r.db.Rebind(query), resetAt, origin)
	return err
}
