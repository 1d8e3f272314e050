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
	"time"

	"credential-api/config"
	"credential-api/internal/repository"
	"credential-api/internal/utils"
)

// Denial reasons reported to callers so they can render an accurate message
const (
	DenialReasonIdentityCeiling = "identity_ceiling"
	DenialReasonOriginCeiling   = "origin_ceiling"
	DenialReasonQuotaStore      = "quota_store_unavailable"
)

// QuotaDecision is the outcome of a CheckAndReserve call. When denied, Reason
// names the ceiling that was hit and RemainingOther carries the remaining
// quota of the ceiling that still had headroom. RetryAfter is set only for
// origin-ceiling denials, where the window rollover makes the wait computable;
// the identity ceiling never resets, so it carries no retry hint.
type QuotaDecision struct {
	Allowed        bool
	Reason         string
	RetryAfter     time.Duration
	RemainingOther int
}

// RateLimiter enforces the two generation ceilings and the regeneration
// cooldown. Checking and committing are split: a check reserves nothing, and
// counters move only when Commit is called after the guarded work succeeded,
// so a failed downstream call does not consume quota.
type RateLimiter struct {
	quotaRepo repository.QuotaRepository
	clock     Clock

	maxPerIdentity int
	maxPerOrigin   int
	originWindow   time.Duration
	cooldown       time.Duration
}

// NewRateLimiter creates a new rate limiter backed by the quota counter tables
func NewRateLimiter(quotaRepo repository.QuotaRepository, cfg *config.RateLimit) *RateLimiter {
	return &RateLimiter{
		quotaRepo:      quotaRepo,
		clock:          &SystemClock{},
		maxPerIdentity: cfg.MaxPerIdentity,
		maxPerOrigin:   cfg.MaxPerOrigin,
		originWindow:   time.Duration(cfg.OriginWindowHours) * time.Hour,
		cooldown:       time.Duration(cfg.CooldownSeconds) * time.Second,
	}
}

// WithClock replaces the limiter's clock. Used by tests.
func (l *RateLimiter) WithClock(clock Clock) *RateLimiter {
	l.clock = clock
	return l
}

// CheckAndReserve evaluates both ceilings for the identity and origin. Both
// must pass. If the counter store is unreachable the limiter denies (fail
// closed) rather than allowing unlimited generation.
func (l *RateLimiter) CheckAndReserve(identityID, origin string) (*QuotaDecision, error) {
	identityQuota, err := l.quotaRepo.GetIdentityQuota(identityID)
	if err != nil {
		utils.LogError("Rate limiter failed to read identity quota, denying", err)
		return &QuotaDecision{Allowed: false, Reason: DenialReasonQuotaStore}, fmt.Errorf("identity quota read: %w", err)
	}

	identityUsed := 0
	if identityQuota != nil {
		identityUsed = identityQuota.Used
	}

	originUsed, originResetAt, err := l.originUsage(origin)
	if err != nil {
		utils.LogError("Rate limiter failed to read origin quota, denying", err)
		return &QuotaDecision{Allowed: false, Reason: DenialReasonQuotaStore}, fmt.Errorf("origin quota read: %w", err)
	}

	if identityUsed >= l.maxPerIdentity {
		return &QuotaDecision{
			Allowed:        false,
			Reason:         DenialReasonIdentityCeiling,
			RemainingOther: l.maxPerOrigin - originUsed,
		}, nil
	}

	if originUsed >= l.maxPerOrigin {
		retryAfter := originResetAt.Sub(l.clock.Now())
		if retryAfter < 0 {
			retryAfter = 0
		}
		return &QuotaDecision{
			Allowed:        false,
			Reason:         DenialReasonOriginCeiling,
			RetryAfter:     retryAfter,
			RemainingOther: l.maxPerIdentity - identityUsed,
		}, nil
	}

	return &QuotaDecision{Allowed: true}, nil
}

// originUsage reads the origin counter, applying the lazy window rollover: if
// the window has expired the counter is zeroed and reset_at pushed forward
// before the usage is reported. No background sweep is needed. The returned
// reset time bounds how long a denied caller must wait.
func (l *RateLimiter) originUsage(origin string) (int, time.Time, error) {
	quota, err := l.quotaRepo.GetOriginQuota(origin)
	if err != nil {
		return 0, time.Time{}, err
	}

	now := l.clock.Now()
	if quota == nil {
		return 0, now.Add(l.originWindow), nil
	}
	if !now.Before(quota.ResetAt) {
		next := now.Add(l.originWindow)
		if err := l.quotaRepo.ResetOriginQuota(origin, next); err != nil {
			return 0, time.Time{}, err
		}
		return 0, next, nil
	}
	return quota.Used, quota.ResetAt, nil
}

// Commit increments both counters. Called only after the guarded generation
// fully completed; a commit failure is the caller's to log, not to roll back.
func (l *RateLimiter) Commit(identityID, origin string) error {
	now := l.clock.Now()
	if err := l.quotaRepo.IncrementIdentityQuota(identityID, l.maxPerIdentity, now); err != nil {
		return fmt.Errorf("identity quota commit: %w", err)
	}
	if err := l.quotaRepo.IncrementOriginQuota(origin, l.maxPerOrigin, now.Add(l.originWindow)); err != nil {
		return fmt.Errorf("origin quota commit: %w", err)
	}
	return nil
}

// CooldownRemaining reports how long the identity must still wait before a
// repeat generation is accepted. Zero means the cooldown has passed. The
// timestamp compared against is the registrant's last recorded generation.
func (l *RateLimiter) CooldownRemaining(lastGeneratedAt *time.Time) time.Duration {
	if lastGeneratedAt == nil {
		return 0
	}
	elapsed := l.clock.Now().Sub(*lastGeneratedAt)
	if elapsed >= l.cooldown {
		return 0
	}
	return l.cooldown - elapsed
}
