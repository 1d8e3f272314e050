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

package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// GenerationsTotal counts credential generations by artifact kind and outcome
	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credential_generations_total",
			Help: "Credential generations by artifact kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	// DegradedStylizationsTotal counts stylizations that completed without
	// background removal, so operators can observe degraded-quality rates
	DegradedStylizationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "credential_degraded_stylizations_total",
			Help: "Stylized avatars produced without successful background removal",
		},
	)

	// RateLimitDeniedTotal counts denied generation requests by reason
	RateLimitDeniedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "credential_rate_limit_denied_total",
			Help: "Generation requests denied by the rate limiter, by reason",
		},
		[]string{"reason"},
	)

	// QuotaCommitFailuresTotal counts quota commits that failed after an
	// otherwise successful generation
	QuotaCommitFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "credential_quota_commit_failures_total",
			Help: "Quota commits that failed after a successful generation",
		},
	)
)

var (
	registry *prometheus.Registry
	initOnce sync.Once
)

// Init registers all collectors on a dedicated registry and returns it.
// Safe to call more than once; registration happens exactly once.
func Init() *prometheus.Registry {
	initOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			GenerationsTotal,
			DegradedStylizationsTotal,
			RateLimitDeniedTotal,
			QuotaCommitFailuresTotal,
		)
	})
	return registry
}
