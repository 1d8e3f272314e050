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

package dto

// GenerateCredentialResponse is returned when a badge or certificate
// generation completes synchronously
type GenerateCredentialResponse struct {
	ArtifactURL string `json:"artifactUrl"`
	Degraded    bool   `json:"degraded,omitempty"`
}

// CredentialStatusResponse is returned by the bounded badge poll endpoint.
// Status is "ready" when the artifact URL is present and "pending" otherwise;
// pending after the poll budget is exhausted is not an error.
type CredentialStatusResponse struct {
	Status      string `json:"status"`
	ArtifactURL string `json:"artifactUrl,omitempty"`
}

// RateLimitedResponse carries the actionable hint for a denied generation
type RateLimitedResponse struct {
	Code              int    `json:"code"`
	Message           string `json:"message"`
	Reason            string `json:"reason"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty"`
	RemainingQuota    int    `json:"remainingQuota,omitempty"`
}
