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

package constants

import "errors"

var (
	ErrRegistrantNotFound   = errors.New("registrant not found")
	ErrRegistrantIncomplete = errors.New("registrant is missing required fields for generation")
	ErrInvalidRole          = errors.New("invalid registrant role")
	ErrInvalidFullName      = errors.New("invalid full name")
)

var (
	ErrRateLimited       = errors.New("generation rate limit exceeded")
	ErrGenerationTooSoon = errors.New("generation requested within cooldown window")
	ErrQuotaUnavailable  = errors.New("quota store unavailable")
)

var (
	ErrStyleTransferFailed = errors.New("style transfer failed")
	ErrCompositionFailed   = errors.New("credential composition failed")
	ErrStorageFailed       = errors.New("artifact storage failed")
	ErrTemplateNotFound    = errors.New("credential template not found")
)
