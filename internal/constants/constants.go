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

// Registrant role constants. Each role maps to its own badge template variant.
const (
	RoleParticipant = "participant"
	RoleStaff       = "staff"
	RoleOrganizer   = "organizer"
	RoleMentor      = "mentor"
	RoleJudge       = "judge"
)

// ValidRoles Valid registrant roles
var ValidRoles = map[string]bool{
	RoleParticipant: true,
	RoleStaff:       true,
	RoleOrganizer:   true,
	RoleMentor:      true,
	RoleJudge:       true,
}

// Artifact kind constants for generated credentials
const (
	ArtifactBadge       = "badge"
	ArtifactCertificate = "certificate"
)

// ValidArtifactKinds Valid generated artifact kinds
var ValidArtifactKinds = map[string]bool{
	ArtifactBadge:       true,
	ArtifactCertificate: true,
}

// Object storage key prefixes, one namespace per artifact kind
const (
	StoragePrefixBadges        = "badges/"
	StoragePrefixCertificates  = "certificates/"
	StoragePrefixProfilePhotos = "ai-profile-photos/"
)

// ContentTypePNG is the content type of every artifact this service stores
const ContentTypePNG = "image/png"
