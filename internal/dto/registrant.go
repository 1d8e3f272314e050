package dto

import (
	"time"
)

// Registrant represents a registrant entity returned by the credential API
type Registrant struct {
	ID                string     `json:"id"`
	ParticipantNumber int        `json:"participantNumber"`
	FullName          string     `json:"fullName"`
	Organization      string     `json:"organization"`
	Role              string     `json:"role"`
	PhotoURL          string     `json:"photoUrl"`
	AIPhotoURL        *string    `json:"aiPhotoUrl,omitempty"`
	BadgeURL          *string    `json:"badgeUrl,omitempty"`
	CertificateURL    *string    `json:"certificateUrl,omitempty"`
	BadgeGeneratedAt  *time.Time `json:"badgeGeneratedAt,omitempty"`
	CertGeneratedAt   *time.Time `json:"certificateGeneratedAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// CreateRegistrantRequest represents the payload to register a new registrant
type CreateRegistrantRequest struct {
	FullName     string `json:"fullName"`
	Organization string `json:"organization"`
	Role         string `json:"role"`
	PhotoURL     string `json:"photoUrl"`
}

// UpdateRegistrantRequest represents a partial profile update. Nil fields are
// left untouched; a name or organization change schedules a badge regeneration.
type UpdateRegistrantRequest struct {
	FullName     *string `json:"fullName,omitempty"`
	Organization *string `json:"organization,omitempty"`
	Role         *string `json:"role,omitempty"`
	PhotoURL     *string `json:"photoUrl,omitempty"`
}
