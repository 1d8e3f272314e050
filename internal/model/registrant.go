package model

import (
	"time"
)

// Registrant represents an event registrant, the subject of generated credentials
type Registrant struct {
	ID                string     `json:"id" db:"uuid"`
	ParticipantNumber int        `json:"participant_number" db:"participant_number"`
	FullName          string     `json:"full_name" db:"full_name"`
	Organization      string     `json:"organization" db:"organization"`
	Role              string     `json:"role" db:"role"`
	PhotoURL          string     `json:"photo_url" db:"photo_url"`
	AIPhotoURL        *string    `json:"ai_photo_url" db:"ai_photo_url"`
	BadgeURL          *string    `json:"badge_url" db:"badge_url"`
	CertificateURL    *string    `json:"certificate_url" db:"certificate_url"`
	LastGeneratedAt   *time.Time `json:"last_generated_at" db:"last_generated_at"`
	BadgeGeneratedAt  *time.Time `json:"badge_generated_at" db:"badge_generated_at"`
	CertGeneratedAt   *time.Time `json:"certificate_generated_at" db:"certificate_generated_at"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Registrant model
func (Registrant) TableName() string {
	return "registrants"
}

// HasGenerationInputs reports whether the registrant carries every field the
// credential pipeline requires before it may start a generation.
func (r *Registrant) HasGenerationInputs() bool {
	return r.ParticipantNumber > 0 && r.FullName != "" && r.PhotoURL != ""
}
