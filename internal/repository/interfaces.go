package repository

import (
	"time"

	"credential-api/internal/model"
)

// RegistrantRepository defines the interface for registrant data access
type RegistrantRepository interface {
	CreateRegistrant(registrant *model.Registrant) error
	GetRegistrantByUUID(uuid string) (*model.Registrant, error)
	GetRegistrantByParticipantNumber(number int) (*model.Registrant, error)
	UpdateRegistrant(registrant *model.Registrant) error
	UpdateAIPhoto(uuid, photoURL string) error
	RecordBadgeArtifact(uuid, badgeURL string, generatedAt time.Time) error
	RecordCertificateArtifact(uuid, certificateURL string, generatedAt time.Time) error
	NextParticipantNumber() (int, error)
}

// QuotaRepository defines the interface for generation quota counters
type QuotaRepository interface {
	GetIdentityQuota(identityID string) (*model.IdentityQuota, error)
	IncrementIdentityQuota(identityID string, allowed int, generatedAt time.Time) error
	GetOriginQuota(origin string) (*model.OriginQuota, error)
	IncrementOriginQuota(origin string, allowed int, resetAt time.Time) error
	ResetOriginQuota(origin string, resetAt time.Time) error
}
