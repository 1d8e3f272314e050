package model

import (
	"time"
)

// IdentityQuota tracks generations consumed by a single registrant identity.
// The identity ceiling is never time-reset; resets are an operator action.
type IdentityQuota struct {
	IdentityID      string     `json:"identity_id" db:"identity_id"`
	Used            int        `json:"used" db:"used"`
	Allowed         int        `json:"allowed" db:"allowed"`
	LastGeneratedAt *time.Time `json:"last_generated_at" db:"last_generated_at"`
}

// TableName returns the table name for the IdentityQuota model
func (IdentityQuota) TableName() string {
	return "identity_quotas"
}

// OriginQuota tracks generations consumed by a network origin within a rolling
// window. The counter is zeroed lazily the first time it is read after ResetAt.
type OriginQuota struct {
	Origin  string    `json:"origin" db:"origin"`
	Used    int       `json:"used" db:"used"`
	Allowed int       `json:"allowed" db:"allowed"`
	ResetAt time.Time `json:"reset_at" db:"reset_at"`
}

// TableName returns the table name for the OriginQuota model
func (OriginQuota) TableName() string {
	return "origin_quotas"
}
