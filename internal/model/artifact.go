package model

import (
	"time"
)

// GeneratedArtifact describes one stored credential image. Artifacts are
// immutable: every generation writes a new key, prior keys are never reused,
// so stale links keep resolving until the record points at a newer artifact.
type GeneratedArtifact struct {
	Kind        string    `json:"kind"`
	StorageKey  string    `json:"storage_key"`
	URL         string    `json:"url"`
	GeneratedAt time.Time `json:"generated_at"`
	// Degraded marks that the styled avatar skipped background removal
	Degraded bool `json:"degraded,omitempty"`
}
