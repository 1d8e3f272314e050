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
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"credential-api/config"
	"credential-api/internal/constants"
	"credential-api/internal/metrics"
	"credential-api/internal/model"
	"credential-api/internal/repository"
	"credential-api/internal/utils"

	qrcode "github.com/skip2/go-qrcode"
)

// CredentialService is the top-level coordinator of the generation pipeline.
// Per invocation: validate, guard, acquire avatar, compose, persist, record,
// commit quota. Any failure before the record step leaves the registrant's
// credential fields untouched and consumes no quota.
type CredentialService struct {
	registrantRepo repository.RegistrantRepository
	limiter        *RateLimiter
	stylizer       Stylizer
	compositor     *Compositor
	templates      *TemplateStore
	store          ObjectStore
	httpClient     *http.Client
	clock          Clock

	credentialPageBaseURL string
}

// NewCredentialService creates the pipeline orchestrator
func NewCredentialService(
	registrantRepo repository.RegistrantRepository,
	limiter *RateLimiter,
	stylizer Stylizer,
	compositor *Compositor,
	templates *TemplateStore,
	store ObjectStore,
	cfg *config.Templates,
) *CredentialService {
	return &CredentialService{
		registrantRepo:        registrantRepo,
		limiter:               limiter,
		stylizer:              stylizer,
		compositor:            compositor,
		templates:             templates,
		store:                 store,
		httpClient:            &http.Client{Timeout: 20 * time.Second},
		clock:                 &SystemClock{},
		credentialPageBaseURL: cfg.CredentialPageBaseURL,
	}
}

// WithClock replaces the service clock. Used by tests.
func (s *CredentialService) WithClock(clock Clock) *CredentialService {
	s.clock = clock
	return s
}

// GenerateBadge runs the full pipeline for the badge variant. The badge
// requires a stylized avatar; one is generated if the registrant has none.
func (s *CredentialService) GenerateBadge(ctx context.Context, registrantID, origin string) (*model.GeneratedArtifact, error) {
	artifact, err := s.generate(ctx, constants.ArtifactBadge, registrantID, origin)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(constants.ArtifactBadge, "failure").Inc()
		return nil, err
	}
	metrics.GenerationsTotal.WithLabelValues(constants.ArtifactBadge, "success").Inc()
	return artifact, nil
}

// GenerateCertificate runs the pipeline for the certificate variant. Style
// transfer is skipped: the existing avatar is used when present, otherwise
// the raw photo.
func (s *CredentialService) GenerateCertificate(ctx context.Context, registrantID, origin string) (*model.GeneratedArtifact, error) {
	artifact, err := s.generate(ctx, constants.ArtifactCertificate, registrantID, origin)
	if err != nil {
		metrics.GenerationsTotal.WithLabelValues(constants.ArtifactCertificate, "failure").Inc()
		return nil, err
	}
	metrics.GenerationsTotal.WithLabelValues(constants.ArtifactCertificate, "success").Inc()
	return artifact, nil
}

func (s *CredentialService) generate(ctx context.Context, kind, registrantID, origin string) (*model.GeneratedArtifact, error) {
	// 1. Validate
	registrant, err := s.registrantRepo.GetRegistrantByUUID(registrantID)
	if err != nil {
		return nil, err
	}
	if registrant == nil {
		return nil, constants.ErrRegistrantNotFound
	}
	if !registrant.HasGenerationInputs() {
		return nil, constants.ErrRegistrantIncomplete
	}

	// 2. Guard: cooldown absorbs accidental double-submits
	if remaining := s.limiter.CooldownRemaining(registrant.LastGeneratedAt); remaining > 0 {
		metrics.RateLimitDeniedTotal.WithLabelValues("cooldown").Inc()
		return nil, &CooldownError{RetryAfter: remaining}
	}

	decision, err := s.limiter.CheckAndReserve(registrantID, origin)
	if err != nil {
		metrics.RateLimitDeniedTotal.WithLabelValues(DenialReasonQuotaStore).Inc()
		return nil, fmt.Errorf("%w: %v", constants.ErrQuotaUnavailable, err)
	}
	if !decision.Allowed {
		metrics.RateLimitDeniedTotal.WithLabelValues(decision.Reason).Inc()
		return nil, &RateLimitError{
			Reason:         decision.Reason,
			RetryAfter:     decision.RetryAfter,
			RemainingOther: decision.RemainingOther,
		}
	}

	// 3. Acquire avatar
	photoData, degraded, err := s.acquirePhoto(ctx, kind, registrant)
	if err != nil {
		return nil, err
	}

	// 4. Compose
	imageData, err := s.compose(kind, registrant, photoData)
	if err != nil {
		return nil, err
	}

	// 5. Persist: a fresh key per generation, prior keys stay valid
	now := s.clock.Now()
	key := artifactKey(kind, registrantID, now)
	url, err := s.store.Put(ctx, key, imageData, constants.ContentTypePNG)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrStorageFailed, err)
	}

	// 6. Record: this is where the cooldown timer starts
	if kind == constants.ArtifactBadge {
		err = s.registrantRepo.RecordBadgeArtifact(registrantID, url, now)
	} else {
		err = s.registrantRepo.RecordCertificateArtifact(registrantID, url, now)
	}
	if err != nil {
		return nil, err
	}

	// 7. Commit quota: the artifact is more valuable than perfect accounting,
	// so a commit failure is logged rather than rolled back
	if err := s.limiter.Commit(registrantID, origin); err != nil {
		utils.LogError("Quota commit failed after successful generation", err)
		metrics.QuotaCommitFailuresTotal.Inc()
	}

	return &model.GeneratedArtifact{
		Kind:        kind,
		StorageKey:  key,
		URL:         url,
		GeneratedAt: now,
		Degraded:    degraded,
	}, nil
}

// acquirePhoto returns the photo bytes for the credential's photo layer. The
// badge variant demands a stylized avatar and aborts without one; the
// certificate variant takes the best photo available.
func (s *CredentialService) acquirePhoto(ctx context.Context, kind string, registrant *model.Registrant) ([]byte, bool, error) {
	if registrant.AIPhotoURL != nil && *registrant.AIPhotoURL != "" {
		data, err := s.fetchImage(ctx, *registrant.AIPhotoURL)
		return data, false, err
	}

	if kind == constants.ArtifactCertificate {
		data, err := s.fetchImage(ctx, registrant.PhotoURL)
		return data, false, err
	}

	result, err := s.stylizer.Stylize(ctx, registrant.PhotoURL)
	if err != nil {
		return nil, false, err
	}

	data, err := s.fetchImage(ctx, result.PhotoURL)
	if err != nil {
		return nil, false, fmt.Errorf("%w: fetching stylized image: %v", constants.ErrStyleTransferFailed, err)
	}

	// Keep our own durable copy; the external service's URL may expire
	avatarKey := fmt.Sprintf("%s%s-%d.png", constants.StoragePrefixProfilePhotos, registrant.ID, s.clock.Now().Unix())
	avatarURL, err := s.store.Put(ctx, avatarKey, data, constants.ContentTypePNG)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", constants.ErrStorageFailed, err)
	}
	if err := s.registrantRepo.UpdateAIPhoto(registrant.ID, avatarURL); err != nil {
		utils.LogError("Failed to record stylized avatar URL", err)
	}

	return data, result.Degraded, nil
}

// compose builds the layer list for the registrant's role and template
// variant and flattens it into the final raster.
func (s *CredentialService) compose(kind string, registrant *model.Registrant, photoData []byte) ([]byte, error) {
	tpl, err := s.templates.Get(kind, registrant.Role)
	if err != nil {
		return nil, err
	}

	templateData, err := tpl.ReadImage()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrCompositionFailed, err)
	}

	var layers []Layer

	if tpl.Photo != nil {
		layers = append(layers, ImageLayer{
			Data:      photoData,
			X:         tpl.Photo.X,
			Y:         tpl.Photo.Y,
			Width:     tpl.Photo.Width,
			Height:    tpl.Photo.Height,
			Fit:       tpl.Photo.Fit,
			Grayscale: tpl.Photo.Grayscale,
		})
	}

	for _, field := range tpl.Fields {
		layers = append(layers, TextLayer{
			Text:  s.fieldValue(field.Field, registrant),
			Box:   field.Box,
			Color: field.Color,
			Bold:  field.Bold,
		})
	}

	if tpl.Code != nil {
		pageURL := fmt.Sprintf("%s/%d", s.credentialPageBaseURL, registrant.ParticipantNumber)
		codeData, err := qrcode.Encode(pageURL, qrcode.Medium, tpl.Code.Size)
		if err != nil {
			return nil, fmt.Errorf("%w: scannable code: %v", constants.ErrCompositionFailed, err)
		}
		layers = append(layers, ImageLayer{
			Data:   codeData,
			X:      tpl.Code.X,
			Y:      tpl.Code.Y,
			Width:  tpl.Code.Size,
			Height: tpl.Code.Size,
			Fit:    FitContain,
		})
	}

	return s.compositor.Compose(templateData, layers)
}

func (s *CredentialService) fieldValue(field string, registrant *model.Registrant) string {
	switch field {
	case FieldFullName:
		return registrant.FullName
	case FieldOrganization:
		return registrant.Organization
	case FieldParticipantNumber:
		return fmt.Sprintf("#%03d", registrant.ParticipantNumber)
	case FieldRole:
		return registrant.Role
	default:
		return ""
	}
}

// fetchImage downloads image bytes from a URL with a bounded timeout
func (s *CredentialService) fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching image %s", resp.StatusCode, url)
	}

	return io.ReadAll(resp.Body)
}

func artifactKey(kind, registrantID string, generatedAt time.Time) string {
	prefix := constants.StoragePrefixBadges
	if kind == constants.ArtifactCertificate {
		prefix = constants.StoragePrefixCertificates
	}
	return fmt.Sprintf("%s%s-%d.png", prefix, registrantID, generatedAt.Unix())
}
