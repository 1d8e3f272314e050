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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"credential-api/config"
	"credential-api/internal/constants"
	"credential-api/internal/metrics"
	"credential-api/internal/utils"
)

// StylizedResult is the outcome of a stylize run. Degraded is true when the
// background-removal stage failed and the caller received the Stage A image.
type StylizedResult struct {
	PhotoURL string
	Degraded bool
}

// Stylizer turns a submitted photo into a stylized portrait
type Stylizer interface {
	Stylize(ctx context.Context, sourcePhotoURL string) (*StylizedResult, error)
}

// StyleTransferService orchestrates the two external image services: a
// mandatory image-to-image transform (Stage A) and a best-effort background
// removal (Stage B). Each stage is a single attempt with a bounded timeout;
// the underlying operations are billable and not safe to blindly repeat, so
// retries are left to the caller behind the generation cooldown.
type StyleTransferService struct {
	httpClient *http.Client

	transformBaseURL string
	transformAPIKey  string
	prompt           string
	transformTimeout time.Duration

	removalBaseURL string
	removalAPIKey  string
	removalTimeout time.Duration
}

// NewStyleTransferService creates a new style transfer orchestrator
func NewStyleTransferService(cfg *config.StyleTransfer) *StyleTransferService {
	return &StyleTransferService{
		httpClient:       &http.Client{},
		transformBaseURL: cfg.TransformBaseURL,
		transformAPIKey:  cfg.TransformAPIKey,
		prompt:           cfg.Prompt,
		transformTimeout: time.Duration(cfg.TransformTimeoutSeconds) * time.Second,
		removalBaseURL:   cfg.RemovalBaseURL,
		removalAPIKey:    cfg.RemovalAPIKey,
		removalTimeout:   time.Duration(cfg.RemovalTimeoutSeconds) * time.Second,
	}
}

// Stylize runs the full pipeline for one source photo. Stage A failure is a
// hard failure; Stage B failure degrades the result but keeps going.
func (s *StyleTransferService) Stylize(ctx context.Context, sourcePhotoURL string) (*StylizedResult, error) {
	// The transform service requires the source in its own object store
	// before it accepts a job; this upload is part of Stage A.
	uploadedURL, err := s.uploadSource(ctx, sourcePhotoURL)
	if err != nil {
		return nil, fmt.Errorf("%w: source upload: %v", constants.ErrStyleTransferFailed, err)
	}

	stylizedURL, err := s.transform(ctx, uploadedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", constants.ErrStyleTransferFailed, err)
	}

	cutoutURL, err := s.removeBackground(ctx, stylizedURL)
	if err != nil {
		// Keep the non-transparent Stage A image rather than failing the run
		utils.LogWarning(fmt.Sprintf("Background removal failed, returning degraded result: %v", err))
		metrics.DegradedStylizationsTotal.Inc()
		return &StylizedResult{PhotoURL: stylizedURL, Degraded: true}, nil
	}

	return &StylizedResult{PhotoURL: cutoutURL}, nil
}

// uploadSource registers the source photo with the transform service's file
// store and returns the URL the transform job must reference.
func (s *StyleTransferService) uploadSource(ctx context.Context, sourcePhotoURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.transformTimeout)
	defer cancel()

	payload := map[string]string{"url": sourcePhotoURL}
	respBody, err := s.postJSON(ctx, s.transformBaseURL+"/v1/files", s.transformAPIKey, payload)
	if err != nil {
		return "", err
	}

	var upload struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(respBody, &upload); err != nil {
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}
	if upload.URL == "" {
		return "", fmt.Errorf("upload response contained no file URL")
	}
	return upload.URL, nil
}

// transform submits the Stage A image-to-image job and extracts the result URL
func (s *StyleTransferService) transform(ctx context.Context, imageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.transformTimeout)
	defer cancel()

	payload := map[string]string{
		"image_url": imageURL,
		"prompt":    s.prompt,
	}
	respBody, err := s.postJSON(ctx, s.transformBaseURL+"/v1/images/transformations", s.transformAPIKey, payload)
	if err != nil {
		return "", err
	}

	resultURL, err := extractImageURL(respBody)
	if err != nil {
		// No fallback: without a base stylized image nothing downstream is meaningful
		return "", err
	}
	return resultURL, nil
}

// removeBackground submits the Stage B job. Any failure here is soft.
func (s *StyleTransferService) removeBackground(ctx context.Context, imageURL string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.removalTimeout)
	defer cancel()

	payload := map[string]string{"image_url": imageURL}
	respBody, err := s.postJSON(ctx, s.removalBaseURL+"/v1/background/remove", s.removalAPIKey, payload)
	if err != nil {
		return "", err
	}

	return extractImageURL(respBody)
}

// postJSON executes one JSON POST against an external service. A non-2xx
// status is an error; third-party response bodies are kept for logs only and
// never surfaced to end users.
func (s *StyleTransferService) postJSON(ctx context.Context, url, apiKey string, payload interface{}) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", url, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		utils.LogWarning(fmt.Sprintf("External image service %s returned status %d: %s", url, resp.StatusCode, respBody))
		return nil, fmt.Errorf("unexpected response status %d from %s", resp.StatusCode, url)
	}

	return respBody, nil
}

// imageURLExtractor pulls a result image URL out of one known response shape
type imageURLExtractor func(raw []byte) string

// { "images": [ { "url": ... } ] }
func extractFromImageList(raw []byte) string {
	var doc struct {
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	}
	if json.Unmarshal(raw, &doc) == nil && len(doc.Images) > 0 {
		return doc.Images[0].URL
	}
	return ""
}

// { "image": { "url": ... } }
func extractFromSingleImage(raw []byte) string {
	var doc struct {
		Image struct {
			URL string `json:"url"`
		} `json:"image"`
	}
	if json.Unmarshal(raw, &doc) == nil {
		return doc.Image.URL
	}
	return ""
}

// { "data": { ...list or single image... } }
func extractFromDataWrapper(raw []byte) string {
	var doc struct {
		Data json.RawMessage `json:"data"`
	}
	if json.Unmarshal(raw, &doc) != nil || len(doc.Data) == 0 {
		return ""
	}
	if url := extractFromImageList(doc.Data); url != "" {
		return url
	}
	return extractFromSingleImage(doc.Data)
}

// { "url": ... }
func extractFromBareURL(raw []byte) string {
	var doc struct {
		URL string `json:"url"`
	}
	if json.Unmarshal(raw, &doc) == nil {
		return doc.URL
	}
	return ""
}

// imageURLExtractors is the fixed priority order of known response shapes.
// The external services have returned the same logical result under several
// layouts; new shapes get a new entry here and nowhere else.
var imageURLExtractors = []imageURLExtractor{
	extractFromImageList,
	extractFromSingleImage,
	extractFromDataWrapper,
	extractFromBareURL,
}

// extractImageURL tries each known response shape in priority order and
// returns the first present image URL.
func extractImageURL(raw []byte) (string, error) {
	for _, extract := range imageURLExtractors {
		if url := extract(raw); url != "" {
			return url, nil
		}
	}
	return "", fmt.Errorf("no image URL found in service response")
}
