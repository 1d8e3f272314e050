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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"credential-api/internal/constants"

	"gopkg.in/yaml.v3"
)

// Template field identifiers bound to registrant record fields
const (
	FieldFullName          = "fullName"
	FieldOrganization      = "organization"
	FieldParticipantNumber = "participantNumber"
	FieldRole              = "role"
)

// ImageBox places an image layer on the template canvas
type ImageBox struct {
	X         int    `yaml:"x"`
	Y         int    `yaml:"y"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Fit       string `yaml:"fit"` // cover | contain
	Grayscale bool   `yaml:"grayscale"`
}

// CodeBox places the scannable-code layer on the template canvas
type CodeBox struct {
	X    int `yaml:"x"`
	Y    int `yaml:"y"`
	Size int `yaml:"size"`
}

// TextField binds one registrant field to a layout box on the canvas
type TextField struct {
	Field string    `yaml:"field"`
	Box   LayoutBox `yaml:",inline"`
	Color string    `yaml:"color"`
	Bold  bool      `yaml:"bold"`
}

// CredentialTemplate is the static, versioned layer coordinate table for one
// role and artifact kind, plus the template raster it composites onto.
type CredentialTemplate struct {
	Name      string
	Artifact  string
	Role      string
	ImagePath string
	Width     int
	Height    int
	Photo     *ImageBox
	Code      *CodeBox
	Fields    []TextField
}

type credentialTemplateYAML struct {
	APIVersion string `yaml:"apiVersion"`
	Kind       string `yaml:"kind"`
	Metadata   struct {
		Name string `yaml:"name"`
	} `yaml:"metadata"`
	Spec struct {
		Artifact string      `yaml:"artifact"`
		Role     string      `yaml:"role"`
		Image    string      `yaml:"image"`
		Width    int         `yaml:"width"`
		Height   int         `yaml:"height"`
		Photo    *ImageBox   `yaml:"photo"`
		Code     *CodeBox    `yaml:"code"`
		Fields   []TextField `yaml:"fields"`
	} `yaml:"spec"`
}

// TemplateStore holds the credential templates loaded at startup, keyed by
// artifact kind and role. Read-only after load.
type TemplateStore struct {
	templates map[string]*CredentialTemplate
}

func templateKey(artifact, role string) string {
	return artifact + "/" + role
}

// LoadTemplateStore reads every template definition from the directory.
// Template images are resolved relative to the same directory.
func LoadTemplateStore(dirPath string) (*TemplateStore, error) {
	if strings.TrimSpace(dirPath) == "" {
		return nil, fmt.Errorf("template directory path is empty")
	}

	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory %s: %w", dirPath, err)
	}

	store := &TemplateStore{templates: make(map[string]*CredentialTemplate)}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		lower := strings.ToLower(name)
		if !strings.HasSuffix(lower, ".yaml") && !strings.HasSuffix(lower, ".yml") {
			continue
		}

		filePath := filepath.Join(dirPath, name)
		content, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read template file %s: %w", filePath, readErr)
		}

		var doc credentialTemplateYAML
		if unmarshalErr := yaml.Unmarshal(content, &doc); unmarshalErr != nil {
			return nil, fmt.Errorf("failed to parse YAML template %s: %w", filePath, unmarshalErr)
		}

		if strings.TrimSpace(doc.Metadata.Name) == "" {
			return nil, fmt.Errorf("template file %s is missing metadata.name", filePath)
		}
		if !constants.ValidArtifactKinds[doc.Spec.Artifact] {
			return nil, fmt.Errorf("template file %s has unknown artifact kind %q", filePath, doc.Spec.Artifact)
		}
		if !constants.ValidRoles[doc.Spec.Role] {
			return nil, fmt.Errorf("template file %s has unknown role %q", filePath, doc.Spec.Role)
		}
		if doc.Spec.Width <= 0 || doc.Spec.Height <= 0 {
			return nil, fmt.Errorf("template file %s is missing canvas dimensions", filePath)
		}

		tpl := &CredentialTemplate{
			Name:      doc.Metadata.Name,
			Artifact:  doc.Spec.Artifact,
			Role:      doc.Spec.Role,
			ImagePath: filepath.Join(dirPath, doc.Spec.Image),
			Width:     doc.Spec.Width,
			Height:    doc.Spec.Height,
			Photo:     doc.Spec.Photo,
			Code:      doc.Spec.Code,
			Fields:    doc.Spec.Fields,
		}
		store.templates[templateKey(tpl.Artifact, tpl.Role)] = tpl
	}

	return store, nil
}

// Get returns the template for an artifact kind and role
func (s *TemplateStore) Get(artifact, role string) (*CredentialTemplate, error) {
	if tpl, ok := s.templates[templateKey(artifact, role)]; ok {
		return tpl, nil
	}
	return nil, fmt.Errorf("no template for artifact %q role %q: %w", artifact, role, constants.ErrTemplateNotFound)
}

// ReadImage loads the template raster from disk
func (t *CredentialTemplate) ReadImage() ([]byte, error) {
	data, err := os.ReadFile(t.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template image %s: %w", t.ImagePath, err)
	}
	return data, nil
}
