/*
 *  Copyright (c) 2026, WSO2 LLC. (http://www.wso2.org) All Rights Reserved.
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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"credential-api/internal/constants"
)

const participantBadgeTemplate = `apiVersion: credentials/v1
kind: CredentialTemplate
metadata:
  name: badge-participant
spec:
  artifact: badge
  role: participant
  image: badge-participant.png
  width: 700
  height: 1100
  photo:
    x: 190
    y: 180
    width: 320
    height: 320
    fit: cover
  code:
    x: 270
    y: 880
    size: 160
  fields:
    - field: fullName
      x: 70
      y: 540
      width: 560
      height: 80
      fontSize: 52
      minFontSize: 28
      padding: 8
      color: "#24292f"
      bold: true
`

func writeTemplateDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadTemplateStore(t *testing.T) {
	dir := writeTemplateDir(t, map[string]string{
		"badge-participant.yaml": participantBadgeTemplate,
		"README.txt":             "not a template",
	})

	store, err := LoadTemplateStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tpl, err := store.Get(constants.ArtifactBadge, constants.RoleParticipant)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tpl.Name != "badge-participant" {
		t.Errorf("Name = %q, want badge-participant", tpl.Name)
	}
	if tpl.Width != 700 || tpl.Height != 1100 {
		t.Errorf("canvas = %dx%d, want 700x1100", tpl.Width, tpl.Height)
	}
	if tpl.Photo == nil || tpl.Photo.Fit != "cover" {
		t.Errorf("expected a cover photo box, got %+v", tpl.Photo)
	}
	if tpl.Code == nil || tpl.Code.Size != 160 {
		t.Errorf("expected a 160px code box, got %+v", tpl.Code)
	}
	if len(tpl.Fields) != 1 || tpl.Fields[0].Field != FieldFullName {
		t.Errorf("expected one fullName field, got %+v", tpl.Fields)
	}
	if tpl.Fields[0].Box.FontSize != 52 || tpl.Fields[0].Box.MinFontSize != 28 {
		t.Errorf("expected inline layout box to be parsed, got %+v", tpl.Fields[0].Box)
	}
	if tpl.ImagePath != filepath.Join(dir, "badge-participant.png") {
		t.Errorf("ImagePath = %q, want path inside the template directory", tpl.ImagePath)
	}
}

func TestLoadTemplateStoreRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "unknown artifact kind",
			content: `apiVersion: credentials/v1
kind: CredentialTemplate
metadata:
  name: bad
spec:
  artifact: poster
  role: participant
  image: x.png
  width: 100
  height: 100
`,
		},
		{
			name: "unknown role",
			content: `apiVersion: credentials/v1
kind: CredentialTemplate
metadata:
  name: bad
spec:
  artifact: badge
  role: wizard
  image: x.png
  width: 100
  height: 100
`,
		},
		{
			name: "missing dimensions",
			content: `apiVersion: credentials/v1
kind: CredentialTemplate
metadata:
  name: bad
spec:
  artifact: badge
  role: participant
  image: x.png
`,
		},
		{
			name: "missing name",
			content: `apiVersion: credentials/v1
kind: CredentialTemplate
spec:
  artifact: badge
  role: participant
  image: x.png
  width: 100
  height: 100
`,
		},
		{
			name:    "not yaml",
			content: "{{{",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := writeTemplateDir(t, map[string]string{"bad.yaml": tt.content})
			if _, err := LoadTemplateStore(dir); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestTemplateStoreGetMiss(t *testing.T) {
	dir := writeTemplateDir(t, map[string]string{
		"badge-participant.yaml": participantBadgeTemplate,
	})
	store, err := LoadTemplateStore(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = store.Get(constants.ArtifactCertificate, constants.RoleParticipant)
	if !errors.Is(err, constants.ErrTemplateNotFound) {
		t.Errorf("expected ErrTemplateNotFound, got %v", err)
	}
}
