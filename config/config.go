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

package config

import (
	"fmt"
	"sync"

	"github.com/kelseyhightower/envconfig"
)

// Server holds the configuration parameters for the credential service.
type Server struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"DEBUG"`

	// Server configurations
	Port string `envconfig:"PORT" default:"9244"`

	// Database configurations
	Database     Database `envconfig:"DATABASE"`
	DBSchemaPath string   `envconfig:"DB_SCHEMA_PATH" default:"./internal/database/schema.sql"`

	// JWT Authentication configurations
	JWT JWT `envconfig:"JWT"`

	// Generation rate limiting configurations
	RateLimit RateLimit `envconfig:"RATE_LIMIT"`

	// Object storage configurations
	Storage Storage `envconfig:"STORAGE"`

	// Style transfer (external AI) configurations
	StyleTransfer StyleTransfer `envconfig:"STYLE_TRANSFER"`

	// Credential template configurations
	Templates Templates `envconfig:"TEMPLATES"`

	// Background regeneration configurations
	Regeneration Regeneration `envconfig:"REGENERATION"`
}

// JWT holds JWT-specific configuration
type JWT struct {
	SecretKey      string   `envconfig:"SECRET_KEY" default:"your-secret-key-change-in-production"`
	Issuer         string   `envconfig:"ISSUER" default:"thunder"`
	SkipPaths      []string `envconfig:"SKIP_PATHS" default:"/health,/metrics"`
	SkipValidation bool     `envconfig:"SKIP_VALIDATION" default:"true"` // Skip signature validation for development
	// GenerationScope, when set, is the token scope required to generate
	// credentials. Empty disables scope enforcement.
	GenerationScope string `envconfig:"GENERATION_SCOPE" default:""`
}

// Database holds database-specific configuration
type Database struct {
	Driver string `envconfig:"DRIVER" default:"sqlite3"`
	// Path is the file path for SQLite databases.
	// Use DATABASE_DB_PATH to override; keeping it distinct from the OS PATH variable.
	Path            string `envconfig:"DB_PATH" default:"./data/credential_api.db"`
	Host            string `envconfig:"HOST" default:"localhost"`
	Port            int    `envconfig:"PORT" default:"5432"`
	Name            string `envconfig:"NAME" default:"credential_api"`
	User            string `envconfig:"USER" default:""`
	Password        string `envconfig:"PASSWORD" default:""`
	SSLMode         string `envconfig:"SSL_MODE" default:"disable"`
	MaxOpenConns    int    `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int    `envconfig:"MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime int    `envconfig:"CONN_MAX_LIFETIME" default:"300"` // seconds

	// ExecuteSchemaDDL controls whether to run the schema DDL (CREATE TABLE, etc.) on startup.
	// Set to false when the DB user lacks DDL privileges.
	ExecuteSchemaDDL bool `envconfig:"EXECUTE_SCHEMA_DDL" default:"true"`
}

// RateLimit holds generation quota and cooldown configuration
type RateLimit struct {
	// MaxPerIdentity is the lifetime generation ceiling for one registrant identity
	MaxPerIdentity int `envconfig:"MAX_PER_IDENTITY" default:"5"`
	// MaxPerOrigin is the ceiling for one network origin within the rolling window
	MaxPerOrigin int `envconfig:"MAX_PER_ORIGIN" default:"30"`
	// OriginWindowHours is the rolling window for the origin ceiling
	OriginWindowHours int `envconfig:"ORIGIN_WINDOW_HOURS" default:"24"`
	// CooldownSeconds rejects repeat generations for the same identity within this interval
	CooldownSeconds int `envconfig:"COOLDOWN_SECONDS" default:"30"`
}

// Storage holds object storage (S3-compatible) configuration
type Storage struct {
	Bucket    string `envconfig:"BUCKET" default:"event-credentials"`
	Region    string `envconfig:"REGION" default:"us-east-1"`
	AccessKey string `envconfig:"ACCESS_KEY" default:""`
	SecretKey string `envconfig:"SECRET_KEY" default:""`
	// Endpoint overrides the S3 endpoint for S3-compatible stores (MinIO, R2)
	Endpoint string `envconfig:"ENDPOINT" default:""`
	// PublicBaseURL is the public prefix under which stored keys are reachable
	PublicBaseURL  string `envconfig:"PUBLIC_BASE_URL" default:"https://cdn.example.com"`
	TimeoutSeconds int    `envconfig:"TIMEOUT_SECONDS" default:"20"`
}

// StyleTransfer holds the configuration for the two external image services
type StyleTransfer struct {
	TransformBaseURL string `envconfig:"TRANSFORM_BASE_URL" default:"https://api.imagetransform.example.com"`
	TransformAPIKey  string `envconfig:"TRANSFORM_API_KEY" default:""`
	// Prompt is the fixed instructional prompt submitted with every source photo
	Prompt                  string `envconfig:"PROMPT" default:"Stylized flat illustration portrait, bold outlines, event branding colors"`
	TransformTimeoutSeconds int    `envconfig:"TRANSFORM_TIMEOUT_SECONDS" default:"60"`

	RemovalBaseURL        string `envconfig:"REMOVAL_BASE_URL" default:"https://api.bgremoval.example.com"`
	RemovalAPIKey         string `envconfig:"REMOVAL_API_KEY" default:""`
	RemovalTimeoutSeconds int    `envconfig:"REMOVAL_TIMEOUT_SECONDS" default:"30"`
}

// Templates holds credential template configuration
type Templates struct {
	// DefinitionsPath is the directory of per-role template coordinate tables
	DefinitionsPath string `envconfig:"DEFINITIONS_PATH" default:"./resources/templates"`
	// CredentialPageBaseURL is the public page the scannable code points at;
	// the participant number is appended as the final path segment
	CredentialPageBaseURL string `envconfig:"CREDENTIAL_PAGE_BASE_URL" default:"https://event.example.com/credentials"`
}

// Regeneration holds the polling and repair configuration for background generation
type Regeneration struct {
	PollIntervalSeconds int `envconfig:"POLL_INTERVAL_SECONDS" default:"2"`
	MaxPolls            int `envconfig:"MAX_POLLS" default:"10"`
	// RepairDelaySeconds is how long a stylized avatar may sit without a badge
	// before the fallback repair pass may trigger a generation itself
	RepairDelaySeconds int `envconfig:"REPAIR_DELAY_SECONDS" default:"60"`
}

var (
	settingInstance *Server
	processOnce     sync.Once
)

// GetConfig initializes and returns a singleton instance of the Server config.
// It uses sync.Once so environment processing runs exactly once per process.
func GetConfig() *Server {
	var err error
	processOnce.Do(func() {
		settingInstance = &Server{}
		err = envconfig.Process("", settingInstance)
		if err == nil {
			err = validate(settingInstance)
		}
	})
	if err != nil {
		panic(err)
	}
	return settingInstance
}

func validate(cfg *Server) error {
	if cfg.RateLimit.MaxPerIdentity <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_PER_IDENTITY must be positive")
	}
	if cfg.RateLimit.MaxPerOrigin <= 0 {
		return fmt.Errorf("RATE_LIMIT_MAX_PER_ORIGIN must be positive")
	}
	if cfg.RateLimit.OriginWindowHours <= 0 {
		return fmt.Errorf("RATE_LIMIT_ORIGIN_WINDOW_HOURS must be positive")
	}
	if cfg.Regeneration.MaxPolls <= 0 {
		return fmt.Errorf("REGENERATION_MAX_POLLS must be positive")
	}
	return nil
}
