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

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"credential-api/config"
	"credential-api/internal/database"
	"credential-api/internal/handler"
	"credential-api/internal/metrics"
	"credential-api/internal/middleware"
	"credential-api/internal/repository"
	"credential-api/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Server struct {
	router         *gin.Engine
	registrantRepo repository.RegistrantRepository
	quotaRepo      repository.QuotaRepository
}

// StartCredentialAPIServer creates a new server instance with all dependencies initialized
func StartCredentialAPIServer(cfg *config.Server) (*Server, error) {
	// Initialize database using configuration
	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, err
	}

	// Initialize schema (skip when ExecuteSchemaDDL is false, e.g. deployed Postgres without DDL access)
	if cfg.Database.ExecuteSchemaDDL {
		if err := db.InitSchema(cfg.DBSchemaPath); err != nil {
			return nil, err
		}
	} else {
		log.Printf("Skipping schema DDL execution (DATABASE_EXECUTE_SCHEMA_DDL=false)\n")
	}

	// Initialize repositories
	registrantRepo := repository.NewRegistrantRepo(db)
	quotaRepo := repository.NewQuotaRepo(db)

	// Load the credential templates up front; a missing template directory is
	// a deployment error, not something to discover on the first generation
	templates, err := service.LoadTemplateStore(cfg.Templates.DefinitionsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load credential templates: %w", err)
	}

	store, err := service.NewS3ObjectStore(context.Background(), &cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	compositor, err := service.NewCompositor(service.NewLayoutEngine())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize compositor: %w", err)
	}

	// Initialize services
	limiter := service.NewRateLimiter(quotaRepo, &cfg.RateLimit)
	stylizer := service.NewStyleTransferService(&cfg.StyleTransfer)
	credentialService := service.NewCredentialService(registrantRepo, limiter, stylizer,
		compositor, templates, store, &cfg.Templates)
	regenerationService := service.NewRegenerationService(registrantRepo, credentialService, &cfg.Regeneration)
	registrantService := service.NewRegistrantService(registrantRepo, regenerationService)

	// Initialize handlers
	registrantHandler := handler.NewRegistrantHandler(registrantService)
	credentialHandler := handler.NewCredentialHandler(credentialService, regenerationService)

	// Setup router
	router := gin.Default()

	// Configure and apply CORS middleware first (before auth middleware)
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	// Configure and apply JWT authentication middleware
	authConfig := middleware.AuthConfig{
		SecretKey:      cfg.JWT.SecretKey,
		TokenIssuer:    cfg.JWT.Issuer,
		SkipPaths:      cfg.JWT.SkipPaths,
		SkipValidation: cfg.JWT.SkipValidation,
	}
	router.Use(middleware.AuthMiddleware(authConfig))

	// Register routes; generation endpoints optionally demand a token scope
	var generationGuards []gin.HandlerFunc
	if cfg.JWT.GenerationScope != "" {
		generationGuards = append(generationGuards, middleware.RequireScope(cfg.JWT.GenerationScope))
	}
	registrantHandler.RegisterRoutes(router)
	credentialHandler.RegisterRoutes(router, generationGuards...)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	registry := metrics.Init()
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return &Server{
		router:         router,
		registrantRepo: registrantRepo,
		quotaRepo:      quotaRepo,
	}, nil
}

// Start starts the HTTP server
func (s *Server) Start(port string) error {
	if port == "" {
		return fmt.Errorf("port cannot be empty")
	}

	address := fmt.Sprintf(":%s", port)
	server := &http.Server{
		Addr:    address,
		Handler: s.router,
	}

	log.Printf("Starting HTTP server on http://localhost:%s", port)
	return server.ListenAndServe()
}
