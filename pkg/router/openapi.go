package router

import (
	"os"
	"path/filepath"

	"pingup/backend/pkg/validator"
)

// AddOpenAPIValidation validates authenticated API requests against the
// document at schemaPath and serves it under /api/docs. A missing file
// disables both. Must be called before SetupRoutes.
func (r *Router) AddOpenAPIValidation(schemaPath string) {
	if schemaPath == "" {
		return
	}
	if _, err := os.Stat(schemaPath); err != nil {
		r.Logger.Warn("OpenAPI schema file not found, skipping validation", "path", schemaPath)
		return
	}

	v, err := validator.NewOpenAPIValidator(schemaPath)
	if err != nil {
		r.Logger.LogError(err, "Failed to initialize OpenAPI validator", "path", schemaPath)
		return
	}

	r.validation = v.Middleware()
	r.Engine.StaticFile("/api/docs/"+filepath.Base(schemaPath), schemaPath)
	r.Logger.Info("OpenAPI validation enabled", "schema", schemaPath)
}
