package controllers

import (
	"context"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/agromap/agromap/app/services"
	"github.com/agromap/agromap/pkg/bind"
	"github.com/agromap/agromap/pkg/ctx"
	"github.com/agromap/agromap/pkg/database"
)

type AdminController struct {
	admin *services.AdminService
}

// Stats handles GET /api/admin/stats.
func (ac *AdminController) Stats(c *ctx.Context) {
	stats, err := ac.admin.Stats(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(stats)
}

type SearchController struct {
	search *services.SearchService
}

// Search handles GET /api/search?q=.
func (sc *SearchController) Search(c *ctx.Context) {
	result, err := sc.search.Search(c.Context(), c.Query("q"))
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(result)
}

type UploadController struct {
	uploads  *services.UploadService
	maxBytes int64
}

// Store handles POST /api/upload with the image in the "file" field.
func (uc *UploadController) Store(c *ctx.Context) {
	form, err := bind.Multipart(c.R, uc.maxBytes)
	if err != nil {
		fail(c, formError(err, "file", uc.maxBytes))
		return
	}
	defer form.Cleanup()

	file := form.File("file")
	if file == nil {
		file = form.File("image")
	}
	upload, err := uc.uploads.Upload(c.Context(), file)
	if err != nil {
		fail(c, err)
		return
	}
	c.Created(upload)
}

type HealthController struct {
	db *gorm.DB
}

// Health handles GET /health: 200 while the database answers a ping.
func (hc *HealthController) Health(c *ctx.Context) {
	pingCtx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	if err := database.Ping(pingCtx, hc.db); err != nil {
		c.Logger().Error("health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "database": "down"})
		return
	}
	c.Success(map[string]string{"status": "ok", "database": "up"})
}
