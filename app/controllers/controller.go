// Package controllers adapts HTTP requests to the service layer. Handlers
// decode input, call one service method and map its error to a status.
package controllers

import (
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/agromap/agromap/app/services"
	"github.com/agromap/agromap/pkg/ctx"
)

// Options carries the HTTP-level settings controllers need.
type Options struct {
	TokenTTL       time.Duration
	SecureCookies  bool
	UploadMaxBytes int64
}

// Controllers groups every resource controller for route registration.
type Controllers struct {
	Auth     *AuthController
	Markets  *MarketController
	Products *ProductController
	Bases    *ProductBaseController
	Comments *CommentController
	Users    *UserController
	Admin    *AdminController
	Search   *SearchController
	Uploads  *UploadController
	Health   *HealthController
}

func New(s *services.Services, db *gorm.DB, opts Options) *Controllers {
	return &Controllers{
		Auth:     &AuthController{auth: s.Auth, ttl: opts.TokenTTL, secure: opts.SecureCookies},
		Markets:  &MarketController{markets: s.Markets, uploads: s.Uploads, maxUpload: opts.UploadMaxBytes},
		Products: &ProductController{products: s.Products},
		Bases:    &ProductBaseController{bases: s.Bases},
		Comments: &CommentController{comments: s.Comments},
		Users:    &UserController{users: s.Users},
		Admin:    &AdminController{admin: s.Admin},
		Search:   &SearchController{search: s.Search},
		Uploads:  &UploadController{uploads: s.Uploads, maxBytes: opts.UploadMaxBytes},
		Health:   &HealthController{db: db},
	}
}

// fail answers err with the status of its kind. Unknown errors are logged
// and hidden behind a generic 500.
func fail(c *ctx.Context, err error) {
	var fields services.FieldErrors
	if errors.As(err, &fields) {
		c.ValidationError(fields)
		return
	}

	switch {
	case errors.Is(err, services.ErrInvalid):
		c.Error(http.StatusBadRequest, message(err, "Bad request"))
	case errors.Is(err, services.ErrNotFound):
		c.NotFound(message(err, "Not found"))
	case errors.Is(err, services.ErrConflict):
		c.Error(http.StatusConflict, message(err, "Conflict"))
	case errors.Is(err, services.ErrInvalidCredentials):
		c.Unauthorized(message(err, "Invalid username or password"))
	case errors.Is(err, services.ErrForbidden):
		c.Unauthorized(message(err, "You do not have permission to perform this action"))
	default:
		c.Logger().Error("request failed", "error", err)
		c.Error(http.StatusInternalServerError, "Internal server error")
	}
}

func message(err error, fallback string) string {
	var se *services.Error
	if errors.As(err, &se) && se.Message != "" {
		return se.Message
	}
	return fallback
}

// pathID reads the {id} path parameter, answering 400 when it is not a
// positive integer.
func pathID(c *ctx.Context) (uint, bool) {
	id, ok := c.ParamUint("id")
	if !ok {
		c.Error(http.StatusBadRequest, "Invalid id")
	}
	return id, ok
}
