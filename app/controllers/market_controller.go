package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/agromap/agromap/app/services"
	"github.com/agromap/agromap/pkg/bind"
	"github.com/agromap/agromap/pkg/ctx"
)

type MarketController struct {
	markets   *services.MarketService
	uploads   *services.UploadService
	maxUpload int64
}

// Index handles GET /api/markets.
func (mc *MarketController) Index(c *ctx.Context) {
	markets, err := mc.markets.List(c.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(markets)
}

// Show handles GET /api/markets/{id}.
func (mc *MarketController) Show(c *ctx.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	market, err := mc.markets.Get(c.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(market)
}

// Mine handles GET /api/market/my.
func (mc *MarketController) Mine(c *ctx.Context) {
	market, err := mc.markets.Mine(c.Context(), c.UserID())
	if err != nil {
		fail(c, err)
		return
	}
	c.Success(market)
}

// Edit handles PUT|POST /api/market/edit. It takes a multipart form (with an
// optional image file) or a JSON body. An image stored for an edit that is
// then rejected is removed again.
func (mc *MarketController) Edit(c *ctx.Context) {
	var (
		in     services.MarketInput
		upload *services.Upload
	)
	if strings.HasPrefix(c.R.Header.Get("Content-Type"), "multipart/") {
		parsed, stored, err := mc.fromForm(c)
		if err != nil {
			fail(c, err)
			return
		}
		in, upload = *parsed, stored
	} else if !c.BindJSON(&in) {
		return
	}

	market, err := mc.markets.Save(c.Context(), c.UserID(), in)
	if err != nil {
		if derr := mc.uploads.Discard(c.Context(), upload); derr != nil {
			c.Logger().Warn("market edit: orphaned image", "error", derr)
		}
		fail(c, err)
		return
	}
	c.Success(market)
}

// fromForm parses the multipart edit. The image is stored only once the
// other fields are valid; the stored upload is returned so a later failure
// can discard it.
func (mc *MarketController) fromForm(c *ctx.Context) (*services.MarketInput, *services.Upload, error) {
	form, err := bind.Multipart(c.R, mc.maxUpload)
	if err != nil {
		return nil, nil, formError(err, "image", mc.maxUpload)
	}
	defer form.Cleanup()

	in := &services.MarketInput{
		Name:             form.Value("name"),
		Location:         form.Value("location"),
		Description:      form.Value("description"),
		LegalBeneficiary: form.Value("legalBeneficiary"),
		Image:            form.Value("imageUrl"),
	}

	bad := services.FieldErrors{}
	if in.Latitude, err = parseFloat(form.Value("latitude")); err != nil {
		bad["latitude"] = "The latitude must be a number."
	}
	if in.Longitude, err = parseFloat(form.Value("longitude")); err != nil {
		bad["longitude"] = "The longitude must be a number."
	}
	if raw := form.Value("schedules"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Schedules); err != nil {
			bad["schedules"] = "The schedules must be a JSON array."
		}
	}
	if len(bad) > 0 {
		return nil, nil, bad
	}

	file := form.File("image")
	if file == nil {
		return in, nil, nil
	}
	if err := mc.markets.Validate(in); err != nil {
		return nil, nil, err
	}
	upload, err := mc.uploads.Upload(c.Context(), file)
	if err != nil {
		return nil, nil, err
	}
	in.Image = upload.URL
	return in, upload, nil
}

// DeleteMine handles DELETE /api/market/delete.
func (mc *MarketController) DeleteMine(c *ctx.Context) {
	if err := mc.markets.DeleteMine(c.Context(), c.UserID()); err != nil {
		fail(c, err)
		return
	}
	c.Message("Market deleted")
}

// Destroy handles DELETE /api/admin/markets/{id}.
func (mc *MarketController) Destroy(c *ctx.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := mc.markets.Delete(c.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.Message("Market deleted")
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

// formError turns a multipart parse failure into a client error. field
// names the file input for the size message.
func formError(err error, field string, limit int64) error {
	switch {
	case errors.Is(err, bind.ErrFileTooLarge):
		return services.FieldErrors{field: fmt.Sprintf("The %s may not be larger than %d MB.", field, limit>>20)}
	case errors.Is(err, bind.ErrFieldTooLarge):
		return &services.Error{Kind: services.ErrInvalid, Message: fmt.Sprintf("Form fields may not be larger than %d KB", bind.MaxFieldBytes>>10)}
	case errors.Is(err, bind.ErrNotMultipart):
		return &services.Error{Kind: services.ErrInvalid, Message: "Expected a multipart/form-data body"}
	}
	return &services.Error{Kind: services.ErrInvalid, Message: "Malformed multipart body"}
}
