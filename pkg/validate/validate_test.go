package validate_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agromap/agromap/pkg/validate"
)

type productInput struct {
	Name     string  `json:"name"     validate:"required,max=20"`
	Quantity int     `json:"quantity" validate:"gte=1"`
	Price    float64 `json:"price"    validate:"gte=0"`
	Unit     string  `json:"unit"     validate:"omitempty,oneof=kg lb unidad"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(productInput{Name: "Tomato", Quantity: 5, Price: 1.5, Unit: "kg"})
	assert.False(t, validate.HasErrors(errs), "unexpected errors: %v", errs)
}

func TestRequiredAndBoundsUseJSONNames(t *testing.T) {
	errs := validate.Struct(productInput{Quantity: 0, Price: -1})

	assert.Equal(t, "The name field is required.", errs["name"])
	assert.Equal(t, "The quantity must be at least 1.", errs["quantity"])
	assert.Contains(t, errs, "price")
	assert.NotContains(t, errs, "unit")
}

func TestOneOfMessage(t *testing.T) {
	errs := validate.Struct(productInput{Name: "Tomato", Quantity: 1, Unit: "ton"})
	assert.Equal(t, "The unit must be one of: kg, lb, unidad.", errs["unit"])
}

func TestStringLengthMessage(t *testing.T) {
	errs := validate.Struct(productInput{Name: "a name that is far too long", Quantity: 1})
	assert.Equal(t, "The name may not be greater than 20 characters.", errs["name"])
}

type scheduleInput struct {
	Open string `json:"openTime" validate:"required,datetime=15:04"`
}

type marketInput struct {
	Schedules []scheduleInput `json:"schedules" validate:"dive"`
}

func TestNestedFieldPaths(t *testing.T) {
	errs := validate.Struct(marketInput{Schedules: []scheduleInput{{Open: "08:00"}, {Open: "8am"}}})
	assert.Len(t, errs, 1)
	assert.Contains(t, errs, "schedules[1].openTime")
}

func TestCustomRule(t *testing.T) {
	validate.Register("even_len", func(s string) bool { return len(s)%2 == 0 }, "")
	validate.Register("lower", func(s string) bool { return s == strings.ToLower(s) }, "The %s must be lowercase.")

	type in struct {
		Code string `json:"code" validate:"even_len"`
	}
	assert.False(t, validate.HasErrors(validate.Struct(in{Code: "ab"})))
	assert.Equal(t, "The code is invalid.", validate.Struct(in{Code: "abc"})["code"])

	type slug struct {
		Slug string `json:"slug" validate:"lower"`
	}
	assert.Equal(t, "The slug must be lowercase.", validate.Struct(slug{Slug: "Abc"})["slug"])
}
