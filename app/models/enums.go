package models

import "slices"

// Roles.
const (
	RoleConsumer = "consumer"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// Roles lists every role in ascending privilege.
var Roles = []string{RoleConsumer, RoleManager, RoleAdmin}

// IsRole reports whether s is a known role.
func IsRole(s string) bool { return slices.Contains(Roles, s) }

// Product categories.
const (
	CategoryFrutas     = "frutas"
	CategoryVerduras   = "verduras"
	CategoryGranos     = "granos"
	CategoryTuberculos = "tuberculos"
	CategoryLacteos    = "lacteos"
	CategoryCarnes     = "carnes"
	CategoryHierbas    = "hierbas"
	CategoryOtros      = "otros"
)

var Categories = []string{
	CategoryFrutas, CategoryVerduras, CategoryGranos, CategoryTuberculos,
	CategoryLacteos, CategoryCarnes, CategoryHierbas, CategoryOtros,
}

func IsCategory(s string) bool { return slices.Contains(Categories, s) }

// Days of the week as stored on schedules, Monday first.
var Days = []string{"lunes", "martes", "miercoles", "jueves", "viernes", "sabado", "domingo"}

func IsDay(s string) bool { return slices.Contains(Days, s) }

// Product defaults.
const (
	DefaultUnit      = "kg"
	DefaultPriceType = "unidad"
)
