package services

import (
	"regexp"
	"strings"

	"github.com/agromap/agromap/app/models"
	"github.com/agromap/agromap/pkg/validate"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// Domain validation tags, usable from any struct tag in this package.
func init() {
	validate.Register("category", models.IsCategory,
		"The %s must be one of: "+strings.Join(models.Categories, ", ")+".")
	validate.Register("day", models.IsDay,
		"The %s must be one of: "+strings.Join(models.Days, ", ")+".")
	validate.Register("role", models.IsRole,
		"The %s must be one of: "+strings.Join(models.Roles, ", ")+".")
	validate.Register("username", usernamePattern.MatchString,
		"The %s may only contain letters, numbers, dots, dashes and underscores.")
}
