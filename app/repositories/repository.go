// Package repositories holds every database query. Repositories share one
// injected *gorm.DB and translate gorm errors into the sentinels below.
package repositories

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
	// ErrInUse is returned when a delete is blocked by dependent rows.
	ErrInUse = errors.New("record is referenced by other records")
)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), isUniqueViolation(err):
		return ErrDuplicate
	}
	return err
}

// isUniqueViolation catches drivers that do not translate errors.
func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "duplicate entry")
}

// likePattern builds a case-insensitive substring pattern for
// `LOWER(col) LIKE ? ESCAPE '!'`, escaping LIKE wildcards in q.
func likePattern(q string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

// Counts maps a parent id to a number of child rows.
type Counts map[uint]int64

type idCount struct {
	ID    uint
	Count int64
}

func toCounts(rows []idCount) Counts {
	out := make(Counts, len(rows))
	for _, r := range rows {
		out[r.ID] = r.Count
	}
	return out
}
