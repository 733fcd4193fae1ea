// Package bind decodes HTTP request bodies: JSON into structs, and multipart
// forms into fields plus temp-file-backed uploads.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// MaxJSONBytes caps JSON request bodies.
const MaxJSONBytes = 1 << 20

// JSON decodes r.Body into dest. Validation is left to the caller.
func JSON(r *http.Request, dest interface{}) error {
	body := http.MaxBytesReader(nil, r.Body, MaxJSONBytes)
	defer body.Close()

	if err := json.NewDecoder(body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
