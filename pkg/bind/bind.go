// Package bind decodes an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/storefront/config"
)

// ErrEmptyBody is returned when the request carries no JSON document at all.
var ErrEmptyBody = errors.New("request body is empty")

// JSON decodes r.Body as JSON into dest. The body is capped at
// MAX_BODY_BYTES (default 4 MB). Unknown fields are ignored.
// Validation is left to the service layer.
func JSON(r *http.Request, dest interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, config.MaxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("request body too large (max %d bytes)", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return ErrEmptyBody
		default:
			return fmt.Errorf("invalid JSON: %w", err)
		}
	}
	return nil
}
