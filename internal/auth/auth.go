// Package auth checks the shared-secret API key sent with every cover request.
package auth

import (
	"crypto/subtle"

	"github.com/jmylchreest/covergen/internal/apperr"
)

// HeaderName is the request header carrying the API key.
const HeaderName = "X-API-Key"

// Authenticate compares provided against configured in constant time. Absent
// and wrong keys produce the same error.
func Authenticate(provided, configured string) error {
	if provided == "" || configured == "" {
		return apperr.ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(provided), []byte(configured)) != 1 {
		return apperr.ErrUnauthorized
	}
	return nil
}
