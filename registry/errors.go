package registry

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for registry lookups.
var (
	// ErrNotFound indicates the registry does not know the package.
	ErrNotFound = errors.New("package not found")

	// ErrVersionNotFound indicates the package exists but the version was never published.
	ErrVersionNotFound = errors.New("version not found")
)

// HTTPError is returned when the registry answers with a non-200 status.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.URL)
}

// Is maps 404 responses onto ErrNotFound.
func (e *HTTPError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}
