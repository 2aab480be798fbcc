package fhir

import (
	"errors"
	"fmt"
)

// ErrPaginationExceeded is returned when a search keeps emitting next links past MaxPages.
var ErrPaginationExceeded = errors.New("pagination exceeded")

// RemoteFetchError reports a non-success response for a search page.
type RemoteFetchError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("get data from %s failed: http %d: %s", e.URL, e.StatusCode, e.Body)
}
