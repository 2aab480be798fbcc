package dicom

import "fmt"

// RemoteFetchError reports a non-success changefeed response.
type RemoteFetchError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *RemoteFetchError) Error() string {
	return fmt.Sprintf("get data from %s failed: http %d: %s", e.URL, e.StatusCode, e.Body)
}
