package fhir

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// Bundle is the subset of a FHIR searchset Bundle the client reads.
type Bundle struct {
	ResourceType string            `json:"resourceType"`
	Link         []BundleLink      `json:"link,omitempty"`
	Entry        []json.RawMessage `json:"entry"`
}

type BundleLink struct {
	Relation string `json:"relation"`
	URL      string `json:"url"`
}

// HasEntries reports whether the page carried an entry key.
// An empty entry array still counts; a missing key ends the search.
func (b *Bundle) HasEntries() bool {
	return b.Entry != nil
}

// NextLink returns the URL of the next relation, or "" when the search is exhausted.
func (b *Bundle) NextLink() string {
	for _, link := range b.Link {
		if link.Relation == "next" {
			return link.URL
		}
	}
	return ""
}

// ContinuationToken extracts the ct query parameter from a next link.
func ContinuationToken(next string) (string, error) {
	u, err := url.Parse(next)
	if err != nil {
		return "", fmt.Errorf("parse next link: %w", err)
	}
	token := u.Query().Get("ct")
	if token == "" {
		return "", fmt.Errorf("next link %q carries no ct parameter", next)
	}
	return token, nil
}
