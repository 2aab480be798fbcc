package schema

import (
	"errors"
	"fmt"
)

// ErrSchemaLoad is matched by every error returned while loading schema documents.
var ErrSchemaLoad = errors.New("schema load failed")

// LoadError describes a schema document that could not be loaded.
type LoadError struct {
	// Path is the file path or object key of the document.
	Path string
	// Err is the underlying cause.
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load schema %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrSchemaLoad) hold for any LoadError.
func (e *LoadError) Is(target error) bool {
	return target == ErrSchemaLoad
}
