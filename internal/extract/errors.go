package extract

import (
	"errors"
	"fmt"
)

// ErrStructure marks a document that lacks an expected container or a
// required field. Check with errors.Is(err, extract.ErrStructure).
var ErrStructure = errors.New("structural parse error")

// ErrUnclassified is returned when a required value does not match any rule
// of its lookup table. It is a structural error for the listing.
var ErrUnclassified = fmt.Errorf("%w: unclassified value", ErrStructure)

// ParseError records which field of which listing could not be extracted.
type ParseError struct {
	URL   string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s: %v", e.URL, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func missing(url, field string) error {
	return &ParseError{URL: url, Field: field, Err: fmt.Errorf("%w: element not found", ErrStructure)}
}
