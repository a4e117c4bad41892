package core

import (
	"fmt"

	"github.com/google/uuid"
)

// IdentifierNew returns a unique id usable as a debug label suffix.
func IdentifierNew() string {
	return uuid.New().String()
}

// IdentifierLabel builds a debug label of the form "<kind>-<short id>".
// Resources created without an explicit label get one of these so that
// native-API validation messages stay attributable.
func IdentifierLabel(kind string) string {
	return fmt.Sprintf("%s-%s", kind, uuid.New().String()[:8])
}
