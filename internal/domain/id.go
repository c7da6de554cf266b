package domain

import (
	"regexp"

	"github.com/google/uuid"
)

// NewID generates a UUIDv7 string for application-owned entities.
func NewID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// idPattern matches a version-tagged RFC 4122 UUID. Candidate identifiers
// coming off the wire (path, body, query) are checked against this pattern
// before anything is looked up, so a malformed value never reaches storage.
var idPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[1-8][0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

// ValidID reports whether s is a syntactically well-formed entity identifier.
func ValidID(s string) bool {
	return idPattern.MatchString(s)
}
