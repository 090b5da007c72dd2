package kiosk

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// ZeroProfileID is written in place of a blank profile id so the
// document stays well-formed while editing.
const ZeroProfileID = "{00000000-0000-0000-0000-000000000000}"

var profileIDPattern = regexp.MustCompile(`^\{[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}\}$`)

// NewProfileID returns a random version 4 GUID in braces.
func NewProfileID() string {
	return "{" + uuid.NewString() + "}"
}

// IsValidProfileID reports whether id has the {8-4-4-4-12} hex form.
func IsValidProfileID(id string) bool {
	return profileIDPattern.MatchString(id)
}

// NormalizeProfileID trims id and adds missing braces around a bare GUID.
// Anything that is not a GUID is returned trimmed but otherwise unchanged.
func NormalizeProfileID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" || IsValidProfileID(id) {
		return id
	}
	if u, err := uuid.Parse(strings.Trim(id, "{}")); err == nil {
		return "{" + u.String() + "}"
	}
	return id
}
