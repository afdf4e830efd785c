package convert

import (
	"regexp"
	"strings"
)

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

// Slug normalizes a service name into the form used for application keys
// and URL prefixes: lowercase alphanumerics with single dashes between
// runs, no leading or trailing dash. "My API" and "my-api" collide on
// purpose; the collision is surfaced as a validation error later.
func Slug(name string) string {
	slug := nonSlugChars.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(slug, "-")
}
