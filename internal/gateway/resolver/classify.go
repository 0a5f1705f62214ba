package resolver

import (
	"regexp"
	"strings"
)

var (
	uuidRe   = regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	uriRe    = regexp.MustCompile(`(?i)^[a-z][a-z0-9+.-]*://`)
	domainRe = regexp.MustCompile(`(?i)^([a-z0-9]([a-z0-9-]*[a-z0-9])?\.)+[a-z]{2,}$`)
)

// IsStructuredIdentifier reports whether q names a node directly (UUID, URI or
// domain) rather than being free text.
func IsStructuredIdentifier(q string) bool {
	t := strings.TrimSpace(q)
	return uuidRe.MatchString(t) || uriRe.MatchString(t) || domainRe.MatchString(t)
}
