package logging

import "unicode"

const defaultStringLimit = 256

// Sanitize strips control characters and limits length to avoid log injection.
func Sanitize(value string, limit int) string {
	if limit <= 0 {
		limit = defaultStringLimit
	}

	cleaned := make([]rune, 0, len(value))
	for _, r := range value {
		if unicode.IsControl(r) && r != '\t' {
			continue
		}
		cleaned = append(cleaned, r)
	}
	if len(cleaned) > limit {
		cleaned = cleaned[:limit]
	}
	return string(cleaned)
}

// SanitizeRoute cleans a route pattern, defaulting to "/".
func SanitizeRoute(route string) string {
	if route == "" {
		return "/"
	}
	return Sanitize(route, 180)
}
