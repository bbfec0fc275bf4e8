package catalog

import "strings"

// ResolveAssetPath normalizes a stored image or file reference to a
// servable URL. Absolute URLs and rooted paths pass through untouched;
// bare relative paths are rooted, dropping any leading "./".
func ResolveAssetPath(value string) string {
	if value == "" {
		return ""
	}
	if strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://") {
		return value
	}
	if strings.HasPrefix(value, "/") {
		return value
	}
	value = strings.TrimPrefix(value, "./")
	return "/" + value
}
