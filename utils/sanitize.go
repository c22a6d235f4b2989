package utils

import "github.com/microcosm-cc/bluemonday"

var sanitizer = bluemonday.UGCPolicy()

// Sanitize strips dangerous HTML from post content before it is stored and
// later rendered unescaped.
func Sanitize(input string) string {
	return sanitizer.Sanitize(input)
}
