package textutil

import "strings"

// Slug converts a phrase to a lowercase, hyphen-separated token safe for file
// names and identifiers. Returns "untitled" when nothing usable remains.
func Slug(value string) string {
	words := Words(value)
	if len(words) == 0 {
		return "untitled"
	}
	return strings.Join(words, "-")
}
