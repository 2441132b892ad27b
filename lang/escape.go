package lang

import "strings"

// EscapeHTML replaces the characters that are significant in markup text.
//
// Ampersands are replaced first so the entities introduced for '<' and '>'
// are not escaped again. Quotes are left as-is; values are only ever placed
// in element content, never in attributes.
func EscapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")

	return strings.ReplaceAll(s, ">", "&gt;")
}
