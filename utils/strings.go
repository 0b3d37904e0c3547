package utils

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DisplayName turns an upper-case enum name such as "LANCZOS" into "Lanczos".
func DisplayName(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

// Upper normalises user input for case-insensitive enum lookups.
func Upper(s string) string {
	return cases.Upper(language.English).String(strings.TrimSpace(s))
}
