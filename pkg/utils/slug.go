package utils

import (
	"regexp"
	"strings"
)

// nonWord matches runs of characters that are not letters, digits or underscore.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_]+`)

// Slug derives the filesystem-safe storage key for a company name:
// lower-cased, with every run of non-word characters collapsed to "_".
//
//	Slug("Tesla, Inc.") == "tesla_inc_"
func Slug(company string) string {
	return nonWord.ReplaceAllString(strings.ToLower(company), "_")
}
