// Package fuzzy provides query and slug normalization for catalog lookups.
package fuzzy

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

type Normalizer struct{}

func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// NormalizeQuery lowers and compacts a free-text query and strips combining
// marks so accented and plain spellings search the same.
func (n *Normalizer) NormalizeQuery(query string) string {
	query = strings.TrimSpace(strings.ToLower(query))
	query = norm.NFKD.String(query)

	var b strings.Builder
	for _, r := range query {
		if !unicode.IsMark(r) {
			b.WriteRune(r)
		}
	}

	return whitespaceRegex.ReplaceAllString(b.String(), " ")
}

// TrackSlug renders a query the way the catalog's track search expects:
// lower-cased with spaces hyphenated.
func (n *Normalizer) TrackSlug(query string) string {
	return strings.ReplaceAll(n.NormalizeQuery(query), " ", "-")
}

// ArtistSlug renders an artist name as a catalog vanity URI slug:
// lower-cased, ampersand separators collapsed, spaces hyphenated.
func (n *Normalizer) ArtistSlug(name string) string {
	name = n.NormalizeQuery(name)
	name = strings.ReplaceAll(name, " & ", "-")
	name = strings.ReplaceAll(name, " ", "-")
	return name
}
