package catalog

import (
	"regexp"
	"strings"
)

// ReleaseClass tags the release type encoded in a catalog identifier.
type ReleaseClass int

const (
	ClassNone ReleaseClass = iota
	ClassAlbum
	ClassBestOfCompilation
	ClassAnniversaryTrack
	ClassSpecialCompilation
	ClassCallOfTheWild
	ClassPodcast
	ClassRocketLeagueAlbum
	ClassLongPlay
	ClassExtendedPlay
	ClassFreeDownload
	ClassSingle
)

func (c ReleaseClass) String() string {
	switch c {
	case ClassAlbum:
		return "Album"
	case ClassBestOfCompilation:
		return "Best of Compilation"
	case ClassAnniversaryTrack:
		return "5 Year Anniversary Track"
	case ClassSpecialCompilation:
		return "Special Compilation"
	case ClassCallOfTheWild:
		return "Call of the Wild"
	case ClassPodcast:
		return "Podcast"
	case ClassRocketLeagueAlbum:
		return "Rocket League Album"
	case ClassLongPlay:
		return "Long Play"
	case ClassExtendedPlay:
		return "Extended Play"
	case ClassFreeDownload:
		return "Free Download"
	case ClassSingle:
		return "Single"
	}
	return ""
}

// classPatterns is the ordered classification table; first match wins.
// AnniversaryTrack is listed before SpecialCompilation because MCX004-n would
// otherwise be shadowed by the broader MCX prefix.
var classPatterns = []struct {
	class   ReleaseClass
	pattern *regexp.Regexp
}{
	{ClassAlbum, regexp.MustCompile(`^MCUV-\d+$|^MC\d{3}$`)},
	{ClassBestOfCompilation, regexp.MustCompile(`^MCB\d{3}$`)},
	{ClassAnniversaryTrack, regexp.MustCompile(`^MCX004-\d$`)},
	{ClassSpecialCompilation, regexp.MustCompile(`^MCX\d{3}$`)},
	{ClassCallOfTheWild, regexp.MustCompile(`^COTW\d{3}$`)},
	{ClassPodcast, regexp.MustCompile(`^MCP\d{3}$`)},
	{ClassRocketLeagueAlbum, regexp.MustCompile(`^MCRL\d{3}$`)},
	{ClassLongPlay, regexp.MustCompile(`^MCLP\d{3}$`)},
	{ClassExtendedPlay, regexp.MustCompile(`^MCEP\d{3}$`)},
	{ClassFreeDownload, regexp.MustCompile(`^MCF\d{3}$`)},
	{ClassSingle, regexp.MustCompile(`^MCS\d{3}$`)},
}

// Classify pattern-matches a catalog identifier against the release type
// taxonomy. Matching is case-insensitive and never fails: unmatched input
// yields ClassNone.
func Classify(id string) ReleaseClass {
	id = strings.ToUpper(strings.TrimSpace(id))

	for _, entry := range classPatterns {
		if entry.pattern.MatchString(id) {
			return entry.class
		}
	}

	return ClassNone
}

// IsCatalogID reports whether the string is a recognized catalog identifier.
func IsCatalogID(id string) bool {
	return Classify(id) != ClassNone
}
