package text

import (
	"net/url"
	"regexp"
)

// siteNames is the ordered platform table for social and storefront links.
// First match wins.
var siteNames = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"Facebook", regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?facebook\.com`)},
	{"SoundCloud", regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?soundcloud\.com`)},
	{"Instagram", regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?instagram\.com`)},
	{"YouTube", regexp.MustCompile(`(?i)^(?:https?://)?(?:(?:www\.|m\.)?youtube\.com|youtu\.be)`)},
	{"Twitter", regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?twitter\.com`)},
	{"Spotify", regexp.MustCompile(`(?i)^(?:https?://)?open\.spotify\.com`)},
	{"Beatport", regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?beatport\.com`)},
	{"iTunes", regexp.MustCompile(`(?i)^(?:https?://)?itunes\.apple\.com`)},
	{"Mixcloud", regexp.MustCompile(`(?i)^(?:https?://)?(?:www\.)?mixcloud\.com`)},
	{"Bandcamp", regexp.MustCompile(`(?i)^(?:https?://)?music\.monstercat\.com`)},
	{"Google Play", regexp.MustCompile(`(?i)^(?:https?://)?play\.google\.com`)},
}

// Performance Horizon affiliate links wrap the real destination URL behind a
// click tracker; the destination is surfaced instead of a platform name.
var (
	affiliateRegex     = regexp.MustCompile(`(?i)^(?:https?://)?prf\.hn/click/camref:[\da-z]+/pubref:[\da-z]+/destination:.*$`)
	affiliateDestRegex = regexp.MustCompile(`destination:(.*)$`)
)

// SiteName returns the display label for a social or storefront link: the
// platform name when a known host matches, the percent-decoded destination
// for affiliate indirections, and otherwise the URL unchanged.
func SiteName(rawURL string) string {
	for _, site := range siteNames {
		if site.pattern.MatchString(rawURL) {
			return site.name
		}
	}

	if affiliateRegex.MatchString(rawURL) {
		m := affiliateDestRegex.FindStringSubmatch(rawURL)
		if len(m) == 2 {
			if dest, err := url.QueryUnescape(m[1]); err == nil {
				return dest
			}
		}
	}

	return rawURL
}
