package hunter

import (
	"net/url"
	"regexp"
	"strings"
)

var linkPattern = regexp.MustCompile(`http.[^ "]+`)

// extractPlaylist returns the first link in html whose path ends in .m3u8.
func extractPlaylist(html string) (string, bool) {
	for _, m := range linkPattern.FindAllString(html, -1) {
		u, err := url.Parse(m)
		if err != nil {
			continue
		}
		if strings.HasSuffix(u.Path, ".m3u8") {
			return m, true
		}
	}
	return "", false
}
