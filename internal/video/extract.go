// Package video implements video search with identifier extraction,
// deduplication, and batched enrichment against an external captioning
// service.
package video

import "regexp"

// Domains always included when searching for videos, merged with any
// caller-supplied include list.
var hostingDomains = []string{"youtube.com", "youtu.be", "m.youtube.com"}

// idPatterns is the table of recognized hosting URL shapes. Each pattern
// captures the video identifier in its first group.
var idPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?v=([^&?/]+)`),
	regexp.MustCompile(`youtu\.be/([^&?/]+)`),
	regexp.MustCompile(`youtube\.com/embed/([^&?/]+)`),
}

// ExtractVideoID pulls a video identifier out of a hosting URL. It is total:
// unrecognized URLs yield ok=false, never an error.
func ExtractVideoID(url string) (string, bool) {
	for _, pattern := range idPatterns {
		if m := pattern.FindStringSubmatch(url); len(m) > 1 && m[1] != "" {
			return m[1], true
		}
	}
	return "", false
}

// SearchDomains merges the hosting allowlist with caller-supplied domains.
func SearchDomains(includeDomains []string) []string {
	if len(includeDomains) == 0 {
		return hostingDomains
	}
	merged := make([]string, 0, len(hostingDomains)+len(includeDomains))
	merged = append(merged, hostingDomains...)
	merged = append(merged, includeDomains...)
	return merged
}
