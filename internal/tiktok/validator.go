package tiktok

import (
	"regexp"
)

// URL shapes we accept before spawning any subprocess. Short-link forms
// (vm.tiktok.com, /t/) are passed to yt-dlp as-is; it follows the redirect.
var videoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(www\.)?tiktok\.com/@[^/]+/video/\d+`),
	regexp.MustCompile(`^https?://vm\.tiktok\.com/[A-Za-z0-9]+/?`),
	regexp.MustCompile(`^https?://(www\.)?tiktok\.com/t/[A-Za-z0-9]+/?`),
	regexp.MustCompile(`^https?://m\.tiktok\.com/v/\d+\.html`),
}

// Profile URLs must be the bare @username page, not a video under it.
var profilePattern = regexp.MustCompile(`^https?://(www\.)?tiktok\.com/@[A-Za-z0-9_.]+/?$`)

var usernamePattern = regexp.MustCompile(`@([A-Za-z0-9_.]+)`)

// IsVideoURL reports whether url points at a single TikTok video.
func IsVideoURL(url string) bool {
	for _, re := range videoPatterns {
		if re.MatchString(url) {
			return true
		}
	}
	return false
}

// IsProfileURL reports whether url points at a TikTok profile page.
func IsProfileURL(url string) bool {
	return profilePattern.MatchString(url)
}

// ExtractUsername pulls the @username out of a profile URL.
func ExtractUsername(profileURL string) (string, bool) {
	if !IsProfileURL(profileURL) {
		return "", false
	}
	m := usernamePattern.FindStringSubmatch(profileURL)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}
