package fetch

import (
	"net/url"
	"path"
	"strings"
)

// Pre-flight rules for URLs that are known to be unfetchable or worthless as
// HTML pages. Matching URLs are rejected before any network call.

var searchEnginePaths = map[string]string{
	"google.":       "/search",
	"bing.com":      "/search",
	"duckduckgo.":   "/",
	"search.yahoo.": "/",
	"baidu.com":     "/s",
}

var socialDomains = []string{
	"twitter.com",
	"x.com",
	"facebook.com",
	"instagram.com",
	"linkedin.com",
	"tiktok.com",
	"pinterest.com",
	"youtube.com",
	"youtu.be",
}

var skippedExtensions = map[string]bool{
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true, ".zip": true, ".gz": true, ".tar": true,
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".svg": true,
	".webp": true, ".ico": true, ".mp3": true, ".mp4": true, ".avi": true,
	".mov": true, ".css": true, ".js": true, ".json": true, ".xml": true,
	".rss": true, ".exe": true, ".dmg": true, ".apk": true,
}

var errorPathSegments = map[string]bool{
	"404": true, "error": true, "not-found": true, "notfound": true,
	"page-not-found": true,
}

// Classify returns a skip error for URLs that should never be fetched, or
// nil when the URL is worth attempting.
func Classify(rawURL string) *Error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return skipError("unparseable url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return skipError("non-http scheme")
	}

	host := strings.ToLower(strings.TrimPrefix(u.Hostname(), "www."))
	lowerPath := strings.ToLower(u.Path)

	for fragment, searchPath := range searchEnginePaths {
		if strings.Contains(host, fragment) && strings.HasPrefix(lowerPath, searchPath) {
			return skipError("search engine result page")
		}
	}

	for _, social := range socialDomains {
		if host == social || strings.HasSuffix(host, "."+social) {
			return skipError("social media domain")
		}
	}

	if ext := strings.ToLower(path.Ext(u.Path)); skippedExtensions[ext] {
		return skipError("non-html file extension")
	}

	for _, segment := range strings.Split(lowerPath, "/") {
		if errorPathSegments[segment] {
			return skipError("error page path")
		}
	}

	return nil
}

func skipError(reason string) *Error {
	return &Error{Tier: "preflight", Kind: KindSkipped, Message: reason}
}
