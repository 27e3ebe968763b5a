package common

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeCitationURL canonicalizes a cited URL to scheme+host+path. Query
// strings and fragments are dropped so the same page cited with different
// tracking parameters deduplicates to one citation. Only http/https URLs are
// accepted.
func NormalizeCitationURL(raw string) (string, error) {
	raw = StripTrailingPunctuation(strings.TrimSpace(raw))
	if raw == "" {
		return "", fmt.Errorf("empty URL")
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("missing host in %q", raw)
	}

	path := parsed.Path
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}

	return fmt.Sprintf("%s://%s%s", scheme, strings.ToLower(parsed.Host), path), nil
}

// StripTrailingPunctuation removes sentence punctuation that sticks to bare
// URLs extracted from prose ("see https://example.com/page)." and the like).
func StripTrailingPunctuation(raw string) string {
	return strings.TrimRight(raw, ".,;:!?)]}'\">")
}

// DomainOf extracts the lowercase hostname from a URL, with the www prefix
// removed. Returns empty string if the URL cannot be parsed.
func DomainOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	return strings.TrimPrefix(host, "www.")
}

// SameDomain reports whether host belongs to domain, matching the domain
// itself or any subdomain of it.
func SameDomain(domain, host string) bool {
	domain = strings.TrimPrefix(strings.ToLower(domain), "www.")
	host = strings.TrimPrefix(strings.ToLower(host), "www.")
	if domain == "" || host == "" {
		return false
	}
	return host == domain || strings.HasSuffix(host, "."+domain)
}

// URLBasename returns the last path segment of a URL with common file
// extensions and dashes cleaned up, for use as a title of last resort.
func URLBasename(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	path := strings.Trim(parsed.Path, "/")
	if path == "" {
		return parsed.Hostname()
	}

	segments := strings.Split(path, "/")
	base := segments[len(segments)-1]
	if idx := strings.LastIndex(base, "."); idx > 0 {
		base = base[:idx]
	}
	base = strings.ReplaceAll(base, "-", " ")
	base = strings.ReplaceAll(base, "_", " ")
	return strings.TrimSpace(base)
}
