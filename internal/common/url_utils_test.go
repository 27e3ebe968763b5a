package common

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}

func TestNormalizeCitationURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"drops query and fragment", "https://example.com/page?utm_source=x#top", "https://example.com/page"},
		{"lowercases scheme and host", "HTTPS://Example.COM/Page", "https://example.com/Page"},
		{"strips trailing slash", "https://example.com/docs/", "https://example.com/docs"},
		{"keeps root slash", "https://example.com/", "https://example.com/"},
		{"strips trailing punctuation", "https://example.com/page).", "https://example.com/page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCitationURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeCitationURLRejects(t *testing.T) {
	for _, in := range []string{"", "ftp://example.com/file", "mailto:a@b.c", "not a url", "https://"} {
		_, err := NormalizeCitationURL(in)
		assert.Error(t, err, in)
	}
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "acme.com", DomainOf("https://www.acme.com/pricing"))
	assert.Equal(t, "blog.acme.com", DomainOf("https://blog.acme.com/post"))
	assert.Equal(t, "", DomainOf("not a url"))
}

func TestSameDomain(t *testing.T) {
	assert.True(t, SameDomain("acme.com", "acme.com"))
	assert.True(t, SameDomain("acme.com", "www.acme.com"))
	assert.True(t, SameDomain("acme.com", "blog.acme.com"))
	assert.False(t, SameDomain("acme.com", "acme.com.evil.example"))
	assert.False(t, SameDomain("acme.com", "notacme.com"))
}

func TestLoadFromFilesAppliesOverridesInOrder(t *testing.T) {
	dir := t.TempDir()
	base := dir + "/base.toml"
	override := dir + "/override.toml"
	require.NoError(t, writeFile(base, "[server]\nport = 9001\n"))
	require.NoError(t, writeFile(override, "[server]\nport = 9002\n"))

	cfg, err := LoadFromFiles(base, override)
	require.NoError(t, err)
	assert.Equal(t, 9002, cfg.Server.Port)
	// Untouched sections keep their defaults.
	assert.Equal(t, 5, cfg.Queue.BatchSize)
	assert.Equal(t, "@every 30s", cfg.Queue.PollSchedule)
}

func TestLoadFromFilesRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	bad := dir + "/bad.toml"
	require.NoError(t, writeFile(bad, "[server]\nport = 99999\n"))

	_, err := LoadFromFiles(bad)
	assert.Error(t, err)
}

func TestParseDurationOr(t *testing.T) {
	assert.Equal(t, "5m0s", ParseDurationOr("5m", 0).String())
	assert.Equal(t, "30s", ParseDurationOr("", 30_000_000_000).String())
	assert.Equal(t, "30s", ParseDurationOr("garbage", 30_000_000_000).String())
}
