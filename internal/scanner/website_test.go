package scanner

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeWebsite(t *testing.T) {
	tests := []struct {
		raw    string
		origin string
		root   string
	}{
		{raw: "acme.com", origin: "https://acme.com", root: "acme.com"},
		{raw: " https://www.Acme.co.uk/about?x=1 ", origin: "https://www.acme.co.uk", root: "acme.co.uk"},
		{raw: "http://shop.acme.com:8080/", origin: "http://shop.acme.com:8080", root: "acme.com"},
		{raw: "http://127.0.0.1:5000", origin: "http://127.0.0.1:5000", root: "127.0.0.1"},
		{raw: "//acme.io", origin: "https://acme.io", root: "acme.io"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			origin, root, err := NormalizeWebsite(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.origin, origin)
			assert.Equal(t, tt.root, root)
		})
	}
}

func TestNormalizeWebsiteRejectsBadInput(t *testing.T) {
	_, _, err := NormalizeWebsite("   ")
	assert.True(t, errors.Is(err, ErrMissingWebsite))

	for _, raw := range []string{"ftp://acme.com", "https://", "https://exa mple.com"} {
		_, _, err := NormalizeWebsite(raw)
		assert.Truef(t, errors.Is(err, ErrInvalidWebsite), "expected invalid website for %q, got %v", raw, err)
	}
}

func TestPageURL(t *testing.T) {
	assert.Equal(t, "https://acme.com/", pageURL("https://acme.com", "/"))
	assert.Equal(t, "https://acme.com/contact", pageURL("https://acme.com/", "/contact"))
	assert.Equal(t, "https://acme.com/about", pageURL("https://acme.com", "about"))
}

func TestDefaultPathsAreUnique(t *testing.T) {
	seen := make(map[string]struct{}, len(DefaultPaths))
	for _, p := range DefaultPaths {
		_, dup := seen[p]
		require.Falsef(t, dup, "duplicate path %s", p)
		seen[p] = struct{}{}
	}
	assert.Len(t, DefaultPaths, 17)
	assert.Equal(t, "/", DefaultPaths[0])
}
