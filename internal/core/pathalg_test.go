package core

import (
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"docs/guide.md", "docs/guide.md"},
		{"./docs/guide.md", "docs/guide.md"},
		{"docs//a/../guide.md", "docs/guide.md"},
		{"README.md", "README.md"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePath(tt.in), "NormalizePath(%q)", tt.in)
	}
}

func TestNormalizeRef(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"./a/../b", "b"},
		{"./b", "b"},
		{"a/./b/./c", "a/b/c"},
		{"../x", "../x"},
		{"../../x/../y", "../../y"},
		{"a/../../b", "../b"},
		{"", "."},
	}
	for _, tt := range tests {
		got, err := normalizeRef(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "normalizeRef(%q)", tt.in)
	}
}

func TestNormalizeRef_Absolute(t *testing.T) {
	_, err := normalizeRef("/etc/passwd")
	require.ErrorIs(t, err, errAbsolutePath)
}

func TestRelativeRef(t *testing.T) {
	tests := []struct {
		from string
		to   string
		want string
	}{
		{"src/a/b.cfg", "src/lib/utils/util", "../../lib/utils/util"},
		{"docs/index.md", "docs/guides/guide.md", "./guides/guide.md"},
		{"README.md", "docs/guides/guide.md", "./docs/guides/guide.md"},
		{"a/b/c.nix", "a/d.nix", "../d.nix"},
		{"a/b.nix", "a/b.nix", "./b.nix"},
		{"x.nix", "y.nix", "./y.nix"},
	}
	for _, tt := range tests {
		got, err := relativeRef(tt.from, tt.to)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "relativeRef(%q, %q)", tt.from, tt.to)
	}
}

func TestRelativeRef_RoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"src/a/b.cfg", "src/lib/utils/util"},
		{"docs/index.md", "docs/guides/guide.md"},
		{"deep/er/still/f.nix", "top.nix"},
		{"top.nix", "deep/er/still/f.nix"},
	}
	for _, p := range pairs {
		rel, err := relativeRef(p[0], p[1])
		require.NoError(t, err)
		back, err := joinRef(p[0], rel)
		require.NoError(t, err)
		want, err := normalizeRef(p[1])
		require.NoError(t, err)
		assert.Equal(t, want, back, "round trip %s -> %s via %s", p[0], p[1], rel)
	}
}

func TestJoinRef(t *testing.T) {
	got, err := joinRef("src/a/b.cfg", "../lib/util")
	require.NoError(t, err)
	assert.Equal(t, "src/lib/util", got)

	got, err = joinRef("a.nix", "../../outside.nix")
	require.NoError(t, err)
	assert.True(t, escapesRoot(got))
	assert.Equal(t, "../../outside.nix", path.Clean(got))
}

func TestIsRelativeRef(t *testing.T) {
	assert.True(t, isRelativeRef("./a"))
	assert.True(t, isRelativeRef("../a"))
	assert.False(t, isRelativeRef("a/b"))
	assert.False(t, isRelativeRef("/abs"))
	assert.False(t, isRelativeRef(".hidden"))
	assert.False(t, isRelativeRef("..."))
}

func TestSplitRefSuffix(t *testing.T) {
	p, s := splitRefSuffix("./guide.md#install")
	assert.Equal(t, "./guide.md", p)
	assert.Equal(t, "#install", s)

	p, s = splitRefSuffix("./x.html?v=2")
	assert.Equal(t, "./x.html", p)
	assert.Equal(t, "?v=2", s)

	p, s = splitRefSuffix("./plain")
	assert.Equal(t, "./plain", p)
	assert.Empty(t, s)
}
