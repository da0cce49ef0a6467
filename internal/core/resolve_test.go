package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveReference(t *testing.T) {
	tests := []struct {
		file, text   string
		target, suff string
		ok           bool
	}{
		{"docs/index.md", "./guide.md", "docs/guide.md", "", true},
		{"docs/index.md", "../README.md", "README.md", "", true},
		{"src/a/b.cfg", "../lib/util", "src/lib/util", "", true},
		{"docs/index.md", "./a/../guide.md", "docs/guide.md", "", true},
		{"docs/index.md", "./guide.md#setup", "docs/guide.md", "#setup", true},
		{"docs/index.md", "./guide.md?raw=1", "docs/guide.md", "?raw=1", true},
		{"docs/index.md", "../../outside.md", "", "", false},
		{"top.md", "../x", "", "", false},
		{"docs/index.md", "./", "docs", "", true},
		{"index.md", "./", "", "", false},
	}
	for _, tt := range tests {
		target, suffix, ok := resolveReference(tt.file, tt.text)
		assert.Equal(t, tt.ok, ok, "%s in %s", tt.text, tt.file)
		assert.Equal(t, tt.target, target, "%s in %s", tt.text, tt.file)
		assert.Equal(t, tt.suff, suffix, "%s in %s", tt.text, tt.file)
	}
}

func TestResolveReferences_Targets(t *testing.T) {
	tree := parseText(t, "./a.nix ../../up ../b.nix")
	refs := ResolveReferences("dir/x.nix", tree)
	require.Len(t, refs, 3)
	assert.Equal(t, "dir/a.nix", refs[0].Target)
	assert.Empty(t, refs[1].Target)
	assert.Equal(t, "b.nix", refs[2].Target)
	assert.Equal(t, "dir/x.nix", refs[0].File)
}

func TestTrimSentencePunct(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"./guide.md.", "./guide.md"},
		{"./guide.md:", "./guide.md"},
		{"../a/b.txt?!", "../a/b.txt"},
		{"./guide.md#intro.", "./guide.md#intro"},
		{"./guide.md", "./guide.md"},
		{"../..", "../.."},
		{"./a/.", "./a/."},
		{"./.", "./."},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, trimSentencePunct(tt.in), tt.in)
	}
}

func TestFindReferences_SentenceEnd(t *testing.T) {
	src := "See ./guide.md. Then ./other.md: it explains.\n"
	refs := findReferences("docs/index.md", parseText(t, src))
	require.Len(t, refs, 2)
	assert.Equal(t, "./guide.md", refs[0].Text)
	assert.Equal(t, "./guide.md", src[refs[0].Start:refs[0].End])
	assert.Equal(t, "./other.md", src[refs[1].Start:refs[1].End])
}

func planText(t *testing.T, file, src string, mp movePlan) (string, []Edit) {
	t.Helper()
	tree := parseText(t, src)
	edits, err := planFileEdits(file, tree, mp)
	require.NoError(t, err)
	out, err := applyEdits([]byte(src), edits)
	require.NoError(t, err)
	return string(out), edits
}

func TestPlanFileEdits_Incoming(t *testing.T) {
	mp := movePlan{from: "src/lib/util", to: "src/lib/utils/util"}
	got, edits := planText(t, "src/a/b.cfg", "include ../lib/util\n", mp)
	assert.Equal(t, "include ../../lib/utils/util\n", got)
	require.Len(t, edits, 1)
	assert.Equal(t, Edit{Start: 8, End: 19, Old: "../lib/util", New: "../../lib/utils/util"}, edits[0])
}

func TestPlanFileEdits_NormalizationEquivalence(t *testing.T) {
	mp := movePlan{from: "docs/guide.md", to: "docs/guides/guide.md"}
	a, _ := planText(t, "docs/index.md", "[x](./a/../guide.md)", mp)
	b, _ := planText(t, "docs/index.md", "[x](./guide.md)", mp)
	assert.Equal(t, "[x](./guides/guide.md)", a)
	assert.Equal(t, a, b)
}

func TestPlanFileEdits_KeepsSuffix(t *testing.T) {
	mp := movePlan{from: "docs/guide.md", to: "guide.md"}
	got, _ := planText(t, "docs/index.md", "(./guide.md#install) (./guide.md?x)", mp)
	assert.Equal(t, "(../guide.md#install) (../guide.md?x)", got)
}

func TestPlanFileEdits_IgnoresUnrelated(t *testing.T) {
	mp := movePlan{from: "docs/guide.md", to: "docs/guides/guide.md"}
	src := "./other.md ../../escape.md guide.md docs/guide.md /abs/guide.md"
	got, edits := planText(t, "docs/index.md", src, mp)
	assert.Empty(t, edits)
	assert.Equal(t, src, got)
}

func TestPlanFileEdits_SelfReference(t *testing.T) {
	mp := movePlan{from: "pkgs/foo/default.nix", to: "pkgs/bar/foo.nix"}
	got, _ := planText(t, "pkgs/foo/default.nix", "self = ./default.nix; other = ./patch.diff;", mp)
	assert.Equal(t, "self = ./foo.nix; other = ./patch.diff;", got)
}

func TestPlanFileEdits_Outgoing(t *testing.T) {
	mp := movePlan{from: "pkgs/foo/default.nix", to: "pkgs/bar/foo.nix", outgoing: true}
	got, _ := planText(t, "pkgs/foo/default.nix", "patches = [ ./fix.patch ../common.nix ];", mp)
	assert.Equal(t, "patches = [ ../foo/fix.patch ../common.nix ];", got)

	// Outgoing never affects other files.
	got, edits := planText(t, "pkgs/other.nix", "./foo/fix.patch", mp)
	assert.Empty(t, edits)
	assert.Equal(t, "./foo/fix.patch", got)
}

func TestPlanFileEdits_NonOverlapping(t *testing.T) {
	mp := movePlan{from: "a/x", to: "b/c/x"}
	tree := parseText(t, "./x ./x\n./x(./x)\"./x\"")
	edits, err := planFileEdits("a/f", tree, mp)
	require.NoError(t, err)
	require.Len(t, edits, 5)
	require.NoError(t, checkEdits(len(tree.Source), edits))
	for _, e := range edits {
		assert.Equal(t, "../b/c/x", e.New)
	}
}
