package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenTexts(t *Tree) []string {
	var out []string
	for _, id := range t.Tokens() {
		out = append(out, t.Text(id))
	}
	return out
}

func parseText(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := textParser{}.Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	return tree
}

func TestTextParser_Tokens(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []string
	}{
		{"empty", "", nil},
		{"words", "import ./foo.nix;", []string{"import", "./foo.nix", ";"}},
		{"quoted", `src = "../lib/util";`, []string{"src", "=", `"`, "../lib/util", `"`, ";"}},
		{"markdown link", "[guide](./guide.md#intro)", []string{"[", "guide", "]", "(", "./guide.md#intro", ")"}},
		{"multiline", "a ./x\n\n  b ../y\n", []string{"a", "./x", "b", "../y"}},
		{"crlf", "./a\r\n./b", []string{"./a", "./b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenTexts(parseText(t, tt.src)))
		})
	}
}

func TestTextParser_ByteRanges(t *testing.T) {
	src := "x = ./a.nix;\ny = \"../b\";\n"
	tree := parseText(t, src)

	var refs []Node
	for _, id := range tree.Tokens() {
		if isRelativeRef(tree.Text(id)) {
			refs = append(refs, tree.Nodes[id])
		}
	}
	require.Len(t, refs, 2)
	assert.Equal(t, 4, refs[0].Start)
	assert.Equal(t, 11, refs[0].End)
	assert.Equal(t, "./a.nix", src[refs[0].Start:refs[0].End])
	assert.Equal(t, "../b", src[refs[1].Start:refs[1].End])
}

func TestTree_LinesUnderRoot(t *testing.T) {
	tree := parseText(t, "one\ntwo\n")
	root := tree.Nodes[0]
	assert.Equal(t, "document", root.Kind)
	assert.Equal(t, -1, root.Parent)
	require.Len(t, root.Children, 2)
	for _, id := range root.Children {
		assert.Equal(t, "line", tree.Nodes[id].Kind)
		assert.False(t, tree.Nodes[id].Token)
	}
	assert.Equal(t, "two", tree.Text(root.Children[1]))
}

func TestTree_WalkSkipsChildren(t *testing.T) {
	tree := parseText(t, "a b\nc d\n")
	var kinds []string
	tree.Walk(func(_ int, n *Node) bool {
		kinds = append(kinds, n.Kind)
		return n.Kind != "line"
	})
	assert.Equal(t, []string{"document", "line", "line"}, kinds)
}

func TestTree_WalkDocumentOrder(t *testing.T) {
	tree := newTree([]byte("abcdef"), langText, "root")
	a := tree.add(0, "a", 0, 3, false)
	tree.add(a, "a1", 0, 1, true)
	tree.add(a, "a2", 1, 3, true)
	tree.add(0, "b", 3, 6, true)

	var kinds []string
	tree.Walk(func(_ int, n *Node) bool {
		kinds = append(kinds, n.Kind)
		return true
	})
	assert.Equal(t, []string{"root", "a", "a1", "a2", "b"}, kinds)
	assert.Equal(t, []string{"a", "bc", "def"}, tokenTexts(tree))
}
