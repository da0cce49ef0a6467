package core

import "context"

// Node is one entry of a syntax tree arena. Token nodes are leaves whose
// [Start, End) range points into the original source bytes.
type Node struct {
	Kind     string
	Start    int
	End      int
	Parent   int
	Children []int
	Token    bool
}

// Tree is an arena-indexed syntax tree over one file. Nodes[0] is the root.
type Tree struct {
	Source   []byte
	Language string
	Nodes    []Node
	// Errors counts error-recovery nodes produced by a permissive parser.
	Errors int
}

// Parser turns file text into a Tree.
type Parser interface {
	Parse(ctx context.Context, src []byte) (*Tree, error)
}

func newTree(src []byte, language, rootKind string) *Tree {
	return &Tree{
		Source:   src,
		Language: language,
		Nodes:    []Node{{Kind: rootKind, Start: 0, End: len(src), Parent: -1}},
	}
}

// add appends a node under parent and returns its index.
func (t *Tree) add(parent int, kind string, start, end int, token bool) int {
	id := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Kind: kind, Start: start, End: end, Parent: parent, Token: token})
	if parent >= 0 {
		t.Nodes[parent].Children = append(t.Nodes[parent].Children, id)
	}
	return id
}

// Text returns the source text covered by node id.
func (t *Tree) Text(id int) string {
	n := t.Nodes[id]
	return string(t.Source[n.Start:n.End])
}

// Walk visits every node once in document order (pre-order). It uses an
// explicit stack so deeply nested input cannot exhaust the goroutine stack.
// Returning false from fn skips the node's children.
func (t *Tree) Walk(fn func(id int, n *Node) bool) {
	if len(t.Nodes) == 0 {
		return
	}
	stack := []int{0}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &t.Nodes[id]
		if !fn(id, n) {
			continue
		}
		for i := len(n.Children) - 1; i >= 0; i-- {
			stack = append(stack, n.Children[i])
		}
	}
}

// Tokens returns the ids of all token nodes in document order.
func (t *Tree) Tokens() []int {
	var out []int
	t.Walk(func(id int, n *Node) bool {
		if n.Token {
			out = append(out, id)
		}
		return true
	})
	return out
}
