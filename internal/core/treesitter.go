package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"unsafe"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/alexaandru/go-sitter-forest/bash"
	"github.com/alexaandru/go-sitter-forest/cmake"
	"github.com/alexaandru/go-sitter-forest/dockerfile"
	"github.com/alexaandru/go-sitter-forest/hcl"
	"github.com/alexaandru/go-sitter-forest/ini"
	"github.com/alexaandru/go-sitter-forest/javascript"
	"github.com/alexaandru/go-sitter-forest/json"
	"github.com/alexaandru/go-sitter-forest/lua"
	gomake "github.com/alexaandru/go-sitter-forest/make"
	"github.com/alexaandru/go-sitter-forest/nix"
	"github.com/alexaandru/go-sitter-forest/python"
	"github.com/alexaandru/go-sitter-forest/toml"
	"github.com/alexaandru/go-sitter-forest/yaml"
)

var (
	errNoRootNode = errors.New("tree-sitter: no root node")
	errPoolType   = errors.New("tree-sitter: unexpected parser pool type")
)

// grammarFuncs maps language names to tree-sitter grammar constructors.
var grammarFuncs = map[string]func() unsafe.Pointer{
	"bash":       bash.GetLanguage,
	"cmake":      cmake.GetLanguage,
	"dockerfile": dockerfile.GetLanguage,
	"hcl":        hcl.GetLanguage,
	"ini":        ini.GetLanguage,
	"javascript": javascript.GetLanguage,
	"json":       json.GetLanguage,
	"lua":        lua.GetLanguage,
	"make":       gomake.GetLanguage,
	"nix":        nix.GetLanguage,
	"python":     python.GetLanguage,
	"toml":       toml.GetLanguage,
	"yaml":       yaml.GetLanguage,
}

var treeSitterParsers sync.Map // language name -> *treeSitterParser

// treeSitterParser copies a tree-sitter concrete syntax tree into the arena.
type treeSitterParser struct {
	name string
	pool sync.Pool
}

// treeSitterFor returns the cached parser for a grammar language, or nil
// when no grammar is registered under that name.
func treeSitterFor(name string) *treeSitterParser {
	if cached, ok := treeSitterParsers.Load(name); ok {
		if p, castOK := cached.(*treeSitterParser); castOK {
			return p
		}
	}
	fn, ok := grammarFuncs[name]
	if !ok {
		return nil
	}
	lang := sitter.NewLanguage(fn())
	p := &treeSitterParser{name: name}
	p.pool.New = func() any {
		tsParser := sitter.NewParser()
		tsParser.SetLanguage(lang)
		return tsParser
	}
	actual, _ := treeSitterParsers.LoadOrStore(name, p)
	return actual.(*treeSitterParser)
}

func (p *treeSitterParser) Parse(ctx context.Context, src []byte) (*Tree, error) {
	tsParser, ok := p.pool.Get().(*sitter.Parser)
	if !ok {
		return nil, errPoolType
	}
	defer p.pool.Put(tsParser)

	tsTree, err := tsParser.ParseString(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("%s: parse: %w", p.name, err)
	}
	defer tsTree.Close()

	root := tsTree.RootNode()
	if root.IsNull() {
		return nil, errNoRootNode
	}

	t := newTree(src, p.name, root.Type())

	stack := make([]tsFrame, 0, 64)
	stack = pushChildren(stack, root, 0, len(src))
	if root.Type() == "ERROR" {
		t.Errors++
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if f.gap {
			lexWords(t, f.parent, f.start, f.end)
			continue
		}
		n := f.node
		if n.IsNull() {
			continue
		}
		start, end := int(n.StartByte()), int(n.EndByte())
		if start < 0 || end > len(src) || start > end {
			continue
		}
		kind := n.Type()
		if kind == "ERROR" {
			t.Errors++
		}
		switch {
		case n.ChildCount() > 0:
			id := t.add(f.parent, kind, start, end, false)
			stack = pushChildren(stack, n, id, len(src))
		case end == start:
			t.add(f.parent, kind, start, end, false)
		case hasDelimiter(src[start:end]):
			// Comments and free-form string content carry several words.
			id := t.add(f.parent, kind, start, end, false)
			lexWords(t, id, start, end)
		default:
			t.add(f.parent, kind, start, end, true)
		}
	}
	return t, nil
}

// tsFrame is either a node to copy or, with gap set, a byte range of its
// parent that no child covers. Quoted string content in several grammars
// is such a range.
type tsFrame struct {
	node       sitter.Node
	parent     int
	gap        bool
	start, end int
}

// pushChildren pushes n's children and the gaps between them in reverse so
// they pop in document order.
func pushChildren(stack []tsFrame, n sitter.Node, parent, size int) []tsFrame {
	first := len(stack)
	cursor, end := int(n.StartByte()), min(int(n.EndByte()), size)
	for i := range n.ChildCount() {
		c := n.Child(i)
		if !c.IsNull() {
			cs, ce := int(c.StartByte()), min(int(c.EndByte()), size)
			if cs > cursor {
				stack = append(stack, tsFrame{parent: parent, gap: true, start: cursor, end: cs})
			}
			cursor = max(cursor, ce)
		}
		stack = append(stack, tsFrame{node: c, parent: parent})
	}
	if end > cursor {
		stack = append(stack, tsFrame{parent: parent, gap: true, start: cursor, end: end})
	}
	for i, j := first, len(stack)-1; i < j; i, j = i+1, j-1 {
		stack[i], stack[j] = stack[j], stack[i]
	}
	return stack
}
