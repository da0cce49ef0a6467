package core

import (
	"path"
	"strings"

	"github.com/src-d/enry/v2"
)

const (
	langText     = "text"
	langMarkdown = "markdown"
)

// extLanguages maps lowercase file extensions (or whole base names for
// extensionless files) to parser names.
var extLanguages = map[string]string{
	".nix":           "nix",
	".md":            langMarkdown,
	".markdown":      langMarkdown,
	".sh":            "bash",
	".bash":          "bash",
	".json":          "json",
	".yaml":          "yaml",
	".yml":           "yaml",
	".toml":          "toml",
	".hcl":           "hcl",
	".tf":            "hcl",
	".py":            "python",
	".js":            "javascript",
	".mjs":           "javascript",
	".cjs":           "javascript",
	".lua":           "lua",
	".mk":            "make",
	".cmake":         "cmake",
	".ini":           "ini",
	".cfg":           langText,
	".txt":           langText,
	"makefile":       "make",
	"gnumakefile":    "make",
	"dockerfile":     "dockerfile",
	"cmakelists.txt": "cmake",
}

// enryLanguages maps enry language names to parser names.
var enryLanguages = map[string]string{
	"Nix":          "nix",
	"Markdown":     langMarkdown,
	"Shell":        "bash",
	"JSON":         "json",
	"YAML":         "yaml",
	"TOML":         "toml",
	"HCL":          "hcl",
	"Python":       "python",
	"JavaScript":   "javascript",
	"Lua":          "lua",
	"Makefile":     "make",
	"CMake":        "cmake",
	"INI":          "ini",
	"Dockerfile":   "dockerfile",
	"Text":         langText,
	"Git Config":   "ini",
	"Ignore List":  langText,
	"EditorConfig": "ini",
}

// detectLanguage picks the parser name for a file. overrides maps
// extensions (with leading dot) to parser names and wins over everything else.
func detectLanguage(file string, content []byte, overrides map[string]string) string {
	base := strings.ToLower(path.Base(file))
	ext := path.Ext(base)
	if lang, ok := overrides[ext]; ok && ext != "" {
		return lang
	}
	if lang, ok := extLanguages[base]; ok {
		return lang
	}
	if lang, ok := extLanguages[ext]; ok {
		return lang
	}
	if lang, ok := enryLanguages[enry.GetLanguage(path.Base(file), content)]; ok {
		return lang
	}
	return langText
}

// isBinary reports whether content looks like a binary file.
func isBinary(content []byte) bool {
	return enry.IsBinary(content)
}

// parserFor returns the parser for a language name, falling back to the
// built-in tokenizer.
func parserFor(lang string, rw RewriteConfig) Parser {
	if lang == langMarkdown {
		return markdownParser{rewriteCode: rw.MarkdownCode}
	}
	if p := treeSitterFor(lang); p != nil {
		return p
	}
	return textParser{}
}

// isSupportedLanguage reports whether name is a parser name.
func isSupportedLanguage(name string) bool {
	if name == langText || name == langMarkdown {
		return true
	}
	_, ok := grammarFuncs[name]
	return ok
}
