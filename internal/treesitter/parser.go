// Package treesitter implements the multi-language parser layer (C1):
// tree-sitter-driven extraction of functions, classes, inheritance, calls,
// imports, SQL-like table references, and service call URLs.
package treesitter

import (
	"fmt"
	"path/filepath"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/coderisk/ingestworker/internal/model"
)

// languageParser wraps a tree-sitter parser with its grammar. Callers must
// call Close to release the CGO-backed parser.
type languageParser struct {
	parser *sitter.Parser
	lang   string
}

func newLanguageParser(lang string) (*languageParser, error) {
	parser := sitter.NewParser()
	if parser == nil {
		return nil, fmt.Errorf("failed to create tree-sitter parser")
	}

	var language *sitter.Language
	switch lang {
	case model.LangRust:
		language = sitter.NewLanguage(tree_sitter_rust.Language())
	case model.LangGo:
		language = sitter.NewLanguage(tree_sitter_go.Language())
	case model.LangPython:
		language = sitter.NewLanguage(tree_sitter_python.Language())
	case model.LangJavaScript:
		language = sitter.NewLanguage(tree_sitter_javascript.Language())
	case model.LangTypeScript:
		language = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	default:
		parser.Close()
		return nil, fmt.Errorf("unsupported language: %s", lang)
	}

	if err := parser.SetLanguage(language); err != nil {
		parser.Close()
		return nil, fmt.Errorf("failed to set language %s: %w", lang, err)
	}

	return &languageParser{parser: parser, lang: lang}, nil
}

func (lp *languageParser) Close() {
	if lp.parser != nil {
		lp.parser.Close()
	}
}

// DetectLanguage returns the language tag for a file extension, or "" if
// the extension isn't supported.
func DetectLanguage(relativePath string) string {
	switch filepath.Ext(relativePath) {
	case ".rs":
		return model.LangRust
	case ".go":
		return model.LangGo
	case ".py", ".pyi", ".pyw":
		return model.LangPython
	case ".js", ".jsx", ".mjs", ".cjs":
		return model.LangJavaScript
	case ".ts", ".tsx", ".mts", ".cts":
		return model.LangTypeScript
	default:
		return ""
	}
}

// ParseFile parses source content and extracts a ParsedFile. relativePath
// is stored verbatim on the result and is never used to re-read the file —
// parsers are side-effect-free over the given bytes.
func ParseFile(relativePath string, content []byte) (*model.ParsedFile, error) {
	lang := DetectLanguage(relativePath)
	if lang == "" {
		return nil, &model.ParseError{Path: relativePath, Err: fmt.Errorf("unsupported file type")}
	}

	lp, err := newLanguageParser(lang)
	if err != nil {
		return nil, &model.ParseError{Path: relativePath, Err: err}
	}
	defer lp.Close()

	tree := lp.parser.Parse(content, nil)
	if tree == nil {
		return nil, &model.ParseError{Path: relativePath, Err: fmt.Errorf("failed to parse")}
	}
	defer tree.Close()

	pf := &model.ParsedFile{Path: relativePath, Language: lang}
	root := tree.RootNode()

	switch lang {
	case model.LangRust:
		extractRust(pf, root, content)
	case model.LangGo:
		extractGo(pf, root, content)
	case model.LangPython:
		extractPython(pf, root, content)
	case model.LangJavaScript:
		extractJavaScript(pf, root, content)
	case model.LangTypeScript:
		extractTypeScript(pf, root, content)
	}

	pf.Tables = scanDataTables(content)
	pf.Calls = scanServiceCalls(content)

	return pf, nil
}
