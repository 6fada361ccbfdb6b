package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderisk/ingestworker/internal/model"
)

func functionNames(pf *model.ParsedFile) []string {
	var names []string
	for _, fn := range pf.Functions {
		names = append(names, fn.Name)
	}
	return names
}

func findFunction(pf *model.ParsedFile, name string) *model.Function {
	for i := range pf.Functions {
		if pf.Functions[i].Name == name {
			return &pf.Functions[i]
		}
	}
	return nil
}

func findClass(pf *model.ParsedFile, name string) *model.Class {
	for i := range pf.Classes {
		if pf.Classes[i].Name == name {
			return &pf.Classes[i]
		}
	}
	return nil
}

func findMethod(cls *model.Class, name string) *model.Function {
	for i := range cls.Methods {
		if cls.Methods[i].Name == name {
			return &cls.Methods[i]
		}
	}
	return nil
}

func TestDetectLanguage(t *testing.T) {
	cases := map[string]string{
		"main.go":    model.LangGo,
		"lib.rs":     model.LangRust,
		"script.py":  model.LangPython,
		"app.js":     model.LangJavaScript,
		"widget.tsx": model.LangTypeScript,
		"README.md":  "",
	}
	for path, want := range cases {
		assert.Equal(t, want, DetectLanguage(path), path)
	}
}

func TestParseFile_UnsupportedExtensionReturnsParseError(t *testing.T) {
	_, err := ParseFile("notes.txt", []byte("hello"))
	require.Error(t, err)
	var parseErr *model.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "notes.txt", parseErr.Path)
}

func TestParseFile_ServiceCallsAndTables(t *testing.T) {
	src := `
def call():
    requests.get("https://api.example.com/v1/users")
    db.query("SELECT * FROM accounts WHERE id = 1")
`
	pf, err := ParseFile("service.py", []byte(src))
	require.NoError(t, err)
	require.Len(t, pf.Calls, 1)
	assert.Equal(t, "api.example.com", pf.Calls[0].Target)
	assert.Equal(t, "https", pf.Calls[0].Protocol)
	assert.Contains(t, pf.Tables, "accounts")
}
