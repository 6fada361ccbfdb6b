package treesitter

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/coderisk/ingestworker/internal/model"
)

// sqlTableRegex matches `FROM|JOIN|INTO|UPDATE|DELETE FROM <ident>` and
// `table('name')` constructors, case-insensitively, per §4.1.
var sqlTableRegex = regexp.MustCompile(`(?i)\b(?:FROM|JOIN|INTO|UPDATE|DELETE\s+FROM)\s+` + "`?" + `([a-zA-Z_][a-zA-Z0-9_]*)` + "`?")
var tableCallRegex = regexp.MustCompile(`(?i)\btable\(\s*['"]([a-zA-Z_][a-zA-Z0-9_]*)['"]\s*\)`)

// scanDataTables scans file text for SQL-like table references.
func scanDataTables(content []byte) []string {
	text := string(content)
	var tables []string

	for _, m := range sqlTableRegex.FindAllStringSubmatch(text, -1) {
		tables = append(tables, m[1])
	}
	for _, m := range tableCallRegex.FindAllStringSubmatch(text, -1) {
		tables = append(tables, m[1])
	}

	return dedupStrings(tables)
}

// serviceURLRegex matches http/https/grpc URLs embedded in source text.
var serviceURLRegex = regexp.MustCompile(`(?i)\b(https?|grpc)://[^\s'"` + "`" + `)]+`)

// scanServiceCalls scans file text for URLs with scheme http/https/grpc,
// normalizing to host per §4.1.
func scanServiceCalls(content []byte) []model.ServiceCall {
	text := string(content)
	var calls []model.ServiceCall
	seen := make(map[model.ServiceCall]struct{})

	for _, raw := range serviceURLRegex.FindAllString(text, -1) {
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			continue
		}
		protocol := strings.ToLower(u.Scheme)
		call := model.ServiceCall{Target: u.Host, Protocol: protocol}
		if _, ok := seen[call]; ok {
			continue
		}
		seen[call] = struct{}{}
		calls = append(calls, call)
	}

	return calls
}
