package scope

import (
	"fmt"
	"strings"
)

// SQLClause renders the current scope as a SQL fragment over the flows
// table, so the query layer can hide out-of-scope rows without duplicating
// the matcher. Glob patterns map onto SQLite's GLOB operator, adjusted to
// keep the in-memory matcher's semantics; substring patterns use instr,
// which stays case-sensitive where LIKE would not.
func (e *Engine) SQLClause() string {
	cfg := e.Config()

	includes := []string{}
	for _, p := range cfg.Include {
		if p == "*" {
			includes = nil
			break
		}
		includes = append(includes, patternSQL(p))
	}

	excludes := []string{}
	for _, p := range cfg.Exclude {
		excludes = append(excludes, patternSQL(p))
	}

	parts := []string{}
	if len(includes) > 0 {
		parts = append(parts, "("+strings.Join(includes, " OR ")+")")
	}
	if len(excludes) > 0 {
		parts = append(parts, "NOT ("+strings.Join(excludes, " OR ")+")")
	}
	if len(parts) == 0 {
		return "1=1"
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

func patternSQL(p string) string {
	if strings.ContainsAny(p, wildcardChars) {
		return fmt.Sprintf("url GLOB '%s'", sqlQuote(globSQL(p)))
	}
	return fmt.Sprintf("instr(url, '%s') > 0", sqlQuote(p))
}

// globSQL renders a pattern for SQLite's GLOB operator, which matches the
// whole string and spells class negation [^...] where the in-memory matcher
// accepts fnmatch's [!...]. Wrapping with * reproduces the matcher's
// search-anywhere behavior.
func globSQL(p string) string {
	p = strings.ReplaceAll(p, "[!", "[^")
	if !strings.HasPrefix(p, "*") {
		p = "*" + p
	}
	if !strings.HasSuffix(p, "*") {
		p += "*"
	}
	return p
}

func sqlQuote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

var staticAssetExtensions = []string{
	"js", "css", "map", "png", "jpg", "jpeg", "gif", "svg", "webp", "ico",
	"woff", "woff2", "ttf", "mp4", "mp3",
}

// StaticAssetClause hides flows whose path ends in a known static-asset
// extension (with or without a trailing query string). Built once at init.
var StaticAssetClause = buildStaticAssetClause()

func buildStaticAssetClause() string {
	terms := []string{}
	for _, ext := range staticAssetExtensions {
		terms = append(terms,
			fmt.Sprintf("path LIKE '%%.%s'", ext),
			fmt.Sprintf("path LIKE '%%.%s?%%'", ext),
		)
	}
	return "(path IS NULL OR NOT (" + strings.Join(terms, " OR ") + "))"
}
