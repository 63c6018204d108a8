package store

import (
	"regexp"
	"strings"
)

// The operator's WHERE text is a power-user feature, not a security
// boundary: the guard only keeps it a read-only predicate fragment. It may
// not span statements or touch data; everything else is left to SQLite's
// parser, whose errors surface verbatim as InvalidFilterError.
var writeKeywordRe = regexp.MustCompile(
	`(?i)\b(insert|update|delete|drop|alter|create|replace|attach|detach|pragma|vacuum|reindex)\b`)

func validateWhere(where string) error {
	if strings.TrimSpace(where) == "" {
		return nil
	}
	if strings.Contains(where, ";") {
		return &InvalidFilterError{Detail: "statement separator not allowed"}
	}
	if strings.Contains(where, "--") || strings.Contains(where, "/*") {
		return &InvalidFilterError{Detail: "comments not allowed"}
	}
	if kw := writeKeywordRe.FindString(where); kw != "" {
		return &InvalidFilterError{Detail: "keyword not allowed: " + strings.ToLower(kw)}
	}
	return nil
}

// whereClause wraps the operator text for embedding; empty text matches all.
func whereClause(where string) string {
	if strings.TrimSpace(where) == "" {
		return "1=1"
	}
	return "(" + where + ")"
}

// combinedWhere ANDs server-built clauses (already trusted) onto the guarded
// operator text.
func combinedWhere(where, extra string) string {
	clause := whereClause(where)
	if strings.TrimSpace(extra) != "" {
		clause += " AND " + extra
	}
	return clause
}

func orderBySQL(sort, order string) string {
	direction := "DESC"
	if order == "asc" {
		direction = "ASC"
	}

	switch sort {
	case "num":
		return "ORDER BY seq " + direction
	case "method":
		return "ORDER BY method " + direction + ", ts DESC"
	case "url":
		return "ORDER BY url " + direction + ", ts DESC"
	case "size":
		return "ORDER BY resp_size " + direction + ", ts DESC"
	case "status":
		// Rows without a response sort after all others either way.
		return "ORDER BY status IS NULL ASC, status " + direction + ", ts DESC"
	case "time":
		return "ORDER BY duration IS NULL ASC, duration " + direction + ", ts DESC"
	default:
		return "ORDER BY ts DESC, seq DESC"
	}
}
