package sandbox

import (
	"errors"
	"regexp"
	"strings"
)

var ErrQueryRejected = errors.New("query rejected")

var (
	readOnlyPrefix    = regexp.MustCompile(`(?i)^\s*select\b`)
	mutatingKeyword   = regexp.MustCompile(`(?i)\b(insert|update|delete|drop|alter|create|truncate|replace|merge|upsert|grant|revoke|attach|detach|pragma|vacuum|reindex|exec|execute|call|into|union|join)\b`)
	fromClause        = regexp.MustCompile(`(?i)\bfrom\b`)
	fromTarget        = regexp.MustCompile(`(?is)\bfrom\s+(\S+)(.*)$`)
	identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)
)

// clauses that may follow the single table of a lookup query
var trailingClauses = []string{"where", "order", "group", "having", "limit"}

// ValidateQuery accepts only a single read-only SELECT over one table whose
// name matches [A-Za-z0-9_]+.
func ValidateQuery(query string) bool {
	_, ok := queryTable(query)
	return ok
}

// ValidateIdentifier reports whether name is a safe table or column name.
func ValidateIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// CheckQuery validates query and reports a rejection. The returned error
// does not explain which rule failed.
func (s *Sandbox) CheckQuery(query string) error {
	if _, ok := queryTable(query); ok {
		return nil
	}

	s.report(Event{
		Kind:       EventKindRejectedQuery,
		Message:    "query rejected: not a single-table read-only lookup",
		Identifier: query,
	})

	return ErrQueryRejected
}

// CheckIdentifier validates a table or column name supplied by a formula.
func (s *Sandbox) CheckIdentifier(name string) error {
	if ValidateIdentifier(name) {
		return nil
	}

	s.report(Event{
		Kind:       EventKindRejectedQuery,
		Message:    "query rejected: invalid identifier",
		Identifier: name,
	})

	return ErrQueryRejected
}

func queryTable(query string) (string, bool) {
	if !readOnlyPrefix.MatchString(query) {
		return "", false
	}

	if strings.ContainsAny(query, ";`\"[") || strings.Contains(query, "--") || strings.Contains(query, "/*") {
		return "", false
	}

	if mutatingKeyword.MatchString(query) {
		return "", false
	}

	// exactly one FROM, which also rules out subqueries
	if len(fromClause.FindAllStringIndex(query, -1)) != 1 {
		return "", false
	}

	match := fromTarget.FindStringSubmatch(query)
	if match == nil {
		return "", false
	}

	table := match[1]
	if !ValidateIdentifier(table) {
		return "", false
	}

	rest := strings.Fields(strings.ToLower(match[2]))
	if len(rest) > 0 && !isTrailingClause(rest[0]) {
		return "", false
	}

	return table, true
}

func isTrailingClause(word string) bool {
	for _, clause := range trailingClauses {
		if word == clause {
			return true
		}
	}

	return false
}
