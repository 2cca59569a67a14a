package sandbox

import (
	"regexp"
	"sort"
	"strings"
)

type denyRule struct {
	category string
	pattern  *regexp.Regexp
}

// denyRules match call sites that must never reach the lexer. The names
// cover the common spellings across scripting runtimes.
var denyRules = []denyRule{
	{
		category: "dynamic evaluation",
		pattern:  regexp.MustCompile(`(?i)\b(eval|assert|create_function|call_user_func(?:_array)?|preg_replace_callback|setTimeout|setInterval|Function)\s*\(`),
	},
	{
		category: "process execution",
		pattern:  regexp.MustCompile(`(?i)\b(exec|shell_exec|system|passthru|proc_open|popen|pcntl_exec|spawn|execSync|spawnSync)\s*\(`),
	},
	{
		category: "process execution",
		pattern:  regexp.MustCompile("`[^`]*`"),
	},
	{
		category: "file access",
		pattern:  regexp.MustCompile(`(?i)\b(fopen|fwrite|fread|fputs|file|file_get_contents|file_put_contents|readfile|unlink|rmdir|mkdir|rename|copy|include|include_once|require|require_once)\s*\(`),
	},
	{
		category: "network access",
		pattern:  regexp.MustCompile(`(?i)\b(curl_init|curl_exec|fsockopen|pfsockopen|socket_create|stream_socket_client|fetch|XMLHttpRequest|WebSocket)\s*\(`),
	},
	{
		category: "environment access",
		pattern:  regexp.MustCompile(`(?i)\b(getenv|putenv)\s*\(|\bprocess\s*\.\s*env\b`),
	},
}

type sanitizeHit struct {
	start    int
	end      int
	match    string
	category string
}

// Sanitize removes denylisted call sites from source and reports each one.
// It runs on raw text before lexing, so it also covers names the parser
// would otherwise reject later.
func (s *Sandbox) Sanitize(source string) string {
	hits := make([]sanitizeHit, 0)

	for _, rule := range denyRules {
		for _, loc := range rule.pattern.FindAllStringIndex(source, -1) {
			hits = append(hits, sanitizeHit{
				start:    loc[0],
				end:      loc[1],
				match:    source[loc[0]:loc[1]],
				category: rule.category,
			})
		}
	}

	if len(hits) == 0 {
		return source
	}

	sort.Slice(hits, func(i, j int) bool {
		return hits[i].start < hits[j].start
	})

	var sb strings.Builder

	last := 0
	for _, hit := range hits {
		// overlapping matches were already removed by an earlier hit
		if hit.start < last {
			continue
		}

		line, column := pointAt(source, hit.start)

		s.report(Event{
			Kind:       EventKindSanitizedSource,
			Message:    "removed " + hit.category + " from source",
			Identifier: callName(hit.match),
			Line:       line,
			Column:     column,
		})

		sb.WriteString(source[last:hit.start])
		last = hit.end
	}

	sb.WriteString(source[last:])

	return sb.String()
}

func callName(match string) string {
	name := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(match), "("))
	if strings.HasPrefix(name, "`") {
		return "`"
	}

	return name
}

// pointAt converts a byte offset into a 1-based line and column.
func pointAt(source string, offset int) (int, int) {
	line, column := 1, 1

	for _, r := range source[:offset] {
		if r == '\n' {
			line++
			column = 1
			continue
		}

		column++
	}

	return line, column
}
