package formulaerr

import (
	"fmt"
	"strings"
)

// Snippet renders the lines around line:column of source with a caret under
// the offending column. Out of range positions are clamped.
//
//	   2 | var w = get_option('width')
//	   3 | return w +
//	     |          ^
func Snippet(source string, line, column int) string {
	lines := strings.Split(strings.ReplaceAll(source, "\r\n", "\n"), "\n")

	if line < 1 {
		line = 1
	}
	if line > len(lines) {
		line = len(lines)
	}
	if column < 1 {
		column = 1
	}

	width := len(fmt.Sprint(min(line+1, len(lines))))

	var sb strings.Builder

	writeLine := func(number int) {
		fmt.Fprintf(&sb, " %*d | %s\n", width, number, lines[number-1])
	}

	if line > 1 {
		writeLine(line - 1)
	}

	writeLine(line)

	current := []rune(lines[line-1])
	if column > len(current)+1 {
		column = len(current) + 1
	}

	// keep tabs so the caret lines up with the source above it
	var padding strings.Builder
	for i := 0; i < column-1; i++ {
		if current[i] == '\t' {
			padding.WriteRune('\t')
			continue
		}

		padding.WriteRune(' ')
	}

	fmt.Fprintf(&sb, " %s | %s^\n", strings.Repeat(" ", width), padding.String())

	if line < len(lines) {
		writeLine(line + 1)
	}

	return strings.TrimRight(sb.String(), "\n")
}

// Render formats err for a formula author: the error text followed by a
// caret snippet when err carries a position.
func Render(err error, source string) string {
	return RenderInfo(Describe(err), source)
}

func RenderInfo(info *Info, source string) string {
	if info == nil {
		return ""
	}

	header := fmt.Sprintf("%s: %s", info.Kind, info.Message)
	if info.Line == 0 {
		return header
	}

	return header + "\n\n" + Snippet(source, info.Line, info.Column)
}
