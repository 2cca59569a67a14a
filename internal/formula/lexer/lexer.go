package lexer

import (
	"bytes"
	"errors"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

var ErrRuneInvalid = errors.New("decode rune: invalid rune")

type TokenType string

const (
	TokenTypeIdentifier  TokenType = "IDENTIFIER"
	TokenTypeKeyword     TokenType = "KEYWORD"
	TokenTypeNumber      TokenType = "NUMBER"
	TokenTypeOperator    TokenType = "OPERATOR"
	TokenTypePunctuation TokenType = "PUNCTUATION"
	TokenTypeString      TokenType = "STRING"
)

// operators ordered so that longer forms are tried first
var operators = []string{
	"===", "!==",
	"==", "!=", "<=", ">=", "&&", "||", "++", "--", "+=", "-=", "*=", "/=", "%=",
	"+", "-", "*", "/", "%", "<", ">", "=", "!",
}

var punctuation = []rune{';', ',', '.', '[', ']', '{', '}', '(', ')', '?', ':'}

var keywords = []string{
	"var", "let", "const", "if", "else", "for", "while", "foreach", "return", "function", "true", "false", "null",
}

type Point struct {
	Line   int
	Column int
}

type Position struct {
	Start Point
	End   Point
}

type Token struct {
	Type     TokenType
	RawValue string
	Value    string
	Position Position
}

// Is reports whether the token has the given type and decoded value.
func (t *Token) Is(tokenType TokenType, value string) bool {
	return t != nil && t.Type == tokenType && t.Value == value
}

type Warning struct {
	Message string
	Point   Point
}

type Lexer struct {
	input    []byte
	point    Point
	position int
	warnings []Warning
	logger   zerolog.Logger
}

func NewLexer(input string, options ...func(*Lexer)) *Lexer {
	lexer := Lexer{
		input:    []byte(input),
		point:    Point{Line: 1, Column: 1},
		position: 0,
		logger:   zerolog.Nop(),
	}

	for _, apply := range options {
		apply(&lexer)
	}

	return &lexer
}

func WithLogger(logger zerolog.Logger) func(*Lexer) {
	return func(l *Lexer) {
		l.logger = logger
	}
}

// Tokenize reads every token from source. It never fails; characters the
// lexer does not recognize are skipped and reported as warnings.
func Tokenize(source string, options ...func(*Lexer)) []*Token {
	lex := NewLexer(source, options...)

	tokens := make([]*Token, 0)
	for {
		token, err := lex.ReadToken()
		if err != nil {
			break
		}

		tokens = append(tokens, token)
	}

	return tokens
}

// Warnings returns the diagnostics collected so far.
func (l *Lexer) Warnings() []Warning {
	return slices.Clone(l.warnings)
}

// ReadToken returns the next token, or io.EOF once the input is exhausted.
func (l *Lexer) ReadToken() (*Token, error) {
	for {
		l.advanceWhitespace()

		r, _, err := l.peek()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			l.skip("skipping invalid UTF-8 byte")
			continue
		}

		switch {
		case isDigit(r):
			return l.readNumber(), nil

		case isIdentifierOpeningCharacter(r):
			return l.readIdentifier(), nil

		case isStringOpeningCharacter(r):
			return l.readString(), nil

		case isPunctuation(r):
			return l.readPunctuation(), nil
		}

		if token := l.readOperator(); token != nil {
			return token, nil
		}

		l.skip("skipping unrecognized character")
	}
}

func (l *Lexer) advanceWhitespace() {
	for {
		r, _, err := l.peek()
		if err != nil {
			return
		}

		switch {
		case r == ' ', r == '\t', r == '\r', r == '\n':
			l.read()

		case r == '/' && l.peekAt(1) == '/':
			for {
				r, _, err := l.peek()
				if err == io.EOF || r == '\n' {
					break
				}

				l.advance()
			}

		case r == '/' && l.peekAt(1) == '*':
			start := l.point

			l.read()
			l.read()

			for {
				r, _, err := l.peek()
				if err == io.EOF {
					l.warn("unterminated block comment", start)
					return
				}

				l.advance()

				if err == nil && r == '*' && l.peekAt(0) == '/' {
					l.read()
					break
				}
			}

		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() *Token {
	startPoint := l.point
	startPos := l.position

	r := l.read()
	invariant(!isIdentifierOpeningCharacter(r), "readIdentifier: first character is not valid")

	for {
		r, _, err := l.peek()
		if err != nil || !isIdentifierContinuationCharacter(r) {
			break
		}

		l.read()
	}

	raw := string(l.input[startPos:l.position])

	token := Token{
		Type: TokenTypeIdentifier,
		Position: Position{
			Start: startPoint,
			End:   l.point,
		},
		RawValue: raw,
		Value:    raw,
	}

	if lower := strings.ToLower(raw); slices.Contains(keywords, lower) {
		token.Type = TokenTypeKeyword
		token.Value = lower
	}

	return &token
}

func (l *Lexer) readNumber() *Token {
	startPoint := l.point
	startPos := l.position

	l.readDigits()

	// fraction, only when a digit follows the dot
	if l.peekAt(0) == '.' && isDigit(l.peekAt(1)) {
		l.read()
		l.readDigits()
	}

	// exponent, only when it is well formed
	if next := l.peekAt(0); next == 'e' || next == 'E' {
		sign := l.peekAt(1)
		switch {
		case isDigit(sign):
			l.read()
			l.readDigits()

		case (sign == '+' || sign == '-') && isDigit(l.peekAt(2)):
			l.read()
			l.read()
			l.readDigits()
		}
	}

	raw := string(l.input[startPos:l.position])

	token := Token{
		Type: TokenTypeNumber,
		Position: Position{
			Start: startPoint,
			End:   l.point,
		},
		RawValue: raw,
		Value:    raw,
	}

	return &token
}

func (l *Lexer) readDigits() {
	for isDigit(l.peekAt(0)) {
		l.read()
	}
}

func (l *Lexer) readOperator() *Token {
	startPoint := l.point
	rest := l.input[l.position:]

	for _, op := range operators {
		if !bytes.HasPrefix(rest, []byte(op)) {
			continue
		}

		for range op {
			l.read()
		}

		token := Token{
			Type: TokenTypeOperator,
			Position: Position{
				Start: startPoint,
				End:   l.point,
			},
			RawValue: op,
			Value:    op,
		}

		return &token
	}

	return nil
}

func (l *Lexer) readPunctuation() *Token {
	startPoint := l.point

	r := l.read()
	invariant(!isPunctuation(r), "readPunctuation: first character is not valid")

	token := Token{
		Type: TokenTypePunctuation,
		Position: Position{
			Start: startPoint,
			End:   l.point,
		},
		RawValue: string(r),
		Value:    string(r),
	}

	return &token
}

func (l *Lexer) readString() *Token {
	startPoint := l.point
	startPos := l.position

	quote := l.read()
	invariant(!isStringOpeningCharacter(quote), "readString: first character is not valid")

	var value strings.Builder

	for {
		r, _, err := l.peek()
		if err == io.EOF {
			l.warn("unterminated string literal", startPoint)
			break
		}
		if err != nil {
			l.skip("skipping invalid UTF-8 byte in string literal")
			continue
		}

		l.read()

		if r == quote {
			break
		}

		if r != '\\' {
			value.WriteRune(r)
			continue
		}

		escaped, _, err := l.peek()
		if err != nil {
			value.WriteRune('\\')
			continue
		}

		l.read()

		switch escaped {
		case 'n':
			value.WriteRune('\n')

		case 't':
			value.WriteRune('\t')

		case 'r':
			value.WriteRune('\r')

		case '\\', '\'', '"':
			value.WriteRune(escaped)

		default:
			// unknown escapes are kept verbatim
			value.WriteRune('\\')
			value.WriteRune(escaped)
		}
	}

	token := Token{
		Type: TokenTypeString,
		Position: Position{
			Start: startPoint,
			End:   l.point,
		},
		RawValue: string(l.input[startPos:l.position]),
		Value:    value.String(),
	}

	return &token
}

func (l *Lexer) skip(message string) {
	point := l.point

	if r, _, err := l.peek(); err == nil {
		message += ": " + string(r)
		l.read()
	} else {
		// invalid byte, step over it without decoding
		l.position++
		l.point.Column++
	}

	l.warn(message, point)
}

func (l *Lexer) warn(message string, point Point) {
	l.warnings = append(l.warnings, Warning{Message: message, Point: point})

	l.logger.Warn().
		Int("line", point.Line).
		Int("column", point.Column).
		Msg(message)
}

func (l *Lexer) peek() (rune, int, error) {
	if l.position >= len(l.input) {
		return 0, 0, io.EOF
	}

	r, size := utf8.DecodeRune(l.input[l.position:])
	if r == utf8.RuneError && size <= 1 {
		return 0, 0, ErrRuneInvalid
	}

	return r, size, nil
}

// peekAt returns the rune offset runes ahead, or 0 when there is none.
func (l *Lexer) peekAt(offset int) rune {
	pos := l.position

	for i := 0; ; i++ {
		if pos >= len(l.input) {
			return 0
		}

		r, size := utf8.DecodeRune(l.input[pos:])
		if i == offset {
			return r
		}

		pos += size
	}
}

// advance steps over one rune, or one byte when the input is not valid UTF-8.
func (l *Lexer) advance() {
	if _, _, err := l.peek(); err == ErrRuneInvalid {
		l.position++
		l.point.Column++
		return
	}

	l.read()
}

func (l *Lexer) read() rune {
	r, size, err := l.peek()
	invariant(err != nil, "read() called without a valid rune")

	l.position += size

	if r == '\n' {
		l.point.Line++
		l.point.Column = 1
	} else {
		l.point.Column++
	}

	return r
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isIdentifierContinuationCharacter(r rune) bool {
	return isIdentifierOpeningCharacter(r) || isDigit(r)
}

func isIdentifierOpeningCharacter(r rune) bool {
	return isLetter(r) || r == '_' || r == '$'
}

func isStringOpeningCharacter(r rune) bool {
	return r == '\'' || r == '"'
}

func isPunctuation(r rune) bool {
	return slices.Contains(punctuation, r)
}

func invariant(assertion bool, message string) {
	if assertion {
		panic(message)
	}
}
