package lexer_test

import (
	"bytes"
	"fmt"
	"io"
	"testing"

	"github.com/artuross/formula-engine/internal/formula/lexer"
	"github.com/kr/pretty"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer(t *testing.T) {
	t.Run("operators", func(t *testing.T) {
		values := []string{
			"+", "-", "*", "/", "%", "<", ">", "=", "!", // single char
			"==", "!=", "<=", ">=", "&&", "||", "++", "--", "+=", "-=", "*=", "/=", "%=", // double char
			"===", "!==", // triple char
		}

		for index, value := range values {
			t.Run(fmt.Sprintf("%d - %s", index, value), func(t *testing.T) {
				expectedToken := &lexer.Token{
					Type:     lexer.TokenTypeOperator,
					Position: position(1, 1, 1, len(value)+1),
					RawValue: value,
					Value:    value,
				}

				tokens := readAll(t, value)

				require.Equal(t, 1, len(tokens), "incorrect number of tokens")

				assert.Equal(t, expectedToken, tokens[0])
			})
		}
	})

	t.Run("punctuation", func(t *testing.T) {
		values := []string{";", ",", ".", "[", "]", "{", "}", "(", ")", "?", ":"}

		for index, value := range values {
			t.Run(fmt.Sprintf("%d - %s", index, value), func(t *testing.T) {
				expectedToken := &lexer.Token{
					Type:     lexer.TokenTypePunctuation,
					Position: position(1, 1, 1, 2),
					RawValue: value,
					Value:    value,
				}

				tokens := readAll(t, value)

				require.Equal(t, 1, len(tokens), "incorrect number of tokens")

				assert.Equal(t, expectedToken, tokens[0])
			})
		}
	})

	t.Run("remaining", func(t *testing.T) {
		type testCase struct {
			name   string
			input  string
			tokens []*lexer.Token
		}

		testCases := []testCase{
			{
				name:  "keyword / lower case",
				input: "return",
				tokens: []*lexer.Token{
					{
						Type:     lexer.TokenTypeKeyword,
						Position: position(1, 1, 1, 7),
						RawValue: "return",
						Value:    "return",
					},
				},
			},
			{
				name:  "keyword / mixed case",
				input: "TRUE",
				tokens: []*lexer.Token{
					{
						Type:     lexer.TokenTypeKeyword,
						Position: position(1, 1, 1, 5),
						RawValue: "TRUE",
						Value:    "true",
					},
				},
			},
			{
				name:  "identifier",
				input: "$total_2",
				tokens: []*lexer.Token{
					{
						Type:     lexer.TokenTypeIdentifier,
						Position: position(1, 1, 1, 9),
						RawValue: "$total_2",
						Value:    "$total_2",
					},
				},
			},
			{
				name:  "number / integer",
				input: "123",
				tokens: []*lexer.Token{
					{
						Type:     lexer.TokenTypeNumber,
						Position: position(1, 1, 1, 4),
						RawValue: "123",
						Value:    "123",
					},
				},
			},
			{
				name:  "number / decimal",
				input: "1.5",
				tokens: []*lexer.Token{
					{
						Type:     lexer.TokenTypeNumber,
						Position: position(1, 1, 1, 4),
						RawValue: "1.5",
						Value:    "1.5",
					},
				},
			},
			{
				name:  "number / exponent",
				input: "1e-3",
				tokens: []*lexer.Token{
					{
						Type:     lexer.TokenTypeNumber,
						Position: position(1, 1, 1, 5),
						RawValue: "1e-3",
						Value:    "1e-3",
					},
				},
			},
			{
				name:  "string / single quotes with escapes",
				input: `'a\'b\n'`,
				tokens: []*lexer.Token{
					{
						Type:     lexer.TokenTypeString,
						Position: position(1, 1, 1, 9),
						RawValue: `'a\'b\n'`,
						Value:    "a'b\n",
					},
				},
			},
			{
				name:  "string / double quotes",
				input: `"say \"hi\"\t\\"`,
				tokens: []*lexer.Token{
					{
						Type:     lexer.TokenTypeString,
						Position: position(1, 1, 1, 17),
						RawValue: `"say \"hi\"\t\\"`,
						Value:    "say \"hi\"\t\\",
					},
				},
			},
			{
				name:  "comments and newlines",
				input: "// leading\n/* block\n comment */ x",
				tokens: []*lexer.Token{
					{
						Type:     lexer.TokenTypeIdentifier,
						Position: position(3, 13, 3, 14),
						RawValue: "x",
						Value:    "x",
					},
				},
			},
			{
				name:  "strict equality is not split",
				input: "a===b",
				tokens: []*lexer.Token{
					{
						Type:     lexer.TokenTypeIdentifier,
						Position: position(1, 1, 1, 2),
						RawValue: "a",
						Value:    "a",
					},
					{
						Type:     lexer.TokenTypeOperator,
						Position: position(1, 2, 1, 5),
						RawValue: "===",
						Value:    "===",
					},
					{
						Type:     lexer.TokenTypeIdentifier,
						Position: position(1, 5, 1, 6),
						RawValue: "b",
						Value:    "b",
					},
				},
			},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				tokens := readAll(t, tc.input)

				t.Logf("expression: %v", tc.input)
				t.Log(pretty.Sprint(tokens))

				assert.Equal(t, tc.tokens, tokens)
			})
		}
	})
}

func TestTokenize(t *testing.T) {
	t.Run("statement", func(t *testing.T) {
		tokens := lexer.Tokenize("var w = get_option('width');")

		values := make([]string, 0, len(tokens))
		for _, token := range tokens {
			values = append(values, token.Value)
		}

		assert.Equal(t, []string{"var", "w", "=", "get_option", "(", "width", ")", ";"}, values)
	})

	t.Run("skips unknown characters with a warning", func(t *testing.T) {
		var buf bytes.Buffer

		lex := lexer.NewLexer("return 1 # 2 @", lexer.WithLogger(zerolog.New(&buf)))

		tokens := make([]*lexer.Token, 0)
		for {
			token, err := lex.ReadToken()
			if err == io.EOF {
				break
			}
			require.NoError(t, err)

			tokens = append(tokens, token)
		}

		require.Len(t, tokens, 3)
		assert.Equal(t, "2", tokens[2].Value)

		warnings := lex.Warnings()
		require.Len(t, warnings, 2)
		assert.Equal(t, lexer.Point{Line: 1, Column: 10}, warnings[0].Point)
		assert.Equal(t, "skipping unrecognized character: #", warnings[0].Message)

		assert.Contains(t, buf.String(), "skipping unrecognized character: @")
	})

	t.Run("unterminated string runs to the end", func(t *testing.T) {
		lex := lexer.NewLexer("'abc")

		token, err := lex.ReadToken()
		require.NoError(t, err)
		assert.Equal(t, "abc", token.Value)

		_, err = lex.ReadToken()
		assert.Equal(t, io.EOF, err)
		assert.Len(t, lex.Warnings(), 1)
	})

	t.Run("invalid utf-8 is skipped", func(t *testing.T) {
		tokens := lexer.Tokenize("a \xff b")

		require.Len(t, tokens, 2)
		assert.Equal(t, "b", tokens[1].Value)
		assert.Equal(t, 5, tokens[1].Position.Start.Column)
	})

	t.Run("malformed exponent is not consumed", func(t *testing.T) {
		tokens := lexer.Tokenize("2e")

		require.Len(t, tokens, 2)
		assert.Equal(t, lexer.TokenTypeNumber, tokens[0].Type)
		assert.Equal(t, lexer.TokenTypeIdentifier, tokens[1].Type)
	})
}

func TestStream(t *testing.T) {
	tokens := lexer.Tokenize("a + 1")
	stream := lexer.NewStream(tokens)

	for _, expected := range tokens {
		token, err := stream.ReadToken()
		require.NoError(t, err)
		assert.Same(t, expected, token)
	}

	_, err := stream.ReadToken()
	assert.Equal(t, io.EOF, err)
}

func readAll(t *testing.T, input string) []*lexer.Token {
	t.Helper()

	lex := lexer.NewLexer(input)

	tokens := make([]*lexer.Token, 0)

	index := 0
	for {
		token, err := lex.ReadToken()
		if err == io.EOF {
			break
		}
		require.NoError(t, err, "error when reading token %d", index)

		tokens = append(tokens, token)

		index++
	}

	return tokens
}

func position(startLine, startCol, endLine, endCol int) lexer.Position {
	return lexer.Position{
		Start: lexer.Point{Line: startLine, Column: startCol},
		End:   lexer.Point{Line: endLine, Column: endCol},
	}
}
