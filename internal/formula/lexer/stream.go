package lexer

import "io"

// Stream replays an already tokenized source through the ReadToken
// interface.
type Stream struct {
	tokens []*Token
	pos    int
}

func NewStream(tokens []*Token) *Stream {
	return &Stream{
		tokens: tokens,
	}
}

func (s *Stream) ReadToken() (*Token, error) {
	if s.pos >= len(s.tokens) {
		return nil, io.EOF
	}

	token := s.tokens[s.pos]
	s.pos++

	return token, nil
}
