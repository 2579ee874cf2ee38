/*
Package scan tokenizes script lines.

A line is split on whitespace outside double quotes; a double-quoted
substring is a single token including its quotes. Tokenization is backed by
a lexmachine DFA; a hand-rolled splitter serves as fallback for lines the
DFA rejects (an unterminated quote, for instance).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2025 komcat

*/
package scan

import (
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// tracer traces with key 'aascript.scan'.
func tracer() tracing.Trace {
	return tracing.Select("aascript.scan")
}

// Token categories produced by the line lexer.
const (
	tokWord int = iota
	tokString
)

var (
	lexerOnce sync.Once
	lexer     *lexmachine.Lexer
	lexerErr  error
)

// lineLexer compiles the DFA for script lines, once.
func lineLexer() (*lexmachine.Lexer, error) {
	lexerOnce.Do(func() {
		lexer = lexmachine.NewLexer()
		lexer.Add([]byte(`\"[^"]*\"`), makeToken(tokString))
		lexer.Add([]byte(`[^ \t\n\r"]+`), makeToken(tokWord))
		lexer.Add([]byte(`( |\t|\n|\r)+`), skip)
		lexerErr = lexer.Compile()
	})
	return lexer, lexerErr
}

// skip is a pre-defined action which ignores the scanned match.
func skip(*lexmachine.Scanner, *machines.Match) (interface{}, error) {
	return nil, nil
}

// makeToken is a pre-defined action which wraps a scanned match into a token.
func makeToken(id int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(id, string(m.Bytes), m), nil
	}
}

// Tokenize splits one script line into tokens. Adjacent matches with no
// whitespace between them are glued back into a single token, so that
// mixed word/quote runs come out the way a whitespace splitter would
// produce them.
func Tokenize(line string) []string {
	lx, err := lineLexer()
	if err != nil {
		tracer().Errorf("error compiling line DFA: %v", err)
		return handSplit(line)
	}
	s, err := lx.Scanner([]byte(line))
	if err != nil {
		return handSplit(line)
	}
	var tokens []string
	lastEnd := -1
	for tok, err, eof := s.Next(); !eof; tok, err, eof = s.Next() {
		if err != nil {
			// The DFA rejects unterminated quotes; the fallback
			// splitter accepts them.
			tracer().Debugf("line DFA rejected input: %v", err)
			return handSplit(line)
		}
		if tok == nil {
			continue
		}
		token := tok.(*lexmachine.Token)
		start := token.TC
		lexeme := string(token.Lexeme)
		if start == lastEnd && len(tokens) > 0 {
			tokens[len(tokens)-1] += lexeme
		} else {
			tokens = append(tokens, lexeme)
		}
		lastEnd = start + len(lexeme)
	}
	return tokens
}

// handSplit is the reference splitter: whitespace separates tokens unless
// inside double quotes.
func handSplit(line string) []string {
	var tokens []string
	var token []byte
	inQuotes := false
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			inQuotes = !inQuotes
			token = append(token, c)
		case (c == ' ' || c == '\t') && !inQuotes:
			if len(token) > 0 {
				tokens = append(tokens, string(token))
				token = token[:0]
			}
		default:
			token = append(token, c)
		}
	}
	if len(token) > 0 {
		tokens = append(tokens, string(token))
	}
	return tokens
}
