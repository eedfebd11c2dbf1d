package lexer

import (
	"testing"

	"github.com/funvibe/lix/internal/token"
)

func TestNextTokenCoversCoreSyntax(t *testing.T) {
	input := `defmodule M do
  def g(v), do: v + 42
end
M.g(13) |> IO.inspect()
:ok == :error
x = [1, 2 | t]
%{a: 1}
"hi\n"
`
	want := []token.TokenType{
		token.DEFMODULE, token.IDENT_UPPER, token.DO, token.NEWLINE,
		token.DEF, token.IDENT_LOWER, token.LPAREN, token.IDENT_LOWER, token.RPAREN, token.COMMA,
		token.DO, token.COLON, token.IDENT_LOWER, token.PLUS, token.INT, token.NEWLINE,
		token.END, token.NEWLINE,
		token.IDENT_UPPER, token.DOT, token.IDENT_LOWER, token.LPAREN, token.INT, token.RPAREN,
		token.PIPE_GT, token.IDENT_UPPER, token.DOT, token.IDENT_LOWER, token.LPAREN, token.RPAREN, token.NEWLINE,
		token.ATOM, token.EQ, token.ATOM, token.NEWLINE,
		token.IDENT_LOWER, token.ASSIGN, token.LBRACKET, token.INT, token.COMMA, token.INT, token.PIPE, token.IDENT_LOWER, token.RBRACKET, token.NEWLINE,
		token.PERCENT_LBRACE, token.IDENT_LOWER, token.COLON, token.INT, token.RBRACE, token.NEWLINE,
		token.STRING, token.NEWLINE,
		token.EOF,
	}

	l := New(input)
	for i, wantType := range want {
		tok := l.NextToken()
		if tok.Type != wantType {
			t.Fatalf("token %d: got %s (%q), want %s", i, tok.Type, tok.Lexeme, wantType)
		}
	}
}

func TestAtomLexeme(t *testing.T) {
	l := New(":hello")
	tok := l.NextToken()
	if tok.Type != token.ATOM || tok.Literal != "hello" {
		t.Fatalf("got %+v", tok)
	}
}

func TestStringEscapes(t *testing.T) {
	l := New(`"a\nb"`)
	tok := l.NextToken()
	if tok.Type != token.STRING || tok.Literal != "a\nb" {
		t.Fatalf("got %+v", tok)
	}
}
