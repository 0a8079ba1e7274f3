// Package lang is evscript's front end: a hand-written lexer and
// recursive-descent parser turning source text into an ast.Script.
// spec.md treats this as an external collaborator (the core only
// consumes the statement-tree shapes in §3), but a runnable compiler
// still needs one, so it is grounded in the teacher's
// pkg/compiler/lexer.go and parser.go: the same rune-at-a-time scan,
// the same keyword map, and a recursive-descent parser. Unlike the
// teacher's parser, it does not panic: every parse function returns
// its error directly.
package lang

import "fmt"

// TokenKind identifies the category of a lexed token.
type TokenKind int

const (
	EOF TokenKind = iota

	IDENTIFIER
	INTEGER
	STRING
	TYPENAME // u8/u16/u24/u32/byte/word/short/long/ptr/farptr; user typedef names lex as IDENTIFIER

	// Keywords
	USE
	IF
	ELSE
	WHILE
	DO
	FOR
	REPEAT
	LOOP
	GOTO
	DROP
	CALLASM
	PURGE
	BREAK
	CONTINUE
	NOOP
	TYPEDEF

	// Delimiters
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	SEMICOLON
	COMMA
	COLON

	// Operators
	ASSIGN
	PLUS
	MINUS
	STAR
	SLASH
	AMP
	PIPE
	AMPAMP
	PIPEPIPE
	EQ
	NEQ
	LT
	LTE
	GT
	GTE
)

var keywords = map[string]TokenKind{
	"use":      USE,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"do":       DO,
	"for":      FOR,
	"repeat":   REPEAT,
	"loop":     LOOP,
	"goto":     GOTO,
	"drop":     DROP,
	"callasm":  CALLASM,
	"purge":    PURGE,
	"break":    BREAK,
	"continue": CONTINUE,
	"noop":     NOOP,
	"typedef":  TYPEDEF,
}

// Token is one lexed unit: its kind, the source text it came from
// (used verbatim for identifiers/type names/CON literals), a decoded
// integer value for INTEGER, and its 1-based source line for
// diagnostics.
type Token struct {
	Kind TokenKind
	Text string
	Num  uint64
	Line int
}

func (t Token) String() string {
	return fmt.Sprintf("%v(%q)@%d", t.Kind, t.Text, t.Line)
}
