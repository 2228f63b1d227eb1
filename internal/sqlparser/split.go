package sqlparser

import (
	"strings"
	"unicode"
)

// SplitStatements splits a script on semicolons that appear in bare SQL.
// Semicolons inside literals, quoted identifiers and comments do not split,
// nor do those inside a BEGIN...END body of a trigger, function or procedure
// or inside a CASE...END expression. Statements are trimmed; chunks holding
// only whitespace and comments are dropped.
func SplitStatements(sql string, mysqlStringEscaping bool) []string {
	return split(sql, mysqlStringEscaping, false)
}

// SplitDollarQuoted is SplitStatements for dialects with $tag$...$tag$
// string constants (PostgreSQL, DuckDB). Function bodies quoted that way
// stay in one statement.
func SplitDollarQuoted(sql string) []string {
	return split(sql, false, true)
}

// blockState follows the keywords of one statement to find out whether a
// semicolon ends it.
type blockState struct {
	first   string
	routine bool
	depth   int
}

// word records keyword w. next is the keyword that follows it; the return
// value reports whether next was consumed as part of w.
func (b *blockState) word(w, next string) bool {
	if b.first == "" {
		b.first = w
	}
	switch w {
	case "TRIGGER", "FUNCTION", "PROCEDURE":
		b.routine = true
	case "BEGIN":
		// a leading BEGIN starts a transaction
		if b.routine && b.first != "BEGIN" {
			b.depth++
		}
	case "CASE":
		b.depth++
	case "END":
		if b.depth == 0 {
			return false
		}
		switch next {
		case "IF", "LOOP", "WHILE", "REPEAT":
			return false
		}
		b.depth--
		return next == "CASE"
	}
	return false
}

func split(sql string, mysqlStringEscaping, dollarQuotes bool) []string {
	s := NewScanner(sql, mysqlStringEscaping)
	var statements []string

	start := 0
	significant := false
	var block blockState
	flush := func(end int) {
		if significant {
			statements = append(statements, strings.TrimSpace(sql[start:end]))
		}
		significant = false
		block = blockState{}
	}

	for s.pos < len(s.src) {
		ctx := s.contextAt()
		switch {
		case ctx == ContextLineComment || ctx == ContextBlockComment:
			s.skip(ctx)
		case ctx != ContextSQL:
			significant = true
			s.skip(ctx)
		case s.src[s.pos] == ';' && block.depth == 0:
			flush(s.pos)
			s.pos++
			start = s.pos
		case dollarQuotes && s.src[s.pos] == '$' && (s.pos == 0 || !isWordChar(s.src[s.pos-1])):
			significant = true
			s.dollarQuoted()
		case isWordChar(s.src[s.pos]):
			significant = true
			qualified := s.pos > 0 && (s.src[s.pos-1] == '.' || s.src[s.pos-1] == '$')
			w := s.word()
			if qualified {
				continue
			}
			next, end := s.peekWord()
			if block.word(w, next) {
				s.pos = end
			}
		default:
			if !unicode.IsSpace(rune(s.src[s.pos])) {
				significant = true
			}
			s.pos++
		}
	}
	flush(len(sql))

	return statements
}

// word consumes the word at the cursor and returns it upper cased.
func (s *Scanner) word() string {
	start := s.pos
	for s.pos < len(s.src) && isWordChar(s.src[s.pos]) {
		s.pos++
	}
	return strings.ToUpper(s.src[start:s.pos])
}

// peekWord returns the upper cased word after the whitespace following the
// cursor and the offset just past it, without moving the cursor.
func (s *Scanner) peekWord() (string, int) {
	pos := s.pos
	for pos < len(s.src) && unicode.IsSpace(rune(s.src[pos])) {
		pos++
	}
	start := pos
	for pos < len(s.src) && isWordChar(s.src[pos]) {
		pos++
	}
	return strings.ToUpper(s.src[start:pos]), pos
}

// FirstKeyword returns the first word of sql in bare SQL context, upper
// cased. Leading whitespace, comments and opening parentheses are skipped.
// It returns "" when the statement starts with anything else.
func FirstKeyword(sql string, mysqlStringEscaping bool) string {
	s := NewScanner(sql, mysqlStringEscaping)
	for s.pos < len(s.src) {
		ctx := s.contextAt()
		if ctx == ContextLineComment || ctx == ContextBlockComment {
			s.skip(ctx)
			continue
		}
		if ctx != ContextSQL {
			return ""
		}

		c := s.src[s.pos]
		switch {
		case isWordChar(c):
			return s.word()
		case c == '(' || unicode.IsSpace(rune(c)):
			s.pos++
		default:
			return ""
		}
	}
	return ""
}

// dollarQuoted consumes a $tag$...$tag$ constant starting at the cursor. A $
// that does not open a well formed delimiter ($1, a lone $) is consumed alone.
// An unterminated constant runs to the end of input.
func (s *Scanner) dollarQuoted() {
	start := s.pos
	s.pos++
	for s.pos < len(s.src) && isDollarTagChar(s.src[s.pos], s.pos == start+1) {
		s.pos++
	}
	if s.pos >= len(s.src) || s.src[s.pos] != '$' {
		s.pos = start + 1
		return
	}
	s.pos++
	delim := s.src[start:s.pos]

	if idx := strings.Index(s.src[s.pos:], delim); idx >= 0 {
		s.pos += idx + len(delim)
	} else {
		s.pos = len(s.src)
	}
}

// isDollarTagChar reports whether b may appear in a dollar quote tag. Digits
// are not allowed first.
func isDollarTagChar(b byte, first bool) bool {
	if b >= '0' && b <= '9' {
		return !first
	}
	return b == '_' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= 0x80
}
