/*
 * scanner.go
 *
 * Single forward pass over SQL text that separates parameter placeholders
 * from everything else.
 *
 * The scanner knows just enough SQL lexing to avoid placeholder look-alikes:
 *
 *   '...'  "..."  `...`   quoted literals and identifiers
 *   [...]                 bracket-quoted identifiers (SQL Server, SQLite)
 *   -- ...                line comments
 *   /* ... * /            block comments (not nested)
 *   ::                    cast operators and any longer run of colons
 *
 * Inside any of those regions ? and :name are ordinary text. Outside of them
 * ? is a positional parameter and :name (name = [A-Za-z0-9_]+) is a named one.
 *
 * Two escaping dialects are supported for quoted regions. In ANSI mode the
 * delimiter is escaped by doubling it. In MySQL mode a backslash additionally
 * escapes whatever character follows it.
 *
 * Usage:
 *
 *	s := sqlparser.NewScanner(src, false)
 *	for {
 *	    tok := s.Scan()
 *	    if tok.Type == sqlparser.EOF { break }
 *	    // use tok.Type, tok.Text, tok.Pos
 *	}
 */
package sqlparser

import (
	"strings"
)

// TokenType is the kind of a token produced by Scanner.
type TokenType int

const (
	// EOF is returned when the input is fully consumed.
	EOF TokenType = iota

	// Other is a maximal run of text that is not a placeholder: SQL keywords,
	// punctuation, quoted regions (delimiters included) and comments.
	Other

	// PositionalParameter is a bare ? in SQL context.
	PositionalParameter

	// NamedParameter is a bare :name in SQL context, colon included.
	NamedParameter
)

// String returns a string representation of TokenType
func (tt TokenType) String() string {
	switch tt {
	case EOF:
		return "EOF"
	case Other:
		return "other"
	case PositionalParameter:
		return "positional"
	case NamedParameter:
		return "named"
	default:
		return "unknown"
	}
}

// Context is the lexical mode the scanner is in at a given offset.
// Contexts never nest: a quote inside a comment is just a character and
// vice versa.
type Context int

const (
	ContextSQL          Context = iota // bare SQL, placeholders are recognised here
	ContextSingleQuote                 // '...'
	ContextDoubleQuote                 // "..."
	ContextBacktick                    // `...`
	ContextBracket                     // [...]
	ContextLineComment                 // -- ...
	ContextBlockComment                // /* ... */
)

// String returns a string representation of Context
func (c Context) String() string {
	switch c {
	case ContextSQL:
		return "sql"
	case ContextSingleQuote:
		return "single-quote"
	case ContextDoubleQuote:
		return "double-quote"
	case ContextBacktick:
		return "backtick"
	case ContextBracket:
		return "bracket"
	case ContextLineComment:
		return "line-comment"
	case ContextBlockComment:
		return "block-comment"
	default:
		return "unknown"
	}
}

// Token is a single span of the source text.
type Token struct {
	Type TokenType // Lexical category.
	Text string    // Raw source bytes that form this token.
	Pos  int       // Byte offset of the first character (0-based).
}

// Scanner tokenizes SQL text into placeholders and the text between them.
// Concatenating the Text of every token returned before EOF reproduces the
// source exactly.
type Scanner struct {
	src                 string
	pos                 int
	mysqlStringEscaping bool
}

// NewScanner returns a Scanner that reads from src. When mysqlStringEscaping
// is set, a backslash inside a quoted region escapes the next character.
func NewScanner(src string, mysqlStringEscaping bool) *Scanner {
	return &Scanner{src: src, mysqlStringEscaping: mysqlStringEscaping}
}

// Pos returns the byte offset of the next character to be read.
func (s *Scanner) Pos() int { return s.pos }

/*
 * Scan returns the next token. Returns Token{Type: EOF} when the input is
 * exhausted.
 *
 * Text that is not a placeholder is accumulated and returned as a single
 * Other token when the next placeholder (or the end of input) is reached, so
 * an Other token is always a maximal run. Quoted regions and comments are
 * skipped as a whole and become part of that run.
 */
func (s *Scanner) Scan() Token {
	if s.pos >= len(s.src) {
		return Token{Type: EOF, Pos: s.pos}
	}
	start := s.pos

	for s.pos < len(s.src) {
		ctx := s.contextAt()
		if ctx != ContextSQL {
			s.skip(ctx)
			continue
		}

		switch ch := s.src[s.pos]; {
		case ch == '?':
			if s.pos > start {
				return s.other(start)
			}
			s.pos++
			return Token{Type: PositionalParameter, Text: "?", Pos: start}

		/*
		 * Two or more colons are a cast operator (or nonsense), never a
		 * parameter prefix. The whole run is consumed so that the last colon
		 * of "::date" cannot start ":date".
		 */
		case ch == ':' && s.peek(1) == ':':
			for s.pos < len(s.src) && s.src[s.pos] == ':' {
				s.pos++
			}

		case ch == ':' && isParamChar(s.peek(1)):
			if s.pos > start {
				return s.other(start)
			}
			s.pos++
			for s.pos < len(s.src) && isParamChar(s.src[s.pos]) {
				s.pos++
			}
			return Token{Type: NamedParameter, Text: s.src[start:s.pos], Pos: start}

		default:
			s.pos++
		}
	}

	return s.other(start)
}

// ScanAll tokenises the entire source and returns every token (no EOF entry).
func (s *Scanner) ScanAll() []Token {
	var toks []Token
	for {
		t := s.Scan()
		if t.Type == EOF {
			return toks
		}
		toks = append(toks, t)
	}
}

func (s *Scanner) other(start int) Token {
	return Token{Type: Other, Text: s.src[start:s.pos], Pos: start}
}

// peek returns the byte k positions ahead of the cursor, or 0 past the end.
func (s *Scanner) peek(k int) byte {
	if s.pos+k < len(s.src) {
		return s.src[s.pos+k]
	}
	return 0
}

// contextAt reports which region starts at the cursor. ContextSQL means the
// byte at the cursor is plain SQL.
func (s *Scanner) contextAt() Context {
	switch s.src[s.pos] {
	case '\'':
		return ContextSingleQuote
	case '"':
		return ContextDoubleQuote
	case '`':
		return ContextBacktick
	case '[':
		if s.followsArrayKeyword() {
			return ContextSQL
		}
		return ContextBracket
	case '-':
		if s.peek(1) == '-' {
			return ContextLineComment
		}
	case '/':
		if s.peek(1) == '*' {
			return ContextBlockComment
		}
	}
	return ContextSQL
}

// skip advances the cursor past the region of the given context that starts
// at the cursor. Unterminated regions run to the end of the input.
func (s *Scanner) skip(ctx Context) {
	switch ctx {
	case ContextSingleQuote:
		s.quoted('\'')
	case ContextDoubleQuote:
		s.quoted('"')
	case ContextBacktick:
		s.quoted('`')
	case ContextBracket:
		s.until("]", 1)
	case ContextBlockComment:
		s.until("*/", 2)
	case ContextLineComment:
		if idx := strings.IndexAny(s.src[s.pos:], "\r\n"); idx >= 0 {
			s.pos += idx
		} else {
			s.pos = len(s.src)
		}
	default:
		s.pos++
	}
}

// quoted consumes a region delimited by delim, honouring doubled delimiters
// and, in MySQL mode, backslash escapes.
func (s *Scanner) quoted(delim byte) {
	s.pos++ // opening delimiter
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		switch {
		case c == '\\' && s.mysqlStringEscaping:
			s.pos += 2
		case c == delim && s.peek(1) == delim:
			s.pos += 2
		case c == delim:
			s.pos++
			return
		default:
			s.pos++
		}
	}
	s.pos = len(s.src)
}

// until consumes everything up to and including the first occurrence of
// closing after the opening delimiter of length open.
func (s *Scanner) until(closing string, open int) {
	from := s.pos + open
	if idx := strings.Index(s.src[from:], closing); idx >= 0 {
		s.pos = from + idx + len(closing)
		return
	}
	s.pos = len(s.src)
}

// followsArrayKeyword reports whether the [ at the cursor directly follows
// the word ARRAY (any case), as in the PostgreSQL constructor ARRAY[...].
func (s *Scanner) followsArrayKeyword() bool {
	const kw = "array"
	if s.pos < len(kw) || !strings.EqualFold(s.src[s.pos-len(kw):s.pos], kw) {
		return false
	}
	before := s.pos - len(kw) - 1
	return before < 0 || !isWordChar(s.src[before])
}

// isParamChar reports whether b may appear in a named parameter after the colon.
func isParamChar(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b == '_'
}

func isWordChar(b byte) bool {
	return isParamChar(b)
}
