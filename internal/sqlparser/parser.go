// Package sqlparser finds parameter placeholders in SQL statements.
//
// The parser reports every positional (?) and named (:name) placeholder found
// in bare SQL, and every span of text between them, to a Visitor in source
// order. Placeholder-like characters inside string literals, quoted
// identifiers and comments are reported as ordinary text. Drivers use it to
// rewrite placeholders into their native syntax.
package sqlparser

// Visitor receives the pieces of a statement in source order.
type Visitor interface {
	// AcceptPositionalParameter is called with "?" for each positional parameter.
	AcceptPositionalParameter(sql string)

	// AcceptNamedParameter is called with ":name" for each named parameter.
	AcceptNamedParameter(sql string)

	// AcceptOther is called with each maximal run of text between placeholders.
	AcceptOther(sql string)
}

// VisitorFuncs adapts plain functions to the Visitor interface. Nil fields
// are skipped.
type VisitorFuncs struct {
	Positional func(sql string)
	Named      func(sql string)
	Other      func(sql string)
}

var _ Visitor = VisitorFuncs{}

func (f VisitorFuncs) AcceptPositionalParameter(sql string) {
	if f.Positional != nil {
		f.Positional(sql)
	}
}

func (f VisitorFuncs) AcceptNamedParameter(sql string) {
	if f.Named != nil {
		f.Named(sql)
	}
}

func (f VisitorFuncs) AcceptOther(sql string) {
	if f.Other != nil {
		f.Other(sql)
	}
}

// Parser holds the string escaping mode. It keeps no state between calls
// and is safe for concurrent use.
type Parser struct {
	mysqlStringEscaping bool
}

// NewParser creates a parser. mysqlStringEscaping selects backslash escaping
// inside quoted regions in addition to doubled delimiters.
func NewParser(mysqlStringEscaping bool) *Parser {
	return &Parser{mysqlStringEscaping: mysqlStringEscaping}
}

// MySQLStringEscaping reports the escaping mode of the parser.
func (p *Parser) MySQLStringEscaping() bool {
	return p.mysqlStringEscaping
}

// Parse walks sql once and calls v for every placeholder and every run of
// other text. It never fails: unterminated literals and comments extend to
// the end of the input.
func (p *Parser) Parse(sql string, v Visitor) {
	s := NewScanner(sql, p.mysqlStringEscaping)
	for {
		tok := s.Scan()
		switch tok.Type {
		case EOF:
			return
		case PositionalParameter:
			v.AcceptPositionalParameter(tok.Text)
		case NamedParameter:
			v.AcceptNamedParameter(tok.Text)
		default:
			v.AcceptOther(tok.Text)
		}
	}
}

// Parse is a convenience function for NewParser(mysqlStringEscaping).Parse(sql, v).
func Parse(sql string, mysqlStringEscaping bool, v Visitor) {
	NewParser(mysqlStringEscaping).Parse(sql, v)
}
