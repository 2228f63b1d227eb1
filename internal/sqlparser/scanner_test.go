package sqlparser

import (
	"reflect"
	"testing"
)

// assertTokens fails the test when the scanned tokens differ from want.
func assertTokens(t *testing.T, src string, mysql bool, want ...Token) {
	t.Helper()
	got := NewScanner(src, mysql).ScanAll()
	if len(got) != len(want) {
		t.Fatalf("src=%q\n  got  %v\n  want %v", src, got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("src=%q token[%d]: got %+v, want %+v", src, i, got[i], want[i])
		}
	}
}

func TestScanner_Empty(t *testing.T) {
	s := NewScanner("", false)
	if tok := s.Scan(); tok.Type != EOF {
		t.Fatalf("got %v, want EOF", tok.Type)
	}
	// EOF is sticky
	if tok := s.Scan(); tok.Type != EOF || tok.Pos != 0 {
		t.Fatalf("got %+v, want EOF at 0", tok)
	}
}

func TestScanner_Positions(t *testing.T) {
	assertTokens(t, "SELECT :foo FROM ?", false,
		Token{Type: Other, Text: "SELECT ", Pos: 0},
		Token{Type: NamedParameter, Text: ":foo", Pos: 7},
		Token{Type: Other, Text: " FROM ", Pos: 11},
		Token{Type: PositionalParameter, Text: "?", Pos: 17},
	)
}

func TestScanner_LeadingPlaceholder(t *testing.T) {
	assertTokens(t, ":a?", false,
		Token{Type: NamedParameter, Text: ":a", Pos: 0},
		Token{Type: PositionalParameter, Text: "?", Pos: 2},
	)
}

func TestScanner_QuotedRegionsStayInOneToken(t *testing.T) {
	assertTokens(t, `'a?' "b:c" `+"`d?`"+` [e:f] /* ? */ -- :g`, false,
		Token{Type: Other, Text: `'a?' "b:c" ` + "`d?`" + ` [e:f] /* ? */ -- :g`, Pos: 0},
	)
}

func TestScanner_PosAdvances(t *testing.T) {
	s := NewScanner("a ? b", false)
	s.Scan()
	if s.Pos() != 2 {
		t.Fatalf("after first token Pos() = %d, want 2", s.Pos())
	}
	s.Scan()
	if s.Pos() != 3 {
		t.Fatalf("after placeholder Pos() = %d, want 3", s.Pos())
	}
}

func TestContextAt(t *testing.T) {
	tests := []struct {
		src  string
		pos  int
		want Context
	}{
		{"'x'", 0, ContextSingleQuote},
		{`"x"`, 0, ContextDoubleQuote},
		{"`x`", 0, ContextBacktick},
		{"[x]", 0, ContextBracket},
		{"ARRAY[x]", 5, ContextSQL},
		{"(array[x])", 6, ContextSQL},
		{"subarray[x]", 8, ContextBracket},
		{"-- x", 0, ContextLineComment},
		{"- x", 0, ContextSQL},
		{"/* x */", 0, ContextBlockComment},
		{"/ x", 0, ContextSQL},
		{"x", 0, ContextSQL},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			s := NewScanner(tt.src, false)
			s.pos = tt.pos
			if got := s.contextAt(); got != tt.want {
				t.Errorf("contextAt(%q, %d) = %v, want %v", tt.src, tt.pos, got, tt.want)
			}
		})
	}
}

func TestStrings(t *testing.T) {
	if ContextBracket.String() != "bracket" || Context(99).String() != "unknown" {
		t.Error("unexpected Context names")
	}
	if NamedParameter.String() != "named" || TokenType(99).String() != "unknown" {
		t.Error("unexpected TokenType names")
	}
}

func TestSplitStatements(t *testing.T) {
	tests := []struct {
		name  string
		mysql bool
		sql   string
		want  []string
	}{
		{
			name: "two statements",
			sql:  "SELECT 1; SELECT 2;",
			want: []string{"SELECT 1", "SELECT 2"},
		},
		{
			name: "no trailing semicolon",
			sql:  "CREATE TABLE t (id INT);\nINSERT INTO t VALUES (1)",
			want: []string{"CREATE TABLE t (id INT)", "INSERT INTO t VALUES (1)"},
		},
		{
			name: "semicolons in literals and comments",
			sql:  "INSERT INTO t VALUES (';'); -- done;\nSELECT \"a;b\" FROM [c;d]",
			want: []string{"INSERT INTO t VALUES (';')", "-- done;\nSELECT \"a;b\" FROM [c;d]"},
		},
		{
			name: "comment only tail",
			sql:  "SELECT 1; /* trailing */\n-- end",
			want: []string{"SELECT 1"},
		},
		{
			name: "empty statements",
			sql:  " ; ;; ",
			want: nil,
		},
		{
			name:  "mysql escaped quote",
			mysql: true,
			sql:   `INSERT INTO t VALUES ('a\';b'); SELECT 2`,
			want:  []string{`INSERT INTO t VALUES ('a\';b')`, "SELECT 2"},
		},
		{
			name: "trigger body",
			sql:  "CREATE TRIGGER t AFTER INSERT ON a BEGIN INSERT INTO b VALUES (1); UPDATE c SET n = n + 1; END; SELECT 1",
			want: []string{"CREATE TRIGGER t AFTER INSERT ON a BEGIN INSERT INTO b VALUES (1); UPDATE c SET n = n + 1; END", "SELECT 1"},
		},
		{
			name: "case inside trigger body",
			sql:  "create trigger t before update on a when new.end > 0 begin select case when new.x then 1 else 2 end; end;",
			want: []string{"create trigger t before update on a when new.end > 0 begin select case when new.x then 1 else 2 end; end"},
		},
		{
			name:  "procedure with compound statements",
			mysql: true,
			sql:   "CREATE PROCEDURE p() BEGIN IF x THEN SELECT 1; END IF; CASE y WHEN 1 THEN SELECT 2; END CASE; END; CALL p()",
			want:  []string{"CREATE PROCEDURE p() BEGIN IF x THEN SELECT 1; END IF; CASE y WHEN 1 THEN SELECT 2; END CASE; END", "CALL p()"},
		},
		{
			name: "transaction statements",
			sql:  "BEGIN; INSERT INTO t VALUES (1); END; COMMIT",
			want: []string{"BEGIN", "INSERT INTO t VALUES (1)", "END", "COMMIT"},
		},
		{
			name: "begin as a column name",
			sql:  "CREATE TABLE spans (begin INT, stop INT); SELECT 1",
			want: []string{"CREATE TABLE spans (begin INT, stop INT)", "SELECT 1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitStatements(tt.sql, tt.mysql)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitStatements(%q)\n  got  %q\n  want %q", tt.sql, got, tt.want)
			}
		})
	}
}

func TestSplitDollarQuoted(t *testing.T) {
	tests := []struct {
		name string
		sql  string
		want []string
	}{
		{
			name: "function body",
			sql:  "CREATE FUNCTION f() RETURNS int AS $$ BEGIN RETURN 1; END; $$ LANGUAGE plpgsql; SELECT f()",
			want: []string{"CREATE FUNCTION f() RETURNS int AS $$ BEGIN RETURN 1; END; $$ LANGUAGE plpgsql", "SELECT f()"},
		},
		{
			name: "tagged body containing $$",
			sql:  "DO $body$ BEGIN PERFORM '$$;'; END $body$; SELECT 2",
			want: []string{"DO $body$ BEGIN PERFORM '$$;'; END $body$", "SELECT 2"},
		},
		{
			name: "numbered parameters are not quotes",
			sql:  "SELECT $1; SELECT $2",
			want: []string{"SELECT $1", "SELECT $2"},
		},
		{
			name: "dollar inside identifier",
			sql:  "SELECT a$b$; SELECT 1",
			want: []string{"SELECT a$b$", "SELECT 1"},
		},
		{
			name: "unterminated",
			sql:  "SELECT $x$ a; b",
			want: []string{"SELECT $x$ a; b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitDollarQuoted(tt.sql)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitDollarQuoted(%q)\n  got  %q\n  want %q", tt.sql, got, tt.want)
			}
		})
	}

	// Without dollar quoting the body is split
	if got := SplitStatements("DO $$ BEGIN NULL; END $$", false); len(got) != 2 {
		t.Errorf("expected plain splitting to cut the body, got %q", got)
	}
}

func TestFirstKeyword(t *testing.T) {
	tests := []struct {
		sql  string
		want string
	}{
		{"select 1", "SELECT"},
		{"  -- note\n/* block */ With x AS (SELECT 1) SELECT * FROM x", "WITH"},
		{"(SELECT 1) UNION (SELECT 2)", "SELECT"},
		{"insert into t values (1)", "INSERT"},
		{"'literal'", ""},
		{"", ""},
		{"-- only a comment", ""},
		{"; SELECT 1", ""},
	}

	for _, tt := range tests {
		if got := FirstKeyword(tt.sql, false); got != tt.want {
			t.Errorf("FirstKeyword(%q) = %q, want %q", tt.sql, got, tt.want)
		}
	}
}
