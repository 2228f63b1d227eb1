package errors

import "testing"

func TestKindFromSQLState(t *testing.T) {
	tests := []struct {
		code    string
		message string
		want    Kind
	}{
		{"40P01", "deadlock detected", KindDeadlock},
		{"40001", "could not serialize access", KindDeadlock},
		{"55P03", "could not obtain lock", KindLockWaitTimeout},
		{"23505", "duplicate key value", KindUniqueConstraintViolation},
		{"23503", "violates foreign key", KindForeignKeyViolation},
		{"23502", "null value in column", KindNotNullConstraintViolation},
		{"42P01", `relation "x" does not exist`, KindTableNotFound},
		{"42P07", `relation "x" already exists`, KindTableExists},
		{"42703", `column "y" does not exist`, KindInvalidFieldName},
		{"42702", `column reference "id" is ambiguous`, KindNonUniqueFieldName},
		{"42601", "syntax error at or near", KindSyntaxError},
		{"08006", "connection failure", KindConnection},
		{"0A000", "cannot truncate a table referenced in a foreign key constraint", KindForeignKeyViolation},
		{"0A000", "feature not supported", KindServer},
		{"XX000", "internal error", KindServer},
		{"", "no code", KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.code+" "+tt.message, func(t *testing.T) {
			if got := KindFromSQLState(tt.code, tt.message); got != tt.want {
				t.Errorf("KindFromSQLState(%q) = %v, want %v", tt.code, got, tt.want)
			}
		})
	}
}

func TestKindFromMySQLCode(t *testing.T) {
	tests := map[uint16]Kind{
		1213: KindDeadlock,
		1205: KindLockWaitTimeout,
		1050: KindTableExists,
		1146: KindTableNotFound,
		1452: KindForeignKeyViolation,
		1062: KindUniqueConstraintViolation,
		1054: KindInvalidFieldName,
		1052: KindNonUniqueFieldName,
		1064: KindSyntaxError,
		1045: KindConnection,
		2006: KindConnectionLost,
		1048: KindNotNullConstraintViolation,
		3819: KindCheckConstraintViolation,
		1792: KindReadOnly,
		9999: KindServer,
	}
	for code, want := range tests {
		if got := KindFromMySQLCode(code); got != want {
			t.Errorf("KindFromMySQLCode(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestKindFromSQLiteMessage(t *testing.T) {
	tests := map[string]Kind{
		"database is locked (5) (SQLITE_BUSY)":               KindLockWaitTimeout,
		"UNIQUE constraint failed: t.id (2067)":              KindUniqueConstraintViolation,
		"NOT NULL constraint failed: t.name (1299)":          KindNotNullConstraintViolation,
		"FOREIGN KEY constraint failed (787)":                KindForeignKeyViolation,
		"CHECK constraint failed: positive (275)":            KindCheckConstraintViolation,
		"SQL logic error: no such table: missing (1)":        KindTableNotFound,
		"SQL logic error: table t already exists (1)":        KindTableExists,
		"table t has no column named nope":                   KindInvalidFieldName,
		"SQL logic error: no such column: nope (1)":          KindInvalidFieldName,
		"ambiguous column name: id":                          KindNonUniqueFieldName,
		`SQL logic error: near "SELEC": syntax error (1)`:    KindSyntaxError,
		"attempt to write a readonly database (8)":           KindReadOnly,
		"unable to open database file: out of memory (14)":   KindConnection,
		"interrupted (9)":                                    KindServer,
	}
	for msg, want := range tests {
		if got := KindFromSQLiteMessage(msg); got != want {
			t.Errorf("KindFromSQLiteMessage(%q) = %v, want %v", msg, got, want)
		}
	}
}

func TestKindFromDuckDBMessage(t *testing.T) {
	tests := map[string]Kind{
		`Constraint Error: Duplicate key "id: 1" violates primary key constraint`: KindUniqueConstraintViolation,
		"Constraint Error: NOT NULL constraint failed: t.name":                  KindNotNullConstraintViolation,
		`Catalog Error: Table with name missing does not exist!`:               KindTableNotFound,
		`Catalog Error: Table with name "t" already exists!`:                   KindTableExists,
		`Binder Error: Referenced column "nope" not found in FROM clause!`:     KindInvalidFieldName,
		`Parser Error: syntax error at or near "SELEC"`:                        KindSyntaxError,
		"Out of Memory Error: could not allocate block":                        KindServer,
	}
	for msg, want := range tests {
		if got := KindFromDuckDBMessage(msg); got != want {
			t.Errorf("KindFromDuckDBMessage(%q) = %v, want %v", msg, got, want)
		}
	}
}
