package errors

import "strings"

// sqlStateKinds maps PostgreSQL SQLSTATE codes. DuckDB and pq report the
// same codes.
var sqlStateKinds = map[string]Kind{
	"40001": KindDeadlock,
	"40P01": KindDeadlock,
	"55P03": KindLockWaitTimeout,
	"23502": KindNotNullConstraintViolation,
	"23503": KindForeignKeyViolation,
	"23505": KindUniqueConstraintViolation,
	"23514": KindCheckConstraintViolation,
	"42601": KindSyntaxError,
	"42702": KindNonUniqueFieldName,
	"42703": KindInvalidFieldName,
	"42P01": KindTableNotFound,
	"42P07": KindTableExists,
	"42704": KindDatabaseObjectNotFound,
	"42883": KindDatabaseObjectNotFound,
	"3F000": KindDatabaseObjectNotFound,
	"25006": KindReadOnly,
	"08000": KindConnection,
	"08001": KindConnection,
	"08003": KindConnectionLost,
	"08004": KindConnection,
	"08006": KindConnection,
	"57P01": KindConnectionLost,
	"57P02": KindConnectionLost,
	"57P03": KindConnection,
	"3D000": KindConnection,
	"28000": KindConnection,
	"28P01": KindConnection,
}

// KindFromSQLState classifies a PostgreSQL error. TRUNCATE of a referenced
// table reports 0A000 and is treated as a foreign key violation.
func KindFromSQLState(code, message string) Kind {
	if code == "0A000" && strings.Contains(strings.ToLower(message), "truncate") {
		return KindForeignKeyViolation
	}
	if kind, ok := sqlStateKinds[code]; ok {
		return kind
	}
	if code != "" {
		return KindServer
	}
	return KindUnknown
}

var mysqlKinds = map[uint16]Kind{}

func init() {
	register := func(kind Kind, codes ...uint16) {
		for _, c := range codes {
			mysqlKinds[c] = kind
		}
	}
	register(KindDeadlock, 1213)
	register(KindLockWaitTimeout, 1205)
	register(KindTableExists, 1050)
	register(KindTableNotFound, 1051, 1146)
	register(KindForeignKeyViolation, 1216, 1217, 1451, 1452, 1701)
	register(KindUniqueConstraintViolation, 1062, 1557, 1569, 1586)
	register(KindInvalidFieldName, 1054, 1166, 1611)
	register(KindNonUniqueFieldName, 1052, 1060, 1110)
	register(KindSyntaxError, 1064, 1149, 1287, 1341, 1342, 1343, 1344, 1382, 1479, 1541, 1554, 1626)
	register(KindConnection, 1044, 1045, 1046, 1049, 1095, 1142, 1143, 1227, 1370, 1429, 2002, 2005, 2054)
	register(KindConnectionLost, 2006, 2013)
	register(KindNotNullConstraintViolation, 1048, 1121, 1138, 1171, 1252, 1263, 1364, 1566)
	register(KindCheckConstraintViolation, 3819)
	register(KindReadOnly, 1290, 1792)
}

// KindFromMySQLCode classifies a MySQL server error number.
func KindFromMySQLCode(code uint16) Kind {
	if kind, ok := mysqlKinds[code]; ok {
		return kind
	}
	return KindServer
}

type messageRule struct {
	fragment string
	kind     Kind
}

// SQLite reports most failures only through the message text.
var sqliteRules = []messageRule{
	{"database is locked", KindLockWaitTimeout},
	{"must be unique", KindUniqueConstraintViolation},
	{"is not unique", KindUniqueConstraintViolation},
	{"are not unique", KindUniqueConstraintViolation},
	{"unique constraint failed", KindUniqueConstraintViolation},
	{"may not be null", KindNotNullConstraintViolation},
	{"not null constraint failed", KindNotNullConstraintViolation},
	{"check constraint failed", KindCheckConstraintViolation},
	{"foreign key constraint failed", KindForeignKeyViolation},
	{"no such table:", KindTableNotFound},
	{"already exists", KindTableExists},
	{"has no column named", KindInvalidFieldName},
	{"no such column", KindInvalidFieldName},
	{"ambiguous column name", KindNonUniqueFieldName},
	{"syntax error", KindSyntaxError},
	{"attempt to write a readonly database", KindReadOnly},
	{"unable to open database file", KindConnection},
}

var duckdbRules = []messageRule{
	{"deadlock", KindDeadlock},
	{"duplicate key", KindUniqueConstraintViolation},
	{"violates unique constraint", KindUniqueConstraintViolation},
	{"violates primary key constraint", KindUniqueConstraintViolation},
	{"not null constraint failed", KindNotNullConstraintViolation},
	{"check constraint failed", KindCheckConstraintViolation},
	{"violates foreign key constraint", KindForeignKeyViolation},
	{"already exists", KindTableExists},
	{"does not exist", KindTableNotFound},
	{"referenced column", KindInvalidFieldName},
	{"ambiguous reference to column", KindNonUniqueFieldName},
	{"parser error", KindSyntaxError},
	{"cannot execute statement of type", KindReadOnly},
	{"read-only mode", KindReadOnly},
	{"io error", KindConnection},
}

// KindFromSQLiteMessage classifies a SQLite error message.
func KindFromSQLiteMessage(message string) Kind {
	return matchMessage(sqliteRules, message)
}

// KindFromDuckDBMessage classifies a DuckDB error message.
func KindFromDuckDBMessage(message string) Kind {
	return matchMessage(duckdbRules, message)
}

func matchMessage(rules []messageRule, message string) Kind {
	lower := strings.ToLower(message)
	for _, r := range rules {
		if strings.Contains(lower, r.fragment) {
			return r.kind
		}
	}
	return KindServer
}
