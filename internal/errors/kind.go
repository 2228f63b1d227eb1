package errors

import "fmt"

// Kind classifies driver errors independently of the database vendor.
type Kind int

const (
	KindUnknown Kind = iota
	KindConnection
	KindConnectionLost
	KindDeadlock
	KindLockWaitTimeout
	KindTableExists
	KindTableNotFound
	KindDatabaseObjectNotFound
	KindForeignKeyViolation
	KindUniqueConstraintViolation
	KindNotNullConstraintViolation
	KindCheckConstraintViolation
	KindInvalidFieldName
	KindNonUniqueFieldName
	KindSyntaxError
	KindReadOnly
	KindServer
)

var kindNames = [...]string{
	KindUnknown:                    "unknown",
	KindConnection:                 "connection",
	KindConnectionLost:             "connection lost",
	KindDeadlock:                   "deadlock",
	KindLockWaitTimeout:            "lock wait timeout",
	KindTableExists:                "table exists",
	KindTableNotFound:              "table not found",
	KindDatabaseObjectNotFound:     "database object not found",
	KindForeignKeyViolation:        "foreign key violation",
	KindUniqueConstraintViolation:  "unique constraint violation",
	KindNotNullConstraintViolation: "not null constraint violation",
	KindCheckConstraintViolation:   "check constraint violation",
	KindInvalidFieldName:           "invalid field name",
	KindNonUniqueFieldName:         "non-unique field name",
	KindSyntaxError:                "syntax error",
	KindReadOnly:                   "read only",
	KindServer:                     "server error",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Retryable reports whether repeating the transaction may succeed.
func (k Kind) Retryable() bool {
	return k == KindDeadlock || k == KindLockWaitTimeout
}

// DriverError is a vendor error converted into the shared taxonomy.
// The original driver error stays reachable through Unwrap.
type DriverError struct {
	Kind     Kind
	Code     string // vendor error number or code
	SQLState string
	Message  string
	Query    string
	Err      error
}

func (e *DriverError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Code != "" {
		msg = fmt.Sprintf("[%s] %s", e.Code, msg)
	}
	msg = fmt.Sprintf("%s: %s", e.Kind, msg)
	if e.Query != "" {
		msg += fmt.Sprintf(" (query: %s)", e.Query)
	}
	return msg
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

// Is matches any *DriverError of the same Kind, so errors.Is(err, ErrDeadlock)
// works for every vendor.
func (e *DriverError) Is(target error) bool {
	t, ok := target.(*DriverError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Err == nil && t.Code == ""
}

// NewDriverError creates a new DriverError
func NewDriverError(kind Kind, code, sqlState, message string, err error) *DriverError {
	return &DriverError{
		Kind:     kind,
		Code:     code,
		SQLState: sqlState,
		Message:  message,
		Err:      err,
	}
}

// WithQuery returns a copy of the error annotated with the failing statement.
func (e *DriverError) WithQuery(query string) *DriverError {
	c := *e
	c.Query = query
	return &c
}

// Sentinels for errors.Is checks against the shared taxonomy.
var (
	ErrConnection                 = &DriverError{Kind: KindConnection}
	ErrConnectionLost             = &DriverError{Kind: KindConnectionLost}
	ErrDeadlock                   = &DriverError{Kind: KindDeadlock}
	ErrLockWaitTimeout            = &DriverError{Kind: KindLockWaitTimeout}
	ErrTableExists                = &DriverError{Kind: KindTableExists}
	ErrTableNotFound              = &DriverError{Kind: KindTableNotFound}
	ErrDatabaseObjectNotFound     = &DriverError{Kind: KindDatabaseObjectNotFound}
	ErrForeignKeyViolation        = &DriverError{Kind: KindForeignKeyViolation}
	ErrUniqueConstraintViolation  = &DriverError{Kind: KindUniqueConstraintViolation}
	ErrNotNullConstraintViolation = &DriverError{Kind: KindNotNullConstraintViolation}
	ErrCheckConstraintViolation   = &DriverError{Kind: KindCheckConstraintViolation}
	ErrInvalidFieldName           = &DriverError{Kind: KindInvalidFieldName}
	ErrNonUniqueFieldName         = &DriverError{Kind: KindNonUniqueFieldName}
	ErrSyntaxError                = &DriverError{Kind: KindSyntaxError}
	ErrReadOnly                   = &DriverError{Kind: KindReadOnly}
	ErrServer                     = &DriverError{Kind: KindServer}
)

// KindOf returns the Kind of the first DriverError in err's chain.
func KindOf(err error) Kind {
	var de *DriverError
	if As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}
