// internal/common/errors/classify.go
package errors

import (
	"database/sql/driver"
	stderrors "errors"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ClassifyDatabaseError maps a driver error raised while writing table into
// ConstraintError, ConnectionError or a generic write error.
func ClassifyDatabaseError(table string, err error) error {
	if err == nil {
		return nil
	}

	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return err
	}

	if stderrors.Is(err, driver.ErrBadConn) {
		return NewConnectionError(err)
	}

	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) {
		switch pqErr.Code.Class() {
		case "23":
			return NewConstraintError(table, err)
		case "08":
			return NewConnectionError(err)
		}
		return NewWriteError(table, err)
	}

	var liteErr *sqlite.Error
	if stderrors.As(err, &liteErr) {
		// extended result codes keep the primary code in the low byte
		switch liteErr.Code() & 0xff {
		case sqlite3.SQLITE_CONSTRAINT:
			return NewConstraintError(table, err)
		case sqlite3.SQLITE_CANTOPEN, sqlite3.SQLITE_NOTADB:
			return NewConnectionError(err)
		}
	}

	return NewWriteError(table, err)
}
