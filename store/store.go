// Package store owns persistence for customers, employees and the
// transaction lifecycle. All state transitions are expressed as single
// conditional statements evaluated by MySQL, so concurrent attempts on the
// same record resolve to at most one winner without application locking.
package store

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"payment-portal/apperr"
)

// MySQL error numbers the store translates into the error taxonomy.
const (
	mysqlErrDuplicateEntry  = 1062
	mysqlErrNoReferencedRow = 1452
)

// translate maps store-level failures onto the error taxonomy. Constraint
// violations become conflicts or missing references, timeouts and dead
// connections become transient, anything else is internal.
func translate(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlErrDuplicateEntry:
			return apperr.Conflict("username already exists")
		case mysqlErrNoReferencedRow:
			return apperr.NotFound("customer not found")
		}
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return apperr.Transient(op+" timed out", err)
	}

	return apperr.Internal(op+" failed", fmt.Errorf("%s: %w", op, err))
}
