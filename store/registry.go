package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"payment-portal/apperr"
	"payment-portal/auth"
	"payment-portal/models"
)

const invalidCredentials = "invalid credentials"

// Registry creates and authenticates customer and employee records.
type Registry struct {
	db      *sql.DB
	hasher  auth.Hasher
	timeout time.Duration
}

func NewRegistry(db *sql.DB, hasher auth.Hasher, timeout time.Duration) *Registry {
	return &Registry{db: db, hasher: hasher, timeout: timeout}
}

// RegisterCustomer hashes the password and persists a new customer. The
// username pre-check is advisory; the unique constraint on the insert is
// the actual race-safety mechanism, and a constraint violation is reported
// as the same duplicate-username conflict.
func (r *Registry) RegisterCustomer(ctx context.Context, fullName, idNumber, accountNumber, username, password string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var existing int64
	err := r.db.QueryRowContext(ctx,
		"SELECT id FROM customers WHERE username = ?", username).Scan(&existing)
	if err == nil {
		return 0, apperr.Conflict("username already exists")
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, translate("register customer", err)
	}

	hash, err := r.hasher.Hash(password)
	if err != nil {
		return 0, apperr.Internal("hash password", err)
	}

	result, err := r.db.ExecContext(ctx,
		"INSERT INTO customers (fullName, idNumber, accountNumber, username, password, createdAt) VALUES (?, ?, ?, ?, ?, NOW())",
		fullName, idNumber, accountNumber, username, hash)
	if err != nil {
		return 0, translate("register customer", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, translate("register customer", err)
	}
	return id, nil
}

// AuthenticateCustomer looks up the customer by the (username, account
// number) pair and verifies the credential. Unknown identity and wrong
// password are indistinguishable to the caller: same error, and a parity
// digest comparison keeps the timing uniform when no record matches.
func (r *Registry) AuthenticateCustomer(ctx context.Context, username, accountNumber, password string) (*models.Customer, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var c models.Customer
	err := r.db.QueryRowContext(ctx,
		"SELECT id, fullName, idNumber, accountNumber, username, password, createdAt FROM customers WHERE username = ? AND accountNumber = ?",
		username, accountNumber).
		Scan(&c.ID, &c.FullName, &c.IDNumber, &c.AccountNumber, &c.Username, &c.PasswordHash, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		r.hasher.Verify(password, auth.ParityDigest)
		return nil, apperr.Auth(invalidCredentials)
	}
	if err != nil {
		return nil, translate("authenticate customer", err)
	}

	if !r.hasher.Verify(password, c.PasswordHash) {
		return nil, apperr.Auth(invalidCredentials)
	}
	return &c, nil
}

// AuthenticateEmployee is the employee analog, keyed by username only.
func (r *Registry) AuthenticateEmployee(ctx context.Context, username, password string) (*models.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var e models.Employee
	err := r.db.QueryRowContext(ctx,
		"SELECT id, username, name, role, password FROM employees WHERE username = ?", username).
		Scan(&e.ID, &e.Username, &e.Name, &e.Role, &e.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		r.hasher.Verify(password, auth.ParityDigest)
		return nil, apperr.Auth(invalidCredentials)
	}
	if err != nil {
		return nil, translate("authenticate employee", err)
	}

	if !r.hasher.Verify(password, e.PasswordHash) {
		return nil, apperr.Auth(invalidCredentials)
	}
	return &e, nil
}
