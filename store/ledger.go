package store

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"payment-portal/apperr"
	"payment-portal/models"
)

// Ledger owns the payment-record lifecycle. Status is mutated here and
// nowhere else: pending on creation, verified through a conditional update,
// submitted through a conditional bulk update. No transition reverses and
// there is no delete.
type Ledger struct {
	db      *sql.DB
	timeout time.Duration
}

func NewLedger(db *sql.DB, timeout time.Duration) *Ledger {
	return &Ledger{db: db, timeout: timeout}
}

// Create inserts a new pending transaction and returns its identity. The
// customer reference is enforced by the foreign key; a missing customer
// surfaces as a not-found error.
func (l *Ledger) Create(ctx context.Context, customerID int64, amount decimal.Decimal, currency, provider, payeeAccount, swiftCode string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	reference := uuid.NewString()
	result, err := l.db.ExecContext(ctx,
		"INSERT INTO transactions (customerId, reference, amount, currency, provider, payeeAccount, swiftCode, status, createdAt) VALUES (?, ?, ?, ?, ?, ?, ?, 'pending', NOW())",
		customerID, reference, amount, currency, provider, payeeAccount, swiftCode)
	if err != nil {
		return 0, translate("create transaction", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, translate("create transaction", err)
	}
	return id, nil
}

// Verify transitions a transaction from pending to verified, recording the
// verifier name and timestamp. The precondition and the update are one
// conditional statement, so two concurrent calls on the same record cannot
// both succeed. A zero-row update means the id is unknown or the record has
// already left pending; the two cases are deliberately not distinguished.
func (l *Ledger) Verify(ctx context.Context, transactionID int64, verifierName string) error {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	result, err := l.db.ExecContext(ctx,
		"UPDATE transactions SET status = 'verified', verifiedBy = ?, verifiedAt = NOW() WHERE id = ? AND status = 'pending'",
		verifierName, transactionID)
	if err != nil {
		return translate("verify transaction", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return translate("verify transaction", err)
	}
	if affected == 0 {
		return apperr.Conflict("transaction not found or already verified")
	}
	return nil
}

// SubmitBatch transitions every listed transaction that is currently
// verified to submitted, sharing one submission timestamp, and returns how
// many actually transitioned. Records not in verified state are skipped,
// which makes resubmission of the same set report zero, not an error.
func (l *Ledger) SubmitBatch(ctx context.Context, transactionIDs []int64) (int64, error) {
	if len(transactionIDs) == 0 {
		return 0, apperr.BadRequest("no transactions to submit")
	}

	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(transactionIDs)), ",")
	args := make([]interface{}, 0, len(transactionIDs))
	for _, id := range transactionIDs {
		args = append(args, id)
	}

	result, err := l.db.ExecContext(ctx,
		"UPDATE transactions SET status = 'submitted', submittedAt = NOW() WHERE id IN ("+placeholders+") AND status = 'verified'",
		args...)
	if err != nil {
		return 0, translate("submit batch", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, translate("submit batch", err)
	}
	return count, nil
}

// ListAll returns every transaction joined with the owning customer's
// display fields, most recent first.
func (l *Ledger) ListAll(ctx context.Context) ([]models.TransactionView, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	rows, err := l.db.QueryContext(ctx,
		`SELECT t.id, t.customerId, t.reference, t.amount, t.currency, t.provider, t.payeeAccount, t.swiftCode, t.status, t.verifiedBy, t.verifiedAt, t.submittedAt, t.createdAt, c.fullName, c.username
		 FROM transactions t
		 JOIN customers c ON t.customerId = c.id
		 ORDER BY t.createdAt DESC`)
	if err != nil {
		return nil, translate("list transactions", err)
	}
	defer rows.Close()

	var views []models.TransactionView
	for rows.Next() {
		var v models.TransactionView
		var verifiedBy sql.NullString
		var verifiedAt, submittedAt sql.NullTime
		if err := rows.Scan(&v.ID, &v.CustomerID, &v.Reference, &v.Amount, &v.Currency, &v.Provider, &v.PayeeAccount, &v.SwiftCode, &v.Status, &verifiedBy, &verifiedAt, &submittedAt, &v.CreatedAt, &v.CustomerName, &v.CustomerUsername); err != nil {
			return nil, translate("list transactions", err)
		}
		if verifiedBy.Valid {
			v.VerifiedBy = &verifiedBy.String
		}
		if verifiedAt.Valid {
			v.VerifiedAt = &verifiedAt.Time
		}
		if submittedAt.Valid {
			v.SubmittedAt = &submittedAt.Time
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, translate("list transactions", err)
	}

	return views, nil
}
