package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// The portal supports a single currency and settlement provider.
const (
	Currency = "ZAR"
	Provider = "SWIFT"
)

// TransactionStatus is the lifecycle state of a payment record.
// A transaction is created pending, becomes verified through an employee
// action, and is submitted in bulk. No transition ever reverses.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "pending"
	StatusVerified  TransactionStatus = "verified"
	StatusSubmitted TransactionStatus = "submitted"
)

type Customer struct {
	ID            int64     `json:"id"`
	FullName      string    `json:"fullName"`
	IDNumber      string    `json:"idNumber"`
	AccountNumber string    `json:"accountNumber"`
	Username      string    `json:"username"`
	PasswordHash  string    `json:"-"`
	CreatedAt     time.Time `json:"createdAt"`
}

type Employee struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
}

type Transaction struct {
	ID           int64             `json:"id"`
	CustomerID   int64             `json:"customerId"`
	Reference    string            `json:"reference"`
	Amount       decimal.Decimal   `json:"amount"`
	Currency     string            `json:"currency"`
	Provider     string            `json:"provider"`
	PayeeAccount string            `json:"payeeAccount"`
	SwiftCode    string            `json:"swiftCode"`
	Status       TransactionStatus `json:"status"`
	VerifiedBy   *string           `json:"verifiedBy,omitempty"`
	VerifiedAt   *time.Time        `json:"verifiedAt,omitempty"`
	SubmittedAt  *time.Time        `json:"submittedAt,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
}

// TransactionView is a Transaction joined with the owning customer's
// display fields, as returned to the employee portal.
type TransactionView struct {
	Transaction
	CustomerName     string `json:"customerName"`
	CustomerUsername string `json:"customerUsername"`
}
