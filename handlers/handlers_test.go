package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"payment-portal/auth"
	"payment-portal/store"
)

func newTestHandler(t *testing.T) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hasher := auth.NewBcryptHasher()
	registry := store.NewRegistry(db, hasher, time.Second)
	ledger := store.NewLedger(db, time.Second)
	tokens := auth.NewManager([]byte("test-secret"), time.Hour)
	return New(registry, ledger, tokens, zap.NewNop().Sugar()), mock
}

func doJSON(t *testing.T, handler http.HandlerFunc, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, target, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestRegisterSuccess(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM customers WHERE username = ?")).
		WithArgs("jane_doe").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO customers")).
		WithArgs("Jane Doe", "9001015009087", "1234567890", "jane_doe", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	rec := doJSON(t, h.Register, "POST", "/api/customer/register", map[string]string{
		"fullName":      "Jane Doe",
		"idNumber":      "9001015009087",
		"accountNumber": "1234567890",
		"username":      "jane_doe",
		"password":      "Passw0rd!",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, float64(1), body["customerId"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Every invalid field is reported in one response.
func TestRegisterReportsAllViolations(t *testing.T) {
	h, mock := newTestHandler(t)

	rec := doJSON(t, h.Register, "POST", "/api/customer/register", map[string]string{
		"fullName":      "J",
		"idNumber":      "123",
		"accountNumber": "1234567890",
		"username":      "x",
		"password":      "weak",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	violations := body["errors"].([]interface{})
	assert.Len(t, violations, 4)
	// Nothing invalid reaches the store.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRegisterDuplicateUsername(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM customers WHERE username = ?")).
		WithArgs("jane_doe").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	rec := doJSON(t, h.Register, "POST", "/api/customer/register", map[string]string{
		"fullName":      "Jane Doe",
		"idNumber":      "9001015009087",
		"accountNumber": "1234567890",
		"username":      "jane_doe",
		"password":      "Passw0rd!",
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "username already exists", decodeBody(t, rec)["error"])
}

// Unknown username and wrong password come back with the same status and
// the same body: nothing leaks which one happened.
func TestCustomerLoginUniformError(t *testing.T) {
	h, mock := newTestHandler(t)

	hasher := auth.NewBcryptHasher()
	digest, err := hasher.Hash("Correct0rd!")
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE username = ? AND accountNumber = ?")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE username = ? AND accountNumber = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "fullName", "idNumber", "accountNumber", "username", "password", "createdAt"}).
			AddRow(1, "Jane Doe", "9001015009087", "1234567890", "jane_doe", digest, time.Now()))

	unknownRec := doJSON(t, h.CustomerLogin, "POST", "/api/customer/login", map[string]string{
		"username": "ghost", "accountNumber": "1234567890", "password": "Wrong0rd!",
	})
	wrongPwRec := doJSON(t, h.CustomerLogin, "POST", "/api/customer/login", map[string]string{
		"username": "jane_doe", "accountNumber": "1234567890", "password": "Wrong0rd!",
	})

	assert.Equal(t, http.StatusUnauthorized, unknownRec.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPwRec.Code)
	assert.Equal(t, unknownRec.Body.String(), wrongPwRec.Body.String())
}

func TestCustomerLoginIssuesToken(t *testing.T) {
	h, mock := newTestHandler(t)

	hasher := auth.NewBcryptHasher()
	digest, err := hasher.Hash("Passw0rd!")
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("FROM customers WHERE username = ? AND accountNumber = ?")).
		WithArgs("jane_doe", "1234567890").
		WillReturnRows(sqlmock.NewRows([]string{"id", "fullName", "idNumber", "accountNumber", "username", "password", "createdAt"}).
			AddRow(1, "Jane Doe", "9001015009087", "1234567890", "jane_doe", digest, time.Now()))

	rec := doJSON(t, h.CustomerLogin, "POST", "/api/customer/login", map[string]string{
		"username": "jane_doe", "accountNumber": "1234567890", "password": "Passw0rd!",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["token"])
	customer := body["customer"].(map[string]interface{})
	assert.Equal(t, "jane_doe", customer["username"])
}

func TestCreatePaymentRejectsNonPositiveAmount(t *testing.T) {
	h, mock := newTestHandler(t)

	for _, amount := range []string{"0.00", "-5", "0"} {
		rec := doJSON(t, h.CreatePayment, "POST", "/api/payment/create", map[string]interface{}{
			"customerId":   1,
			"amount":       amount,
			"currency":     "ZAR",
			"provider":     "SWIFT",
			"payeeAccount": "9876543210",
			"swiftCode":    "12345678",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code, "amount %q", amount)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePayment(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WithArgs(int64(1), sqlmock.AnyArg(), sqlmock.AnyArg(), "ZAR", "SWIFT", "9876543210", "12345678").
		WillReturnResult(sqlmock.NewResult(10, 1))

	rec := doJSON(t, h.CreatePayment, "POST", "/api/payment/create", map[string]interface{}{
		"customerId":   1,
		"amount":       "500.00",
		"currency":     "ZAR",
		"provider":     "SWIFT",
		"payeeAccount": "9876543210",
		"swiftCode":    "12345678",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, float64(10), decodeBody(t, rec)["transactionId"])
}

func TestVerifyTransactionNotFoundOrAlreadyVerified(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET status = 'verified'")).
		WithArgs("John Verifier", int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	payload, _ := json.Marshal(map[string]interface{}{"employeeId": 2, "employeeName": "John Verifier"})
	req := httptest.NewRequest("PUT", "/api/transaction/42/verify", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"id": "42"})
	rec := httptest.NewRecorder()
	h.VerifyTransaction(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "transaction not found or already verified", decodeBody(t, rec)["error"])
}

func TestSubmitSwiftEmptyBatch(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h.SubmitSwift, "POST", "/api/transactions/submit-swift", map[string]interface{}{
		"transactionIds": []int64{},
		"employeeId":     2,
	})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no transactions to submit", decodeBody(t, rec)["error"])
}

func TestHealth(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", decodeBody(t, rec)["status"])
}

// Full workflow: register, create payment, verify, submit, resubmit. The
// resubmission reports zero transitions rather than an error.
func TestPaymentWorkflow(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM customers WHERE username = ?")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO customers")).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO transactions")).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET status = 'verified'")).
		WithArgs("John Verifier", int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET status = 'submitted'")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE transactions SET status = 'submitted'")).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	rec := doJSON(t, h.Register, "POST", "/api/customer/register", map[string]string{
		"fullName": "Alice Member", "idNumber": "9001015009087",
		"accountNumber": "1234567890", "username": "alice", "password": "Passw0rd!",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, h.CreatePayment, "POST", "/api/payment/create", map[string]interface{}{
		"customerId": 1, "amount": "500.00", "currency": "ZAR", "provider": "SWIFT",
		"payeeAccount": "9876543210", "swiftCode": "12345678",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	payload, _ := json.Marshal(map[string]interface{}{"employeeId": 2, "employeeName": "John Verifier"})
	req := httptest.NewRequest("PUT", "/api/transaction/7/verify", bytes.NewReader(payload))
	req = mux.SetURLVars(req, map[string]string{"id": "7"})
	verifyRec := httptest.NewRecorder()
	h.VerifyTransaction(verifyRec, req)
	require.Equal(t, http.StatusOK, verifyRec.Code)

	rec = doJSON(t, h.SubmitSwift, "POST", "/api/transactions/submit-swift", map[string]interface{}{
		"transactionIds": []int64{7}, "employeeId": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["count"])

	rec = doJSON(t, h.SubmitSwift, "POST", "/api/transactions/submit-swift", map[string]interface{}{
		"transactionIds": []int64{7}, "employeeId": 2,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["count"])

	assert.NoError(t, mock.ExpectationsWereMet())
}
