package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"payment-portal/apperr"
	"payment-portal/auth"
	"payment-portal/store"
	"payment-portal/validation"
)

// maxBodyBytes caps request bodies; payloads are small JSON documents.
const maxBodyBytes = 10 << 10

// Handler carries the portal's injected dependencies. Business state lives
// in the store; nothing here is mutable.
type Handler struct {
	registry *store.Registry
	ledger   *store.Ledger
	tokens   *auth.Manager
	log      *zap.SugaredLogger
}

func New(registry *store.Registry, ledger *store.Ledger, tokens *auth.Manager, log *zap.SugaredLogger) *Handler {
	return &Handler{registry: registry, ledger: ledger, tokens: tokens, log: log}
}

type registerRequest struct {
	FullName      string `json:"fullName"`
	IDNumber      string `json:"idNumber"`
	AccountNumber string `json:"accountNumber"`
	Username      string `json:"username"`
	Password      string `json:"password"`
}

type customerLoginRequest struct {
	Username      string `json:"username"`
	AccountNumber string `json:"accountNumber"`
	Password      string `json:"password"`
}

type employeeLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createPaymentRequest struct {
	CustomerID   int64  `json:"customerId"`
	Amount       string `json:"amount"`
	Currency     string `json:"currency"`
	Provider     string `json:"provider"`
	PayeeAccount string `json:"payeeAccount"`
	SwiftCode    string `json:"swiftCode"`
}

type verifyRequest struct {
	EmployeeID   int64  `json:"employeeId"`
	EmployeeName string `json:"employeeName"`
}

type submitRequest struct {
	TransactionIDs []int64 `json:"transactionIds"`
	EmployeeID     int64   `json:"employeeId"`
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decode(w, r, &req) {
		return
	}

	fields := map[validation.Field]string{
		validation.FieldFullName:      validation.Sanitize(validation.FieldFullName, req.FullName),
		validation.FieldIDNumber:      validation.Sanitize(validation.FieldIDNumber, req.IDNumber),
		validation.FieldAccountNumber: validation.Sanitize(validation.FieldAccountNumber, req.AccountNumber),
		validation.FieldUsername:      validation.Sanitize(validation.FieldUsername, req.Username),
		validation.FieldPassword:      validation.Sanitize(validation.FieldPassword, req.Password),
	}
	if violations := validation.CheckAll(fields); len(violations) > 0 {
		h.writeError(w, apperr.Validation(violations...))
		return
	}

	customerID, err := h.registry.RegisterCustomer(r.Context(),
		fields[validation.FieldFullName],
		fields[validation.FieldIDNumber],
		fields[validation.FieldAccountNumber],
		fields[validation.FieldUsername],
		fields[validation.FieldPassword])
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":    "Registration successful",
		"customerId": customerID,
	})
}

func (h *Handler) CustomerLogin(w http.ResponseWriter, r *http.Request) {
	var req customerLoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	username := validation.Sanitize(validation.FieldUsername, req.Username)
	accountNumber := validation.Sanitize(validation.FieldAccountNumber, req.AccountNumber)
	password := validation.Sanitize(validation.FieldPassword, req.Password)

	customer, err := h.registry.AuthenticateCustomer(r.Context(), username, accountNumber, password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	token, err := h.tokens.Issue(customer.ID, customer.Username, auth.RoleCustomer)
	if err != nil {
		h.writeError(w, apperr.Internal("issue token", err))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"customer": map[string]interface{}{
			"id":            customer.ID,
			"username":      customer.Username,
			"fullName":      customer.FullName,
			"accountNumber": customer.AccountNumber,
		},
	})
}

func (h *Handler) EmployeeLogin(w http.ResponseWriter, r *http.Request) {
	var req employeeLoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	username := validation.Sanitize(validation.FieldUsername, req.Username)
	password := validation.Sanitize(validation.FieldPassword, req.Password)

	employee, err := h.registry.AuthenticateEmployee(r.Context(), username, password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	token, err := h.tokens.Issue(employee.ID, employee.Username, auth.RoleVerifier)
	if err != nil {
		h.writeError(w, apperr.Internal("issue token", err))
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Login successful",
		"token":   token,
		"employee": map[string]interface{}{
			"id":       employee.ID,
			"username": employee.Username,
			"name":     employee.Name,
			"role":     employee.Role,
		},
	})
}

func (h *Handler) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if !h.decode(w, r, &req) {
		return
	}

	fields := map[validation.Field]string{
		validation.FieldAmount:       validation.Sanitize(validation.FieldAmount, req.Amount),
		validation.FieldCurrency:     validation.Sanitize(validation.FieldCurrency, req.Currency),
		validation.FieldProvider:     validation.Sanitize(validation.FieldProvider, req.Provider),
		validation.FieldPayeeAccount: validation.Sanitize(validation.FieldPayeeAccount, req.PayeeAccount),
		validation.FieldSwiftCode:    validation.Sanitize(validation.FieldSwiftCode, req.SwiftCode),
	}
	if violations := validation.CheckAll(fields); len(violations) > 0 {
		h.writeError(w, apperr.Validation(violations...))
		return
	}

	amount, err := validation.Amount(fields[validation.FieldAmount])
	if err != nil {
		h.writeError(w, apperr.BadRequest("invalid amount"))
		return
	}

	transactionID, err := h.ledger.Create(r.Context(), req.CustomerID, amount,
		fields[validation.FieldCurrency],
		fields[validation.FieldProvider],
		fields[validation.FieldPayeeAccount],
		fields[validation.FieldSwiftCode])
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message":       "Payment created successfully",
		"transactionId": transactionID,
	})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.ledger.ListAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"transactions": transactions,
	})
}

func (h *Handler) VerifyTransaction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		h.writeError(w, apperr.BadRequest("invalid transaction id"))
		return
	}

	var req verifyRequest
	if !h.decode(w, r, &req) {
		return
	}

	verifierName := validation.Sanitize(validation.FieldFullName, req.EmployeeName)
	if !validation.Check(validation.FieldFullName, verifierName) {
		h.writeError(w, apperr.BadRequest("invalid employee name"))
		return
	}

	if err := h.ledger.Verify(r.Context(), id, verifierName); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Transaction verified successfully",
	})
}

func (h *Handler) SubmitSwift(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if !h.decode(w, r, &req) {
		return
	}

	count, err := h.ledger.SubmitBatch(r.Context(), req.TransactionIDs)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": strconv.FormatInt(count, 10) + " transaction(s) submitted to SWIFT",
		"count":   count,
	})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "OK",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, apperr.BadRequest("invalid request body"))
		return false
	}
	return true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// writeError reports taxonomy errors with their mapped status. Anything
// outside the taxonomy, and anything internal, is logged with detail and
// reported opaquely.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind == apperr.KindInternal {
		h.log.Errorw("internal error", "error", err)
		h.writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "Something went wrong!",
		})
		return
	}

	body := map[string]interface{}{"error": appErr.Message}
	if len(appErr.Fields) > 0 {
		body["errors"] = appErr.Fields
	}
	h.writeJSON(w, appErr.HTTPStatus(), body)
}
