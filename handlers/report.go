package handlers

import (
	"net/http"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/tealeg/xlsx"

	"payment-portal/apperr"
	"payment-portal/models"
)

// Export writes the full transaction list as a PDF or XLSX report for
// employee record keeping. Format defaults to JSON when unspecified.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.ledger.ListAll(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "pdf":
		h.exportPDF(w, transactions)
	case "xlsx":
		h.exportXLSX(w, transactions)
	case "", "json":
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"transactions": transactions})
	default:
		h.writeError(w, apperr.BadRequest("unsupported export format"))
	}
}

func (h *Handler) exportPDF(w http.ResponseWriter, transactions []models.TransactionView) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Payment Transactions Report")
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(15, 7, "ID")
	pdf.Cell(40, 7, "Customer")
	pdf.Cell(30, 7, "Amount")
	pdf.Cell(40, 7, "Payee Account")
	pdf.Cell(30, 7, "SWIFT Code")
	pdf.Cell(25, 7, "Status")
	pdf.Cell(40, 7, "Verified By")
	pdf.Cell(40, 7, "Created")
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 10)
	for _, t := range transactions {
		verifiedBy := ""
		if t.VerifiedBy != nil {
			verifiedBy = *t.VerifiedBy
		}
		pdf.CellFormat(15, 7, formatID(t.ID), "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 7, t.CustomerName, "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 7, t.Amount.StringFixed(2)+" "+t.Currency, "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 7, t.PayeeAccount, "1", 0, "", false, 0, "")
		pdf.CellFormat(30, 7, t.SwiftCode, "1", 0, "", false, 0, "")
		pdf.CellFormat(25, 7, string(t.Status), "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 7, verifiedBy, "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 7, t.CreatedAt.Format("2006-01-02 15:04:05"), "1", 0, "", false, 0, "")
		pdf.Ln(7)
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions_report.pdf"`)
	if err := pdf.Output(w); err != nil {
		h.log.Errorw("pdf export", "error", err)
	}
}

func (h *Handler) exportXLSX(w http.ResponseWriter, transactions []models.TransactionView) {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Transactions")
	if err != nil {
		h.writeError(w, apperr.Internal("xlsx export", err))
		return
	}

	row := sheet.AddRow()
	for _, header := range []string{"ID", "Reference", "Customer", "Username", "Amount", "Currency", "Payee Account", "SWIFT Code", "Status", "Verified By", "Created"} {
		row.AddCell().SetValue(header)
	}

	for _, t := range transactions {
		verifiedBy := ""
		if t.VerifiedBy != nil {
			verifiedBy = *t.VerifiedBy
		}
		row = sheet.AddRow()
		row.AddCell().SetValue(formatID(t.ID))
		row.AddCell().SetValue(t.Reference)
		row.AddCell().SetValue(t.CustomerName)
		row.AddCell().SetValue(t.CustomerUsername)
		row.AddCell().SetValue(t.Amount.StringFixed(2))
		row.AddCell().SetValue(t.Currency)
		row.AddCell().SetValue(t.PayeeAccount)
		row.AddCell().SetValue(t.SwiftCode)
		row.AddCell().SetValue(string(t.Status))
		row.AddCell().SetValue(verifiedBy)
		row.AddCell().SetValue(t.CreatedAt.Format("2006-01-02 15:04:05"))
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions_report.xlsx"`)
	if err := file.Write(w); err != nil {
		h.log.Errorw("xlsx export", "error", err)
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
