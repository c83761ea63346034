package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"hesap/internal/core"
)

type createTransactionRequest struct {
	Amount                 string    `json:"amount"`
	Date                   time.Time `json:"date"`
	Type                   string    `json:"type"`
	Category               string    `json:"category"`
	Note                   string    `json:"note"`
	InstallmentCount       *int      `json:"installment_count"`
	InstallmentPaymentDate time.Time `json:"installment_payment_date"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	date := req.Date
	if date.IsZero() {
		date = time.Now()
	}

	tx, err := s.ledger.AddTransaction(r.Context(), core.NewTransactionParams{
		Amount:                 amount,
		Date:                   date,
		Type:                   core.TransactionType(req.Type),
		Category:               core.Category(req.Category),
		Note:                   req.Note,
		InstallmentCount:       req.InstallmentCount,
		InstallmentPaymentDate: req.InstallmentPaymentDate,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateAnalytics()
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// handleListTransactions lists the ledger, optionally narrowed to one
// calendar month via ?month=YYYY-MM.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	if monthParam := r.URL.Query().Get("month"); monthParam != "" {
		ref, err := parseMonth(monthParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid month, expected YYYY-MM")
			return
		}
		writeJSON(w, http.StatusOK, toTransactionDTOs(s.ledger.TransactionsForMonth(ref)))
		return
	}

	writeJSON(w, http.StatusOK, toTransactionDTOs(s.ledger.Transactions()))
}

func (s *Server) handlePayInstallment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	tx, err := s.ledger.PayInstallment(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateAnalytics()
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}

type reschedulePaymentRequest struct {
	PaymentDate time.Time `json:"payment_date"`
}

func (s *Server) handleReschedulePayment(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id")
		return
	}

	var req reschedulePaymentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.PaymentDate.IsZero() {
		writeError(w, http.StatusBadRequest, "payment_date is required")
		return
	}

	tx, err := s.ledger.RescheduleInstallment(r.Context(), id, req.PaymentDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	s.invalidateAnalytics()
	writeJSON(w, http.StatusOK, toTransactionDTO(tx))
}
