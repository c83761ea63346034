package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"hesap/internal/core"
	"hesap/internal/services"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeDomainError maps known domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrTransactionNotFound),
		errors.Is(err, services.ErrPersonNotFound),
		errors.Is(err, services.ErrDebtNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrInvalidAmount),
		errors.Is(err, core.ErrInvalidInstallmentCount),
		errors.Is(err, core.ErrInvalidCategory),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrNoInstallmentPlan),
		errors.Is(err, core.ErrNoRemainingInstallments),
		errors.Is(err, core.ErrEmptyName),
		errors.Is(err, core.ErrDebtAlreadyPaid),
		errors.Is(err, core.ErrInvalidBudgetWindow):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

type installmentDTO struct {
	TotalCount      int     `json:"total_count"`
	PaidCount       int     `json:"paid_count"`
	Remaining       int     `json:"remaining"`
	PerPeriodAmount string  `json:"per_period_amount"`
	PaymentDate     *string `json:"payment_date,omitempty"`
}

type transactionDTO struct {
	ID              string          `json:"id"`
	Amount          string          `json:"amount"`
	EffectiveAmount string          `json:"effective_amount"`
	Date            time.Time       `json:"date"`
	Type            string          `json:"type"`
	Category        string          `json:"category"`
	CategoryIcon    string          `json:"category_icon"`
	Note            string          `json:"note"`
	Installments    *installmentDTO `json:"installments,omitempty"`
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	dto := transactionDTO{
		ID:              t.ID.String(),
		Amount:          core.FormatAmount(t.Amount),
		EffectiveAmount: core.FormatAmount(t.EffectiveAmount()),
		Date:            t.Date,
		Type:            string(t.Type),
		Category:        string(t.Category),
		CategoryIcon:    t.Category.Icon(),
		Note:            t.Note,
	}
	if t.Installments != nil {
		inst := &installmentDTO{
			TotalCount:      t.Installments.TotalCount,
			PaidCount:       t.Installments.PaidCount,
			Remaining:       t.RemainingInstallments(),
			PerPeriodAmount: core.FormatAmount(t.Installments.PerPeriodAmount),
		}
		if !t.Installments.PaymentDate.IsZero() {
			s := t.Installments.PaymentDate.Format(time.RFC3339)
			inst.PaymentDate = &s
		}
		dto.Installments = inst
	}
	return dto
}

func toTransactionDTOs(txs []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, len(txs))
	for i, t := range txs {
		out[i] = toTransactionDTO(t)
	}
	return out
}

// parseGranularity reads the granularity query parameter, defaulting to
// monthly.
func parseGranularity(r *http.Request) (core.Granularity, bool) {
	v := strings.TrimSpace(r.URL.Query().Get("granularity"))
	if v == "" {
		return core.Monthly, true
	}
	g := core.Granularity(strings.ToLower(v))
	if !g.Valid() {
		return "", false
	}
	return g, true
}

// parseMonth reads a YYYY-MM query parameter.
func parseMonth(v string) (time.Time, error) {
	return time.Parse("2006-01", strings.TrimSpace(v))
}
