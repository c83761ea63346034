package http

import (
	"encoding/json"
	"net/http"
	"time"

	"hesap/internal/core"
	"hesap/internal/export"
)

type balanceResponse struct {
	Balance string `json:"balance"`
}

func (s *Server) handleBalance(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, balanceResponse{
		Balance: core.FormatAmount(s.ledger.Balance()),
	})
}

type monthsResponse struct {
	Months []string `json:"months"`
}

func (s *Server) handleMonths(w http.ResponseWriter, _ *http.Request) {
	months := s.ledger.AvailableMonths()
	out := make([]string, len(months))
	for i, m := range months {
		out[i] = m.Format("2006-01")
	}
	writeJSON(w, http.StatusOK, monthsResponse{Months: out})
}

type summaryResponse struct {
	Balance           string `json:"balance"`
	InstallmentBurden string `json:"installment_burden"`
	TransactionCount  int    `json:"transaction_count"`
}

func (s *Server) handleSummary(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, summaryResponse{
		Balance:           core.FormatAmount(s.ledger.Balance()),
		InstallmentBurden: core.FormatAmount(s.ledger.InstallmentBurden()),
		TransactionCount:  len(s.ledger.Transactions()),
	})
}

type bucketDTO struct {
	Label   string `json:"label"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

type seriesResponse struct {
	Granularity string      `json:"granularity"`
	Buckets     []bucketDTO `json:"buckets"`
}

// handleSeries returns income-vs-expense buckets for the current daily,
// weekly, or monthly window.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	g, ok := parseGranularity(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid granularity, expected daily, weekly, or monthly")
		return
	}

	s.cached(w, s.analyticsKey("series", g), func() ([]byte, error) {
		buckets := s.ledger.IncomeExpenseSeries(g)
		resp := seriesResponse{Granularity: string(g), Buckets: make([]bucketDTO, len(buckets))}
		for i, b := range buckets {
			resp.Buckets[i] = bucketDTO{
				Label:   b.Label,
				Income:  core.FormatAmount(b.Income),
				Expense: core.FormatAmount(b.Expense),
			}
		}
		return json.Marshal(resp)
	})
}

type categoryTotalDTO struct {
	Category string `json:"category"`
	Icon     string `json:"icon"`
	Total    string `json:"total"`
}

type categoriesResponse struct {
	Granularity string             `json:"granularity"`
	Categories  []categoryTotalDTO `json:"categories"`
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	g, ok := parseGranularity(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid granularity, expected daily, weekly, or monthly")
		return
	}

	s.cached(w, s.analyticsKey("categories", g), func() ([]byte, error) {
		totals := s.ledger.ExpensesByCategory(g)
		resp := categoriesResponse{Granularity: string(g), Categories: toCategoryTotalDTOs(totals)}
		return json.Marshal(resp)
	})
}

type installmentLineDTO struct {
	Label           string `json:"label"`
	PerPeriodAmount string `json:"per_period_amount"`
	TotalCount      int    `json:"total_count"`
}

type installmentsResponse struct {
	Burden     string               `json:"burden"`
	Lines      []installmentLineDTO `json:"lines"`
	ByCategory []categoryTotalDTO   `json:"by_category"`
}

// handleInstallments reports the recurring installment burden, every plan,
// and the per-category breakdown.
func (s *Server) handleInstallments(w http.ResponseWriter, _ *http.Request) {
	s.cached(w, "installments", func() ([]byte, error) {
		lines := s.ledger.InstallmentListing()
		resp := installmentsResponse{
			Burden:     core.FormatAmount(s.ledger.InstallmentBurden()),
			Lines:      make([]installmentLineDTO, len(lines)),
			ByCategory: toCategoryTotalDTOs(s.ledger.InstallmentsByCategory()),
		}
		for i, l := range lines {
			resp.Lines[i] = installmentLineDTO{
				Label:           l.Label,
				PerPeriodAmount: core.FormatAmount(l.PerPeriodAmount),
				TotalCount:      l.TotalCount,
			}
		}
		return json.Marshal(resp)
	})
}

// analyticsKey builds a cache key carrying the current window start, so an
// entry cached just before a day, week, or month rollover cannot outlive its
// window.
func (s *Server) analyticsKey(kind string, g core.Granularity) string {
	return kind + ":" + string(g) + ":" + s.ledger.WindowStart(g).Format("2006-01-02")
}

func toCategoryTotalDTOs(totals []core.CategoryTotal) []categoryTotalDTO {
	out := make([]categoryTotalDTO, len(totals))
	for i, ct := range totals {
		out[i] = categoryTotalDTO{
			Category: string(ct.Category),
			Icon:     ct.Category.Icon(),
			Total:    core.FormatAmount(ct.Total),
		}
	}
	return out
}

type budgetReportRequest struct {
	Amount    string    `json:"amount"`
	Category  string    `json:"category"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

type budgetReportResponse struct {
	Category   string `json:"category"`
	Amount     string `json:"amount"`
	Spent      string `json:"spent"`
	Remaining  string `json:"remaining"`
	OverBudget bool   `json:"over_budget"`
}

// handleBudgetReport checks a category spending cap against the expense log.
// The report is derived on demand; nothing is persisted.
func (s *Server) handleBudgetReport(w http.ResponseWriter, r *http.Request) {
	var req budgetReportRequest
	if !decodeBody(w, r, &req) {
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	budget, err := core.NewBudget(amount, core.Category(req.Category), req.StartDate, req.EndDate)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	report := s.ledger.BudgetReport(budget)
	writeJSON(w, http.StatusOK, budgetReportResponse{
		Category:   string(report.Category),
		Amount:     core.FormatAmount(report.Amount),
		Spent:      core.FormatAmount(report.SpentAmount),
		Remaining:  core.FormatAmount(report.Remaining()),
		OverBudget: report.OverBudget(),
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="transactions-`+time.Now().Format("2006-01-02")+`.csv"`)

	if err := export.WriteTransactions(w, s.ledger.Transactions()); err != nil {
		// Headers are already out; the truncated body is all we can signal.
		writeError(w, http.StatusInternalServerError, "export failed")
	}
}
