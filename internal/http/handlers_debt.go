package http

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"hesap/internal/core"
)

type createPersonRequest struct {
	Name string `json:"name"`
}

type personDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	TotalOwed string `json:"total_owed"`
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var req createPersonRequest
	if !decodeBody(w, r, &req) {
		return
	}

	p, err := s.debts.AddPerson(r.Context(), req.Name)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, personDTO{
		ID:        p.ID.String(),
		Name:      p.Name,
		TotalOwed: "0.00",
	})
}

func (s *Server) handleListPeople(w http.ResponseWriter, _ *http.Request) {
	people := s.debts.People()
	out := make([]personDTO, len(people))
	for i, p := range people {
		out[i] = personDTO{
			ID:        p.ID.String(),
			Name:      p.Name,
			TotalOwed: core.FormatAmount(s.debts.TotalOwedTo(p.ID)),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

type createDebtRequest struct {
	PersonID string    `json:"person_id"`
	Amount   string    `json:"amount"`
	Date     time.Time `json:"date"`
}

type debtDTO struct {
	ID       string    `json:"id"`
	PersonID string    `json:"person_id"`
	Amount   string    `json:"amount"`
	Date     time.Time `json:"date"`
	IsPaid   bool      `json:"is_paid"`
	PaidDate *string   `json:"paid_date,omitempty"`
}

func toDebtDTO(d core.Debt) debtDTO {
	dto := debtDTO{
		ID:       d.ID.String(),
		PersonID: d.PersonID.String(),
		Amount:   core.FormatAmount(d.Amount),
		Date:     d.Date,
		IsPaid:   d.IsPaid,
	}
	if !d.PaidDate.IsZero() {
		s := d.PaidDate.Format(time.RFC3339)
		dto.PaidDate = &s
	}
	return dto
}

func (s *Server) handleCreateDebt(w http.ResponseWriter, r *http.Request) {
	var req createDebtRequest
	if !decodeBody(w, r, &req) {
		return
	}

	personID, err := uuid.Parse(req.PersonID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid person_id")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	d, err := s.debts.AddDebt(r.Context(), personID, amount, req.Date)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toDebtDTO(d))
}

// handleListDebts lists debts, filtered by ?status=active|paid and
// ?person_id=.
func (s *Server) handleListDebts(w http.ResponseWriter, r *http.Request) {
	var debts []core.Debt
	switch r.URL.Query().Get("status") {
	case "", "all":
		debts = append(s.debts.ActiveDebts(), s.debts.PaidDebts()...)
	case "active":
		debts = s.debts.ActiveDebts()
	case "paid":
		debts = s.debts.PaidDebts()
	default:
		writeError(w, http.StatusBadRequest, "invalid status, expected active, paid, or all")
		return
	}

	if personParam := r.URL.Query().Get("person_id"); personParam != "" {
		personID, err := uuid.Parse(personParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid person_id")
			return
		}
		debts = core.DebtsForPerson(debts, personID)
	}

	out := make([]debtDTO, len(debts))
	for i, d := range debts {
		out[i] = toDebtDTO(d)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePayDebt(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid debt id")
		return
	}

	d, err := s.debts.MarkDebtPaid(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toDebtDTO(d))
}
