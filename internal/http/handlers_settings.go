package http

import (
	"net/http"

	"expensetracker/internal/core"
)

type budgetRequest struct {
	Amount string `json:"amount"`
}

type budgetResponse struct {
	BudgetCents int64  `json:"budgetCents"`
	Budget      string `json:"budget"`
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !decodeBody(w, r, &req) {
		return
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, core.ErrInvalidBudget.Error())
		return
	}

	amount := core.Money{Cents: cents}
	if err := s.store.SetBudget(r.Context(), amount); err != nil {
		respondStoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, budgetResponse{
		BudgetCents: amount.Cents,
		Budget:      core.FormatCurrency(amount),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ResetData(r.Context()); err != nil {
		respondStoreError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	raw, err := s.store.Export()
	if err != nil {
		respondStoreError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="expense-export.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
