package http

import (
	"net/http"
	"strconv"

	"tax-agent/domain"
	"tax-agent/service"
)

type TaxHandler struct {
	service *service.TaxService
}

func NewTaxHandler(service *service.TaxService) *TaxHandler {
	return &TaxHandler{service: service}
}

func (h *TaxHandler) Compute(w http.ResponseWriter, r *http.Request) {
	var input domain.ComputeTaxInput
	if !decodePost(w, r, &input) {
		return
	}

	result, err := h.service.Compute(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TaxHandler) Savings(w http.ResponseWriter, r *http.Request) {
	var input domain.SavingsInput
	if !decodePost(w, r, &input) {
		return
	}

	result, err := h.service.Savings(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TaxHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var input domain.PlanInput
	if !decodePost(w, r, &input) {
		return
	}

	result, err := h.service.Plan(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TaxHandler) Compare(w http.ResponseWriter, r *http.Request) {
	var input domain.CompareInput
	if !decodePost(w, r, &input) {
		return
	}

	result, err := h.service.CompareRegimes(r.Context(), input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Sections lists deduction sections, optionally only those of ?regime=.
func (h *TaxHandler) Sections(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	raw := r.URL.Query().Get("regime")
	if raw == "" {
		writeJSON(w, http.StatusOK, service.Sections())
		return
	}

	regime := domain.Regime(raw)
	if !regime.Valid() {
		http.Error(w, "regime must be old or new", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, service.EligibleSections(regime))
}

func (h *TaxHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	records, err := h.service.History(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
