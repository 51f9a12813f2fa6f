package http

import (
	"net/http"

	"tax-agent/domain"
	"tax-agent/service"
)

type GSTHandler struct {
	service *service.GSTService
}

func NewGSTHandler(service *service.GSTService) *GSTHandler {
	return &GSTHandler{service: service}
}

func (h *GSTHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var input domain.GSTInput
	if !decodePost(w, r, &input) {
		return
	}

	result, err := h.service.Calculate(input)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
