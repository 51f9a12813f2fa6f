package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tax-agent/service"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// decodePost checks method and content type and decodes the JSON body into
// dst. It writes the error response itself and reports whether to continue.
func decodePost(w http.ResponseWriter, r *http.Request, dst any) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}

	contentType := r.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return false
	}

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		log.Debugf("error decoding request body on %s: %v", r.URL.Path, err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	// Encode into a buffer first so a failure can still become a 500.
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		log.Errorf("error encoding response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Warnf("error writing response: %v", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, service.ErrInvalidInput) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	log.Errorf("%s failed: %v", r.URL.Path, err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
