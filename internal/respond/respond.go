// Package respond writes the API's JSON envelope:
// {"success": true, "data": ...} on success and {"error": ..., "fields": [...]} on failure.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/EmpoweredVote/barangay-admin/internal/store"
	"github.com/rs/zerolog/log"
)

type Envelope struct {
	Success    bool              `json:"success"`
	Data       any               `json:"data,omitempty"`
	Message    string            `json:"message,omitempty"`
	Pagination *store.Pagination `json:"pagination,omitempty"`
}

type ErrorBody struct {
	Error  string   `json:"error"`
	Fields []string `json:"fields,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func OK(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

func Message(w http.ResponseWriter, msg string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: msg})
}

func Page(w http.ResponseWriter, data any, p store.Pagination) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Pagination: &p})
}

func Error(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, ErrorBody{Error: msg})
}

// Fields reports a validation failure naming the offending fields.
func Fields(w http.ResponseWriter, msg string, fields []string) {
	WriteJSON(w, http.StatusBadRequest, ErrorBody{Error: msg, Fields: fields})
}

// Internal logs err and sends the client a generic message only.
func Internal(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log.Error().Err(err).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg(msg)
	Error(w, http.StatusInternalServerError, msg)
}
