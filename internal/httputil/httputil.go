// Package httputil holds small JSON response helpers shared by HTTP
// handlers.
package httputil

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON body returned for handler-level errors.
type ErrorResponse struct {
	Error string `json:"error"`
}

// WriteJSON encodes payload as the response body with the given status
// code and a JSON content type.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
