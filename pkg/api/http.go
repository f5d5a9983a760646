package api

import (
	"encoding/json"
	"net/http"
)

// WriteError отправляет ErrorResponse с заданным HTTP статусом
func WriteError(w http.ResponseWriter, status int, resp ErrorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
