package api

import (
	"encoding/json"
	"net/http"
)

type ErrorResponse struct {
	Error string `json:"error" example:"Not authenticated"`
}

type ResultResponse struct {
	Success  bool   `json:"success" example:"true"`
	Filename string `json:"filename,omitempty" example:"V1StGXR8_Z5jdHi6B-myT.jpg"`
	Error    string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ResultResponse{Success: false, Error: message})
}
