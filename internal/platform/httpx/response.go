// Package httpx holds the response envelope and middleware shared by the
// three service HTTP adapters.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

// Envelope is the uniform response body for every externally visible
// endpoint. Data stays a pointer-friendly any so aggregates can carry an
// explicit null field when a dependency degraded.
type Envelope struct {
	Success  bool              `json:"success"`
	Message  string            `json:"message"`
	Data     any               `json:"data,omitempty"`
	Error    string            `json:"error,omitempty"`
	Warnings map[string]string `json:"warnings,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteSuccess(w http.ResponseWriter, status int, message string, data any) {
	WriteJSON(w, status, Envelope{Success: true, Message: message, Data: data})
}

// WriteDegraded is the graceful-degradation shape: success with data present
// and a warnings map naming each optional dependency that failed.
func WriteDegraded(w http.ResponseWriter, message string, data any, warnings map[string]string) {
	WriteJSON(w, http.StatusOK, Envelope{Success: true, Message: message, Data: data, Warnings: warnings})
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Envelope{Success: false, Message: message})
}

func WriteErrorDetail(w http.ResponseWriter, status int, message, detail string) {
	WriteJSON(w, status, Envelope{Success: false, Message: message, Error: detail})
}

// DecodeBody parses a single JSON value and rejects unknown fields so typos
// in request payloads fail loudly instead of silently dropping data.
func DecodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}

func ParseIntDefault(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
