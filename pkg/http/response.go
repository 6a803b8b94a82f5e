package http

import (
	"encoding/json"
	"net/http"
)

// Envelope is the JSON response shape used by every endpoint. The access
// token, when present, rides in the body; the refresh token never does.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Token   string `json:"token,omitempty"`
}

// WriteSuccess writes a success envelope with optional payload.
func WriteSuccess(w http.ResponseWriter, statusCode int, data any) {
	writeEnvelope(w, statusCode, Envelope{Success: true, Data: data})
}

// WriteSuccessMessage writes a success envelope carrying only a message.
func WriteSuccessMessage(w http.ResponseWriter, statusCode int, message string) {
	writeEnvelope(w, statusCode, Envelope{Success: true, Message: message})
}

// WriteTokenResponse writes a success envelope carrying an access token plus
// payload.
func WriteTokenResponse(w http.ResponseWriter, statusCode int, token string, data any) {
	writeEnvelope(w, statusCode, Envelope{Success: true, Data: data, Token: token})
}

// WriteFailure writes a failure envelope with the given status and message.
func WriteFailure(w http.ResponseWriter, statusCode int, message string) {
	writeEnvelope(w, statusCode, Envelope{Success: false, Message: message})
}

// WriteFailureData writes a failure envelope carrying structured data, used
// for errors that need to hand the client recovery context (e.g. unlock time).
func WriteFailureData(w http.ResponseWriter, statusCode int, message string, data any) {
	writeEnvelope(w, statusCode, Envelope{Success: false, Message: message, Data: data})
}

func writeEnvelope(w http.ResponseWriter, statusCode int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	// Encoding errors are not recoverable at this point
	_ = json.NewEncoder(w).Encode(env)
}

// Shorthand writers for the common failure classes

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusBadRequest, message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusUnauthorized, message)
}

func WriteForbidden(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusForbidden, message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusNotFound, message)
}

func WriteConflict(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusConflict, message)
}

func WriteTooManyRequests(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusTooManyRequests, message)
}

func WriteServiceUnavailable(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusServiceUnavailable, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteFailure(w, http.StatusInternalServerError, message)
}
