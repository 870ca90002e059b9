// Package httpx provides HTTP response utilities following RFC7807 problem details.
package httpx

import (
	"encoding/json"
	"net/http"
)

// ProblemDetail represents RFC7807 problem details.
type ProblemDetail struct {
	Type   string `json:"type,omitempty"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// ActionResult is the envelope returned by admin action endpoints.
// Count is only populated by batch operations such as the reading import.
type ActionResult struct {
	Success bool   `json:"success,omitempty"`
	Count   int    `json:"count,omitempty"`
	Error   string `json:"error,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK reports a successful action.
func OK(w http.ResponseWriter) {
	JSON(w, http.StatusOK, ActionResult{Success: true})
}

// OKCount reports a successful batch action with the number of rows affected.
func OKCount(w http.ResponseWriter, count int) {
	JSON(w, http.StatusOK, ActionResult{Success: true, Count: count})
}

// Problem sends an RFC7807 problem details response.
func Problem(w http.ResponseWriter, status int, title, detail string) {
	JSON(w, status, ProblemDetail{
		Title:  title,
		Status: status,
		Detail: detail,
	})
}
