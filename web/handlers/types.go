// Package handlers provides HTTP handlers and middleware for the focusd
// API.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/scrypster/focusd/internal/tracker"
	"github.com/scrypster/focusd/pkg/types"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// StatusResponse is the response format for GET /api/status.
type StatusResponse struct {
	Tracker      tracker.Stats `json:"tracker"`
	Events       int64         `json:"events"`
	Themes       int           `json:"themes"`
	BreakerState string        `json:"breaker_state,omitempty"`
}

// SegmentView is one timeline segment with its pixel placement.
type SegmentView struct {
	Start      string  `json:"start"`
	End        string  `json:"end"`
	Theme      string  `json:"theme"`
	Analysis   string  `json:"analysis"`
	Confidence float64 `json:"confidence"`
	Degraded   bool    `json:"degraded,omitempty"`
	X          float64 `json:"x"`
	Width      float64 `json:"width"`
}

// TimelineResponse is the response format for GET /api/timeline.
type TimelineResponse struct {
	Date     string        `json:"date"`
	Zoom     float64       `json:"zoom"`
	Pan      float64       `json:"pan"`
	DayWidth float64       `json:"day_width"`
	Segments []SegmentView `json:"segments"`
}

// EventsResponse is the response format for GET /api/events.
type EventsResponse struct {
	Events []*types.ClassificationEvent `json:"events"`
	Total  int                          `json:"total"`
}

// ThemesResponse is the response format for GET /api/themes.
type ThemesResponse struct {
	Themes []types.Theme `json:"themes"`
	Total  int           `json:"total"`
}

// respondJSON writes data as a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers already sent; log and move on.
		fmt.Printf("failed to encode JSON response: %v\n", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}
	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}
	respondJSON(w, statusCode, errResp)
}
