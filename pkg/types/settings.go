package types

import (
	"fmt"
	"time"
)

// TrackerSettings is the user-editable configuration surface. It is
// persisted to the settings table and hot-applied: saving new values
// while tracking is enabled restarts both cadences with the new periods.
type TrackerSettings struct {
	TrackingEnabled bool `json:"tracking_enabled"`

	// CaptureIntervalSeconds is the screenshot cadence period.
	CaptureIntervalSeconds int `json:"capture_interval_seconds"`

	// AnalysisIntervalSeconds is the classification cadence period,
	// typically a multiple of the capture interval.
	AnalysisIntervalSeconds int `json:"analysis_interval_seconds"`

	// SimilarityThreshold is a percentage in [0, 100]. A capture whose
	// similarity to the previous one meets or exceeds it is not analyzed.
	// Zero disables the gate.
	SimilarityThreshold float64 `json:"similarity_threshold"`

	Provider      string `json:"provider"`
	ModelEndpoint string `json:"model_endpoint"`
	ModelName     string `json:"model_name"`
	APIKey        string `json:"api_key"`
}

// DefaultTrackerSettings returns the settings used before the user has
// saved anything.
func DefaultTrackerSettings() TrackerSettings {
	return TrackerSettings{
		TrackingEnabled:         false,
		CaptureIntervalSeconds:  30,
		AnalysisIntervalSeconds: 300,
		SimilarityThreshold:     95,
		Provider:                "openai",
		ModelEndpoint:           "https://api.openai.com",
		ModelName:               "gpt-4o-mini",
	}
}

// Validate rejects settings the tracker cannot run with. Intervals must
// be positive; the threshold must stay within the percentage range.
func (s TrackerSettings) Validate() error {
	if s.CaptureIntervalSeconds <= 0 {
		return fmt.Errorf("capture interval must be positive, got %d", s.CaptureIntervalSeconds)
	}
	if s.AnalysisIntervalSeconds <= 0 {
		return fmt.Errorf("analysis interval must be positive, got %d", s.AnalysisIntervalSeconds)
	}
	if s.SimilarityThreshold < 0 || s.SimilarityThreshold > 100 {
		return fmt.Errorf("similarity threshold must be in [0, 100], got %g", s.SimilarityThreshold)
	}
	return nil
}

// CaptureInterval returns the capture cadence as a duration.
func (s TrackerSettings) CaptureInterval() time.Duration {
	return time.Duration(s.CaptureIntervalSeconds) * time.Second
}

// AnalysisInterval returns the analysis cadence as a duration.
func (s TrackerSettings) AnalysisInterval() time.Duration {
	return time.Duration(s.AnalysisIntervalSeconds) * time.Second
}

// Redacted returns a copy safe for logging and API responses, with the
// API key masked.
func (s TrackerSettings) Redacted() TrackerSettings {
	if len(s.APIKey) > 8 {
		s.APIKey = s.APIKey[:8] + "..."
	} else if s.APIKey != "" {
		s.APIKey = "..."
	}
	return s
}
