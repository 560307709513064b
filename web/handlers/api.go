package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/scrypster/focusd/internal/capture"
	"github.com/scrypster/focusd/internal/classify"
	"github.com/scrypster/focusd/internal/config"
	"github.com/scrypster/focusd/internal/importer"
	"github.com/scrypster/focusd/internal/llm"
	"github.com/scrypster/focusd/internal/services"
	"github.com/scrypster/focusd/internal/storage"
	"github.com/scrypster/focusd/internal/timeline"
	"github.com/scrypster/focusd/internal/tracker"
	"github.com/scrypster/focusd/pkg/types"
)

// maxImportBytes bounds the accepted size of an uploaded taxonomy file.
const maxImportBytes = 1 << 20

// APIHandlers holds dependencies for the REST API.
type APIHandlers struct {
	store      storage.Store
	cfg        *config.Config
	trk        *tracker.Tracker
	classifier *classify.Classifier
	settings   *services.SettingsService
	capturer   capture.Capturer
}

// NewAPIHandlers creates API handlers backed by the given store and
// tracker. capturer serves manual test captures and may be a caching
// wrapper.
func NewAPIHandlers(store storage.Store, cfg *config.Config, trk *tracker.Tracker, classifier *classify.Classifier, settings *services.SettingsService, capturer capture.Capturer) *APIHandlers {
	return &APIHandlers{
		store:      store,
		cfg:        cfg,
		trk:        trk,
		classifier: classifier,
		settings:   settings,
		capturer:   capturer,
	}
}

// GetStatus handles GET /api/status.
func (h *APIHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	events, err := h.store.CountEvents(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to count events", err)
		return
	}
	themes, err := h.store.ListThemes(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list themes", err)
		return
	}

	resp := StatusResponse{
		Tracker: h.trk.Status(),
		Events:  events,
		Themes:  len(themes),
	}
	if bs, ok := h.classifier.Completer().(interface{ BreakerState() string }); ok {
		resp.BreakerState = bs.BreakerState()
	}
	respondJSON(w, http.StatusOK, resp)
}

// StartTracking handles POST /api/tracking/start.
func (h *APIHandlers) StartTracking(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Load(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load settings", err)
		return
	}

	if err := h.trk.Start(r.Context(), settings); err != nil {
		switch {
		case errors.Is(err, tracker.ErrAlreadyRunning):
			respondError(w, http.StatusConflict, "tracking already running", err)
		case errors.Is(err, classify.ErrEmptyTaxonomy):
			respondError(w, http.StatusPreconditionFailed, "no themes configured", err)
		default:
			respondError(w, http.StatusInternalServerError, "failed to start tracking", err)
		}
		return
	}

	settings.TrackingEnabled = true
	if err := h.settings.Save(r.Context(), settings); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to persist tracking state", err)
		return
	}
	respondJSON(w, http.StatusOK, h.trk.Status())
}

// StopTracking handles POST /api/tracking/stop.
func (h *APIHandlers) StopTracking(w http.ResponseWriter, r *http.Request) {
	h.trk.Stop()

	settings, err := h.settings.Load(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load settings", err)
		return
	}
	settings.TrackingEnabled = false
	if err := h.settings.Save(r.Context(), settings); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to persist tracking state", err)
		return
	}
	respondJSON(w, http.StatusOK, h.trk.Status())
}

// ListThemes handles GET /api/themes.
func (h *APIHandlers) ListThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.store.ListThemes(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list themes", err)
		return
	}
	respondJSON(w, http.StatusOK, ThemesResponse{Themes: themes, Total: len(themes)})
}

// CreateTheme handles POST /api/themes.
func (h *APIHandlers) CreateTheme(w http.ResponseWriter, r *http.Request) {
	var theme types.Theme
	if err := json.NewDecoder(r.Body).Decode(&theme); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	if err := h.store.AddTheme(r.Context(), &theme); err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "invalid theme", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to create theme", err)
		return
	}
	respondJSON(w, http.StatusCreated, theme)
}

// UpdateTheme handles PUT /api/themes/{id}.
func (h *APIHandlers) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid theme id", err)
		return
	}

	var theme types.Theme
	if err := json.NewDecoder(r.Body).Decode(&theme); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}
	theme.ID = id

	if err := h.store.UpdateTheme(r.Context(), theme); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			respondError(w, http.StatusNotFound, "theme not found", err)
		case errors.Is(err, storage.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, "invalid theme", err)
		default:
			respondError(w, http.StatusInternalServerError, "failed to update theme", err)
		}
		return
	}
	respondJSON(w, http.StatusOK, theme)
}

// DeleteTheme handles DELETE /api/themes/{id}.
func (h *APIHandlers) DeleteTheme(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid theme id", err)
		return
	}

	if err := h.store.DeleteTheme(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respondError(w, http.StatusNotFound, "theme not found", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to delete theme", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportThemes handles POST /api/themes/import with a YAML body.
// The uploaded taxonomy replaces the stored one atomically.
func (h *APIHandlers) ImportThemes(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read body", err)
		return
	}

	themes, err := importer.ParseThemes(data)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid themes file", err)
		return
	}

	if err := h.store.ReplaceThemes(r.Context(), themes); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to replace themes", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"imported": len(themes)})
}

// ExportThemes handles GET /api/themes/export, returning the taxonomy
// as a YAML document.
func (h *APIHandlers) ExportThemes(w http.ResponseWriter, r *http.Request) {
	themes, err := h.store.ListThemes(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list themes", err)
		return
	}

	data, err := importer.ExportThemes(themes)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to export themes", err)
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// ListEvents handles GET /api/events?from=&to= with RFC 3339 bounds.
func (h *APIHandlers) ListEvents(w http.ResponseWriter, r *http.Request) {
	var from, to time.Time
	var err error

	if v := r.URL.Query().Get("from"); v != "" {
		if from, err = time.Parse(time.RFC3339, v); err != nil {
			respondError(w, http.StatusBadRequest, "invalid 'from' timestamp", err)
			return
		}
	}
	if v := r.URL.Query().Get("to"); v != "" {
		if to, err = time.Parse(time.RFC3339, v); err != nil {
			respondError(w, http.StatusBadRequest, "invalid 'to' timestamp", err)
			return
		}
	}

	events, err := h.store.ListEvents(r.Context(), from, to)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list events", err)
		return
	}
	respondJSON(w, http.StatusOK, EventsResponse{Events: events, Total: len(events)})
}

// GetTimeline handles GET /api/timeline?date=&zoom=&pan=. It rebuilds
// the day's segments from stored events and places them on the pixel
// axis at the requested zoom and pan.
func (h *APIHandlers) GetTimeline(w http.ResponseWriter, r *http.Request) {
	day := time.Now().Local()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid 'date', want YYYY-MM-DD", err)
			return
		}
		day = parsed
	}

	mapper := timeline.NewMapper()
	if v := r.URL.Query().Get("zoom"); v != "" {
		z, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid 'zoom'", err)
			return
		}
		mapper.SetZoom(z)
	}
	if v := r.URL.Query().Get("pan"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid 'pan'", err)
			return
		}
		mapper.SetPan(p)
	}

	y, m, d := day.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, time.Local)
	dayEnd := dayStart.AddDate(0, 0, 1)

	events, err := h.store.ListEvents(r.Context(), dayStart, dayEnd)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list events", err)
		return
	}

	dateKey := dayStart.Format("2006-01-02")
	segments := timeline.GroupByDay(timeline.BuildSegments(events))[dateKey]

	views := make([]SegmentView, 0, len(segments))
	for _, seg := range segments {
		x, width := mapper.MapSegment(seg.Start, seg.End, dayStart)
		views = append(views, SegmentView{
			Start:      seg.Start.Format(time.RFC3339),
			End:        seg.End.Format(time.RFC3339),
			Theme:      seg.Theme.Path(),
			Analysis:   seg.Analysis,
			Confidence: seg.Confidence,
			Degraded:   seg.Degraded,
			X:          x,
			Width:      width,
		})
	}

	respondJSON(w, http.StatusOK, TimelineResponse{
		Date:     dateKey,
		Zoom:     mapper.Zoom(),
		Pan:      mapper.Pan(),
		DayWidth: mapper.DayWidth(),
		Segments: views,
	})
}

// GetSettings handles GET /api/settings. API keys are masked.
func (h *APIHandlers) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Load(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load settings", err)
		return
	}
	respondJSON(w, http.StatusOK, settings.Redacted())
}

// PutSettings handles PUT /api/settings. New provider settings are
// applied immediately: the vision client is rebuilt and a running
// tracker restarts with the new cadences.
func (h *APIHandlers) PutSettings(w http.ResponseWriter, r *http.Request) {
	var settings types.TrackerSettings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body", err)
		return
	}

	if err := h.settings.Save(r.Context(), settings); err != nil {
		if errors.Is(err, storage.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, "invalid settings", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "failed to save settings", err)
		return
	}

	completer, err := llm.NewVisionCompleter(settings)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid provider settings", err)
		return
	}
	h.classifier.SetCompleter(completer)

	if err := h.trk.UpdateSettings(r.Context(), settings); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to apply settings", err)
		return
	}
	respondJSON(w, http.StatusOK, settings.Redacted())
}

// TestSettings handles POST /api/settings/test, probing the configured
// provider without saving anything. An omitted body tests the stored
// settings.
func (h *APIHandlers) TestSettings(w http.ResponseWriter, r *http.Request) {
	var settings types.TrackerSettings
	body, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read body", err)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &settings); err != nil {
			respondError(w, http.StatusBadRequest, "invalid JSON body", err)
			return
		}
	} else {
		if settings, err = h.settings.Load(r.Context()); err != nil {
			respondError(w, http.StatusInternalServerError, "failed to load settings", err)
			return
		}
	}

	if err := h.settings.TestConnection(r.Context(), settings); err != nil {
		respondError(w, http.StatusBadGateway, "connection test failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// TestCapture handles POST /api/capture/test. It exercises the capture
// backend (through the TTL cache, so repeated clicks are cheap) and
// reports frame metadata without storing anything.
func (h *APIHandlers) TestCapture(w http.ResponseWriter, r *http.Request) {
	sample, err := h.capturer.Capture(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "capture failed", err)
		return
	}

	resp := map[string]interface{}{
		"captured_at": sample.CapturedAt.Format(time.RFC3339),
		"bytes":       sample.Size(),
		"format":      sample.Format,
	}
	if cached, ok := h.capturer.(*capture.CachedCapturer); ok {
		hits, misses := cached.Stats()
		resp["cache_hits"] = hits
		resp["cache_misses"] = misses
	}
	respondJSON(w, http.StatusOK, resp)
}
