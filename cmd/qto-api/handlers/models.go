// Package handlers provides HTTP handlers for the quantity API.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/aggregate"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/answer"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/export"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/ingest"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/observability"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/service"
	"github.com/spherical-ai/spherical/libs/quantity-engine/internal/storage"
)

// ModelHandler serves model import, summaries and questions.
type ModelHandler struct {
	logger         *observability.Logger
	svc            *service.Service
	sessions       *sessionStore
	maxUploadBytes int64
}

// NewModelHandler creates a new model handler.
func NewModelHandler(logger *observability.Logger, svc *service.Service, maxUploadBytes int64) *ModelHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 64 << 20
	}
	return &ModelHandler{
		logger:         logger,
		svc:            svc,
		sessions:       newSessionStore(0),
		maxUploadBytes: maxUploadBytes,
	}
}

// ModelDTO describes a stored model.
type ModelDTO struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Fingerprint  string    `json:"fingerprint"`
	Schema       string    `json:"schema,omitempty"`
	ElementCount int       `json:"elementCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

// GroupDTO is the rollup of one element type.
type GroupDTO struct {
	Type            string  `json:"type"`
	Count           int     `json:"count"`
	QuantifiedCount int     `json:"quantifiedCount"`
	TotalArea       float64 `json:"totalArea"`
	TotalVolume     float64 `json:"totalVolume"`
	Confidence      string  `json:"confidence"`
}

// PlasteringDTO is the plastering aggregate.
type PlasteringDTO struct {
	WallCount       int     `json:"wallCount"`
	QuantifiedWalls int     `json:"quantifiedWalls"`
	SingleFaceArea  float64 `json:"singleFaceArea"`
	Faces           int     `json:"faces"`
	Area            float64 `json:"area"`
	Confidence      string  `json:"confidence"`
}

// SummaryDTO is a model with its snapshot.
type SummaryDTO struct {
	Model      ModelDTO            `json:"model"`
	Info       aggregate.ModelInfo `json:"info"`
	Groups     []GroupDTO          `json:"groups"`
	Plastering PlasteringDTO       `json:"plastering"`
	Dropped    []aggregate.Dropped `json:"dropped"`
	Existing   bool                `json:"existing,omitempty"`
}

// QueryRequestDTO is the body of a question.
type QueryRequestDTO struct {
	Question  string `json:"question"`
	SessionID string `json:"sessionId,omitempty"`
}

// QueryResponseDTO is the answer to a question.
type QueryResponseDTO struct {
	SessionID string         `json:"sessionId"`
	Intent    string         `json:"intent"`
	Rule      string         `json:"rule,omitempty"`
	Answer    string         `json:"answer"`
	Payload   answer.Payload `json:"payload"`
}

// Import handles POST /models. The body is an element export; the optional
// name query parameter overrides the model name.
func (h *ModelHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	doc, err := ingest.Decode(http.MaxBytesReader(w, r.Body, h.maxUploadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "export too large", err.Error())
			return
		}
		h.writeError(w, http.StatusBadRequest, "invalid element export", err.Error())
		return
	}
	if name := r.URL.Query().Get("name"); name != "" {
		doc.Name = name
	}
	if doc.Name == "" {
		doc.Name = "untitled"
	}

	m, snap, existing, err := h.svc.Import(ctx, doc, "")
	if err != nil {
		h.logger.WithContext(ctx).Error().Err(err).Msg("import failed")
		h.writeError(w, http.StatusInternalServerError, "import failed", err.Error())
		return
	}

	status := http.StatusCreated
	if existing {
		status = http.StatusOK
	}
	dto := toSummaryDTO(m, snap)
	dto.Existing = existing
	h.writeJSON(w, status, dto)
}

// List handles GET /models.
func (h *ModelHandler) List(w http.ResponseWriter, r *http.Request) {
	models, err := h.svc.Store.Models.List(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "list models failed", err.Error())
		return
	}

	dtos := make([]ModelDTO, 0, len(models))
	for _, m := range models {
		dtos = append(dtos, toModelDTO(m))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"models": dtos})
}

// Summary handles GET /models/{modelId}/summary.
func (h *ModelHandler) Summary(w http.ResponseWriter, r *http.Request) {
	m, snap, ok := h.load(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, toSummaryDTO(m, snap))
}

// Query handles POST /models/{modelId}/query.
func (h *ModelHandler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req QueryRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Question == "" {
		h.writeError(w, http.StatusBadRequest, "question is required", "")
		return
	}
	if req.SessionID == "" {
		req.SessionID = r.Header.Get("X-Session-ID")
	}

	m, snap, ok := h.load(w, r)
	if !ok {
		return
	}

	sess := h.sessions.get(req.SessionID, h.svc.Engine, snap)
	a, err := h.svc.Ask(ctx, m, sess, req.Question)
	if err != nil {
		h.writeError(w, http.StatusServiceUnavailable, "query failed", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, QueryResponseDTO{
		SessionID: sess.ID(),
		Intent:    string(a.Payload.Intent),
		Rule:      a.Query.Rule,
		Answer:    a.Text,
		Payload:   a.Payload,
	})
}

// History handles GET /models/{modelId}/history.
func (h *ModelHandler) History(w http.ResponseWriter, r *http.Request) {
	m, ok := h.find(w, r)
	if !ok {
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer", "")
			return
		}
		limit = n
	}

	entries, err := h.svc.History(r.Context(), m, limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "list history failed", err.Error())
		return
	}
	if entries == nil {
		entries = []*storage.QueryLogEntry{}
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// Export handles GET /models/{modelId}/export and streams the take-off
// workbook.
func (h *ModelHandler) Export(w http.ResponseWriter, r *http.Request) {
	m, snap, ok := h.load(w, r)
	if !ok {
		return
	}

	f, err := export.Workbook(snap)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "build workbook failed", err.Error())
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", m.Name+".xlsx"))
	if err := f.Write(w); err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("write workbook failed")
	}
}

// Delete handles DELETE /models/{modelId}.
func (h *ModelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	m, ok := h.find(w, r)
	if !ok {
		return
	}
	if err := h.svc.Store.Models.Delete(r.Context(), m.ID); err != nil {
		h.writeError(w, http.StatusInternalServerError, "delete failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ModelHandler) find(w http.ResponseWriter, r *http.Request) (*storage.Model, bool) {
	m, err := h.svc.FindModel(r.Context(), chi.URLParam(r, "modelId"))
	switch {
	case err == nil:
		return m, true
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, service.ErrNoModels):
		h.writeError(w, http.StatusNotFound, "model not found", "")
	default:
		h.writeError(w, http.StatusInternalServerError, "find model failed", err.Error())
	}
	return nil, false
}

func (h *ModelHandler) load(w http.ResponseWriter, r *http.Request) (*storage.Model, *aggregate.Snapshot, bool) {
	m, ok := h.find(w, r)
	if !ok {
		return nil, nil, false
	}
	snap, err := h.svc.Snapshot(r.Context(), m)
	if err != nil {
		h.logger.WithContext(r.Context()).Error().Err(err).Msg("snapshot failed")
		h.writeError(w, http.StatusInternalServerError, "load model failed", err.Error())
		return nil, nil, false
	}
	return m, snap, true
}

func toModelDTO(m *storage.Model) ModelDTO {
	return ModelDTO{
		ID:           m.ID.String(),
		Name:         m.Name,
		Fingerprint:  m.Fingerprint,
		Schema:       m.Schema,
		ElementCount: m.ElementCount,
		CreatedAt:    m.CreatedAt,
	}
}

func toSummaryDTO(m *storage.Model, snap *aggregate.Snapshot) SummaryDTO {
	groups := snap.Groups()
	dto := SummaryDTO{
		Model:   toModelDTO(m),
		Info:    snap.Model(),
		Groups:  make([]GroupDTO, 0, len(groups)),
		Dropped: snap.Dropped(),
	}
	for _, t := range snap.Types() {
		g := groups[t]
		dto.Groups = append(dto.Groups, GroupDTO{
			Type:            string(t),
			Count:           g.Count,
			QuantifiedCount: g.QuantifiedCount,
			TotalArea:       g.TotalArea,
			TotalVolume:     g.TotalVolume,
			Confidence:      g.LowestConfidence.String(),
		})
	}
	if dto.Dropped == nil {
		dto.Dropped = []aggregate.Dropped{}
	}

	p := snap.Plastering()
	dto.Plastering = PlasteringDTO{
		WallCount:       p.WallCount,
		QuantifiedWalls: p.QuantifiedWalls,
		SingleFaceArea:  p.SingleFaceArea,
		Faces:           p.Faces,
		Area:            p.Area,
		Confidence:      p.LowestConfidence.String(),
	}
	return dto
}

func (h *ModelHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

func (h *ModelHandler) writeError(w http.ResponseWriter, status int, message, detail string) {
	resp := map[string]string{
		"error":   message,
		"message": message,
	}
	if detail != "" {
		resp["detail"] = detail
	}
	h.writeJSON(w, status, resp)
}
