package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/veridian/gatepass/internal/domain"
	"github.com/veridian/gatepass/internal/http/response"
)

// CreateVisitor registers an expected visitor; the caller becomes the host.
func (h *Handlers) CreateVisitor(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	var req domain.CreateVisitorReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	visitor, err := h.visitors.Create(r.Context(), claims.CommunityID, claims.Sub, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, domain.NewVisitorDTO(*visitor))
}

// ListVisitors returns visitors for the caller's community, newest visit
// date first. Filters: from, to (YYYY-MM-DD, inclusive), status, type.
func (h *Handlers) ListVisitors(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	var filter domain.VisitorFilter
	if raw := r.URL.Query().Get("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(w, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		filter.From = &t
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(w, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		// Inclusive upper bound on the visit date
		end := t.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := domain.ParseVisitorStatus(raw)
		if !ok {
			response.BadRequest(w, "Invalid status parameter")
			return
		}
		filter.Status = &status
	}
	if raw := r.URL.Query().Get("type"); raw != "" {
		visitorType, ok := domain.ParseVisitorType(raw)
		if !ok {
			response.BadRequest(w, "Invalid type parameter")
			return
		}
		filter.Type = &visitorType
	}

	visitors, err := h.visitors.List(r.Context(), claims.CommunityID, filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, visitors)
}

// ScanVisitor resolves a scanned pass token to a visitor record. Read-only;
// the gate operator issues the check-in/check-out call separately.
func (h *Handlers) ScanVisitor(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	token := r.URL.Query().Get("token")
	if token == "" {
		response.BadRequest(w, "Missing token parameter")
		return
	}

	// Gate devices may echo their configured tenant; it must agree with the
	// credential's community.
	if tenantID := r.URL.Query().Get("tenantId"); tenantID != "" && tenantID != claims.CommunityID {
		response.Forbidden(w, "Tenant mismatch")
		return
	}

	visitor, err := h.visitors.Verify(r.Context(), claims.CommunityID, token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, visitor)
}

type updateStatusReq struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// UpdateVisitorStatus performs a lifecycle transition: checked_in,
// checked_out, or pending (administrative reset).
func (h *Handlers) UpdateVisitorStatus(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if req.ID == "" {
		response.BadRequest(w, "Missing visitor id")
		return
	}

	target, ok := domain.ParseVisitorStatus(req.Status)
	if !ok {
		response.BadRequest(w, "Invalid status, expected checked_in, checked_out or pending")
		return
	}

	visitor, err := h.visitors.Transition(r.Context(), claims.CommunityID, req.ID, target)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.NewVisitorDTO(*visitor))
}

// VisitorStats aggregates the day's visitor counts. day defaults to today.
func (h *Handlers) VisitorStats(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	day := time.Now().UTC()
	if raw := r.URL.Query().Get("day"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(w, "Invalid day, expected YYYY-MM-DD")
			return
		}
		day = parsed
	}

	stats, err := h.visitors.Stats(r.Context(), claims.CommunityID, day)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
