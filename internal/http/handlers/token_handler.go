package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/veridian/gatepass/internal/http/response"
)

type pushTokenReq struct {
	PushToken string `json:"pushToken"`
}

// SavePushToken registers (or overwrites) the caller's push token.
func (h *Handlers) SavePushToken(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	var req pushTokenReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}
	if req.PushToken == "" {
		response.BadRequest(w, "Missing pushToken")
		return
	}

	if err := h.users.SavePushToken(r.Context(), claims.Sub, req.PushToken); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// DeletePushToken clears the caller's push token, typically on logout.
func (h *Handlers) DeletePushToken(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	if err := h.users.ClearPushToken(r.Context(), claims.Sub); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
