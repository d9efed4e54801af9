package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/veridian/gatepass/internal/domain"
	"github.com/veridian/gatepass/internal/http/response"
	"github.com/veridian/gatepass/pkg/auth"
)

// CreatePackage logs a package arrival at the gate office and notifies the
// owner. Image is base64 in the JSON body.
func (h *Handlers) CreatePackage(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	var req domain.CreatePackageReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid JSON format")
		return
	}

	pkg, err := h.packages.Create(r.Context(), claims.CommunityID, &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, pkg)
}

// ListPackages lists the caller's packages. Admins may list another
// resident's with ?user_id=.
func (h *Handlers) ListPackages(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	userID := claims.Sub
	if raw := r.URL.Query().Get("user_id"); raw != "" && claims.Role == auth.RoleAdmin {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(w, "Invalid user_id parameter")
			return
		}
		userID = parsed
	}

	packages, err := h.packages.ListByUser(r.Context(), claims.CommunityID, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if packages == nil {
		packages = []domain.Package{}
	}

	writeJSON(w, http.StatusOK, packages)
}

// PickPackage marks a package as collected and emails the owner the stored
// drop-off photo.
func (h *Handlers) PickPackage(w http.ResponseWriter, r *http.Request) {
	claims := getClaims(r)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid package ID")
		return
	}

	pkg, err := h.packages.MarkPicked(r.Context(), claims.CommunityID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pkg)
}
