package handlers

import (
	"crypto/subtle"
	"net/http"

	"github.com/veridian/gatepass/internal/http/response"
)

// BookingReminder is the external cron trigger. The caller authenticates with
// a shared secret in the x-cron-secret header or the secret query parameter.
// The deployment must fire it exactly once per minute; the reminder window
// math depends on that cadence.
func (h *Handlers) BookingReminder(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("x-cron-secret")
	if secret == "" {
		secret = r.URL.Query().Get("secret")
	}

	if h.cronSecret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.cronSecret)) != 1 {
		response.Unauthorized(w, "Invalid cron secret")
		return
	}

	sent, err := h.reminders.Run(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":   true,
		"sent": sent,
	})
}
