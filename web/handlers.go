package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hubward/quotaview/domain/usage"
	"github.com/hubward/quotaview/ports"
)

// UsagePage renders the storage usage dashboard for the logged-in user.
func (h *Handler) UsagePage(w http.ResponseWriter, r *http.Request) {
	session, ok := getSession(r.Context())
	if !ok {
		h.startOAuth(w, r)
		return
	}

	record, err := h.usage.GetUsage(r.Context(), session.Username)
	if err != nil {
		errRec := usage.ErrorFor(session.Username, err)
		data := struct {
			PageData
			Message string
		}{
			PageData: h.newPageData(r.Context(), "Storage Usage"),
			Message:  errRec.Error,
		}
		h.render(w, "error", data)
		return
	}

	data := struct {
		PageData
		Record usage.Record
	}{
		PageData: h.newPageData(r.Context(), "Storage Usage"),
		Record:   record,
	}
	h.render(w, "usage", data)
}

// UsageJSON returns the current usage snapshot as JSON.
//
//	@Summary      Current storage usage
//	@Description  Returns the logged-in user's storage usage against quota.
//	@Tags         usage
//	@Produce      json
//	@Success      200  {object}  usage.Record
//	@Failure      404  {object}  usage.ErrorRecord  "no usage data recorded for this user"
//	@Failure      502  {object}  usage.ErrorRecord  "metrics backend unreachable"
//	@Router       /api/usage [get]
func (h *Handler) UsageJSON(w http.ResponseWriter, r *http.Request) {
	session, ok := getSession(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not logged in"})
		return
	}

	record, err := h.usage.GetUsage(r.Context(), session.Username)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, usage.ErrNoData) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, usage.ErrorFor(session.Username, err))
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// Logout deletes the server-side session and clears the cookie.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if err := h.sessions.Delete(r.Context(), cookie.Value); err != nil && !errors.Is(err, ports.ErrNotFound) {
			h.logger.Error().Err(err).Msg("session delete failed")
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     h.prefix,
		MaxAge:   -1,
		HttpOnly: true,
	})

	http.Redirect(w, r, h.prefix, http.StatusFound)
}

// Healthz reports liveness.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
