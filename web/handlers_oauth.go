package web

import (
	"net/http"
	"net/url"
)

// redirectURI is the path the hub sends the browser back to after consent.
// The hub matches it against the service's registered callback, so it is
// path-only and derived from the service prefix.
func (h *Handler) redirectURI() string {
	return h.prefix + "oauth_callback"
}

// startOAuth redirects the browser to the hub's authorization endpoint.
// The CSRF state lives in a short-lived cookie scoped to the service prefix.
func (h *Handler) startOAuth(w http.ResponseWriter, r *http.Request) {
	state, err := h.random.String(32)
	if err != nil {
		h.logger.Error().Err(err).Msg("state generation failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName + stateCookieSuffix,
		Value:    state,
		Path:     h.prefix,
		MaxAge:   600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	q := url.Values{
		"client_id":     {h.clientID},
		"redirect_uri":  {h.redirectURI()},
		"response_type": {"code"},
		"state":         {state},
	}
	authorizeURL := h.publicURL + "/hub/api/oauth2/authorize?" + q.Encode()

	http.Redirect(w, r, authorizeURL, http.StatusFound)
}

// OAuthCallback completes the hub OAuth flow: it verifies the CSRF state,
// trades the code for a token, resolves the hub user, and starts a session.
func (h *Handler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errCode := r.URL.Query().Get("error"); errCode != "" {
		h.logger.Warn().
			Str("error", errCode).
			Str("description", r.URL.Query().Get("error_description")).
			Msg("oauth error from hub")
		http.Error(w, "Authorization failed", http.StatusForbidden)
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		http.Error(w, "Missing code or state", http.StatusBadRequest)
		return
	}

	stateCookie, err := r.Cookie(h.cookieName + stateCookieSuffix)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != state {
		h.logger.Warn().Msg("oauth state mismatch")
		http.Error(w, "Invalid state", http.StatusForbidden)
		return
	}

	// State is single use
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName + stateCookieSuffix,
		Value:    "",
		Path:     h.prefix,
		MaxAge:   -1,
		HttpOnly: true,
	})

	accessToken, err := h.hubAuth.ExchangeCode(ctx, code, h.redirectURI())
	if err != nil {
		h.logger.Error().Err(err).Msg("oauth code exchange failed")
		http.Error(w, "Authorization failed", http.StatusBadGateway)
		return
	}

	user, err := h.hubAuth.CurrentUser(ctx, accessToken)
	if err != nil {
		h.logger.Error().Err(err).Msg("hub user lookup failed")
		http.Error(w, "Authorization failed", http.StatusBadGateway)
		return
	}

	if err := h.createSession(w, r, user.Name); err != nil {
		h.logger.Error().Err(err).Str("username", user.Name).Msg("session creation failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	h.logger.Info().Str("username", user.Name).Msg("user logged in")
	http.Redirect(w, r, h.prefix, http.StatusFound)
}
