package web

import (
	"context"

	"github.com/hubward/quotaview/domain/auth"
)

type ctxKey string

const sessionKey ctxKey = "session"

// withSession adds the authenticated session to the context.
func withSession(ctx context.Context, s auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// getSession retrieves the authenticated session from context.
func getSession(ctx context.Context) (auth.Session, bool) {
	s, ok := ctx.Value(sessionKey).(auth.Session)
	return s, ok
}

// PageData holds common data for all pages.
type PageData struct {
	Title    string
	Username string
	Prefix   string
	MockMode bool
}

// newPageData creates base page data from request context.
func (h *Handler) newPageData(ctx context.Context, title string) PageData {
	data := PageData{
		Title:    title,
		Prefix:   h.prefix,
		MockMode: h.mockMode,
	}
	if s, ok := getSession(ctx); ok {
		data.Username = s.Username
	}
	return data
}
