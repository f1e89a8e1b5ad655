package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/artpar/aptmgr/internal/core/auth"
)

// requireSignIn gates a handler behind an authenticated session. Requests
// without an identity get a notice and a redirect to the sign-in page, with
// the originally requested path and query preserved so sign-in can resume the
// navigation. The guard knows nothing about the handler it wraps.
func (h *Handler) requireSignIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		username, ok := h.signedInUser(r)
		if !ok {
			h.flash(w, r, noticeError, "You must be signed in to view that page.")
			http.Redirect(w, r,
				"/users/signin?next="+url.QueryEscape(r.URL.RequestURI()),
				http.StatusFound)
			return
		}

		ctx := auth.WithIdentity(r.Context(), auth.Identity{Username: username})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// safeReturnPath accepts only same-site absolute paths as a post-sign-in
// destination, rejecting external and protocol-relative URLs.
func safeReturnPath(next string) bool {
	return strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//")
}
