package web

import (
	"encoding/gob"
	"net/http"

	"github.com/gorilla/sessions"
)

const (
	sessionName = "aptmgr_session"
	usernameKey = "username"

	noticeError   = "error"
	noticeSuccess = "success"
)

// Notice is a one-shot user-facing message queued by a handler and shown on
// the next rendered page only.
type Notice struct {
	Level   string
	Message string
}

func init() {
	gob.Register(Notice{})
}

// session returns the request's session. Decode failures (stale or tampered
// cookies) yield a fresh session rather than an error.
func (h *Handler) session(r *http.Request) *sessions.Session {
	sess, _ := h.sessions.Get(r, sessionName)
	return sess
}

// flash queues a one-shot notice for the next rendered page.
func (h *Handler) flash(w http.ResponseWriter, r *http.Request, level, message string) {
	sess := h.session(r)
	sess.AddFlash(Notice{Level: level, Message: message})
	h.saveSession(w, r, sess)
}

// flashErrors queues each validation error as its own notice.
func (h *Handler) flashErrors(w http.ResponseWriter, r *http.Request, errs []string) {
	sess := h.session(r)
	for _, msg := range errs {
		sess.AddFlash(Notice{Level: noticeError, Message: msg})
	}
	h.saveSession(w, r, sess)
}

// popNotices drains the notice queue. Called once per render so every notice
// is displayed exactly once.
func (h *Handler) popNotices(w http.ResponseWriter, r *http.Request) []Notice {
	sess := h.session(r)
	flashes := sess.Flashes()
	if len(flashes) > 0 {
		h.saveSession(w, r, sess)
	}

	notices := make([]Notice, 0, len(flashes))
	for _, f := range flashes {
		if n, ok := f.(Notice); ok {
			notices = append(notices, n)
		}
	}
	return notices
}

// signedInUser returns the session's authenticated username, if any.
func (h *Handler) signedInUser(r *http.Request) (string, bool) {
	sess := h.session(r)
	username, ok := sess.Values[usernameKey].(string)
	return username, ok && username != ""
}

func (h *Handler) saveSession(w http.ResponseWriter, r *http.Request, sess *sessions.Session) {
	if err := h.sessions.Save(r, w, sess); err != nil {
		h.logger.Error("failed to save session", "error", err)
	}
}
