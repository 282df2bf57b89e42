package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/lehigh-university-libraries/askimage/internal/images"
	"github.com/lehigh-university-libraries/askimage/internal/storage"
	"github.com/lehigh-university-libraries/askimage/internal/wizard"
)

const sessionCookie = "askimage_session"

type Handler struct {
	wizard         *wizard.Wizard
	sessionStore   *storage.SessionStore
	fetcher        *images.Fetcher
	maxUploadBytes int64
	page           *pageRenderer
}

func New(w *wizard.Wizard, store *storage.SessionStore, maxUploadBytes int64) *Handler {
	return &Handler{
		wizard:         w,
		sessionStore:   store,
		fetcher:        images.NewFetcher(maxUploadBytes),
		maxUploadBytes: maxUploadBytes,
		page:           newPageRenderer(),
	}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		slog.Error("Unable to encode JSON error", "err", err)
	}
}

// Session helpers
func (h *Handler) session(w http.ResponseWriter, r *http.Request) *wizard.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	session, created := h.sessionStore.GetOrCreate(id)
	if created {
		slog.Info("Session created", "session_id", session.ID)
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    session.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Now().Add(24 * time.Hour),
		})
	}
	return session
}
