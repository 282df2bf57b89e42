package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
)

// Router configures the HTTP routes
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()

	// Browser wizard
	router.HandleFunc("/", h.HandlePage).Methods("GET")
	router.HandleFunc("/upload", h.HandleUploadForm).Methods("POST")
	router.HandleFunc("/ask", h.HandleAskForm).Methods("POST")
	router.HandleFunc("/reset", h.HandleResetForm).Methods("POST")
	router.HandleFunc("/preview.png", h.HandlePreview).Methods("GET")
	router.HandleFunc("/static/style.css", h.HandleStylesheet).Methods("GET")

	// JSON API
	router.HandleFunc("/api/session", h.HandleSession).Methods("GET")
	router.HandleFunc("/api/upload", h.HandleUpload).Methods("POST")
	router.HandleFunc("/api/ask", h.HandleAsk).Methods("POST")
	router.HandleFunc("/api/reset", h.HandleReset).Methods("POST")

	router.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			slog.Error("Unable to write healthcheck", "err", err)
		}
	}).Methods("GET")

	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	return router
}
