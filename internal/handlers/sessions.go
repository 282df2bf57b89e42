package handlers

import (
	"encoding/json"
	"net/http"
)

func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	h.writeJSON(w, h.wizard.View(session))
}

func (h *Handler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)

	var request struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	h.writeJSON(w, h.wizard.SubmitQuestion(r.Context(), session, request.Question))
}

func (h *Handler) HandleAskForm(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	h.wizard.SubmitQuestion(r.Context(), session, r.FormValue("question"))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	h.writeJSON(w, h.wizard.Reset(session))
}

func (h *Handler) HandleResetForm(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	h.wizard.Reset(session)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
