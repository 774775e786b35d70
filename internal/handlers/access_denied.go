package handlers

import "net/http"

// HandleAccessDenied renders the access denied page. An optional msg query parameter replaces the default message.
func (h *HandlerService) HandleAccessDenied(w http.ResponseWriter, r *http.Request) {
	msg := r.URL.Query().Get("msg")
	if msg == "" {
		msg = "Vous n'avez pas les droits nécessaires pour accéder à cette page."
	}
	h.render(w, r, http.StatusForbidden, "access_denied", h.page(r, "Accès refusé", msg))
}

// HandleNotFound renders the not found page
func (h *HandlerService) HandleNotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "Page introuvable")
}
