package handlers

import (
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/siportevent/siports/internal/client"
	"github.com/siportevent/siports/internal/helpers"
	"github.com/siportevent/siports/internal/logger"
)

type exhibitorsData struct {
	Query      string
	Category   string
	Categories []string
	Exhibitors []client.Exhibitor
	Total      int
}

type contactForm struct {
	Name    string
	Email   string
	Company string
	Subject string
	Message string
}

type exhibitorData struct {
	Exhibitor *client.Exhibitor
	MiniSite  *client.MiniSite
	Form      contactForm
}

// HandleExhibitors renders the exhibitor directory.
// Query parameters: q (free text, case and accent insensitive) and category.
func (h *HandlerService) HandleExhibitors(w http.ResponseWriter, r *http.Request) {
	exhibitors, err := h.APIClient.ListExhibitors(r.Context())
	if err != nil {
		logger.ContextRequestLogger(r.Context()).Error("Could not load exhibitors", slog.String("error", err.Error()))
		h.renderError(w, r, statusFor(err), client.UserMessage(err))
		return
	}

	filter := helpers.ExhibitorFilter{
		Query:    strings.TrimSpace(r.URL.Query().Get("q")),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
	}

	data := exhibitorsData{
		Query:      filter.Query,
		Category:   filter.Category,
		Categories: helpers.Categories(exhibitors),
		Exhibitors: helpers.FilterExhibitors(exhibitors, filter),
		Total:      len(exhibitors),
	}
	h.render(w, r, http.StatusOK, "exhibitors", h.page(r, "Exposants", data))
}

// HandleExhibitor renders an exhibitor with its mini-site (when it has one) and the contact form
func (h *HandlerService) HandleExhibitor(w http.ResponseWriter, r *http.Request) {
	data, ok := h.loadExhibitor(w, r)
	if !ok {
		return
	}
	h.render(w, r, http.StatusOK, "exhibitor", h.page(r, data.Exhibitor.Name, data))
}

// HandleContactExhibitor posts the contact form to the backend and re-renders the exhibitor page with the outcome
func (h *HandlerService) HandleContactExhibitor(w http.ResponseWriter, r *http.Request) {
	reqLogger := logger.ContextRequestLogger(r.Context())

	if err := r.ParseForm(); err != nil {
		h.renderError(w, r, http.StatusBadRequest, "Formulaire invalide")
		return
	}

	data, ok := h.loadExhibitor(w, r)
	if !ok {
		return
	}

	data.Form = contactForm{
		Name:    strings.TrimSpace(r.PostFormValue("name")),
		Email:   strings.TrimSpace(r.PostFormValue("email")),
		Company: strings.TrimSpace(r.PostFormValue("company")),
		Subject: strings.TrimSpace(r.PostFormValue("subject")),
		Message: strings.TrimSpace(r.PostFormValue("message")),
	}
	p := h.page(r, data.Exhibitor.Name, data)

	if msg := validateContactForm(data.Form); msg != "" {
		p.Error = msg
		h.render(w, r, http.StatusUnprocessableEntity, "exhibitor", p)
		return
	}

	res, err := h.APIClient.ContactExhibitor(r.Context(), client.ContactMessage{
		ExhibitorID: data.Exhibitor.ID,
		Name:        data.Form.Name,
		Email:       data.Form.Email,
		Company:     data.Form.Company,
		Subject:     data.Form.Subject,
		Message:     data.Form.Message,
	})
	if err != nil {
		reqLogger.Error("Contact request failed",
			slog.String("exhibitor_id", data.Exhibitor.ID.String()),
			slog.String("error", err.Error()),
		)
		p.Error = client.UserMessage(err)
		h.render(w, r, statusFor(err), "exhibitor", p)
		return
	}

	logger.ContextWithLogAttrs(r.Context(), slog.String("exhibitor_id", data.Exhibitor.ID.String()))

	p.Notice = res.Message
	if p.Notice == "" {
		p.Notice = "Votre message a été envoyé."
	}
	p.Data = exhibitorData{Exhibitor: data.Exhibitor, MiniSite: data.MiniSite}
	h.render(w, r, http.StatusOK, "exhibitor", p)
}

// loadExhibitor fetches the exhibitor named in the URL. The mini-site is optional: exhibitors without one are shown without it.
func (h *HandlerService) loadExhibitor(w http.ResponseWriter, r *http.Request) (exhibitorData, bool) {
	reqLogger := logger.ContextRequestLogger(r.Context())
	id := chi.URLParam(r, "id")

	exhibitor, err := h.APIClient.GetExhibitor(r.Context(), id)
	if err != nil {
		reqLogger.Warn("Could not load exhibitor", slog.String("exhibitor_id", id), slog.String("error", err.Error()))
		h.renderError(w, r, statusFor(err), client.UserMessage(err))
		return exhibitorData{}, false
	}

	miniSite, err := h.APIClient.ExhibitorMiniSite(r.Context(), id)
	if err != nil {
		reqLogger.Debug("No mini-site for exhibitor", slog.String("exhibitor_id", id), slog.String("error", err.Error()))
		miniSite = nil
	}

	return exhibitorData{Exhibitor: exhibitor, MiniSite: miniSite}, true
}

func validateContactForm(f contactForm) string {
	if f.Name == "" || f.Email == "" || f.Subject == "" || f.Message == "" {
		return "Merci de renseigner votre nom, votre email, l'objet et le message."
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return "Adresse email invalide."
	}
	return ""
}
