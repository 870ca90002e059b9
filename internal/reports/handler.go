package reports

import (
	"log/slog"
	"net/http"

	"github.com/vecindario/luzvecinal/internal/shared"
	"github.com/vecindario/luzvecinal/internal/view"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
	csrf      *shared.CSRFManager
}

func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, templates: templates, csrf: csrf}
}

// Dashboard renders the admin landing page.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	overview, current, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Error("load dashboard failed", "error", err)
		http.Error(w, "No se pudo cargar el resumen", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/dashboard.html", "Resumen", map[string]any{
		"LotCount":      overview.LotCount,
		"PendingCount":  overview.PendingCount,
		"PendingTotal":  overview.PendingTotal,
		"CurrentPeriod": current,
	})
}

// Reports renders the per-period summaries and the debtor list.
func (h *Handler) Reports(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.Summaries(r.Context())
	if err != nil {
		h.logger.Error("load summaries failed", "error", err)
		http.Error(w, "No se pudieron cargar los reportes", http.StatusInternalServerError)
		return
	}
	debtors, err := h.service.Debtors(r.Context())
	if err != nil {
		h.logger.Error("load debtors failed", "error", err)
		http.Error(w, "No se pudieron cargar los reportes", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/reports.html", "Reportes", map[string]any{
		"Summaries": summaries,
		"Debtors":   debtors,
	})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template, title string, data map[string]any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       title,
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", "error", err, "template", template)
	}
}
