package lookup

import (
	"log/slog"
	"net/http"

	"github.com/vecindario/luzvecinal/internal/view"
)

type Handler struct {
	logger    *slog.Logger
	service   *Service
	templates *view.Engine
}

func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine) *Handler {
	return &Handler{logger: logger, service: service, templates: templates}
}

// Consulta serves the public debt lookup page. It requires no session.
func (h *Handler) Consulta(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")

	data := map[string]any{
		"Query":   query,
		"Results": []LotResult(nil),
		"Error":   "",
	}

	if query != "" {
		results, err := h.service.Lookup(r.Context(), query)
		switch {
		case err != nil:
			h.logger.Error("lookup failed", "error", err, "query", query)
			data["Error"] = "No se pudo realizar la consulta. Intenta de nuevo."
		case len(results) == 0:
			data["Error"] = "No se encontró ningún lote con ese dato. Verifica el formato e intenta de nuevo."
		default:
			data["Results"] = results
		}
	}

	if err := h.templates.Render(w, "pages/consulta.html", view.TemplateData{
		Title: "Consulta de deuda",
		Data:  data,
	}); err != nil {
		h.logger.Error("render template", "error", err, "template", "pages/consulta.html")
	}
}
