package lots

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

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

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 50
	}
	search := r.URL.Query().Get("search")

	lots, total, err := h.service.List(r.Context(), ListFilters{
		Search: search,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		h.logger.Error("list lots failed", "error", err)
		http.Error(w, "No se pudieron cargar los lotes", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/lots_list.html", map[string]any{
		"Lots":       lots,
		"Search":     search,
		"Pagination": shared.NewPagination(page, limit, total),
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/lot_form.html", map[string]any{
		"Errors": map[string]string{},
		"Lot":    nil,
		"Action": "/admin/lotes",
	}, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	if _, err := h.service.Create(r.Context(), form); err != nil {
		h.logger.Error("create lot failed", "error", err)
		h.render(w, r, "pages/lot_form.html", map[string]any{
			"Errors": map[string]string{"general": shared.UserSafeMessage(err)},
			"Lot":    nil,
			"Action": "/admin/lotes",
		}, http.StatusBadRequest)
		return
	}

	h.redirectWithFlash(w, r, "/admin/lotes", "success", "Lote registrado correctamente")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Lote inválido", http.StatusBadRequest)
		return
	}

	lot, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("get lot failed", "error", err, "id", id)
		http.Error(w, "Lote no encontrado", http.StatusNotFound)
		return
	}

	h.render(w, r, "pages/lot_form.html", map[string]any{
		"Errors": map[string]string{},
		"Lot":    lot,
		"Action": "/admin/lotes/" + strconv.FormatInt(id, 10),
	}, http.StatusOK)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Lote inválido", http.StatusBadRequest)
		return
	}

	form, ok := h.parseForm(w, r)
	if !ok {
		return
	}

	if err := h.service.Update(r.Context(), id, form); err != nil {
		h.logger.Error("update lot failed", "error", err, "id", id)
		h.render(w, r, "pages/lot_form.html", map[string]any{
			"Errors": map[string]string{"general": shared.UserSafeMessage(err)},
			"Lot":    form,
			"Action": "/admin/lotes/" + strconv.FormatInt(id, 10),
		}, http.StatusBadRequest)
		return
	}

	h.redirectWithFlash(w, r, "/admin/lotes", "success", "Lote actualizado correctamente")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Lote inválido", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logger.Error("delete lot failed", "error", err, "id", id)
		h.redirectWithFlash(w, r, "/admin/lotes", "error", shared.UserSafeMessage(err))
		return
	}

	h.redirectWithFlash(w, r, "/admin/lotes", "success", "Lote eliminado junto con sus recibos")
}

func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (LotForm, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Solicitud inválida", http.StatusBadRequest)
		return LotForm{}, false
	}
	lotNumber, _ := strconv.Atoi(r.PostFormValue("lot_number"))
	return LotForm{
		Block:      r.PostFormValue("block"),
		LotNumber:  lotNumber,
		FirstNames: r.PostFormValue("first_names"),
		LastNames:  r.PostFormValue("last_names"),
		NationalID: r.PostFormValue("national_id"),
		Phone:      r.PostFormValue("phone"),
		Service:    ServiceType(r.PostFormValue("service_type")),
	}, true
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Lotes",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data:        data,
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, template, viewData); err != nil {
		h.logger.Error("render template", "error", err, "template", template)
	}
}

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}
