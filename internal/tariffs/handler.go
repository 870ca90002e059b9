package tariffs

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

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
	periods, err := h.service.ListPeriods(r.Context())
	if err != nil {
		h.logger.Error("list periods failed", "error", err)
		http.Error(w, "No se pudieron cargar los períodos", http.StatusInternalServerError)
		return
	}

	h.render(w, r, "pages/periods_list.html", map[string]any{
		"Periods": periods,
	}, http.StatusOK)
}

func (h *Handler) Form(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "pages/period_form.html", map[string]any{
		"Errors": map[string]string{},
		"Period": nil,
		"Action": "/admin/periodos",
	}, http.StatusOK)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Solicitud inválida", http.StatusBadRequest)
		return
	}

	month, err := time.Parse("2006-01", r.PostFormValue("month"))
	if err != nil {
		h.render(w, r, "pages/period_form.html", map[string]any{
			"Errors": map[string]string{"general": "El mes debe tener el formato AAAA-MM."},
			"Period": nil,
			"Action": "/admin/periodos",
		}, http.StatusBadRequest)
		return
	}

	price, _ := strconv.ParseFloat(r.PostFormValue("price_per_kwh"), 64)
	surcharge, _ := strconv.ParseFloat(r.PostFormValue("surcharge"), 64)

	if _, err := h.service.CreatePeriod(r.Context(), CreatePeriodInput{
		Month:       month,
		PricePerKwh: price,
		Surcharge:   surcharge,
	}); err != nil {
		h.logger.Error("create period failed", "error", err)
		h.render(w, r, "pages/period_form.html", map[string]any{
			"Errors": map[string]string{"general": h.userMessage(err)},
			"Period": nil,
			"Action": "/admin/periodos",
		}, http.StatusBadRequest)
		return
	}

	h.redirectWithFlash(w, r, "/admin/periodos", "success", "Período creado correctamente")
}

func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Período inválido", http.StatusBadRequest)
		return
	}

	period, err := h.service.GetPeriod(r.Context(), id)
	if err != nil {
		h.logger.Error("get period failed", "error", err, "id", id)
		http.Error(w, "Período no encontrado", http.StatusNotFound)
		return
	}

	h.render(w, r, "pages/period_form.html", map[string]any{
		"Errors": map[string]string{},
		"Period": period,
		"Action": "/admin/periodos/" + strconv.FormatInt(id, 10),
	}, http.StatusOK)
}

// Update changes a period's rates. The new price and surcharge are written
// through to every receipt already issued for the period and their totals
// recomputed, so receipts never show a snapshot the period no longer has.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Período inválido", http.StatusBadRequest)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Solicitud inválida", http.StatusBadRequest)
		return
	}

	price, _ := strconv.ParseFloat(r.PostFormValue("price_per_kwh"), 64)
	surcharge, _ := strconv.ParseFloat(r.PostFormValue("surcharge"), 64)

	if err := h.service.UpdateTariff(r.Context(), id, UpdateTariffInput{
		PricePerKwh: price,
		Surcharge:   surcharge,
	}); err != nil {
		h.logger.Error("update tariff failed", "error", err, "id", id)
		h.redirectWithFlash(w, r, "/admin/periodos/"+strconv.FormatInt(id, 10)+"/editar", "error", h.userMessage(err))
		return
	}

	h.redirectWithFlash(w, r, "/admin/periodos", "success", "Tarifa actualizada; los recibos del período fueron recalculados")
}

func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.Close, "Período cerrado")
}

func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, h.service.Reopen, "Período reabierto")
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id int64) error, okMsg string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "Período inválido", http.StatusBadRequest)
		return
	}

	if err := action(r.Context(), id); err != nil {
		h.logger.Error("set period status failed", "error", err, "id", id)
		h.redirectWithFlash(w, r, "/admin/periodos", "error", h.userMessage(err))
		return
	}

	h.redirectWithFlash(w, r, "/admin/periodos", "success", okMsg)
}

func (h *Handler) userMessage(err error) string {
	switch {
	case errors.Is(err, ErrDuplicatePeriod):
		return "Ya existe un período para ese mes."
	case errors.Is(err, ErrPeriodNotFound):
		return "El período no existe."
	}
	return shared.UserSafeMessage(err)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, template string, data map[string]any, status int) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Períodos",
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
