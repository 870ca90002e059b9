package receipts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/vecindario/luzvecinal/internal/platform/httpx"
	"github.com/vecindario/luzvecinal/internal/shared"
	"github.com/vecindario/luzvecinal/internal/tariffs"
	"github.com/vecindario/luzvecinal/internal/view"
)

// LotOption is a lot entry for the reading form dropdown.
type LotOption struct {
	ID         int64
	Code       string
	FirstNames string
	LastNames  string
}

// LotsPort is the slice of the lot registry the receipt pages need. The lot
// package sits above this one, so it plugs in through an adapter at wiring.
type LotsPort interface {
	Options(ctx context.Context) ([]LotOption, error)
	Refs(ctx context.Context) ([]LotRef, error)
}

// PeriodsPort lists billing periods for the period selector.
type PeriodsPort interface {
	ListPeriods(ctx context.Context) ([]tariffs.Period, error)
}

type Handler struct {
	logger    *slog.Logger
	service   *Service
	periods   PeriodsPort
	lots      LotsPort
	templates *view.Engine
	csrf      *shared.CSRFManager
}

func NewHandler(logger *slog.Logger, service *Service, periods PeriodsPort, lots LotsPort, templates *view.Engine, csrf *shared.CSRFManager) *Handler {
	return &Handler{logger: logger, service: service, periods: periods, lots: lots, templates: templates, csrf: csrf}
}

// ReadingsPage shows the reading entry form, the CSV importer, and the
// receipts already issued for the selected period.
func (h *Handler) ReadingsPage(w http.ResponseWriter, r *http.Request) {
	h.renderReadings(w, r, nil, http.StatusOK)
}

// CreateReading handles the single-entry reading form.
func (h *Handler) CreateReading(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, "Solicitud inválida")
		return
	}

	lotID, _ := strconv.ParseInt(r.PostFormValue("lot_id"), 10, 64)
	periodID, _ := strconv.ParseInt(r.PostFormValue("period_id"), 10, 64)
	consumption, err := strconv.ParseFloat(r.PostFormValue("consumption_kwh"), 64)
	if err != nil {
		h.actionError(w, r, readingsURL(periodID), shared.NewUserError("El consumo debe ser un número."))
		return
	}

	receipt, err := h.service.CreateReading(r.Context(), CreateReadingInput{
		LotID:          lotID,
		PeriodID:       periodID,
		ConsumptionKwh: consumption,
	})
	if err != nil {
		h.logger.Error("create reading failed", "error", err, "lot_id", lotID, "period_id", periodID)
		h.actionError(w, r, readingsURL(periodID), err)
		return
	}

	if wantsJSON(r) {
		httpx.OK(w)
		return
	}
	h.redirectWithFlash(w, r, readingsURL(periodID), "success",
		fmt.Sprintf("Lectura registrada. Total del recibo: S/ %.2f", receipt.Total))
}

// ImportCSV handles the bulk reading sheet upload. Rows that fail to parse
// are reported together while the rows that did parse are still imported.
func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		h.badRequest(w, r, "Solicitud inválida")
		return
	}
	periodID, _ := strconv.ParseInt(r.FormValue("period_id"), 10, 64)

	file, _, err := r.FormFile("file")
	if err != nil {
		h.actionError(w, r, readingsURL(periodID), shared.NewUserError("Selecciona un archivo CSV."))
		return
	}
	defer file.Close()

	refs, err := h.lots.Refs(r.Context())
	if err != nil {
		h.logger.Error("load lot refs failed", "error", err)
		h.actionError(w, r, readingsURL(periodID), err)
		return
	}

	parse, err := ParseReadingsCSV(file, refs)
	if err != nil {
		h.logger.Error("parse reading sheet failed", "error", err)
		h.actionError(w, r, readingsURL(periodID), shared.NewUserError("No se pudo leer el archivo. Verifica las columnas mz, lt y consumo_kwh."))
		return
	}

	count := 0
	if len(parse.Rows) > 0 {
		count, err = h.service.ImportReadings(r.Context(), periodID, parse.Rows)
		if err != nil {
			h.logger.Error("import readings failed", "error", err, "period_id", periodID)
			h.actionError(w, r, readingsURL(periodID), err)
			return
		}
	}

	if wantsJSON(r) {
		if len(parse.RowErrors) > 0 {
			httpx.JSON(w, http.StatusOK, httpx.ActionResult{
				Success: count > 0,
				Count:   count,
				Error:   strings.Join(parse.RowErrors, "\n"),
			})
			return
		}
		httpx.OKCount(w, count)
		return
	}

	if sess := shared.SessionFromContext(r.Context()); sess != nil && count > 0 {
		sess.AddFlash(shared.FlashMessage{Kind: "success", Message: fmt.Sprintf("Se importaron %d lecturas", count)})
	}
	if len(parse.RowErrors) > 0 {
		h.renderReadings(w, r, parse.RowErrors, http.StatusOK)
		return
	}
	http.Redirect(w, r, readingsURL(periodID), http.StatusSeeOther)
}

// PaymentsPage lists the selected period's receipts with payment controls.
func (h *Handler) PaymentsPage(w http.ResponseWriter, r *http.Request) {
	periods, err := h.periods.ListPeriods(r.Context())
	if err != nil {
		h.logger.Error("list periods failed", "error", err)
		http.Error(w, "No se pudieron cargar los períodos", http.StatusInternalServerError)
		return
	}
	selected := h.selectedPeriod(r, periods)

	var list []ReceiptWithLot
	if selected != 0 {
		if list, err = h.service.ListByPeriod(r.Context(), selected); err != nil {
			h.logger.Error("list receipts failed", "error", err, "period_id", selected)
			http.Error(w, "No se pudieron cargar los recibos", http.StatusInternalServerError)
			return
		}
	}

	h.render(w, r, "pages/payments.html", "Pagos", map[string]any{
		"Periods":          periods,
		"SelectedPeriodID": selected,
		"Receipts":         list,
	})
}

func (h *Handler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	h.statusAction(w, r, h.service.MarkPaid, "Recibo marcado como pagado")
}

func (h *Handler) MarkPending(w http.ResponseWriter, r *http.Request) {
	h.statusAction(w, r, h.service.MarkPending, "Pago revertido; el recibo vuelve a pendiente")
}

func (h *Handler) SetOverdue(w http.ResponseWriter, r *http.Request) {
	h.statusAction(w, r, h.service.SetOverdue, "Recibo marcado como vencido")
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	h.statusAction(w, r, h.service.Delete, "Recibo eliminado")
}

// EditConsumption recomputes the receipt total from its stored tariff
// snapshot after an administrator corrects the reading.
func (h *Handler) EditConsumption(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, r, "Recibo inválido")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.badRequest(w, r, "Solicitud inválida")
		return
	}
	consumption, err := strconv.ParseFloat(r.PostFormValue("consumption_kwh"), 64)
	if err != nil {
		h.actionError(w, r, paymentsReferer(r), shared.NewUserError("El consumo debe ser un número."))
		return
	}

	if err := h.service.EditConsumption(r.Context(), id, consumption); err != nil {
		h.logger.Error("edit consumption failed", "error", err, "id", id)
		h.actionError(w, r, paymentsReferer(r), err)
		return
	}

	if wantsJSON(r) {
		httpx.OK(w)
		return
	}
	h.redirectWithFlash(w, r, paymentsReferer(r), "success", "Consumo corregido y total recalculado")
}

func (h *Handler) statusAction(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id int64) error, okMsg string) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		h.badRequest(w, r, "Recibo inválido")
		return
	}

	if err := action(r.Context(), id); err != nil {
		h.logger.Error("receipt action failed", "error", err, "id", id)
		h.actionError(w, r, paymentsReferer(r), err)
		return
	}

	if wantsJSON(r) {
		httpx.OK(w)
		return
	}
	h.redirectWithFlash(w, r, paymentsReferer(r), "success", okMsg)
}

func (h *Handler) renderReadings(w http.ResponseWriter, r *http.Request, importErrors []string, status int) {
	periods, err := h.periods.ListPeriods(r.Context())
	if err != nil {
		h.logger.Error("list periods failed", "error", err)
		http.Error(w, "No se pudieron cargar los períodos", http.StatusInternalServerError)
		return
	}
	selected := h.selectedPeriod(r, periods)

	options, err := h.lots.Options(r.Context())
	if err != nil {
		h.logger.Error("list lots failed", "error", err)
		http.Error(w, "No se pudieron cargar los lotes", http.StatusInternalServerError)
		return
	}

	var list []ReceiptWithLot
	if selected != 0 {
		if list, err = h.service.ListByPeriod(r.Context(), selected); err != nil {
			h.logger.Error("list receipts failed", "error", err, "period_id", selected)
			http.Error(w, "No se pudieron cargar los recibos", http.StatusInternalServerError)
			return
		}
	}

	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	var flash *shared.FlashMessage
	if sess != nil {
		flash = sess.PopFlash()
	}
	viewData := view.TemplateData{
		Title:       "Lecturas",
		CSRFToken:   csrfToken,
		Flash:       flash,
		CurrentPath: r.URL.Path,
		Data: map[string]any{
			"Periods":          periods,
			"SelectedPeriodID": selected,
			"Lots":             options,
			"Receipts":         list,
			"ImportErrors":     importErrors,
		},
	}
	w.WriteHeader(status)
	if err := h.templates.Render(w, "pages/readings.html", viewData); err != nil {
		h.logger.Error("render template", "error", err, "template", "pages/readings.html")
	}
}

// selectedPeriod resolves the period_id query parameter, defaulting to the
// most recent period.
func (h *Handler) selectedPeriod(r *http.Request, periods []tariffs.Period) int64 {
	if id, err := strconv.ParseInt(r.URL.Query().Get("period_id"), 10, 64); err == nil && id > 0 {
		return id
	}
	if len(periods) > 0 {
		return periods[0].ID
	}
	return 0
}

// badRequest reports a request the handler could not parse. JSON clients get
// an RFC7807 problem; browser form posts get the plain text status page.
func (h *Handler) badRequest(w http.ResponseWriter, r *http.Request, detail string) {
	if wantsJSON(r) {
		httpx.BadRequest(w, detail)
		return
	}
	http.Error(w, detail, http.StatusBadRequest)
}

func (h *Handler) actionError(w http.ResponseWriter, r *http.Request, location string, err error) {
	if wantsJSON(r) {
		httpx.RespondActionError(w, errors.New(userMessage(err)))
		return
	}
	h.redirectWithFlash(w, r, location, "error", userMessage(err))
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

func (h *Handler) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		sess.AddFlash(shared.FlashMessage{Kind: kind, Message: message})
	}
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, ErrDuplicate):
		return "El lote ya tiene un recibo para ese período."
	case errors.Is(err, ErrNegativeConsumption):
		return "El consumo no puede ser negativo."
	case errors.Is(err, ErrEmptyImport):
		return "El archivo no contiene lecturas válidas."
	case errors.Is(err, ErrNotFound):
		return "El recibo no existe."
	case errors.Is(err, tariffs.ErrPeriodClosed):
		return "El período está cerrado; no se pueden registrar lecturas."
	case errors.Is(err, tariffs.ErrPeriodNotFound):
		return "El período no existe."
	}
	return shared.UserSafeMessage(err)
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func readingsURL(periodID int64) string {
	if periodID > 0 {
		return "/admin/lecturas?period_id=" + strconv.FormatInt(periodID, 10)
	}
	return "/admin/lecturas"
}

// paymentsReferer sends the admin back to the payments page they acted from,
// falling back to the bare listing.
func paymentsReferer(r *http.Request) string {
	if ref, err := url.Parse(r.Header.Get("Referer")); err == nil && strings.HasPrefix(ref.Path, "/admin/") {
		return ref.RequestURI()
	}
	return "/admin/pagos"
}
