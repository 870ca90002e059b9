package app

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"

	"github.com/vecindario/luzvecinal/internal/auth"
	"github.com/vecindario/luzvecinal/internal/lookup"
	"github.com/vecindario/luzvecinal/internal/lots"
	"github.com/vecindario/luzvecinal/internal/observability"
	"github.com/vecindario/luzvecinal/internal/receipts"
	"github.com/vecindario/luzvecinal/internal/reports"
	"github.com/vecindario/luzvecinal/internal/shared"
	"github.com/vecindario/luzvecinal/internal/tariffs"
	"github.com/vecindario/luzvecinal/internal/view"
	"github.com/vecindario/luzvecinal/web"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	Templates       *view.Engine
	SessionManager  *shared.SessionManager
	CSRFManager     *shared.CSRFManager
	AuthHandler     *auth.Handler
	LotsHandler     *lots.Handler
	TariffsHandler  *tariffs.Handler
	ReceiptsHandler *receipts.Handler
	LookupHandler   *lookup.Handler
	ReportsHandler  *reports.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/consulta", http.StatusSeeOther)
	})

	// Public debt lookup. No session requirement, but a tighter rate limit
	// since the page hits the database per query.
	r.Group(func(r chi.Router) {
		r.Use(httprate.Limit(30, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))
		r.Get("/consulta", params.LookupHandler.Consulta)
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Route("/admin", func(r chi.Router) {
		r.Use(RequireAdmin)

		r.Get("/", params.ReportsHandler.Dashboard)
		r.Get("/reportes", params.ReportsHandler.Reports)

		r.Route("/lotes", func(r chi.Router) {
			r.Get("/", params.LotsHandler.List)
			r.Get("/nuevo", params.LotsHandler.Form)
			r.Post("/", params.LotsHandler.Create)
			r.Get("/{id}/editar", params.LotsHandler.EditForm)
			r.Post("/{id}", params.LotsHandler.Update)
			r.Post("/{id}/eliminar", params.LotsHandler.Delete)
		})

		r.Route("/periodos", func(r chi.Router) {
			r.Get("/", params.TariffsHandler.List)
			r.Get("/nuevo", params.TariffsHandler.Form)
			r.Post("/", params.TariffsHandler.Create)
			r.Get("/{id}/editar", params.TariffsHandler.EditForm)
			r.Post("/{id}", params.TariffsHandler.Update)
			r.Post("/{id}/cerrar", params.TariffsHandler.Close)
			r.Post("/{id}/reabrir", params.TariffsHandler.Reopen)
		})

		r.Route("/lecturas", func(r chi.Router) {
			r.Get("/", params.ReceiptsHandler.ReadingsPage)
			r.Post("/", params.ReceiptsHandler.CreateReading)
			r.Post("/importar", params.ReceiptsHandler.ImportCSV)
		})

		r.Route("/pagos", func(r chi.Router) {
			r.Get("/", params.ReceiptsHandler.PaymentsPage)
			r.Post("/{id}/pagado", params.ReceiptsHandler.MarkPaid)
			r.Post("/{id}/pendiente", params.ReceiptsHandler.MarkPending)
			r.Post("/{id}/vencido", params.ReceiptsHandler.SetOverdue)
			r.Post("/{id}/consumo", params.ReceiptsHandler.EditConsumption)
			r.Post("/{id}/eliminar", params.ReceiptsHandler.Delete)
		})
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
