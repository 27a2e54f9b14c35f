package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/thushan99/homelife-backoffice/internal/eft"
	"github.com/thushan99/homelife-backoffice/internal/ledger"
	"github.com/thushan99/homelife-backoffice/internal/observability"
	"github.com/thushan99/homelife-backoffice/internal/trades"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger        *slog.Logger
	Config        *Config
	TradesHandler *trades.Handler
	LedgerHandler *ledger.Handler
	EFTHandler    *eft.Handler
	Metrics       *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger: params.Logger,
		Config: params.Config,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)
	if params.Metrics != nil {
		r.Use(params.Metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/trades", params.TradesHandler.MountRoutes)
	r.Route("/commission", func(r chi.Router) {
		preview := &trades.PreviewHandler{}
		preview.MountRoutes(r)
	})
	if params.LedgerHandler != nil {
		r.Route("/ledger", params.LedgerHandler.MountRoutes)
	}
	if params.EFTHandler != nil {
		r.Route("/real-estate-trust-eft", params.EFTHandler.MountRoutes)
	}

	return r
}
