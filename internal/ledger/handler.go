package ledger

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/thushan99/homelife-backoffice/internal/money"
	"github.com/thushan99/homelife-backoffice/internal/platform/httpx"
)

// Handler exposes the ledger REST surface.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.postEntry)
	r.Get("/", h.listEntries)
}

type postEntryRequest struct {
	AccountNumber string  `json:"accountNumber"`
	AccountName   string  `json:"accountName"`
	Debit         float64 `json:"debit"`
	Credit        float64 `json:"credit"`
	Description   string  `json:"description"`
	Date          string  `json:"date"`
	EFTNumber     string  `json:"eftNumber"`
}

func (h *Handler) postEntry(w http.ResponseWriter, r *http.Request) {
	var req postEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request", "request body must be valid JSON")
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		date = time.Now()
	}
	entry, err := h.service.PostEntry(r.Context(), Entry{
		AccountNumber: req.AccountNumber,
		AccountName:   req.AccountName,
		Debit:         money.Round2(req.Debit),
		Credit:        money.Round2(req.Credit),
		Description:   req.Description,
		Date:          date,
		EFTNumber:     req.EFTNumber,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidEntry) {
			httpx.Problem(w, http.StatusBadRequest, "Invalid entry", err.Error())
			return
		}
		h.logger.Error("post ledger entry", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Posting failed", "ledger entry could not be recorded")
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	account := r.URL.Query().Get("account")
	entries, err := h.service.ListEntries(r.Context(), account)
	if err != nil {
		h.logger.Error("list ledger entries", slog.Any("error", err), slog.String("account", account))
		httpx.Problem(w, http.StatusInternalServerError, "Listing failed", "ledger entries could not be loaded")
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	httpx.JSON(w, http.StatusOK, entries)
}
