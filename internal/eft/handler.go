package eft

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/thushan99/homelife-backoffice/internal/platform/httpx"
)

// Handler exposes the EFT allocation endpoint.
type Handler struct {
	logger    *slog.Logger
	allocator *Allocator
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, allocator *Allocator) *Handler {
	return &Handler{logger: logger, allocator: allocator, validator: validator.New()}
}

// MountRoutes registers EFT routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/trust-deposit", h.allocate)
}

func (h *Handler) allocate(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request", "request body must be valid JSON")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request", err.Error())
		return
	}
	number, err := h.allocator.Allocate(r.Context(), req)
	if err != nil {
		h.logger.Error("allocate EFT number", slog.Any("error", err), slog.Int64("trade_number", req.TradeNumber))
		httpx.Problem(w, http.StatusInternalServerError, "Allocation failed", "EFT number could not be allocated")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"eftNumber": number})
}
