package trades

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/thushan99/homelife-backoffice/internal/commission"
	"github.com/thushan99/homelife-backoffice/internal/ledger"
	"github.com/thushan99/homelife-backoffice/internal/money"
	"github.com/thushan99/homelife-backoffice/internal/platform/httpx"
	"github.com/thushan99/homelife-backoffice/internal/trust"
)

// LedgerViewPort supplies the ledger figures shown on the trade view.
type LedgerViewPort interface {
	TrustNetForTrade(ctx context.Context, tradeNumber int64) (ledger.TrustNet, error)
}

// Handler exposes the trades REST surface.
type Handler struct {
	logger  *slog.Logger
	service *Service
	ledger  LedgerViewPort
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, ledgerView LedgerViewPort) *Handler {
	return &Handler{logger: logger, service: service, ledger: ledgerView}
}

// MountRoutes registers trade routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.createTrade)
	r.Get("/", h.listTrades)
	r.Get("/{tradeNumber}", h.getTrade)
	r.Put("/{tradeNumber}", h.saveTrade)
	r.Delete("/{tradeNumber}", h.deleteTrade)
	r.Get("/{tradeNumber}/ar", h.getAR)
	r.Post("/{tradeNumber}/trust", h.applyTrustDeposit)
	r.Delete("/{tradeNumber}/trust/{recordID}", h.deleteTrustRecord)
}

func (h *Handler) createTrade(w http.ResponseWriter, r *http.Request) {
	var info KeyInfo
	if err := httpx.DecodeJSON(r, &info); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request", "request body must be valid JSON")
		return
	}
	trade, err := h.service.CreateTrade(r.Context(), info)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid key info", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, trade)
}

func (h *Handler) listTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.service.ListTrades(r.Context())
	if err != nil {
		h.logger.Error("list trades", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Listing failed", "trades could not be loaded")
		return
	}
	if trades == nil {
		trades = []Trade{}
	}
	httpx.JSON(w, http.StatusOK, trades)
}

// tradeView composes the document with the ledger's view of its trust funds.
type tradeView struct {
	Trade    Trade           `json:"trade"`
	TrustNet ledger.TrustNet `json:"trustNet"`
}

func (h *Handler) getTrade(w http.ResponseWriter, r *http.Request) {
	tradeNumber, ok := h.tradeNumber(w, r)
	if !ok {
		return
	}

	var view tradeView
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		trade, err := h.service.GetTrade(ctx, tradeNumber)
		if err != nil {
			return err
		}
		view.Trade = trade
		return nil
	})
	g.Go(func() error {
		net, err := h.ledger.TrustNetForTrade(ctx, tradeNumber)
		if err != nil {
			return err
		}
		view.TrustNet = net
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrTradeNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not found", "trade does not exist")
			return
		}
		h.logger.Error("get trade", slog.Any("error", err), slog.Int64("trade_number", tradeNumber))
		httpx.Problem(w, http.StatusInternalServerError, "Load failed", "trade could not be loaded")
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) saveTrade(w http.ResponseWriter, r *http.Request) {
	tradeNumber, ok := h.tradeNumber(w, r)
	if !ok {
		return
	}
	var trade Trade
	if err := httpx.DecodeJSON(r, &trade); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request", "request body must be valid JSON")
		return
	}
	trade.TradeNumber = tradeNumber
	saved, err := h.service.SaveTrade(r.Context(), trade)
	if err != nil {
		if errors.Is(err, ErrTradeNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not found", "trade does not exist")
			return
		}
		httpx.Problem(w, http.StatusBadRequest, "Save rejected", err.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}

func (h *Handler) deleteTrade(w http.ResponseWriter, r *http.Request) {
	tradeNumber, ok := h.tradeNumber(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteTrade(r.Context(), tradeNumber); err != nil {
		if errors.Is(err, ErrTradeNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not found", "trade does not exist")
			return
		}
		h.logger.Error("delete trade", slog.Any("error", err), slog.Int64("trade_number", tradeNumber))
		httpx.Problem(w, http.StatusInternalServerError, "Delete failed", "trade could not be deleted")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getAR(w http.ResponseWriter, r *http.Request) {
	tradeNumber, ok := h.tradeNumber(w, r)
	if !ok {
		return
	}
	trade, err := h.service.GetTrade(r.Context(), tradeNumber)
	if err != nil {
		if errors.Is(err, ErrTradeNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not found", "trade does not exist")
			return
		}
		h.logger.Error("get AR", slog.Any("error", err), slog.Int64("trade_number", tradeNumber))
		httpx.Problem(w, http.StatusInternalServerError, "Load failed", "trade could not be loaded")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"ar": trade.AR})
}

type applyTrustRequest struct {
	ID           string `json:"id"`
	WeHold       string `json:"weHold"`
	HeldBy       string `json:"heldBy"`
	Received     string `json:"received"`
	DepositDate  string `json:"depositDate"`
	ReceivedFrom string `json:"receivedFrom"`
	Amount       string `json:"amount"`
	Reference    string `json:"reference"`
	PaymentType  string `json:"paymentType"`
	Currency     string `json:"currency"`
	EarnInterest string `json:"earnInterest"`
}

func (h *Handler) applyTrustDeposit(w http.ResponseWriter, r *http.Request) {
	tradeNumber, ok := h.tradeNumber(w, r)
	if !ok {
		return
	}
	var req applyTrustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request", "request body must be valid JSON")
		return
	}
	record := trust.Record{
		WeHold:       trust.YesNo(req.WeHold),
		HeldBy:       req.HeldBy,
		Received:     trust.YesNo(req.Received),
		ReceivedFrom: req.ReceivedFrom,
		Amount:       req.Amount,
		Reference:    req.Reference,
		PaymentType:  req.PaymentType,
		Currency:     req.Currency,
		EarnInterest: trust.YesNo(req.EarnInterest),
	}
	// An ID is only present when re-applying an edited record.
	if req.ID != "" {
		if id, err := uuid.Parse(req.ID); err == nil {
			record.ID = id
		}
	}
	if req.DepositDate != "" {
		if date, err := time.Parse("2006-01-02", req.DepositDate); err == nil {
			record.DepositDate = date
		}
	}

	trade, result, err := h.service.ApplyTrustDeposit(r.Context(), tradeNumber, record)
	if err != nil {
		if errors.Is(err, ErrTradeNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not found", "trade does not exist")
			return
		}
		h.logger.Error("apply trust deposit", slog.Any("error", err), slog.Int64("trade_number", tradeNumber))
		httpx.Problem(w, http.StatusInternalServerError, "Apply failed", "trust deposit could not be applied")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"trade":                   trade,
		"trustRecord":             result.Record,
		"ledgerPostingsAttempted": result.LedgerPostingsAttempted,
		"eftNumber":               result.EFTNumber,
	})
}

func (h *Handler) deleteTrustRecord(w http.ResponseWriter, r *http.Request) {
	tradeNumber, ok := h.tradeNumber(w, r)
	if !ok {
		return
	}
	recordID, err := uuid.Parse(chi.URLParam(r, "recordID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request", "record id must be a UUID")
		return
	}

	trade, result, err := h.service.DeleteTrustRecord(r.Context(), tradeNumber, recordID)
	if err != nil {
		switch {
		case errors.Is(err, ErrTradeNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not found", "trade does not exist")
		case errors.Is(err, ErrTrustRecordNotFound):
			httpx.Problem(w, http.StatusNotFound, "Not found", "trust record does not exist")
		default:
			h.logger.Error("delete trust record", slog.Any("error", err), slog.Int64("trade_number", tradeNumber))
			httpx.Problem(w, http.StatusInternalServerError, "Delete failed", "trust record could not be deleted")
		}
		return
	}

	response := map[string]any{
		"trade":             trade,
		"reversalAttempted": result.ReversalAttempted,
	}
	// The record is gone either way; a failed reversal becomes a warning the
	// UI shows as a notice, not an error that undoes the deletion.
	if result.ReversalErr != nil {
		response["warning"] = "ledger reversal failed; trust accounts need manual review"
	}
	httpx.JSON(w, http.StatusOK, response)
}

func (h *Handler) tradeNumber(w http.ResponseWriter, r *http.Request) (int64, bool) {
	n, err := strconv.ParseInt(chi.URLParam(r, "tradeNumber"), 10, 64)
	if err != nil || n <= 0 {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request", "trade number must be a positive integer")
		return 0, false
	}
	return n, true
}

// PreviewHandler serves the commission preview calculations used while a
// form is being edited, before anything is saved. Inputs arrive as raw form
// strings and degrade to zero; this endpoint never rejects numeric garbage.
type PreviewHandler struct{}

// MountRoutes registers preview routes.
func (h *PreviewHandler) MountRoutes(r chi.Router) {
	r.Post("/preview", h.preview)
	r.Post("/percent-from-amount", h.percentFromAmount)
}

type previewRequest struct {
	SellPrice      string `json:"sellPrice"`
	ListCommission string `json:"listCommission"`
	SellCommission string `json:"sellCommission"`
}

func (h *PreviewHandler) preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request", "request body must be valid JSON")
		return
	}
	income := commission.ComputeIncome(
		money.Parse(req.SellPrice),
		money.ParsePercent(req.ListCommission),
		money.ParsePercent(req.SellCommission))
	broker := commission.OutsideBrokerRow{}
	commission.SyncOutsideBroker(income, &broker)
	httpx.JSON(w, http.StatusOK, map[string]any{
		"commissionIncome": income,
		"outsideBroker":    broker,
	})
}

type percentFromAmountRequest struct {
	Amount    string `json:"amount"`
	SellPrice string `json:"sellPrice"`
}

func (h *PreviewHandler) percentFromAmount(w http.ResponseWriter, r *http.Request) {
	var req percentFromAmountRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid request", "request body must be valid JSON")
		return
	}
	pct := commission.PercentFromAmount(money.Parse(req.Amount), money.Parse(req.SellPrice))
	httpx.JSON(w, http.StatusOK, map[string]string{"percent": pct})
}
