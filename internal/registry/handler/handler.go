package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"marketfactory/internal/registry/models"
	dErrors "marketfactory/pkg/domain-errors"
	"marketfactory/pkg/platform/httputil"
	"marketfactory/pkg/requestcontext"
)

// View method names, as exposed by the market factory contract.
const (
	ViewMarketsList  = "get_markets_list"
	ViewMarketsCount = "get_markets_count"
	ViewMarkets      = "get_markets"
)

// Service defines the registry query operations the handler depends on.
type Service interface {
	ListAll(ctx context.Context) ([]models.MarketID, error)
	Count(ctx context.Context) (models.U64, error)
	ListPage(ctx context.Context, from, limit uint64) ([]models.MarketID, error)
}

// Handler wires registry endpoints to the query service.
type Handler struct {
	service      Service
	logger       *slog.Logger
	defaultLimit uint64
}

// New constructs a registry handler. defaultLimit applies when a GET page
// request omits limit.
func New(service Service, logger *slog.Logger, defaultLimit uint64) *Handler {
	return &Handler{
		service:      service,
		logger:       logger,
		defaultLimit: defaultLimit,
	}
}

// Register mounts registry endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/markets", h.HandleListAll)
	r.Get("/markets/count", h.HandleCount)
	r.Get("/markets/page", h.HandleListPage)
	r.Post("/view/{method}", h.HandleView)
}

// HandleListAll handles GET /markets.
func (h *Handler) HandleListAll(w http.ResponseWriter, r *http.Request) {
	h.listAll(w, r)
}

// HandleCount handles GET /markets/count.
func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	h.count(w, r)
}

// HandleListPage handles GET /markets/page?from_index=&limit=.
func (h *Handler) HandleListPage(w http.ResponseWriter, r *http.Request) {
	req, err := ParsePageQuery(r.URL.Query(), h.defaultLimit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.listPage(w, r, req)
}

// HandleView handles POST /view/{method}, mirroring the factory's view calls.
// Only get_markets reads the JSON body.
func (h *Handler) HandleView(w http.ResponseWriter, r *http.Request) {
	switch method := chi.URLParam(r, "method"); method {
	case ViewMarketsList:
		h.listAll(w, r)
	case ViewMarketsCount:
		h.count(w, r)
	case ViewMarkets:
		req, err := DecodePageArgs(w, r)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		h.listPage(w, r, req)
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "unknown view method: "+method))
	}
}

func (h *Handler) listAll(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	start := time.Now()

	ids, err := h.service.ListAll(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list markets failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.DebugContext(ctx, "markets listed",
		"request_id", requestcontext.RequestID(ctx),
		"returned", len(ids),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, ids)
}

func (h *Handler) count(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	n, err := h.service.Count(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "count markets failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, n)
}

func (h *Handler) listPage(w http.ResponseWriter, r *http.Request, req PageRequest) {
	ctx := r.Context()
	start := time.Now()

	ids, err := h.service.ListPage(ctx, uint64(req.FromIndex), uint64(req.Limit))
	if err != nil {
		h.logger.ErrorContext(ctx, "list markets page failed",
			"request_id", requestcontext.RequestID(ctx),
			"from_index", req.FromIndex.String(),
			"limit", req.Limit.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.DebugContext(ctx, "markets page listed",
		"request_id", requestcontext.RequestID(ctx),
		"from_index", req.FromIndex.String(),
		"limit", req.Limit.String(),
		"returned", len(ids),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, ids)
}
