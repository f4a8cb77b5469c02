package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"SignalDesk/internal/cache"
	"SignalDesk/internal/catalog"
	"SignalDesk/internal/collector"
	"SignalDesk/internal/model"
	"SignalDesk/internal/recorder"
	"SignalDesk/internal/strategy"
)

// Handler serves the market data and signal endpoints.
type Handler struct {
	collector *collector.Collector
	cache     cache.SignalCache
	recorder  recorder.Recorder
}

func NewHandler(c *collector.Collector, sc cache.SignalCache, rec recorder.Recorder) *Handler {
	return &Handler{collector: c, cache: sc, recorder: rec}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/assets", h.Assets)
	g.GET("/market-data", h.MarketData)
	g.POST("/market-data", h.MarketDataBatch)
	g.GET("/signals", h.Signal)
	g.GET("/signals/latest", h.LatestSignal)
	g.GET("/performance", h.Performance)
}

// MarketDataResponse is the market summary plus a regime description.
type MarketDataResponse struct {
	model.MarketData
	Condition model.MarketCondition `json:"condition"`
}

func (h *Handler) Assets(c echo.Context) error {
	req := &AssetsRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return badRequestResponse(c, verr)
	}
	if req.Type != "" {
		return successResponse(c, catalog.ByType(model.AssetClass(req.Type)))
	}
	return successResponse(c, catalog.Active())
}

func (h *Handler) marketData(c echo.Context, symbol string, periods int) (*MarketDataResponse, error) {
	if _, err := catalog.Lookup(symbol); err != nil {
		return nil, err
	}
	series, err := h.collector.Series(c.Request().Context(), symbol)
	if err != nil {
		return nil, err
	}
	return &MarketDataResponse{
		MarketData: collector.BuildMarketData(symbol, series.Tail(periods)),
		Condition:  strategy.AnalyzeCondition(series),
	}, nil
}

func (h *Handler) MarketData(c echo.Context) error {
	req := &MarketDataRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return badRequestResponse(c, verr)
	}
	res, err := h.marketData(c, req.Symbol, req.Periods)
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, res)
}

func (h *Handler) MarketDataBatch(c echo.Context) error {
	req := &MarketDataBatchRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return badRequestResponse(c, verr)
	}
	out := make([]*MarketDataResponse, 0, len(req.Symbols))
	for _, sym := range req.Symbols {
		res, err := h.marketData(c, sym, req.Periods)
		if err != nil {
			return errorResponse(c, err)
		}
		out = append(out, res)
	}
	return successResponse(c, out)
}

func (h *Handler) Signal(c echo.Context) error {
	req := &SignalRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return badRequestResponse(c, verr)
	}
	if _, err := catalog.Lookup(req.Symbol); err != nil {
		return errorResponse(c, err)
	}
	snap, err := h.collector.Collect(c.Request().Context(), req.Symbol)
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, snap.Signal)
}

func (h *Handler) LatestSignal(c echo.Context) error {
	req := &SignalRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return badRequestResponse(c, verr)
	}
	if _, err := catalog.Lookup(req.Symbol); err != nil {
		return errorResponse(c, err)
	}
	sig, ok, err := h.cache.Get(c.Request().Context(), req.Symbol)
	if err != nil {
		return errorResponse(c, err)
	}
	if !ok {
		return dataResponse(c, http.StatusNotFound, []ValidationError{{
			Code:    "ERR_NO_SIGNAL",
			Message: "no signal generated yet for " + req.Symbol,
		}})
	}
	return successResponse(c, sig)
}

func (h *Handler) Performance(c echo.Context) error {
	req := &PerformanceRequest{}
	if verr := ReadAndValidateRequest(c, req); verr != nil {
		return badRequestResponse(c, verr)
	}
	if req.Symbol != "" {
		if _, err := catalog.Lookup(req.Symbol); err != nil {
			return errorResponse(c, err)
		}
	}
	perf, err := h.recorder.Performance(req.Symbol)
	if err != nil {
		return errorResponse(c, err)
	}
	return successResponse(c, perf)
}
