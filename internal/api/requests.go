package api

import "strings"

type AssetsRequest struct {
	Type string `query:"type" validate:"omitempty,oneof=CURRENCY INDEX COMMODITY CRYPTO STOCK OTC"`
}

func (r *AssetsRequest) Normalize() { r.Type = strings.ToUpper(strings.TrimSpace(r.Type)) }

type MarketDataRequest struct {
	Symbol  string `query:"symbol" validate:"required"`
	Periods int    `query:"periods" default:"100" validate:"gte=1,lte=500"`
}

type MarketDataBatchRequest struct {
	Symbols []string `json:"symbols" validate:"required,min=1,max=20,dive,required"`
	Periods int      `json:"periods" default:"100" validate:"gte=1,lte=500"`
}

type SignalRequest struct {
	Symbol string `query:"symbol" default:"EUR/USD" validate:"required"`
}

type PerformanceRequest struct {
	Symbol string `query:"symbol"`
}
