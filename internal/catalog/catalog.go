package catalog

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"SignalDesk/internal/model"
)

// DefaultBasePrice seeds simulation for symbols without a catalog entry.
const DefaultBasePrice = 100.0

type classProfile struct {
	volatility float64
	volume     float64
}

var classProfiles = map[model.AssetClass]classProfile{
	model.ClassCurrency:  {0.002, 1_000_000},
	model.ClassIndex:     {0.015, 500_000},
	model.ClassCommodity: {0.025, 200_000},
	model.ClassCrypto:    {0.05, 100_000},
	model.ClassStock:     {0.03, 300_000},
	model.ClassOTC:       {0.003, 150_000},
}

var defaultProfile = classProfile{0.01, 100_000}

// Volatility returns the per-bar base volatility of a class as a fraction of price.
func Volatility(class model.AssetClass) float64 {
	if p, ok := classProfiles[class]; ok {
		return p.volatility
	}
	return defaultProfile.volatility
}

// BaseVolume returns the typical per-bar volume of a class.
func BaseVolume(class model.AssetClass) float64 {
	if p, ok := classProfiles[class]; ok {
		return p.volume
	}
	return defaultProfile.volume
}

func asset(symbol, name string, class model.AssetClass, category string, maxTrade, spread, base float64, decimals int32) model.Asset {
	return model.Asset{
		Symbol: symbol, Name: name, Type: class, Category: category, IsActive: true,
		MinTradeAmount: 1, MaxTradeAmount: maxTrade, Spread: spread, BasePrice: base, Decimals: decimals,
	}
}

var assets = []model.Asset{
	asset("EUR/USD", "Euro vs US Dollar", model.ClassCurrency, "Major", 5000, 0.00015, 1.0845, 5),
	asset("GBP/USD", "British Pound vs US Dollar", model.ClassCurrency, "Major", 5000, 0.00020, 1.2634, 5),
	asset("USD/JPY", "US Dollar vs Japanese Yen", model.ClassCurrency, "Major", 5000, 0.015, 149.85, 3),
	asset("USD/CHF", "US Dollar vs Swiss Franc", model.ClassCurrency, "Major", 5000, 0.00018, 0.8756, 5),
	asset("AUD/USD", "Australian Dollar vs US Dollar", model.ClassCurrency, "Major", 5000, 0.00022, 0.6523, 5),
	asset("USD/CAD", "US Dollar vs Canadian Dollar", model.ClassCurrency, "Major", 5000, 0.00025, 1.3654, 5),
	asset("NZD/USD", "New Zealand Dollar vs US Dollar", model.ClassCurrency, "Major", 5000, 0.00030, 0.5987, 5),
	asset("EUR/GBP", "Euro vs British Pound", model.ClassCurrency, "Minor", 3000, 0.00025, 0.8589, 5),
	asset("EUR/JPY", "Euro vs Japanese Yen", model.ClassCurrency, "Minor", 3000, 0.025, 162.45, 3),
	asset("GBP/JPY", "British Pound vs Japanese Yen", model.ClassCurrency, "Minor", 3000, 0.035, 189.23, 3),

	asset("S&P500", "S&P 500 Index", model.ClassIndex, "US Indices", 10000, 0.5, 4567.89, 2),
	asset("NASDAQ", "NASDAQ 100", model.ClassIndex, "US Indices", 10000, 0.8, 14234.56, 2),
	asset("DOW", "Dow Jones Industrial Average", model.ClassIndex, "US Indices", 10000, 1.0, 34567.12, 2),
	asset("FTSE100", "FTSE 100 Index", model.ClassIndex, "European Indices", 8000, 1.2, 7456.78, 2),
	asset("DAX", "DAX 30", model.ClassIndex, "European Indices", 8000, 1.5, 15678.90, 2),
	asset("CAC40", "CAC 40", model.ClassIndex, "European Indices", 8000, 1.3, 7234.56, 2),
	asset("NIKKEI", "Nikkei 225", model.ClassIndex, "Asian Indices", 8000, 2.0, 32456.78, 2),

	asset("GOLD", "Gold", model.ClassCommodity, "Precious Metals", 5000, 0.30, 2034.56, 2),
	asset("SILVER", "Silver", model.ClassCommodity, "Precious Metals", 3000, 0.02, 24.78, 3),
	asset("OIL", "Crude Oil (WTI)", model.ClassCommodity, "Energy", 5000, 0.05, 78.45, 2),
	asset("BRENT", "Brent Oil", model.ClassCommodity, "Energy", 5000, 0.05, 82.34, 2),
	asset("NATGAS", "Natural Gas", model.ClassCommodity, "Energy", 3000, 0.003, 3.456, 3),

	asset("BTC/USD", "Bitcoin", model.ClassCrypto, "Major Crypto", 2000, 50, 43567.89, 2),
	asset("ETH/USD", "Ethereum", model.ClassCrypto, "Major Crypto", 2000, 2, 2345.67, 2),
	asset("LTC/USD", "Litecoin", model.ClassCrypto, "Alt Crypto", 1000, 0.5, 78.90, 2),
	asset("XRP/USD", "Ripple", model.ClassCrypto, "Alt Crypto", 1000, 0.001, 0.5678, 4),

	asset("OTC_EUR/USD", "EUR/USD OTC", model.ClassOTC, "OTC Currency", 3000, 0.0003, 1.0842, 5),
	asset("OTC_GBP/USD", "GBP/USD OTC", model.ClassOTC, "OTC Currency", 3000, 0.0004, 1.2631, 5),
	asset("OTC_USD/JPY", "USD/JPY OTC", model.ClassOTC, "OTC Currency", 3000, 0.03, 149.82, 3),
	asset("OTC_GOLD", "Gold OTC", model.ClassOTC, "OTC Commodity", 2000, 0.50, 2033.45, 2),
	asset("OTC_OIL", "Oil OTC", model.ClassOTC, "OTC Commodity", 2000, 0.08, 78.42, 2),

	asset("AAPL", "Apple Inc.", model.ClassStock, "Tech Stocks", 1000, 0.02, 189.45, 2),
	asset("GOOGL", "Alphabet Inc.", model.ClassStock, "Tech Stocks", 1000, 0.05, 134.56, 2),
	asset("MSFT", "Microsoft Corporation", model.ClassStock, "Tech Stocks", 1000, 0.03, 378.90, 2),
	asset("TSLA", "Tesla Inc.", model.ClassStock, "Auto Stocks", 1000, 0.10, 234.67, 2),
	asset("AMZN", "Amazon.com Inc.", model.ClassStock, "Tech Stocks", 1000, 0.08, 145.78, 2),

	asset("ASIA_COMPOSITE", "Asia Composite Index", model.ClassIndex, "Composite Indices", 15000, 2.5, 8567.89, 2),
	asset("COMPOUND_INDEX", "Compound Index", model.ClassIndex, "Composite Indices", 12000, 2.0, 12345.67, 2),
	asset("CRYPTO_COMPOSITE", "Crypto Composite Index", model.ClassIndex, "Crypto Indices", 8000, 5.0, 4567.12, 2),
	asset("EUROPE_COMPOSITE", "Europe Composite Index", model.ClassIndex, "Composite Indices", 15000, 2.8, 9876.54, 2),
	asset("ASTRO_INDEX", "Astro Index", model.ClassIndex, "Special Indices", 10000, 3.0, 6789.23, 2),
	asset("MAHA_JANTAR", "Maha Jantar Index", model.ClassIndex, "Special Indices", 12000, 2.5, 11234.56, 2),
	asset("MOONCH_INDEX", "Moonch Index", model.ClassIndex, "Special Indices", 8000, 3.5, 7654.32, 2),
}

var bySymbol = func() map[string]model.Asset {
	m := make(map[string]model.Asset, len(assets))
	for _, a := range assets {
		m[a.Symbol] = a
	}
	return m
}()

// Lookup returns the catalog entry for symbol.
func Lookup(symbol string) (model.Asset, error) {
	a, ok := bySymbol[symbol]
	if !ok {
		return model.Asset{}, fmt.Errorf("%w: %q", model.ErrUnknownSymbol, symbol)
	}
	return a, nil
}

// Active returns all active assets in catalog order.
func Active() []model.Asset {
	out := make([]model.Asset, 0, len(assets))
	for _, a := range assets {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out
}

// ByType returns the active assets of one class.
func ByType(class model.AssetClass) []model.Asset {
	var out []model.Asset
	for _, a := range assets {
		if a.IsActive && a.Type == class {
			out = append(out, a)
		}
	}
	return out
}

// Symbols returns every catalog symbol, sorted.
func Symbols() []string {
	out := make([]string, 0, len(assets))
	for _, a := range assets {
		out = append(out, a.Symbol)
	}
	sort.Strings(out)
	return out
}

// BasePrice returns the seed price for symbol, or DefaultBasePrice when unknown.
func BasePrice(symbol string) float64 {
	if a, ok := bySymbol[symbol]; ok {
		return a.BasePrice
	}
	return DefaultBasePrice
}

// ClassOf returns the asset class of symbol. Unknown symbols yield an empty class.
func ClassOf(symbol string) model.AssetClass {
	return bySymbol[symbol].Type
}

// Round quantises price to the quote precision of symbol (4 decimals when unknown).
func Round(symbol string, price float64) float64 {
	places := int32(4)
	if a, ok := bySymbol[symbol]; ok {
		places = a.Decimals
	}
	f, _ := decimal.NewFromFloat(price).Round(places).Float64()
	return f
}
