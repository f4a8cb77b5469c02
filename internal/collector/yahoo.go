package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"

	"SignalDesk/internal/model"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *http.Client
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(proxyURL string) *YahooFetcher {
	return &YahooFetcher{
		BaseURL: yahooBaseURL,
		Client:  newHTTPClient(proxyURL),
		SymbolMap: map[string]string{
			"EUR/USD": "EURUSD=X",
			"GBP/USD": "GBPUSD=X",
			"USD/JPY": "JPY=X",
			"USD/CHF": "CHF=X",
			"AUD/USD": "AUDUSD=X",
			"USD/CAD": "CAD=X",
			"NZD/USD": "NZDUSD=X",
			"EUR/GBP": "EURGBP=X",
			"EUR/JPY": "EURJPY=X",
			"GBP/JPY": "GBPJPY=X",
			"S&P500":  "^GSPC",
			"NASDAQ":  "^NDX",
			"DOW":     "^DJI",
			"FTSE100": "^FTSE",
			"DAX":     "^GDAXI",
			"CAC40":   "^FCHI",
			"NIKKEI":  "^N225",
			"GOLD":    "GC=F",
			"SILVER":  "SI=F",
			"OIL":     "CL=F",
			"BRENT":   "BZ=F",
			"NATGAS":  "NG=F",
			"BTC/USD": "BTC-USD",
			"ETH/USD": "ETH-USD",
			"LTC/USD": "LTC-USD",
			"XRP/USD": "XRP-USD",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from Yahoo Finance chart API.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

func at(v []*float64, i int) float64 {
	if i >= len(v) || v[i] == nil {
		return 0
	}
	return *v[i]
}

func (f *YahooFetcher) fetchChart(ctx context.Context, symbol, interval, rng string) (model.BarSeries, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=%s&range=%s",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), interval, rng)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("yahoo read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("yahoo: status %d, body: %s", resp.StatusCode, string(body))
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, fmt.Errorf("yahoo decode: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo: no data returned")
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	bars := make(model.BarSeries, 0, len(result.Timestamp))

	for i, ts := range result.Timestamp {
		o, h, l, c := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if o == 0 || h == 0 || l == 0 || c == 0 {
			continue // skip null bars (market closed)
		}
		bars = append(bars, model.PriceBar{
			Timestamp: ts * 1000,
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    at(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp < bars[j].Timestamp })
	if err := bars.Validate(); err != nil {
		return nil, fmt.Errorf("yahoo bars for %s: %w", symbol, err)
	}
	return bars, nil
}

// FetchBars returns the most recent count one-minute bars.
func (f *YahooFetcher) FetchBars(ctx context.Context, symbol string, count int) (model.BarSeries, error) {
	// Yahoo serves 1m bars for at most 7 days
	rng := "5d"
	if count <= 390 {
		rng = "1d"
	}
	bars, err := f.fetchChart(ctx, symbol, "1m", rng)
	if err != nil {
		return nil, err
	}
	return bars.Tail(count), nil
}

func (f *YahooFetcher) LastPrice(ctx context.Context, symbol string) (float64, error) {
	bars, err := f.fetchChart(ctx, symbol, "1m", "1d")
	if err != nil {
		return 0, err
	}
	last, ok := bars.Last()
	if !ok {
		return 0, fmt.Errorf("yahoo: no price data")
	}
	return last.Close, nil
}
