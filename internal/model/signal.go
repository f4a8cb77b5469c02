package model

// Direction is the side an indicator or signal points to.
type Direction string

const (
	Buy     Direction = "BUY"
	Sell    Direction = "SELL"
	Neutral Direction = "NEUTRAL"
)

// RiskLevel grades a composite signal.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// IndicatorResult is one classified indicator reading.
// Value is a float64 for numeric indicators and a string for band labels.
type IndicatorResult struct {
	Name        string    `json:"name"`
	Value       any       `json:"value"`
	Signal      Direction `json:"signal"`
	Strength    float64   `json:"strength"`
	Description string    `json:"description"`
}

// TradingSignal is the composite output of the aggregator.
type TradingSignal struct {
	Asset            string            `json:"asset"`
	Signal           Direction         `json:"signal"`
	Strength         float64           `json:"strength"`
	Confidence       float64           `json:"confidence"`
	Timestamp        int64             `json:"timestamp"`
	Timeframe        string            `json:"timeframe"`
	Indicators       []IndicatorResult `json:"indicators"`
	Reasoning        []string          `json:"reasoning"`
	RiskLevel        RiskLevel         `json:"riskLevel"`
	ExpectedDuration int               `json:"expectedDuration"`

	// Partial is set when the series was too short for a full evaluation.
	Partial bool `json:"-"`
}

// SessionInfo identifies the trading session active at a given UTC hour.
type SessionInfo struct {
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
	IsOptimal  bool    `json:"isOptimal"`
}

// Outcome of a resolved signal.
type Outcome string

const (
	OutcomeWin     Outcome = "WIN"
	OutcomeLoss    Outcome = "LOSS"
	OutcomeDraw    Outcome = "DRAW"
	OutcomePending Outcome = "PENDING"
)

// Performance aggregates resolved signal outcomes.
type Performance struct {
	Asset   string  `json:"asset,omitempty"`
	Total   int     `json:"total"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Draws   int     `json:"draws"`
	Pending int     `json:"pending"`
	WinRate float64 `json:"winRate"`
}
