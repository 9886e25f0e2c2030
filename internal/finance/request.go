package finance

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"portfolioLab/internal/portfolio"
)

// PortfolioRequest is a parsed /port, /advanced or /compare argument list.
// Empty Window, Benchmark or Rebalancing mean "use the configured default".
type PortfolioRequest struct {
	Symbols     []string
	Weights     portfolio.WeightVector
	Fallback    bool // weights could not be used and equal weights were applied
	Rebalancing string
	Window      string
	Benchmark   string
}

// stripCommand drops a leading "/cmd" or "/cmd@botname".
func stripCommand(input string) string {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "/") {
		if i := strings.IndexAny(input, " \t\n"); i >= 0 {
			return strings.TrimSpace(input[i:])
		}
		return ""
	}
	return input
}

// ParsePortfolioRequest accepts either the keyed form
//
//	/port AAPL,MSFT w=60,40 reb=monthly 1y bench=SPY
//
// or symbol/weight pairs
//
//	/port SPY 0.5 AAPL 0.25 1y
func ParsePortfolioRequest(input string) (PortfolioRequest, error) {
	var req PortfolioRequest
	var weightText string
	var pairWeights []float64
	pairs := false

	for _, tok := range strings.Fields(stripCommand(input)) {
		if k, v, ok := strings.Cut(tok, "="); ok {
			switch strings.ToLower(k) {
			case "w", "weights":
				weightText = v
			case "reb", "rebalance", "rebalancing":
				req.Rebalancing = strings.ToLower(v)
			case "bench", "benchmark":
				req.Benchmark = strings.ToUpper(v)
			case "window", "period":
				req.Window = strings.ToLower(v)
			default:
				return req, fmt.Errorf("unknown option %q", k)
			}
			continue
		}
		if IsWindow(tok) && len(req.Symbols) > 0 {
			req.Window = strings.ToLower(tok)
			continue
		}
		if f, err := strconv.ParseFloat(strings.TrimSuffix(tok, "%"), 64); err == nil {
			if math.IsNaN(f) || math.IsInf(f, 0) {
				return req, fmt.Errorf("weight %s is not a finite number", tok)
			}
			if len(req.Symbols) != len(pairWeights)+1 {
				return req, fmt.Errorf("weight %s does not follow a symbol", tok)
			}
			pairs = true
			pairWeights = append(pairWeights, f)
			continue
		}
		for _, s := range strings.Split(tok, ",") {
			s = strings.ToUpper(strings.TrimSpace(s))
			if s == "" {
				continue
			}
			for _, seen := range req.Symbols {
				if seen == s {
					return req, fmt.Errorf("duplicate symbol: %s", s)
				}
			}
			req.Symbols = append(req.Symbols, s)
		}
	}

	if len(req.Symbols) == 0 {
		return req, fmt.Errorf("no symbols given")
	}
	if req.Window != "" {
		if _, _, err := ParseWindow(req.Window); err != nil {
			return req, err
		}
	}

	switch {
	case pairs:
		if len(pairWeights) != len(req.Symbols) {
			return req, fmt.Errorf("invalid format: each symbol must have a weight")
		}
		req.Weights = make(portfolio.WeightVector, len(req.Symbols))
		for i, s := range req.Symbols {
			req.Weights[s] = pairWeights[i]
		}
		req.Weights = portfolio.NormalizeWeights(req.Weights)
	default:
		req.Weights, req.Fallback = portfolio.ParseWeights(weightText, req.Symbols)
	}
	return req, nil
}

// ParseCompareRequest splits "/compare AAPL,MSFT | SPY,TLT w=60,40 | ..." into one
// request per candidate. A window given on the first candidate applies to all.
func ParseCompareRequest(input string) ([]PortfolioRequest, error) {
	parts := strings.Split(stripCommand(input), "|")
	if len(parts) < 2 {
		return nil, fmt.Errorf("compare needs at least two portfolios separated by |")
	}
	out := make([]PortfolioRequest, 0, len(parts))
	for i, p := range parts {
		req, err := ParsePortfolioRequest(p)
		if err != nil {
			return nil, fmt.Errorf("portfolio %d: %w", i+1, err)
		}
		if req.Window == "" && i > 0 {
			req.Window = out[0].Window
		}
		out = append(out, req)
	}
	return out, nil
}

// BacktestRequest is a parsed /backtest argument list.
type BacktestRequest struct {
	Symbol   string
	Window   string
	Strategy string // empty runs every strategy
}

// ParseBacktestRequest parses "/backtest GLE.PA 5y macd"; every token is optional.
func ParseBacktestRequest(input string) (BacktestRequest, error) {
	var req BacktestRequest
	for _, tok := range strings.Fields(stripCommand(input)) {
		switch {
		case IsWindow(tok) && req.Window == "":
			req.Window = strings.ToLower(tok)
		case req.Symbol == "":
			req.Symbol = strings.ToUpper(tok)
		case req.Strategy == "":
			req.Strategy = strings.ToLower(tok)
		default:
			return req, fmt.Errorf("unexpected argument %q", tok)
		}
	}
	return req, nil
}
