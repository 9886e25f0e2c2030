package telegram

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"portfolioLab/internal/backtest"
	"portfolioLab/internal/config"
	"portfolioLab/internal/finance"
	"portfolioLab/internal/metrics"
	"portfolioLab/internal/portfolio"
	"portfolioLab/internal/storage"
	"portfolioLab/internal/structure"
	"portfolioLab/internal/timeseries"
)

// /cmd or /cmd@botname followed by arguments
var reCommand = regexp.MustCompile(`(?s)^/([a-zA-Z_]+)(?:@[\w_]+)?(?:\s+(.*))?$`)

const analysisTimeout = 90 * time.Second

// Sender is the part of the bot API the handlers use.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// MarketData supplies the price history analyses run on.
type MarketData interface {
	FetchPriceTable(ctx context.Context, symbols []string, window string) (timeseries.PriceTable, error)
	FetchReturns(ctx context.Context, symbol, window string) (timeseries.Series, error)
	FetchBars(ctx context.Context, symbol, window string) (backtest.Bars, error)
}

// UsageStore records and reports command usage.
type UsageStore interface {
	LogUsage(chatID, userID int64, command string, ts int64) error
	UsageByCommand(since int64) (map[string]*storage.UsageStats, error)
	UsageTimeSeries(since, bucket int64) (map[string][]storage.TimeSeriesPoint, error)
}

// Explainer produces AI commentary on an analysis summary.
type Explainer interface {
	Enabled() bool
	Explain(ctx context.Context, summary string) (string, error)
}

type Handlers struct {
	api     Sender
	store   UsageStore
	market  MarketData
	charts  *finance.Charts
	explain Explainer
	metrics *metrics.Registry
	engine  config.Engine
	now     func() time.Time
}

type Deps struct {
	API       Sender
	Store     UsageStore
	Market    MarketData
	Explainer Explainer
	Metrics   *metrics.Registry
	Engine    config.Engine
}

func NewHandlers(d Deps) *Handlers {
	return &Handlers{
		api:     d.API,
		store:   d.Store,
		market:  d.Market,
		charts:  finance.NewCharts(d.Metrics),
		explain: d.Explainer,
		metrics: d.Metrics,
		engine:  d.Engine,
		now:     time.Now,
	}
}

type command func(ctx context.Context, chatID int64, args string) error

func (h *Handlers) commands() map[string]command {
	return map[string]command{
		"port":     h.handlePort,
		"advanced": h.handleAdvanced,
		"compare":  h.handleCompare,
		"backtest": h.handleBacktest,
		"explain":  h.handleExplain,
		"usage":    h.handleUsage,
	}
}

func (h *Handlers) HandleMessage(m *tgbotapi.Message) {
	txt := strings.TrimSpace(m.Text)
	g := reCommand.FindStringSubmatch(txt)
	if g == nil {
		return
	}
	name := strings.ToLower(g[1])
	if name == "help" || name == "start" {
		h.reply(m.Chat.ID, helpText+"\nStrategies: "+strings.Join(backtest.Names(), ", "))
		return
	}
	cmd, ok := h.commands()[name]
	if !ok {
		return
	}

	var userID int64
	if m.From != nil {
		userID = m.From.ID
	}
	reqID := uuid.NewString()
	logger := log.With().
		Str("component", "telegram").
		Str("request_id", reqID).
		Str("command", name).
		Int64("chat_id", m.Chat.ID).
		Logger()

	if err := h.store.LogUsage(m.Chat.ID, userID, name, h.now().Unix()); err != nil {
		logger.Warn().Err(err).Msg("usage log failed")
	}

	ctx, cancel := context.WithTimeout(logger.WithContext(context.Background()), analysisTimeout)
	defer cancel()

	timer := h.metrics.StartTimer(name)
	err := cmd(ctx, m.Chat.ID, g[2])
	if err != nil {
		timer.Stop("error")
		logger.Error().Err(err).Msg("analysis failed")
		h.reply(m.Chat.ID, "⚠️ Analysis failed: "+userError(err))
		return
	}
	timer.Stop("ok")
	logger.Info().Msg("command handled")
}

// userError keeps replies short and hides internals of upstream failures.
func userError(err error) string {
	switch {
	case errors.Is(err, finance.ErrDataUnavailable):
		return "market data unavailable (" + err.Error() + ")"
	case errors.Is(err, context.DeadlineExceeded):
		return "timed out"
	case errors.Is(err, timeseries.ErrEmptyInput):
		return "not enough price history for this window"
	default:
		return err.Error()
	}
}

// portfolioJob is a fetched and analysed portfolio request.
type portfolioJob struct {
	req      finance.PortfolioRequest
	window   string
	prices   timeseries.PriceTable
	analysis *portfolio.Analysis
}

func (h *Handlers) window(w string) string {
	if w == "" {
		return h.engine.DefaultWindow
	}
	return w
}

// analyzePortfolio fetches prices (and the benchmark) and runs the portfolio engine.
func (h *Handlers) analyzePortfolio(ctx context.Context, req finance.PortfolioRequest) (*portfolioJob, error) {
	job := &portfolioJob{req: req, window: h.window(req.Window)}
	prices, err := h.market.FetchPriceTable(ctx, req.Symbols, job.window)
	if err != nil {
		return nil, err
	}
	job.prices = prices

	reb := req.Rebalancing
	if reb == "" {
		reb = h.engine.Rebalancing
	}
	opts := portfolio.Options{
		Rebalancing: portfolio.ParseRebalancing(reb),
		RiskFree:    portfolio.RiskFreeRate(h.engine.RiskFree),
	}
	bench := req.Benchmark
	if bench == "" {
		bench = h.engine.Benchmark
	}
	if bench != "" && !strings.EqualFold(bench, "none") {
		br, err := h.market.FetchReturns(ctx, bench, job.window)
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("benchmark", bench).Msg("benchmark unavailable, continuing without it")
		} else {
			opts.Benchmark = &br
		}
	}

	job.analysis, err = portfolio.Analyze(prices, req.Weights, opts)
	if err != nil {
		return nil, err
	}
	return job, nil
}

func (h *Handlers) handlePort(ctx context.Context, chatID int64, args string) error {
	req, err := finance.ParsePortfolioRequest(args)
	if err != nil {
		return err
	}
	job, err := h.analyzePortfolio(ctx, req)
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Portfolio (%s) • %s", describeWeights(job.prices.Assets, job.analysis.Weights), job.window)
	text := formatAnalysis(title, job.analysis)
	rolling := portfolio.RollingSharpe(job.analysis.Returns, h.engine.RollingWindow)
	text += formatRollingSharpe(h.engine.RollingWindow, rolling)
	if req.Fallback {
		text = "Weights did not match the symbols, using equal weights.\n\n" + text
	}
	h.reply(chatID, text)

	img, err := h.charts.ValueChart("Portfolio value (base 100)", job.analysis, job.prices)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("value chart failed")
		return nil
	}
	h.photo(chatID, "portfolio.png", img, "Portfolio vs constituents • "+job.window)
	if dd, err := h.charts.DrawdownChart("Drawdown", job.analysis.Value); err == nil {
		h.photo(chatID, "drawdown.png", dd, "Drawdown • "+job.window)
	}
	if rc, err := h.charts.RollingSharpeChart(h.engine.RollingWindow, rolling); err == nil {
		h.photo(chatID, "rolling_sharpe.png", rc, "Rolling Sharpe • "+job.window)
	}
	return nil
}

func (h *Handlers) handleAdvanced(ctx context.Context, chatID int64, args string) error {
	req, err := finance.ParsePortfolioRequest(args)
	if err != nil {
		return err
	}
	window := h.window(req.Window)
	prices, err := h.market.FetchPriceTable(ctx, req.Symbols, window)
	if err != nil {
		return err
	}
	rep, err := structure.Analyze(prices, req.Weights, structure.Config{
		Scales:       h.engine.Scales,
		Lags:         h.engine.Lags,
		RegimeWindow: h.engine.RegimeWindow,
	})
	if err != nil {
		return err
	}
	h.reply(chatID, formatStructure(fmt.Sprintf("Structure (%s) • %s", describeWeights(prices.Assets, portfolio.NormalizeWeights(req.Weights)), window), rep))
	if img, err := h.charts.HurstChart("Hurst exponent", rep); err == nil {
		h.photo(chatID, "hurst.png", img, "Hurst exponent by asset")
	}
	return nil
}

func (h *Handlers) handleCompare(ctx context.Context, chatID int64, args string) error {
	reqs, err := finance.ParseCompareRequest(args)
	if err != nil {
		return err
	}
	candidates := make([]portfolio.Candidate, 0, len(reqs))
	for _, req := range reqs {
		window := h.window(req.Window)
		prices, err := h.market.FetchPriceTable(ctx, req.Symbols, window)
		if err != nil {
			return err
		}
		candidates = append(candidates, portfolio.Candidate{
			Name:    describeWeights(prices.Assets, portfolio.NormalizeWeights(req.Weights)),
			Prices:  prices,
			Weights: req.Weights,
			Options: portfolio.Options{
				Rebalancing: portfolio.ParseRebalancing(firstNonEmpty(req.Rebalancing, h.engine.Rebalancing)),
				RiskFree:    portfolio.RiskFreeRate(h.engine.RiskFree),
			},
		})
	}
	cats, err := portfolio.Compare(candidates)
	if err != nil {
		return err
	}
	h.reply(chatID, formatComparison(cats))
	return nil
}

func (h *Handlers) handleBacktest(ctx context.Context, chatID int64, args string) error {
	req, err := finance.ParseBacktestRequest(args)
	if err != nil {
		return err
	}
	symbol := firstNonEmpty(req.Symbol, h.engine.BacktestSymbol)
	window := firstNonEmpty(req.Window, "5y")
	bars, err := h.market.FetchBars(ctx, symbol, window)
	if err != nil {
		return err
	}
	cfg := backtest.Config{Capital: h.engine.Capital}
	var results []*backtest.Result
	if req.Strategy != "" {
		res, err := backtest.Run(req.Strategy, bars, cfg)
		if err != nil {
			return err
		}
		results = []*backtest.Result{res}
	} else {
		results, err = backtest.RunAll(bars, cfg)
		if err != nil {
			return err
		}
	}
	h.reply(chatID, formatBacktest(symbol, window, results))
	if img, err := h.charts.EquityChart(symbol, results); err == nil {
		h.photo(chatID, "backtest.png", img, symbol+" equity curves • "+window)
	}
	return nil
}

func (h *Handlers) handleExplain(ctx context.Context, chatID int64, args string) error {
	if h.explain == nil || !h.explain.Enabled() {
		h.reply(chatID, "AI commentary is not configured on this bot.")
		return nil
	}
	req, err := finance.ParsePortfolioRequest(args)
	if err != nil {
		return err
	}
	job, err := h.analyzePortfolio(ctx, req)
	if err != nil {
		return err
	}
	summary := formatAnalysis(describeWeights(job.prices.Assets, job.analysis.Weights), job.analysis)
	rep, err := structure.Analyze(job.prices, job.analysis.Weights, structure.Config{
		Scales:       h.engine.Scales,
		Lags:         h.engine.Lags,
		RegimeWindow: h.engine.RegimeWindow,
	})
	if err == nil {
		summary += "\n" + formatStructure("Structure", rep)
	}
	h.reply(chatID, "Thinking…")
	out, err := h.explain.Explain(ctx, summary)
	if err != nil {
		return err
	}
	h.reply(chatID, out)
	return nil
}

func (h *Handlers) handleUsage(_ context.Context, chatID int64, args string) error {
	days := 7
	if a := strings.TrimSpace(args); a != "" {
		if n, err := strconv.Atoi(a); err == nil {
			days = n
		}
	}
	if days < 1 {
		days = 1
	}
	if days > 90 {
		days = 90
	}
	since := h.now().Add(-time.Duration(days) * 24 * time.Hour).Unix()
	stats, err := h.store.UsageByCommand(since)
	if err != nil {
		return err
	}
	h.reply(chatID, formatUsage(stats, days))
	if len(stats) == 0 {
		return nil
	}
	if img, err := h.charts.UsagePie(stats, days); err == nil {
		h.photo(chatID, "usage.png", img, "Command usage")
	}
	bucket := int64(86400)
	if days <= 1 {
		bucket = 3600
	}
	series, err := h.store.UsageTimeSeries(since, bucket)
	if err != nil {
		return err
	}
	if img, err := h.charts.UsageTrend(series, bucket, days); err == nil {
		h.photo(chatID, "usage_series.png", img, "Command usage over time")
	}
	return nil
}

func firstNonEmpty(v, def string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

// Telegram rejects messages above 4096 characters.
const maxMessage = 4000

func (h *Handlers) reply(chatID int64, text string) {
	for len(text) > 0 {
		chunk := text
		if len(chunk) > maxMessage {
			cut := strings.LastIndex(chunk[:maxMessage], "\n")
			if cut <= 0 {
				cut = maxMessage
				for cut > 0 && !utf8.RuneStart(text[cut]) {
					cut--
				}
			}
			chunk = text[:cut]
		}
		text = strings.TrimPrefix(text[len(chunk):], "\n")
		if _, err := h.api.Send(tgbotapi.NewMessage(chatID, chunk)); err != nil {
			log.Warn().Str("component", "telegram").Int64("chat_id", chatID).Err(err).Msg("send failed")
		}
	}
}

func (h *Handlers) photo(chatID int64, name string, img []byte, caption string) {
	p := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: img})
	p.Caption = caption
	if _, err := h.api.Send(p); err != nil {
		log.Warn().Str("component", "telegram").Int64("chat_id", chatID).Err(err).Msg("send photo failed")
	}
}
