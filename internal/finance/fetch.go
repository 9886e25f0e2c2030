package finance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// errSymbolNotFound marks a 404 from Yahoo; it does not count against the breaker.
var errSymbolNotFound = errors.New("symbol not found")

func preview(body []byte) string {
	s := string(body)
	if len(s) > 120 {
		s = s[:120]
	}
	return s
}

// get performs one GET with browser-like headers and classifies the failure modes Yahoo
// is known for: 429 edge responses, HTML error pages and non-200 statuses.
func (p *Provider) get(ctx context.Context, rawURL, symbol string) ([]byte, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Referer", fmt.Sprintf("https://finance.yahoo.com/quote/%s/chart", strings.ToUpper(symbol)))

	resp, err := p.client.Do(req)
	if err != nil {
		p.metrics.FetchError("http")
		return nil, err
	}
	body, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		p.metrics.FetchError("http")
		return nil, fmt.Errorf("failed to read yahoo response: %w", readErr)
	}
	switch {
	case resp.StatusCode == http.StatusTooManyRequests || strings.HasPrefix(string(body), "Edge: Too Many Requests"):
		p.metrics.FetchError("rate_limited")
		return nil, fmt.Errorf("yahoo returned 429: Edge: Too Many Requests")
	case resp.StatusCode == http.StatusNotFound:
		p.metrics.FetchError("not_found")
		return nil, fmt.Errorf("%s: %w", symbol, errSymbolNotFound)
	case resp.StatusCode != http.StatusOK:
		p.metrics.FetchError("status")
		return nil, fmt.Errorf("yahoo returned %d: %s", resp.StatusCode, preview(body))
	case strings.HasPrefix(string(body), "<") || strings.HasPrefix(string(body), "Edge:"):
		p.metrics.FetchError("decode")
		return nil, fmt.Errorf("yahoo returned non-json body: %s", preview(body))
	}
	return body, nil
}

// retry rotates over the hosts and backs off between rounds until decode succeeds.
func (p *Provider) retry(ctx context.Context, symbol string, buildURL func(base string) string, decode func([]byte) error) error {
	var lastErr error
	for attempt := 0; attempt < len(p.backoffs)+1; attempt++ {
		for _, base := range p.hosts {
			body, err := p.get(ctx, buildURL(base), symbol)
			if err != nil {
				if errors.Is(err, errSymbolNotFound) || ctx.Err() != nil {
					return err
				}
				lastErr = err
				continue
			}
			if err := decode(body); err != nil {
				p.metrics.FetchError("decode")
				lastErr = fmt.Errorf("failed to parse yahoo json: %v; body: %s", err, preview(body))
				continue
			}
			return nil
		}
		if attempt < len(p.backoffs) {
			log.Debug().Str("component", "yahoo").Str("symbol", symbol).Err(lastErr).Int("attempt", attempt+1).Msg("retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.backoffs[attempt]):
			}
		}
	}
	return lastErr
}

// fetchChart pulls daily OHLC bars from the v8 chart endpoint.
func (p *Provider) fetchChart(ctx context.Context, symbol, rangeParam string) (dailyBars, error) {
	var yc yahooChartResp
	err := p.retry(ctx, symbol, func(base string) string {
		return fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=1d&events=div,splits", base, url.PathEscape(symbol), rangeParam)
	}, func(body []byte) error {
		yc = yahooChartResp{}
		return json.Unmarshal(body, &yc)
	})
	if err != nil {
		return dailyBars{}, err
	}
	if len(yc.Chart.Result) == 0 || len(yc.Chart.Result[0].Indicators.Quote) == 0 {
		p.metrics.FetchError("empty")
		return dailyBars{}, fmt.Errorf("%s: no data", symbol)
	}
	res := yc.Chart.Result[0]
	q := res.Indicators.Quote[0]
	out := dailyBars{Symbol: strings.ToUpper(symbol)}
	for i, ts := range res.Timestamp {
		out.Time = append(out.Time, tradingDate(ts, res.Meta.GmtOffset))
		out.Open = append(out.Open, deref(q.Open, i))
		out.High = append(out.High, deref(q.High, i))
		out.Low = append(out.Low, deref(q.Low, i))
		out.Close = append(out.Close, deref(q.Close, i))
	}
	return out, nil
}

// fetchSpark is the v7 spark fallback; it carries closes only.
func (p *Provider) fetchSpark(ctx context.Context, symbol, rangeParam string) (dailyBars, error) {
	var sp yahooSparkResp
	err := p.retry(ctx, symbol, func(base string) string {
		return fmt.Sprintf("%s/v7/finance/spark?symbols=%s&range=%s&interval=1d", base, url.QueryEscape(strings.ToUpper(symbol)), rangeParam)
	}, func(body []byte) error {
		sp = yahooSparkResp{}
		return json.Unmarshal(body, &sp)
	})
	if err != nil {
		return dailyBars{}, err
	}
	if len(sp.Spark.Result) == 0 || len(sp.Spark.Result[0].Response) == 0 {
		p.metrics.FetchError("empty")
		return dailyBars{}, fmt.Errorf("%s: no spark data", symbol)
	}
	r := sp.Spark.Result[0].Response[0]
	out := dailyBars{Symbol: strings.ToUpper(symbol)}
	for i, ts := range r.Timestamp {
		out.Time = append(out.Time, tradingDate(ts, 0))
		out.Close = append(out.Close, deref(r.Close, i))
	}
	return out, nil
}

// tradingDate maps a bar timestamp to the UTC midnight of its exchange-local date.
func tradingDate(ts, gmtOffset int64) int64 {
	local := ts + gmtOffset
	return local - mod64(local, 86400)
}

func mod64(a, m int64) int64 {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}
