package finance

import (
	"errors"
	"time"
)

// ErrDataUnavailable is returned when no usable market data could be fetched.
var ErrDataUnavailable = errors.New("market data unavailable")

// yahooChartResp mirrors Yahoo v8 chart response (trimmed to needed fields).
// Quote arrays carry nulls for halted sessions.
type yahooChartResp struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GmtOffset int64  `json:"gmtoffset"`
				Timezone  string `json:"timezone"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open  []*float64 `json:"open"`
					High  []*float64 `json:"high"`
					Low   []*float64 `json:"low"`
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"chart"`
}

// yahooSparkResp mirrors Yahoo v7 spark fallback (trimmed)
type yahooSparkResp struct {
	Spark struct {
		Result []struct {
			Symbol   string `json:"symbol"`
			Response []struct {
				Timestamp []int64    `json:"timestamp"`
				Close     []*float64 `json:"close"`
			} `json:"response"`
		} `json:"result"`
		Error any `json:"error"`
	} `json:"spark"`
}

// dailyBars is one symbol's daily history. Time holds the UTC midnight of each
// exchange-local trading date so bars from different venues line up.
type dailyBars struct {
	Symbol string
	Time   []int64
	Open   []float64
	High   []float64
	Low    []float64
	Close  []float64
}

// Chart image cache entry
type chartCacheEntry struct {
	createdAt time.Time
	image     []byte
}

const chartCacheTTL = 60 * time.Second
