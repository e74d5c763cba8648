package marketdata

import (
	"sort"
	"sync"
	"time"

	"trading-personality/internal/stats"

	"github.com/markcheno/go-talib"
)

// relativeVolumeWindow is the trailing window of the average volume.
const relativeVolumeWindow = 20

// Bar is one daily OHLCV row; only close and volume are used.
type Bar struct {
	Date   time.Time `json:"date"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// Snapshot is a Universe plus daily bars for the tickers of one run.
type Snapshot struct {
	*Universe
	bars map[string][]Bar

	mu  sync.Mutex
	sma map[smaKey][]float64
}

type smaKey struct {
	ticker string
	window int
}

var _ Context = (*Snapshot)(nil)

// NewSnapshot copies and sorts bars by date.
func NewSnapshot(u *Universe, bars map[string][]Bar) *Snapshot {
	if u == nil {
		u = DefaultUniverse()
	}
	s := &Snapshot{
		Universe: u,
		bars:     make(map[string][]Bar, len(bars)),
		sma:      make(map[smaKey][]float64),
	}
	for ticker, series := range bars {
		cp := make([]Bar, len(series))
		copy(cp, series)
		sort.SliceStable(cp, func(i, j int) bool { return cp[i].Date.Before(cp[j].Date) })
		s.bars[norm(ticker)] = cp
	}
	return s
}

// Bars returns the sorted bars of ticker.
func (s *Snapshot) Bars(ticker string) []Bar {
	return s.bars[norm(ticker)]
}

// index returns the last bar on or before the calendar date of date, or -1.
func (s *Snapshot) index(ticker string, date time.Time) ([]Bar, int) {
	series := s.bars[norm(ticker)]
	day := stats.CivilDay(date)
	i := sort.Search(len(series), func(i int) bool {
		return stats.CivilDay(series[i].Date).After(day)
	})
	return series, i - 1
}

func (s *Snapshot) ClosePrice(ticker string, date time.Time) (float64, bool) {
	series, i := s.index(ticker, date)
	if i < 0 || series[i].Close <= 0 {
		return 0, false
	}
	return series[i].Close, true
}

func (s *Snapshot) RelativeVolume(ticker string, date time.Time) (float64, bool) {
	series, i := s.index(ticker, date)
	if i < 1 {
		return 0, false
	}
	start := i - relativeVolumeWindow
	if start < 0 {
		start = 0
	}
	var trailing []float64
	for _, b := range series[start:i] {
		trailing = append(trailing, b.Volume)
	}
	avg := stats.Mean(trailing)
	if avg <= 0 {
		return 0, false
	}
	return series[i].Volume / avg, true
}

// MovingAverage returns the simple moving average of closes over window bars
// ending at date.
func (s *Snapshot) MovingAverage(ticker string, date time.Time, window int) (float64, bool) {
	if window < 2 {
		return s.ClosePrice(ticker, date)
	}
	series, i := s.index(ticker, date)
	if i+1 < window {
		return 0, false
	}
	sma := s.smaSeries(norm(ticker), series, window)
	if sma[i] <= 0 {
		return 0, false
	}
	return sma[i], true
}

func (s *Snapshot) smaSeries(ticker string, series []Bar, window int) []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := smaKey{ticker: ticker, window: window}
	if cached, ok := s.sma[k]; ok {
		return cached
	}
	closes := make([]float64, len(series))
	for i, b := range series {
		closes[i] = b.Close
	}
	out := talib.Sma(closes, window)
	s.sma[k] = out
	return out
}
