package marketdata

import (
	"fmt"
	"os"
	"strings"
	"time"

	"trading-personality/internal/models"
	"trading-personality/internal/stats"

	"gopkg.in/yaml.v3"
)

const defaultRecentIPODays = 365

// Universe is the static reference data: fund classifications, crowd lists,
// sectors, market caps and listing dates.
type Universe struct {
	ETFs          map[string]models.ETFInfo `yaml:"etfs"`
	Meme          []string                  `yaml:"meme"`
	MegaCap       []string                  `yaml:"mega_cap"`
	SmallCap      []string                  `yaml:"small_cap"`
	Popular       []string                  `yaml:"popular"`
	Sectors       map[string]string         `yaml:"sectors"`
	MarketCaps    map[string]float64        `yaml:"market_caps"`
	IPODates      map[string]string         `yaml:"ipo_dates"` // YYYY-MM-DD
	RecentIPODays int                       `yaml:"recent_ipo_days"`

	meme    stats.Set
	mega    stats.Set
	small   stats.Set
	popular []string
	ipo     map[string]time.Time
}

var _ Context = (*Universe)(nil)

// LoadUniverse reads a YAML reference file. Map entries in the file extend and
// override the built-in defaults; lists replace them.
func LoadUniverse(path string) (*Universe, error) {
	u := DefaultUniverse()
	if path == "" {
		return u, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read universe file: %w", err)
	}
	if err := yaml.Unmarshal(raw, u); err != nil {
		return nil, fmt.Errorf("failed to decode universe file: %w", err)
	}
	if err := u.index(); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *Universe) index() error {
	if u.ETFs == nil {
		u.ETFs = map[string]models.ETFInfo{}
	}
	if u.Sectors == nil {
		u.Sectors = map[string]string{}
	}
	if u.MarketCaps == nil {
		u.MarketCaps = map[string]float64{}
	}
	if u.RecentIPODays <= 0 {
		u.RecentIPODays = defaultRecentIPODays
	}
	u.meme = upperSet(u.Meme)
	u.mega = upperSet(u.MegaCap)
	u.small = upperSet(u.SmallCap)
	u.popular = stats.SortedKeys(upperSet(u.Popular))
	u.ipo = make(map[string]time.Time, len(u.IPODates))
	for ticker, date := range u.IPODates {
		d, err := time.Parse("2006-01-02", date)
		if err != nil {
			return fmt.Errorf("invalid ipo date for %s: %w", ticker, err)
		}
		u.ipo[norm(ticker)] = d
	}
	return nil
}

func upperSet(items []string) stats.Set {
	s := make(stats.Set, len(items))
	for _, it := range items {
		s[norm(it)] = struct{}{}
	}
	return s
}

func norm(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// WithProfiles returns a copy of u with fetched reference data overlaid.
func (u *Universe) WithProfiles(infos map[string]models.TickerInfo) *Universe {
	cp := *u
	cp.ETFs = cloneMap(u.ETFs)
	cp.Sectors = cloneMap(u.Sectors)
	cp.MarketCaps = cloneMap(u.MarketCaps)
	for ticker, info := range infos {
		t := norm(ticker)
		if info.ETF != nil {
			cp.ETFs[t] = *info.ETF
		}
		if info.Sector != "" {
			cp.Sectors[t] = info.Sector
		}
		if info.MarketCap > 0 {
			cp.MarketCaps[t] = info.MarketCap
		}
	}
	return &cp
}

func cloneMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Resolve returns the reference data of each ticker, for the holdings scorer.
func (u *Universe) Resolve(tickers []string) map[string]models.TickerInfo {
	out := make(map[string]models.TickerInfo, len(tickers))
	for _, ticker := range tickers {
		t := norm(ticker)
		info := models.TickerInfo{
			MarketCap: u.MarketCaps[t],
			Sector:    u.Sectors[t],
		}
		if etf, ok := u.ETFs[t]; ok {
			etf := etf
			info.ETF = &etf
		}
		switch {
		case u.mega.Has(t):
			info.CapCategory = models.CapMega
		case u.small.Has(t):
			info.CapCategory = models.CapSmall
		}
		out[ticker] = info
	}
	return out
}

func (u *Universe) ClosePrice(string, time.Time) (float64, bool)         { return 0, false }
func (u *Universe) RelativeVolume(string, time.Time) (float64, bool)     { return 0, false }
func (u *Universe) MovingAverage(string, time.Time, int) (float64, bool) { return 0, false }

func (u *Universe) IsETF(ticker string) bool {
	_, ok := u.ETFs[norm(ticker)]
	return ok
}

func (u *Universe) IsLeveraged(ticker string) bool { return u.ETFs[norm(ticker)].Leveraged }
func (u *Universe) IsInverse(ticker string) bool   { return u.ETFs[norm(ticker)].Inverse }
func (u *Universe) IsSectorETF(ticker string) bool { return u.ETFs[norm(ticker)].Sector }
func (u *Universe) IsMeme(ticker string) bool      { return u.meme.Has(norm(ticker)) }

// IsMegaCap consults the mega-cap list first, then the known market cap.
func (u *Universe) IsMegaCap(ticker string) bool {
	t := norm(ticker)
	if u.mega.Has(t) {
		return true
	}
	return u.MarketCaps[t] >= 200e9
}

// IsSmallCap consults the small-cap list first, then the known market cap.
func (u *Universe) IsSmallCap(ticker string) bool {
	t := norm(ticker)
	if u.small.Has(t) {
		return true
	}
	mc, ok := u.MarketCaps[t]
	return ok && mc > 0 && mc < 2e9
}

// IsRecentIPO reports whether ticker listed within RecentIPODays before date.
func (u *Universe) IsRecentIPO(ticker string, date time.Time) bool {
	listed, ok := u.ipo[norm(ticker)]
	if !ok {
		return false
	}
	days := stats.CalendarDays(listed, date)
	return days >= 0 && days <= u.RecentIPODays
}

func (u *Universe) Sector(ticker string) string { return u.Sectors[norm(ticker)] }

func (u *Universe) MarketCap(ticker string) (float64, bool) {
	mc, ok := u.MarketCaps[norm(ticker)]
	return mc, ok && mc > 0
}

func (u *Universe) PopularTickers() []string { return u.popular }
