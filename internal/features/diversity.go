package features

import (
	"sort"

	"trading-personality/internal/marketdata"
	"trading-personality/internal/models"
	"trading-personality/internal/stats"
)

var diversityKeys = []string{
	"unique_tickers", "new_tickers_per_month", "top1_share", "top3_share",
	"etf_pct", "etf_core", "options_pct", "call_share", "options_direction",
	"avg_moneyness", "avg_days_to_expiry", "leveraged_etf_pct",
	"inverse_etf_pct", "sector_etf_pct", "ticker_count_trend",
}

// etfCoreShare is the ETF dollar share above which funds are the core holding.
const etfCoreShare = 0.40

// DiversityModule describes the breadth of instruments traded and the use of
// funds and options.
type DiversityModule struct{}

func (DiversityModule) Name() string   { return "diversity" }
func (DiversityModule) Prefix() string { return "diversity" }
func (DiversityModule) Keys() []string { return diversityKeys }

func (DiversityModule) Extract(in Input) (map[string]*float64, error) {
	r := newResult(diversityKeys)
	trades := in.Trades
	if len(trades) < in.MinSamples {
		return r, nil
	}
	market := in.Market
	n := len(trades)

	dollars := map[string]float64{}
	monthly := map[int]stats.Set{}
	var etfTrades, leveraged, inverse, sectorETF int
	var etfDollars, totalDollars float64

	optionTrades := 0
	var parsed []models.Trade
	var contracts []OptionContract
	for _, t := range trades {
		u := underlying(t)
		v := t.Value()
		dollars[u] += v
		totalDollars += v

		m := stats.MonthIndex(t.Timestamp)
		if monthly[m] == nil {
			monthly[m] = stats.NewSet()
		}
		monthly[m][u] = struct{}{}

		if opt, ok := ParseOptionSymbol(t.Ticker); ok {
			optionTrades++
			parsed = append(parsed, t)
			contracts = append(contracts, opt)
			continue
		}
		if t.InstrumentType == models.InstrumentOption {
			optionTrades++
			continue
		}

		if t.InstrumentType == models.InstrumentETF || market.IsETF(t.Ticker) {
			etfTrades++
			etfDollars += v
			if market.IsLeveraged(t.Ticker) {
				leveraged++
			}
			if market.IsInverse(t.Ticker) {
				inverse++
			}
			if market.IsSectorETF(t.Ticker) {
				sectorETF++
			}
		}
	}

	r.set("unique_tickers", float64(len(dollars)))
	months := stats.MonthIndex(trades[n-1].Timestamp) - stats.MonthIndex(trades[0].Timestamp) + 1
	r.set("new_tickers_per_month", float64(len(dollars))/float64(months))

	shares := make([]float64, 0, len(dollars))
	for _, k := range stats.SortedKeys(dollars) {
		shares = append(shares, stats.SafeDiv(dollars[k], totalDollars, 0))
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(shares)))
	r.set("top1_share", shares[0])
	top3 := 0.0
	for i := 0; i < len(shares) && i < 3; i++ {
		top3 += shares[i]
	}
	r.set("top3_share", top3)

	r.set("etf_pct", float64(etfTrades)/float64(n))
	r.setBool("etf_core", stats.SafeDiv(etfDollars, totalDollars, 0) > etfCoreShare)
	r.set("leveraged_etf_pct", float64(leveraged)/float64(n))
	r.set("inverse_etf_pct", float64(inverse)/float64(n))
	r.set("sector_etf_pct", float64(sectorETF)/float64(n))
	r.set("options_pct", float64(optionTrades)/float64(n))

	diversityOptions(r, parsed, contracts, market)

	if len(monthly) >= 3 {
		first := stats.MonthIndex(trades[0].Timestamp)
		counts := make([]float64, months)
		for m, set := range monthly {
			counts[m-first] = float64(len(set))
		}
		slope, ok := stats.LinearTrendSlope(counts)
		r.setIf("ticker_count_trend", slope, ok)
	}
	return r, nil
}

// diversityOptions summarizes parsed contracts; contracts[i] is the symbol of trades[i].
func diversityOptions(r result, trades []models.Trade, contracts []OptionContract, market marketdata.Context) {
	if len(contracts) == 0 {
		return
	}
	calls := 0
	var moneyness, expiries []float64
	for i, c := range contracts {
		t := trades[i]
		if c.Call {
			calls++
		}
		if spot, ok := market.ClosePrice(c.Underlying, t.Timestamp); ok && spot > 0 {
			moneyness = append(moneyness, c.Strike/spot)
		}
		dte := stats.CalendarDays(t.Timestamp, c.Expiry)
		if dte < 0 {
			dte = 0
		}
		expiries = append(expiries, float64(dte))
	}

	r.set("call_share", float64(calls)/float64(len(contracts)))
	switch calls {
	case len(contracts):
		r.set("options_direction", 1)
	case 0:
		r.set("options_direction", -1)
	default:
		r.set("options_direction", 0)
	}
	if len(moneyness) > 0 {
		r.set("avg_moneyness", stats.Mean(moneyness))
	}
	r.set("avg_days_to_expiry", stats.Mean(expiries))
}
