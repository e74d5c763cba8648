package features

import (
	"sort"
	"strings"

	"trading-personality/internal/models"
	"trading-personality/internal/stats"
)

var sectorKeys = []string{
	"sector_count", "top_sector_share", "hhi", "unknown_pct", "defensive_pct",
	"rotation_rate", "meme_pct", "megacap_pct", "smallcap_pct",
	"recent_ipo_pct", "ticker_loyalty", "one_and_done_rate", "core_ratio",
	"monthly_churn",
}

var defensiveSectors = stats.NewSet("utilities", "consumer staples", "health care", "healthcare", "real estate")

// coreTickerCount is the number of most-traded tickers forming the core.
const coreTickerCount = 5

// SectorModule describes where buy dollars go: sectors, market-cap segments,
// ticker loyalty and turnover.
type SectorModule struct{}

func (SectorModule) Name() string   { return "sector" }
func (SectorModule) Prefix() string { return "sector" }
func (SectorModule) Keys() []string { return sectorKeys }

func (SectorModule) Extract(in Input) (map[string]*float64, error) {
	r := newResult(sectorKeys)
	buys := buysOf(in.Trades)
	if len(buys) < in.MinSamples {
		return r, nil
	}
	market := in.Market

	bySector := map[string]float64{}
	quarterly := map[int]map[string]float64{}
	var total, unknown, defensive, meme, mega, small, ipo float64
	for _, t := range buys {
		u := underlying(t)
		v := t.Value()
		total += v

		sector := market.Sector(u)
		if sector == "" {
			unknown += v
		} else {
			bySector[sector] += v
			q := stats.QuarterIndex(t.Timestamp)
			if quarterly[q] == nil {
				quarterly[q] = map[string]float64{}
			}
			quarterly[q][sector] += v
			if defensiveSectors.Has(strings.ToLower(sector)) {
				defensive += v
			}
		}
		if market.IsMeme(u) {
			meme += v
		}
		if market.IsMegaCap(u) {
			mega += v
		}
		if market.IsSmallCap(u) {
			small += v
		}
		if market.IsRecentIPO(u, t.Timestamp) {
			ipo += v
		}
	}

	r.set("sector_count", float64(len(bySector)))
	r.set("unknown_pct", stats.SafeDiv(unknown, total, 0))
	r.set("defensive_pct", stats.SafeDiv(defensive, total, 0))
	r.set("meme_pct", stats.SafeDiv(meme, total, 0))
	r.set("megacap_pct", stats.SafeDiv(mega, total, 0))
	r.set("smallcap_pct", stats.SafeDiv(small, total, 0))
	r.set("recent_ipo_pct", stats.SafeDiv(ipo, total, 0))

	if len(bySector) > 0 {
		weights := make([]float64, 0, len(bySector))
		for _, s := range stats.SortedKeys(bySector) {
			weights = append(weights, bySector[s])
		}
		shares, _ := stats.Normalize(weights)
		r.set("top_sector_share", maxFloat(shares))
		r.set("hhi", stats.HHI(weights))
	}

	if len(quarterly) >= 2 {
		quarters := stats.SortedKeys(quarterly)
		changes := 0
		prev, _ := stats.ArgMaxFloat(quarterly[quarters[0]])
		for _, q := range quarters[1:] {
			dominant, _ := stats.ArgMaxFloat(quarterly[q])
			if dominant != prev {
				changes++
			}
			prev = dominant
		}
		r.set("rotation_rate", float64(changes)/float64(len(quarters)-1))
	}

	sectorLoyalty(r, in.Trades, buys)
	return r, nil
}

// sectorLoyalty reports ticker_loyalty as the mean number of trades per
// traded ticker, so repeated buys of one name count however close together.
func sectorLoyalty(r result, trades, buys []models.Trade) {
	buyCounts := map[string]int{}
	for _, t := range buys {
		buyCounts[underlying(t)]++
	}
	oneAndDone := 0
	for _, u := range stats.SortedKeys(buyCounts) {
		if buyCounts[u] == 1 {
			oneAndDone++
		}
	}
	if len(buyCounts) > 0 {
		r.set("one_and_done_rate", float64(oneAndDone)/float64(len(buyCounts)))
	}

	tradeCounts := map[string]int{}
	monthly := map[int]stats.Set{}
	for _, t := range trades {
		u := underlying(t)
		tradeCounts[u]++
		m := stats.MonthIndex(t.Timestamp)
		if monthly[m] == nil {
			monthly[m] = stats.NewSet()
		}
		monthly[m][u] = struct{}{}
	}
	r.set("ticker_loyalty", float64(len(trades))/float64(len(tradeCounts)))

	counts := make([]int, 0, len(tradeCounts))
	for _, u := range stats.SortedKeys(tradeCounts) {
		counts = append(counts, tradeCounts[u])
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))
	core := 0
	for i := 0; i < len(counts) && i < coreTickerCount; i++ {
		core += counts[i]
	}
	r.set("core_ratio", float64(core)/float64(len(trades)))

	if len(monthly) >= 2 {
		months := stats.SortedKeys(monthly)
		var churn []float64
		for i := 1; i < len(months); i++ {
			churn = append(churn, stats.JaccardDistance(monthly[months[i-1]], monthly[months[i]]))
		}
		r.set("monthly_churn", stats.Mean(churn))
	}
}
