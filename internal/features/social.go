package features

import (
	"trading-personality/internal/positions"
	"trading-personality/internal/stats"
)

var socialKeys = []string{
	"meme_trade_pct", "meme_dollar_pct", "meme_ticker_count",
	"first_meme_entry_pct", "meme_avg_return", "meme_win_rate",
	"high_volume_entry_pct", "popular_similarity", "bagholding_rate",
	"meme_trend",
}

const (
	highRelativeVolume = 2.0
	bagholdingDays     = 30
)

// SocialModule describes crowd-following: meme exposure, entries on volume
// spikes and overlap with popular retail tickers.
type SocialModule struct{}

func (SocialModule) Name() string   { return "social" }
func (SocialModule) Prefix() string { return "social" }
func (SocialModule) Keys() []string { return socialKeys }

func (SocialModule) Extract(in Input) (map[string]*float64, error) {
	r := newResult(socialKeys)
	trades := in.Trades
	if len(trades) < in.MinSamples {
		return r, nil
	}
	market := in.Market
	n := len(trades)

	memeTrades, firstMeme := 0, -1
	var memeDollars, total float64
	memeTickers := stats.NewSet()
	memeBought := stats.NewSet()
	traded := stats.NewSet()
	half := n / 2
	var firstHalfMeme, secondHalfMeme int

	for i, t := range trades {
		u := underlying(t)
		v := t.Value()
		total += v
		traded[u] = struct{}{}
		if !market.IsMeme(u) {
			continue
		}
		memeTrades++
		memeDollars += v
		memeTickers[u] = struct{}{}
		if t.IsBuy() {
			memeBought[u] = struct{}{}
		}
		if firstMeme < 0 {
			firstMeme = i
		}
		if i < half {
			firstHalfMeme++
		} else {
			secondHalfMeme++
		}
	}

	r.set("meme_trade_pct", float64(memeTrades)/float64(n))
	r.set("meme_dollar_pct", stats.SafeDiv(memeDollars, total, 0))
	r.set("meme_ticker_count", float64(len(memeTickers)))
	if firstMeme >= 0 {
		r.set("first_meme_entry_pct", float64(firstMeme)/float64(n-1))
	}
	if half > 0 {
		r.set("meme_trend", float64(secondHalfMeme)/float64(n-half)-float64(firstHalfMeme)/float64(half))
	}

	if popular := market.PopularTickers(); len(popular) > 0 {
		r.set("popular_similarity", stats.JaccardSimilarity(traded, stats.NewSet(popular...)))
	}

	withVolume, spikes := 0, 0
	for _, t := range buysOf(trades) {
		rv, ok := market.RelativeVolume(underlying(t), t.Timestamp)
		if !ok {
			continue
		}
		withVolume++
		if rv >= highRelativeVolume {
			spikes++
		}
	}
	if withVolume >= in.MinSamples {
		r.set("high_volume_entry_pct", float64(spikes)/float64(withVolume))
	}

	if h := in.History; h != nil {
		var returns []float64
		wins := 0
		for _, trip := range h.Trips {
			if !market.IsMeme(underlyingSymbol(trip.Ticker)) {
				continue
			}
			returns = append(returns, trip.PnLPct)
			if trip.IsWin() {
				wins++
			}
		}
		if len(returns) >= 2 {
			r.set("meme_avg_return", stats.Mean(returns))
			r.set("meme_win_rate", float64(wins)/float64(len(returns)))
		}

		if len(memeBought) > 0 {
			// Lots are keyed by the traded symbol; options roll up to their underlying.
			lots := map[string][]positions.Lot{}
			for _, symbol := range stats.SortedKeys(h.OpenLots) {
				u := underlyingSymbol(symbol)
				lots[u] = append(lots[u], h.OpenLots[symbol]...)
			}
			asOf := trades[n-1].Timestamp
			holding := 0
			for _, ticker := range stats.SortedKeys(memeBought) {
				for _, lot := range lots[ticker] {
					if stats.CalendarDays(lot.Date, asOf) >= bagholdingDays {
						holding++
						break
					}
				}
			}
			r.set("bagholding_rate", float64(holding)/float64(len(memeBought)))
		}
	}
	return r, nil
}
