// Package marketdata provides the read-only market context feature modules
// consult: static reference sets, daily bars and a REST client that loads them.
package marketdata

import "time"

// Context answers market questions about a ticker at a date. Every method
// has an unknown fallback: a false ok, false or an empty string.
type Context interface {
	ClosePrice(ticker string, date time.Time) (float64, bool)
	// RelativeVolume is the day's volume over the trailing average volume.
	RelativeVolume(ticker string, date time.Time) (float64, bool)
	MovingAverage(ticker string, date time.Time, window int) (float64, bool)

	IsETF(ticker string) bool
	IsLeveraged(ticker string) bool
	IsInverse(ticker string) bool
	IsSectorETF(ticker string) bool
	IsRecentIPO(ticker string, date time.Time) bool
	IsMeme(ticker string) bool
	IsMegaCap(ticker string) bool
	IsSmallCap(ticker string) bool

	Sector(ticker string) string
	MarketCap(ticker string) (float64, bool)
	PopularTickers() []string
}

// Unknown is a Context that knows nothing.
type Unknown struct{}

var _ Context = Unknown{}

func (Unknown) ClosePrice(string, time.Time) (float64, bool)         { return 0, false }
func (Unknown) RelativeVolume(string, time.Time) (float64, bool)     { return 0, false }
func (Unknown) MovingAverage(string, time.Time, int) (float64, bool) { return 0, false }
func (Unknown) IsETF(string) bool                                    { return false }
func (Unknown) IsLeveraged(string) bool                              { return false }
func (Unknown) IsInverse(string) bool                                { return false }
func (Unknown) IsSectorETF(string) bool                              { return false }
func (Unknown) IsRecentIPO(string, time.Time) bool                   { return false }
func (Unknown) IsMeme(string) bool                                   { return false }
func (Unknown) IsMegaCap(string) bool                                { return false }
func (Unknown) IsSmallCap(string) bool                               { return false }
func (Unknown) Sector(string) string                                 { return "" }
func (Unknown) MarketCap(string) (float64, bool)                     { return 0, false }
func (Unknown) PopularTickers() []string                             { return nil }
