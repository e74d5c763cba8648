package features

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// OptionContract is a parsed option symbol.
type OptionContract struct {
	Underlying string
	Expiry     time.Time
	Strike     float64
	Call       bool
}

var (
	// OCC: root padded to six characters, YYMMDD, C|P, strike x1000 in eight digits.
	occSymbol = regexp.MustCompile(`^([A-Z][A-Z.]{0,5})\s*(\d{6})([CP])(\d{8})$`)
	// Compact variant with a plain decimal strike, e.g. "AAPL 240119 C 190.5".
	compactSymbol = regexp.MustCompile(`^([A-Z][A-Z.]{0,5})\s*(\d{6})\s*([CP])\s*(\d+(?:\.\d+)?)$`)
)

// ParseOptionSymbol parses OCC and compact option symbols.
func ParseOptionSymbol(symbol string) (OptionContract, bool) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if m := occSymbol.FindStringSubmatch(s); m != nil {
		strike, err := strconv.ParseFloat(m[4], 64)
		if err != nil {
			return OptionContract{}, false
		}
		return buildContract(m[1], m[2], m[3], strike/1000)
	}
	if m := compactSymbol.FindStringSubmatch(s); m != nil {
		strike, err := strconv.ParseFloat(m[4], 64)
		if err != nil {
			return OptionContract{}, false
		}
		return buildContract(m[1], m[2], m[3], strike)
	}
	return OptionContract{}, false
}

func buildContract(root, date, kind string, strike float64) (OptionContract, bool) {
	expiry, err := time.Parse("060102", date)
	if err != nil || strike <= 0 {
		return OptionContract{}, false
	}
	return OptionContract{
		Underlying: root,
		Expiry:     expiry,
		Strike:     strike,
		Call:       kind == "C",
	}, true
}
