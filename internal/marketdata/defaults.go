package marketdata

import "trading-personality/internal/models"

func indexETF(tier string) models.ETFInfo {
	return models.ETFInfo{Index: true, RiskTier: tier}
}

func sectorETF(tier string) models.ETFInfo {
	return models.ETFInfo{Sector: true, RiskTier: tier}
}

func leveragedETF(inverse bool) models.ETFInfo {
	return models.ETFInfo{Leveraged: true, Inverse: inverse, RiskTier: models.RiskTierVeryHigh}
}

// DefaultUniverse returns the built-in reference sets. Each call returns a
// fresh value the caller may extend.
func DefaultUniverse() *Universe {
	u := &Universe{
		ETFs: map[string]models.ETFInfo{
			"SPY":  indexETF(models.RiskTierLow),
			"VOO":  indexETF(models.RiskTierLow),
			"IVV":  indexETF(models.RiskTierLow),
			"VTI":  indexETF(models.RiskTierLow),
			"VT":   indexETF(models.RiskTierLow),
			"DIA":  indexETF(models.RiskTierLow),
			"BND":  indexETF(models.RiskTierLow),
			"AGG":  indexETF(models.RiskTierLow),
			"VXUS": indexETF(models.RiskTierMedium),
			"QQQ":  indexETF(models.RiskTierMedium),
			"IWM":  indexETF(models.RiskTierMedium),
			"SCHD": {RiskTier: models.RiskTierLow},
			"VYM":  {RiskTier: models.RiskTierLow},
			"JEPI": {RiskTier: models.RiskTierLow},
			"GLD":  {RiskTier: models.RiskTierMedium},
			"ARKK": {RiskTier: models.RiskTierHigh},
			"XLU":  sectorETF(models.RiskTierLow),
			"XLP":  sectorETF(models.RiskTierLow),
			"XLV":  sectorETF(models.RiskTierLow),
			"XLF":  sectorETF(models.RiskTierMedium),
			"XLI":  sectorETF(models.RiskTierMedium),
			"XLK":  sectorETF(models.RiskTierMedium),
			"XLE":  sectorETF(models.RiskTierHigh),
			"SMH":  sectorETF(models.RiskTierHigh),
			"XBI":  sectorETF(models.RiskTierHigh),
			"TQQQ": leveragedETF(false),
			"UPRO": leveragedETF(false),
			"SOXL": leveragedETF(false),
			"TNA":  leveragedETF(false),
			"UVXY": leveragedETF(false),
			"SQQQ": leveragedETF(true),
			"SPXU": leveragedETF(true),
			"SOXS": leveragedETF(true),
			"SH":   {Inverse: true, RiskTier: models.RiskTierHigh},
			"PSQ":  {Inverse: true, RiskTier: models.RiskTierHigh},
		},
		Meme: []string{
			"GME", "AMC", "BB", "BBBY", "NOK", "KOSS", "CLOV", "WISH", "SPCE",
			"TLRY", "SNDL", "MULN", "DJT", "HOOD", "PLTR", "RKLB",
		},
		MegaCap: []string{
			"AAPL", "MSFT", "NVDA", "GOOGL", "GOOG", "AMZN", "META", "TSLA",
			"BRK.B", "AVGO", "LLY", "JPM", "V", "WMT", "XOM", "MA", "UNH",
		},
		SmallCap: []string{
			"KOSS", "CLOV", "WISH", "SPCE", "SNDL", "MULN", "BBBY",
		},
		Popular: []string{
			"AAPL", "TSLA", "AMZN", "NVDA", "AMD", "MSFT", "META", "GOOGL",
			"NFLX", "DIS", "PLTR", "SOFI", "NIO", "F", "AAL", "BABA",
			"GME", "AMC", "SPY", "QQQ",
		},
		Sectors: map[string]string{
			"AAPL": "Technology", "MSFT": "Technology", "NVDA": "Technology",
			"AMD": "Technology", "AVGO": "Technology", "PLTR": "Technology",
			"GOOGL": "Communication Services", "GOOG": "Communication Services",
			"META": "Communication Services", "NFLX": "Communication Services",
			"DIS": "Communication Services",
			"AMZN": "Consumer Discretionary", "TSLA": "Consumer Discretionary",
			"NIO": "Consumer Discretionary", "F": "Consumer Discretionary",
			"GME": "Consumer Discretionary", "AMC": "Communication Services",
			"JPM": "Financials", "V": "Financials", "MA": "Financials",
			"SOFI": "Financials", "HOOD": "Financials", "BRK.B": "Financials",
			"LLY": "Health Care", "UNH": "Health Care", "JNJ": "Health Care",
			"XOM": "Energy", "CVX": "Energy",
			"KO": "Consumer Staples", "PG": "Consumer Staples", "PEP": "Consumer Staples",
			"WMT": "Consumer Staples",
			"NEE": "Utilities", "DUK": "Utilities", "SO": "Utilities",
			"O": "Real Estate", "AMT": "Real Estate",
			"AAL": "Industrials", "BA": "Industrials", "CAT": "Industrials",
		},
		MarketCaps: map[string]float64{
			"AAPL": 3.4e12, "MSFT": 3.1e12, "NVDA": 3.0e12, "GOOGL": 2.1e12,
			"AMZN": 1.9e12, "META": 1.4e12, "TSLA": 8.0e11, "JPM": 6.0e11,
			"KO": 2.7e11, "PG": 3.9e11, "XOM": 4.7e11, "AMD": 2.4e11,
			"F": 4.2e10, "SOFI": 1.0e10, "GME": 1.0e10, "AMC": 1.5e9,
			"KOSS": 8.0e7, "SNDL": 5.0e8, "NIO": 9.0e9, "O": 4.8e10,
		},
		IPODates: map[string]string{
			"ABNB": "2020-12-10",
			"COIN": "2021-04-14",
			"HOOD": "2021-07-29",
			"RIVN": "2021-11-10",
			"CAVA": "2023-06-15",
			"ARM":  "2023-09-14",
			"CART": "2023-09-19",
			"BIRK": "2023-10-11",
			"RDDT": "2024-03-21",
		},
		RecentIPODays: defaultRecentIPODays,
	}
	// Static data; dates are known to parse.
	_ = u.index()
	return u
}
