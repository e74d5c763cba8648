// Package features turns a validated trade history into a namespaced feature
// vector by running independent statistical modules over it.
package features

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"trading-personality/internal/config"
	"trading-personality/internal/logger"
	"trading-personality/internal/marketdata"
	"trading-personality/internal/metrics"
	"trading-personality/internal/models"
	"trading-personality/internal/positions"
	"trading-personality/internal/stats"

	"go.uber.org/zap"
)

// RunMetadata describes one extraction run.
type RunMetadata struct {
	RowsIn           int               `json:"rows_in"`
	RowsUsed         int               `json:"rows_used"`
	RowsDropped      int               `json:"rows_dropped"`
	NonTradeRows     int               `json:"non_trade_rows"`
	TotalFeatures    int               `json:"total_features"`
	ComputedFeatures int               `json:"computed_features"`
	NullFeatures     int               `json:"null_features"`
	Elapsed          time.Duration     `json:"elapsed"`
	ModulesRun       []string          `json:"modules_run"`
	ModuleErrors     map[string]string `json:"module_errors,omitempty"`
}

// Extractor runs modules in declared order and merges their outputs.
type Extractor struct {
	modules    []Module
	minTrades  int
	minSamples int
	logger     *zap.Logger
	metrics    *metrics.Metrics
}

// NewExtractor creates an extractor. With no modules it uses DefaultModules.
func NewExtractor(cfg config.Extraction, l *zap.Logger, m *metrics.Metrics, modules ...Module) *Extractor {
	if len(modules) == 0 {
		modules = DefaultModules()
	}
	if m == nil {
		m = metrics.Nop()
	}
	minTrades := cfg.MinTrades
	if minTrades < 1 {
		minTrades = 1
	}
	minSamples := cfg.MinSamples
	if minSamples < 1 {
		minSamples = 1
	}
	return &Extractor{
		modules:    modules,
		minTrades:  minTrades,
		minSamples: minSamples,
		logger:     logger.OrNop(l).Named("features"),
		metrics:    m,
	}
}

// DefaultModules returns every built-in module in declared order.
func DefaultModules() []Module {
	return []Module{
		TimingModule{},
		SizingModule{},
		HoldingModule{},
		DiversityModule{},
		SectorModule{},
		SocialModule{},
		EntryModule{},
		PerformanceModule{},
	}
}

// Modules returns the configured modules.
func (e *Extractor) Modules() []Module {
	return slices.Clone(e.modules)
}

// ExtractAll computes the feature vector of trades. A nil market is treated as
// knowing nothing.
func (e *Extractor) ExtractAll(trades []models.Trade, market marketdata.Context) (models.FeatureVector, RunMetadata) {
	start := time.Now()
	e.metrics.RunsTotal.Inc()

	valid, pre := Preprocess(trades)
	meta := RunMetadata{
		RowsIn:       len(trades),
		RowsUsed:     len(valid),
		RowsDropped:  pre.Dropped,
		NonTradeRows: pre.NonTrade,
		ModulesRun:   []string{},
		ModuleErrors: map[string]string{},
	}
	e.metrics.RowsDropped.Add(float64(pre.Dropped))
	fv := models.FeatureVector{}

	if len(valid) < e.minTrades {
		e.metrics.InsufficientRun.Inc()
		e.logger.Info("Not enough trades to extract features",
			zap.Int("rows_used", len(valid)),
			zap.Int("min_trades", e.minTrades),
		)
		meta.Elapsed = time.Since(start)
		return fv, meta
	}

	if market == nil {
		market = marketdata.Unknown{}
	}
	history := positions.Build(valid)

	for _, m := range e.modules {
		name := m.Name()
		in := Input{
			Trades:     slices.Clone(valid),
			History:    history,
			Market:     market,
			MinSamples: e.minSamples,
			Logger:     e.logger.With(zap.String("module", name)),
		}

		began := time.Now()
		out, err := runModule(m, in)
		e.metrics.ModuleDuration.WithLabelValues(name).Observe(time.Since(began).Seconds())
		meta.ModulesRun = append(meta.ModulesRun, name)

		if err != nil {
			meta.ModuleErrors[name] = err.Error()
			e.metrics.ModuleFailures.WithLabelValues(name).Inc()
			e.logger.Error("Feature module failed", zap.String("module", name), zap.Error(err))
			continue
		}
		e.merge(fv, m.Prefix(), name, out)
	}

	computed, null := fv.Counts()
	meta.TotalFeatures = len(fv)
	meta.ComputedFeatures = computed
	meta.NullFeatures = null
	meta.Elapsed = time.Since(start)
	if meta.TotalFeatures > 0 {
		e.metrics.NullFeatures.Observe(float64(null) / float64(meta.TotalFeatures))
	}

	e.logger.Info("Extracted features",
		zap.Int("rows_used", meta.RowsUsed),
		zap.Int("rows_dropped", meta.RowsDropped),
		zap.Int("features", meta.TotalFeatures),
		zap.Int("null_features", meta.NullFeatures),
		zap.Int("module_errors", len(meta.ModuleErrors)),
		zap.Duration("elapsed", meta.Elapsed),
	)
	return fv, meta
}

// runModule shields the run from a module that panics.
func runModule(m Module, in Input) (out map[string]*float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	out, err = m.Extract(in)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Extractor) merge(fv models.FeatureVector, prefix, module string, out map[string]*float64) {
	ns := prefix + "_"
	for _, k := range stats.SortedKeys(out) {
		key := k
		if !strings.HasPrefix(k, ns) {
			key = ns + k
		}
		if _, dup := fv[key]; dup {
			e.logger.Warn("Duplicate feature key ignored", zap.String("key", key), zap.String("module", module))
			continue
		}
		v := out[k]
		if v == nil || !stats.Finite(*v) {
			fv[key] = nil
			continue
		}
		fv[key] = models.Float(*v)
	}
}

// PreprocessStats counts what Preprocess removed.
type PreprocessStats struct {
	Dropped  int
	NonTrade int
}

// Preprocess keeps valid TRADE rows, normalizes tickers and sides, and sorts
// them by timestamp, keeping the original order on ties.
func Preprocess(trades []models.Trade) ([]models.Trade, PreprocessStats) {
	var st PreprocessStats
	out := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if !t.IsTrade() {
			st.NonTrade++
			continue
		}
		t.Ticker = strings.ToUpper(strings.TrimSpace(t.Ticker))
		t.Side = models.Side(strings.ToUpper(strings.TrimSpace(string(t.Side))))
		t.Kind = models.KindTrade
		if !validTrade(t) {
			st.Dropped++
			continue
		}
		if t.InstrumentType == "" {
			if _, ok := ParseOptionSymbol(t.Ticker); ok {
				t.InstrumentType = models.InstrumentOption
			}
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, st
}

func validTrade(t models.Trade) bool {
	switch {
	case t.Timestamp.IsZero(), t.Ticker == "":
		return false
	case !t.IsBuy() && !t.IsSell():
		return false
	case !(t.Quantity > 0) || !(t.Price > 0) || t.Fees < 0:
		return false
	case !stats.Finite(t.Quantity) || !stats.Finite(t.Price) || !stats.Finite(t.Fees):
		return false
	}
	return true
}
