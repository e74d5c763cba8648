package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"trading-personality/internal/classifier"
	"trading-personality/internal/config"
	"trading-personality/internal/database"
	"trading-personality/internal/features"
	"trading-personality/internal/holdings"
	"trading-personality/internal/logger"
	"trading-personality/internal/marketdata"
	"trading-personality/internal/metrics"
	"trading-personality/internal/models"
	"trading-personality/internal/profiler"
)

func main() {
	configDir := flag.String("config", "./configs", "directory containing config.yml")
	account := flag.String("account", models.DefaultAccount, "account to profile")
	importPath := flag.String("import", "", "JSON file of trades to append before profiling")
	flag.Parse()

	// Load application configuration
	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		panic(fmt.Sprintf("could not load config: %v", err))
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	reg := prometheus.NewRegistry()
	m := metrics.Nop()
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics(reg)
	}

	// Initialize database
	store, err := database.NewStore(cfg.Database.DSN, log)
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer store.Close()

	if *importPath != "" {
		if err := importTrades(store, *importPath); err != nil {
			log.Fatal("Failed to import trades", zap.String("file", *importPath), zap.Error(err))
		}
		log.Info("Trades imported", zap.String("file", *importPath))
	}

	trades, err := store.LoadTrades(*account)
	if err != nil {
		log.Fatal("Failed to load trades", zap.Error(err))
	}
	if len(trades) == 0 {
		log.Warn("No trades stored for account", zap.String("account", *account))
	}

	// Setup context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	universe, err := marketdata.LoadUniverse(cfg.MarketData.UniversePath)
	if err != nil {
		log.Fatal("Failed to load reference universe", zap.Error(err))
	}
	market, resolver := prepareMarket(ctx, cfg.MarketData, universe, trades, log, m)

	prefs, err := loadPreferences(cfg.Classifier, log)
	if err != nil {
		log.Fatal("Failed to load classifier preferences", zap.Error(err))
	}

	svc := profiler.NewService(
		features.NewExtractor(cfg.Extraction, log, m),
		classifier.New(classifier.NewModelStore(cfg.Classifier.ModelPath, log, m), prefs, log, m),
		holdings.NewScorer(cfg.Holdings.SpeculativeMarketCapFloor, log),
		store,
		log,
	)

	profile, err := svc.Profile(ctx, *account, trades, market, resolver)
	if err != nil {
		log.Fatal("Profiling failed", zap.Error(err))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(profile); err != nil {
		log.Error("Failed to write profile", zap.Error(err))
	}

	if cfg.Metrics.Enabled && cfg.Metrics.TextfilePath != "" {
		if err := prometheus.WriteToTextfile(cfg.Metrics.TextfilePath, reg); err != nil {
			log.Error("Failed to write metrics", zap.Error(err))
		}
	}
}

// prepareMarket fetches bars and profiles when a market data API is
// configured. Without one, the reference universe answers alone.
func prepareMarket(ctx context.Context, cfg config.MarketData, u *marketdata.Universe, trades []models.Trade, log *zap.Logger, m *metrics.Metrics) (marketdata.Context, holdings.TickerResolver) {
	if cfg.BaseURL == "" || len(trades) == 0 {
		return u, u
	}

	tickers := make([]string, 0, len(trades))
	from, to := trades[0].Timestamp, trades[0].Timestamp
	for _, t := range trades {
		tickers = append(tickers, t.Ticker)
		if t.Timestamp.Before(from) {
			from = t.Timestamp
		}
		if t.Timestamp.After(to) {
			to = t.Timestamp
		}
	}

	client := marketdata.NewClient(cfg, log, m)
	infos, err := client.ResolveTickers(ctx, tickers)
	if err != nil {
		log.Warn("Ticker profiles unavailable, using reference universe", zap.Error(err))
	} else {
		u = u.WithProfiles(infos)
	}

	snapshot, err := client.Snapshot(ctx, u, tickers, from, to.Add(24*time.Hour))
	if err != nil {
		log.Warn("Market data unavailable, using reference universe", zap.Error(err))
		return u, u
	}
	return snapshot, u
}

func loadPreferences(cfg config.Classifier, log *zap.Logger) (classifier.PreferencePolicy, error) {
	if cfg.PreferencesPath == "" {
		return classifier.DefaultPreferences(), nil
	}
	return classifier.LoadFilePreferences(cfg.PreferencesPath, cfg.WatchPreferences, log)
}

func importTrades(store *database.Store, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var trades []models.Trade
	if err := json.Unmarshal(data, &trades); err != nil {
		return fmt.Errorf("failed to decode trades: %w", err)
	}
	return store.SaveTrades(trades)
}
