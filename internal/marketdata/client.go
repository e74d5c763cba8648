package marketdata

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"trading-personality/internal/config"
	"trading-personality/internal/logger"
	"trading-personality/internal/metrics"
	"trading-personality/internal/models"
	"trading-personality/internal/stats"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	maxRetries = 3
	dateLayout = "2006-01-02"
)

// Client is a client for the market data REST API.
type Client struct {
	client      *resty.Client
	apiKey      string
	logger      *zap.Logger
	limiter     *rate.Limiter
	concurrency int
	lookback    int
	backoff     time.Duration // base of the exponential retry delay
	metrics     *metrics.Metrics
}

// NewClient creates a market data client from configuration.
func NewClient(cfg config.MarketData, l *zap.Logger, m *metrics.Metrics) *Client {
	client := resty.New().SetBaseURL(strings.TrimRight(cfg.BaseURL, "/"))
	if cfg.TimeoutSeconds > 0 {
		client.SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)
	}

	limit := rate.Limit(cfg.RateLimit)
	if cfg.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := cfg.RateLimitBurst
	if burst < 1 {
		burst = 1
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	return &Client{
		client:      client,
		apiKey:      cfg.ApiKey,
		logger:      logger.OrNop(l).Named("marketdata"),
		limiter:     rate.NewLimiter(limit, burst),
		concurrency: concurrency,
		lookback:    cfg.LookbackDays,
		backoff:     time.Second,
		metrics:     m,
	}
}

func (c *Client) observe(endpoint string, err error) {
	if c.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.metrics.MarketDataRequests.WithLabelValues(endpoint, outcome).Inc()
}

// doRequest executes a GET with rate limiting and retries on 429, 418, 5xx
// and transport errors.
func (c *Client) doRequest(ctx context.Context, path string, query map[string]string) (*resty.Response, error) {
	var resp *resty.Response
	var err error

	for i := 0; i < maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		req := c.client.R().SetContext(ctx).SetQueryParams(query)
		if c.apiKey != "" {
			req.SetHeader("X-API-KEY", c.apiKey)
		}
		c.logger.Debug("Executing request", zap.String("path", path))
		resp, err = req.Get(path)

		if err == nil && !resp.IsError() {
			return resp, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		shouldRetry := false
		var retryAfter time.Duration

		if err == nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests || statusCode == 418 {
				shouldRetry = true
				if seconds, convErr := strconv.Atoi(resp.Header().Get("Retry-After")); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 {
				shouldRetry = true
			}
		} else {
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		}
		if err == nil {
			err = fmt.Errorf("status %s", resp.Status())
		}
		if i == maxRetries-1 {
			break
		}

		if retryAfter == 0 {
			retryAfter = time.Duration(math.Pow(2, float64(i))) * c.backoff
		}

		c.logger.Warn("Request failed, retrying",
			zap.String("path", path),
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}

// Bars fetches daily bars for ticker between from and to inclusive.
//
//	{"ticker":"AAPL","bars":[{"date":"2024-01-02","close":185.6,"volume":8.2e7}]}
func (c *Client) Bars(ctx context.Context, ticker string, from, to time.Time) ([]Bar, error) {
	resp, err := c.doRequest(ctx, "/bars/"+norm(ticker), map[string]string{
		"from": from.Format(dateLayout),
		"to":   to.Format(dateLayout),
	})
	c.observe("bars", err)
	if err != nil {
		return nil, fmt.Errorf("failed to get bars for %s: %w", ticker, err)
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid bars payload for %s", ticker)
	}
	var bars []Bar
	var parseErr error
	gjson.GetBytes(body, "bars").ForEach(func(_, row gjson.Result) bool {
		date, err := time.Parse(dateLayout, row.Get("date").String())
		if err != nil {
			parseErr = fmt.Errorf("invalid bar date for %s: %w", ticker, err)
			return false
		}
		bars = append(bars, Bar{
			Date:   date,
			Close:  row.Get("close").Float(),
			Volume: row.Get("volume").Float(),
		})
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return bars, nil
}

// Profile fetches reference data for ticker.
//
//	{"market_cap":3.4e12,"sector":"Technology","category":"mega","etf":{"index":true,"risk_tier":"low"}}
func (c *Client) Profile(ctx context.Context, ticker string) (models.TickerInfo, error) {
	resp, err := c.doRequest(ctx, "/profile/"+norm(ticker), nil)
	c.observe("profile", err)
	if err != nil {
		return models.TickerInfo{}, fmt.Errorf("failed to get profile for %s: %w", ticker, err)
	}

	body := resp.Body()
	if !gjson.ValidBytes(body) {
		return models.TickerInfo{}, fmt.Errorf("invalid profile payload for %s", ticker)
	}
	res := gjson.ParseBytes(body)
	info := models.TickerInfo{
		MarketCap:   res.Get("market_cap").Float(),
		CapCategory: strings.ToLower(res.Get("category").String()),
		Sector:      res.Get("sector").String(),
	}
	if etf := res.Get("etf"); etf.IsObject() {
		info.ETF = &models.ETFInfo{
			Index:     etf.Get("index").Bool(),
			Leveraged: etf.Get("leveraged").Bool(),
			Inverse:   etf.Get("inverse").Bool(),
			Sector:    etf.Get("sector").Bool(),
			RiskTier:  strings.ToLower(etf.Get("risk_tier").String()),
		}
	}
	return info, nil
}

// Snapshot loads bars for every ticker concurrently, from LookbackDays before
// from up to to. A ticker that fails to load is logged and left without bars.
func (c *Client) Snapshot(ctx context.Context, u *Universe, tickers []string, from, to time.Time) (*Snapshot, error) {
	start := from.AddDate(0, 0, -c.lookback)
	bars := make(map[string][]Bar, len(tickers))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.concurrency)
	for _, ticker := range dedupe(tickers) {
		eg.Go(func() error {
			series, err := c.Bars(egCtx, ticker, start, to)
			if err != nil {
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				c.logger.Warn("Bars unavailable, continuing without", zap.String("ticker", ticker), zap.Error(err))
				return nil
			}
			mu.Lock()
			bars[ticker] = series
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load market snapshot: %w", err)
	}
	return NewSnapshot(u, bars), nil
}

// ResolveTickers fetches profiles concurrently. Tickers that fail are omitted.
func (c *Client) ResolveTickers(ctx context.Context, tickers []string) (map[string]models.TickerInfo, error) {
	infos := make(map[string]models.TickerInfo, len(tickers))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(c.concurrency)
	for _, ticker := range dedupe(tickers) {
		eg.Go(func() error {
			info, err := c.Profile(egCtx, ticker)
			if err != nil {
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				c.logger.Warn("Profile unavailable, treating as unknown", zap.String("ticker", ticker), zap.Error(err))
				return nil
			}
			mu.Lock()
			infos[ticker] = info
			mu.Unlock()
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("failed to resolve tickers: %w", err)
	}
	return infos, nil
}

func dedupe(tickers []string) []string {
	set := make(stats.Set, len(tickers))
	for _, t := range tickers {
		if n := norm(t); n != "" {
			set[n] = struct{}{}
		}
	}
	return stats.SortedKeys(set)
}
