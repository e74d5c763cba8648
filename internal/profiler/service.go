// Package profiler runs the full pipeline for one account: feature
// extraction, trait derivation, archetype classification and holdings
// scoring, then stores the result.
package profiler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"trading-personality/internal/classifier"
	"trading-personality/internal/features"
	"trading-personality/internal/holdings"
	"trading-personality/internal/logger"
	"trading-personality/internal/marketdata"
	"trading-personality/internal/models"
)

// ProfileStore persists finished runs.
type ProfileStore interface {
	SaveProfile(rec *models.ProfileRecord) error
}

// Profile is the result of one run.
type Profile struct {
	RunID        string                       `json:"run_id"`
	Account      string                       `json:"account"`
	GeneratedAt  time.Time                    `json:"generated_at"`
	Insufficient bool                         `json:"insufficient"`
	Features     models.FeatureVector         `json:"features"`
	Metadata     features.RunMetadata         `json:"metadata"`
	Traits       map[string]float64           `json:"traits"`
	Distribution models.ArchetypeDistribution `json:"distribution"`
	Holdings     models.HoldingsProfile       `json:"holdings"`
}

// Service wires the pipeline stages together.
type Service struct {
	extractor  *features.Extractor
	classifier *classifier.Classifier
	scorer     *holdings.Scorer
	store      ProfileStore
	logger     *zap.Logger
	now        func() time.Time
}

// NewService creates a service. store may be nil to skip persistence.
func NewService(e *features.Extractor, c *classifier.Classifier, s *holdings.Scorer, store ProfileStore, l *zap.Logger) *Service {
	return &Service{
		extractor:  e,
		classifier: c,
		scorer:     s,
		store:      store,
		logger:     logger.OrNop(l).Named("profiler"),
		now:        time.Now,
	}
}

// Profile profiles account from trades. Trades of other accounts are ignored;
// an empty account keeps every trade.
func (s *Service) Profile(ctx context.Context, account string, trades []models.Trade, market marketdata.Context, resolver holdings.TickerResolver) (*Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	own := forAccount(trades, account)
	// Holdings see the same normalized, validated rows the extractor uses.
	clean, _ := features.Preprocess(own)

	fv, meta := s.extractor.ExtractAll(own, market)
	traits := classifier.DeriveTraits(fv)
	dist, err := s.classifier.Classify(traits, fv)
	if err != nil {
		return nil, fmt.Errorf("failed to classify %s: %w", account, err)
	}

	p := &Profile{
		RunID:        uuid.NewString(),
		Account:      account,
		GeneratedAt:  s.now().UTC(),
		Insufficient: meta.TotalFeatures == 0,
		Features:     fv,
		Metadata:     meta,
		Traits:       traits,
		Distribution: dist,
		Holdings:     s.scorer.Score(clean, resolver),
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.store != nil {
		rec, err := p.Record()
		if err != nil {
			return nil, err
		}
		if err := s.store.SaveProfile(rec); err != nil {
			return nil, err
		}
	}

	s.logger.Info("Profile complete",
		zap.String("account", account),
		zap.String("run_id", p.RunID),
		zap.String("dominant", string(dist.Dominant)),
		zap.Float64("confidence", dist.Confidence),
		zap.String("method", dist.Method),
		zap.Float64("risk_score", p.Holdings.RiskScore),
		zap.Bool("insufficient", p.Insufficient),
	)
	return p, nil
}

// Record converts the profile into its stored form.
func (p *Profile) Record() (*models.ProfileRecord, error) {
	rec := &models.ProfileRecord{
		RunID:            p.RunID,
		Account:          p.Account,
		Dominant:         string(p.Distribution.Dominant),
		Confidence:       p.Distribution.Confidence,
		Method:           p.Distribution.Method,
		TotalFeatures:    p.Metadata.TotalFeatures,
		ComputedFeatures: p.Metadata.ComputedFeatures,
		NullFeatures:     p.Metadata.NullFeatures,
		ModuleErrors:     len(p.Metadata.ModuleErrors),
	}
	payloads := []struct {
		name string
		dst  *datatypes.JSON
		src  any
	}{
		{"features", &rec.Features, p.Features},
		{"traits", &rec.Traits, p.Traits},
		{"distribution", &rec.Distribution, p.Distribution},
		{"holdings", &rec.Holdings, p.Holdings},
	}
	for _, pl := range payloads {
		data, err := json.Marshal(pl.src)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", pl.name, err)
		}
		*pl.dst = datatypes.JSON(data)
	}
	return rec, nil
}

func forAccount(trades []models.Trade, account string) []models.Trade {
	if account == "" {
		return trades
	}
	own := make([]models.Trade, 0, len(trades))
	for _, t := range trades {
		if t.AccountID() == account {
			own = append(own, t)
		}
	}
	return own
}
