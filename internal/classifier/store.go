package classifier

import (
	"sync"

	"go.uber.org/zap"

	"trading-personality/internal/logger"
	"trading-personality/internal/metrics"
)

// ModelStore loads the model artifact on first use and shares it afterwards.
// Failed loads are not cached, so a later call retries.
type ModelStore struct {
	path    string
	logger  *zap.Logger
	metrics *metrics.Metrics

	mu    sync.Mutex
	model *Model
}

// NewModelStore creates a store for the artifact at path.
func NewModelStore(path string, l *zap.Logger, m *metrics.Metrics) *ModelStore {
	if m == nil {
		m = metrics.Nop()
	}
	return &ModelStore{
		path:    path,
		logger:  logger.OrNop(l).Named("model"),
		metrics: m,
	}
}

// Get returns the loaded model.
func (s *ModelStore) Get() (*Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model != nil {
		return s.model, nil
	}
	model, err := LoadModel(s.path)
	if err != nil {
		s.metrics.ModelLoadErrors.Inc()
		s.logger.Warn("Model unavailable", zap.String("path", s.path), zap.Error(err))
		return nil, err
	}
	s.logger.Info("Model loaded",
		zap.String("path", s.path),
		zap.Int("features", len(model.Features)),
		zap.Int("components", len(model.Weights)),
	)
	s.model = model
	return model, nil
}
