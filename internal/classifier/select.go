package classifier

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/diario-de-bordo/internal/config"
	"github.com/spec-kit/diario-de-bordo/internal/persistence"
)

// New picks the classifier once at startup: Gemini when a key is configured,
// the no-op default otherwise, cached in Redis when Redis is reachable.
func New(cfg config.AIConfig, redis *persistence.Redis, logger *zap.Logger) Classifier {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		logger.Info("no AI key configured; classification disabled")
		return NoopClassifier{}
	}

	var c Classifier = NewGeminiClassifier(cfg, logger)
	if redis.Available() && cfg.CacheTTL() > 0 {
		c = NewCachedClassifier(c, redis.Client, cfg.CacheTTL(), logger)
	}
	logger.Info("AI classification enabled", zap.String("model", cfg.Model))
	return c
}
