package classifier

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/pledge/pkg/config"
)

// NewAnalyzer picks the live model when an API key is configured.
func NewAnalyzer(l *zap.SugaredLogger, cfg *config.Config) Analyzer {
	if cfg.Classifier.APIKey == "" {
		l.Infow("campaign analysis using keyword fallback")
		return NewKeyword()
	}
	l.Infow("campaign analysis using gemini", "model", cfg.Classifier.Model)
	return NewGemini(l, cfg.Classifier, NewKeyword())
}

var Module = fx.Options(
	fx.Provide(NewAnalyzer),
)
