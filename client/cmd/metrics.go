package main

import (
	"time"

	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"
)

// newLogger builds the production logger, lowered to debug level when verbose
// so that command failures and reported metrics show up.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// logReporter writes tally metrics to the debug log when the root scope reports.
type logReporter struct {
	logger *zap.Logger
}

type capabilities struct{}

func (capabilities) Reporting() bool { return true }
func (capabilities) Tagging() bool   { return true }

func (r logReporter) Capabilities() tally.Capabilities { return capabilities{} }
func (r logReporter) Flush()                           {}

func (r logReporter) ReportCounter(name string, tags map[string]string, value int64) {
	r.logger.Debug("counter", zap.String("name", name), zap.Any("tags", tags), zap.Int64("value", value))
}

func (r logReporter) ReportGauge(name string, tags map[string]string, value float64) {
	r.logger.Debug("gauge", zap.String("name", name), zap.Any("tags", tags), zap.Float64("value", value))
}

func (r logReporter) ReportTimer(name string, tags map[string]string, interval time.Duration) {
	r.logger.Debug("timer", zap.String("name", name), zap.Any("tags", tags), zap.Duration("value", interval))
}

func (r logReporter) ReportHistogramValueSamples(name string, tags map[string]string, _ tally.Buckets, lower, upper float64, samples int64) {
	r.logger.Debug("histogram", zap.String("name", name), zap.Any("tags", tags),
		zap.Float64("lower", lower), zap.Float64("upper", upper), zap.Int64("samples", samples))
}

func (r logReporter) ReportHistogramDurationSamples(name string, tags map[string]string, _ tally.Buckets, lower, upper time.Duration, samples int64) {
	r.logger.Debug("histogram", zap.String("name", name), zap.Any("tags", tags),
		zap.Duration("lower", lower), zap.Duration("upper", upper), zap.Int64("samples", samples))
}
