// Package app contains application services that orchestrate domain logic
// with adapters.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/hubward/quotaview/adapters/metrics"
	"github.com/hubward/quotaview/adapters/prometheus"
	"github.com/hubward/quotaview/domain/usage"
	"github.com/hubward/quotaview/ports"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Default metric names, matching the dirsize exporter.
const (
	DefaultQuotaMetric = "dirsize_hard_limit_bytes"
	DefaultUsageMetric = "dirsize_total_size_bytes"
)

// UsageConfig configures the usage query engine.
type UsageConfig struct {
	// Namespace selects which reporting domain's rows to use when a query
	// returns rows for several. The empty string is a sentinel meaning
	// "mock mode": fabricate data, never contact the backend.
	Namespace string

	// QuotaMetric and UsageMetric override the backend metric names.
	QuotaMetric string
	UsageMetric string
}

// UsageService resolves one user's current quota and usage snapshot per call.
// It is stateless across calls: nothing is cached, re-invoking with the same
// username always recomputes.
type UsageService struct {
	querier ports.MetricsQuerier
	mock    *MockGenerator
	cfg     UsageConfig
	logger  zerolog.Logger
	metrics *metrics.Collector // optional
}

// NewUsageService creates the usage query engine.
func NewUsageService(querier ports.MetricsQuerier, mock *MockGenerator, cfg UsageConfig, logger zerolog.Logger, collector *metrics.Collector) *UsageService {
	if cfg.QuotaMetric == "" {
		cfg.QuotaMetric = DefaultQuotaMetric
	}
	if cfg.UsageMetric == "" {
		cfg.UsageMetric = DefaultUsageMetric
	}

	return &UsageService{
		querier: querier,
		mock:    mock,
		cfg:     cfg,
		logger:  logger,
		metrics: collector,
	}
}

// withUsernameLabel relabels the exporter's directory label into a username
// label for display.
func withUsernameLabel(metric string) string {
	return fmt.Sprintf(`label_replace(%s, "username", "$1", "directory", "(.*)")`, metric)
}

// scoped builds the base selector for one metric, restricted to rows that
// carry a namespace and belong to the given user directory.
func scoped(metric, username string) string {
	return fmt.Sprintf(`%s{namespace!="", directory=%q}`, metric, username)
}

// GetUsage computes a usage snapshot for username, or returns one of the two
// sentinel errors (usage.ErrUnreachable, usage.ErrNoData). The three backend
// signals are fetched concurrently with all-or-nothing semantics: the first
// transport failure fails the whole snapshot and partial results are
// discarded, never partially rendered.
func (s *UsageService) GetUsage(ctx context.Context, username string) (usage.Record, error) {
	if s.cfg.Namespace == "" {
		s.logger.Warn().Str("username", username).
			Msg("no prometheus namespace configured, returning mock data")
		if s.metrics != nil {
			s.metrics.MockSnapshotsTotal.Inc()
		}
		return s.mock.Generate(username)
	}

	s.logger.Info().Str("username", username).Msg("fetching usage data")

	quotaBase := scoped(s.cfg.QuotaMetric, username)
	usageBase := scoped(s.cfg.UsageMetric, username)

	queries := [3]string{
		withUsernameLabel(quotaBase),
		withUsernameLabel(usageBase),
		withUsernameLabel(fmt.Sprintf("timestamp(%s)", usageBase)),
	}

	var responses [3]prometheus.Response

	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			resp, err := s.query(gctx, q)
			if err != nil {
				return err
			}
			responses[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error().Err(err).Str("username", username).
			Msg("usage queries failed")
		s.countSnapshot(metrics.OutcomeUnreachable)
		return usage.Record{}, usage.ErrUnreachable
	}

	quotaBytes, okQuota := prometheus.SelectValue(responses[0], s.cfg.Namespace)
	usageBytes, okUsage := prometheus.SelectValue(responses[1], s.cfg.Namespace)
	lastUpdated, okTime := prometheus.SelectTimestamp(responses[2], s.cfg.Namespace)

	if !okQuota || !okUsage || !okTime {
		// Which signal was missing stays in the logs; the user-visible
		// error deliberately does not reveal internal metric structure.
		s.logger.Info().Str("username", username).
			Bool("quota", okQuota).Bool("usage", okUsage).Bool("timestamp", okTime).
			Str("namespace", s.cfg.Namespace).
			Msg("incomplete usage data")
		s.countSnapshot(metrics.OutcomeNoData)
		return usage.Record{}, usage.ErrNoData
	}

	s.countSnapshot(metrics.OutcomeOK)
	return usage.NewRecord(username, usageBytes, quotaBytes, lastUpdated), nil
}

// query executes one backend query with instrumentation.
func (s *UsageService) query(ctx context.Context, q string) (prometheus.Response, error) {
	start := time.Now()
	resp, err := s.querier.Query(ctx, q)

	if s.metrics != nil {
		s.metrics.BackendDuration.Observe(time.Since(start).Seconds())
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeUnreachable
		}
		s.metrics.BackendQueries.WithLabelValues(outcome).Inc()
	}

	return resp, err
}

func (s *UsageService) countSnapshot(outcome string) {
	if s.metrics != nil {
		s.metrics.SnapshotsTotal.WithLabelValues(outcome).Inc()
	}
}

// Ensure interface compliance.
var _ ports.UsageProvider = (*UsageService)(nil)
