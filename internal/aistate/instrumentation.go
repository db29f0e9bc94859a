package aistate

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const scopeName = "github.com/lumen-io/lumen/internal/aistate"

// Metric names.
const (
	TransitionsMetric = "lumen.aistate.transitions"
	ExpiriesMetric    = "lumen.aistate.expiries"
)

// WithMeterProvider records metrics through mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(s *Store) {
		s.meterProvider = mp
	}
}

// WithLoggerProvider sends transition logs to lp instead of the global provider.
func WithLoggerProvider(lp otellog.LoggerProvider) Option {
	return func(s *Store) {
		s.loggerProvider = lp
	}
}

type instruments struct {
	logger      *slog.Logger
	transitions metric.Int64Counter
	expiries    metric.Int64Counter
}

// newInstruments resolves providers when the store is created, so a host
// must install its global providers before calling New.
func newInstruments(mp metric.MeterProvider, lp otellog.LoggerProvider) instruments {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	var logOpts []otelslog.Option
	if lp != nil {
		logOpts = append(logOpts, otelslog.WithLoggerProvider(lp))
	}

	meter := mp.Meter(scopeName)
	transitions, err := meter.Int64Counter(TransitionsMetric,
		metric.WithDescription("Activity state transitions applied by the store."))
	if err != nil {
		otel.Handle(err)
		transitions = noop.Int64Counter{}
	}
	expiries, err := meter.Int64Counter(ExpiriesMetric,
		metric.WithDescription("Transient states that expired back to idle."))
	if err != nil {
		otel.Handle(err)
		expiries = noop.Int64Counter{}
	}

	return instruments{
		logger:      otelslog.NewLogger(scopeName, logOpts...),
		transitions: transitions,
		expiries:    expiries,
	}
}

func (in instruments) recordTransition(from, to State) {
	ctx := context.Background()
	in.transitions.Add(ctx, 1, metric.WithAttributes(attribute.String("state", to.String())))
	in.logger.DebugContext(ctx, "activity state changed", "from", from.String(), "to", to.String())
}

func (in instruments) recordExpiry(from State) {
	ctx := context.Background()
	in.expiries.Add(ctx, 1, metric.WithAttributes(attribute.String("state", from.String())))
	in.logger.DebugContext(ctx, "transient activity state expired", "state", from.String())
}
