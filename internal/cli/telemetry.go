package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/lumen-io/lumen/internal/config"
)

// telemetry exports the store's log records and metrics to the
// application log file as JSON lines.
type telemetry struct {
	file   *os.File
	logs   *sdklog.LoggerProvider
	meters *sdkmetric.MeterProvider
}

func newTelemetry() (*telemetry, error) {
	path, err := config.GlobalLogFile()
	if err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logExp, err := stdoutlog.New(stdoutlog.WithWriter(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create log exporter: %w", err)
	}
	metricExp, err := stdoutmetric.New(stdoutmetric.WithWriter(f))
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create metric exporter: %w", err)
	}

	return &telemetry{
		file: f,
		logs: sdklog.NewLoggerProvider(
			sdklog.WithProcessor(sdklog.NewBatchProcessor(logExp)),
		),
		meters: sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)),
		),
	}, nil
}

// Shutdown flushes pending records and closes the log file.
func (t *telemetry) Shutdown(ctx context.Context) error {
	return errors.Join(
		t.logs.Shutdown(ctx),
		t.meters.Shutdown(ctx),
		t.file.Close(),
	)
}
