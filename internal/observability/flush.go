package observability

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FlushTelemetry drains any buffered telemetry as the last step of shutdown,
// once the request pipeline is empty. Prometheus needs no flushing on its own
// (scrapes pull what is already there), so in practice this syncs the logger.
func FlushTelemetry(ctx context.Context, logger *zap.Logger) error {
	if logger != nil {
		if err := logger.Sync(); err != nil {
			return fmt.Errorf("flush logs: %w", err)
		}
	}
	return nil
}
