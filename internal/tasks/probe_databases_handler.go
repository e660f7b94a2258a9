package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/service"
)

// DBProbeHandler runs connectivity checks against every client database
// referenced by a license and persists the outcomes.
type DBProbeHandler struct {
	monitor *service.MonitorService
	logger  *zap.Logger
}

func NewDBProbeHandler(monitor *service.MonitorService, logger *zap.Logger) *DBProbeHandler {
	return &DBProbeHandler{
		monitor: monitor,
		logger:  logger.Named("DBProbeHandler"),
	}
}

func (h *DBProbeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if t.Type() != TypeDBProbe {
		return fmt.Errorf("unexpected task type: %s", t.Type())
	}

	results, err := h.monitor.ProbeAll(ctx)
	if err != nil {
		h.logger.Error("Failed to probe client databases", zap.Error(err))
		return fmt.Errorf("probe client databases: %w", err)
	}

	failed := 0
	for _, result := range results {
		if !result.Success {
			failed++
		}
	}

	h.logger.Info("Client database probe task finished",
		zap.Int("probed", len(results)),
		zap.Int("failed", failed),
	)
	return nil
}
