// Package worker runs the asynq server and scheduler for the background
// maintenance jobs.
package worker

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/ayabid/license-admin-api/internal/config"
	"github.com/ayabid/license-admin-api/internal/domain/session"
	"github.com/ayabid/license-admin-api/internal/service"
	"github.com/ayabid/license-admin-api/internal/tasks"
)

const (
	sessionPurgeSchedule = "@every 10m"
	dbProbeSchedule      = "@every 5m"
)

// RunWorkers starts the asynq server and scheduler and blocks until ctx is
// canceled, then shuts both down.
func RunWorkers(
	ctx context.Context,
	cfg *config.Config,
	sessions session.Repository,
	monitorService *service.MonitorService,
	logger *zap.Logger,
) error {
	redisConnOpts := asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}

	srv := asynq.NewServer(
		redisConnOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				logger.Named("AsynqServerErrorHandler").Error("Asynq task processing failed",
					zap.String("task_type", task.Type()),
					zap.ByteString("payload", task.Payload()),
					zap.Error(err),
				)
			}),
			Logger: NewAsynqLoggerAdapter(logger.Named("AsynqServer")),
		},
	)

	mux := asynq.NewServeMux()

	purgeHandler := tasks.NewSessionPurgeHandler(sessions, logger)
	mux.HandleFunc(tasks.TypeSessionPurge, purgeHandler.ProcessTask)

	probeHandler := tasks.NewDBProbeHandler(monitorService, logger)
	mux.HandleFunc(tasks.TypeDBProbe, probeHandler.ProcessTask)

	scheduler := asynq.NewScheduler(
		redisConnOpts,
		&asynq.SchedulerOpts{
			Logger: NewAsynqLoggerAdapter(logger.Named("AsynqScheduler")),
		},
	)

	purgeTask, err := tasks.NewSessionPurgeTask()
	if err != nil {
		return fmt.Errorf("create session purge task: %w", err)
	}
	if _, err := scheduler.Register(sessionPurgeSchedule, purgeTask); err != nil {
		return fmt.Errorf("register session purge task: %w", err)
	}

	probeTask, err := tasks.NewDBProbeTask()
	if err != nil {
		return fmt.Errorf("create db probe task: %w", err)
	}
	if _, err := scheduler.Register(dbProbeSchedule, probeTask); err != nil {
		return fmt.Errorf("register db probe task: %w", err)
	}

	errChan := make(chan error, 2)

	go func() {
		logger.Info("Starting Asynq Server...")
		if err := srv.Run(mux); err != nil {
			errChan <- fmt.Errorf("asynq server error: %w", err)
		}
	}()

	go func() {
		logger.Info("Starting Asynq Scheduler...")
		if err := scheduler.Run(); err != nil {
			errChan <- fmt.Errorf("asynq scheduler error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down Asynq Scheduler...")
		scheduler.Shutdown()
		logger.Info("Shutting down Asynq Server...")
		srv.Shutdown()
		return nil
	case err := <-errChan:
		scheduler.Shutdown()
		srv.Shutdown()
		return err
	}
}

type asynqLoggerAdapter struct {
	logger *zap.Logger
}

func NewAsynqLoggerAdapter(logger *zap.Logger) *asynqLoggerAdapter {
	return &asynqLoggerAdapter{logger: logger.WithOptions(zap.AddCallerSkip(1))}
}

func (l *asynqLoggerAdapter) Debug(args ...interface{}) {
	l.logger.Debug(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Info(args ...interface{}) {
	l.logger.Info(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Warn(args ...interface{}) {
	l.logger.Warn(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Error(args ...interface{}) {
	l.logger.Error(fmt.Sprint(args...))
}
func (l *asynqLoggerAdapter) Fatal(args ...interface{}) {
	l.logger.Fatal(fmt.Sprint(args...))
}
