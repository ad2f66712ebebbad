package scheduler

import (
	"context"
	"fmt"

	"crm_backoffice/internal/audit"
	"crm_backoffice/platform/config"
	"crm_backoffice/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sink   audit.Sink
	log    *logger.Logger
}

// NewWorker builds the queue consumer. sink is where dequeued audit entries
// are finally written, normally the audit repository.
func NewWorker(cfg config.SchedulerConfig, sink audit.Sink, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		sink:   sink,
		log:    log,
	}
	w.mux.HandleFunc(TaskAuditRecord, w.handleAuditRecord)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) error {
	if w == nil || w.server == nil {
		return nil
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
		return err
	}
	return nil
}

func (w *Worker) handleAuditRecord(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAuditRecordPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if err := payload.Entry.Validate(); err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	if err := w.sink.Record(ctx, payload.Entry); err != nil {
		w.log.HookFailed("audit.worker", payload.Entry.EntityID.String(), err)
		return err
	}
	return nil
}
