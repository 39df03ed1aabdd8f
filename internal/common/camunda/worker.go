// internal/common/camunda/worker.go
package camunda

import (
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"
)

// HandlerFunc is the job callback signature Zeebe expects. Handlers complete
// or fail the job themselves through the JobClient.
type HandlerFunc func(client worker.JobClient, job entities.Job)

// Worker is one open job subscription on the broker.
type Worker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

// WorkerConfig bounds a single subscription.
type WorkerConfig struct {
	MaxJobsActive int
	Timeout       time.Duration
}

// NewWorker opens a job subscription for taskType on the given client.
func NewWorker(client *Client, taskType string, cfg WorkerConfig, handler HandlerFunc, log *zap.Logger) *Worker {
	jobWorker := client.GetClient().NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(cfg.MaxJobsActive).
		Timeout(cfg.Timeout).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", cfg.MaxJobsActive),
		zap.Duration("timeout", cfg.Timeout),
	)

	return &Worker{
		worker:   jobWorker,
		logger:   log,
		taskType: taskType,
	}
}

// Stop closes the subscription and drains in-flight jobs.
func (w *Worker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
}
