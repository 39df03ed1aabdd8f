// cmd/settlement-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"repobounty/internal/api"
	"repobounty/internal/audit"
	"repobounty/internal/common/aws"
	"repobounty/internal/common/camunda"
	"repobounty/internal/common/config"
	"repobounty/internal/common/database"
	"repobounty/internal/common/logger"
	"repobounty/internal/common/observability"
	"repobounty/internal/evaluator"
	"repobounty/internal/models"
	"repobounty/internal/notify"
	"repobounty/internal/payments"
	"repobounty/internal/settlement"
	"repobounty/internal/simulation"
	"repobounty/internal/store"
	"repobounty/internal/treasury"
	evalsub "repobounty/internal/workers/evaluate-submission"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	simulate := flag.Bool("simulate", false, "settle a batch of sample pull requests and exit")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting settlement manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("settlement-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	evalStore := store.NewStore(pg.DB, log)
	if err := evalStore.EnsureSchema(ctx); err != nil {
		zapLog.Fatal("schema migration failed", zap.Error(err))
	}

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Build the evaluation pipeline ---
	var remoteTier *evaluator.RemoteTier
	if cfg.Evaluators.Remote.Enabled {
		remoteTier = evaluator.NewRemoteTier(&evaluator.RemoteConfig{
			BaseURL:     cfg.Evaluators.Remote.BaseURL,
			APIKey:      cfg.Evaluators.Remote.APIKey,
			Model:       cfg.Evaluators.Remote.Model,
			MaxTokens:   cfg.Evaluators.Remote.MaxTokens,
			Temperature: cfg.Evaluators.Remote.Temperature,
			Timeout:     time.Duration(cfg.Evaluators.Remote.Timeout) * time.Millisecond,
			MaxPayout:   cfg.Treasury.MaxPerPR,
		}, log)
	}

	var bedrockTier *evaluator.BedrockTier
	if cfg.Evaluators.Bedrock.Enabled {
		bedrockClient, err := aws.NewBedrockClient(ctx, cfg.Evaluators.Bedrock.Region)
		if err != nil {
			zapLog.Fatal("bedrock client failed", zap.Error(err))
		}
		bedrockTier = evaluator.NewBedrockTier(&evaluator.BedrockConfig{
			ModelID:   cfg.Evaluators.Bedrock.ModelID,
			MaxTokens: cfg.Evaluators.Bedrock.MaxTokens,
			Timeout:   time.Duration(cfg.Evaluators.Bedrock.Timeout) * time.Millisecond,
			MaxPayout: cfg.Treasury.MaxPerPR,
		}, bedrockClient, log)
	}

	localTier := evaluator.NewLocalTier(cfg.Treasury.MaxPerPR, log)
	pipeline := evaluator.NewPipeline(remoteTier, bedrockTier, localTier, log)

	// --- Treasury and payments ---
	ledger := treasury.NewLedger(cfg.Treasury.MonthlyBudget, cfg.Treasury.MaxPerPR, log)

	paymentsClient := payments.NewClient(&payments.Config{
		BaseURL:    cfg.Payments.BaseURL,
		APIKey:     cfg.Payments.APIKey,
		Token:      cfg.Payments.Token,
		Timeout:    time.Duration(cfg.Payments.Timeout) * time.Millisecond,
		MaxRetries: cfg.Payments.MaxRetries,
	}, log)

	// --- Notifications (optional, AWS-backed) ---
	var emailSender notify.EmailSender
	if cfg.Notifications.Email.Enabled {
		sesClient, err := aws.NewSESClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("ses client failed", zap.Error(err))
		}
		emailSender = sesClient
	}

	var topicPublisher notify.TopicPublisher
	if cfg.Notifications.Alerts.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Notifications.AWS.Region)
		if err != nil {
			zapLog.Fatal("sns client failed", zap.Error(err))
		}
		topicPublisher = snsClient
	}

	notifier := notify.NewNotifier(&notify.Config{
		SenderEmail:    cfg.Notifications.Email.FromEmail,
		RecipientEmail: cfg.Notifications.Email.ToEmail,
		AlertTopicARN:  cfg.Notifications.Alerts.TopicARN,
	}, emailSender, topicPublisher, log)

	// --- Assemble the settlement orchestrator ---
	cacheTTL := time.Duration(cfg.Database.Redis.CacheTTL) * time.Minute
	resultCache := store.NewCache(redis.Client, cacheTTL, log)
	indexer := store.NewIndexer(esClient.Client, log)

	orchestrator := settlement.NewOrchestrator(pipeline, ledger, paymentsClient, log,
		settlement.WithStore(evalStore),
		settlement.WithCache(resultCache),
		settlement.WithIndexer(indexer),
		settlement.WithNotifier(notifier),
		settlement.WithObservability(obs),
	)

	zapLog.Info("Settlement orchestrator assembled",
		zap.Float64("monthlyBudget", cfg.Treasury.MonthlyBudget),
		zap.Float64("maxPerPR", cfg.Treasury.MaxPerPR),
	)

	if *simulate {
		runSimulation(ctx, orchestrator, zapLog)
		return
	}

	// --- Optional Zeebe worker registration ---
	var zeebeClient *camunda.Client
	var evalWorker *camunda.Worker
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zeebeClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				ConnectionTimeout:      time.Duration(cfg.Camunda.Timeout) * time.Millisecond,
				RequestTimeout:         time.Duration(cfg.Camunda.RequestTimeout) * time.Millisecond,
			})
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		if wcfg := cfg.Workers[evalsub.TaskType]; wcfg.Enabled {
			handler := evalsub.NewHandler(
				&evalsub.Config{
					Timeout:       time.Duration(wcfg.Timeout) * time.Millisecond,
					MaxJobsActive: wcfg.MaxJobsActive,
				},
				orchestrator, log,
			)
			evalWorker = camunda.NewWorker(zeebeClient, evalsub.TaskType, camunda.WorkerConfig{
				MaxJobsActive: wcfg.MaxJobsActive,
				Timeout:       time.Duration(wcfg.Timeout) * time.Millisecond,
			}, handler.Handle, zapLog)
		} else {
			zapLog.Info("worker disabled", zap.String("taskType", evalsub.TaskType))
		}
	}

	// --- API Server ---
	serverOpts := []api.ServerOption{
		api.WithReader(evalStore),
		api.WithSearcher(indexer),
		api.WithWebhookSecret(cfg.Webhook.Secret),
	}
	if cfg.Audit.Enabled {
		auditor := audit.NewAuditor(log)
		serverOpts = append(serverOpts, api.WithAuditor(auditor, func(a *models.EnterpriseAudit) {
			ledger.AddRevenue(a.AmountCharged)
			if err := evalStore.SaveAudit(context.Background(), a); err != nil {
				zapLog.Error("audit persist failed", zap.Error(err), zap.String("auditId", a.ID))
			}
		}))
	}

	apiServer := api.NewServer(orchestrator, log, serverOpts...)

	serverCtx, stopServer := context.WithCancel(ctx)
	go func() {
		if err := apiServer.ListenAndServe(serverCtx, cfg.Server.Port); err != nil {
			zapLog.Error("API server failed", zap.Error(err))
		}
	}()

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			if zeebeClient != nil {
				if err := zeebeClient.HealthCheck(r.Context()); err != nil {
					w.WriteHeader(http.StatusServiceUnavailable)
					json.NewEncoder(w).Encode(map[string]string{
						"status": "not ready",
						"error":  err.Error(),
					})
					return
				}
			}
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info(fmt.Sprintf("Health/Metrics server listening on :%d", cfg.Server.MetricsPort))
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Server.MetricsPort), nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	stopServer()

	if evalWorker != nil {
		evalWorker.Stop()
	}
	if zeebeClient != nil {
		if err := zeebeClient.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}

	zapLog.Info("Settlement manager stopped gracefully")
}

// runSimulation pushes a canned batch of pull requests through the full
// settlement path and prints the resulting treasury position.
func runSimulation(ctx context.Context, orchestrator *settlement.Orchestrator, log *zap.Logger) {
	for _, sub := range simulation.SamplePRs() {
		eval, err := orchestrator.Settle(ctx, sub)
		if err != nil {
			log.Error("settlement failed",
				zap.String("title", sub.Title),
				zap.Error(err),
			)
			continue
		}

		log.Info("settled",
			zap.String("title", sub.Title),
			zap.String("verdict", string(eval.AI.Verdict)),
			zap.Int("score", eval.AI.Score),
			zap.String("payoutStatus", string(eval.Payout.Status)),
			zap.Float64("payoutAmount", eval.Payout.Amount),
			zap.String("source", eval.Source),
		)
	}

	snap := orchestrator.Treasury()
	log.Info("treasury position",
		zap.Float64("netBalance", snap.NetBalance),
		zap.Float64("spent", snap.Spent),
		zap.Float64("earned", snap.Earned),
		zap.Int("bountyCount", snap.BountyCount),
	)
}
