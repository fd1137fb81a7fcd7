package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/Oniqq60/performance_assessment/internal/cfg"
	"github.com/Oniqq60/performance_assessment/internal/evaluation"
	"github.com/Oniqq60/performance_assessment/internal/session"
)

func main() {
	conf := cfg.LoadConfig()
	logger := log.New(os.Stdout, "[evaluator] ", log.LstdFlags|log.Lmicroseconds)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	brokers := splitCSV(conf.KafkaBrokers)
	if len(brokers) == 0 {
		logger.Fatal("KAFKA_BROKERS must be set")
	}
	if conf.KafkaTopic == "" {
		logger.Fatal("KAFKA_TOPIC must be set")
	}
	if conf.APIBaseURL == "" {
		logger.Fatal("API_BASE_URL must be set")
	}

	client := session.NewClient(conf.APIBaseURL, session.DefaultTimeout)
	store := session.NewFileStore(tokenPath(conf))
	manager := session.NewManager(client, store, logger)

	if err := manager.Initialize(ctx); err != nil {
		logger.Printf("session restore failed: %v", err)
	}

	if !manager.Snapshot().IsAuthenticated() {
		if conf.EvaluatorLogin == "" || conf.EvaluatorPassword == "" {
			logger.Fatal("EVALUATOR_LOGIN and EVALUATOR_PASSWORD must be set")
		}
		result := manager.Login(ctx, session.RoleAdmin, conf.EvaluatorLogin, conf.EvaluatorPassword)
		if !result.Success {
			logger.Fatalf("evaluator login failed: %v", result.Error)
		}
		logger.Printf("logged in as %s", result.User.Email)
	} else {
		logger.Println("session restored from stored token")
	}

	api := &taskAPI{client: client, manager: manager, conf: conf, logger: logger}
	evaluator := evaluation.StubEvaluator{}
	notifier := evaluation.NewLogNotifier(logger)
	handler := evaluation.NewEventHandler(evaluator, api, notifier)
	consumer := evaluation.NewKafkaConsumer(brokers, conf.KafkaTopic, conf.KafkaGroupID, handler)
	defer consumer.Close()

	errCh := make(chan error, 1)

	go func() {
		logger.Printf("Kafka consumer subscribing to topic=%s group=%s", conf.KafkaTopic, conf.KafkaGroupID)
		errCh <- consumer.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Println("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Printf("consumer error: %v", err)
		}
	}

	manager.Logout(context.Background())
	logger.Println("evaluator stopped")
}

// taskAPI отправляет оценки через API с токеном из менеджера сессии.
// На 401 токен тихо обновляется, при неудаче выполняется повторный
// вход, после чего запрос повторяется один раз.
type taskAPI struct {
	client  *session.Client
	manager *session.Manager
	conf    cfg.Config
	logger  *log.Logger
}

func (a *taskAPI) EvaluateTask(ctx context.Context, taskID string, score float64, feedback string) error {
	err := a.client.EvaluateTask(ctx, a.manager.Token(), taskID, score, feedback)
	if err == nil || !session.IsUnauthorized(err) {
		return err
	}

	if rerr := a.manager.RefreshAuthToken(ctx); rerr != nil {
		a.logger.Printf("token refresh failed, logging in again: %v", rerr)
		result := a.manager.Login(ctx, session.RoleAdmin, a.conf.EvaluatorLogin, a.conf.EvaluatorPassword)
		if !result.Success {
			return result.Error
		}
	}

	return a.client.EvaluateTask(ctx, a.manager.Token(), taskID, score, feedback)
}

func tokenPath(conf cfg.Config) string {
	if strings.TrimSpace(conf.TokenPath) != "" {
		return conf.TokenPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".evaluator_token"
	}
	return filepath.Join(home, ".performance_assessment", "token")
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	var result []string
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			result = append(result, part)
		}
	}
	return result
}
