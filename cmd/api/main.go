package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	"github.com/glossglow/salon-ai-receptionist/cmd/mainconfig"
	"github.com/glossglow/salon-ai-receptionist/internal/api/router"
	"github.com/glossglow/salon-ai-receptionist/internal/appointments"
	appconfig "github.com/glossglow/salon-ai-receptionist/internal/config"
	"github.com/glossglow/salon-ai-receptionist/internal/conversation"
	"github.com/glossglow/salon-ai-receptionist/internal/http/handlers"
	"github.com/glossglow/salon-ai-receptionist/internal/notify"
	"github.com/glossglow/salon-ai-receptionist/internal/observability/metrics"
	"github.com/glossglow/salon-ai-receptionist/internal/salon"
	"github.com/glossglow/salon-ai-receptionist/internal/voice"
	"github.com/glossglow/salon-ai-receptionist/internal/ws"
	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

func main() {
	// .env is optional; container deployments set real env vars.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting salon-ai-receptionist API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)

	profile := salon.DefaultProfile(cfg.SalonName)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	receptionistMetrics := metrics.NewReceptionistMetrics(registry)

	// Redis working store
	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)
	sessionStore := conversation.NewSessionStore(redisClient)

	// AWS is only needed for Bedrock completions or SES email.
	var bedrockClient *bedrockruntime.Client
	var sesClient *sesv2.Client
	if cfg.LLMProvider == "bedrock" || cfg.EmailProvider == "ses" {
		awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		bedrockClient = bedrockruntime.NewFromConfig(awsCfg)
		sesClient = sesv2.NewFromConfig(awsCfg)
	}

	var openaiClient *openai.Client
	if cfg.OpenAIAPIKey != "" {
		openaiClient = openai.NewClient(cfg.OpenAIAPIKey)
	}

	llm, llmModel := buildLLMClient(cfg, openaiClient, bedrockClient, logger)
	if llm == nil {
		logger.Error("no LLM provider configured; set OPENAI_API_KEY or BEDROCK_MODEL_ID")
		os.Exit(1)
	}

	extractor := conversation.NewExtractor(
		conversation.WithLatency(llm, "extract", receptionistMetrics.ObserveLLMLatency),
		llmModel, *profile, logger)
	responder := conversation.NewResponder(
		conversation.WithLatency(llm, "reply", receptionistMetrics.ObserveLLMLatency),
		llmModel, *profile, int32(cfg.ReplyMaxTokens), logger)

	// Postgres serves both the appointment book and the transcript
	// archive; without it the receptionist still talks but cannot
	// commit bookings.
	var archive *conversation.ArchiveStore
	var coordinator *appointments.Coordinator
	if cfg.DatabaseURL != "" {
		archiveDB, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to open archive database", "error", err)
			os.Exit(1)
		}
		defer archiveDB.Close()
		archive = conversation.NewArchiveStore(archiveDB)

		pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create pgx pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		sender, emailProvider := buildEmailSender(cfg, sesClient, logger)
		mailer := notify.NewConfirmationMailer(sender, emailProvider, cfg.SalonName, receptionistMetrics, logger)
		coordinator = appointments.NewCoordinator(
			appointments.NewRepository(pool), mailer, receptionistMetrics, logger)
	} else {
		logger.Warn("DATABASE_URL not set; bookings and transcript archive disabled")
	}

	var booker conversation.Booker
	if coordinator != nil {
		booker = coordinator
	}
	turns := conversation.NewService(
		sessionStore, archive, extractor, responder, booker,
		receptionistMetrics, cfg.ContextWindow, logger)

	var transcriber voice.Transcriber
	var synthesizer voice.Synthesizer
	if openaiClient != nil {
		pipeline := voice.New(openaiClient, voice.Config{
			TranscriptionModel: cfg.WhisperModel,
			SpeechModel:        cfg.SpeechModel,
			SpeechVoice:        cfg.SpeechVoice,
		}, logger)
		transcriber = pipeline
		synthesizer = pipeline
	} else {
		logger.Warn("OPENAI_API_KEY not set; websocket audio disabled")
	}

	routerCfg := &router.Config{
		Logger:              logger,
		ConversationHandler: handlers.NewConversationHandler(turns, logger),
		AdminStatsHandler:   handlers.NewAdminStatsHandler(registry, logger),
		WebSocketHandler:    ws.NewHandler(turns, transcriber, synthesizer, *profile, logger),
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		AdminAuthSecret:     cfg.AdminJWTSecret,
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	}
	if coordinator != nil {
		routerCfg.AppointmentsHandler = handlers.NewAppointmentsHandler(coordinator, logger)
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildLLMClient selects the primary completion provider and layers the
// Gemini fallback on top when a key is available.
func buildLLMClient(cfg *appconfig.Config, openaiClient *openai.Client, bedrockClient *bedrockruntime.Client, logger *logging.Logger) (conversation.LLMClient, string) {
	var primary conversation.LLMClient
	var model string

	switch cfg.LLMProvider {
	case "bedrock":
		if bedrockClient != nil && cfg.BedrockModelID != "" {
			primary = conversation.NewBedrockLLMClient(bedrockClient)
			model = cfg.BedrockModelID
		}
	default:
		if openaiClient != nil {
			primary = conversation.NewOpenAILLMClient(openaiClient, cfg.OpenAIModel)
			model = cfg.OpenAIModel
		}
	}
	if primary == nil {
		return nil, ""
	}

	var fallback conversation.LLMClient
	if cfg.GeminiAPIKey != "" {
		gemini, err := conversation.NewGeminiLLMClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Warn("gemini fallback unavailable", "error", err)
		} else {
			fallback = gemini
		}
	}

	client := conversation.WithTimeout(
		conversation.NewFallbackLLMClient(primary, fallback, logger), cfg.LLMTimeout)
	return client, model
}

func buildEmailSender(cfg *appconfig.Config, sesClient *sesv2.Client, logger *logging.Logger) (notify.EmailSender, string) {
	switch cfg.EmailProvider {
	case "sendgrid":
		if sender := notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: cfg.SendGridFromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger); sender != nil {
			return sender, "sendgrid"
		}
		logger.Warn("sendgrid selected but not configured; using stub sender")
	case "ses":
		if sender := notify.NewSESSender(sesClient, notify.SESConfig{
			FromEmail: cfg.SESFromEmail,
			FromName:  cfg.SESFromName,
		}, logger); sender != nil {
			return sender, "ses"
		}
		logger.Warn("ses selected but not configured; using stub sender")
	}
	return notify.NewStubEmailSender(logger), "stub"
}
