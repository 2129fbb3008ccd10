package application

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"ticketbot/internal/adapter/api/handler"
	"ticketbot/internal/adapter/api/router"
	"ticketbot/internal/adapter/bot"
	"ticketbot/internal/adapter/repository"
	"ticketbot/internal/infrastructure/conversation"
	"ticketbot/internal/infrastructure/firebase"
	"ticketbot/internal/infrastructure/kafka"
	"ticketbot/internal/infrastructure/ratelimit"
	"ticketbot/internal/infrastructure/storage"
	"ticketbot/internal/infrastructure/telegram"
	"ticketbot/internal/usecase"
	"ticketbot/pkg/config"
	"ticketbot/pkg/logger"
)

const (
	dialogueCleanupInterval = 10 * time.Minute
	shutdownTimeout         = 30 * time.Second
)

// Bot is the long running chat bot: Telegram updates in, tickets out.
type Bot struct {
	cfg        *config.Config
	clients    *firebase.Clients
	producer   *kafka.Producer
	telegram   *telegram.Client
	dialogues  *repository.MemoryDialogueRepository
	manager    *conversation.Manager
	limiter    *ratelimit.RateLimiter
	submission *usecase.SubmissionUseCase
	router     *bot.Router
	server     *echo.Echo
}

func NewBot(ctx context.Context, cfg *config.Config) (*Bot, error) {
	clients, err := firebase.NewClients(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tg, err := telegram.NewClient(cfg.BotToken, cfg.BotDebug)
	if err != nil {
		clients.Close()
		return nil, err
	}

	ticketRepo := repository.NewFirestoreTicketRepository(clients.Firestore)
	userRepo := repository.NewFirestoreUserRepository(clients.Firestore)
	dialogues := repository.NewMemoryDialogueRepository(cfg.DialogueTTL)

	mediaStorage := storage.NewCloudStorageClient(clients.Bucket, clients.BucketName)
	fetcher := storage.NewHTTPFetcher(cfg.MediaDownloadTimeout, cfg.MediaMaxBytes)

	producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
	if producer.Enabled() {
		logger.Info("Publishing ticket events to topic %s", cfg.KafkaTopic)
	}

	submission := usecase.NewSubmissionUseCase(ticketRepo, mediaStorage, fetcher, producer)
	creation := usecase.NewTicketCreationUseCase(dialogues, submission, tg, tg, cfg.CategoryKeyboardColumn)
	moderation := usecase.NewModerationUseCase(ticketRepo, mediaStorage)

	// Jobs keep running on shutdown until the queues are empty.
	manager := conversation.NewManager(context.WithoutCancel(ctx))
	limiter := ratelimit.NewRateLimiter(cfg.RateLimitPerMinute)

	botRouter := bot.NewRouter(bot.Deps{
		Dialogue:   creation,
		Moderation: bot.NewModerationHandler(moderation, tg, cfg.ModerationLimit),
		Users:      userRepo,
		Messenger:  tg,
		Dispatcher: manager,
		Limiter:    limiter,
	})

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	var webhookHandler *handler.WebhookHandler
	if cfg.IsProduction() {
		webhookHandler = handler.NewWebhookHandler(botRouter)
	}
	router.Setup(e, handler.NewHealthHandler(manager, dialogues), webhookHandler, cfg.WebhookSecret)

	return &Bot{
		cfg:        cfg,
		clients:    clients,
		producer:   producer,
		telegram:   tg,
		dialogues:  dialogues,
		manager:    manager,
		limiter:    limiter,
		submission: submission,
		router:     botRouter,
		server:     e,
	}, nil
}

// Run serves until ctx is cancelled, then lets queued conversations and
// media transfers finish within the shutdown timeout.
func (b *Bot) Run(ctx context.Context) error {
	b.dialogues.StartCleanupRoutine(ctx, dialogueCleanupInterval)
	b.limiter.StartCleanupRoutine(ctx)

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Starting server on port %s...", b.cfg.ServerPort)
		if err := b.server.Start(":" + b.cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	if b.cfg.IsProduction() {
		if runErr = b.telegram.SetWebhook(b.cfg.WebhookEndpoint()); runErr == nil {
			select {
			case <-ctx.Done():
			case runErr = <-serverErr:
			}
		}
	} else {
		pollErr := make(chan error, 1)
		go func() { pollErr <- b.telegram.Poll(ctx, b.router) }()
		select {
		case runErr = <-pollErr:
		case runErr = <-serverErr:
		}
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := b.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown: %v", err)
	}
	if err := b.waitConversations(shutdownCtx); err != nil {
		logger.Warn("Conversations still busy at shutdown: %v", err)
	}
	if err := b.submission.Drain(shutdownCtx); err != nil {
		logger.Warn("Media transfers still running at shutdown: %v", err)
	}

	return runErr
}

func (b *Bot) waitConversations(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.manager.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%d active: %w", b.manager.Active(), ctx.Err())
	}
}

func (b *Bot) Close() {
	if err := b.producer.Close(); err != nil {
		logger.Error("Kafka producer close: %v", err)
	}
	if err := b.clients.Close(); err != nil {
		logger.Error("Firestore close: %v", err)
	}
}
