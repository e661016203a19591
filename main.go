package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v9"

	"github.com/ashevelev/chatweb/pkg/api"
	"github.com/ashevelev/chatweb/pkg/api/handler"
	"github.com/ashevelev/chatweb/pkg/chatgpt"
	"github.com/ashevelev/chatweb/pkg/contextwindow"
	"github.com/ashevelev/chatweb/pkg/database"
	"github.com/ashevelev/chatweb/pkg/digitalocean"
	"github.com/ashevelev/chatweb/pkg/logger"
	"github.com/ashevelev/chatweb/pkg/memory"
	"github.com/ashevelev/chatweb/pkg/repository"
	"github.com/ashevelev/chatweb/pkg/services"
	"github.com/ashevelev/chatweb/pkg/storage"
	"github.com/ashevelev/chatweb/pkg/workers"
)

type Config struct {
	OpenAIToken string `env:"OPENAI_TOKEN,required"`
	OpenAIModel string `env:"OPENAI_MODEL" envDefault:"gpt-4o-mini"`

	PgURL  string `env:"DATABASE_URL"`
	PgHost string `env:"DB_HOST" envDefault:"localhost:5432"`

	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	Mem0APIKey  string `env:"MEM0_API_KEY"`
	Mem0BaseURL string `env:"MEM0_BASE_URL"`

	CloudinaryCloudName string `env:"CLOUDINARY_CLOUD_NAME,required"`
	CloudinaryAPIKey    string `env:"CLOUDINARY_API_KEY,required"`
	CloudinaryAPISecret string `env:"CLOUDINARY_API_SECRET,required"`

	DigitalOceanToken string `env:"DO_TOKEN"`

	ContextTokenBudget int `env:"CONTEXT_TOKEN_BUDGET" envDefault:"8000"`
}

func main() {
	slog.SetDefault(slog.New(logger.NewHandler(os.Stderr, logger.DefaultOptions)))

	if err := runMain(); err != nil {
		slog.Error("shutting down due to error", logger.Err(err))
		os.Exit(1)
	}
	slog.Info("shutdown complete")
}

func runMain() error {
	workerGroup, err := setupWorkers()
	if err != nil {
		return err
	}

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		select {
		case s := <-sigCh:
			slog.Info("shutting down due to signal", "signal", s.String())
			cancelFn()
		case <-ctx.Done():
		}
	}()

	return workerGroup.Start(ctx)
}

func setupWorkers() (workers.Group, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing env config: %w", err)
	}

	db, err := database.NewPostgres(cfg.PgURL, cfg.PgHost)
	if err != nil {
		return nil, fmt.Errorf("creating db: %w", err)
	}

	completionClient, err := chatgpt.NewClient(cfg.OpenAIToken, cfg.OpenAIModel)
	if err != nil {
		return nil, fmt.Errorf("creating completion client: %w", err)
	}

	uploader, err := storage.NewCloudinaryClient(
		cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		return nil, fmt.Errorf("creating cloudinary client: %w", err)
	}

	memoryClient := memory.NewClient(cfg.Mem0APIKey, cfg.Mem0BaseURL)
	window := contextwindow.NewManager(cfg.ContextTokenBudget, contextwindow.Estimator{})

	userRepository := repository.NewUserRepository(db)
	conversationRepository := repository.NewConversationRepository(db)

	authService := services.NewAuthService(userRepository)
	conversationService := services.NewConversationService(conversationRepository)
	chatService := services.NewChatService(completionClient, memoryClient, window)
	uploadService := services.NewUploadService(uploader)

	var balanceProvider handler.BalanceProvider
	if cfg.DigitalOceanToken != "" {
		balanceProvider = digitalocean.NewClient(cfg.DigitalOceanToken)
	}

	router := api.NewRouter(authService, conversationService, chatService, uploadService, balanceProvider)

	var workerGroup workers.Group

	server, err := workers.NewHTTPServer(cfg.ListenAddr, router)
	if err != nil {
		return nil, fmt.Errorf("creating http server: %w", err)
	}
	workerGroup = append(workerGroup, server)

	return workerGroup, nil
}
