package config

import (
	"context"
	"fmt"

	"research-assistant/internal/domain"
	"research-assistant/internal/infra/supabase"
	"research-assistant/internal/llm"
	"research-assistant/internal/metrics"
	"research-assistant/internal/repository"
	"research-assistant/internal/service"
	"research-assistant/pkg/logger"
)

// Container holds all application dependencies
type Container struct {
	Config            domain.Config
	Logger            domain.Logger
	Metrics           *metrics.Metrics
	LLM               llm.Provider
	SessionRepository domain.SessionRepository
	StorageClient     *supabase.StorageClient
	DocumentProcessor domain.DocumentProcessor
	AssistantService  domain.AssistantService
	QuestionGenerator domain.QuestionGenerator
	ArchiveService    domain.ArchiveService
	WorkspaceService  domain.WorkspaceService
}

// NewContainer creates a new dependency injection container. It fails when
// the selected LLM provider cannot be built.
func NewContainer(ctx context.Context) (*Container, error) {
	config := NewConfig()
	appLogger := logger.NewLogger(config.GetLogLevel(), config.GetLogFile())

	sessionRepo := repository.NewSessionRepository(config.GetSessionTTL(), appLogger)
	appMetrics := metrics.New(sessionRepo.Count)

	provider, err := newLLMProvider(ctx, config)
	if err != nil {
		return nil, err
	}
	provider = llm.WithInstrumentation(provider, appLogger, appMetrics)
	appLogger.Info("LLM provider ready", "provider", config.GetLLMProvider(), "model", provider.ModelID())

	// Initialize Supabase client (archive copies only)
	var storageClient *supabase.StorageClient
	var remote service.ObjectUploader
	if config.GetArchiveUploads() && config.GetSupabaseURL() != "" && config.GetSupabaseKey() != "" {
		storageClient = supabase.NewStorageClient(config, appLogger)
		if err := storageClient.Initialize(); err != nil {
			appLogger.Warn("Supabase storage unavailable, archiving to local directory", "error", err)
			storageClient = nil
		} else {
			remote = storageClient
		}
	}

	truncator := service.NewTruncator(appLogger)
	documentProcessor := service.NewDocumentProcessor(service.NewPDFProcessor(appLogger), config, appLogger, appMetrics)
	assistantService := service.NewAssistantService(provider, truncator, config, appLogger)
	questionGenerator := service.NewQuestionGenerator(provider, truncator, config, appLogger)
	archiveService := service.NewArchiveService(config, remote, appLogger)

	workspaceService := service.NewWorkspaceService(
		sessionRepo,
		documentProcessor,
		assistantService,
		questionGenerator,
		archiveService,
		appLogger,
	)

	return &Container{
		Config:            config,
		Logger:            appLogger,
		Metrics:           appMetrics,
		LLM:               provider,
		SessionRepository: sessionRepo,
		StorageClient:     storageClient,
		DocumentProcessor: documentProcessor,
		AssistantService:  assistantService,
		QuestionGenerator: questionGenerator,
		ArchiveService:    archiveService,
		WorkspaceService:  workspaceService,
	}, nil
}

// LLMConfig maps the application config onto the provider config.
func LLMConfig(config domain.Config) llm.Config {
	cfg := llm.DefaultConfig()
	cfg.Provider = config.GetLLMProvider()
	cfg.OpenAI.APIKey = config.GetOpenAIAPIKey()
	cfg.OpenAI.BaseURL = config.GetOpenAIBaseURL()
	cfg.Anthropic.APIKey = config.GetAnthropicAPIKey()
	cfg.Gemini.APIKey = config.GetGeminiAPIKey()
	return cfg.WithModel(config.GetLLMModel())
}

func newLLMProvider(ctx context.Context, config domain.Config) (llm.Provider, error) {
	provider, err := llm.NewProvider(ctx, LLMConfig(config))
	if err != nil {
		return nil, fmt.Errorf("configure LLM provider: %w", err)
	}
	return provider, nil
}
