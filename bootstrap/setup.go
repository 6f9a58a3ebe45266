package bootstrap

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"gorm.io/gorm"

	"github.com/agentdesk/agentdesk/agents"
	"github.com/agentdesk/agentdesk/config"
	"github.com/agentdesk/agentdesk/log"
	"github.com/agentdesk/agentdesk/orm"
	"github.com/agentdesk/agentdesk/plugins"
	"github.com/agentdesk/agentdesk/plugins/gemini"
	"github.com/agentdesk/agentdesk/plugins/ollama"
	"github.com/agentdesk/agentdesk/plugins/openaicompat"
	"github.com/agentdesk/agentdesk/scheduler"
	"github.com/agentdesk/agentdesk/tools"
)

// App holds the initialized components of the application
type App struct {
	Assistant *agents.Assistant
	Genkit    *genkit.Genkit
	Registry  *tools.Registry
	DB        *gorm.DB
	Scheduler *scheduler.Service

	geminiClient *gemini.Client
}

// Setup initializes the application components based on the configuration
func Setup(ctx context.Context, cfg *config.Config, confirm agents.Confirmer) (*App, error) {
	app := &App{}

	// 1. Database
	db, err := orm.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = db

	// 2. Genkit and LLM client
	var gk *genkit.Genkit
	var llm plugins.LLMClient

	switch cfg.AI.Plugin {
	case "ollama":
		log.Infof(ctx, "Using Ollama (model: %s)", cfg.AI.Ollama.Model)
		gk = genkit.Init(ctx)
		llm = ollama.NewClient(cfg.AI.Ollama.BaseURL, cfg.AI.Ollama.Model)
	case "openai":
		log.Infof(ctx, "Using OpenAI-compatible endpoint (model: %s)", cfg.AI.OpenAI.Model)
		if cfg.AI.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY must be set for the openai plugin")
		}
		plugin := &openaicompat.OpenAICompat{
			APIKey:       cfg.AI.OpenAI.APIKey,
			BaseURL:      cfg.AI.OpenAI.BaseURL,
			DefaultModel: cfg.AI.OpenAI.Model,
		}
		gk = genkit.Init(ctx, genkit.WithPlugins(plugin))
		llm = &modelClient{gk: gk, model: plugin.Model(gk, cfg.AI.OpenAI.Model)}
	case "gemini", "":
		log.Infof(ctx, "Using Gemini (model: %s)", cfg.AI.Gemini.Model)
		if cfg.AI.Gemini.APIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY must be set (or set AI_PLUGIN=ollama)")
		}
		gk = genkit.Init(ctx)
		client, err := gemini.NewClient(ctx, cfg.AI.Gemini.APIKey, cfg.AI.Gemini.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
		}
		app.geminiClient = client
		llm = client
	default:
		return nil, fmt.Errorf("unknown AI plugin %q", cfg.AI.Plugin)
	}
	app.Genkit = gk

	// 3. Scheduler. The fire callback closes over the assistant created
	// below so triggered tasks re-enter the chat loop.
	sched := scheduler.New(db, func(fireCtx context.Context, taskID, payload string) {
		if app.Assistant == nil {
			return
		}
		if _, err := app.Assistant.HandleTrigger(fireCtx, taskID, payload); err != nil {
			log.Errorf(fireCtx, "Failed to handle triggered task %s: %v", taskID, err)
		}
	})
	app.Scheduler = sched

	// 4. Tools Registry
	registry := tools.NewRegistry()
	tools.NewWeatherTool(gk, registry)
	tools.NewDatabaseTools(gk, registry, db)
	tools.NewTimeTool(gk, registry, db)
	tools.NewScheduleTools(gk, registry, sched)
	app.Registry = registry

	// 5. Assistant
	app.Assistant = agents.NewAssistant(gk, registry, llm, confirm)

	// 6. Start the scheduler (reloads persisted tasks)
	if cfg.Scheduler.Enabled {
		if err := sched.Start(ctx); err != nil {
			return nil, fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	return app, nil
}

// Close releases the app's resources
func (a *App) Close() {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.geminiClient != nil {
		_ = a.geminiClient.Close()
	}
}

// modelClient adapts a Genkit model to the plugins.LLMClient interface
type modelClient struct {
	gk    *genkit.Genkit
	model ai.Model
}

func (m *modelClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := genkit.Generate(ctx, m.gk,
		ai.WithModel(m.model),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}
	return resp.Text(), nil
}
