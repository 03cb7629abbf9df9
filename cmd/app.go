package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/hh-interviewer/internal/ai/gemini"
	"github.com/spigell/hh-interviewer/internal/events"
	"github.com/spigell/hh-interviewer/internal/index"
	"github.com/spigell/hh-interviewer/internal/interview"
	"github.com/spigell/hh-interviewer/internal/logger"
	"github.com/spigell/hh-interviewer/internal/secrets"
	"github.com/spigell/hh-interviewer/internal/session"
	"github.com/spigell/hh-interviewer/internal/storage"
)

// application holds the wired components of one command invocation.
type application struct {
	config *Config
	logger *zap.Logger
	store  *storage.Store
	index  index.Gateway
	genai  *genai.Client

	closers []func()
}

func newApplication() (*application, error) {
	log, err := logger.New(logger.Options{
		JSON:   viper.GetBool("json"),
		Debug:  viper.GetBool("debug"),
		Output: viper.GetString("log-output"),
	})
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, err
	}

	log.Debug("starting", zap.String("version", version), zap.Any("config", config.redacted()))

	store, err := storage.Open(config.Database)
	if err != nil {
		return nil, err
	}

	a := &application{config: config, logger: log, store: store}
	a.closers = append(a.closers, func() { _ = store.Close() })
	return a, nil
}

func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	_ = a.logger.Sync()
}

func (a *application) openIndex(ctx context.Context) (index.Gateway, error) {
	if a.index != nil {
		return a.index, nil
	}

	switch a.config.Index.Backend {
	case "postgres":
		pg, err := index.NewPostgres(ctx, a.config.Index.PostgresURL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		a.index = pg
	default:
		idx, err := index.NewSQLite(a.store.DB())
		if err != nil {
			return nil, err
		}
		a.index = idx
	}

	a.logger.Debug("embedding index ready", zap.String("backend", a.config.Index.Backend))
	return a.index, nil
}

func (a *application) genaiClient(ctx context.Context) (*genai.Client, error) {
	if a.genai != nil {
		return a.genai, nil
	}

	cfg := a.config.AI.Gemini
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		File:  cfg.APIKeyFile,
		Value: cfg.APIKey,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, %s_AI_GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err, envPrefix)
	}

	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	a.genai = client
	return client, nil
}

func (a *application) embedder(ctx context.Context) (*gemini.Embedder, error) {
	client, err := a.genaiClient(ctx)
	if err != nil {
		return nil, err
	}
	cfg := a.config.AI.Gemini
	return gemini.NewEmbedder(client, gemini.EmbedderConfig{
		Model:      cfg.EmbeddingModel,
		MaxRetries: cfg.MaxRetries,
		Timeout:    cfg.Timeout,
	}, a.logger)
}

func (a *application) engine(ctx context.Context) (*interview.Engine, error) {
	client, err := a.genaiClient(ctx)
	if err != nil {
		return nil, err
	}

	cfg := a.config.AI.Gemini
	generator, err := gemini.NewGenerator(client, gemini.GeneratorConfig{
		Model:        cfg.Model,
		MaxRetries:   cfg.MaxRetries,
		Timeout:      cfg.Timeout,
		MaxLogLength: cfg.MaxLogLength,
	}, a.logger.With(zap.Int("ai_retry_attempts", cfg.MaxRetries)))
	if err != nil {
		return nil, err
	}

	chunks, err := a.openIndex(ctx)
	if err != nil {
		return nil, err
	}

	ladder, err := loadLadder(a.config.Interview)
	if err != nil {
		return nil, err
	}

	return interview.New(interview.Deps{Generator: generator, Chunks: chunks, Ladder: ladder}, a.logger)
}

// loadLadder reads the configured question ladder. A nil ladder keeps the
// built-in one.
func loadLadder(cfg *InterviewConfig) (*interview.Ladder, error) {
	if cfg == nil || cfg.LadderFile == "" {
		return nil, nil
	}

	data, err := os.ReadFile(cfg.LadderFile)
	if err != nil {
		return nil, fmt.Errorf("reading question ladder: %w", err)
	}
	ladder, err := interview.ParseLadder(data)
	if err != nil {
		return nil, err
	}
	return &ladder, nil
}

func (a *application) publisher() events.Publisher {
	cfg := a.config.Events
	if cfg == nil || cfg.NATSURL == "" {
		return events.Nop{}
	}

	pub, err := events.NewNATS(cfg.NATSURL, cfg.SubjectPrefix, a.logger)
	if err != nil {
		a.logger.Warn("events disabled", zap.Error(err))
		return events.Nop{}
	}
	a.closers = append(a.closers, pub.Close)
	return pub
}

// service wires the session service. The engine is optional for read-only
// commands.
func (a *application) service(ctx context.Context, withEngine bool) (*session.Service, error) {
	var engine session.Engine
	if withEngine {
		e, err := a.engine(ctx)
		if err != nil {
			return nil, err
		}
		engine = e
	} else {
		engine = readOnlyEngine{}
	}
	return session.NewService(a.store, engine, a.publisher(), a.logger), nil
}

var errReadOnly = errors.New("command does not talk to the language model")

type readOnlyEngine struct{}

func (readOnlyEngine) StartOrResumePhaseFor(_ string, n int) interview.Phase {
	return interview.SelectPhase(n)
}

func (readOnlyEngine) NextQuestion(context.Context, string, []interview.Turn) (string, error) {
	return "", errReadOnly
}

func (readOnlyEngine) Classify(context.Context, string, string) (interview.Classification, error) {
	return interview.Classification{}, errReadOnly
}

func (readOnlyEngine) FinalizeAnalysis(context.Context, []interview.Turn) (interview.Scorecard, error) {
	return nil, errReadOnly
}
