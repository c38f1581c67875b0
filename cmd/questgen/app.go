package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"questgen/internal/artifact"
	"questgen/internal/config"
	"questgen/internal/extract"
	"questgen/internal/llm"
	"questgen/internal/pipeline"
	"questgen/internal/snapshot"
)

// app wires one command invocation: config, logger, backend client,
// orchestrator and the snapshot storage the session persists through.
type app struct {
	cfg     *config.Config
	log     *zap.SugaredLogger
	orch    *pipeline.Orchestrator
	ex      *extract.Extractor
	client  llm.Client
	storage snapshot.Storage
}

func newApp(ctx context.Context, opts *rootOptions) (*app, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.provider != "" {
		cfg.Provider = opts.provider
	}
	if opts.dataDir != "" {
		cfg.DataDir = opts.dataDir
	}
	if opts.verbose {
		cfg.Verbose = true
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Verbose)
	if err != nil {
		return nil, err
	}
	log := logger.Sugar()

	client, err := newClient(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	storage, err := newStorage(ctx, cfg)
	if err != nil {
		client.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		log:     log,
		orch:    pipeline.New(artifact.NewStore(), client, log),
		ex:      extract.NewExtractor(log),
		client:  client,
		storage: storage,
	}, nil
}

func (a *app) close() {
	if a == nil {
		return
	}
	if a.storage != nil {
		a.storage.Close()
	}
	if a.client != nil {
		a.client.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}

// loadSession restores the durable snapshot into the orchestrator. A
// missing snapshot means a fresh session; a corrupt one aborts and leaves
// the (empty) in-memory state untouched.
func (a *app) loadSession(ctx context.Context) error {
	state, err := snapshot.Load(ctx, a.storage)
	if errors.Is(err, snapshot.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	a.orch.Restore(state.Session, state.Artifacts)
	return nil
}

func (a *app) saveSession(ctx context.Context) error {
	sess, entries := a.orch.SessionState()
	return snapshot.Save(ctx, a.storage, snapshot.State{Session: sess, Artifacts: entries})
}

// runSession is the shared command wrapper: build the app, load the
// snapshot, run the body, persist on success when the body mutates state.
func runSession(ctx context.Context, opts *rootOptions, save bool, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(ctx, opts)
	if err != nil {
		return err
	}
	defer a.close()
	if err := a.loadSession(ctx); err != nil {
		return err
	}
	if err := fn(ctx, a); err != nil {
		return err
	}
	if save {
		return a.saveSession(ctx)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

func newClient(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (llm.Client, error) {
	switch cfg.Provider {
	case config.ProviderGemini:
		if cfg.Gemini.APIKey == "" {
			return nil, errors.New("gemini provider needs GEMINI_API_KEY")
		}
		return llm.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, errors.New("openai provider needs OPENAI_API_KEY")
		}
		return llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, log), nil
	default:
		return llm.NewMockClient(), nil
	}
}

func newStorage(ctx context.Context, cfg *config.Config) (snapshot.Storage, error) {
	switch cfg.Snapshot.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return snapshot.NewSQLiteStorage(ctx, cfg.SnapshotPath())
	case config.BackendPostgres:
		if cfg.Snapshot.PostgresDSN == "" {
			return nil, errors.New("postgres snapshot backend needs QUESTGEN_POSTGRES_DSN")
		}
		return snapshot.NewPostgresStorage(ctx, cfg.Snapshot.PostgresDSN)
	case config.BackendS3:
		return snapshot.NewS3Storage(snapshot.S3Config{
			Endpoint:  cfg.Snapshot.S3Endpoint,
			Region:    cfg.Snapshot.S3Region,
			AccessKey: cfg.Snapshot.S3AccessKey,
			SecretKey: cfg.Snapshot.S3SecretKey,
			Bucket:    cfg.Snapshot.S3Bucket,
			Key:       cfg.Snapshot.S3Key,
			UseSSL:    cfg.Snapshot.S3UseSSL,
		})
	default:
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, err
		}
		return snapshot.NewFileStorage(cfg.DataDir, cfg.Snapshot.Path)
	}
}

// shortID trims a UUID for display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func printf(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}
