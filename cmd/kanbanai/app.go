package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jask/kanbanai/internal/database"
	"github.com/jask/kanbanai/internal/database/repository"
	"github.com/jask/kanbanai/internal/generate"
	"github.com/jask/kanbanai/internal/kanban"
	"github.com/jask/kanbanai/internal/llm"
	"github.com/jask/kanbanai/internal/mongostore"
	"github.com/jask/kanbanai/internal/secrets"
	"github.com/jask/kanbanai/internal/service"
)

// app holds the opened store and the services built on it.
type app struct {
	store kanban.Store
	db    *sql.DB
	mongo *mongostore.Store
	close func()
}

func openApp(ctx context.Context) (*app, error) {
	switch cfg.Database.Driver {
	case "mongo":
		s, disconnect, err := mongostore.Connect(ctx, cfg.Database.MongoURI, cfg.Database.MongoDatabase)
		if err != nil {
			return nil, err
		}
		logger.Debug("using mongo store", zap.String("database", cfg.Database.MongoDatabase))
		return &app{
			store: s,
			mongo: s,
			close: func() { _ = disconnect(context.Background()) },
		}, nil
	default:
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir db dir: %w", err)
		}
		db, err := database.OpenMigrated(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		logger.Debug("using sqlite store", zap.String("path", cfg.Database.Path))
		return &app{
			store: repository.NewStore(db),
			db:    db,
			close: func() { _ = db.Close() },
		}, nil
	}
}

func (a *app) boards() *service.BoardService {
	return &service.BoardService{Store: a.store, Log: logger}
}

// synthesis builds the model variant chain; only commands that call a model
// need an API key.
func (a *app) synthesis(ctx context.Context) (*service.SynthesisService, error) {
	key, err := apiKey()
	if err != nil {
		return nil, err
	}
	backends, err := llm.NewBackends(ctx, llm.Options{
		Provider:        cfg.LLM.Provider,
		APIKey:          key,
		BaseURL:         cfg.LLM.BaseURL,
		Variants:        cfg.LLM.Variants,
		Timeout:         cfg.LLM.Timeout,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
	})
	if err != nil {
		return nil, err
	}
	gen, err := generate.New(backends, logger)
	if err != nil {
		return nil, err
	}
	return &service.SynthesisService{
		Generator:    gen,
		Materializer: &kanban.Materializer{Store: a.store, Log: logger},
		Store:        a.store,
		Log:          logger,
	}, nil
}

// apiKey prefers env and config, then the key saved with "kanbanai key set".
func apiKey() (string, error) {
	if k := cfg.LLM.ResolveAPIKey(); k != "" {
		return k, nil
	}
	store, err := secrets.Default()
	if err != nil {
		return "", err
	}
	k, err := store.Get(cfg.LLM.Provider)
	if errors.Is(err, secrets.ErrNoKey) {
		return "", nil
	}
	return k, err
}

func (a *app) reset(ctx context.Context) error {
	if a.mongo != nil {
		return a.mongo.Reset(ctx)
	}
	m := &service.MaintenanceService{DB: a.db}
	return m.Reset(ctx)
}
