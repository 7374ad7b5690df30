package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/sandevgo/zhipukit/internal/batch"
	"github.com/sandevgo/zhipukit/internal/config"
	"github.com/sandevgo/zhipukit/internal/core"
	"github.com/sandevgo/zhipukit/internal/providers/tools"
	"github.com/sandevgo/zhipukit/internal/providers/zhipu"
	"github.com/sandevgo/zhipukit/internal/service/agent"
	"github.com/sandevgo/zhipukit/internal/service/media"
	"github.com/sandevgo/zhipukit/internal/service/moderation"
	"github.com/sandevgo/zhipukit/internal/service/rerank"
	"github.com/sandevgo/zhipukit/internal/service/search"
	"github.com/sandevgo/zhipukit/internal/service/vision"
	"github.com/sandevgo/zhipukit/internal/storage/snapshot"
	"github.com/sandevgo/zhipukit/internal/storage/sqlite"
	"github.com/spf13/cobra"
)

var errNoAPIKey = errors.New("ZHIPU_API_KEY is not set, run `zhipu setup` or export it")

// app wires configuration, storage and services for one command run.
type app struct {
	cfg     *config.AppConfig
	db      *sql.DB
	store   *snapshot.FileStore
	catalog *sqlite.CatalogRepo

	client     *zhipu.Client
	rerank     *rerank.Service
	moderation *moderation.Service
	search     *search.Service
	agent      *agent.Agent
	media      *media.Service
	vision     *vision.Service
	fetch      *tools.Fetch
}

// newApp opens storage and, when withClient is set, the vendor client and
// every service that depends on it.
func newApp(ctx context.Context, withClient bool) (*app, error) {
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		return nil, fmt.Errorf("failed to init env: %w", err)
	}

	a := &app{cfg: config.NewAppConfig(ctx)}

	db, err := sqlite.NewDB(ctx, a.cfg.GetDatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.db = db
	a.store = snapshot.NewFileStore(a.cfg.GetOutputsPath())
	a.catalog = sqlite.NewCatalogRepo(db)

	if !withClient {
		return a, nil
	}

	zcfg, err := config.ParseZhipuConfig()
	if err != nil {
		a.Close()
		if os.Getenv("ZHIPU_API_KEY") == "" {
			return nil, errNoAPIKey
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	models := zhipu.ModelsFromConfig(zcfg)
	client, err := zhipu.NewClient(zcfg, zhipu.WithModels(models))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	a.client = client

	batchOpts := batch.OptionsFrom(config.NewBatchConfig(ctx))
	a.rerank = rerank.New(client, a.store, a.catalog,
		rerank.WithModel(models.Rerank),
		rerank.WithMaxDocumentTokens(a.cfg.MaxDocumentTokens),
		rerank.WithBatchOptions(batchOpts),
	)
	a.moderation = moderation.New(client, a.store, a.catalog, moderation.WithBatchOptions(batchOpts))
	a.search = search.New(client)
	a.agent = agent.NewAgent(client, zcfg.AgentID)
	a.media = media.New(client, a.cfg.GetOutputsPath())
	a.vision = vision.New(client, models)
	a.fetch = tools.NewFetch()
	return a, nil
}

func (a *app) toolProviders() []core.ToolProvider {
	return []core.ToolProvider{a.rerank, a.moderation, a.search, a.agent, a.media, a.vision, a.fetch}
}

// Close is safe to call more than once.
func (a *app) Close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// run sets up logging and the app, then calls fn.
func run(cmd *cobra.Command, withClient bool, fn func(ctx context.Context, a *app) error) error {
	ctx, flushLog := setupLogger(cmd.Context())
	defer flushLog()

	a, err := newApp(ctx, withClient)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
