package main

import (
	"context"

	"github.com/sirupsen/logrus"

	"docqa/internal/config"
	"docqa/internal/rag/embeddings"
	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/language"
	"docqa/internal/rag/pipeline"
	"docqa/internal/rag/responder"
	"docqa/internal/rag/session"
	"docqa/internal/rag/splitters"
	"docqa/internal/rag/storages/vectorstore"
	"docqa/pkg/logger"
)

// app bundles the wired pipeline for one CLI invocation.
type app struct {
	cfg   *config.Config
	log   *logger.Logger
	orch  *pipeline.Orchestrator
	state *session.State
	close func()
}

// newApp loads configuration and constructs every pipeline component.
// Vendor selection happens only here; the orchestrator sees interfaces.
func newApp(ctx context.Context, cfgPath string, offline bool) (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
	log := logger.New("docqa")

	splitter, err := splitters.NewCharacterSplitter(cfg.Chunking.ChunkSize, cfg.Chunking.Overlap)
	if err != nil {
		return nil, err
	}

	embedder, err := embeddings.New(
		cfg.Embedding.Provider,
		cfg.Embedding.Model,
		cfg.Embedding.APIKey,
		cfg.Embedding.BaseURL,
		cfg.Embedding.Dimensions,
	)
	if err != nil {
		return nil, err
	}

	var store interfaces.VectorStore
	closeStore := func() {}
	if offline {
		store = vectorstore.NewMemoryStore()
		log.Warn("Running with the in-memory vector store; the index will not survive this process")
	} else {
		milvusStore, err := vectorstore.NewMilvusStore(ctx, cfg.Milvus.Address, logger.New("milvus"))
		if err != nil {
			return nil, err
		}
		store = milvusStore
		closeStore = milvusStore.Close
	}

	provider, err := responder.NewProvider(ctx, cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		closeStore()
		return nil, err
	}

	orch := pipeline.NewOrchestrator(
		splitter,
		embedder,
		store,
		language.NewDetector(cfg.Language.Default, cfg.Language.Supported),
		responder.New(provider, logger.New("responder")),
		pipeline.Options{
			TopK:            cfg.Retrieval.TopK,
			DefaultLanguage: cfg.Language.Default,
		},
		logger.New("pipeline"),
	)

	return &app{
		cfg:   cfg,
		log:   log,
		orch:  orch,
		state: session.NewState(),
		close: closeStore,
	}, nil
}
