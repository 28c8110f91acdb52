package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
	"docqa/internal/rag/session"
	"docqa/internal/ragerr"
	"docqa/pkg/logger"
)

const (
	// embedBatchSize is the number of chunk texts sent per provider call.
	embedBatchSize = 16
	// embedWorkers bounds the concurrent embedding calls during ingestion.
	embedWorkers = 4
)

// Options tunes the orchestrator. Zero values fall back to the
// built-in defaults.
type Options struct {
	TopK            int    // retrieved matches per query, default 3
	DefaultLanguage string // prompt-template fallback, default "en"
}

// Orchestrator wires the splitter, embedder, vector store, language
// detector and responder into the ingestion and query-answering flows.
// It exclusively owns the content-addressed text cache, the
// per-document ingestion locks and the per-session query locks.
type Orchestrator struct {
	log       *logger.Logger
	splitter  interfaces.Splitter
	embedder  interfaces.EmbeddingModel
	store     interfaces.VectorStore
	detector  interfaces.Detector
	responder interfaces.ResponseGenerator
	opts      Options

	mu        sync.Mutex
	textCache map[string]string      // content hash -> extracted text
	ingesting map[string]*sync.Mutex // content hash -> ingest lock
	answering map[string]*sync.Mutex // session id -> answer lock
}

// NewOrchestrator creates an Orchestrator over the given components.
func NewOrchestrator(
	splitter interfaces.Splitter,
	embedder interfaces.EmbeddingModel,
	store interfaces.VectorStore,
	detector interfaces.Detector,
	responder interfaces.ResponseGenerator,
	opts Options,
	log *logger.Logger,
) *Orchestrator {
	if opts.TopK <= 0 {
		opts.TopK = 3
	}
	if opts.DefaultLanguage == "" {
		opts.DefaultLanguage = "en"
	}
	return &Orchestrator{
		log:       log,
		splitter:  splitter,
		embedder:  embedder,
		store:     store,
		detector:  detector,
		responder: responder,
		opts:      opts,
		textCache: make(map[string]string),
		ingesting: make(map[string]*sync.Mutex),
		answering: make(map[string]*sync.Mutex),
	}
}

// IngestReport describes the outcome of one ingestion.
type IngestReport struct {
	ContentHash      string
	DisplayName      string
	ChunkCount       int
	Collection       string
	AlreadyProcessed bool
}

// Ingest runs the document-ingestion flow: hash, extract, split, embed,
// upsert, record. Re-ingesting byte-identical content within a session
// is a no-op; re-ingesting across sessions overwrites the same record
// ids, so the final index state is unchanged either way. A failure
// aborts this document only and leaves prior state untouched.
func (o *Orchestrator) Ingest(ctx context.Context, state *session.State, data []byte, displayName string, loader interfaces.Loader) (*IngestReport, error) {
	sum := sha256.Sum256(data)
	contentHash := hex.EncodeToString(sum[:])

	// Concurrent ingestion of the same bytes must be serialized to keep
	// the idempotence invariant; different documents proceed in parallel.
	lock := o.ingestLock(contentHash)
	lock.Lock()
	defer lock.Unlock()

	if rec, ok := state.ProcessedDoc(contentHash); ok {
		o.log.Info(fmt.Sprintf("Document %s already processed in this session, skipping", rec.DisplayName))
		return &IngestReport{
			ContentHash:      contentHash,
			DisplayName:      rec.DisplayName,
			ChunkCount:       rec.ChunkCount,
			Collection:       vectorCollectionName(rec.Dimensions),
			AlreadyProcessed: true,
		}, nil
	}

	text, err := o.extractText(ctx, contentHash, data, loader)
	if err != nil {
		return nil, err
	}

	chunks := o.splitter.Split(text)
	if len(chunks) == 0 {
		return nil, ragerr.Newf(ragerr.CodeExtraction, "document %s has no extractable text", displayName)
	}
	o.log.Info(fmt.Sprintf("Split %s into %d chunks", displayName, len(chunks)))

	vectors, err := o.embedChunks(ctx, chunks)
	if err != nil {
		return nil, err
	}

	collection, err := o.store.EnsureCollection(ctx, o.embedder.Dimensions())
	if err != nil {
		return nil, err
	}

	now := time.Now()
	records := make([]schema.IndexRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = schema.IndexRecord{
			RecordID: schema.RecordID(displayName, i),
			Vector:   vectors[i],
			Metadata: map[string]interface{}{
				schema.MetadataKeyText:       chunk.Text,
				schema.MetadataKeySource:     displayName,
				schema.MetadataKeyTimestamp:  now.Unix(),
				schema.MetadataKeyDimensions: o.embedder.Dimensions(),
			},
		}
	}

	if err := o.store.Upsert(ctx, collection, records); err != nil {
		return nil, err
	}

	state.MarkProcessed(contentHash, schema.ProcessedDocument{
		DisplayName: displayName,
		ChunkCount:  len(chunks),
		ProcessedAt: now,
		Dimensions:  o.embedder.Dimensions(),
	})

	o.log.WithPayload(map[string]interface{}{
		"document":    displayName,
		"chunk_count": len(chunks),
		"collection":  collection,
	}).Info("Finished ingesting document")

	return &IngestReport{
		ContentHash: contentHash,
		DisplayName: displayName,
		ChunkCount:  len(chunks),
		Collection:  collection,
	}, nil
}

// Answer is the result of one query-answering flow.
type Answer struct {
	Text     string
	Language string
	Context  string
	Matches  []schema.Match
}

// Answer detects the query language, retrieves the most similar chunks,
// and asks the responder for an answer in that language. Retrieval
// failures surface as typed errors; generation failures surface as an
// error-marked answer text.
func (o *Orchestrator) Answer(ctx context.Context, state *session.State, query string) (*Answer, error) {
	// Queries on one session are serialized so the user turn and its
	// assistant turn land adjacently in the log; different sessions
	// proceed in parallel.
	lock := o.answerLock(state.ID())
	lock.Lock()
	defer lock.Unlock()

	lang := o.detector.Detect(query)
	o.log.Debug(fmt.Sprintf("Detected query language: %s", lang))

	queryVectors, err := o.embedder.Embed(ctx, []string{query})
	if err != nil || len(queryVectors) == 0 {
		if err == nil {
			err = ragerr.New(ragerr.CodeProvider, "embedder returned no vector for query")
		}
		return nil, ragerr.Wrap(err, ragerr.CodeProvider, "failed to embed query")
	}

	collection, err := o.store.EnsureCollection(ctx, o.embedder.Dimensions())
	if err != nil {
		return nil, err
	}

	matches, err := o.store.Query(ctx, collection, queryVectors[0], o.opts.TopK)
	if err != nil {
		return nil, err
	}

	contextTexts := make([]string, 0, len(matches))
	for _, m := range matches {
		contextTexts = append(contextTexts, m.Record.Text())
	}
	contextBlock := strings.Join(contextTexts, "\n")

	prompt := buildPrompt(systemPrompt(lang, o.opts.DefaultLanguage), contextBlock, query)
	answer := o.responder.GenerateResponse(ctx, prompt, state.ID())

	state.RecordTurn(schema.RoleUser, query, lang)
	state.RecordTurn(schema.RoleAssistant, answer, "")

	return &Answer{
		Text:     answer,
		Language: lang,
		Context:  contextBlock,
		Matches:  matches,
	}, nil
}

// ClearMemory discards the session's dialogue and bookkeeping; the next
// question starts a fresh conversation.
func (o *Orchestrator) ClearMemory(state *session.State) {
	o.responder.Clear(state.ID())
	state.Reset()
	o.log.Info("Cleared conversation memory")
}

// extractText returns the document text, extracting at most once per
// content hash. The cache is unbounded; a single user's document set
// stays small.
func (o *Orchestrator) extractText(ctx context.Context, contentHash string, data []byte, loader interfaces.Loader) (string, error) {
	o.mu.Lock()
	cached, ok := o.textCache[contentHash]
	o.mu.Unlock()
	if ok {
		return cached, nil
	}

	text, err := loader.Extract(ctx, data)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ragerr.New(ragerr.CodeExtraction, "document has no extractable text")
	}

	o.mu.Lock()
	o.textCache[contentHash] = text
	o.mu.Unlock()
	return text, nil
}

// embedChunks embeds all chunk texts, dispatching fixed-size batches
// across a bounded worker group. Chunks are independent, so batches may
// run in any order; results are re-joined by index so vectors[i] always
// corresponds to chunks[i].
func (o *Orchestrator) embedChunks(ctx context.Context, chunks []schema.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors := make([][]float32, len(texts))
	eg, gCtx := errgroup.WithContext(ctx)
	eg.SetLimit(embedWorkers)

	for start := 0; start < len(texts); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		eg.Go(func() error {
			batch, err := o.embedder.Embed(gCtx, texts[start:end])
			if err != nil {
				return err
			}
			if len(batch) != end-start {
				return ragerr.Newf(ragerr.CodeProvider,
					"embedder returned %d vectors for %d texts", len(batch), end-start)
			}
			copy(vectors[start:end], batch)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return vectors, nil
}

// ingestLock returns the mutex guarding ingestion of one content hash.
func (o *Orchestrator) ingestLock(contentHash string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()

	lock, ok := o.ingesting[contentHash]
	if !ok {
		lock = &sync.Mutex{}
		o.ingesting[contentHash] = lock
	}
	return lock
}

// answerLock returns the mutex guarding the query flow of one session.
func (o *Orchestrator) answerLock(sessionID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()

	lock, ok := o.answering[sessionID]
	if !ok {
		lock = &sync.Mutex{}
		o.answering[sessionID] = lock
	}
	return lock
}

// vectorCollectionName mirrors the store's naming convention for
// reporting without a store round-trip.
func vectorCollectionName(dims int) string {
	return fmt.Sprintf("rag-documents-%dd", dims)
}
