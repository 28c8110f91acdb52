package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/rag/embeddings"
	"docqa/internal/rag/language"
	"docqa/internal/rag/loaders"
	"docqa/internal/rag/schema"
	"docqa/internal/rag/session"
	"docqa/internal/rag/splitters"
	"docqa/internal/rag/storages/vectorstore"
	"docqa/internal/ragerr"
	"docqa/pkg/logger"
)

// echoResponder returns a canned answer and records the prompts it saw,
// keyed by session id.
type echoResponder struct {
	prompts map[string][]string
	reply   string
}

func newEchoResponder() *echoResponder {
	return &echoResponder{prompts: make(map[string][]string), reply: "the document says so"}
}

func (r *echoResponder) GenerateResponse(ctx context.Context, prompt, sessionID string) string {
	r.prompts[sessionID] = append(r.prompts[sessionID], prompt)
	return r.reply
}

func (r *echoResponder) Clear(sessionID string) {
	delete(r.prompts, sessionID)
}

// failingEmbedder simulates a provider outage.
type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, ragerr.New(ragerr.CodeProvider, "embedding service unavailable")
}

func (failingEmbedder) Dimensions() int { return 8 }

type fixture struct {
	orch      *Orchestrator
	store     *vectorstore.MemoryStore
	responder *echoResponder
	state     *session.State
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.Init(logrus.ErrorLevel)

	splitter, err := splitters.NewCharacterSplitter(1000, 200)
	require.NoError(t, err)

	store := vectorstore.NewMemoryStore()
	resp := newEchoResponder()
	orch := NewOrchestrator(
		splitter,
		embeddings.NewHashModel(64),
		store,
		language.NewDetector(language.DefaultLanguage, nil),
		resp,
		Options{TopK: 3},
		logger.New("pipeline-test"),
	)

	return &fixture{orch: orch, store: store, responder: resp, state: session.NewState()}
}

// threeChunkText builds a 2400-character document whose three chunks
// carry disjoint vocabulary, so a query can be steered to any chunk.
func threeChunkText() (string, []string) {
	words := []string{
		strings.TrimSpace(strings.Repeat("alpha aardvark astronomy ", 40)),
		strings.TrimSpace(strings.Repeat("bravo banana biology ", 40)),
		strings.TrimSpace(strings.Repeat("charlie cactus chemistry ", 40)),
	}
	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(fmt.Sprintf("%-800s", w))
	}
	return sb.String(), words
}

func TestIngestAndAnswerEndToEnd(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	text, _ := threeChunkText()
	report, err := f.orch.Ingest(ctx, f.state, []byte(text), "doc.pdf", loaders.NewTxtLoader())
	require.NoError(t, err)

	assert.False(t, report.AlreadyProcessed)
	assert.Equal(t, 3, report.ChunkCount)
	assert.Equal(t, "rag-documents-64d", report.Collection)
	assert.Equal(t, 3, f.store.Count(report.Collection))

	answer, err := f.orch.Answer(ctx, f.state, "tell me about bravo banana biology")
	require.NoError(t, err)

	assert.Equal(t, "en", answer.Language)
	assert.Equal(t, "the document says so", answer.Text)
	require.NotEmpty(t, answer.Matches)

	// The nearest match is the middle chunk, and its text leads the
	// prompt context.
	assert.Equal(t, "doc.pdf_1", answer.Matches[0].Record.RecordID)
	assert.True(t, strings.HasPrefix(answer.Context, answer.Matches[0].Record.Text()))

	turns := f.state.Turns()
	require.Len(t, turns, 2)
	assert.Equal(t, schema.RoleUser, turns[0].Role)
	assert.Equal(t, "en", turns[0].DetectedLanguage)
	assert.Equal(t, schema.RoleAssistant, turns[1].Role)
}

func TestIngestIdempotentWithinSession(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	text, _ := threeChunkText()
	first, err := f.orch.Ingest(ctx, f.state, []byte(text), "doc.pdf", loaders.NewTxtLoader())
	require.NoError(t, err)

	second, err := f.orch.Ingest(ctx, f.state, []byte(text), "doc.pdf", loaders.NewTxtLoader())
	require.NoError(t, err)

	assert.True(t, second.AlreadyProcessed)
	assert.Equal(t, first.ContentHash, second.ContentHash)
	assert.Equal(t, 3, f.store.Count(first.Collection))
}

func TestIngestIdempotentAcrossSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	text, _ := threeChunkText()
	report, err := f.orch.Ingest(ctx, f.state, []byte(text), "doc.pdf", loaders.NewTxtLoader())
	require.NoError(t, err)

	// A fresh session re-ingests, but deterministic record ids make the
	// upsert overwrite rather than duplicate.
	other := session.NewState()
	again, err := f.orch.Ingest(ctx, other, []byte(text), "doc.pdf", loaders.NewTxtLoader())
	require.NoError(t, err)

	assert.False(t, again.AlreadyProcessed)
	assert.Equal(t, 3, f.store.Count(report.Collection))
}

func TestIngestEmptyDocumentFails(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.orch.Ingest(ctx, f.state, []byte("   \n"), "empty.txt", loaders.NewTxtLoader())
	require.Error(t, err)
	assert.Equal(t, ragerr.CodeExtraction, ragerr.GetCode(err))
	assert.Empty(t, f.state.ProcessedDocs())
}

func TestIngestProviderFailureLeavesStateUntouched(t *testing.T) {
	ctx := context.Background()
	logger.Init(logrus.ErrorLevel)

	splitter, err := splitters.NewCharacterSplitter(1000, 200)
	require.NoError(t, err)

	store := vectorstore.NewMemoryStore()
	orch := NewOrchestrator(
		splitter,
		failingEmbedder{},
		store,
		language.NewDetector(language.DefaultLanguage, nil),
		newEchoResponder(),
		Options{},
		logger.New("pipeline-test"),
	)

	state := session.NewState()
	text, _ := threeChunkText()
	_, err = orch.Ingest(ctx, state, []byte(text), "doc.pdf", loaders.NewTxtLoader())

	require.Error(t, err)
	assert.Equal(t, ragerr.CodeProvider, ragerr.GetCode(err))
	assert.Empty(t, state.ProcessedDocs())
	assert.Equal(t, 0, store.Count("rag-documents-8d"))
}

// slowResponder tracks how many generation calls run at once.
type slowResponder struct {
	mu       sync.Mutex
	inFlight int
	maxSeen  int
}

func (r *slowResponder) GenerateResponse(ctx context.Context, prompt, sessionID string) string {
	r.mu.Lock()
	r.inFlight++
	if r.inFlight > r.maxSeen {
		r.maxSeen = r.inFlight
	}
	r.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	r.mu.Lock()
	r.inFlight--
	r.mu.Unlock()
	return "ok"
}

func (r *slowResponder) Clear(sessionID string) {}

func TestAnswerSerializedPerSession(t *testing.T) {
	ctx := context.Background()
	logger.Init(logrus.ErrorLevel)

	splitter, err := splitters.NewCharacterSplitter(1000, 200)
	require.NoError(t, err)

	resp := &slowResponder{}
	orch := NewOrchestrator(
		splitter,
		embeddings.NewHashModel(64),
		vectorstore.NewMemoryStore(),
		language.NewDetector(language.DefaultLanguage, nil),
		resp,
		Options{},
		logger.New("pipeline-test"),
	)
	state := session.NewState()

	const queries = 4
	var wg sync.WaitGroup
	for i := 0; i < queries; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := orch.Answer(ctx, state, fmt.Sprintf("question %d", n))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	// One session never runs two generations at once, and every user
	// turn is immediately followed by its assistant turn.
	assert.Equal(t, 1, resp.maxSeen)

	turns := state.Turns()
	require.Len(t, turns, 2*queries)
	for i := 0; i < len(turns); i += 2 {
		assert.Equal(t, schema.RoleUser, turns[i].Role)
		assert.Equal(t, schema.RoleAssistant, turns[i+1].Role)
	}
}

func TestAnswerWithEmptyIndex(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	answer, err := f.orch.Answer(ctx, f.state, "anything indexed yet?")
	require.NoError(t, err)

	assert.Empty(t, answer.Matches)
	assert.Empty(t, answer.Context)
	assert.NotEmpty(t, answer.Text)
}

func TestAnswerUsesLanguageTemplate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	text, _ := threeChunkText()
	_, err := f.orch.Ingest(ctx, f.state, []byte(text), "doc.pdf", loaders.NewTxtLoader())
	require.NoError(t, err)

	answer, err := f.orch.Answer(ctx, f.state, "¿Cuál es la conclusión principal de este documento?")
	require.NoError(t, err)
	assert.Equal(t, "es", answer.Language)

	prompts := f.responder.prompts[f.state.ID()]
	require.Len(t, prompts, 1)
	assert.True(t, strings.HasPrefix(prompts[0], systemPrompts["es"]))
	assert.Contains(t, prompts[0], "Question: ¿Cuál es la conclusión principal de este documento?")
}

func TestClearMemory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	text, _ := threeChunkText()
	_, err := f.orch.Ingest(ctx, f.state, []byte(text), "doc.pdf", loaders.NewTxtLoader())
	require.NoError(t, err)

	_, err = f.orch.Answer(ctx, f.state, "what is this about?")
	require.NoError(t, err)
	require.NotEmpty(t, f.state.Turns())

	f.orch.ClearMemory(f.state)

	assert.Empty(t, f.state.Turns())
	assert.Empty(t, f.state.ProcessedDocs())
	assert.Empty(t, f.responder.prompts[f.state.ID()])
}

func TestBuildPromptComposition(t *testing.T) {
	prompt := buildPrompt("TEMPLATE", "CONTEXT", "QUERY")
	assert.Equal(t, "TEMPLATE\n\nContext:\nCONTEXT\n\nQuestion: QUERY", prompt)
}

func TestSystemPromptDefensiveFallback(t *testing.T) {
	assert.Equal(t, systemPrompts["en"], systemPrompt("xx", "en"))
	assert.Equal(t, systemPrompts["en"], systemPrompt("xx", "yy"))
	assert.Equal(t, systemPrompts["ja"], systemPrompt("ja", "en"))
}
