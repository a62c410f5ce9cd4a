package answerit

import (
	"context"
	"testing"

	"github.com/poiesic/answerit/ai"
	"github.com/poiesic/answerit/ai/mock"
	"github.com/poiesic/answerit/core"
	"github.com/poiesic/answerit/eval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, provider ai.AIProvider) *Engine {
	t.Helper()
	e, err := NewEngine("", WithInMemory(), WithProvider(provider))
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func seedCorpus(t *testing.T, e *Engine) {
	t.Helper()
	p, err := e.NewIngestionPipeline()
	require.NoError(t, err)
	defer p.Release()

	_, err = p.Ingest(context.Background(), []*core.Chunk{
		{DocID: "billing.md", SectionTitle: "Invoices", Text: "Billing invoices are issued monthly and cover every workspace seat."},
		{DocID: "billing.md", SectionTitle: "Refunds", Text: "Refunds take five business days to process."},
		{DocID: "sso.md", SectionTitle: "SSO", Text: "Enterprise single sign-on requires a verified domain."},
	})
	require.NoError(t, err)
	p.Wait()
}

func TestNewEngine(t *testing.T) {
	e := newTestEngine(t, mock.NewMockProvider())

	stats, err := e.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Chunks)
	assert.Zero(t, stats.IndexedRows)
	assert.Zero(t, stats.LoggedQueries)
}

func TestEngine_Ask(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects empty query", func(t *testing.T) {
		e := newTestEngine(t, mock.NewMockProvider())
		_, err := e.Ask(ctx, "   ", nil)
		assert.ErrorIs(t, err, core.ErrEmptyQuery)
	})

	t.Run("rejects invalid history roles", func(t *testing.T) {
		e := newTestEngine(t, mock.NewMockProvider())
		_, err := e.Ask(ctx, "question", []core.Message{{Role: "narrator", Text: "hm"}})
		assert.ErrorIs(t, err, core.ErrInvalidMessage)
	})

	t.Run("answers end to end", func(t *testing.T) {
		e := newTestEngine(t, mock.NewMockProvider())
		seedCorpus(t, e)

		response, err := e.Ask(ctx, "How does billing work?", nil)
		require.NoError(t, err)

		assert.NotEmpty(t, response.Answer)
		assert.NotEmpty(t, response.Passages)
		assert.False(t, response.Cached)
		assert.Equal(t, core.ClassificationSimple, response.Route.Classification)
		assert.NotContains(t, response.Flags, eval.FlagNoContext)

		stats, err := e.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.Chunks)
		assert.Equal(t, 3, stats.IndexedRows)
		assert.Equal(t, 1, stats.LoggedQueries)
		assert.Equal(t, 1, stats.Cache.Size)
	})

	t.Run("repeat queries hit the cache", func(t *testing.T) {
		e := newTestEngine(t, mock.NewMockProvider())
		seedCorpus(t, e)

		first, err := e.Ask(ctx, "How does billing work?", nil)
		require.NoError(t, err)
		require.False(t, first.Cached)

		// Normalized form collides with the original query.
		second, err := e.Ask(ctx, "how does billing work", nil)
		require.NoError(t, err)
		assert.True(t, second.Cached)
		assert.Equal(t, first.Answer, second.Answer)

		stats, err := e.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.LoggedQueries, "cached answers are still logged")
	})

	t.Run("complex queries route to the complex model", func(t *testing.T) {
		provider := mock.NewMockProvider().(*mock.MockProvider)
		var usedModel string
		provider.GetMockGenerator().GenerateFunc = func(ctx context.Context, req ai.GenerationRequest) (*ai.GenerationResult, error) {
			usedModel = req.Model
			return &ai.GenerationResult{Text: "explained [1]"}, nil
		}

		e := newTestEngine(t, provider)
		seedCorpus(t, e)

		response, err := e.Ask(ctx, "Why does the export fail and how do I fix the broken webhook?", nil)
		require.NoError(t, err)
		assert.Equal(t, core.ClassificationComplex, response.Route.Classification)
		assert.Equal(t, response.Route.Model, usedModel)
	})

	t.Run("empty corpus flags missing context", func(t *testing.T) {
		e := newTestEngine(t, mock.NewMockProvider())

		response, err := e.Ask(ctx, "anything at all", nil)
		require.NoError(t, err)
		assert.Contains(t, response.Flags, eval.FlagNoContext)
		assert.Zero(t, response.Confidence)
	})
}

func TestEngine_RecentQueries(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, mock.NewMockProvider())
	seedCorpus(t, e)

	_, err := e.Ask(ctx, "How does billing work?", nil)
	require.NoError(t, err)
	_, err = e.Ask(ctx, "What about refunds?", nil)
	require.NoError(t, err)

	entries, err := e.RecentQueries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "What about refunds?", entries[0].Query)
	assert.Equal(t, "How does billing work?", entries[1].Query)
}

func TestEngine_Route(t *testing.T) {
	e := newTestEngine(t, mock.NewMockProvider())

	simple := e.Route("What is Clearpath?")
	assert.Equal(t, core.ClassificationSimple, simple.Classification)

	complexDecision := e.Route("Why does my login fail with an error?")
	assert.Equal(t, core.ClassificationComplex, complexDecision.Classification)
}

func TestEngine_ClearCache(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, mock.NewMockProvider())
	seedCorpus(t, e)

	_, err := e.Ask(ctx, "How does billing work?", nil)
	require.NoError(t, err)

	e.ClearCache()

	response, err := e.Ask(ctx, "How does billing work?", nil)
	require.NoError(t, err)
	assert.False(t, response.Cached)
}
