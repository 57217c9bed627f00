package generation

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnloop/learnloop-api/internal/domain"
)

// stubCompleter returns canned completions in sequence and records how many
// times it was called.
type stubCompleter struct {
	responses []string
	err       error
	calls     int
}

func (c *stubCompleter) Complete(_ context.Context, _ string, _ QualityHint) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	if len(c.responses) == 0 {
		return "", errors.New("no canned response")
	}
	response := c.responses[0]
	if len(c.responses) > 1 {
		c.responses = c.responses[1:]
	}
	return response, nil
}

const validRoadmapJSON = `{
	"title": "Data Engineer Roadmap",
	"description": "A plan",
	"stages": [
		{
			"id": "foundations",
			"label": "Foundations",
			"summary": "Start here",
			"items": [
				{"id": "sql", "label": "Learn SQL", "details": "Joins and aggregates"},
				{"id": "python", "label": "Learn Python", "details": "Scripting", "depends_on": ["sql"]}
			]
		}
	]
}`

func newTestService(completer Completer) *Service {
	return NewService(nil, completer, NewArtifactCache(time.Hour))
}

func TestGenerateRoadmapParsesProviderOutput(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{responses: []string{"```json\n" + validRoadmapJSON + "\n```"}}
	svc := newTestService(completer)

	doc := svc.GenerateRoadmap(context.Background(), "Data Engineer")

	require.NotNil(t, doc)
	assert.Equal(t, "Data Engineer Roadmap", doc.Title)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "foundations", doc.Sections[0].ID)
	require.Len(t, doc.Sections[0].Items, 2)
	assert.Equal(t, []string{"sql"}, doc.Sections[0].Items[1].DependsOn)
}

func TestGenerateRoadmapToleratesBracketsInCommentary(t *testing.T) {
	t.Parallel()

	// Commentary with a citation-style bracket before the document
	completer := &stubCompleter{responses: []string{
		"Sure! See [1] below for the roadmap:\n" + validRoadmapJSON,
	}}
	svc := newTestService(completer)

	doc := svc.GenerateRoadmap(context.Background(), "Data Engineer")

	require.NotNil(t, doc)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "foundations", doc.Sections[0].ID, "the provider document should win, not the fallback")
	assert.Equal(t, 1, svc.cache.Len())
}

func TestGenerateRoadmapCachesResult(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{responses: []string{validRoadmapJSON}}
	svc := newTestService(completer)

	first := svc.GenerateRoadmap(context.Background(), "Data Engineer")
	second := svc.GenerateRoadmap(context.Background(), "Data Engineer")

	assert.Equal(t, 1, completer.calls, "second request should be served from cache")
	assert.Same(t, first, second)
}

func TestGenerateRoadmapNormalizesSubjectForCaching(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{responses: []string{validRoadmapJSON}}
	svc := newTestService(completer)

	svc.GenerateRoadmap(context.Background(), "Data Engineer")
	svc.GenerateRoadmap(context.Background(), "  data engineer ")

	assert.Equal(t, 1, completer.calls, "case and whitespace variants should share one cache entry")
	assert.Equal(t, 1, svc.cache.Len())
}

func TestGenerateRoadmapFallsBackOnProviderFailure(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{err: errors.New("provider down")}
	svc := newTestService(completer)

	doc := svc.GenerateRoadmap(context.Background(), "Data Engineer")

	require.NotNil(t, doc)
	assert.Equal(t, "Data Engineer Roadmap", doc.Title)
	assert.NotEmpty(t, doc.Sections, "fallback document should have content")
	assert.Equal(t, 0, svc.cache.Len(), "fallback documents must not be cached")
}

func TestGenerateRoadmapMalformedOutputNotCached(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{responses: []string{
		"I'm sorry, I cannot produce JSON today.",
		validRoadmapJSON,
	}}
	svc := newTestService(completer)

	doc := svc.GenerateRoadmap(context.Background(), "Data Engineer")
	require.NotNil(t, doc)
	assert.Equal(t, 0, svc.cache.Len(), "failed generation must not poison the cache")

	// The next request retries generation instead of serving the fallback
	doc = svc.GenerateRoadmap(context.Background(), "Data Engineer")
	require.NotNil(t, doc)
	assert.Equal(t, 2, completer.calls)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "foundations", doc.Sections[0].ID)
}

func TestGenerateRoadmapContractViolationFallsBack(t *testing.T) {
	t.Parallel()

	// Valid JSON, wrong shape: no stages array
	completer := &stubCompleter{responses: []string{`{"title": "Data Engineer Roadmap"}`}}
	svc := newTestService(completer)

	doc := svc.GenerateRoadmap(context.Background(), "Data Engineer")

	require.NotNil(t, doc)
	assert.Equal(t, "Data Engineer Roadmap", doc.Title)
	assert.Equal(t, 0, svc.cache.Len())
}

func TestGenerateCourseUsesModuleKeys(t *testing.T) {
	t.Parallel()

	courseJSON := `{
		"title": "Go Course",
		"modules": [
			{
				"id": "m1",
				"label": "Basics",
				"lessons": [
					{"id": "l1", "label": "Syntax", "details": "Variables and types"}
				]
			}
		]
	}`
	completer := &stubCompleter{responses: []string{courseJSON}}
	svc := newTestService(completer)

	doc := svc.GenerateCourse(context.Background(), "Go")

	require.NotNil(t, doc)
	assert.Equal(t, "Go Course", doc.Title)
	require.Len(t, doc.Sections, 1)
	require.Len(t, doc.Sections[0].Items, 1)
	assert.Equal(t, "l1", doc.Sections[0].Items[0].ID)
}

func TestGenerateCourseFallsBack(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{err: errors.New("provider down")}
	svc := newTestService(completer)

	doc := svc.GenerateCourse(context.Background(), "Go")

	require.NotNil(t, doc)
	assert.Equal(t, "Go Course", doc.Title)
	assert.NotEmpty(t, doc.Sections)
}

func TestSummarizeReturnsValidatedObject(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{responses: []string{
		`{"summary": "Goroutines are lightweight threads.", "key_points": ["cheap", "multiplexed"]}`,
	}}
	svc := newTestService(completer)

	payload := svc.Summarize(context.Background(), "goroutine chapter text")

	var result map[string]any
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.Equal(t, "Goroutines are lightweight threads.", result["summary"])
}

func TestSummarizeEmptyObjectOnFailure(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{err: errors.New("provider down")}
	svc := newTestService(completer)

	payload := svc.Summarize(context.Background(), "some text")
	assert.JSONEq(t, `{}`, string(payload))
}

func TestExplainEmptyObjectOnMalformedOutput(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{responses: []string{`{"wrong_field": true}`}}
	svc := newTestService(completer)

	payload := svc.Explain(context.Background(), "interfaces")
	assert.JSONEq(t, `{}`, string(payload))
}

func TestQuizReturnsValidatedArray(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{responses: []string{
		`[{"question": "What is a channel?", "options": ["a", "b", "c", "d"], "answer": "a"}]`,
	}}
	svc := newTestService(completer)

	payload := svc.Quiz(context.Background(), "channels chapter")

	var questions []map[string]any
	require.NoError(t, json.Unmarshal(payload, &questions))
	require.Len(t, questions, 1)
	assert.Equal(t, "What is a channel?", questions[0]["question"])
}

func TestQuizEmptyArrayOnFailure(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{err: errors.New("provider down")}
	svc := newTestService(completer)

	payload := svc.Quiz(context.Background(), "channels chapter")
	assert.JSONEq(t, `[]`, string(payload))
}

func TestFlashcardsValidatesElementFields(t *testing.T) {
	t.Parallel()

	// Second element is missing "back", so the whole batch is rejected
	completer := &stubCompleter{responses: []string{
		`[{"front": "q1", "back": "a1"}, {"front": "q2"}]`,
	}}
	svc := newTestService(completer)

	payload := svc.Flashcards(context.Background(), "maps chapter")
	assert.JSONEq(t, `[]`, string(payload))
	assert.Equal(t, 0, svc.cache.Len())
}

func TestStudyToolResultsAreCached(t *testing.T) {
	t.Parallel()

	completer := &stubCompleter{responses: []string{
		`[{"front": "q1", "back": "a1"}]`,
	}}
	svc := newTestService(completer)

	first := svc.Flashcards(context.Background(), "maps chapter")
	second := svc.Flashcards(context.Background(), "maps chapter")

	assert.Equal(t, 1, completer.calls)
	assert.JSONEq(t, string(first), string(second))
}

// blockingCompleter holds every call open until released so concurrent
// requests pile onto the same in-flight generation.
type blockingCompleter struct {
	started  chan struct{}
	release  chan struct{}
	response string

	mu    sync.Mutex
	calls int
}

func (c *blockingCompleter) Complete(_ context.Context, _ string, _ QualityHint) (string, error) {
	c.mu.Lock()
	c.calls++
	first := c.calls == 1
	c.mu.Unlock()

	if first {
		close(c.started)
	}
	<-c.release
	return c.response, nil
}

func (c *blockingCompleter) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestGenerateRoadmapCollapsesConcurrentRequests(t *testing.T) {
	t.Parallel()

	completer := &blockingCompleter{
		started:  make(chan struct{}),
		release:  make(chan struct{}),
		response: validRoadmapJSON,
	}
	svc := newTestService(completer)

	const workers = 16
	docs := make([]*domain.CurriculumDocument, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			docs[i] = svc.GenerateRoadmap(context.Background(), "Data Engineer")
		}(i)
	}

	// Hold the first provider call open until the remaining workers have
	// had a chance to join the in-flight generation
	<-completer.started
	time.Sleep(50 * time.Millisecond)
	close(completer.release)
	wg.Wait()

	assert.Equal(t, 1, completer.callCount(), "one subject should trigger exactly one provider call")
	for i := 1; i < workers; i++ {
		assert.Same(t, docs[0], docs[i], "every caller should receive the shared document")
	}
	assert.Equal(t, 1, svc.cache.Len())
}

// ctxEchoCompleter fails when the context it is handed has been cancelled.
type ctxEchoCompleter struct {
	response string
}

func (c *ctxEchoCompleter) Complete(ctx context.Context, _ string, _ QualityHint) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.response, nil
}

func TestGenerateRoadmapSurvivesCallerCancellation(t *testing.T) {
	t.Parallel()

	completer := &ctxEchoCompleter{response: validRoadmapJSON}
	svc := newTestService(completer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The generation runs detached from the caller's cancellation, so even
	// a cancelled leader produces (and caches) the real document
	doc := svc.GenerateRoadmap(ctx, "Data Engineer")

	require.NotNil(t, doc)
	require.Len(t, doc.Sections, 1)
	assert.Equal(t, "foundations", doc.Sections[0].ID)
	assert.Equal(t, 1, svc.cache.Len())
}

func TestNewServicePanicsOnNilDependencies(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		NewService(nil, nil, NewArtifactCache(time.Hour))
	})
	assert.Panics(t, func() {
		NewService(nil, &stubCompleter{}, nil)
	})
}
