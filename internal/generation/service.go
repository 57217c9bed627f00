package generation

import (
	"context"
	"encoding/json"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/learnloop/learnloop-api/internal/domain"
)

// ContentKind identifies what kind of artifact a generation request produces.
// The kind is part of the cache fingerprint, so e.g. a roadmap and a course
// for the same subject never collide.
type ContentKind string

const (
	KindRoadmap    ContentKind = "roadmap"
	KindCourse     ContentKind = "course"
	KindSummary    ContentKind = "summary"
	KindQuiz       ContentKind = "quiz"
	KindFlashcards ContentKind = "flashcards"
	KindExplain    ContentKind = "explain"
)

// Per-kind required-shape contracts for provider output.
var (
	roadmapContract = Contract{Required: []string{"title"}, Arrays: []string{"stages"}}
	courseContract  = Contract{Required: []string{"title"}, Arrays: []string{"modules"}}
	summaryContract = Contract{Required: []string{"summary"}, Arrays: []string{"key_points"}}
	explainContract = Contract{Required: []string{"explanation"}}

	quizElementFields      = []string{"question", "options", "answer"}
	flashcardElementFields = []string{"front", "back"}
)

// Empty-result fallbacks for the study tools.
var (
	emptyObject = json.RawMessage(`{}`)
	emptyArray  = json.RawMessage(`[]`)
)

// Service is the facade request handlers use for AI content generation.
// Its methods never fail: any provider or parse error degrades to a
// deterministic fallback, so generation endpoints can always answer 200
// with either a real or a template artifact.
//
// Concurrent requests for the same normalized subject are de-duplicated
// with a singleflight group, so a cache miss triggers at most one provider
// call per key at a time.
type Service struct {
	logger    *slog.Logger
	completer Completer
	cache     *ArtifactCache
	flight    singleflight.Group
}

// NewService creates a generation service over the given completion source
// and cache. The cache must not be nil.
// If logger is nil, a default logger will be used.
func NewService(logger *slog.Logger, completer Completer, cache *ArtifactCache) *Service {
	if completer == nil {
		panic("completer cannot be nil")
	}
	if cache == nil {
		panic("cache cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		logger:    logger.With(slog.String("component", "generation_service")),
		completer: completer,
		cache:     cache,
	}
}

// GenerateRoadmap produces a learning roadmap for the given role. On any
// failure it returns the hard-coded fallback roadmap instead of an error.
func (s *Service) GenerateRoadmap(ctx context.Context, role string) *domain.CurriculumDocument {
	return s.generateDocument(ctx, KindRoadmap, role, "stages", "items", roadmapContract, fallbackRoadmap)
}

// GenerateCourse produces a structured course for the given topic. On any
// failure it returns the hard-coded fallback course instead of an error.
func (s *Service) GenerateCourse(ctx context.Context, topic string) *domain.CurriculumDocument {
	return s.generateDocument(ctx, KindCourse, topic, "modules", "lessons", courseContract, fallbackCourse)
}

// Summarize produces a summary object for the given material, or an empty
// object on failure.
func (s *Service) Summarize(ctx context.Context, content string) json.RawMessage {
	return s.studyObject(ctx, KindSummary, content, summaryContract)
}

// Explain produces an explanation object for the given concept, or an empty
// object on failure.
func (s *Service) Explain(ctx context.Context, content string) json.RawMessage {
	return s.studyObject(ctx, KindExplain, content, explainContract)
}

// Quiz produces a quiz question array for the given material, or an empty
// array on failure.
func (s *Service) Quiz(ctx context.Context, content string) json.RawMessage {
	return s.studyArray(ctx, KindQuiz, content, quizElementFields)
}

// Flashcards produces a flashcard array for the given material, or an empty
// array on failure.
func (s *Service) Flashcards(ctx context.Context, content string) json.RawMessage {
	return s.studyArray(ctx, KindFlashcards, content, flashcardElementFields)
}

// generateDocument runs the full curriculum pipeline: cache check,
// de-duplicated generation, parse/validate/normalize, cache write. Failures
// are never cached, so a later request for the same key retries generation.
func (s *Service) generateDocument(
	ctx context.Context,
	kind ContentKind,
	subject string,
	sectionsKey, itemsKey string,
	contract Contract,
	fallback func(string) *domain.CurriculumDocument,
) *domain.CurriculumDocument {
	key := CacheKey(kind, subject)

	if cached, ok := s.cache.Get(key); ok {
		if doc, ok := cached.(*domain.CurriculumDocument); ok {
			s.logger.DebugContext(ctx, "cache hit", "kind", kind, "key", key)
			return doc
		}
	}

	// Every caller in the flight shares the leader's provider call, so it
	// runs detached from the leader's cancellation; one request going away
	// must not fail the flight for the waiters.
	flightCtx := context.WithoutCancel(ctx)

	result, err, _ := s.flight.Do(key, func() (any, error) {
		raw, err := s.complete(flightCtx, kind, subject)
		if err != nil {
			return nil, err
		}

		parsed, err := ParseObject(raw, contract)
		if err != nil {
			return nil, err
		}

		doc := decodeDocument(parsed, sectionsKey, itemsKey)
		if err := doc.Validate(); err != nil {
			return nil, err
		}

		s.cache.Set(key, doc)
		return doc, nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "generation failed, serving fallback document",
			"kind", kind,
			"subject", subject,
			"error", err)
		return fallback(subject)
	}

	return result.(*domain.CurriculumDocument)
}

// studyObject runs the generation pipeline for an object-shaped study tool.
func (s *Service) studyObject(
	ctx context.Context,
	kind ContentKind,
	content string,
	contract Contract,
) json.RawMessage {
	key := CacheKey(kind, content)

	if cached, ok := s.cache.Get(key); ok {
		if payload, ok := cached.(json.RawMessage); ok {
			return payload
		}
	}

	flightCtx := context.WithoutCancel(ctx)

	result, err, _ := s.flight.Do(key, func() (any, error) {
		raw, err := s.complete(flightCtx, kind, content)
		if err != nil {
			return nil, err
		}

		parsed, err := ParseObject(raw, contract)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(parsed)
		if err != nil {
			return nil, err
		}

		s.cache.Set(key, json.RawMessage(payload))
		return json.RawMessage(payload), nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "generation failed, serving empty result",
			"kind", kind,
			"error", err)
		return emptyObject
	}

	return result.(json.RawMessage)
}

// studyArray runs the generation pipeline for an array-shaped study tool.
func (s *Service) studyArray(
	ctx context.Context,
	kind ContentKind,
	content string,
	elementFields []string,
) json.RawMessage {
	key := CacheKey(kind, content)

	if cached, ok := s.cache.Get(key); ok {
		if payload, ok := cached.(json.RawMessage); ok {
			return payload
		}
	}

	flightCtx := context.WithoutCancel(ctx)

	result, err, _ := s.flight.Do(key, func() (any, error) {
		raw, err := s.complete(flightCtx, kind, content)
		if err != nil {
			return nil, err
		}

		elements, err := ParseArray(raw, elementFields)
		if err != nil {
			return nil, err
		}

		payload, err := json.Marshal(elements)
		if err != nil {
			return nil, err
		}

		s.cache.Set(key, json.RawMessage(payload))
		return json.RawMessage(payload), nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "generation failed, serving empty result",
			"kind", kind,
			"error", err)
		return emptyArray
	}

	return result.(json.RawMessage)
}

// complete builds the prompt for the kind and calls the provider chain.
// All generation paths use the fast quality hint.
func (s *Service) complete(ctx context.Context, kind ContentKind, subject string) (string, error) {
	prompt, err := buildPrompt(kind, subject)
	if err != nil {
		return "", err
	}

	return s.completer.Complete(ctx, prompt, QualityFast)
}

// decodeDocument normalizes validated, untrusted provider output into the
// domain document shape. Unknown or wrongly typed fields degrade to zero
// values rather than failing; the contract has already guaranteed the
// required top-level shape.
func decodeDocument(raw map[string]any, sectionsKey, itemsKey string) *domain.CurriculumDocument {
	doc := &domain.CurriculumDocument{
		Title:       stringField(raw, "title"),
		Description: stringField(raw, "description"),
		Sections:    []domain.Section{},
	}

	sections, _ := raw[sectionsKey].([]any)
	for _, element := range sections {
		rawSection, ok := element.(map[string]any)
		if !ok {
			continue
		}

		section := domain.Section{
			ID:      stringField(rawSection, "id"),
			Label:   stringField(rawSection, "label"),
			Summary: stringField(rawSection, "summary"),
			Items:   []domain.Item{},
		}

		items, _ := rawSection[itemsKey].([]any)
		for _, itemElement := range items {
			rawItem, ok := itemElement.(map[string]any)
			if !ok {
				continue
			}

			section.Items = append(section.Items, domain.Item{
				ID:        stringField(rawItem, "id"),
				Label:     stringField(rawItem, "label"),
				Details:   stringField(rawItem, "details"),
				DependsOn: stringSlice(rawItem, "depends_on"),
			})
		}

		doc.Sections = append(doc.Sections, section)
	}

	return doc
}

func stringField(m map[string]any, key string) string {
	value, _ := m[key].(string)
	return value
}

func stringSlice(m map[string]any, key string) []string {
	elements, ok := m[key].([]any)
	if !ok || len(elements) == 0 {
		return nil
	}

	values := make([]string, 0, len(elements))
	for _, element := range elements {
		if value, ok := element.(string); ok {
			values = append(values, value)
		}
	}

	return values
}
