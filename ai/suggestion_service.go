package ai

import (
	"context"

	"pingup/backend/pkg/logger"
	"pingup/backend/pkg/resilience"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "pingup/backend/ai"

// SuggestionService turns the latest message of a conversation into up to
// three reply suggestions with a single provider call.
type SuggestionService struct {
	provider Provider
	breaker  *resilience.CircuitBreaker
	log      *logger.Logger
	tracer   trace.Tracer
	outcomes metric.Int64Counter
}

type Option func(*SuggestionService)

// WithBreaker routes provider calls through cb
func WithBreaker(cb *resilience.CircuitBreaker) Option {
	return func(s *SuggestionService) { s.breaker = cb }
}

func WithLogger(log *logger.Logger) Option {
	return func(s *SuggestionService) { s.log = log }
}

func NewSuggestionService(provider Provider, opts ...Option) *SuggestionService {
	s := &SuggestionService{
		provider: provider,
		log:      logger.GetGlobal(),
		tracer:   otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}

	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"suggestions_generated_total",
		metric.WithDescription("Reply suggestion requests by outcome"),
	)
	if err != nil {
		s.log.LogError(err, "Failed to create suggestion counter")
	}
	s.outcomes = counter
	return s
}

// Generate returns suggestions for the last message of messages. Only the
// last element is considered; an empty history or an empty last text
// returns an empty list without calling the provider. Malformed provider
// output also yields an empty list. Provider failures are returned as a
// *GenerationError, which matches ErrGeneration.
func (s *SuggestionService) Generate(ctx context.Context, messages []MessageInput) ([]string, error) {
	if len(messages) == 0 {
		s.record(ctx, "empty_input")
		return []string{}, nil
	}
	text := messages[len(messages)-1].Text
	if text == "" {
		s.record(ctx, "empty_input")
		return []string{}, nil
	}

	ctx, span := s.tracer.Start(ctx, "ai.GenerateSuggestions")
	defer span.End()

	raw, err := s.call(ctx, BuildReplyPrompt(text))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.record(ctx, "error")
		s.log.Warn("Suggestion generation failed", "error", err.Error())
		return nil, &GenerationError{Err: err}
	}

	suggestions := DecodeSuggestions(raw)
	span.SetAttributes(attribute.Int("suggestions.count", len(suggestions)))
	if len(suggestions) == 0 {
		s.record(ctx, "unparsed")
		s.log.Debug("Provider output held no suggestion list", "output_length", len(raw))
	} else {
		s.record(ctx, "ok")
	}
	return suggestions, nil
}

func (s *SuggestionService) call(ctx context.Context, prompt string) (string, error) {
	if s.breaker == nil {
		return s.provider.Generate(ctx, prompt)
	}
	var raw string
	err := s.breaker.Execute(func() error {
		var err error
		raw, err = s.provider.Generate(ctx, prompt)
		return err
	})
	return raw, err
}

func (s *SuggestionService) record(ctx context.Context, outcome string) {
	if s.outcomes == nil {
		return
	}
	s.outcomes.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
