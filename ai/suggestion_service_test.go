package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"pingup/backend/pkg/logger"
	"pingup/backend/pkg/resilience"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu      sync.Mutex
	output  string
	err     error
	prompts []string
}

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.output, f.err
}

func (f *fakeProvider) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func newService(p Provider, opts ...Option) *SuggestionService {
	return NewSuggestionService(p, append([]Option{WithLogger(logger.Discard())}, opts...)...)
}

func TestGenerateReturnsDecodedSuggestions(t *testing.T) {
	p := &fakeProvider{output: `["Sure!","Sounds good","Maybe later"]`}
	svc := newService(p)

	got, err := svc.Generate(context.Background(), []MessageInput{{Text: "Want to grab lunch?"}})

	require.NoError(t, err)
	assert.Equal(t, []string{"Sure!", "Sounds good", "Maybe later"}, got)
	require.Equal(t, 1, p.calls())
	assert.Equal(t, BuildReplyPrompt("Want to grab lunch?"), p.prompts[0])
}

func TestGenerateUsesOnlyLastMessage(t *testing.T) {
	p := &fakeProvider{output: `["ok"]`}
	svc := newService(p)

	_, err := svc.Generate(context.Background(), []MessageInput{{Text: "first"}, {Text: "second"}, {Text: "last one"}})

	require.NoError(t, err)
	require.Equal(t, 1, p.calls())
	assert.True(t, strings.HasSuffix(p.prompts[0], `Message: "last one"`))
	assert.NotContains(t, p.prompts[0], "second")
}

func TestGenerateEmptyInputSkipsProvider(t *testing.T) {
	p := &fakeProvider{output: `["never"]`}
	svc := newService(p)

	for name, msgs := range map[string][]MessageInput{
		"nil":        nil,
		"empty":      {},
		"empty text": {{Text: "hello"}, {Text: ""}},
	} {
		t.Run(name, func(t *testing.T) {
			got, err := svc.Generate(context.Background(), msgs)
			require.NoError(t, err)
			assert.NotNil(t, got)
			assert.Empty(t, got)
		})
	}
	assert.Equal(t, 0, p.calls())
}

func TestGenerateMalformedOutputIsEmpty(t *testing.T) {
	svc := newService(&fakeProvider{output: "I'm not sure what to say."})

	got, err := svc.Generate(context.Background(), []MessageInput{{Text: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, []string{}, got)
}

func TestGenerateProviderFailure(t *testing.T) {
	svc := newService(&fakeProvider{err: errors.New("dial tcp: connection refused")})

	got, err := svc.Generate(context.Background(), []MessageInput{{Text: "hi"}})

	assert.Nil(t, got)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.Equal(t, "dial tcp: connection refused", err.Error())
}

func TestGenerateDoesNotRetry(t *testing.T) {
	p := &fakeProvider{err: errors.New("timeout")}
	svc := newService(p)

	_, err := svc.Generate(context.Background(), []MessageInput{{Text: "hi"}})

	require.Error(t, err)
	assert.Equal(t, 1, p.calls())
}

func TestGenerateOpenBreakerIsGenerationFailure(t *testing.T) {
	p := &fakeProvider{err: errors.New("unavailable")}
	cb := resilience.NewCircuitBreaker(resilience.BreakerConfig{
		Name:             "ai",
		FailureThreshold: 1,
		OpenFor:          time.Hour,
	}, logger.Discard())
	svc := newService(p, WithBreaker(cb))

	_, err := svc.Generate(context.Background(), []MessageInput{{Text: "hi"}})
	require.ErrorIs(t, err, ErrGeneration)

	_, err = svc.Generate(context.Background(), []MessageInput{{Text: "hi"}})
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, resilience.ErrOpen)
	assert.Equal(t, 1, p.calls())
}
