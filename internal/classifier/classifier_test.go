package classifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/diario-de-bordo/internal/config"
	"github.com/spec-kit/diario-de-bordo/internal/domain"
	"github.com/spec-kit/diario-de-bordo/internal/persistence"
)

func geminiAnswer(text string) string {
	body, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{"content": map[string]any{"parts": []any{map[string]any{"text": text}}}},
		},
	})
	return string(body)
}

func newGemini(t *testing.T, handler http.HandlerFunc) *GeminiClassifier {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewGeminiClassifier(config.AIConfig{
		GeminiAPIKey:   "test-key",
		Model:          "gemini-2.5-flash",
		Endpoint:       server.URL,
		TimeoutSeconds: 2,
	}, zap.NewNop())
}

func TestGeminiClassify(t *testing.T) {
	g := newGemini(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var req geminiRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
		assert.Len(t, req.GenerationConfig.ResponseSchema.Properties["subjectCode"].Enum, len(domain.SubjectCodes()))
		if assert.Len(t, req.Contents, 1) {
			assert.Contains(t, req.Contents[0].Parts[0].Text, "Cliente: Banco A")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, geminiAnswer(`{"priority":"Alta","subjectCode":"1206 - Erro de HW","analystAction":"Dispensador travado","suggestedNextStep":"Enviar técnico"}`))
	})

	result := g.Classify(context.Background(), "dispensador travando notas", "Banco A")
	assert.False(t, result.Degraded)
	assert.Equal(t, domain.TicketPriorityHigh, result.Priority)
	assert.Equal(t, domain.SubjectCode1206, result.SubjectCode)
	assert.Equal(t, "Dispensador travado", result.AnalystAction)
	assert.Equal(t, "Enviar técnico", result.SuggestedNextStep)
}

func TestGeminiClassifyFallsBack(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		payload string
	}{
		{"server error", http.StatusInternalServerError, `{"error":{"code":500,"message":"boom"}}`},
		{"no candidates", http.StatusOK, `{"candidates":[]}`},
		{"not json", http.StatusOK, geminiAnswer("não sei")},
		{"unknown subject", http.StatusOK, geminiAnswer(`{"priority":"Alta","subjectCode":"9999 - Outro","analystAction":"x","suggestedNextStep":"y"}`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGemini(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.payload)
			})
			result := g.Classify(context.Background(), "relato", "cliente")
			assert.Equal(t, Fallback(FallbackAction), result)
		})
	}
}

func TestNoopClassifier(t *testing.T) {
	result := NoopClassifier{}.Classify(context.Background(), "relato", "cliente")
	assert.True(t, result.Degraded)
	assert.Equal(t, domain.TicketPriorityMedium, result.Priority)
	assert.Equal(t, domain.SubjectCode1200, result.SubjectCode)
	assert.Equal(t, UnavailableAction, result.AnalystAction)
	assert.Equal(t, FallbackNextStep, result.SuggestedNextStep)
}

type countingClassifier struct {
	calls  atomic.Int32
	result Classification
}

func (c *countingClassifier) Classify(context.Context, string, string) Classification {
	c.calls.Add(1)
	return c.result
}

func TestCachedClassifierStoresSuccessfulResults(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &countingClassifier{result: Classification{
		Priority:          domain.TicketPriorityCritical,
		SubjectCode:       domain.SubjectCode1204,
		AnalystAction:     "Falha de comunicação",
		SuggestedNextStep: "Checar link",
	}}
	cached := NewCachedClassifier(inner, client, time.Hour, zap.NewNop())
	ctx := context.Background()

	first := cached.Classify(ctx, "sem comunicação", "Banco B")
	second := cached.Classify(ctx, "sem comunicação", "Banco B")
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), inner.calls.Load())
	assert.True(t, mr.Exists(cacheKey("sem comunicação", "Banco B")))

	cached.Classify(ctx, "sem comunicação", "Banco C")
	assert.Equal(t, int32(2), inner.calls.Load())
}

func TestCachedClassifierSkipsDegradedResults(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	inner := &countingClassifier{result: Fallback(FallbackAction)}
	cached := NewCachedClassifier(inner, client, time.Hour, zap.NewNop())

	cached.Classify(context.Background(), "relato", "cliente")
	cached.Classify(context.Background(), "relato", "cliente")
	assert.Equal(t, int32(2), inner.calls.Load())
	assert.Empty(t, mr.Keys())
}

func TestNewSelectsImplementation(t *testing.T) {
	logger := zap.NewNop()

	_, isNoop := New(config.AIConfig{}, &persistence.Redis{}, logger).(NoopClassifier)
	assert.True(t, isNoop)

	_, isGemini := New(config.AIConfig{GeminiAPIKey: "k", CacheTTLMinutes: 5}, &persistence.Redis{}, logger).(*GeminiClassifier)
	assert.True(t, isGemini)

	mr := miniredis.RunT(t)
	r := &persistence.Redis{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	_, isCached := New(config.AIConfig{GeminiAPIKey: "k", CacheTTLMinutes: 5}, r, logger).(*CachedClassifier)
	require.True(t, isCached)
}
