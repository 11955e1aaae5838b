package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/diario-de-bordo/internal/config"
	"github.com/spec-kit/diario-de-bordo/internal/domain"
	apperrors "github.com/spec-kit/diario-de-bordo/pkg/util/errorutil"
)

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiSchema struct {
	Type       string                  `json:"type"`
	Enum       []string                `json:"enum,omitempty"`
	Properties map[string]geminiSchema `json:"properties,omitempty"`
	Required   []string                `json:"required,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string       `json:"responseMimeType"`
	ResponseSchema   geminiSchema `json:"responseSchema"`
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// GeminiClassifier calls the Gemini generateContent REST endpoint with a
// JSON response schema restricted to the known enumerations.
type GeminiClassifier struct {
	client *resty.Client
	model  string
	logger *zap.Logger
}

// NewGeminiClassifier builds the client for the configured model.
func NewGeminiClassifier(cfg config.AIConfig, logger *zap.Logger) *GeminiClassifier {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Endpoint, "/")).
		SetTimeout(cfg.Timeout()).
		SetQueryParam("key", cfg.GeminiAPIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &GeminiClassifier{client: client, model: cfg.Model, logger: logger}
}

// Classify asks the model for a classification, falling back to the default
// on any failure.
func (g *GeminiClassifier) Classify(ctx context.Context, description, clientName string) Classification {
	result, err := g.classify(ctx, description, clientName)
	if err != nil {
		g.logger.Warn("ticket classification failed",
			zap.Error(apperrors.NewAIUnavailable(err)),
			zap.String("model", g.model),
		)
		return Fallback(FallbackAction)
	}
	return result
}

func (g *GeminiClassifier) classify(ctx context.Context, description, clientName string) (Classification, error) {
	var (
		out     geminiResponse
		failure geminiError
	)
	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(buildRequest(description, clientName)).
		SetResult(&out).
		SetError(&failure).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", g.model))
	if err != nil {
		return Classification{}, fmt.Errorf("call gemini: %w", err)
	}
	if resp.IsError() {
		return Classification{}, fmt.Errorf("gemini responded %d: %s", resp.StatusCode(), failure.Error.Message)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return Classification{}, errors.New("no response from AI")
	}
	return parseClassification(out.Candidates[0].Content.Parts[0].Text)
}

// parseClassification decodes the model's JSON answer and checks the enums.
func parseClassification(text string) (Classification, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Classification{}, errors.New("empty AI answer")
	}
	var result Classification
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return Classification{}, fmt.Errorf("decode AI answer: %w", err)
	}
	if !result.Valid() {
		return Classification{}, fmt.Errorf("AI answer outside enumerations: priority=%q subject=%q", result.Priority, result.SubjectCode)
	}
	result.Degraded = false
	return result, nil
}

func buildRequest(description, clientName string) geminiRequest {
	priorities := make([]string, 0, 4)
	for _, p := range domain.Priorities() {
		priorities = append(priorities, string(p))
	}
	subjects := make([]string, 0, 11)
	for _, s := range domain.SubjectCodes() {
		subjects = append(subjects, string(s))
	}

	return geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: buildPrompt(description, clientName, subjects)}}}},
		GenerationConfig: geminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema: geminiSchema{
				Type: "OBJECT",
				Properties: map[string]geminiSchema{
					"priority":          {Type: "STRING", Enum: priorities},
					"subjectCode":       {Type: "STRING", Enum: subjects},
					"analystAction":     {Type: "STRING"},
					"suggestedNextStep": {Type: "STRING"},
				},
				Required: []string{"priority", "subjectCode", "analystAction", "suggestedNextStep"},
			},
		},
	}
}

func buildPrompt(description, clientName string, subjects []string) string {
	var b strings.Builder
	b.WriteString("Analise o seguinte relato de um chamado técnico e extraia informações estruturadas.\n")
	fmt.Fprintf(&b, "Cliente: %s\n", clientName)
	fmt.Fprintf(&b, "Relato: %s\n\n", description)
	b.WriteString("1. Classifique a prioridade.\n")
	b.WriteString("2. Classifique o Assunto (Subject Code) escolhendo OBRIGATORIAMENTE um destes valores exatos:\n")
	for _, s := range subjects {
		fmt.Fprintf(&b, "   - %q\n", s)
	}
	b.WriteString("3. Gere um texto curto para o campo \"Ação Analista\" resumindo o problema técnico identificado.\n")
	b.WriteString("4. Sugira um próximo passo imediato.\n")
	return b.String()
}
