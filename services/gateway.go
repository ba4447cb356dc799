package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.5-flash"

// ExtractionRequest is the input of one extraction call.
type ExtractionRequest struct {
	Transcript string
	Agenda     string
}

// ExtractedItem is a titled piece of extracted text.
type ExtractedItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ExtractionResult is the structured answer of the model.
type ExtractionResult struct {
	Summary     ExtractedItem   `json:"summary"`
	Tasks       []ExtractedItem `json:"tasks"`
	Reflections []ExtractedItem `json:"reflections"`
	Unaddressed []ExtractedItem `json:"unaddressed"`
}

// ExtractionGateway turns a transcript into meeting artifacts.
type ExtractionGateway interface {
	Extract(ctx context.Context, req ExtractionRequest) (*ExtractionResult, error)
}

// GatewayFactory builds a gateway for one credential. Gateways are created
// per call, so no client outlives the request that needed it.
type GatewayFactory func(ctx context.Context, credential string) (ExtractionGateway, error)

// GeminiOptions configures the Gemini gateway.
type GeminiOptions struct {
	Model string
	// BaseURL overrides the Gemini API endpoint, e.g. for a local proxy.
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
	// TracerProvider defaults to the global provider.
	TracerProvider trace.TracerProvider
}

// GeminiGateway calls Gemini with a fixed response schema.
type GeminiGateway struct {
	client *genai.Client
	model  string
	logger *zap.Logger
	tracer trace.Tracer
}

// NewGeminiGateway creates a gateway bound to credential.
func NewGeminiGateway(ctx context.Context, credential string, opts GeminiOptions) (*GeminiGateway, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, &ConfigurationError{Reason: "no Gemini API key was supplied"}
	}
	if opts.Model == "" {
		opts.Model = DefaultGeminiModel
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.TracerProvider == nil {
		opts.TracerProvider = otel.GetTracerProvider()
	}

	cfg := &genai.ClientConfig{
		APIKey:     credential,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: opts.HTTPClient,
	}
	if opts.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: opts.BaseURL}
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("could not create Gemini client: %v", err)}
	}

	return &GeminiGateway{
		client: client,
		model:  opts.Model,
		logger: opts.Logger.Named("gateway"),
		tracer: opts.TracerProvider.Tracer("github/itish2003/meetingcanvas/services"),
	}, nil
}

// NewGeminiGatewayFactory returns a factory producing Gemini gateways that
// share opts.
func NewGeminiGatewayFactory(opts GeminiOptions) GatewayFactory {
	return func(ctx context.Context, credential string) (ExtractionGateway, error) {
		gw, err := NewGeminiGateway(ctx, credential, opts)
		if err != nil {
			return nil, err
		}
		return gw, nil
	}
}

// Extract sends the transcript to Gemini. There are no retries and no
// partial result. A rejected API key is a ConfigurationError; any other
// failure is an UpstreamError.
func (g *GeminiGateway) Extract(ctx context.Context, req ExtractionRequest) (*ExtractionResult, error) {
	ctx, span := g.tracer.Start(ctx, "gemini.extract", trace.WithAttributes(
		attribute.String("gemini.model", g.model),
		attribute.Int("transcript.length", len(req.Transcript)),
	))
	defer span.End()

	temperature := float32(0.2)
	config := &genai.GenerateContentConfig{
		SystemInstruction: GetSystemPrompt(),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    GetExtractionSchema(),
		Temperature:       &temperature,
	}

	g.logger.Debug("sending extraction request", zap.String("model", g.model), zap.Int("transcript_len", len(req.Transcript)))
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(buildExtractionPrompt(req)), config)
	if err != nil {
		if apiErr, ok := rejectedCredential(err); ok {
			span.RecordError(err)
			span.SetStatus(codes.Error, "credential rejected")
			g.logger.Warn("gemini rejected the api key", zap.Int("code", apiErr.Code), zap.String("status", apiErr.Status))
			return nil, &ConfigurationError{Reason: "the Gemini API key was rejected: " + apiErr.Message}
		}
		return nil, g.fail(span, fmt.Errorf("gemini api call failed: %w", err))
	}

	text := responseText(resp)
	if text == "" {
		return nil, g.fail(span, errors.New("gemini returned no content"))
	}

	result, err := parseExtraction(text)
	if err != nil {
		g.logger.Warn("unparseable extraction response", zap.Error(err), zap.Int("response_len", len(text)))
		return nil, g.fail(span, err)
	}

	span.SetAttributes(
		attribute.Int("result.tasks", len(result.Tasks)),
		attribute.Int("result.reflections", len(result.Reflections)),
		attribute.Int("result.unaddressed", len(result.Unaddressed)),
	)
	return result, nil
}

func (g *GeminiGateway) fail(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return &UpstreamError{Op: "extract", Err: err}
}

// rejectedCredential reports whether err is Gemini refusing the API key:
// 401, 403, or 400 with reason API_KEY_INVALID.
func rejectedCredential(err error) (genai.APIError, bool) {
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		return apiErr, false
	}
	switch apiErr.Code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return apiErr, true
	case http.StatusBadRequest:
		for _, detail := range apiErr.Details {
			if reason, _ := detail["reason"].(string); reason == "API_KEY_INVALID" {
				return apiErr, true
			}
		}
	}
	return apiErr, false
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}

// rawExtraction uses pointers so missing keys can be told apart from empty
// ones.
type rawExtraction struct {
	Summary     *ExtractedItem   `json:"summary"`
	Tasks       *[]ExtractedItem `json:"tasks"`
	Reflections *[]ExtractedItem `json:"reflections"`
	Unaddressed *[]ExtractedItem `json:"unaddressed"`
}

// parseExtraction decodes the model answer and checks that all four
// top-level keys are present. A surrounding markdown code fence is allowed.
func parseExtraction(text string) (*ExtractionResult, error) {
	cleaned := stripCodeFence(text)

	var raw rawExtraction
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, fmt.Errorf("response is not valid JSON: %w", err)
	}

	var missing []string
	if raw.Summary == nil {
		missing = append(missing, "summary")
	}
	if raw.Tasks == nil {
		missing = append(missing, "tasks")
	}
	if raw.Reflections == nil {
		missing = append(missing, "reflections")
	}
	if raw.Unaddressed == nil {
		missing = append(missing, "unaddressed")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("response is missing %s", strings.Join(missing, ", "))
	}

	return &ExtractionResult{
		Summary:     *raw.Summary,
		Tasks:       *raw.Tasks,
		Reflections: *raw.Reflections,
		Unaddressed: *raw.Unaddressed,
	}, nil
}

func stripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	lines := strings.Split(cleaned, "\n")
	lines = lines[1:]
	if len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "```" {
		lines = lines[:len(lines)-1]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
