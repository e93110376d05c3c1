package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"
)

const (
	openAIDefaultModel   = openai.ChatModelGPT4oMini
	openAIDefaultTimeout = 30 * time.Second

	extractionSystemPrompt = "You extract structured freight-quotation data from documents. " +
		"Return only fields you can read directly from the input. Leave out anything " +
		"uncertain rather than guessing. Dates are ISO 8601, dimensions in meters, " +
		"weights in kilograms."
)

// OpenAIConfig holds configuration for the OpenAI extraction client.
type OpenAIConfig struct {
	APIKey     string
	Model      string        // "gpt-4o-mini" (default)
	Timeout    time.Duration // Per-call ceiling; callers may tighten via Options
	MaxRetries int           // Retry attempts for SDK transport
	BaseURL    string        // Optional (tests)
	HTTPClient *http.Client  // Optional (tests)
}

// OpenAIExtractor implements Extractor using the official OpenAI SDK.
type OpenAIExtractor struct {
	model   string
	timeout time.Duration
	client  openai.Client
	logger  *slog.Logger
}

// NewOpenAIExtractor creates a new OpenAI extraction client.
func NewOpenAIExtractor(cfg OpenAIConfig, logger *slog.Logger) *OpenAIExtractor {
	if cfg.Model == "" {
		cfg.Model = openAIDefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = openAIDefaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(httpClient),
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &OpenAIExtractor{
		model:   cfg.Model,
		timeout: cfg.Timeout,
		client:  openai.NewClient(opts...),
		logger:  logger.With("component", "ai"),
	}
}

// Extract pulls structured fields from document text, constrained by schema.
func (e *OpenAIExtractor) Extract(ctx context.Context, content string, schema json.RawMessage, opts Options) (*Extraction, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("content is required")
	}

	ctx, cancel := e.callContext(ctx, opts.Timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: e.callModel(opts.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractionSystemPrompt),
			openai.UserMessage(content),
		},
	}
	if len(schema) > 0 {
		params.ResponseFormat = jsonSchemaFormat(schema)
	}

	start := time.Now()
	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	e.logger.Debug("structured extraction call finished",
		"model", params.Model,
		"duration", time.Since(start),
	)

	return e.decodeCompletion(resp)
}

// ExtractAdvanced handles non-text input. The only supported mode is
// "vision", which sends page images to a multimodal model.
func (e *OpenAIExtractor) ExtractAdvanced(ctx context.Context, input []byte, mode string, hints map[string]string) (*Extraction, error) {
	if mode != "vision" {
		return nil, fmt.Errorf("unsupported extraction mode %q", mode)
	}
	if len(input) == 0 {
		return nil, fmt.Errorf("input is required")
	}

	ctx, cancel := e.callContext(ctx, 0)
	defer cancel()

	prompt := "Extract the freight-quotation fields visible in this document image."
	if hint := strings.TrimSpace(hints["context"]); hint != "" {
		prompt += " Context: " + hint
	}

	dataURL := "data:" + imageMIME(input, hints["mime_type"]) + ";base64," +
		base64.StdEncoding.EncodeToString(input)

	params := openai.ChatCompletionNewParams{
		Model: e.callModel(hints["model"]),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(extractionSystemPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: dataURL,
				}),
			}),
		},
		ResponseFormat: jsonSchemaFormat(ShipmentSchema()),
	}

	start := time.Now()
	resp, err := e.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	e.logger.Debug("vision extraction call finished",
		"model", params.Model,
		"input_bytes", len(input),
		"duration", time.Since(start),
	)

	return e.decodeCompletion(resp)
}

func (e *OpenAIExtractor) callContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = e.timeout
	}
	return context.WithTimeout(ctx, timeout)
}

func (e *OpenAIExtractor) callModel(override string) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}
	return e.model
}

func (e *OpenAIExtractor) decodeCompletion(resp *openai.ChatCompletion) (*Extraction, error) {
	if resp == nil || len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty completion response")
	}

	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	if raw == "" {
		return nil, fmt.Errorf("completion contained no content")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("decoding completion payload: %w", err)
	}

	return &Extraction{
		Data:       data,
		Confidence: 0.95,
		Metadata: map[string]any{
			"model":         resp.Model,
			"finish_reason": string(resp.Choices[0].FinishReason),
		},
	}, nil
}

func jsonSchemaFormat(schema json.RawMessage) openai.ChatCompletionNewParamsResponseFormatUnion {
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
			JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        "shipment_extraction",
				Description: openai.String("Structured freight-quotation fields"),
				Schema:      schema,
			},
		},
	}
}

func imageMIME(data []byte, hinted string) string {
	if hinted = strings.TrimSpace(hinted); hinted != "" {
		return hinted
	}
	switch {
	case len(data) > 3 && data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G':
		return "image/png"
	case len(data) > 2 && data[0] == 0xFF && data[1] == 0xD8:
		return "image/jpeg"
	default:
		return "image/png"
	}
}

func mapOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return fmt.Errorf("openai error (status %d): %s", apiErr.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("openai error (status %d)", apiErr.StatusCode)
	}
	return err
}

var _ Extractor = (*OpenAIExtractor)(nil)
