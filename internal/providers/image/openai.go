package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/imaging"
)

// OpenAIOptions configures the DALL-E style adapter.
type OpenAIOptions struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// OpenAI generates images through the fixed-size b64_json API. The endpoint
// only accepts an enumerated set of output sizes, so aspect ratios are mapped
// onto the closest supported dimensions.
type OpenAI struct {
	httpClient *http.Client
	baseURL    string
	model      string
	logger     zerolog.Logger
}

// NewOpenAI constructs the adapter with a default HTTP client when none is
// supplied.
func NewOpenAI(opts OpenAIOptions) *OpenAI {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "dall-e-3"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &OpenAI{httpClient: client, baseURL: base, model: model, logger: opts.Logger}
}

type openaiImageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type openaiImageResponse struct {
	Data []struct {
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

// SizeForAspect maps an aspect-ratio string onto the enumerated size set. The
// mapping is total: unrecognized input falls back to the square size.
func SizeForAspect(aspect string) string {
	switch strings.TrimSpace(aspect) {
	case "16:9":
		return "1792x1024"
	case "9:16":
		return "1024x1792"
	case "4:3":
		return "1392x1024"
	case "3:4":
		return "1024x1392"
	default:
		return "1024x1024"
	}
}

// Generate submits a generation request. It fails fast when the caller
// supplied no API key; this provider has no platform credential.
func (p *OpenAI) Generate(ctx context.Context, req Request) (*imaging.ImageSource, error) {
	return p.generate(ctx, req, req.Prompt)
}

// Refine re-prompts with the instruction appended. This API has no
// image-conditioning input, so the resolved prior image is not transmitted.
func (p *OpenAI) Refine(ctx context.Context, req RefineRequest) (*imaging.ImageSource, error) {
	p.logger.Debug().
		Str("request_id", req.RequestID).
		Msg("openai: refinement re-prompts without the prior image; endpoint accepts text only")
	prompt := strings.TrimSpace(req.Prompt)
	instruction := strings.TrimSpace(req.Instruction)
	if prompt == "" {
		prompt = instruction
	} else {
		prompt = prompt + "\nRefine the previous result: " + instruction
	}
	return p.generate(ctx, req.Request, prompt)
}

// Describe identifies the adapter for the model listing endpoint.
func (p *OpenAI) Describe() Description {
	return Description{
		Tag:     "openai",
		Model:   p.model,
		Models:  []string{"dall-e-3", "dall-e-2", "gpt-image-1"},
		Summary: "fixed-size b64_json generation; refinement via re-prompting",
	}
}

func (p *OpenAI) generate(ctx context.Context, req Request, prompt string) (*imaging.ImageSource, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, ErrCredentialMissing
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.model
	}

	payload := openaiImageRequest{
		Model:          model,
		Prompt:         prompt,
		Size:           SizeForAspect(req.AspectRatio),
		ResponseFormat: "b64_json",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("openai: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/images/generations", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("openai: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+strings.TrimSpace(req.APIKey))

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: invoke: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, &UpstreamError{Provider: "openai", Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out openaiImageResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(out.Data) == 0 || strings.TrimSpace(out.Data[0].B64JSON) == "" {
		return nil, fmt.Errorf("openai: %w", ErrUpstreamProtocol)
	}

	return &imaging.ImageSource{
		B64JSON:  out.Data[0].B64JSON,
		MimeType: imaging.DefaultMimeType,
	}, nil
}

var _ Provider = (*OpenAI)(nil)
