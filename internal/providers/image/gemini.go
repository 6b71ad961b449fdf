package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/imaging"
)

// GeminiOptions configures the generateContent-style adapter.
type GeminiOptions struct {
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Timeout    time.Duration
	Logger     zerolog.Logger
}

// Gemini generates and refines images through a multimodal generateContent
// endpoint. Responses are candidate lists whose parts may mix inline binary
// data and text; the adapter takes the first inline image and falls back to
// surfacing the text when the model explains a failure in prose.
type Gemini struct {
	httpClient *http.Client
	baseURL    string
	model      string
	logger     zerolog.Logger
}

func NewGemini(opts GeminiOptions) *Gemini {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.0-flash-preview-image-generation"
	}
	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Gemini{httpClient: client, baseURL: base, model: model, logger: opts.Logger}
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// Generate submits a text-only generation request.
func (p *Gemini) Generate(ctx context.Context, req Request) (*imaging.ImageSource, error) {
	parts := []geminiPart{{Text: buildGeminiPrompt(req.Prompt, req.AspectRatio)}}
	return p.invoke(ctx, req, parts)
}

// Refine submits the resolved prior image as inline data alongside the
// instruction.
func (p *Gemini) Refine(ctx context.Context, req RefineRequest) (*imaging.ImageSource, error) {
	parts := []geminiPart{
		{InlineData: &geminiInlineData{MimeType: req.Image.MimeType, Data: req.Image.Base64Data}},
		{Text: strings.TrimSpace(req.Instruction)},
	}
	return p.invoke(ctx, req.Request, parts)
}

func (p *Gemini) Describe() Description {
	return Description{
		Tag:     "gemini",
		Model:   p.model,
		Models:  []string{"gemini-2.0-flash-preview-image-generation", "gemini-2.5-flash-image"},
		Summary: "multimodal generation with inline-image refinement",
	}
}

func (p *Gemini) invoke(ctx context.Context, req Request, parts []geminiPart) (*imaging.ImageSource, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, ErrCredentialMissing
	}
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = p.model
	}

	payload := geminiRequest{
		Contents:         []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", p.baseURL, url.PathEscape(model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", strings.TrimSpace(req.APIKey))

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini: invoke: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		var apiErr geminiErrorResponse
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, &UpstreamError{Provider: "gemini", Status: resp.StatusCode, Body: apiErr.Error.Message}
		}
		return nil, &UpstreamError{Provider: "gemini", Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}
	return p.pickImage(out, req.RequestID)
}

// pickImage scans candidates for the first inline image part. When the model
// answered only in prose that text is the diagnostic; when it answered with
// nothing usable at all the response shape itself is the failure.
func (p *Gemini) pickImage(out geminiResponse, requestID string) (*imaging.ImageSource, error) {
	var diagnostic string
	for _, candidate := range out.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && strings.TrimSpace(part.InlineData.Data) != "" {
				return &imaging.ImageSource{
					Base64Data: part.InlineData.Data,
					MimeType:   strings.ToLower(strings.TrimSpace(part.InlineData.MimeType)),
				}, nil
			}
			if diagnostic == "" && strings.TrimSpace(part.Text) != "" {
				diagnostic = strings.TrimSpace(part.Text)
			}
		}
	}
	if diagnostic != "" {
		p.logger.Debug().
			Str("request_id", requestID).
			Msg("gemini: response carried text instead of an image")
		return nil, &DiagnosticError{Provider: "gemini", Text: diagnostic}
	}
	return nil, fmt.Errorf("gemini: %w", ErrUpstreamProtocol)
}

func buildGeminiPrompt(prompt, aspect string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(prompt))
	if aspect = strings.TrimSpace(aspect); aspect != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Aspect ratio: ")
		b.WriteString(aspect)
	}
	if b.Len() == 0 {
		b.WriteString("Create a graphic")
	}
	return b.String()
}

var _ Provider = (*Gemini)(nil)
