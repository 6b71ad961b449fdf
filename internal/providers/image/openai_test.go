package image

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestSizeForAspectTotal(t *testing.T) {
	want := map[string]string{
		"1:1":     "1024x1024",
		"16:9":    "1792x1024",
		"9:16":    "1024x1792",
		"4:3":     "1392x1024",
		"3:4":     "1024x1392",
		"unknown": "1024x1024",
		"":        "1024x1024",
		"21:9":    "1024x1024",
	}
	valid := map[string]bool{
		"1024x1024": true, "1792x1024": true, "1024x1792": true,
		"1392x1024": true, "1024x1392": true,
	}
	for aspect, size := range want {
		got := SizeForAspect(aspect)
		if got != size {
			t.Fatalf("SizeForAspect(%q) = %q, want %q", aspect, got, size)
		}
		if !valid[got] {
			t.Fatalf("SizeForAspect(%q) produced size outside the enumerated set: %q", aspect, got)
		}
	}
}

func TestOpenAIGenerate(t *testing.T) {
	var captured openaiImageRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer user-key" {
			t.Fatalf("unexpected auth header: %s", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": "QUJD"}},
		})
	}))
	defer ts.Close()

	adapter := NewOpenAI(OpenAIOptions{BaseURL: ts.URL})
	src, err := adapter.Generate(context.Background(), Request{
		Prompt:      "a fox logo",
		AspectRatio: "16:9",
		APIKey:      "user-key",
	})
	if err != nil {
		t.Fatalf("Generate error: %v", err)
	}
	if captured.Size != "1792x1024" {
		t.Fatalf("size mismatch: %s", captured.Size)
	}
	if captured.ResponseFormat != "b64_json" {
		t.Fatalf("response_format mismatch: %s", captured.ResponseFormat)
	}
	if captured.Model != "dall-e-3" {
		t.Fatalf("default model not applied: %s", captured.Model)
	}
	if src.B64JSON != "QUJD" || src.MimeType != "image/png" {
		t.Fatalf("unexpected source: %+v", src)
	}
}

func TestOpenAIGenerateMissingKey(t *testing.T) {
	adapter := NewOpenAI(OpenAIOptions{BaseURL: "http://127.0.0.1:0"})
	_, err := adapter.Generate(context.Background(), Request{Prompt: "x"})
	if !errors.Is(err, ErrCredentialMissing) {
		t.Fatalf("expected ErrCredentialMissing, got %v", err)
	}
}

func TestOpenAIGenerateUpstreamRejection(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"content policy violation"}}`))
	}))
	defer ts.Close()

	adapter := NewOpenAI(OpenAIOptions{BaseURL: ts.URL})
	_, err := adapter.Generate(context.Background(), Request{Prompt: "x", APIKey: "k"})
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
	if upstream.Status != http.StatusBadRequest {
		t.Fatalf("status mismatch: %d", upstream.Status)
	}
	if !strings.Contains(upstream.Body, "content policy violation") {
		t.Fatalf("body not surfaced verbatim: %q", upstream.Body)
	}
}

func TestOpenAIGenerateEmptyData(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer ts.Close()

	adapter := NewOpenAI(OpenAIOptions{BaseURL: ts.URL})
	_, err := adapter.Generate(context.Background(), Request{Prompt: "x", APIKey: "k"})
	if !errors.Is(err, ErrUpstreamProtocol) {
		t.Fatalf("expected ErrUpstreamProtocol, got %v", err)
	}
}

func TestOpenAIRefineAppendsInstruction(t *testing.T) {
	var captured openaiImageRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]string{{"b64_json": "REVG"}},
		})
	}))
	defer ts.Close()

	adapter := NewOpenAI(OpenAIOptions{BaseURL: ts.URL})
	_, err := adapter.Refine(context.Background(), RefineRequest{
		Request:     Request{Prompt: "a fox logo", APIKey: "k"},
		Instruction: "make it blue",
	})
	if err != nil {
		t.Fatalf("Refine error: %v", err)
	}
	if !strings.Contains(captured.Prompt, "a fox logo") || !strings.Contains(captured.Prompt, "make it blue") {
		t.Fatalf("instruction not folded into prompt: %q", captured.Prompt)
	}
}
