package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"strings"
	"testing"

	"adstudio/internal/domain"
	"adstudio/internal/generation"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestGenerateJSONSendsImagesAndJSONMode(t *testing.T) {
	var captured geminiGenerateContentRequest
	var path, key string
	client, err := NewClient(Options{
		APIKey: "secret",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			path = r.URL.Path
			key = r.Header.Get("x-goog-api-key")
			if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"{\"angles\":"},{"text":"[]}"}]},"finishReason":"STOP"}]}`), nil
		})},
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := client.GenerateJSON(context.Background(), generation.TextRequest{
		Task:        generation.TaskAngles,
		System:      "sys",
		Prompt:      "hello",
		Images:      []domain.Image{{MIME: "image/jpeg", Data: []byte{1, 2, 3}}},
		Temperature: 0.4,
	})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if out != `{"angles":[]}` {
		t.Fatalf("output = %q", out)
	}
	if !strings.HasSuffix(path, "/models/gemini-2.5-flash:generateContent") {
		t.Fatalf("path = %q", path)
	}
	if key != "secret" {
		t.Fatalf("api key header = %q", key)
	}
	parts := captured.Contents[0].Parts
	if len(parts) != 2 || parts[0].InlineData == nil || parts[1].Text != "hello" {
		t.Fatalf("unexpected parts %+v", parts)
	}
	if parts[0].InlineData.MimeType != "image/jpeg" || parts[0].InlineData.Data != base64.StdEncoding.EncodeToString([]byte{1, 2, 3}) {
		t.Fatalf("inline data = %+v", parts[0].InlineData)
	}
	if captured.GenerationConfig.ResponseMimeType != "application/json" || *captured.GenerationConfig.Temperature != 0.4 {
		t.Fatalf("generation config = %+v", captured.GenerationConfig)
	}
	if captured.SystemInstruction == nil || captured.SystemInstruction.Parts[0].Text != "sys" {
		t.Fatalf("system instruction missing")
	}
}

func TestGenerateJSONErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"api error", http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota exceeded"}}`, "quota exceeded"},
		{"blocked", http.StatusOK, `{"promptFeedback":{"blockReason":"SAFETY"}}`, "SAFETY"},
		{"empty", http.StatusOK, `{"candidates":[{"content":{},"finishReason":"MAX_TOKENS"}]}`, "MAX_TOKENS"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := NewClient(Options{
				APIKey: "k",
				HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
					return jsonResponse(tt.status, tt.body), nil
				})},
			})
			_, err := client.GenerateJSON(context.Background(), generation.TextRequest{Prompt: "x"})
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestGenerateJSONRequiresKey(t *testing.T) {
	client, _ := NewClient(Options{})
	if _, err := client.GenerateJSON(context.Background(), generation.TextRequest{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestRenderImageDecodesInlineData(t *testing.T) {
	img := []byte("\x89PNG fake")
	var captured geminiGenerateContentRequest
	client, _ := NewClient(Options{
		APIKey:     "k",
		ImageModel: "image-model",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			_ = json.NewDecoder(r.Body).Decode(&captured)
			body := `{"candidates":[{"content":{"parts":[{"text":"here you go"},{"inlineData":{"mimeType":"image/png","data":"` +
				base64.StdEncoding.EncodeToString(img) + `"}}]}}]}`
			return jsonResponse(http.StatusOK, body), nil
		})},
	})
	out, err := client.RenderImage(context.Background(), generation.RenderRequest{Prompt: "p", AspectRatio: "4:5"})
	if err != nil {
		t.Fatalf("RenderImage: %v", err)
	}
	if out.MIME != "image/png" || !bytes.Equal(out.Data, img) {
		t.Fatalf("unexpected image %+v", out)
	}
	if got := captured.GenerationConfig.ResponseModalities; len(got) != 2 || got[1] != "IMAGE" {
		t.Fatalf("response modalities = %v", got)
	}
	if captured.GenerationConfig.ImageConfig.AspectRatio != "4:5" {
		t.Fatalf("aspect ratio not forwarded")
	}
}

func TestRenderImageWithoutKeyIsSynthetic(t *testing.T) {
	client, _ := NewClient(Options{
		HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
			t.Fatal("synthetic rendering must not call the network")
			return nil, nil
		})},
	})
	out, err := client.RenderImage(context.Background(), generation.RenderRequest{Prompt: "p", AspectRatio: "9:16", Seed: "NovaX"})
	if err != nil {
		t.Fatalf("RenderImage: %v", err)
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(out.Data))
	if err != nil {
		t.Fatalf("synthetic image is not a png: %v", err)
	}
	if cfg.Height <= cfg.Width {
		t.Fatalf("9:16 synthetic image is %dx%d", cfg.Width, cfg.Height)
	}
	again, _ := client.RenderImage(context.Background(), generation.RenderRequest{Prompt: "p", AspectRatio: "9:16", Seed: "NovaX"})
	if !bytes.Equal(out.Data, again.Data) {
		t.Fatalf("synthetic rendering is not deterministic")
	}
}

func TestNormalizeAspect(t *testing.T) {
	tests := map[string][2]int{
		"1:1":  {512, 512},
		"16:9": {640, 360},
		"2:1":  {512, 256},
		"bad":  {512, 512},
	}
	for in, want := range tests {
		w, h := normalizeAspect(in)
		if w != want[0] || h != want[1] {
			t.Fatalf("normalizeAspect(%q) = %dx%d, want %dx%d", in, w, h, want[0], want[1])
		}
	}
}
