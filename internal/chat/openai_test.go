package chat

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
)

func TestOpenAIGenerate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		data, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(data, &got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"[{\"styleName\":\"x\"}]"}}]}`)
	}))
	defer srv.Close()

	gen, err := NewOpenAI("sk-test", srv.URL+"/v1/", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text, err := gen.Generate(context.Background(), "gpt-4o-mini", "describe", "https://cdn/img.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != `[{"styleName":"x"}]` {
		t.Fatalf("unexpected text: %q", text)
	}

	if got.Model != "gpt-4o-mini" || len(got.Messages) != 1 {
		t.Fatalf("unexpected request: %+v", got)
	}
	parts := got.Messages[0].Content
	if len(parts) != 2 || parts[0].Type != "text" || parts[0].Text != "describe" {
		t.Fatalf("unexpected text part: %+v", parts)
	}
	if parts[1].Type != "image_url" || parts[1].ImageURL == nil || parts[1].ImageURL.URL != "https://cdn/img.jpg" {
		t.Fatalf("unexpected image part: %+v", parts[1])
	}
}

func TestOpenAIGenerateErrors(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "api error", status: http.StatusTooManyRequests, body: `{"error":{"message":"rate limited","type":"requests"}}`, want: "rate limited"},
		{name: "plain error", status: http.StatusBadGateway, body: `upstream down`, want: "upstream down"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, want: "no response choices"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			gen, err := NewOpenAI("sk-test", srv.URL, 0)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			_, err = gen.Generate(context.Background(), "gpt-4o", "p", "u")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestOpenAINullContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":null}}]}`)
	}))
	defer srv.Close()

	gen, _ := NewOpenAI("sk-test", srv.URL, 0)
	text, err := gen.Generate(context.Background(), "gpt-4o", "p", "u")
	if err != nil || text != "" {
		t.Fatalf("expected empty text without error, got %q %v", text, err)
	}
}

func TestNewOpenAIRequiresKey(t *testing.T) {
	if _, err := NewOpenAI("  ", "", 0); err == nil {
		t.Fatal("expected error for empty key")
	}
}

func TestOpenAIGenerateWithoutImage(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &got)
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer srv.Close()

	gen, _ := NewOpenAI("sk-test", srv.URL, 0)
	if _, err := gen.Generate(context.Background(), "gpt-4o", "rewrite", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Messages) != 1 || len(got.Messages[0].Content) != 1 || got.Messages[0].Content[0].Type != "text" {
		t.Fatalf("expected a single text part, got %+v", got.Messages)
	}
}
