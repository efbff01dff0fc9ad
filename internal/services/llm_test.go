package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"

	"quizforge/internal/models"
)

func newChatServer(t *testing.T, content string, capture *chatRequest, calls *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls != nil {
			*calls++
		}
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": content}},
			},
		})
	}))
}

func TestQuery_RequestShape(t *testing.T) {
	var captured chatRequest
	srv := newChatServer(t, "generated questions", &captured, nil)
	defer srv.Close()

	svc := NewLLMService(srv.URL, "test-key", "test-model")

	got, err := svc.Query(context.Background(), "make questions")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "generated questions" {
		t.Fatalf("expected first choice content, got %q", got)
	}

	if captured.Model != "test-model" {
		t.Fatalf("expected model test-model, got %q", captured.Model)
	}
	if captured.Temperature != 0.7 {
		t.Fatalf("expected temperature 0.7, got %v", captured.Temperature)
	}
	if captured.MaxTokens != 10000 {
		t.Fatalf("expected max_tokens 10000, got %d", captured.MaxTokens)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" || captured.Messages[1].Role != "user" {
		t.Fatalf("unexpected message roles: %+v", captured.Messages)
	}
	if captured.Messages[1].Content != "make questions" {
		t.Fatalf("expected prompt in user message, got %q", captured.Messages[1].Content)
	}
}

func TestQuery_SendsBearerAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"content": "ok"}},
			},
		})
	}))
	defer srv.Close()

	svc := NewLLMService(srv.URL, "secret-key", "m")

	if _, err := svc.Query(context.Background(), "p"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("expected bearer auth header, got %q", gotAuth)
	}
}

func TestQuery_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	svc := NewLLMService(srv.URL, "k", "m")

	_, err := svc.Query(context.Background(), "p")
	if !errors.Is(err, models.ErrTransportFailure) {
		t.Fatalf("expected ErrTransportFailure, got %v", err)
	}
}

func TestQuery_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	svc := NewLLMService(srv.URL, "k", "m")

	_, err := svc.Query(context.Background(), "p")
	if !errors.Is(err, models.ErrTransportFailure) {
		t.Fatalf("expected ErrTransportFailure, got %v", err)
	}
}

func TestGenerateMCQ_PromptContainsSyllabusAndDifficulty(t *testing.T) {
	var captured chatRequest
	srv := newChatServer(t, "1. Question...", &captured, nil)
	defer srv.Close()

	svc := NewLLMService(srv.URL, "k", "m")

	if _, err := svc.GenerateMCQ(context.Background(), "the krebs cycle", 5, "Hard"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := captured.Messages[1].Content
	if !strings.Contains(prompt, "the krebs cycle") {
		t.Fatalf("prompt missing syllabus text: %q", prompt)
	}
	if !strings.Contains(prompt, "5 multiple-choice") {
		t.Fatalf("prompt missing question count: %q", prompt)
	}
	if !strings.Contains(prompt, "Difficulty Level: Hard") {
		t.Fatalf("prompt missing difficulty: %q", prompt)
	}
}

func TestParseMatchingPairs(t *testing.T) {
	raw := "Here are your pairs:\n" +
		"1. Paris | France\n" +
		"2. Tokyo | Japan\n" +
		"a line with no separator\n" +
		"too | many | pipes\n" +
		"3. Berlin | Germany\n"

	left, right := ParseMatchingPairs(raw)

	wantLeft := []string{"Paris", "Tokyo", "Berlin"}
	wantRight := []string{"France", "Japan", "Germany"}

	if len(left) != 3 || len(right) != 3 {
		t.Fatalf("expected 3 pairs, got %d/%d", len(left), len(right))
	}
	for i := range wantLeft {
		if left[i] != wantLeft[i] {
			t.Fatalf("left[%d]: expected %q, got %q", i, wantLeft[i], left[i])
		}
		if right[i] != wantRight[i] {
			t.Fatalf("right[%d]: expected %q, got %q", i, wantRight[i], right[i])
		}
	}
}

func TestParseMatchingPairs_EmptySides(t *testing.T) {
	left, right := ParseMatchingPairs("| France\nParis |\n1. Rome | Italy")
	if len(left) != 1 || left[0] != "Rome" || right[0] != "Italy" {
		t.Fatalf("expected only the complete pair, got %v / %v", left, right)
	}
}

func TestGenerateMatching_SingleCallAndColumnsPreserved(t *testing.T) {
	calls := 0
	srv := newChatServer(t, "1. Paris | France\n2. Tokyo | Japan\n3. Berlin | Germany", nil, &calls)
	defer srv.Close()

	svc := NewLLMService(srv.URL, "k", "m")

	quiz, err := svc.GenerateMatching(context.Background(), "capitals", 3, "Easy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one upstream call, got %d", calls)
	}

	left := append([]string(nil), quiz.Left...)
	right := append([]string(nil), quiz.Right...)
	sort.Strings(left)
	sort.Strings(right)

	wantLeft := []string{"Berlin", "Paris", "Tokyo"}
	wantRight := []string{"France", "Germany", "Japan"}
	for i := range wantLeft {
		if left[i] != wantLeft[i] {
			t.Fatalf("shuffled left column lost an entry: %v", quiz.Left)
		}
		if right[i] != wantRight[i] {
			t.Fatalf("shuffled right column lost an entry: %v", quiz.Right)
		}
	}
}

func TestGenerateMatching_NoPairs(t *testing.T) {
	srv := newChatServer(t, "I cannot generate pairs for this content.", nil, nil)
	defer srv.Close()

	svc := NewLLMService(srv.URL, "k", "m")

	_, err := svc.GenerateMatching(context.Background(), "x", 3, "Easy")
	if !errors.Is(err, models.ErrTransportFailure) {
		t.Fatalf("expected ErrTransportFailure, got %v", err)
	}
}
