package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"quizforge/internal/logger"
	"quizforge/internal/models"
)

func TestScrape_ParagraphExtraction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body>
<nav>menu items</nav>
<p>The mitochondria is the <b>powerhouse</b> of the cell.</p>
<p>   </p>
<p>Energy is stored as ATP &amp; released on demand.</p>
<script>var x = 1;</script>
</body></html>`))
	}))
	defer srv.Close()

	svc := NewScrapeService(logger.New("error"))

	got, err := svc.Scrape(context.Background(), srv.URL, 50000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "The mitochondria is the powerhouse of the cell.\nEnergy is stored as ATP & released on demand."
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestScrape_NoParagraphs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><body><div>no paragraph tags here</div></body></html>`))
	}))
	defer srv.Close()

	svc := NewScrapeService(logger.New("error"))

	_, err := svc.Scrape(context.Background(), srv.URL, 50000)
	if !errors.Is(err, models.ErrExtractionFailure) {
		t.Fatalf("expected ErrExtractionFailure, got %v", err)
	}
}

func TestScrape_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	svc := NewScrapeService(logger.New("error"))

	_, err := svc.Scrape(context.Background(), srv.URL, 50000)
	if !errors.Is(err, models.ErrExtractionFailure) {
		t.Fatalf("expected ErrExtractionFailure, got %v", err)
	}
}

func TestScrape_AppliesWordLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<p>one two three four five six</p>`))
	}))
	defer srv.Close()

	svc := NewScrapeService(logger.New("error"))

	got, err := svc.Scrape(context.Background(), srv.URL, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "one two three four" {
		t.Fatalf("expected truncation to 4 words, got %q", got)
	}
}

func TestScrape_SendsBrowserHeaders(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte(`<p>content</p>`))
	}))
	defer srv.Close()

	svc := NewScrapeService(logger.New("error"))

	if _, err := svc.Scrape(context.Background(), srv.URL, 50000); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUA == "" || gotLang == "" {
		t.Fatalf("expected browser-like headers, got UA=%q lang=%q", gotUA, gotLang)
	}
}

func TestExtractParagraphText_MultilineParagraph(t *testing.T) {
	html := "<p>spans\nmultiple\nlines</p>"
	if got := extractParagraphText(html); got != "spans\nmultiple\nlines" {
		t.Fatalf("expected multiline paragraph preserved, got %q", got)
	}
}
