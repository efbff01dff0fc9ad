package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quizforge/internal/models"
)

// TranslateService localizes generated questions through the Google
// Translate v2 REST endpoint.
type TranslateService struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
}

func NewTranslateService(endpoint, apiKey string) *TranslateService {
	return &TranslateService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		apiKey:     apiKey,
	}
}

// Enabled reports whether a translation key was configured. Without one the
// caller should keep the source text untranslated.
func (s *TranslateService) Enabled() bool {
	return s.apiKey != ""
}

type translateResponse struct {
	Data struct {
		Translations []struct {
			TranslatedText string `json:"translatedText"`
		} `json:"translations"`
	} `json:"data"`
}

// Translate renders text into the target language. The source language is
// left to the endpoint to detect.
func (s *TranslateService) Translate(ctx context.Context, text, targetLang string) (string, error) {
	form := url.Values{}
	form.Set("q", text)
	form.Set("target", targetLang)
	form.Set("format", "text")
	form.Set("key", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: translate: %v", models.ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("%w: translate returned status %d: %s", models.ErrTransportFailure, resp.StatusCode, strings.TrimSpace(string(slurp)))
	}

	var tr translateResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("%w: decode translate response: %v", models.ErrTransportFailure, err)
	}
	if len(tr.Data.Translations) == 0 {
		return "", fmt.Errorf("%w: translate response contained no translations", models.ErrTransportFailure)
	}

	return tr.Data.Translations[0].TranslatedText, nil
}
