package services

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"quizforge/internal/models"
	"quizforge/internal/syllabus"
)

var (
	paragraphPattern = regexp.MustCompile(`(?is)<p[^>]*>(.*?)</p>`)
	innerTagPattern  = regexp.MustCompile(`<[^>]+>`)
)

// ScrapeService extracts readable paragraph text from a web page.
type ScrapeService struct {
	httpClient *http.Client
	log        *logrus.Logger
}

func NewScrapeService(log *logrus.Logger) *ScrapeService {
	return &ScrapeService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

// Scrape fetches the page and returns the text of its <p> elements joined by
// newlines, truncated to wordLimit.
func (s *ScrapeService) Scrape(ctx context.Context, pageURL string, wordLimit int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", models.ErrExtractionFailure, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetch page: %v", models.ErrExtractionFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: fetch page: status %d", models.ErrExtractionFailure, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read page: %v", models.ErrExtractionFailure, err)
	}

	s.log.Debugf("Fetched %s (%d bytes)", pageURL, len(body))

	text := extractParagraphText(string(body))
	if text == "" {
		return "", fmt.Errorf("%w: no relevant text content found on the webpage", models.ErrExtractionFailure)
	}

	return syllabus.Truncate(text, wordLimit), nil
}

// extractParagraphText pulls the text of every <p> element, strips nested
// tags, unescapes entities and drops empty paragraphs.
func extractParagraphText(pageHTML string) string {
	matches := paragraphPattern.FindAllStringSubmatch(pageHTML, -1)

	var paragraphs []string
	for _, m := range matches {
		text := innerTagPattern.ReplaceAllString(m[1], "")
		text = strings.TrimSpace(html.UnescapeString(text))
		if text == "" {
			continue
		}
		paragraphs = append(paragraphs, text)
	}

	return strings.Join(paragraphs, "\n")
}
