package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"quizforge/internal/config"
	"quizforge/internal/executor"
	"quizforge/internal/models"
)

// OCRService extracts text from images through the tesseract engine.
type OCRService struct {
	cfg  *config.Config
	exec executor.Executor
	log  *logrus.Logger
}

func NewOCRService(cfg *config.Config, exec executor.Executor, log *logrus.Logger) *OCRService {
	return &OCRService{cfg: cfg, exec: exec, log: log}
}

// ExtractBatch runs OCR over each image independently. A failed image is
// recorded in its own entry and never aborts the rest of the batch; results
// follow input order. No word ceiling is applied per entry; the caller
// truncates once after joining the texts it selects.
func (s *OCRService) ExtractBatch(ctx context.Context, paths []string) []models.ImageText {
	results := make([]models.ImageText, 0, len(paths))

	for _, path := range paths {
		entry := models.ImageText{Path: path}

		if _, err := os.Stat(path); err != nil {
			entry.Err = fmt.Errorf("%w: open image: %v", models.ErrExtractionFailure, err)
			s.log.Warnf("Skipping unreadable image %s: %v", path, err)
			results = append(results, entry)
			continue
		}

		out, err := s.exec.Execute(ctx, s.cfg.TesseractPath, path, "stdout")
		if err != nil {
			entry.Err = fmt.Errorf("%w: ocr engine: %v", models.ErrExtractionFailure, err)
			s.log.Warnf("OCR failed for %s: %v", path, err)
		} else {
			entry.Text = strings.TrimSpace(out)
		}

		results = append(results, entry)
	}

	return results
}

// JoinImageTexts concatenates the successful entries in input order, one
// image per line block.
func JoinImageTexts(entries []models.ImageText) string {
	var texts []string
	for _, e := range entries {
		if e.Err == nil && e.Text != "" {
			texts = append(texts, e.Text)
		}
	}
	return strings.Join(texts, "\n")
}
