package services

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"quizforge/internal/models"
	"quizforge/internal/syllabus"
)

// FileExtractService turns a document file into syllabus text, dispatched by
// extension (.pdf, .docx, .txt).
type FileExtractService struct {
	wordLimit int
}

func NewFileExtractService(wordLimit int) *FileExtractService {
	return &FileExtractService{wordLimit: wordLimit}
}

// Extract resolves the file source's path-or-literal duality: an existing
// file path is dispatched by extension, any other input is treated as the
// syllabus text itself. The word ceiling is applied in both cases.
func (s *FileExtractService) Extract(input string) (string, error) {
	info, err := os.Stat(input)
	if err != nil || info.IsDir() {
		return syllabus.Truncate(input, s.wordLimit), nil
	}

	ext := strings.ToLower(filepath.Ext(input))

	var text string
	switch ext {
	case ".txt":
		text, err = s.extractTXT(input)
	case ".pdf":
		text, err = s.extractPDF(input)
	case ".docx":
		text, err = s.extractDOCX(input)
	default:
		return "", fmt.Errorf("%w: %s (use .pdf, .docx or .txt)", models.ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return "", err
	}

	return syllabus.Truncate(text, s.wordLimit), nil
}

func (s *FileExtractService) extractTXT(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}

	return string(b), nil
}

func (s *FileExtractService) extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open pdf: %v", models.ErrExtractionFailure, err)
	}
	defer f.Close()

	// Pages with no extractable text contribute nothing, not a blank
	// placeholder.
	var pages []string
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		pages = append(pages, content)
	}

	return strings.Join(pages, "\n"), nil
}

func (s *FileExtractService) extractDOCX(path string) (string, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: open docx: %v", models.ErrExtractionFailure, err)
	}
	defer r.Close()

	var documentXML []byte
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", fmt.Errorf("%w: read docx: %v", models.ErrExtractionFailure, err)
			}
			defer rc.Close()

			documentXML, err = io.ReadAll(rc)
			if err != nil {
				return "", fmt.Errorf("%w: read docx: %v", models.ErrExtractionFailure, err)
			}
			break
		}
	}

	if len(documentXML) == 0 {
		return "", fmt.Errorf("%w: docx document.xml not found", models.ErrExtractionFailure)
	}

	return stripDOCXML(documentXML), nil
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// stripDOCXML flattens word/document.xml to plain text, one newline per
// paragraph.
func stripDOCXML(src []byte) string {
	s := string(src)

	// DOCX paragraphs and line breaks
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	s = strings.ReplaceAll(s, "<w:br/>", "\n")
	s = strings.ReplaceAll(s, "<w:br />", "\n")
	s = strings.ReplaceAll(s, "<w:tab/>", "\t")

	// Remove all xml tags
	s = xmlTagPattern.ReplaceAllString(s, "")

	// Basic XML entities
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	s = replacer.Replace(s)

	return strings.TrimSpace(s)
}
