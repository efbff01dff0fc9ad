package services

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/gomutex/godocx/docx"
)

const (
	exportFontName = "Times New Roman"
	exportFontSize = 13
	titleFontSize  = 16
)

var (
	reBoldSpan   = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reHeaderLine = regexp.MustCompile(`^(Questions|Answers|Answer Key|Column [AB]):?$`)
)

// ExportQuizDocx writes a generated question set to a styled docx file.
// Numbered questions and section headers get their own paragraphs; bold
// markdown spans become bold runs.
func ExportQuizDocx(title, content, outputPath string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	addTitleRun(doc.AddParagraph(""), title)
	doc.AddParagraph("")

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed == "---" {
			continue
		}

		p := doc.AddParagraph("")
		if reHeaderLine.MatchString(trimmed) {
			addQuizRun(p, trimmed, true)
			continue
		}
		addQuizText(p, trimmed)
	}

	if err := doc.SaveTo(outputPath); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	return nil
}

func addTitleRun(p *docx.Paragraph, text string) {
	p.AddText(stripInlineMarkdown(text)).Font(exportFontName).Size(titleFontSize).Color("000000").Bold(true)
}

func addQuizRun(p *docx.Paragraph, text string, bold bool) {
	run := p.AddText(stripInlineMarkdown(text)).Font(exportFontName).Size(exportFontSize).Color("000000")
	if bold {
		run.Bold(true)
	}
}

// addQuizText splits a line on **bold** spans so emphasis from the model's
// output survives into the document.
func addQuizText(p *docx.Paragraph, text string) {
	parts := reBoldSpan.Split(text, -1)
	matches := reBoldSpan.FindAllStringSubmatch(text, -1)

	for i, part := range parts {
		if part != "" {
			p.AddText(stripInlineMarkdown(part)).Font(exportFontName).Size(exportFontSize).Color("000000")
		}
		if i < len(matches) {
			p.AddText(stripInlineMarkdown(matches[i][1])).Font(exportFontName).Size(exportFontSize).Color("000000").Bold(true)
		}
	}
}

func stripInlineMarkdown(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "__", "")
	s = strings.ReplaceAll(s, "`", "")
	return s
}
