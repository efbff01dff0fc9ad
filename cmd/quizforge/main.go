package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"quizforge/internal/config"
	"quizforge/internal/executor"
	"quizforge/internal/logger"
	"quizforge/internal/models"
	"quizforge/internal/services"
	"quizforge/internal/syllabus"
)

const syllabusPreviewWords = 60

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		envFile  string
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "quizforge",
		Short: "Generate quiz questions from lecture content",
		Long: `quizforge ingests study material (text, documents, images, audio,
video, YouTube links or web pages), distills it into a syllabus and
generates quiz questions with an LLM.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var envFiles []string
			if envFile != "" {
				envFiles = append(envFiles, envFile)
			}
			cfg := config.Load(envFiles...)
			if logLevel != "" {
				cfg.LogLevel = logLevel
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(&cobra.Command{
		Use:   "generate",
		Short: "Run an interactive question-generation session",
		RunE:  cmd.RunE,
	})

	return cmd
}

// app bundles the wired services behind the interactive session.
type app struct {
	cfg        *config.Config
	log        *logrus.Logger
	files      *services.FileExtractService
	ocr        *services.OCRService
	transcribe *services.TranscribeService
	youtube    *services.YouTubeService
	scrape     *services.ScrapeService
	llm        *services.LLMService
	translate  *services.TranslateService
	in         *bufio.Scanner
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.New(cfg.LogLevel)
	log.Info("Starting quizforge...")

	// ──── Step 1: External tool runner ────
	exec := executor.New()

	// ──── Step 2: Speech recognition ────
	var recognizer services.Recognizer
	if cfg.GeminiAPIKey != "" {
		rec, err := services.NewGeminiRecognizer(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return fmt.Errorf("initialize speech recognizer: %w", err)
		}
		defer rec.Close()
		recognizer = rec
		log.Info("Speech recognizer initialized")
	} else {
		log.Warn("GEMINI_API_KEY not set, audio and video sources are unavailable")
	}

	// ──── Step 3: Ingestion services ────
	a := &app{
		cfg:        cfg,
		log:        log,
		files:      services.NewFileExtractService(cfg.WordLimit),
		ocr:        services.NewOCRService(cfg, exec, log),
		transcribe: services.NewTranscribeService(cfg, exec, recognizer, log),
		youtube:    services.NewYouTubeService(cfg.TempDir, log),
		scrape:     services.NewScrapeService(log),
		llm:        services.NewLLMService(cfg.LLMAPIURL, cfg.LLMAPIKey, cfg.LLMModel),
		translate:  services.NewTranslateService(cfg.TranslateAPIURL, cfg.TranslateAPIKey),
		in:         bufio.NewScanner(os.Stdin),
	}

	return a.session(ctx)
}

// session runs one ingest-generate-deliver round.
func (a *app) session(ctx context.Context) error {
	source, err := a.promptSource()
	if err != nil {
		return err
	}

	syllabusText, err := a.ingest(ctx, source)
	if err != nil {
		if executor.IsNotInstalled(err) {
			return fmt.Errorf("a required external tool is missing (install ffmpeg/ffprobe/tesseract): %w", err)
		}
		return err
	}
	if strings.TrimSpace(syllabusText) == "" {
		return errors.New("no usable text could be extracted from the selected source")
	}

	fmt.Println("\nSyllabus preview:")
	fmt.Println(previewWords(syllabusText, syllabusPreviewWords))
	fmt.Println()

	req, err := a.promptQuizRequest()
	if err != nil {
		return err
	}

	output, err := a.generate(ctx, syllabusText, req)
	if err != nil {
		return err
	}

	output = a.localize(ctx, output, req.Language)

	fmt.Println("\nGenerated questions:")
	fmt.Println(output)

	if a.promptYesNo("\nExport to a .docx file? (y/N): ") {
		path := a.prompt("Output path (e.g. quiz.docx): ")
		if path == "" {
			path = "quiz.docx"
		}
		if err := services.ExportQuizDocx("Generated Quiz", output, path); err != nil {
			return fmt.Errorf("export docx: %w", err)
		}
		a.log.Infof("Saved quiz to %s", path)
	}

	return nil
}

type sourceInput struct {
	kind    models.SourceType
	locator string
}

func (a *app) promptSource() (sourceInput, error) {
	fmt.Println("Content source types: text, file, image, audio, video, youtube, web")
	raw := a.prompt("Source type: ")

	kind, err := models.ParseSourceType(raw)
	if err != nil {
		return sourceInput{}, err
	}

	var label string
	switch kind {
	case models.SourceText:
		label = "Paste the study text: "
	case models.SourceFile:
		label = "Path to the document (.pdf, .docx, .txt): "
	case models.SourceImage:
		label = "Image path(s), comma separated: "
	case models.SourceAudio:
		label = "Path to the audio file: "
	case models.SourceVideo:
		label = "Path to the video file: "
	case models.SourceYouTube:
		label = "YouTube link: "
	case models.SourceWeb:
		label = "Web page URL: "
	}

	locator := a.prompt(label)
	if locator == "" {
		return sourceInput{}, errors.New("no source provided")
	}

	return sourceInput{kind: kind, locator: locator}, nil
}

// ingest resolves a source to syllabus text, dispatching to the service that
// owns the source type.
func (a *app) ingest(ctx context.Context, src sourceInput) (string, error) {
	switch src.kind {
	case models.SourceText:
		return a.files.Extract(src.locator)

	case models.SourceFile:
		return a.files.Extract(src.locator)

	case models.SourceImage:
		paths := splitAndTrim(src.locator, ",")
		entries := a.ocr.ExtractBatch(ctx, paths)
		for _, e := range entries {
			if e.Err != nil {
				a.log.Warnf("Image %s skipped: %v", e.Path, e.Err)
			}
		}
		joined := services.JoinImageTexts(entries)
		if joined == "" {
			return "", fmt.Errorf("%w: no text recognized in any image", models.ErrExtractionFailure)
		}
		return syllabus.Truncate(joined, a.cfg.WordLimit), nil

	case models.SourceAudio:
		if err := a.requireRecognizer(); err != nil {
			return "", err
		}
		return a.transcribe.Transcribe(ctx, src.locator)

	case models.SourceVideo:
		if err := a.requireRecognizer(); err != nil {
			return "", err
		}
		return a.transcribe.TranscribeVideo(ctx, src.locator)

	case models.SourceYouTube:
		return a.ingestYouTube(ctx, src.locator)

	case models.SourceWeb:
		return a.scrape.Scrape(ctx, src.locator, a.cfg.WordLimit)
	}

	return "", fmt.Errorf("unhandled source type %q", src.kind)
}

// ingestYouTube prefers the caption track and falls back to downloading the
// audio and running speech recognition over it.
func (a *app) ingestYouTube(ctx context.Context, link string) (string, error) {
	videoID := services.ExtractVideoID(link)
	if videoID == "" {
		return "", fmt.Errorf("%w: could not parse a video ID from %q", models.ErrExtractionFailure, link)
	}

	text, err := a.youtube.GetTranscript(videoID)
	if err == nil {
		return syllabus.Truncate(text, a.cfg.WordLimit), nil
	}
	a.log.Warnf("No transcript available, falling back to audio download: %v", err)

	if err := a.requireRecognizer(); err != nil {
		return "", err
	}

	audioPath, err := a.youtube.DownloadAudio(link)
	if err != nil {
		return "", err
	}
	defer os.Remove(audioPath)

	return a.transcribe.Transcribe(ctx, audioPath)
}

func (a *app) requireRecognizer() error {
	if a.cfg.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is required for audio transcription")
	}
	return nil
}

func (a *app) promptQuizRequest() (models.QuizRequest, error) {
	fmt.Println("Question types: MCQ, Fill in the Blanks, True/False, Matching")
	qType, err := models.ParseQuestionType(a.prompt("Question type: "))
	if err != nil {
		return models.QuizRequest{}, err
	}

	num := 5
	if raw := a.prompt("Number of questions (default 5): "); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return models.QuizRequest{}, fmt.Errorf("invalid question count %q", raw)
		}
		num = n
	}

	difficulty := a.prompt("Difficulty (Easy/Medium/Hard, default Medium): ")
	if difficulty == "" {
		difficulty = "Medium"
	}

	language := a.prompt("Output language code (default en): ")
	if language == "" {
		language = "en"
	}

	return models.QuizRequest{
		Type:         qType,
		NumQuestions: num,
		Difficulty:   difficulty,
		Language:     language,
	}, nil
}

func (a *app) generate(ctx context.Context, syllabusText string, req models.QuizRequest) (string, error) {
	a.log.Infof("Generating %d %s question(s)", req.NumQuestions, req.Type)

	switch req.Type {
	case models.QuestionMCQ:
		return a.llm.GenerateMCQ(ctx, syllabusText, req.NumQuestions, req.Difficulty)
	case models.QuestionFillInBlanks:
		return a.llm.GenerateFillInBlanks(ctx, syllabusText, req.NumQuestions, req.Difficulty)
	case models.QuestionTrueFalse:
		return a.llm.GenerateTrueFalse(ctx, syllabusText, req.NumQuestions, req.Difficulty)
	case models.QuestionMatching:
		quiz, err := a.llm.GenerateMatching(ctx, syllabusText, req.NumQuestions, req.Difficulty)
		if err != nil {
			return "", err
		}
		return quiz.Render(), nil
	}

	return "", fmt.Errorf("unhandled question type %q", req.Type)
}

// localize translates the output when a non-English language was requested.
// Missing translation credentials degrade to untranslated output.
func (a *app) localize(ctx context.Context, text, language string) string {
	if language == "" || strings.EqualFold(language, "en") {
		return text
	}
	if !a.translate.Enabled() {
		a.log.Warn("GOOGLE_TRANSLATE_API_KEY not set, returning untranslated questions")
		return text
	}

	translated, err := a.translate.Translate(ctx, text, language)
	if err != nil {
		a.log.Warnf("Translation failed, returning untranslated questions: %v", err)
		return text
	}
	return translated
}

func (a *app) prompt(label string) string {
	fmt.Print(label)
	if !a.in.Scan() {
		return ""
	}
	return strings.TrimSpace(a.in.Text())
}

func (a *app) promptYesNo(label string) bool {
	answer := strings.ToLower(a.prompt(label))
	return answer == "y" || answer == "yes"
}

func previewWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return text
	}
	return strings.Join(words[:n], " ") + " ..."
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
