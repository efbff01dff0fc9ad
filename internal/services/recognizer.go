package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrUnintelligible marks a window whose audio produced no recognizable
// speech. The transcriber skips such windows without failing the call.
var ErrUnintelligible = errors.New("unintelligible audio")

// Recognizer converts one audio artifact into text. Implementations are
// external speech-recognition services.
type Recognizer interface {
	Recognize(ctx context.Context, wavPath string) (string, error)
}

// GeminiRecognizer transcribes audio through the Gemini File API.
type GeminiRecognizer struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

func NewGeminiRecognizer(ctx context.Context, apiKey string) (*GeminiRecognizer, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.3)
	model.SetTopP(0.95)

	return &GeminiRecognizer{client: client, model: model}, nil
}

func (r *GeminiRecognizer) Close() {
	r.client.Close()
}

// Recognize uploads the WAV artifact, waits for it to become active,
// requests a verbatim transcription and cleans up the remote file.
func (r *GeminiRecognizer) Recognize(ctx context.Context, wavPath string) (string, error) {
	audio, err := os.ReadFile(wavPath)
	if err != nil {
		return "", fmt.Errorf("read audio artifact: %w", err)
	}
	if len(audio) == 0 {
		return "", fmt.Errorf("audio payload is empty")
	}

	file, err := r.client.UploadFile(ctx, "", bytes.NewReader(audio), &genai.UploadFileOptions{
		DisplayName: "syllabus-audio-window",
		MIMEType:    "audio/wav",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload audio to Gemini: %w", err)
	}

	// Ensure remote file is cleaned up
	defer r.client.DeleteFile(context.Background(), file.Name)

	// Wait until file is active
	for i := 0; i < 20; i++ {
		current, getErr := r.client.GetFile(ctx, file.Name)
		if getErr != nil {
			return "", fmt.Errorf("failed to get uploaded file status: %w", getErr)
		}

		if current.State == genai.FileStateActive {
			file = current
			break
		}
		if current.State == genai.FileStateFailed {
			return "", fmt.Errorf("Gemini failed to process uploaded audio file")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}

	if file.State != genai.FileStateActive {
		return "", fmt.Errorf("audio file did not become active in time")
	}

	prompt := "Transcribe the provided audio verbatim. Return plain text only, without markdown, headers, or explanations. If no speech is present, return an empty response."

	resp, err := r.model.GenerateContent(ctx,
		genai.Text(prompt),
		genai.FileData{MIMEType: "audio/wav", URI: file.URI},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini transcription error: %w", err)
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", ErrUnintelligible
	}

	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
