package services

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"quizforge/internal/models"
)

// TranscribeVideo extracts the audio track from a video container and
// delegates to the chunked transcriber. When extraction fails the
// transcriber is never invoked.
func (s *TranscribeService) TranscribeVideo(ctx context.Context, videoPath string) (string, error) {
	audioPath := filepath.Join(s.cfg.TempDir, fmt.Sprintf("extracted_%s.wav", uuid.NewString()))

	s.log.Infof("Extracting audio track from video: %s", videoPath)

	// -vn drops the video stream; 16kHz mono PCM matches the recognizer's
	// expected input profile.
	if _, err := s.exec.Execute(ctx, s.cfg.FFmpegPath,
		"-y",
		"-i", videoPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		audioPath,
	); err != nil {
		s.removeArtifact(audioPath)
		return "", fmt.Errorf("%w: extract audio from video: %v", models.ErrExtractionFailure, err)
	}
	defer s.removeArtifact(audioPath)

	return s.Transcribe(ctx, audioPath)
}
