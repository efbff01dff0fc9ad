package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"quizforge/internal/config"
	"quizforge/internal/executor"
	"quizforge/internal/models"
	"quizforge/internal/syllabus"
)

// TranscribeService converts an audio file to syllabus text by slicing it
// into fixed overlapping windows and submitting each window to the
// speech-recognition collaborator. Windows overlap so words straddling a
// boundary are not lost; the occasional duplicated word is accepted.
type TranscribeService struct {
	cfg        *config.Config
	exec       executor.Executor
	recognizer Recognizer
	log        *logrus.Logger
}

func NewTranscribeService(cfg *config.Config, exec executor.Executor, rec Recognizer, log *logrus.Logger) *TranscribeService {
	return &TranscribeService{
		cfg:        cfg,
		exec:       exec,
		recognizer: rec,
		log:        log,
	}
}

// Transcribe runs the full pipeline: WAV canonicalization, 16 kHz mono
// resampling, windowing, per-window recognition, assembly, truncation.
// Every transcoding intermediate and window artifact is removed before
// returning, on success and on failure.
func (s *TranscribeService) Transcribe(ctx context.Context, audioPath string) (string, error) {
	workPath := audioPath

	// Step 1: transcode anything that is not already a WAV container.
	if strings.ToLower(filepath.Ext(audioPath)) != ".wav" {
		converted := filepath.Join(s.cfg.TempDir, fmt.Sprintf("converted_%s.wav", uuid.NewString()))
		if _, err := s.exec.Execute(ctx, s.cfg.FFmpegPath, "-y", "-i", audioPath, converted); err != nil {
			s.removeArtifact(converted)
			return "", fmt.Errorf("%w: convert to wav: %v", models.ErrExtractionFailure, err)
		}
		defer s.removeArtifact(converted)
		workPath = converted
	}

	// Step 2: resample to 16-bit PCM, 16 kHz, mono, the profile the
	// recognition service expects. Failure is logged and tolerated: the
	// pipeline continues on the Step-1 container.
	resampled := filepath.Join(s.cfg.TempDir, fmt.Sprintf("resampled_%s.wav", uuid.NewString()))
	if _, err := s.exec.Execute(ctx, s.cfg.FFmpegPath,
		"-y",
		"-i", workPath,
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		resampled,
	); err != nil {
		s.log.Warnf("Resampling failed, transcribing unresampled audio: %v", err)
		s.removeArtifact(resampled)
	} else {
		defer s.removeArtifact(resampled)
		workPath = resampled
	}

	// Step 3: probe duration and compute the window layout.
	durationMs, err := s.probeDurationMs(ctx, workPath)
	if err != nil {
		return "", fmt.Errorf("%w: probe audio duration: %v", models.ErrExtractionFailure, err)
	}

	starts := windowStarts(durationMs, s.cfg.ChunkLengthMs, s.cfg.ChunkOverlapMs)
	s.log.Infof("Transcribing %dms of audio in %d window(s)", durationMs, len(starts))

	// Step 4: per-window recognition with failure isolation.
	var texts []string
	for i, start := range starts {
		text, err := s.transcribeWindow(ctx, workPath, start)
		if err != nil {
			if errors.Is(err, ErrUnintelligible) {
				s.log.Warnf("Could not understand window %d of %d, skipping", i+1, len(starts))
			} else {
				s.log.Warnf("Recognition failed for window %d of %d, skipping: %v", i+1, len(starts), err)
			}
			continue
		}
		texts = append(texts, text)
	}

	// Step 5: assembly and normalization.
	return syllabus.Truncate(strings.Join(texts, " "), s.cfg.WordLimit), nil
}

// transcribeWindow materializes one window as a temporary WAV, submits it to
// the recognizer and always removes the artifact afterwards.
func (s *TranscribeService) transcribeWindow(ctx context.Context, srcPath string, startMs int) (string, error) {
	chunkPath := filepath.Join(s.cfg.TempDir, fmt.Sprintf("chunk_%s.wav", uuid.NewString()))
	defer s.removeArtifact(chunkPath)

	if _, err := s.exec.Execute(ctx, s.cfg.FFmpegPath,
		"-y",
		"-ss", formatSeconds(startMs),
		"-t", formatSeconds(s.cfg.ChunkLengthMs),
		"-i", srcPath,
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		chunkPath,
	); err != nil {
		return "", fmt.Errorf("materialize window: %w", err)
	}

	return s.recognizer.Recognize(ctx, chunkPath)
}

// probeDurationMs reads the stream duration through ffprobe.
func (s *TranscribeService) probeDurationMs(ctx context.Context, path string) (int, error) {
	out, err := s.exec.Execute(ctx, s.cfg.FFprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	if err != nil {
		return 0, err
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", strings.TrimSpace(out), err)
	}

	return int(seconds * 1000), nil
}

func (s *TranscribeService) removeArtifact(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		s.log.Warnf("Failed to remove temp artifact %s: %v", path, err)
	}
}

// windowStarts returns the start offsets of the overlapping transcription
// windows covering a stream of durationMs. A stream no longer than one
// window yields exactly one window; otherwise windows slide by
// windowMs-overlapMs, and a trailing window lying entirely inside its
// predecessor's overlap is not emitted.
func windowStarts(durationMs, windowMs, overlapMs int) []int {
	step := windowMs - overlapMs
	starts := []int{0}
	if step <= 0 {
		return starts
	}
	for start := step; start+overlapMs < durationMs; start += step {
		starts = append(starts, start)
	}
	return starts
}

func formatSeconds(ms int) string {
	return strconv.FormatFloat(float64(ms)/1000.0, 'f', 3, 64)
}
