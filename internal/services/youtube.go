package services

import (
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	ytapi "github.com/hightemp/youtube-transcript-api-go/api"
	yt "github.com/kkdai/youtube/v2"
	"github.com/sirupsen/logrus"

	"quizforge/internal/models"
)

// YouTubeService resolves a video link to text: caption transcript when one
// exists, otherwise an audio-only download handed to the transcriber.
type YouTubeService struct {
	httpClient    *http.Client
	transcriptAPI *ytapi.YouTubeTranscriptApi
	ytClient      *yt.Client
	tempDir       string
	log           *logrus.Logger
}

func NewYouTubeService(tempDir string, log *logrus.Logger) *YouTubeService {
	return &YouTubeService{
		httpClient:    &http.Client{Timeout: 30 * time.Second},
		transcriptAPI: ytapi.NewYouTubeTranscriptApi(),
		ytClient:      &yt.Client{},
		tempDir:       tempDir,
		log:           log,
	}
}

// GetTranscript fetches the caption track for a YouTube video, preferring
// English tracks and falling back to any available language.
func (s *YouTubeService) GetTranscript(videoID string) (string, error) {
	transcript, err := s.transcriptAPI.GetTranscript(videoID, []string{"en", "en-US", "en-GB"})
	if err != nil {
		// Fallback: request any available language
		transcript, err = s.transcriptAPI.GetTranscript(videoID, nil)
		if err != nil {
			return "", fmt.Errorf("%w: no subtitles available: %v", models.ErrExtractionFailure, err)
		}
	}

	if len(transcript.Entries) == 0 {
		return "", fmt.Errorf("%w: subtitle track is empty", models.ErrExtractionFailure)
	}

	var fullText strings.Builder
	for _, entry := range transcript.Entries {
		text := strings.TrimSpace(entry.Text)
		if text == "" {
			continue
		}
		fullText.WriteString(text)
		fullText.WriteString(" ")
	}

	cleaned := strings.TrimSpace(fullText.String())
	if cleaned == "" {
		return "", fmt.Errorf("%w: subtitle text resolved to empty content", models.ErrExtractionFailure)
	}

	return cleaned, nil
}

// DownloadAudio downloads the best available audio-only stream to a local
// temp file and returns its path. On failure no file is left behind and the
// caller must not proceed to transcription.
func (s *YouTubeService) DownloadAudio(videoURL string) (string, error) {
	video, err := s.ytClient.GetVideo(videoURL)
	if err != nil {
		return "", fmt.Errorf("%w: fetch video metadata: %v", models.ErrExtractionFailure, err)
	}

	formats := video.Formats.WithAudioChannels()
	if len(formats) == 0 {
		return "", fmt.Errorf("%w: no audio formats available", models.ErrExtractionFailure)
	}

	best := formats[0]
	for _, f := range formats {
		if f.Bitrate > best.Bitrate {
			best = f
		}
	}

	stream, _, err := s.ytClient.GetStream(video, &best)
	if err != nil {
		return "", fmt.Errorf("%w: open audio stream: %v", models.ErrExtractionFailure, err)
	}
	defer stream.Close()

	audioPath := filepath.Join(s.tempDir, fmt.Sprintf("youtube_%s%s", uuid.NewString(), audioExtension(best.MimeType)))
	out, err := os.Create(audioPath)
	if err != nil {
		return "", fmt.Errorf("%w: create audio file: %v", models.ErrExtractionFailure, err)
	}

	const maxAudioBytes = 100 * 1024 * 1024 // 100MB safety cap
	written, err := io.Copy(out, io.LimitReader(stream, maxAudioBytes+1))
	closeErr := out.Close()
	if err != nil || closeErr != nil {
		os.Remove(audioPath)
		return "", fmt.Errorf("%w: read audio stream: %v", models.ErrExtractionFailure, err)
	}
	if written > maxAudioBytes {
		os.Remove(audioPath)
		return "", fmt.Errorf("%w: audio stream exceeds %d MB limit", models.ErrExtractionFailure, maxAudioBytes/(1024*1024))
	}

	s.log.Infof("Downloaded %d bytes of audio to %s", written, audioPath)
	return audioPath, nil
}

func audioExtension(mimeType string) string {
	mt := strings.TrimSpace(strings.Split(mimeType, ";")[0])
	switch mt {
	case "audio/webm":
		return ".webm"
	case "audio/mp4", "":
		return ".m4a"
	default:
		return ".m4a"
	}
}

// ExtractVideoID parses the 11-character video ID out of the common YouTube
// URL shapes.
func ExtractVideoID(url string) string {
	parsed, err := urlpkg.Parse(url)
	if err == nil {
		host := strings.ToLower(parsed.Host)
		path := strings.Trim(parsed.Path, "/")

		// youtube.com/watch?v=VIDEO_ID
		if strings.Contains(host, "youtube.com") {
			if v := parsed.Query().Get("v"); len(v) == 11 {
				return v
			}

			parts := strings.Split(path, "/")
			if len(parts) >= 2 {
				switch parts[0] {
				case "shorts", "embed", "v":
					if len(parts[1]) == 11 {
						return parts[1]
					}
				}
			}
		}

		// youtu.be/VIDEO_ID
		if strings.Contains(host, "youtu.be") {
			if len(path) >= 11 {
				candidate := strings.Split(path, "/")[0]
				if len(candidate) == 11 {
					return candidate
				}
			}
		}
	}

	// Fallback regex for unusual URL forms
	re := regexp.MustCompile(`(?:v=|\/v\/|youtu\.be\/|embed\/|shorts\/)([a-zA-Z0-9_-]{11})`)
	if m := re.FindStringSubmatch(url); len(m) > 1 {
		return m[1]
	}

	return ""
}
