package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"quizforge/internal/syllabus"
)

type Config struct {
	// Environment
	Env      string
	LogLevel string

	// Question-generation LLM (OpenAI-compatible chat completions)
	LLMAPIKey string
	LLMAPIURL string
	LLMModel  string

	// Translation
	TranslateAPIKey string
	TranslateAPIURL string

	// Speech recognition (Gemini File API)
	GeminiAPIKey string

	// Normalization
	WordLimit int

	// Audio chunking
	ChunkLengthMs  int
	ChunkOverlapMs int

	// External tools
	FFmpegPath    string
	FFprobePath   string
	TesseractPath string

	// Scratch space for transcoding intermediates and chunk files
	TempDir string
}

func Load(envFiles ...string) *Config {
	// Load .env file(s) if present
	godotenv.Load(envFiles...)

	cfg := &Config{
		Env:             getEnvOrDefault("ENV", "development"),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
		LLMAPIKey:       mustGetEnv("LLM_API_KEY"),
		LLMAPIURL:       getEnvOrDefault("LLM_API_URL", "https://api.perplexity.ai/chat/completions"),
		LLMModel:        getEnvOrDefault("LLM_MODEL", "llama-3.1-sonar-small-128k-online"),
		TranslateAPIKey: getEnvOrDefault("GOOGLE_TRANSLATE_API_KEY", ""),
		TranslateAPIURL: getEnvOrDefault("GOOGLE_TRANSLATE_API_URL", "https://translation.googleapis.com/language/translate/v2"),
		GeminiAPIKey:    getEnvOrDefault("GEMINI_API_KEY", ""),
		WordLimit:       getEnvAsIntOrDefault("WORD_LIMIT", syllabus.DefaultWordLimit),
		ChunkLengthMs:   getEnvAsIntOrDefault("CHUNK_LENGTH_MS", 60000),
		ChunkOverlapMs:  getEnvAsIntOrDefault("CHUNK_OVERLAP_MS", 10000),
		FFmpegPath:      getEnvOrDefault("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:     getEnvOrDefault("FFPROBE_PATH", "ffprobe"),
		TesseractPath:   getEnvOrDefault("TESSERACT_PATH", "tesseract"),
		TempDir:         getEnvOrDefault("TEMP_DIR", os.TempDir()),
	}

	return cfg
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
