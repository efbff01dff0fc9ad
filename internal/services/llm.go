package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"quizforge/internal/models"
)

const questionSystemPrompt = "You are a helpful assistant for generating educational questions."

const mcqPromptTemplate = `Syllabus:
%s

Based on the syllabus above, generate %d multiple-choice questions (MCQs).
Provide 4 options for each question, and clearly indicate the correct answer.
Difficulty Level: %s.`

const fillBlanksPromptTemplate = `Syllabus:
%s

Instructions:
- Generate %d 'Fill in the Blanks' questions.
- Do NOT repeat any context or explanation from the syllabus within the questions.
- Format the output **strictly** as below, or the response will be considered incorrect.
- Include concise answers and explanations at the end.

Format:

Questions:
1. Fill in the blank: Question text with ____________.
2. Fill in the blank: Question text with ____________.

Answers:
1. Correct Answer - Brief Explanation
2. Correct Answer - Brief Explanation

Failure to strictly follow the format will result in rejection. Ensure all blanks are clear and concise.
Difficulty Level: %s.`

const trueFalsePromptTemplate = `Syllabus:
%s

Based on the syllabus above, generate %d True/False questions.
Clearly indicate the correct answers.
Difficulty Level: %s.`

const matchingPromptTemplate = `Syllabus:
%s

Generate %d matching questions based on the syllabus.

**Instructions**:
- Provide %d pairs of terms/items in two columns.
- Format the response EXACTLY as follows:

Example:
1. Term A1 | Match A1
2. Term A2 | Match A2
3. Term A3 | Match A3

**Output Format**:
- No extra explanations, no introductions, and no additional context.
- Each line should contain exactly one pair, separated by '|' symbol.
- Only output the pairs as shown in the example above.
Difficulty Level: %s.`

// LLMService drives an OpenAI-compatible chat-completions endpoint to
// generate quiz questions from a syllabus.
type LLMService struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
}

func NewLLMService(endpoint, apiKey, model string) *LLMService {
	return &LLMService{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Query issues one chat-completions call and returns the first choice's
// content.
func (s *LLMService) Query(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: s.model,
		Messages: []chatMessage{
			{Role: "system", Content: questionSystemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   10000,
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: query LLM: %v", models.ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("%w: LLM returned status %d: %s", models.ErrTransportFailure, resp.StatusCode, strings.TrimSpace(string(slurp)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return "", fmt.Errorf("%w: decode LLM response: %v", models.ErrTransportFailure, err)
	}
	if len(cr.Choices) == 0 {
		return "", fmt.Errorf("%w: LLM response contained no choices", models.ErrTransportFailure)
	}

	return cr.Choices[0].Message.Content, nil
}

// GenerateMCQ produces multiple-choice questions.
func (s *LLMService) GenerateMCQ(ctx context.Context, syllabusText string, numQuestions int, difficulty string) (string, error) {
	return s.Query(ctx, fmt.Sprintf(mcqPromptTemplate, syllabusText, numQuestions, difficulty))
}

// GenerateFillInBlanks produces fill-in-the-blank questions with an answer
// key, in the strict numbered format downstream consumers expect.
func (s *LLMService) GenerateFillInBlanks(ctx context.Context, syllabusText string, numQuestions int, difficulty string) (string, error) {
	return s.Query(ctx, fmt.Sprintf(fillBlanksPromptTemplate, syllabusText, numQuestions, difficulty))
}

// GenerateTrueFalse produces true/false questions.
func (s *LLMService) GenerateTrueFalse(ctx context.Context, syllabusText string, numQuestions int, difficulty string) (string, error) {
	return s.Query(ctx, fmt.Sprintf(trueFalsePromptTemplate, syllabusText, numQuestions, difficulty))
}

// GenerateMatching asks for term/match pairs, parses the pipe-delimited
// lines and shuffles each column independently. The endpoint is invoked
// exactly once.
func (s *LLMService) GenerateMatching(ctx context.Context, syllabusText string, numQuestions int, difficulty string) (models.MatchingQuiz, error) {
	raw, err := s.Query(ctx, fmt.Sprintf(matchingPromptTemplate, syllabusText, numQuestions, numQuestions, difficulty))
	if err != nil {
		return models.MatchingQuiz{}, err
	}

	left, right := ParseMatchingPairs(raw)
	if len(left) == 0 {
		return models.MatchingQuiz{}, fmt.Errorf("%w: no matching pairs in LLM response", models.ErrTransportFailure)
	}

	rand.Shuffle(len(left), func(i, j int) { left[i], left[j] = left[j], left[i] })
	rand.Shuffle(len(right), func(i, j int) { right[i], right[j] = right[j], right[i] })

	return models.MatchingQuiz{Left: left, Right: right}, nil
}

// ParseMatchingPairs splits the raw response into lines and keeps those with
// exactly one '|' separator as "left | right" pairs, trimming both sides.
// Anything else (noise lines, preambles) is discarded.
func ParseMatchingPairs(raw string) (left, right []string) {
	for _, line := range strings.Split(raw, "\n") {
		if strings.Count(line, "|") != 1 {
			continue
		}

		parts := strings.SplitN(line, "|", 2)
		l := strings.TrimSpace(stripLeadingNumber(parts[0]))
		r := strings.TrimSpace(parts[1])
		if l == "" || r == "" {
			continue
		}

		left = append(left, l)
		right = append(right, r)
	}
	return left, right
}

// stripLeadingNumber removes a "1." / "12)" list prefix if present.
func stripLeadingNumber(s string) string {
	trimmed := strings.TrimSpace(s)
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i > 0 && i < len(trimmed) && (trimmed[i] == '.' || trimmed[i] == ')') {
		return trimmed[i+1:]
	}
	return trimmed
}
