package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/issue-tracker-api/internal/constants"
	"github.com/yukikurage/issue-tracker-api/internal/models"
)

var ErrAIServiceNotConfigured = errors.New("AI service not configured")

// chatCompleter is the part of the OpenAI client the service uses.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type AIService struct {
	client chatCompleter
}

// IssueDraft is a suggested issue. Drafts are not persisted.
type IssueDraft struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	IssueType   models.IssueType `json:"issueType"`
}

// NewAIService creates an AIService. An empty apiKey leaves it unconfigured.
func NewAIService(apiKey string) *AIService {
	if apiKey == "" {
		return &AIService{}
	}
	return &AIService{
		client: openai.NewClient(apiKey),
	}
}

// Configured reports whether drafts can be generated.
func (s *AIService) Configured() bool {
	return s != nil && s.client != nil
}

// GenerateIssueDrafts analyzes free text and extracts issue drafts using OpenAI GPT
func (s *AIService) GenerateIssueDrafts(ctx context.Context, text string) ([]IssueDraft, error) {
	if !s.Configured() {
		return nil, ErrAIServiceNotConfigured
	}

	prompt := fmt.Sprintf(`You are an assistant that turns notes into issue tracker entries. Extract concrete, actionable issues from the text below.

Text:
%s

Return a JSON array of issues in this format:
[
  {
    "title": "short summary, at most 255 characters",
    "description": "detailed description",
    "issueType": "one of GENERAL, BUG, SPIKE, TASK, SUBTASK"
  }
]

Rules:
- Return an empty array [] when the text contains no issues
- Use BUG for defects and SPIKE for investigations
- Return JSON only, without any explanation`, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var drafts []IssueDraft
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return normalizeDrafts(drafts), nil
}

func normalizeDrafts(drafts []IssueDraft) []IssueDraft {
	out := make([]IssueDraft, 0, len(drafts))
	for _, d := range drafts {
		d.Title = strings.TrimSpace(d.Title)
		if d.Title == "" {
			continue
		}
		if len([]rune(d.Title)) > constants.MaxTitleLength {
			d.Title = string([]rune(d.Title)[:constants.MaxTitleLength])
		}
		if !d.IssueType.Valid() {
			d.IssueType = models.IssueTypeGeneral
		}
		out = append(out, d)
		if len(out) == constants.MaxAIGeneratedIssues {
			break
		}
	}
	return out
}

// stripCodeFence removes a surrounding markdown code fence, which models add despite instructions.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
