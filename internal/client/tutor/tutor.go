// Package tutor derives adaptive variants of installed lessons with an
// OpenAI-compatible chat model.
package tutor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/dmitrijs2005/brightstudy/internal/client/library"
	"github.com/dmitrijs2005/brightstudy/internal/client/models"
	"github.com/dmitrijs2005/brightstudy/internal/common"
)

// ErrNotConfigured is returned when no API key is available.
var ErrNotConfigured = errors.New("lesson generation is not configured")

type Mode string

const (
	ModeBeginner Mode = "beginner"
	ModeAdvance  Mode = "advance"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeBeginner:
		return ModeBeginner, nil
	case ModeAdvance, "advanced":
		return ModeAdvance, nil
	}
	return "", fmt.Errorf("unknown mode %q (want beginner or advance)", s)
}

// Title is the display form used in prompts and titles.
func (m Mode) Title() string {
	if m == "" {
		return ""
	}
	return strings.ToUpper(string(m[:1])) + string(m[1:])
}

type Options struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	// AppTitle is sent as X-Title, OpenRouter shows it in its dashboard.
	AppTitle string
}

type Generator struct {
	client *openai.Client
	model  string
}

func NewGenerator(opts Options) (*Generator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, ErrNotConfigured
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	cfg.HTTPClient = &http.Client{
		Timeout:   timeout,
		Transport: &titleTransport{title: opts.AppTitle, next: http.DefaultTransport},
	}

	model := opts.Model
	if model == "" {
		model = "openai/gpt-3.5-turbo"
	}

	return &Generator{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

type titleTransport struct {
	title string
	next  http.RoundTripper
}

func (t *titleTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	if t.title != "" {
		r = r.Clone(r.Context())
		r.Header.Set("X-Title", t.title)
	}
	return t.next.RoundTrip(r)
}

const systemPrompt = "You are a specialized educational content generator. You output only structured JSON."

// generated is the shape the model is asked to return.
type generated struct {
	Title    string           `json:"title"`
	Intro    string           `json:"intro"`
	Outro    string           `json:"outro"`
	Concepts []models.Concept `json:"concepts"`
}

// Generate asks the model for a variant of lesson in the given mode. The
// result has id {lesson_id}_{mode}; concept ids get the same suffix so they
// never overwrite synced concepts.
func (g *Generator) Generate(ctx context.Context, lesson *models.Lesson, concepts []models.Concept, mode Mode) (*models.GeneratedLesson, error) {
	prompt, err := buildPrompt(lesson, concepts, mode)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}

	var out generated
	if err := json.Unmarshal([]byte(StripFences(resp.Choices[0].Message.Content)), &out); err != nil {
		return nil, fmt.Errorf("%w: model output is not JSON: %v", common.ErrInvalidPayload, err)
	}

	return assemble(lesson, &out, mode)
}

func assemble(base *models.Lesson, out *generated, mode Mode) (*models.GeneratedLesson, error) {
	if len(out.Concepts) == 0 {
		return nil, fmt.Errorf("%w: generated lesson has no concepts", common.ErrInvalidPayload)
	}

	suffix := "_" + string(mode)
	res := &models.GeneratedLesson{
		BaseID: base.ID,
		Mode:   string(mode),
		Lesson: models.Lesson{
			ID:    base.ID + suffix,
			Title: out.Title,
			Intro: out.Intro,
			Outro: out.Outro,
		},
		Concepts: make([]models.Concept, 0, len(out.Concepts)),
	}
	if strings.TrimSpace(res.Lesson.Title) == "" {
		res.Lesson.Title = fmt.Sprintf("%s (%s)", base.DisplayTitle(), mode.Title())
	}

	seen := make(map[string]bool, len(out.Concepts))
	for i, c := range out.Concepts {
		id := strings.TrimSpace(c.ID)
		if id == "" {
			id = fmt.Sprintf("%s_c%d", base.ID, i+1)
		}
		if !strings.HasSuffix(id, suffix) {
			id += suffix
		}
		if err := library.CheckID(id); err != nil {
			return nil, err
		}
		if seen[id] {
			return nil, fmt.Errorf("%w: duplicate concept id %q", common.ErrInvalidPayload, id)
		}
		seen[id] = true

		c.ID = id
		if c.Check != nil {
			for j, k := range c.Check.Keywords {
				c.Check.Keywords[j] = strings.ToLower(k)
			}
		}
		res.Concepts = append(res.Concepts, c)
		res.Lesson.Concepts = append(res.Lesson.Concepts, id)
	}

	if err := library.CheckID(res.Lesson.ID); err != nil {
		return nil, err
	}
	return res, nil
}

func buildPrompt(lesson *models.Lesson, concepts []models.Concept, mode Mode) (string, error) {
	original := struct {
		*models.Lesson
		Concepts []models.Concept `json:"concepts"`
	}{Lesson: lesson, Concepts: concepts}

	b, err := json.MarshalIndent(original, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal lesson: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are an expert tutor. I will give you a JSON representation of a lesson.\n")
	fmt.Fprintf(&sb, "Generate a new version of this lesson for a student in '%s' mode.\n\n", mode.Title())
	switch mode {
	case ModeBeginner:
		sb.WriteString(`RULES:
1. Simplify explanations. Use analogies and very clear language.
2. Focus on foundational concepts.
3. Make questions easier but still testing core concepts.
4. Append ' (Beginner)' to the title.
5. Keywords must be in lowercase.
`)
	case ModeAdvance:
		sb.WriteString(`RULES:
1. Add deeper technical details or more complex applications.
2. Introduce 1-2 new, related advanced concepts.
3. Make questions significantly more challenging (multi-step or critical thinking).
4. Append ' (Advance)' to the title.
5. Keywords must be in lowercase.
`)
	}
	sb.WriteString(`
OUTPUT FORMAT:
Return ONLY valid JSON with this structure:
{"title": "...", "intro": "...", "outro": "...", "concepts": [{"id": "...", "name": "...", "explain": "...", "example": "...", "check": {"question": "...", "desired_answer": "...", "keywords": ["..."]}}]}

ORIGINAL LESSON JSON:
`)
	sb.Write(b)
	return sb.String(), nil
}

// StripFences removes a markdown code fence around model output.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
	} else if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
	} else {
		return s
	}
	if j := strings.Index(s, "```"); j >= 0 {
		s = s[:j]
	}
	return strings.TrimSpace(s)
}
