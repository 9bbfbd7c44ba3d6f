package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GeminiClient produces the English/Chinese summary pair via the Gemini
// API. Prompt wording is intentionally plain; quality tuning is not this
// package's concern.
type GeminiClient struct {
	client *genai.Client
	model  string
}

func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model}, nil
}

func (c *GeminiClient) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

func (c *GeminiClient) Summarize(ctx context.Context, title, link, content string) (*Result, error) {
	model := c.client.GenerativeModel(c.model)

	prompt := fmt.Sprintf(`Summarize this news article twice: once in English, once in Simplified Chinese.
Each summary is 1-2 factual sentences derived only from the supplied content.
Do not translate brand or organization names. No introductions, no disclaimers.

Title: %s
Link: %s
Content: %s

Answer strictly in this format:

ENGLISH: <english summary>

CHINESE: <chinese summary>
`, title, link, content)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, errors.New("empty response from model")
	}

	return parseResponse(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0]))
}

// parseResponse splits the labeled response into its two summaries.
// Continuation lines attach to the last seen label.
func parseResponse(response string) (*Result, error) {
	var enBuilder, zhBuilder strings.Builder
	current := ""

	appendTo := func(b *strings.Builder, text string) {
		if text == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(text)
	}

	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(strings.ToUpper(line), "ENGLISH:"):
			current = "en"
			appendTo(&enBuilder, strings.TrimSpace(line[len("ENGLISH:"):]))
		case strings.HasPrefix(strings.ToUpper(line), "CHINESE:"):
			current = "zh"
			appendTo(&zhBuilder, strings.TrimSpace(line[len("CHINESE:"):]))
		case current == "en":
			appendTo(&enBuilder, line)
		case current == "zh":
			appendTo(&zhBuilder, line)
		}
	}

	en := strings.TrimSpace(enBuilder.String())
	zh := strings.TrimSpace(zhBuilder.String())
	if en == "" && zh == "" {
		return nil, fmt.Errorf("could not parse model response: no labeled sections")
	}
	return &Result{English: en, Chinese: zh}, nil
}

// IsTransient classifies summarization errors for the retry wrapper:
// rate limits, server-side errors and timeouts are retryable.
func IsTransient(err error) bool {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code >= 500
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, hint := range []string{"rate limit", "quota", "unavailable", "timeout", "deadline", "connection reset", "overloaded"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}
