package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"

	"github.com/hrygo/czdate/plugin/dateparser"
)

// LLMConfig configures the LLM oracle.
type LLMConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

const (
	defaultLLMBaseURL = "https://api.openai.com/v1"
	defaultLLMModel   = "gpt-4o-mini"
	defaultLLMTimeout = 15 * time.Second
)

// LLM asks a chat completion model to find dates. The model returns the exact
// substrings it matched, so the offsets can be recovered by dateparser.Locate.
type LLM struct {
	client   *openai.Client
	model    string
	timeout  time.Duration
	timezone *time.Location
	now      func() time.Time
}

// NewLLM creates an LLM oracle resolving relative dates in timezone.
func NewLLM(cfg LLMConfig, timezone *time.Location) *LLM {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultLLMBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultLLMModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultLLMTimeout
	}
	if timezone == nil {
		timezone = time.Local
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.BaseURL

	return &LLM{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		timezone: timezone,
		now:      time.Now,
	}
}

const llmSearchPrompt = `You find calendar dates in Czech text.
Today is %s (%s).
Rules:
- "text" must be copied character for character from the input.
- "date" is the resolved calendar date as YYYY-MM-DD.
- A date without a year or a bare weekday refers to %s.
- Numeric dates are in %s order.
- List dates in the order they appear. Do not report the same words twice.
Reply with JSON only: {"dates":[{"text":"...","date":"YYYY-MM-DD"}]}`

const llmParsePrompt = `You decide whether a Czech text is exactly one calendar date.
Today is %s (%s).
- A date without a year or a bare weekday refers to %s.
- Numeric dates are in %s order.
If the whole text is one date, reply {"date":"YYYY-MM-DD"}. Otherwise reply {"date":null}.
Reply with JSON only.`

// Search implements dateparser.Oracle.
func (l *LLM) Search(ctx context.Context, text string, settings dateparser.Settings) ([]dateparser.Hit, error) {
	if !supportsCzech(settings) {
		return nil, nil
	}

	content, err := l.complete(ctx, l.systemPrompt(llmSearchPrompt, settings), text)
	if err != nil {
		return nil, err
	}

	var result sidecarSearchResponse
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("failed to decode LLM answer: %w: %w", ErrUnavailable, err)
	}

	hits := make([]dateparser.Hit, 0, len(result.Dates))
	for _, h := range result.Dates {
		if h.Text == "" {
			continue
		}
		d, err := parseISODate(h.Date, l.timezone)
		if err != nil {
			slog.Warn("LLM returned an invalid date, skipping", "text", h.Text, "date", h.Date)
			continue
		}
		hits = append(hits, dateparser.Hit{Text: h.Text, Date: d})
	}
	return hits, nil
}

// Resolve implements dateparser.Oracle.
func (l *LLM) Resolve(ctx context.Context, text string, settings dateparser.Settings) (time.Time, bool, error) {
	if !supportsCzech(settings) || strings.TrimSpace(text) == "" {
		return time.Time{}, false, nil
	}

	content, err := l.complete(ctx, l.systemPrompt(llmParsePrompt, settings), text)
	if err != nil {
		return time.Time{}, false, err
	}

	var result sidecarParseResponse
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return time.Time{}, false, fmt.Errorf("failed to decode LLM answer: %w: %w", ErrUnavailable, err)
	}
	if result.Date == nil || *result.Date == "" {
		return time.Time{}, false, nil
	}

	d, err := parseISODate(*result.Date, l.timezone)
	if err != nil {
		return time.Time{}, false, err
	}
	return d, true, nil
}

func (l *LLM) systemPrompt(template string, settings dateparser.Settings) string {
	today := l.now().In(l.timezone)

	preference := "the nearest such day today or later"
	switch settings.PreferDatesFrom {
	case dateparser.PreferPast:
		preference = "the nearest such day today or earlier"
	case dateparser.PreferCurrentPeriod:
		preference = "the current year or week"
	}

	order := "day-month-year"
	if settings.DateOrder == dateparser.OrderMDY {
		order = "month-day-year"
	}

	return fmt.Sprintf(template, today.Format(isoDate), today.Weekday(), preference, order)
}

func (l *LLM) complete(ctx context.Context, system, user string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       l.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	start := time.Now()
	resp, err := l.client.CreateChatCompletion(ctx, req)
	latency := time.Since(start)
	if err != nil {
		slog.Error("LLM date request failed",
			"error", err,
			"latency_ms", latency.Milliseconds())
		// Keep both causes so deadlines still classify as timeouts.
		return "", fmt.Errorf("LLM request failed: %w: %w", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.Wrap(ErrUnavailable, "empty response from LLM")
	}

	slog.Debug("LLM date request completed",
		"latency_ms", latency.Milliseconds(),
		"tokens", resp.Usage.TotalTokens)

	return extractJSON(resp.Choices[0].Message.Content), nil
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")

// extractJSON strips a markdown code fence some models wrap around JSON.
func extractJSON(content string) string {
	content = strings.TrimSpace(content)
	if m := fencedJSON.FindStringSubmatch(content); len(m) > 1 {
		return m[1]
	}
	return content
}

var _ dateparser.Oracle = (*LLM)(nil)
