package service

import (
	"context"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/tagglr/internal/logger"
	"github.com/timmy/tagglr/internal/prompts"
)

// thinkPattern matches a <think>...</think> reasoning block anywhere in
// a model reply, any casing, across newlines.
var thinkPattern = regexp.MustCompile(`(?is)<think>.*</think>`)

// TagService synthesizes classification tags from a flattened post
// payload through the tag model on the OpenAI-compatible endpoint.
type TagService struct {
	client   *resty.Client
	model    string
	endpoint string
	logger   *logger.Logger
}

// TagConfig holds configuration for the tag service.
type TagConfig struct {
	Model   string
	APIKey  string
	BaseURL string
}

// NewTagService creates a new tag synthesis service.
func NewTagService(cfg *TagConfig, log *logger.Logger) *TagService {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(120 * time.Second)
	client.SetTransport(&http.Transport{
		DialContext: (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
	})

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &TagService{
		client:   client,
		model:    cfg.Model,
		endpoint: baseURL + "/chat/completions",
		logger:   log.WithField(logger.FieldComponent, "tags"),
	}
}

// GetModel returns the model name being used.
func (s *TagService) GetModel() string {
	return s.model
}

type tagRequest struct {
	Model    string       `json:"model"`
	Messages []tagMessage `json:"messages"`
}

type tagMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type tagResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Synthesize turns a classification payload into a sanitized tag list.
// An empty payload returns an empty list without touching the model; any
// API failure or a malformed reply degrades to an empty list.
func (s *TagService) Synthesize(ctx context.Context, payload string) []string {
	if payload == "" {
		return nil
	}

	req := tagRequest{
		Model: s.model,
		Messages: []tagMessage{
			{Role: "system", Content: prompts.TagSystemPrompt},
			{Role: "user", Content: prompts.TagUserPrefix + payload},
		},
	}

	var resp tagResponse
	httpResp, err := s.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)
	if err != nil {
		s.logger.WithError(err).Error("Failed to call tag API")
		return nil
	}
	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		s.logger.WithFields(logger.Fields{
			logger.FieldStatus: httpResp.StatusCode(),
			"body":             string(httpResp.Body()),
		}).Error("Tag API returned non-200 status")
		return nil
	}
	if resp.Error != nil {
		s.logger.WithField("api_error", resp.Error.Message).Error("Tag API error")
		return nil
	}
	if len(resp.Choices) == 0 {
		s.logger.Error("Tag API returned no choices")
		return nil
	}

	tags := sanitizeTags(resp.Choices[0].Message.Content)
	if tags == nil {
		s.logger.WithField("reply", resp.Choices[0].Message.Content).Warn("Discarded malformed tag reply")
	}
	return tags
}

// sanitizeTags parses a raw model reply into a clean tag list. Any
// reasoning block is stripped first; candidates are split on commas,
// space-trimmed, and lower-cased. A reply whose rejoined tags still
// carry a newline broke the single-line instruction and is discarded
// wholesale.
func sanitizeTags(reply string) []string {
	reply = thinkPattern.ReplaceAllString(reply, "")
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return nil
	}

	parts := strings.Split(reply, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		tags = append(tags, strings.ToLower(strings.Trim(part, " ")))
	}

	if strings.Contains(strings.Join(tags, ", "), "\n") {
		return nil
	}

	return tags
}
