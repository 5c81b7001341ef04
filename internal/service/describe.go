package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"net"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/tagglr/internal/logger"
	"github.com/timmy/tagglr/internal/prompts"
	_ "golang.org/x/image/webp"
)

// VisionService generates image descriptions through the vision model on
// the OpenAI-compatible endpoint.
type VisionService struct {
	api      *resty.Client // inference endpoint, carries the API key
	fetch    *resty.Client // media downloads, no credentials attached
	model    string
	endpoint string
	logger   *logger.Logger
}

// VisionConfig holds configuration for the vision service.
type VisionConfig struct {
	Model   string
	APIKey  string
	BaseURL string
}

// NewVisionService creates a new vision service.
// Parameters:
//   - cfg: vision configuration including model and API key.
//   - log: structured logger.
//
// Returns:
//   - *VisionService: initialized vision client wrapper.
func NewVisionService(cfg *VisionConfig, log *logger.Logger) *VisionService {
	transport := func() *http.Transport {
		return &http.Transport{
			DialContext: (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
		}
	}

	api := resty.New()
	api.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	api.SetHeader("Content-Type", "application/json")
	api.SetTimeout(120 * time.Second)
	api.SetTransport(transport())

	fetch := resty.New()
	fetch.SetTimeout(120 * time.Second)
	fetch.SetTransport(transport())

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &VisionService{
		api:      api,
		fetch:    fetch,
		model:    cfg.Model,
		endpoint: baseURL + "/chat/completions",
		logger:   log.WithField(logger.FieldComponent, "vision"),
	}
}

// GetModel returns the model name being used.
func (s *VisionService) GetModel() string {
	return s.model
}

// OpenAI-compatible Chat Completion API request/response structures
type visionRequest struct {
	Model     string          `json:"model"`
	Messages  []visionMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type visionMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string for system, []interface{} for user with images
}

type visionTextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type visionImageContent struct {
	Type     string         `json:"type"`
	ImageURL visionImageURL `json:"image_url"`
}

type visionImageURL struct {
	URL string `json:"url"`
}

type visionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// DescribeImage downloads an image and returns a single-line description
// of it. Failures of any kind degrade to an empty string so a bad image
// never aborts the post it belongs to.
func (s *VisionService) DescribeImage(ctx context.Context, imageURL string) string {
	log := s.logger.WithField("image_url", imageURL)

	data := s.download(ctx, normalizeImageURL(imageURL))
	if len(data) == 0 {
		return ""
	}

	// Probe dimensions for diagnostics only; undecodable bytes still go
	// to the model.
	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		log.WithFields(logger.Fields{
			"format": format,
			"width":  cfg.Width,
			"height": cfg.Height,
		}).Debug("Downloaded image")
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s",
		mimeTypeFor(imageURL), base64.StdEncoding.EncodeToString(data))

	req := visionRequest{
		Model: s.model,
		Messages: []visionMessage{
			{
				Role:    "system",
				Content: prompts.DescribeSystemPrompt,
			},
			{
				Role: "user",
				Content: []interface{}{
					visionTextContent{
						Type: "text",
						Text: prompts.DescribeUserPrompt,
					},
					visionImageContent{
						Type:     "image_url",
						ImageURL: visionImageURL{URL: dataURL},
					},
				},
			},
		},
		MaxTokens: 300,
	}

	var resp visionResponse
	httpResp, err := s.api.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(s.endpoint)
	if err != nil {
		log.WithError(err).Error("Failed to call vision API")
		return ""
	}
	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		log.WithFields(logger.Fields{
			logger.FieldStatus: httpResp.StatusCode(),
			"body":             string(httpResp.Body()),
		}).Error("Vision API returned non-200 status")
		return ""
	}
	if resp.Error != nil {
		log.WithField("api_error", resp.Error.Message).Error("Vision API error")
		return ""
	}
	if len(resp.Choices) == 0 {
		log.Error("Vision API returned no choices")
		return ""
	}

	return collapseLines(resp.Choices[0].Message.Content)
}

// download fetches raw image bytes, returning nil on any failure.
func (s *VisionService) download(ctx context.Context, imageURL string) []byte {
	resp, err := s.fetch.R().SetContext(ctx).Get(imageURL)
	if err != nil {
		s.logger.WithField("image_url", imageURL).WithError(err).Error("Failed to download image")
		return nil
	}
	if resp.StatusCode() != http.StatusOK {
		s.logger.WithFields(logger.Fields{
			"image_url":        imageURL,
			logger.FieldStatus: resp.StatusCode(),
		}).Error("Image download returned non-200 status")
		return nil
	}
	return resp.Body()
}

// normalizeImageURL rewrites the two known container-extension aliases to
// their standard still-image extensions before fetching.
func normalizeImageURL(raw string) string {
	switch {
	case strings.HasSuffix(raw, ".gifv"):
		return strings.TrimSuffix(raw, ".gifv") + ".gif"
	case strings.HasSuffix(raw, ".pnj"):
		return strings.TrimSuffix(raw, ".pnj") + ".jpg"
	}
	return raw
}

// mimeTypeFor maps an image URL's extension to a MIME type, defaulting
// to JPEG.
func mimeTypeFor(imageURL string) string {
	switch strings.ToLower(strings.TrimPrefix(path.Ext(imageURL), ".")) {
	case "png":
		return "image/png"
	case "gif", "gifv":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}

// collapseLines flattens a model reply to a single line.
func collapseLines(reply string) string {
	reply = strings.ReplaceAll(reply, "\r\n", "\n")
	reply = strings.ReplaceAll(reply, "\n", " ")
	return strings.TrimSpace(reply)
}
