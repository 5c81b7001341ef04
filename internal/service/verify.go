package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/timmy/tagglr/internal/logger"
)

// ModelVerifier checks that the configured models are actually served by
// the inference endpoint before any post is touched.
type ModelVerifier struct {
	client   *resty.Client
	endpoint string
	models   []string
	logger   *logger.Logger
}

// VerifierConfig holds configuration for model verification.
type VerifierConfig struct {
	BaseURL string
	APIKey  string
	Models  []string
}

// NewModelVerifier creates a new model verifier.
func NewModelVerifier(cfg *VerifierConfig, log *logger.Logger) *ModelVerifier {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetTimeout(120 * time.Second)
	client.SetTransport(&http.Transport{
		DialContext: (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
	})

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &ModelVerifier{
		client:   client,
		endpoint: baseURL + "/models",
		models:   cfg.Models,
		logger:   log.WithField(logger.FieldComponent, "verify"),
	}
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// Verify queries the model listing and errors if any configured model is
// absent. Unlike every other call in the pipeline this one is fatal: a
// run against missing models would silently produce nothing.
func (v *ModelVerifier) Verify(ctx context.Context) error {
	var resp modelsResponse
	httpResp, err := v.client.R().
		SetContext(ctx).
		SetResult(&resp).
		Get(v.endpoint)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}
	if httpResp.StatusCode() != http.StatusOK {
		return fmt.Errorf("model listing returned status %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}

	available := make(map[string]bool, len(resp.Data))
	for _, m := range resp.Data {
		available[m.ID] = true
	}

	var missing []string
	for _, model := range v.models {
		if !available[model] {
			missing = append(missing, model)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("models not available on endpoint: %s", strings.Join(missing, ", "))
	}

	v.logger.WithField(logger.FieldCount, len(v.models)).Info("Models verified")
	return nil
}
